package orientation

import (
	"math"
	"sync"
)

// Orientation is the canonical pan/tilt/zoom triple for the review camera.
// Pan and tilt are in degrees, zoom is the vertical field of view in degrees
// (smaller value = more magnification).
type Orientation struct {
	Pan  float64 `json:"pan"`
	Tilt float64 `json:"tilt"`
	Zoom float64 `json:"zoom"`
}

// Range limits. Tilt and zoom are clamped at every mutation site; pan is
// free-running so a long drag keeps its direction across the 0/360 seam.
const (
	MinTilt = -90.0
	MaxTilt = 90.0

	MinZoom = 20.0
	MaxZoom = 120.0

	DefaultZoom = 100.0

	// DefaultFrontLensOffset is the meridian correction for the camera
	// hardware in use: the equirectangular column that renders as
	// "straight ahead" when pan is zero.
	DefaultFrontLensOffset = 91.0
)

// State is the single mutable source of camera truth for a review session.
// All components read or replace it through these methods; none of them keep
// a competing copy. The mutex serializes access from host goroutines
// (websocket readers, the render ticker); each mutator is a single atomic
// step, so callers never observe a half-applied update.
type State struct {
	mu      sync.Mutex
	cur     Orientation
	offset  float64 // front lens offset, degrees, added to pan before projection
	initial Orientation
}

// NewState returns a State at the home orientation: pan 0, tilt 0, default
// zoom, default front lens offset. The initial snapshot is taken here and is
// what a stitched-mode reset returns to.
func NewState() *State {
	o := Orientation{Pan: 0, Tilt: 0, Zoom: DefaultZoom}
	return &State{
		cur:     o,
		offset:  DefaultFrontLensOffset,
		initial: o,
	}
}

// Normalize maps any pan angle onto [0,360).
func Normalize(deg float64) float64 {
	return math.Mod(math.Mod(deg, 360)+360, 360)
}

func clampTilt(v float64) float64 {
	if v < MinTilt {
		v = MinTilt
	}
	if v > MaxTilt {
		v = MaxTilt
	}
	return v
}

func clampZoom(v float64) float64 {
	if v < MinZoom {
		v = MinZoom
	}
	if v > MaxZoom {
		v = MaxZoom
	}
	return v
}

// Current returns a copy of the orientation.
func (s *State) Current() Orientation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cur
}

func (s *State) Pan() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cur.Pan
}

func (s *State) Tilt() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cur.Tilt
}

func (s *State) Zoom() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cur.Zoom
}

// NormalizedPan returns the stored pan mapped onto [0,360). Pure query: the
// stored pan is left as-is so continuous drags keep their direction past a
// full revolution.
func (s *State) NormalizedPan() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Normalize(s.cur.Pan)
}

// SetPan stores an absolute pan. No range invariant on pan.
func (s *State) SetPan(deg float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cur.Pan = deg
}

// SetTilt stores an absolute tilt, clamped to [MinTilt, MaxTilt].
func (s *State) SetTilt(deg float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cur.Tilt = clampTilt(deg)
}

// SetZoom stores an absolute zoom, clamped to [MinZoom, MaxZoom].
func (s *State) SetZoom(deg float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cur.Zoom = clampZoom(deg)
}

// SetOrientation replaces all three fields in one step, with the usual
// clamps. Used by mode entry actions and reset.
func (s *State) SetOrientation(o Orientation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cur.Pan = o.Pan
	s.cur.Tilt = clampTilt(o.Tilt)
	s.cur.Zoom = clampZoom(o.Zoom)
}

// AdjustPan adds a delta to pan. Out-of-range input does not exist for pan.
func (s *State) AdjustPan(deltaDeg float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cur.Pan += deltaDeg
}

// AdjustTilt adds a delta to tilt and clamps. Inputs of any magnitude are
// accepted and silently clamped, never rejected.
func (s *State) AdjustTilt(deltaDeg float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cur.Tilt = clampTilt(s.cur.Tilt + deltaDeg)
}

// AdjustZoom adds a delta to zoom and clamps.
func (s *State) AdjustZoom(deltaDeg float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cur.Zoom = clampZoom(s.cur.Zoom + deltaDeg)
}

// FrontLensOffset returns the current lens alignment correction in degrees.
func (s *State) FrontLensOffset() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.offset
}

// SetFrontLensOffset overrides the lens alignment correction. Deployments
// with a different camera head set this once at startup from config;
// afterwards only calibration touches it.
func (s *State) SetFrontLensOffset(deg float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.offset = deg
}

// ViewParams returns the orientation and the lens offset as one consistent
// pair, so a projector reading mid-calibration cannot see the new offset with
// the old pan.
func (s *State) ViewParams() (Orientation, float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cur, s.offset
}

// Initial returns the snapshot restored by a stitched-mode reset.
func (s *State) Initial() Orientation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.initial
}

// RestoreInitial replaces the orientation with the initial snapshot.
func (s *State) RestoreInitial() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cur = s.initial
}
