// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package session

import (
	"image"
	"image/color"
	"log"
	"sync"

	"github.com/relabs-tech/evidence_viewer/internal/extract"
	"github.com/relabs-tech/evidence_viewer/internal/frames"
	"github.com/relabs-tech/evidence_viewer/internal/input"
	"github.com/relabs-tech/evidence_viewer/internal/orientation"
	"github.com/relabs-tech/evidence_viewer/internal/projection"
	"github.com/relabs-tech/evidence_viewer/internal/render"
	"github.com/relabs-tech/evidence_viewer/internal/viewmode"
)

// Keyboard nudge steps in degrees.
const (
	nudgeStepDeg = 5.0
	zoomStepDeg  = 5.0
)

// Renderer is the projected-view backend the session ticks. Satisfied by
// render.Software; a GPU renderer would satisfy it the same way.
type Renderer interface {
	SetCamera(projection.Camera)
	Resize(w, h int)
	RenderFrame() (*image.NRGBA, error)
}

// Session owns one review session end to end: orientation state, the view
// mode controller, the gesture navigator, the projector and the two render
// paths. Every hosting shell (desktop window, web handler, bus consumer)
// holds a *Session and talks to it through Dispatch, Tick and State; nothing
// session-scoped lives in a package global, so two sessions can coexist in
// one process.
//
// Dispatch and Tick serialize on the session mutex: the shell may pump input
// from one goroutine and tick from another without interleaved half-applied
// gestures.
type Session struct {
	mu sync.Mutex

	state     *orientation.State
	modes     *viewmode.Controller
	navigator *input.Navigator
	projector *projection.Projector

	source    frames.Source
	renderer  Renderer
	extractor extract.Extractor

	output *render.ImageSurface
	front  *render.ImageSurface
	back   *render.ImageSurface

	width, height int

	marks []orientation.Orientation
}

// State is the session snapshot published on the bus and served by the web
// API. Angles are degrees, position is seconds.
type State struct {
	Mode            string  `json:"mode"`
	Pan             float64 `json:"pan_deg"`
	Tilt            float64 `json:"tilt_deg"`
	Zoom            float64 `json:"zoom_deg"`
	NormalizedPan   float64 `json:"normalized_pan_deg"`
	FrontLensOffset float64 `json:"front_lens_offset_deg"`
	Locked          bool    `json:"locked"`
	Marks           int     `json:"marks"`
	Playing         bool    `json:"playing"`
	PositionS       float64 `json:"position_s"`
	Rate            float64 `json:"rate"`
}

// New wires a session over a frame source and a projected-view renderer.
// The output raster is w×h until Resize.
func New(source frames.Source, renderer Renderer, w, h int) *Session {
	state := orientation.NewState()
	modes := viewmode.NewController(state)
	return &Session{
		state:     state,
		modes:     modes,
		navigator: input.NewNavigator(state, modes),
		projector: projection.New(state),
		source:    source,
		renderer:  renderer,
		output:    render.NewImageSurface(w, h),
		width:     w,
		height:    h,
	}
}

// Dispatch is the single entry point for input. Pointer, wheel and pinch
// events go to the navigator; key presses go through the session keymap.
func (s *Session) Dispatch(e input.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch e.Kind {
	case input.PointerDown, input.PointerMove, input.PointerUp, input.Wheel, input.PinchUpdate:
		s.navigator.Handle(e)
	case input.KeyPress:
		s.handleKeyLocked(e.Code)
	}
}

// handleKeyLocked routes one key press. Codes use the KeyboardEvent.code
// spelling so the desktop shell and the web shell share one map. Caller
// holds s.mu.
func (s *Session) handleKeyLocked(code string) {
	switch code {
	case "Digit1":
		s.modes.Set(viewmode.Stitched)
	case "Digit2":
		s.modes.Set(viewmode.Front)
	case "Digit3":
		s.modes.Set(viewmode.Back)
	case "Digit4":
		s.modes.Set(viewmode.Flat)
	case "Digit5":
		s.modes.Set(viewmode.Raw)
	case "KeyC":
		s.state.CalibrateFront()
		log.Printf("session: front calibrated, lens offset now %.1f deg", s.state.FrontLensOffset())
	case "KeyR":
		s.modes.Reset()
	case "Space":
		if pb, ok := s.source.(frames.Playback); ok {
			if pb.Playing() {
				pb.Pause()
			} else {
				pb.Play()
			}
		}
	case "ArrowLeft":
		if !s.modes.Locked() {
			s.state.AdjustPan(-nudgeStepDeg)
		}
	case "ArrowRight":
		if !s.modes.Locked() {
			s.state.AdjustPan(nudgeStepDeg)
		}
	case "ArrowUp":
		if !s.modes.Locked() {
			s.state.AdjustTilt(nudgeStepDeg)
		}
	case "ArrowDown":
		if !s.modes.Locked() {
			s.state.AdjustTilt(-nudgeStepDeg)
		}
	case "Equal":
		s.state.AdjustZoom(-zoomStepDeg)
	case "Minus":
		s.state.AdjustZoom(zoomStepDeg)
	case "KeyM":
		o := s.state.Current()
		s.marks = append(s.marks, o)
		log.Printf("session: mark %d at pan=%.1f tilt=%.1f zoom=%.1f", len(s.marks), o.Pan, o.Tilt, o.Zoom)
	case "KeyJ":
		if len(s.marks) == 0 {
			return
		}
		if s.modes.Locked() {
			log.Println("session: ignoring mark jump while orientation is locked")
			return
		}
		s.state.SetOrientation(s.marks[len(s.marks)-1])
	}
}

// Tick renders exactly one view into the output raster: the raw lens view
// when Raw is active, the projected spherical view otherwise. Never both.
func (s *Session) Tick() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.modes.Current() == viewmode.Raw {
		s.tickRawLocked()
		return
	}
	s.tickProjectedLocked()
}

func (s *Session) tickProjectedLocked() {
	// The camera is rebuilt from orientation state on every tick, nothing
	// carries over between frames.
	s.projector.Apply(s.renderer)

	frame, err := s.renderer.RenderFrame()
	if err != nil {
		log.Printf("session: projected render failed, keeping previous frame: %v", err)
		return
	}
	if err := s.output.DrawImage(frame, frame.Bounds(), image.Rect(0, 0, s.width, s.height)); err != nil {
		log.Printf("session: output blit failed, skipping frame: %v", err)
	}
}

func (s *Session) tickRawLocked() {
	if !s.modes.RawPrimed() {
		half := s.width / 2
		s.front = render.NewImageSurface(half, s.height)
		s.back = render.NewImageSurface(s.width-half, s.height)
		s.modes.MarkRawPrimed()
		log.Printf("session: raw lens surfaces sized %dx%d", half, s.height)
	}

	frame, ok := s.source.Frame()
	if !ok {
		frame = nil // per-lens placeholders take over
	}
	if err := s.extractor.RenderLens(s.front, frame, extract.LensFront); err != nil {
		log.Printf("session: front lens draw failed, skipping frame: %v", err)
		return
	}
	if err := s.extractor.RenderLens(s.back, frame, extract.LensBack); err != nil {
		log.Printf("session: back lens draw failed, skipping frame: %v", err)
		return
	}

	s.output.Fill(color.Black)
	half := s.width / 2
	fi := s.front.Image()
	bi := s.back.Image()
	if err := s.output.DrawImage(fi, fi.Bounds(), image.Rect(0, 0, half, s.height)); err != nil {
		log.Printf("session: raw composite failed: %v", err)
		return
	}
	if err := s.output.DrawImage(bi, bi.Bounds(), image.Rect(half, 0, s.width, s.height)); err != nil {
		log.Printf("session: raw composite failed: %v", err)
	}
}

// Output exposes the composited raster for the hosting shell to present.
// Valid until the next Tick; callers on other goroutines use OutputCopy.
func (s *Session) Output() *image.NRGBA {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.output.Image()
}

// OutputCopy returns a snapshot of the output raster that stays valid
// across ticks.
func (s *Session) OutputCopy() *image.NRGBA {
	s.mu.Lock()
	defer s.mu.Unlock()
	img := s.output.Image()
	cp := image.NewNRGBA(img.Bounds())
	copy(cp.Pix, img.Pix)
	return cp
}

// State captures the current snapshot for telemetry and remote UIs.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	o := s.state.Current()
	st := State{
		Mode:            s.modes.Current().String(),
		Pan:             o.Pan,
		Tilt:            o.Tilt,
		Zoom:            o.Zoom,
		NormalizedPan:   s.state.NormalizedPan(),
		FrontLensOffset: s.state.FrontLensOffset(),
		Locked:          s.modes.Locked(),
		Marks:           len(s.marks),
		Rate:            1,
	}
	if pb, ok := s.source.(frames.Playback); ok {
		st.Playing = pb.Playing()
		st.PositionS = pb.Position().Seconds()
		st.Rate = pb.Rate()
	}
	return st
}

// Resize adjusts every raster to the new viewport. Raw lens surfaces are
// rebuilt immediately when they exist; otherwise the next raw tick sizes
// them.
func (s *Session) Resize(w, h int) {
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if w == s.width && h == s.height {
		return
	}
	s.width, s.height = w, h
	s.output.Resize(w, h)
	s.renderer.Resize(w, h)
	if s.modes.RawPrimed() {
		half := w / 2
		s.front = render.NewImageSurface(half, h)
		s.back = render.NewImageSurface(w-half, h)
	}
	log.Printf("session: viewport resized to %dx%d", w, h)
}

// SetMode switches the view mode, remote-command surface for the web shell.
func (s *Session) SetMode(m viewmode.Mode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.modes.Set(m)
}

// Calibrate folds the current pan into the front lens offset.
func (s *Session) Calibrate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.CalibrateFront()
}

// ResetView re-applies the active mode's entry action, or restores the
// initial orientation in the free modes.
func (s *Session) ResetView() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.modes.Reset()
}

// SetFrontLensOffset overrides the heading correction, config wiring at
// startup.
func (s *Session) SetFrontLensOffset(deg float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.SetFrontLensOffset(deg)
}

// Playback exposes the source's transport controls when it has any.
func (s *Session) Playback() (frames.Playback, bool) {
	pb, ok := s.source.(frames.Playback)
	return pb, ok
}

// Marks returns a copy of the recorded orientation marks.
func (s *Session) Marks() []orientation.Orientation {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]orientation.Orientation, len(s.marks))
	copy(out, s.marks)
	return out
}
