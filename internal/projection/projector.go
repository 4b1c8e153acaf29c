package projection

import (
	"math"

	"github.com/relabs-tech/evidence_viewer/internal/orientation"
)

// Camera is the transform handed to a 3D renderer each frame: a yaw/pitch
// pair in radians applied yaw-then-pitch (extrinsic, so tilt never induces
// roll) and a vertical field of view in degrees.
type Camera struct {
	Yaw   float64 `json:"yaw_rad"`
	Pitch float64 `json:"pitch_rad"`
	FOV   float64 `json:"fov_deg"`
}

// CameraTarget accepts camera updates. Satisfied by the software renderer;
// a GPU-backed renderer would slot in the same way.
type CameraTarget interface {
	SetCamera(Camera)
}

// Projector converts the orientation state into a Camera. The conversion is
// cheap and purely a function of current state, so it is recomputed on every
// rendered frame; last write wins, nothing is cached.
type Projector struct {
	state *orientation.State
}

func New(state *orientation.State) *Projector {
	return &Projector{state: state}
}

// Camera derives the current transform. The lens offset is added to pan
// before the radian conversion and only to pan, which keeps calibration a
// pure additive heading correction independent of tilt and zoom.
func (p *Projector) Camera() Camera {
	o, offset := p.state.ViewParams()
	return Camera{
		Yaw:   toRadians(o.Pan + offset),
		Pitch: toRadians(o.Tilt),
		FOV:   o.Zoom,
	}
}

// Apply pushes the current transform to a renderer.
func (p *Projector) Apply(t CameraTarget) {
	t.SetCamera(p.Camera())
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
