package orientation

import (
	"math"
	"testing"
)

func TestCalibrateFrontFoldsPanIntoOffset(t *testing.T) {
	s := NewState()
	s.SetPan(37.5)
	s.SetTilt(-12)
	s.SetZoom(60)

	s.CalibrateFront()

	if got := s.FrontLensOffset(); math.Abs(got-(-37.5)) > 1e-9 {
		t.Errorf("offset = %v, want -37.5", got)
	}
	if got := s.Pan(); got != 0 {
		t.Errorf("pan = %v, want 0", got)
	}
	if got := s.Initial().Pan; got != 0 {
		t.Errorf("initial pan = %v, want 0", got)
	}
	// Tilt/zoom and their initial snapshots stay put.
	if got := s.Tilt(); got != -12 {
		t.Errorf("tilt = %v, want -12 (calibration must not touch tilt)", got)
	}
	if got := s.Zoom(); got != 60 {
		t.Errorf("zoom = %v, want 60 (calibration must not touch zoom)", got)
	}
	if got := s.Initial(); got.Tilt != 0 || got.Zoom != DefaultZoom {
		t.Errorf("initial tilt/zoom = %v/%v, want 0/%v", got.Tilt, got.Zoom, DefaultZoom)
	}
}

func TestRepeatCalibrationConvergesAtZero(t *testing.T) {
	s := NewState()
	s.SetPan(200)
	s.CalibrateFront()
	if got := s.FrontLensOffset(); got != -200 {
		t.Fatalf("first calibration: offset = %v, want -200", got)
	}

	// The operator has not moved, so pan is zero and a repeat press
	// re-derives the offset from it. Every press after that holds the
	// same fixed point.
	s.CalibrateFront()
	if got := s.FrontLensOffset(); got != 0 {
		t.Errorf("second calibration: offset = %v, want 0 (re-derived from pan=0)", got)
	}
	s.CalibrateFront()
	if got := s.FrontLensOffset(); got != 0 {
		t.Errorf("third calibration: offset = %v, want 0", got)
	}
	if got := s.Pan(); got != 0 {
		t.Errorf("pan = %v, want 0", got)
	}
}

func TestCalibrateThenRestoreInitialKeepsCalibratedFront(t *testing.T) {
	s := NewState()
	s.SetPan(145)
	s.CalibrateFront()

	// Later the operator wanders off and resets: home must be the calibrated
	// front (pan 0), not the pre-calibration heading.
	s.AdjustPan(511)
	s.RestoreInitial()
	if got := s.Pan(); got != 0 {
		t.Errorf("pan after reset = %v, want 0", got)
	}
	if got := s.FrontLensOffset(); got != -145 {
		t.Errorf("offset = %v, want -145 (reset must not undo calibration)", got)
	}
}
