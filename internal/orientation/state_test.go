package orientation

import (
	"math"
	"testing"
)

func TestTiltClampHoldsForAnyMagnitude(t *testing.T) {
	for _, delta := range []float64{-1e6, -500, -90.0001, -1, 0, 1, 89.9, 91, 500, 1e6} {
		s := NewState()
		s.AdjustTilt(delta)
		if got := s.Tilt(); got < MinTilt || got > MaxTilt {
			t.Errorf("AdjustTilt(%v): tilt %v outside [%v,%v]", delta, got, MinTilt, MaxTilt)
		}

		s = NewState()
		s.SetTilt(delta)
		if got := s.Tilt(); got < MinTilt || got > MaxTilt {
			t.Errorf("SetTilt(%v): tilt %v outside [%v,%v]", delta, got, MinTilt, MaxTilt)
		}
	}
}

func TestZoomClampHoldsForAnyMagnitude(t *testing.T) {
	for _, delta := range []float64{-1e6, -101, -5, 0, 5, 19.9, 120.1, 1e6} {
		s := NewState()
		s.AdjustZoom(delta)
		if got := s.Zoom(); got < MinZoom || got > MaxZoom {
			t.Errorf("AdjustZoom(%v): zoom %v outside [%v,%v]", delta, got, MinZoom, MaxZoom)
		}
	}
	s := NewState()
	s.SetZoom(math.Inf(1))
	if got := s.Zoom(); got != MaxZoom {
		t.Errorf("SetZoom(+Inf): got %v, want %v", got, MaxZoom)
	}
	s.SetZoom(math.Inf(-1))
	if got := s.Zoom(); got != MinZoom {
		t.Errorf("SetZoom(-Inf): got %v, want %v", got, MinZoom)
	}
}

func TestPanIsUnbounded(t *testing.T) {
	s := NewState()
	s.AdjustPan(725)
	if got := s.Pan(); got != 725 {
		t.Errorf("stored pan = %v, want 725 (pan must not be clamped or wrapped)", got)
	}
	s.AdjustPan(-1450)
	if got := s.Pan(); got != -725 {
		t.Errorf("stored pan = %v, want -725", got)
	}
}

func TestNormalizedPanRangeAndCongruence(t *testing.T) {
	cases := []float64{0, 1, 359.5, 360, 361, 725, -1, -0.5, -360, -725, 123456.75, -98765.25}
	for _, pan := range cases {
		s := NewState()
		s.SetPan(pan)
		n := s.NormalizedPan()
		if n < 0 || n >= 360 {
			t.Errorf("pan=%v: NormalizedPan()=%v outside [0,360)", pan, n)
		}
		// n and pan must be congruent modulo 360.
		diff := math.Mod(n-pan, 360)
		if math.Abs(diff) > 1e-9 && math.Abs(math.Abs(diff)-360) > 1e-9 {
			t.Errorf("pan=%v: NormalizedPan()=%v not congruent mod 360 (diff %v)", pan, n, diff)
		}
		if got := s.Pan(); got != pan {
			t.Errorf("pan=%v: NormalizedPan mutated stored pan to %v", pan, got)
		}
	}
}

func TestSetOrientationClampsTiltAndZoom(t *testing.T) {
	s := NewState()
	s.SetOrientation(Orientation{Pan: 400, Tilt: -250, Zoom: 3})
	if got := s.Pan(); got != 400 {
		t.Errorf("pan = %v, want 400", got)
	}
	if got := s.Tilt(); got != MinTilt {
		t.Errorf("tilt = %v, want %v", got, MinTilt)
	}
	if got := s.Zoom(); got != MinZoom {
		t.Errorf("zoom = %v, want %v", got, MinZoom)
	}
}

func TestRestoreInitialReturnsHome(t *testing.T) {
	s := NewState()
	s.AdjustPan(73)
	s.AdjustTilt(-20)
	s.AdjustZoom(-30)
	s.RestoreInitial()
	got := s.Current()
	want := Orientation{Pan: 0, Tilt: 0, Zoom: DefaultZoom}
	if got != want {
		t.Errorf("after RestoreInitial: %+v, want %+v", got, want)
	}
}
