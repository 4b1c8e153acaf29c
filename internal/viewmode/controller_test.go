package viewmode

import (
	"testing"

	"github.com/relabs-tech/evidence_viewer/internal/orientation"
)

func TestModeStringRoundTrip(t *testing.T) {
	for _, m := range []Mode{Stitched, Front, Back, Flat, Raw} {
		got, err := Parse(m.String())
		if err != nil {
			t.Fatalf("Parse(%q): %v", m.String(), err)
		}
		if got != m {
			t.Errorf("Parse(%q) = %v, want %v", m.String(), got, m)
		}
	}
	if _, err := Parse("fisheye"); err == nil {
		t.Errorf("Parse of unknown mode succeeded, want error")
	}
}

func TestFrontEntryIsIdempotent(t *testing.T) {
	st := orientation.NewState()
	c := NewController(st)

	st.SetPan(123)
	st.SetTilt(45)
	st.SetZoom(30)

	c.Set(Front)
	first := st.Current()

	c.Set(Front)
	second := st.Current()

	want := orientation.Orientation{Pan: 0, Tilt: 0, Zoom: orientation.DefaultZoom}
	if first != want || second != want {
		t.Errorf("Front entry: first %+v second %+v, want %+v both times", first, second, want)
	}
	if !c.Locked() {
		t.Errorf("Front must lock orientation")
	}
}

func TestEntryActionsPerMode(t *testing.T) {
	cases := []struct {
		mode    Mode
		wantPan float64
		locked  bool
	}{
		{Front, 0, true},
		{Flat, 0, true},
		{Back, 180, true},
	}
	for _, tc := range cases {
		st := orientation.NewState()
		st.SetPan(99)
		st.SetTilt(-40)
		st.SetZoom(50)
		c := NewController(st)

		c.Set(tc.mode)
		got := st.Current()
		if got.Pan != tc.wantPan || got.Tilt != 0 || got.Zoom != orientation.DefaultZoom {
			t.Errorf("%v entry: got %+v, want pan=%v tilt=0 zoom=%v", tc.mode, got, tc.wantPan, orientation.DefaultZoom)
		}
		if c.Locked() != tc.locked {
			t.Errorf("%v entry: locked=%v, want %v", tc.mode, c.Locked(), tc.locked)
		}
	}
}

func TestStitchedEntryKeepsOrientationAndUnlocks(t *testing.T) {
	st := orientation.NewState()
	c := NewController(st)

	c.Set(Front)
	st.AdjustZoom(-10) // zoom is adjustable under lock
	c.Set(Stitched)

	if c.Locked() {
		t.Errorf("Stitched must unlock")
	}
	if got := st.Zoom(); got != orientation.DefaultZoom-10 {
		t.Errorf("Stitched entry changed zoom to %v, want %v untouched", got, orientation.DefaultZoom-10)
	}
}

func TestResetReAppliesNamedViewEntry(t *testing.T) {
	st := orientation.NewState()
	c := NewController(st)

	c.Set(Back)
	st.AdjustZoom(-50)
	c.Reset()

	got := st.Current()
	if got.Pan != 180 || got.Tilt != 0 || got.Zoom != orientation.DefaultZoom {
		t.Errorf("reset in Back: got %+v, want pan=180 tilt=0 zoom=%v", got, orientation.DefaultZoom)
	}
}

func TestResetInStitchedRestoresInitial(t *testing.T) {
	st := orientation.NewState()
	c := NewController(st)

	st.AdjustPan(77)
	st.AdjustTilt(33)
	c.Reset()

	got := st.Current()
	want := orientation.Orientation{Pan: 0, Tilt: 0, Zoom: orientation.DefaultZoom}
	if got != want {
		t.Errorf("reset in Stitched: got %+v, want %+v", got, want)
	}
}

func TestCalibrationSurvivesStitchedReset(t *testing.T) {
	st := orientation.NewState()
	c := NewController(st)

	st.SetPan(264)
	st.CalibrateFront()
	if got := st.FrontLensOffset(); got != -264 {
		t.Fatalf("offset = %v, want -264", got)
	}

	c.Set(Stitched)
	st.AdjustPan(40)
	c.Reset()
	if got := st.Pan(); got != 0 {
		t.Errorf("pan after stitched reset = %v, want 0 (calibrated home)", got)
	}
}

func TestRawEntryInvalidatesPrimedFlag(t *testing.T) {
	st := orientation.NewState()
	c := NewController(st)

	c.Set(Raw)
	if c.RawPrimed() {
		t.Fatalf("raw flag primed immediately after entry")
	}
	c.MarkRawPrimed()
	if !c.RawPrimed() {
		t.Fatalf("MarkRawPrimed did not stick")
	}

	// Leaving and re-entering Raw must force a fresh probe.
	c.Set(Stitched)
	c.Set(Raw)
	if c.RawPrimed() {
		t.Errorf("raw flag still primed after re-entry")
	}
}
