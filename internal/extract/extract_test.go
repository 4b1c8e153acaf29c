package extract

import (
	"errors"
	"image"
	"image/color"
	"testing"
)

// fakeSurface records calls so tests can tell a placeholder draw from a
// crop/scale draw.
type fakeSurface struct {
	w, h       int
	fills      int
	drawCalls  int
	textCalls  int
	texts      []string
	lastSrc    image.Rectangle
	lastDst    image.Rectangle
	failDraw   error
	drawErrors int
}

func (f *fakeSurface) Size() (int, int) { return f.w, f.h }
func (f *fakeSurface) Fill(c color.Color) { f.fills++ }

func (f *fakeSurface) DrawText(x, y int, s string) {
	f.textCalls++
	f.texts = append(f.texts, s)
}

func (f *fakeSurface) DrawImage(src image.Image, sr, dr image.Rectangle) error {
	if f.failDraw != nil {
		f.drawErrors++
		return f.failDraw
	}
	f.drawCalls++
	f.lastSrc = sr
	f.lastDst = dr
	return nil
}

func TestFitMatchesWidthLimitedExample(t *testing.T) {
	// A 7680×1920 dual frame: each lens half is 3840×1920. Into 800×600
	// the width limits the scale: 800×400 centered at (0,100).
	dr, ok := Fit(3840, 1920, 800, 600)
	if !ok {
		t.Fatalf("Fit returned not-ok for valid dims")
	}
	want := image.Rect(0, 100, 800, 500)
	if dr != want {
		t.Errorf("Fit = %v, want %v", dr, want)
	}
}

func TestFitHeightLimited(t *testing.T) {
	// Square lens half into a wide destination: height limits the scale.
	dr, ok := Fit(1920, 1920, 800, 600)
	if !ok {
		t.Fatalf("Fit returned not-ok for valid dims")
	}
	want := image.Rect(100, 0, 700, 600)
	if dr != want {
		t.Errorf("Fit = %v, want %v", dr, want)
	}
}

func TestFitGuardsZeroDims(t *testing.T) {
	cases := [][4]int{
		{0, 1920, 800, 600},
		{3840, 0, 800, 600},
		{3840, 1920, 0, 600},
		{3840, 1920, 800, 0},
		{-10, 1920, 800, 600},
	}
	for _, c := range cases {
		if _, ok := Fit(c[0], c[1], c[2], c[3]); ok {
			t.Errorf("Fit(%v) = ok, want not-ok (division guard)", c)
		}
	}
}

func TestSourceRectSplitsAtMidline(t *testing.T) {
	front := SourceRect(LensFront, 7680, 1920)
	back := SourceRect(LensBack, 7680, 1920)
	if front != image.Rect(0, 0, 3840, 1920) {
		t.Errorf("front rect = %v", front)
	}
	if back != image.Rect(3840, 0, 7680, 1920) {
		t.Errorf("back rect = %v", back)
	}
	if front.Intersect(back) != (image.Rectangle{}) {
		t.Errorf("lens regions overlap: %v ∩ %v", front, back)
	}
}

func TestRenderLensDrawsLetterboxedHalf(t *testing.T) {
	frame := image.NewNRGBA(image.Rect(0, 0, 7680, 1920))
	dst := &fakeSurface{w: 800, h: 600}
	var x Extractor

	if err := x.RenderLens(dst, frame, LensBack); err != nil {
		t.Fatalf("RenderLens: %v", err)
	}
	if dst.drawCalls != 1 {
		t.Fatalf("draw calls = %d, want 1", dst.drawCalls)
	}
	if dst.lastSrc != image.Rect(3840, 0, 7680, 1920) {
		t.Errorf("source rect = %v, want back half", dst.lastSrc)
	}
	if dst.lastDst != image.Rect(0, 100, 800, 500) {
		t.Errorf("dest rect = %v, want letterboxed 800×400 at (0,100)", dst.lastDst)
	}
	if dst.textCalls != 0 {
		t.Errorf("placeholder text drawn on a ready frame")
	}
}

func TestIndependentDestinationSizes(t *testing.T) {
	frame := image.NewNRGBA(image.Rect(0, 0, 7680, 1920))
	var x Extractor

	small := &fakeSurface{w: 320, h: 240}
	large := &fakeSurface{w: 1600, h: 400}
	if err := x.RenderLens(small, frame, LensFront); err != nil {
		t.Fatalf("small: %v", err)
	}
	if err := x.RenderLens(large, frame, LensFront); err != nil {
		t.Fatalf("large: %v", err)
	}
	if small.lastDst != image.Rect(0, 40, 320, 200) {
		t.Errorf("small dest = %v, want 320×160 at (0,40)", small.lastDst)
	}
	if large.lastDst != image.Rect(400, 0, 1200, 400) {
		t.Errorf("large dest = %v, want 800×400 at (400,0)", large.lastDst)
	}
}

func TestZeroWidthFrameProducesPlaceholderNotDraw(t *testing.T) {
	frame := image.NewNRGBA(image.Rect(0, 0, 0, 1920))
	dst := &fakeSurface{w: 800, h: 600}
	var x Extractor

	if err := x.RenderLens(dst, frame, LensFront); err != nil {
		t.Fatalf("RenderLens: %v", err)
	}
	if dst.drawCalls != 0 {
		t.Errorf("crop/scale draw on a 0-width frame (%d calls)", dst.drawCalls)
	}
	if dst.textCalls == 0 {
		t.Errorf("no placeholder draw call for a 0-width frame")
	}
	if len(dst.texts) > 0 && dst.texts[0] != "FRONT LENS" {
		t.Errorf("placeholder label = %q, want FRONT LENS", dst.texts[0])
	}
}

func TestNilFrameProducesPlaceholder(t *testing.T) {
	dst := &fakeSurface{w: 800, h: 600}
	var x Extractor
	if err := x.RenderLens(dst, nil, LensBack); err != nil {
		t.Fatalf("RenderLens: %v", err)
	}
	if dst.drawCalls != 0 || dst.textCalls == 0 {
		t.Errorf("nil frame: draws=%d texts=%d, want placeholder only", dst.drawCalls, dst.textCalls)
	}
}

func TestZeroSizedDestinationNeverDividesByZero(t *testing.T) {
	frame := image.NewNRGBA(image.Rect(0, 0, 7680, 1920))
	dst := &fakeSurface{w: 0, h: 0}
	var x Extractor
	if err := x.RenderLens(dst, frame, LensFront); err != nil {
		t.Fatalf("RenderLens: %v", err)
	}
	if dst.drawCalls != 0 {
		t.Errorf("image draw into zero-sized destination")
	}
}

func TestDrawFailureIsReportedNotSwallowed(t *testing.T) {
	frame := image.NewNRGBA(image.Rect(0, 0, 7680, 1920))
	cause := errors.New("surface detached")
	dst := &fakeSurface{w: 800, h: 600, failDraw: cause}
	var x Extractor

	err := x.RenderLens(dst, frame, LensFront)
	if !errors.Is(err, cause) {
		t.Fatalf("err = %v, want wrapped %v", err, cause)
	}
}
