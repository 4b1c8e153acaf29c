package render

import (
	"image"
	"image/color"
	"testing"
)

func TestImageSurfaceFillAndSize(t *testing.T) {
	s := NewImageSurface(10, 6)
	if w, h := s.Size(); w != 10 || h != 6 {
		t.Fatalf("Size() = %d×%d, want 10×6", w, h)
	}
	s.Fill(color.NRGBA{R: 255, A: 255})
	if c := s.Image().NRGBAAt(5, 3); c.R != 255 || c.G != 0 {
		t.Errorf("pixel after fill = %+v, want solid red", c)
	}
}

func TestImageSurfaceDrawImageScales(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			src.SetNRGBA(x, y, color.NRGBA{G: 255, A: 255})
		}
	}
	s := NewImageSurface(8, 8)
	s.Fill(color.NRGBA{A: 255})
	if err := s.DrawImage(src, src.Bounds(), image.Rect(0, 0, 8, 8)); err != nil {
		t.Fatalf("DrawImage: %v", err)
	}
	for _, p := range []image.Point{{0, 0}, {4, 4}, {7, 7}} {
		if c := s.Image().NRGBAAt(p.X, p.Y); c.G < 200 {
			t.Errorf("pixel %v = %+v, want scaled-up green", p, c)
		}
	}
}

func TestImageSurfaceDrawImageRejectsOutOfBoundsSource(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	s := NewImageSurface(8, 8)
	if err := s.DrawImage(src, image.Rect(0, 0, 10, 10), image.Rect(0, 0, 8, 8)); err == nil {
		t.Errorf("expected error for source rect outside source bounds")
	}
	if err := s.DrawImage(nil, image.Rect(0, 0, 4, 4), image.Rect(0, 0, 8, 8)); err == nil {
		t.Errorf("expected error for nil source")
	}
}

func TestImageSurfaceDrawTextLeavesInk(t *testing.T) {
	s := NewImageSurface(120, 20)
	s.Fill(color.NRGBA{A: 255})
	s.DrawText(2, 14, "FRONT LENS")
	ink := 0
	for y := 0; y < 20; y++ {
		for x := 0; x < 120; x++ {
			if c := s.Image().NRGBAAt(x, y); c.R > 200 {
				ink++
			}
		}
	}
	if ink == 0 {
		t.Errorf("DrawText left no visible pixels")
	}
}

func TestImageSurfaceResizeDropsContent(t *testing.T) {
	s := NewImageSurface(6, 6)
	s.Fill(color.NRGBA{B: 255, A: 255})
	s.Resize(12, 4)
	if w, h := s.Size(); w != 12 || h != 4 {
		t.Fatalf("Size() after resize = %d×%d, want 12×4", w, h)
	}
	if c := s.Image().NRGBAAt(3, 2); c.B != 0 {
		t.Errorf("pixel after resize = %+v, want cleared raster", c)
	}
}
