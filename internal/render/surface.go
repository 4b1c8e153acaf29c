package render

import (
	"fmt"
	"image"
	"image/color"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// ImageSurface is an NRGBA-backed 2D drawing surface: the software analog of
// a canvas. It satisfies extract.Surface and is what the session composes
// lens views and placeholders onto.
type ImageSurface struct {
	img *image.NRGBA
}

// NewImageSurface allocates a surface. Non-positive dimensions yield an
// empty surface whose draws are no-ops, which is what a mid-resize zero
// layout degrades to.
func NewImageSurface(w, h int) *ImageSurface {
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	return &ImageSurface{img: image.NewNRGBA(image.Rect(0, 0, w, h))}
}

func surfaceOver(img *image.NRGBA) *ImageSurface {
	return &ImageSurface{img: img}
}

// Size returns the surface dimensions.
func (s *ImageSurface) Size() (int, int) {
	b := s.img.Bounds()
	return b.Dx(), b.Dy()
}

// Image exposes the backing pixels for compositing and encoding.
func (s *ImageSurface) Image() *image.NRGBA {
	return s.img
}

// Resize reallocates the backing image. Content is dropped; the next tick
// redraws everything anyway.
func (s *ImageSurface) Resize(w, h int) {
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	s.img = image.NewNRGBA(image.Rect(0, 0, w, h))
}

// Fill floods the surface with one color.
func (s *ImageSurface) Fill(c color.Color) {
	xdraw.Draw(s.img, s.img.Bounds(), image.NewUniform(c), image.Point{}, xdraw.Src)
}

// DrawImage scales the source region into the destination rectangle with
// bilinear filtering. A source rectangle that falls outside the frame is the
// "unsupported source state" case: reported to the caller, which logs and
// skips the frame.
func (s *ImageSurface) DrawImage(src image.Image, sr, dr image.Rectangle) error {
	if src == nil {
		return fmt.Errorf("nil source image")
	}
	if !sr.In(src.Bounds()) {
		return fmt.Errorf("source rect %v outside frame bounds %v", sr, src.Bounds())
	}
	if dr.Empty() || sr.Empty() {
		return nil
	}
	xdraw.ApproxBiLinear.Scale(s.img, dr, src, sr, xdraw.Over, nil)
	return nil
}

// DrawText renders a line of 7x13 text with its baseline at (x, y).
func (s *ImageSurface) DrawText(x, y int, text string) {
	drawer := &font.Drawer{
		Dst:  s.img,
		Src:  image.NewUniform(color.White),
		Face: basicfont.Face7x13,
	}
	drawer.Dot = fixed.P(x, y)
	drawer.DrawString(text)
}
