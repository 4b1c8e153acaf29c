package extract

import (
	"fmt"
	"image"
	"image/color"
)

// Surface is a 2D destination the extractor draws into: a region blit for
// image data plus fill/text for the placeholder path. Implemented by
// render.ImageSurface; a browser canvas or GPU quad would satisfy it the
// same way.
type Surface interface {
	Size() (w, h int)
	Fill(c color.Color)
	DrawImage(src image.Image, srcRect, dstRect image.Rectangle) error
	DrawText(x, y int, text string)
}

// Extractor crops one dual-lens frame into per-lens sub-images, each scaled
// to fit its own destination surface. It never rotates and never dewarps:
// raw means the uncorrected lens image, kept that way for evidentiary
// fidelity. The front/back destinations are independent and need not match
// each other in size.
type Extractor struct{}

// RenderLens draws one lens half of the frame onto dst, letterboxed. A nil
// or zero-sized frame, or a zero-sized destination, degrades to a
// placeholder; a failed blit is reported so the caller can log and skip the
// frame. The destination rectangle is recomputed on every call, so a resize
// between frames can never leave a stale layout.
func (Extractor) RenderLens(dst Surface, frame image.Image, lens Lens) error {
	dw, dh := dst.Size()

	var fw, fh int
	var bounds image.Rectangle
	if frame != nil {
		bounds = frame.Bounds()
		fw, fh = bounds.Dx(), bounds.Dy()
	}

	sr := SourceRect(lens, fw, fh).Add(bounds.Min)
	dr, ok := Fit(sr.Dx(), sr.Dy(), dw, dh)
	if !ok {
		Placeholder(dst, lens.Label())
		return nil
	}

	dst.Fill(color.Black)
	if err := dst.DrawImage(frame, sr, dr); err != nil {
		return fmt.Errorf("draw %s lens: %w", lens, err)
	}
	return nil
}

// Placeholder paints a label and a waiting line instead of image data.
// Retried every tick until the source becomes decodable.
func Placeholder(dst Surface, label string) {
	_, dh := dst.Size()
	dst.Fill(color.Black)
	mid := dh / 2
	dst.DrawText(8, mid-7, label)
	dst.DrawText(8, mid+8, "Waiting for frame...")
}
