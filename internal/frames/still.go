package frames

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
)

// StillSource serves a single decoded still, typically an exported
// equirectangular frame or a dual-lens grab. Useful for calibration work
// where the operator lines up on a fixed scene.
type StillSource struct {
	img image.Image
}

// NewStillSource decodes the image at path. PNG and JPEG are registered.
func NewStillSource(path string) (*StillSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open still: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode still %s: %w", path, err)
	}
	return &StillSource{img: img}, nil
}

func (s *StillSource) Frame() (image.Image, bool) {
	return s.img, true
}

func (s *StillSource) Dims() (int, int) {
	b := s.img.Bounds()
	return b.Dx(), b.Dy()
}
