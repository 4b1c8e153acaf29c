// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package extract

import (
	"fmt"
	"image"
	"math"
)

// Lens names one half of a dual-lens frame. The recording stores both lens
// feeds in a single frame split at the horizontal midline: front on the
// left, back on the right.
type Lens int

const (
	LensFront Lens = iota
	LensBack
)

func (l Lens) String() string {
	switch l {
	case LensFront:
		return "front"
	case LensBack:
		return "back"
	}
	return fmt.Sprintf("lens(%d)", int(l))
}

// Label is the operator-facing caption used on placeholders.
func (l Lens) Label() string {
	switch l {
	case LensFront:
		return "FRONT LENS"
	case LensBack:
		return "BACK LENS"
	}
	return "LENS"
}

// SourceRect returns the region of a w×h frame covered by one lens:
// front = [0,w/2)×[0,h), back = [w/2,w)×[0,h). Coordinates are relative to
// the frame origin.
func SourceRect(l Lens, w, h int) image.Rectangle {
	half := w / 2
	switch l {
	case LensFront:
		return image.Rect(0, 0, half, h)
	case LensBack:
		return image.Rect(half, 0, w, h)
	}
	return image.Rectangle{}
}

// Fit computes the centered, aspect-preserving (letterboxed) placement of a
// srcW×srcH region inside a dw×dh destination:
//
//	scale = min(dw/srcW, dh/srcH)
//	draw  = src * scale, centered
//
// ok is false when any side is not positive; the caller renders a
// placeholder instead. The guard is what keeps a zero-sized source or a
// mid-resize zero-sized destination from pushing NaN into draw coordinates.
func Fit(srcW, srcH, dw, dh int) (image.Rectangle, bool) {
	if srcW <= 0 || srcH <= 0 || dw <= 0 || dh <= 0 {
		return image.Rectangle{}, false
	}
	scale := math.Min(float64(dw)/float64(srcW), float64(dh)/float64(srcH))
	drawW := float64(srcW) * scale
	drawH := float64(srcH) * scale
	x := (float64(dw) - drawW) / 2
	y := (float64(dh) - drawH) / 2
	return image.Rect(
		int(math.Round(x)),
		int(math.Round(y)),
		int(math.Round(x+drawW)),
		int(math.Round(y+drawH)),
	), true
}
