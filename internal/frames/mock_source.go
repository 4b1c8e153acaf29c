// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package frames

import (
	"image"
	"image/color"
	"math"
	"sync"
	"time"
)

// mockSource generates a synthetic equirectangular test pattern: a gradient
// sphere with meridian/parallel grid lines every 30° and a bright meridian
// band that sweeps around the sphere so motion is visible without a
// recording attached.
type mockSource struct {
	mu    sync.Mutex
	start time.Time
	w, h  int

	cachePhase int
	cacheImg   *image.NRGBA
}

// NewMockSource creates a mock frame source of the given size; non-positive
// dimensions fall back to 1024×512.
func NewMockSource(w, h int) Source {
	if w <= 0 || h <= 0 {
		w, h = 1024, 512
	}
	return &mockSource{start: time.Now(), w: w, h: h}
}

func (m *mockSource) Frame() (image.Image, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	elapsed := time.Since(m.start).Seconds()
	phase := int(math.Mod(elapsed*30, 360)) // sweep 30°/s

	if m.cacheImg != nil && phase == m.cachePhase {
		return m.cacheImg, true
	}

	img := image.NewNRGBA(image.Rect(0, 0, m.w, m.h))
	for y := 0; y < m.h; y++ {
		lat := 90 - (float64(y)+0.5)/float64(m.h)*180
		for x := 0; x < m.w; x++ {
			lon := (float64(x) + 0.5) / float64(m.w) * 360

			c := color.NRGBA{
				R: uint8(30 + 190*x/m.w),
				G: uint8(30 + 190*y/m.h),
				B: 90,
				A: 255,
			}
			if math.Mod(lon, 30) < 0.8 || math.Mod(math.Abs(lat), 30) < 0.8 {
				c = color.NRGBA{R: 210, G: 210, B: 210, A: 255}
			}
			// Sweeping highlight band, shortest angular distance.
			d := math.Abs(math.Mod(lon-float64(phase)+540, 360) - 180)
			if d < 2 {
				c = color.NRGBA{R: 255, G: 228, B: 80, A: 255}
			}
			img.SetNRGBA(x, y, c)
		}
	}
	m.cachePhase = phase
	m.cacheImg = img
	return img, true
}

func (m *mockSource) Dims() (int, int) {
	return m.w, m.h
}
