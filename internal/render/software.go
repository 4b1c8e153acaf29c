// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package render

import (
	"image"
	"math"
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	xdraw "golang.org/x/image/draw"

	"github.com/relabs-tech/evidence_viewer/internal/extract"
	"github.com/relabs-tech/evidence_viewer/internal/frames"
	"github.com/relabs-tech/evidence_viewer/internal/projection"
)

// Software renders the projected spherical view on the CPU. For every output
// pixel it builds the view ray from the no-roll camera basis (yaw then
// pitch) and the vertical FOV, converts the ray to longitude/latitude, and
// samples the equirectangular frame bilinearly. X wraps around the seam, Y
// clamps at the poles. Rows are rendered in parallel on a bounded worker
// pool.
type Software struct {
	mu     sync.Mutex
	source frames.Source
	cam    projection.Camera
	out    *image.NRGBA

	pool    worker.DynamicWorkerPool
	workers int
	taskID  int

	// One-frame texture cache: generic image.Image sampling via At() is
	// too slow per pixel, so the current frame is converted to NRGBA once.
	texFor image.Image
	tex    *image.NRGBA
}

// NewSoftware creates a renderer targeting a w×h output. workers <= 0 picks
// NumCPU-1.
func NewSoftware(source frames.Source, w, h, workers int) *Software {
	if workers <= 0 {
		workers = runtime.NumCPU() - 1
		if workers < 1 {
			workers = 1
		}
	}
	return &Software{
		source:  source,
		out:     image.NewNRGBA(image.Rect(0, 0, w, h)),
		pool:    worker.NewDynamicWorkerPool(workers, 256, 1*time.Second),
		workers: workers,
	}
}

// SetCamera stores the transform for the next RenderFrame. Last write wins.
func (r *Software) SetCamera(cam projection.Camera) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cam = cam
}

// Resize reallocates the output raster. Ignored for non-positive sizes; the
// zero-layout case is handled by the placeholder path instead.
func (r *Software) Resize(w, h int) {
	if w <= 0 || h <= 0 {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if b := r.out.Bounds(); b.Dx() == w && b.Dy() == h {
		return
	}
	r.out = image.NewNRGBA(image.Rect(0, 0, w, h))
}

// RenderFrame draws the current frame through the current camera and
// returns the output raster. The raster is reused between calls; callers
// consume it before the next tick. A not-ready source degrades to a
// placeholder, never an error.
func (r *Software) RenderFrame() (*image.NRGBA, error) {
	frame, ok := r.source.Frame()

	r.mu.Lock()
	cam := r.cam
	out := r.out
	r.mu.Unlock()

	w := out.Bounds().Dx()
	h := out.Bounds().Dy()
	if w == 0 || h == 0 {
		return out, nil
	}

	if !ok || frame == nil || frame.Bounds().Dx() == 0 || frame.Bounds().Dy() == 0 {
		extract.Placeholder(surfaceOver(out), "PROJECTED VIEW")
		return out, nil
	}

	tex := r.texture(frame)

	fwd, right, up := cameraBasis(cam.Yaw, cam.Pitch)
	tanHalf := math.Tan(cam.FOV / 2 * math.Pi / 180)
	aspect := float64(w) / float64(h)

	var wg sync.WaitGroup
	chunk := (h + r.workers - 1) / r.workers
	for y0 := 0; y0 < h; y0 += chunk {
		y1 := y0 + chunk
		if y1 > h {
			y1 = h
		}
		wg.Add(1)
		rows := rowSpan{y0: y0, y1: y1}
		r.mu.Lock()
		id := r.taskID
		r.taskID++
		r.mu.Unlock()
		r.pool.SubmitTask(worker.Task{
			ID: id,
			Do: func() (any, error) {
				defer wg.Done()
				renderRows(out, tex, rows, w, h, fwd, right, up, tanHalf, aspect)
				return nil, nil
			},
		})
	}
	wg.Wait()

	return out, nil
}

// texture converts the frame to NRGBA once per distinct frame.
func (r *Software) texture(frame image.Image) *image.NRGBA {
	r.mu.Lock()
	defer r.mu.Unlock()
	if frame == r.texFor && r.tex != nil {
		return r.tex
	}
	if n, isNRGBA := frame.(*image.NRGBA); isNRGBA {
		r.texFor, r.tex = frame, n
		return n
	}
	b := frame.Bounds()
	n := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	xdraw.Draw(n, n.Bounds(), frame, b.Min, xdraw.Src)
	r.texFor, r.tex = frame, n
	return n
}

type vec3 struct{ x, y, z float64 }

type rowSpan struct{ y0, y1 int }

// cameraBasis builds the forward/right/up frame for a yaw-then-pitch camera.
// Right stays horizontal for any pitch, which is what keeps tilt from
// inducing roll.
func cameraBasis(yaw, pitch float64) (fwd, right, up vec3) {
	sy, cy := math.Sincos(yaw)
	sp, cp := math.Sincos(pitch)
	fwd = vec3{cp * sy, sp, cp * cy}
	right = vec3{cy, 0, -sy}
	up = vec3{-sp * sy, cp, -sp * cy}
	return fwd, right, up
}

func renderRows(out, tex *image.NRGBA, rows rowSpan, w, h int, fwd, right, up vec3, tanHalf, aspect float64) {
	tb := tex.Bounds()
	fw := tb.Dx()
	fh := tb.Dy()

	for y := rows.y0; y < rows.y1; y++ {
		vy := (1 - 2*(float64(y)+0.5)/float64(h)) * tanHalf
		for x := 0; x < w; x++ {
			vx := (2*(float64(x)+0.5)/float64(w) - 1) * tanHalf * aspect

			d := vec3{
				x: fwd.x + right.x*vx + up.x*vy,
				y: fwd.y + right.y*vx + up.y*vy,
				z: fwd.z + right.z*vx + up.z*vy,
			}
			inv := 1 / math.Sqrt(d.x*d.x+d.y*d.y+d.z*d.z)
			dx, dy, dz := d.x*inv, d.y*inv, d.z*inv

			lon := math.Atan2(dx, dz)
			lat := math.Asin(math.Max(-1, math.Min(1, dy)))

			fx := (lon + math.Pi) / (2 * math.Pi) * float64(fw)
			fy := (math.Pi/2 - lat) / math.Pi * float64(fh)

			cr, cg, cb, ca := sampleBilinear(tex, fw, fh, fx, fy)
			i := out.PixOffset(x, y)
			out.Pix[i+0] = cr
			out.Pix[i+1] = cg
			out.Pix[i+2] = cb
			out.Pix[i+3] = ca
		}
	}
}

// sampleBilinear reads the texture at a fractional texel position, wrapping
// X across the 0/360 seam and clamping Y at the poles.
func sampleBilinear(tex *image.NRGBA, fw, fh int, fx, fy float64) (uint8, uint8, uint8, uint8) {
	fx -= 0.5
	fy -= 0.5
	x0 := int(math.Floor(fx))
	y0 := int(math.Floor(fy))
	tx := fx - float64(x0)
	ty := fy - float64(y0)

	x1 := x0 + 1
	y1 := y0 + 1

	x0 = ((x0 % fw) + fw) % fw
	x1 = ((x1 % fw) + fw) % fw
	if y0 < 0 {
		y0 = 0
	}
	if y0 > fh-1 {
		y0 = fh - 1
	}
	if y1 < 0 {
		y1 = 0
	}
	if y1 > fh-1 {
		y1 = fh - 1
	}

	min := tex.Bounds().Min
	p00 := tex.PixOffset(min.X+x0, min.Y+y0)
	p10 := tex.PixOffset(min.X+x1, min.Y+y0)
	p01 := tex.PixOffset(min.X+x0, min.Y+y1)
	p11 := tex.PixOffset(min.X+x1, min.Y+y1)

	lerp2 := func(off int) uint8 {
		a := float64(tex.Pix[p00+off])*(1-tx) + float64(tex.Pix[p10+off])*tx
		b := float64(tex.Pix[p01+off])*(1-tx) + float64(tex.Pix[p11+off])*tx
		return uint8(a*(1-ty) + b*ty + 0.5)
	}
	return lerp2(0), lerp2(1), lerp2(2), lerp2(3)
}
