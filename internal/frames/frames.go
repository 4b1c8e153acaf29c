package frames

import (
	"image"
	"time"
)

// Source is anything that can provide decoded video frames. The review core
// only reads the current frame and its native size; decoding, stitching and
// container handling happen upstream of this interface.
type Source interface {
	// Frame returns the current frame and whether it is ready to draw.
	// Not-ready is a normal state (nothing loaded yet, decode pending) and
	// is retried every tick, never treated as fatal.
	Frame() (image.Image, bool)
	// Dims returns the native frame size, (0, 0) while unknown.
	Dims() (width, height int)
}

// Playback is the transport control surface for sources that play over
// time. Shells drive it from operator controls; the core itself never
// touches playback.
type Playback interface {
	Play()
	Pause()
	Playing() bool
	Seek(pos time.Duration)
	Position() time.Duration
	SetRate(rate float64)
	Rate() float64
}
