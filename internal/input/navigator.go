// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package input

import (
	"sync"

	"github.com/relabs-tech/evidence_viewer/internal/orientation"
)

// Tuned UX constants, not physical units. The drag sensitivity is shared by
// mouse and single-touch paths so the two feel identical.
const (
	dragSensitivity = 0.3
	wheelZoomStep   = 0.05
	pinchZoomStep   = 0.1
)

// LockState reports whether orientation gestures are currently suppressed.
// Satisfied by the view mode controller.
type LockState interface {
	Locked() bool
}

// Navigator turns pointer gestures into orientation deltas. A drag is a
// sequence of (previous, current) positions; each move applies the delta
// scaled by the drag sensitivity. Zoom gestures (wheel, pinch) apply even
// while locked: locking restricts orientation, not magnification.
type Navigator struct {
	mu    sync.Mutex
	state *orientation.State
	lock  LockState

	dragging     bool
	lastX, lastY float64
	pinchDist    float64 // previous inter-finger distance; 0 = not seeded
}

func NewNavigator(state *orientation.State, lock LockState) *Navigator {
	return &Navigator{state: state, lock: lock}
}

// Handle applies one input event. Key presses are routed by the session
// keymap, not here.
func (n *Navigator) Handle(e Event) {
	n.mu.Lock()
	defer n.mu.Unlock()

	switch e.Kind {
	case PointerDown:
		n.dragging = true
		n.lastX, n.lastY = e.X, e.Y

	case PointerMove:
		if !n.dragging {
			return
		}
		dx := e.X - n.lastX
		dy := e.Y - n.lastY
		if !n.lock.Locked() {
			n.state.AdjustPan(-dx * dragSensitivity)
			n.state.AdjustTilt(dy * dragSensitivity)
		}
		// Track the pointer even while locked so an unlock mid-drag does
		// not replay the accumulated distance as one jump.
		n.lastX, n.lastY = e.X, e.Y

	case PointerUp:
		n.dragging = false
		n.pinchDist = 0

	case Wheel:
		// Browser wheel convention: scrolling up reports a negative delta,
		// which narrows the FOV (zooms in). Applies regardless of lock.
		n.state.AdjustZoom(e.DeltaY * wheelZoomStep)

	case PinchUpdate:
		if n.pinchDist == 0 {
			// First sample of the gesture only seeds the distance.
			n.pinchDist = e.Distance
			return
		}
		n.state.AdjustZoom((n.pinchDist - e.Distance) * pinchZoomStep)
		n.pinchDist = e.Distance

	case KeyPress:
		// Not a gesture; the session keymap owns key handling.
	}
}

// Dragging reports whether a drag gesture is in progress.
func (n *Navigator) Dragging() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.dragging
}
