package viewmode

import (
	"sync"

	"github.com/relabs-tech/evidence_viewer/internal/orientation"
)

// Controller owns the active view mode and its consequences: the lock flag
// and the target orientation applied when a named view is entered. Mode
// changes are total and synchronous; there is no partially applied mode.
type Controller struct {
	mu        sync.Mutex
	state     *orientation.State
	mode      Mode
	locked    bool
	rawPrimed bool
}

// NewController starts a session in Stitched, unlocked.
func NewController(state *orientation.State) *Controller {
	return &Controller{state: state, mode: Stitched}
}

// Set switches to the target mode and runs its entry action. Re-entering the
// active mode re-runs the entry action, which is safe: entry actions are
// deterministic assignments. Always succeeds.
func (c *Controller) Set(target Mode) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mode = target
	c.applyEntryLocked(target)
}

// applyEntryLocked runs the entry action for a mode. Caller holds c.mu.
func (c *Controller) applyEntryLocked(m Mode) {
	switch m {
	case Stitched:
		// Orientation stays as last set.
		c.locked = false
	case Front, Flat:
		c.state.SetOrientation(orientation.Orientation{Pan: 0, Tilt: 0, Zoom: orientation.DefaultZoom})
		c.locked = true
	case Back:
		c.state.SetOrientation(orientation.Orientation{Pan: 180, Tilt: 0, Zoom: orientation.DefaultZoom})
		c.locked = true
	case Raw:
		// The 3D camera is inactive; freeze orientation gestures and drop
		// any cached raw-view initialization so the first raw tick probes
		// and sizes its surfaces afresh.
		c.locked = true
		c.rawPrimed = false
	}
}

// Current returns the active mode.
func (c *Controller) Current() Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

// Locked reports whether pointer gestures may rotate the camera. Locking
// restricts orientation, never magnification: zoom input applies regardless.
func (c *Controller) Locked() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.locked
}

// Reset re-applies the active named view's entry action; in the free modes
// (Stitched, Raw) it restores the initial orientation snapshot instead.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch c.mode {
	case Front, Back, Flat:
		c.applyEntryLocked(c.mode)
	case Stitched, Raw:
		c.state.RestoreInitial()
	}
}

// RawPrimed reports whether the raw view's surfaces have been probed and
// sized since Raw was last entered.
func (c *Controller) RawPrimed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rawPrimed
}

// MarkRawPrimed records that the raw surfaces are initialized. Cleared again
// on every entry into Raw.
func (c *Controller) MarkRawPrimed() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rawPrimed = true
}
