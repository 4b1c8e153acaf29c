package orientation

// CalibrateFront redefines which meridian of the sphere is "front": whatever
// the operator is looking at right now becomes the zero reference. The
// current pan is folded into the lens offset, pan snaps to zero, and the
// initial snapshot's pan follows so a later stitched-mode reset comes back
// to the newly calibrated front rather than the factory one.
//
// Tilt and zoom are untouched, as are their initial snapshots: calibration
// is a pure heading correction. Because pan snaps to zero, repeated presses
// converge immediately: every press after the first re-derives the offset
// from a zero pan.
func (s *State) CalibrateFront() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.offset = -s.cur.Pan
	s.cur.Pan = 0
	s.initial.Pan = 0
}
