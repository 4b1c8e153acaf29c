// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package viewmode

import "fmt"

// Mode is the closed set of named views. Every switch over Mode in this
// repository lists all five cases so adding a mode breaks loudly at compile
// review rather than silently at runtime.
type Mode int

const (
	// Stitched is the free-look spherical view; orientation is unlocked.
	Stitched Mode = iota
	// Front locks the view onto the front lens heading.
	Front
	// Back locks the view onto the rear lens heading.
	Back
	// Flat is presented as its own option but currently shares Front's
	// entry action; kept separate so a rectilinear treatment can hang off
	// it later without touching callers.
	Flat
	// Raw shows the unprojected frame; the 3D camera is inactive.
	Raw
)

func (m Mode) String() string {
	switch m {
	case Stitched:
		return "stitched"
	case Front:
		return "front"
	case Back:
		return "back"
	case Flat:
		return "flat"
	case Raw:
		return "raw"
	}
	return fmt.Sprintf("mode(%d)", int(m))
}

// Parse maps the wire/config spelling onto a Mode.
func Parse(s string) (Mode, error) {
	switch s {
	case "stitched":
		return Stitched, nil
	case "front":
		return Front, nil
	case "back":
		return Back, nil
	case "flat":
		return Flat, nil
	case "raw":
		return Raw, nil
	}
	return Stitched, fmt.Errorf("unknown view mode %q", s)
}
