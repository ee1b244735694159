package tracker

import "github.com/1broseidon/borders/internal/platform"

// frameState is the part of a frame's configuration that affects its
// border.
type frameState struct {
	X, Y          int
	Width, Height int
	Above         uint32
}

// ConfigureAction is the border work a configure event calls for.
type ConfigureAction int

const (
	ConfigureNone ConfigureAction = iota
	// ConfigureMove repositions the border without redrawing it.
	ConfigureMove
	// ConfigureUpdate redraws the border.
	ConfigureUpdate
)

func (a ConfigureAction) String() string {
	switch a {
	case ConfigureMove:
		return "move"
	case ConfigureUpdate:
		return "update"
	default:
		return "none"
	}
}

// classifyConfigure picks the cheapest action that keeps the border in
// sync: size or stacking changes need a redraw, a pure move does not.
func classifyConfigure(prev, next frameState) ConfigureAction {
	switch {
	case prev.Width != next.Width || prev.Height != next.Height || prev.Above != next.Above:
		return ConfigureUpdate
	case prev.X != next.X || prev.Y != next.Y:
		return ConfigureMove
	default:
		return ConfigureNone
	}
}

// spaceForDesktop maps a _NET_WM_DESKTOP index to a space. Sticky windows
// (negative desktop) get the wildcard space.
func spaceForDesktop(desktop int) platform.SpaceID {
	if desktop < 0 {
		return 0
	}
	return platform.SpaceID(desktop + 1)
}
