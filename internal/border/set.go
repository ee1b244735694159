package border

import (
	"io"
	"log/slog"

	"github.com/1broseidon/borders/internal/config"
	"github.com/1broseidon/borders/internal/platform"
)

// Handle is a stable reference to a border in a Set. It stays valid across
// Add calls and stops resolving once its border is destroyed.
type Handle struct {
	index int
	gen   uint32
}

type slot struct {
	border Border
	gen    uint32
}

// Set owns every border and routes window events to them.
//
// A Set is not safe for concurrent use; callers serialize access through the
// daemon loop.
type Set struct {
	slots    []slot
	comp     platform.Compositor
	settings *config.Settings
	logger   *slog.Logger
}

// NewSet creates an empty set drawing through comp with the given settings.
// settings is read on every draw, so later updates to it take effect on the
// next redraw.
func NewSet(comp platform.Compositor, settings *config.Settings, logger *slog.Logger) *Set {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Set{
		comp:     comp,
		settings: settings,
		logger:   logger,
	}
}

func (s *Set) env() env {
	return env{comp: s.comp, settings: s.settings, logger: s.logger}
}

// Add starts tracking window in space, reusing an existing border for the
// same pair, and draws it immediately.
func (s *Set) Add(window platform.WindowID, space platform.SpaceID) Handle {
	if window == 0 {
		return Handle{index: -1}
	}

	index := -1
	for i := range s.slots {
		if s.slots[i].border.matches(window, space) {
			index = i
		}
	}

	fresh := index < 0
	if fresh {
		index = s.allocSlot()
	}

	b := &s.slots[index].border
	b.target = window
	if space != 0 || fresh {
		b.space = space
	}
	b.needsRedraw = true
	b.draw(s.env())

	s.logger.Debug("border added", "window", window, "space", b.space, "reused", !fresh)
	return Handle{index: index, gen: s.slots[index].gen}
}

// allocSlot returns the index of an empty slot, growing the arena if none is
// free.
func (s *Set) allocSlot() int {
	for i := range s.slots {
		if !s.slots[i].border.live() {
			s.slots[i].gen++
			s.slots[i].border = Border{}
			return i
		}
	}
	s.slots = append(s.slots, slot{gen: 1})
	return len(s.slots) - 1
}

// Remove destroys every border tracking window in space and returns how many
// were destroyed.
func (s *Set) Remove(window platform.WindowID, space platform.SpaceID) int {
	e := s.env()
	removed := 0
	for i := range s.slots {
		if s.slots[i].border.matches(window, space) {
			s.slots[i].border.destroy(e)
			removed++
		}
	}
	if removed > 0 {
		s.logger.Debug("border removed", "window", window, "space", space, "count", removed)
	}
	return removed
}

// Update redraws every border tracking window after a geometry or stacking
// change.
func (s *Set) Update(window platform.WindowID) {
	e := s.env()
	for i := range s.slots {
		b := &s.slots[i].border
		if b.live() && b.target == window {
			b.draw(e)
		}
	}
}

// Focus marks window's borders focused and every other border unfocused,
// redrawing only those whose state changed.
func (s *Set) Focus(window platform.WindowID) {
	e := s.env()
	for i := range s.slots {
		b := &s.slots[i].border
		if !b.live() {
			continue
		}
		if b.focused && b.target != window {
			b.focused = false
			b.needsRedraw = true
			b.draw(e)
		}
		if b.target == window && !b.focused {
			b.focused = true
			b.needsRedraw = true
			b.draw(e)
		}
	}
}

// MoveOnly repositions window's borders without redrawing them.
func (s *Set) MoveOnly(window platform.WindowID) {
	e := s.env()
	for i := range s.slots {
		b := &s.slots[i].border
		if b.live() && b.target == window {
			b.move(e)
		}
	}
}

// Redraw re-renders the borders selected by scope.
func (s *Set) Redraw(scope config.Scope) {
	scope = scope.Normalize()
	if scope == config.ScopeNone {
		return
	}

	e := s.env()
	for i := range s.slots {
		b := &s.slots[i].border
		if !b.live() {
			continue
		}
		switch scope {
		case config.ScopeActive:
			if !b.focused {
				continue
			}
		case config.ScopeInactive:
			if b.focused {
				continue
			}
		}
		b.needsRedraw = true
		b.draw(e)
	}
}

// Lookup returns a copy of the border behind h.
func (s *Set) Lookup(h Handle) (Border, bool) {
	if h.index < 0 || h.index >= len(s.slots) {
		return Border{}, false
	}
	sl := s.slots[h.index]
	if sl.gen != h.gen || !sl.border.live() {
		return Border{}, false
	}
	return sl.border, true
}

// Len returns the number of live borders.
func (s *Set) Len() int {
	n := 0
	for i := range s.slots {
		if s.slots[i].border.live() {
			n++
		}
	}
	return n
}

// Targets returns the distinct windows currently tracked.
func (s *Set) Targets() []platform.WindowID {
	seen := make(map[platform.WindowID]struct{})
	var out []platform.WindowID
	for i := range s.slots {
		b := &s.slots[i].border
		if !b.live() {
			continue
		}
		if _, ok := seen[b.target]; ok {
			continue
		}
		seen[b.target] = struct{}{}
		out = append(out, b.target)
	}
	return out
}

// Close destroys every border.
func (s *Set) Close() {
	e := s.env()
	for i := range s.slots {
		s.slots[i].border.destroy(e)
	}
}
