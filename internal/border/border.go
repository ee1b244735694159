// Package border draws and tracks the highlight outlines placed around
// managed windows.
package border

import (
	"log/slog"

	"github.com/1broseidon/borders/internal/config"
	"github.com/1broseidon/borders/internal/platform"
)

// env carries the collaborators a border needs for one operation.
type env struct {
	comp     platform.Compositor
	settings *config.Settings
	logger   *slog.Logger
}

// Border is the overlay drawn around a single target window.
//
// A border owns its surface and canvas: canvas is non-nil exactly when
// surface is non-zero.
type Border struct {
	target      platform.WindowID
	space       platform.SpaceID
	surface     platform.SurfaceID
	canvas      platform.Canvas
	bounds      platform.Rect
	origin      platform.Point
	focused     bool
	needsRedraw bool
}

// Target returns the window the border outlines.
func (b *Border) Target() platform.WindowID { return b.target }

// Space returns the space the border lives on; 0 means not yet resolved.
func (b *Border) Space() platform.SpaceID { return b.space }

// Surface returns the overlay surface, or 0 while the target is hidden.
func (b *Border) Surface() platform.SurfaceID { return b.surface }

// Bounds returns the surface-local rectangle last drawn.
func (b *Border) Bounds() platform.Rect { return b.bounds }

// Origin returns the target origin the surface was last placed against.
func (b *Border) Origin() platform.Point { return b.origin }

// Focused reports whether the border uses the active color.
func (b *Border) Focused() bool { return b.focused }

// NeedsRedraw reports whether the next draw re-renders the stroke.
func (b *Border) NeedsRedraw() bool { return b.needsRedraw }

// live reports whether the record currently tracks a window.
func (b *Border) live() bool {
	return b.target != 0
}

func (b *Border) matches(window platform.WindowID, space platform.SpaceID) bool {
	if !b.live() || b.target != window {
		return false
	}
	return b.space == space || b.space == 0 || space == 0
}

func (b *Border) release(e env) {
	if b.surface != 0 {
		e.comp.ReleaseSurface(b.surface)
	}
	if b.canvas != nil {
		b.canvas.Release()
	}
	b.surface = 0
	b.canvas = nil
}

func (b *Border) destroy(e env) {
	b.release(e)
	*b = Border{}
}

// allocate creates the surface and canvas for a newly visible target.
func (b *Border) allocate(e env, bounds platform.Rect, origin platform.Point) bool {
	log := e.logger.With("window", b.target)

	surface, err := e.comp.CreateSurface(bounds)
	if err != nil {
		log.Warn("failed to create border surface", "error", err)
		return false
	}
	if err := e.comp.SetResolution(surface, 1.0); err != nil {
		log.Debug("failed to set surface resolution", "error", err)
	}
	if err := e.comp.SetTags(surface, platform.TagNonInteractive); err != nil {
		log.Debug("failed to set surface tags", "error", err)
	}
	if err := e.comp.SetOpaque(surface, false); err != nil {
		log.Debug("failed to clear surface opacity", "error", err)
	}

	canvas, err := e.comp.CreateContext(surface)
	if err != nil {
		log.Warn("failed to create drawing context", "error", err)
		e.comp.ReleaseSurface(surface)
		return false
	}

	b.surface = surface
	b.canvas = canvas
	b.bounds = bounds
	b.origin = origin
	b.needsRedraw = true

	if b.space == 0 {
		if space, err := e.comp.Space(b.target); err == nil {
			b.space = space
		} else {
			log.Debug("failed to resolve window space", "error", err)
		}
	}
	if err := e.comp.MoveToSpace(surface, b.space); err != nil {
		log.Debug("failed to move border to space", "space", b.space, "error", err)
	}
	return true
}

// draw re-derives the border from the target's current state and renders it
// when anything visible changed.
func (b *Border) draw(e env) {
	if !e.comp.IsVisible(b.target) {
		if b.surface != 0 {
			b.release(e)
		}
		return
	}

	target, err := e.comp.Bounds(b.target)
	if err != nil {
		e.logger.Debug("failed to read window bounds", "window", b.target, "error", err)
		return
	}
	level, subLevel, err := e.comp.Level(b.target)
	if err != nil {
		e.logger.Debug("failed to read window level", "window", b.target, "error", err)
	}

	width := e.settings.Width
	frame := target.Inset(-width, -width)
	bounds := platform.Rect{Width: frame.Width, Height: frame.Height}

	e.comp.DisableUpdate()
	defer e.comp.ReenableUpdate()

	if b.surface == 0 && !b.allocate(e, bounds, target.Origin()) {
		return
	}

	if bounds != b.bounds {
		if err := e.comp.SetShape(b.surface, bounds); err != nil {
			e.logger.Debug("failed to reshape border", "window", b.target, "error", err)
		}
		b.bounds = bounds
		b.needsRedraw = true
	}

	if err := e.comp.SetLevel(b.surface, level, subLevel); err != nil {
		e.logger.Debug("failed to set border level", "window", b.target, "error", err)
	}
	if err := e.comp.OrderAbove(b.surface, b.target); err != nil {
		e.logger.Debug("failed to order border", "window", b.target, "error", err)
	}

	if b.needsRedraw {
		b.render(e)
	}

	b.move(e)
}

func (b *Border) render(e env) {
	width := e.settings.Width
	r, g, bl, a := e.settings.StrokeColor(b.focused).RGBA()

	c := b.canvas
	c.ClearRect(b.bounds)
	c.SetStrokeColor(r, g, bl, a)
	c.SetLineWidth(width)
	c.AddRoundedRect(b.bounds.Inset(width/2, width/2), e.settings.Style.Radius())
	c.StrokePath()
	if err := c.Flush(); err != nil {
		e.logger.Warn("failed to flush border", "window", b.target, "error", err)
		return
	}
	b.needsRedraw = false
}

// move repositions the overlay to follow the target's origin.
func (b *Border) move(e env) {
	if b.surface == 0 {
		return
	}

	target, err := e.comp.Bounds(b.target)
	if err != nil {
		e.logger.Debug("failed to read window bounds", "window", b.target, "error", err)
		return
	}
	width := e.settings.Width

	tx := e.comp.Begin()
	tx.Move(b.surface, platform.Point{X: target.X - width, Y: target.Y - width})
	if err := tx.Commit(); err != nil {
		e.logger.Debug("failed to commit border move", "window", b.target, "error", err)
		return
	}
	b.origin = target.Origin()
}
