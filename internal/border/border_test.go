package border

import (
	"testing"

	"github.com/1broseidon/borders/internal/config"
	"github.com/1broseidon/borders/internal/platform"
)

func TestDraw_AllocatesNonInteractiveSurface(t *testing.T) {
	set, comp, _ := newTestSet(t)
	comp.show(1, platform.Rect{X: 100, Y: 200, Width: 800, Height: 600}, 2)
	h := set.Add(1, 2)

	b, ok := set.Lookup(h)
	if !ok || b.Surface() == 0 {
		t.Fatalf("expected a surface for a visible window")
	}
	s := comp.surfaces[b.Surface()]
	if s.tags&platform.TagNonInteractive == 0 {
		t.Fatalf("expected non-interactive tag")
	}
	if s.opaque {
		t.Fatalf("expected surface to be non-opaque")
	}
	if s.space != 2 {
		t.Fatalf("expected surface on space 2, got %d", s.space)
	}
	if s.above != 1 {
		t.Fatalf("expected surface ordered above window 1, got %d", s.above)
	}
	if s.origin != (platform.Point{X: 96, Y: 196}) {
		t.Fatalf("expected surface origin 96,196, got %+v", s.origin)
	}
	if want := (platform.Rect{Width: 808, Height: 608}); b.Bounds() != want {
		t.Fatalf("expected bounds %+v, got %+v", want, b.Bounds())
	}
	if b.NeedsRedraw() {
		t.Fatalf("expected redraw flag cleared after draw")
	}
	if comp.updateHeld != 0 {
		t.Fatalf("expected updates re-enabled, depth %d", comp.updateHeld)
	}
}

func TestDraw_StrokeGeometry(t *testing.T) {
	set, comp, settings := newTestSet(t)
	comp.show(1, platform.Rect{Width: 100, Height: 50}, 1)
	h := set.Add(1, 1)

	b, _ := set.Lookup(h)
	canvas := comp.surfaces[b.Surface()].canvas
	want := platform.Rect{X: 2, Y: 2, Width: 104, Height: 54}
	if canvas.stroked != want {
		t.Fatalf("expected stroke rect %+v, got %+v", want, canvas.stroked)
	}
	if canvas.radius != settings.Style.Radius() {
		t.Fatalf("expected radius %v, got %v", settings.Style.Radius(), canvas.radius)
	}
	if canvas.cleared != 1 || canvas.flushes != 1 {
		t.Fatalf("expected one clear and one flush, got %d/%d", canvas.cleared, canvas.flushes)
	}
	r, g, bl, a := settings.InactiveColor.RGBA()
	if canvas.color != [4]float64{r, g, bl, a} {
		t.Fatalf("expected inactive color, got %v", canvas.color)
	}
}

func TestDraw_SquareStyleHasNoRadius(t *testing.T) {
	set, comp, settings := newTestSet(t)
	settings.Style = config.StyleSquare
	comp.show(1, platform.Rect{Width: 100, Height: 50}, 1)
	h := set.Add(1, 1)

	b, _ := set.Lookup(h)
	if got := comp.surfaces[b.Surface()].canvas.radius; got != 0 {
		t.Fatalf("expected radius 0, got %v", got)
	}
}

func TestDraw_Idempotent(t *testing.T) {
	set, comp, _ := newTestSet(t)
	comp.show(1, platform.Rect{Width: 100, Height: 100}, 1)
	set.Add(1, 1)

	before := comp.strokes()
	set.Update(1)
	set.Update(1)
	if got := comp.strokes() - before; got != 0 {
		t.Fatalf("expected no extra strokes for unchanged geometry, got %d", got)
	}
	if comp.reshapes != 0 {
		t.Fatalf("expected no reshape, got %d", comp.reshapes)
	}
}

func TestDraw_InvisibleTargetReleasesSurface(t *testing.T) {
	set, comp, _ := newTestSet(t)
	win := comp.show(1, platform.Rect{Width: 100, Height: 100}, 1)
	h := set.Add(1, 1)

	win.visible = false
	set.Update(1)

	b, ok := set.Lookup(h)
	if !ok {
		t.Fatalf("expected record to survive hiding")
	}
	if b.Surface() != 0 {
		t.Fatalf("expected surface released while hidden")
	}
	if comp.live() != 0 {
		t.Fatalf("expected no live surfaces, got %d", comp.live())
	}

	win.visible = true
	set.Update(1)
	b, _ = set.Lookup(h)
	if b.Surface() == 0 {
		t.Fatalf("expected surface re-created when shown again")
	}
	if comp.creates != 2 {
		t.Fatalf("expected 2 allocations, got %d", comp.creates)
	}
}

func TestDraw_NeverVisibleAllocatesNothing(t *testing.T) {
	set, comp, _ := newTestSet(t)
	h := set.Add(1, 1)

	b, ok := set.Lookup(h)
	if !ok {
		t.Fatalf("expected record for hidden window")
	}
	if b.Surface() != 0 || comp.creates != 0 {
		t.Fatalf("expected no surface for a hidden window")
	}
	if !b.NeedsRedraw() {
		t.Fatalf("expected redraw to stay pending")
	}
}

func TestDraw_CreateFailureLeavesRecord(t *testing.T) {
	set, comp, _ := newTestSet(t)
	comp.failCreate = true
	comp.show(1, platform.Rect{Width: 100, Height: 100}, 1)
	h := set.Add(1, 1)

	b, ok := set.Lookup(h)
	if !ok || b.Surface() != 0 {
		t.Fatalf("expected record without surface, got %+v ok=%v", b, ok)
	}

	comp.failCreate = false
	set.Update(1)
	b, _ = set.Lookup(h)
	if b.Surface() == 0 {
		t.Fatalf("expected surface after retry")
	}
}

func TestDraw_ContextFailureReleasesSurface(t *testing.T) {
	set, comp, _ := newTestSet(t)
	comp.failCanvas = true
	comp.show(1, platform.Rect{Width: 100, Height: 100}, 1)
	set.Add(1, 1)

	if comp.live() != 0 {
		t.Fatalf("expected surface released after context failure, got %d live", comp.live())
	}
}

func TestDraw_LevelFollowsTarget(t *testing.T) {
	set, comp, _ := newTestSet(t)
	win := comp.show(1, platform.Rect{Width: 100, Height: 100}, 1)
	win.level, win.subLevel = -1, 1
	h := set.Add(1, 1)

	b, _ := set.Lookup(h)
	s := comp.surfaces[b.Surface()]
	if s.level != -1 || s.subLevel != 1 {
		t.Fatalf("expected level -1/1, got %d/%d", s.level, s.subLevel)
	}
}

func TestDestroy_ReleasesCanvas(t *testing.T) {
	set, comp, _ := newTestSet(t)
	comp.show(1, platform.Rect{Width: 100, Height: 100}, 1)
	h := set.Add(1, 1)
	b, _ := set.Lookup(h)
	canvas := comp.surfaces[b.Surface()].canvas

	set.Remove(1, 1)
	if !canvas.released {
		t.Fatalf("expected canvas released")
	}
	if comp.releases != 1 {
		t.Fatalf("expected 1 surface release, got %d", comp.releases)
	}
}
