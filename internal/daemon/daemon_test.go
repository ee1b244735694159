package daemon

import (
	"context"
	"errors"
	"testing"

	"github.com/1broseidon/borders/internal/config"
	"github.com/1broseidon/borders/internal/platform"
)

// hiddenCompositor reports every window as invisible, so borders are
// tracked but never drawn.
type hiddenCompositor struct{}

var errHidden = errors.New("hidden")

func (hiddenCompositor) IsVisible(platform.WindowID) bool { return false }
func (hiddenCompositor) Bounds(platform.WindowID) (platform.Rect, error) {
	return platform.Rect{}, errHidden
}
func (hiddenCompositor) Level(platform.WindowID) (int, int, error)        { return 0, 0, errHidden }
func (hiddenCompositor) Space(platform.WindowID) (platform.SpaceID, error) { return 0, errHidden }
func (hiddenCompositor) CreateSurface(platform.Rect) (platform.SurfaceID, error) {
	return 0, errHidden
}
func (hiddenCompositor) ReleaseSurface(platform.SurfaceID)                        {}
func (hiddenCompositor) SetResolution(platform.SurfaceID, float64) error          { return errHidden }
func (hiddenCompositor) SetTags(platform.SurfaceID, platform.Tags) error          { return errHidden }
func (hiddenCompositor) SetOpaque(platform.SurfaceID, bool) error                 { return errHidden }
func (hiddenCompositor) SetShape(platform.SurfaceID, platform.Rect) error         { return errHidden }
func (hiddenCompositor) SetLevel(platform.SurfaceID, int, int) error              { return errHidden }
func (hiddenCompositor) OrderAbove(platform.SurfaceID, platform.WindowID) error   { return errHidden }
func (hiddenCompositor) MoveToSpace(platform.SurfaceID, platform.SpaceID) error   { return errHidden }
func (hiddenCompositor) CreateContext(platform.SurfaceID) (platform.Canvas, error) {
	return nil, errHidden
}
func (hiddenCompositor) DisableUpdate()                {}
func (hiddenCompositor) ReenableUpdate()               {}
func (hiddenCompositor) Begin() platform.Transaction { return nil }

func TestApplyUpdate_Scopes(t *testing.T) {
	d := New(hiddenCompositor{}, config.DefaultSettings(), NewLoop(nil), nil)

	cases := []struct {
		tokens []string
		want   config.Scope
	}{
		{[]string{"active_color=0xff00ff00"}, config.ScopeActive},
		{[]string{"inactive_color=0xff0000ff"}, config.ScopeInactive},
		{[]string{"width=5", "active_color=0xff00ff00"}, config.ScopeAll},
		{[]string{"bogus=1"}, config.ScopeNone},
		{nil, config.ScopeNone},
	}
	for _, tc := range cases {
		if got := d.ApplyUpdate(tc.tokens); got != tc.want {
			t.Fatalf("ApplyUpdate(%q) = %v, want %v", tc.tokens, got, tc.want)
		}
	}

	s := d.Settings()
	if s.Width != 5 || s.ActiveColor != 0xff00ff00 || s.InactiveColor != 0xff0000ff {
		t.Fatalf("unexpected settings %+v", s)
	}
}

func TestHandleUpdate_RunsOnLoop(t *testing.T) {
	loop, _, _ := runLoop(t, XEvents{})
	d := New(hiddenCompositor{}, config.DefaultSettings(), loop, nil)

	scope, err := d.HandleUpdate(context.Background(), []string{"style=s"})
	if err != nil {
		t.Fatalf("HandleUpdate: %v", err)
	}
	if scope != config.ScopeAll {
		t.Fatalf("scope = %v, want ALL", scope)
	}

	var style config.Style
	loop.Do(context.Background(), func() { style = d.Settings().Style })
	if style != config.StyleSquare {
		t.Fatalf("style = %v, want square", style)
	}
}

func TestReplaceAndShutdown(t *testing.T) {
	d := New(hiddenCompositor{}, config.DefaultSettings(), NewLoop(nil), nil)
	d.Borders().Add(1, 1)
	d.Borders().Add(2, 1)

	next := config.DefaultSettings()
	next.Width = 9
	d.Replace(next)
	if d.Settings().Width != 9 {
		t.Fatalf("expected replaced width")
	}

	d.Shutdown()
	if d.Borders().Len() != 0 {
		t.Fatalf("expected no borders after shutdown")
	}
}
