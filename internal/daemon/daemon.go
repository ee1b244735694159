package daemon

import (
	"context"
	"io"
	"log/slog"

	"github.com/1broseidon/borders/internal/border"
	"github.com/1broseidon/borders/internal/config"
	"github.com/1broseidon/borders/internal/platform"
)

// Daemon owns the settings and the border set. Every method except
// HandleUpdate must run on the loop.
type Daemon struct {
	settings *config.Settings
	set      *border.Set
	loop     *Loop
	logger   *slog.Logger
}

// New creates a daemon drawing through comp, starting from settings.
func New(comp platform.Compositor, settings config.Settings, loop *Loop, logger *slog.Logger) *Daemon {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	s := new(config.Settings)
	*s = settings
	return &Daemon{
		settings: s,
		set:      border.NewSet(comp, s, logger),
		loop:     loop,
		logger:   logger,
	}
}

// Borders returns the border set.
func (d *Daemon) Borders() *border.Set { return d.set }

// Settings returns a copy of the current settings.
func (d *Daemon) Settings() config.Settings { return *d.settings }

// ApplyUpdate applies update tokens and redraws the borders whose
// appearance changed.
func (d *Daemon) ApplyUpdate(tokens []string) config.Scope {
	scope := d.settings.Apply(tokens, d.logger)
	if scope != config.ScopeNone {
		d.logger.Info("settings updated", "scope", scope.String(), "settings", d.settings.String())
	}
	d.set.Redraw(scope)
	return scope
}

// Replace swaps in a full settings value, as on a config reload, and
// redraws everything.
func (d *Daemon) Replace(settings config.Settings) {
	*d.settings = settings
	d.logger.Info("settings replaced", "settings", d.settings.String())
	d.set.Redraw(config.ScopeAll)
}

// HandleUpdate applies tokens on the loop. It is safe to call from any
// goroutine.
func (d *Daemon) HandleUpdate(ctx context.Context, tokens []string) (config.Scope, error) {
	var scope config.Scope
	err := d.loop.Do(ctx, func() {
		scope = d.ApplyUpdate(tokens)
	})
	return scope, err
}

// Shutdown destroys every border.
func (d *Daemon) Shutdown() {
	n := d.set.Len()
	d.set.Close()
	d.logger.Info("borders removed", "count", n)
}
