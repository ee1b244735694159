package daemon

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/1broseidon/borders/internal/platform"
)

// WindowLister returns the windows that currently exist.
type WindowLister func() ([]platform.Window, error)

// Tracked is the part of the border set the reconciler inspects.
type Tracked interface {
	Targets() []platform.WindowID
	Remove(window platform.WindowID, space platform.SpaceID) int
}

// ReconcilerConfig holds configuration for the reconciler.
type ReconcilerConfig struct {
	Interval time.Duration
	Logger   *slog.Logger
}

// Reconciler periodically drops borders whose windows disappeared without
// an event reaching the tracker.
type Reconciler struct {
	interval    time.Duration
	loop        *Loop
	tracked     Tracked
	listWindows WindowLister
	logger      *slog.Logger
}

// NewReconciler creates a new reconciler with the given configuration.
// Passes run on loop.
func NewReconciler(cfg ReconcilerConfig, loop *Loop, tracked Tracked, listWindows WindowLister) *Reconciler {
	interval := cfg.Interval
	if interval <= 0 {
		interval = 10 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Reconciler{
		interval:    interval,
		loop:        loop,
		tracked:     tracked,
		listWindows: listWindows,
		logger:      logger,
	}
}

// Run starts the reconciliation loop. Blocks until context is cancelled or
// the event loop exits.
func (r *Reconciler) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Info("reconciler started", "interval", r.interval)

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("reconciler stopped")
			return
		case <-ticker.C:
			if !r.loop.Post(r.reconcile) {
				r.logger.Info("reconciler stopped")
				return
			}
		}
	}
}

// reconcile performs a single reconciliation pass. It must run on the loop.
func (r *Reconciler) reconcile() {
	// Recover from panics to prevent crashing the daemon
	defer func() {
		if err := recover(); err != nil {
			r.logger.Error("reconciler panic recovered", "error", err)
		}
	}()

	targets := r.tracked.Targets()
	if len(targets) == 0 {
		return
	}

	windows, err := r.listWindows()
	if err != nil {
		r.logger.Error("reconciler: failed to list windows", "error", err)
		return
	}

	actual := make(map[platform.WindowID]bool, len(windows))
	for _, w := range windows {
		actual[w.ID] = true
	}

	for _, target := range targets {
		if actual[target] {
			continue
		}
		removed := r.tracked.Remove(target, 0)
		r.logger.Info("reconciler: removed orphaned border",
			"window_id", target,
			"count", removed)
	}
}

// ReconcileNow triggers an immediate reconciliation pass. It must run on
// the loop.
func (r *Reconciler) ReconcileNow() {
	r.reconcile()
}
