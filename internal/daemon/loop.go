// Package daemon runs the serialized event loop that owns every border and
// applies configuration updates to them.
package daemon

import (
	"context"
	"errors"
	"io"
	"log/slog"
)

// ErrStopped is returned when work is submitted to a loop that has exited.
var ErrStopped = errors.New("event loop stopped")

// ErrDisplayClosed is returned by Run when the X event loop quits.
var ErrDisplayClosed = errors.New("display event loop quit")

// XEvents are the ping channels of a running X event loop. Callbacks run
// between a receive on Before and a receive on After. Nil channels are never
// ready, so a zero XEvents runs the loop without a display.
type XEvents struct {
	Before <-chan struct{}
	After  <-chan struct{}
	Quit   <-chan struct{}
}

// Loop is the single execution context for border state. Work posted from
// other goroutines runs on the goroutine that called Run, never concurrently
// with X event callbacks.
type Loop struct {
	work   chan func()
	done   chan struct{}
	logger *slog.Logger
}

// NewLoop creates a loop. Run must be called exactly once.
func NewLoop(logger *slog.Logger) *Loop {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Loop{
		work:   make(chan func(), 64),
		done:   make(chan struct{}),
		logger: logger,
	}
}

// Post queues fn to run on the loop. It reports false when the loop has
// exited.
func (l *Loop) Post(fn func()) bool {
	select {
	case <-l.done:
		return false
	default:
	}
	select {
	case l.work <- fn:
		return true
	case <-l.done:
		return false
	}
}

// Do runs fn on the loop and waits for it to finish.
func (l *Loop) Do(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	if !l.Post(func() {
		defer close(finished)
		fn()
	}) {
		return ErrStopped
	}
	select {
	case <-finished:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-l.done:
		// fn may have run just before the loop exited.
		select {
		case <-finished:
			return nil
		default:
			return ErrStopped
		}
	}
}

// Done is closed once Run has returned.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

// Run processes work and X events until ctx is cancelled or the X event
// loop quits.
func (l *Loop) Run(ctx context.Context, x XEvents) error {
	defer close(l.done)

	l.logger.Debug("event loop started")
	for {
		select {
		case <-ctx.Done():
			l.logger.Debug("event loop stopped")
			return nil
		case <-x.Before:
			<-x.After
		case <-x.Quit:
			return ErrDisplayClosed
		case fn := <-l.work:
			l.run(fn)
		}
	}
}

func (l *Loop) run(fn func()) {
	// Recover from panics to prevent crashing the daemon
	defer func() {
		if err := recover(); err != nil {
			l.logger.Error("event loop panic recovered", "error", err)
		}
	}()
	fn()
}
