// Package dispatch provides the daemon's serial run loop. Every piece of
// shared mutable state (the view model, debounce timers, the bar controller)
// is touched exclusively from this loop, so the rest of the codebase needs no
// locks: goroutines hand work to the loop instead of sharing memory.
package dispatch

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"
)

const taskQueueSize = 256

// Loop executes posted tasks one at a time, in FIFO order, on a single
// goroutine.
type Loop struct {
	tasks  chan func()
	logger *slog.Logger
}

// NewLoop creates a run loop. Call Run to start draining tasks.
func NewLoop(logger *slog.Logger) *Loop {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loop{
		tasks:  make(chan func(), taskQueueSize),
		logger: logger,
	}
}

// Run drains the task queue until ctx is cancelled. Blocks.
func (l *Loop) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case fn := <-l.tasks:
			l.exec(fn)
		}
	}
}

func (l *Loop) exec(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("panic in dispatched task recovered", "error", r)
		}
	}()
	fn()
}

// Post enqueues fn for execution on the loop. Safe to call from any
// goroutine. If the queue is full the task is dropped with a warning rather
// than blocking the caller; refresh triggers are idempotent so a dropped
// task self-corrects on the next event.
func (l *Loop) Post(fn func()) {
	select {
	case l.tasks <- fn:
	default:
		l.logger.Warn("dispatch queue full, dropping task")
	}
}

// Handle identifies a delayed task scheduled with PostDelayed.
type Handle struct {
	timer     *time.Timer
	cancelled atomic.Bool
}

// Cancel prevents the delayed task from running. Idempotent. Cancelling a
// task that already ran is a no-op.
func (h *Handle) Cancel() {
	if h == nil {
		return
	}
	h.cancelled.Store(true)
	h.timer.Stop()
}

// PostDelayed schedules fn to run on the loop after d. The returned handle
// can cancel the task up until it starts executing; cancellation is checked
// on the loop itself, so a timer that fires concurrently with Cancel never
// runs the task.
func (l *Loop) PostDelayed(d time.Duration, fn func()) *Handle {
	h := &Handle{}
	h.timer = time.AfterFunc(d, func() {
		l.Post(func() {
			if h.cancelled.Load() {
				return
			}
			fn()
		})
	})
	return h
}
