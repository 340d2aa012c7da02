// Package refresh contains the debounce scheduler and the orchestrator that
// drives end-to-end refresh cycles against the window manager CLI.
package refresh

import (
	"log/slog"
	"time"

	"github.com/eltribehou/AerospaceBar/internal/dispatch"
)

// MinInterval is the enforced debounce floor. Configured values below it are
// clamped so an event storm can never degenerate into a busy loop.
const MinInterval = 50 * time.Millisecond

// Source identifies an independently debounced refresh trigger. Audio
// changes deliberately have no source here: they are rare and cheap, so they
// bypass debouncing entirely.
type Source int

const (
	SourceWindows Source = iota
	SourceMode
)

func (s Source) String() string {
	switch s {
	case SourceWindows:
		return "windows"
	case SourceMode:
		return "mode"
	default:
		return "unknown"
	}
}

// Debouncer coalesces bursts of refresh requests per source with a
// trailing-edge timer: each new request cancels and replaces the pending one,
// so the bound action runs once, an interval after the last request. All
// timer state lives on the dispatch loop.
type Debouncer struct {
	loop     *dispatch.Loop
	interval time.Duration
	actions  map[Source]func()
	pending  map[Source]*dispatch.Handle
	logger   *slog.Logger
}

// NewDebouncer creates a debouncer. interval is clamped to MinInterval.
func NewDebouncer(loop *dispatch.Loop, interval time.Duration, logger *slog.Logger) *Debouncer {
	if logger == nil {
		logger = slog.Default()
	}
	if interval < MinInterval {
		logger.Warn("debounce interval below floor, clamping",
			"configured", interval, "floor", MinInterval)
		interval = MinInterval
	}
	return &Debouncer{
		loop:     loop,
		interval: interval,
		actions:  map[Source]func(){},
		pending:  map[Source]*dispatch.Handle{},
		logger:   logger,
	}
}

// Interval returns the effective (clamped) debounce interval.
func (d *Debouncer) Interval() time.Duration {
	return d.interval
}

// SetInterval changes the debounce window after a config reload. The new
// value is clamped to MinInterval and applies to timers armed afterwards;
// already pending timers keep their original deadline.
func (d *Debouncer) SetInterval(interval time.Duration) {
	if interval < MinInterval {
		d.logger.Warn("debounce interval below floor, clamping",
			"configured", interval, "floor", MinInterval)
		interval = MinInterval
	}
	d.loop.Post(func() {
		d.interval = interval
	})
}

// Bind associates the action executed when a source's timer fires. Must be
// called before the first Request for that source.
func (d *Debouncer) Bind(src Source, fn func()) {
	d.loop.Post(func() {
		d.actions[src] = fn
	})
}

// Request records a refresh request for src. Safe from any goroutine.
// Sources never cancel each other's timers.
func (d *Debouncer) Request(src Source) {
	d.loop.Post(func() {
		if h, ok := d.pending[src]; ok {
			h.Cancel()
		}
		d.pending[src] = d.loop.PostDelayed(d.interval, func() {
			delete(d.pending, src)
			fn := d.actions[src]
			if fn == nil {
				d.logger.Warn("debounce fired with no bound action", "source", src)
				return
			}
			fn()
		})
	})
}
