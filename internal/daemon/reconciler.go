package daemon

import (
	"context"
	"log/slog"
	"time"
)

// Reconcilable is the surface the reconciler drives. Implemented by
// bar.Controller.
type Reconcilable interface {
	Reposition()
	CheckFullscreen()
}

// ReconcilerConfig holds configuration for the reconciler.
type ReconcilerConfig struct {
	Interval time.Duration
	Logger   *slog.Logger
}

// Reconciler periodically re-derives bar placement and visibility from the
// live display state. X event delivery can miss transitions (a monitor
// hot-plug while the daemon is busy, a fullscreen toggle on an unobserved
// window), so a slow timer corrects any drift the event path missed.
type Reconciler struct {
	interval time.Duration
	target   Reconcilable
	logger   *slog.Logger
}

// NewReconciler creates a reconciler. target may be nil (headless daemon);
// Run then returns immediately.
func NewReconciler(cfg ReconcilerConfig, target Reconcilable) *Reconciler {
	interval := cfg.Interval
	if interval <= 0 {
		interval = 10 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Reconciler{
		interval: interval,
		target:   target,
		logger:   logger,
	}
}

// Run starts the reconciliation loop. Blocks until context is cancelled.
func (r *Reconciler) Run(ctx context.Context) {
	if r.target == nil {
		return
	}

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Info("reconciler started", "interval", r.interval)

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("reconciler stopped")
			return
		case <-ticker.C:
			r.reconcile()
		}
	}
}

// reconcile performs a single pass.
func (r *Reconciler) reconcile() {
	// Recover from panics to prevent crashing the daemon
	defer func() {
		if err := recover(); err != nil {
			r.logger.Error("reconciler panic recovered", "error", err)
		}
	}()

	r.target.Reposition()
	r.target.CheckFullscreen()
}

// ReconcileNow triggers an immediate reconciliation pass.
func (r *Reconciler) ReconcileNow() {
	if r.target == nil {
		return
	}
	r.reconcile()
}
