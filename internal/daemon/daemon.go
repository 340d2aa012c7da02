// Package daemon wires the status bar together: the dispatch loop, the
// window manager gateway, the refresh orchestrator, the overlay window
// controller, the IPC server and the external event sources.
package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/eltribehou/AerospaceBar/internal/aerospace"
	"github.com/eltribehou/AerospaceBar/internal/audio"
	"github.com/eltribehou/AerospaceBar/internal/bar"
	"github.com/eltribehou/AerospaceBar/internal/config"
	"github.com/eltribehou/AerospaceBar/internal/dispatch"
	"github.com/eltribehou/AerospaceBar/internal/ipc"
	"github.com/eltribehou/AerospaceBar/internal/refresh"
	"github.com/eltribehou/AerospaceBar/internal/x11"
)

// Options controls daemon startup.
type Options struct {
	// ConfigPath overrides the default config location when non-empty.
	ConfigPath string
	// Debug lowers the log level to debug.
	Debug bool
}

// Daemon is the long-running process behind `aerospacebar daemon`.
type Daemon struct {
	logger *slog.Logger
	loop   *dispatch.Loop
	gw     *aerospace.Client
	orch   *refresh.Orchestrator
	deb    *refresh.Debouncer

	// barctl is nil when no X display is available; the daemon then still
	// serves state over IPC (useful for tests and remote setups).
	barctl *bar.Controller
	conn   *x11.Connection
	win    *x11.BarWindow

	configPath string
	startTime  time.Time
}

// Run starts the daemon and blocks until ctx is cancelled or a termination
// signal arrives.
func Run(ctx context.Context, opts Options) error {
	level := slog.LevelInfo
	if opts.Debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	configPath := opts.ConfigPath
	if configPath == "" {
		var err error
		configPath, err = config.DefaultConfigPath()
		if err != nil {
			return err
		}
	}
	res, err := config.LoadFromPath(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	for _, w := range res.Warnings {
		logger.Warn("config", "warning", w)
	}
	cfg := res.Config

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	loop := dispatch.NewLoop(logger)

	gw := aerospace.New(cfg.AerospacePath, loop,
		aerospace.WithModeCommand(cfg.ModeCommand),
		aerospace.WithLogger(logger))
	querier := audio.NewQuerier("", logger)
	orch := refresh.NewOrchestrator(loop, gw, querier, logger)
	deb := refresh.NewDebouncer(loop, cfg.DebounceInterval(), logger)
	deb.Bind(refresh.SourceWindows, orch.RefreshWorkspaces)
	deb.Bind(refresh.SourceMode, orch.RefreshMode)

	d := &Daemon{
		logger:     logger,
		loop:       loop,
		gw:         gw,
		orch:       orch,
		deb:        deb,
		configPath: res.Path,
		startTime:  time.Now(),
	}

	// X display is optional; without one the daemon degrades to a headless
	// state service.
	conn, err := x11.NewConnection()
	if err != nil {
		logger.Warn("no X display, running headless", "error", err)
	} else {
		d.conn = conn
		defer conn.Close()

		win, err := conn.CreateBarWindow(x11.ParseColor(cfg.Colors.Background))
		if err != nil {
			return fmt.Errorf("failed to create bar window: %w", err)
		}
		d.win = win
		defer win.Destroy()

		d.barctl = bar.NewController(loop, win, &displayAdapter{conn: conn, win: win}, cfg, logger)

		watcher, err := conn.NewWatcher(&eventBridge{d: d}, logger)
		if err != nil {
			return fmt.Errorf("failed to create X watcher: %w", err)
		}
		if err := watcher.Start(); err != nil {
			return fmt.Errorf("failed to subscribe to X events: %w", err)
		}
	}

	ipcServer, err := ipc.NewServer(d, logger)
	if err != nil {
		return err
	}
	if err := ipcServer.Start(); err != nil {
		return err
	}
	defer ipcServer.Stop()

	go loop.Run(ctx)

	listener := audio.NewListener("", d.TriggerAudio, logger)
	go listener.Run(ctx)

	go func() {
		if err := config.Watch(ctx, d.configPath, logger, func() {
			if err := d.Reload(); err != nil {
				logger.Warn("config reload failed, keeping previous config", "error", err)
			}
		}); err != nil {
			logger.Warn("config watch unavailable", "error", err)
		}
	}()

	var reconcileTarget Reconcilable
	if d.barctl != nil {
		reconcileTarget = d.barctl
	}
	reconciler := NewReconciler(ReconcilerConfig{Logger: logger}, reconcileTarget)
	go reconciler.Run(ctx)

	if d.conn != nil {
		go d.conn.EventLoop()
		defer d.conn.Quit()
	}

	// Initial population: the bar shows real state before the first
	// external trigger arrives.
	orch.RefreshWorkspaces()
	orch.RefreshMode()
	orch.RefreshAudio()
	if d.barctl != nil {
		d.barctl.Reposition()
		d.barctl.CheckFullscreen()
	}

	logger.Info("daemon started",
		"config", d.configPath,
		"aerospace", cfg.AerospacePath,
		"debounce", deb.Interval())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigCh)

	for {
		select {
		case <-ctx.Done():
			logger.Info("daemon stopping", "reason", "context cancelled")
			return nil
		case sig := <-sigCh:
			if sig == syscall.SIGHUP {
				logger.Info("reloading config on SIGHUP")
				if err := d.Reload(); err != nil {
					logger.Warn("config reload failed, keeping previous config", "error", err)
				}
				continue
			}
			logger.Info("daemon stopping", "signal", sig)
			return nil
		}
	}
}

// TriggerWindows implements ipc.Core: a debounced workspace/window refresh.
func (d *Daemon) TriggerWindows() {
	d.deb.Request(refresh.SourceWindows)
}

// TriggerMode implements ipc.Core: a debounced keybind-mode refresh.
func (d *Daemon) TriggerMode() {
	d.deb.Request(refresh.SourceMode)
}

// TriggerAudio implements ipc.Core: audio refreshes bypass debouncing.
func (d *Daemon) TriggerAudio() {
	d.orch.RefreshAudio()
}

// SwitchWorkspace implements ipc.Core.
func (d *Daemon) SwitchWorkspace(id string) {
	d.orch.SwitchWorkspace(id)
}

// ListWorkspaces implements ipc.Core with a live CLI query.
func (d *Daemon) ListWorkspaces() []string {
	return d.gw.ListWorkspacesSync()
}

// StateSnapshot implements ipc.Core.
func (d *Daemon) StateSnapshot() ipc.StateData {
	return ipc.StateData{Model: d.orch.Snapshot()}
}

// Status implements ipc.Core.
func (d *Daemon) Status() ipc.StatusData {
	snap := d.orch.Snapshot()
	visible := d.barctl != nil && d.barctl.Visible()
	return ipc.StatusData{
		DaemonRunning:  true,
		UptimeSeconds:  int64(time.Since(d.startTime).Seconds()),
		WorkspaceCount: len(snap.Workspaces),
		BarVisible:     visible,
		ConfigPath:     d.configPath,
	}
}

// Reload implements ipc.Core: re-read the config file and apply it across
// components. An invalid file leaves the running config untouched.
func (d *Daemon) Reload() error {
	res, err := config.LoadFromPath(d.configPath)
	if err != nil {
		return err
	}
	for _, w := range res.Warnings {
		d.logger.Warn("config", "warning", w)
	}
	cfg := res.Config

	d.gw.UpdateConfig(cfg.AerospacePath, cfg.ModeCommand)
	d.deb.SetInterval(cfg.DebounceInterval())
	if d.barctl != nil {
		d.win.SetBackground(x11.ParseColor(cfg.Colors.Background))
		d.barctl.UpdateConfig(cfg)
	}

	// Mode may have been enabled or disabled; refresh so the view model
	// reflects the new configuration immediately.
	d.orch.RefreshMode()
	d.orch.RefreshWorkspaces()

	d.logger.Info("config reloaded", "path", res.Path)
	return nil
}

// eventBridge forwards X event callbacks into daemon actions. Callbacks run
// on the X event goroutine; every target below posts to the dispatch loop
// internally.
type eventBridge struct {
	d *Daemon
}

func (b *eventBridge) ActiveWindowChanged() {
	b.d.barctl.CheckFullscreen()
	b.d.TriggerWindows()
}

func (b *eventBridge) FullscreenMaybeChanged() {
	b.d.barctl.CheckFullscreen()
	b.d.TriggerWindows()
}

func (b *eventBridge) ScreenChanged() {
	b.d.barctl.Reposition()
}

// displayAdapter implements bar.Displays on top of the X layer. The bar's
// own window is excluded from the reserved-inset scan so it never reserves
// space against itself.
type displayAdapter struct {
	conn *x11.Connection
	win  *x11.BarWindow
}

func (a *displayAdapter) PrimaryDisplay() (string, bar.Rect, bar.Insets, error) {
	mon, err := a.conn.PrimaryMonitor()
	if err != nil {
		return "", bar.Rect{}, bar.Insets{}, err
	}
	ins := a.conn.ReservedInsets(*mon, a.win.ID())
	geom := bar.Rect{X: mon.X, Y: mon.Y, Width: mon.Width, Height: mon.Height}
	reserved := bar.Insets{Top: ins.Top, Bottom: ins.Bottom, Left: ins.Left, Right: ins.Right}
	return mon.Name, geom, reserved, nil
}

func (a *displayAdapter) FocusedFullscreen() (bool, error) {
	return a.conn.ActiveWindowFullscreen()
}
