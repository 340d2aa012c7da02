package x11

import (
	"log/slog"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/xevent"
	"github.com/BurntSushi/xgbutil/xprop"
	"github.com/BurntSushi/xgbutil/xwindow"
)

// Handler receives X event notifications. Callbacks run on the X event
// goroutine; implementations forward to the dispatch loop.
type Handler interface {
	// ActiveWindowChanged fires when focus moves to a different window.
	ActiveWindowChanged()
	// FullscreenMaybeChanged fires when the observed window's EWMH state
	// changed; the fullscreen flag may or may not have flipped.
	FullscreenMaybeChanged()
	// ScreenChanged fires on display reconfiguration (resolution change,
	// monitor connect/disconnect).
	ScreenChanged()
}

// Watcher subscribes to the root window's property changes and keeps a
// per-window state observation attached to whichever window currently has
// focus. The per-window observation mirrors a focus-scoped observer API:
// it must be torn down and re-created whenever focus moves, or stale
// subscriptions pile up and deliver duplicate callbacks.
type Watcher struct {
	conn    *Connection
	handler Handler
	logger  *slog.Logger

	activeWindowAtom xproto.Atom
	wmStateAtom      xproto.Atom

	// observed is the window whose _NET_WM_STATE we currently listen to.
	// Only touched from the X event goroutine.
	observed xproto.Window
}

// NewWatcher creates a watcher delivering events to handler.
func (c *Connection) NewWatcher(handler Handler, logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = slog.Default()
	}

	activeAtom, err := xprop.Atm(c.XUtil, "_NET_ACTIVE_WINDOW")
	if err != nil {
		return nil, err
	}
	stateAtom, err := xprop.Atm(c.XUtil, "_NET_WM_STATE")
	if err != nil {
		return nil, err
	}

	return &Watcher{
		conn:             c,
		handler:          handler,
		logger:           logger,
		activeWindowAtom: activeAtom,
		wmStateAtom:      stateAtom,
	}, nil
}

// Start attaches the root-window subscriptions and observes the currently
// focused window. The connection's EventLoop must be running (or started
// afterwards) for callbacks to fire.
func (w *Watcher) Start() error {
	root := xwindow.New(w.conn.XUtil, w.conn.Root)
	if err := root.Listen(xproto.EventMaskPropertyChange | xproto.EventMaskStructureNotify); err != nil {
		return err
	}

	xevent.PropertyNotifyFun(func(xu *xgbutil.XUtil, ev xevent.PropertyNotifyEvent) {
		if ev.Atom != w.activeWindowAtom {
			return
		}
		w.reobserveActiveWindow()
		w.handler.ActiveWindowChanged()
		// Focus moves are also how native fullscreen transitions become
		// visible when the previous window was the fullscreen one.
		w.handler.FullscreenMaybeChanged()
	}).Connect(w.conn.XUtil, w.conn.Root)

	// Root geometry changes cover resolution switches and monitor layout
	// changes; a periodic reconcile pass catches anything this misses.
	xevent.ConfigureNotifyFun(func(xu *xgbutil.XUtil, ev xevent.ConfigureNotifyEvent) {
		w.handler.ScreenChanged()
	}).Connect(w.conn.XUtil, w.conn.Root)

	w.reobserveActiveWindow()
	return nil
}

// reobserveActiveWindow moves the per-window state observation to the
// currently focused window. Idempotent: observing the same window twice is
// a no-op, and the old window's callbacks are detached before the new
// attach.
func (w *Watcher) reobserveActiveWindow() {
	active, err := ewmh.ActiveWindowGet(w.conn.XUtil)
	if err != nil {
		w.logger.Debug("failed to resolve active window", "error", err)
		return
	}
	if active == w.observed {
		return
	}

	if w.observed != 0 {
		xevent.Detach(w.conn.XUtil, w.observed)
		xproto.ChangeWindowAttributes(w.conn.XUtil.Conn(), w.observed,
			xproto.CwEventMask, []uint32{0})
	}
	w.observed = active
	if active == 0 {
		return
	}

	win := xwindow.New(w.conn.XUtil, active)
	if err := win.Listen(xproto.EventMaskPropertyChange); err != nil {
		w.logger.Debug("failed to listen on active window", "window", active, "error", err)
		w.observed = 0
		return
	}

	xevent.PropertyNotifyFun(func(xu *xgbutil.XUtil, ev xevent.PropertyNotifyEvent) {
		if ev.Atom == w.wmStateAtom {
			w.handler.FullscreenMaybeChanged()
		}
	}).Connect(w.conn.XUtil, active)

	w.logger.Debug("observing active window", "window", active)
}
