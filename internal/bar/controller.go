package bar

import (
	"log/slog"
	"sync/atomic"

	"github.com/eltribehou/AerospaceBar/internal/config"
	"github.com/eltribehou/AerospaceBar/internal/dispatch"
)

// Window abstracts the X overlay surface so the controller can be exercised
// without a display server.
type Window interface {
	ApplyFrame(x, y, width, height int) error
	Show() error
	Hide() error
}

// Displays answers geometry and fullscreen queries.
type Displays interface {
	// PrimaryDisplay returns the name, geometry and reserved insets of the
	// display the bar lives on.
	PrimaryDisplay() (name string, geom Rect, reserved Insets, err error)
	// FocusedFullscreen reports whether the focused window is in exclusive
	// fullscreen.
	FocusedFullscreen() (bool, error)
}

// Controller keeps the overlay window positioned per display and toggles
// its visibility on fullscreen transitions:
//
//	Visible --(fullscreen detected)--> Hidden --(fullscreen cleared)--> Visible
//
// Initial state is Visible. All state lives on the dispatch loop.
type Controller struct {
	loop     *dispatch.Loop
	win      Window
	displays Displays
	logger   *slog.Logger

	// Loop-owned configuration and state.
	position         config.Position
	rules            []config.SizeRule
	fallbackSize     int
	hideOnFullscreen bool
	hidden           bool

	// visible mirrors the state machine for lock-free status reads from
	// IPC goroutines.
	visible atomic.Bool
}

// NewController creates a controller in the Visible state. Call Reposition
// to place and map the window.
func NewController(loop *dispatch.Loop, win Window, displays Displays, cfg *config.Config, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Controller{
		loop:             loop,
		win:              win,
		displays:         displays,
		logger:           logger,
		position:         cfg.Bar.Position,
		rules:            cfg.SizeRules(),
		fallbackSize:     cfg.Bar.Size,
		hideOnFullscreen: cfg.GetHideOnFullscreen(),
	}
	c.visible.Store(true)
	return c
}

// Visible reports the current state-machine state. Safe from any goroutine.
func (c *Controller) Visible() bool {
	return c.visible.Load()
}

// UpdateConfig applies a reloaded configuration and repositions.
func (c *Controller) UpdateConfig(cfg *config.Config) {
	c.loop.Post(func() {
		c.position = cfg.Bar.Position
		c.rules = cfg.SizeRules()
		c.fallbackSize = cfg.Bar.Size
		c.hideOnFullscreen = cfg.GetHideOnFullscreen()
		c.reposition()
		c.checkFullscreen()
	})
}

// Reposition recomputes and applies the bar frame. Called on display
// configuration changes and at startup.
func (c *Controller) Reposition() {
	c.loop.Post(c.reposition)
}

// CheckFullscreen runs the visibility state machine against the focused
// window. Called on every activation and window-state event, never on a
// timer.
func (c *Controller) CheckFullscreen() {
	c.loop.Post(c.checkFullscreen)
}

func (c *Controller) reposition() {
	name, geom, reserved, err := c.displays.PrimaryDisplay()
	if err != nil {
		c.logger.Warn("failed to resolve primary display", "error", err)
		return
	}

	size := c.resolveSize(name)
	frame := ComputeFrame(geom, reserved, c.position, size)
	if err := c.win.ApplyFrame(frame.X, frame.Y, frame.Width, frame.Height); err != nil {
		c.logger.Warn("failed to apply bar frame", "error", err)
		return
	}
	c.logger.Debug("bar frame applied",
		"display", name, "x", frame.X, "y", frame.Y,
		"width", frame.Width, "height", frame.Height)

	if !c.hidden {
		c.show()
	}
}

func (c *Controller) checkFullscreen() {
	wantHidden := false
	if c.hideOnFullscreen {
		fullscreen, err := c.displays.FocusedFullscreen()
		if err != nil {
			// Treat an unreadable state as windowed; the next event
			// re-evaluates.
			c.logger.Debug("fullscreen query failed", "error", err)
		}
		wantHidden = fullscreen
	}

	switch {
	case wantHidden && !c.hidden:
		c.hidden = true
		c.hide()
		c.logger.Debug("bar hidden, focused window is fullscreen")
	case !wantHidden && c.hidden:
		c.hidden = false
		c.show()
		c.logger.Debug("bar restored, fullscreen cleared")
	}
}

func (c *Controller) resolveSize(displayName string) int {
	for _, rule := range c.rules {
		if rule.Pattern.MatchString(displayName) {
			return rule.Size
		}
	}
	return c.fallbackSize
}

func (c *Controller) show() {
	if err := c.win.Show(); err != nil {
		c.logger.Warn("failed to show bar", "error", err)
		return
	}
	c.visible.Store(true)
}

func (c *Controller) hide() {
	if err := c.win.Hide(); err != nil {
		c.logger.Warn("failed to hide bar", "error", err)
		return
	}
	c.visible.Store(false)
}
