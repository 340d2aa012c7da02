package x11

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/BurntSushi/xgb/xproto"
)

// BarWindow is the borderless, always-on-top overlay surface. It is created
// with override_redirect so the window manager never decorates, moves or
// tiles it.
type BarWindow struct {
	conn   *Connection
	id     xproto.Window
	mapped bool
}

// CreateBarWindow creates the (unmapped) overlay window with the given
// background color.
func (c *Connection) CreateBarWindow(background uint32) (*BarWindow, error) {
	conn := c.XUtil.Conn()
	screen := c.XUtil.Screen()

	wid, err := xproto.NewWindowId(conn)
	if err != nil {
		return nil, err
	}

	err = xproto.CreateWindowChecked(
		conn,
		screen.RootDepth,
		wid,
		c.Root,
		0, 0, // positioned later by ApplyFrame
		1, 1,
		0, // border_width
		xproto.WindowClassInputOutput,
		screen.RootVisual,
		xproto.CwBackPixel|xproto.CwOverrideRedirect,
		// Value list order follows the bit positions of the mask.
		[]uint32{background, 1},
	).Check()
	if err != nil {
		return nil, fmt.Errorf("failed to create bar window: %w", err)
	}

	return &BarWindow{conn: c, id: wid}, nil
}

// ID returns the X window id.
func (w *BarWindow) ID() xproto.Window {
	return w.id
}

// ApplyFrame moves and resizes the bar, keeping it stacked above everything.
func (w *BarWindow) ApplyFrame(x, y, width, height int) error {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	return xproto.ConfigureWindowChecked(
		w.conn.XUtil.Conn(),
		w.id,
		xproto.ConfigWindowX|xproto.ConfigWindowY|xproto.ConfigWindowWidth|xproto.ConfigWindowHeight|xproto.ConfigWindowStackMode,
		[]uint32{
			uint32(x),
			uint32(y),
			uint32(width),
			uint32(height),
			xproto.StackModeAbove,
		},
	).Check()
}

// SetBackground recolors the bar surface.
func (w *BarWindow) SetBackground(color uint32) {
	conn := w.conn.XUtil.Conn()
	xproto.ChangeWindowAttributes(conn, w.id, xproto.CwBackPixel, []uint32{color})
	xproto.ClearArea(conn, false, w.id, 0, 0, 0, 0)
}

// Show maps the window. Idempotent.
func (w *BarWindow) Show() error {
	if w.mapped {
		return nil
	}
	if err := xproto.MapWindowChecked(w.conn.XUtil.Conn(), w.id).Check(); err != nil {
		return err
	}
	w.mapped = true
	return nil
}

// Hide unmaps the window without destroying it. Idempotent.
func (w *BarWindow) Hide() error {
	if !w.mapped {
		return nil
	}
	if err := xproto.UnmapWindowChecked(w.conn.XUtil.Conn(), w.id).Check(); err != nil {
		return err
	}
	w.mapped = false
	return nil
}

// Visible reports whether the window is currently mapped.
func (w *BarWindow) Visible() bool {
	return w.mapped
}

// Destroy releases the window.
func (w *BarWindow) Destroy() {
	if w.id != 0 {
		xproto.DestroyWindow(w.conn.XUtil.Conn(), w.id)
		w.id = 0
		w.mapped = false
	}
}

// ParseColor converts "#RRGGBB" to an X pixel value. Returns black for
// anything it cannot parse; config validation keeps palettes well-formed,
// so this is only a backstop.
func ParseColor(s string) uint32 {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) != 6 {
		return 0
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0
	}
	return uint32(v)
}
