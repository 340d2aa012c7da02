package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
)

// Monitor represents a physical display.
type Monitor struct {
	ID      int
	Name    string
	X       int
	Y       int
	Width   int
	Height  int
	Primary bool
}

// Insets are the per-edge amounts of a monitor already reserved by other
// docks and panels (the X analog of the host menu-bar inset).
type Insets struct {
	Top    int
	Bottom int
	Left   int
	Right  int
}

// GetMonitors retrieves all active monitors using XRandR.
func (c *Connection) GetMonitors() ([]Monitor, error) {
	if err := randr.Init(c.XUtil.Conn()); err != nil {
		return nil, fmt.Errorf("randr init failed: %w", err)
	}

	resources, err := randr.GetScreenResources(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to get screen resources: %w", err)
	}

	var primaryOutput randr.Output
	if primary, err := randr.GetOutputPrimary(c.XUtil.Conn(), c.Root).Reply(); err == nil {
		primaryOutput = primary.Output
	}

	var monitors []Monitor
	for i, crtc := range resources.Crtcs {
		crtcInfo, err := randr.GetCrtcInfo(c.XUtil.Conn(), crtc, resources.ConfigTimestamp).Reply()
		if err != nil {
			continue
		}
		if crtcInfo.Width == 0 || crtcInfo.Height == 0 || len(crtcInfo.Outputs) == 0 {
			continue
		}

		name := fmt.Sprintf("Monitor%d", i)
		isPrimary := false
		for _, output := range crtcInfo.Outputs {
			if output == primaryOutput && primaryOutput != 0 {
				isPrimary = true
			}
		}
		if outputInfo, err := randr.GetOutputInfo(c.XUtil.Conn(), crtcInfo.Outputs[0], resources.ConfigTimestamp).Reply(); err == nil {
			name = string(outputInfo.Name)
		}

		monitors = append(monitors, Monitor{
			ID:      i,
			Name:    name,
			X:       int(crtcInfo.X),
			Y:       int(crtcInfo.Y),
			Width:   int(crtcInfo.Width),
			Height:  int(crtcInfo.Height),
			Primary: isPrimary,
		})
	}

	return monitors, nil
}

// PrimaryMonitor returns the primary monitor, falling back to the first one.
func (c *Connection) PrimaryMonitor() (*Monitor, error) {
	monitors, err := c.GetMonitors()
	if err != nil {
		return nil, err
	}
	if len(monitors) == 0 {
		return nil, fmt.Errorf("no monitors found")
	}
	for i := range monitors {
		if monitors[i].Primary {
			return &monitors[i], nil
		}
	}
	return &monitors[0], nil
}

// ReservedInsets computes how much of a monitor other docks and panels have
// already reserved via EWMH struts, so the bar can avoid (or grow into)
// those regions. exclude is skipped, allowing the caller to ignore its own
// window.
func (c *Connection) ReservedInsets(mon Monitor, exclude xproto.Window) Insets {
	rootGeom, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(c.Root)).Reply()
	if err != nil {
		return Insets{}
	}
	rootWidth := int(rootGeom.Width)
	rootHeight := int(rootGeom.Height)

	clients, err := ewmh.ClientListGet(c.XUtil)
	if err != nil {
		return Insets{}
	}

	var insets Insets
	for _, windowID := range clients {
		if windowID == exclude {
			continue
		}
		if !isDockWindow(c, windowID) {
			continue
		}

		sp, err := ewmh.WmStrutPartialGet(c.XUtil, windowID)
		if err != nil {
			// Some docks only set _NET_WM_STRUT (no partial ranges).
			s, err := ewmh.WmStrutGet(c.XUtil, windowID)
			if err != nil {
				continue
			}
			sp = &ewmh.WmStrutPartial{
				Left: s.Left, Right: s.Right, Top: s.Top, Bottom: s.Bottom,
				LeftStartY: 0, LeftEndY: uint(rootHeight - 1),
				RightStartY: 0, RightEndY: uint(rootHeight - 1),
				TopStartX: 0, TopEndX: uint(rootWidth - 1),
				BottomStartX: 0, BottomEndX: uint(rootWidth - 1),
			}
		}
		accumulateStruts(mon, rootWidth, rootHeight, sp, &insets)
	}

	return insets
}

func isDockWindow(c *Connection, windowID xproto.Window) bool {
	types, err := ewmh.WmWindowTypeGet(c.XUtil, windowID)
	if err != nil {
		return false
	}
	for _, t := range types {
		if t == "_NET_WM_WINDOW_TYPE_DOCK" {
			return true
		}
	}
	return false
}

// accumulateStruts folds one window's strut rectangles into the insets,
// counting only the parts that overlap the monitor.
func accumulateStruts(mon Monitor, rootWidth, rootHeight int, sp *ewmh.WmStrutPartial, acc *Insets) {
	if sp.Top > 0 {
		h := overlapHeight(mon, int(sp.TopStartX), 0, int(sp.TopEndX)+1, int(sp.Top))
		acc.Top = max(acc.Top, h)
	}
	if sp.Bottom > 0 {
		h := overlapHeight(mon, int(sp.BottomStartX), rootHeight-int(sp.Bottom), int(sp.BottomEndX)+1, rootHeight)
		acc.Bottom = max(acc.Bottom, h)
	}
	if sp.Left > 0 {
		w := overlapWidth(mon, 0, int(sp.LeftStartY), int(sp.Left), int(sp.LeftEndY)+1)
		acc.Left = max(acc.Left, w)
	}
	if sp.Right > 0 {
		w := overlapWidth(mon, rootWidth-int(sp.Right), int(sp.RightStartY), rootWidth, int(sp.RightEndY)+1)
		acc.Right = max(acc.Right, w)
	}
}

func overlapHeight(mon Monitor, x1, y1, x2, y2 int) int {
	_, h := overlap(mon, x1, y1, x2, y2)
	return h
}

func overlapWidth(mon Monitor, x1, y1, x2, y2 int) int {
	w, _ := overlap(mon, x1, y1, x2, y2)
	return w
}

func overlap(mon Monitor, x1, y1, x2, y2 int) (int, int) {
	ox1 := max(mon.X, x1)
	oy1 := max(mon.Y, y1)
	ox2 := min(mon.X+mon.Width, x2)
	oy2 := min(mon.Y+mon.Height, y2)
	if ox2 <= ox1 || oy2 <= oy1 {
		return 0, 0
	}
	return ox2 - ox1, oy2 - oy1
}
