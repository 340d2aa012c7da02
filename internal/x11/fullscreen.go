package x11

import (
	"github.com/BurntSushi/xgbutil/ewmh"
)

// ActiveWindowFullscreen reports whether the currently focused window is in
// exclusive fullscreen (_NET_WM_STATE_FULLSCREEN). Distinct from simple
// maximization, which sets the MAXIMIZED_HORZ/VERT states instead.
func (c *Connection) ActiveWindowFullscreen() (bool, error) {
	active, err := ewmh.ActiveWindowGet(c.XUtil)
	if err != nil || active == 0 {
		return false, err
	}

	states, err := ewmh.WmStateGet(c.XUtil, active)
	if err != nil {
		return false, err
	}
	for _, s := range states {
		if s == "_NET_WM_STATE_FULLSCREEN" {
			return true, nil
		}
	}
	return false, nil
}
