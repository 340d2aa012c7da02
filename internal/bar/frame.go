// Package bar computes the overlay window's geometry and owns its
// visibility state machine.
package bar

import (
	"github.com/eltribehou/AerospaceBar/internal/config"
)

// Rect is a screen-space rectangle.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Insets mirror x11.Insets without importing the X layer, keeping frame
// math testable headless.
type Insets struct {
	Top    int
	Bottom int
	Left   int
	Right  int
}

// ComputeFrame places a bar of the given thickness on one edge of the
// monitor. For the top position the bar grows to at least the display's
// already-reserved top inset so an existing system panel can never occlude
// it; the other edges ignore reserved regions and simply overlay.
func ComputeFrame(mon Rect, reserved Insets, pos config.Position, size int) Rect {
	if size < 1 {
		size = 1
	}

	switch pos {
	case config.PositionBottom:
		size = min(size, mon.Height)
		return Rect{X: mon.X, Y: mon.Y + mon.Height - size, Width: mon.Width, Height: size}
	case config.PositionLeft:
		size = min(size, mon.Width)
		return Rect{X: mon.X, Y: mon.Y, Width: size, Height: mon.Height}
	case config.PositionRight:
		size = min(size, mon.Width)
		return Rect{X: mon.X + mon.Width - size, Y: mon.Y, Width: size, Height: mon.Height}
	default: // top
		size = max(size, reserved.Top)
		size = min(size, mon.Height)
		return Rect{X: mon.X, Y: mon.Y, Width: mon.Width, Height: size}
	}
}
