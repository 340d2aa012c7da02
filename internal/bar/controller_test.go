package bar

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/eltribehou/AerospaceBar/internal/config"
	"github.com/eltribehou/AerospaceBar/internal/dispatch"
)

type fakeWindow struct {
	mu     sync.Mutex
	frames []Rect
	shown  bool
}

func (w *fakeWindow) ApplyFrame(x, y, width, height int) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.frames = append(w.frames, Rect{X: x, Y: y, Width: width, Height: height})
	return nil
}

func (w *fakeWindow) Show() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.shown = true
	return nil
}

func (w *fakeWindow) Hide() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.shown = false
	return nil
}

func (w *fakeWindow) lastFrame() (Rect, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.frames) == 0 {
		return Rect{}, false
	}
	return w.frames[len(w.frames)-1], true
}

func (w *fakeWindow) visible() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.shown
}

type fakeDisplays struct {
	mu         sync.Mutex
	name       string
	geom       Rect
	reserved   Insets
	fullscreen bool
}

func (d *fakeDisplays) PrimaryDisplay() (string, Rect, Insets, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.name, d.geom, d.reserved, nil
}

func (d *fakeDisplays) FocusedFullscreen() (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.fullscreen, nil
}

func (d *fakeDisplays) setFullscreen(v bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.fullscreen = v
}

func startLoop(t *testing.T) *dispatch.Loop {
	t.Helper()
	l := dispatch.NewLoop(nil)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go l.Run(ctx)
	return l
}

// settle waits until all tasks posted so far have run.
func settle(t *testing.T, l *dispatch.Loop) {
	t.Helper()
	done := make(chan struct{})
	l.Post(func() { close(done) })
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("dispatch loop did not settle")
	}
}

func testConfig(t *testing.T, mutate func(*config.Config)) *config.Config {
	t.Helper()
	cfg := config.DefaultConfig()
	if mutate != nil {
		mutate(cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("config: %v", err)
	}
	return cfg
}

func TestController_RepositionAppliesFrameAndShows(t *testing.T) {
	loop := startLoop(t)
	win := &fakeWindow{}
	displays := &fakeDisplays{name: "DP-1", geom: Rect{Width: 1920, Height: 1080}}
	c := NewController(loop, win, displays, testConfig(t, nil), nil)

	c.Reposition()
	settle(t, loop)

	frame, ok := win.lastFrame()
	if !ok {
		t.Fatalf("no frame applied")
	}
	want := Rect{X: 0, Y: 0, Width: 1920, Height: config.DefaultBarSize}
	if frame != want {
		t.Fatalf("frame = %+v, want %+v", frame, want)
	}
	if !win.visible() || !c.Visible() {
		t.Fatalf("bar should be visible after reposition")
	}
}

func TestController_PerDisplaySizeRule(t *testing.T) {
	loop := startLoop(t)
	win := &fakeWindow{}
	displays := &fakeDisplays{name: "eDP-1", geom: Rect{Width: 2880, Height: 1800}}
	cfg := testConfig(t, func(c *config.Config) {
		c.Bar.Displays = []config.DisplayRule{{Pattern: "^eDP-", Size: 48}}
	})
	c := NewController(loop, win, displays, cfg, nil)

	c.Reposition()
	settle(t, loop)

	frame, _ := win.lastFrame()
	if frame.Height != 48 {
		t.Fatalf("height = %d, want 48 from display rule", frame.Height)
	}
}

func TestController_HidesOnFullscreenAndRestores(t *testing.T) {
	loop := startLoop(t)
	win := &fakeWindow{}
	displays := &fakeDisplays{name: "DP-1", geom: Rect{Width: 1920, Height: 1080}}
	c := NewController(loop, win, displays, testConfig(t, nil), nil)

	c.Reposition()
	settle(t, loop)
	if !c.Visible() {
		t.Fatalf("precondition: bar visible")
	}

	displays.setFullscreen(true)
	c.CheckFullscreen()
	settle(t, loop)
	if c.Visible() || win.visible() {
		t.Fatalf("bar should hide while the focused window is fullscreen")
	}

	// Repositioning while hidden must not remap the window.
	c.Reposition()
	settle(t, loop)
	if win.visible() {
		t.Fatalf("reposition remapped a hidden bar")
	}

	displays.setFullscreen(false)
	c.CheckFullscreen()
	settle(t, loop)
	if !c.Visible() || !win.visible() {
		t.Fatalf("bar should restore when fullscreen clears")
	}
}

func TestController_HideOnFullscreenDisabled(t *testing.T) {
	loop := startLoop(t)
	win := &fakeWindow{}
	displays := &fakeDisplays{name: "DP-1", geom: Rect{Width: 1920, Height: 1080}, fullscreen: true}
	disabled := false
	cfg := testConfig(t, func(c *config.Config) {
		c.HideOnFullscreen = &disabled
	})
	c := NewController(loop, win, displays, cfg, nil)

	c.Reposition()
	c.CheckFullscreen()
	settle(t, loop)
	if !c.Visible() {
		t.Fatalf("bar hid although hide_on_fullscreen is disabled")
	}
}

func TestController_UpdateConfigRepositions(t *testing.T) {
	loop := startLoop(t)
	win := &fakeWindow{}
	displays := &fakeDisplays{name: "DP-1", geom: Rect{Width: 1920, Height: 1080}}
	c := NewController(loop, win, displays, testConfig(t, nil), nil)

	c.Reposition()
	settle(t, loop)

	cfg := testConfig(t, func(c *config.Config) {
		c.Bar.Position = config.PositionBottom
		c.Bar.Size = 24
	})
	c.UpdateConfig(cfg)
	settle(t, loop)

	frame, _ := win.lastFrame()
	want := Rect{X: 0, Y: 1056, Width: 1920, Height: 24}
	if frame != want {
		t.Fatalf("frame = %+v, want %+v after config update", frame, want)
	}
}
