package refresh

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/eltribehou/AerospaceBar/internal/dispatch"
)

func startLoop(t *testing.T) *dispatch.Loop {
	t.Helper()
	l := dispatch.NewLoop(nil)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go l.Run(ctx)
	return l
}

func TestDebouncer_CoalescesBurstIntoOneExecution(t *testing.T) {
	loop := startLoop(t)
	d := NewDebouncer(loop, MinInterval, nil)

	var fired atomic.Int32
	d.Bind(SourceWindows, func() { fired.Add(1) })

	for i := 0; i < 10; i++ {
		d.Request(SourceWindows)
	}

	time.Sleep(4 * MinInterval)
	if got := fired.Load(); got != 1 {
		t.Fatalf("expected 1 execution for a burst of 10 requests, got %d", got)
	}
}

func TestDebouncer_TrailingEdge(t *testing.T) {
	loop := startLoop(t)
	d := NewDebouncer(loop, MinInterval, nil)

	var fired atomic.Int32
	d.Bind(SourceWindows, func() { fired.Add(1) })

	d.Request(SourceWindows)
	// A second request inside the window restarts the timer; nothing may
	// fire before an interval has elapsed since the LAST request.
	time.Sleep(MinInterval / 2)
	d.Request(SourceWindows)
	time.Sleep(MinInterval / 2)
	if got := fired.Load(); got != 0 {
		t.Fatalf("debounce fired %d times before the trailing edge", got)
	}

	time.Sleep(3 * MinInterval)
	if got := fired.Load(); got != 1 {
		t.Fatalf("expected exactly 1 execution, got %d", got)
	}
}

func TestDebouncer_SourcesAreIndependent(t *testing.T) {
	loop := startLoop(t)
	d := NewDebouncer(loop, MinInterval, nil)

	var windows, mode atomic.Int32
	d.Bind(SourceWindows, func() { windows.Add(1) })
	d.Bind(SourceMode, func() { mode.Add(1) })

	d.Request(SourceWindows)
	d.Request(SourceMode)
	d.Request(SourceWindows)

	time.Sleep(4 * MinInterval)
	if got := windows.Load(); got != 1 {
		t.Fatalf("windows fired %d times, want 1", got)
	}
	if got := mode.Load(); got != 1 {
		t.Fatalf("mode fired %d times, want 1", got)
	}
}

func TestDebouncer_RepeatedCyclesFireRepeatedly(t *testing.T) {
	loop := startLoop(t)
	d := NewDebouncer(loop, MinInterval, nil)

	var fired atomic.Int32
	d.Bind(SourceMode, func() { fired.Add(1) })

	for cycle := 0; cycle < 3; cycle++ {
		d.Request(SourceMode)
		time.Sleep(3 * MinInterval)
	}
	if got := fired.Load(); got != 3 {
		t.Fatalf("expected 3 executions across 3 separate bursts, got %d", got)
	}
}

func TestNewDebouncer_ClampsIntervalToFloor(t *testing.T) {
	loop := startLoop(t)

	d := NewDebouncer(loop, time.Millisecond, nil)
	if d.Interval() != MinInterval {
		t.Fatalf("interval = %v, want clamped %v", d.Interval(), MinInterval)
	}

	d = NewDebouncer(loop, 200*time.Millisecond, nil)
	if d.Interval() != 200*time.Millisecond {
		t.Fatalf("interval = %v, want 200ms", d.Interval())
	}
}

func TestSource_String(t *testing.T) {
	if SourceWindows.String() != "windows" || SourceMode.String() != "mode" {
		t.Fatalf("unexpected source names: %q %q", SourceWindows, SourceMode)
	}
}
