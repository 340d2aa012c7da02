package audio

import (
	"bufio"
	"context"
	"log/slog"
	"os/exec"
	"strings"
	"time"
)

// restartBackoff is the wait before re-spawning a dead `pactl subscribe`
// stream (sound server restart, pactl missing, ...).
const restartBackoff = 5 * time.Second

// Listener tails `pactl subscribe` and invokes the trigger for every sink or
// server change. Audio refreshes bypass the debouncer: the events are rare
// and the refresh is cheap.
type Listener struct {
	binary  string
	trigger func()
	logger  *slog.Logger
}

// NewListener creates a listener. trigger is invoked from the listener
// goroutine and must be safe to call from there (refresh triggers post onto
// the dispatch loop, so they are).
func NewListener(binary string, trigger func(), logger *slog.Logger) *Listener {
	if binary == "" {
		binary = "pactl"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Listener{binary: binary, trigger: trigger, logger: logger}
}

// Run subscribes and forwards events until ctx is cancelled. The subscribe
// stream is respawned with a backoff when it dies. Blocks.
func (l *Listener) Run(ctx context.Context) {
	for {
		if err := l.stream(ctx); err != nil {
			l.logger.Debug("audio subscribe stream ended", "error", err)
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(restartBackoff):
		}
	}
}

func (l *Listener) stream(ctx context.Context) error {
	cmd := exec.CommandContext(ctx, l.binary, "subscribe")
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return err
	}
	if err := cmd.Start(); err != nil {
		return err
	}
	l.logger.Debug("audio subscribe stream started")

	scanner := bufio.NewScanner(stdout)
	for scanner.Scan() {
		if relevantEvent(scanner.Text()) {
			l.trigger()
		}
	}
	return cmd.Wait()
}

// relevantEvent keeps sink and server events (device swap, volume change,
// default-sink change) and drops the noisy client/stream chatter.
func relevantEvent(line string) bool {
	if !strings.Contains(line, "Event 'change'") && !strings.Contains(line, "Event 'new'") &&
		!strings.Contains(line, "Event 'remove'") {
		return false
	}
	return strings.Contains(line, " on sink ") || strings.Contains(line, " on server ")
}
