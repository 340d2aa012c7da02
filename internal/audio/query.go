// Package audio resolves the default output device through pactl and
// converts the daemon's audio property-change stream into refresh triggers.
package audio

import (
	"bytes"
	"context"
	"log/slog"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/eltribehou/AerospaceBar/internal/state"
)

// queryTimeout bounds the pactl queries; they are local socket calls and
// normally return within milliseconds.
const queryTimeout = 2 * time.Second

// Querier answers synchronous default-sink queries.
type Querier struct {
	binary string
	logger *slog.Logger
}

// NewQuerier creates a querier using the given pactl binary ("pactl" when
// empty).
func NewQuerier(binary string, logger *slog.Logger) *Querier {
	if binary == "" {
		binary = "pactl"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Querier{binary: binary, logger: logger}
}

// CurrentDevice returns the default sink and its volume, or nil when no
// sink is resolvable. The result replaces the previous snapshot wholesale.
func (q *Querier) CurrentDevice() *state.AudioDevice {
	sink := q.run("get-default-sink")
	if sink == "" {
		return nil
	}

	device := &state.AudioDevice{Name: sink}
	if volume, ok := ParseVolume(q.run("get-sink-volume", sink)); ok {
		device.Volume = volume
	}
	return device
}

func (q *Querier) run(args ...string) string {
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, q.binary, args...)
	cmd.WaitDelay = time.Second
	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	if err := cmd.Run(); err != nil {
		q.logger.Debug("pactl query failed", "args", args, "error", err)
		return ""
	}
	return strings.TrimSpace(stdout.String())
}

// ParseVolume extracts the first percentage from `pactl get-sink-volume`
// output, e.g.
//
//	Volume: front-left: 39321 /  60% / -13.31 dB, front-right: ...
//
// normalized into [0, 1].
func ParseVolume(out string) (float64, bool) {
	for _, field := range strings.Fields(out) {
		if !strings.HasSuffix(field, "%") {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSuffix(field, "%"))
		if err != nil {
			continue
		}
		volume := float64(n) / 100
		if volume < 0 {
			volume = 0
		}
		if volume > 1 {
			volume = 1
		}
		return volume, true
	}
	return 0, false
}
