// Package aerospace shells out to the window manager CLI. Every invocation
// runs under a hard timeout on a bounded worker pool; asynchronous variants
// deliver their result on the dispatch loop so callers can mutate shared
// state directly in the callback.
package aerospace

import (
	"bytes"
	"context"
	"log/slog"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/eltribehou/AerospaceBar/internal/state"
)

// DefaultTimeout is how long a CLI invocation may run before the process is
// killed and an empty result is delivered.
const DefaultTimeout = 5 * time.Second

// defaultWorkers bounds concurrent subprocess spawns.
const defaultWorkers = 4

// windowsFormat matches the parser's "workspace|app|fullscreen" contract.
const windowsFormat = "%{workspace}|%{app-name}|%{window-is-fullscreen}"

// Dispatcher posts a function onto the daemon's serial run loop.
type Dispatcher interface {
	Post(fn func())
}

// Client invokes the window manager binary. The zero value is not usable;
// construct with New.
type Client struct {
	mu          sync.RWMutex
	binary      string
	modeCommand []string

	timeout  time.Duration
	dispatch Dispatcher
	sem      chan struct{}
	logger   *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout overrides the per-invocation timeout. Values <= 0 keep the
// default.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithModeCommand configures the optional keybind-mode query. The string is
// split on whitespace into an argument vector; empty disables the feature.
func WithModeCommand(command string) Option {
	return func(c *Client) {
		c.modeCommand = strings.Fields(command)
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New creates a client for the given binary path. dispatch receives all
// asynchronous completion callbacks; it may be nil if only the synchronous
// methods are used.
func New(binary string, dispatch Dispatcher, opts ...Option) *Client {
	c := &Client{
		binary:   binary,
		timeout:  DefaultTimeout,
		dispatch: dispatch,
		sem:      make(chan struct{}, defaultWorkers),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// UpdateConfig swaps the binary path and mode command after a config
// reload. An empty binary keeps the current one.
func (c *Client) UpdateConfig(binary, modeCommand string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if binary != "" {
		c.binary = binary
	}
	c.modeCommand = strings.Fields(modeCommand)
}

// ModeConfigured reports whether a mode-query command was configured.
func (c *Client) ModeConfigured() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.modeCommand) > 0
}

func (c *Client) binaryPath() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.binary
}

func (c *Client) modeArgs() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.modeCommand
}

// run executes a command and returns trimmed stdout. All failure modes
// (spawn error, non-zero exit, timeout kill) collapse to an empty string:
// callers treat "no data" and "failed" identically and self-heal on the
// next refresh.
func (c *Client) run(name string, args ...string) string {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, name, args...)
	// Children inheriting our pipes must not keep Run blocked after the
	// timeout kill.
	cmd.WaitDelay = time.Second
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	if msg := strings.TrimSpace(stderr.String()); msg != "" {
		c.logger.Debug("cli stderr", "command", name, "stderr", msg)
	}
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			c.logger.Warn("cli invocation timed out, killed",
				"command", name, "args", args, "timeout", c.timeout)
		} else {
			c.logger.Debug("cli invocation failed",
				"command", name, "args", args, "error", err)
		}
		return ""
	}
	c.logger.Debug("cli invocation",
		"command", name, "args", args, "took", time.Since(start))
	return strings.TrimSpace(stdout.String())
}

// async runs fn on the worker pool and posts its result to the dispatch
// loop. The callback always fires, even when the invocation failed.
func asyncCall[T any](c *Client, fn func() T, cb func(T)) {
	go func() {
		c.sem <- struct{}{}
		result := fn()
		<-c.sem
		c.dispatch.Post(func() { cb(result) })
	}()
}

// ListWorkspacesSync returns all workspace identifiers, one per
// `list-workspaces --all` output line.
func (c *Client) ListWorkspacesSync() []string {
	return state.ParseLines(c.run(c.binaryPath(), "list-workspaces", "--all"))
}

// ListWorkspaces is the asynchronous variant of ListWorkspacesSync.
func (c *Client) ListWorkspaces(cb func([]string)) {
	asyncCall(c, c.ListWorkspacesSync, cb)
}

// FocusedWorkspaceSync returns the focused workspace id, or "" when the CLI
// produced no output.
func (c *Client) FocusedWorkspaceSync() string {
	return c.run(c.binaryPath(), "list-workspaces", "--focused")
}

// FocusedWorkspace is the asynchronous variant of FocusedWorkspaceSync.
func (c *Client) FocusedWorkspace(cb func(string)) {
	asyncCall(c, c.FocusedWorkspaceSync, cb)
}

// WindowsSync returns the raw "workspace|app|fullscreen" listing.
func (c *Client) WindowsSync() string {
	return c.run(c.binaryPath(), "list-windows", "--all", "--format", windowsFormat)
}

// Windows is the asynchronous variant of WindowsSync.
func (c *Client) Windows(cb func(string)) {
	asyncCall(c, c.WindowsSync, cb)
}

// SwitchWorkspace asks the window manager to focus a workspace. Fire and
// forget: the result is ignored and no callback is delivered.
func (c *Client) SwitchWorkspace(id string) {
	go func() {
		c.sem <- struct{}{}
		c.run(c.binaryPath(), "workspace", id)
		<-c.sem
	}()
}

// ModeSync queries the configured mode command. Returns state.ModeError when
// the command is configured but produced empty output, and "" when the
// feature is disabled.
func (c *Client) ModeSync() string {
	if !c.ModeConfigured() {
		return ""
	}
	command := c.modeArgs()
	if len(command) == 0 {
		return ""
	}
	out := c.run(command[0], command[1:]...)
	if out == "" {
		return state.ModeError
	}
	return out
}

// Mode is the asynchronous variant of ModeSync.
func (c *Client) Mode(cb func(string)) {
	asyncCall(c, c.ModeSync, cb)
}
