package aerospace

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/eltribehou/AerospaceBar/internal/state"
)

// writeStub creates an executable shell script standing in for the window
// manager CLI.
func writeStub(t *testing.T, script string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "aerospace")
	content := "#!/bin/sh\n" + script + "\n"
	if err := os.WriteFile(path, []byte(content), 0755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	return path
}

func TestListWorkspacesSync(t *testing.T) {
	bin := writeStub(t, `printf '1\n2\nmain\n'`)
	c := New(bin, nil)

	got := c.ListWorkspacesSync()
	want := []string{"1", "2", "main"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestFocusedWorkspaceSync_TrimsOutput(t *testing.T) {
	bin := writeStub(t, `printf '  3  \n'`)
	c := New(bin, nil)

	if got := c.FocusedWorkspaceSync(); got != "3" {
		t.Fatalf("got %q, want %q", got, "3")
	}
}

func TestRun_FailuresCollapseToEmpty(t *testing.T) {
	tests := []struct {
		name   string
		script string
	}{
		{"nonzero exit", `echo oops >&2; exit 1`},
		{"no output", `exit 0`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bin := writeStub(t, tt.script)
			c := New(bin, nil)
			if got := c.WindowsSync(); got != "" {
				t.Fatalf("got %q, want empty on failure", got)
			}
		})
	}
}

func TestRun_MissingBinaryYieldsEmpty(t *testing.T) {
	c := New(filepath.Join(t.TempDir(), "does-not-exist"), nil)
	if got := c.FocusedWorkspaceSync(); got != "" {
		t.Fatalf("got %q, want empty for missing binary", got)
	}
}

func TestRun_TimeoutKillsAndYieldsEmpty(t *testing.T) {
	bin := writeStub(t, `sleep 5; echo too-late`)
	c := New(bin, nil, WithTimeout(100*time.Millisecond))

	start := time.Now()
	got := c.FocusedWorkspaceSync()
	took := time.Since(start)

	if got != "" {
		t.Fatalf("got %q, want empty on timeout", got)
	}
	if took > 2*time.Second {
		t.Fatalf("invocation was not killed at the timeout, took %v", took)
	}
}

func TestAsync_CallbackAlwaysFiresOnDispatcher(t *testing.T) {
	// Even a failing invocation must deliver its (empty) result, or the
	// refresh cycle would stall forever.
	bin := writeStub(t, `exit 1`)
	results := make(chan string, 1)
	c := New(bin, dispatcherFunc(func(fn func()) { go fn() }))

	c.FocusedWorkspace(func(s string) { results <- s })

	select {
	case s := <-results:
		if s != "" {
			t.Fatalf("got %q, want empty", s)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("callback never fired for a failed invocation")
	}
}

type dispatcherFunc func(fn func())

func (f dispatcherFunc) Post(fn func()) { f(fn) }

func TestModeSync(t *testing.T) {
	tests := []struct {
		name    string
		command string
		want    string
	}{
		{"disabled", "", ""},
		{"error sentinel on empty output", "true", state.ModeError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New("aerospace", nil, WithModeCommand(tt.command))
			if got := c.ModeSync(); got != tt.want {
				t.Fatalf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestModeSync_ReturnsCommandOutput(t *testing.T) {
	bin := writeStub(t, `echo service`)
	c := New("aerospace", nil, WithModeCommand(bin))
	if got := c.ModeSync(); got != "service" {
		t.Fatalf("got %q, want %q", got, "service")
	}
}

func TestModeCommand_SplitsArguments(t *testing.T) {
	bin := writeStub(t, `echo "$1-$2"`)
	c := New("aerospace", nil, WithModeCommand(fmt.Sprintf("%s alpha beta", bin)))
	if got := c.ModeSync(); got != "alpha-beta" {
		t.Fatalf("got %q, want %q", got, "alpha-beta")
	}
}

func TestUpdateConfig(t *testing.T) {
	first := writeStub(t, `echo from-first`)
	second := writeStub(t, `echo from-second`)

	c := New(first, nil)
	if got := c.FocusedWorkspaceSync(); got != "from-first" {
		t.Fatalf("got %q before update", got)
	}

	c.UpdateConfig(second, "some-mode-cmd")
	if got := c.FocusedWorkspaceSync(); got != "from-second" {
		t.Fatalf("got %q after update", got)
	}
	if !c.ModeConfigured() {
		t.Fatalf("mode command not applied by UpdateConfig")
	}

	c.UpdateConfig("", "")
	if c.ModeConfigured() {
		t.Fatalf("empty mode command should disable the feature")
	}
	if got := c.FocusedWorkspaceSync(); got != "from-second" {
		t.Fatalf("empty binary should keep the previous one, got %q", got)
	}
}

func TestSwitchWorkspace_FireAndForget(t *testing.T) {
	dir := t.TempDir()
	marker := filepath.Join(dir, "marker")
	bin := filepath.Join(dir, "aerospace")
	script := fmt.Sprintf("#!/bin/sh\necho \"$@\" > %s\n", marker)
	if err := os.WriteFile(bin, []byte(script), 0755); err != nil {
		t.Fatalf("write stub: %v", err)
	}

	c := New(bin, nil)
	c.SwitchWorkspace("5")

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		data, err := os.ReadFile(marker)
		if err == nil {
			if string(data) != "workspace 5\n" {
				t.Fatalf("CLI invoked with %q, want %q", data, "workspace 5\n")
			}
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("switch command never invoked the CLI")
}
