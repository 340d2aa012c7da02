package ipc

import (
	"errors"
	"reflect"
	"sync"
	"testing"

	"github.com/eltribehou/AerospaceBar/internal/state"
)

// fakeCore records every call for assertion.
type fakeCore struct {
	mu        sync.Mutex
	triggers  []string
	switched  []string
	reloads   int
	reloadErr error
}

func (c *fakeCore) TriggerWindows() { c.record("windows") }
func (c *fakeCore) TriggerMode()    { c.record("mode") }
func (c *fakeCore) TriggerAudio()   { c.record("audio") }

func (c *fakeCore) record(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.triggers = append(c.triggers, name)
}

func (c *fakeCore) SwitchWorkspace(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.switched = append(c.switched, id)
}

func (c *fakeCore) ListWorkspaces() []string {
	return []string{"1", "2", "main"}
}

func (c *fakeCore) StateSnapshot() StateData {
	m := state.NewModel()
	m.CurrentWorkspace = "2"
	m.Workspaces = []string{"1", "2"}
	m.Apps["2"] = []state.AppEntry{{Name: "Terminal", WindowCount: 3}}
	return StateData{Model: m}
}

func (c *fakeCore) Status() StatusData {
	return StatusData{DaemonRunning: true, WorkspaceCount: 2, BarVisible: true, ConfigPath: "/tmp/config.yaml"}
}

func (c *fakeCore) Reload() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reloads++
	return c.reloadErr
}

// startServer runs a real server over a unix socket in a temp runtime dir
// and returns a client wired to it.
func startServer(t *testing.T, core *fakeCore) *Client {
	t.Helper()
	t.Setenv("XDG_RUNTIME_DIR", t.TempDir())

	srv, err := NewServer(core, nil)
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	if err := srv.Start(); err != nil {
		t.Fatalf("start server: %v", err)
	}
	t.Cleanup(srv.Stop)

	return NewClient()
}

func TestServer_TriggerCommands(t *testing.T) {
	core := &fakeCore{}
	client := startServer(t, core)

	if err := client.TriggerWindows(); err != nil {
		t.Fatalf("trigger windows: %v", err)
	}
	if err := client.TriggerMode(); err != nil {
		t.Fatalf("trigger mode: %v", err)
	}
	if err := client.TriggerAudio(); err != nil {
		t.Fatalf("trigger audio: %v", err)
	}

	core.mu.Lock()
	defer core.mu.Unlock()
	want := []string{"windows", "mode", "audio"}
	if !reflect.DeepEqual(core.triggers, want) {
		t.Fatalf("triggers = %v, want %v", core.triggers, want)
	}
}

func TestServer_SwitchWorkspace(t *testing.T) {
	core := &fakeCore{}
	client := startServer(t, core)

	if err := client.SwitchWorkspace("5"); err != nil {
		t.Fatalf("switch: %v", err)
	}

	core.mu.Lock()
	defer core.mu.Unlock()
	if !reflect.DeepEqual(core.switched, []string{"5"}) {
		t.Fatalf("switched = %v, want [5]", core.switched)
	}
}

func TestServer_SwitchWorkspaceRejectsEmpty(t *testing.T) {
	core := &fakeCore{}
	client := startServer(t, core)

	if err := client.SwitchWorkspace(""); err == nil {
		t.Fatalf("expected error for empty workspace id")
	}
}

func TestServer_GetState(t *testing.T) {
	core := &fakeCore{}
	client := startServer(t, core)

	data, err := client.GetState()
	if err != nil {
		t.Fatalf("get state: %v", err)
	}
	if data.Model.CurrentWorkspace != "2" {
		t.Fatalf("current workspace = %q", data.Model.CurrentWorkspace)
	}
	if data.Model.Apps["2"][0].WindowCount != 3 {
		t.Fatalf("apps = %+v", data.Model.Apps)
	}
}

func TestServer_ListWorkspacesAndStatus(t *testing.T) {
	core := &fakeCore{}
	client := startServer(t, core)

	workspaces, err := client.ListWorkspaces()
	if err != nil {
		t.Fatalf("list workspaces: %v", err)
	}
	if !reflect.DeepEqual(workspaces, []string{"1", "2", "main"}) {
		t.Fatalf("workspaces = %v", workspaces)
	}

	status, err := client.GetStatus()
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if !status.DaemonRunning || !status.BarVisible || status.WorkspaceCount != 2 {
		t.Fatalf("status = %+v", status)
	}
}

func TestServer_Reload(t *testing.T) {
	core := &fakeCore{}
	client := startServer(t, core)

	if err := client.Reload(); err != nil {
		t.Fatalf("reload: %v", err)
	}
	core.mu.Lock()
	if core.reloads != 1 {
		core.mu.Unlock()
		t.Fatalf("reloads = %d, want 1", core.reloads)
	}
	core.reloadErr = errors.New("bad config")
	core.mu.Unlock()

	if err := client.Reload(); err == nil {
		t.Fatalf("expected reload error to surface to the client")
	}
}

func TestClient_ErrorWhenDaemonDown(t *testing.T) {
	t.Setenv("XDG_RUNTIME_DIR", t.TempDir())

	client := NewClient()
	if err := client.Ping(); err == nil {
		t.Fatalf("expected connection error with no daemon running")
	}
}
