// Package state holds the bar's view model and the parser that builds it
// from raw window-manager CLI output.
package state

// ModeError is the sentinel published when a mode query is configured but
// produced no output. Distinct from a nil mode, which means the feature is
// disabled entirely.
const ModeError = "Error"

// AppEntry is one application on a workspace. Multiple windows of the same
// app collapse into a single entry.
type AppEntry struct {
	Name        string `json:"name"`
	Fullscreen  bool   `json:"fullscreen"`
	WindowCount int    `json:"window_count"`
}

// AudioDevice describes the current default audio output. Replaced wholesale
// on every audio refresh, never mutated in place.
type AudioDevice struct {
	Name   string  `json:"name"`
	Volume float64 `json:"volume"` // 0.0 .. 1.0
}

// Model is the canonical view model owned by the refresh orchestrator. All
// mutation happens on the dispatch loop; observers receive deep copies.
//
// Invariant: when CurrentWorkspace is non-empty it is always a key in Apps,
// inserted with an empty slice if the CLI reported no windows for it.
type Model struct {
	CurrentWorkspace string                `json:"current_workspace,omitempty"`
	Workspaces       []string              `json:"workspaces"`
	Apps             map[string][]AppEntry `json:"apps"`
	Mode             *string               `json:"mode,omitempty"`
	Audio            *AudioDevice          `json:"audio,omitempty"`
}

// NewModel returns an empty model with initialized containers.
func NewModel() Model {
	return Model{
		Workspaces: []string{},
		Apps:       map[string][]AppEntry{},
	}
}

// Clone returns a deep copy safe to hand to observers on other goroutines.
func (m Model) Clone() Model {
	out := m
	out.Workspaces = append([]string(nil), m.Workspaces...)
	out.Apps = make(map[string][]AppEntry, len(m.Apps))
	for ws, apps := range m.Apps {
		out.Apps[ws] = append([]AppEntry(nil), apps...)
	}
	if m.Mode != nil {
		mode := *m.Mode
		out.Mode = &mode
	}
	if m.Audio != nil {
		audio := *m.Audio
		out.Audio = &audio
	}
	return out
}
