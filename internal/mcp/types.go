package mcp

import "github.com/eltribehou/AerospaceBar/internal/state"

// GetBarStateInput is the input for the get_bar_state tool.
type GetBarStateInput struct{}

// GetBarStateOutput is the output for the get_bar_state tool.
type GetBarStateOutput struct {
	CurrentWorkspace string                      `json:"current_workspace"`
	Workspaces       []string                    `json:"workspaces"`
	Apps             map[string][]state.AppEntry `json:"apps"`
	Mode             *string                     `json:"mode,omitempty"`
	Audio            *state.AudioDevice          `json:"audio,omitempty"`
}

// ListWorkspacesInput is the input for the list_workspaces tool.
type ListWorkspacesInput struct{}

// ListWorkspacesOutput is the output for the list_workspaces tool.
type ListWorkspacesOutput struct {
	Workspaces []string `json:"workspaces"`
}

// SwitchWorkspaceInput is the input for the switch_workspace tool.
type SwitchWorkspaceInput struct {
	Workspace string `json:"workspace" jsonschema:"required,Workspace identifier to focus (as reported by list_workspaces)"`
}

// SwitchWorkspaceOutput is the output for the switch_workspace tool.
type SwitchWorkspaceOutput struct {
	Workspace string `json:"workspace"`
}

// TriggerRefreshInput is the input for the trigger_refresh tool.
type TriggerRefreshInput struct {
	Source string `json:"source,omitempty" jsonschema:"Which refresh to trigger: windows, mode or audio (default: windows)"`
}

// TriggerRefreshOutput is the output for the trigger_refresh tool.
type TriggerRefreshOutput struct {
	Source string `json:"source"`
}
