package ipc

import (
	"encoding/json"
	"fmt"

	"github.com/eltribehou/AerospaceBar/internal/state"
)

// CommandType represents different IPC command types.
type CommandType string

const (
	// The three broadcast refresh signals. External window-manager hooks
	// deliver these via `aerospacebar trigger ...`; they work regardless of
	// whether the daemon process is frontmost or backgrounded.
	CommandTriggerWindows CommandType = "TRIGGER_WINDOWS"
	CommandTriggerMode    CommandType = "TRIGGER_MODE"
	CommandTriggerAudio   CommandType = "TRIGGER_AUDIO"

	CommandSwitchWorkspace CommandType = "SWITCH_WORKSPACE"
	CommandListWorkspaces  CommandType = "LIST_WORKSPACES"
	CommandGetState        CommandType = "GET_STATE"
	CommandGetStatus       CommandType = "GET_STATUS"
	CommandReload          CommandType = "RELOAD"
)

// Request represents an IPC request from client to server.
type Request struct {
	Command CommandType     `json:"command"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response represents an IPC response from server to client.
type Response struct {
	Status string          `json:"status"` // "OK" or "ERROR"
	Data   json.RawMessage `json:"data,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// SwitchWorkspacePayload is the payload for SWITCH_WORKSPACE.
type SwitchWorkspacePayload struct {
	Workspace string `json:"workspace"`
}

// StateData is the view-model snapshot returned by GET_STATE.
type StateData struct {
	Model state.Model `json:"model"`
}

// WorkspacesData is returned by LIST_WORKSPACES.
type WorkspacesData struct {
	Workspaces []string `json:"workspaces"`
}

// StatusData is returned by GET_STATUS.
type StatusData struct {
	DaemonRunning  bool   `json:"daemon_running"`
	UptimeSeconds  int64  `json:"uptime_seconds"`
	WorkspaceCount int    `json:"workspace_count"`
	BarVisible     bool   `json:"bar_visible"`
	ConfigPath     string `json:"config_path"`
}

// NewOKResponse creates a successful response with optional data.
func NewOKResponse(data interface{}) (*Response, error) {
	var dataBytes json.RawMessage
	if data != nil {
		bytes, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response data: %w", err)
		}
		dataBytes = bytes
	}

	return &Response{
		Status: "OK",
		Data:   dataBytes,
	}, nil
}

// NewErrorResponse creates an error response with a message.
func NewErrorResponse(errMsg string) *Response {
	return &Response{
		Status: "ERROR",
		Error:  errMsg,
	}
}

// ParseRequest parses a request from JSON bytes.
func ParseRequest(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}
	return &req, nil
}

// Marshal converts a response to JSON bytes.
func (r *Response) Marshal() ([]byte, error) {
	return json.Marshal(r)
}
