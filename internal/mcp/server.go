// Package mcp exposes the status bar daemon to MCP clients over stdio. The
// server holds no state of its own; every tool call is proxied to the
// running daemon through the unix-socket IPC client.
package mcp

import (
	"context"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/eltribehou/AerospaceBar/internal/ipc"
)

const (
	ServerName    = "aerospacebar"
	ServerVersion = "0.1.0"
)

// Server is the MCP server for status bar inspection and control.
type Server struct {
	mcpServer *mcpsdk.Server
	client    *ipc.Client
}

// NewServer creates an MCP server. The daemon must already be running;
// tool calls against a stopped daemon return connection errors.
func NewServer() *Server {
	s := &Server{
		client: ipc.NewClient(),
	}

	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil,
	)

	s.registerTools()
	return s
}

// Run starts the MCP server on stdio transport, blocking until done.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "get_bar_state",
		Description: "Get the daemon's current view model: focused workspace, all workspaces, per-workspace app entries with fullscreen flags and window counts, keybind mode and audio device.",
	}, s.handleGetBarState)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_workspaces",
		Description: "List all workspace identifiers known to the window manager, queried live through the daemon.",
	}, s.handleListWorkspaces)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "switch_workspace",
		Description: "Focus a workspace by identifier. The daemon issues the window manager switch command and refreshes the bar after the switch settles.",
	}, s.handleSwitchWorkspace)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "trigger_refresh",
		Description: "Request a refresh cycle: windows (workspaces and apps, debounced), mode (keybind mode, debounced) or audio (immediate).",
	}, s.handleTriggerRefresh)
}

func (s *Server) handleGetBarState(_ context.Context, _ *mcpsdk.CallToolRequest, _ GetBarStateInput) (*mcpsdk.CallToolResult, GetBarStateOutput, error) {
	data, err := s.client.GetState()
	if err != nil {
		return nil, GetBarStateOutput{}, err
	}
	m := data.Model
	return nil, GetBarStateOutput{
		CurrentWorkspace: m.CurrentWorkspace,
		Workspaces:       m.Workspaces,
		Apps:             m.Apps,
		Mode:             m.Mode,
		Audio:            m.Audio,
	}, nil
}

func (s *Server) handleListWorkspaces(_ context.Context, _ *mcpsdk.CallToolRequest, _ ListWorkspacesInput) (*mcpsdk.CallToolResult, ListWorkspacesOutput, error) {
	workspaces, err := s.client.ListWorkspaces()
	if err != nil {
		return nil, ListWorkspacesOutput{}, err
	}
	return nil, ListWorkspacesOutput{Workspaces: workspaces}, nil
}

func (s *Server) handleSwitchWorkspace(_ context.Context, _ *mcpsdk.CallToolRequest, args SwitchWorkspaceInput) (*mcpsdk.CallToolResult, SwitchWorkspaceOutput, error) {
	if args.Workspace == "" {
		return nil, SwitchWorkspaceOutput{}, fmt.Errorf("workspace must not be empty")
	}
	if err := s.client.SwitchWorkspace(args.Workspace); err != nil {
		return nil, SwitchWorkspaceOutput{}, err
	}
	return nil, SwitchWorkspaceOutput{Workspace: args.Workspace}, nil
}

func (s *Server) handleTriggerRefresh(_ context.Context, _ *mcpsdk.CallToolRequest, args TriggerRefreshInput) (*mcpsdk.CallToolResult, TriggerRefreshOutput, error) {
	source := args.Source
	if source == "" {
		source = "windows"
	}

	var err error
	switch source {
	case "windows":
		err = s.client.TriggerWindows()
	case "mode":
		err = s.client.TriggerMode()
	case "audio":
		err = s.client.TriggerAudio()
	default:
		return nil, TriggerRefreshOutput{}, fmt.Errorf("unknown refresh source %q; expected windows, mode or audio", source)
	}
	if err != nil {
		return nil, TriggerRefreshOutput{}, err
	}
	return nil, TriggerRefreshOutput{Source: source}, nil
}
