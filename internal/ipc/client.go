package ipc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/eltribehou/AerospaceBar/internal/runtimepath"
)

// Client handles IPC communication with the daemon.
type Client struct {
	socketPath string
	timeout    time.Duration
}

// NewClient creates a new IPC client.
func NewClient() *Client {
	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		// Keep constructor non-failing; sendRequest surfaces connection errors.
		socketPath = ""
	}

	return &Client{
		socketPath: socketPath,
		timeout:    5 * time.Second,
	}
}

// sendRequest sends a request and waits for a response.
func (c *Client) sendRequest(req *Request) (*Response, error) {
	conn, err := net.DialTimeout("unix", c.socketPath, c.timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to daemon: %w (is the daemon running?)", err)
	}
	defer conn.Close()

	conn.SetDeadline(time.Now().Add(c.timeout))

	reqData, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	reqData = append(reqData, '\n')
	if _, err := conn.Write(reqData); err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	reader := bufio.NewReader(conn)
	respData, err := reader.ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var resp Response
	if err := json.Unmarshal(respData, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if resp.Status == "ERROR" {
		return nil, fmt.Errorf("daemon error: %s", resp.Error)
	}

	return &resp, nil
}

// TriggerWindows requests a debounced workspace/window refresh.
func (c *Client) TriggerWindows() error {
	_, err := c.sendRequest(&Request{Command: CommandTriggerWindows})
	return err
}

// TriggerMode requests a debounced keybind-mode refresh.
func (c *Client) TriggerMode() error {
	_, err := c.sendRequest(&Request{Command: CommandTriggerMode})
	return err
}

// TriggerAudio requests an immediate audio refresh.
func (c *Client) TriggerAudio() error {
	_, err := c.sendRequest(&Request{Command: CommandTriggerAudio})
	return err
}

// SwitchWorkspace asks the daemon to focus the given workspace.
func (c *Client) SwitchWorkspace(workspace string) error {
	payload, err := json.Marshal(SwitchWorkspacePayload{Workspace: workspace})
	if err != nil {
		return fmt.Errorf("failed to marshal switch payload: %w", err)
	}
	_, err = c.sendRequest(&Request{Command: CommandSwitchWorkspace, Payload: payload})
	return err
}

// GetState retrieves the daemon's current view-model snapshot.
func (c *Client) GetState() (*StateData, error) {
	resp, err := c.sendRequest(&Request{Command: CommandGetState})
	if err != nil {
		return nil, err
	}

	var data StateData
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		return nil, fmt.Errorf("failed to parse state data: %w", err)
	}
	return &data, nil
}

// ListWorkspaces retrieves all workspace ids known to the window manager.
func (c *Client) ListWorkspaces() ([]string, error) {
	resp, err := c.sendRequest(&Request{Command: CommandListWorkspaces})
	if err != nil {
		return nil, err
	}

	var data WorkspacesData
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		return nil, fmt.Errorf("failed to parse workspaces data: %w", err)
	}
	return data.Workspaces, nil
}

// GetStatus retrieves daemon status.
func (c *Client) GetStatus() (*StatusData, error) {
	resp, err := c.sendRequest(&Request{Command: CommandGetStatus})
	if err != nil {
		return nil, err
	}

	var status StatusData
	if err := json.Unmarshal(resp.Data, &status); err != nil {
		return nil, fmt.Errorf("failed to parse status data: %w", err)
	}
	return &status, nil
}

// Reload asks the daemon to reload its configuration.
func (c *Client) Reload() error {
	_, err := c.sendRequest(&Request{Command: CommandReload})
	return err
}

// Ping checks if the daemon is responding.
func (c *Client) Ping() error {
	_, err := c.GetStatus()
	return err
}
