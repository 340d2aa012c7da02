package ipc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"sync"

	"github.com/eltribehou/AerospaceBar/internal/runtimepath"
)

// Core is the daemon surface the IPC server exposes. Trigger methods are
// asynchronous refresh requests; the query methods are synchronous and safe
// to call from connection goroutines.
type Core interface {
	TriggerWindows()
	TriggerMode()
	TriggerAudio()
	SwitchWorkspace(id string)
	ListWorkspaces() []string
	StateSnapshot() StateData
	Status() StatusData
	Reload() error
}

// Server handles IPC requests from clients.
type Server struct {
	socketPath   string
	listener     net.Listener
	core         Core
	logger       *slog.Logger
	shuttingDown bool
	shutdownMu   sync.Mutex
}

// NewServer creates a new IPC server over the given core.
func NewServer(core Core, logger *slog.Logger) (*Server, error) {
	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve IPC socket path: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}

	// Remove stale socket from a previous daemon lifecycle.
	os.Remove(socketPath)

	return &Server{
		socketPath: socketPath,
		core:       core,
		logger:     logger,
	}, nil
}

// Start begins listening for IPC connections.
func (s *Server) Start() error {
	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to create IPC socket: %w", err)
	}
	s.listener = listener

	if err := os.Chmod(s.socketPath, 0600); err != nil {
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}

	s.logger.Info("ipc server listening", "socket", s.socketPath)

	go s.acceptLoop()
	return nil
}

func (s *Server) acceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			s.shutdownMu.Lock()
			if s.shuttingDown {
				s.shutdownMu.Unlock()
				return
			}
			s.shutdownMu.Unlock()
			s.logger.Warn("ipc accept error", "error", err)
			continue
		}

		go s.handleConnection(conn)
	}
}

func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()

	reader := bufio.NewReader(conn)
	data, err := reader.ReadBytes('\n')
	if err != nil && err != io.EOF {
		s.logger.Warn("ipc read error", "error", err)
		return
	}

	req, err := ParseRequest(data)
	if err != nil {
		s.sendError(conn, fmt.Sprintf("Invalid request: %v", err))
		return
	}

	resp := s.handleCommand(req)

	respData, err := resp.Marshal()
	if err != nil {
		s.logger.Warn("failed to marshal response", "error", err)
		return
	}

	respData = append(respData, '\n')
	if _, err := conn.Write(respData); err != nil {
		s.logger.Warn("failed to send response", "error", err)
	}
}

func (s *Server) handleCommand(req *Request) *Response {
	switch req.Command {
	case CommandTriggerWindows:
		s.logger.Debug("ipc trigger", "source", "windows")
		s.core.TriggerWindows()
		resp, _ := NewOKResponse(nil)
		return resp

	case CommandTriggerMode:
		s.logger.Debug("ipc trigger", "source", "mode")
		s.core.TriggerMode()
		resp, _ := NewOKResponse(nil)
		return resp

	case CommandTriggerAudio:
		s.logger.Debug("ipc trigger", "source", "audio")
		s.core.TriggerAudio()
		resp, _ := NewOKResponse(nil)
		return resp

	case CommandSwitchWorkspace:
		var payload SwitchWorkspacePayload
		if err := json.Unmarshal(req.Payload, &payload); err != nil {
			return NewErrorResponse(fmt.Sprintf("Invalid switch payload: %v", err))
		}
		if payload.Workspace == "" {
			return NewErrorResponse("workspace is required")
		}
		s.core.SwitchWorkspace(payload.Workspace)
		resp, _ := NewOKResponse(nil)
		return resp

	case CommandListWorkspaces:
		resp, err := NewOKResponse(WorkspacesData{Workspaces: s.core.ListWorkspaces()})
		if err != nil {
			return NewErrorResponse(err.Error())
		}
		return resp

	case CommandGetState:
		resp, err := NewOKResponse(s.core.StateSnapshot())
		if err != nil {
			return NewErrorResponse(err.Error())
		}
		return resp

	case CommandGetStatus:
		resp, err := NewOKResponse(s.core.Status())
		if err != nil {
			return NewErrorResponse(err.Error())
		}
		return resp

	case CommandReload:
		if err := s.core.Reload(); err != nil {
			return NewErrorResponse(fmt.Sprintf("Failed to reload config: %v", err))
		}
		resp, _ := NewOKResponse(nil)
		return resp

	default:
		return NewErrorResponse(fmt.Sprintf("Unknown command: %s", req.Command))
	}
}

func (s *Server) sendError(conn net.Conn, errMsg string) {
	resp := NewErrorResponse(errMsg)
	data, _ := resp.Marshal()
	data = append(data, '\n')
	conn.Write(data)
}

// Stop gracefully shuts down the IPC server.
func (s *Server) Stop() {
	s.shutdownMu.Lock()
	s.shuttingDown = true
	s.shutdownMu.Unlock()

	if s.listener != nil {
		s.listener.Close()
	}
	os.Remove(s.socketPath)
}
