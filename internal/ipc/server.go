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
	"time"

	"github.com/1broseidon/veil/internal/runtimepath"
)

// Backend is what the daemon exposes over the socket. Implementations must
// be safe to call from connection goroutines.
type Backend interface {
	Toggle() error
	Show() error
	Hide() error
	Status() (StatusData, error)
	Monitors() (MonitorsData, error)
	SetMonitors(all bool, ids []string) error
	SetHotkey(hotkey string) error
	ResetHotkey() error
	BeginRecording() error
	EndRecording() error
	Reload() error
}

// Server handles IPC requests from clients
type Server struct {
	socketPath   string
	listener     net.Listener
	backend      Backend
	logger       *slog.Logger
	startTime    time.Time
	shuttingDown bool
	shutdownMu   sync.Mutex
	conns        sync.WaitGroup
}

// NewServer creates a new IPC server on the runtime socket path
func NewServer(backend Backend, logger *slog.Logger) (*Server, error) {
	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve IPC socket path: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}

	// Remove existing socket if present
	os.Remove(socketPath)

	return &Server{
		socketPath: socketPath,
		backend:    backend,
		logger:     logger,
		startTime:  time.Now(),
	}, nil
}

// SocketPath returns the path the server listens on.
func (s *Server) SocketPath() string {
	return s.socketPath
}

// Start begins listening for IPC connections
func (s *Server) Start() error {
	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to create IPC socket: %w", err)
	}
	s.listener = listener

	// Set socket permissions
	if err := os.Chmod(s.socketPath, 0600); err != nil {
		listener.Close()
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}

	s.logger.Info("IPC server listening", "socket", s.socketPath)

	go s.acceptLoop()

	return nil
}

// acceptLoop accepts incoming connections
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
			s.logger.Warn("IPC accept error", "error", err)
			continue
		}

		s.conns.Add(1)
		go func() {
			defer s.conns.Done()
			s.handleConnection(conn)
		}()
	}
}

// handleConnection handles a single IPC connection
func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()

	if err := checkPeer(conn); err != nil {
		s.logger.Warn("IPC connection rejected", "error", err)
		return
	}

	reader := bufio.NewReader(conn)

	// Read the request (expect JSON on a single line)
	data, err := reader.ReadBytes('\n')
	if err != nil && err != io.EOF {
		s.logger.Warn("IPC read error", "error", err)
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
		s.logger.Error("failed to marshal response", "error", err)
		return
	}

	respData = append(respData, '\n')
	if _, err := conn.Write(respData); err != nil {
		s.logger.Warn("failed to send response", "error", err)
	}
}

// handleCommand processes an IPC command and returns a response
func (s *Server) handleCommand(req *Request) *Response {
	s.logger.Debug("IPC command", "command", string(req.Command))

	switch req.Command {
	case CommandToggle:
		return s.simple(s.backend.Toggle, "toggle")
	case CommandShow:
		return s.simple(s.backend.Show, "show")
	case CommandHide:
		return s.simple(s.backend.Hide, "hide")
	case CommandGetStatus:
		return s.handleGetStatus()
	case CommandGetMonitors:
		return s.handleGetMonitors()
	case CommandSetMonitors:
		return s.handleSetMonitors(req.Payload)
	case CommandSetHotkey:
		return s.handleSetHotkey(req.Payload)
	case CommandResetHotkey:
		return s.simple(s.backend.ResetHotkey, "reset hotkey")
	case CommandBeginRecording:
		return s.simple(s.backend.BeginRecording, "begin recording")
	case CommandEndRecording:
		return s.simple(s.backend.EndRecording, "end recording")
	case CommandReload:
		return s.simple(s.backend.Reload, "reload config")
	default:
		return NewErrorResponse(fmt.Sprintf("Unknown command: %s", req.Command))
	}
}

func (s *Server) simple(fn func() error, what string) *Response {
	if err := fn(); err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to %s: %v", what, err))
	}
	resp, _ := NewOKResponse(nil)
	return resp
}

// handleGetStatus returns current daemon status
func (s *Server) handleGetStatus() *Response {
	status, err := s.backend.Status()
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to get status: %v", err))
	}
	status.UptimeSeconds = int64(time.Since(s.startTime).Seconds())
	status.DaemonRunning = true

	resp, _ := NewOKResponse(status)
	return resp
}

// handleGetMonitors returns information about all monitors
func (s *Server) handleGetMonitors() *Response {
	data, err := s.backend.Monitors()
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to get monitors: %v", err))
	}
	if data.Monitors == nil {
		data.Monitors = []MonitorInfo{}
	}

	resp, _ := NewOKResponse(data)
	return resp
}

func (s *Server) handleSetMonitors(payload json.RawMessage) *Response {
	var req SetMonitorsPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid monitors payload: %v", err))
	}
	for _, id := range req.IDs {
		if id == "" {
			return NewErrorResponse("monitor ids must not be empty")
		}
	}
	if err := s.backend.SetMonitors(req.All, req.IDs); err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to set monitors: %v", err))
	}

	resp, _ := NewOKResponse(nil)
	return resp
}

func (s *Server) handleSetHotkey(payload json.RawMessage) *Response {
	var req SetHotkeyPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid hotkey payload: %v", err))
	}
	if req.Hotkey == "" {
		return NewErrorResponse("hotkey is required")
	}
	if err := s.backend.SetHotkey(req.Hotkey); err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to set hotkey: %v", err))
	}

	resp, _ := NewOKResponse(nil)
	return resp
}

// sendError sends an error response
func (s *Server) sendError(conn net.Conn, errMsg string) {
	resp := NewErrorResponse(errMsg)
	data, _ := resp.Marshal()
	data = append(data, '\n')
	conn.Write(data)
}

// Stop shuts down the IPC server and waits for in-flight requests.
func (s *Server) Stop() {
	s.shutdownMu.Lock()
	s.shuttingDown = true
	s.shutdownMu.Unlock()

	if s.listener != nil {
		s.listener.Close()
	}
	s.conns.Wait()
	os.Remove(s.socketPath)
}
