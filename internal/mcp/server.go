// Package mcp exposes the blur overlay to MCP clients over stdio. Every tool
// forwards to the running daemon through its IPC socket.
package mcp

import (
	"context"
	"log/slog"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/veil/internal/ipc"
)

const (
	ServerName    = "veil"
	ServerVersion = "0.1.0"
)

// Client is the daemon IPC surface used by the tools. *ipc.Client
// satisfies it.
type Client interface {
	Toggle() error
	Show() error
	Hide() error
	GetStatus() (*ipc.StatusData, error)
	GetMonitors() (*ipc.MonitorsData, error)
	SetMonitors(all bool, ids []string) error
	SetHotkey(hotkey string) error
}

var _ Client = (*ipc.Client)(nil)

// Server is the MCP server for controlling the overlay.
type Server struct {
	mcpServer *mcpsdk.Server
	client    Client
	logger    *slog.Logger
}

// NewServer creates a new MCP server that talks to the daemon through client.
func NewServer(client Client, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		client: client,
		logger: logger.With("component", "mcp"),
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
		Name:        "toggle_blur",
		Description: "Toggle the privacy blur: show it on the selected monitors if hidden, hide it if shown. Returns the resulting overlay state.",
	}, s.handleToggle)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "show_blur",
		Description: "Show the privacy blur on the selected monitors. Does nothing if it is already shown.",
	}, s.handleShow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "hide_blur",
		Description: "Hide the privacy blur. Does nothing if it is already hidden.",
	}, s.handleHide)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "blur_status",
		Description: "Report whether the blur is shown, the current toggle shortcut and which monitors are selected.",
	}, s.handleStatus)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_monitors",
		Description: "List attached displays with their IDs, geometry and whether the blur covers them.",
	}, s.handleListMonitors)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "select_monitors",
		Description: "Choose which displays the blur covers: all displays, or an explicit list of IDs from list_monitors. Takes effect the next time the blur is shown.",
	}, s.handleSelectMonitors)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "set_hotkey",
		Description: "Change the global shortcut that toggles the blur. The shortcut is saved only if the window system accepts it.",
	}, s.handleSetHotkey)
}
