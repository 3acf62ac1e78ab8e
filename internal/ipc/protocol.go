package ipc

import (
	"encoding/json"
	"fmt"
)

// CommandType represents different IPC command types
type CommandType string

const (
	CommandToggle         CommandType = "TOGGLE"
	CommandShow           CommandType = "SHOW"
	CommandHide           CommandType = "HIDE"
	CommandGetStatus      CommandType = "GET_STATUS"
	CommandGetMonitors    CommandType = "GET_MONITORS"
	CommandSetMonitors    CommandType = "SET_MONITORS"
	CommandSetHotkey      CommandType = "SET_HOTKEY"
	CommandResetHotkey    CommandType = "RESET_HOTKEY"
	CommandBeginRecording CommandType = "BEGIN_RECORDING"
	CommandEndRecording   CommandType = "END_RECORDING"
	CommandReload         CommandType = "RELOAD"
)

// Request represents an IPC request from client to server
type Request struct {
	Command CommandType     `json:"command"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response represents an IPC response from server to client
type Response struct {
	Status string          `json:"status"` // "OK" or "ERROR"
	Data   json.RawMessage `json:"data,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// StatusData represents the data returned by GET_STATUS
type StatusData struct {
	Active        bool     `json:"active"`
	Transitioning bool     `json:"transitioning"`
	Surfaces      []string `json:"surfaces,omitempty"`
	Hotkey        string   `json:"hotkey"`
	HotkeyDisplay string   `json:"hotkey_display"`
	HotkeyLive    bool     `json:"hotkey_live"`
	Selection     string   `json:"selection"`
	Recording     bool     `json:"recording"`
	Degraded      bool     `json:"degraded"`
	UptimeSeconds int64    `json:"uptime_seconds"`
	DaemonRunning bool     `json:"daemon_running"`
}

// MonitorInfo represents information about a single monitor
type MonitorInfo struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	X        int    `json:"x"`
	Y        int    `json:"y"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Selected bool   `json:"selected"`
}

// MonitorsData represents the data returned by GET_MONITORS
type MonitorsData struct {
	Monitors []MonitorInfo `json:"monitors"`
	All      bool          `json:"all"`
	// Selected lists explicit IDs, including ones not currently attached.
	Selected []string `json:"selected,omitempty"`
}

// SetMonitorsPayload represents the payload for SET_MONITORS.
// All wins over IDs; an empty IDs list with All false selects nothing.
type SetMonitorsPayload struct {
	All bool     `json:"all"`
	IDs []string `json:"ids,omitempty"`
}

// SetHotkeyPayload represents the payload for SET_HOTKEY
type SetHotkeyPayload struct {
	Hotkey string `json:"hotkey"`
}

// NewOKResponse creates a successful response with optional data
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

// NewErrorResponse creates an error response with a message
func NewErrorResponse(errMsg string) *Response {
	return &Response{
		Status: "ERROR",
		Error:  errMsg,
	}
}

// ParseRequest parses a request from JSON bytes
func ParseRequest(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}
	if req.Command == "" {
		return nil, fmt.Errorf("failed to parse request: missing command")
	}
	return &req, nil
}

// Marshal converts a response to JSON bytes
func (r *Response) Marshal() ([]byte, error) {
	return json.Marshal(r)
}
