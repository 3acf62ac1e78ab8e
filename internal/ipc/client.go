package ipc

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/1broseidon/veil/internal/runtimepath"
)

// ErrDaemonNotRunning wraps dial failures, so callers can fall back to
// editing the config file.
var ErrDaemonNotRunning = errors.New("failed to connect to daemon (is the daemon running?)")

// Client handles IPC communication with the daemon
type Client struct {
	socketPath string
	timeout    time.Duration
}

// NewClient creates a new IPC client
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

// sendRequest sends a request and waits for a response
func (c *Client) sendRequest(req *Request) (*Response, error) {
	conn, err := net.DialTimeout("unix", c.socketPath, c.timeout)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDaemonNotRunning, err)
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

func (c *Client) command(cmd CommandType, payload interface{}) error {
	req := &Request{Command: cmd}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal %s payload: %w", cmd, err)
		}
		req.Payload = data
	}
	_, err := c.sendRequest(req)
	return err
}

// Toggle shows the overlay if hidden and hides it if shown.
func (c *Client) Toggle() error {
	return c.command(CommandToggle, nil)
}

// Show shows the overlay.
func (c *Client) Show() error {
	return c.command(CommandShow, nil)
}

// Hide hides the overlay.
func (c *Client) Hide() error {
	return c.command(CommandHide, nil)
}

// Reload sends a RELOAD command to the daemon
func (c *Client) Reload() error {
	return c.command(CommandReload, nil)
}

// SetMonitors selects every display (all) or exactly ids.
func (c *Client) SetMonitors(all bool, ids []string) error {
	return c.command(CommandSetMonitors, SetMonitorsPayload{All: all, IDs: ids})
}

// SetHotkey rebinds the global hotkey, e.g. "Mod4-shift-b".
func (c *Client) SetHotkey(hotkey string) error {
	return c.command(CommandSetHotkey, SetHotkeyPayload{Hotkey: hotkey})
}

// ResetHotkey restores the default hotkey.
func (c *Client) ResetHotkey() error {
	return c.command(CommandResetHotkey, nil)
}

// BeginRecording tells the daemon a shortcut capture has started.
func (c *Client) BeginRecording() error {
	return c.command(CommandBeginRecording, nil)
}

// EndRecording tells the daemon a shortcut capture has ended.
func (c *Client) EndRecording() error {
	return c.command(CommandEndRecording, nil)
}

// GetStatus retrieves daemon status
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

// GetMonitors retrieves monitor information
func (c *Client) GetMonitors() (*MonitorsData, error) {
	resp, err := c.sendRequest(&Request{Command: CommandGetMonitors})
	if err != nil {
		return nil, err
	}

	var monitors MonitorsData
	if err := json.Unmarshal(resp.Data, &monitors); err != nil {
		return nil, fmt.Errorf("failed to parse monitors data: %w", err)
	}

	return &monitors, nil
}

// Ping checks if the daemon is responding
func (c *Client) Ping() error {
	_, err := c.GetStatus()
	return err
}
