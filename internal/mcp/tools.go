package mcp

import (
	"context"
	"fmt"
	"strings"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/veil/internal/hotkeys"
	"github.com/1broseidon/veil/internal/ipc"
)

func (s *Server) handleToggle(_ context.Context, _ *mcpsdk.CallToolRequest, _ EmptyInput) (*mcpsdk.CallToolResult, BlurStatusOutput, error) {
	return s.act("toggle", s.client.Toggle)
}

func (s *Server) handleShow(_ context.Context, _ *mcpsdk.CallToolRequest, _ EmptyInput) (*mcpsdk.CallToolResult, BlurStatusOutput, error) {
	return s.act("show", s.client.Show)
}

func (s *Server) handleHide(_ context.Context, _ *mcpsdk.CallToolRequest, _ EmptyInput) (*mcpsdk.CallToolResult, BlurStatusOutput, error) {
	return s.act("hide", s.client.Hide)
}

func (s *Server) act(what string, fn func() error) (*mcpsdk.CallToolResult, BlurStatusOutput, error) {
	if err := fn(); err != nil {
		s.logger.Warn("overlay command failed", "command", what, "error", err)
		return nil, BlurStatusOutput{}, fmt.Errorf("%s failed: %w", what, err)
	}
	s.logger.Info("overlay command", "command", what)
	out, err := s.status()
	if err != nil {
		return nil, BlurStatusOutput{}, err
	}
	return nil, out, nil
}

func (s *Server) handleStatus(_ context.Context, _ *mcpsdk.CallToolRequest, _ EmptyInput) (*mcpsdk.CallToolResult, BlurStatusOutput, error) {
	out, err := s.status()
	if err != nil {
		return nil, BlurStatusOutput{}, err
	}
	return nil, out, nil
}

func (s *Server) status() (BlurStatusOutput, error) {
	st, err := s.client.GetStatus()
	if err != nil {
		return BlurStatusOutput{}, fmt.Errorf("failed to read status: %w", err)
	}
	out := BlurStatusOutput{
		Active:        st.Active,
		Transitioning: st.Transitioning,
		Surfaces:      st.Surfaces,
		Hotkey:        st.Hotkey,
		HotkeyLive:    st.HotkeyLive,
		Selection:     st.Selection,
		Degraded:      st.Degraded,
	}
	if st.Degraded {
		out.Warnings = append(out.Warnings, "global shortcut capture is unavailable; use these tools or `veil toggle`")
	} else if !st.HotkeyLive {
		out.Warnings = append(out.Warnings, fmt.Sprintf("shortcut %s is not registered", st.Hotkey))
	}
	if st.Active && len(st.Surfaces) == 0 {
		out.Warnings = append(out.Warnings, "no selected monitor is attached")
	}
	return out, nil
}

func (s *Server) handleListMonitors(_ context.Context, _ *mcpsdk.CallToolRequest, _ EmptyInput) (*mcpsdk.CallToolResult, ListMonitorsOutput, error) {
	data, err := s.client.GetMonitors()
	if err != nil {
		return nil, ListMonitorsOutput{}, fmt.Errorf("failed to list monitors: %w", err)
	}
	return nil, monitorsOutput(data), nil
}

func (s *Server) handleSelectMonitors(_ context.Context, _ *mcpsdk.CallToolRequest, args SelectMonitorsInput) (*mcpsdk.CallToolResult, ListMonitorsOutput, error) {
	ids := make([]string, 0, len(args.IDs))
	for _, id := range args.IDs {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	if args.All {
		ids = nil
	}
	if err := s.client.SetMonitors(args.All, ids); err != nil {
		return nil, ListMonitorsOutput{}, fmt.Errorf("failed to select monitors: %w", err)
	}
	s.logger.Info("monitor selection changed", "all", args.All, "ids", ids)

	data, err := s.client.GetMonitors()
	if err != nil {
		return nil, ListMonitorsOutput{}, fmt.Errorf("failed to list monitors: %w", err)
	}
	return nil, monitorsOutput(data), nil
}

func (s *Server) handleSetHotkey(_ context.Context, _ *mcpsdk.CallToolRequest, args SetHotkeyInput) (*mcpsdk.CallToolResult, SetHotkeyOutput, error) {
	b, err := hotkeys.ParseBinding(args.Hotkey)
	if err != nil {
		return nil, SetHotkeyOutput{}, err
	}
	// Reject policy violations here so the caller gets the precise reason.
	if err := hotkeys.Validate(b); err != nil {
		return nil, SetHotkeyOutput{}, err
	}
	if err := s.client.SetHotkey(b.String()); err != nil {
		return nil, SetHotkeyOutput{}, fmt.Errorf("failed to set hotkey: %w", err)
	}
	s.logger.Info("hotkey changed", "hotkey", b.String())
	return nil, SetHotkeyOutput{Hotkey: b.String(), Display: b.Display()}, nil
}

func monitorsOutput(data *ipc.MonitorsData) ListMonitorsOutput {
	out := ListMonitorsOutput{
		All:      data.All,
		Selected: data.Selected,
		Monitors: make([]MonitorInfo, 0, len(data.Monitors)),
	}
	if out.Selected == nil {
		out.Selected = []string{}
	}
	for _, m := range data.Monitors {
		out.Monitors = append(out.Monitors, MonitorInfo{
			ID:       m.ID,
			Name:     m.Name,
			X:        m.X,
			Y:        m.Y,
			Width:    m.Width,
			Height:   m.Height,
			Selected: m.Selected,
		})
	}
	return out
}
