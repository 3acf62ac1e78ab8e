package mcp

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"reflect"
	"strings"
	"testing"

	"github.com/1broseidon/veil/internal/hotkeys"
	"github.com/1broseidon/veil/internal/ipc"
)

type fakeClient struct {
	status   ipc.StatusData
	monitors ipc.MonitorsData
	calls    []string
	hotkey   string
	all      bool
	ids      []string
	err      error
}

func (c *fakeClient) record(name string) error {
	c.calls = append(c.calls, name)
	return c.err
}

func (c *fakeClient) Toggle() error {
	if err := c.record("toggle"); err != nil {
		return err
	}
	c.status.Active = !c.status.Active
	return nil
}

func (c *fakeClient) Show() error {
	if err := c.record("show"); err != nil {
		return err
	}
	c.status.Active = true
	return nil
}

func (c *fakeClient) Hide() error {
	if err := c.record("hide"); err != nil {
		return err
	}
	c.status.Active = false
	return nil
}

func (c *fakeClient) GetStatus() (*ipc.StatusData, error) {
	st := c.status
	return &st, nil
}

func (c *fakeClient) GetMonitors() (*ipc.MonitorsData, error) {
	m := c.monitors
	return &m, nil
}

func (c *fakeClient) SetMonitors(all bool, ids []string) error {
	c.all, c.ids = all, ids
	return c.record("set_monitors")
}

func (c *fakeClient) SetHotkey(hotkey string) error {
	c.hotkey = hotkey
	return c.record("set_hotkey")
}

func newTestServer(c *fakeClient) *Server {
	return NewServer(c, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestToggleReturnsNewState(t *testing.T) {
	c := &fakeClient{status: ipc.StatusData{Hotkey: "Mod4-shift-b", HotkeyLive: true, Surfaces: []string{"DP-1"}}}
	s := newTestServer(c)

	_, out, err := s.handleToggle(context.Background(), nil, EmptyInput{})
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if !out.Active {
		t.Errorf("Active = false after toggling a hidden overlay")
	}
	if len(out.Warnings) != 0 {
		t.Errorf("unexpected warnings: %v", out.Warnings)
	}

	_, out, err = s.handleToggle(context.Background(), nil, EmptyInput{})
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if out.Active {
		t.Errorf("Active = true after toggling a shown overlay")
	}
	if got := strings.Join(c.calls, ","); got != "toggle,toggle" {
		t.Errorf("calls = %q", got)
	}
}

func TestShowHide(t *testing.T) {
	c := &fakeClient{status: ipc.StatusData{HotkeyLive: true, Surfaces: []string{"DP-1"}}}
	s := newTestServer(c)

	if _, out, err := s.handleShow(context.Background(), nil, EmptyInput{}); err != nil || !out.Active {
		t.Fatalf("show: active=%v err=%v", out.Active, err)
	}
	if _, out, err := s.handleHide(context.Background(), nil, EmptyInput{}); err != nil || out.Active {
		t.Fatalf("hide: active=%v err=%v", out.Active, err)
	}
}

func TestDaemonErrorPropagates(t *testing.T) {
	c := &fakeClient{err: errors.New("failed to connect to daemon")}
	s := newTestServer(c)

	_, _, err := s.handleShow(context.Background(), nil, EmptyInput{})
	if err == nil || !strings.Contains(err.Error(), "show failed") {
		t.Fatalf("err = %v, want show failed", err)
	}
}

func TestStatusWarnings(t *testing.T) {
	tests := []struct {
		name   string
		status ipc.StatusData
		want   string
	}{
		{"degraded", ipc.StatusData{Degraded: true}, "unavailable"},
		{"unbound", ipc.StatusData{Hotkey: "Mod4-shift-b"}, "not registered"},
		{"nothing covered", ipc.StatusData{Active: true, HotkeyLive: true}, "no selected monitor"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(&fakeClient{status: tt.status})
			_, out, err := s.handleStatus(context.Background(), nil, EmptyInput{})
			if err != nil {
				t.Fatalf("status: %v", err)
			}
			if len(out.Warnings) == 0 || !strings.Contains(out.Warnings[0], tt.want) {
				t.Errorf("warnings = %v, want one containing %q", out.Warnings, tt.want)
			}
		})
	}
}

func TestListMonitors(t *testing.T) {
	c := &fakeClient{monitors: ipc.MonitorsData{
		Monitors: []ipc.MonitorInfo{
			{ID: "DP-1", Width: 1920, Height: 1080, Selected: true},
			{ID: "HDMI-1", X: 1920, Width: 2560, Height: 1440},
		},
		Selected: []string{"DP-1"},
	}}
	s := newTestServer(c)

	_, out, err := s.handleListMonitors(context.Background(), nil, EmptyInput{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if out.All {
		t.Errorf("All = true")
	}
	if len(out.Monitors) != 2 || !out.Monitors[0].Selected || out.Monitors[1].Selected {
		t.Errorf("monitors = %+v", out.Monitors)
	}
	if out.Monitors[1].X != 1920 {
		t.Errorf("HDMI-1 x = %d, want 1920", out.Monitors[1].X)
	}
}

func TestSelectMonitors(t *testing.T) {
	c := &fakeClient{}
	s := newTestServer(c)

	if _, _, err := s.handleSelectMonitors(context.Background(), nil, SelectMonitorsInput{IDs: []string{" HDMI-1 ", ""}}); err != nil {
		t.Fatalf("select: %v", err)
	}
	if c.all || !reflect.DeepEqual(c.ids, []string{"HDMI-1"}) {
		t.Errorf("sent all=%v ids=%v", c.all, c.ids)
	}

	if _, _, err := s.handleSelectMonitors(context.Background(), nil, SelectMonitorsInput{All: true, IDs: []string{"DP-1"}}); err != nil {
		t.Fatalf("select all: %v", err)
	}
	if !c.all || c.ids != nil {
		t.Errorf("sent all=%v ids=%v, want all and no ids", c.all, c.ids)
	}
}

func TestSetHotkey(t *testing.T) {
	c := &fakeClient{}
	s := newTestServer(c)

	_, out, err := s.handleSetHotkey(context.Background(), nil, SetHotkeyInput{Hotkey: "ctrl+alt+F5"})
	if err != nil {
		t.Fatalf("set_hotkey: %v", err)
	}
	if c.hotkey != "Mod1-control-F5" {
		t.Errorf("sent %q, want Mod1-control-F5", c.hotkey)
	}
	if out.Display != "⌃⌥F5" {
		t.Errorf("display = %q", out.Display)
	}
}

func TestSetHotkeyRejectsPolicyViolations(t *testing.T) {
	c := &fakeClient{}
	s := newTestServer(c)

	for _, in := range []string{"b", "super+q", "shift+"} {
		if _, _, err := s.handleSetHotkey(context.Background(), nil, SetHotkeyInput{Hotkey: in}); err == nil {
			t.Errorf("%q: expected error", in)
		}
	}
	_, _, err := s.handleSetHotkey(context.Background(), nil, SetHotkeyInput{Hotkey: "b"})
	if !errors.Is(err, hotkeys.ErrNoModifier) {
		t.Errorf("err = %v, want ErrNoModifier", err)
	}
	if len(c.calls) != 0 {
		t.Errorf("daemon was called: %v", c.calls)
	}
}
