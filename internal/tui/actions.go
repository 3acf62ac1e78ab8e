package tui

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/1broseidon/veil/internal/capture"
	"github.com/1broseidon/veil/internal/config"
	"github.com/1broseidon/veil/internal/hotkeys"
	"github.com/1broseidon/veil/internal/ipc"
	"github.com/1broseidon/veil/internal/overlay"
	"github.com/1broseidon/veil/internal/platform"
)

// settings runs the slow work behind tea.Cmds. It holds no mutable state.
type settings struct {
	store    Store
	daemon   Daemon
	recorder Recorder
	displays platform.Enumerator
}

// monitorRow is one line in the monitors tab.
type monitorRow struct {
	ID       string
	Name     string
	Bounds   platform.Rect
	Attached bool
	Selected bool
}

type loadedMsg struct {
	cfg       *config.Config
	connected bool
	status    *ipc.StatusData
	hotkey    hotkeys.Binding
	selection overlay.Selection
	monitors  []monitorRow
	err       error
}

type hotkeyMsg struct {
	binding hotkeys.Binding
	err     error
}

type savedMsg struct {
	what string
	err  error
}

func (s settings) load() tea.Msg {
	msg := loadedMsg{}
	cfg, err := s.store.Reload()
	if err != nil {
		msg.err = err
		cfg = s.store.Config()
	}
	msg.cfg = cfg

	if s.daemon != nil {
		if st, err := s.daemon.GetStatus(); err == nil {
			msg.connected = true
			msg.status = st
			if b, err := hotkeys.ParseBinding(st.Hotkey); err == nil {
				msg.hotkey = b
			}
			mons, err := s.daemon.GetMonitors()
			if err != nil {
				msg.err = err
				return msg
			}
			msg.selection = selectionFromIPC(mons)
			msg.monitors = rowsFromIPC(mons)
			return msg
		}
	}

	msg.hotkey = s.store.HotkeyBinding()
	msg.selection = s.store.MonitorSelection()
	var displays []platform.Display
	if s.displays != nil {
		if displays, err = s.displays.Displays(); err != nil && msg.err == nil {
			msg.err = err
		}
	}
	msg.monitors = rowsFromDisplays(displays, msg.selection)
	return msg
}

// record captures a shortcut and applies it. The daemon keeps its hotkey
// live while the capture runs.
func (s settings) record(connected bool) tea.Cmd {
	return func() tea.Msg {
		if s.recorder == nil {
			return hotkeyMsg{err: errors.New("shortcut capture is not available")}
		}
		if connected {
			if err := s.daemon.BeginRecording(); err != nil {
				return hotkeyMsg{err: err}
			}
			defer s.daemon.EndRecording()
		}

		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		b, err := s.recorder.Record(ctx)
		if err != nil {
			return hotkeyMsg{err: err}
		}
		return hotkeyMsg{binding: b, err: s.applyHotkey(connected, b)}
	}
}

func (s settings) applyHotkey(connected bool, b hotkeys.Binding) error {
	if connected {
		return s.daemon.SetHotkey(b.String())
	}
	if err := hotkeys.Validate(b); err != nil {
		return err
	}
	return s.store.SetHotkeyBinding(b)
}

func (s settings) resetHotkey(connected bool) tea.Cmd {
	return func() tea.Msg {
		def := hotkeys.Default()
		if connected {
			return hotkeyMsg{binding: def, err: s.daemon.ResetHotkey()}
		}
		return hotkeyMsg{binding: def, err: s.store.ResetHotkeyBinding()}
	}
}

func (s settings) applyMonitors(connected bool, sel overlay.Selection) tea.Cmd {
	return func() tea.Msg {
		var err error
		if connected {
			err = s.daemon.SetMonitors(sel.IsAll(), sel.IDs())
		} else {
			err = s.store.SetMonitorSelection(sel)
		}
		return savedMsg{what: "monitors: " + sel.String(), err: err}
	}
}

func (s settings) saveAppearance(connected bool, values map[string]any) tea.Cmd {
	return func() tea.Msg {
		if err := s.store.Update(values); err != nil {
			return savedMsg{what: "appearance", err: err}
		}
		if connected {
			if err := s.daemon.Reload(); err != nil {
				return savedMsg{what: "appearance", err: fmt.Errorf("saved, but the daemon did not reload: %w", err)}
			}
		}
		return savedMsg{what: "appearance"}
	}
}

func selectionFromIPC(data *ipc.MonitorsData) overlay.Selection {
	if data.All {
		return overlay.All()
	}
	return overlay.Only(data.Selected...)
}

func rowsFromIPC(data *ipc.MonitorsData) []monitorRow {
	displays := make([]platform.Display, 0, len(data.Monitors))
	for _, m := range data.Monitors {
		displays = append(displays, platform.Display{
			ID:     m.ID,
			Name:   m.Name,
			Bounds: platform.Rect{X: m.X, Y: m.Y, Width: m.Width, Height: m.Height},
		})
	}
	return rowsFromDisplays(displays, selectionFromIPC(data))
}

// rowsFromDisplays lists attached displays first, then selected IDs that are
// not attached so they can still be deselected.
func rowsFromDisplays(displays []platform.Display, sel overlay.Selection) []monitorRow {
	rows := make([]monitorRow, 0, len(displays))
	seen := make(map[string]bool, len(displays))
	for _, d := range displays {
		if seen[d.ID] {
			continue
		}
		seen[d.ID] = true
		rows = append(rows, monitorRow{
			ID:       d.ID,
			Name:     d.Name,
			Bounds:   d.Bounds,
			Attached: true,
			Selected: sel.Includes(d.ID),
		})
	}
	if !sel.IsAll() {
		for _, id := range sel.IDs() {
			if !seen[id] {
				rows = append(rows, monitorRow{ID: id, Name: id, Selected: true})
			}
		}
	}
	return rows
}

func isCanceled(err error) bool {
	return errors.Is(err, capture.ErrCanceled) || errors.Is(err, context.Canceled)
}
