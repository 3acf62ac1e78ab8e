// Package tui is the interactive settings screen: the toggle shortcut, the
// overlay look and which monitors get blurred.
package tui

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/1broseidon/veil/internal/config"
	"github.com/1broseidon/veil/internal/hotkeys"
	"github.com/1broseidon/veil/internal/ipc"
	"github.com/1broseidon/veil/internal/overlay"
	"github.com/1broseidon/veil/internal/platform"
)

// Store is the preference file. It is used directly when no daemon runs.
type Store interface {
	Config() *config.Config
	Reload() (*config.Config, error)
	HotkeyBinding() hotkeys.Binding
	SetHotkeyBinding(b hotkeys.Binding) error
	ResetHotkeyBinding() error
	MonitorSelection() overlay.Selection
	SetMonitorSelection(sel overlay.Selection) error
	Update(values map[string]any) error
}

// Daemon is the IPC surface of a running daemon.
type Daemon interface {
	GetStatus() (*ipc.StatusData, error)
	GetMonitors() (*ipc.MonitorsData, error)
	SetMonitors(all bool, ids []string) error
	SetHotkey(hotkey string) error
	ResetHotkey() error
	BeginRecording() error
	EndRecording() error
	Reload() error
}

// Recorder captures one shortcut from the keyboard.
type Recorder interface {
	Record(ctx context.Context) (hotkeys.Binding, error)
}

// Options wires the settings screen. Daemon and Displays may be nil.
type Options struct {
	Store    Store
	Daemon   Daemon
	Recorder Recorder
	// Displays lists monitors when the daemon is not running.
	Displays platform.Enumerator
}

// Run starts the settings screen and blocks until the user quits.
func Run(opts Options) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("settings requires an interactive terminal (stdin/stdout must be TTYs)")
	}
	if opts.Store == nil {
		return fmt.Errorf("settings: no preference store")
	}

	p := tea.NewProgram(newModel(opts), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
