// Package tray shows the overlay state in the system tray.
package tray

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/getlantern/systray"

	"github.com/1broseidon/veil/internal/ipc"
)

// State is what the tray icon reflects.
type State int

const (
	StateOffline State = iota
	StateHidden
	StateShown
	StateUnbound
)

// Client is the daemon IPC surface used by the tray.
type Client interface {
	Toggle() error
	GetStatus() (*ipc.StatusData, error)
}

// Callbacks holds menu handlers.
type Callbacks struct {
	OnSettingsClick func()
	OnQuit          func()
}

// Tray manages the system tray icon.
type Tray struct {
	client    Client
	callbacks Callbacks
	logger    *slog.Logger
	interval  time.Duration

	mu    sync.Mutex
	state State
	set   bool

	status      *systray.MenuItem
	toggleBtn   *systray.MenuItem
	settingsBtn *systray.MenuItem
	quitBtn     *systray.MenuItem
}

// New creates a new Tray.
func New(client Client, callbacks Callbacks, logger *slog.Logger) *Tray {
	if logger == nil {
		logger = slog.Default()
	}
	return &Tray{
		client:    client,
		callbacks: callbacks,
		logger:    logger.With("component", "tray"),
		interval:  2 * time.Second,
	}
}

// Run starts the system tray. It blocks until Quit or ctx is done.
func (t *Tray) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	systray.Run(func() { t.onReady(ctx) }, cancel)
}

func (t *Tray) onReady(ctx context.Context) {
	systray.SetIcon(iconFor(StateOffline))
	systray.SetTitle("Veil")
	systray.SetTooltip("Veil: privacy blur")

	t.status = systray.AddMenuItem("Connecting…", "")
	t.status.Disable()

	systray.AddSeparator()

	t.toggleBtn = systray.AddMenuItem("Blur screen", "Show or hide the blur")
	t.settingsBtn = systray.AddMenuItem("Settings…", "Change the shortcut, look and monitors")

	systray.AddSeparator()

	t.quitBtn = systray.AddMenuItem("Quit tray", "Remove the tray icon; the daemon keeps running")

	go t.handleMenuEvents(ctx)
	go t.poll(ctx)
}

func (t *Tray) handleMenuEvents(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			systray.Quit()
			return

		case <-t.toggleBtn.ClickedCh:
			if err := t.client.Toggle(); err != nil {
				t.logger.Warn("toggle failed", "error", err)
			}
			t.refresh()

		case <-t.settingsBtn.ClickedCh:
			if t.callbacks.OnSettingsClick != nil {
				t.callbacks.OnSettingsClick()
			}

		case <-t.quitBtn.ClickedCh:
			if t.callbacks.OnQuit != nil {
				t.callbacks.OnQuit()
			}
			systray.Quit()
			return
		}
	}
}

func (t *Tray) poll(ctx context.Context) {
	t.refresh()
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.refresh()
		}
	}
}

func (t *Tray) refresh() {
	st, err := t.client.GetStatus()
	state := stateOf(st, err)

	t.mu.Lock()
	changed := !t.set || state != t.state
	t.state, t.set = state, true
	t.mu.Unlock()
	if !changed {
		return
	}

	t.logger.Debug("tray state changed", "state", state.String())
	systray.SetIcon(iconFor(state))
	systray.SetTooltip("Veil: " + state.String())
	t.status.SetTitle(statusTitle(state, st))
	if state == StateShown {
		t.toggleBtn.SetTitle("Unblur screen")
	} else {
		t.toggleBtn.SetTitle("Blur screen")
	}
	if state == StateOffline {
		t.toggleBtn.Disable()
	} else {
		t.toggleBtn.Enable()
	}
}

func stateOf(st *ipc.StatusData, err error) State {
	switch {
	case err != nil || st == nil:
		return StateOffline
	case st.Active:
		return StateShown
	case st.Degraded || !st.HotkeyLive:
		return StateUnbound
	default:
		return StateHidden
	}
}

func (s State) String() string {
	switch s {
	case StateShown:
		return "blurred"
	case StateHidden:
		return "ready"
	case StateUnbound:
		return "shortcut unavailable"
	default:
		return "daemon not running"
	}
}

func statusTitle(s State, st *ipc.StatusData) string {
	switch s {
	case StateHidden, StateShown:
		if st.HotkeyDisplay != "" {
			return "Ready (" + st.HotkeyDisplay + ")"
		}
		return "Ready"
	case StateUnbound:
		return "Shortcut unavailable"
	default:
		return "Daemon not running"
	}
}
