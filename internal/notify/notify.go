// Package notify tells the user about hotkey problems when no terminal is
// watching: desktop notifications through beeep and, for problems that need
// acknowledging, a zenity dialog.
package notify

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/1broseidon/veil/internal/hotkeys"
	"github.com/gen2brain/beeep"
	"github.com/ncruces/zenity"
)

const appName = "Veil"

// Notifier implements the host notifier. It is safe for concurrent use.
type Notifier struct {
	mu      sync.Mutex
	enabled bool
	logger  *slog.Logger

	// Stubbed in tests.
	notify func(title, message string) error
	dialog func(title, message string) error
}

// New creates a notifier. When enabled is false, problems are only logged.
func New(enabled bool, logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Notifier{
		enabled: enabled,
		logger:  logger,
		notify: func(title, message string) error {
			return beeep.Notify(title, message, "")
		},
		dialog: func(title, message string) error {
			return zenity.Warning(message, zenity.Title(title), zenity.NoWrap())
		},
	}
}

// SetEnabled switches desktop notifications on or off.
func (n *Notifier) SetEnabled(enabled bool) {
	n.mu.Lock()
	n.enabled = enabled
	n.mu.Unlock()
}

// Enabled reports whether desktop notifications are on.
func (n *Notifier) Enabled() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.enabled
}

// RegistrationFailed reports a combination the window system refused.
func (n *Notifier) RegistrationFailed(b hotkeys.Binding, err error) {
	n.logger.Warn("hotkey unavailable", "hotkey", b.String(), "error", err)
	n.send(appName+": shortcut unavailable",
		fmt.Sprintf("%s is already taken by another application. Pick a different shortcut in veil settings.", b.Display()))
}

// MissingPermission reports that global key capture cannot work at all. It
// opens a dialog in the background so the caller is never blocked.
func (n *Notifier) MissingPermission(err error) {
	n.logger.Warn("global key capture unavailable", "error", err)
	if !n.Enabled() {
		return
	}
	msg := "Veil cannot listen for its global shortcut. The overlay can still be toggled from the tray or with `veil toggle`."
	go func() {
		if derr := n.dialog(appName, msg); derr != nil && !errors.Is(derr, zenity.ErrCanceled) {
			n.logger.Debug("dialog failed; falling back to notification", "error", derr)
			n.send(appName, msg)
		}
	}()
}

func (n *Notifier) send(title, message string) {
	if !n.Enabled() {
		return
	}
	if err := n.notify(title, message); err != nil {
		n.logger.Debug("desktop notification failed", "error", err)
	}
}
