// Package daemon runs veil in the foreground: it owns the UI loop, the X
// connection, the overlay, the global hotkey and the IPC socket.
package daemon

import (
	"errors"
	"io"
	"log/slog"
	"time"
)

// ErrUnsupported is returned by Run on platforms without an X11 backend.
var ErrUnsupported = errors.New("the veil daemon requires X11 on linux")

// Options configures Run.
type Options struct {
	// ConfigPath overrides the default config file location.
	ConfigPath string
	// LogOutput receives daemon logs; nil means stderr.
	LogOutput io.Writer
	// Logger overrides the logger built from the config's log_level.
	Logger *slog.Logger

	// ReconcileInterval is how often displays are checked for hot-plug.
	ReconcileInterval time.Duration
	// ReloadSettle coalesces bursts of config file events.
	ReloadSettle time.Duration
}
