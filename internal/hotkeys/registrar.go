package hotkeys

import (
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// ErrRegistrationFailed is returned (wrapped in *RegistrationError) when the
// window system refuses to grab a combination.
var ErrRegistrationFailed = errors.New("hotkey registration failed")

// RegistrationError carries the binding that could not be grabbed.
type RegistrationError struct {
	Binding Binding
	Err     error
}

func (e *RegistrationError) Error() string {
	return fmt.Sprintf("failed to register hotkey %s: %v", e.Binding, e.Err)
}

func (e *RegistrationError) Unwrap() []error {
	return []error{ErrRegistrationFailed, e.Err}
}

// Grabber installs and removes one system-wide key grab. fire must be
// invoked on the UI loop each time the combination is pressed.
type Grabber interface {
	Grab(b Binding, fire func()) error
	Release(b Binding)
}

// Registrar keeps exactly one global binding live. It is not safe for
// concurrent use; all calls happen on the UI loop.
type Registrar struct {
	grabber  Grabber
	callback func()
	logger   *slog.Logger

	current Binding
	live    bool
	gen     uint64

	debounce  time.Duration
	lastFired time.Time
	now       func() time.Time
}

// NewRegistrar creates a registrar that calls callback when the live binding
// is pressed. Presses closer together than debounce (key auto-repeat) are
// dropped; zero disables debouncing.
func NewRegistrar(grabber Grabber, callback func(), debounce time.Duration, logger *slog.Logger) *Registrar {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registrar{
		grabber:  grabber,
		callback: callback,
		logger:   logger,
		debounce: debounce,
		now:      time.Now,
	}
}

// Register replaces the live binding. Any previous binding is released first,
// even when the new grab fails.
func (r *Registrar) Register(b Binding) error {
	r.Unregister()

	r.gen++
	gen := r.gen
	if err := r.grabber.Grab(b, func() { r.fire(gen) }); err != nil {
		r.logger.Warn("hotkey registration refused", "hotkey", b.String(), "error", err)
		return &RegistrationError{Binding: b, Err: err}
	}

	r.current = b
	r.live = true
	r.logger.Info("hotkey registered", "hotkey", b.String())
	return nil
}

// Unregister releases the live binding. Safe to call when nothing is bound.
func (r *Registrar) Unregister() {
	if !r.live {
		return
	}
	r.grabber.Release(r.current)
	r.logger.Debug("hotkey released", "hotkey", r.current.String())
	r.live = false
	r.current = Binding{}
	r.gen++
}

// Current returns the live binding, if any.
func (r *Registrar) Current() (Binding, bool) {
	return r.current, r.live
}

func (r *Registrar) fire(gen uint64) {
	// Presses delivered after a rebind belong to a released grab.
	if !r.live || gen != r.gen {
		return
	}
	if r.debounce > 0 {
		now := r.now()
		if !r.lastFired.IsZero() && now.Sub(r.lastFired) < r.debounce {
			return
		}
		r.lastFired = now
	}
	if r.callback != nil {
		r.callback()
	}
}
