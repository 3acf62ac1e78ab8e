// Package host is the surface the rest of veil drives the overlay and the
// hotkey through. Every method must be called on the UI loop.
package host

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/1broseidon/veil/internal/config"
	"github.com/1broseidon/veil/internal/hotkeys"
	"github.com/1broseidon/veil/internal/overlay"
	"github.com/1broseidon/veil/internal/prefs"
)

// ErrMissingPermission means global key capture is not available, usually
// because no X display could be opened. Only IPC and tray toggling work.
var ErrMissingPermission = errors.New("global key capture unavailable")

// Overlay is the part of overlay.Controller the host drives.
type Overlay interface {
	Show() error
	RequestHide(source overlay.DismissSource)
	ToggleWith(source overlay.DismissSource) error
	IsActive() bool
	State() overlay.State
	SetSelection(sel overlay.Selection)
	SetAppearance(look overlay.Appearance)
}

// Registrar is the part of hotkeys.Registrar the host drives.
type Registrar interface {
	Register(b hotkeys.Binding) error
	Unregister()
	Current() (hotkeys.Binding, bool)
}

// Preferences is the typed preference store.
type Preferences interface {
	HotkeyBinding() hotkeys.Binding
	SetHotkeyBinding(b hotkeys.Binding) error
	ResetHotkeyBinding() error
	MonitorSelection() overlay.Selection
	SetMonitorSelection(sel overlay.Selection) error
}

// Notifier tells the user about problems outside any terminal.
type Notifier interface {
	RegistrationFailed(b hotkeys.Binding, err error)
	MissingPermission(err error)
}

// Options wires a Host. Registrar is nil when global capture is unavailable.
type Options struct {
	Overlay   Overlay
	Registrar Registrar
	Prefs     Preferences
	Notifier  Notifier
	Logger    *slog.Logger
}

// Status is a snapshot for status displays.
type Status struct {
	Active        bool
	Transitioning bool
	Surfaces      []string
	Hotkey        hotkeys.Binding
	HotkeyLive    bool
	Selection     overlay.Selection
	Recording     bool
	Degraded      bool
}

// Host glues preferences, the registrar and the overlay together.
type Host struct {
	overlay   Overlay
	registrar Registrar
	prefs     Preferences
	notifier  Notifier
	logger    *slog.Logger

	recording bool
	recorded  bool
	pending   *hotkeys.Binding
}

// New creates a host. Call Start to register the saved hotkey.
func New(opts Options) *Host {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	notifier := opts.Notifier
	if notifier == nil {
		notifier = nopNotifier{}
	}
	return &Host{
		overlay:   opts.Overlay,
		registrar: opts.Registrar,
		prefs:     opts.Prefs,
		notifier:  notifier,
		logger:    logger,
	}
}

// Start applies the saved monitor selection and registers the saved hotkey.
// A registration failure is reported but the host keeps running.
func (h *Host) Start() error {
	h.overlay.SetSelection(h.prefs.MonitorSelection())

	if h.registrar == nil {
		h.logger.Warn("global hotkey unavailable; running in degraded mode")
		h.notifier.MissingPermission(ErrMissingPermission)
		return ErrMissingPermission
	}
	return h.register(h.prefs.HotkeyBinding())
}

// Degraded reports whether global capture is unavailable.
func (h *Host) Degraded() bool {
	return h.registrar == nil
}

// OnToggleRequested is the hotkey callback.
func (h *Host) OnToggleRequested() {
	if err := h.overlay.ToggleWith(overlay.DismissHotkey); err != nil {
		h.logger.Error("toggle failed", "error", err)
	}
}

// Toggle toggles on behalf of a UI affordance (IPC, tray, MCP).
func (h *Host) Toggle() error {
	return h.overlay.ToggleWith(overlay.DismissExplicit)
}

// Show shows the overlay. It is a no-op when already shown.
func (h *Host) Show() error {
	return h.overlay.Show()
}

// Hide requests the overlay to hide.
func (h *Host) Hide() {
	h.overlay.RequestHide(overlay.DismissExplicit)
}

// IsActive reports whether the overlay is shown.
func (h *Host) IsActive() bool {
	return h.overlay.IsActive()
}

// Status returns a snapshot of host state.
func (h *Host) Status() Status {
	st := h.overlay.State()
	s := Status{
		Active:        st.Active,
		Transitioning: st.Transitioning,
		Surfaces:      st.Surfaces,
		Selection:     h.prefs.MonitorSelection(),
		Recording:     h.recording,
		Degraded:      h.Degraded(),
	}
	if h.registrar != nil {
		s.Hotkey, s.HotkeyLive = h.registrar.Current()
	}
	if !s.HotkeyLive {
		s.Hotkey = h.prefs.HotkeyBinding()
	}
	return s
}

// SetHotkeyBinding validates b, makes it the live binding and saves it. If
// the window system refuses b, nothing is bound and nothing is saved.
func (h *Host) SetHotkeyBinding(b hotkeys.Binding) error {
	if err := hotkeys.Validate(b); err != nil {
		return err
	}
	if h.recording {
		h.recorded = true
	}
	if h.registrar != nil {
		if err := h.register(b); err != nil {
			return err
		}
	}
	if err := h.prefs.SetHotkeyBinding(b); err != nil {
		return err
	}
	h.pending = nil
	return nil
}

// ResetHotkeyBinding goes back to the default binding.
func (h *Host) ResetHotkeyBinding() error {
	def := hotkeys.Default()
	if h.recording {
		h.recorded = true
	}
	if h.registrar != nil {
		if err := h.register(def); err != nil {
			return err
		}
	}
	if err := h.prefs.ResetHotkeyBinding(); err != nil {
		return err
	}
	h.pending = nil
	return nil
}

// SetMonitorSelection saves sel. It takes effect on the next show.
func (h *Host) SetMonitorSelection(sel overlay.Selection) error {
	if err := h.prefs.SetMonitorSelection(sel); err != nil {
		return err
	}
	h.overlay.SetSelection(sel)
	return nil
}

// BeginRecording marks the start of a shortcut capture in a settings UI.
// The live binding stays registered; rebinds coming from config reloads are
// held back until EndRecording.
func (h *Host) BeginRecording() {
	h.recording = true
	h.recorded = false
	h.logger.Debug("shortcut recording started")
}

// EndRecording ends a capture. A held-back reload rebind is applied unless
// the capture itself set a binding.
func (h *Host) EndRecording() error {
	if !h.recording {
		return nil
	}
	h.recording = false
	pending := h.pending
	h.pending = nil
	h.logger.Debug("shortcut recording ended", "recorded", h.recorded)

	if pending == nil || h.recorded {
		return nil
	}
	return h.rebind(*pending)
}

// Recording reports whether a capture is in progress.
func (h *Host) Recording() bool {
	return h.recording
}

// ApplyConfig applies a reloaded config: look, selection and hotkey.
func (h *Host) ApplyConfig(cfg *config.Config) error {
	h.overlay.SetAppearance(AppearanceFromConfig(cfg))
	h.overlay.SetSelection(prefs.SelectionFromConfig(cfg.Monitors))

	b, err := cfg.HotkeyBinding()
	if err != nil {
		return fmt.Errorf("invalid hotkey in config: %w", err)
	}
	if h.recording {
		h.pending = &b
		h.logger.Debug("hotkey change held until recording ends", "hotkey", b.String())
		return nil
	}
	return h.rebind(b)
}

// Close releases the global hotkey.
func (h *Host) Close() {
	if h.registrar != nil {
		h.registrar.Unregister()
	}
}

// rebind registers b unless it is already live.
func (h *Host) rebind(b hotkeys.Binding) error {
	if h.registrar == nil {
		return nil
	}
	if cur, live := h.registrar.Current(); live && cur.Equal(b) {
		return nil
	}
	return h.register(b)
}

func (h *Host) register(b hotkeys.Binding) error {
	if err := h.registrar.Register(b); err != nil {
		h.notifier.RegistrationFailed(b, err)
		return err
	}
	return nil
}

// AppearanceFromConfig builds the overlay look from config values.
func AppearanceFromConfig(cfg *config.Config) overlay.Appearance {
	r, g, b := cfg.TintRGB()
	return overlay.Appearance{
		Opacity:  cfg.Opacity,
		Tint:     uint32(r)<<16 | uint32(g)<<8 | uint32(b),
		HintText: cfg.HintText,
		ShowHint: cfg.ShowHint,
	}
}

type nopNotifier struct{}

func (nopNotifier) RegistrationFailed(hotkeys.Binding, error) {}
func (nopNotifier) MissingPermission(error)                   {}
