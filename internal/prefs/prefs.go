// Package prefs exposes the two user preferences the daemon persists, the
// toggle hotkey and the monitor selection, as typed values over the YAML
// config file.
package prefs

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/1broseidon/veil/internal/config"
	"github.com/1broseidon/veil/internal/hotkeys"
	"github.com/1broseidon/veil/internal/overlay"
)

// Store reads and writes preferences in one config file. Writes only touch
// the keys they own and replace the file atomically.
type Store struct {
	path   string
	logger *slog.Logger

	mu  sync.Mutex
	cfg *config.Config
}

// Open loads the config file at path (a missing file means defaults).
func Open(path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{path: path, logger: logger}
	if _, err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// OpenDefault opens the store at config.DefaultConfigPath.
func OpenDefault(logger *slog.Logger) (*Store, error) {
	path, err := config.DefaultConfigPath()
	if err != nil {
		return nil, err
	}
	return Open(path, logger)
}

// Path returns the backing file.
func (s *Store) Path() string {
	return s.path
}

// Reload re-reads the file and returns the new config.
func (s *Store) Reload() (*config.Config, error) {
	res, err := config.LoadFromPath(s.path)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.cfg = res.Config
	s.mu.Unlock()
	cp := *res.Config
	return &cp, nil
}

// Config returns a copy of the last loaded config.
func (s *Store) Config() *config.Config {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *s.cfg
	return &cp
}

// HotkeyBinding returns the saved binding, or the default if none is saved
// or the saved one does not parse.
func (s *Store) HotkeyBinding() hotkeys.Binding {
	s.mu.Lock()
	raw := s.cfg.Hotkey
	s.mu.Unlock()

	b, err := hotkeys.ParseBinding(raw)
	if err != nil {
		s.logger.Warn("saved hotkey is invalid; using default", "hotkey", raw, "error", err)
		return hotkeys.Default()
	}
	return b
}

// SetHotkeyBinding persists b.
func (s *Store) SetHotkeyBinding(b hotkeys.Binding) error {
	if err := s.update(map[string]any{"hotkey": b.String()}); err != nil {
		return fmt.Errorf("failed to save hotkey: %w", err)
	}
	return nil
}

// ResetHotkeyBinding persists the default binding.
func (s *Store) ResetHotkeyBinding() error {
	return s.SetHotkeyBinding(hotkeys.Default())
}

// MonitorSelection returns the saved selection (All by default).
func (s *Store) MonitorSelection() overlay.Selection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return SelectionFromConfig(s.cfg.Monitors)
}

// SetMonitorSelection persists sel.
func (s *Store) SetMonitorSelection(sel overlay.Selection) error {
	if err := s.update(map[string]any{"monitors": SelectionToConfig(sel)}); err != nil {
		return fmt.Errorf("failed to save monitor selection: %w", err)
	}
	return nil
}

// Update writes arbitrary top-level keys, preserving the rest of the file.
func (s *Store) Update(values map[string]any) error {
	if err := s.update(values); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}

func (s *Store) update(values map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := config.UpdateKeys(s.path, values); err != nil {
		return err
	}
	res, err := config.LoadFromPath(s.path)
	if err != nil {
		return err
	}
	s.cfg = res.Config
	return nil
}

// SelectionFromConfig converts the config representation.
func SelectionFromConfig(l config.MonitorList) overlay.Selection {
	if !l.Explicit {
		return overlay.All()
	}
	return overlay.Only(l.IDs...)
}

// SelectionToConfig converts to the config representation.
func SelectionToConfig(sel overlay.Selection) config.MonitorList {
	if sel.IsAll() {
		return config.AllMonitors()
	}
	return config.OnlyMonitors(sel.IDs()...)
}
