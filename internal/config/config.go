package config

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/1broseidon/veil/internal/hotkeys"
	"gopkg.in/yaml.v3"
)

// Hotkey grabber backends.
const (
	HotkeyBackendKeybind = "keybind" // xgbutil passive grab on the root window.
	HotkeyBackendXHotkey = "xhotkey" // golang.design/x/hotkey listener.
)

// Display enumeration sources.
const (
	DisplaySourceRandR      = "randr"
	DisplaySourceScreenshot = "screenshot"
)

// DefaultHintText is drawn centered on every overlay window.
const DefaultHintText = "Press shortcut again to unblur or click anywhere"

// MonitorList selects which displays get an overlay. It supports either:
//
//	monitors: all
//
// or:
//
//	monitors:
//	  - DP-1
//	  - HDMI-1
//
// The zero value selects every display. An explicit empty list selects none.
type MonitorList struct {
	Explicit bool
	IDs      []string
}

// AllMonitors returns the selection covering every display.
func AllMonitors() MonitorList {
	return MonitorList{}
}

// OnlyMonitors returns an explicit selection. A nil or empty ids selects none.
func OnlyMonitors(ids ...string) MonitorList {
	out := make([]string, 0, len(ids))
	out = append(out, ids...)
	return MonitorList{Explicit: true, IDs: out}
}

func (l MonitorList) String() string {
	if !l.Explicit {
		return "all"
	}
	if len(l.IDs) == 0 {
		return "none"
	}
	return strings.Join(l.IDs, ",")
}

func (l *MonitorList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		if value.Tag != "!!str" || !strings.EqualFold(strings.TrimSpace(value.Value), "all") {
			return fmt.Errorf("monitors must be \"all\" or a list of output names")
		}
		*l = AllMonitors()
		return nil
	case yaml.SequenceNode:
		ids := make([]string, 0, len(value.Content))
		for _, item := range value.Content {
			if item.Kind != yaml.ScalarNode || item.Tag != "!!str" {
				return fmt.Errorf("monitors entries must be strings")
			}
			ids = append(ids, item.Value)
		}
		*l = OnlyMonitors(ids...)
		return nil
	default:
		return fmt.Errorf("monitors must be \"all\" or a list of output names")
	}
}

func (l MonitorList) MarshalYAML() (any, error) {
	if !l.Explicit {
		return "all", nil
	}
	ids := l.IDs
	if ids == nil {
		ids = []string{}
	}
	return ids, nil
}

// Config is the on-disk configuration.
type Config struct {
	// Hotkey is the global toggle in keybind syntax, e.g. "Mod4-shift-b".
	Hotkey           string      `yaml:"hotkey"`
	HotkeyBackend    string      `yaml:"hotkey_backend"`
	HotkeyDebounceMs int         `yaml:"hotkey_debounce_ms"` // Drops auto-repeat; 0 disables.
	Monitors         MonitorList `yaml:"monitors"`

	Opacity  float64 `yaml:"opacity"` // Tint alpha, 0.05-1.0.
	Tint     string  `yaml:"tint"`    // #rrggbb
	HintText string  `yaml:"hint_text"`
	ShowHint bool    `yaml:"show_hint"`

	DisplaySource string `yaml:"display_source"`
	Tray          bool   `yaml:"tray"`
	Notifications bool   `yaml:"notifications"`
	LogLevel      string `yaml:"log_level"`

	// Terminal opens the settings screen from the tray, e.g.
	// "kitty -e {{cmd}}". Empty picks the first known terminal in PATH.
	Terminal string `yaml:"terminal,omitempty"`

	// PaletteBackend is the launcher "veil menu" uses: auto, rofi, fuzzel,
	// wofi or dmenu.
	PaletteBackend string `yaml:"palette_backend,omitempty"`

	// Display and XAuthority override the X server the daemon connects to.
	Display    string `yaml:"display,omitempty"`
	XAuthority string `yaml:"xauthority,omitempty"`
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		Hotkey:           hotkeys.Default().String(),
		HotkeyBackend:    HotkeyBackendKeybind,
		HotkeyDebounceMs: 250,
		Monitors:         AllMonitors(),
		Opacity:          0.3,
		Tint:             "#000000",
		HintText:         DefaultHintText,
		ShowHint:         true,
		DisplaySource:    DisplaySourceRandR,
		Tray:             false,
		Notifications:    true,
		LogLevel:         "info",
	}
}

// HotkeyBinding parses the configured hotkey.
func (c *Config) HotkeyBinding() (hotkeys.Binding, error) {
	return hotkeys.ParseBinding(c.Hotkey)
}

// TintRGB returns the tint as 8-bit channels. Validate guarantees the format.
func (c *Config) TintRGB() (r, g, b uint8) {
	var rr, gg, bb uint8
	if _, err := fmt.Sscanf(strings.ToLower(c.Tint), "#%02x%02x%02x", &rr, &gg, &bb); err != nil {
		return 0, 0, 0
	}
	return rr, gg, bb
}

var tintPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// Validate performs strict validation of the configuration.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Hotkey) == "" {
		return &ValidationError{Path: "hotkey", Err: fmt.Errorf("hotkey is required")}
	}
	binding, err := hotkeys.ParseBinding(c.Hotkey)
	if err != nil {
		return &ValidationError{Path: "hotkey", Err: err}
	}
	if err := hotkeys.Validate(binding); err != nil {
		return &ValidationError{Path: "hotkey", Err: err}
	}
	switch c.HotkeyBackend {
	case HotkeyBackendKeybind, HotkeyBackendXHotkey:
	default:
		return &ValidationError{Path: "hotkey_backend", Err: fmt.Errorf("hotkey_backend must be one of: keybind, xhotkey")}
	}
	if c.HotkeyDebounceMs < 0 {
		return &ValidationError{Path: "hotkey_debounce_ms", Err: fmt.Errorf("hotkey_debounce_ms must be >= 0")}
	}
	for _, id := range c.Monitors.IDs {
		if strings.TrimSpace(id) == "" {
			return &ValidationError{Path: "monitors", Err: fmt.Errorf("monitors contains an empty output name")}
		}
	}
	if c.Opacity < 0.05 || c.Opacity > 1.0 {
		return &ValidationError{Path: "opacity", Err: fmt.Errorf("opacity must be between 0.05 and 1.0")}
	}
	if !tintPattern.MatchString(c.Tint) {
		return &ValidationError{Path: "tint", Err: fmt.Errorf("tint must be a #rrggbb color")}
	}
	switch c.DisplaySource {
	case DisplaySourceRandR, DisplaySourceScreenshot:
	default:
		return &ValidationError{Path: "display_source", Err: fmt.Errorf("display_source must be one of: randr, screenshot")}
	}
	if c.LogLevel != "debug" && c.LogLevel != "info" && c.LogLevel != "warning" && c.LogLevel != "error" {
		return &ValidationError{Path: "log_level", Err: fmt.Errorf("log_level must be one of: debug, info, warning, error")}
	}
	if c.Terminal != "" && !strings.Contains(c.Terminal, "{{cmd}}") {
		return &ValidationError{Path: "terminal", Err: fmt.Errorf("terminal must contain {{cmd}}")}
	}
	switch c.PaletteBackend {
	case "", "auto", "rofi", "fuzzel", "wofi", "dmenu":
	default:
		return &ValidationError{Path: "palette_backend", Err: fmt.Errorf("palette_backend must be one of: auto, rofi, fuzzel, wofi, dmenu")}
	}
	return nil
}

// SourceKind tells where a configuration value came from.
type SourceKind string

const (
	SourceDefault SourceKind = "default"
	SourceFile    SourceKind = "file"
)

// Source locates a value inside a config file.
type Source struct {
	Kind   SourceKind
	File   string
	Line   int
	Column int
}

// ValidationError reports an invalid configuration value by YAML path.
type ValidationError struct {
	Path   string
	Source Source
	Err    error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Source.Kind == SourceFile && e.Source.File != "" && e.Source.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s: %v", e.Source.File, e.Source.Line, e.Source.Column, e.Path, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}
