package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/1broseidon/veil/internal/hotkeys"
)

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected defaults to validate, got %v", err)
	}
	b, err := cfg.HotkeyBinding()
	if err != nil {
		t.Fatalf("parse default hotkey: %v", err)
	}
	if !b.Equal(hotkeys.Default()) {
		t.Fatalf("default hotkey = %v, want %v", b, hotkeys.Default())
	}
	if cfg.Monitors.Explicit {
		t.Fatalf("expected default monitor selection to be all")
	}
}

func TestLoadFromPath_MissingFileUsesDefaults(t *testing.T) {
	res, err := LoadFromPath(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Exists {
		t.Fatalf("expected Exists=false")
	}
	if res.Config.Opacity != 0.3 {
		t.Fatalf("opacity = %v, want 0.3", res.Config.Opacity)
	}
}

func TestLoadFromPath_EmptyFileUsesDefaults(t *testing.T) {
	path := writeConfig(t, "# empty\n")

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.HintText != DefaultHintText {
		t.Fatalf("hint_text = %q, want default", res.Config.HintText)
	}
	if !res.Config.ShowHint {
		t.Fatalf("expected show_hint to default to true")
	}
}

func TestLoadFromPath_Monitors(t *testing.T) {
	tests := []struct {
		name     string
		yaml     string
		explicit bool
		ids      []string
	}{
		{name: "all", yaml: "monitors: all\n", explicit: false},
		{name: "all upper", yaml: "monitors: ALL\n", explicit: false},
		{name: "list", yaml: "monitors:\n  - DP-1\n  - HDMI-1\n", explicit: true, ids: []string{"DP-1", "HDMI-1"}},
		{name: "empty list", yaml: "monitors: []\n", explicit: true, ids: []string{}},
		{name: "null", yaml: "monitors:\n", explicit: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := LoadFromPath(writeConfig(t, tt.yaml))
			if err != nil {
				t.Fatalf("load: %v", err)
			}
			got := res.Config.Monitors
			if got.Explicit != tt.explicit {
				t.Fatalf("explicit = %v, want %v", got.Explicit, tt.explicit)
			}
			if strings.Join(got.IDs, ",") != strings.Join(tt.ids, ",") {
				t.Fatalf("ids = %v, want %v", got.IDs, tt.ids)
			}
		})
	}
}

func TestLoadFromPath_RejectsMonitorScalar(t *testing.T) {
	_, err := LoadFromPath(writeConfig(t, "monitors: DP-1\n"))
	if err == nil {
		t.Fatalf("expected error for scalar monitor name")
	}
}

func TestLoadFromPath_UnknownKeyRejected(t *testing.T) {
	_, err := LoadFromPath(writeConfig(t, "blur_radius: 20\n"))
	if err == nil {
		t.Fatalf("expected strict decode to reject unknown key")
	}
}

func TestLoadFromPath_ValidationErrorHasSource(t *testing.T) {
	path := writeConfig(t, "hint_text: hi\nopacity: 2.5\n")

	_, err := LoadFromPath(path)
	if err == nil {
		t.Fatalf("expected validation error")
	}
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %T: %v", err, err)
	}
	if verr.Path != "opacity" {
		t.Fatalf("path = %q, want opacity", verr.Path)
	}
	if verr.Source.Line != 2 {
		t.Fatalf("source line = %d, want 2", verr.Source.Line)
	}
	if !strings.Contains(err.Error(), path+":2:") {
		t.Fatalf("expected file position in error, got %q", err.Error())
	}
}

func TestValidate_Hotkey(t *testing.T) {
	tests := []struct {
		hotkey string
		want   error
	}{
		{hotkey: "Mod4-shift-b"},
		{hotkey: "ctrl+alt+F5"},
		{hotkey: "b", want: hotkeys.ErrNoModifier},
		{hotkey: "Mod4-q", want: hotkeys.ErrReserved},
		{hotkey: "alt-Tab", want: hotkeys.ErrReserved},
	}
	for _, tt := range tests {
		cfg := DefaultConfig()
		cfg.Hotkey = tt.hotkey
		err := cfg.Validate()
		if tt.want == nil {
			if err != nil {
				t.Fatalf("Validate(%q) = %v, want nil", tt.hotkey, err)
			}
			continue
		}
		if !errors.Is(err, tt.want) {
			t.Fatalf("Validate(%q) = %v, want %v", tt.hotkey, err, tt.want)
		}
	}
}

func TestValidate_Fields(t *testing.T) {
	tests := []struct {
		path   string
		mutate func(*Config)
	}{
		{"hotkey_backend", func(c *Config) { c.HotkeyBackend = "evdev" }},
		{"hotkey_debounce_ms", func(c *Config) { c.HotkeyDebounceMs = -1 }},
		{"monitors", func(c *Config) { c.Monitors = OnlyMonitors("DP-1", " ") }},
		{"opacity", func(c *Config) { c.Opacity = 0 }},
		{"tint", func(c *Config) { c.Tint = "black" }},
		{"display_source", func(c *Config) { c.DisplaySource = "xinerama" }},
		{"log_level", func(c *Config) { c.LogLevel = "trace" }},
		{"terminal", func(c *Config) { c.Terminal = "kitty" }},
		{"palette_backend", func(c *Config) { c.PaletteBackend = "ulauncher" }},
	}
	for _, tt := range tests {
		cfg := DefaultConfig()
		tt.mutate(cfg)
		err := cfg.Validate()
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("%s: expected *ValidationError, got %v", tt.path, err)
		}
		if verr.Path != tt.path {
			t.Fatalf("path = %q, want %q", verr.Path, tt.path)
		}
	}
}

func TestTintRGB(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Tint = "#1A2b3C"
	r, g, b := cfg.TintRGB()
	if r != 0x1a || g != 0x2b || b != 0x3c {
		t.Fatalf("TintRGB() = %x %x %x", r, g, b)
	}
}

func TestSave_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := DefaultConfig()
	cfg.Monitors = OnlyMonitors("DP-2")
	cfg.Opacity = 0.5

	if err := Save(path, cfg); err != nil {
		t.Fatalf("save: %v", err)
	}
	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.Opacity != 0.5 || res.Config.Monitors.String() != "DP-2" {
		t.Fatalf("round trip mismatch: %+v", res.Config)
	}
}

func TestUpdateKeys_PreservesOtherKeysAndComments(t *testing.T) {
	path := writeConfig(t, "# my settings\nopacity: 0.6 # darker\nhotkey: Mod4-shift-b\n")

	err := UpdateKeys(path, map[string]any{
		"hotkey":   "ctrl-alt-F5",
		"monitors": OnlyMonitors(),
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	text := string(data)
	for _, want := range []string{"# my settings", "# darker", "ctrl-alt-F5", "monitors: []"} {
		if !strings.Contains(text, want) {
			t.Fatalf("expected %q in updated file:\n%s", want, text)
		}
	}

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.Opacity != 0.6 {
		t.Fatalf("opacity = %v, want 0.6", res.Config.Opacity)
	}
	if !res.Config.Monitors.Explicit || len(res.Config.Monitors.IDs) != 0 {
		t.Fatalf("expected explicit empty selection, got %+v", res.Config.Monitors)
	}
}

func TestUpdateKeys_CreatesMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := UpdateKeys(path, map[string]any{"hotkey": "Mod4-Mod1-v"}); err != nil {
		t.Fatalf("update: %v", err)
	}
	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.Hotkey != "Mod4-Mod1-v" {
		t.Fatalf("hotkey = %q", res.Config.Hotkey)
	}
}

func TestUpdateKeys_RejectsInvalidResult(t *testing.T) {
	path := writeConfig(t, "hotkey: Mod4-shift-b\n")
	err := UpdateKeys(path, map[string]any{"hotkey": "Mod4-w"})
	if !errors.Is(err, hotkeys.ErrReserved) {
		t.Fatalf("expected ErrReserved, got %v", err)
	}
	data, _ := os.ReadFile(path)
	if !strings.Contains(string(data), "Mod4-shift-b") {
		t.Fatalf("expected file to be untouched, got %q", data)
	}
}

func TestWatch_FiresOnWrite(t *testing.T) {
	path := writeConfig(t, "opacity: 0.3\n")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changed := make(chan struct{}, 4)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, 20*time.Millisecond, func() { changed <- struct{}{} }, nil)
	}()

	// Give the watcher time to register the directory.
	time.Sleep(100 * time.Millisecond)
	if err := os.WriteFile(path, []byte("opacity: 0.4\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	select {
	case <-changed:
	case <-time.After(3 * time.Second):
		t.Fatalf("expected change notification")
	}

	cancel()
	if err := <-done; err != nil {
		t.Fatalf("watch returned %v", err)
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}
