package prefs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/1broseidon/veil/internal/config"
	"github.com/1broseidon/veil/internal/hotkeys"
	"github.com/1broseidon/veil/internal/overlay"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTemp(t *testing.T, content string) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if content != "" {
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	s, err := Open(path, nil)
	require.NoError(t, err)
	return s
}

func TestStore_Defaults(t *testing.T) {
	s := openTemp(t, "")
	assert.True(t, s.HotkeyBinding().Equal(hotkeys.Default()))
	assert.True(t, s.MonitorSelection().IsAll())
}

func TestStore_HotkeyRoundTripAcrossReopen(t *testing.T) {
	s := openTemp(t, "")
	b := hotkeys.Binding{Key: "F9", Mods: hotkeys.ModControl | hotkeys.ModOption}
	require.NoError(t, s.SetHotkeyBinding(b))
	assert.True(t, s.HotkeyBinding().Equal(b))

	reopened, err := Open(s.Path(), nil)
	require.NoError(t, err)
	assert.True(t, reopened.HotkeyBinding().Equal(b))

	require.NoError(t, reopened.ResetHotkeyBinding())
	assert.True(t, reopened.HotkeyBinding().Equal(hotkeys.Default()))
}

func TestStore_MonitorSelectionRoundTrip(t *testing.T) {
	s := openTemp(t, "opacity: 0.5\n")

	require.NoError(t, s.SetMonitorSelection(overlay.Only("HDMI-1", "DP-1")))
	assert.Equal(t, []string{"DP-1", "HDMI-1"}, s.MonitorSelection().IDs())

	require.NoError(t, s.SetMonitorSelection(overlay.Only()))
	sel := s.MonitorSelection()
	assert.False(t, sel.IsAll())
	assert.Empty(t, sel.IDs())

	require.NoError(t, s.SetMonitorSelection(overlay.All()))
	assert.True(t, s.MonitorSelection().IsAll())

	// Unrelated keys survive preference writes.
	assert.Equal(t, 0.5, s.Config().Opacity)
}

func TestStore_ReservedHotkeyNotSaved(t *testing.T) {
	s := openTemp(t, "")
	err := s.SetHotkeyBinding(hotkeys.Binding{Key: "q", Mods: hotkeys.ModCommand})
	assert.ErrorIs(t, err, hotkeys.ErrReserved)
	assert.True(t, s.HotkeyBinding().Equal(hotkeys.Default()))
}

func TestSelectionConversion(t *testing.T) {
	assert.True(t, SelectionFromConfig(config.AllMonitors()).IsAll())
	assert.Equal(t, []string{"a"}, SelectionFromConfig(config.OnlyMonitors("a")).IDs())

	l := SelectionToConfig(overlay.Only())
	assert.True(t, l.Explicit)
	assert.Empty(t, l.IDs)
	assert.False(t, SelectionToConfig(overlay.All()).Explicit)
}

func TestStore_UpdateKeepsOtherKeys(t *testing.T) {
	s := openTemp(t, "hotkey: ctrl-alt-F9\nopacity: 0.3\n")
	require.NoError(t, s.Update(map[string]any{"opacity": 0.6, "tint": "#102030"}))

	cfg := s.Config()
	assert.InDelta(t, 0.6, cfg.Opacity, 1e-9)
	assert.Equal(t, "#102030", cfg.Tint)
	assert.True(t, s.HotkeyBinding().Equal(hotkeys.Binding{Key: "F9", Mods: hotkeys.ModControl | hotkeys.ModOption}))

	data, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	assert.Contains(t, string(data), "hotkey: ctrl-alt-F9")
}
