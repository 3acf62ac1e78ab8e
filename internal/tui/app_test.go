package tui

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1broseidon/veil/internal/capture"
	"github.com/1broseidon/veil/internal/config"
	"github.com/1broseidon/veil/internal/hotkeys"
	"github.com/1broseidon/veil/internal/ipc"
	"github.com/1broseidon/veil/internal/overlay"
	"github.com/1broseidon/veil/internal/platform"
)

type memStore struct {
	cfg     *config.Config
	hotkey  hotkeys.Binding
	sel     overlay.Selection
	updates []map[string]any
}

func newMemStore() *memStore {
	return &memStore{cfg: config.DefaultConfig(), hotkey: hotkeys.Default(), sel: overlay.All()}
}

func (s *memStore) Config() *config.Config { return s.cfg }
func (s *memStore) Reload() (*config.Config, error) { return s.cfg, nil }
func (s *memStore) HotkeyBinding() hotkeys.Binding { return s.hotkey }
func (s *memStore) MonitorSelection() overlay.Selection { return s.sel }

func (s *memStore) SetHotkeyBinding(b hotkeys.Binding) error {
	s.hotkey = b
	return nil
}

func (s *memStore) ResetHotkeyBinding() error {
	s.hotkey = hotkeys.Default()
	return nil
}

func (s *memStore) SetMonitorSelection(sel overlay.Selection) error {
	s.sel = sel
	return nil
}

func (s *memStore) Update(values map[string]any) error {
	s.updates = append(s.updates, values)
	return nil
}

type fakeDaemon struct {
	down      bool
	status    ipc.StatusData
	monitors  ipc.MonitorsData
	hotkeys   []string
	selects   []ipc.SetMonitorsPayload
	began     int
	ended     int
	reloads   int
	setErr    error
	resetHits int
}

func (d *fakeDaemon) GetStatus() (*ipc.StatusData, error) {
	if d.down {
		return nil, errors.New("failed to connect to daemon")
	}
	st := d.status
	return &st, nil
}

func (d *fakeDaemon) GetMonitors() (*ipc.MonitorsData, error) {
	m := d.monitors
	return &m, nil
}

func (d *fakeDaemon) SetMonitors(all bool, ids []string) error {
	d.selects = append(d.selects, ipc.SetMonitorsPayload{All: all, IDs: ids})
	return nil
}

func (d *fakeDaemon) SetHotkey(hotkey string) error {
	if d.setErr != nil {
		return d.setErr
	}
	d.hotkeys = append(d.hotkeys, hotkey)
	return nil
}

func (d *fakeDaemon) ResetHotkey() error {
	d.resetHits++
	return nil
}

func (d *fakeDaemon) BeginRecording() error {
	d.began++
	return nil
}

func (d *fakeDaemon) EndRecording() error {
	d.ended++
	return nil
}

func (d *fakeDaemon) Reload() error {
	d.reloads++
	return nil
}


type fixedRecorder struct {
	b   hotkeys.Binding
	err error
}

func (r fixedRecorder) Record(context.Context) (hotkeys.Binding, error) {
	return r.b, r.err
}

func twoDisplays() platform.Enumerator {
	return platform.EnumeratorFunc(func() ([]platform.Display, error) {
		return []platform.Display{
			{ID: "DP-1", Name: "DP-1", Bounds: platform.Rect{Width: 1920, Height: 1080}},
			{ID: "HDMI-1", Name: "HDMI-1", Bounds: platform.Rect{X: 1920, Width: 2560, Height: 1440}},
		}, nil
	})
}

func sized(t *testing.T, m model) model {
	t.Helper()
	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return next.(model)
}

// drive runs cmd and feeds its message back into the model.
func drive(t *testing.T, m model, cmd tea.Cmd) (model, tea.Cmd) {
	t.Helper()
	require.NotNil(t, cmd)
	next, follow := m.Update(cmd())
	return next.(model), follow
}

func press(t *testing.T, m model, k tea.KeyMsg) (model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(k)
	return next.(model), cmd
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestLoad_OfflineUsesStoreAndDisplays(t *testing.T) {
	store := newMemStore()
	store.sel = overlay.Only("HDMI-1", "DP-9")
	m := sized(t, newModel(Options{Store: store, Daemon: &fakeDaemon{down: true}, Displays: twoDisplays()}))

	m, _ = drive(t, m, m.Init())

	assert.False(t, m.connected)
	require.Len(t, m.monitorsTab.rows, 3)
	assert.False(t, m.monitorsTab.rows[0].Selected)
	assert.True(t, m.monitorsTab.rows[1].Selected)
	assert.Equal(t, "DP-9", m.monitorsTab.rows[2].ID)
	assert.False(t, m.monitorsTab.rows[2].Attached)
	assert.Contains(t, m.View(), "daemon not running")
}

func TestLoad_ConnectedUsesDaemon(t *testing.T) {
	d := &fakeDaemon{
		status: ipc.StatusData{Hotkey: "ctrl-alt-F9", HotkeyLive: true, DaemonRunning: true},
		monitors: ipc.MonitorsData{
			Monitors: []ipc.MonitorInfo{{ID: "eDP-1", Name: "eDP-1", Width: 1280, Height: 800, Selected: true}},
			All:      true,
		},
	}
	m := sized(t, newModel(Options{Store: newMemStore(), Daemon: d}))

	m, _ = drive(t, m, m.Init())

	assert.True(t, m.connected)
	assert.True(t, m.generalTab.hotkeyLive)
	assert.True(t, m.generalTab.hotkey.Equal(hotkeys.Binding{Key: "F9", Mods: hotkeys.ModControl | hotkeys.ModOption}))
	assert.True(t, m.monitorsTab.Selection().IsAll())
	assert.Contains(t, m.View(), "daemon connected")
}

func TestRecord_ConnectedBracketsCaptureAndSetsHotkey(t *testing.T) {
	d := &fakeDaemon{}
	b := hotkeys.Binding{Key: "k", Mods: hotkeys.ModCommand | hotkeys.ModShift}
	m := newModel(Options{Store: newMemStore(), Daemon: d, Recorder: fixedRecorder{b: b}})
	m.connected = true

	m, cmd := press(t, m, runes("r"))
	assert.True(t, m.generalTab.recording)

	m, follow := drive(t, m, cmd)
	assert.False(t, m.generalTab.recording)
	assert.Equal(t, 1, d.began)
	assert.Equal(t, 1, d.ended)
	assert.Equal(t, []string{"Mod4-shift-k"}, d.hotkeys)
	assert.False(t, m.flashErr)
	assert.Contains(t, m.flash, b.Display())
	assert.NotNil(t, follow, "a successful change reloads state")
}

func TestRecord_OfflineRejectsReservedBinding(t *testing.T) {
	store := newMemStore()
	reserved := hotkeys.Binding{Key: "q", Mods: hotkeys.ModCommand}
	m := newModel(Options{Store: store, Recorder: fixedRecorder{b: reserved}})

	msg := m.settings.record(false)()
	hm, ok := msg.(hotkeyMsg)
	require.True(t, ok)
	assert.ErrorIs(t, hm.err, hotkeys.ErrReserved)
	assert.True(t, store.hotkey.Equal(hotkeys.Default()))
}

func TestRecord_CanceledIsNotAnError(t *testing.T) {
	d := &fakeDaemon{}
	m := newModel(Options{Store: newMemStore(), Daemon: d, Recorder: fixedRecorder{err: capture.ErrCanceled}})
	m.connected = true

	m, cmd := press(t, m, runes("r"))
	m, follow := drive(t, m, cmd)

	assert.Nil(t, follow)
	assert.False(t, m.flashErr)
	assert.Equal(t, "Recording canceled", m.flash)
	assert.Empty(t, d.hotkeys)
	assert.Equal(t, 1, d.ended)
}

func TestRecord_DaemonRefusalIsShown(t *testing.T) {
	d := &fakeDaemon{setErr: errors.New("daemon error: Failed to set hotkey: combination already grabbed")}
	m := newModel(Options{Store: newMemStore(), Daemon: d, Recorder: fixedRecorder{b: hotkeys.Default()}})
	m.connected = true

	m, cmd := press(t, m, runes("r"))
	m, _ = drive(t, m, cmd)

	assert.True(t, m.flashErr)
	assert.Contains(t, m.flash, "already grabbed")
}

func TestResetHotkey_Offline(t *testing.T) {
	store := newMemStore()
	store.hotkey = hotkeys.Binding{Key: "F9", Mods: hotkeys.ModControl}
	m := newModel(Options{Store: store})

	_, cmd := press(t, m, runes("d"))
	require.NotNil(t, cmd)
	hm := cmd().(hotkeyMsg)
	require.NoError(t, hm.err)
	assert.True(t, store.hotkey.Equal(hotkeys.Default()))
}

func TestMonitorsTab_ToggleLeavesAllMode(t *testing.T) {
	tab := NewMonitorsTab()
	rows := rowsFromDisplays([]platform.Display{{ID: "DP-1"}, {ID: "HDMI-1"}}, overlay.All())
	tab.SetRows(rows, overlay.All())

	tab.ToggleSelected()
	assert.True(t, tab.Selection().Equal(overlay.Only("HDMI-1")))
	assert.True(t, tab.dirty)

	tab.ToggleSelected()
	assert.True(t, tab.Selection().Equal(overlay.Only("DP-1", "HDMI-1")))
	assert.False(t, tab.Selection().IsAll(), "an explicit list does not follow new displays")

	tab.SelectAll()
	assert.True(t, tab.Selection().IsAll())
}

func TestMonitorsTab_ApplySendsSelection(t *testing.T) {
	d := &fakeDaemon{
		monitors: ipc.MonitorsData{
			Monitors: []ipc.MonitorInfo{{ID: "DP-1"}, {ID: "HDMI-1"}},
			All:      true,
		},
	}
	m := sized(t, newModel(Options{Store: newMemStore(), Daemon: d}))
	m, _ = drive(t, m, m.Init())
	require.True(t, m.connected)

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	require.Equal(t, TabMonitors, m.activeTab)

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeySpace})
	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m, _ = drive(t, m, cmd)

	require.Len(t, d.selects, 1)
	assert.False(t, d.selects[0].All)
	assert.Equal(t, []string{"HDMI-1"}, d.selects[0].IDs)
	assert.False(t, m.flashErr)
}

func TestMonitorsTab_ApplyOfflineWritesStore(t *testing.T) {
	store := newMemStore()
	m := sized(t, newModel(Options{Store: store, Displays: twoDisplays()}))
	m, _ = drive(t, m, m.Init())
	m.activeTab = TabMonitors

	m, _ = press(t, m, runes("x"))
	_, cmd := press(t, m, runes("s"))
	msg := cmd().(savedMsg)

	require.NoError(t, msg.err)
	assert.True(t, store.sel.Equal(overlay.Only("HDMI-1")))
}

func TestAppearanceSubmit_SavesAndReloadsDaemon(t *testing.T) {
	store := newMemStore()
	d := &fakeDaemon{}
	m := newModel(Options{Store: store, Daemon: d})
	m.connected = true

	values := map[string]any{"opacity": 0.5, "tint": "#112233"}
	m, cmd := drive(t, m, func() tea.Msg { return appearanceSubmittedMsg{values: values} })
	_, _ = drive(t, m, cmd)

	require.Len(t, store.updates, 1)
	assert.Equal(t, values, store.updates[0])
	assert.Equal(t, 1, d.reloads)
}

func TestGeneralTab_FormValues(t *testing.T) {
	g := NewGeneralTab(config.DefaultConfig())
	g.fOpacity = " 0.45 "
	g.fTint = "#AABBCC"
	g.fHintText = "back soon"
	g.fShowHint = false
	g.fNotifications = true

	v := g.formValues()
	assert.InDelta(t, 0.45, v["opacity"], 1e-9)
	assert.Equal(t, "#aabbcc", v["tint"])
	assert.Equal(t, "back soon", v["hint_text"])
	assert.Equal(t, false, v["show_hint"])
}

func TestAppearanceValidators(t *testing.T) {
	assert.NoError(t, validateOpacity("0.3"))
	assert.NoError(t, validateOpacity("1"))
	assert.Error(t, validateOpacity("0"))
	assert.Error(t, validateOpacity("1.5"))
	assert.Error(t, validateOpacity("dim"))

	assert.NoError(t, validateTint("#000000"))
	assert.Error(t, validateTint("black"))
	assert.Error(t, validateTint("#12345"))
}

func TestTabNavigationWraps(t *testing.T) {
	m := newModel(Options{Store: newMemStore()})

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyShiftTab})
	assert.Equal(t, TabMonitors, m.activeTab)
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, TabGeneral, m.activeTab)
}
