package tui

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/veil/internal/config"
	"github.com/1broseidon/veil/internal/ipc"
)

// model is the root bubbletea model for the TUI.
type model struct {
	settings settings
	keys     keyMap
	help     help.Model

	// Tab navigation
	activeTab Tab

	// Sub-models
	generalTab  GeneralTab
	monitorsTab MonitorsTab

	// Daemon state
	connected bool
	status    *ipc.StatusData

	// Last result shown under the tabs
	flash    string
	flashErr bool

	// Terminal dimensions
	width  int
	height int
}

func newModel(opts Options) model {
	var cfg *config.Config
	if opts.Store != nil {
		cfg = opts.Store.Config()
	}
	m := model{
		settings: settings{
			store:    opts.Store,
			daemon:   opts.Daemon,
			recorder: opts.Recorder,
			displays: opts.Displays,
		},
		keys:        defaultKeyMap(),
		help:        help.New(),
		activeTab:   TabGeneral,
		generalTab:  NewGeneralTab(cfg),
		monitorsTab: NewMonitorsTab(),
	}
	return m
}

// Init implements tea.Model.
func (m model) Init() tea.Cmd {
	return m.settings.load
}

// Update implements tea.Model.
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m.propagateSize()

	case loadedMsg:
		m.applyLoaded(msg)
		return m, nil

	case hotkeyMsg:
		m.generalTab.recording = false
		switch {
		case isCanceled(msg.err):
			m.setFlash("Recording canceled", false)
			return m, nil
		case msg.err != nil:
			m.setFlash(msg.err.Error(), true)
		default:
			m.setFlash("Shortcut set to "+msg.binding.Display(), false)
		}
		return m, m.settings.load

	case savedMsg:
		if msg.err != nil {
			m.setFlash(msg.err.Error(), true)
		} else {
			m.setFlash("Saved "+msg.what, false)
		}
		return m, m.settings.load

	case appearanceSubmittedMsg:
		return m, m.settings.saveAppearance(m.connected, msg.values)

	case tea.KeyMsg:
		// An open form owns the keyboard.
		if m.activeTab == TabGeneral && m.generalTab.editing {
			var cmd tea.Cmd
			m.generalTab, cmd = m.generalTab.Update(msg)
			return m, cmd
		}
		return m.handleKey(msg)
	}

	return m.updateActiveTab(msg)
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.NextTab):
		m.activeTab = (m.activeTab + 1) % tabCount
		return m, nil
	case key.Matches(msg, m.keys.PrevTab):
		m.activeTab = (m.activeTab + tabCount - 1) % tabCount
		return m, nil
	case key.Matches(msg, m.keys.Refresh):
		return m, m.settings.load
	}

	switch m.activeTab {
	case TabGeneral:
		if m.generalTab.recording {
			return m, nil
		}
		switch {
		case key.Matches(msg, m.keys.Record):
			m.generalTab.recording = true
			m.flash = ""
			return m, m.settings.record(m.connected)
		case key.Matches(msg, m.keys.Reset):
			return m, m.settings.resetHotkey(m.connected)
		case key.Matches(msg, m.keys.Edit):
			cmd := m.generalTab.startEditing()
			return m, cmd
		}
	case TabMonitors:
		switch {
		case key.Matches(msg, m.keys.Toggle):
			m.monitorsTab.ToggleSelected()
			return m, nil
		case key.Matches(msg, m.keys.All):
			m.monitorsTab.SelectAll()
			return m, nil
		case key.Matches(msg, m.keys.Apply):
			return m, m.settings.applyMonitors(m.connected, m.monitorsTab.Selection())
		}
	}

	return m.updateActiveTab(msg)
}

func (m model) updateActiveTab(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.activeTab {
	case TabGeneral:
		m.generalTab, cmd = m.generalTab.Update(msg)
	case TabMonitors:
		m.monitorsTab, cmd = m.monitorsTab.Update(msg)
	}
	return m, cmd
}

func (m *model) applyLoaded(msg loadedMsg) {
	m.connected = msg.connected
	m.status = msg.status
	if msg.cfg != nil {
		m.generalTab.cfg = msg.cfg
	}
	if !msg.hotkey.IsZero() {
		m.generalTab.hotkey = msg.hotkey
	}
	m.generalTab.connected = msg.connected
	m.generalTab.hotkeyLive = msg.status != nil && msg.status.HotkeyLive
	m.monitorsTab.SetRows(msg.monitors, msg.selection)
	if msg.err != nil {
		m.setFlash(msg.err.Error(), true)
	}
}

func (m *model) setFlash(text string, isErr bool) {
	m.flash = text
	m.flashErr = isErr
}

func (m model) contentHeight() int {
	// status bar (1) + tab bar (2 with margin) + flash (1) + help (1)
	h := m.height - 5
	if h < 3 {
		h = 3
	}
	return h
}

func (m model) propagateSize() (tea.Model, tea.Cmd) {
	size := tea.WindowSizeMsg{Width: m.width, Height: m.contentHeight()}
	var cmd1, cmd2 tea.Cmd
	m.generalTab, cmd1 = m.generalTab.Update(size)
	m.monitorsTab, cmd2 = m.monitorsTab.Update(size)
	return m, tea.Batch(cmd1, cmd2)
}

// View implements tea.Model.
func (m model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	active, degraded := false, false
	if m.status != nil {
		active = m.status.Active
		degraded = m.status.Degraded
	}
	statusBar := renderStatusBar(m.connected, active, degraded, m.width)
	tabBar := renderTabBar(m.activeTab, m.width)

	var content string
	switch m.activeTab {
	case TabGeneral:
		content = m.generalTab.View()
	case TabMonitors:
		content = m.monitorsTab.View()
	}
	content = lipgloss.NewStyle().Height(m.contentHeight()).MaxHeight(m.contentHeight()).Render(content)

	flash := ""
	if m.flash != "" {
		if m.flashErr {
			flash = errorStyle.Render("  " + m.flash)
		} else {
			flash = okStyle.Render("  " + m.flash)
		}
	}

	helpBar := " " + m.help.View(tabHelp{keys: m.keys, tab: m.activeTab})

	return lipgloss.JoinVertical(lipgloss.Left,
		statusBar,
		tabBar,
		content,
		flash,
		helpBar,
	)
}
