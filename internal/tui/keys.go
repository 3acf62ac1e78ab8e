package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	NextTab key.Binding
	PrevTab key.Binding
	Record  key.Binding
	Reset   key.Binding
	Edit    key.Binding
	Toggle  key.Binding
	All     key.Binding
	Apply   key.Binding
	Refresh key.Binding
	Quit    key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		NextTab: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next tab")),
		PrevTab: key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift-tab", "prev tab")),
		Record:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "record shortcut")),
		Reset:   key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "default shortcut")),
		Edit:    key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit look")),
		Toggle:  key.NewBinding(key.WithKeys(" ", "x"), key.WithHelp("space", "toggle monitor")),
		All:     key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "all monitors")),
		Apply:   key.NewBinding(key.WithKeys("enter", "s"), key.WithHelp("enter", "apply")),
		Refresh: key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl-r", "refresh")),
		Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// tabHelp implements help.KeyMap for the active tab.
type tabHelp struct {
	keys keyMap
	tab  Tab
}

func (h tabHelp) ShortHelp() []key.Binding {
	switch h.tab {
	case TabMonitors:
		return []key.Binding{h.keys.Toggle, h.keys.All, h.keys.Apply, h.keys.NextTab, h.keys.Quit}
	default:
		return []key.Binding{h.keys.Record, h.keys.Reset, h.keys.Edit, h.keys.NextTab, h.keys.Quit}
	}
}

func (h tabHelp) FullHelp() [][]key.Binding {
	return [][]key.Binding{h.ShortHelp(), {h.keys.PrevTab, h.keys.Refresh}}
}
