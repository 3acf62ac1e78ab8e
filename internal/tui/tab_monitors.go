package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/veil/internal/overlay"
)

// monitorItem is a list item representing one display.
type monitorItem struct {
	row monitorRow
	all bool
}

func (i monitorItem) Title() string {
	box := "[ ]"
	if i.all || i.row.Selected {
		box = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Render("[x]")
	}
	name := i.row.ID
	if i.row.Name != "" && i.row.Name != i.row.ID {
		name += " (" + i.row.Name + ")"
	}
	return box + " " + name
}

func (i monitorItem) Description() string {
	if !i.row.Attached {
		return "not connected"
	}
	b := i.row.Bounds
	return fmt.Sprintf("%d×%d at %d,%d", b.Width, b.Height, b.X, b.Y)
}

func (i monitorItem) FilterValue() string { return i.row.ID }

// MonitorsTab chooses which displays the overlay covers.
type MonitorsTab struct {
	list   list.Model
	rows   []monitorRow
	all    bool
	dirty  bool
	width  int
	height int
}

// NewMonitorsTab creates an empty monitors tab.
func NewMonitorsTab() MonitorsTab {
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.
		Foreground(lipgloss.Color("15")).
		BorderForeground(lipgloss.Color("62"))
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.
		Foreground(lipgloss.Color("250")).
		BorderForeground(lipgloss.Color("62"))

	l := list.New(nil, delegate, 0, 0)
	l.Title = "Monitors"
	l.Styles.Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("15")).
		Background(lipgloss.Color("62")).
		Padding(0, 1)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	l.KeyMap.Quit.SetEnabled(false)

	return MonitorsTab{list: l, all: true}
}

// SetRows replaces the rows with a fresh enumeration.
func (t *MonitorsTab) SetRows(rows []monitorRow, sel overlay.Selection) {
	t.rows = rows
	t.all = sel.IsAll()
	t.dirty = false
	t.syncItems()
}

func (t *MonitorsTab) syncItems() {
	items := make([]list.Item, 0, len(t.rows))
	for _, r := range t.rows {
		items = append(items, monitorItem{row: r, all: t.all})
	}
	t.list.SetItems(items)
}

// ToggleSelected flips the highlighted display. Leaving "all" mode keeps
// every other attached display selected.
func (t *MonitorsTab) ToggleSelected() {
	idx := t.list.Index()
	if idx < 0 || idx >= len(t.rows) {
		return
	}
	if t.all {
		for i := range t.rows {
			t.rows[i].Selected = t.rows[i].Attached
		}
		t.all = false
	}
	t.rows[idx].Selected = !t.rows[idx].Selected
	t.dirty = true
	t.syncItems()
}

// SelectAll switches to covering every display, including future ones.
func (t *MonitorsTab) SelectAll() {
	t.all = true
	for i := range t.rows {
		t.rows[i].Selected = t.rows[i].Attached
	}
	t.dirty = true
	t.syncItems()
}

// Selection returns the selection the tab currently shows.
func (t MonitorsTab) Selection() overlay.Selection {
	if t.all {
		return overlay.All()
	}
	var ids []string
	for _, r := range t.rows {
		if r.Selected {
			ids = append(ids, r.ID)
		}
	}
	return overlay.Only(ids...)
}

// Update handles messages for the monitors tab.
func (t MonitorsTab) Update(msg tea.Msg) (MonitorsTab, tea.Cmd) {
	if msg, ok := msg.(tea.WindowSizeMsg); ok {
		t.width = msg.Width
		t.height = msg.Height
		t.list.SetSize(msg.Width, msg.Height-2)
		return t, nil
	}
	var cmd tea.Cmd
	t.list, cmd = t.list.Update(msg)
	return t, cmd
}

// View implements tea.Model.
func (t MonitorsTab) View() string {
	footer := dimStyle.Render("  covering: " + t.Selection().String())
	if t.dirty {
		footer += okStyle.Render("  (press enter to apply)")
	}
	if len(t.rows) == 0 {
		return lipgloss.NewStyle().Width(t.width).Padding(1, 2).
			Render(dimStyle.Render("No displays found") + "\n" + footer)
	}
	return lipgloss.JoinVertical(lipgloss.Left, t.list.View(), footer)
}
