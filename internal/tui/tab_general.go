package tui

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/veil/internal/config"
	"github.com/1broseidon/veil/internal/hotkeys"
)

// appearanceSubmittedMsg carries config keys from a completed form.
type appearanceSubmittedMsg struct {
	values map[string]any
}

// GeneralTab shows the shortcut and the overlay look.
type GeneralTab struct {
	cfg        *config.Config
	hotkey     hotkeys.Binding
	hotkeyLive bool
	connected  bool
	recording  bool

	// Display dimensions
	width  int
	height int

	// Edit mode
	editing bool
	form    *huh.Form

	// Form-bound values (strings for huh, converted on submit)
	fOpacity       string
	fTint          string
	fHintText      string
	fShowHint      bool
	fNotifications bool
}

// NewGeneralTab creates a GeneralTab from the loaded config.
func NewGeneralTab(cfg *config.Config) GeneralTab {
	g := GeneralTab{cfg: cfg, hotkey: hotkeys.Default()}
	if cfg != nil {
		if b, err := cfg.HotkeyBinding(); err == nil {
			g.hotkey = b
		}
	}
	return g
}

// Update implements tea.Model.
func (g GeneralTab) Update(msg tea.Msg) (GeneralTab, tea.Cmd) {
	if g.editing {
		return g.updateEditing(msg)
	}
	if msg, ok := msg.(tea.WindowSizeMsg); ok {
		g.width = msg.Width
		g.height = msg.Height
	}
	return g, nil
}

func (g GeneralTab) updateEditing(msg tea.Msg) (GeneralTab, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "esc" {
			g.editing = false
			g.form = nil
			return g, nil
		}
	case tea.WindowSizeMsg:
		g.width = msg.Width
		g.height = msg.Height
	}

	form, cmd := g.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		g.form = f
	}

	switch g.form.State {
	case huh.StateCompleted:
		values := g.formValues()
		g.editing = false
		g.form = nil
		return g, func() tea.Msg { return appearanceSubmittedMsg{values: values} }
	case huh.StateAborted:
		g.editing = false
		g.form = nil
		return g, nil
	}

	return g, cmd
}

var tintPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

func validateOpacity(s string) error {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return fmt.Errorf("enter a number such as 0.3")
	}
	if v < 0.05 || v > 1 {
		return fmt.Errorf("must be between 0.05 and 1.0")
	}
	return nil
}

func validateTint(s string) error {
	if !tintPattern.MatchString(strings.TrimSpace(s)) {
		return fmt.Errorf("use #rrggbb")
	}
	return nil
}

// startEditing opens the appearance form.
func (g *GeneralTab) startEditing() tea.Cmd {
	cfg := g.cfg
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	g.fOpacity = strconv.FormatFloat(cfg.Opacity, 'f', -1, 64)
	g.fTint = cfg.Tint
	g.fHintText = cfg.HintText
	g.fShowHint = cfg.ShowHint
	g.fNotifications = cfg.Notifications

	w := g.width - 4
	if w < 40 {
		w = 40
	}

	g.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("opacity").
				Title("Opacity").
				Description("How strongly the tint covers the screen (0.05-1.0)").
				Validate(validateOpacity).
				Value(&g.fOpacity),

			huh.NewInput().
				Key("tint").
				Title("Tint").
				Description("Overlay color as #rrggbb").
				Validate(validateTint).
				Value(&g.fTint),

			huh.NewInput().
				Key("hint_text").
				Title("Hint").
				Description("Text drawn in the middle of each blurred monitor").
				Value(&g.fHintText),

			huh.NewConfirm().
				Key("show_hint").
				Title("Show hint").
				Value(&g.fShowHint),

			huh.NewConfirm().
				Key("notifications").
				Title("Desktop notifications").
				Description("Tell me when a shortcut cannot be registered").
				Value(&g.fNotifications),
		),
	).WithWidth(w).WithShowHelp(true).WithShowErrors(true)

	g.editing = true
	return g.form.Init()
}

func (g GeneralTab) formValues() map[string]any {
	opacity, _ := strconv.ParseFloat(strings.TrimSpace(g.fOpacity), 64)
	return map[string]any{
		"opacity":       opacity,
		"tint":          strings.ToLower(strings.TrimSpace(g.fTint)),
		"hint_text":     g.fHintText,
		"show_hint":     g.fShowHint,
		"notifications": g.fNotifications,
	}
}

// View implements tea.Model.
func (g GeneralTab) View() string {
	if g.editing && g.form != nil {
		return g.viewEditing()
	}
	return g.viewDisplay()
}

func (g GeneralTab) viewDisplay() string {
	cfg := g.cfg
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	labelStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("250")).
		Width(22).
		Align(lipgloss.Right).
		PaddingRight(2)

	valueStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("15")).
		Bold(true)

	row := func(label, value string) string {
		return labelStyle.Render(label) + valueStyle.Render(value)
	}

	shortcut := g.hotkey.Display() + dimStyle.Render("  "+g.hotkey.String())
	switch {
	case g.recording:
		shortcut = okStyle.Render("Press the new shortcut… (Esc cancels)")
	case g.connected && !g.hotkeyLive:
		shortcut += errorStyle.Render("  not registered")
	}

	swatch := lipgloss.NewStyle().Background(lipgloss.Color(cfg.Tint)).Render("    ")

	lines := []string{
		"",
		row("Toggle shortcut", shortcut),
		"",
		row("Opacity", strconv.FormatFloat(cfg.Opacity, 'f', -1, 64)),
		row("Tint", swatch+" "+cfg.Tint),
		row("Hint", displayOrDefault(cfg.HintText, "(none)")),
		row("Show hint", strconv.FormatBool(cfg.ShowHint)),
		row("Notifications", strconv.FormatBool(cfg.Notifications)),
		row("Hotkey backend", cfg.HotkeyBackend),
		"",
		dimStyle.Render("  Press 'r' to record a new shortcut, 'd' for the default, 'e' to edit the look"),
	}

	contentStyle := lipgloss.NewStyle().
		Width(g.width).
		Height(g.height).
		Padding(1, 2)

	return contentStyle.Render(strings.Join(lines, "\n"))
}

func (g GeneralTab) viewEditing() string {
	header := lipgloss.NewStyle().
		Foreground(lipgloss.Color("62")).
		Bold(true).
		Render("Editing Overlay Look") +
		dimStyle.Render("  (esc to cancel)")

	style := lipgloss.NewStyle().
		Width(g.width).
		Height(g.height).
		Padding(1, 2)

	return style.Render(header + "\n\n" + g.form.View())
}

func displayOrDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
