package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/1broseidon/veil/internal/ipc"
	"github.com/1broseidon/veil/internal/overlay"
	"github.com/1broseidon/veil/internal/palette"
	"github.com/1broseidon/veil/internal/terminals"
)

const (
	menuActionToggle   = "toggle"
	menuActionAll      = "all"
	menuActionSettings = "settings"
	menuMonitorPrefix  = "monitor:"
)

// menuClient is the part of the ipc client the menu drives.
type menuClient interface {
	Toggle() error
	GetStatus() (*ipc.StatusData, error)
	GetMonitors() (*ipc.MonitorsData, error)
	SetMonitors(all bool, ids []string) error
}

func runMenu(args []string) int {
	fs := flag.NewFlagSet("menu", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	path := fs.String("path", "", "Config file path (default: ~/.config/veil/config.yaml)")
	backendName := fs.String("backend", "", "Launcher: auto, rofi, fuzzel, wofi, dmenu (default: palette_backend)")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: veil menu [--backend NAME] [--path PATH]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Quick controls in a launcher menu: toggle the blur, pick monitors or")
		fmt.Fprintln(os.Stderr, "open the settings screen. Bind it to a key in your window manager.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}

	store, err := openStore(*path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	cfg := store.Config()

	name := *backendName
	if name == "" {
		name = cfg.PaletteBackend
	}
	backend, err := palette.NewBackend(name)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	openSettings := func() error {
		exe, err := os.Executable()
		if err != nil {
			return fmt.Errorf("failed to find executable: %w", err)
		}
		cmd := []string{exe, "settings"}
		if *path != "" {
			cmd = append(cmd, "--path", *path)
		}
		return terminals.NewLauncher(cfg.Terminal).Launch(cmd)
	}

	if err := showMenu(backend, ipc.NewClient(), openSettings); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

// showMenu shows the menu until the user picks an action that closes it.
// Toggling a monitor reopens the menu so several can be changed in a row.
func showMenu(backend palette.Backend, client menuClient, openSettings func() error) error {
	for {
		status, err := client.GetStatus()
		if err != nil {
			return err
		}
		monitors, err := client.GetMonitors()
		if err != nil {
			return err
		}

		item, err := backend.Show("veil", buildMenuItems(status, monitors), menuMessage(status))
		if errors.Is(err, palette.ErrCancelled) {
			return nil
		}
		if err != nil {
			return err
		}

		reopen, err := applyMenuAction(client, item.Action, monitors, openSettings)
		if err != nil || !reopen {
			return err
		}
	}
}

func buildMenuItems(status *ipc.StatusData, monitors *ipc.MonitorsData) []palette.Item {
	toggle := palette.Item{Label: "Blur screen", Action: menuActionToggle, Icon: "view-conceal"}
	if status.Active {
		toggle = palette.Item{Label: "Unblur screen", Action: menuActionToggle, Icon: "view-reveal", IsActive: true}
	}

	items := []palette.Item{
		toggle,
		{Label: "Monitors", IsHeader: true},
		{Label: "All monitors", Action: menuActionAll, Icon: "video-display", IsActive: monitors.All},
	}
	for _, m := range monitors.Monitors {
		label := fmt.Sprintf("%s  %dx%d", m.ID, m.Width, m.Height)
		if m.Name != "" && m.Name != m.ID {
			label = fmt.Sprintf("%s  %s  %dx%d", m.ID, m.Name, m.Width, m.Height)
		}
		items = append(items, palette.Item{
			Label:    label,
			Action:   menuMonitorPrefix + m.ID,
			Icon:     "video-display",
			IsActive: !monitors.All && m.Selected,
		})
	}
	return append(items, palette.Item{Label: "Settings…", Action: menuActionSettings, Icon: "preferences-system"})
}

func menuMessage(status *ipc.StatusData) string {
	var parts []string
	if status.Active {
		parts = append(parts, "blurred")
	} else {
		parts = append(parts, "clear")
	}
	if status.HotkeyLive {
		parts = append(parts, status.HotkeyDisplay)
	} else {
		parts = append(parts, "no shortcut")
	}
	parts = append(parts, "monitors: "+status.Selection)
	return strings.Join(parts, " · ")
}

// applyMenuAction performs action and reports whether the menu should be
// shown again.
func applyMenuAction(client menuClient, action string, monitors *ipc.MonitorsData, openSettings func() error) (bool, error) {
	switch {
	case action == menuActionToggle:
		return false, client.Toggle()
	case action == menuActionSettings:
		return false, openSettings()
	case action == menuActionAll:
		return true, client.SetMonitors(true, nil)
	case strings.HasPrefix(action, menuMonitorPrefix):
		sel := toggleMonitor(monitors, strings.TrimPrefix(action, menuMonitorPrefix))
		return true, client.SetMonitors(sel.IsAll(), sel.IDs())
	default:
		return false, fmt.Errorf("unknown menu action %q", action)
	}
}

// toggleMonitor flips id in the current selection. Leaving "all" keeps
// every other attached display selected.
func toggleMonitor(monitors *ipc.MonitorsData, id string) overlay.Selection {
	var ids []string
	if monitors.All {
		for _, m := range monitors.Monitors {
			if m.ID != id {
				ids = append(ids, m.ID)
			}
		}
		return overlay.Only(ids...)
	}

	found := false
	for _, cur := range monitors.Selected {
		if cur == id {
			found = true
			continue
		}
		ids = append(ids, cur)
	}
	if !found {
		ids = append(ids, id)
	}
	return overlay.Only(ids...)
}
