// Package palette shows a pick list through an external launcher such as
// rofi, fuzzel, wofi or dmenu.
package palette

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// ErrCancelled is returned when the user closes the palette without selecting an item.
var ErrCancelled = errors.New("palette cancelled")

// Item is a single selectable entry in a palette menu.
type Item struct {
	Label    string // Display text
	Action   string // Action identifier returned on selection
	Icon     string // Icon name for backends that show icons
	IsHeader bool   // Non-selectable section header
	IsActive bool   // Highlighted as currently on
}

// Backend shows a palette to the user and returns the selected item.
type Backend interface {
	Show(prompt string, items []Item, message string) (Item, error)
}

// backendOrder is the auto-detection priority.
var backendOrder = []string{"rofi", "fuzzel", "wofi", "dmenu"}

// NewBackend creates a backend by name. Supported names: auto, rofi,
// fuzzel, wofi, dmenu.
func NewBackend(name string) (Backend, error) {
	return newBackend(name, exec.LookPath)
}

func newBackend(name string, lookPath func(string) (string, error)) (Backend, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" || name == "auto" {
		for _, candidate := range backendOrder {
			if _, err := lookPath(candidate); err == nil {
				return launcherFor(candidate), nil
			}
		}
		return nil, fmt.Errorf("no palette backend found in PATH (looked for: %s)", strings.Join(backendOrder, ", "))
	}
	for _, known := range backendOrder {
		if name != known {
			continue
		}
		if _, err := lookPath(name); err != nil {
			return nil, fmt.Errorf("palette backend %q not found in PATH", name)
		}
		return launcherFor(name), nil
	}
	return nil, fmt.Errorf("unknown palette backend: %q (expected: auto, %s)", name, strings.Join(backendOrder, ", "))
}
