package palette

import (
	"bytes"
	"errors"
	"fmt"
	"html"
	"os/exec"
	"strconv"
	"strings"
)

// launcher drives any dmenu-compatible program over stdin/stdout.
type launcher struct {
	command string
	args    func(prompt, message string, active []int) []string

	markup bool // labels are pango markup
	icons  bool // rofi row properties
	index  bool // prints the selected row index instead of its text

	run func(command string, args []string, stdin string) (string, error)
}

func launcherFor(name string) *launcher {
	l := &launcher{command: name, run: runCommand}
	switch name {
	case "rofi":
		l.markup, l.icons, l.index = true, true, true
		l.args = func(prompt, message string, active []int) []string {
			args := []string{"-dmenu", "-i", "-p", prompt, "-format", "i", "-no-custom", "-markup-rows", "-show-icons"}
			if len(active) > 0 {
				args = append(args, "-a", formatIndices(active))
			}
			if message != "" {
				args = append(args, "-mesg", message)
			}
			return args
		}
	case "fuzzel":
		l.index = true
		l.args = func(prompt, _ string, _ []int) []string {
			return []string{"--dmenu", "--prompt", prompt + " ", "--index"}
		}
	case "wofi":
		l.args = func(prompt, _ string, _ []int) []string {
			return []string{"--dmenu", "--prompt", prompt}
		}
	default:
		l.args = func(prompt, _ string, _ []int) []string {
			return []string{"-i", "-p", prompt}
		}
	}
	return l
}

func (l *launcher) Show(prompt string, items []Item, message string) (Item, error) {
	if len(items) == 0 {
		return Item{}, fmt.Errorf("palette: no items to show")
	}

	lines := make([]string, 0, len(items))
	var active []int
	for i, item := range items {
		lines = append(lines, l.formatItem(item))
		if item.IsActive && !item.IsHeader {
			active = append(active, i)
		}
	}

	out, err := l.run(l.command, l.args(prompt, message, active), strings.Join(lines, "\n"))
	if err != nil {
		return Item{}, err
	}
	if out == "" {
		return Item{}, ErrCancelled
	}

	item, err := l.parseSelection(out, items)
	if err != nil {
		return Item{}, err
	}
	if item.IsHeader {
		return Item{}, ErrCancelled
	}
	return item, nil
}

func (l *launcher) formatItem(item Item) string {
	display := sanitizeLabel(item.Label)
	if l.markup {
		display = html.EscapeString(display)
		if item.IsHeader {
			display = "<b>" + display + "</b>"
		}
	}
	if !l.icons {
		return display
	}

	// Rofi row properties: one NUL, then \x1f-delimited key/value pairs.
	var attrs []string
	if item.IsHeader {
		attrs = append(attrs, "nonselectable", "true")
	}
	if item.Icon != "" {
		attrs = append(attrs, "icon", sanitizeRofiField(item.Icon))
	}
	if len(attrs) == 0 {
		return display
	}
	return display + "\x00" + strings.Join(attrs, "\x1f")
}

func (l *launcher) parseSelection(selection string, items []Item) (Item, error) {
	if l.index {
		if idx, err := strconv.Atoi(selection); err == nil {
			if idx < 0 || idx >= len(items) {
				return Item{}, fmt.Errorf("palette: index %d out of range", idx)
			}
			return items[idx], nil
		}
	}
	for _, item := range items {
		if sanitizeLabel(item.Label) == selection {
			return item, nil
		}
	}
	return Item{}, fmt.Errorf("palette: unknown selection %q", selection)
}

func runCommand(command string, args []string, stdin string) (string, error) {
	cmd := exec.Command(command, args...)
	cmd.Stdin = strings.NewReader(stdin)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	selection := strings.TrimSpace(string(out))
	if err != nil {
		if selection == "" && isCancelExit(err) {
			return "", nil
		}
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", fmt.Errorf("%s failed: %s", command, msg)
		}
		return "", fmt.Errorf("%s failed: %w", command, err)
	}
	return selection, nil
}

func sanitizeLabel(label string) string {
	label = strings.ReplaceAll(label, "\r", " ")
	label = strings.ReplaceAll(label, "\n", " ")
	return strings.TrimSpace(label)
}

func sanitizeRofiField(value string) string {
	for _, sep := range []string{"\x00", "\x1f", "\r", "\n"} {
		value = strings.ReplaceAll(value, sep, " ")
	}
	return strings.TrimSpace(value)
}

func formatIndices(indices []int) string {
	parts := make([]string, 0, len(indices))
	for _, i := range indices {
		parts = append(parts, strconv.Itoa(i))
	}
	return strings.Join(parts, ",")
}

func isCancelExit(err error) bool {
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return false
	}
	// 1 is "no selection", 130 is Ctrl+C.
	switch exitErr.ExitCode() {
	case 1, 130:
		return true
	default:
		return false
	}
}
