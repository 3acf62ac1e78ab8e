package hotkeys

import (
	"errors"
	"fmt"
	"strings"
)

// Modifier is a bitset of the four logical modifier keys. On X11, Command maps
// to Mod4 (Super) and Option maps to Mod1 (Alt).
type Modifier uint8

const (
	ModCommand Modifier = 1 << iota
	ModShift
	ModOption
	ModControl
)

// Binding is one key plus a modifier set.
type Binding struct {
	// Key is an X keysym name: lower-case letters ("b"), digits, or names such
	// as "F5", "space", "Tab", "Return", "Escape".
	Key  string
	Mods Modifier
}

// Default is the binding used when nothing has been saved: Super+Shift+B.
func Default() Binding {
	return Binding{Key: "b", Mods: ModCommand | ModShift}
}

// IsZero reports whether the binding is unset.
func (b Binding) IsZero() bool {
	return b.Key == "" && b.Mods == 0
}

// Equal compares bindings after key normalization.
func (b Binding) Equal(o Binding) bool {
	return b.Mods == o.Mods && normalizeKey(b.Key) == normalizeKey(o.Key)
}

// KeyName returns the normalized key, e.g. "b" or "F5".
func (b Binding) KeyName() string {
	return normalizeKey(b.Key)
}

// KeySequence renders the binding in xgbutil keybind syntax, e.g. "Mod4-shift-b".
func (b Binding) KeySequence() string {
	parts := make([]string, 0, 5)
	if b.Mods&ModCommand != 0 {
		parts = append(parts, "Mod4")
	}
	if b.Mods&ModOption != 0 {
		parts = append(parts, "Mod1")
	}
	if b.Mods&ModControl != 0 {
		parts = append(parts, "control")
	}
	if b.Mods&ModShift != 0 {
		parts = append(parts, "shift")
	}
	parts = append(parts, normalizeKey(b.Key))
	return strings.Join(parts, "-")
}

// String returns the persisted form, which is the keybind sequence.
func (b Binding) String() string {
	return b.KeySequence()
}

// Display renders the binding with modifier glyphs for settings UIs,
// e.g. "⇧⌘B".
func (b Binding) Display() string {
	var sb strings.Builder
	if b.Mods&ModControl != 0 {
		sb.WriteString("⌃")
	}
	if b.Mods&ModOption != 0 {
		sb.WriteString("⌥")
	}
	if b.Mods&ModShift != 0 {
		sb.WriteString("⇧")
	}
	if b.Mods&ModCommand != 0 {
		sb.WriteString("⌘")
	}
	sb.WriteString(keyLabel(normalizeKey(b.Key)))
	return sb.String()
}

var modifierAliases = map[string]Modifier{
	"mod4":    ModCommand,
	"super":   ModCommand,
	"cmd":     ModCommand,
	"command": ModCommand,
	"win":     ModCommand,
	"mod1":    ModOption,
	"alt":     ModOption,
	"opt":     ModOption,
	"option":  ModOption,
	"ctrl":    ModControl,
	"control": ModControl,
	"shift":   ModShift,
}

// ParseBinding accepts "Mod4-shift-b", "super+shift+b", "ctrl-alt-F5" and
// similar. Modifier names are case-insensitive; the last token is the key.
func ParseBinding(s string) (Binding, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Binding{}, fmt.Errorf("empty hotkey")
	}

	tokens := strings.FieldsFunc(s, func(r rune) bool { return r == '-' || r == '+' })
	if len(tokens) == 0 {
		return Binding{}, fmt.Errorf("invalid hotkey %q", s)
	}

	var b Binding
	for _, tok := range tokens[:len(tokens)-1] {
		mod, ok := modifierAliases[strings.ToLower(tok)]
		if !ok {
			return Binding{}, fmt.Errorf("invalid hotkey %q: unknown modifier %q", s, tok)
		}
		b.Mods |= mod
	}

	key := tokens[len(tokens)-1]
	if _, isMod := modifierAliases[strings.ToLower(key)]; isMod {
		return Binding{}, fmt.Errorf("invalid hotkey %q: missing key", s)
	}
	b.Key = normalizeKey(key)
	return b, nil
}

var keyNames = map[string]string{
	"space":     "space",
	"tab":       "Tab",
	"return":    "Return",
	"enter":     "Return",
	"escape":    "Escape",
	"esc":       "Escape",
	"backspace": "BackSpace",
	"delete":    "Delete",
	"left":      "Left",
	"right":     "Right",
	"up":        "Up",
	"down":      "Down",
}

func normalizeKey(key string) string {
	if len(key) == 1 {
		return strings.ToLower(key)
	}
	lower := strings.ToLower(key)
	if name, ok := keyNames[lower]; ok {
		return name
	}
	if len(lower) >= 2 && lower[0] == 'f' && isDigits(lower[1:]) {
		return "F" + lower[1:]
	}
	return key
}

func keyLabel(key string) string {
	switch key {
	case "space":
		return "Space"
	case "Return":
		return "↩"
	case "Tab":
		return "⇥"
	case "BackSpace":
		return "⌫"
	case "Escape":
		return "⎋"
	case "Left":
		return "←"
	case "Right":
		return "→"
	case "Up":
		return "↑"
	case "Down":
		return "↓"
	}
	if len(key) == 1 {
		return strings.ToUpper(key)
	}
	return key
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

var (
	ErrNoKey      = errors.New("hotkey has no key")
	ErrNoModifier = errors.New("hotkey needs at least one modifier (super, alt, ctrl or shift)")
	ErrReserved   = errors.New("hotkey conflicts with a system shortcut")
)

// reserved lists the combinations window managers and desktops claim for
// quit, close-window, hide and application switching.
var reserved = []Binding{
	{Key: "q", Mods: ModCommand},
	{Key: "w", Mods: ModCommand},
	{Key: "h", Mods: ModCommand},
	{Key: "Tab", Mods: ModCommand},
	{Key: "Tab", Mods: ModOption},
	{Key: "F4", Mods: ModOption},
}

// Validate applies the shortcut policy. The Registrar itself never calls it.
func Validate(b Binding) error {
	if strings.TrimSpace(b.Key) == "" {
		return ErrNoKey
	}
	if b.Mods == 0 {
		return ErrNoModifier
	}
	for _, r := range reserved {
		if r.Equal(b) {
			return fmt.Errorf("%w: %s", ErrReserved, b.Display())
		}
	}
	return nil
}
