// Package terminals opens commands in a new terminal emulator window.
package terminals

import (
	"fmt"
	"os/exec"
	"strings"
)

// knownTerminals is the lookup order when no template is configured. The
// first entry whose binary is in PATH wins.
var knownTerminals = []struct {
	bin      string
	template string
}{
	{"x-terminal-emulator", "x-terminal-emulator -e {{cmd}}"},
	{"kitty", "kitty {{cmd}}"},
	{"alacritty", "alacritty -e {{cmd}}"},
	{"ghostty", "ghostty -e {{cmd}}"},
	{"wezterm", "wezterm start -- {{cmd}}"},
	{"gnome-terminal", "gnome-terminal -- {{cmd}}"},
	{"konsole", "konsole -e {{cmd}}"},
	{"xfce4-terminal", "xfce4-terminal -x {{cmd}}"},
	{"xterm", "xterm -e {{cmd}}"},
}

// Launcher starts commands in a terminal.
type Launcher struct {
	template string
	lookPath func(string) (string, error)
	start    func(argv []string) error
}

// NewLauncher creates a launcher. An empty template auto-detects a terminal.
func NewLauncher(template string) *Launcher {
	return &Launcher{
		template: strings.TrimSpace(template),
		lookPath: exec.LookPath,
		start:    startDetached,
	}
}

// Command returns the argv that runs cmd inside a terminal.
func (l *Launcher) Command(cmd []string) ([]string, error) {
	if len(cmd) == 0 {
		return nil, fmt.Errorf("no command to run")
	}
	tmpl := l.template
	if tmpl == "" {
		var err error
		if tmpl, err = l.detect(); err != nil {
			return nil, err
		}
	}
	argv, err := renderCommandTemplate(tmpl, cmd)
	if err != nil {
		return nil, fmt.Errorf("terminal template %q: %w", tmpl, err)
	}
	if len(argv) == 0 {
		return nil, fmt.Errorf("terminal template %q is empty", tmpl)
	}
	return argv, nil
}

// Launch runs cmd in a new terminal window without waiting for it.
func (l *Launcher) Launch(cmd []string) error {
	argv, err := l.Command(cmd)
	if err != nil {
		return err
	}
	return l.start(argv)
}

func (l *Launcher) detect() (string, error) {
	names := make([]string, 0, len(knownTerminals))
	for _, t := range knownTerminals {
		if _, err := l.lookPath(t.bin); err == nil {
			return t.template, nil
		}
		names = append(names, t.bin)
	}
	return "", fmt.Errorf("no terminal emulator found in PATH (looked for: %s); set terminal in the config", strings.Join(names, ", "))
}

func startDetached(argv []string) error {
	c := exec.Command(argv[0], argv[1:]...)
	if err := c.Start(); err != nil {
		return fmt.Errorf("failed to start %s: %w", argv[0], err)
	}
	go c.Wait()
	return nil
}

// renderCommandTemplate expands {{cmd}}. A bare {{cmd}} argument becomes the
// command's own arguments; embedded in a larger argument it is shell-quoted.
func renderCommandTemplate(template string, cmd []string) ([]string, error) {
	argv, err := splitCommand(template)
	if err != nil {
		return nil, err
	}
	if !strings.Contains(template, "{{cmd}}") {
		return nil, fmt.Errorf("missing {{cmd}} placeholder")
	}

	out := make([]string, 0, len(argv)+len(cmd))
	for _, arg := range argv {
		if arg == "{{cmd}}" {
			out = append(out, cmd...)
			continue
		}
		out = append(out, strings.ReplaceAll(arg, "{{cmd}}", shellJoin(cmd)))
	}
	return out, nil
}

func shellJoin(argv []string) string {
	parts := make([]string, 0, len(argv))
	for _, a := range argv {
		parts = append(parts, shellQuote(a))
	}
	return strings.Join(parts, " ")
}

func shellQuote(s string) string {
	if s == "" {
		return "''"
	}
	if !strings.ContainsAny(s, " \t\r\n'\"\\$`(){}[]*?!;|&<>") {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

func splitCommand(s string) ([]string, error) {
	var out []string

	var buf strings.Builder
	inSingle := false
	inDouble := false
	escaped := false

	flush := func() {
		if buf.Len() == 0 {
			return
		}
		out = append(out, buf.String())
		buf.Reset()
	}

	for _, r := range s {
		if escaped {
			buf.WriteRune(r)
			escaped = false
			continue
		}
		if !inSingle && r == '\\' {
			escaped = true
			continue
		}
		if !inDouble && r == '\'' {
			inSingle = !inSingle
			continue
		}
		if !inSingle && r == '"' {
			inDouble = !inDouble
			continue
		}
		if !inSingle && !inDouble && (r == ' ' || r == '\t' || r == '\n' || r == '\r') {
			flush()
			continue
		}
		buf.WriteRune(r)
	}

	if escaped {
		return nil, fmt.Errorf("unfinished escape in command template")
	}
	if inSingle || inDouble {
		return nil, fmt.Errorf("unterminated quote in command template")
	}

	flush()
	return out, nil
}
