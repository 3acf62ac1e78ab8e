package terminals

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

func onlyInPath(bins ...string) func(string) (string, error) {
	return func(name string) (string, error) {
		for _, b := range bins {
			if b == name {
				return "/usr/bin/" + name, nil
			}
		}
		return "", errors.New("not found")
	}
}

func TestCommand_DetectsFirstKnownTerminal(t *testing.T) {
	l := NewLauncher("")
	l.lookPath = onlyInPath("xterm", "alacritty")

	got, err := l.Command([]string{"/usr/bin/veil", "settings"})
	if err != nil {
		t.Fatalf("Command: %v", err)
	}
	want := []string{"alacritty", "-e", "/usr/bin/veil", "settings"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("argv = %q, want %q", got, want)
	}
}

func TestCommand_NoTerminal(t *testing.T) {
	l := NewLauncher("")
	l.lookPath = onlyInPath()

	_, err := l.Command([]string{"veil", "settings"})
	if err == nil || !strings.Contains(err.Error(), "no terminal emulator") {
		t.Fatalf("err = %v", err)
	}
}

func TestCommand_Template(t *testing.T) {
	tests := []struct {
		template string
		cmd      []string
		want     []string
	}{
		{"kitty --title Veil {{cmd}}", []string{"veil", "settings"}, []string{"kitty", "--title", "Veil", "veil", "settings"}},
		{`foot -e sh -c "{{cmd}}; read"`, []string{"/opt/my veil", "settings"}, []string{"foot", "-e", "sh", "-c", "'/opt/my veil' settings; read"}},
		{"'my term' -e {{cmd}}", []string{"veil"}, []string{"my term", "-e", "veil"}},
	}
	for _, tt := range tests {
		l := NewLauncher(tt.template)
		got, err := l.Command(tt.cmd)
		if err != nil {
			t.Fatalf("%q: %v", tt.template, err)
		}
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("%q: argv = %q, want %q", tt.template, got, tt.want)
		}
	}
}

func TestCommand_BadTemplate(t *testing.T) {
	for _, tmpl := range []string{"kitty", `kitty "{{cmd}}`, `kitty \`} {
		if _, err := NewLauncher(tmpl).Command([]string{"veil"}); err == nil {
			t.Errorf("%q: expected error", tmpl)
		}
	}
}

func TestLaunch_Starts(t *testing.T) {
	l := NewLauncher("xterm -e {{cmd}}")
	var started []string
	l.start = func(argv []string) error {
		started = argv
		return nil
	}
	if err := l.Launch([]string{"veil", "settings"}); err != nil {
		t.Fatalf("Launch: %v", err)
	}
	if want := []string{"xterm", "-e", "veil", "settings"}; !reflect.DeepEqual(started, want) {
		t.Errorf("started %q, want %q", started, want)
	}
}
