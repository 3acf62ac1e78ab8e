package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/1broseidon/veil/internal/config"
	"github.com/1broseidon/veil/internal/ipc"
	"github.com/1broseidon/veil/internal/overlay"
)

func TestParseSelection(t *testing.T) {
	tests := []struct {
		args    []string
		want    overlay.Selection
		wantErr bool
	}{
		{[]string{"all"}, overlay.All(), false},
		{[]string{"ALL"}, overlay.All(), false},
		{[]string{"none"}, overlay.Only(), false},
		{[]string{"DP-1"}, overlay.Only("DP-1"), false},
		{[]string{"DP-1,HDMI-1"}, overlay.Only("DP-1", "HDMI-1"), false},
		{[]string{"DP-1", " HDMI-1 "}, overlay.Only("DP-1", "HDMI-1"), false},
		{nil, overlay.Selection{}, true},
		{[]string{","}, overlay.Selection{}, true},
		{[]string{"DP-1", "all"}, overlay.Selection{}, true},
	}
	for _, tt := range tests {
		got, err := parseSelection(tt.args)
		if (err != nil) != tt.wantErr {
			t.Fatalf("parseSelection(%q) err = %v, wantErr %v", tt.args, err, tt.wantErr)
		}
		if err == nil && !got.Equal(tt.want) {
			t.Errorf("parseSelection(%q) = %s, want %s", tt.args, got, tt.want)
		}
	}
}

func TestPrintMonitors(t *testing.T) {
	var buf bytes.Buffer
	printMonitors(&buf, &ipc.MonitorsData{
		Monitors: []ipc.MonitorInfo{
			{ID: "DP-1", Width: 1920, Height: 1080, Selected: true},
			{ID: "HDMI-1", X: 1920, Width: 2560, Height: 1440},
		},
		Selected: []string{"DP-1", "DP-9"},
	})
	out := buf.String()

	for _, want := range []string{
		"* DP-1         1920x1080+0+0",
		"  HDMI-1       2560x1440+1920+0",
		"* DP-9         (not connected)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "selection: all") {
		t.Errorf("explicit selection printed as all:\n%s", out)
	}
}

func TestPrintStatus(t *testing.T) {
	var buf bytes.Buffer
	printStatus(&buf, &ipc.StatusData{
		DaemonRunning: true,
		Active:        true,
		Surfaces:      []string{"DP-1"},
		Hotkey:        "Mod4-shift-b",
		HotkeyDisplay: "⇧⌘B",
		Selection:     "all",
		Degraded:      true,
	})
	out := buf.String()
	for _, want := range []string{"active:         true", "surfaces:       DP-1", "hotkey:         Mod4-shift-b (⇧⌘B)", "degraded:"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestExplainKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("hotkey: ctrl-alt-F9\nopacity: 0.5\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	res, err := config.LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}

	value, src, err := explainKey(res, "opacity")
	if err != nil {
		t.Fatalf("explainKey: %v", err)
	}
	if value != 0.5 {
		t.Errorf("opacity = %v, want 0.5", value)
	}
	if got := formatSource(src); got != "file:"+path+":2:10" {
		t.Errorf("source = %q", got)
	}

	_, src, err = explainKey(res, "tint")
	if err != nil {
		t.Fatalf("explainKey: %v", err)
	}
	if got := formatSource(src); got != "default" {
		t.Errorf("tint source = %q, want default", got)
	}

	if _, _, err := explainKey(res, "gap_size"); err == nil {
		t.Error("expected error for unknown key")
	}
}
