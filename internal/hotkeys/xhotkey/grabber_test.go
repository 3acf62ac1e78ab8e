//go:build linux && xhotkey

package xhotkey

import (
	"testing"

	"github.com/1broseidon/veil/internal/hotkeys"
	"golang.design/x/hotkey"
)

func TestCombo(t *testing.T) {
	b, err := hotkeys.ParseBinding("ctrl+alt+F5")
	if err != nil {
		t.Fatalf("ParseBinding: %v", err)
	}
	mods, key, err := combo(b)
	if err != nil {
		t.Fatalf("combo: %v", err)
	}
	if key != hotkey.KeyF5 {
		t.Fatalf("key = %v, want F5", key)
	}
	if len(mods) != 2 || mods[0] != hotkey.ModCtrl || mods[1] != hotkey.Mod1 {
		t.Fatalf("mods = %v, want [ctrl mod1]", mods)
	}

	if _, _, err := combo(hotkeys.Binding{Key: "Print", Mods: hotkeys.ModCommand}); err == nil {
		t.Fatal("expected unsupported key error")
	}
}
