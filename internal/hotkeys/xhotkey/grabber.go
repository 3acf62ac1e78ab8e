//go:build linux && xhotkey

package xhotkey

import (
	"fmt"

	"github.com/1broseidon/veil/internal/hotkeys"
	"golang.design/x/hotkey"
)

// Grabber runs its own X connection and event goroutine. Key-down events are
// handed to post so fire runs on the UI loop.
type Grabber struct {
	post func(func())

	hk   *hotkey.Hotkey
	stop chan struct{}
}

var _ hotkeys.Grabber = (*Grabber)(nil)

// New returns a grabber that delivers presses through post.
func New(post func(func())) (*Grabber, error) {
	if post == nil {
		return nil, fmt.Errorf("xhotkey grabber needs a post function")
	}
	return &Grabber{post: post}, nil
}

func (g *Grabber) Grab(b hotkeys.Binding, fire func()) error {
	mods, key, err := combo(b)
	if err != nil {
		return err
	}
	g.release()

	hk := hotkey.New(mods, key)
	if err := hk.Register(); err != nil {
		return err
	}

	stop := make(chan struct{})
	g.hk = hk
	g.stop = stop
	go g.listen(hk, stop, fire)
	return nil
}

func (g *Grabber) listen(hk *hotkey.Hotkey, stop chan struct{}, fire func()) {
	for {
		select {
		case <-stop:
			return
		case _, ok := <-hk.Keydown():
			if !ok {
				return
			}
			g.post(fire)
		}
	}
}

func (g *Grabber) Release(hotkeys.Binding) {
	g.release()
}

func (g *Grabber) release() {
	if g.stop != nil {
		close(g.stop)
		g.stop = nil
	}
	if g.hk != nil {
		_ = g.hk.Unregister()
		g.hk = nil
	}
}

var modifiers = map[hotkeys.Modifier]hotkey.Modifier{
	hotkeys.ModControl: hotkey.ModCtrl,
	hotkeys.ModShift:   hotkey.ModShift,
	hotkeys.ModOption:  hotkey.Mod1,
	hotkeys.ModCommand: hotkey.Mod4,
}

var keys = map[string]hotkey.Key{
	"space": hotkey.KeySpace, "Return": hotkey.KeyReturn, "Tab": hotkey.KeyTab,
	"Escape": hotkey.KeyEscape, "Delete": hotkey.KeyDelete,
	"Left": hotkey.KeyLeft, "Right": hotkey.KeyRight, "Up": hotkey.KeyUp, "Down": hotkey.KeyDown,
	"0": hotkey.Key0, "1": hotkey.Key1, "2": hotkey.Key2, "3": hotkey.Key3, "4": hotkey.Key4,
	"5": hotkey.Key5, "6": hotkey.Key6, "7": hotkey.Key7, "8": hotkey.Key8, "9": hotkey.Key9,
	"a": hotkey.KeyA, "b": hotkey.KeyB, "c": hotkey.KeyC, "d": hotkey.KeyD, "e": hotkey.KeyE,
	"f": hotkey.KeyF, "g": hotkey.KeyG, "h": hotkey.KeyH, "i": hotkey.KeyI, "j": hotkey.KeyJ,
	"k": hotkey.KeyK, "l": hotkey.KeyL, "m": hotkey.KeyM, "n": hotkey.KeyN, "o": hotkey.KeyO,
	"p": hotkey.KeyP, "q": hotkey.KeyQ, "r": hotkey.KeyR, "s": hotkey.KeyS, "t": hotkey.KeyT,
	"u": hotkey.KeyU, "v": hotkey.KeyV, "w": hotkey.KeyW, "x": hotkey.KeyX, "y": hotkey.KeyY,
	"z": hotkey.KeyZ,
	"F1": hotkey.KeyF1, "F2": hotkey.KeyF2, "F3": hotkey.KeyF3, "F4": hotkey.KeyF4,
	"F5": hotkey.KeyF5, "F6": hotkey.KeyF6, "F7": hotkey.KeyF7, "F8": hotkey.KeyF8,
	"F9": hotkey.KeyF9, "F10": hotkey.KeyF10, "F11": hotkey.KeyF11, "F12": hotkey.KeyF12,
}

func combo(b hotkeys.Binding) ([]hotkey.Modifier, hotkey.Key, error) {
	key, ok := keys[b.KeyName()]
	if !ok {
		return nil, 0, fmt.Errorf("key %q is not supported by the xhotkey backend", b.Key)
	}
	mods := make([]hotkey.Modifier, 0, 4)
	for _, m := range []hotkeys.Modifier{hotkeys.ModControl, hotkeys.ModShift, hotkeys.ModOption, hotkeys.ModCommand} {
		if b.Mods&m != 0 {
			mods = append(mods, modifiers[m])
		}
	}
	return mods, key, nil
}
