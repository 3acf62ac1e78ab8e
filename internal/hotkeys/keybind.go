package hotkeys

import (
	"log/slog"
	"sync"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/xevent"
)

// KeybindGrabber grabs keys on the X11 root window through xgbutil. Callbacks
// run inside X event dispatch, which the UI loop serializes with its tasks.
//
// It owns the one root KeyPress handler and its own passive grabs instead of
// going through keybind.Connect, so a released combo is gone for good: it is
// neither dispatched nor re-grabbed after a keyboard mapping change.
type KeybindGrabber struct {
	parse  func(seq string) (uint16, []xproto.Keycode, error)
	grab   func(mods uint16, code xproto.Keycode) error
	ungrab func(mods uint16, code xproto.Keycode)
	deduce func(state uint16, detail xproto.Keycode) (uint16, xproto.Keycode)
	logger *slog.Logger

	current *activeGrab
}

type activeGrab struct {
	binding Binding
	mods    uint16
	codes   []xproto.Keycode
	fire    func()
}

var _ Grabber = (*KeybindGrabber)(nil)

var ignoreModsOnce sync.Once

// NewKeybindGrabber creates a root-window grabber. keybind.Initialize must
// already have been called on xu.
func NewKeybindGrabber(xu *xgbutil.XUtil, root xproto.Window, logger *slog.Logger) *KeybindGrabber {
	if logger == nil {
		logger = slog.Default()
	}
	ignoreModsOnce.Do(func() {
		configureIgnoreMods(xu)
	})
	g := &KeybindGrabber{
		parse: func(seq string) (uint16, []xproto.Keycode, error) {
			return keybind.ParseString(xu, seq)
		},
		grab: func(mods uint16, code xproto.Keycode) error {
			return keybind.GrabChecked(xu, root, mods, code)
		},
		ungrab: func(mods uint16, code xproto.Keycode) {
			keybind.Ungrab(xu, root, mods, code)
		},
		deduce: keybind.DeduceKeyInfo,
		logger: logger,
	}

	xevent.KeyPressFun(func(_ *xgbutil.XUtil, ev xevent.KeyPressEvent) {
		g.keyPressed(ev.State, ev.Detail)
	}).Connect(xu, root)
	// keybind.Initialize connected its handler first, so the key maps are
	// already updated when this one runs.
	xevent.MappingNotifyFun(func(_ *xgbutil.XUtil, ev xevent.MappingNotifyEvent) {
		if ev.Request == xproto.MappingKeyboard {
			g.remap()
		}
	}).Connect(xu, xevent.NoWindow)
	return g
}

// Grab replaces any current grab with a passive grab for b.
func (g *KeybindGrabber) Grab(b Binding, fire func()) error {
	g.releaseCurrent()

	mods, codes, err := g.parse(b.KeySequence())
	if err != nil {
		return err
	}
	if err := g.grabAll(mods, codes); err != nil {
		return err
	}
	g.current = &activeGrab{binding: b, mods: mods, codes: codes, fire: fire}
	return nil
}

// Release removes the grab for b. Releasing a combo that is not grabbed does
// nothing.
func (g *KeybindGrabber) Release(b Binding) {
	if g.current == nil || !g.current.binding.Equal(b) {
		return
	}
	g.releaseCurrent()
}

func (g *KeybindGrabber) releaseCurrent() {
	if g.current == nil {
		return
	}
	for _, code := range g.current.codes {
		g.ungrab(g.current.mods, code)
	}
	g.current = nil
}

// grabAll grabs every keycode or none of them.
func (g *KeybindGrabber) grabAll(mods uint16, codes []xproto.Keycode) error {
	for i, code := range codes {
		if err := g.grab(mods, code); err != nil {
			for _, done := range codes[:i+1] {
				g.ungrab(mods, done)
			}
			return err
		}
	}
	return nil
}

func (g *KeybindGrabber) keyPressed(state uint16, detail xproto.Keycode) {
	cur := g.current
	if cur == nil {
		return
	}
	mods, code := g.deduce(state, detail)
	if mods != cur.mods {
		return
	}
	for _, c := range cur.codes {
		if c == code {
			cur.fire()
			return
		}
	}
}

// remap re-grabs the current binding after the keyboard mapping changed; the
// same keysym may now sit on different keycodes.
func (g *KeybindGrabber) remap() {
	cur := g.current
	if cur == nil {
		return
	}
	g.releaseCurrent()
	if err := g.Grab(cur.binding, cur.fire); err != nil {
		g.logger.Warn("failed to re-grab hotkey after keyboard mapping change", "hotkey", cur.binding.String(), "error", err)
	}
}

func configureIgnoreMods(xu *xgbutil.XUtil) {
	// Always ignore CapsLock.
	caps := uint16(xproto.ModMaskLock)

	numLock := modMaskForKeysym(xu, "Num_Lock")
	scrollLock := modMaskForKeysym(xu, "Scroll_Lock")

	unique := make(map[uint16]struct{})
	add := func(mask uint16) {
		unique[mask] = struct{}{}
	}

	add(0)
	base := []uint16{caps}
	if numLock != 0 && numLock != caps {
		base = append(base, numLock)
	}
	if scrollLock != 0 && scrollLock != caps && scrollLock != numLock {
		base = append(base, scrollLock)
	}

	for _, mask := range lockCombinations(base) {
		add(mask)
	}

	ignore := make([]uint16, 0, len(unique))
	for mask := range unique {
		ignore = append(ignore, mask)
	}

	xevent.IgnoreMods = ignore
}

// lockCombinations returns every non-empty OR-combination of the lock masks.
func lockCombinations(base []uint16) []uint16 {
	var out []uint16
	for subset := 1; subset < (1 << len(base)); subset++ {
		var mask uint16
		for bit := range base {
			if subset&(1<<bit) != 0 {
				mask |= base[bit]
			}
		}
		out = append(out, mask)
	}
	return out
}

func modMaskForKeysym(xu *xgbutil.XUtil, keysym string) uint16 {
	if xu == nil {
		return 0
	}
	for _, keycode := range keybind.StrToKeycodes(xu, keysym) {
		if mask := keybind.ModGet(xu, keycode); mask != 0 {
			return mask
		}
	}
	return 0
}
