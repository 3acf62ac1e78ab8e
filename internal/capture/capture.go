// Package capture records a keyboard shortcut by grabbing the keyboard and
// waiting for the first non-modifier key press.
package capture

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/1broseidon/veil/internal/hotkeys"
	"github.com/1broseidon/veil/internal/x11"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/xevent"
)

var (
	// ErrCanceled is returned when Escape is pressed without modifiers.
	ErrCanceled = errors.New("shortcut capture canceled")
	// ErrTimeout is returned when no shortcut was pressed in time.
	ErrTimeout = errors.New("shortcut capture timed out")
)

// Recorder captures one shortcut per Record call.
type Recorder struct {
	// Display names the X server; empty means $DISPLAY.
	Display string
	// Timeout bounds a capture; zero means 10 seconds.
	Timeout time.Duration
}

type result struct {
	binding hotkeys.Binding
	err     error
}

// Record grabs the keyboard and returns the next shortcut pressed. The
// binding is not validated.
func (r Recorder) Record(ctx context.Context) (hotkeys.Binding, error) {
	timeout := r.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	conn, err := x11.NewConnection(r.Display)
	if err != nil {
		return hotkeys.Binding{}, err
	}
	defer conn.Close()
	xu := conn.XUtil

	win, err := createGrabWindow(xu, conn.Root)
	if err != nil {
		return hotkeys.Binding{}, fmt.Errorf("failed to create grab window: %w", err)
	}
	defer xproto.DestroyWindow(xu.Conn(), win)

	if err := grabKeyboard(xu, conn.Root); err != nil {
		return hotkeys.Binding{}, err
	}
	defer xproto.UngrabKeyboard(xu.Conn(), xproto.TimeCurrentTime)

	done := make(chan result, 1)
	xevent.RedirectKeyEvents(xu, win)
	xevent.KeyPressFun(func(xu *xgbutil.XUtil, ev xevent.KeyPressEvent) {
		name := keybind.LookupString(xu, 0, ev.Detail)
		b, ok, err := bindingFromKey(name, ev.State)
		if !ok {
			return
		}
		select {
		case done <- result{binding: b, err: err}:
		default:
		}
	}).Connect(xu, win)

	// Main exits once quitting is set and the connection is closed.
	go xevent.Main(xu)
	defer xevent.Quit(xu)

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case res := <-done:
		return res.binding, res.err
	case <-timer.C:
		return hotkeys.Binding{}, ErrTimeout
	case <-ctx.Done():
		return hotkeys.Binding{}, ctx.Err()
	}
}

func createGrabWindow(xu *xgbutil.XUtil, root xproto.Window) (xproto.Window, error) {
	conn := xu.Conn()
	wid, err := xproto.NewWindowId(conn)
	if err != nil {
		return 0, err
	}

	// InputOnly window that never draws anything; used solely as a safe target
	// for key event callbacks while the keyboard is grabbed.
	err = xproto.CreateWindowChecked(
		conn,
		0, // depth (must be 0 for InputOnly)
		wid,
		root,
		0, 0, // x, y
		1, 1, // width, height
		0, // border_width
		xproto.WindowClassInputOnly,
		xproto.Visualid(0), // CopyFromParent
		xproto.CwEventMask,
		[]uint32{uint32(xproto.EventMaskKeyPress)},
	).Check()
	if err != nil {
		return 0, err
	}
	xproto.MapWindow(conn, wid)
	return wid, nil
}

func grabKeyboard(xu *xgbutil.XUtil, root xproto.Window) error {
	grab := func() (*xproto.GrabKeyboardReply, error) {
		return xproto.GrabKeyboard(
			xu.Conn(),
			false,
			root,
			xproto.TimeCurrentTime,
			xproto.GrabModeAsync,
			xproto.GrabModeAsync,
		).Reply()
	}

	// The settings UI is often focused by a key press that is still held.
	var (
		reply *xproto.GrabKeyboardReply
		err   error
	)
	for attempt := 0; attempt < 5; attempt++ {
		reply, err = grab()
		if err != nil {
			return err
		}
		if reply.Status == xproto.GrabStatusSuccess {
			return nil
		}
		time.Sleep(50 * time.Millisecond)
	}
	return fmt.Errorf("keyboard grab failed with status %d", reply.Status)
}

var modifierKeys = map[string]bool{
	"Shift_L": true, "Shift_R": true,
	"Control_L": true, "Control_R": true,
	"Alt_L": true, "Alt_R": true,
	"Meta_L": true, "Meta_R": true,
	"Super_L": true, "Super_R": true,
	"Hyper_L": true, "Hyper_R": true,
	"ISO_Level3_Shift": true,
	"Caps_Lock":        true,
	"Num_Lock":         true,
	"Mode_switch":      true,
}

// bindingFromKey turns a key press into a binding. ok is false for presses
// that do not end the capture, such as a lone modifier key.
func bindingFromKey(name string, state uint16) (b hotkeys.Binding, ok bool, err error) {
	if name == "" || modifierKeys[name] {
		return hotkeys.Binding{}, false, nil
	}

	var mods hotkeys.Modifier
	if state&xproto.ModMask4 != 0 {
		mods |= hotkeys.ModCommand
	}
	if state&xproto.ModMask1 != 0 {
		mods |= hotkeys.ModOption
	}
	if state&xproto.ModMaskControl != 0 {
		mods |= hotkeys.ModControl
	}
	if state&xproto.ModMaskShift != 0 {
		mods |= hotkeys.ModShift
	}

	if mods == 0 && name == "Escape" {
		return hotkeys.Binding{}, true, ErrCanceled
	}

	// Round-trip through the parser so the key name is normalized.
	parsed, perr := hotkeys.ParseBinding(strings.TrimSpace(name))
	if perr != nil {
		return hotkeys.Binding{}, true, perr
	}
	parsed.Mods = mods
	return parsed, true, nil
}
