package daemon

import (
	"context"
	"fmt"
	"time"

	"github.com/1broseidon/veil/internal/host"
	"github.com/1broseidon/veil/internal/hotkeys"
	"github.com/1broseidon/veil/internal/ipc"
	"github.com/1broseidon/veil/internal/overlay"
	"github.com/1broseidon/veil/internal/platform"
)

// Caller runs fn on the UI loop and waits for it.
type Caller interface {
	Call(ctx context.Context, fn func()) error
}

// Host is the part of host.Host the IPC backend drives.
type Host interface {
	Toggle() error
	Show() error
	Hide()
	Status() host.Status
	SetHotkeyBinding(b hotkeys.Binding) error
	ResetHotkeyBinding() error
	SetMonitorSelection(sel overlay.Selection) error
	BeginRecording()
	EndRecording() error
}

// ipcBackend serves socket requests by running them on the UI loop. Requests
// arrive on connection goroutines; the host is only touched from the loop.
type ipcBackend struct {
	ui       Caller
	host     Host
	displays platform.Enumerator
	reload   func() error
	timeout  time.Duration
}

var _ ipc.Backend = (*ipcBackend)(nil)

func newIPCBackend(ui Caller, h Host, displays platform.Enumerator, reload func() error) *ipcBackend {
	return &ipcBackend{
		ui:       ui,
		host:     h,
		displays: displays,
		reload:   reload,
		timeout:  3 * time.Second,
	}
}

// call runs fn on the loop and returns its error.
func (b *ipcBackend) call(fn func() error) error {
	ctx, cancel := context.WithTimeout(context.Background(), b.timeout)
	defer cancel()

	result := make(chan error, 1)
	if err := b.ui.Call(ctx, func() { result <- fn() }); err != nil {
		return err
	}
	return <-result
}

func (b *ipcBackend) Toggle() error {
	return b.call(b.host.Toggle)
}

func (b *ipcBackend) Show() error {
	return b.call(b.host.Show)
}

func (b *ipcBackend) Hide() error {
	return b.call(func() error {
		b.host.Hide()
		return nil
	})
}

func (b *ipcBackend) Status() (ipc.StatusData, error) {
	var st host.Status
	err := b.call(func() error {
		st = b.host.Status()
		return nil
	})
	if err != nil {
		return ipc.StatusData{}, err
	}
	return statusData(st), nil
}

func (b *ipcBackend) Monitors() (ipc.MonitorsData, error) {
	var (
		displays []platform.Display
		sel      overlay.Selection
	)
	err := b.call(func() error {
		var err error
		displays, err = b.displays.Displays()
		sel = b.host.Status().Selection
		return err
	})
	if err != nil {
		return ipc.MonitorsData{}, err
	}
	return monitorsData(displays, sel), nil
}

func (b *ipcBackend) SetMonitors(all bool, ids []string) error {
	sel := overlay.Only(ids...)
	if all {
		sel = overlay.All()
	}
	return b.call(func() error {
		return b.host.SetMonitorSelection(sel)
	})
}

func (b *ipcBackend) SetHotkey(s string) error {
	binding, err := hotkeys.ParseBinding(s)
	if err != nil {
		return err
	}
	return b.call(func() error {
		return b.host.SetHotkeyBinding(binding)
	})
}

func (b *ipcBackend) ResetHotkey() error {
	return b.call(b.host.ResetHotkeyBinding)
}

func (b *ipcBackend) BeginRecording() error {
	return b.call(func() error {
		b.host.BeginRecording()
		return nil
	})
}

func (b *ipcBackend) EndRecording() error {
	return b.call(b.host.EndRecording)
}

// Reload re-reads the config file. reload does its own loop hand-off.
func (b *ipcBackend) Reload() error {
	if b.reload == nil {
		return fmt.Errorf("reload not supported")
	}
	return b.reload()
}

func statusData(st host.Status) ipc.StatusData {
	return ipc.StatusData{
		Active:        st.Active,
		Transitioning: st.Transitioning,
		Surfaces:      st.Surfaces,
		Hotkey:        st.Hotkey.String(),
		HotkeyDisplay: st.Hotkey.Display(),
		HotkeyLive:    st.HotkeyLive,
		Selection:     st.Selection.String(),
		Recording:     st.Recording,
		Degraded:      st.Degraded,
	}
}

func monitorsData(displays []platform.Display, sel overlay.Selection) ipc.MonitorsData {
	data := ipc.MonitorsData{
		Monitors: make([]ipc.MonitorInfo, 0, len(displays)),
		All:      sel.IsAll(),
	}
	if !sel.IsAll() {
		data.Selected = sel.IDs()
	}
	for _, d := range displays {
		data.Monitors = append(data.Monitors, ipc.MonitorInfo{
			ID:       d.ID,
			Name:     d.Name,
			X:        d.Bounds.X,
			Y:        d.Bounds.Y,
			Width:    d.Bounds.Width,
			Height:   d.Bounds.Height,
			Selected: sel.Includes(d.ID),
		})
	}
	return data
}
