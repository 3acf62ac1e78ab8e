//go:build !(linux && xhotkey)

package xhotkey

import "github.com/1broseidon/veil/internal/hotkeys"

// Grabber is not available in this build.
type Grabber struct{}

var _ hotkeys.Grabber = (*Grabber)(nil)

// New always fails with ErrNotBuilt.
func New(func(func())) (*Grabber, error) {
	return nil, ErrNotBuilt
}

func (*Grabber) Grab(hotkeys.Binding, func()) error { return ErrNotBuilt }

func (*Grabber) Release(hotkeys.Binding) {}
