//go:build linux

package main

import "github.com/1broseidon/veil/internal/platform"

// nativeDisplays queries RandR on a short-lived connection per call.
func nativeDisplays(display string) platform.Enumerator {
	return platform.EnumeratorFunc(func() ([]platform.Display, error) {
		backend, err := platform.NewLinuxBackendFromDisplay(display)
		if err != nil {
			return nil, err
		}
		defer backend.Disconnect()
		return backend.Displays()
	})
}
