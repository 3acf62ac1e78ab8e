//go:build !linux

package main

import "github.com/1broseidon/veil/internal/platform"

func nativeDisplays(string) platform.Enumerator {
	return platform.NewScreenshotEnumerator()
}
