// Package xhotkey registers the toggle shortcut through golang.design/x/hotkey.
//
// That library opens an X display from its package init and panics when none
// is available, so the backend is only compiled in with the xhotkey build tag
// (go build -tags xhotkey). Without it, New returns ErrNotBuilt and the
// daemon runs without a global hotkey.
package xhotkey

import "errors"

// ErrNotBuilt is returned by New when the binary was built without the
// xhotkey tag or for a platform other than Linux.
var ErrNotBuilt = errors.New("xhotkey backend not built (rebuild with -tags xhotkey)")
