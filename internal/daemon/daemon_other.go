//go:build !linux

package daemon

import "context"

// Run is only implemented on linux.
func Run(ctx context.Context, opts Options) error {
	return ErrUnsupported
}
