//go:build !(linux && xhotkey)

package xhotkey

import (
	"errors"
	"testing"
)

func TestNew_NotBuilt(t *testing.T) {
	g, err := New(func(fn func()) { fn() })
	if !errors.Is(err, ErrNotBuilt) {
		t.Fatalf("New error = %v, want ErrNotBuilt", err)
	}
	if g != nil {
		t.Fatalf("expected no grabber, got %v", g)
	}
}
