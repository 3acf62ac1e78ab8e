package notify

import (
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/1broseidon/veil/internal/hotkeys"
	"github.com/ncruces/zenity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sent struct {
	title, message string
}

func newTestNotifier(enabled bool) (*Notifier, chan sent, chan sent) {
	n := New(enabled, slog.New(slog.NewTextHandler(io.Discard, nil)))
	notes := make(chan sent, 4)
	dialogs := make(chan sent, 4)
	n.notify = func(title, message string) error {
		notes <- sent{title, message}
		return nil
	}
	n.dialog = func(title, message string) error {
		dialogs <- sent{title, message}
		return zenity.ErrCanceled
	}
	return n, notes, dialogs
}

func TestRegistrationFailed_UsesGlyphs(t *testing.T) {
	n, notes, _ := newTestNotifier(true)
	n.RegistrationFailed(hotkeys.Default(), errors.New("BadAccess"))

	require.Len(t, notes, 1)
	got := <-notes
	assert.Contains(t, got.title, "shortcut unavailable")
	assert.True(t, strings.HasPrefix(got.message, "⇧⌘B"), got.message)
}

func TestDisabledNotifierStaysQuiet(t *testing.T) {
	n, notes, dialogs := newTestNotifier(false)
	n.RegistrationFailed(hotkeys.Default(), errors.New("BadAccess"))
	n.MissingPermission(errors.New("no display"))

	assert.Empty(t, notes)
	assert.Empty(t, dialogs)

	n.SetEnabled(true)
	assert.True(t, n.Enabled())
}

func TestMissingPermission_OpensDialog(t *testing.T) {
	n, notes, dialogs := newTestNotifier(true)
	n.MissingPermission(errors.New("no display"))

	select {
	case d := <-dialogs:
		assert.Equal(t, appName, d.title)
		assert.Contains(t, d.message, "veil toggle")
	case <-time.After(2 * time.Second):
		t.Fatal("dialog was not shown")
	}
	// A dismissed dialog does not fall back to a notification.
	select {
	case <-notes:
		t.Fatal("unexpected notification after a cancelled dialog")
	case <-time.After(50 * time.Millisecond):
	}
}
