package loop

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startLoop(t *testing.T, src EventSource) (*Loop, context.CancelFunc, <-chan error) {
	t.Helper()
	l := New(nil)
	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- l.Run(ctx, src) }()
	t.Cleanup(cancel)
	return l, cancel, errc
}

func TestLoop_CallRunsOnLoop(t *testing.T) {
	l, _, _ := startLoop(t, nil)

	var ran bool
	require.NoError(t, l.Call(context.Background(), func() { ran = true }))
	assert.True(t, ran)
}

func TestLoop_PostOrderAndNextIteration(t *testing.T) {
	l, _, _ := startLoop(t, nil)

	var order []string
	require.NoError(t, l.Call(context.Background(), func() {
		order = append(order, "a")
		l.Post(func() { order = append(order, "deferred") })
		order = append(order, "b")
	}))
	require.NoError(t, l.Call(context.Background(), func() {}))

	assert.Equal(t, []string{"a", "b", "deferred"}, order)
}

func TestLoop_StopsOnCancel(t *testing.T) {
	l, cancel, errc := startLoop(t, nil)
	cancel()

	select {
	case err := <-errc:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("loop did not stop")
	}

	err := l.Call(context.Background(), func() {})
	assert.True(t, errors.Is(err, ErrStopped))
}

func TestLoop_PanicDoesNotKillLoop(t *testing.T) {
	l, _, _ := startLoop(t, nil)
	l.Post(func() { panic("boom") })

	var ran atomic.Bool
	require.NoError(t, l.Call(context.Background(), func() { ran.Store(true) }))
	assert.True(t, ran.Load())
}

type fakeSource struct {
	before, after, quit chan struct{}
}

func (s *fakeSource) Ping() (chan struct{}, chan struct{}, chan struct{}) {
	return s.before, s.after, s.quit
}

func TestLoop_SerializesWithEventDispatch(t *testing.T) {
	src := &fakeSource{before: make(chan struct{}), after: make(chan struct{}), quit: make(chan struct{})}
	l, _, errc := startLoop(t, src)

	// Simulate xgbutil dispatching an event.
	src.before <- struct{}{}

	var ran atomic.Bool
	l.Post(func() { ran.Store(true) })
	time.Sleep(50 * time.Millisecond)
	assert.False(t, ran.Load(), "task must wait while X callbacks run")

	src.after <- struct{}{}
	require.NoError(t, l.Call(context.Background(), func() {}))
	assert.True(t, ran.Load())

	close(src.quit)
	select {
	case err := <-errc:
		assert.ErrorIs(t, err, ErrEventSourceClosed)
	case <-time.After(2 * time.Second):
		t.Fatal("loop did not exit on quit")
	}
}

func TestManual_Step(t *testing.T) {
	var m Manual
	var n int
	m.Post(func() {
		n++
		m.Post(func() { n += 10 })
	})

	assert.Equal(t, 1, m.Step())
	assert.Equal(t, 1, n)
	assert.Equal(t, 1, m.Pending())
	m.Flush()
	assert.Equal(t, 11, n)
}
