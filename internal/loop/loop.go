// Package loop runs the single UI goroutine that owns overlay and hotkey
// state. X event dispatch from xgbutil is interleaved with posted tasks, so
// X callbacks and tasks never run at the same time.
package loop

import (
	"context"
	"errors"
	"log/slog"
	"sync"
)

// ErrStopped is returned by Call once the loop has exited.
var ErrStopped = errors.New("event loop stopped")

// ErrEventSourceClosed is returned by Run when the X event loop quits.
var ErrEventSourceClosed = errors.New("x event loop quit")

// Scheduler accepts tasks for the next loop iteration.
type Scheduler interface {
	Post(fn func())
}

// EventSource is satisfied by x11.Connection. Ping returns the
// xevent.MainPing channels: before fires as an X event is about to be
// dispatched, after once the callbacks have returned, quit when the X loop
// exits.
type EventSource interface {
	Ping() (before, after, quit chan struct{})
}

// Loop is a task queue drained by a single goroutine.
type Loop struct {
	logger *slog.Logger

	mu      sync.Mutex
	queue   []func()
	wake    chan struct{}
	stopped chan struct{}
	done    bool
}

var _ Scheduler = (*Loop)(nil)

// New creates an idle loop. Tasks posted before Run are kept.
func New(logger *slog.Logger) *Loop {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loop{
		logger:  logger,
		wake:    make(chan struct{}, 1),
		stopped: make(chan struct{}),
	}
}

// Post queues fn to run on the loop. It never blocks and is safe from any
// goroutine, including the loop itself. A task posted from inside a task runs
// on the next iteration, after the current batch.
func (l *Loop) Post(fn func()) {
	if fn == nil {
		return
	}
	l.mu.Lock()
	if l.done {
		l.mu.Unlock()
		return
	}
	l.queue = append(l.queue, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Call runs fn on the loop and waits for it. It must not be called from the
// loop goroutine.
func (l *Loop) Call(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	l.Post(func() {
		defer close(finished)
		fn()
	})
	select {
	case <-finished:
		return nil
	case <-l.stopped:
		// The task may still have run in the final drain.
		select {
		case <-finished:
			return nil
		default:
		}
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run drains tasks and X events until ctx is done or src quits. src may be
// nil when no X connection is available.
func (l *Loop) Run(ctx context.Context, src EventSource) error {
	var before, after, quit chan struct{}
	if src != nil {
		before, after, quit = src.Ping()
	}
	defer l.stop()

	for {
		l.drain()

		select {
		case <-ctx.Done():
			l.drain()
			return ctx.Err()
		case <-l.wake:
		case <-before:
			// xgbutil is dispatching; wait until its callbacks return.
			<-after
		case <-quit:
			l.drain()
			return ErrEventSourceClosed
		}
	}
}

// Stopped is closed once Run has returned.
func (l *Loop) Stopped() <-chan struct{} {
	return l.stopped
}

// Pending reports the number of queued tasks.
func (l *Loop) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.queue)
}

func (l *Loop) drain() {
	l.mu.Lock()
	batch := l.queue
	l.queue = nil
	l.mu.Unlock()

	for _, fn := range batch {
		l.runTask(fn)
	}
}

func (l *Loop) runTask(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("loop task panicked", "panic", r)
		}
	}()
	fn()
}

func (l *Loop) stop() {
	l.mu.Lock()
	if l.done {
		l.mu.Unlock()
		return
	}
	l.done = true
	l.queue = nil
	l.mu.Unlock()
	close(l.stopped)
}
