package loop

// Manual is a Scheduler that only runs tasks when told to. Tests use it to
// step through deferred work one iteration at a time.
type Manual struct {
	queue []func()
}

var _ Scheduler = (*Manual)(nil)

func (m *Manual) Post(fn func()) {
	if fn != nil {
		m.queue = append(m.queue, fn)
	}
}

// Step runs the tasks queued before the call and returns how many ran.
func (m *Manual) Step() int {
	batch := m.queue
	m.queue = nil
	for _, fn := range batch {
		fn()
	}
	return len(batch)
}

// Flush steps until the queue is empty.
func (m *Manual) Flush() {
	for m.Step() > 0 {
	}
}

// Pending reports the number of queued tasks.
func (m *Manual) Pending() int {
	return len(m.queue)
}
