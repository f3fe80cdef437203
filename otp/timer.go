package otp

import (
	"sync"
	"time"
)

// DefaultTickInterval is an exported constant or variable used by the verification timer.
const DefaultTickInterval = time.Second

// Event is a single countdown emission. Non-terminal events carry
// SecondsRemaining; the terminal event has Finished set and is always last.
type Event struct {
	SecondsRemaining int
	Finished         bool
}

// Timer defines a public type used by goAuthClient APIs.
//
// Timer is a single-flight countdown producer: at most one run is live at a
// time, and starting a new run guarantees the previous one emits nothing
// further.
type Timer struct {
	interval time.Duration

	mu      sync.Mutex
	stop    chan struct{}
	events  chan Event
	running bool
}

// NewTimer creates a [Timer] with the default one-second tick interval.
//
// NewTimer does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewTimer() *Timer {
	return NewTimerWithInterval(DefaultTickInterval)
}

// NewTimerWithInterval creates a [Timer] with a custom tick interval.
// Intended for tests; production callers use [NewTimer].
func NewTimerWithInterval(interval time.Duration) *Timer {
	if interval <= 0 {
		interval = DefaultTickInterval
	}
	return &Timer{interval: interval}
}

// Start begins a countdown of durationSeconds ticks. Any in-flight countdown
// is cancelled first and its stream closed without further events. The
// returned channel receives one tick per interval (SecondsRemaining counting
// down to 1), then a single finished event, and is then closed.
//
// Start does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (t *Timer) Start(durationSeconds int) <-chan Event {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.stop != nil {
		close(t.stop)
		t.absorbPendingLocked()
	}

	stop := make(chan struct{})
	events := make(chan Event)
	t.stop = stop
	t.events = events
	t.running = true

	go t.run(durationSeconds, events, stop)

	return events
}

// Stop cancels the active countdown, if any. Idempotent.
//
// Stop does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (t *Timer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.stop != nil {
		close(t.stop)
		t.absorbPendingLocked()
		t.stop = nil
	}
	t.running = false
}

// absorbPendingLocked consumes the one emission a cancelled run may already
// have committed to its stream, so the superseded channel closes without
// delivering anything further.
func (t *Timer) absorbPendingLocked() {
	select {
	case <-t.events:
	default:
	}
}

// Running reports whether a countdown is currently live.
//
// Running does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (t *Timer) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.running
}

func (t *Timer) run(durationSeconds int, events chan<- Event, stop chan struct{}) {
	defer close(events)

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for remaining := durationSeconds; remaining >= 1; remaining-- {
		// A cancellation that completed before this point must win over a
		// receiver that arrived at the same time.
		select {
		case <-stop:
			return
		default:
		}

		select {
		case events <- Event{SecondsRemaining: remaining}:
		case <-stop:
			return
		}

		select {
		case <-ticker.C:
		case <-stop:
			return
		}
	}

	// Mark finished before emitting the terminal event so callers observing
	// Running() == false are guaranteed to also receive it. The stop channel
	// stays registered so Stop or a later Start can release a terminal send
	// that never found a reader.
	t.mu.Lock()
	if t.stop == stop {
		t.running = false
	}
	t.mu.Unlock()

	select {
	case <-stop:
		return
	default:
	}

	select {
	case events <- Event{Finished: true}:
	case <-stop:
	}
}
