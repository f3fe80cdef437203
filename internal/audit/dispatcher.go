package audit

import (
	"context"
	"sync"
	"sync/atomic"
)

// defaultQueueDepth bounds the in-flight queue when the caller does not
// size it. Client flows emit a handful of events per sign-in, so a small
// queue already rides out a slow sink.
const defaultQueueDepth = 64

// Config sizes the queue between the auth flow and the sink. DropIfFull
// sheds new events instead of stalling a sign-in behind a lagging sink.
type Config struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// Dispatcher keeps sink delivery off the auth call path: Emit enqueues and
// returns, a single forwarder goroutine drains the queue into the sink in
// emission order. A nil *Dispatcher is inert, so disabled auditing costs
// one nil check per event.
type Dispatcher struct {
	sink  Sink
	queue chan Event
	shed  bool

	quit     chan struct{}
	finished chan struct{}

	shutdown sync.Once
	stopping atomic.Bool
	dropped  atomic.Uint64
}

// NewDispatcher starts the forwarder goroutine. It returns nil when cfg
// disables auditing; a nil sink falls back to [NoOpSink].
func NewDispatcher(cfg Config, sink Sink) *Dispatcher {
	if !cfg.Enabled {
		return nil
	}
	if sink == nil {
		sink = NoOpSink{}
	}

	depth := cfg.BufferSize
	if depth <= 0 {
		depth = defaultQueueDepth
	}

	d := &Dispatcher{
		sink:     sink,
		queue:    make(chan Event, depth),
		shed:     cfg.DropIfFull,
		quit:     make(chan struct{}),
		finished: make(chan struct{}),
	}

	go d.forward()

	return d
}

func (d *Dispatcher) forward() {
	defer close(d.finished)

	for {
		select {
		case event := <-d.queue:
			d.sink.Emit(context.Background(), event)
		case <-d.quit:
			// Events accepted before shutdown still reach the sink.
			for {
				select {
				case event := <-d.queue:
					d.sink.Emit(context.Background(), event)
				default:
					return
				}
			}
		}
	}
}

// Emit hands event to the forwarder. After Close, and on a nil receiver,
// it is a no-op. With DropIfFull set a full queue increments the drop
// counter instead of blocking; otherwise Emit waits until the queue has
// room, ctx is done, or the dispatcher shuts down.
func (d *Dispatcher) Emit(ctx context.Context, event Event) {
	if d == nil || d.stopping.Load() {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}

	if d.shed {
		select {
		case d.queue <- event:
		case <-d.quit:
		default:
			d.dropped.Add(1)
		}
		return
	}

	select {
	case d.queue <- event:
	case <-ctx.Done():
	case <-d.quit:
	}
}

// Close stops accepting events, waits for the forwarder to deliver what
// was already queued, and returns. Safe to call more than once and on a
// nil receiver.
func (d *Dispatcher) Close() {
	if d == nil {
		return
	}
	d.shutdown.Do(func() {
		d.stopping.Store(true)
		close(d.quit)
		<-d.finished
	})
}

// Dropped reports how many events were shed because the queue was full.
func (d *Dispatcher) Dropped() uint64 {
	if d == nil {
		return 0
	}
	return d.dropped.Load()
}
