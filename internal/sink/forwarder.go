package sink

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"codeberg.org/mutker/ventsim/internal/eventlog"
	"codeberg.org/mutker/ventsim/internal/logger"
	"codeberg.org/mutker/ventsim/internal/simulator"
)

type item struct {
	reading *simulator.Reading
	entry   *eventlog.Entry
}

// Forwarder hands readings and event log entries to the configured sinks
// on its own goroutine. Items arriving while the queue is full are dropped.
type Forwarder struct {
	exporters  []SampleExporter
	publishers []EventPublisher
	log        logger.Logger
	timeout    time.Duration
	queue      chan item
	dropped    atomic.Uint64

	mu      sync.RWMutex
	closed  bool
	started bool
	done    chan struct{}
}

type ForwarderOption func(*Forwarder)

func WithQueueSize(n int) ForwarderOption {
	return func(f *Forwarder) {
		if n > 0 {
			f.queue = make(chan item, n)
		}
	}
}

func WithTimeout(d time.Duration) ForwarderOption {
	return func(f *Forwarder) {
		if d > 0 {
			f.timeout = d
		}
	}
}

func NewForwarder(exporters []SampleExporter, publishers []EventPublisher, log logger.Logger, opts ...ForwarderOption) *Forwarder {
	f := &Forwarder{
		exporters:  exporters,
		publishers: publishers,
		log:        log,
		timeout:    defaultWriteTimeout,
		queue:      make(chan item, defaultQueueSize),
		done:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(f)
	}

	return f
}

// Start launches the delivery loop; it is a no-op when called twice
func (f *Forwarder) Start() {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.started || f.closed {
		return
	}
	f.started = true
	go f.run()
}

// Reading queues a reading for the sample exporters
func (f *Forwarder) Reading(r simulator.Reading) {
	if len(f.exporters) == 0 {
		return
	}
	f.enqueue(item{reading: &r})
}

// Event queues an entry for the event publishers
func (f *Forwarder) Event(e eventlog.Entry) {
	if len(f.publishers) == 0 {
		return
	}
	f.enqueue(item{entry: &e})
}

// Dropped reports how many items were discarded because the queue was full
func (f *Forwarder) Dropped() uint64 {
	return f.dropped.Load()
}

func (f *Forwarder) enqueue(it item) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.closed {
		return
	}

	select {
	case f.queue <- it:
	default:
		if f.dropped.Add(1) == 1 {
			f.log.Warn().Int("queue_size", cap(f.queue)).Msg("Sink queue full, dropping items")
		}
	}
}

func (f *Forwarder) run() {
	defer close(f.done)

	for it := range f.queue {
		f.deliver(it)
	}
}

func (f *Forwarder) deliver(it item) {
	ctx, cancel := context.WithTimeout(context.Background(), f.timeout)
	defer cancel()

	switch {
	case it.reading != nil:
		for _, x := range f.exporters {
			if err := x.Export(ctx, *it.reading); err != nil {
				f.log.Debug().Err(err).Str("fan", it.reading.FanID).Msg("Sample export failed")
			}
		}
	case it.entry != nil:
		for _, p := range f.publishers {
			if err := p.Publish(ctx, *it.entry); err != nil {
				f.log.Warn().Err(err).Str("fan", it.entry.FanID).Msg("Event publish failed")
			}
		}
	}
}

// Close delivers what is queued, then closes every sink
func (f *Forwarder) Close() error {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return nil
	}
	f.closed = true
	close(f.queue)
	started := f.started
	f.mu.Unlock()

	if started {
		<-f.done
	} else {
		for it := range f.queue {
			f.deliver(it)
		}
	}

	var firstErr error
	for _, x := range f.exporters {
		if err := x.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	for _, p := range f.publishers {
		if err := p.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	return firstErr
}
