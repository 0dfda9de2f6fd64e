package audit

import (
	"context"
	"maps"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// unknownType keys drops of events that carry no EventType.
const unknownType = "unknown"

// Config controls dispatcher buffering and shutdown.
type Config struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
	// DrainTimeout bounds how long Close waits for queued events. Zero waits
	// for all of them.
	DrainTimeout time.Duration
	Logger       *zap.Logger
}

// Dispatcher hands events to a sink from one goroutine so that request paths
// never wait on audit I/O. Events it cannot deliver are counted per event
// type. A nil *Dispatcher is valid and drops everything silently.
type Dispatcher struct {
	cfg    Config
	sink   Sink
	logger *zap.Logger
	queue  chan Event

	ctx     context.Context
	abandon context.CancelFunc
	quit    chan struct{}
	done    chan struct{}
	closing sync.Once
	closed  atomic.Bool

	delivered atomic.Uint64
	dropped   atomic.Uint64
	mu        sync.Mutex
	drops     map[string]uint64
}

// NewDispatcher starts a dispatcher, or returns nil when cfg is disabled.
func NewDispatcher(cfg Config, sink Sink) *Dispatcher {
	if !cfg.Enabled {
		return nil
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 1
	}
	if sink == nil {
		sink = NoOpSink{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	ctx, cancel := context.WithCancel(context.Background())
	d := &Dispatcher{
		cfg:     cfg,
		sink:    sink,
		logger:  logger,
		queue:   make(chan Event, cfg.BufferSize),
		ctx:     ctx,
		abandon: cancel,
		quit:    make(chan struct{}),
		done:    make(chan struct{}),
		drops:   make(map[string]uint64),
	}
	go d.run()
	return d
}

func (d *Dispatcher) run() {
	defer close(d.done)
	for {
		select {
		case event := <-d.queue:
			d.deliver(event)
		case <-d.quit:
			d.flush()
			return
		}
	}
}

// flush empties the queue after Close. Once the drain deadline has passed the
// remainder is discarded and counted as dropped.
func (d *Dispatcher) flush() {
	for {
		select {
		case event := <-d.queue:
			d.deliver(event)
		default:
			return
		}
	}
}

func (d *Dispatcher) deliver(event Event) {
	if d.ctx.Err() != nil {
		d.recordDrop(event.EventType)
		return
	}
	d.sink.Emit(d.ctx, event)
	d.delivered.Add(1)
}

func (d *Dispatcher) recordDrop(eventType string) {
	if eventType == "" {
		eventType = unknownType
	}
	d.mu.Lock()
	d.drops[eventType]++
	d.mu.Unlock()
	d.dropped.Add(1)
}

// Emit queues event. With DropIfFull it never blocks and a full buffer costs
// the event; otherwise it waits for space, ctx cancellation or Close, and a
// cancelled ctx is counted as a drop too.
func (d *Dispatcher) Emit(ctx context.Context, event Event) {
	if d == nil || d.closed.Load() {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}

	if d.cfg.DropIfFull {
		select {
		case d.queue <- event:
		case <-d.quit:
		default:
			d.recordDrop(event.EventType)
		}
		return
	}

	select {
	case d.queue <- event:
	case <-ctx.Done():
		d.recordDrop(event.EventType)
	case <-d.quit:
	}
}

// Close stops accepting events and flushes the queue, waiting at most
// DrainTimeout. It logs a summary of delivered and dropped events.
func (d *Dispatcher) Close() {
	if d == nil {
		return
	}
	d.closing.Do(func() {
		d.closed.Store(true)
		close(d.quit)

		if d.cfg.DrainTimeout <= 0 {
			<-d.done
			d.abandon()
			d.logSummary()
			return
		}

		timer := time.NewTimer(d.cfg.DrainTimeout)
		defer timer.Stop()
		select {
		case <-d.done:
			d.abandon()
			d.logSummary()
		case <-timer.C:
			d.abandon()
			d.logger.Warn("audit drain timed out",
				zap.Duration("timeout", d.cfg.DrainTimeout),
				zap.Int("pending", len(d.queue)),
				zap.Uint64("delivered", d.delivered.Load()),
			)
		}
	})
}

func (d *Dispatcher) logSummary() {
	dropped := d.dropped.Load()
	fields := []zap.Field{
		zap.Uint64("delivered", d.delivered.Load()),
		zap.Uint64("dropped", dropped),
	}
	if dropped == 0 {
		d.logger.Info("audit dispatcher closed", fields...)
		return
	}
	d.logger.Warn("audit dispatcher closed with drops", append(fields, zap.Any("dropped_by_type", d.DroppedByType()))...)
}

// Dropped reports the total number of events that never reached the sink.
func (d *Dispatcher) Dropped() uint64 {
	if d == nil {
		return 0
	}
	return d.dropped.Load()
}

// DroppedByType returns a copy of the drop counters keyed by event type.
func (d *Dispatcher) DroppedByType() map[string]uint64 {
	if d == nil {
		return map[string]uint64{}
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return maps.Clone(d.drops)
}

// Delivered reports how many events were handed to the sink.
func (d *Dispatcher) Delivered() uint64 {
	if d == nil {
		return 0
	}
	return d.delivered.Load()
}
