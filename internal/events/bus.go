package events

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tphakala/lvacfs-go/internal/errors"
	"github.com/tphakala/lvacfs-go/internal/logger"
	"github.com/tphakala/lvacfs-go/internal/lvacfs"
)

// Config holds bus configuration.
type Config struct {
	BufferSize     int
	PublishTimeout time.Duration
	// Node identifies this process in published events.
	Node string
}

// DefaultConfig returns the default bus configuration.
func DefaultConfig() Config {
	return Config{
		BufferSize:     256,
		PublishTimeout: 5 * time.Second,
	}
}

// Stats counts bus activity.
type Stats struct {
	EventsReceived  uint64 `json:"events_received"`
	EventsPublished uint64 `json:"events_published"`
	EventsDropped   uint64 `json:"events_dropped"`
	PublishErrors   uint64 `json:"publish_errors"`
}

// Bus forwards engine events to publishers without blocking the caller. Events are
// delivered in order by a single worker; when the buffer is full new events are dropped.
type Bus struct {
	cfg        Config
	publishers []Publisher
	eventChan  chan LifecycleEvent

	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	running atomic.Bool
	// sendMu keeps TryPublish from racing the channel close in Shutdown.
	sendMu sync.RWMutex

	received  atomic.Uint64
	published atomic.Uint64
	dropped   atomic.Uint64
	failed    atomic.Uint64

	log logger.Logger
}

// NewBus creates a bus delivering to publishers and starts its worker.
func NewBus(cfg Config, publishers ...Publisher) *Bus {
	def := DefaultConfig()
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = def.BufferSize
	}
	if cfg.PublishTimeout <= 0 {
		cfg.PublishTimeout = def.PublishTimeout
	}

	ctx, cancel := context.WithCancel(context.Background())
	b := &Bus{
		cfg:        cfg,
		publishers: publishers,
		eventChan:  make(chan LifecycleEvent, cfg.BufferSize),
		ctx:        ctx,
		cancel:     cancel,
		log:        GetLogger(),
	}
	b.running.Store(true)

	b.wg.Add(1)
	go b.worker()

	b.log.Info("event bus started",
		logger.Int("buffer_size", cfg.BufferSize),
		logger.Int("publishers", len(publishers)))
	return b
}

// Observe implements lvacfs.Observer.
func (b *Bus) Observe(ev lvacfs.Event) {
	b.TryPublish(FromEngineEvent(b.cfg.Node, ev))
}

// TryPublish queues an event without blocking.
// Returns true if the event was accepted, false if dropped.
func (b *Bus) TryPublish(ev LifecycleEvent) bool {
	b.sendMu.RLock()
	defer b.sendMu.RUnlock()

	if !b.running.Load() {
		return false
	}

	select {
	case b.eventChan <- ev:
		b.received.Add(1)
		return true
	default:
		b.dropped.Add(1)
		b.log.Debug("event dropped due to full buffer", logger.String("kind", ev.Kind))
		return false
	}
}

func (b *Bus) worker() {
	defer b.wg.Done()

	for ev := range b.eventChan {
		b.deliver(ev)
	}
}

func (b *Bus) deliver(ev LifecycleEvent) {
	for _, p := range b.publishers {
		func() {
			defer func() {
				if r := recover(); r != nil {
					b.failed.Add(1)
					b.log.Error("publisher panicked",
						logger.String("publisher", p.Name()),
						logger.Any("panic", r),
						logger.String("kind", ev.Kind))
				}
			}()

			ctx, cancel := context.WithTimeout(b.ctx, b.cfg.PublishTimeout)
			defer cancel()

			if err := p.Publish(ctx, ev); err != nil {
				b.failed.Add(1)
				b.log.Warn("publish failed",
					logger.String("publisher", p.Name()),
					logger.String("kind", ev.Kind),
					logger.Error(err))
				return
			}
			b.published.Add(1)
		}()
	}
}

// Shutdown stops accepting events, drains what is queued and closes the publishers.
// Queued events still pending when the timeout expires are abandoned.
func (b *Bus) Shutdown(timeout time.Duration) error {
	b.sendMu.Lock()
	if !b.running.Swap(false) {
		b.sendMu.Unlock()
		return nil
	}
	close(b.eventChan)
	b.sendMu.Unlock()

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	var err error
	select {
	case <-done:
	case <-time.After(timeout):
		b.cancel()
		<-done
		err = errors.Newf("event bus shutdown timeout exceeded").
			Component("events").
			Category(errors.CategorySystem).
			Timing("shutdown", timeout).
			Build()
	}
	b.cancel()

	for _, p := range b.publishers {
		if cerr := p.Close(); cerr != nil {
			b.log.Warn("publisher close failed", logger.String("publisher", p.Name()), logger.Error(cerr))
			err = errors.Join(err, cerr)
		}
	}
	b.log.Info("event bus stopped", logger.Uint64("published", b.published.Load()))
	return err
}

// Stats returns current bus statistics.
func (b *Bus) Stats() Stats {
	return Stats{
		EventsReceived:  b.received.Load(),
		EventsPublished: b.published.Load(),
		EventsDropped:   b.dropped.Load(),
		PublishErrors:   b.failed.Load(),
	}
}
