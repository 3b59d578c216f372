package events

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/lvacfs-go/internal/errors"
	"github.com/tphakala/lvacfs-go/internal/lvacfs"
)

// recordingPublisher collects delivered events.
type recordingPublisher struct {
	mu     sync.Mutex
	events []LifecycleEvent
	err    error
	panics bool
	gate   chan struct{}
	closed bool
}

func (p *recordingPublisher) Name() string { return "recording" }

func (p *recordingPublisher) Publish(ctx context.Context, ev LifecycleEvent) error {
	if p.gate != nil {
		select {
		case <-p.gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if p.panics {
		panic("boom")
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

func (p *recordingPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}

func (p *recordingPublisher) kinds() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, ev := range p.events {
		out = append(out, ev.Kind)
	}
	return out
}

func TestBusDeliversInOrder(t *testing.T) {
	t.Parallel()

	pub := &recordingPublisher{}
	bus := NewBus(Config{Node: "cam-node"}, pub)

	bus.Observe(lvacfs.Event{Kind: lvacfs.EventEngineReady, State: lvacfs.StateReady})
	bus.Observe(lvacfs.Event{Kind: lvacfs.EventSessionStarted, StreamID: "s1", State: lvacfs.StateReady})
	bus.Observe(lvacfs.Event{
		Kind:     lvacfs.EventSessionFailed,
		StreamID: "s1",
		State:    lvacfs.StateReady,
		Code:     -5,
		Err:      errors.NewStd("process failed"),
	})

	require.NoError(t, bus.Shutdown(time.Second))

	assert.Equal(t, []string{"engine_ready", "session_started", "session_failed"}, pub.kinds())
	assert.True(t, pub.closed)

	last := pub.events[2]
	assert.Equal(t, "cam-node", last.Node)
	assert.Equal(t, "s1", last.StreamID)
	assert.Equal(t, "ready", last.State)
	assert.Equal(t, int32(-5), last.Code)
	assert.Equal(t, "process failed", last.Error)

	stats := bus.Stats()
	assert.Equal(t, uint64(3), stats.EventsReceived)
	assert.Equal(t, uint64(3), stats.EventsPublished)
	assert.Zero(t, stats.EventsDropped)
}

func TestBusDropsWhenFull(t *testing.T) {
	t.Parallel()

	pub := &recordingPublisher{gate: make(chan struct{})}
	bus := NewBus(Config{BufferSize: 1}, pub)

	// The worker takes the first event and blocks in the publisher; the second fills
	// the buffer; the rest are dropped.
	accepted := 0
	for range 10 {
		if bus.TryPublish(LifecycleEvent{Kind: "session_started"}) {
			accepted++
		}
	}
	assert.GreaterOrEqual(t, accepted, 1)
	assert.LessOrEqual(t, accepted, 2)
	assert.Equal(t, uint64(10-accepted), bus.Stats().EventsDropped)

	close(pub.gate)
	require.NoError(t, bus.Shutdown(time.Second))
	assert.Len(t, pub.kinds(), accepted)
}

func TestBusCountsPublisherFailures(t *testing.T) {
	t.Parallel()

	failing := &recordingPublisher{err: errors.NewStd("broker down")}
	panicking := &recordingPublisher{panics: true}
	healthy := &recordingPublisher{}
	bus := NewBus(Config{}, failing, panicking, healthy)

	bus.TryPublish(LifecycleEvent{Kind: "engine_inert"})
	require.NoError(t, bus.Shutdown(time.Second))

	stats := bus.Stats()
	assert.Equal(t, uint64(2), stats.PublishErrors)
	assert.Equal(t, uint64(1), stats.EventsPublished)
	assert.Equal(t, []string{"engine_inert"}, healthy.kinds(), "a failing publisher does not block the others")
}

func TestBusRejectsAfterShutdown(t *testing.T) {
	t.Parallel()

	bus := NewBus(Config{}, NopPublisher{})
	require.NoError(t, bus.Shutdown(time.Second))
	require.NoError(t, bus.Shutdown(time.Second), "shutdown is idempotent")

	assert.False(t, bus.TryPublish(LifecycleEvent{Kind: "engine_deinit"}))
	bus.Observe(lvacfs.Event{Kind: lvacfs.EventEngineDeinit})
}

func TestBusShutdownTimeout(t *testing.T) {
	t.Parallel()

	pub := &recordingPublisher{gate: make(chan struct{})}
	bus := NewBus(Config{PublishTimeout: time.Minute}, pub)
	require.True(t, bus.TryPublish(LifecycleEvent{Kind: "session_stopped"}))

	err := bus.Shutdown(20 * time.Millisecond)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timeout")
	assert.True(t, errors.IsCategory(err, errors.CategorySystem))

	var ee *errors.EnhancedError
	require.True(t, errors.As(err, &ee))
	assert.Equal(t, "events", ee.Component)
	assert.Equal(t, "shutdown", ee.GetContext()["operation"])
	assert.Equal(t, int64(20), ee.GetContext()["duration_ms"])
	assert.Empty(t, pub.kinds())
}

func TestLifecycleEventJSON(t *testing.T) {
	t.Parallel()

	ev := FromEngineEvent("n1", lvacfs.Event{
		Kind:  lvacfs.EventEngineInert,
		Time:  time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		State: lvacfs.StateInert,
	})
	data, err := json.Marshal(ev)
	require.NoError(t, err)
	assert.JSONEq(t, `{"kind":"engine_inert","time":"2026-01-02T03:04:05Z","node":"n1","state":"inert"}`, string(data))
}
