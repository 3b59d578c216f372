package events

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/lvacfs-go/internal/errors"
)

// fakeClient implements mqtt.Client in memory.
type fakeClient struct {
	mu         sync.Mutex
	connected  bool
	connectErr error
	connects   int
	topics     []string
	payloads   [][]byte
}

func (c *fakeClient) Connect(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.connects++
	if c.connectErr != nil {
		return c.connectErr
	}
	c.connected = true
	return nil
}

func (c *fakeClient) Publish(_ context.Context, topic string, payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.topics = append(c.topics, topic)
	c.payloads = append(c.payloads, payload)
	return nil
}

func (c *fakeClient) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

func (c *fakeClient) Disconnect() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.connected = false
}

func TestMQTTPublisherTopicAndPayload(t *testing.T) {
	t.Parallel()

	client := &fakeClient{}
	pub := NewMQTTPublisher(client, "devices/cam0/")

	require.NoError(t, pub.Publish(context.Background(), LifecycleEvent{Kind: "session_started", StreamID: "s1", State: "ready"}))
	require.NoError(t, pub.Publish(context.Background(), LifecycleEvent{Kind: "session_stopped", StreamID: "s1", State: "ready"}))

	assert.Equal(t, 1, client.connects, "connects lazily once")
	assert.Equal(t, []string{"devices/cam0/session_started", "devices/cam0/session_stopped"}, client.topics)

	var got LifecycleEvent
	require.NoError(t, json.Unmarshal(client.payloads[0], &got))
	assert.Equal(t, "s1", got.StreamID)

	require.NoError(t, pub.Close())
	assert.False(t, client.IsConnected())
}

func TestMQTTPublisherConnectFailure(t *testing.T) {
	t.Parallel()

	client := &fakeClient{connectErr: errors.NewStd("refused")}
	pub := NewMQTTPublisher(client, "lvacfs")

	require.Error(t, pub.Publish(context.Background(), LifecycleEvent{Kind: "engine_ready"}))
	assert.Empty(t, client.topics)
}

func TestMQTTPublisherThroughBus(t *testing.T) {
	t.Parallel()

	client := &fakeClient{}
	bus := NewBus(Config{}, NewMQTTPublisher(client, "lvacfs"))
	bus.TryPublish(LifecycleEvent{Kind: "engine_ready"})
	require.NoError(t, bus.Shutdown(DefaultConfig().PublishTimeout))

	assert.Equal(t, []string{"lvacfs/engine_ready"}, client.topics)
	assert.False(t, client.IsConnected(), "bus shutdown closes the publisher")
}
