package events

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/tphakala/lvacfs-go/internal/errors"
	"github.com/tphakala/lvacfs-go/internal/mqtt"
)

// MQTTPublisher publishes lifecycle events as JSON to <topic>/<kind>.
type MQTTPublisher struct {
	client mqtt.Client
	topic  string
}

// NewMQTTPublisher returns a publisher using an already created client.
func NewMQTTPublisher(client mqtt.Client, topic string) *MQTTPublisher {
	return &MQTTPublisher{client: client, topic: strings.TrimSuffix(topic, "/")}
}

// Name implements Publisher.
func (p *MQTTPublisher) Name() string { return "mqtt" }

// Topic returns the topic an event of the given kind is published to.
func (p *MQTTPublisher) Topic(kind string) string {
	return p.topic + "/" + kind
}

// Publish implements Publisher. A disconnected client gets one connect attempt per event.
func (p *MQTTPublisher) Publish(ctx context.Context, ev LifecycleEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return errors.New(err).
			Component("events").
			Category(errors.CategoryValidation).
			Operation("marshal-event").
			Build()
	}

	if !p.client.IsConnected() {
		if err := p.client.Connect(ctx); err != nil {
			return err
		}
	}
	return p.client.Publish(ctx, p.Topic(ev.Kind), payload)
}

// Close implements Publisher.
func (p *MQTTPublisher) Close() error {
	p.client.Disconnect()
	return nil
}
