// Package events carries engine lifecycle events to external publishers.
package events

import (
	"context"
	"time"

	"github.com/tphakala/lvacfs-go/internal/logger"
	"github.com/tphakala/lvacfs-go/internal/lvacfs"
)

// LifecycleEvent is the published form of an engine lifecycle transition.
type LifecycleEvent struct {
	Kind     string    `json:"kind"`
	Time     time.Time `json:"time"`
	Node     string    `json:"node,omitempty"`
	StreamID string    `json:"stream_id,omitempty"`
	State    string    `json:"state"`
	Code     int32     `json:"code,omitempty"`
	Error    string    `json:"error,omitempty"`
}

// FromEngineEvent converts an engine event into its published form.
func FromEngineEvent(node string, ev lvacfs.Event) LifecycleEvent {
	out := LifecycleEvent{
		Kind:     string(ev.Kind),
		Time:     ev.Time.UTC(),
		Node:     node,
		StreamID: ev.StreamID,
		State:    ev.State.String(),
		Code:     ev.Code,
	}
	if ev.Err != nil {
		out.Error = ev.Err.Error()
	}
	return out
}

// Publisher delivers lifecycle events to an external system.
type Publisher interface {
	Name() string
	Publish(ctx context.Context, ev LifecycleEvent) error
	Close() error
}

// NopPublisher discards every event.
type NopPublisher struct{}

func (NopPublisher) Name() string                                  { return "nop" }
func (NopPublisher) Publish(context.Context, LifecycleEvent) error { return nil }
func (NopPublisher) Close() error                                  { return nil }

// GetLogger returns the events package logger.
func GetLogger() logger.Logger {
	return logger.Global().Module("events")
}
