package lvacfs

import "time"

// EventKind names a lifecycle transition.
type EventKind string

// Lifecycle transitions reported to observers.
const (
	EventEngineReady     EventKind = "engine_ready"
	EventEngineInert     EventKind = "engine_inert"
	EventEngineDeinit    EventKind = "engine_deinit"
	EventSessionStarted  EventKind = "session_started"
	EventSessionStopped  EventKind = "session_stopped"
	EventSessionFailed   EventKind = "session_failed"
	EventControlRejected EventKind = "control_rejected"
)

// Event describes one lifecycle transition.
type Event struct {
	Kind     EventKind
	Time     time.Time
	StreamID string
	State    State
	// Code is the module return code for failures reported by the module.
	Code int32
	Err  error
}

// Observer receives lifecycle events. Observe is called synchronously from engine
// operations, some of them on the audio thread, and must not block.
type Observer interface {
	Observe(Event)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(Event)

// Observe calls f(ev).
func (f ObserverFunc) Observe(ev Event) {
	f(ev)
}

type nopObserver struct{}

func (nopObserver) Observe(Event) {}
