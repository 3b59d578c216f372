// Package metrics defines the Prometheus collectors for the lvacfs binding layer and the
// Recorder interface the engine reports through.
package metrics

// Recorder receives engine measurements. Operation names are the Op* constants.
type Recorder interface {
	// RecordOperation counts one outcome (a Status* constant) of operation.
	RecordOperation(operation, status string)
	// RecordDuration observes how long operation took, in seconds.
	RecordDuration(operation string, seconds float64)
	// RecordError counts a failure of operation by error category.
	RecordError(operation, errorType string)
}

// NoOpRecorder discards everything.
type NoOpRecorder struct{}

func NewNoOpRecorder() *NoOpRecorder { return &NoOpRecorder{} }

func (*NoOpRecorder) RecordOperation(string, string) {}
func (*NoOpRecorder) RecordDuration(string, float64) {}
func (*NoOpRecorder) RecordError(string, string)     {}
