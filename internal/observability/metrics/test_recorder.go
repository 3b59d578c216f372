package metrics

import (
	"slices"
	"sync"
)

type recordKey struct {
	operation string
	label     string
}

// TestRecorder keeps every recorded value in memory for assertions.
type TestRecorder struct {
	mu         sync.Mutex
	operations map[recordKey]int
	errors     map[recordKey]int
	durations  map[string][]float64
}

func NewTestRecorder() *TestRecorder {
	return &TestRecorder{
		operations: make(map[recordKey]int),
		errors:     make(map[recordKey]int),
		durations:  make(map[string][]float64),
	}
}

func (r *TestRecorder) RecordOperation(operation, status string) {
	r.mu.Lock()
	r.operations[recordKey{operation, status}]++
	r.mu.Unlock()
}

func (r *TestRecorder) RecordDuration(operation string, seconds float64) {
	r.mu.Lock()
	r.durations[operation] = append(r.durations[operation], seconds)
	r.mu.Unlock()
}

func (r *TestRecorder) RecordError(operation, errorType string) {
	r.mu.Lock()
	r.errors[recordKey{operation, errorType}]++
	r.mu.Unlock()
}

// GetOperationCount returns how often operation ended with status.
func (r *TestRecorder) GetOperationCount(operation, status string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.operations[recordKey{operation, status}]
}

// GetErrorCount returns how often operation failed with errorType.
func (r *TestRecorder) GetErrorCount(operation, errorType string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.errors[recordKey{operation, errorType}]
}

// GetDurations returns a copy of the durations observed for operation.
func (r *TestRecorder) GetDurations(operation string) []float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.durations[operation])
}
