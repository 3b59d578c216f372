// Package metrics provides constants used across metric definitions.
package metrics

import "time"

// Operation type constants used in switch statements across metrics.
const (
	// OpInit represents engine initialization attempts.
	OpInit = "init"
	// OpDeinit represents engine teardown.
	OpDeinit = "deinit"
	// OpSessionStart represents module instance creation for a stream.
	OpSessionStart = "session_start"
	// OpSessionStop represents module instance destruction for a stream.
	OpSessionStop = "session_stop"
	// OpProcess represents in-place buffer processing calls.
	OpProcess = "process"
	// OpControl represents zoom, angle, profile, direction and orientation updates.
	OpControl = "control"
	// OpVersions represents module version queries.
	OpVersions = "versions"
)

// Status label values.
const (
	// StatusSuccess marks a completed operation.
	StatusSuccess = "success"
	// StatusError marks a failed operation.
	StatusError = "error"
	// StatusInert marks an init attempt that left the engine inert.
	StatusInert = "inert"
	// StatusSkipped marks an operation rejected before reaching the module.
	StatusSkipped = "skipped"
)

// Histogram bucket configuration constants.
const (
	// BucketStart10us is the starting bucket for process-call histograms (10us to ~80ms range).
	BucketStart10us = 0.00001
	// BucketStart1ms is the starting bucket for 1ms histograms (1ms to ~1s range).
	BucketStart1ms = 0.001
	// BucketFactor2 is the common exponential growth factor of 2 for histogram buckets.
	BucketFactor2 = 2
	// BucketCount10 defines 10 exponential buckets.
	BucketCount10 = 10
	// BucketCount14 defines 14 exponential buckets.
	BucketCount14 = 14
)

// ShutdownTimeout is the timeout for graceful shutdown of the metrics server.
const ShutdownTimeout = 5 * time.Second
