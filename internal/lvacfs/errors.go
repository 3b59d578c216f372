package lvacfs

import (
	"fmt"

	"github.com/tphakala/lvacfs-go/internal/errors"
)

const componentName = "lvacfs"

// Sentinel errors returned by the engine. Callers match them with errors.Is.
var (
	// ErrPathNotFound means none of the candidate locations exist.
	ErrPathNotFound = errors.NewStd("no candidate path exists")
	// ErrModuleNotFound means the module binary does not exist at a candidate location.
	ErrModuleNotFound = errors.NewStd("module binary not found")
	// ErrModuleNotLoadable means the module binary exists but the dynamic loader rejected it.
	ErrModuleNotLoadable = errors.NewStd("module binary not loadable")
	// ErrCapabilityIncomplete means at least one required entry point did not resolve.
	ErrCapabilityIncomplete = errors.NewStd("module capability table incomplete")
	// ErrUnsupportedPlatform means dynamic loading is unavailable on this platform.
	ErrUnsupportedPlatform = errors.NewStd("dynamic module loading not supported on this platform")

	// ErrAlreadyInitialized is returned by Init outside the uninitialized state.
	ErrAlreadyInitialized = errors.NewStd("engine already initialized")
	// ErrNotReady is returned by per-stream operations while the engine is not ready.
	ErrNotReady = errors.NewStd("engine not ready")
	// ErrNoSession is returned when a stream has no module instance.
	ErrNoSession = errors.NewStd("stream has no active session")
	// ErrSessionActive is returned when starting a stream that already holds an instance.
	ErrSessionActive = errors.NewStd("stream session already active")
	// ErrInvalidBuffer is returned for buffers that violate the frame layout. The module is not called.
	ErrInvalidBuffer = errors.NewStd("invalid buffer")

	// ErrInstanceCreate is returned when the module rejects the stream parameters.
	ErrInstanceCreate = errors.NewStd("module instance creation failed")
	// ErrProcess is returned when the module rejects a buffer. The session has been torn down.
	ErrProcess = errors.NewStd("module processing failed")
	// ErrControl is returned when the module rejects a control update. The session is kept.
	ErrControl = errors.NewStd("module control update failed")
)

// ReturnCodeError carries the negative return code of a module call.
type ReturnCodeError struct {
	Op   string
	Code int32
	kind error
}

func (e *ReturnCodeError) Error() string {
	return fmt.Sprintf("%s: %s returned %d", e.kind, e.Op, e.Code)
}

// Unwrap exposes the sentinel for errors.Is.
func (e *ReturnCodeError) Unwrap() error {
	return e.kind
}

// newCodeError wraps a negative module return code into a categorized error.
func newCodeError(kind error, category errors.ErrorCategory, op string, code int32, kv ...any) error {
	b := errors.New(&ReturnCodeError{Op: op, Code: code, kind: kind}).
		Component(componentName).
		Category(category).
		Operation(op).
		Code(code)
	return withPairs(b, kv).Build()
}

func newStateError(kind error, op string) error {
	return errors.New(fmt.Errorf("%s: %w", op, kind)).
		Component(componentName).
		Category(errors.CategoryState).
		Operation(op).
		Build()
}

func newInvalidBuffer(msg string, kv ...any) error {
	b := errors.New(fmt.Errorf("%w: %s", ErrInvalidBuffer, msg)).
		Component(componentName).
		Category(errors.CategoryValidation).
		Operation("process")
	return withPairs(b, kv).Build()
}

func withPairs(b *errors.ErrorBuilder, kv []any) *errors.ErrorBuilder {
	for i := 0; i+1 < len(kv); i += 2 {
		if key, ok := kv[i].(string); ok {
			b = b.Context(key, kv[i+1])
		}
	}
	return b
}

// errorType reduces an error to a metrics label.
func errorType(err error) string {
	var ee *errors.EnhancedError
	if errors.As(err, &ee) {
		return string(ee.Category)
	}
	return string(errors.CategoryGeneric)
}
