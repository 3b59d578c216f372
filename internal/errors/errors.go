// Package errors provides categorized errors with optional telemetry reporting. It also
// re-exports the standard library helpers so callers import a single errors package.
package errors

import (
	"fmt"
	"maps"
	"strings"
	"sync/atomic"
	"time"
)

// ErrorCategory groups errors for logs, metrics labels and reports.
type ErrorCategory string

const (
	CategoryConfiguration   ErrorCategory = "configuration"
	CategoryModuleLoad      ErrorCategory = "module-load"
	CategoryCapability      ErrorCategory = "capability-incomplete"
	CategoryInstanceCreate  ErrorCategory = "instance-create"
	CategoryProcessing      ErrorCategory = "processing"
	CategoryInstanceDestroy ErrorCategory = "instance-destroy"
	CategoryControl         ErrorCategory = "module-control"
	CategoryState           ErrorCategory = "state"
	CategoryValidation      ErrorCategory = "validation"
	CategoryNotFound        ErrorCategory = "not-found"
	CategoryAudioSource     ErrorCategory = "audio-source"
	CategoryFileIO          ErrorCategory = "file-io"
	CategoryNetwork         ErrorCategory = "network"
	CategorySystem          ErrorCategory = "system-resource"
	CategoryGeneric         ErrorCategory = "generic"
)

// CategorizedError is implemented by errors that know their own category. Build uses it
// when no category was set explicitly.
type CategorizedError interface {
	error
	ErrorCategory() ErrorCategory
}

// ComponentUnknown is used when no component was given.
const ComponentUnknown = "unknown"

// EnhancedError is an error with a component, a category and context. It is immutable
// once built.
type EnhancedError struct {
	Err       error
	Component string
	Category  ErrorCategory
	Context   map[string]any
	Timestamp time.Time

	reported atomic.Bool
}

func (ee *EnhancedError) Error() string {
	if ee.Err == nil {
		return string(ee.Category)
	}
	return ee.Err.Error()
}

func (ee *EnhancedError) Unwrap() error {
	return ee.Err
}

// Is matches another EnhancedError by category, otherwise defers to the wrapped error.
func (ee *EnhancedError) Is(target error) bool {
	if other, ok := target.(*EnhancedError); ok {
		return ee.Category == other.Category
	}
	return Is(ee.Err, target)
}

// ErrorCategory implements CategorizedError.
func (ee *EnhancedError) ErrorCategory() ErrorCategory {
	return ee.Category
}

// GetContext returns a copy of the context.
func (ee *EnhancedError) GetContext() map[string]any {
	if ee.Context == nil {
		return nil
	}
	return maps.Clone(ee.Context)
}

// MarkReported records that the error was sent to telemetry.
func (ee *EnhancedError) MarkReported() {
	ee.reported.Store(true)
}

// IsReported reports whether MarkReported was called.
func (ee *EnhancedError) IsReported() bool {
	return ee.reported.Load()
}

// ErrorBuilder assembles an EnhancedError.
type ErrorBuilder struct {
	err       error
	component string
	category  ErrorCategory
	context   map[string]any
}

// New starts an error wrapping err.
func New(err error) *ErrorBuilder {
	return &ErrorBuilder{err: err}
}

// Newf starts an error with a formatted message.
func Newf(format string, args ...any) *ErrorBuilder {
	return New(fmt.Errorf(format, args...))
}

func (eb *ErrorBuilder) Component(component string) *ErrorBuilder {
	eb.component = component
	return eb
}

func (eb *ErrorBuilder) Category(category ErrorCategory) *ErrorBuilder {
	eb.category = category
	return eb
}

// Context adds one key/value pair.
func (eb *ErrorBuilder) Context(key string, value any) *ErrorBuilder {
	if eb.context == nil {
		eb.context = make(map[string]any)
	}
	eb.context[key] = value
	return eb
}

// Operation names the step that failed.
func (eb *ErrorBuilder) Operation(op string) *ErrorBuilder {
	return eb.Context("operation", op)
}

// Stream names the capture stream the error belongs to.
func (eb *ErrorBuilder) Stream(id string) *ErrorBuilder {
	return eb.Context("stream_id", id)
}

// Code records a native module return code.
func (eb *ErrorBuilder) Code(code int32) *ErrorBuilder {
	return eb.Context("code", code)
}

// Timing records the operation and how long it ran or was allowed to run.
func (eb *ErrorBuilder) Timing(op string, d time.Duration) *ErrorBuilder {
	return eb.Operation(op).Context("duration_ms", d.Milliseconds())
}

// ModuleContext records which partition the module binary came from. The full path is
// not kept.
func (eb *ErrorBuilder) ModuleContext(libraryPath string) *ErrorBuilder {
	if libraryPath != "" {
		eb.Context("module_partition", partitionOf(libraryPath))
	}
	return eb
}

// Build returns the error and hands it to the telemetry reporter when one is active.
func (eb *ErrorBuilder) Build() *EnhancedError {
	ee := &EnhancedError{
		Err:       eb.err,
		Component: eb.component,
		Category:  eb.category,
		Context:   eb.context,
		Timestamp: time.Now(),
	}
	if ee.Component == "" {
		ee.Component = ComponentUnknown
	}
	if ee.Category == "" {
		ee.Category = CategoryGeneric
		var ce CategorizedError
		if eb.err != nil && As(eb.err, &ce) {
			ee.Category = ce.ErrorCategory()
		}
	}

	if hasActiveReporting.Load() {
		reportToTelemetry(ee)
	}
	return ee
}

func partitionOf(path string) string {
	for _, p := range []string{"odm", "vendor", "system"} {
		if strings.HasPrefix(path, "/"+p+"/") {
			return p
		}
	}
	if strings.HasPrefix(path, "/") {
		return "absolute-other"
	}
	return "relative"
}

// IsCategory reports whether err wraps an EnhancedError of the given category.
func IsCategory(err error, category ErrorCategory) bool {
	var ee *EnhancedError
	return As(err, &ee) && ee.Category == category
}
