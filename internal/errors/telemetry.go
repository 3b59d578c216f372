// Package errors - telemetry integration (optional)
package errors

import (
	"fmt"
	"strings"
	"sync/atomic"
	"unicode"

	"github.com/getsentry/sentry-go"

	"github.com/tphakala/lvacfs-go/internal/privacy"
)

// TelemetryReporter is an interface for reporting errors to telemetry systems
type TelemetryReporter interface {
	ReportError(err *EnhancedError)
	IsEnabled() bool
}

// SentryReporter implements TelemetryReporter for Sentry
type SentryReporter struct {
	enabled bool
	capture func(*sentry.Event)
}

// NewSentryReporter creates a new Sentry telemetry reporter.
// sentry.Init must have been called by the caller when enabled is true.
func NewSentryReporter(enabled bool) *SentryReporter {
	return &SentryReporter{
		enabled: enabled,
		capture: func(ev *sentry.Event) { sentry.CaptureEvent(ev) },
	}
}

// IsEnabled returns whether Sentry telemetry is enabled
func (sr *SentryReporter) IsEnabled() bool {
	return sr.enabled
}

// ReportError reports an enhanced error to Sentry with paths scrubbed
func (sr *SentryReporter) ReportError(ee *EnhancedError) {
	if !sr.enabled || ee.IsReported() {
		return
	}

	sr.capture(buildSentryEvent(ee))
	ee.MarkReported()
}

// buildSentryEvent converts an EnhancedError into a Sentry event.
func buildSentryEvent(ee *EnhancedError) *sentry.Event {
	message := scrubMessageForPrivacy(fmt.Sprintf("[%s] %s", ee.Category, ee.Error()))
	title := generateErrorTitle(ee)

	event := sentry.NewEvent()
	event.Message = message
	event.Level = getErrorLevel(ee.Category)
	event.Fingerprint = []string{title, ee.Component, string(ee.Category)}
	event.Tags = map[string]string{
		"error_title": title,
		"component":   ee.Component,
		"category":    string(ee.Category),
	}
	if code, ok := ee.Context["code"]; ok {
		event.Tags["return_code"] = fmt.Sprint(code)
	}

	ctx := ee.GetContext()
	if len(ctx) > 0 {
		extra := make(map[string]any, len(ctx))
		for key, value := range ctx {
			if s, ok := value.(string); ok {
				value = scrubMessageForPrivacy(s)
			}
			extra[key] = value
		}
		event.Contexts = map[string]sentry.Context{"lvacfs": extra}
	}

	event.Exception = []sentry.Exception{{Type: title, Value: message}}
	return event
}

// generateErrorTitle creates a grouping title from component, category and operation
func generateErrorTitle(ee *EnhancedError) string {
	var parts []string

	if ee.Component != "" && ee.Component != ComponentUnknown {
		parts = append(parts, titleCase(ee.Component))
	}

	if title := formatCategoryForTitle(ee.Category); title != "" {
		parts = append(parts, title)
	}

	if operation, ok := ee.GetContext()["operation"].(string); ok && operation != "" {
		parts = append(parts, formatOperationForTitle(operation))
	}

	if len(parts) == 0 {
		return fmt.Sprintf("%T", ee.Err)
	}

	return strings.Join(parts, " ")
}

// formatCategoryForTitle converts error categories to human-readable titles
func formatCategoryForTitle(category ErrorCategory) string {
	switch category {
	case CategoryConfiguration:
		return "Configuration Error"
	case CategoryModuleLoad:
		return "Module Load Error"
	case CategoryCapability:
		return "Missing Capability"
	case CategoryInstanceCreate:
		return "Instance Creation Error"
	case CategoryProcessing:
		return "Processing Error"
	case CategoryInstanceDestroy:
		return "Instance Destruction Error"
	case CategoryValidation:
		return "Validation Error"
	default:
		return string(category)
	}
}

func formatOperationForTitle(operation string) string {
	words := strings.Fields(strings.ReplaceAll(operation, "_", " "))
	for i, word := range words {
		words[i] = titleCase(word)
	}
	return strings.Join(words, " ")
}

// titleCase capitalizes the first letter of a string
func titleCase(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(s)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

// getErrorLevel returns the Sentry level for a category
func getErrorLevel(category ErrorCategory) sentry.Level {
	switch category {
	case CategoryModuleLoad, CategoryCapability, CategoryConfiguration:
		return sentry.LevelError
	case CategoryInstanceCreate, CategoryProcessing:
		return sentry.LevelWarning
	case CategoryInstanceDestroy, CategoryControl:
		return sentry.LevelInfo
	default:
		return sentry.LevelError
	}
}

var (
	globalTelemetryReporter atomic.Pointer[TelemetryReporter]
	hasActiveReporting      atomic.Bool
)

// SetTelemetryReporter sets the global telemetry reporter; nil disables reporting.
func SetTelemetryReporter(reporter TelemetryReporter) {
	if reporter == nil {
		globalTelemetryReporter.Store(nil)
		hasActiveReporting.Store(false)
		return
	}
	globalTelemetryReporter.Store(&reporter)
	hasActiveReporting.Store(reporter.IsEnabled())
}

// GetTelemetryReporter returns the current telemetry reporter
func GetTelemetryReporter() TelemetryReporter {
	if p := globalTelemetryReporter.Load(); p != nil {
		return *p
	}
	return nil
}

func reportToTelemetry(ee *EnhancedError) {
	if reporter := GetTelemetryReporter(); reporter != nil && reporter.IsEnabled() {
		reporter.ReportError(ee)
	}
}

func scrubMessageForPrivacy(message string) string {
	return privacy.ScrubMessage(message)
}
