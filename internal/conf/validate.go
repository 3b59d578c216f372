// conf/validate.go

package conf

import (
	"fmt"
	"net"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/tphakala/lvacfs-go/internal/lvacfs"
)

// Sample rate bounds accepted for capture streams.
const (
	minSampleRate = 8000
	maxSampleRate = 192000
)

// ValidationError represents a collection of validation errors
type ValidationError struct {
	Errors []string
}

// Error returns a string representation of the validation errors
func (ve ValidationError) Error() string {
	return fmt.Sprintf("Validation errors: %v", ve.Errors)
}

// ValidateSettings validates the entire Settings struct
func ValidateSettings(settings *Settings) error {
	ve := ValidationError{}

	if err := validateModuleSettings(&settings.Module); err != nil {
		ve.Errors = append(ve.Errors, err.Error())
	}

	if err := validateStreamSettings(&settings.Stream); err != nil {
		ve.Errors = append(ve.Errors, err.Error())
	}

	if err := validateTelemetrySettings(&settings.Telemetry); err != nil {
		ve.Errors = append(ve.Errors, err.Error())
	}

	if err := validateMQTTSettings(&settings.MQTT); err != nil {
		ve.Errors = append(ve.Errors, err.Error())
	}

	if len(ve.Errors) > 0 {
		return ve
	}
	return nil
}

// validateModuleSettings validates the module location settings
func validateModuleSettings(settings *ModuleSettings) error {
	if settings.ParamsOverlayDir == "" && settings.ParamsVendorDir == "" {
		return fmt.Errorf("at least one params directory must be configured")
	}
	if settings.LibOverlayDir == "" && settings.LibVendorDir == "" {
		return fmt.Errorf("at least one module library directory must be configured")
	}
	if settings.LibraryName != "" && filepath.Base(settings.LibraryName) != settings.LibraryName {
		return fmt.Errorf("module library name must be a file name, got %q", settings.LibraryName)
	}
	return nil
}

// validateStreamSettings validates the capture stream settings
func validateStreamSettings(settings *StreamSettings) error {
	if _, err := lvacfs.ParseAudioSource(settings.Source); err != nil {
		return fmt.Errorf("stream source: %w", err)
	}
	if _, err := lvacfs.ParseFormat(settings.Format); err != nil {
		return fmt.Errorf("stream format: %w", err)
	}
	if settings.Channels < 1 || settings.Channels > lvacfs.MaxChannels {
		return fmt.Errorf("stream channels must be between 1 and %d, got %d", lvacfs.MaxChannels, settings.Channels)
	}
	if settings.SampleRate < minSampleRate || settings.SampleRate > maxSampleRate {
		return fmt.Errorf("stream sample rate must be between %d and %d, got %d", minSampleRate, maxSampleRate, settings.SampleRate)
	}
	if settings.PeriodFrames <= 0 {
		return fmt.Errorf("stream period frames must be positive, got %d", settings.PeriodFrames)
	}
	if settings.Zoom < 0 {
		return fmt.Errorf("stream zoom must be non-negative, got %g", settings.Zoom)
	}

	switch strings.ToLower(settings.Direction) {
	case directionFront, directionBack:
		settings.Direction = strings.ToLower(settings.Direction)
	default:
		return fmt.Errorf("stream direction must be %q or %q, got %q", directionFront, directionBack, settings.Direction)
	}

	switch lvacfs.DeviceOrientation(settings.Orientation) {
	case lvacfs.Orientation0, lvacfs.Orientation90, lvacfs.Orientation180, lvacfs.Orientation270:
	default:
		return fmt.Errorf("stream orientation must be 0, 90, 180 or 270, got %d", settings.Orientation)
	}
	return nil
}

// validateTelemetrySettings validates the metrics endpoint and sentry settings
func validateTelemetrySettings(settings *TelemetrySettings) error {
	if settings.Enabled {
		if _, _, err := net.SplitHostPort(settings.Listen); err != nil {
			return fmt.Errorf("telemetry listen address %q is invalid: %w", settings.Listen, err)
		}
	}
	if settings.Sentry.Enabled && settings.Sentry.DSN == "" {
		return fmt.Errorf("telemetry.sentry.dsn is required when sentry is enabled")
	}
	return nil
}

// validateMQTTSettings validates the lifecycle event publisher settings
func validateMQTTSettings(settings *MQTTSettings) error {
	if !settings.Enabled {
		return nil
	}
	if settings.Broker == "" {
		return fmt.Errorf("mqtt broker is required when enabled")
	}
	u, err := url.Parse(settings.Broker)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("mqtt broker must be a URL such as tcp://host:1883, got %q", settings.Broker)
	}
	if settings.Topic == "" {
		return fmt.Errorf("mqtt topic is required when enabled")
	}
	if settings.QoS < 0 || settings.QoS > 2 {
		return fmt.Errorf("mqtt qos must be 0, 1 or 2, got %d", settings.QoS)
	}
	return nil
}
