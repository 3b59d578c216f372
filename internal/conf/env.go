// env.go - Environment variable configuration and validation for lvacfs
package conf

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/viper"

	"github.com/tphakala/lvacfs-go/internal/lvacfs"
)

// envBinding holds metadata for environment variable bindings (internal use)
type envBinding struct {
	ConfigKey string             // Viper config key
	EnvVar    string             // Environment variable name
	Validate  func(string) error // Optional validation function
}

// getEnvBindings returns all environment variable bindings with validation
func getEnvBindings() []envBinding {
	return []envBinding{
		{"debug", "LVACFS_DEBUG", validateEnvBool},

		// Module locations
		{"module.paramsoverlaydir", "LVACFS_PARAMS_OVERLAY_DIR", validateEnvPath},
		{"module.paramsvendordir", "LVACFS_PARAMS_VENDOR_DIR", validateEnvPath},
		{"module.liboverlaydir", "LVACFS_LIB_OVERLAY_DIR", validateEnvPath},
		{"module.libvendordir", "LVACFS_LIB_VENDOR_DIR", validateEnvPath},
		{"module.libraryname", "LVACFS_LIBRARY_NAME", validateEnvLibraryName},

		// Stream
		{"stream.source", "LVACFS_STREAM_SOURCE", validateEnvSource},
		{"stream.channels", "LVACFS_STREAM_CHANNELS", validateEnvChannels},
		{"stream.samplerate", "LVACFS_STREAM_SAMPLERATE", validateEnvSampleRate},
		{"stream.format", "LVACFS_STREAM_FORMAT", validateEnvFormat},

		// Logging
		{"logging.default_level", "LVACFS_LOG_LEVEL", nil},
		{"logging.file_output.enabled", "LVACFS_LOG_FILE_ENABLED", validateEnvBool},
		{"logging.file_output.path", "LVACFS_LOG_FILE_PATH", nil},

		// Telemetry
		{"telemetry.enabled", "LVACFS_TELEMETRY_ENABLED", validateEnvBool},
		{"telemetry.listen", "LVACFS_TELEMETRY_LISTEN", nil},
		{"telemetry.sentry.enabled", "LVACFS_SENTRY_ENABLED", validateEnvBool},
		{"telemetry.sentry.dsn", "LVACFS_SENTRY_DSN", nil},

		// MQTT
		{"mqtt.enabled", "LVACFS_MQTT_ENABLED", validateEnvBool},
		{"mqtt.broker", "LVACFS_MQTT_BROKER", nil},
		{"mqtt.topic", "LVACFS_MQTT_TOPIC", nil},
		{"mqtt.username", "LVACFS_MQTT_USERNAME", nil},
		{"mqtt.password", "LVACFS_MQTT_PASSWORD", nil},
	}
}

// bindEnvVars sets up environment variable bindings with validation (internal)
func bindEnvVars(v *viper.Viper) error {
	var warnings []string

	for _, binding := range getEnvBindings() {
		if err := v.BindEnv(binding.ConfigKey, binding.EnvVar); err != nil {
			warnings = append(warnings, fmt.Sprintf("Failed to bind %s: %v", binding.EnvVar, err))
			continue
		}

		if binding.Validate != nil {
			if envValue := os.Getenv(binding.EnvVar); envValue != "" {
				if err := binding.Validate(envValue); err != nil {
					warnings = append(warnings, fmt.Sprintf("Invalid %s value '%s': %v", binding.EnvVar, envValue, err))
				}
			}
		}
	}

	if len(warnings) > 0 {
		return fmt.Errorf("environment variable issues:\n  - %s", strings.Join(warnings, "\n  - "))
	}

	return nil
}

// Environment variable validation functions

// validateEnvBool validates boolean environment variables
func validateEnvBool(value string) error {
	_, err := strconv.ParseBool(value)
	if err != nil {
		return fmt.Errorf("invalid boolean value '%s': must be true/false, 1/0, t/f, TRUE/FALSE, T/F", value)
	}
	return nil
}

func validateEnvPath(value string) error {
	cleanedPath := filepath.Clean(value)
	if !filepath.IsAbs(cleanedPath) {
		return fmt.Errorf("path must be absolute, got relative path: %s", cleanedPath)
	}
	return nil
}

func validateEnvLibraryName(value string) error {
	if strings.ContainsRune(value, os.PathSeparator) {
		return fmt.Errorf("library name must not contain a path separator, got: %s", value)
	}
	return nil
}

func validateEnvSource(value string) error {
	_, err := lvacfs.ParseAudioSource(value)
	return err
}

func validateEnvFormat(value string) error {
	_, err := lvacfs.ParseFormat(value)
	return err
}

func validateEnvChannels(value string) error {
	n, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("invalid channel count: %w", err)
	}
	if n < 1 || n > lvacfs.MaxChannels {
		return fmt.Errorf("channel count must be between 1 and %d, got %d", lvacfs.MaxChannels, n)
	}
	return nil
}

func validateEnvSampleRate(value string) error {
	rate, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("invalid sample rate: %w", err)
	}
	if rate < minSampleRate || rate > maxSampleRate {
		return fmt.Errorf("sample rate must be between %d and %d, got %d", minSampleRate, maxSampleRate, rate)
	}
	return nil
}
