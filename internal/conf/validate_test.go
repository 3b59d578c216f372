package conf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateSettings(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Settings)
		wantErr string
	}{
		{"defaults", func(*Settings) {}, ""},
		{"no params dirs", func(s *Settings) {
			s.Module.ParamsOverlayDir, s.Module.ParamsVendorDir = "", ""
		}, "params directory"},
		{"vendor params only", func(s *Settings) { s.Module.ParamsOverlayDir = "" }, ""},
		{"no library dirs", func(s *Settings) {
			s.Module.LibOverlayDir, s.Module.LibVendorDir = "", ""
		}, "library directory"},
		{"library name with path", func(s *Settings) { s.Module.LibraryName = "lib/x.so" }, "file name"},
		{"unknown source", func(s *Settings) { s.Stream.Source = "radio" }, "stream source"},
		{"too many channels", func(s *Settings) { s.Stream.Channels = 31 }, "stream channels"},
		{"low sample rate", func(s *Settings) { s.Stream.SampleRate = 4000 }, "sample rate"},
		{"zero period", func(s *Settings) { s.Stream.PeriodFrames = 0 }, "period frames"},
		{"negative zoom", func(s *Settings) { s.Stream.Zoom = -1 }, "zoom"},
		{"bad direction", func(s *Settings) { s.Stream.Direction = "up" }, "direction"},
		{"bad orientation", func(s *Settings) { s.Stream.Orientation = 45 }, "orientation"},
		{"bad listen", func(s *Settings) {
			s.Telemetry.Enabled = true
			s.Telemetry.Listen = "8090"
		}, "listen address"},
		{"listen ignored when disabled", func(s *Settings) { s.Telemetry.Listen = "" }, ""},
		{"sentry without dsn", func(s *Settings) { s.Telemetry.Sentry.Enabled = true }, "dsn"},
		{"mqtt without broker", func(s *Settings) {
			s.MQTT.Enabled = true
			s.MQTT.Broker = ""
		}, "broker is required"},
		{"mqtt bad broker", func(s *Settings) {
			s.MQTT.Enabled = true
			s.MQTT.Broker = "localhost"
		}, "must be a URL"},
		{"mqtt bad qos", func(s *Settings) {
			s.MQTT.Enabled = true
			s.MQTT.QoS = 3
		}, "qos"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			settings, err := DefaultSettings()
			require.NoError(t, err)
			tt.mutate(settings)

			err = ValidateSettings(settings)
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidationErrorCollectsSections(t *testing.T) {
	t.Parallel()

	settings, err := DefaultSettings()
	require.NoError(t, err)
	settings.Stream.Source = "radio"
	settings.MQTT.Enabled = true
	settings.MQTT.Topic = ""

	err = ValidateSettings(settings)
	var ve ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Len(t, ve.Errors, 2)
}

func TestEnvValidators(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		validate func(string) error
		value    string
		valid    bool
	}{
		{"bool", validateEnvBool, "TRUE", true},
		{"bool invalid", validateEnvBool, "yes", false},
		{"absolute path", validateEnvPath, "/odm/etc/lvacfs_params", true},
		{"relative path", validateEnvPath, "etc/lvacfs_params", false},
		{"library name", validateEnvLibraryName, "liblvacfs_wrapper.so", true},
		{"library name with dir", validateEnvLibraryName, "/odm/lib64/liblvacfs_wrapper.so", false},
		{"source", validateEnvSource, "Camcorder", true},
		{"source unknown", validateEnvSource, "radio", false},
		{"format", validateEnvFormat, "float", true},
		{"format unknown", validateEnvFormat, "mp3", false},
		{"channels", validateEnvChannels, "2", true},
		{"channels zero", validateEnvChannels, "0", false},
		{"sample rate", validateEnvSampleRate, "48000", true},
		{"sample rate high", validateEnvSampleRate, "384000", false},
		{"sample rate text", validateEnvSampleRate, "fast", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.validate(tt.value)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}
