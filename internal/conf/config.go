// conf/config.go
package conf

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/tphakala/lvacfs-go/internal/errors"
	"github.com/tphakala/lvacfs-go/internal/logger"
	"github.com/tphakala/lvacfs-go/internal/lvacfs"
)

// configFileName is the base name searched for in the config paths.
const configFileName = "config"

// ModuleSettings locates the params directory and the module binary.
type ModuleSettings struct {
	ParamsOverlayDir string `yaml:"paramsoverlaydir" mapstructure:"paramsoverlaydir"` // preferred params directory
	ParamsVendorDir  string `yaml:"paramsvendordir" mapstructure:"paramsvendordir"`   // fallback params directory
	LibOverlayDir    string `yaml:"liboverlaydir" mapstructure:"liboverlaydir"`       // preferred module binary directory
	LibVendorDir     string `yaml:"libvendordir" mapstructure:"libvendordir"`         // fallback module binary directory
	LibraryName      string `yaml:"libraryname" mapstructure:"libraryname"`           // module binary file name
}

// Locations converts the settings into engine search locations.
func (m ModuleSettings) Locations() lvacfs.Locations {
	return lvacfs.Locations{
		ParamsOverlayDir: m.ParamsOverlayDir,
		ParamsVendorDir:  m.ParamsVendorDir,
		LibOverlayDir:    m.LibOverlayDir,
		LibVendorDir:     m.LibVendorDir,
		LibraryName:      m.LibraryName,
	}
}

// StreamSettings describes the capture stream handed to the module.
type StreamSettings struct {
	Source       string  `yaml:"source" mapstructure:"source"`             // audio source name, e.g. "camcorder"
	Device       string  `yaml:"device" mapstructure:"device"`             // capture device index, id or name, empty for default
	Channels     int     `yaml:"channels" mapstructure:"channels"`         // channel count, 1 or 2 map to mono or stereo
	SampleRate   int     `yaml:"samplerate" mapstructure:"samplerate"`     // sample rate in Hz
	Format       string  `yaml:"format" mapstructure:"format"`             // sample format name, e.g. "pcm16"
	PeriodFrames int     `yaml:"periodframes" mapstructure:"periodframes"` // frames per process call
	Profile      int     `yaml:"profile" mapstructure:"profile"`           // module profile, -1 leaves the module default
	Zoom         float64 `yaml:"zoom" mapstructure:"zoom"`                 // initial zoom factor, 0 skips the update
	Direction    string  `yaml:"direction" mapstructure:"direction"`       // "front" or "back"
	Orientation  int     `yaml:"orientation" mapstructure:"orientation"`   // device rotation in degrees
}

// StreamConfig converts the settings into a stream configuration.
func (s StreamSettings) StreamConfig() (lvacfs.StreamConfig, error) {
	source, err := lvacfs.ParseAudioSource(s.Source)
	if err != nil {
		return lvacfs.StreamConfig{}, err
	}
	format, err := lvacfs.ParseFormat(s.Format)
	if err != nil {
		return lvacfs.StreamConfig{}, err
	}
	return lvacfs.StreamConfig{
		Source:      source,
		ChannelMask: lvacfs.ChannelMaskForCount(s.Channels),
		SampleRate:  uint32(s.SampleRate), //nolint:gosec // G115: validated to a positive rate
		Format:      format,
	}, nil
}

// AudioDirection returns the configured direction hint.
func (s StreamSettings) AudioDirection() lvacfs.AudioDirection {
	if s.Direction == directionBack {
		return lvacfs.DirectionBack
	}
	return lvacfs.DirectionFront
}

// TelemetrySettings controls metrics exposure and error reporting.
type TelemetrySettings struct {
	Enabled bool   `yaml:"enabled" mapstructure:"enabled"` // serve prometheus metrics and status
	Listen  string `yaml:"listen" mapstructure:"listen"`   // metrics listen address, e.g. "0.0.0.0:8090"
	Sentry  struct {
		Enabled bool   `yaml:"enabled" mapstructure:"enabled"` // report errors to sentry
		DSN     string `yaml:"dsn" mapstructure:"dsn"`         // sentry project DSN
	} `yaml:"sentry" mapstructure:"sentry"`
}

// MQTTSettings controls lifecycle event publishing.
type MQTTSettings struct {
	Enabled  bool   `yaml:"enabled" mapstructure:"enabled"`   // publish lifecycle events
	Broker   string `yaml:"broker" mapstructure:"broker"`     // broker URL, e.g. "tcp://localhost:1883"
	Topic    string `yaml:"topic" mapstructure:"topic"`       // topic prefix
	ClientID string `yaml:"clientid" mapstructure:"clientid"` // client id, generated when empty
	Username string `yaml:"username" mapstructure:"username"` // broker username
	Password string `yaml:"password" mapstructure:"password"` // broker password
	QoS      int    `yaml:"qos" mapstructure:"qos"`           // publish QoS, 0..2
	Retain   bool   `yaml:"retain" mapstructure:"retain"`     // retain published messages
}

// Settings contains all configuration options for lvacfs.
type Settings struct {
	Debug     bool                 `yaml:"debug" mapstructure:"debug"` // true to enable debug logging
	Module    ModuleSettings       `yaml:"module" mapstructure:"module"`
	Stream    StreamSettings       `yaml:"stream" mapstructure:"stream"`
	Logging   logger.LoggingConfig `yaml:"logging" mapstructure:"logging"`
	Telemetry TelemetrySettings    `yaml:"telemetry" mapstructure:"telemetry"`
	MQTT      MQTTSettings         `yaml:"mqtt" mapstructure:"mqtt"`
}

// settingsInstance is the current settings instance
var (
	settingsInstance *Settings
	settingsMutex    sync.RWMutex
)

// NewViper returns a viper instance with defaults and environment bindings applied.
// Command line flags are bound on the returned instance by the caller.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetConfigName(configFileName)
	v.SetConfigType("yaml")
	setDefaultConfig(v)

	if err := bindEnvVars(v); err != nil {
		// Invalid environment values are reported but validation decides whether they are fatal.
		GetLogger().Warn("environment configuration issues", logger.Error(err))
	}
	return v
}

// Load reads the configuration file and environment variables into Settings.
// configFile overrides the search paths when not empty. A missing config file is not
// an error; defaults apply.
func Load(v *viper.Viper, configFile string) (*Settings, error) {
	if v == nil {
		v = NewViper()
	}

	if err := readConfig(v, configFile); err != nil {
		return nil, err
	}

	settings := &Settings{}
	if err := v.Unmarshal(settings); err != nil {
		return nil, errors.New(err).
			Component("config").
			Category(errors.CategoryConfiguration).
			Operation("unmarshal").
			Build()
	}

	if err := ValidateSettings(settings); err != nil {
		return nil, fmt.Errorf("error validating settings: %w", err)
	}

	settingsMutex.Lock()
	settingsInstance = settings
	settingsMutex.Unlock()
	return settings, nil
}

// readConfig loads either the explicit file or the first config.yaml in the search paths.
func readConfig(v *viper.Viper, configFile string) error {
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		configPaths, err := ConfigSearchPaths()
		if err != nil {
			return fmt.Errorf("error getting default config paths: %w", err)
		}
		for _, path := range configPaths {
			v.AddConfigPath(path)
		}
	}

	err := v.ReadInConfig()
	if err == nil {
		GetLogger().Debug("configuration loaded", logger.String("path", v.ConfigFileUsed()))
		return nil
	}

	var notFound viper.ConfigFileNotFoundError
	if configFile == "" && errors.As(err, &notFound) {
		GetLogger().Debug("no config file found, using defaults")
		return nil
	}
	return errors.New(err).
		Component("config").
		Category(errors.CategoryConfiguration).
		Operation("read-config").
		Context("path", configFile).
		Build()
}

// GetSettings returns the most recently loaded settings, or nil before Load.
func GetSettings() *Settings {
	settingsMutex.RLock()
	defer settingsMutex.RUnlock()
	return settingsInstance
}

// SaveYAMLConfig writes settings to configPath.
// It overwrites the existing file, not preserving comments or structure.
func SaveYAMLConfig(configPath string, settings *Settings) error {
	yamlData, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("error marshaling settings to YAML: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return fmt.Errorf("error creating directories for config file: %w", err)
	}

	// Write to a temporary file in the same directory and rename it into place.
	tempFile, err := os.CreateTemp(filepath.Dir(configPath), "config-*.yaml")
	if err != nil {
		return fmt.Errorf("error creating temporary file: %w", err)
	}
	tempFileName := tempFile.Name()
	defer func() { _ = os.Remove(tempFileName) }()

	if _, err := tempFile.Write(yamlData); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("error writing to temporary file: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("error closing temporary file: %w", err)
	}

	if err := os.Rename(tempFileName, configPath); err != nil {
		return fmt.Errorf("error replacing config file: %w", err)
	}
	return nil
}

// DefaultSettings returns the settings produced by the built-in defaults alone.
func DefaultSettings() (*Settings, error) {
	settings := &Settings{}
	if err := NewViper().Unmarshal(settings); err != nil {
		return nil, fmt.Errorf("error unmarshaling defaults: %w", err)
	}
	return settings, nil
}
