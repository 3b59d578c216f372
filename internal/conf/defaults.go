// conf/defaults.go default values for settings
package conf

import (
	"github.com/spf13/viper"

	"github.com/tphakala/lvacfs-go/internal/logger"
	"github.com/tphakala/lvacfs-go/internal/lvacfs"
)

// Stream direction names.
const (
	directionFront = "front"
	directionBack  = "back"
)

// Sets default values for the configuration.
func setDefaultConfig(v *viper.Viper) {
	v.SetDefault("debug", false)

	v.SetDefault("module.paramsoverlaydir", lvacfs.DefaultParamsOverlayDir)
	v.SetDefault("module.paramsvendordir", lvacfs.DefaultParamsVendorDir)
	v.SetDefault("module.liboverlaydir", lvacfs.DefaultLibOverlayDir)
	v.SetDefault("module.libvendordir", lvacfs.DefaultLibVendorDir)
	v.SetDefault("module.libraryname", lvacfs.DefaultLibraryName)

	v.SetDefault("stream.source", lvacfs.SourceCamcorder.String())
	v.SetDefault("stream.device", "")
	v.SetDefault("stream.channels", 2)
	v.SetDefault("stream.samplerate", 48000)
	v.SetDefault("stream.format", lvacfs.FormatPCM16.String())
	v.SetDefault("stream.periodframes", 480)
	v.SetDefault("stream.profile", -1)
	v.SetDefault("stream.zoom", 0.0)
	v.SetDefault("stream.direction", directionFront)
	v.SetDefault("stream.orientation", 0)

	v.SetDefault("logging.default_level", logger.DefaultLogLevel)
	v.SetDefault("logging.timezone", "Local")
	v.SetDefault("logging.console.enabled", logger.DefaultConsoleEnabled)
	v.SetDefault("logging.console.level", logger.DefaultLogLevel)
	v.SetDefault("logging.file_output.enabled", logger.DefaultFileEnabled)
	v.SetDefault("logging.file_output.path", logger.DefaultLogPath)
	v.SetDefault("logging.file_output.max_size", logger.DefaultMaxSize)
	v.SetDefault("logging.file_output.max_age", logger.DefaultMaxAge)
	v.SetDefault("logging.file_output.max_rotated_files", logger.DefaultMaxRotatedFiles)
	v.SetDefault("logging.file_output.compress", false)
	v.SetDefault("logging.file_output.level", logger.DefaultLogLevel)

	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.listen", "0.0.0.0:8090")
	v.SetDefault("telemetry.sentry.enabled", false)
	v.SetDefault("telemetry.sentry.dsn", "")

	v.SetDefault("mqtt.enabled", false)
	v.SetDefault("mqtt.broker", "tcp://localhost:1883")
	v.SetDefault("mqtt.topic", "lvacfs")
	v.SetDefault("mqtt.clientid", "")
	v.SetDefault("mqtt.username", "")
	v.SetDefault("mqtt.password", "")
	v.SetDefault("mqtt.qos", 1)
	v.SetDefault("mqtt.retain", false)
}
