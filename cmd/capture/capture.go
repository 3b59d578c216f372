package capture

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tphakala/lvacfs-go/internal/analysis"
	"github.com/tphakala/lvacfs-go/internal/buildinfo"
	"github.com/tphakala/lvacfs-go/internal/conf"
)

// flagKeys maps each capture flag to the settings key it overrides.
var flagKeys = map[string]string{
	"device":       "stream.device",
	"source":       "stream.source",
	"channels":     "stream.channels",
	"samplerate":   "stream.samplerate",
	"periodframes": "stream.periodframes",
	"profile":      "stream.profile",
	"zoom":         "stream.zoom",
	"direction":    "stream.direction",
	"orientation":  "stream.orientation",
	"telemetry":    "telemetry.enabled",
	"listen":       "telemetry.listen",
	"mqtt":         "mqtt.enabled",
	"broker":       "mqtt.broker",
}

// Command creates the capture command, which processes live audio until interrupted.
func Command(v *viper.Viper, settings *conf.Settings, build *buildinfo.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "capture",
		Short: "Process live audio from a capture device",
		Long:  "Captures audio from a sound card and runs it through the module until interrupted.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return analysis.RealtimeProcessing(cmd.Context(), settings, build)
		},
	}

	if err := setupFlags(cmd, v); err != nil {
		fmt.Fprintf(os.Stderr, "error setting up flags: %v\n", err)
		os.Exit(1)
	}

	return cmd
}

// setupFlags configures flags specific to the capture command.
func setupFlags(cmd *cobra.Command, v *viper.Viper) error {
	flags := cmd.Flags()
	flags.String("device", v.GetString("stream.device"), "Capture device index, id or name")
	flags.String("source", v.GetString("stream.source"), "Audio source passed to the module")
	flags.Int("channels", v.GetInt("stream.channels"), "Capture channel count")
	flags.Int("samplerate", v.GetInt("stream.samplerate"), "Capture sample rate in Hz")
	flags.Int("periodframes", v.GetInt("stream.periodframes"), "Frames per process call")
	flags.Int("profile", v.GetInt("stream.profile"), "Module profile, -1 keeps the module default")
	flags.Float64("zoom", v.GetFloat64("stream.zoom"), "Zoom factor, 0 skips the update")
	flags.String("direction", v.GetString("stream.direction"), "Audio direction: front or back")
	flags.Int("orientation", v.GetInt("stream.orientation"), "Device orientation in degrees")
	flags.Bool("telemetry", v.GetBool("telemetry.enabled"), "Serve metrics and engine status over HTTP")
	flags.String("listen", v.GetString("telemetry.listen"), "Metrics listen address")
	flags.Bool("mqtt", v.GetBool("mqtt.enabled"), "Publish lifecycle events over MQTT")
	flags.String("broker", v.GetString("mqtt.broker"), "MQTT broker URL")

	for name, key := range flagKeys {
		if err := conf.BindFlag(flags, name, key); err != nil {
			return err
		}
	}
	return nil
}
