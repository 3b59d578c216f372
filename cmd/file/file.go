package file

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tphakala/lvacfs-go/internal/analysis"
	"github.com/tphakala/lvacfs-go/internal/conf"
)

// Command creates the file command, which runs a WAV file through one processing session.
func Command(v *viper.Viper, settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "file <input.wav> <output.wav>",
		Short: "Process a WAV file",
		Long:  "Runs a 16-bit PCM WAV file through the module period by period and writes the processed audio to a new WAV file.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := analysis.FileProcessing(cmd.Context(), settings, args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "processed %d frames (%d Hz, %d ch) in %s -> %s\n",
				result.Frames, result.SampleRate, result.Channels, result.Elapsed.Round(1e6), args[1])
			return nil
		},
	}

	if err := setupFlags(cmd, v); err != nil {
		fmt.Fprintf(os.Stderr, "error setting up flags: %v\n", err)
		os.Exit(1)
	}

	return cmd
}

// setupFlags configures flags specific to the file command.
func setupFlags(cmd *cobra.Command, v *viper.Viper) error {
	flags := cmd.Flags()
	flags.String("source", v.GetString("stream.source"), "Audio source passed to the module")
	flags.Int("periodframes", v.GetInt("stream.periodframes"), "Frames per process call")
	flags.Int("profile", v.GetInt("stream.profile"), "Module profile, -1 keeps the module default")
	flags.Float64("zoom", v.GetFloat64("stream.zoom"), "Zoom factor, 0 skips the update")
	flags.String("direction", v.GetString("stream.direction"), "Audio direction: front or back")
	flags.Int("orientation", v.GetInt("stream.orientation"), "Device orientation in degrees")

	for name, key := range map[string]string{
		"source":       "stream.source",
		"periodframes": "stream.periodframes",
		"profile":      "stream.profile",
		"zoom":         "stream.zoom",
		"direction":    "stream.direction",
		"orientation":  "stream.orientation",
	} {
		if err := conf.BindFlag(flags, name, key); err != nil {
			return err
		}
	}
	return nil
}
