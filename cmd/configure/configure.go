package configure

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tphakala/lvacfs-go/internal/conf"
)

// Command creates the config command, which writes a configuration file.
func Command(settings *conf.Settings) *cobra.Command {
	var defaults bool

	cmd := &cobra.Command{
		Use:   "config <path>",
		Short: "Write a configuration file",
		Long:  "Writes the effective settings, including flags and environment overrides, as YAML. With --defaults only built-in defaults are written.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := settings
			if defaults {
				d, err := conf.DefaultSettings()
				if err != nil {
					return err
				}
				out = d
			}
			if err := conf.SaveYAMLConfig(args[0], out); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "configuration written to %s\n", args[0])
			return nil
		},
	}

	cmd.Flags().BoolVar(&defaults, "defaults", false, "Write built-in defaults instead of the effective settings")
	return cmd
}
