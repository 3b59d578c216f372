package devices

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/tphakala/lvacfs-go/internal/myaudio"
)

// Command creates the devices command, which lists the capture devices.
func Command() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "devices",
		Short: "List audio capture devices",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			devices, err := myaudio.ListAudioSources()
			if err != nil {
				return err
			}
			return write(cmd, devices, asJSON)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the device list as JSON")
	return cmd
}

func write(cmd *cobra.Command, devices []myaudio.AudioDeviceInfo, asJSON bool) error {
	out := cmd.OutOrStdout()
	if asJSON {
		return json.NewEncoder(out).Encode(devices)
	}
	if len(devices) == 0 {
		fmt.Fprintln(out, "no capture devices found")
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "INDEX\tNAME\tID")
	for _, d := range devices {
		fmt.Fprintf(tw, "%d\t%s\t%s\n", d.Index, d.Name, d.ID)
	}
	return tw.Flush()
}
