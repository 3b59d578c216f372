package probe

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/tphakala/lvacfs-go/internal/analysis"
	"github.com/tphakala/lvacfs-go/internal/buildinfo"
	"github.com/tphakala/lvacfs-go/internal/conf"
	"github.com/tphakala/lvacfs-go/internal/diagnostics"
	"github.com/tphakala/lvacfs-go/internal/lvacfs"
)

// Report is the probe result.
type Report struct {
	Version  string                `json:"version"`
	Engine   lvacfs.Status         `json:"engine"`
	Versions string                `json:"module_versions,omitempty"`
	Host     *diagnostics.HostInfo `json:"host,omitempty"`
}

// Command creates the probe command, which initializes the engine once and reports
// what was found.
func Command(settings *conf.Settings, build *buildinfo.Context) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "probe",
		Short: "Check that the module and its params can be loaded",
		Long:  "Resolves the params directory, loads the module, binds its entry points and prints the result together with host details.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			report, initErr := run(cmd.Context(), build, analysis.NewEngine(settings))
			if err := write(cmd.OutOrStdout(), report, asJSON); err != nil {
				return err
			}
			return initErr
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the report as JSON")
	return cmd
}

// run initializes e, collects the report and deinitializes e again.
func run(ctx context.Context, build *buildinfo.Context, e *lvacfs.Engine) (*Report, error) {
	initErr := e.Init()

	report := &Report{
		Version: build.Version(),
		Engine:  e.Status(),
	}
	if initErr == nil {
		if v, err := e.Versions(); err == nil {
			report.Versions = v
		}
	}
	if host, err := diagnostics.CollectHostInfo(ctx); err == nil {
		report.Host = &host
	}

	if err := e.Deinit(); err != nil && initErr == nil {
		return report, err
	}
	return report, initErr
}

func write(w io.Writer, report *Report, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	fmt.Fprintf(w, "%-10s %s\n", "lvacfs:", report.Version)
	fmt.Fprintf(w, "%-10s %s\n", "state:", report.Engine.State)
	if report.Engine.ConfigPath != "" {
		fmt.Fprintf(w, "%-10s %s\n", "params:", report.Engine.ConfigPath)
	}
	if report.Engine.LibraryPath != "" {
		fmt.Fprintf(w, "%-10s %s\n", "module:", report.Engine.LibraryPath)
	}
	if report.Versions != "" {
		fmt.Fprintf(w, "%-10s %s\n", "versions:", report.Versions)
	}
	if report.Engine.LastError != "" {
		fmt.Fprintf(w, "%-10s %s\n", "error:", report.Engine.LastError)
	}
	if report.Host != nil {
		fmt.Fprintln(w)
		return diagnostics.WriteHostInfo(w, report.Host)
	}
	return nil
}
