package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tphakala/lvacfs-go/cmd/capture"
	"github.com/tphakala/lvacfs-go/cmd/configure"
	"github.com/tphakala/lvacfs-go/cmd/devices"
	"github.com/tphakala/lvacfs-go/cmd/file"
	"github.com/tphakala/lvacfs-go/cmd/probe"
	"github.com/tphakala/lvacfs-go/internal/buildinfo"
	"github.com/tphakala/lvacfs-go/internal/conf"
	"github.com/tphakala/lvacfs-go/internal/logger"
	"github.com/tphakala/lvacfs-go/internal/telemetry"
)

// sentryFlushTimeout bounds delivery of queued error reports on exit.
const sentryFlushTimeout = 2 * time.Second

// Execute builds the command tree and runs it until completion or SIGINT/SIGTERM.
func Execute(build *buildinfo.Context) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	v := conf.NewViper()
	settings := &conf.Settings{}
	rootCmd, cleanup := RootCommand(v, settings, build)
	defer cleanup()

	return rootCmd.ExecuteContext(ctx)
}

// RootCommand creates and returns the root command. cleanup flushes error reports
// and closes the log files opened by the command run.
func RootCommand(v *viper.Viper, settings *conf.Settings, build *buildinfo.Context) (rootCmd *cobra.Command, cleanup func()) {
	var (
		cfgFile       string
		centralLogger *logger.CentralLogger
	)

	rootCmd = &cobra.Command{
		Use:           "lvacfs",
		Short:         "LVACFS capture-processing module runtime",
		Long:          "Loads the LVACFS capture-processing module and runs audio through it.",
		Version:       build.Version(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.SetVersionTemplate(build.String() + "\n")

	if err := setupFlags(rootCmd, v, &cfgFile); err != nil {
		fmt.Fprintf(os.Stderr, "error setting up flags: %v\n", err)
		os.Exit(1)
	}

	subcommands := []*cobra.Command{
		probe.Command(settings, build),
		file.Command(v, settings),
		capture.Command(v, settings, build),
		devices.Command(),
		configure.Command(settings),
	}
	rootCmd.AddCommand(subcommands...)

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		if err := conf.BindFlags(v, cmd.Flags()); err != nil {
			return err
		}
		cl, err := initialize(v, cfgFile, settings, build)
		centralLogger = cl
		return err
	}

	cleanup = func() {
		telemetry.Flush(sentryFlushTimeout)
		if centralLogger != nil {
			_ = centralLogger.Close()
		}
	}
	return rootCmd, cleanup
}

// initialize loads settings, sets up logging and opt-in error reporting before any
// subcommand runs.
func initialize(v *viper.Viper, cfgFile string, settings *conf.Settings, build *buildinfo.Context) (*logger.CentralLogger, error) {
	loaded, err := conf.Load(v, cfgFile)
	if err != nil {
		return nil, err
	}
	*settings = *loaded

	if settings.Debug {
		settings.Logging.DefaultLevel = string(logger.LogLevelDebug)
		if settings.Logging.Console != nil {
			settings.Logging.Console.Level = string(logger.LogLevelDebug)
		}
	}

	centralLogger, err := logger.NewCentralLogger(&settings.Logging)
	if err != nil {
		return nil, fmt.Errorf("error initializing logging: %w", err)
	}
	logger.SetGlobal(centralLogger)

	if settings.Telemetry.Sentry.Enabled {
		systemID, err := telemetry.LoadOrCreateSystemID(afero.NewOsFs(), systemIDDir())
		if err != nil {
			return centralLogger, err
		}
		*build = *build.WithSystemID(systemID)
		if err := telemetry.InitSentry(&settings.Telemetry, build); err != nil {
			return centralLogger, err
		}
	}
	return centralLogger, nil
}

// systemIDDir is the per-user directory the system id is stored in.
func systemIDDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "lvacfs")
	}
	return filepath.Join(os.TempDir(), "lvacfs")
}

// setupFlags defines flags that are global to the command line interface
func setupFlags(rootCmd *cobra.Command, v *viper.Viper, cfgFile *string) error {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(cfgFile, "config", "c", "", "Path to config file (default: search ./, ~/.config/lvacfs, /etc/lvacfs)")
	flags.BoolP("debug", "d", v.GetBool("debug"), "Enable debug output")

	return conf.BindFlag(flags, "debug", "debug")
}
