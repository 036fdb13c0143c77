package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/oshokin/alarm-clock/internal/config"
	"github.com/oshokin/alarm-clock/internal/service/clock"
	"github.com/oshokin/alarm-clock/internal/version"
)

var (
	// configPath to the configuration YAML file.
	configPath string
	// alarmTime overrides the configured alarm, formatted as H:M:S.
	alarmTime string
	// startTime overrides the configured start-up time, formatted as H:M:S.
	startTime string
	// logLevel overrides the configured diagnostics level.
	logLevel string
	// tickPeriod overrides the length of one clock second.
	tickPeriod time.Duration
	// statusAddress overrides the gRPC status listener.
	statusAddress string
	// metricsAddress overrides the Prometheus listener.
	metricsAddress string
	// stateFile overrides where the last shown time is kept.
	stateFile string

	// rootCmd represents the base command for running the clock.
	rootCmd = &cobra.Command{
		Use:   "alarm-clock",
		Short: "Run the software real-time clock with a daily alarm.",
		Long: `Counts seconds, minutes and hours from a periodic tick and prints the time
once per second as "HH:MM:SS" (width 2, no leading zeros).

When the clock reaches the configured alarm time the line "Alarm reached!!" is
printed once and an optional command is started. The alarm re-arms for the next day.

Settings are read from the configuration file when it exists; flags override them.
Optional listeners expose the current time over gRPC and counters for Prometheus.`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			return clock.Run(ctx, &clock.Options{
				ConfigPath:     configPath,
				Alarm:          alarmTime,
				Start:          startTime,
				LogLevel:       logLevel,
				TickPeriod:     tickPeriod,
				StatusAddress:  statusAddress,
				MetricsAddress: metricsAddress,
				StateFile:      stateFile,
			})
		},
	}

	// initCmd writes the default settings so they can be edited.
	initCmd = &cobra.Command{
		Use:   "init",
		Short: "Write a default configuration file.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := config.Save(configPath, config.Default()); err != nil {
				return err
			}

			cmd.Printf("Settings written to %s\n", configPath)

			return nil
		},
	}
)

// Execute runs the alarm-clock CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)
	rootCmd.AddCommand(initCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.PersistentFlags().
		StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")

	rootCmd.Flags().StringVarP(&alarmTime, "alarm", "a", "", "alarm time as H:M:S")
	rootCmd.Flags().StringVarP(&startTime, "start", "s", "", "start-up time as H:M:S")
	rootCmd.Flags().StringVarP(&logLevel, "log-level", "l", "", "log level (debug, info, warn, error)")
	rootCmd.Flags().DurationVar(&tickPeriod, "period", 0, "length of one clock second")
	rootCmd.Flags().StringVar(&statusAddress, "status-addr", "", "gRPC status listen address")
	rootCmd.Flags().StringVar(&metricsAddress, "metrics-addr", "", "Prometheus metrics listen address")
	rootCmd.Flags().StringVar(&stateFile, "state-file", "", "path to persist the shown time across restarts")
}
