package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/oshokin/alarm-clock/internal/config"
	"github.com/oshokin/alarm-clock/internal/service/status"
	"github.com/oshokin/alarm-clock/internal/version"
)

var (
	// configPath stores the path to the configuration YAML file.
	configPath string
	// timeout overrides the per-call timeout.
	timeout time.Duration
	// interval repeats the query; zero queries once.
	interval time.Duration

	// rootCmd represents the base command for querying a running clock.
	rootCmd = &cobra.Command{
		Use:   "alarm-clock-status [status-address]",
		Short: "Print the time shown by a running alarm clock.",
		Long: `Connects to the gRPC status listener of a running alarm-clock, checks its
health and prints the current time, the alarm time and how many alarms fired.

Status address can be provided as argument or loaded from configuration file.
With --interval the query repeats until interrupted.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			// Use status address argument if provided, otherwise rely on config.
			var address string
			if len(args) > 0 {
				address = args[0]
			}

			return status.Run(ctx, &status.Options{
				ConfigPath: configPath,
				Address:    address,
				Timeout:    timeout,
				Interval:   interval,
				Out:        cmd.OutOrStdout(),
			})
		},
	}
)

// Execute runs the alarm-clock-status CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	rootCmd.Flags().DurationVarP(&timeout, "timeout", "t", 0, "per-call timeout")
	rootCmd.Flags().DurationVarP(&interval, "interval", "i", 0, "repeat the query at this interval")
}
