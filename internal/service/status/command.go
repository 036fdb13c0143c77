// Package status queries a running alarm clock over gRPC and prints what it shows.
package status

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/oshokin/alarm-clock/internal/config"
	domain "github.com/oshokin/alarm-clock/internal/domain/clock"
	"github.com/oshokin/alarm-clock/internal/logger"
	"github.com/oshokin/alarm-clock/internal/service/common"
)

// Options controls the status query.
type Options struct {
	// ConfigPath specifies the path to the settings YAML file.
	ConfigPath string
	// Address provides an optional status address override.
	Address string
	// Timeout overrides the per-RPC timeout.
	Timeout time.Duration
	// Interval repeats the query until canceled; zero queries once.
	Interval time.Duration
	// Out receives the status lines; nil means stdout.
	Out io.Writer
}

// ErrNoAddress indicates that neither the settings nor the options name a status address.
var ErrNoAddress = errors.New("no status address configured")

// errNotServing is returned when the clock's health service reports anything but SERVING.
var errNotServing = errors.New("alarm clock is not serving")

// Run prints the remote clock status once, or every Interval until ctx is canceled.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "alarm-clock-status")

	cfg, err := config.LoadOrDefault(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	address := cfg.StatusAddress
	if opts.Address != "" {
		address = opts.Address
	}

	if address == "" {
		return ErrNoAddress
	}

	timeout := cfg.Timeout
	if opts.Timeout > 0 {
		timeout = opts.Timeout
	}

	out := opts.Out
	if out == nil {
		out = os.Stdout
	}

	client, err := common.Dial(ctx, address, common.WithCallTimeout(timeout))
	if err != nil {
		return fmt.Errorf("dial clock: %w", err)
	}

	defer func() {
		_ = client.Close()
	}()

	if err := printStatus(ctx, client, out); err != nil {
		return err
	}

	if opts.Interval <= 0 {
		return nil
	}

	logger.InfoKV(ctx, "Polling clock status", "status_address", address, "interval", opts.Interval.String())

	ticker := time.NewTicker(opts.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := printStatus(ctx, client, out); err != nil {
				logger.ErrorKV(ctx, "Query status failed", "error", err)
			}
		}
	}
}

// printStatus checks health, fetches the status and writes one line.
func printStatus(ctx context.Context, client *common.Client, out io.Writer) error {
	serving, err := client.Health(ctx)
	if err != nil {
		return err
	}

	if serving != healthpb.HealthCheckResponse_SERVING {
		return fmt.Errorf("%w: %s", errNotServing, serving)
	}

	st, err := client.Status(ctx)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(out, Format(st))

	return err
}

// Format renders a status as the clock line followed by the alarm summary.
func Format(st domain.Status) string {
	return fmt.Sprintf("%s alarm=%s alarms=%d", st.Time, st.Alarm, st.Alarms)
}
