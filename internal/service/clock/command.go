package clock

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	api "github.com/oshokin/alarm-clock/internal/api/grpc/clock"
	"github.com/oshokin/alarm-clock/internal/config"
	domain "github.com/oshokin/alarm-clock/internal/domain/clock"
	"github.com/oshokin/alarm-clock/internal/logger"
	repository "github.com/oshokin/alarm-clock/internal/repository/state"
	"github.com/oshokin/alarm-clock/internal/service/instance"
	"github.com/oshokin/alarm-clock/internal/sink"
	"github.com/oshokin/alarm-clock/internal/tick"
	"github.com/oshokin/alarm-clock/internal/version"
)

// Options controls the alarm-clock process. Non-empty fields override the settings file.
type Options struct {
	// ConfigPath specifies the path to settings YAML file.
	ConfigPath string
	// Alarm overrides the alarm time, formatted as H:M:S.
	Alarm string
	// Start overrides the start-up time, formatted as H:M:S.
	Start string
	// LogLevel overrides the diagnostics level.
	LogLevel string
	// TickPeriod overrides the length of one clock second.
	TickPeriod time.Duration
	// StatusAddress overrides the gRPC status listener.
	StatusAddress string
	// MetricsAddress overrides the Prometheus listener.
	MetricsAddress string
	// StateFile overrides the path of the persisted clock state.
	StateFile string
}

// Run loads settings, opens the output device and runs the clock until ctx is canceled.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "alarm-clock")

	settings, err := config.LoadOrDefault(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	if err := applyOverrides(settings, opts); err != nil {
		return err
	}

	if level, ok := logger.ParseLogLevel(settings.LogLevel); ok {
		logger.SetLevel(level)
	}

	if settings.SingleInstance {
		if err := instance.EnsureSingle(); err != nil {
			return err
		}
	}

	var repo repository.Repository
	if settings.StateFile != "" {
		repo = repository.NewFileRepository(settings.StateFile)

		// An explicit start time wins over the saved one.
		if opts.Start == "" {
			if err := resume(ctx, repo, settings); err != nil {
				return err
			}
		}
	}

	out, closer, err := openOutput(settings.Output)
	if err != nil {
		return err
	}

	defer func() {
		if err := closer.Close(); err != nil {
			logger.WarnKV(ctx, "Failed to close output device", "error", err)
		}
	}()

	source, err := tick.NewPeriodic(settings.TickPeriod)
	if err != nil {
		return err
	}

	defer source.Stop()

	svc, err := newService(settings, source, out)
	if err != nil {
		return fmt.Errorf("initialise clock: %w", err)
	}

	logger.InfoKV(ctx, "Alarm clock started",
		"version", version.Short(),
		"start", settings.Start.String(),
		"alarm", settings.Alarm.String(),
		"tick_period", settings.TickPeriod,
	)

	if err := svc.run(ctx); err != nil {
		return err
	}

	if repo != nil {
		if err := repo.Save(context.WithoutCancel(ctx), svc.Status(ctx)); err != nil {
			return fmt.Errorf("save state: %w", err)
		}
	}

	logger.Info(ctx, "Alarm clock stopped")

	return nil
}

// resume replaces the start time with the one saved by the previous run, if any.
func resume(ctx context.Context, repo repository.Repository, settings *config.Config) error {
	saved, err := repo.Load(ctx)

	switch {
	case err == nil:
		settings.Start = saved.Time
		logger.InfoKV(ctx, "Resuming from saved state", "start", saved.Time.String(), "alarms", saved.Alarms)
	case errors.Is(err, repository.ErrNotFound):
		// Keep the configured start time.
	default:
		return fmt.Errorf("load state: %w", err)
	}

	return nil
}

// applyOverrides copies non-empty options over settings and validates the result.
func applyOverrides(settings *config.Config, opts *Options) error {
	if opts.Alarm != "" {
		alarmTime, err := domain.ParseTime(opts.Alarm)
		if err != nil {
			return fmt.Errorf("parse alarm: %w", err)
		}

		settings.Alarm = alarmTime
	}

	if opts.Start != "" {
		startTime, err := domain.ParseTime(opts.Start)
		if err != nil {
			return fmt.Errorf("parse start: %w", err)
		}

		settings.Start = startTime
	}

	if opts.LogLevel != "" {
		settings.LogLevel = opts.LogLevel
	}

	if opts.TickPeriod != 0 {
		settings.TickPeriod = opts.TickPeriod
	}

	if opts.StatusAddress != "" {
		settings.StatusAddress = opts.StatusAddress
	}

	if opts.MetricsAddress != "" {
		settings.MetricsAddress = opts.MetricsAddress
	}

	if opts.StateFile != "" {
		settings.StateFile = opts.StateFile
	}

	return config.Validate(settings)
}

// nopCloser leaves stdout open.
type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// openOutput returns the configured output device: a serial port or stdout.
func openOutput(output config.Output) (sink.Sink, io.Closer, error) {
	if output.Device == "" {
		return sink.New(os.Stdout), nopCloser{}, nil
	}

	device, err := sink.OpenSerial(output.Device, output.BaudRate)
	if err != nil {
		return nil, nil, err
	}

	return device, device, nil
}

// serveStatus exposes the clock and the gRPC health service on address until ctx is done.
func serveStatus(ctx context.Context, address string, svc api.Service) error {
	ctx = logger.WithKV(ctx, "status_address", address)

	lc := net.ListenConfig{}

	lis, err := lc.Listen(ctx, "tcp", address)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", address, err)
	}

	grpcServer := grpc.NewServer()
	api.RegisterClockServiceServer(grpcServer, api.NewServer(svc))

	healthServer := health.NewServer()
	healthServer.SetServingStatus(api.ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(grpcServer, healthServer)

	logger.Info(ctx, "Status server listening")

	// Closed after GracefulStop so Run only returns once the server is down.
	done := make(chan struct{})

	go func() {
		<-ctx.Done()
		logger.Info(ctx, "Shutting down status server")
		healthServer.Shutdown()
		grpcServer.GracefulStop()
		close(done)
	}()

	if err := grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return fmt.Errorf("serve gRPC: %w", err)
	}

	<-done

	return nil
}
