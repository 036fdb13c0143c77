package clock

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/oshokin/alarm-clock/internal/alarm"
	"github.com/oshokin/alarm-clock/internal/cascade"
	"github.com/oshokin/alarm-clock/internal/config"
	domain "github.com/oshokin/alarm-clock/internal/domain/clock"
	"github.com/oshokin/alarm-clock/internal/mailbox"
	"github.com/oshokin/alarm-clock/internal/metrics"
	"github.com/oshokin/alarm-clock/internal/printer"
	"github.com/oshokin/alarm-clock/internal/semaphore"
	"github.com/oshokin/alarm-clock/internal/service/action"
	"github.com/oshokin/alarm-clock/internal/sink"
	"github.com/oshokin/alarm-clock/internal/tick"
)

// service owns every task of one running clock.
type service struct {
	// cascade holds the seconds, minutes and hours stages.
	cascade *cascade.Cascade
	// detector joins the stage matches into alarm notifications.
	detector *alarm.Detector
	// printer drains the mailbox onto the output device.
	printer *printer.Printer
	// watcher prints the alarm line.
	watcher *alarm.Watcher
	// collector is shared by every task.
	collector *metrics.Collector

	// statusAddress and metricsAddress are optional listeners.
	statusAddress  string
	metricsAddress string
}

// newService wires a clock driven by source and printing to out.
func newService(settings *config.Config, source tick.Source, out sink.Sink) (*service, error) {
	collector := metrics.New()

	inbox, err := mailbox.New(settings.QueueCapacity)
	if err != nil {
		return nil, err
	}

	notify := semaphore.New()
	detector := alarm.NewDetector(settings.Alarm, notify, collector)

	stages, err := cascade.New(&cascade.Options{
		Source:   source,
		Start:    settings.Start,
		Reporter: detector,
		Out:      inbox,
		Recorder: collector,
	})
	if err != nil {
		return nil, err
	}

	var watcherOptions []alarm.WatcherOption

	if settings.Output.Color {
		watcherOptions = append(watcherOptions, alarm.WithHighlight())
	}

	if len(settings.AlarmCommand) > 0 {
		watcherOptions = append(watcherOptions, alarm.WithAction(action.Command(settings.AlarmCommand)))
	}

	return &service{
		cascade:        stages,
		detector:       detector,
		printer:        printer.New(inbox, out, settings.Start, collector),
		watcher:        alarm.NewWatcher(notify, out, watcherOptions...),
		collector:      collector,
		statusAddress:  settings.StatusAddress,
		metricsAddress: settings.MetricsAddress,
	}, nil
}

// Status returns the displayed time, the alarm target and the number of alarms so far.
func (s *service) Status(context.Context) domain.Status {
	return domain.Status{
		Time:   s.printer.Current(),
		Alarm:  s.detector.Target(),
		Alarms: s.detector.Fired(),
	}
}

// run primes the detector and runs every task until ctx is done or one of them fails.
func (s *service) run(ctx context.Context) error {
	s.cascade.Prime()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return s.cascade.Run(ctx)
	})

	g.Go(func() error {
		return s.printer.Run(ctx)
	})

	g.Go(func() error {
		return s.watcher.Run(ctx)
	})

	if s.statusAddress != "" {
		g.Go(func() error {
			return serveStatus(ctx, s.statusAddress, s)
		})
	}

	if s.metricsAddress != "" {
		g.Go(func() error {
			return s.collector.Serve(ctx, s.metricsAddress)
		})
	}

	return g.Wait()
}
