// Package metrics exposes Prometheus counters for the clock pipeline.
//
// A nil *Collector is valid and records nothing, so components can be built
// without metrics in tests.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/oshokin/alarm-clock/internal/domain/clock"
	"github.com/oshokin/alarm-clock/internal/logger"
)

const (
	namespace = "alarm_clock"

	// readHeaderTimeout bounds slow clients of the metrics endpoint.
	readHeaderTimeout = 5 * time.Second
)

// Collector groups the clock metrics on a private registry.
type Collector struct {
	registry *prometheus.Registry

	ticks      *prometheus.CounterVec
	overflows  *prometheus.CounterVec
	alarms     prometheus.Counter
	batches    prometheus.Counter
	batchSize  prometheus.Histogram
	queueDepth prometheus.Gauge
}

// New creates and registers all clock metrics.
func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		ticks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ticks_total",
			Help:      "Number of ticks processed per cascade stage.",
		}, []string{"stage"}),
		overflows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "overflows_total",
			Help:      "Number of overflow releases given per cascade stage.",
		}, []string{"stage"}),
		alarms: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alarms_total",
			Help:      "Number of alarm notifications raised.",
		}),
		batches: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "printer_batches_total",
			Help:      "Number of drain-and-print cycles.",
		}),
		batchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "printer_batch_messages",
			Help:      "Messages drained per print cycle.",
			Buckets:   prometheus.LinearBuckets(1, 1, 6),
		}),
		queueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "mailbox_depth",
			Help:      "Messages waiting in the mailbox after the last enqueue.",
		}),
	}

	c.registry.MustRegister(c.ticks, c.overflows, c.alarms, c.batches, c.batchSize, c.queueDepth)

	return c
}

// Registry returns the registry the collector writes to.
func (c *Collector) Registry() *prometheus.Registry {
	if c == nil {
		return nil
	}

	return c.registry
}

// Tick records one processed tick of a stage.
func (c *Collector) Tick(kind clock.Kind) {
	if c == nil {
		return
	}

	c.ticks.WithLabelValues(kind.String()).Inc()
}

// Overflow records one overflow release given by a stage.
func (c *Collector) Overflow(kind clock.Kind) {
	if c == nil {
		return
	}

	c.overflows.WithLabelValues(kind.String()).Inc()
}

// Alarm records one alarm notification.
func (c *Collector) Alarm() {
	if c == nil {
		return
	}

	c.alarms.Inc()
}

// Batch records one print cycle that drained size messages.
func (c *Collector) Batch(size int) {
	if c == nil {
		return
	}

	c.batches.Inc()
	c.batchSize.Observe(float64(size))
}

// QueueDepth records the mailbox depth.
func (c *Collector) QueueDepth(depth int) {
	if c == nil {
		return
	}

	c.queueDepth.Set(float64(depth))
}

// Serve exposes /metrics on address until ctx is done.
func (c *Collector) Serve(ctx context.Context, address string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	}))

	lc := net.ListenConfig{}

	lis, err := lc.Listen(ctx, "tcp", address)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", address, err)
	}

	server := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	logger.InfoKV(ctx, "Metrics endpoint listening", "metrics_address", lis.Addr().String())

	go func() {
		<-ctx.Done()

		_ = server.Close()
	}()

	if err := server.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve metrics: %w", err)
	}

	return nil
}
