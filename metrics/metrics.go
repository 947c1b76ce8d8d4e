// Package metrics exports probe outcomes as Prometheus metrics.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/pouriyajamshidi/tcpwatch/statistics"
)

const namespace = "tcpwatch"

// Exporter mirrors every tracked probe into a private Prometheus registry.
// Observe must only be called from the goroutine that owns the statistics.
type Exporter struct {
	registry *prometheus.Registry

	probesTotal     *prometheus.CounterVec
	latency         prometheus.Histogram
	up              prometheus.Gauge
	successStreak   prometheus.Gauge
	failureStreak   prometheus.Gauge
	uptimeSeconds   prometheus.Counter
	downtimeSeconds prometheus.Counter
}

// NewExporter creates an exporter whose metrics carry the target and port as
// constant labels.
func NewExporter(s *statistics.Statistics) *Exporter {
	labels := prometheus.Labels{
		"target": s.Hostname,
		"ip":     s.IP.String(),
		"port":   s.PortStr(),
	}

	e := &Exporter{
		registry: prometheus.NewRegistry(),
		probesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   namespace,
				Name:        "probes_total",
				Help:        "Total number of TCP probes by result",
				ConstLabels: labels,
			},
			[]string{"result"},
		),
		latency: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace:   namespace,
				Name:        "connect_duration_seconds",
				Help:        "Time to establish a TCP connection for successful probes",
				Buckets:     prometheus.ExponentialBuckets(0.0005, 2, 14),
				ConstLabels: labels,
			},
		),
		up: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace:   namespace,
				Name:        "up",
				Help:        "Outcome of the latest probe: 1 = up, 0 = down",
				ConstLabels: labels,
			},
		),
		successStreak: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace:   namespace,
				Name:        "success_streak",
				Help:        "Number of consecutive successful probes",
				ConstLabels: labels,
			},
		),
		failureStreak: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace:   namespace,
				Name:        "failure_streak",
				Help:        "Number of consecutive failed probes",
				ConstLabels: labels,
			},
		),
		uptimeSeconds: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace:   namespace,
				Name:        "uptime_seconds_total",
				Help:        "Cycle time attributed to successful probes",
				ConstLabels: labels,
			},
		),
		downtimeSeconds: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace:   namespace,
				Name:        "downtime_seconds_total",
				Help:        "Cycle time attributed to failed probes",
				ConstLabels: labels,
			},
		),
	}

	e.registry.MustRegister(
		e.probesTotal,
		e.latency,
		e.up,
		e.successStreak,
		e.failureStreak,
		e.uptimeSeconds,
		e.downtimeSeconds,
	)

	return e
}

// Observe records one tracked probe.
func (e *Exporter) Observe(p statistics.Probe, s *statistics.Statistics) {
	if p.Successful() {
		e.probesTotal.WithLabelValues("success").Inc()
		e.latency.Observe(p.Elapsed.Seconds())
		e.up.Set(1)
		e.uptimeSeconds.Add(p.CycleDuration.Seconds())
	} else {
		e.probesTotal.WithLabelValues("failure").Inc()
		e.up.Set(0)
		e.downtimeSeconds.Add(p.CycleDuration.Seconds())
	}

	e.successStreak.Set(float64(s.OngoingSuccessfulProbes))
	e.failureStreak.Set(float64(s.OngoingUnsuccessfulProbes))
}

// Registry exposes the underlying registry.
func (e *Exporter) Registry() *prometheus.Registry {
	return e.registry
}

// Handler serves the exporter's metrics.
func (e *Exporter) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(e.registry, promhttp.HandlerOpts{}))
	return mux
}

// Serve listens on addr until ctx is done.
func (e *Exporter) Serve(ctx context.Context, addr string, log zerolog.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           e.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("metrics server shutdown")
		}
	}()

	log.Info().Str("addr", addr).Msg("serving metrics")

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
