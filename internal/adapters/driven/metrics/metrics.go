// Package metrics exports autosave and version history metrics to
// Prometheus on a dedicated registry.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/custodia-labs/contentbuilder/internal/core/ports/driven"
	"github.com/custodia-labs/contentbuilder/internal/logger"
)

// Ensure Metrics implements the observer interfaces.
var (
	_ driven.AutosaveObserver = (*Metrics)(nil)
	_ driven.VersionObserver  = (*Metrics)(nil)
)

const namespace = "contentbuilder"

// Metrics holds every collector.
type Metrics struct {
	registry *prometheus.Registry

	saves        *prometheus.CounterVec
	retries      prometheus.Counter
	saveDuration prometheus.Histogram
	payloadBytes prometheus.Gauge
	versions     *prometheus.GaugeVec
}

// New registers the collectors on a fresh registry, together with the Go
// runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		saves: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "autosave_total",
				Help:      "Completed autosaves by outcome (saved, fallback, failed)",
			},
			[]string{"outcome"},
		),
		retries: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "autosave_retries_total",
				Help:      "Primary write attempts beyond the first",
			},
		),
		saveDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "autosave_duration_seconds",
				Help:      "Time from dequeue to completion of an autosave",
				Buckets:   []float64{.001, .005, .01, .05, .1, .5, 1, 2.5, 5, 10},
			},
		),
		payloadBytes: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "autosave_payload_bytes",
				Help:      "Encoded size of the most recent autosave payload",
			},
		),
		versions: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "versions",
				Help:      "Stored versions by type (all, auto)",
			},
			[]string{"type"},
		),
	}
}

// Registry returns the registry holding the collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveSave records one completed autosave.
func (m *Metrics) ObserveSave(event driven.SaveEvent) {
	m.saves.WithLabelValues(string(event.Outcome)).Inc()
	if event.Attempts > 1 {
		m.retries.Add(float64(event.Attempts - 1))
	}
	m.saveDuration.Observe(event.Duration.Seconds())
	if event.Bytes > 0 {
		m.payloadBytes.Set(float64(event.Bytes))
	}
}

// ObserveVersions records the size of the version history.
func (m *Metrics) ObserveVersions(total, auto int) {
	m.versions.WithLabelValues("all").Set(float64(total))
	m.versions.WithLabelValues("auto").Set(float64(auto))
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is cancelled.
func (m *Metrics) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("metrics listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
