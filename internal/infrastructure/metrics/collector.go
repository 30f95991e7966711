package metrics

import (
	"net/http"

	"ims-storefront-bridge/internal/domain"
	"ims-storefront-bridge/internal/ports"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Prometheus metric names.
const (
	MetricInstallTransitionsTotal = "bridge_install_transitions_total"
	MetricProductsSyncedTotal     = "bridge_products_synced_total"
	MetricSyncRunsTotal           = "bridge_sync_runs_total"
	MetricSyncRunDurationSeconds  = "bridge_sync_run_duration_seconds"
	MetricSyncLastSuccess         = "bridge_sync_last_success_timestamp_seconds"
)

// Collector implements ports.Metrics on a private Prometheus registry
type Collector struct {
	registry *prometheus.Registry

	installTransitions *prometheus.CounterVec
	productsSynced     *prometheus.CounterVec
	syncRuns           *prometheus.CounterVec
	syncRunDuration    prometheus.Histogram
	lastSuccess        *prometheus.GaugeVec
}

// NewCollector creates and registers the bridge metrics
func NewCollector() *Collector {
	registry := prometheus.NewRegistry()

	c := &Collector{
		registry: registry,
		installTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: MetricInstallTransitionsTotal,
			Help: "Install handshake state transitions.",
		}, []string{"state"}),
		productsSynced: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: MetricProductsSyncedTotal,
			Help: "Products processed by catalog sync, by outcome.",
		}, []string{"status"}),
		syncRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: MetricSyncRunsTotal,
			Help: "Catalog sync runs, by result.",
		}, []string{"result"}),
		syncRunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    MetricSyncRunDurationSeconds,
			Help:    "Duration of completed catalog sync runs.",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600, 1800},
		}),
		lastSuccess: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: MetricSyncLastSuccess,
			Help: "Unix time of the last sync run that completed without product failures.",
		}, []string{"seller"}),
	}

	registry.MustRegister(
		c.installTransitions,
		c.productsSynced,
		c.syncRuns,
		c.syncRunDuration,
		c.lastSuccess,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return c
}

// InstallTransition counts one handshake state transition
func (c *Collector) InstallTransition(state domain.InstallState) {
	c.installTransitions.WithLabelValues(string(state)).Inc()
}

// ProductSynced counts one product outcome
func (c *Collector) ProductSynced(status domain.SyncStatus) {
	c.productsSynced.WithLabelValues(string(status)).Inc()
}

// SyncRunFinished records the result of a run. A run that could not start counts as "error".
func (c *Collector) SyncRunFinished(report *domain.SyncReport, err error) {
	switch {
	case err != nil || report == nil:
		c.syncRuns.WithLabelValues("error").Inc()
		return
	case report.Failed > 0:
		c.syncRuns.WithLabelValues("partial").Inc()
	default:
		c.syncRuns.WithLabelValues("success").Inc()
		c.lastSuccess.WithLabelValues(report.SellerNumber).Set(float64(report.FinishedAt.Unix()))
	}
	c.syncRunDuration.Observe(report.FinishedAt.Sub(report.StartedAt).Seconds())
}

// Handler serves the registry in the Prometheus exposition format
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

var _ ports.Metrics = (*Collector)(nil)
