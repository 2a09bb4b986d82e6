package observability

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

// PushJobName is the Pushgateway job the seeder reports under.
const PushJobName = "octofit_seed"

// SeedMetrics collects batch-job metrics for one seeder run. The seeder exits
// right after a run, so metrics are pushed rather than scraped.
type SeedMetrics struct {
	registry *prometheus.Registry

	DocumentsSeeded *prometheus.CounterVec
	StageDuration   *prometheus.GaugeVec
	StageFailures   *prometheus.CounterVec
	LastSuccess     prometheus.Gauge
}

// NewSeedMetrics registers the seeder metrics on a private registry.
func NewSeedMetrics() *SeedMetrics {
	m := &SeedMetrics{
		registry: prometheus.NewRegistry(),
		DocumentsSeeded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "octofit_seed_documents_total",
			Help: "Documents inserted by the seeder, by collection",
		}, []string{"collection"}),
		StageDuration: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "octofit_seed_stage_duration_seconds",
			Help: "Wall time of the last run of each seeding stage",
		}, []string{"stage"}),
		StageFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "octofit_seed_stage_failures_total",
			Help: "Seeding stages that ended in an error",
		}, []string{"stage"}),
		LastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "octofit_seed_last_success_timestamp_seconds",
			Help: "Unix time of the last successful seeder run",
		}),
	}
	m.registry.MustRegister(m.DocumentsSeeded, m.StageDuration, m.StageFailures, m.LastSuccess)
	return m
}

// ObserveStage records the duration and outcome of a stage.
func (m *SeedMetrics) ObserveStage(stage string, elapsed time.Duration, err error) {
	if m == nil {
		return
	}
	m.StageDuration.WithLabelValues(stage).Set(elapsed.Seconds())
	if err != nil {
		m.StageFailures.WithLabelValues(stage).Inc()
	}
}

// AddDocuments records inserted documents for a collection.
func (m *SeedMetrics) AddDocuments(collection string, n int) {
	if m == nil {
		return
	}
	m.DocumentsSeeded.WithLabelValues(collection).Add(float64(n))
}

// MarkSuccess stamps the completion time of a successful run.
func (m *SeedMetrics) MarkSuccess(at time.Time) {
	if m == nil {
		return
	}
	m.LastSuccess.Set(float64(at.Unix()))
}

// Registry exposes the underlying registry.
func (m *SeedMetrics) Registry() *prometheus.Registry {
	return m.registry
}

// Push sends the collected metrics to a Prometheus Pushgateway.
func (m *SeedMetrics) Push(ctx context.Context, gatewayURL string) error {
	if err := push.New(gatewayURL, PushJobName).Gatherer(m.registry).PushContext(ctx); err != nil {
		return fmt.Errorf("push metrics to %s: %w", gatewayURL, err)
	}
	return nil
}
