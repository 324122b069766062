package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"

	"channel-metrics-report/models"
)

// JobName is the Pushgateway job label for report runs.
const JobName = "channel_metrics_report"

// RunMetrics collects the gauges of one report run on a private registry.
type RunMetrics struct {
	registry   *prometheus.Registry
	loaded     prometheus.Gauge
	analysed   prometheus.Gauge
	reportRows *prometheus.GaugeVec
	duration   prometheus.Gauge
	lastRun    prometheus.Gauge
}

// NewRunMetrics registers the run gauges.
func NewRunMetrics() *RunMetrics {
	m := &RunMetrics{
		registry: prometheus.NewRegistry(),
		loaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "channel_report_loaded_records",
			Help: "Records read from the input CSV.",
		}),
		analysed: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "channel_report_analysed_records",
			Help: "Records left after dropping rows without a channel.",
		}),
		reportRows: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "channel_report_rows",
			Help: "Rows written per report.",
		}, []string{"report"}),
		duration: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "channel_report_duration_seconds",
			Help: "Wall time of the last run.",
		}),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "channel_report_last_success_timestamp_seconds",
			Help: "Unix time of the last successful run.",
		}),
	}
	m.registry.MustRegister(m.loaded, m.analysed, m.reportRows, m.duration, m.lastRun)
	return m
}

// Observe records the outcome of a successful run.
func (m *RunMetrics) Observe(summary *models.Summary, reports []*models.Report, elapsed time.Duration) {
	m.loaded.Set(float64(summary.LoadedRecords))
	m.analysed.Set(float64(summary.AnalysedRecords))
	for _, r := range reports {
		m.reportRows.WithLabelValues(r.Name).Set(float64(len(r.Rows)))
	}
	m.duration.Set(elapsed.Seconds())
	m.lastRun.SetToCurrentTime()
}

// Registry exposes the underlying registry.
func (m *RunMetrics) Registry() *prometheus.Registry {
	return m.registry
}

// Push sends the gauges to the Pushgateway at url, replacing the previous
// push for the same job and instance.
func (m *RunMetrics) Push(url, instance string) error {
	p := push.New(url, JobName).Gatherer(m.registry)
	if instance != "" {
		p = p.Grouping("instance", instance)
	}
	if err := p.Push(); err != nil {
		return fmt.Errorf("metrics: push to %s: %w", url, err)
	}
	return nil
}
