// Package metrics exposes Prometheus metrics describing the analyses Pod Doctor performs.
package metrics

import (
	"fmt"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/supporttools/pod-doctor/pkg/types"
)

// Metrics contains all the Prometheus metrics used by Pod Doctor
type Metrics struct {
	// Counter metrics
	AnalysesTotal       *prometheus.CounterVec
	IssuesTotal         *prometheus.CounterVec
	RejectedInputsTotal *prometheus.CounterVec

	// Gauge metrics
	Info             *prometheus.GaugeVec
	StartTimeSeconds prometheus.Gauge

	// Histogram metrics
	AnalysisDuration *prometheus.HistogramVec
	InputBytes       *prometheus.HistogramVec
}

// NewMetrics creates a new Metrics instance with all metric definitions
func NewMetrics(namespace string, constLabels prometheus.Labels) (*Metrics, error) {
	if namespace == "" {
		namespace = types.DefaultMetricsNamespace
	}

	labels := make(prometheus.Labels)
	for k, v := range constLabels {
		labels[k] = v
	}

	m := &Metrics{
		AnalysesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   namespace,
				Name:        "analyses_total",
				Help:        "Total number of diagnostic texts analyzed, by outcome (clean or issues)",
				ConstLabels: labels,
			},
			[]string{"source", "outcome"},
		),

		IssuesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   namespace,
				Name:        "issues_total",
				Help:        "Total number of issues detected, by issue name and severity",
				ConstLabels: labels,
			},
			[]string{"issue", "severity"},
		),

		RejectedInputsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   namespace,
				Name:        "rejected_inputs_total",
				Help:        "Total number of submissions rejected before analysis",
				ConstLabels: labels,
			},
			[]string{"source", "reason"},
		),

		Info: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace:   namespace,
				Name:        "info",
				Help:        "Pod Doctor version and build information",
				ConstLabels: labels,
			},
			[]string{"version", "git_commit", "go_version"},
		),

		StartTimeSeconds: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace:   namespace,
				Name:        "start_time_seconds",
				Help:        "Unix timestamp when Pod Doctor was started",
				ConstLabels: labels,
			},
		),

		AnalysisDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace:   namespace,
				Name:        "analysis_duration_seconds",
				Help:        "Time spent analyzing one submission",
				Buckets:     []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
				ConstLabels: labels,
			},
			[]string{"source"},
		),

		InputBytes: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace:   namespace,
				Name:        "input_bytes",
				Help:        "Size of analyzed submissions in bytes",
				Buckets:     prometheus.ExponentialBuckets(256, 4, 8),
				ConstLabels: labels,
			},
			[]string{"source"},
		),
	}

	return m, nil
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.AnalysesTotal,
		m.IssuesTotal,
		m.RejectedInputsTotal,
		m.Info,
		m.StartTimeSeconds,
		m.AnalysisDuration,
		m.InputBytes,
	}
}

// Register registers all metrics with the provided registry
func (m *Metrics) Register(registry *prometheus.Registry) error {
	for _, collector := range m.collectors() {
		if err := registry.Register(collector); err != nil {
			return fmt.Errorf("failed to register metric: %w", err)
		}
	}
	return nil
}

// Unregister removes all metrics from the provided registry
func (m *Metrics) Unregister(registry *prometheus.Registry) {
	for _, collector := range m.collectors() {
		registry.Unregister(collector)
	}
}

// SetBuildInfo records version information and the process start time.
func (m *Metrics) SetBuildInfo(version, gitCommit string, started time.Time) {
	m.Info.WithLabelValues(version, gitCommit, runtime.Version()).Set(1)
	m.StartTimeSeconds.Set(float64(started.Unix()))
}

// ObserveAnalysis records one completed analysis.
func (m *Metrics) ObserveAnalysis(source string, inputBytes int, duration time.Duration, issues []types.Issue) {
	outcome := "clean"
	if len(issues) > 0 {
		outcome = "issues"
	}

	m.AnalysesTotal.WithLabelValues(source, outcome).Inc()
	m.AnalysisDuration.WithLabelValues(source).Observe(duration.Seconds())
	m.InputBytes.WithLabelValues(source).Observe(float64(inputBytes))

	for _, issue := range issues {
		m.IssuesTotal.WithLabelValues(issue.Name, string(issue.Severity)).Inc()
	}
}

// ObserveRejected records a submission rejected before analysis.
func (m *Metrics) ObserveRejected(source, reason string) {
	m.RejectedInputsTotal.WithLabelValues(source, reason).Inc()
}

// NewRegistry creates a new Prometheus registry with Go runtime and process collectors.
// This registry is separate from the default global registry to avoid conflicts
func NewRegistry() *prometheus.Registry {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return registry
}
