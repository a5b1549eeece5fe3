package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/wowsimlabs/simops/internal/models"
)

const (
	// OutcomeSuccess labels report builds that produced a report.
	OutcomeSuccess = "success"
	// OutcomeError labels report builds that failed outright.
	OutcomeError = "error"
)

var (
	reportsBuiltTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "simops",
			Name:      "reports_built_total",
			Help:      "Total number of health reports built, partitioned by outcome.",
		},
		[]string{"outcome"},
	)

	reportBuildDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "simops",
			Name:      "report_build_duration_seconds",
			Help:      "Health report build latency in seconds.",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
	)

	healthStatus = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "simops",
			Name:      "health_status",
			Help:      "Current server health: 0 healthy, 1 degraded, 2 critical.",
		},
	)

	pipelineRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "simops",
			Name:      "pipeline_runs_total",
			Help:      "Total number of deployment pipeline runs, partitioned by outcome.",
		},
		[]string{"outcome"},
	)

	pipelineDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "simops",
			Name:      "pipeline_duration_seconds",
			Help:      "Deployment pipeline run duration in seconds.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15, 30},
		},
	)

	canarySamplesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "simops",
			Name:      "canary_samples_total",
			Help:      "Total canary health samples taken, partitioned by sampled status.",
		},
		[]string{"status"},
	)
)

// Register attaches simops collectors to the supplied Prometheus registerer.
func Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		reportsBuiltTotal,
		reportBuildDurationSeconds,
		healthStatus,
		pipelineRunsTotal,
		pipelineDurationSeconds,
		canarySamplesTotal,
	}

	for _, collector := range collectors {
		if err := reg.Register(collector); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
				continue
			}
			return err
		}
	}
	return nil
}

// ObserveReportBuild records one report build and its outcome.
func ObserveReportBuild(duration time.Duration, err error) {
	label := OutcomeSuccess
	if err != nil {
		label = OutcomeError
	}
	reportsBuiltTotal.WithLabelValues(label).Inc()
	if duration < 0 {
		duration = 0
	}
	reportBuildDurationSeconds.Observe(duration.Seconds())
}

// SetHealthStatus publishes the latest evaluated status as a gauge level.
func SetHealthStatus(status models.HealthStatus) {
	healthStatus.Set(float64(status.Rank()))
}

// ObservePipelineRun records one completed pipeline run.
func ObservePipelineRun(duration time.Duration, outcome models.PipelineOutcome) {
	pipelineRunsTotal.WithLabelValues(string(outcome)).Inc()
	if duration < 0 {
		duration = 0
	}
	pipelineDurationSeconds.Observe(duration.Seconds())
}

// ObserveCanarySample counts one canary health sample.
func ObserveCanarySample(status models.HealthStatus) {
	canarySamplesTotal.WithLabelValues(string(status)).Inc()
}
