package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worker_jobs_active",
			Help: "Number of active jobs per worker",
		},
		[]string{"task_type"},
	)

	DiagnosesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "triage_diagnoses_total",
			Help: "Diagnoses produced, by resolved category, urgency and source",
		},
		[]string{"category", "urgency", "source"},
	)

	RemoteModelFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "triage_remote_model_fallbacks_total",
			Help: "Remote model calls that fell back to the rule-based result",
		},
		[]string{"reason"},
	)

	DiagnosisDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "triage_diagnosis_duration_seconds",
			Help:    "Time spent producing a diagnosis",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		},
	)
)

// ObserveJob records the outcome of one worker job. An empty errorCode means success.
func ObserveJob(taskType, errorCode string, seconds float64) {
	WorkerJobDuration.WithLabelValues(taskType).Observe(seconds)
	if errorCode == "" {
		WorkerJobsCompleted.WithLabelValues(taskType).Inc()
		return
	}
	WorkerJobsFailed.WithLabelValues(taskType, errorCode).Inc()
}
