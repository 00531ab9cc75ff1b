package observability

import (
	"context"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/otlptranslator"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"

	"maintenance-triage/internal/common/logger"
	"maintenance-triage/internal/common/metrics"
)

// Observability records job and diagnosis measurements through an OpenTelemetry meter
// exported in Prometheus format.
type Observability struct {
	meterProvider *metric.MeterProvider
	meter         otelmetric.Meter
	jobCounter    otelmetric.Int64Counter
	jobDuration   otelmetric.Float64Histogram
	diagnoses     otelmetric.Int64Counter
}

// New registers the exporter on the default Prometheus registerer.
func New(serviceName string, log logger.Logger) *Observability {
	return NewWithRegisterer(serviceName, promclient.DefaultRegisterer, log)
}

func NewWithRegisterer(serviceName string, reg promclient.Registerer, log logger.Logger) *Observability {
	// Underscore escaping keeps /metrics names in the classic jobs_processed_total form.
	exporter, err := prometheus.New(
		prometheus.WithRegisterer(reg),
		prometheus.WithTranslationStrategy(otlptranslator.UnderscoreEscapingWithSuffixes),
	)
	if err != nil {
		if log != nil {
			log.Warn("Failed to create Prometheus exporter", map[string]interface{}{"error": err.Error()})
		}
		return &Observability{}
	}

	provider := metric.NewMeterProvider(
		metric.WithReader(exporter),
		metric.WithResource(resource.NewSchemaless(attribute.String("service.name", serviceName))),
	)
	otel.SetMeterProvider(provider)

	meter := provider.Meter(serviceName)

	jobCounter, _ := meter.Int64Counter(
		"jobs.processed",
		otelmetric.WithDescription("Number of jobs processed"),
	)
	jobDuration, _ := meter.Float64Histogram(
		"jobs.duration",
		otelmetric.WithDescription("Job processing duration"),
		otelmetric.WithUnit("ms"),
	)
	diagnoses, _ := meter.Int64Counter(
		"triage.diagnoses",
		otelmetric.WithDescription("Diagnoses produced by the engine"),
	)

	return &Observability{
		meterProvider: provider,
		meter:         meter,
		jobCounter:    jobCounter,
		jobDuration:   jobDuration,
		diagnoses:     diagnoses,
	}
}

func (o *Observability) RecordJobProcessed(ctx context.Context, taskType, status string) {
	if o == nil || o.jobCounter == nil {
		return
	}
	o.jobCounter.Add(ctx, 1, otelmetric.WithAttributes(
		attribute.String("task_type", taskType),
		attribute.String("status", status),
	))
}

func (o *Observability) RecordJobDuration(ctx context.Context, taskType string, duration time.Duration, status string) {
	if o == nil || o.jobDuration == nil {
		return
	}
	o.jobDuration.Record(ctx, float64(duration.Milliseconds()), otelmetric.WithAttributes(
		attribute.String("task_type", taskType),
		attribute.String("status", status),
	))
}

// RecordJob records one finished worker job in both the Prometheus collectors and the meter.
// An empty errorCode means the job completed.
func (o *Observability) RecordJob(ctx context.Context, taskType, errorCode string, duration time.Duration) {
	metrics.ObserveJob(taskType, errorCode, duration.Seconds())

	status := "completed"
	if errorCode != "" {
		status = "failed"
	}
	o.RecordJobProcessed(ctx, taskType, status)
	o.RecordJobDuration(ctx, taskType, duration, status)
}

// RecordDiagnosis counts one engine result by category, urgency and source.
func (o *Observability) RecordDiagnosis(ctx context.Context, category, urgency, source string) {
	if o == nil || o.diagnoses == nil {
		return
	}
	o.diagnoses.Add(ctx, 1, otelmetric.WithAttributes(
		attribute.String("category", category),
		attribute.String("urgency", urgency),
		attribute.String("source", source),
	))
}

func (o *Observability) Shutdown() {
	if o == nil || o.meterProvider == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = o.meterProvider.Shutdown(ctx)
}
