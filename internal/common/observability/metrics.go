package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
)

// Observability holds the OpenTelemetry meter used for model lifecycle
// instruments. Its exporter registers with the default Prometheus registry,
// so the readings appear on /metrics next to the promauto collectors.
type Observability struct {
	meterProvider *metric.MeterProvider
	meter         otelmetric.Meter
	modelCounter  otelmetric.Int64Counter
	parseDuration otelmetric.Float64Histogram
	removeCounter otelmetric.Int64Counter
}

// Logger is the subset of logger.Logger needed here.
type Logger interface {
	Warn(msg string, fields map[string]interface{})
}

func New(serviceName string, log Logger) *Observability {
	exporter, err := prometheus.New()
	if err != nil {
		if log != nil {
			log.Warn("Failed to create Prometheus exporter", map[string]interface{}{
				"error": err.Error(),
			})
		}
		return &Observability{}
	}

	provider := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(provider)

	return newWithProvider(provider, serviceName)
}

func newWithProvider(provider *metric.MeterProvider, serviceName string) *Observability {
	meter := provider.Meter(serviceName)

	modelCounter, _ := meter.Int64Counter(
		"models.processed",
		otelmetric.WithDescription("Number of uploaded models by outcome"),
	)

	parseDuration, _ := meter.Float64Histogram(
		"models.parse.duration",
		otelmetric.WithDescription("Model parse duration"),
		otelmetric.WithUnit("ms"),
	)

	removeCounter, _ := meter.Int64Counter(
		"models.removed",
		otelmetric.WithDescription("Number of models evicted from the store"),
	)

	return &Observability{
		meterProvider: provider,
		meter:         meter,
		modelCounter:  modelCounter,
		parseDuration: parseDuration,
		removeCounter: removeCounter,
	}
}

func (o *Observability) RecordModelProcessed(ctx context.Context, status string) {
	if o == nil || o.modelCounter == nil {
		return
	}
	o.modelCounter.Add(ctx, 1, otelmetric.WithAttributes(
		attribute.String("status", status),
	))
}

func (o *Observability) RecordParseDuration(ctx context.Context, duration time.Duration, status string) {
	if o == nil || o.parseDuration == nil {
		return
	}
	o.parseDuration.Record(ctx, float64(duration.Milliseconds()), otelmetric.WithAttributes(
		attribute.String("status", status),
	))
}

func (o *Observability) RecordModelRemoved(ctx context.Context, reason string) {
	if o == nil || o.removeCounter == nil {
		return
	}
	o.removeCounter.Add(ctx, 1, otelmetric.WithAttributes(
		attribute.String("reason", reason),
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
