package observability

import (
	"context"
	"log"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
)

type Observability struct {
	meterProvider    *metric.MeterProvider
	meter            otelmetric.Meter
	decisionCounter  otelmetric.Int64Counter
	decisionDuration otelmetric.Float64Histogram
}

func New(serviceName string) *Observability {
	exporter, err := prometheus.New()
	if err != nil {
		log.Printf("Failed to create Prometheus exporter: %v", err)
		return &Observability{}
	}

	provider := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(provider)

	meter := provider.Meter(serviceName)

	decisionCounter, _ := meter.Int64Counter(
		"routing.decisions",
		otelmetric.WithDescription("Number of routing decisions made"),
	)

	decisionDuration, _ := meter.Float64Histogram(
		"routing.decision.duration",
		otelmetric.WithDescription("Routing decision duration"),
		otelmetric.WithUnit("ms"),
	)

	return &Observability{
		meterProvider:    provider,
		meter:            meter,
		decisionCounter:  decisionCounter,
		decisionDuration: decisionDuration,
	}
}

func (o *Observability) RecordDecision(ctx context.Context, strategy string) {
	if o.decisionCounter != nil {
		o.decisionCounter.Add(ctx, 1, otelmetric.WithAttributes(
			attribute.String("strategy", strategy),
		))
	}
}

func (o *Observability) RecordDecisionDuration(ctx context.Context, duration time.Duration, strategy string) {
	if o.decisionDuration != nil {
		o.decisionDuration.Record(ctx, float64(duration.Milliseconds()), otelmetric.WithAttributes(
			attribute.String("strategy", strategy),
		))
	}
}

func (o *Observability) Shutdown() {
	if o.meterProvider != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		o.meterProvider.Shutdown(ctx)
	}
}
