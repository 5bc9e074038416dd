package attack

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/bgallie/mzenigma/attack"

type metrics struct {
	scored       metric.Int64Counter
	improvements metric.Int64Counter
	duration     metric.Float64Histogram
}

func newMetrics() (*metrics, error) {
	meter := otel.Meter(meterName)
	scored, err := meter.Int64Counter("mzenigma_attack_candidates_total",
		metric.WithDescription("Key candidates scored"))
	if err != nil {
		return nil, err
	}
	improvements, err := meter.Int64Counter("mzenigma_attack_improvements_total",
		metric.WithDescription("Improvements of the best score"))
	if err != nil {
		return nil, err
	}
	duration, err := meter.Float64Histogram("mzenigma_attack_duration_seconds",
		metric.WithDescription("Duration of an attack stage"), metric.WithUnit("s"))
	if err != nil {
		return nil, err
	}
	return &metrics{scored: scored, improvements: improvements, duration: duration}, nil
}

func (m *metrics) candidates(ctx context.Context, stage string, n int64) {
	m.scored.Add(ctx, n, metric.WithAttributes(attribute.String("stage", stage)))
}

func (m *metrics) improved(ctx context.Context, stage string) {
	m.improvements.Add(ctx, 1, metric.WithAttributes(attribute.String("stage", stage)))
}

// timed records the duration of a stage when the returned func is called.
func (m *metrics) timed(ctx context.Context, stage string) func() {
	start := time.Now()
	return func() {
		m.duration.Record(ctx, time.Since(start).Seconds(), metric.WithAttributes(attribute.String("stage", stage)))
	}
}
