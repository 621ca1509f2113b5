package engine

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/zero-day-ai/redsim/types"
)

// stepMetrics holds the OpenTelemetry instruments of the engine.
type stepMetrics struct {
	// steps counts executed steps by phase and result
	steps metric.Int64Counter

	// compromises counts targets transitioned to compromised
	compromises metric.Int64Counter

	// duration records step execution time in milliseconds
	duration metric.Float64Histogram
}

func newStepMetrics(meter metric.Meter) (*stepMetrics, error) {
	m := &stepMetrics{}
	var err error

	m.steps, err = meter.Int64Counter(
		"redsim.steps",
		metric.WithDescription("Number of simulated attack steps executed"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("create steps counter: %w", err)
	}

	m.compromises, err = meter.Int64Counter(
		"redsim.compromises",
		metric.WithDescription("Number of simulated target compromises"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("create compromises counter: %w", err)
	}

	m.duration, err = meter.Float64Histogram(
		"redsim.step.duration",
		metric.WithDescription("Step execution duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, fmt.Errorf("create duration histogram: %w", err)
	}

	return m, nil
}

func (m *stepMetrics) record(ctx context.Context, step types.AttackStep, compromisedID string, elapsed time.Duration) {
	opts := metric.WithAttributes(
		attribute.String("phase", string(step.Phase)),
		attribute.String("result", string(step.Result)),
	)
	m.steps.Add(ctx, 1, opts)
	m.duration.Record(ctx, float64(elapsed.Microseconds())/1000, opts)

	if compromisedID != "" {
		m.compromises.Add(ctx, 1, metric.WithAttributes(attribute.String("target.id", compromisedID)))
	}
}
