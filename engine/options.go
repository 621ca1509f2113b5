package engine

import (
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/zero-day-ai/redsim/types"
)

// TargetLabelPolicy controls the target label written on attack steps.
type TargetLabelPolicy string

const (
	// TargetLabelChosen labels a step with the name of the target chosen by
	// the decision, falling back to the placeholder when none was chosen.
	TargetLabelChosen TargetLabelPolicy = "chosen"

	// TargetLabelPlaceholder labels every step "Simulated Target".
	TargetLabelPlaceholder TargetLabelPolicy = "placeholder"
)

// IsValid returns true if the policy is a recognized value.
func (p TargetLabelPolicy) IsValid() bool {
	return p == TargetLabelChosen || p == TargetLabelPlaceholder
}

// DefaultSuccessRate is the probability that a simulated step succeeds.
const DefaultSuccessRate = 0.7

// Option configures an Engine.
type Option func(*Engine)

// WithRandom sets the random source. Use a scripted source in tests to force
// target choices and outcomes.
func WithRandom(r Random) Option {
	return func(e *Engine) {
		if r != nil {
			e.rand = r
		}
	}
}

// WithSeed seeds the default random source.
func WithSeed(seed uint64) Option {
	return func(e *Engine) {
		e.rand = NewRandom(seed)
	}
}

// WithClock sets the time source used for step timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.clock = now
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithTracer sets an OpenTelemetry tracer. Each executed step becomes a span.
func WithTracer(tracer trace.Tracer) Option {
	return func(e *Engine) {
		if tracer != nil {
			e.tracer = tracer
		}
	}
}

// WithMeterProvider sets the provider of the step metrics.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(e *Engine) {
		if mp != nil {
			e.meterProvider = mp
		}
	}
}

// WithDelay sets the initial automatic stepping interval.
func WithDelay(d time.Duration) Option {
	return func(e *Engine) {
		e.initialDelay = d
	}
}

// WithDelayConfig sets the bounds of the automatic stepping interval.
func WithDelayConfig(c types.DelayConfig) Option {
	return func(e *Engine) {
		e.delayCfg = c
	}
}

// WithSuccessRate sets the probability in [0, 1] that a step succeeds.
func WithSuccessRate(rate float64) Option {
	return func(e *Engine) {
		e.successRate = rate
	}
}

// WithTargetLabel sets the step target label policy.
func WithTargetLabel(p TargetLabelPolicy) Option {
	return func(e *Engine) {
		e.labelPolicy = p
	}
}

// WithRules replaces the target eligibility rules.
func WithRules(r Rules) Option {
	return func(e *Engine) {
		e.ruleDefs = r
	}
}

// WithOnStep registers a callback invoked after every executed step.
// The callback runs on the stepping goroutine and must not call back into
// the engine.
func WithOnStep(fn func(types.AttackStep)) Option {
	return func(e *Engine) {
		e.onStep = fn
	}
}
