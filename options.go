package redsim

import (
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/zero-day-ai/redsim/engine"
	"github.com/zero-day-ai/redsim/scenario"
)

// Option configures a Simulator.
type Option func(*simulatorConfig)

// simulatorConfig holds configuration for the Simulator instance.
type simulatorConfig struct {
	scenario      *scenario.Scenario
	logger        *slog.Logger
	tracer        trace.Tracer
	meterProvider metric.MeterProvider
	clock         func() time.Time
	engineOpts    []engine.Option
}

// WithScenario sets the lab network the simulation starts from and resets to.
// The built-in scenario is used when not provided.
func WithScenario(s *scenario.Scenario) Option {
	return func(c *simulatorConfig) {
		c.scenario = s
	}
}

// WithLogger sets a custom logger for the simulator.
// If not provided, slog.Default() is used.
func WithLogger(logger *slog.Logger) Option {
	return func(c *simulatorConfig) {
		c.logger = logger
	}
}

// WithTracer sets an OpenTelemetry tracer for step spans.
func WithTracer(tracer trace.Tracer) Option {
	return func(c *simulatorConfig) {
		c.tracer = tracer
	}
}

// WithMeterProvider sets the provider of the step metrics.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(c *simulatorConfig) {
		c.meterProvider = mp
	}
}

// WithClock sets the time source for step and report timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *simulatorConfig) {
		c.clock = now
	}
}

// WithSeed seeds the random source for reproducible runs.
func WithSeed(seed uint64) Option {
	return WithEngineOptions(engine.WithSeed(seed))
}

// WithDelay sets the automatic stepping interval.
func WithDelay(d time.Duration) Option {
	return WithEngineOptions(engine.WithDelay(d))
}

// WithEngineOptions passes options through to the engine. They are applied
// after the options derived from the simulator configuration.
func WithEngineOptions(opts ...engine.Option) Option {
	return func(c *simulatorConfig) {
		c.engineOpts = append(c.engineOpts, opts...)
	}
}
