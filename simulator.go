package redsim

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/zero-day-ai/redsim/config"
	"github.com/zero-day-ai/redsim/engine"
	"github.com/zero-day-ai/redsim/report"
	"github.com/zero-day-ai/redsim/scenario"
	"github.com/zero-day-ai/redsim/simulation"
	"github.com/zero-day-ai/redsim/types"
)

// Version is the redsim release version.
const Version = "0.1.0"

// Simulator owns one simulation session: the store, the engine driving it and
// the scenario it resets to.
type Simulator struct {
	scenario *scenario.Scenario
	store    *simulation.Store
	engine   *engine.Engine
	logger   *slog.Logger
	clock    func() time.Time
}

// New creates a simulator.
//
// Example:
//
//	sim, err := redsim.New(
//	    redsim.WithLogger(logger),
//	    redsim.WithSeed(42),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer sim.Stop()
func New(opts ...Option) (*Simulator, error) {
	cfg := &simulatorConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}
	if cfg.clock == nil {
		cfg.clock = time.Now
	}
	if cfg.scenario == nil {
		cfg.scenario = scenario.Default()
	}
	if err := cfg.scenario.Validate(); err != nil {
		return nil, err
	}

	store := simulation.NewStore(cfg.scenario.InitialState(),
		simulation.WithStoreLogger(cfg.logger))

	engineOpts := []engine.Option{
		engine.WithLogger(cfg.logger),
		engine.WithClock(cfg.clock),
	}
	if cfg.tracer != nil {
		engineOpts = append(engineOpts, engine.WithTracer(cfg.tracer))
	}
	if cfg.meterProvider != nil {
		engineOpts = append(engineOpts, engine.WithMeterProvider(cfg.meterProvider))
	}
	engineOpts = append(engineOpts, cfg.engineOpts...)

	eng, err := engine.New(store, engineOpts...)
	if err != nil {
		return nil, err
	}

	cfg.logger.Debug("simulator created",
		"scenario", cfg.scenario.Name,
		"targets", len(cfg.scenario.Targets),
		"delay", eng.Delay(),
	)

	return &Simulator{
		scenario: cfg.scenario,
		store:    store,
		engine:   eng,
		logger:   cfg.logger,
		clock:    cfg.clock,
	}, nil
}

// NewFromConfig creates a simulator from a loaded configuration. The
// scenario file named by the configuration is loaded unless WithScenario is
// also given. Explicit options override configured values.
func NewFromConfig(c *config.Config, opts ...Option) (*Simulator, error) {
	if c == nil {
		c = config.Default()
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}

	var base []Option
	if c.Scenario != "" {
		s, err := scenario.Load(c.Scenario)
		if err != nil {
			return nil, fmt.Errorf("failed to load scenario: %w", err)
		}
		base = append(base, WithScenario(s))
	}

	sim := c.Simulation
	engineOpts := []engine.Option{
		engine.WithDelayConfig(sim.GetDelayConfig()),
		engine.WithDelay(sim.GetDelay()),
		engine.WithSuccessRate(sim.GetSuccessRate()),
		engine.WithTargetLabel(engine.TargetLabelPolicy(sim.GetTargetLabel())),
	}
	if seed := sim.GetSeed(); seed != 0 {
		engineOpts = append(engineOpts, engine.WithSeed(seed))
	}
	base = append(base, WithEngineOptions(engineOpts...))

	return New(append(base, opts...)...)
}

// Scenario returns the scenario the simulation resets to.
func (s *Simulator) Scenario() *scenario.Scenario {
	return s.scenario
}

// Store returns the simulation store.
func (s *Simulator) Store() *simulation.Store {
	return s.store
}

// Engine returns the engine driving the store.
func (s *Simulator) Engine() *engine.Engine {
	return s.engine
}

// State returns a snapshot of the current state.
func (s *Simulator) State() simulation.State {
	return s.store.Snapshot()
}

// Subscribe registers fn for state changes. The returned function removes it.
func (s *Simulator) Subscribe(fn simulation.Listener) func() {
	return s.store.Subscribe(fn)
}

// Start begins automatic stepping.
func (s *Simulator) Start(ctx context.Context) error {
	return s.engine.Start(ctx)
}

// Stop ends automatic stepping. It is safe to call at any time.
func (s *Simulator) Stop() {
	s.engine.Stop()
}

// Running reports whether automatic stepping is active.
func (s *Simulator) Running() bool {
	return s.engine.Running()
}

// Step executes one manual step. It fails while the simulation is running.
func (s *Simulator) Step(ctx context.Context) (types.AttackStep, error) {
	return s.engine.Step(ctx)
}

// SetDelay changes the automatic stepping interval.
func (s *Simulator) SetDelay(d time.Duration) error {
	return s.engine.SetDelay(d)
}

// Delay returns the automatic stepping interval.
func (s *Simulator) Delay() time.Duration {
	return s.engine.Delay()
}

// Reset stops the simulation and restores the scenario's initial state.
func (s *Simulator) Reset() {
	s.engine.Reset(s.scenario.InitialState())
}

// Report derives a threat report from the current state.
func (s *Simulator) Report() report.Report {
	return report.Generate(s.store.Snapshot(), s.clock())
}

// Export writes the current report to w.
func (s *Simulator) Export(w io.Writer, format report.ExportFormat) error {
	return report.Write(w, s.Report(), format)
}

// ReportFilename returns the date-stamped file name for an export.
func (s *Simulator) ReportFilename(format report.ExportFormat) string {
	return report.Filename(s.clock(), format)
}
