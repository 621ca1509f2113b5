package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/zero-day-ai/redsim/simerr"
	"github.com/zero-day-ai/redsim/simulation"
	"github.com/zero-day-ai/redsim/types"
)

const instrumentationName = "github.com/zero-day-ai/redsim/engine"

// Engine drives a simulation store. It turns the current state into a
// decision, draws an outcome and dispatches the resulting actions. Steps can
// be executed one at a time or scheduled automatically with Start.
//
// Engine is safe for concurrent use. Step execution is serialized: a manual
// step and an automatic tick never interleave.
type Engine struct {
	store *simulation.Store

	rand        Random
	clock       func() time.Time
	logger      *slog.Logger
	tracer      trace.Tracer
	metrics     *stepMetrics
	successRate float64
	labelPolicy TargetLabelPolicy
	onStep      func(types.AttackStep)

	ruleDefs Rules
	rules    *ruleSet

	delayCfg     types.DelayConfig
	initialDelay time.Duration
	delay        atomic.Int64

	meterProvider metric.MeterProvider

	// stepMu serializes step execution.
	stepMu sync.Mutex

	// mu guards the scheduler fields below.
	mu          sync.Mutex
	cancel      context.CancelFunc
	done        chan struct{}
	wake        chan struct{}
	unsubscribe func()
}

// New creates an engine bound to store.
func New(store *simulation.Store, opts ...Option) (*Engine, error) {
	if store == nil {
		return nil, simerr.NewValidationError("engine.New", simerr.ErrNoStore)
	}

	e := &Engine{
		store:       store,
		clock:       time.Now,
		logger:      slog.Default(),
		successRate: DefaultSuccessRate,
		labelPolicy: TargetLabelChosen,
		ruleDefs:    DefaultRules(),
		delayCfg:    types.DefaultDelayConfig(),
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.rand == nil {
		e.rand = NewRandom(0)
	}
	if e.tracer == nil {
		e.tracer = otel.GetTracerProvider().Tracer(instrumentationName)
	}
	if e.meterProvider == nil {
		e.meterProvider = otel.GetMeterProvider()
	}

	if e.successRate < 0 || e.successRate > 1 {
		return nil, simerr.NewConfigurationError("engine.New",
			fmt.Errorf("%w: success rate %v outside [0, 1]", simerr.ErrInvalidConfig, e.successRate))
	}
	if !e.labelPolicy.IsValid() {
		return nil, simerr.NewConfigurationError("engine.New",
			fmt.Errorf("%w: unknown target label policy %q", simerr.ErrInvalidConfig, e.labelPolicy))
	}
	if err := e.delayCfg.Validate(); err != nil {
		return nil, simerr.NewConfigurationError("engine.New",
			fmt.Errorf("%w: %v", simerr.ErrInvalidConfig, err))
	}

	delay := e.delayCfg.ResolveDelay(e.initialDelay)
	if err := e.delayCfg.ValidateDelay(delay); err != nil {
		return nil, simerr.NewConfigurationError("engine.New",
			fmt.Errorf("%w: %v", simerr.ErrInvalidDelay, err))
	}
	e.delay.Store(int64(delay))

	rules, err := compileRules(e.ruleDefs, e.logger)
	if err != nil {
		return nil, simerr.NewConfigurationError("engine.New",
			fmt.Errorf("%w: %v", simerr.ErrInvalidConfig, err))
	}
	e.rules = rules

	m, err := newStepMetrics(e.meterProvider.Meter(instrumentationName))
	if err != nil {
		return nil, simerr.NewInternalError("engine.New", err)
	}
	e.metrics = m

	return e, nil
}

// Store returns the store the engine drives.
func (e *Engine) Store() *simulation.Store {
	return e.store
}

// Step executes one step on demand. It is the only way to step outside the
// scheduler and is rejected with ErrAutoStepActive while the simulation is
// running.
func (e *Engine) Step(ctx context.Context) (types.AttackStep, error) {
	e.stepMu.Lock()
	defer e.stepMu.Unlock()

	if e.store.IsRunning() {
		return types.AttackStep{}, simerr.NewStateError("Engine.Step", simerr.ErrAutoStepActive)
	}
	return e.executeLocked(ctx)
}

func (e *Engine) executeLocked(ctx context.Context) (types.AttackStep, error) {
	if err := ctx.Err(); err != nil {
		return types.AttackStep{}, err
	}

	start := time.Now()
	ctx, span := e.tracer.Start(ctx, "redsim.step")
	defer span.End()

	state := e.store.Snapshot()
	decision := e.GenerateDecision(state)
	e.store.Dispatch(simulation.SetAIDecision{Text: decision.Reasoning})

	success := e.rand.Float64() < e.successRate

	step := types.AttackStep{
		ID:        "step-" + uuid.NewString(),
		Timestamp: e.clock(),
		Phase:     decision.Phase,
		Action:    decision.Action,
		Target:    e.targetLabel(decision),
		Result:    types.ResultFailure,
		MitreID:   fmt.Sprintf("T%d", 1000+e.rand.IntN(9000)),
	}
	if success {
		step.Result = types.ResultSuccess
		step.Details = decision.Reasoning + " Result: Successful execution"
	} else {
		step.Details = decision.Reasoning + " Result: Attack failed, adapting strategy"
	}
	e.store.Dispatch(simulation.AddAttackStep{Step: step})

	var compromisedID string
	if success && state.CurrentPhase == types.PhaseExploitation {
		if t, ok := state.FirstTargetWithStatus(types.TargetOnline); ok {
			e.store.Dispatch(simulation.UpdateTargetStatus{TargetID: t.ID, Status: types.TargetCompromised})
			e.store.Dispatch(simulation.CompromiseTarget{TargetID: t.ID})
			compromisedID = t.ID
		}
	}

	next := state.CurrentPhase
	if success && !state.CurrentPhase.IsTerminal() {
		next = state.CurrentPhase.Next()
		if !state.CurrentPhase.IsValid() {
			next = types.PhaseReconnaissance
		}
		e.store.Dispatch(simulation.SetCurrentPhase{Phase: next})
	}

	span.SetAttributes(
		attribute.String("redsim.step.id", step.ID),
		attribute.String("redsim.phase", string(step.Phase)),
		attribute.String("redsim.action", step.Action),
		attribute.String("redsim.result", string(step.Result)),
		attribute.String("redsim.target", step.Target),
		attribute.String("redsim.mitre_id", step.MitreID),
	)
	if compromisedID != "" {
		span.SetAttributes(attribute.String("redsim.compromised", compromisedID))
	}
	span.SetStatus(codes.Ok, "")

	e.metrics.record(ctx, step, compromisedID, time.Since(start))

	e.logger.Info("attack step executed",
		"step_id", step.ID,
		"phase", step.Phase,
		"action", step.Action,
		"target", step.Target,
		"result", step.Result,
		"next_phase", next,
	)

	if e.onStep != nil {
		e.onStep(step)
	}
	return step, nil
}

func (e *Engine) targetLabel(d Decision) string {
	if e.labelPolicy == TargetLabelPlaceholder || d.TargetName == "" {
		return types.PlaceholderTarget
	}
	return d.TargetName
}

// Start sets the running flag and begins executing one step every Delay
// until Stop is called, ctx is cancelled or the running flag is cleared.
func (e *Engine) Start(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.loopActiveLocked() {
		if e.store.IsRunning() {
			return simerr.NewStateError("Engine.Start", simerr.ErrAlreadyRunning)
		}
		e.stopLocked()
	}
	e.releaseLocked()

	loopCtx, cancel := context.WithCancel(ctx)
	e.cancel = cancel
	e.done = make(chan struct{})
	e.wake = make(chan struct{}, 1)

	wake := e.wake
	e.unsubscribe = e.store.Subscribe(func(state simulation.State, action simulation.Action) {
		if _, ok := action.(simulation.SetCurrentPhase); ok || !state.IsRunning {
			notify(wake)
		}
	})

	e.store.Dispatch(simulation.StartSimulation{})
	e.logger.Info("simulation started", "delay", e.Delay())

	go e.run(loopCtx, wake, e.done)
	return nil
}

// Stop clears the running flag and waits for the scheduler to exit.
// It is safe to call when the simulation is not running.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stopLocked()
}

func (e *Engine) stopLocked() {
	if e.store.IsRunning() {
		e.store.Dispatch(simulation.StopSimulation{})
		e.logger.Info("simulation stopped")
	}
	if e.cancel != nil {
		e.cancel()
	}
	if e.done != nil {
		<-e.done
	}
	e.releaseLocked()
}

func (e *Engine) releaseLocked() {
	if e.unsubscribe != nil {
		e.unsubscribe()
	}
	if e.cancel != nil {
		e.cancel()
	}
	e.cancel = nil
	e.done = nil
	e.wake = nil
	e.unsubscribe = nil
}

func (e *Engine) loopActiveLocked() bool {
	if e.done == nil {
		return false
	}
	select {
	case <-e.done:
		return false
	default:
		return true
	}
}

// Running reports whether the automatic stepping loop is active.
func (e *Engine) Running() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.loopActiveLocked()
}

// Reset stops the simulation and replaces the store state with initial.
func (e *Engine) Reset(initial simulation.State) {
	e.Stop()

	e.stepMu.Lock()
	defer e.stepMu.Unlock()
	e.store.Reset(initial)
	e.logger.Info("simulation reset", "targets", len(initial.Targets))
}

// Delay returns the automatic stepping interval.
func (e *Engine) Delay() time.Duration {
	return time.Duration(e.delay.Load())
}

// SetDelay changes the automatic stepping interval. A running loop re-arms
// its timer with the new value.
func (e *Engine) SetDelay(d time.Duration) error {
	if err := e.delayCfg.ValidateDelay(d); err != nil {
		return simerr.NewValidationError("Engine.SetDelay",
			fmt.Errorf("%w: %v", simerr.ErrInvalidDelay, err)).
			At("delay", d)
	}
	e.delay.Store(int64(d))

	e.mu.Lock()
	wake := e.wake
	e.mu.Unlock()
	if wake != nil {
		notify(wake)
	}
	return nil
}

// run is the scheduler loop. The timer is re-armed after every tick and
// whenever the phase or delay changes.
func (e *Engine) run(ctx context.Context, wake <-chan struct{}, done chan struct{}) {
	defer close(done)
	defer func() {
		if e.store.IsRunning() {
			// parent context cancelled without Stop
			e.store.Dispatch(simulation.StopSimulation{})
		}
	}()

	timer := time.NewTimer(e.Delay())
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-wake:
			if !e.store.IsRunning() {
				return
			}
			timer.Reset(e.Delay())

		case <-timer.C:
			if !e.tick(ctx) {
				return
			}
			timer.Reset(e.Delay())
		}
	}
}

// tick executes one scheduled step. It returns false when the loop should exit.
func (e *Engine) tick(ctx context.Context) bool {
	e.stepMu.Lock()
	defer e.stepMu.Unlock()

	if ctx.Err() != nil || !e.store.IsRunning() {
		return false
	}
	if _, err := e.executeLocked(ctx); err != nil {
		if !errors.Is(err, context.Canceled) {
			e.logger.Error("scheduled step failed", "error", err)
		}
		return false
	}
	return true
}

func notify(ch chan<- struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}
