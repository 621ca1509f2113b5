package engine

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/zero-day-ai/redsim/scenario"
	"github.com/zero-day-ai/redsim/simerr"
	"github.com/zero-day-ai/redsim/simulation"
	"github.com/zero-day-ai/redsim/types"
)

// scriptedRandom replays queued values, then falls back to fixed ones.
type scriptedRandom struct {
	mu     sync.Mutex
	floats []float64
	ints   []int
	float  float64
	intv   int
}

func (r *scriptedRandom) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.floats) > 0 {
		f := r.floats[0]
		r.floats = r.floats[1:]
		return f
	}
	return r.float
}

func (r *scriptedRandom) IntN(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	v := r.intv
	if len(r.ints) > 0 {
		v = r.ints[0]
		r.ints = r.ints[1:]
	}
	return v % n
}

func alwaysSucceed() *scriptedRandom { return &scriptedRandom{float: 0.0} }
func alwaysFail() *scriptedRandom    { return &scriptedRandom{float: 0.99} }

var fastDelays = types.DelayConfig{
	Default: 10 * time.Millisecond,
	Min:     time.Millisecond,
	Max:     time.Second,
}

func newTestEngine(t *testing.T, state simulation.State, opts ...Option) (*Engine, *simulation.Store) {
	t.Helper()
	store := simulation.NewStore(state)
	base := []Option{
		WithDelayConfig(fastDelays),
		WithMeterProvider(noop.NewMeterProvider()),
	}
	e, err := New(store, append(base, opts...)...)
	require.NoError(t, err)
	t.Cleanup(e.Stop)
	return e, store
}

func seedState() simulation.State {
	return scenario.Default().InitialState()
}

func stateAt(phase types.Phase) simulation.State {
	s := seedState()
	s.CurrentPhase = phase
	return s
}

func TestNew_NilStore(t *testing.T) {
	e, err := New(nil)
	assert.Nil(t, e)
	require.Error(t, err)
	assert.ErrorIs(t, err, simerr.ErrNoStore)
	assert.ErrorIs(t, err, &simerr.Error{Kind: simerr.KindValidation})
}

func TestNew_InvalidConfig(t *testing.T) {
	tests := []struct {
		name    string
		opts    []Option
		wantErr error
	}{
		{
			name:    "success rate above one",
			opts:    []Option{WithSuccessRate(1.5)},
			wantErr: simerr.ErrInvalidConfig,
		},
		{
			name:    "negative success rate",
			opts:    []Option{WithSuccessRate(-0.1)},
			wantErr: simerr.ErrInvalidConfig,
		},
		{
			name:    "unknown label policy",
			opts:    []Option{WithTargetLabel("random")},
			wantErr: simerr.ErrInvalidConfig,
		},
		{
			name:    "delay above max",
			opts:    []Option{WithDelay(time.Minute)},
			wantErr: simerr.ErrInvalidDelay,
		},
		{
			name:    "inverted bounds",
			opts:    []Option{WithDelayConfig(types.DelayConfig{Default: 2 * time.Second, Min: 5 * time.Second, Max: time.Second})},
			wantErr: simerr.ErrInvalidConfig,
		},
		{
			name:    "rule does not compile",
			opts:    []Option{WithRules(Rules{Reconnaissance: "target.status ==", Exploitation: "true", PrivilegeEscalation: "true"})},
			wantErr: simerr.ErrInvalidConfig,
		},
		{
			name:    "rule is not boolean",
			opts:    []Option{WithRules(Rules{Reconnaissance: "target.name", Exploitation: "true", PrivilegeEscalation: "true"})},
			wantErr: simerr.ErrInvalidConfig,
		},
		{
			name:    "empty rule",
			opts:    []Option{WithRules(Rules{Reconnaissance: "true", Exploitation: "true"})},
			wantErr: simerr.ErrInvalidConfig,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(simulation.NewStore(seedState()), tt.opts...)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.ErrorIs(t, err, &simerr.Error{Kind: simerr.KindConfiguration})
		})
	}
}

func TestNew_Defaults(t *testing.T) {
	e, err := New(simulation.NewStore(seedState()))
	require.NoError(t, err)
	assert.Equal(t, types.DefaultStepDelay, e.Delay())
	assert.False(t, e.Running())
}

func TestStep_ReconnaissanceSuccessAdvances(t *testing.T) {
	e, store := newTestEngine(t, seedState(), WithRandom(alwaysSucceed()))

	step, err := e.Step(context.Background())
	require.NoError(t, err)

	assert.Equal(t, types.PhaseReconnaissance, step.Phase)
	assert.Equal(t, types.ResultSuccess, step.Result)
	assert.Equal(t, "Port scan and service enumeration on Web Server (DMZ)", step.Action)
	assert.Equal(t, "Web Server (DMZ)", step.Target)
	assert.Contains(t, step.Details, "Result: Successful execution")
	assert.Regexp(t, `^T\d{4}$`, step.MitreID)
	assert.Regexp(t, `^step-`, step.ID)

	state := store.Snapshot()
	require.Len(t, state.AttackSteps, 1)
	assert.Equal(t, step, state.AttackSteps[0])
	assert.Equal(t, types.PhaseExploitation, state.CurrentPhase)
	assert.Empty(t, state.CompromisedTargets)
	assert.Contains(t, state.AIDecision, "Web Server (DMZ)")
	for _, target := range state.Targets {
		assert.Equal(t, types.TargetOnline, target.Status)
	}
}

func TestStep_FailureKeepsPhase(t *testing.T) {
	e, store := newTestEngine(t, seedState(), WithRandom(alwaysFail()))

	step, err := e.Step(context.Background())
	require.NoError(t, err)

	assert.Equal(t, types.ResultFailure, step.Result)
	assert.Contains(t, step.Details, "Result: Attack failed, adapting strategy")
	assert.Equal(t, types.PhaseReconnaissance, store.Snapshot().CurrentPhase)
}

func TestStep_ExploitationCompromisesFirstOnlineTarget(t *testing.T) {
	// pick target-3 for the decision; the compromise still lands on target-1
	rnd := &scriptedRandom{float: 0.0, ints: []int{2}}
	e, store := newTestEngine(t, stateAt(types.PhaseExploitation), WithRandom(rnd))

	step, err := e.Step(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Exploit CVE-2023-9999 on Domain Controller", step.Action)
	assert.Equal(t, "Domain Controller", step.Target)

	state := store.Snapshot()
	assert.Equal(t, []string{"target-1"}, state.CompromisedTargets)
	compromised := state.TargetsWithStatus(types.TargetCompromised)
	require.Len(t, compromised, 1)
	assert.Equal(t, "target-1", compromised[0].ID)
	assert.Equal(t, types.PhasePrivilegeEscalation, state.CurrentPhase)
}

func TestStep_ExploitationFailureCompromisesNothing(t *testing.T) {
	e, store := newTestEngine(t, stateAt(types.PhaseExploitation), WithRandom(alwaysFail()))

	_, err := e.Step(context.Background())
	require.NoError(t, err)

	state := store.Snapshot()
	assert.Empty(t, state.CompromisedTargets)
	assert.Empty(t, state.TargetsWithStatus(types.TargetCompromised))
	assert.Equal(t, types.PhaseExploitation, state.CurrentPhase)
}

func TestStep_PersistenceIsTerminal(t *testing.T) {
	e, store := newTestEngine(t, stateAt(types.PhasePersistence), WithRandom(alwaysSucceed()))

	for i := 0; i < 3; i++ {
		step, err := e.Step(context.Background())
		require.NoError(t, err)
		assert.Equal(t, ActionPersistence, step.Action)
		assert.Equal(t, types.PlaceholderTarget, step.Target)
	}

	state := store.Snapshot()
	assert.Equal(t, types.PhasePersistence, state.CurrentPhase)
	assert.Len(t, state.AttackSteps, 3)
}

func TestStep_PhaseWalk(t *testing.T) {
	e, store := newTestEngine(t, seedState(), WithRandom(alwaysSucceed()))

	want := []types.Phase{
		types.PhaseReconnaissance,
		types.PhaseExploitation,
		types.PhasePrivilegeEscalation,
		types.PhaseLateralMovement,
		types.PhasePersistence,
		types.PhasePersistence,
	}
	for i, phase := range want {
		step, err := e.Step(context.Background())
		require.NoError(t, err)
		assert.Equal(t, phase, step.Phase, "step %d", i)
	}

	state := store.Snapshot()
	assert.Len(t, state.AttackSteps, len(want))
	assert.Len(t, state.CompromisedTargets, 1)
}

func TestStep_UnknownPhaseRestartsLifecycle(t *testing.T) {
	e, store := newTestEngine(t, stateAt("exfiltration"), WithRandom(alwaysSucceed()))

	step, err := e.Step(context.Background())
	require.NoError(t, err)

	assert.Equal(t, ActionAnalyzing, step.Action)
	assert.Equal(t, types.Phase("exfiltration"), step.Phase)
	assert.Equal(t, types.PhaseReconnaissance, store.Snapshot().CurrentPhase)
}

func TestStep_PlaceholderLabelPolicy(t *testing.T) {
	e, _ := newTestEngine(t, seedState(),
		WithRandom(alwaysSucceed()),
		WithTargetLabel(TargetLabelPlaceholder),
	)

	step, err := e.Step(context.Background())
	require.NoError(t, err)
	assert.Equal(t, types.PlaceholderTarget, step.Target)
	assert.Contains(t, step.Action, "Web Server (DMZ)")
}

func TestStep_UsesClock(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	e, _ := newTestEngine(t, seedState(),
		WithRandom(alwaysFail()),
		WithClock(func() time.Time { return now }),
	)

	step, err := e.Step(context.Background())
	require.NoError(t, err)
	assert.Equal(t, now, step.Timestamp)
}

func TestStep_SuccessRateBoundaries(t *testing.T) {
	tests := []struct {
		name string
		rate float64
		draw float64
		want types.StepResult
	}{
		{"certain with zero draw", 1, 0.0, types.ResultSuccess},
		{"certain with high draw", 1, 0.9999, types.ResultSuccess},
		{"never with zero draw", 0, 0.0, types.ResultFailure},
		{"never with high draw", 0, 0.9999, types.ResultFailure},
		{"default rate just below", DefaultSuccessRate, 0.6999, types.ResultSuccess},
		{"default rate at threshold", DefaultSuccessRate, 0.7, types.ResultFailure},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, _ := newTestEngine(t, seedState(),
				WithRandom(&scriptedRandom{float: tt.draw}),
				WithSuccessRate(tt.rate),
			)
			step, err := e.Step(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.want, step.Result)
		})
	}
}

func TestStep_CancelledContext(t *testing.T) {
	e, store := newTestEngine(t, seedState(), WithRandom(alwaysSucceed()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.Step(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, store.Snapshot().AttackSteps)
}

func TestStep_OnStepCallback(t *testing.T) {
	var got []types.AttackStep
	e, _ := newTestEngine(t, seedState(),
		WithRandom(alwaysSucceed()),
		WithOnStep(func(s types.AttackStep) { got = append(got, s) }),
	)

	step, err := e.Step(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, step.ID, got[0].ID)
}

func TestStep_DispatchOrder(t *testing.T) {
	e, store := newTestEngine(t, stateAt(types.PhaseExploitation), WithRandom(alwaysSucceed()))

	var actions []simulation.ActionType
	unsubscribe := store.Subscribe(func(_ simulation.State, a simulation.Action) {
		actions = append(actions, a.Type())
	})
	defer unsubscribe()

	_, err := e.Step(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []simulation.ActionType{
		simulation.ActionSetAIDecision,
		simulation.ActionAddAttackStep,
		simulation.ActionUpdateTargetStatus,
		simulation.ActionCompromiseTarget,
		simulation.ActionSetCurrentPhase,
	}, actions)
}

func TestStep_RecordsSpan(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	defer tp.Shutdown(context.Background())

	e, _ := newTestEngine(t, seedState(),
		WithRandom(alwaysSucceed()),
		WithTracer(tp.Tracer("test")),
	)

	step, err := e.Step(context.Background())
	require.NoError(t, err)

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "redsim.step", spans[0].Name())

	attrs := make(map[string]string)
	for _, kv := range spans[0].Attributes() {
		attrs[string(kv.Key)] = kv.Value.AsString()
	}
	assert.Equal(t, step.ID, attrs["redsim.step.id"])
	assert.Equal(t, "reconnaissance", attrs["redsim.phase"])
	assert.Equal(t, "success", attrs["redsim.result"])
}

func TestStep_RejectedWhileRunning(t *testing.T) {
	e, store := newTestEngine(t, seedState(),
		WithRandom(alwaysSucceed()),
		WithDelay(time.Second),
	)

	require.NoError(t, e.Start(context.Background()))

	for i := 0; i < 5; i++ {
		_, err := e.Step(context.Background())
		require.Error(t, err)
		assert.ErrorIs(t, err, simerr.ErrAutoStepActive)
		assert.ErrorIs(t, err, &simerr.Error{Kind: simerr.KindState})
	}
	assert.Empty(t, store.Snapshot().AttackSteps)
	assert.Equal(t, types.PhaseReconnaissance, store.Snapshot().CurrentPhase)

	// stepping is allowed again once the schedule is stopped
	e.Stop()
	_, err := e.Step(context.Background())
	require.NoError(t, err)
	assert.Len(t, store.Snapshot().AttackSteps, 1)
}

func TestStartStop_ImmediateStopRecordsNothing(t *testing.T) {
	e, store := newTestEngine(t, seedState(),
		WithRandom(alwaysSucceed()),
		WithDelay(500*time.Millisecond),
	)

	require.NoError(t, e.Start(context.Background()))
	assert.True(t, store.IsRunning())
	assert.True(t, e.Running())

	e.Stop()

	assert.False(t, store.IsRunning())
	assert.False(t, e.Running())
	assert.Empty(t, store.Snapshot().AttackSteps)
}

func TestStart_AlreadyRunning(t *testing.T) {
	e, _ := newTestEngine(t, seedState(), WithDelay(time.Second))

	require.NoError(t, e.Start(context.Background()))
	err := e.Start(context.Background())
	assert.ErrorIs(t, err, simerr.ErrAlreadyRunning)
}

func TestStart_ExecutesStepsOnTimer(t *testing.T) {
	e, store := newTestEngine(t, seedState(),
		WithRandom(alwaysFail()),
		WithDelay(5*time.Millisecond),
	)

	require.NoError(t, e.Start(context.Background()))

	assert.Eventually(t, func() bool {
		return len(store.Snapshot().AttackSteps) >= 3
	}, 2*time.Second, 5*time.Millisecond)

	e.Stop()
	n := len(store.Snapshot().AttackSteps)
	time.Sleep(30 * time.Millisecond)
	assert.Len(t, store.Snapshot().AttackSteps, n, "no steps after stop")
}

func TestStart_ExternalStopEndsLoop(t *testing.T) {
	e, store := newTestEngine(t, seedState(), WithDelay(time.Second))

	require.NoError(t, e.Start(context.Background()))
	store.Dispatch(simulation.StopSimulation{})

	assert.Eventually(t, func() bool { return !e.Running() }, time.Second, 5*time.Millisecond)
	assert.Empty(t, store.Snapshot().AttackSteps)

	// a fresh start is allowed after the loop exits on its own
	require.NoError(t, e.Start(context.Background()))
	assert.True(t, store.IsRunning())
}

func TestStart_ParentContextCancelStops(t *testing.T) {
	e, store := newTestEngine(t, seedState(), WithDelay(time.Second))

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, e.Start(ctx))
	cancel()

	assert.Eventually(t, func() bool { return !store.IsRunning() }, time.Second, 5*time.Millisecond)
	assert.Eventually(t, func() bool { return !e.Running() }, time.Second, 5*time.Millisecond)
}

func TestStop_Idempotent(t *testing.T) {
	e, store := newTestEngine(t, seedState())
	e.Stop()
	e.Stop()
	assert.False(t, store.IsRunning())
}

func TestSetDelay(t *testing.T) {
	e, _ := newTestEngine(t, seedState())

	require.NoError(t, e.SetDelay(200*time.Millisecond))
	assert.Equal(t, 200*time.Millisecond, e.Delay())

	for _, d := range []time.Duration{0, -time.Second, 2 * time.Second} {
		err := e.SetDelay(d)
		require.Error(t, err, "delay %v", d)
		assert.ErrorIs(t, err, simerr.ErrInvalidDelay)
		assert.ErrorIs(t, err, &simerr.Error{Kind: simerr.KindValidation})
	}
	assert.Equal(t, 200*time.Millisecond, e.Delay())
}

func TestSetDelay_ReschedulesRunningLoop(t *testing.T) {
	e, store := newTestEngine(t, seedState(),
		WithRandom(alwaysFail()),
		WithDelay(time.Second),
	)

	require.NoError(t, e.Start(context.Background()))
	require.NoError(t, e.SetDelay(5*time.Millisecond))

	assert.Eventually(t, func() bool {
		return len(store.Snapshot().AttackSteps) > 0
	}, 500*time.Millisecond, 5*time.Millisecond)
}

func TestReset(t *testing.T) {
	e, store := newTestEngine(t, seedState(), WithRandom(alwaysSucceed()), WithDelay(time.Second))

	_, err := e.Step(context.Background())
	require.NoError(t, err)
	require.NoError(t, e.Start(context.Background()))

	e.Reset(seedState())

	state := store.Snapshot()
	assert.False(t, state.IsRunning)
	assert.False(t, e.Running())
	assert.Empty(t, state.AttackSteps)
	assert.Equal(t, types.PhaseReconnaissance, state.CurrentPhase)
	assert.Equal(t, simulation.InitialAIDecision, state.AIDecision)
}

func TestEndToEnd_SeedManualSuccess(t *testing.T) {
	e, store := newTestEngine(t, seedState(), WithRandom(alwaysSucceed()))

	_, err := e.Step(context.Background())
	require.NoError(t, err)

	state := store.Snapshot()
	require.Len(t, state.AttackSteps, 1)
	assert.Equal(t, types.PhaseReconnaissance, state.AttackSteps[0].Phase)
	assert.Equal(t, types.PhaseExploitation, state.CurrentPhase)
	assert.Empty(t, state.CompromisedTargets)
	assert.False(t, state.IsRunning)
}
