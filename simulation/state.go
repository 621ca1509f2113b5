package simulation

import (
	"github.com/zero-day-ai/redsim/types"
)

// InitialAIDecision is the decision text of a freshly initialized simulation.
const InitialAIDecision = "Initializing AI simulation engine..."

// State is the aggregate root of a simulation session.
type State struct {
	// Targets are the simulated hosts in seed order. The order never changes.
	Targets []types.Target `json:"targets"`

	// AttackSteps is the append-only step log.
	AttackSteps []types.AttackStep `json:"attackSteps"`

	// CurrentPhase is the active lifecycle phase.
	CurrentPhase types.Phase `json:"currentPhase"`

	// IsRunning reports whether automatic stepping is active.
	IsRunning bool `json:"isRunning"`

	// AIDecision is the latest decision reasoning. It is overwritten, not accumulated.
	AIDecision string `json:"aiDecision"`

	// CompromisedTargets records target ids in compromise order. An id is
	// appended once per compromise event, so duplicates are possible.
	CompromisedTargets []string `json:"compromisedTargets"`
}

// NewState returns the initial state for the given seed targets.
func NewState(targets []types.Target) State {
	seeded := make([]types.Target, len(targets))
	for i, t := range targets {
		seeded[i] = t.Clone()
	}
	return State{
		Targets:            seeded,
		AttackSteps:        []types.AttackStep{},
		CurrentPhase:       types.PhaseReconnaissance,
		AIDecision:         InitialAIDecision,
		CompromisedTargets: []string{},
	}
}

// Clone returns a deep copy of the state.
func (s State) Clone() State {
	out := s
	if s.Targets != nil {
		out.Targets = make([]types.Target, len(s.Targets))
		for i, t := range s.Targets {
			out.Targets[i] = t.Clone()
		}
	}
	if s.AttackSteps != nil {
		out.AttackSteps = make([]types.AttackStep, len(s.AttackSteps))
		copy(out.AttackSteps, s.AttackSteps)
	}
	if s.CompromisedTargets != nil {
		out.CompromisedTargets = make([]string, len(s.CompromisedTargets))
		copy(out.CompromisedTargets, s.CompromisedTargets)
	}
	return out
}

// TargetsWithStatus returns the targets in the given status, in seed order.
func (s State) TargetsWithStatus(status types.TargetStatus) []types.Target {
	var out []types.Target
	for _, t := range s.Targets {
		if t.Status == status {
			out = append(out, t)
		}
	}
	return out
}

// FirstTargetWithStatus returns the first target in seed order with the given status.
func (s State) FirstTargetWithStatus(status types.TargetStatus) (types.Target, bool) {
	for _, t := range s.Targets {
		if t.Status == status {
			return t, true
		}
	}
	return types.Target{}, false
}
