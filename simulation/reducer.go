package simulation

import "github.com/zero-day-ai/redsim/types"

// Reduce applies action to state and returns the resulting state.
//
// Reduce is pure and total: it never panics, never mutates the slices of its
// input and returns state unchanged for nil or unrecognized actions.
func Reduce(state State, action Action) State {
	switch a := action.(type) {
	case StartSimulation:
		state.IsRunning = true
		return state

	case StopSimulation:
		state.IsRunning = false
		return state

	case AddAttackStep:
		steps := make([]types.AttackStep, len(state.AttackSteps), len(state.AttackSteps)+1)
		copy(steps, state.AttackSteps)
		state.AttackSteps = append(steps, a.Step)
		return state

	case UpdateTargetStatus:
		idx := -1
		for i, t := range state.Targets {
			if t.ID == a.TargetID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return state
		}
		targets := make([]types.Target, len(state.Targets))
		copy(targets, state.Targets)
		targets[idx].Status = a.Status
		state.Targets = targets
		return state

	case SetAIDecision:
		state.AIDecision = a.Text
		return state

	case SetCurrentPhase:
		state.CurrentPhase = a.Phase
		return state

	case CompromiseTarget:
		ids := make([]string, len(state.CompromisedTargets), len(state.CompromisedTargets)+1)
		copy(ids, state.CompromisedTargets)
		state.CompromisedTargets = append(ids, a.TargetID)
		return state

	default:
		return state
	}
}
