package engine

import (
	"fmt"

	"github.com/zero-day-ai/redsim/simulation"
	"github.com/zero-day-ai/redsim/types"
)

// Fixed actions for phases that select no target.
const (
	ActionLateralMovement = "Network discovery and credential harvesting"
	ActionPersistence     = "Install backdoor and maintain access"
	ActionAnalyzing       = "Analyzing current state and planning next move"
)

// Decision is the next simulated action chosen by the heuristic.
type Decision struct {
	// Action is the human-readable action text.
	Action string `json:"action"`

	// Phase tags the step that executes this decision.
	Phase types.Phase `json:"phase"`

	// Reasoning explains the choice. It becomes the current AI decision.
	Reasoning string `json:"reasoning"`

	// TargetID and TargetName identify the chosen target, if any.
	TargetID   string `json:"targetId,omitempty"`
	TargetName string `json:"targetName,omitempty"`
}

// GenerateDecision picks the next action for state.
//
// Reconnaissance, exploitation and privilege escalation pick a target
// uniformly at random among those eligible under the engine rules. When no
// target is eligible, or the phase is not recognized, the generic
// "analyzing" decision tagged with the current phase is returned.
func (e *Engine) GenerateDecision(state simulation.State) Decision {
	switch state.CurrentPhase {
	case types.PhaseReconnaissance:
		if t, ok := e.pick(types.PhaseReconnaissance, state.Targets); ok {
			return Decision{
				Action:     fmt.Sprintf("Port scan and service enumeration on %s", t.Name),
				Phase:      types.PhaseReconnaissance,
				Reasoning:  fmt.Sprintf("AI identified %s as an accessible target. Gathering information about open services and potential attack vectors.", t.Name),
				TargetID:   t.ID,
				TargetName: t.Name,
			}
		}

	case types.PhaseExploitation:
		if t, ok := e.pick(types.PhaseExploitation, state.Targets); ok {
			vuln, found := t.FirstExploitable()
			if !found && len(t.Vulnerabilities) > 0 {
				vuln, found = t.Vulnerabilities[0], true
			}
			if found {
				return Decision{
					Action:     fmt.Sprintf("Exploit %s on %s", vuln.CVE, t.Name),
					Phase:      types.PhaseExploitation,
					Reasoning:  fmt.Sprintf("AI detected critical vulnerability %s on %s. Attempting simulated exploitation to gain initial foothold.", vuln.CVE, t.Name),
					TargetID:   t.ID,
					TargetName: t.Name,
				}
			}
		}

	case types.PhasePrivilegeEscalation:
		if t, ok := e.pick(types.PhasePrivilegeEscalation, state.Targets); ok {
			return Decision{
				Action:     fmt.Sprintf("Local privilege escalation on %s", t.Name),
				Phase:      types.PhasePrivilegeEscalation,
				Reasoning:  fmt.Sprintf("AI gained initial access to %s. Now attempting to escalate privileges to gain administrative control.", t.Name),
				TargetID:   t.ID,
				TargetName: t.Name,
			}
		}

	case types.PhaseLateralMovement:
		return Decision{
			Action:    ActionLateralMovement,
			Phase:     types.PhaseLateralMovement,
			Reasoning: "AI is exploring the network topology, looking for additional targets and harvesting credentials for lateral movement.",
		}

	case types.PhasePersistence:
		return Decision{
			Action:    ActionPersistence,
			Phase:     types.PhasePersistence,
			Reasoning: "AI is establishing persistence mechanisms to maintain long-term access to compromised systems.",
		}
	}

	return Decision{
		Action:    ActionAnalyzing,
		Phase:     state.CurrentPhase,
		Reasoning: "AI is evaluating available options and formulating the optimal attack strategy.",
	}
}

// pick chooses one eligible target uniformly at random.
func (e *Engine) pick(phase types.Phase, targets []types.Target) (types.Target, bool) {
	candidates := e.rules.eligible(phase, targets)
	if len(candidates) == 0 {
		return types.Target{}, false
	}
	return candidates[e.rand.IntN(len(candidates))], true
}
