package types

import "fmt"

// Phase represents one stage of the simulated attack lifecycle.
type Phase string

// Phase constants in lifecycle order. The order is fixed: a successful step
// advances the simulation to the next phase until PhasePersistence is reached.
const (
	// PhaseReconnaissance gathers information about reachable hosts and services.
	PhaseReconnaissance Phase = "reconnaissance"

	// PhaseExploitation attempts an initial compromise through a known vulnerability.
	PhaseExploitation Phase = "exploitation"

	// PhasePrivilegeEscalation attempts to gain administrative control on a compromised host.
	PhasePrivilegeEscalation Phase = "privilege_escalation"

	// PhaseLateralMovement explores the network and harvests credentials.
	PhaseLateralMovement Phase = "lateral_movement"

	// PhasePersistence establishes long-term access. It is the terminal phase.
	PhasePersistence Phase = "persistence"
)

var phaseOrder = []Phase{
	PhaseReconnaissance,
	PhaseExploitation,
	PhasePrivilegeEscalation,
	PhaseLateralMovement,
	PhasePersistence,
}

// AllPhases returns every phase in lifecycle order.
func AllPhases() []Phase {
	out := make([]Phase, len(phaseOrder))
	copy(out, phaseOrder)
	return out
}

// String returns the string representation of the phase.
func (p Phase) String() string {
	return string(p)
}

// IsValid returns true if the phase is one of the five lifecycle phases.
func (p Phase) IsValid() bool {
	return p.Index() >= 0
}

// Index returns the position of the phase in the lifecycle, or -1 if the
// phase is not recognized.
func (p Phase) Index() int {
	for i, phase := range phaseOrder {
		if phase == p {
			return i
		}
	}
	return -1
}

// IsTerminal returns true for the last phase of the lifecycle.
func (p Phase) IsTerminal() bool {
	return p == PhasePersistence
}

// Next returns the phase that follows p. The terminal phase and unknown
// phases return themselves.
func (p Phase) Next() Phase {
	i := p.Index()
	if i < 0 || i == len(phaseOrder)-1 {
		return p
	}
	return phaseOrder[i+1]
}

// DisplayName returns a human-readable name for the phase.
func (p Phase) DisplayName() string {
	switch p {
	case PhaseReconnaissance:
		return "Reconnaissance"
	case PhaseExploitation:
		return "Exploitation"
	case PhasePrivilegeEscalation:
		return "Privilege Escalation"
	case PhaseLateralMovement:
		return "Lateral Movement"
	case PhasePersistence:
		return "Persistence"
	default:
		return string(p)
	}
}

// Description returns a short educational summary of what the phase does.
func (p Phase) Description() string {
	switch p {
	case PhaseReconnaissance:
		return "Information gathering"
	case PhaseExploitation:
		return "Initial compromise"
	case PhasePrivilegeEscalation:
		return "Gaining higher access"
	case PhaseLateralMovement:
		return "Expanding access"
	case PhasePersistence:
		return "Maintaining access"
	default:
		return "Unknown phase"
	}
}

// ParsePhase parses a string into a Phase value.
// Returns an error if the string is not a valid phase.
func ParsePhase(s string) (Phase, error) {
	phase := Phase(s)
	if !phase.IsValid() {
		return "", fmt.Errorf("invalid phase: %s", s)
	}
	return phase, nil
}
