package simulation

import "github.com/zero-day-ai/redsim/types"

// ActionType names an action kind.
type ActionType string

// Action types understood by Reduce.
const (
	ActionStartSimulation    ActionType = "START_SIMULATION"
	ActionStopSimulation     ActionType = "STOP_SIMULATION"
	ActionAddAttackStep      ActionType = "ADD_ATTACK_STEP"
	ActionUpdateTargetStatus ActionType = "UPDATE_TARGET_STATUS"
	ActionSetAIDecision      ActionType = "SET_AI_DECISION"
	ActionSetCurrentPhase    ActionType = "SET_CURRENT_PHASE"
	ActionCompromiseTarget   ActionType = "COMPROMISE_TARGET"
)

// Action is a request to transition the simulation state.
// Implementations not listed in this package are ignored by Reduce.
type Action interface {
	Type() ActionType
}

// StartSimulation marks the simulation as running.
type StartSimulation struct{}

// StopSimulation marks the simulation as stopped.
type StopSimulation struct{}

// AddAttackStep appends a step to the log.
type AddAttackStep struct {
	Step types.AttackStep
}

// UpdateTargetStatus replaces the status of one target.
type UpdateTargetStatus struct {
	TargetID string
	Status   types.TargetStatus
}

// SetAIDecision replaces the current decision text.
type SetAIDecision struct {
	Text string
}

// SetCurrentPhase replaces the current phase. The phase is not validated.
type SetCurrentPhase struct {
	Phase types.Phase
}

// CompromiseTarget appends a target id to the compromised list.
type CompromiseTarget struct {
	TargetID string
}

func (StartSimulation) Type() ActionType    { return ActionStartSimulation }
func (StopSimulation) Type() ActionType     { return ActionStopSimulation }
func (AddAttackStep) Type() ActionType      { return ActionAddAttackStep }
func (UpdateTargetStatus) Type() ActionType { return ActionUpdateTargetStatus }
func (SetAIDecision) Type() ActionType      { return ActionSetAIDecision }
func (SetCurrentPhase) Type() ActionType    { return ActionSetCurrentPhase }
func (CompromiseTarget) Type() ActionType   { return ActionCompromiseTarget }
