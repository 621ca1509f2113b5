package types

import "time"

// StepResult is the simulated outcome of an attack step.
type StepResult string

const (
	ResultSuccess StepResult = "success"
	ResultFailure StepResult = "failure"
	ResultPartial StepResult = "partial"
)

// IsValid returns true if the result is a recognized value.
func (r StepResult) IsValid() bool {
	switch r {
	case ResultSuccess, ResultFailure, ResultPartial:
		return true
	default:
		return false
	}
}

// String returns the string representation of the result.
func (r StepResult) String() string {
	return string(r)
}

// PlaceholderTarget is the generic label used for steps that are not tied
// to a specific host.
const PlaceholderTarget = "Simulated Target"

// AttackStep is an immutable record of one executed simulation step.
type AttackStep struct {
	// ID is a unique identifier for the step.
	ID string `json:"id"`

	// Timestamp is when the step was executed.
	Timestamp time.Time `json:"timestamp"`

	// Phase is the lifecycle phase the step belongs to.
	Phase Phase `json:"phase"`

	// Action describes what the simulated attacker did.
	Action string `json:"action"`

	// Target is a free-text label. Views match it to hosts by substring
	// search against the target name.
	Target string `json:"target"`

	// Result is the simulated outcome.
	Result StepResult `json:"result"`

	// Details is a human-readable explanation of the step.
	Details string `json:"details"`

	// MitreID is a synthetic ATT&CK-style technique label (e.g. "T1234").
	MitreID string `json:"mitreId,omitempty"`
}

// Succeeded returns true if the step result is a success.
func (s AttackStep) Succeeded() bool {
	return s.Result == ResultSuccess
}
