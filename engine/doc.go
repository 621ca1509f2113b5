// Package engine implements the decision heuristic and step execution of the
// simulator.
//
// Each step reads a snapshot of the store, picks an action for the current
// phase, draws an outcome and dispatches the resulting actions:
//
//	SetAIDecision -> AddAttackStep -> [UpdateTargetStatus, CompromiseTarget] -> [SetCurrentPhase]
//
// Target eligibility per phase is expressed as CEL rules (see Rules). All
// randomness flows through the Random interface so tests can force outcomes.
//
// Steps run either on demand with Step, or on a timer with Start and Stop.
// Manual steps are rejected while the timer is active.
package engine
