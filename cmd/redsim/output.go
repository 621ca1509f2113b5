package main

import (
	"fmt"
	"io"

	"github.com/zero-day-ai/redsim/report"
	"github.com/zero-day-ai/redsim/types"
)

func printStep(w io.Writer, step types.AttackStep) {
	fmt.Fprintf(w, "[%s] %-20s %-8s %-6s %s -> %s\n",
		step.Timestamp.Format("15:04:05"),
		step.Phase,
		step.Result,
		step.MitreID,
		step.Action,
		step.Target,
	)
}

func printSummary(w io.Writer, r report.Report) {
	s := r.Summary
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Steps:        %d (%d successful, %d failed)\n", s.TotalAttackSteps, s.SuccessfulAttacks, s.FailedAttacks)
	fmt.Fprintf(w, "Success rate: %d%%\n", s.SuccessRate)
	fmt.Fprintf(w, "Compromised:  %d of %d targets\n", s.CompromisedTargets, s.TotalTargets)
	fmt.Fprintf(w, "Phase:        %s\n", r.CurrentPhase.DisplayName())
	fmt.Fprintf(w, "Risk level:   %s\n", r.RiskLevel)
}
