package report

import (
	"math"
	"strings"
	"time"

	"github.com/zero-day-ai/redsim/simulation"
	"github.com/zero-day-ai/redsim/types"
)

// RiskLevel is the overall risk rating of a simulated engagement.
type RiskLevel string

const (
	RiskHigh   RiskLevel = "HIGH"
	RiskMedium RiskLevel = "MEDIUM"
	RiskLow    RiskLevel = "LOW"
)

// PhaseStatus summarizes the outcome of all steps in one phase.
type PhaseStatus string

const (
	PhaseNotStarted PhaseStatus = "not_started"
	PhaseSucceeded  PhaseStatus = "success"
	PhasePartial    PhaseStatus = "partial"
	PhaseFailed     PhaseStatus = "failed"
)

// Recommendations are the fixed remediation items included in every report.
var Recommendations = []string{
	"Implement network segmentation to limit lateral movement",
	"Patch critical and high severity vulnerabilities immediately",
	"Deploy endpoint detection and response (EDR) solutions",
	"Enhance monitoring and logging capabilities",
	"Conduct regular security assessments and penetration testing",
}

// Summary holds the headline counts of a report.
type Summary struct {
	TotalTargets       int `json:"totalTargets"`
	CompromisedTargets int `json:"compromisedTargets"`

	// CompromiseEvents counts every recorded compromise, including repeats
	// against the same target.
	CompromiseEvents int `json:"compromiseEvents"`

	TotalAttackSteps  int `json:"totalAttackSteps"`
	SuccessfulAttacks int `json:"successfulAttacks"`
	FailedAttacks     int `json:"failedAttacks"`
	PartialAttacks    int `json:"partialAttacks"`

	Vulnerabilities         int `json:"vulnerabilities"`
	CriticalVulnerabilities int `json:"criticalVulnerabilities"`
	HighVulnerabilities     int `json:"highVulnerabilities"`

	// SuccessRate is the rounded percentage of successful steps. It is 0
	// when no step was executed.
	SuccessRate int `json:"successRate"`
}

// PhaseSummary reports activity within one phase.
type PhaseSummary struct {
	Phase    types.Phase `json:"phase"`
	Name     string      `json:"name"`
	Attempts int         `json:"attempts"`
	Status   PhaseStatus `json:"status"`
}

// TargetActivity counts the steps attributed to one target.
type TargetActivity struct {
	TargetID   string             `json:"targetId"`
	TargetName string             `json:"targetName"`
	Status     types.TargetStatus `json:"status"`
	Steps      int                `json:"steps"`
}

// Report is the exportable threat report of a simulation.
type Report struct {
	Timestamp         time.Time          `json:"timestamp"`
	Summary           Summary            `json:"summary"`
	RiskLevel         RiskLevel          `json:"riskLevel"`
	CurrentPhase      types.Phase        `json:"currentPhase"`
	Phases            []PhaseSummary     `json:"phases"`
	AttackTimeline    []types.AttackStep `json:"attackTimeline"`
	CompromisedAssets []types.Target     `json:"compromisedAssets"`
	TargetActivity    []TargetActivity   `json:"targetActivity"`
	Recommendations   []string           `json:"recommendations"`
}

// Generate derives a report from state. now becomes the report timestamp.
func Generate(state simulation.State, now time.Time) Report {
	state = state.Clone()

	r := Report{
		Timestamp:         now.UTC(),
		CurrentPhase:      state.CurrentPhase,
		AttackTimeline:    state.AttackSteps,
		CompromisedAssets: state.TargetsWithStatus(types.TargetCompromised),
		Recommendations:   append([]string(nil), Recommendations...),
	}
	if r.AttackTimeline == nil {
		r.AttackTimeline = []types.AttackStep{}
	}
	if r.CompromisedAssets == nil {
		r.CompromisedAssets = []types.Target{}
	}

	r.Summary = summarize(state)
	r.Summary.CompromisedTargets = len(r.CompromisedAssets)
	r.RiskLevel = riskLevel(r.Summary)
	r.Phases = phaseSummaries(state.AttackSteps)
	r.TargetActivity = targetActivity(state)

	return r
}

func summarize(state simulation.State) Summary {
	s := Summary{
		TotalTargets:     len(state.Targets),
		CompromiseEvents: len(state.CompromisedTargets),
		TotalAttackSteps: len(state.AttackSteps),
	}

	for _, step := range state.AttackSteps {
		switch step.Result {
		case types.ResultSuccess:
			s.SuccessfulAttacks++
		case types.ResultFailure:
			s.FailedAttacks++
		case types.ResultPartial:
			s.PartialAttacks++
		}
	}

	for _, t := range state.Targets {
		s.Vulnerabilities += len(t.Vulnerabilities)
		for _, v := range t.Vulnerabilities {
			switch v.Severity {
			case types.SeverityCritical:
				s.CriticalVulnerabilities++
			case types.SeverityHigh:
				s.HighVulnerabilities++
			}
		}
	}

	s.SuccessRate = SuccessRate(s.SuccessfulAttacks, s.TotalAttackSteps)
	return s
}

// SuccessRate returns successful/total as a rounded percentage, or 0 when
// total is zero.
func SuccessRate(successful, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(successful) / float64(total) * 100))
}

func riskLevel(s Summary) RiskLevel {
	switch {
	case s.CompromisedTargets > 1 || s.CriticalVulnerabilities > 0:
		return RiskHigh
	case s.CompromisedTargets == 1 || s.HighVulnerabilities > 0:
		return RiskMedium
	default:
		return RiskLow
	}
}

func phaseSummaries(steps []types.AttackStep) []PhaseSummary {
	phases := types.AllPhases()
	out := make([]PhaseSummary, 0, len(phases))
	for _, phase := range phases {
		ps := PhaseSummary{Phase: phase, Name: phase.DisplayName()}
		var success, partial bool
		for _, step := range steps {
			if step.Phase != phase {
				continue
			}
			ps.Attempts++
			success = success || step.Succeeded()
			partial = partial || step.Result == types.ResultPartial
		}
		switch {
		case ps.Attempts == 0:
			ps.Status = PhaseNotStarted
		case success:
			ps.Status = PhaseSucceeded
		case partial:
			ps.Status = PhasePartial
		default:
			ps.Status = PhaseFailed
		}
		out = append(out, ps)
	}
	return out
}

// targetActivity attributes steps to targets by substring match of the
// target name in the step target label.
func targetActivity(state simulation.State) []TargetActivity {
	out := make([]TargetActivity, 0, len(state.Targets))
	for _, t := range state.Targets {
		a := TargetActivity{TargetID: t.ID, TargetName: t.Name, Status: t.Status}
		for _, step := range state.AttackSteps {
			if t.Name != "" && strings.Contains(step.Target, t.Name) {
				a.Steps++
			}
		}
		out = append(out, a)
	}
	return out
}
