package engine

import (
	"fmt"
	"log/slog"
	"reflect"

	"github.com/google/cel-go/cel"

	"github.com/zero-day-ai/redsim/types"
)

// Rules holds the target eligibility predicates of the decision heuristic.
// Each rule is a CEL expression evaluated once per target with the variable
// `target` bound to a map of the target's fields:
//
//	target.id, target.name, target.ip, target.os, target.status
//	target.services[].{port, name, version, status}
//	target.vulnerabilities[].{id, cve, severity, description}
//
// Lateral movement and persistence select no target and have no rule.
type Rules struct {
	Reconnaissance      string `yaml:"reconnaissance"`
	Exploitation        string `yaml:"exploitation"`
	PrivilegeEscalation string `yaml:"privilege_escalation"`
}

// DefaultRules returns the stock rule table.
func DefaultRules() Rules {
	return Rules{
		Reconnaissance:      `target.status == "online"`,
		Exploitation:        `target.status == "online" && target.vulnerabilities.exists(v, v.severity in ["high", "critical"])`,
		PrivilegeEscalation: `target.status == "compromised"`,
	}
}

// ruleSet is a compiled Rules table.
type ruleSet struct {
	programs map[types.Phase]cel.Program
	logger   *slog.Logger
}

func compileRules(r Rules, logger *slog.Logger) (*ruleSet, error) {
	env, err := cel.NewEnv(
		cel.Variable("target", cel.MapType(cel.StringType, cel.DynType)),
	)
	if err != nil {
		return nil, fmt.Errorf("create rule environment: %w", err)
	}

	exprs := map[types.Phase]string{
		types.PhaseReconnaissance:      r.Reconnaissance,
		types.PhaseExploitation:        r.Exploitation,
		types.PhasePrivilegeEscalation: r.PrivilegeEscalation,
	}

	rs := &ruleSet{
		programs: make(map[types.Phase]cel.Program, len(exprs)),
		logger:   logger,
	}
	for phase, expr := range exprs {
		if expr == "" {
			return nil, fmt.Errorf("rule for %s is empty", phase)
		}
		ast, iss := env.Compile(expr)
		if iss.Err() != nil {
			return nil, fmt.Errorf("compile %s rule: %w", phase, iss.Err())
		}
		if !reflect.DeepEqual(ast.OutputType(), cel.BoolType) {
			return nil, fmt.Errorf("%s rule must evaluate to bool, got %s", phase, ast.OutputType())
		}
		prg, err := env.Program(ast)
		if err != nil {
			return nil, fmt.Errorf("build %s rule: %w", phase, err)
		}
		rs.programs[phase] = prg
	}
	return rs, nil
}

// eligible returns the targets, in seed order, that satisfy the rule of phase.
// A target whose evaluation fails is skipped.
func (rs *ruleSet) eligible(phase types.Phase, targets []types.Target) []types.Target {
	prg, ok := rs.programs[phase]
	if !ok {
		return nil
	}

	var out []types.Target
	for _, t := range targets {
		val, _, err := prg.Eval(map[string]any{"target": targetVars(t)})
		if err != nil {
			rs.logger.Warn("rule evaluation failed",
				"phase", phase,
				"target", t.ID,
				"error", err,
			)
			continue
		}
		if match, ok := val.Value().(bool); ok && match {
			out = append(out, t)
		}
	}
	return out
}

func targetVars(t types.Target) map[string]any {
	services := make([]any, 0, len(t.Services))
	for _, s := range t.Services {
		services = append(services, map[string]any{
			"port":    int64(s.Port),
			"name":    s.Name,
			"version": s.Version,
			"status":  string(s.Status),
		})
	}

	vulns := make([]any, 0, len(t.Vulnerabilities))
	for _, v := range t.Vulnerabilities {
		vulns = append(vulns, map[string]any{
			"id":          v.ID,
			"cve":         v.CVE,
			"severity":    string(v.Severity),
			"description": v.Description,
		})
	}

	return map[string]any{
		"id":              t.ID,
		"name":            t.Name,
		"ip":              t.IP,
		"os":              t.OS,
		"status":          string(t.Status),
		"services":        services,
		"vulnerabilities": vulns,
	}
}
