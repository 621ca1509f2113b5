// Package scenario provides the seed data of a simulation session: the set of
// fictitious hosts the simulated attacker works against.
//
// The built-in lab network is embedded in the binary. Custom scenarios are
// YAML files with the same layout.
package scenario

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/zero-day-ai/redsim/simulation"
	"github.com/zero-day-ai/redsim/types"
)

//go:embed default.yaml
var defaultScenario []byte

// Scenario is a named set of seed targets.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description,omitempty"`
	Targets     []types.Target `yaml:"targets"`
}

// Default returns the built-in three-host lab network.
func Default() *Scenario {
	s, err := Parse(defaultScenario)
	if err != nil {
		panic(fmt.Sprintf("scenario: embedded default is invalid: %v", err))
	}
	return s
}

// Parse decodes and validates a scenario document.
func Parse(data []byte) (*Scenario, error) {
	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse scenario: %w", err)
	}
	for i := range s.Targets {
		if s.Targets[i].Status == "" {
			s.Targets[i].Status = types.TargetOnline
		}
		for j := range s.Targets[i].Services {
			if s.Targets[i].Services[j].Status == "" {
				s.Targets[i].Services[j].Status = types.ServiceOpen
			}
		}
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Load reads a scenario file. If path is a directory, it looks for
// scenario.yaml or scenario.yml in that directory.
func Load(path string) (*Scenario, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat path: %w", err)
	}

	scenarioPath := path
	if info.IsDir() {
		scenarioPath = ""
		for _, name := range []string{"scenario.yaml", "scenario.yml"} {
			candidate := filepath.Join(path, name)
			if _, err := os.Stat(candidate); err == nil {
				scenarioPath = candidate
				break
			}
		}
		if scenarioPath == "" {
			return nil, fmt.Errorf("no scenario.yaml or scenario.yml found in %s", path)
		}
	}

	data, err := os.ReadFile(scenarioPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return Parse(data)
}

// Validate checks that the scenario has at least one target, that every
// target is valid and that target ids are unique.
func (s *Scenario) Validate() error {
	if len(s.Targets) == 0 {
		return fmt.Errorf("scenario %q has no targets", s.Name)
	}
	seen := make(map[string]bool, len(s.Targets))
	for i := range s.Targets {
		t := &s.Targets[i]
		if err := t.Validate(); err != nil {
			return fmt.Errorf("target %d: %w", i, err)
		}
		if seen[t.ID] {
			return fmt.Errorf("duplicate target id %q", t.ID)
		}
		seen[t.ID] = true
	}
	return nil
}

// InitialState returns a fresh simulation state seeded with the scenario targets.
func (s *Scenario) InitialState() simulation.State {
	return simulation.NewState(s.Targets)
}

// VulnerabilityCount returns the number of vulnerabilities across all targets.
func (s *Scenario) VulnerabilityCount() int {
	n := 0
	for _, t := range s.Targets {
		n += len(t.Vulnerabilities)
	}
	return n
}
