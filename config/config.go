// Package config provides loading and parsing of redsim.yaml configuration files.
// A configuration tunes the stepping engine, selects a scenario and sets up logging.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/zero-day-ai/redsim/simerr"
	"github.com/zero-day-ai/redsim/types"
)

// ErrNotFound is returned when no configuration file exists at the searched location.
var ErrNotFound = errors.New("no redsim.yaml or redsim.yml found")

// Default values used when a field is unset or invalid.
const (
	DefaultSuccessRate = 0.7
	DefaultTargetLabel = "chosen"
	DefaultLogLevel    = "info"
	DefaultLogFormat   = "text"
)

// Config represents a redsim.yaml configuration file.
type Config struct {
	Simulation *SimulationConfig `yaml:"simulation,omitempty"`

	// Scenario is the path to a scenario file or directory. Empty selects
	// the built-in lab network.
	Scenario string `yaml:"scenario,omitempty"`

	Log *LogConfig `yaml:"log,omitempty"`
}

// SimulationConfig tunes the stepping engine.
type SimulationConfig struct {
	// Delay is the automatic stepping interval.
	// Format: Go duration string (e.g., "3s", "500ms")
	// Default: 3s
	Delay string `yaml:"delay,omitempty"`

	// MinDelay and MaxDelay bound Delay and any runtime change to it.
	// Default: 1s and 10s
	MinDelay string `yaml:"min_delay,omitempty"`
	MaxDelay string `yaml:"max_delay,omitempty"`

	// SuccessRate is the probability in [0, 1] that a step succeeds.
	// Default: 0.7
	SuccessRate *float64 `yaml:"success_rate,omitempty"`

	// Seed seeds the random source. 0 derives a seed from the clock.
	Seed uint64 `yaml:"seed,omitempty"`

	// TargetLabel is "chosen" or "placeholder".
	// Default: chosen
	TargetLabel string `yaml:"target_label,omitempty"`
}

// LogConfig configures the process logger.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level,omitempty"`

	// Format is text or json.
	Format string `yaml:"format,omitempty"`
}

func parseDuration(s string, def time.Duration) time.Duration {
	if s == "" {
		return def
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return def
	}
	return d
}

// GetDelay parses the delay string and returns a duration.
// Returns the default value if not set or invalid.
func (s *SimulationConfig) GetDelay() time.Duration {
	if s == nil {
		return types.DefaultStepDelay
	}
	return parseDuration(s.Delay, types.DefaultStepDelay)
}

// GetDelayConfig returns the delay bounds with Default set to GetDelay.
func (s *SimulationConfig) GetDelayConfig() types.DelayConfig {
	c := types.DefaultDelayConfig()
	c.Default = s.GetDelay()
	if s != nil {
		c.Min = parseDuration(s.MinDelay, types.MinStepDelay)
		c.Max = parseDuration(s.MaxDelay, types.MaxStepDelay)
	}
	return c
}

// GetSuccessRate returns the configured success rate or the default value.
func (s *SimulationConfig) GetSuccessRate() float64 {
	if s == nil || s.SuccessRate == nil || *s.SuccessRate < 0 || *s.SuccessRate > 1 {
		return DefaultSuccessRate
	}
	return *s.SuccessRate
}

// GetSeed returns the configured seed, 0 when unset.
func (s *SimulationConfig) GetSeed() uint64 {
	if s == nil {
		return 0
	}
	return s.Seed
}

// GetTargetLabel returns the target label policy or the default value.
func (s *SimulationConfig) GetTargetLabel() string {
	if s == nil || s.TargetLabel == "" {
		return DefaultTargetLabel
	}
	return strings.ToLower(s.TargetLabel)
}

// GetLevel returns the log level or the default value.
func (l *LogConfig) GetLevel() string {
	if l == nil || l.Level == "" {
		return DefaultLogLevel
	}
	return strings.ToLower(l.Level)
}

// GetFormat returns the log format or the default value.
func (l *LogConfig) GetFormat() string {
	if l == nil || l.Format == "" {
		return DefaultLogFormat
	}
	return strings.ToLower(l.Format)
}

// Validate rejects values the getters would otherwise silently replace.
func (c *Config) Validate() error {
	if sim := c.Simulation; sim != nil {
		for name, v := range map[string]string{"delay": sim.Delay, "min_delay": sim.MinDelay, "max_delay": sim.MaxDelay} {
			if v == "" {
				continue
			}
			if _, err := time.ParseDuration(v); err != nil {
				return invalid("simulation."+name, fmt.Errorf("invalid duration %q", v))
			}
		}

		dc := sim.GetDelayConfig()
		if err := dc.Validate(); err != nil {
			return invalid("simulation.delay", err)
		}
		if err := dc.ValidateDelay(dc.Default); err != nil {
			return invalid("simulation.delay", err)
		}

		if sim.SuccessRate != nil && (*sim.SuccessRate < 0 || *sim.SuccessRate > 1) {
			return invalid("simulation.success_rate", fmt.Errorf("success rate %v outside [0, 1]", *sim.SuccessRate))
		}

		switch sim.GetTargetLabel() {
		case "chosen", "placeholder":
		default:
			return invalid("simulation.target_label", fmt.Errorf("unknown target label policy %q", sim.TargetLabel))
		}
	}

	switch c.Log.GetLevel() {
	case "debug", "info", "warn", "error":
	default:
		return invalid("log.level", fmt.Errorf("unknown log level %q", c.Log.Level))
	}
	switch c.Log.GetFormat() {
	case "text", "json":
	default:
		return invalid("log.format", fmt.Errorf("unknown log format %q", c.Log.Format))
	}

	return nil
}

func invalid(field string, err error) error {
	return simerr.NewConfigurationError("config.Validate", fmt.Errorf("%w: %v", simerr.ErrInvalidConfig, err)).
		At(field, nil)
}

// Default returns an empty configuration; every getter yields its default.
func Default() *Config {
	return &Config{}
}

// Parse decodes and validates a configuration document.
func Parse(data []byte) (*Config, error) {
	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// Load reads and parses a redsim.yaml file from the given path.
// If the path is a directory, it looks for redsim.yaml or redsim.yml in that directory.
func Load(path string) (*Config, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat path: %w", err)
	}

	configPath := path
	if info.IsDir() {
		configPath = ""
		for _, name := range []string{"redsim.yaml", "redsim.yml"} {
			candidate := filepath.Join(path, name)
			if _, err := os.Stat(candidate); err == nil {
				configPath = candidate
				break
			}
		}
		if configPath == "" {
			return nil, fmt.Errorf("%w in %s", ErrNotFound, path)
		}
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config, err := Parse(data)
	if err != nil {
		return nil, err
	}

	// a relative scenario path is relative to the config file
	if config.Scenario != "" && !filepath.IsAbs(config.Scenario) {
		config.Scenario = filepath.Join(filepath.Dir(configPath), config.Scenario)
	}
	return config, nil
}

// LoadFromDir searches for redsim.yaml starting from the given directory
// and walking up to parent directories until found or root is reached.
func LoadFromDir(dir string) (*Config, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path: %w", err)
	}

	for {
		config, err := Load(absDir)
		if err == nil {
			return config, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return nil, err
		}

		parent := filepath.Dir(absDir)
		if parent == absDir {
			return nil, fmt.Errorf("%w in %s or parent directories", ErrNotFound, dir)
		}
		absDir = parent
	}
}
