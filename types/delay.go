package types

import (
	"fmt"
	"time"
)

// Default automatic stepping bounds.
const (
	DefaultStepDelay = 3 * time.Second
	MinStepDelay     = 1 * time.Second
	MaxStepDelay     = 10 * time.Second
)

// DelayConfig defines the bounds of the automatic stepping interval.
// It specifies default, minimum, and maximum delay values between two
// automatically executed steps.
type DelayConfig struct {
	// Default is the delay to use if the operator doesn't specify one.
	// A zero value means DefaultStepDelay.
	Default time.Duration

	// Max is the maximum allowed delay.
	// A zero value means no upper bound is enforced.
	Max time.Duration

	// Min is the minimum allowed delay.
	// A zero value means no lower bound is enforced.
	Min time.Duration
}

// DefaultDelayConfig returns the stock 1s..10s bounds with a 3s default.
func DefaultDelayConfig() DelayConfig {
	return DelayConfig{
		Default: DefaultStepDelay,
		Min:     MinStepDelay,
		Max:     MaxStepDelay,
	}
}

// Validate checks that the delay configuration is internally consistent.
// It verifies that:
// - If both min and max are set, min <= max
// - If default is set, it falls within the min/max bounds
func (c DelayConfig) Validate() error {
	if c.Min < 0 || c.Max < 0 || c.Default < 0 {
		return fmt.Errorf("delay bounds must not be negative")
	}

	if c.Min > 0 && c.Max > 0 && c.Min > c.Max {
		return fmt.Errorf("min delay %v exceeds max delay %v", c.Min, c.Max)
	}

	if c.Default > 0 {
		if c.Min > 0 && c.Default < c.Min {
			return fmt.Errorf("default delay %v below min %v", c.Default, c.Min)
		}
		if c.Max > 0 && c.Default > c.Max {
			return fmt.Errorf("default delay %v exceeds max %v", c.Default, c.Max)
		}
	}

	return nil
}

// ValidateDelay checks if a requested delay is within the configured bounds.
func (c DelayConfig) ValidateDelay(requested time.Duration) error {
	if requested <= 0 {
		return fmt.Errorf("delay %v must be positive", requested)
	}
	if c.Min > 0 && requested < c.Min {
		return fmt.Errorf("delay %v below minimum %v", requested, c.Min)
	}
	if c.Max > 0 && requested > c.Max {
		return fmt.Errorf("delay %v exceeds maximum %v", requested, c.Max)
	}
	return nil
}

// ResolveDelay returns the effective delay to use.
// It implements the following precedence order:
// 1. If requested > 0, use the requested delay
// 2. Else if config.Default > 0, use the config default
// 3. Else use DefaultStepDelay
//
// Note: This method does not perform validation. Call ValidateDelay first
// if the requested delay needs to be checked against bounds.
func (c DelayConfig) ResolveDelay(requested time.Duration) time.Duration {
	if requested > 0 {
		return requested
	}
	if c.Default > 0 {
		return c.Default
	}
	return DefaultStepDelay
}
