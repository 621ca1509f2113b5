package types

import "fmt"

// Severity represents the severity level of a vulnerability.
type Severity string

const (
	// SeverityCritical indicates a vulnerability that allows complete system compromise.
	SeverityCritical Severity = "critical"

	// SeverityHigh indicates a high-impact vulnerability.
	SeverityHigh Severity = "high"

	// SeverityMedium indicates a moderate vulnerability.
	SeverityMedium Severity = "medium"

	// SeverityLow indicates a minor vulnerability.
	SeverityLow Severity = "low"
)

// severityWeights maps severity levels to numeric weights used for ordering.
var severityWeights = map[Severity]int{
	SeverityCritical: 4,
	SeverityHigh:     3,
	SeverityMedium:   2,
	SeverityLow:      1,
}

// IsValid returns true if the severity level is valid.
func (s Severity) IsValid() bool {
	_, ok := severityWeights[s]
	return ok
}

// Weight returns the numeric weight of the severity level, 0 for invalid levels.
func (s Severity) Weight() int {
	return severityWeights[s]
}

// IsExploitable returns true for severities the exploitation phase will target.
func (s Severity) IsExploitable() bool {
	return s == SeverityHigh || s == SeverityCritical
}

// String returns the string representation of the severity.
func (s Severity) String() string {
	return string(s)
}

// ParseSeverity parses a string into a Severity value.
// Returns an error if the string is not a valid severity level.
func ParseSeverity(s string) (Severity, error) {
	severity := Severity(s)
	if !severity.IsValid() {
		return "", fmt.Errorf("invalid severity: %s", s)
	}
	return severity, nil
}

// CompareSeverity compares two severity levels.
// Returns:
//   - negative if s1 < s2
//   - zero if s1 == s2
//   - positive if s1 > s2
func CompareSeverity(s1, s2 Severity) int {
	return s1.Weight() - s2.Weight()
}
