// Package report derives threat reports from simulation state and exports
// them as JSON or CSV.
package report
