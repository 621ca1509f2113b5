package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/zero-day-ai/redsim/simerr"
)

// ExportFormat represents the format for exporting a report.
type ExportFormat string

const (
	// FormatJSON exports the full report as indented JSON.
	FormatJSON ExportFormat = "json"

	// FormatCSV exports the attack timeline as comma-separated values.
	FormatCSV ExportFormat = "csv"
)

// AllExportFormats returns every supported export format.
func AllExportFormats() []ExportFormat {
	return []ExportFormat{FormatJSON, FormatCSV}
}

// IsValid returns true if the export format is valid.
func (f ExportFormat) IsValid() bool {
	switch f {
	case FormatJSON, FormatCSV:
		return true
	default:
		return false
	}
}

// String returns the string representation of the export format.
func (f ExportFormat) String() string {
	return string(f)
}

// FileExtension returns the file extension for the export format.
func (f ExportFormat) FileExtension() string {
	switch f {
	case FormatJSON:
		return ".json"
	case FormatCSV:
		return ".csv"
	default:
		return ""
	}
}

// MimeType returns the MIME type for the export format.
func (f ExportFormat) MimeType() string {
	switch f {
	case FormatJSON:
		return "application/json"
	case FormatCSV:
		return "text/csv"
	default:
		return "application/octet-stream"
	}
}

// ParseExportFormat parses a case-insensitive format name.
func ParseExportFormat(s string) (ExportFormat, error) {
	f := ExportFormat(strings.ToLower(strings.TrimSpace(s)))
	if !f.IsValid() {
		return "", simerr.NewValidationError("report.ParseExportFormat",
			fmt.Errorf("%w: %q", simerr.ErrUnknownFormat, s))
	}
	return f, nil
}

// Filename returns the date-stamped download name of a report.
func Filename(now time.Time, format ExportFormat) string {
	return "redsim-report-" + now.Format("2006-01-02") + format.FileExtension()
}

var timelineHeader = []string{"id", "timestamp", "phase", "action", "target", "result", "mitre_id", "details"}

// Write serializes r to w in the given format.
func Write(w io.Writer, r Report, format ExportFormat) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("failed to encode report: %w", err)
		}
		return nil

	case FormatCSV:
		cw := csv.NewWriter(w)
		if err := cw.Write(timelineHeader); err != nil {
			return fmt.Errorf("failed to write csv header: %w", err)
		}
		for _, step := range r.AttackTimeline {
			record := []string{
				step.ID,
				step.Timestamp.UTC().Format(time.RFC3339),
				string(step.Phase),
				step.Action,
				step.Target,
				string(step.Result),
				step.MitreID,
				step.Details,
			}
			if err := cw.Write(record); err != nil {
				return fmt.Errorf("failed to write csv record %s: %w", step.ID, err)
			}
		}
		cw.Flush()
		if err := cw.Error(); err != nil {
			return fmt.Errorf("failed to flush csv: %w", err)
		}
		return nil

	default:
		return simerr.NewValidationError("report.Write",
			fmt.Errorf("%w: %q", simerr.ErrUnknownFormat, format))
	}
}
