package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/zero-day-ai/redsim/report"
)

func newReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Execute steps and export a threat report",
		Long: `Report executes --steps manual steps and writes the resulting threat
report to stdout, or to --out. When --out is a directory the report is
written there under a date-stamped name.

  redsim report --steps 8 --format csv --out ./reports`,
		RunE: func(cmd *cobra.Command, args []string) error {
			steps, _ := cmd.Flags().GetInt("steps")
			formatName, _ := cmd.Flags().GetString("format")
			out, _ := cmd.Flags().GetString("out")

			format, err := report.ParseExportFormat(formatName)
			if err != nil {
				return err
			}

			s, err := newSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			for i := 0; i < steps; i++ {
				if _, err := s.sim.Step(cmd.Context()); err != nil {
					return err
				}
			}

			if out == "" {
				return s.sim.Export(cmd.OutOrStdout(), format)
			}

			r := s.sim.Report()
			if info, err := os.Stat(out); err == nil && info.IsDir() {
				path, err := writeReport(out, s.sim.ReportFilename(format), r, format)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), path)
				return nil
			}

			f, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("failed to create report file: %w", err)
			}
			defer f.Close()
			if err := report.Write(f, r, format); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return f.Close()
		},
	}

	cmd.Flags().Int("steps", 0, "Number of manual steps to execute before reporting")
	cmd.Flags().String("format", string(report.FormatJSON), "Report format: json or csv")
	cmd.Flags().String("out", "", "Output file or directory (default: stdout)")
	return cmd
}
