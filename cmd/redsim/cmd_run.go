package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/zero-day-ai/redsim/report"
	"github.com/zero-day-ai/redsim/simulation"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the simulation with automatic stepping",
		Long: `Run executes one step every --delay until interrupted, until --duration
elapses or until --max-steps steps have been recorded.

  redsim run --delay 1s --max-steps 10 --report ./out`,
		RunE: func(cmd *cobra.Command, args []string) error {
			delay, _ := cmd.Flags().GetDuration("delay")
			duration, _ := cmd.Flags().GetDuration("duration")
			maxSteps, _ := cmd.Flags().GetInt("max-steps")
			reportDir, _ := cmd.Flags().GetString("report")
			formatName, _ := cmd.Flags().GetString("format")

			format, err := report.ParseExportFormat(formatName)
			if err != nil {
				return err
			}

			s, err := newSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			if cmd.Flags().Changed("delay") {
				if err := s.sim.SetDelay(delay); err != nil {
					return err
				}
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			if duration > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, duration)
				defer cancel()
			}

			out := cmd.OutOrStdout()
			limit := make(chan struct{})
			var once sync.Once
			recorded := 0
			unsubscribe := s.sim.Subscribe(func(state simulation.State, action simulation.Action) {
				add, ok := action.(simulation.AddAttackStep)
				if !ok {
					return
				}
				printStep(out, add.Step)
				recorded++
				if maxSteps > 0 && recorded >= maxSteps {
					once.Do(func() { close(limit) })
				}
			})
			defer unsubscribe()

			fmt.Fprintf(out, "Simulation started (delay %s). Press Ctrl+C to stop.\n", s.sim.Delay())
			if err := s.sim.Start(ctx); err != nil {
				return err
			}

			select {
			case <-ctx.Done():
			case <-limit:
			}
			s.sim.Stop()

			r := s.sim.Report()
			printSummary(out, r)

			if reportDir != "" {
				path, err := writeReport(reportDir, s.sim.ReportFilename(format), r, format)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Report:       %s\n", path)
			}
			return nil
		},
	}

	cmd.Flags().Duration("delay", 0, "Interval between automatic steps (default from config, 3s)")
	cmd.Flags().Duration("duration", 0, "Stop after this long (0 = until interrupted)")
	cmd.Flags().Int("max-steps", 0, "Stop after this many steps (0 = unlimited)")
	cmd.Flags().String("report", "", "Directory to write the report to when the run ends")
	cmd.Flags().String("format", string(report.FormatJSON), "Report format: json or csv")

	return cmd
}

func writeReport(dir, name string, r report.Report, format report.ExportFormat) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create report directory: %w", err)
	}
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create report file: %w", err)
	}
	if err := report.Write(f, r, format); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to close report file: %w", err)
	}
	return path, nil
}
