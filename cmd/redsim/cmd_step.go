package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newStepCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "step",
		Short: "Execute manual simulation steps",
		Long: `Step executes --count steps one at a time from the scenario's initial
state and prints each step with the phase it leads to.

  redsim step --count 3 --seed 42`,
		RunE: func(cmd *cobra.Command, args []string) error {
			count, _ := cmd.Flags().GetInt("count")
			if count < 1 {
				return fmt.Errorf("--count must be at least 1")
			}

			s, err := newSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			out := cmd.OutOrStdout()
			for i := 0; i < count; i++ {
				step, err := s.sim.Step(cmd.Context())
				if err != nil {
					return err
				}
				printStep(out, step)
				fmt.Fprintf(out, "  phase: %s\n", s.sim.State().CurrentPhase)
			}
			return nil
		},
	}

	cmd.Flags().Int("count", 1, "Number of steps to execute")
	return cmd
}
