package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newScenarioCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scenario",
		Short: "Show the active scenario",
		RunE: func(cmd *cobra.Command, args []string) error {
			asYAML, _ := cmd.Flags().GetBool("yaml")

			s, err := newSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			sc := s.sim.Scenario()
			out := cmd.OutOrStdout()

			if asYAML {
				enc := yaml.NewEncoder(out)
				enc.SetIndent(2)
				if err := enc.Encode(sc); err != nil {
					return fmt.Errorf("failed to encode scenario: %w", err)
				}
				return enc.Close()
			}

			fmt.Fprintf(out, "%s: %s\n\n", sc.Name, sc.Description)
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tIP\tOS\tSTATUS\tSERVICES\tVULNERABILITIES")
			for _, t := range sc.Targets {
				services := make([]string, 0, len(t.Services))
				for _, svc := range t.Services {
					services = append(services, fmt.Sprintf("%s/%d", svc.Name, svc.Port))
				}
				vulns := make([]string, 0, len(t.Vulnerabilities))
				for _, v := range t.Vulnerabilities {
					vulns = append(vulns, fmt.Sprintf("%s (%s)", v.CVE, v.Severity))
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
					t.ID, t.Name, t.IP, t.OS, t.Status,
					strings.Join(services, ","), strings.Join(vulns, ","))
			}
			return tw.Flush()
		},
	}

	cmd.Flags().Bool("yaml", false, "Print the scenario as YAML")
	return cmd
}
