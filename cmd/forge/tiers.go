package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Veraticus/abuse-forge/internal/cli"
	"github.com/Veraticus/abuse-forge/internal/model"
	"github.com/Veraticus/abuse-forge/internal/pattern"
)

func tiersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tiers",
		Short: "Describe each archetype at each difficulty tier",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, cli.FormatTitle("Difficulty Tiers"))

			header := fmt.Sprintf("%-26s %-7s %-12s %s", "Archetype", "Tier", "Confidence", "Behavior")
			fmt.Fprintln(out, cli.HeaderStyle.Render(header))
			fmt.Fprintln(out, cli.SubtleStyle.Render(strings.Repeat("─", len(header)+40)))

			for _, s := range pattern.TierSummaries() {
				confidence := "0.00"
				if s.Archetype != model.AbuseLegitimate {
					confidence = fmt.Sprintf("%.2f-%.2f", s.Confidence.Lo, s.Confidence.Hi)
				}
				fmt.Fprintf(out, "%s %s %-12s %s\n",
					cli.ArchetypeStyle(s.Archetype).Render(fmt.Sprintf("%-26s", s.Archetype)),
					cli.TierStyle(s.Tier).Render(fmt.Sprintf("%-7s", s.Tier)),
					confidence, s.Summary)
			}
		},
	}
}
