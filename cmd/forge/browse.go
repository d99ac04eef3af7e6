package main

import (
	"github.com/spf13/cobra"

	"github.com/Veraticus/abuse-forge/internal/common"
	"github.com/Veraticus/abuse-forge/internal/tui"
)

func browseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "browse [file]",
		Short: "Explore a dataset interactively",
		Long: `Open a dataset in a scrollable table. Cycle the archetype filter with f/Tab,
show the selected record with Enter and quit with q.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			runID, _ := cmd.Flags().GetString("run")

			source, records, err := loadRecords(cmd.Context(), args, runID)
			if err != nil {
				return common.NewUserError("could not load dataset", err)
			}

			return tui.RunBrowser(cmd.Context(), source, records)
		},
	}

	cmd.Flags().String("run", "", "Browse a stored run instead of a file")

	return cmd
}
