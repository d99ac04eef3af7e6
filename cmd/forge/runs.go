package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Veraticus/abuse-forge/internal/cli"
	"github.com/Veraticus/abuse-forge/internal/model"
	"github.com/Veraticus/abuse-forge/internal/service"
)

func runsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List stored dataset runs",
		Long: `List the datasets saved with 'forge generate --save', newest first.
Use the subcommands to inspect or remove a single run.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := initStorage(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			runs, err := store.ListRuns(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to list runs: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(out, cli.FormatInfo("No stored runs. Use 'forge generate --save' to store one."))
				return nil
			}

			fmt.Fprintln(out, cli.HeaderStyle.Render(fmt.Sprintf("%-36s  %-19s  %8s  %6s", "ID", "Created", "Records", "Seed")))
			for _, run := range runs {
				fmt.Fprintf(out, "%-36s  %-19s  %8d  %6d\n",
					run.ID, run.CreatedAt.Local().Format(model.DateTimeLayout), run.RecordCount, run.Seed)
			}
			return nil
		},
	}

	cmd.AddCommand(runsShowCmd())
	cmd.AddCommand(runsDeleteCmd())

	return cmd
}

func runsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one stored run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := initStorage(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			run, err := store.GetRun(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("failed to get run %s: %w", args[0], err)
			}

			printRun(cmd.OutOrStdout(), run)
			return nil
		},
	}
}

func runsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a stored run and its records",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := initStorage(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := store.DeleteRun(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("failed to delete run %s: %w", args[0], err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Deleted run "+args[0]))
			return nil
		},
	}
}

func printRun(w io.Writer, run *service.RunSummary) {
	const width = 26

	lines := []string{
		cli.FormatKeyValue("Created", width, run.CreatedAt.Local().Format(model.DateTimeLayout)),
		cli.FormatKeyValue("Window", width, run.Start.Format(model.DateTimeLayout)+" to "+run.End.Format(model.DateTimeLayout)),
		cli.FormatKeyValue("Seed", width, run.Seed),
		cli.FormatKeyValue("Records", width, run.RecordCount),
	}
	for _, abuse := range model.Archetypes {
		lines = append(lines, cli.FormatKeyValue(string(abuse), width, run.Counts[abuse]))
	}
	lines = append(lines, cli.FormatKeyValue("Config", width, run.Config))

	fmt.Fprintln(w, cli.RenderBox("Run "+run.ID, strings.Join(lines, "\n")))
}
