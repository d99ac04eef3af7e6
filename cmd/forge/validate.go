package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/abuse-forge/internal/analysis"
	"github.com/Veraticus/abuse-forge/internal/common"
)

// errValidationFailed is returned by validate --strict when the report has issues.
var errValidationFailed = errors.New("dataset failed validation")

func validateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate [file]",
		Short: "Check a dataset's labels and invariants",
		Long: `Load a CSV or JSON Lines dataset, or a stored run, and print its class
distribution, per-tier confidence, missing values and any invariant violations.`,
		Example: `  forge validate abuse_dataset_50000.csv
  forge validate --run 3f1c0d9e-...`,
		Args: cobra.MaximumNArgs(1),
		RunE: runValidate,
	}

	cmd.Flags().String("run", "", "Validate a stored run instead of a file")
	cmd.Flags().Bool("samples", true, "Show one sample record per archetype")
	cmd.Flags().Bool("strict", false, "Exit with an error when any issue is found")

	return cmd
}

func runValidate(cmd *cobra.Command, args []string) error {
	runID, _ := cmd.Flags().GetString("run")
	samples, _ := cmd.Flags().GetBool("samples")
	strict, _ := cmd.Flags().GetBool("strict")

	source, records, err := loadRecords(cmd.Context(), args, runID)
	if err != nil {
		return common.NewUserError("could not load dataset", err)
	}

	report := analysis.Validate(records)
	formatter := analysis.NewCLIFormatter().WithSamples(samples)

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Source: %s\n\n", source)
	fmt.Fprintln(out, formatter.FormatSummary(report))

	if strict && !report.Valid() {
		return common.NewUserError(fmt.Sprintf("%d issue types found", len(report.Issues)), errValidationFailed)
	}
	return nil
}
