package main

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/abuse-forge/internal/analysis"
	"github.com/Veraticus/abuse-forge/internal/cli"
	"github.com/Veraticus/abuse-forge/internal/common"
	"github.com/Veraticus/abuse-forge/internal/config"
	"github.com/Veraticus/abuse-forge/internal/engine"
	"github.com/Veraticus/abuse-forge/internal/export"
	"github.com/Veraticus/abuse-forge/internal/model"
	"github.com/Veraticus/abuse-forge/internal/sheets"
)

func generateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a labeled abuse dataset",
		Long: `Compose a dataset from the legitimate, suspicious-but-legitimate, fake account,
account takeover and payment fraud generators at the configured ratios, validate it
and write it to CSV or JSON Lines.

The same seed and settings always produce the same dataset.`,
		Example: `  forge generate --size 10000 --seed 7 --output train.csv
  forge generate --difficulty hard --format jsonl --save
  forge generate --suspicious-ratio 0.05 --legitimate-ratio 0.70
  forge generate --strip-labels --output features.csv`,
		Args: cobra.NoArgs,
		RunE: runGenerate,
	}

	defaults := engine.DefaultRatios()

	cmd.Flags().IntP("size", "n", 50000, "Number of records to generate")
	cmd.Flags().Int64("seed", 42, "Random seed")
	cmd.Flags().Float64("legitimate-ratio", defaults.Legitimate, "Share of legitimate records")
	cmd.Flags().Float64("suspicious-ratio", defaults.SuspiciousButLegitimate, "Share of suspicious-but-legitimate records")
	cmd.Flags().Float64("fake-account-ratio", defaults.FakeAccount, "Share of fake account records")
	cmd.Flags().Float64("account-takeover-ratio", defaults.AccountTakeover, "Share of account takeover records")
	cmd.Flags().Float64("payment-fraud-ratio", defaults.PaymentFraud, "Share of payment fraud records")
	cmd.Flags().String("start-date", "", "Window start (YYYY-MM-DD, default: 90 days before end)")
	cmd.Flags().String("end-date", "", "Window end (YYYY-MM-DD, default: now)")
	cmd.Flags().String("tier-mix", config.FormatTierMix(engine.DefaultTierMix()), "Easy,medium,hard weights for fraud records")
	cmd.Flags().String("difficulty", "", "Use one tier (easy, medium, hard) for every fraud record")
	cmd.Flags().StringP("output", "o", "", "Output file (default: abuse_dataset_<size>.<format>)")
	cmd.Flags().StringP("format", "f", "csv", "Output format (csv, jsonl)")
	cmd.Flags().Bool("parallel", false, "Generate archetypes concurrently")
	cmd.Flags().Bool("no-validate", false, "Skip the validation report")
	cmd.Flags().Bool("save", false, "Store the dataset in the database")
	cmd.Flags().Bool("sheets", false, "Upload the dataset to Google Sheets")
	cmd.Flags().Bool("quiet", false, "Hide the progress bar")
	cmd.Flags().Bool("strip-labels", false, "Omit label columns from the output file (stored and uploaded runs keep them)")

	for flag, key := range map[string]string{
		"size":                   "generate.size",
		"seed":                   "generate.seed",
		"legitimate-ratio":       "generate.ratios.legitimate",
		"suspicious-ratio":       "generate.ratios.suspicious_but_legitimate",
		"fake-account-ratio":     "generate.ratios.fake_account",
		"account-takeover-ratio": "generate.ratios.account_takeover",
		"payment-fraud-ratio":    "generate.ratios.payment_fraud",
		"start-date":             "generate.start_date",
		"end-date":               "generate.end_date",
		"tier-mix":               "generate.tier_mix",
		"difficulty":             "generate.difficulty",
		"output":                 "generate.output",
		"format":                 "generate.format",
		"parallel":               "generate.parallel",
		"no-validate":            "generate.no_validate",
	} {
		_ = viper.BindPFlag(key, cmd.Flags().Lookup(flag))
	}

	return cmd
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	settings, err := config.Load(viper.GetViper())
	if err != nil {
		return common.NewUserError("invalid configuration", err)
	}

	cfg, err := settings.Generate.ToEngineConfig(time.Now())
	if err != nil {
		return common.NewUserError("invalid generation settings", err)
	}

	format, outputPath, err := resolveOutput(cmd, settings.Generate)
	if err != nil {
		return common.NewUserError("invalid output", err)
	}

	out := cmd.OutOrStdout()
	quiet, _ := cmd.Flags().GetBool("quiet")

	handler := cli.NewInterruptHandler(cmd.ErrOrStderr(), "Generation")
	ctx := handler.HandleInterrupts(cmd.Context())
	defer handler.Stop()

	composer := engine.NewComposer()
	var progress *cli.Progress
	if !quiet {
		progress = cli.NewProgress(cmd.ErrOrStderr(), cfg.Size)
		composer = composer.WithProgress(progress.Update)
	}

	start := time.Now()
	ds, err := composer.Compose(ctx, cfg)
	if progress != nil {
		progress.Finish()
	}
	if err != nil {
		if handler.WasInterrupted() {
			return nil
		}
		return fmt.Errorf("failed to generate dataset: %w", err)
	}

	slog.Debug("Composed dataset",
		"run_id", ds.RunID,
		"records", len(ds.Records),
		"elapsed", time.Since(start))

	if !settings.Generate.NoValidate {
		report := analysis.Validate(ds.Records)
		fmt.Fprintln(out, analysis.NewCLIFormatter().WithSamples(false).FormatSummary(report))
	}

	var exportOpts []export.Option
	if strip, _ := cmd.Flags().GetBool("strip-labels"); strip {
		exportOpts = append(exportOpts, export.WithoutLabels())
	}
	if err := export.WriteFile(outputPath, format, ds.Records, exportOpts...); err != nil {
		return fmt.Errorf("failed to write dataset: %w", err)
	}

	run, err := ds.Summary()
	if err != nil {
		return err
	}

	if save, _ := cmd.Flags().GetBool("save"); save {
		store, err := initStorage(ctx)
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()

		if err := store.SaveRun(ctx, run, ds.Records); err != nil {
			return fmt.Errorf("failed to save run: %w", err)
		}
		fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Saved run %s to %s", run.ID, store.Path())))
	}

	if upload, _ := cmd.Flags().GetBool("sheets"); upload {
		sheetsConfig, err := config.LoadSheetsConfig(viper.GetViper())
		if err != nil {
			return common.NewUserError("Google Sheets is not configured", err)
		}
		writer, err := sheets.NewWriter(ctx, *sheetsConfig, slog.Default())
		if err != nil {
			return err
		}
		if err := writer.WriteDataset(ctx, run, ds.Records); err != nil {
			return fmt.Errorf("failed to upload dataset: %w", err)
		}
		fmt.Fprintln(out, cli.FormatSuccess("Uploaded dataset to Google Sheets"))
	}

	printGenerated(out, outputPath, run.ID, ds)
	return nil
}

// resolveOutput picks the export format. An explicit --format wins, then the output
// file extension, then the configured default.
func resolveOutput(cmd *cobra.Command, g config.GenerationSettings) (export.Format, string, error) {
	if g.Output != "" && !cmd.Flags().Changed("format") {
		if format, err := export.FormatFromPath(g.Output); err == nil {
			return format, g.Output, nil
		}
	}

	format, err := export.ParseFormat(g.Format)
	if err != nil {
		return "", "", err
	}
	return format, g.OutputPath(format.Extension()), nil
}

func printGenerated(w io.Writer, path, runID string, ds *engine.Dataset) {
	counts := ds.Counts()
	lines := []string{
		cli.FormatKeyValue("Output", 26, path),
		cli.FormatKeyValue("Run ID", 26, runID),
		cli.FormatKeyValue("Records", 26, len(ds.Records)),
	}
	for _, abuse := range model.Archetypes {
		lines = append(lines, cli.FormatKeyValue(string(abuse), 26, counts[abuse]))
	}

	fmt.Fprintln(w, cli.FormatSuccess(fmt.Sprintf("Generated %d records", len(ds.Records))))
	for _, line := range lines {
		fmt.Fprintln(w, "  "+line)
	}
}
