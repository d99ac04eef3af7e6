package main

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/abuse-forge/internal/common"
	"github.com/Veraticus/abuse-forge/internal/export"
	"github.com/Veraticus/abuse-forge/internal/model"
	"github.com/Veraticus/abuse-forge/internal/testutil"
)

// executeCommand runs forge with args against a fresh viper and an empty home directory.
func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()

	viper.Reset()
	cfgFile = ""
	t.Cleanup(viper.Reset)

	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	t.Setenv("HOME", t.TempDir())

	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestGenerate(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name       string
		output     string
		extra      []string
		wantFormat export.Format
	}{
		{name: "csv", output: "data.csv", wantFormat: export.FormatCSV},
		{name: "jsonl from extension", output: "data.jsonl", wantFormat: export.FormatJSONL},
		{name: "explicit format wins", output: "data.out", extra: []string{"--format", "jsonl"}, wantFormat: export.FormatJSONL},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.output)
			args := append([]string{"generate", "--size", "200", "--seed", "7", "--quiet", "--output", path}, tt.extra...)

			out, err := executeCommand(t, args...)
			require.NoError(t, err)
			assert.Contains(t, out, "Dataset Validation Report")
			assert.Contains(t, out, "Generated 200 records")
			assert.Contains(t, out, path)

			f, err := os.Open(path)
			require.NoError(t, err)
			defer func() { _ = f.Close() }()

			records, err := export.Read(f, tt.wantFormat)
			require.NoError(t, err)
			assert.Len(t, records, 200)
		})
	}
}

func TestGenerate_Deterministic(t *testing.T) {
	dir := t.TempDir()
	sequential := filepath.Join(dir, "a.csv")
	parallel := filepath.Join(dir, "b.csv")

	_, err := executeCommand(t, "generate", "--size", "300", "--seed", "99", "--quiet", "--no-validate", "--output", sequential)
	require.NoError(t, err)
	_, err = executeCommand(t, "generate", "--size", "300", "--seed", "99", "--quiet", "--no-validate", "--parallel", "--output", parallel)
	require.NoError(t, err)

	a, err := os.ReadFile(sequential)
	require.NoError(t, err)
	b, err := os.ReadFile(parallel)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestGenerate_InvalidSettings(t *testing.T) {
	tests := []struct {
		target error
		name   string
		args   []string
	}{
		{
			name:   "ratios sum to 1.05",
			args:   []string{"--legitimate-ratio", "0.7", "--fake-account-ratio", "0.15", "--account-takeover-ratio", "0.1", "--payment-fraud-ratio", "0.1"},
			target: common.ErrInvalidConfig,
		},
		{
			name:   "reversed window",
			args:   []string{"--start-date", "2024-05-01", "--end-date", "2024-04-01"},
			target: common.ErrDegenerateWindow,
		},
		{
			name:   "unknown difficulty",
			args:   []string{"--difficulty", "extreme"},
			target: common.ErrInvalidConfig,
		},
		{
			name:   "unknown format",
			args:   []string{"--format", "parquet"},
			target: common.ErrInvalidConfig,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "never.csv")
			args := append([]string{"generate", "--size", "100", "--quiet", "--output", path}, tt.args...)

			_, err := executeCommand(t, args...)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.target)

			var userErr *common.UserError
			assert.ErrorAs(t, err, &userErr)
			assert.NoFileExists(t, path)
		})
	}
}

func TestGenerate_StripLabels(t *testing.T) {
	path := filepath.Join(t.TempDir(), "features.csv")

	_, err := executeCommand(t, "generate", "--size", "40", "--quiet", "--no-validate", "--strip-labels", "--output", path)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	header := strings.SplitN(string(data), "\n", 2)[0]
	assert.Contains(t, header, "transaction_id")
	for _, column := range model.LabelColumns {
		assert.NotContains(t, strings.Split(header, ","), column)
	}

	_, err = export.ReadFile(path)
	assert.Error(t, err)
}

func TestGenerate_EnvOverride(t *testing.T) {
	t.Setenv("FORGE_GENERATE_SIZE", "30")
	path := filepath.Join(t.TempDir(), "env.csv")

	out, err := executeCommand(t, "generate", "--quiet", "--no-validate", "--output", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Generated 30 records")
	assert.NotContains(t, out, "Dataset Validation Report")
}

func TestRunsLifecycle(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "forge.db")

	out, err := executeCommand(t, "runs", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "No stored runs")

	out, err = executeCommand(t, "generate", "--size", "120", "--seed", "3", "--quiet", "--no-validate",
		"--save", "--db", db, "--output", filepath.Join(dir, "saved.csv"))
	require.NoError(t, err)
	assert.Contains(t, out, "Saved run")

	runID := regexp.MustCompile(`Saved run ([0-9a-f-]{36})`).FindStringSubmatch(out)
	require.Len(t, runID, 2)
	id := runID[1]

	out, err = executeCommand(t, "runs", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, id)

	out, err = executeCommand(t, "runs", "show", id, "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "Run "+id)
	assert.Contains(t, out, "120")

	out, err = executeCommand(t, "validate", "--run", id, "--db", db, "--strict")
	require.NoError(t, err)
	assert.Contains(t, out, "Source: run "+id)
	assert.Contains(t, out, "No issues found")

	out, err = executeCommand(t, "runs", "delete", id, "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted run "+id)

	_, err = executeCommand(t, "runs", "show", id, "--db", db)
	assert.ErrorIs(t, err, common.ErrNotFound)

	_, err = executeCommand(t, "runs", "delete", id, "--db", db)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestValidate(t *testing.T) {
	dir := t.TempDir()
	records := testutil.NewDatasetBuilder(t).WithSize(100).Records()

	clean := filepath.Join(dir, "clean.csv")
	require.NoError(t, export.WriteFile(clean, export.FormatCSV, records))

	broken := make([]model.TransactionRecord, len(records))
	copy(broken, records)
	broken[5].IsAbuse = !broken[5].IsAbuse
	brokenPath := filepath.Join(dir, "broken.jsonl")
	require.NoError(t, export.WriteFile(brokenPath, export.FormatJSONL, broken))

	t.Run("clean file", func(t *testing.T) {
		out, err := executeCommand(t, "validate", clean, "--strict")
		require.NoError(t, err)
		assert.Contains(t, out, "Source: "+clean)
		assert.Contains(t, out, "Sample Records:")
	})

	t.Run("broken file reports issues", func(t *testing.T) {
		out, err := executeCommand(t, "validate", brokenPath, "--samples=false")
		require.NoError(t, err)
		assert.Contains(t, out, "label_mismatch")
		assert.NotContains(t, out, "Sample Records:")
	})

	t.Run("strict fails on issues", func(t *testing.T) {
		_, err := executeCommand(t, "validate", brokenPath, "--strict")
		assert.ErrorIs(t, err, errValidationFailed)
	})

	t.Run("missing input", func(t *testing.T) {
		_, err := executeCommand(t, "validate")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "a dataset file or --run is required")
	})

	t.Run("file and run", func(t *testing.T) {
		_, err := executeCommand(t, "validate", clean, "--run", "abc")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not both")
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := executeCommand(t, "validate", filepath.Join(dir, "nope.csv"))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}

func TestTiers(t *testing.T) {
	out, err := executeCommand(t, "tiers")
	require.NoError(t, err)
	assert.Contains(t, out, "Difficulty Tiers")
	assert.Contains(t, out, "account_takeover")
	assert.Regexp(t, `fake_account\s+easy\s+0\.85-0\.98`, out)
	assert.Regexp(t, `legitimate\s+n/a\s+0\.00`, out)
}

func TestVersion(t *testing.T) {
	out, err := executeCommand(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "forge version dev\n", out)
}

func TestInitConfig_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "forge.yaml")
	require.NoError(t, os.WriteFile(path, []byte("generate:\n  size: 25\n  seed: 5\nlogging:\n  level: warn\n"), 0600))
	output := filepath.Join(t.TempDir(), "cfg.csv")

	out, err := executeCommand(t, "generate", "--config", path, "--quiet", "--no-validate", "--output", output)
	require.NoError(t, err)
	assert.Contains(t, out, "Generated 25 records")

	_, err = executeCommand(t, "version", "--config", filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config")

	_, err = executeCommand(t, "version", "--log-level", "loud")
	assert.ErrorIs(t, err, common.ErrInvalidConfig)
}
