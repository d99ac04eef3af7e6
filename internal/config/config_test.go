package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/abuse-forge/internal/common"
	"github.com/Veraticus/abuse-forge/internal/engine"
	"github.com/Veraticus/abuse-forge/internal/model"
)

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	t.Setenv("FORGE_TEST_DIR", "/data")

	tests := []struct {
		name string
		path string
		want string
	}{
		{name: "empty", path: "", want: ""},
		{name: "home", path: "~", want: home},
		{name: "home relative", path: "~/forge/forge.db", want: filepath.Join(home, "forge/forge.db")},
		{name: "env var", path: "$FORGE_TEST_DIR/out.csv", want: "/data/out.csv"},
		{name: "plain", path: "out.csv", want: "out.csv"},
		{name: "tilde in middle", path: "a/~/b", want: "a/~/b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExpandPath(tt.path))
		})
	}
}

func newViper() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	return v
}

func TestLoad_Defaults(t *testing.T) {
	settings, err := Load(newViper())
	require.NoError(t, err)

	assert.Equal(t, 50000, settings.Generate.Size)
	assert.Equal(t, int64(42), settings.Generate.Seed)
	assert.InDelta(t, 0.75, settings.Generate.Ratios.Legitimate, 1e-9)
	assert.Equal(t, "0.4,0.35,0.25", settings.Generate.TierMix)
	assert.Equal(t, "csv", settings.Generate.Format)
	assert.Equal(t, "info", settings.LogLevel)
	assert.Equal(t, DefaultDatabasePath(), settings.DatabasePath)
}

func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		set    map[string]any
		name   string
		errMsg string
	}{
		{name: "zero size", set: map[string]any{"generate.size": 0}, errMsg: "Generate.Size must be greater than 0"},
		{name: "negative ratio", set: map[string]any{"generate.ratios.fake_account": -0.1}, errMsg: "Generate.Ratios.FakeAccount must be between 0 and 1"},
		{name: "unknown difficulty", set: map[string]any{"generate.difficulty": "brutal"}, errMsg: "Generate.Difficulty must be one of: easy medium hard"},
		{name: "unknown format", set: map[string]any{"generate.format": "xlsx"}, errMsg: "Generate.Format must be one of"},
		{name: "bad date", set: map[string]any{"generate.start_date": "01/02/2024"}, errMsg: "Generate.StartDate must be a date"},
		{name: "bad tier mix", set: map[string]any{"generate.tier_mix": "0.5,0.5"}, errMsg: "Generate.TierMix must be three comma-separated weights"},
		{name: "bad log level", set: map[string]any{"logging.level": "verbose"}, errMsg: "LogLevel must be one of"},
		{name: "empty database path", set: map[string]any{"database.path": ""}, errMsg: "DatabasePath is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := newViper()
			for key, val := range tt.set {
				v.Set(key, val)
			}

			_, err := Load(v)
			require.Error(t, err)
			assert.ErrorIs(t, err, common.ErrInvalidConfig)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestGenerationSettings_ToEngineConfig(t *testing.T) {
	now := time.Date(2024, 6, 30, 12, 30, 0, 0, time.UTC)

	t.Run("defaults", func(t *testing.T) {
		settings, err := Load(newViper())
		require.NoError(t, err)

		cfg, err := settings.Generate.ToEngineConfig(now)
		require.NoError(t, err)
		assert.Equal(t, engine.DefaultConfig(now), cfg)
	})

	t.Run("explicit window and tier", func(t *testing.T) {
		v := newViper()
		v.Set("generate.start_date", "2024-01-01")
		v.Set("generate.end_date", "2024-03-01")
		v.Set("generate.difficulty", "HARD")
		v.Set("generate.tier_mix", "0.2, 0.3, 0.5")
		v.Set("generate.size", 100)
		settings, err := Load(v)
		require.NoError(t, err)

		cfg, err := settings.Generate.ToEngineConfig(now)
		require.NoError(t, err)
		assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), cfg.Start)
		assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), cfg.End)
		assert.Equal(t, model.TierHard, cfg.FixedTier)
		assert.Equal(t, engine.TierMix{Easy: 0.2, Medium: 0.3, Hard: 0.5}, cfg.TierMix)
		assert.Equal(t, 100, cfg.Size)
	})

	t.Run("end date only", func(t *testing.T) {
		g := GenerationSettings{Size: 10, EndDate: "2024-04-01", Ratios: RatioSettings{Legitimate: 1}}
		cfg, err := g.ToEngineConfig(now)
		require.NoError(t, err)
		assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), cfg.Start)
	})

	t.Run("ratios over tolerance", func(t *testing.T) {
		g := GenerationSettings{Size: 100, Ratios: RatioSettings{Legitimate: 0.7, FakeAccount: 0.15, AccountTakeover: 0.1, PaymentFraud: 0.1}}
		_, err := g.ToEngineConfig(now)
		assert.ErrorIs(t, err, common.ErrInvalidConfig)
	})

	t.Run("reversed window", func(t *testing.T) {
		g := GenerationSettings{Size: 10, StartDate: "2024-05-01", EndDate: "2024-04-01", Ratios: RatioSettings{Legitimate: 1}}
		_, err := g.ToEngineConfig(now)
		assert.ErrorIs(t, err, common.ErrDegenerateWindow)
	})
}

func TestParseTierMix(t *testing.T) {
	mix, err := ParseTierMix("0.4,0.35,0.25")
	require.NoError(t, err)
	assert.Equal(t, engine.DefaultTierMix(), mix)
	assert.Equal(t, "0.4,0.35,0.25", FormatTierMix(mix))

	_, err = ParseTierMix("a,b,c")
	assert.ErrorIs(t, err, common.ErrInvalidConfig)
	_, err = ParseTierMix("1")
	assert.ErrorIs(t, err, common.ErrInvalidConfig)
}

func TestGenerationSettings_OutputPath(t *testing.T) {
	assert.Equal(t, "abuse_dataset_500.jsonl", GenerationSettings{Size: 500}.OutputPath(".jsonl"))
	assert.Equal(t, "out.csv", GenerationSettings{Size: 500, Output: "out.csv"}.OutputPath(".jsonl"))
}

func TestLoadSheetsConfig(t *testing.T) {
	t.Setenv("GOOGLE_SHEETS_CLIENT_ID", "")
	t.Setenv("GOOGLE_SHEETS_SERVICE_ACCOUNT_PATH", "")

	t.Run("from viper", func(t *testing.T) {
		v := viper.New()
		v.Set("sheets.service_account_path", "~/keys/sa.json")
		v.Set("sheets.spreadsheet_id", "abc")
		v.Set("sheets.batch_size", 50)

		config, err := LoadSheetsConfig(v)
		require.NoError(t, err)
		assert.Equal(t, ExpandPath("~/keys/sa.json"), config.ServiceAccountPath)
		assert.Equal(t, "abc", config.SpreadsheetID)
		assert.Equal(t, 50, config.BatchSize)
	})

	t.Run("env fallback", func(t *testing.T) {
		t.Setenv("GOOGLE_SHEETS_CLIENT_ID", "client")
		t.Setenv("GOOGLE_SHEETS_CLIENT_SECRET", "secret")
		t.Setenv("GOOGLE_SHEETS_REFRESH_TOKEN", "refresh")

		config, err := LoadSheetsConfig(viper.New())
		require.NoError(t, err)
		assert.Equal(t, "client", config.ClientID)
		assert.Equal(t, "Abuse Dataset", config.SpreadsheetName)
	})

	t.Run("no credentials", func(t *testing.T) {
		_, err := LoadSheetsConfig(viper.New())
		assert.ErrorIs(t, err, common.ErrInvalidConfig)
	})
}
