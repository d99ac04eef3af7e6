package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/Veraticus/abuse-forge/internal/common"
	"github.com/Veraticus/abuse-forge/internal/engine"
	"github.com/Veraticus/abuse-forge/internal/model"
)

// DateLayout is the accepted layout for start and end dates on the command line.
const DateLayout = "2006-01-02"

// RatioSettings are the per-archetype shares read from generate.ratios.*.
type RatioSettings struct {
	Legitimate              float64 `validate:"gte=0,lte=1"`
	SuspiciousButLegitimate float64 `validate:"gte=0,lte=1"`
	FakeAccount             float64 `validate:"gte=0,lte=1"`
	AccountTakeover         float64 `validate:"gte=0,lte=1"`
	PaymentFraud            float64 `validate:"gte=0,lte=1"`
}

// GenerationSettings mirrors the generate.* keys.
type GenerationSettings struct {
	StartDate  string `validate:"omitempty,date"`
	EndDate    string `validate:"omitempty,date"`
	TierMix    string `validate:"omitempty,tiermix"`
	Difficulty string `validate:"omitempty,oneof=easy medium hard"`
	Output     string
	Format     string `validate:"omitempty,oneof=csv jsonl json ndjson"`
	Ratios     RatioSettings
	Size       int `validate:"gt=0"`
	Seed       int64
	Parallel   bool
	NoValidate bool
}

// Settings is the complete application configuration.
type Settings struct {
	DatabasePath string `validate:"required"`
	LogLevel     string `validate:"oneof=debug info warn error"`
	LogFormat    string `validate:"oneof=console json"`
	Generate     GenerationSettings
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	ratios := engine.DefaultRatios()
	mix := engine.DefaultTierMix()

	v.SetDefault("generate.size", 50000)
	v.SetDefault("generate.seed", 42)
	v.SetDefault("generate.ratios.legitimate", ratios.Legitimate)
	v.SetDefault("generate.ratios.suspicious_but_legitimate", ratios.SuspiciousButLegitimate)
	v.SetDefault("generate.ratios.fake_account", ratios.FakeAccount)
	v.SetDefault("generate.ratios.account_takeover", ratios.AccountTakeover)
	v.SetDefault("generate.ratios.payment_fraud", ratios.PaymentFraud)
	v.SetDefault("generate.tier_mix", FormatTierMix(mix))
	v.SetDefault("generate.format", "csv")
	v.SetDefault("database.path", DefaultDatabasePath())
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
}

// Load reads and validates the settings held by v.
func Load(v *viper.Viper) (*Settings, error) {
	settings := &Settings{
		DatabasePath: ExpandPath(v.GetString("database.path")),
		LogLevel:     strings.ToLower(v.GetString("logging.level")),
		LogFormat:    strings.ToLower(v.GetString("logging.format")),
		Generate: GenerationSettings{
			StartDate:  v.GetString("generate.start_date"),
			EndDate:    v.GetString("generate.end_date"),
			TierMix:    v.GetString("generate.tier_mix"),
			Difficulty: strings.ToLower(v.GetString("generate.difficulty")),
			Output:     ExpandPath(v.GetString("generate.output")),
			Format:     strings.ToLower(v.GetString("generate.format")),
			Size:       v.GetInt("generate.size"),
			Seed:       v.GetInt64("generate.seed"),
			Parallel:   v.GetBool("generate.parallel"),
			NoValidate: v.GetBool("generate.no_validate"),
			Ratios: RatioSettings{
				Legitimate:              v.GetFloat64("generate.ratios.legitimate"),
				SuspiciousButLegitimate: v.GetFloat64("generate.ratios.suspicious_but_legitimate"),
				FakeAccount:             v.GetFloat64("generate.ratios.fake_account"),
				AccountTakeover:         v.GetFloat64("generate.ratios.account_takeover"),
				PaymentFraud:            v.GetFloat64("generate.ratios.payment_fraud"),
			},
		},
	}

	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return settings, nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("date", validateDate)
	_ = v.RegisterValidation("tiermix", validateTierMix)
	return v
}

func validateDate(fl validator.FieldLevel) bool {
	_, err := time.Parse(DateLayout, fl.Field().String())
	return err == nil
}

func validateTierMix(fl validator.FieldLevel) bool {
	_, err := ParseTierMix(fl.Field().String())
	return err == nil
}

// Validate checks the struct tags and reports the first failures as ErrInvalidConfig.
func (s *Settings) Validate() error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return fmt.Errorf("%w: %w", common.ErrInvalidConfig, err)
	}

	msgs := make([]string, 0, len(validationErrors))
	for _, fe := range validationErrors {
		msgs = append(msgs, describeFieldError(fe))
	}
	return fmt.Errorf("%w: %s", common.ErrInvalidConfig, strings.Join(msgs, "; "))
}

func describeFieldError(fe validator.FieldError) string {
	field := fe.Namespace()
	if i := strings.Index(field, "."); i >= 0 {
		field = field[i+1:]
	}

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "gte", "lte":
		return fmt.Sprintf("%s must be between 0 and 1, got %v", field, fe.Value())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	case "date":
		return fmt.Sprintf("%s must be a date in YYYY-MM-DD form, got %q", field, fe.Value())
	case "tiermix":
		return fmt.Sprintf("%s must be three comma-separated weights, got %q", field, fe.Value())
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}

// ParseTierMix parses "easy,medium,hard" weights such as "0.4,0.35,0.25".
func ParseTierMix(s string) (engine.TierMix, error) {
	parts := strings.Split(s, ",")
	if len(parts) != len(model.Tiers) {
		return engine.TierMix{}, fmt.Errorf("%w: tier mix needs %d weights, got %d", common.ErrInvalidConfig, len(model.Tiers), len(parts))
	}

	weights := make([]float64, len(parts))
	for i, part := range parts {
		w, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return engine.TierMix{}, fmt.Errorf("%w: tier weight %q is not a number", common.ErrInvalidConfig, part)
		}
		weights[i] = w
	}
	return engine.TierMix{Easy: weights[0], Medium: weights[1], Hard: weights[2]}, nil
}

// FormatTierMix renders m in the form ParseTierMix accepts.
func FormatTierMix(m engine.TierMix) string {
	parts := make([]string, 0, len(model.Tiers))
	for _, w := range m.Weights() {
		parts = append(parts, strconv.FormatFloat(w, 'f', -1, 64))
	}
	return strings.Join(parts, ",")
}

// ToEngineConfig converts the settings into a composer configuration. A missing start
// date falls 90 days before the end; a missing end date is now. Dates are midnight UTC.
func (g GenerationSettings) ToEngineConfig(now time.Time) (engine.Config, error) {
	cfg := engine.DefaultConfig(now)
	cfg.Size = g.Size
	cfg.Seed = g.Seed
	cfg.Parallel = g.Parallel
	cfg.FixedTier = model.DifficultyTier(g.Difficulty)
	cfg.Ratios = engine.Ratios{
		Legitimate:              g.Ratios.Legitimate,
		SuspiciousButLegitimate: g.Ratios.SuspiciousButLegitimate,
		FakeAccount:             g.Ratios.FakeAccount,
		AccountTakeover:         g.Ratios.AccountTakeover,
		PaymentFraud:            g.Ratios.PaymentFraud,
	}

	if g.TierMix != "" {
		mix, err := ParseTierMix(g.TierMix)
		if err != nil {
			return engine.Config{}, err
		}
		cfg.TierMix = mix
	}

	if g.EndDate != "" {
		end, err := time.ParseInLocation(DateLayout, g.EndDate, time.UTC)
		if err != nil {
			return engine.Config{}, fmt.Errorf("%w: end date: %w", common.ErrInvalidConfig, err)
		}
		cfg.End = end
		cfg.Start = end.AddDate(0, 0, -90)
	}
	if g.StartDate != "" {
		start, err := time.ParseInLocation(DateLayout, g.StartDate, time.UTC)
		if err != nil {
			return engine.Config{}, fmt.Errorf("%w: start date: %w", common.ErrInvalidConfig, err)
		}
		cfg.Start = start
	}

	if err := cfg.Validate(); err != nil {
		return engine.Config{}, err
	}
	return cfg, nil
}

// OutputPath returns the configured output file, or abuse_dataset_<size> with the
// extension of format.
func (g GenerationSettings) OutputPath(extension string) string {
	if g.Output != "" {
		return g.Output
	}
	return fmt.Sprintf("abuse_dataset_%d%s", g.Size, extension)
}
