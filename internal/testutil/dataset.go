package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/Veraticus/abuse-forge/internal/engine"
	"github.com/Veraticus/abuse-forge/internal/model"
)

// WindowEnd is the fixed end of the timestamp window used by built datasets, so test
// output never depends on the wall clock.
var WindowEnd = time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)

// DatasetBuilder provides a fluent interface for composing test datasets.
//
// Example:
//
//	ds := testutil.NewDatasetBuilder(t).
//		WithSize(500).
//		WithSuspicious(0.05).
//		WithTier(model.TierHard).
//		Build()
type DatasetBuilder struct {
	t   *testing.T
	cfg engine.Config
}

// NewDatasetBuilder starts from a 1000-record dataset with the default ratios over the
// 90 days ending at WindowEnd.
func NewDatasetBuilder(t *testing.T) *DatasetBuilder {
	t.Helper()
	cfg := engine.DefaultConfig(WindowEnd)
	cfg.Size = 1000
	return &DatasetBuilder{t: t, cfg: cfg}
}

// WithSize sets the number of records.
func (b *DatasetBuilder) WithSize(n int) *DatasetBuilder {
	b.cfg.Size = n
	return b
}

// WithSeed sets the seed.
func (b *DatasetBuilder) WithSeed(seed int64) *DatasetBuilder {
	b.cfg.Seed = seed
	return b
}

// WithRatios replaces the archetype ratios.
func (b *DatasetBuilder) WithRatios(r engine.Ratios) *DatasetBuilder {
	b.cfg.Ratios = r
	return b
}

// WithSuspicious carves share out of the legitimate ratio for suspicious-but-legitimate
// records.
func (b *DatasetBuilder) WithSuspicious(share float64) *DatasetBuilder {
	b.cfg.Ratios.Legitimate -= share
	b.cfg.Ratios.SuspiciousButLegitimate += share
	return b
}

// WithTier fixes the difficulty tier of every fraud record.
func (b *DatasetBuilder) WithTier(tier model.DifficultyTier) *DatasetBuilder {
	b.cfg.FixedTier = tier
	return b
}

// Config returns the configuration the builder would compose.
func (b *DatasetBuilder) Config() engine.Config {
	return b.cfg
}

// Build composes the dataset or fails the test.
func (b *DatasetBuilder) Build() *engine.Dataset {
	b.t.Helper()

	ds, err := engine.Compose(context.Background(), b.cfg)
	if err != nil {
		b.t.Fatalf("failed to compose test dataset: %v", err)
	}
	return ds
}

// Records composes the dataset and returns only its records.
func (b *DatasetBuilder) Records() []model.TransactionRecord {
	b.t.Helper()
	return b.Build().Records
}
