package testutil

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/abuse-forge/internal/model"
)

func TestDatasetBuilder(t *testing.T) {
	ds := NewDatasetBuilder(t).
		WithSize(200).
		WithSeed(9).
		WithSuspicious(0.05).
		WithTier(model.TierHard).
		Build()

	require.Len(t, ds.Records, 200)
	counts := ds.Counts()
	assert.Equal(t, 10, counts[model.AbuseSuspiciousButLegitimate])
	for _, rec := range ds.Records {
		if rec.AbuseType.Tiered() {
			assert.Equal(t, model.TierHard, rec.DifficultyTier)
		}
	}
}

func TestSetupTestDB(t *testing.T) {
	db := SetupTestDB(t)
	run := db.SaveDataset(NewDatasetBuilder(t).WithSize(50).Build())

	loaded, err := db.Storage.LoadRecords(context.Background(), run.ID)
	require.NoError(t, err)
	assert.Len(t, loaded, 50)
}
