package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/abuse-forge/internal/common"
	"github.com/Veraticus/abuse-forge/internal/engine"
	"github.com/Veraticus/abuse-forge/internal/model"
	"github.com/Veraticus/abuse-forge/internal/service"
)

// Helper function to create test storage.
func createTestStorage(t *testing.T) *SQLiteStorage {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "nested", "test.db")

	store, err := NewSQLiteStorage(dbPath)
	require.NoError(t, err, "failed to create storage")
	t.Cleanup(func() { _ = store.Close() })

	require.NoError(t, store.Migrate(context.Background()), "failed to migrate")
	return store
}

func composeTestDataset(t *testing.T, size int, seed int64) (service.RunSummary, []model.TransactionRecord) {
	t.Helper()
	end := time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)
	cfg := engine.Config{
		Size:    size,
		Seed:    seed,
		Ratios:  engine.Ratios{Legitimate: 0.7, FakeAccount: 0.1, AccountTakeover: 0.1, PaymentFraud: 0.1},
		TierMix: engine.DefaultTierMix(),
		Start:   end.AddDate(0, 0, -30),
		End:     end,
	}
	ds, err := engine.Compose(context.Background(), cfg)
	require.NoError(t, err)
	run, err := ds.Summary()
	require.NoError(t, err)
	return run, ds.Records
}

func TestNewSQLiteStorage(t *testing.T) {
	_, err := NewSQLiteStorage("  ")
	assert.ErrorIs(t, err, ErrEmptyString)

	store, err := NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()
	assert.Equal(t, ":memory:", store.Path())
}

func TestMigrate(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	version, err := store.schemaVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, ExpectedSchemaVersion, version)

	// Running again is a no-op.
	require.NoError(t, store.Migrate(ctx))

	var indexCount int
	err = store.db.QueryRow(`
		SELECT COUNT(*) FROM sqlite_master
		WHERE type='index' AND name='idx_records_transaction_id'
	`).Scan(&indexCount)
	require.NoError(t, err)
	assert.Equal(t, 1, indexCount)

	//nolint:staticcheck // nil context is the point of the check
	assert.ErrorIs(t, store.Migrate(nil), ErrNilContext)
}

func TestSaveRun_RoundTrip(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()
	run, records := composeTestDataset(t, 200, 42)

	require.NoError(t, store.SaveRun(ctx, run, records))

	got, err := store.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, run.ID, got.ID)
	assert.Equal(t, 200, got.RecordCount)
	assert.Equal(t, int64(42), got.Seed)
	assert.Equal(t, run.Config, got.Config)
	assert.True(t, run.Start.Equal(got.Start))
	assert.True(t, run.End.Equal(got.End))
	assert.Equal(t, run.Counts, got.Counts)

	loaded, err := store.LoadRecords(ctx, run.ID)
	require.NoError(t, err)
	require.Len(t, loaded, len(records))
	for i := range records {
		assert.Equal(t, records[i].TransactionID, loaded[i].TransactionID, "order must be preserved at %d", i)
		assert.True(t, records[i].Timestamp.Equal(loaded[i].Timestamp))
		assert.Equal(t, records[i].AbuseType, loaded[i].AbuseType)
		assert.Equal(t, records[i].DifficultyTier, loaded[i].DifficultyTier)
		assert.InDelta(t, records[i].OrderAmount, loaded[i].OrderAmount, 1e-9)
	}
}

func TestSaveRun_Duplicate(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()
	run, records := composeTestDataset(t, 20, 1)

	require.NoError(t, store.SaveRun(ctx, run, records))
	err := store.SaveRun(ctx, run, records)
	assert.ErrorIs(t, err, common.ErrDuplicateEntry)

	loaded, err := store.LoadRecords(ctx, run.ID)
	require.NoError(t, err)
	assert.Len(t, loaded, 20)
}

func TestSaveRun_Validation(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()
	run, records := composeTestDataset(t, 10, 1)

	tests := []struct {
		target  error
		run     func() service.RunSummary
		records []model.TransactionRecord
		name    string
	}{
		{
			name:    "missing ID",
			run:     func() service.RunSummary { r := run; r.ID = ""; return r },
			records: records,
			target:  ErrEmptyString,
		},
		{
			name:    "missing created_at",
			run:     func() service.RunSummary { r := run; r.CreatedAt = time.Time{}; return r },
			records: records,
			target:  ErrInvalidRun,
		},
		{
			name:    "inverted window",
			run:     func() service.RunSummary { r := run; r.End = r.Start; return r },
			records: records,
			target:  ErrInvalidRun,
		},
		{
			name:   "nil records",
			run:    func() service.RunSummary { return run },
			target: ErrNilParameter,
		},
		{
			name:    "empty records",
			run:     func() service.RunSummary { return run },
			records: []model.TransactionRecord{},
			target:  ErrEmptySlice,
		},
		{
			name: "unlabeled record",
			run:  func() service.RunSummary { return run },
			records: func() []model.TransactionRecord {
				bad := append([]model.TransactionRecord(nil), records...)
				bad[3].AbuseType = "refund_abuse"
				return bad
			}(),
			target: model.ErrInvalidEnum,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := store.SaveRun(ctx, tt.run(), tt.records)
			assert.ErrorIs(t, err, tt.target)
		})
	}

	runs, err := store.ListRuns(ctx)
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestListRuns(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	older, olderRecords := composeTestDataset(t, 10, 1)
	older.CreatedAt = time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)
	newer, newerRecords := composeTestDataset(t, 15, 2)
	newer.CreatedAt = time.Date(2024, 7, 2, 0, 0, 0, 0, time.UTC)

	require.NoError(t, store.SaveRun(ctx, older, olderRecords))
	require.NoError(t, store.SaveRun(ctx, newer, newerRecords))

	runs, err := store.ListRuns(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, newer.ID, runs[0].ID)
	assert.Equal(t, 15, runs[0].RecordCount)
	assert.Equal(t, older.ID, runs[1].ID)
}

func TestDeleteRun(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()
	run, records := composeTestDataset(t, 30, 7)
	require.NoError(t, store.SaveRun(ctx, run, records))

	require.NoError(t, store.DeleteRun(ctx, run.ID))

	_, err := store.GetRun(ctx, run.ID)
	assert.ErrorIs(t, err, common.ErrNotFound)
	_, err = store.LoadRecords(ctx, run.ID)
	assert.ErrorIs(t, err, common.ErrNotFound)

	var remaining int
	require.NoError(t, store.db.QueryRow(`SELECT COUNT(*) FROM transaction_records`).Scan(&remaining))
	assert.Zero(t, remaining)

	assert.ErrorIs(t, store.DeleteRun(ctx, run.ID), common.ErrNotFound)
}

func TestLoadRecords_Corrupted(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()
	run, records := composeTestDataset(t, 10, 3)
	require.NoError(t, store.SaveRun(ctx, run, records))

	_, err := store.db.Exec(`UPDATE transaction_records SET record = '{"abuse_type":"nope"}' WHERE position = 0`)
	require.NoError(t, err)

	_, err = store.LoadRecords(ctx, run.ID)
	assert.ErrorIs(t, err, common.ErrDatabaseCorrupted)
}

func TestSQLiteStorage_ImplementsDatasetStore(_ *testing.T) {
	var _ service.DatasetStore = (*SQLiteStorage)(nil)
}
