// Package testutil provides shared fixtures for tests that need composed datasets or a
// migrated database.
package testutil

import (
	"context"
	"testing"

	"github.com/Veraticus/abuse-forge/internal/engine"
	"github.com/Veraticus/abuse-forge/internal/service"
	"github.com/Veraticus/abuse-forge/internal/storage"
)

// TestDB wraps an in-memory store with test helpers.
type TestDB struct {
	Storage *storage.SQLiteStorage
	t       *testing.T
}

// SetupTestDB creates a new in-memory test database. It automatically handles
// migrations and cleanup.
//
// Example:
//
//	db := testutil.SetupTestDB(t)
//	run := db.SaveDataset(testutil.NewDatasetBuilder(t).WithSize(100).Build())
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	store, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := store.Migrate(context.Background()); err != nil {
		_ = store.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() {
		_ = store.Close()
	})

	return &TestDB{
		Storage: store,
		t:       t,
	}
}

// SaveDataset stores ds and returns the summary it was saved under.
func (db *TestDB) SaveDataset(ds *engine.Dataset) service.RunSummary {
	db.t.Helper()

	run, err := ds.Summary()
	if err != nil {
		db.t.Fatalf("failed to summarize dataset: %v", err)
	}
	if err := db.Storage.SaveRun(context.Background(), run, ds.Records); err != nil {
		db.t.Fatalf("failed to save dataset %s: %v", run.ID, err)
	}
	return run
}
