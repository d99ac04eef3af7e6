package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/Veraticus/abuse-forge/internal/config"
	"github.com/Veraticus/abuse-forge/internal/export"
	"github.com/Veraticus/abuse-forge/internal/model"
	"github.com/Veraticus/abuse-forge/internal/storage"
)

var envKeyReplacer = strings.NewReplacer(".", "_", "-", "_")

// initStorage opens the run database and brings its schema up to date.
func initStorage(ctx context.Context) (*storage.SQLiteStorage, error) {
	dbPath := config.ExpandPath(viper.GetString("database.path"))
	if dbPath == "" {
		dbPath = config.DefaultDatabasePath()
	}

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// loadRecords reads a dataset from a file, or from a stored run when runID is set.
// The returned source names where the records came from.
func loadRecords(ctx context.Context, args []string, runID string) (string, []model.TransactionRecord, error) {
	switch {
	case runID != "" && len(args) > 0:
		return "", nil, fmt.Errorf("pass either a file or --run, not both")
	case runID != "":
		store, err := initStorage(ctx)
		if err != nil {
			return "", nil, err
		}
		defer func() { _ = store.Close() }()

		records, err := store.LoadRecords(ctx, runID)
		if err != nil {
			return "", nil, fmt.Errorf("failed to load run %s: %w", runID, err)
		}
		return "run " + runID, records, nil
	case len(args) == 1:
		path := config.ExpandPath(args[0])
		records, err := export.ReadFile(path)
		if err != nil {
			return "", nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		return path, records, nil
	default:
		return "", nil, fmt.Errorf("a dataset file or --run is required")
	}
}
