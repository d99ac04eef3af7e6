package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// ExpectedSchemaVersion is the latest schema version that the application expects.
// If the database cannot be migrated to this version, it's a fatal error.
const ExpectedSchemaVersion = 2

// Migration represents a database schema migration.
type Migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

func execAll(tx *sql.Tx, queries ...string) error {
	for _, query := range queries {
		if _, err := tx.Exec(query); err != nil {
			return fmt.Errorf("failed to execute query: %w", err)
		}
	}
	return nil
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Dataset runs and records",
		Up: func(tx *sql.Tx) error {
			return execAll(tx,
				`CREATE TABLE IF NOT EXISTS dataset_runs (
					id TEXT PRIMARY KEY,
					created_at TEXT NOT NULL,
					seed INTEGER NOT NULL,
					window_start TEXT NOT NULL,
					window_end TEXT NOT NULL,
					config TEXT NOT NULL,
					record_count INTEGER NOT NULL
				)`,
				`CREATE TABLE IF NOT EXISTS transaction_records (
					run_id TEXT NOT NULL REFERENCES dataset_runs(id) ON DELETE CASCADE,
					position INTEGER NOT NULL,
					transaction_id TEXT NOT NULL,
					abuse_type TEXT NOT NULL,
					difficulty_tier TEXT NOT NULL,
					is_abuse INTEGER NOT NULL,
					record TEXT NOT NULL,
					PRIMARY KEY (run_id, position)
				)`,
				`CREATE INDEX idx_records_run_type ON transaction_records(run_id, abuse_type)`,
			)
		},
	},
	{
		Version:     2,
		Description: "Index transaction IDs",
		Up: func(tx *sql.Tx) error {
			return execAll(tx,
				`CREATE INDEX idx_records_transaction_id ON transaction_records(transaction_id)`,
				`CREATE INDEX idx_runs_created_at ON dataset_runs(created_at)`,
			)
		},
	},
}

// Migrate brings the schema up to ExpectedSchemaVersion, tracking progress in
// PRAGMA user_version.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	currentVersion, err := s.schemaVersion(ctx)
	if err != nil {
		return err
	}

	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		tx, txErr := s.db.BeginTx(ctx, nil)
		if txErr != nil {
			return fmt.Errorf("failed to begin transaction: %w", txErr)
		}

		if upErr := migration.Up(tx); upErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", migration.Version, upErr)
		}

		if _, execErr := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", migration.Version)); execErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to update schema version: %w", execErr)
		}

		if commitErr := tx.Commit(); commitErr != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, commitErr)
		}

		slog.Debug("Applied migration",
			"version", migration.Version,
			"description", migration.Description)
	}

	finalVersion, err := s.schemaVersion(ctx)
	if err != nil {
		return err
	}
	if finalVersion != ExpectedSchemaVersion {
		return fmt.Errorf("database schema version mismatch: expected %d, got %d", ExpectedSchemaVersion, finalVersion)
	}

	return nil
}

func (s *SQLiteStorage) schemaVersion(ctx context.Context) (int, error) {
	var version int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to get schema version: %w", err)
	}
	return version, nil
}
