package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/Veraticus/abuse-forge/internal/common"
	"github.com/Veraticus/abuse-forge/internal/model"
	"github.com/Veraticus/abuse-forge/internal/service"
)

const timeLayout = time.RFC3339

// SaveRun stores a run summary and its records, preserving record order.
func (s *SQLiteStorage) SaveRun(ctx context.Context, run service.RunSummary, records []model.TransactionRecord) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateRun(&run); err != nil {
		return err
	}
	if err := validateRecords(records); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO dataset_runs (id, created_at, seed, window_start, window_end, config, record_count)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		run.ID,
		run.CreatedAt.UTC().Format(timeLayout),
		run.Seed,
		run.Start.UTC().Format(timeLayout),
		run.End.UTC().Format(timeLayout),
		run.Config,
		len(records),
	)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey {
			return fmt.Errorf("%w: run %s", common.ErrDuplicateEntry, run.ID)
		}
		return fmt.Errorf("failed to insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO transaction_records (
			run_id, position, transaction_id, abuse_type, difficulty_tier, is_abuse, record
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i := range records {
		rec := &records[i]
		payload, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("failed to encode record %s: %w", rec.TransactionID, err)
		}
		if _, err := stmt.ExecContext(ctx,
			run.ID, i, rec.TransactionID, string(rec.AbuseType), string(rec.DifficultyTier), rec.IsAbuse, string(payload),
		); err != nil {
			return fmt.Errorf("failed to insert record %s: %w", rec.TransactionID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run %s: %w", run.ID, err)
	}

	common.LogDebug("Saved dataset run", common.Fields{
		"run_id":  run.ID,
		"records": len(records),
	})
	return nil
}

// GetRun returns the summary for one run, including per-archetype counts.
func (s *SQLiteStorage) GetRun(ctx context.Context, id string) (*service.RunSummary, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "run ID"); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT id, created_at, seed, window_start, window_end, config, record_count
		FROM dataset_runs
		WHERE id = ?
	`, id)

	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: run %s", common.ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}

	counts, err := s.countsByArchetype(ctx, id)
	if err != nil {
		return nil, err
	}
	run.Counts = counts
	return run, nil
}

// ListRuns returns every stored run, newest first. Counts are not populated.
func (s *SQLiteStorage) ListRuns(ctx context.Context) ([]service.RunSummary, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, created_at, seed, window_start, window_end, config, record_count
		FROM dataset_runs
		ORDER BY created_at DESC, id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []service.RunSummary
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate runs: %w", err)
	}
	return runs, nil
}

// LoadRecords returns the records of a run in the order they were saved.
func (s *SQLiteStorage) LoadRecords(ctx context.Context, runID string) ([]model.TransactionRecord, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(runID, "run ID"); err != nil {
		return nil, err
	}

	var recordCount int
	err := s.db.QueryRowContext(ctx, `SELECT record_count FROM dataset_runs WHERE id = ?`, runID).Scan(&recordCount)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: run %s", common.ErrNotFound, runID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up run: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT record FROM transaction_records
		WHERE run_id = ?
		ORDER BY position
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer func() { _ = rows.Close() }()

	records := make([]model.TransactionRecord, 0, recordCount)
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		var rec model.TransactionRecord
		if err := json.Unmarshal([]byte(payload), &rec); err != nil {
			return nil, fmt.Errorf("%w: %w", common.ErrDatabaseCorrupted, err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate records: %w", err)
	}
	return records, nil
}

// DeleteRun removes a run and all of its records.
func (s *SQLiteStorage) DeleteRun(ctx context.Context, id string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "run ID"); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM transaction_records WHERE run_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete records: %w", err)
	}
	result, err := tx.ExecContext(ctx, `DELETE FROM dataset_runs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: run %s", common.ErrNotFound, id)
	}

	return tx.Commit()
}

func (s *SQLiteStorage) countsByArchetype(ctx context.Context, runID string) (map[model.AbuseType]int, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT abuse_type, COUNT(*) FROM transaction_records
		WHERE run_id = ?
		GROUP BY abuse_type
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to count records: %w", err)
	}
	defer func() { _ = rows.Close() }()

	counts := make(map[model.AbuseType]int)
	for rows.Next() {
		var abuseType string
		var n int
		if err := rows.Scan(&abuseType, &n); err != nil {
			return nil, fmt.Errorf("failed to scan count: %w", err)
		}
		counts[model.AbuseType(abuseType)] = n
	}
	return counts, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*service.RunSummary, error) {
	var (
		run                   service.RunSummary
		createdAt, start, end string
	)
	if err := row.Scan(&run.ID, &createdAt, &run.Seed, &start, &end, &run.Config, &run.RecordCount); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan run: %w", err)
	}

	var err error
	if run.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
		return nil, fmt.Errorf("%w: created_at %q", common.ErrDatabaseCorrupted, createdAt)
	}
	if run.Start, err = time.Parse(timeLayout, start); err != nil {
		return nil, fmt.Errorf("%w: window_start %q", common.ErrDatabaseCorrupted, start)
	}
	if run.End, err = time.Parse(timeLayout, end); err != nil {
		return nil, fmt.Errorf("%w: window_end %q", common.ErrDatabaseCorrupted, end)
	}
	return &run, nil
}
