// Package storage persists composed datasets in SQLite.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/abuse-forge/internal/model"
	"github.com/Veraticus/abuse-forge/internal/service"
)

// Validation errors.
var (
	ErrNilContext   = errors.New("context cannot be nil")
	ErrEmptyString  = errors.New("string parameter cannot be empty")
	ErrNilParameter = errors.New("parameter cannot be nil")
	ErrEmptySlice   = errors.New("slice cannot be empty")
	ErrInvalidRun   = errors.New("invalid dataset run")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateRun checks the summary fields that are stored as NOT NULL columns.
func validateRun(run *service.RunSummary) error {
	if err := validateString(run.ID, "run ID"); err != nil {
		return err
	}
	if run.CreatedAt.IsZero() {
		return fmt.Errorf("%w: created_at is required", ErrInvalidRun)
	}
	if !run.End.After(run.Start) {
		return fmt.Errorf("%w: window end must be after start", ErrInvalidRun)
	}
	return nil
}

// validateRecords ensures there is something to store and every record carries its labels.
func validateRecords(records []model.TransactionRecord) error {
	if records == nil {
		return fmt.Errorf("%w: records", ErrNilParameter)
	}
	if len(records) == 0 {
		return fmt.Errorf("%w: records", ErrEmptySlice)
	}
	for i := range records {
		if err := validateString(records[i].TransactionID, "transaction_id"); err != nil {
			return fmt.Errorf("record at index %d: %w", i, err)
		}
		if !records[i].AbuseType.Valid() {
			return fmt.Errorf("record at index %d: %w: abuse_type %q", i, model.ErrInvalidEnum, records[i].AbuseType)
		}
	}
	return nil
}
