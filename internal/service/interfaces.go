// Package service defines the interfaces between the composer and the places a dataset
// is persisted or published.
package service

import (
	"context"
	"time"

	"github.com/Veraticus/abuse-forge/internal/model"
)

// RunSummary describes one stored dataset.
type RunSummary struct {
	CreatedAt time.Time
	Start     time.Time
	End       time.Time
	Counts    map[model.AbuseType]int
	ID        string
	// Config is the JSON encoding of the generation settings.
	Config      string
	RecordCount int
	Seed        int64
}

// DatasetStore persists composed datasets so they can be revalidated and browsed later.
type DatasetStore interface {
	SaveRun(ctx context.Context, run RunSummary, records []model.TransactionRecord) error
	GetRun(ctx context.Context, id string) (*RunSummary, error)
	ListRuns(ctx context.Context) ([]RunSummary, error)
	LoadRecords(ctx context.Context, runID string) ([]model.TransactionRecord, error)
	DeleteRun(ctx context.Context, id string) error
	Close() error
}

// DatasetWriter publishes a dataset to an external destination.
type DatasetWriter interface {
	WriteDataset(ctx context.Context, run RunSummary, records []model.TransactionRecord) error
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
