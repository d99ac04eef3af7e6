// Package export serializes datasets to CSV and JSON Lines and reads them back.
package export

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/Veraticus/abuse-forge/internal/common"
	"github.com/Veraticus/abuse-forge/internal/model"
)

// Format is a dataset file encoding.
type Format string

// Supported formats.
const (
	FormatCSV   Format = "csv"
	FormatJSONL Format = "jsonl"
)

// ErrUnknownFormat is returned for formats other than csv and jsonl.
var ErrUnknownFormat = errors.New("unknown dataset format")

// ParseFormat validates a format name. "json" and "ndjson" are accepted as JSON Lines.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "csv":
		return FormatCSV, nil
	case "jsonl", "json", "ndjson":
		return FormatJSONL, nil
	}
	return "", fmt.Errorf("%w: %w: %q", common.ErrInvalidConfig, ErrUnknownFormat, s)
}

// FormatFromPath picks the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return "", fmt.Errorf("%w: %w: %s has no extension", common.ErrInvalidConfig, ErrUnknownFormat, path)
	}
	return ParseFormat(ext)
}

// Extension returns the file extension, including the dot, for f.
func (f Format) Extension() string {
	return "." + string(f)
}

// Option adjusts how records are written.
type Option func(*options)

type options struct {
	stripLabels bool
}

// WithoutLabels drops model.LabelColumns, leaving the feature view a scoring service
// receives. Files written this way cannot be read back as datasets.
func WithoutLabels() Option {
	return func(o *options) { o.stripLabels = true }
}

func newOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Write encodes records to w in the given format.
func Write(w io.Writer, format Format, records []model.TransactionRecord, opts ...Option) error {
	switch format {
	case FormatCSV:
		return NewCSVWriter(w, opts...).WriteAll(records)
	case FormatJSONL:
		return NewJSONLWriter(w, opts...).WriteAll(records)
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}

// Read decodes every record from r in the given format.
func Read(r io.Reader, format Format) ([]model.TransactionRecord, error) {
	switch format {
	case FormatCSV:
		return ReadCSV(r)
	case FormatJSONL:
		return ReadJSONL(r)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}

const datasetFileMode = 0644

// WriteFile writes records to path. The data lands in a temporary file in the same
// directory first and is renamed into place, so a failed write never leaves a partial
// dataset behind.
func WriteFile(path string, format Format, records []model.TransactionRecord, opts ...Option) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	tmpPath := filepath.Join(dir, fmt.Sprintf(".%s.%s.tmp", filepath.Base(path), uuid.New().String()))
	f, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	cleanup := func() { _ = os.Remove(tmpPath) }

	// Temp files are created private; the finished dataset is world-readable like os.Create.
	if err := f.Chmod(datasetFileMode); err != nil {
		_ = f.Close()
		cleanup()
		return fmt.Errorf("failed to set permissions on %s: %w", path, err)
	}

	buf := bufio.NewWriter(f)
	if err := Write(buf, format, records, opts...); err != nil {
		_ = f.Close()
		cleanup()
		return err
	}
	if err := buf.Flush(); err != nil {
		_ = f.Close()
		cleanup()
		return fmt.Errorf("failed to flush %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		cleanup()
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		cleanup()
		return fmt.Errorf("failed to move dataset into place: %w", err)
	}

	common.LogDebug("Wrote dataset file", common.Fields{
		"path":    path,
		"format":  string(format),
		"records": len(records),
	})
	return nil
}

// ReadFile loads a dataset, choosing the format from the file extension.
func ReadFile(path string) ([]model.TransactionRecord, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path) //nolint:gosec // path comes from the command line
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset: %w", err)
	}
	defer func() { _ = f.Close() }()

	records, err := Read(bufio.NewReader(f), format)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return records, nil
}
