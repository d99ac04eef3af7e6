package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/Veraticus/abuse-forge/internal/model"
)

// ErrMalformedFile is returned when a dataset file cannot be decoded.
var ErrMalformedFile = errors.New("malformed dataset file")

// CSVWriter writes records with a header row in model.Columns order.
type CSVWriter struct {
	w             *csv.Writer
	keep          []int
	headerWritten bool
}

// NewCSVWriter creates a writer on w.
func NewCSVWriter(w io.Writer, opts ...Option) *CSVWriter {
	c := &CSVWriter{w: csv.NewWriter(w)}
	if newOptions(opts).stripLabels {
		for i, column := range model.Columns {
			if !slices.Contains(model.LabelColumns, column) {
				c.keep = append(c.keep, i)
			}
		}
	}
	return c
}

// selectColumns narrows a full row to the kept columns.
func (c *CSVWriter) selectColumns(row []string) []string {
	if c.keep == nil {
		return row
	}
	out := make([]string, len(c.keep))
	for i, k := range c.keep {
		out[i] = row[k]
	}
	return out
}

func (c *CSVWriter) writeHeader() error {
	if c.headerWritten {
		return nil
	}
	if err := c.w.Write(c.selectColumns(model.Columns)); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	c.headerWritten = true
	return nil
}

// Write appends one record, emitting the header first if needed.
func (c *CSVWriter) Write(rec *model.TransactionRecord) error {
	if err := c.writeHeader(); err != nil {
		return err
	}
	if err := c.w.Write(c.selectColumns(rec.Values())); err != nil {
		return fmt.Errorf("failed to write record %s: %w", rec.TransactionID, err)
	}
	return nil
}

// WriteAll writes the header and every record, then flushes. An empty slice still
// produces a header.
func (c *CSVWriter) WriteAll(records []model.TransactionRecord) error {
	if err := c.writeHeader(); err != nil {
		return err
	}
	for i := range records {
		if err := c.Write(&records[i]); err != nil {
			return err
		}
	}
	return c.Flush()
}

// Flush writes any buffered data.
func (c *CSVWriter) Flush() error {
	c.w.Flush()
	return c.w.Error()
}

// ReadCSV parses a CSV dataset. Columns are matched by header name, so column order and
// extra columns do not matter; missing columns and invalid values are errors.
func ReadCSV(r io.Reader) ([]model.TransactionRecord, error) {
	reader := csv.NewReader(r)
	reader.ReuseRecord = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: missing header", ErrMalformedFile)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedFile, err)
	}
	header = append([]string(nil), header...)

	var records []model.TransactionRecord
	line := 1
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %w", ErrMalformedFile, line, err)
		}

		fields := make(map[string]string, len(header))
		for i, name := range header {
			fields[name] = row[i]
		}
		rec, err := model.ParseRecord(fields)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		records = append(records, rec)
	}
	return records, nil
}
