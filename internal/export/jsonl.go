package export

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	"github.com/Veraticus/abuse-forge/internal/model"
)

// maxLineBytes bounds a single JSON Lines record.
const maxLineBytes = 1 << 20

// JSONLWriter writes one JSON object per line.
type JSONLWriter struct {
	enc         *json.Encoder
	stripLabels bool
}

// NewJSONLWriter creates a writer on w.
func NewJSONLWriter(w io.Writer, opts ...Option) *JSONLWriter {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return &JSONLWriter{enc: enc, stripLabels: newOptions(opts).stripLabels}
}

// Write appends one record.
func (j *JSONLWriter) Write(rec *model.TransactionRecord) error {
	var v any = rec
	if j.stripLabels {
		features, err := withoutLabels(rec)
		if err != nil {
			return fmt.Errorf("failed to encode record %s: %w", rec.TransactionID, err)
		}
		v = features
	}
	if err := j.enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode record %s: %w", rec.TransactionID, err)
	}
	return nil
}

// withoutLabels re-encodes rec as an object without the label fields. Keys come out
// sorted, so output stays deterministic.
func withoutLabels(rec *model.TransactionRecord) (map[string]json.RawMessage, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return nil, err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, err
	}
	for _, column := range model.LabelColumns {
		delete(fields, column)
	}
	return fields, nil
}

// WriteAll writes every record.
func (j *JSONLWriter) WriteAll(records []model.TransactionRecord) error {
	for i := range records {
		if err := j.Write(&records[i]); err != nil {
			return err
		}
	}
	return nil
}

// ReadJSONL parses a JSON Lines dataset. Blank lines are skipped.
func ReadJSONL(r io.Reader) ([]model.TransactionRecord, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	var records []model.TransactionRecord
	line := 0
	for scanner.Scan() {
		line++
		data := scanner.Bytes()
		if len(data) == 0 {
			continue
		}
		var rec model.TransactionRecord
		if err := json.Unmarshal(data, &rec); err != nil {
			return nil, fmt.Errorf("%w: line %d: %w", ErrMalformedFile, line, err)
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedFile, err)
	}
	return records, nil
}
