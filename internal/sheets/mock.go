package sheets

import (
	"context"
	"sync"

	"github.com/Veraticus/abuse-forge/internal/model"
	"github.com/Veraticus/abuse-forge/internal/service"
)

// MockWriter is a mock implementation of service.DatasetWriter for testing.
type MockWriter struct {
	WriteFunc  func(ctx context.Context, run service.RunSummary, records []model.TransactionRecord) error
	WriteCalls []WriteCall
	mu         sync.Mutex
}

// WriteCall represents a single call to WriteDataset.
type WriteCall struct {
	Error   error
	Run     service.RunSummary
	Records int
}

// NewMockWriter creates a new mock writer.
func NewMockWriter() *MockWriter {
	return &MockWriter{
		WriteCalls: make([]WriteCall, 0),
	}
}

// WriteDataset implements the service.DatasetWriter interface.
func (m *MockWriter) WriteDataset(ctx context.Context, run service.RunSummary, records []model.TransactionRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var err error
	if m.WriteFunc != nil {
		err = m.WriteFunc(ctx, run, records)
	}

	m.WriteCalls = append(m.WriteCalls, WriteCall{
		Run:     run,
		Records: len(records),
		Error:   err,
	})

	return err
}

// Reset clears all recorded calls.
func (m *MockWriter) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.WriteCalls = make([]WriteCall, 0)
}

// GetWriteCalls returns a copy of all write calls.
func (m *MockWriter) GetWriteCalls() []WriteCall {
	m.mu.Lock()
	defer m.mu.Unlock()

	calls := make([]WriteCall, len(m.WriteCalls))
	copy(calls, m.WriteCalls)
	return calls
}

// AssertWriteCalled verifies that WriteDataset was called the expected number of times.
func (m *MockWriter) AssertWriteCalled(t interface{ Fatalf(string, ...any) }, expectedCalls int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.WriteCalls) != expectedCalls {
		t.Fatalf("expected WriteDataset to be called %d times, but was called %d times", expectedCalls, len(m.WriteCalls))
	}
}

// SetWriteError configures the mock to return err from every WriteDataset call.
func (m *MockWriter) SetWriteError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.WriteFunc = func(context.Context, service.RunSummary, []model.TransactionRecord) error {
		return err
	}
}

var _ service.DatasetWriter = (*MockWriter)(nil)
