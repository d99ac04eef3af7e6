package cli

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/abuse-forge/internal/model"
)

// syncBuffer provides thread-safe access to a bytes.Buffer.
type syncBuffer struct {
	buf bytes.Buffer
	mu  sync.Mutex
}

func (s *syncBuffer) Write(p []byte) (n int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.Write(p)
}

func (s *syncBuffer) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.String()
}

func TestNewInterruptHandler(t *testing.T) {
	handler := NewInterruptHandler(nil, "")
	assert.NotNil(t, handler.writer)
	assert.Equal(t, "Command", handler.action)
	assert.False(t, handler.WasInterrupted())
}

func TestInterruptHandler_Interrupt(t *testing.T) {
	output := &syncBuffer{}
	handler := NewInterruptHandler(output, "Generation")
	ctx := handler.HandleInterrupts(context.Background())
	defer handler.Stop()

	select {
	case <-ctx.Done():
		t.Fatal("context should not be canceled initially")
	default:
	}

	handler.interrupt()
	handler.interrupt()

	<-ctx.Done()
	assert.True(t, handler.WasInterrupted())
	assert.Equal(t, 1, strings.Count(output.String(), "Generation interrupted!"),
		"interrupt message should only be shown once")
	assert.Contains(t, output.String(), "No output was written.")
}

func TestInterruptHandler_Stop(t *testing.T) {
	handler := NewInterruptHandler(&syncBuffer{}, "Generation")
	ctx := handler.HandleInterrupts(context.Background())

	handler.Stop()
	handler.Stop()

	<-ctx.Done()
	assert.False(t, handler.WasInterrupted())
}

func TestProgress(t *testing.T) {
	var out syncBuffer
	p := NewProgress(&out, 100)

	var wg sync.WaitGroup
	for _, a := range []model.AbuseType{model.AbuseLegitimate, model.AbuseFakeAccount} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for done := 10; done <= 50; done += 10 {
				p.Update(a, done, 50)
			}
		}()
	}
	wg.Wait()

	// Stale or repeated counts are ignored.
	p.Update(model.AbuseLegitimate, 20, 50)
	p.Update(model.AbuseLegitimate, 50, 50)

	assert.Equal(t, 100, p.Total())
	p.Finish()
	assert.Contains(t, out.String(), "Generating")
}

func TestFormatHelpers(t *testing.T) {
	assert.Contains(t, FormatSuccess("saved"), "saved")
	assert.Contains(t, FormatError("failed"), ErrorIcon)
	assert.Contains(t, FormatTitle("Difficulty Tiers"), "Difficulty Tiers")

	line := FormatKeyValue("Run ID", 10, "abc")
	require.Contains(t, line, "Run ID:")
	assert.True(t, strings.HasSuffix(line, " abc"))

	box := RenderBox("Dataset", "100 records")
	assert.Contains(t, box, "Dataset")
	assert.Contains(t, box, "100 records")
}
