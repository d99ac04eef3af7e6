package common

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/abuse-forge/internal/service"
)

func fastRetry(attempts int) service.RetryOptions {
	return service.RetryOptions{
		MaxAttempts:  attempts,
		InitialDelay: time.Millisecond,
		MaxDelay:     2 * time.Millisecond,
		Multiplier:   2,
	}
}

func TestWithRetry(t *testing.T) {
	transient := errors.New("transient")

	tests := []struct {
		opErr        func(call int) error
		target       error
		name         string
		wantCalls    int
		wantErr      bool
		wantMaxRetry bool
	}{
		{
			name:      "succeeds first time",
			opErr:     func(int) error { return nil },
			wantCalls: 1,
		},
		{
			name: "succeeds after transient failures",
			opErr: func(call int) error {
				if call < 3 {
					return transient
				}
				return nil
			},
			wantCalls: 3,
		},
		{
			name:         "exhausts attempts",
			opErr:        func(int) error { return transient },
			wantCalls:    4,
			wantErr:      true,
			wantMaxRetry: true,
			target:       transient,
		},
		{
			name: "non retryable stops immediately",
			opErr: func(int) error {
				return &RetryableError{Err: transient, Retryable: false}
			},
			wantCalls: 1,
			wantErr:   true,
			target:    transient,
		},
		{
			name:      "invalid config is not retried",
			opErr:     func(int) error { return ErrInvalidConfig },
			wantCalls: 1,
			wantErr:   true,
			target:    ErrInvalidConfig,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := WithRetry(context.Background(), func() error {
				calls++
				return tt.opErr(calls)
			}, fastRetry(4))

			assert.Equal(t, tt.wantCalls, calls)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.target)
			if tt.wantMaxRetry {
				assert.ErrorIs(t, err, ErrMaxRetries)
			}
		})
	}
}

func TestWithRetry_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := WithRetry(ctx, func() error {
		calls++
		cancel()
		return errors.New("flaky")
	}, service.RetryOptions{MaxAttempts: 5, InitialDelay: time.Second})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(ErrRateLimit))
	assert.True(t, IsRetryable(&RetryableError{Err: errors.New("x"), Retryable: true}))
	assert.False(t, IsRetryable(&RetryableError{Err: errors.New("x"), Retryable: false}))
	assert.False(t, IsRetryable(ErrInvalidConfig))
}

func TestUserError(t *testing.T) {
	err := NewUserError("could not generate dataset", ErrDegenerateWindow)
	assert.Equal(t, "could not generate dataset: degenerate timestamp window", err.Error())
	assert.ErrorIs(t, err, ErrDegenerateWindow)

	var userErr *UserError
	require.ErrorAs(t, err, &userErr)
	assert.Equal(t, "could not generate dataset", userErr.UserMessage)

	assert.Equal(t, "plain", NewUserError("plain", nil).Error())
}

func TestSetupLogger(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	require.NoError(t, SetupLogger(&buf, "debug", "json"))
	LogDebug("composed", Fields{"records": 10})
	assert.Contains(t, buf.String(), `"records":10`)
	assert.Contains(t, buf.String(), `"level":"DEBUG"`)

	buf.Reset()
	require.NoError(t, SetupLogger(&buf, "warn", "console"))
	LogInfo("hidden", nil)
	LogError(errors.New("bad"), "shown", Fields{"stage": "export"})
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "error=bad")
	assert.Contains(t, buf.String(), "stage=export")

	assert.ErrorIs(t, SetupLogger(&buf, "verbose", "json"), ErrInvalidConfig)
	assert.ErrorIs(t, SetupLogger(&buf, "info", "xml"), ErrInvalidConfig)
}
