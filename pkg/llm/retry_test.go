package llm

import (
	"context"
	"errors"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/openai/openai-go"
	"github.com/stretchr/testify/require"
)

func TestNewRetryHandlerDefaults(t *testing.T) {
	h := NewRetryHandler(RetryConfig{})
	require.Equal(t, defaultInitialBackoff, h.cfg.InitialBackoff)
	require.Equal(t, defaultMaxBackoff, h.cfg.MaxBackoff)
	require.Equal(t, defaultBackoffFactor, h.cfg.Multiplier)
	require.Equal(t, 0, h.cfg.MaxRetries)

	h = NewRetryHandler(RetryConfig{
		MaxRetries:     -1,
		InitialBackoff: -time.Second,
		MaxBackoff:     -time.Second,
		Multiplier:     0.5,
	})
	require.Equal(t, defaultInitialBackoff, h.cfg.InitialBackoff)
	require.Equal(t, defaultMaxBackoff, h.cfg.MaxBackoff)
	require.Equal(t, defaultBackoffFactor, h.cfg.Multiplier)
	require.Equal(t, 0, h.cfg.MaxRetries)

	h = NewRetryHandler(RetryConfig{
		MaxRetries:     5,
		InitialBackoff: 100 * time.Millisecond,
		MaxBackoff:     2 * time.Second,
		Multiplier:     2.5,
	})
	require.Equal(t, 5, h.cfg.MaxRetries)
	require.Equal(t, 2.5, h.cfg.Multiplier)
}

func TestRetryHandlerDo(t *testing.T) {
	rateLimited := &openai.Error{StatusCode: http.StatusTooManyRequests}

	t.Run("first attempt succeeds", func(t *testing.T) {
		h := NewRetryHandler(RetryConfig{MaxRetries: 3})
		calls := 0
		err := h.Do(context.Background(), func() error {
			calls++
			return nil
		})
		require.NoError(t, err)
		require.Equal(t, 1, calls)
	})

	t.Run("succeeds after transient failures", func(t *testing.T) {
		h := NewRetryHandler(RetryConfig{MaxRetries: 3, InitialBackoff: 5 * time.Millisecond})
		calls := 0
		err := h.Do(context.Background(), func() error {
			calls++
			if calls < 3 {
				return rateLimited
			}
			return nil
		})
		require.NoError(t, err)
		require.Equal(t, 3, calls)
	})

	t.Run("gives up after max retries", func(t *testing.T) {
		h := NewRetryHandler(RetryConfig{MaxRetries: 2, InitialBackoff: 5 * time.Millisecond})
		calls := 0
		err := h.Do(context.Background(), func() error {
			calls++
			return rateLimited
		})
		require.Error(t, err)
		require.Equal(t, 3, calls)
	})

	t.Run("non-retryable error returns immediately", func(t *testing.T) {
		h := NewRetryHandler(RetryConfig{MaxRetries: 3})
		calls := 0
		err := h.Do(context.Background(), func() error {
			calls++
			return &openai.Error{StatusCode: http.StatusBadRequest}
		})
		require.Error(t, err)
		require.Equal(t, 1, calls)
	})

	t.Run("cancellation stops the backoff wait", func(t *testing.T) {
		h := NewRetryHandler(RetryConfig{MaxRetries: 3, InitialBackoff: 100 * time.Millisecond})
		ctx, cancel := context.WithCancel(context.Background())
		err := h.Do(ctx, func() error {
			cancel()
			return rateLimited
		})
		require.ErrorIs(t, err, context.Canceled)
	})

	t.Run("deadline stops the backoff wait", func(t *testing.T) {
		h := NewRetryHandler(RetryConfig{MaxRetries: 5, InitialBackoff: 50 * time.Millisecond})
		ctx, cancel := context.WithTimeout(context.Background(), 80*time.Millisecond)
		defer cancel()
		err := h.Do(ctx, func() error {
			return rateLimited
		})
		require.ErrorIs(t, err, context.DeadlineExceeded)
	})
}

func TestShouldRetry(t *testing.T) {
	require.False(t, shouldRetry(nil))
	require.False(t, shouldRetry(context.Canceled))
	require.False(t, shouldRetry(context.DeadlineExceeded))
	require.False(t, shouldRetry(errors.New("generic error")))

	for code := range retryableStatuses {
		require.True(t, shouldRetry(&openai.Error{StatusCode: code}), "status %d", code)
	}
	for _, code := range []int{
		http.StatusBadRequest,
		http.StatusUnauthorized,
		http.StatusForbidden,
		http.StatusNotFound,
	} {
		require.False(t, shouldRetry(&openai.Error{StatusCode: code}), "status %d", code)
	}

	require.True(t, shouldRetry(&temporaryError{}))
	require.False(t, shouldRetry(&permanentError{}))
	require.True(t, shouldRetry(&net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}))

	wrapped := errors.Join(errors.New("wrapper"), context.Canceled)
	require.False(t, shouldRetry(wrapped))
	wrapped = errors.Join(errors.New("wrapper"), &openai.Error{StatusCode: http.StatusTooManyRequests})
	require.True(t, shouldRetry(wrapped))
}

type temporaryError struct{}

func (e *temporaryError) Error() string   { return "temporary network error" }
func (e *temporaryError) Temporary() bool { return true }
func (e *temporaryError) Timeout() bool   { return false }

type permanentError struct{}

func (e *permanentError) Error() string   { return "permanent network error" }
func (e *permanentError) Temporary() bool { return false }
func (e *permanentError) Timeout() bool   { return false }
