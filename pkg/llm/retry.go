package llm

import (
	"context"
	"errors"
	"math"
	"net"
	"time"

	"github.com/openai/openai-go"
)

const (
	defaultInitialBackoff = 200 * time.Millisecond
	defaultMaxBackoff     = 3 * time.Second
	defaultBackoffFactor  = 2.0
)

// retryableStatuses are the HTTP codes worth another attempt. Everything
// else from the API is a caller problem.
var retryableStatuses = map[int]bool{
	408: true, // request timeout
	429: true, // rate limited
	500: true,
	502: true,
	503: true,
	504: true,
}

// RetryConfig encapsulates exponential backoff settings.
type RetryConfig struct {
	MaxRetries     int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	Multiplier     float64
}

// RetryHandler executes retryable operations with backoff.
type RetryHandler struct {
	cfg RetryConfig
}

// NewRetryHandler constructs a handler, filling unset fields with defaults.
func NewRetryHandler(cfg RetryConfig) *RetryHandler {
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = defaultInitialBackoff
	}
	if cfg.MaxBackoff <= 0 {
		cfg.MaxBackoff = defaultMaxBackoff
	}
	if cfg.Multiplier <= 1 {
		cfg.Multiplier = defaultBackoffFactor
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	return &RetryHandler{cfg: cfg}
}

// Do runs fn until it succeeds, returns a non-retryable error, or the
// attempt budget is spent.
func (r *RetryHandler) Do(ctx context.Context, fn func() error) error {
	backoff := r.cfg.InitialBackoff

	for attempt := 0; ; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		if !shouldRetry(err) || attempt >= r.cfg.MaxRetries {
			return err
		}

		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return ctx.Err()
		}

		backoff = time.Duration(math.Min(
			float64(r.cfg.MaxBackoff),
			float64(backoff)*r.cfg.Multiplier,
		))
	}
}

func shouldRetry(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return retryableStatuses[apiErr.StatusCode]
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Temporary() {
		return true
	}

	// Treat unknown transport errors as retryable to be safe.
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}

	return false
}
