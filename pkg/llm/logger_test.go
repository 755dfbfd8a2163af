package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewLogger(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error", "bogus", ""} {
		logger := NewLogger(level)
		require.NotNil(t, logger)
		require.Implements(t, (*Logger)(nil), logger)
	}
}

func TestLoggerMethodsDoNotPanic(t *testing.T) {
	logger := NewLogger("debug")
	ctx := context.Background()

	require.NotPanics(t, func() {
		logger.Debug(ctx, "debug message", Fields{"key": "value"})
		logger.Info(ctx, "info message", Fields{"key": "value"})
		logger.Warn(ctx, "warning message", Fields{"key": "value"})
		logger.Error(ctx, errors.New("boom"), Fields{"key": "value"})
		logger.Info(ctx, "no fields", nil)
		logger.Info(ctx, "empty fields", Fields{})
	})
}

func TestParseLevel(t *testing.T) {
	require.Equal(t, parseLevel("debug"), parseLevel("DEBUG"))
	require.Equal(t, parseLevel("debug"), parseLevel("  debug  "))
	require.Equal(t, parseLevel("severe"), parseLevel("fatal"))
	require.Equal(t, parseLevel("info"), parseLevel("bogus"))
	require.Equal(t, parseLevel("info"), parseLevel(""))
}

func TestMsgWithFields(t *testing.T) {
	require.Equal(t, "plain", msgWithFields("plain", nil))
	require.Equal(t, "plain", msgWithFields("plain", Fields{}))

	got := msgWithFields("request failed", Fields{
		"status": 503,
		"model":  "gpt-4o",
		"retry":  true,
	})
	require.Equal(t, "request failed | model=gpt-4o retry=true status=503", got)
}
