//go:build integration
// +build integration

package repo_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/Kshitij0O7/AI-crypto-trader-all-in-one/internal/repo"
	"github.com/Kshitij0O7/AI-crypto-trader-all-in-one/pkg/ledger"
)

func requireStore(t *testing.T) *repo.Store {
	t.Helper()
	dsn := os.Getenv("POSTGRES_DSN")
	if dsn == "" {
		t.Skip("Postgres not configured (POSTGRES_DSN empty)")
	}
	return repo.Open(dsn)
}

func TestStoreRoundTrip(t *testing.T) {
	store := requireStore(t)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	require.NoError(t, store.EnsureSchema(ctx))

	now := time.Now().UTC().Truncate(time.Second)
	pos := &ledger.Position{
		ID:          "sim_it_" + now.Format("20060102150405"),
		Market:      "WETH",
		Action:      "BUY",
		EntryPrice:  decimal.RequireFromString("3000"),
		ClosePrice:  decimal.RequireFromString("3300"),
		TargetPrice: decimal.RequireFromString("3300"),
		StopLoss:    decimal.RequireFromString("2850"),
		AmountUSD:   decimal.RequireFromString("1.5"),
		PnLUSD:      decimal.RequireFromString("0.15"),
		PnLPct:      decimal.RequireFromString("10"),
		CloseReason: "AI_DECISION",
		Confidence:  72,
		OpenedAt:    now.Add(-time.Minute),
		ClosedAt:    now,
	}
	require.NoError(t, store.InsertClosedPosition(ctx, pos))
	// Duplicate insert is a no-op.
	require.NoError(t, store.InsertClosedPosition(ctx, pos))

	require.NoError(t, store.InsertSignal(ctx, ledger.SignalEntry{
		Timestamp:     now,
		Action:        "BUY",
		Market:        "WETH",
		Confidence:    72,
		Outcome:       ledger.OutcomePending,
		CandidateJSON: `{"action":"BUY","market":"WETH"}`,
	}))
}

func TestStoreDisabled(t *testing.T) {
	var store *repo.Store
	ctx := context.Background()
	require.NoError(t, store.EnsureSchema(ctx))
	require.NoError(t, store.InsertClosedPosition(ctx, &ledger.Position{}))
	require.NoError(t, store.InsertSignal(ctx, ledger.SignalEntry{}))
}
