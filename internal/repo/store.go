// Package repo mirrors closed positions and signal history into Postgres so
// simulation runs can be queried after the process exits. The store is
// optional; a nil *Store is a no-op and the loop runs fine without a DSN.
package repo

import (
	"context"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx driver
	"github.com/zeromicro/go-zero/core/stores/sqlx"

	"github.com/Kshitij0O7/AI-crypto-trader-all-in-one/pkg/ledger"
)

type Store struct {
	conn sqlx.SqlConn
}

// Open connects to Postgres via the pgx driver. An empty DSN returns a nil
// store, which every method treats as "persistence disabled".
func Open(dsn string) *Store {
	if dsn == "" {
		return nil
	}
	return &Store{conn: sqlx.NewSqlConn("pgx", dsn)}
}

const schema = `
CREATE TABLE IF NOT EXISTS closed_positions (
    id            TEXT PRIMARY KEY,
    market        TEXT NOT NULL,
    action        TEXT NOT NULL,
    entry_price   NUMERIC NOT NULL,
    close_price   NUMERIC NOT NULL,
    target_price  NUMERIC NOT NULL,
    stop_loss     NUMERIC NOT NULL,
    amount_usd    NUMERIC NOT NULL,
    pnl_usd       NUMERIC NOT NULL,
    pnl_pct       NUMERIC NOT NULL,
    close_reason  TEXT NOT NULL DEFAULT '',
    confidence    INT NOT NULL DEFAULT 0,
    reasoning     TEXT NOT NULL DEFAULT '',
    opened_at     TIMESTAMPTZ NOT NULL,
    closed_at     TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS signals (
    id             BIGSERIAL PRIMARY KEY,
    ts             TIMESTAMPTZ NOT NULL,
    action         TEXT NOT NULL,
    market         TEXT NOT NULL,
    confidence     INT NOT NULL DEFAULT 0,
    outcome        TEXT NOT NULL DEFAULT 'pending',
    candidate_json JSONB
);
`

// EnsureSchema creates the tables when they do not exist yet.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if s == nil {
		return nil
	}
	if _, err := s.conn.ExecCtx(ctx, schema); err != nil {
		return fmt.Errorf("repo: ensure schema: %w", err)
	}
	return nil
}

// InsertClosedPosition records a closed position. Re-inserting the same
// position ID is a no-op so flushes can overlap safely.
func (s *Store) InsertClosedPosition(ctx context.Context, p *ledger.Position) error {
	if s == nil || p == nil {
		return nil
	}
	const q = `
INSERT INTO closed_positions (
    id, market, action, entry_price, close_price, target_price, stop_loss,
    amount_usd, pnl_usd, pnl_pct, close_reason, confidence, reasoning,
    opened_at, closed_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
ON CONFLICT (id) DO NOTHING`
	_, err := s.conn.ExecCtx(ctx, q,
		p.ID, p.Market, p.Action,
		p.EntryPrice.String(), p.ClosePrice.String(),
		p.TargetPrice.String(), p.StopLoss.String(),
		p.AmountUSD.String(), p.PnLUSD.String(), p.PnLPct.String(),
		p.CloseReason, p.Confidence, p.Reasoning,
		p.OpenedAt, p.ClosedAt,
	)
	if err != nil {
		return fmt.Errorf("repo: insert closed position %s: %w", p.ID, err)
	}
	return nil
}

// InsertSignal appends one signal history row.
func (s *Store) InsertSignal(ctx context.Context, e ledger.SignalEntry) error {
	if s == nil {
		return nil
	}
	const q = `
INSERT INTO signals (ts, action, market, confidence, outcome, candidate_json)
VALUES ($1, $2, $3, $4, $5, $6)`
	candidate := any(nil)
	if e.CandidateJSON != "" {
		candidate = e.CandidateJSON
	}
	_, err := s.conn.ExecCtx(ctx, q,
		e.Timestamp, e.Action, e.Market, e.Confidence, e.Outcome, candidate,
	)
	if err != nil {
		return fmt.Errorf("repo: insert signal for %s: %w", e.Market, err)
	}
	return nil
}
