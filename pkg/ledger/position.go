package ledger

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Position is one simulated trade. A position is created by Open, mutated in
// place by the adjust operations and moved to the closed list by Close. The
// OPEN → CLOSED transition is terminal; closed positions are never deleted.
type Position struct {
	ID           string          `json:"id"`
	Market       string          `json:"market"`
	Action       string          `json:"action"`
	EntryPrice   decimal.Decimal `json:"entry_price"`
	TargetPrice  decimal.Decimal `json:"target_price"`
	StopLoss     decimal.Decimal `json:"stop_loss"`
	Confidence   int             `json:"confidence"`
	Reasoning    string          `json:"reasoning,omitempty"`
	OpenedAt     time.Time       `json:"timestamp"`
	AmountUSD    decimal.Decimal `json:"amount_usd"`
	TokenAddress string          `json:"contract_address,omitempty"`
	SlippageBps  int             `json:"slippage_bps,omitempty"`

	// Close metadata, zero until the position leaves the open list.
	ClosePrice  decimal.Decimal `json:"close_price,omitempty"`
	PnLUSD      decimal.Decimal `json:"pnl_usd,omitempty"`
	PnLPct      decimal.Decimal `json:"pnl_pct,omitempty"`
	CloseReason string          `json:"close_reason,omitempty"`
	ClosedAt    time.Time       `json:"closed_at,omitempty"`
}

// MatchesMarket reports whether the position is for the given symbol,
// matching case-insensitively as everywhere else in the ledger.
func (p *Position) MatchesMarket(symbol string) bool {
	return strings.EqualFold(p.Market, symbol)
}

// newPositionID derives the position identifier from the open timestamp.
// Identifiers are only unique under the single-writer loop discipline; a
// concurrent ledger would need a different scheme.
func newPositionID(ts time.Time, market string) string {
	return fmt.Sprintf("sim_%d_%s", ts.Unix(), strings.ToUpper(market))
}

// OpenRequest carries the fields needed to open a position. Entry price and
// notional are already resolved by the caller (candidate value or market
// fallback).
type OpenRequest struct {
	Market       string
	Action       string
	EntryPrice   decimal.Decimal
	TargetPrice  decimal.Decimal
	StopLoss     decimal.Decimal
	Confidence   int
	Reasoning    string
	AmountUSD    decimal.Decimal
	TokenAddress string
	SlippageBps  int
}
