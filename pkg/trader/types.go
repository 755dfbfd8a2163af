// Package trader turns model output into ledger mutations: it parses the
// raw completion text into candidate actions, validates each candidate
// against the current book, and enriches trade entries with the on-chain
// token address resolved from market data.
package trader

import (
	"github.com/shopspring/decimal"
)

// Action kinds accepted from the model.
const (
	KindBuy            = "BUY"
	KindSell           = "SELL"
	KindClose          = "CLOSE"
	KindHold           = "HOLD"
	KindPartialClose   = "PARTIAL_CLOSE"
	KindMarketMake     = "MARKET_MAKE"
	KindAdjustStopLoss = "ADJUST_STOP_LOSS"
	KindAdjustTarget   = "ADJUST_TARGET"
)

// Candidate is one proposed action as decoded from the model response.
// Optional numerics are pointers so an absent field is distinguishable
// from a zero value.
type Candidate struct {
	Action          string           `json:"action"`
	Market          string           `json:"market"`
	Confidence      *int             `json:"confidence,omitempty"`
	Reasoning       string           `json:"reasoning,omitempty"`
	EntryPrice      *decimal.Decimal `json:"entry_price,omitempty"`
	TargetPrice     *decimal.Decimal `json:"target_price,omitempty"`
	StopLoss        *decimal.Decimal `json:"stop_loss,omitempty"`
	AmountUSD       *decimal.Decimal `json:"amount_usd,omitempty"`
	NewValue        *decimal.Decimal `json:"new_value,omitempty"`
	PriceRangeMin   *decimal.Decimal `json:"price_range_min,omitempty"`
	PriceRangeMax   *decimal.Decimal `json:"price_range_max,omitempty"`
	SlippageBps     *int             `json:"slippage_bps,omitempty"`
	ContractAddress string           `json:"contract_address,omitempty"`
}

// ConfidenceValue returns the confidence or 0 when absent.
func (c *Candidate) ConfidenceValue() int {
	if c.Confidence == nil {
		return 0
	}
	return *c.Confidence
}

// Rejection explains why a candidate was dropped.
type Rejection struct {
	Candidate Candidate
	Reason    string
}

// PositionBook is the read-only view of open positions the validator needs.
type PositionBook interface {
	HasOpen(symbol string) bool
}
