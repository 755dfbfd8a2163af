// Package ledger keeps the authoritative in-memory record of simulated
// positions: the open and closed lists, cumulative realized daily PnL, the
// one-way trading latch and the signal history. The ledger has a single
// writer (the trading loop) and performs no locking of its own.
package ledger

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/zeromicro/go-zero/core/logx"
)

var hundred = decimal.NewFromInt(100)

// Config bounds position opening.
type Config struct {
	MaxOpenPositions   int
	DailyLossLimitUSD  decimal.Decimal
	DefaultPositionUSD decimal.Decimal
}

// Ledger owns the full trading state for one session.
type Ledger struct {
	cfg Config

	open   []*Position
	closed []*Position

	dailyPnL       decimal.Decimal
	tradingEnabled bool

	history []SignalEntry

	// Most recent unrealized total, refreshed by UnrealizedPnL. Folded into
	// the loss-floor check so a deep open drawdown also trips the latch.
	lastUnrealized decimal.Decimal

	nowFn func() time.Time
}

// New constructs an empty ledger with trading enabled.
func New(cfg Config) *Ledger {
	return &Ledger{
		cfg:            cfg,
		tradingEnabled: true,
		nowFn:          time.Now,
	}
}

// CheckSafetyLimits reports whether a new position may be opened. Breaching
// the daily loss floor disables trading for the remainder of the session;
// the latch never resets even if PnL later recovers.
func (l *Ledger) CheckSafetyLimits() bool {
	if !l.tradingEnabled {
		return false
	}
	effective := l.dailyPnL.Add(l.lastUnrealized)
	if effective.LessThanOrEqual(l.cfg.DailyLossLimitUSD.Neg()) {
		logx.Infof("ledger: daily loss limit hit (pnl=%s), trading disabled for session", effective.StringFixed(4))
		l.tradingEnabled = false
		return false
	}
	if len(l.open) >= l.cfg.MaxOpenPositions {
		return false
	}
	return true
}

// Open creates a position when the safety limits allow it. A violated
// precondition is not an error: the signal is skipped and logged, and the
// ledger is left untouched.
func (l *Ledger) Open(req OpenRequest) (*Position, bool) {
	if !l.CheckSafetyLimits() {
		logx.Infof("ledger: safety limits reached, skipping %s %s", req.Action, req.Market)
		return nil, false
	}
	if !req.EntryPrice.IsPositive() {
		logx.Infof("ledger: no positive entry price for %s, skipping", req.Market)
		return nil, false
	}

	amount := req.AmountUSD
	if !amount.IsPositive() {
		amount = l.cfg.DefaultPositionUSD
	}

	now := l.nowFn()
	p := &Position{
		ID:           newPositionID(now, req.Market),
		Market:       req.Market,
		Action:       req.Action,
		EntryPrice:   req.EntryPrice,
		TargetPrice:  req.TargetPrice,
		StopLoss:     req.StopLoss,
		Confidence:   req.Confidence,
		Reasoning:    req.Reasoning,
		OpenedAt:     now,
		AmountUSD:    amount,
		TokenAddress: req.TokenAddress,
		SlippageBps:  req.SlippageBps,
	}
	l.open = append(l.open, p)
	return p, true
}

// Close transitions the open position for symbol to the closed list,
// realizing PnL into the daily total. Closing a symbol with no open
// position is a no-op, which also makes a second close idempotent.
func (l *Ledger) Close(symbol string, exitPrice decimal.Decimal, reason string) (*Position, bool) {
	idx := l.findOpen(symbol)
	if idx < 0 {
		return nil, false
	}
	p := l.open[idx]

	pnlUSD, pnlPct := pricePnL(p.EntryPrice, exitPrice, p.AmountUSD)
	p.ClosePrice = exitPrice
	p.PnLUSD = pnlUSD
	p.PnLPct = pnlPct
	p.CloseReason = reason
	p.ClosedAt = l.nowFn()

	l.open = append(l.open[:idx], l.open[idx+1:]...)
	l.closed = append(l.closed, p)
	l.dailyPnL = l.dailyPnL.Add(pnlUSD)
	l.markSignalOutcome(p.Market, pnlUSD.IsPositive())
	return p, true
}

// AdjustStopLoss mutates the stop loss of the matching open position.
// No-op when the symbol has no open position.
func (l *Ledger) AdjustStopLoss(symbol string, newValue decimal.Decimal) bool {
	idx := l.findOpen(symbol)
	if idx < 0 {
		return false
	}
	l.open[idx].StopLoss = newValue
	return true
}

// AdjustTarget mutates the target price of the matching open position.
func (l *Ledger) AdjustTarget(symbol string, newValue decimal.Decimal) bool {
	idx := l.findOpen(symbol)
	if idx < 0 {
		return false
	}
	l.open[idx].TargetPrice = newValue
	return true
}

// HasOpen reports whether an open position exists for symbol.
func (l *Ledger) HasOpen(symbol string) bool {
	return l.findOpen(symbol) >= 0
}

func (l *Ledger) findOpen(symbol string) int {
	for i, p := range l.open {
		if p.MatchesMarket(symbol) {
			return i
		}
	}
	return -1
}

// OpenPositions returns a copy of the open list.
func (l *Ledger) OpenPositions() []Position {
	out := make([]Position, 0, len(l.open))
	for _, p := range l.open {
		out = append(out, *p)
	}
	return out
}

// ClosedPositions returns a copy of the closed list.
func (l *Ledger) ClosedPositions() []Position {
	out := make([]Position, 0, len(l.closed))
	for _, p := range l.closed {
		out = append(out, *p)
	}
	return out
}

// OpenCount returns the number of open positions.
func (l *Ledger) OpenCount() int { return len(l.open) }

// DailyPnL returns cumulative realized PnL for the session.
func (l *Ledger) DailyPnL() decimal.Decimal { return l.dailyPnL }

// TradingEnabled reports the state of the one-way trading latch.
func (l *Ledger) TradingEnabled() bool { return l.tradingEnabled }

// CommittedUSD sums the notional of all open positions.
func (l *Ledger) CommittedUSD() decimal.Decimal {
	total := decimal.Zero
	for _, p := range l.open {
		total = total.Add(p.AmountUSD)
	}
	return total
}

func pricePnL(entry, exit, amount decimal.Decimal) (usd, pct decimal.Decimal) {
	ratio := exit.Sub(entry).Div(entry)
	return ratio.Mul(amount), ratio.Mul(hundred)
}
