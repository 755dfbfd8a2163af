package ledger

import "github.com/shopspring/decimal"

// PriceLookup resolves the current price for a market symbol. The second
// return value is false when no price is available.
type PriceLookup func(symbol string) (decimal.Decimal, bool)

// PositionPnL is the mark-to-market view of one open position.
type PositionPnL struct {
	Market       string
	EntryPrice   decimal.Decimal
	CurrentPrice decimal.Decimal
	PnLUSD       decimal.Decimal
	PnLPct       decimal.Decimal
	AmountUSD    decimal.Decimal
}

// PnLReport aggregates unrealized PnL across all open positions.
type PnLReport struct {
	TotalPnL  decimal.Decimal
	Positions []PositionPnL
}

// UnrealizedPnL marks every open position against the supplied price lookup,
// falling back to the entry price (zero PnL) when a price is unavailable.
// Positions are not mutated; only the cached unrealized total consumed by
// the safety check is refreshed.
func (l *Ledger) UnrealizedPnL(lookup PriceLookup) PnLReport {
	rep := PnLReport{TotalPnL: decimal.Zero}
	for _, p := range l.open {
		current := p.EntryPrice
		if lookup != nil {
			if price, ok := lookup(p.Market); ok && price.IsPositive() {
				current = price
			}
		}
		usd, pct := pricePnL(p.EntryPrice, current, p.AmountUSD)
		rep.TotalPnL = rep.TotalPnL.Add(usd)
		rep.Positions = append(rep.Positions, PositionPnL{
			Market:       p.Market,
			EntryPrice:   p.EntryPrice,
			CurrentPrice: current,
			PnLUSD:       usd,
			PnLPct:       pct,
			AmountUSD:    p.AmountUSD,
		})
	}
	l.lastUnrealized = rep.TotalPnL
	return rep
}
