package trader

import (
	"strings"

	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"

	"github.com/Kshitij0O7/AI-crypto-trader-all-in-one/pkg/market"
)

var fallbackPrices = map[string]decimal.Decimal{
	"USDC":  decimal.NewFromInt(1),
	"DAI":   decimal.NewFromInt(1),
	"USDT":  decimal.NewFromInt(1),
	"WETH":  decimal.NewFromInt(3000),
	"ETH":   decimal.NewFromInt(3000),
	"MATIC": decimal.NewFromFloat(0.8),
}

// CurrentPrice returns the USD price for a token symbol from the
// top-markets summary, falling back to rough static prices for well-known
// tokens and 1.0 for everything else. Never returns zero.
func CurrentPrice(symbol string, data *market.Data) decimal.Decimal {
	if data != nil && len(data.TradeData) > 0 {
		var price decimal.Decimal
		gjson.GetBytes(data.TradeData, "top_markets").ForEach(func(_, m gjson.Result) bool {
			if strings.EqualFold(m.Get("symbol").String(), symbol) {
				if p := m.Get("recent_price"); p.Exists() && p.Float() > 0 {
					price = decimal.NewFromFloat(p.Float())
					return false
				}
			}
			return true
		})
		if price.IsPositive() {
			return price
		}
	}

	if p, ok := fallbackPrices[strings.ToUpper(symbol)]; ok {
		return p
	}
	return decimal.NewFromInt(1)
}

// PriceLookup adapts CurrentPrice to the ledger's mark-to-market hook.
// The second return is always true because the fallback table guarantees
// a positive price.
func PriceLookup(data *market.Data) func(symbol string) (decimal.Decimal, bool) {
	return func(symbol string) (decimal.Decimal, bool) {
		return CurrentPrice(symbol, data), true
	}
}
