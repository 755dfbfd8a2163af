package trader

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/tidwall/gjson"

	"github.com/Kshitij0O7/AI-crypto-trader-all-in-one/pkg/market"
)

// ResolveTokenAddress maps a market symbol to its token contract address by
// searching, in order, the top-markets trade summary, liquidity event pool
// currencies and pool price records. Symbol comparison is case-insensitive.
// Returns "" when no source knows the symbol.
func ResolveTokenAddress(symbol string, data *market.Data) string {
	if data == nil || symbol == "" {
		return ""
	}

	if len(data.TradeData) > 0 {
		found := ""
		gjson.GetBytes(data.TradeData, "top_markets").ForEach(func(_, m gjson.Result) bool {
			if strings.EqualFold(m.Get("symbol").String(), symbol) {
				found = m.Get("contract_address").String()
				return false
			}
			return true
		})
		if found != "" {
			return checksummed(found)
		}
	}

	for _, event := range data.LiquidityEvents {
		pool := gjson.GetBytes(event, "PoolEvent.Pool")
		if addr := poolCurrencyAddress(pool, symbol); addr != "" {
			return checksummed(addr)
		}
	}

	for _, record := range data.SlippageData {
		pool := gjson.GetBytes(record, "Price.Pool")
		if addr := poolCurrencyAddress(pool, symbol); addr != "" {
			return checksummed(addr)
		}
	}

	return ""
}

func poolCurrencyAddress(pool gjson.Result, symbol string) string {
	for _, key := range []string{"CurrencyA", "CurrencyB"} {
		currency := pool.Get(key)
		if strings.EqualFold(currency.Get("Symbol").String(), symbol) {
			if addr := currency.Get("SmartContract").String(); addr != "" {
				return addr
			}
		}
	}
	return ""
}

// checksummed normalizes a hex address to its EIP-55 form. Values that are
// not valid hex addresses pass through untouched.
func checksummed(addr string) string {
	if !common.IsHexAddress(addr) {
		return addr
	}
	return common.HexToAddress(addr).Hex()
}
