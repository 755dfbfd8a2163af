package market

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
)

const (
	defaultTopMarketCount = 200
	defaultPoolPriceCount = 100
)

// Data is one cycle's raw market snapshot. Any field may be empty when the
// corresponding fetch failed.
type Data struct {
	TradeData       json.RawMessage   `json:"trade_data,omitempty"`
	LiquidityEvents []json.RawMessage `json:"liquidity_events,omitempty"`
	SlippageData    []json.RawMessage `json:"slippage_data,omitempty"`
}

// TopMarket is one entry of the trade data summary.
type TopMarket struct {
	Symbol          string  `json:"symbol"`
	ContractAddress string  `json:"contract_address"`
	RecentPrice     float64 `json:"recent_price"`
	VolumeUSD       float64 `json:"volume_24h_usd"`
	TradeCount      int64   `json:"trade_count"`
}

// FetchTradeData aggregates recent DEX trades into a top-markets summary
// keyed the way prompt consumers expect: {"top_markets": [...]}.
func (c *Client) FetchTradeData(ctx context.Context) (json.RawMessage, error) {
	body, err := c.query(ctx, topMarketsQuery, map[string]any{"count": defaultTopMarketCount})
	if err != nil {
		return nil, err
	}

	rows := gjson.GetBytes(body, "data.EVM.DEXTradeByTokens")
	if !rows.Exists() {
		return nil, fmt.Errorf("bitquery: trade data missing from response")
	}

	var markets []TopMarket
	rows.ForEach(func(_, row gjson.Result) bool {
		symbol := row.Get("Trade.Currency.Symbol").String()
		if symbol == "" {
			return true
		}
		markets = append(markets, TopMarket{
			Symbol:          symbol,
			ContractAddress: row.Get("Trade.Currency.SmartContract").String(),
			RecentPrice:     row.Get("Trade.recent_price").Float(),
			VolumeUSD:       row.Get("volume").Float(),
			TradeCount:      row.Get("trades").Int(),
		})
		return true
	})

	out, err := json.Marshal(map[string]any{"top_markets": markets})
	if err != nil {
		return nil, fmt.Errorf("bitquery: encode trade data: %w", err)
	}
	return out, nil
}

// FetchLiquidityEvents returns raw pool add/remove events, newest first.
func (c *Client) FetchLiquidityEvents(ctx context.Context) ([]json.RawMessage, error) {
	body, err := c.query(ctx, liquidityEventsQuery, nil)
	if err != nil {
		return nil, err
	}
	return rawArray(body, "data.EVM.DEXPoolEvents", "liquidity events")
}

// FetchSlippageData returns raw pool price records, newest first.
func (c *Client) FetchSlippageData(ctx context.Context) ([]json.RawMessage, error) {
	body, err := c.query(ctx, poolPricesQuery, map[string]any{"count": defaultPoolPriceCount})
	if err != nil {
		return nil, err
	}
	return rawArray(body, "data.EVM.DEXPools", "pool prices")
}

func rawArray(body []byte, path, what string) ([]json.RawMessage, error) {
	rows := gjson.GetBytes(body, path)
	if !rows.Exists() {
		return nil, fmt.Errorf("bitquery: %s missing from response", what)
	}
	var out []json.RawMessage
	rows.ForEach(func(_, row gjson.Result) bool {
		out = append(out, json.RawMessage(row.Raw))
		return true
	})
	return out, nil
}
