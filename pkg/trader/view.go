package trader

import (
	"encoding/json"

	"github.com/shopspring/decimal"

	"github.com/Kshitij0O7/AI-crypto-trader-all-in-one/pkg/compact"
	"github.com/Kshitij0O7/AI-crypto-trader-all-in-one/pkg/market"
)

// PositionView is the compact open-position projection sent to the model.
// Single-letter keys keep the prompt small; the legend travels in the
// template text.
type PositionView struct {
	Market       string
	Action       string
	EntryPrice   decimal.Decimal
	TargetPrice  decimal.Decimal
	StopLoss     decimal.Decimal
	CurrentPrice decimal.Decimal
	ValueUSD     decimal.Decimal
}

// HoldingView is one wallet balance line.
type HoldingView struct {
	Symbol   string
	ValueUSD decimal.Decimal
}

// StateView aggregates everything the prompt template needs for one cycle.
type StateView struct {
	Market *market.Data

	OpenPositions []PositionView
	Wallet        []HoldingView

	TotalPortfolioUSD decimal.Decimal
	AvailableUSD      decimal.Decimal
	DailyPnL          decimal.Decimal
	OpenCount         int
	MaxOpenPositions  int

	SignalCount int
	AccuracyPct float64

	MinConfidence  int
	MaxPositionUSD decimal.Decimal
}

func (p PositionView) compactView() map[string]any {
	return map[string]any{
		"m": p.Market,
		"a": p.Action,
		"e": p.EntryPrice.Round(8),
		"t": p.TargetPrice.Round(8),
		"s": p.StopLoss.Round(8),
		"c": p.CurrentPrice.Round(8),
		"v": p.ValueUSD.Round(2),
	}
}

func (h HoldingView) compactView() map[string]any {
	return map[string]any{
		"s":   h.Symbol,
		"usd": h.ValueUSD.Round(2),
	}
}

// templateData flattens the view into the string fields the prompt template
// interpolates. Contract-address fields are stripped from every raw payload
// before compact encoding.
func (v *StateView) templateData() (map[string]any, error) {
	tradeData := "{}"
	liquidity := "[]"
	slippage := "[]"
	if v.Market != nil {
		if len(v.Market.TradeData) > 0 {
			decoded, err := compactJSON(StripContractFields(v.Market.TradeData))
			if err != nil {
				return nil, err
			}
			tradeData = decoded
		}
		if len(v.Market.LiquidityEvents) > 0 {
			decoded, err := compactRecords(StripContractFieldsAll(v.Market.LiquidityEvents))
			if err != nil {
				return nil, err
			}
			liquidity = decoded
		}
		if len(v.Market.SlippageData) > 0 {
			decoded, err := compactRecords(StripContractFieldsAll(v.Market.SlippageData))
			if err != nil {
				return nil, err
			}
			slippage = decoded
		}
	}

	positions := make([]any, 0, len(v.OpenPositions))
	for _, p := range v.OpenPositions {
		positions = append(positions, p.compactView())
	}
	wallet := make([]any, 0, len(v.Wallet))
	for _, h := range v.Wallet {
		wallet = append(wallet, h.compactView())
	}

	return map[string]any{
		"TradeData":       tradeData,
		"LiquidityEvents": liquidity,
		"SlippageData":    slippage,
		"OpenPositions":   compact.Encode(positions),
		"Wallet":          compact.Encode(wallet),

		"TotalPortfolioUSD": v.TotalPortfolioUSD.StringFixed(2),
		"AvailableUSD":      v.AvailableUSD.StringFixed(2),
		"DailyPnL":          v.DailyPnL.StringFixed(2),
		"OpenCount":         v.OpenCount,
		"MaxOpenPositions":  v.MaxOpenPositions,

		"SignalCount": v.SignalCount,
		"AccuracyPct": v.AccuracyPct,

		"MinConfidence":  v.MinConfidence,
		"MaxPositionUSD": v.MaxPositionUSD.StringFixed(2),
	}, nil
}

// compactJSON re-encodes one JSON document in compact form.
func compactJSON(raw json.RawMessage) (string, error) {
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return "", err
	}
	return compact.Encode(doc), nil
}

// compactRecords encodes a slice of JSON documents as one compact array.
func compactRecords(raws []json.RawMessage) (string, error) {
	docs := make([]any, 0, len(raws))
	for _, raw := range raws {
		var doc any
		if err := json.Unmarshal(raw, &doc); err != nil {
			return "", err
		}
		docs = append(docs, doc)
	}
	return compact.Encode(docs), nil
}
