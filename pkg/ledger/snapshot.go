package ledger

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"
	"github.com/vmihailenco/msgpack/v5"
)

// Snapshot wire types. Decimals travel as strings so the encoding stays
// stable across library versions.
type snapshot struct {
	SavedAt        time.Time          `msgpack:"saved_at"`
	DailyPnL       string             `msgpack:"daily_pnl"`
	TradingEnabled bool               `msgpack:"trading_enabled"`
	Open           []snapshotPosition `msgpack:"open"`
	Closed         []snapshotPosition `msgpack:"closed"`
	History        []snapshotSignal   `msgpack:"history"`
}

type snapshotPosition struct {
	ID           string    `msgpack:"id"`
	Market       string    `msgpack:"market"`
	Action       string    `msgpack:"action"`
	EntryPrice   string    `msgpack:"entry_price"`
	TargetPrice  string    `msgpack:"target_price"`
	StopLoss     string    `msgpack:"stop_loss"`
	Confidence   int       `msgpack:"confidence"`
	Reasoning    string    `msgpack:"reasoning"`
	OpenedAt     time.Time `msgpack:"opened_at"`
	AmountUSD    string    `msgpack:"amount_usd"`
	TokenAddress string    `msgpack:"token_address"`
	SlippageBps  int       `msgpack:"slippage_bps"`
	ClosePrice   string    `msgpack:"close_price"`
	PnLUSD       string    `msgpack:"pnl_usd"`
	PnLPct       string    `msgpack:"pnl_pct"`
	CloseReason  string    `msgpack:"close_reason"`
	ClosedAt     time.Time `msgpack:"closed_at"`
}

type snapshotSignal struct {
	Timestamp     time.Time `msgpack:"timestamp"`
	Action        string    `msgpack:"action"`
	Market        string    `msgpack:"market"`
	Confidence    int       `msgpack:"confidence"`
	Reasoning     string    `msgpack:"reasoning"`
	Outcome       string    `msgpack:"outcome"`
	CandidateJSON string    `msgpack:"candidate_json"`
}

// SaveSnapshot serializes the full ledger state to path, creating parent
// directories as needed.
func (l *Ledger) SaveSnapshot(path string) error {
	snap := snapshot{
		SavedAt:        l.nowFn(),
		DailyPnL:       l.dailyPnL.String(),
		TradingEnabled: l.tradingEnabled,
	}
	for _, p := range l.open {
		snap.Open = append(snap.Open, toSnapshotPosition(p))
	}
	for _, p := range l.closed {
		snap.Closed = append(snap.Closed, toSnapshotPosition(p))
	}
	for _, e := range l.history {
		snap.History = append(snap.History, snapshotSignal(e))
	}

	raw, err := msgpack.Marshal(&snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create snapshot dir: %w", err)
		}
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}

// LoadSnapshot replaces the ledger state with the snapshot at path. A
// missing file is not an error so a fresh session starts empty.
func (l *Ledger) LoadSnapshot(path string) error {
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read snapshot: %w", err)
	}

	var snap snapshot
	if err := msgpack.Unmarshal(raw, &snap); err != nil {
		return fmt.Errorf("decode snapshot: %w", err)
	}

	dailyPnL, err := decimal.NewFromString(snap.DailyPnL)
	if err != nil {
		return fmt.Errorf("decode snapshot daily pnl: %w", err)
	}

	open := make([]*Position, 0, len(snap.Open))
	for _, sp := range snap.Open {
		p, err := fromSnapshotPosition(sp)
		if err != nil {
			return err
		}
		open = append(open, p)
	}
	closed := make([]*Position, 0, len(snap.Closed))
	for _, sp := range snap.Closed {
		p, err := fromSnapshotPosition(sp)
		if err != nil {
			return err
		}
		closed = append(closed, p)
	}
	history := make([]SignalEntry, 0, len(snap.History))
	for _, se := range snap.History {
		history = append(history, SignalEntry(se))
	}

	l.dailyPnL = dailyPnL
	l.tradingEnabled = snap.TradingEnabled
	l.open = open
	l.closed = closed
	l.history = history
	l.lastUnrealized = decimal.Zero
	return nil
}

func toSnapshotPosition(p *Position) snapshotPosition {
	return snapshotPosition{
		ID:           p.ID,
		Market:       p.Market,
		Action:       p.Action,
		EntryPrice:   p.EntryPrice.String(),
		TargetPrice:  p.TargetPrice.String(),
		StopLoss:     p.StopLoss.String(),
		Confidence:   p.Confidence,
		Reasoning:    p.Reasoning,
		OpenedAt:     p.OpenedAt,
		AmountUSD:    p.AmountUSD.String(),
		TokenAddress: p.TokenAddress,
		SlippageBps:  p.SlippageBps,
		ClosePrice:   p.ClosePrice.String(),
		PnLUSD:       p.PnLUSD.String(),
		PnLPct:       p.PnLPct.String(),
		CloseReason:  p.CloseReason,
		ClosedAt:     p.ClosedAt,
	}
}

func fromSnapshotPosition(sp snapshotPosition) (*Position, error) {
	dec := func(s string) (decimal.Decimal, error) {
		if s == "" {
			return decimal.Zero, nil
		}
		return decimal.NewFromString(s)
	}

	var p Position
	var err error
	p.ID = sp.ID
	p.Market = sp.Market
	p.Action = sp.Action
	if p.EntryPrice, err = dec(sp.EntryPrice); err != nil {
		return nil, fmt.Errorf("decode snapshot position %s: %w", sp.ID, err)
	}
	if p.TargetPrice, err = dec(sp.TargetPrice); err != nil {
		return nil, fmt.Errorf("decode snapshot position %s: %w", sp.ID, err)
	}
	if p.StopLoss, err = dec(sp.StopLoss); err != nil {
		return nil, fmt.Errorf("decode snapshot position %s: %w", sp.ID, err)
	}
	p.Confidence = sp.Confidence
	p.Reasoning = sp.Reasoning
	p.OpenedAt = sp.OpenedAt
	if p.AmountUSD, err = dec(sp.AmountUSD); err != nil {
		return nil, fmt.Errorf("decode snapshot position %s: %w", sp.ID, err)
	}
	p.TokenAddress = sp.TokenAddress
	p.SlippageBps = sp.SlippageBps
	if p.ClosePrice, err = dec(sp.ClosePrice); err != nil {
		return nil, fmt.Errorf("decode snapshot position %s: %w", sp.ID, err)
	}
	if p.PnLUSD, err = dec(sp.PnLUSD); err != nil {
		return nil, fmt.Errorf("decode snapshot position %s: %w", sp.ID, err)
	}
	if p.PnLPct, err = dec(sp.PnLPct); err != nil {
		return nil, fmt.Errorf("decode snapshot position %s: %w", sp.ID, err)
	}
	p.CloseReason = sp.CloseReason
	p.ClosedAt = sp.ClosedAt
	return &p, nil
}
