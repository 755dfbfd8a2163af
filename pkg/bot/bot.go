// Package bot runs the trading loop: fetch market data, ask the strategy for
// candidate actions, validate them against the book and apply the survivors
// to the ledger. Reports are flushed on a slower cadence and every cycle is
// journaled.
package bot

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/zeromicro/go-zero/core/logx"

	"github.com/Kshitij0O7/AI-crypto-trader-all-in-one/internal/repo"
	"github.com/Kshitij0O7/AI-crypto-trader-all-in-one/pkg/journal"
	"github.com/Kshitij0O7/AI-crypto-trader-all-in-one/pkg/ledger"
	"github.com/Kshitij0O7/AI-crypto-trader-all-in-one/pkg/market"
	"github.com/Kshitij0O7/AI-crypto-trader-all-in-one/pkg/report"
	"github.com/Kshitij0O7/AI-crypto-trader-all-in-one/pkg/trader"
)

const closeReasonDecision = "AI_DECISION"

// accuracyWindow bounds how many resolved signals feed the accuracy figure
// shown to the model.
const accuracyWindow = 10

// Config carries the loop parameters.
type Config struct {
	CycleInterval  time.Duration
	ActionPacing   time.Duration
	ReportInterval time.Duration

	PortfolioUSD   decimal.Decimal
	MaxPositionUSD decimal.Decimal

	MaxOpenPositions int
	MinConfidence    int

	SnapshotPath string
	PromptDigest string
}

// Deps bundles the collaborators the loop drives. Store may be nil.
type Deps struct {
	Gateway  market.Gateway
	Strategy trader.Strategy
	Ledger   *ledger.Ledger
	Reports  *report.Sink
	Journal  *journal.Writer
	Store    *repo.Store
}

type Bot struct {
	cfg       Config
	gateway   market.Gateway
	strategy  trader.Strategy
	ledger    *ledger.Ledger
	reports   *report.Sink
	journal   *journal.Writer
	store     *repo.Store
	validator *trader.Validator

	lastReport      time.Time
	mirroredSignals int
	nowFn           func() time.Time
}

func New(cfg Config, deps Deps) (*Bot, error) {
	if deps.Gateway == nil {
		return nil, errors.New("bot: gateway is required")
	}
	if deps.Strategy == nil {
		return nil, errors.New("bot: strategy is required")
	}
	if deps.Ledger == nil {
		return nil, errors.New("bot: ledger is required")
	}
	return &Bot{
		cfg:      cfg,
		gateway:  deps.Gateway,
		strategy: deps.Strategy,
		ledger:   deps.Ledger,
		reports:  deps.Reports,
		journal:  deps.Journal,
		store:    deps.Store,
		validator: &trader.Validator{
			MinConfidence: cfg.MinConfidence,
			Book:          deps.Ledger,
		},
		nowFn: time.Now,
	}, nil
}

// Run drives the loop until ctx is cancelled, then flushes reports and saves
// the ledger snapshot.
func (b *Bot) Run(ctx context.Context) error {
	ticker := time.NewTicker(b.cfg.CycleInterval)
	defer ticker.Stop()

	logx.Infof("bot: starting loop, cycle=%s report=%s", b.cfg.CycleInterval, b.cfg.ReportInterval)

	// Run once immediately on startup.
	if err := b.runCycle(ctx); err != nil && ctx.Err() == nil {
		logx.Errorf("bot: cycle failed: %v", err)
	}

	for {
		select {
		case <-ctx.Done():
			b.shutdown()
			return nil
		case <-ticker.C:
			if err := b.runCycle(ctx); err != nil && ctx.Err() == nil {
				logx.Errorf("bot: cycle failed: %v", err)
			}
		}
	}
}

func (b *Bot) shutdown() {
	logx.Info("bot: shutting down, flushing final reports")
	b.flushReports(nil)
	if b.cfg.SnapshotPath != "" {
		if err := b.ledger.SaveSnapshot(b.cfg.SnapshotPath); err != nil {
			logx.Errorf("bot: save snapshot: %v", err)
		}
	}
}

func (b *Bot) runCycle(ctx context.Context) error {
	data, err := b.gateway.Fetch(ctx)
	if err != nil {
		b.writeJournal(nil, 0, 0, err)
		return err
	}

	// Re-mark open positions before deciding so the loss latch sees the
	// current drawdown.
	b.ledger.UnrealizedPnL(trader.PriceLookup(data))

	view := b.buildStateView(data)
	candidates, err := b.strategy.Propose(ctx, view)
	if err != nil {
		b.writeJournal(data, 0, 0, err)
		return err
	}

	accepted := b.validator.ValidateAll(candidates, data)
	logx.Infof("bot: cycle proposed=%d accepted=%d", len(candidates), len(accepted))

	for i, c := range accepted {
		b.recordSignal(c)
		b.executeAction(c, data)
		if i < len(accepted)-1 {
			sleepCtx(ctx, b.cfg.ActionPacing)
		}
	}

	b.ledger.UnrealizedPnL(trader.PriceLookup(data))

	if b.reportDue() {
		b.flushReports(data)
	}

	b.writeJournal(data, len(candidates), len(accepted), nil)
	return nil
}

func (b *Bot) recordSignal(c trader.Candidate) {
	raw, err := json.Marshal(c)
	if err != nil {
		raw = nil
	}
	b.ledger.AppendSignal(c.Action, c.Market, c.ConfidenceValue(), c.Reasoning, string(raw))
}

func (b *Bot) executeAction(c trader.Candidate, data *market.Data) {
	switch strings.ToUpper(c.Action) {
	case trader.KindBuy, trader.KindSell:
		b.openPosition(c)
	case trader.KindClose, trader.KindPartialClose:
		price := trader.CurrentPrice(c.Market, data)
		if p, ok := b.ledger.Close(c.Market, price, closeReasonDecision); ok {
			logx.Infof("bot: closed %s at %s, pnl=%s", p.Market, price, p.PnLUSD.StringFixed(4))
		}
	case trader.KindHold:
		logx.Infof("bot: holding %s", c.Market)
	case trader.KindMarketMake:
		// Accepted and journaled but not simulated.
		logx.Infof("bot: market make on %s not executed in simulation", c.Market)
	case trader.KindAdjustStopLoss:
		if c.NewValue != nil && b.ledger.AdjustStopLoss(c.Market, *c.NewValue) {
			logx.Infof("bot: adjusted stop loss for %s to %s", c.Market, c.NewValue)
		}
	case trader.KindAdjustTarget:
		if c.NewValue != nil && b.ledger.AdjustTarget(c.Market, *c.NewValue) {
			logx.Infof("bot: adjusted target for %s to %s", c.Market, c.NewValue)
		}
	}
}

func (b *Bot) openPosition(c trader.Candidate) {
	amount := b.cfg.MaxPositionUSD
	if c.AmountUSD != nil && c.AmountUSD.IsPositive() && c.AmountUSD.LessThan(amount) {
		amount = *c.AmountUSD
	}
	available := b.cfg.PortfolioUSD.Add(b.ledger.DailyPnL()).Sub(b.ledger.CommittedUSD())
	if available.LessThan(amount) {
		logx.Infof("bot: insufficient balance for %s %s (need %s, have %s)",
			c.Action, c.Market, amount.StringFixed(2), available.StringFixed(2))
		return
	}

	req := ledger.OpenRequest{
		Market:       c.Market,
		Action:       strings.ToUpper(c.Action),
		Confidence:   c.ConfidenceValue(),
		Reasoning:    c.Reasoning,
		AmountUSD:    amount,
		TokenAddress: c.ContractAddress,
	}
	if c.EntryPrice != nil {
		req.EntryPrice = *c.EntryPrice
	}
	if c.TargetPrice != nil {
		req.TargetPrice = *c.TargetPrice
	}
	if c.StopLoss != nil {
		req.StopLoss = *c.StopLoss
	}
	if c.SlippageBps != nil {
		req.SlippageBps = *c.SlippageBps
	}

	if p, ok := b.ledger.Open(req); ok {
		logx.Infof("bot: opened %s %s at %s for %s USD", p.Action, p.Market, p.EntryPrice, p.AmountUSD)
	}
}

func (b *Bot) buildStateView(data *market.Data) *trader.StateView {
	open := b.ledger.OpenPositions()
	views := make([]trader.PositionView, 0, len(open))
	for _, p := range open {
		views = append(views, trader.PositionView{
			Market:       p.Market,
			Action:       p.Action,
			EntryPrice:   p.EntryPrice,
			TargetPrice:  p.TargetPrice,
			StopLoss:     p.StopLoss,
			CurrentPrice: trader.CurrentPrice(p.Market, data),
			ValueUSD:     p.AmountUSD,
		})
	}

	total := b.cfg.PortfolioUSD.Add(b.ledger.DailyPnL())
	available := total.Sub(b.ledger.CommittedUSD())

	return &trader.StateView{
		Market:            data,
		OpenPositions:     views,
		Wallet:            []trader.HoldingView{{Symbol: "USDC", ValueUSD: available}},
		TotalPortfolioUSD: total,
		AvailableUSD:      available,
		DailyPnL:          b.ledger.DailyPnL(),
		OpenCount:         b.ledger.OpenCount(),
		MaxOpenPositions:  b.cfg.MaxOpenPositions,
		SignalCount:       len(b.ledger.Signals()),
		AccuracyPct:       b.ledger.RecentAccuracy(accuracyWindow) * 100,
		MinConfidence:     b.cfg.MinConfidence,
		MaxPositionUSD:    b.cfg.MaxPositionUSD,
	}
}

func (b *Bot) reportDue() bool {
	if b.cfg.ReportInterval <= 0 {
		return false
	}
	if b.lastReport.IsZero() {
		b.lastReport = b.nowFn()
		return false
	}
	return b.nowFn().Sub(b.lastReport) >= b.cfg.ReportInterval
}

// flushReports writes the xlsx reports and mirrors new rows to Postgres.
// Data may be nil during shutdown; positions are then marked at entry.
func (b *Bot) flushReports(data *market.Data) {
	b.lastReport = b.nowFn()

	var lookup ledger.PriceLookup
	if data != nil {
		lookup = trader.PriceLookup(data)
	}
	rep := b.ledger.UnrealizedPnL(lookup)

	open := positionPtrs(b.ledger.OpenPositions())
	closed := positionPtrs(b.ledger.ClosedPositions())
	signals := b.ledger.Signals()

	if b.reports != nil {
		if len(open) > 0 {
			if _, err := b.reports.LogOpenPositions(open, &rep); err != nil {
				logx.Errorf("bot: open positions report: %v", err)
			}
		}
		if len(closed) > 0 {
			if _, err := b.reports.LogClosedPositions(closed); err != nil {
				logx.Errorf("bot: closed positions report: %v", err)
			}
		}
		if _, err := b.reports.LogPnLReport(rep, b.ledger.DailyPnL()); err != nil {
			logx.Errorf("bot: pnl report: %v", err)
		}
		if len(signals) > 0 {
			if _, err := b.reports.LogSignalHistory(signals); err != nil {
				logx.Errorf("bot: signal history report: %v", err)
			}
		}
		if _, err := b.reports.LogSummary(open, closed, b.ledger.DailyPnL(), &rep); err != nil {
			logx.Errorf("bot: summary report: %v", err)
		}
	}

	b.mirrorToStore(closed, signals)
}

func (b *Bot) mirrorToStore(closed []*ledger.Position, signals []ledger.SignalEntry) {
	if b.store == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	for _, p := range closed {
		if err := b.store.InsertClosedPosition(ctx, p); err != nil {
			logx.Errorf("bot: mirror closed position: %v", err)
		}
	}
	for ; b.mirroredSignals < len(signals); b.mirroredSignals++ {
		if err := b.store.InsertSignal(ctx, signals[b.mirroredSignals]); err != nil {
			logx.Errorf("bot: mirror signal: %v", err)
		}
	}
}

func (b *Bot) writeJournal(data *market.Data, proposed, accepted int, cycleErr error) {
	if b.journal == nil {
		return
	}
	rec := &journal.CycleRecord{
		PromptDigest:   b.cfg.PromptDigest,
		Proposed:       proposed,
		Accepted:       accepted,
		Rejected:       proposed - accepted,
		OpenPositions:  b.ledger.OpenCount(),
		DailyPnL:       b.ledger.DailyPnL(),
		TradingEnabled: b.ledger.TradingEnabled(),
		Success:        cycleErr == nil,
	}
	if cycleErr != nil {
		rec.ErrorMessage = cycleErr.Error()
	}
	if data != nil && accepted > 0 {
		rec.ActionsJSON = lastSignalsJSON(b.ledger.Signals(), accepted)
	}
	if _, err := b.journal.WriteCycle(rec); err != nil {
		logx.Errorf("bot: write journal: %v", err)
	}
}

func lastSignalsJSON(signals []ledger.SignalEntry, n int) string {
	if n > len(signals) {
		n = len(signals)
	}
	tail := signals[len(signals)-n:]
	parts := make([]json.RawMessage, 0, n)
	for _, s := range tail {
		if s.CandidateJSON != "" {
			parts = append(parts, json.RawMessage(s.CandidateJSON))
		}
	}
	out, err := json.Marshal(parts)
	if err != nil {
		return ""
	}
	return string(out)
}

func positionPtrs(positions []ledger.Position) []*ledger.Position {
	out := make([]*ledger.Position, 0, len(positions))
	for i := range positions {
		out = append(out, &positions[i])
	}
	return out
}

func sleepCtx(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
