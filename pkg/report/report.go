// Package report exports trading activity to dated xlsx workbooks, one
// workbook per category per day. Workbooks are append-only: re-running a
// flush on the same day adds rows after the existing ones.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/Kshitij0O7/AI-crypto-trader-all-in-one/pkg/ledger"
)

const (
	sheetOpenPositions   = "Open Positions"
	sheetClosedPositions = "Closed Positions"
	sheetPnLReports      = "PnL Reports"
	sheetSignalHistory   = "Signal History"
	sheetSummary         = "Summary"

	timestampLayout = "2006-01-02 15:04:05"
	maxReasoningLen = 100
)

// Sink writes report workbooks under a single directory.
type Sink struct {
	dir   string
	nowFn func() time.Time
}

// NewSink creates the report directory if needed and returns a sink over it.
func NewSink(dir string) *Sink {
	if dir == "" {
		dir = "logs"
	}
	_ = os.MkdirAll(dir, 0o755)
	return &Sink{dir: dir, nowFn: time.Now}
}

// LogOpenPositions appends one row per open position, marked against the
// supplied PnL report when a matching entry exists.
func (s *Sink) LogOpenPositions(positions []*ledger.Position, rep *ledger.PnLReport) (string, error) {
	headers := []string{
		"Timestamp", "Position ID", "Market", "Asset ID", "Action", "Entry Price",
		"Current Price", "Target Price", "Stop Loss", "Amount USD",
		"PnL USD", "PnL %", "Confidence", "Reasoning",
	}
	marks := map[string]ledger.PositionPnL{}
	if rep != nil {
		for _, m := range rep.Positions {
			marks[m.Market] = m
		}
	}
	rows := make([][]any, 0, len(positions))
	for _, p := range positions {
		current := p.EntryPrice
		pnlUSD, pnlPct := decimal.Zero, decimal.Zero
		if m, ok := marks[p.Market]; ok {
			current, pnlUSD, pnlPct = m.CurrentPrice, m.PnLUSD, m.PnLPct
		}
		rows = append(rows, []any{
			p.OpenedAt.Format(timestampLayout),
			p.ID,
			p.Market,
			assetID(p.TokenAddress),
			p.Action,
			cell(p.EntryPrice),
			cell(current),
			cell(p.TargetPrice),
			cell(p.StopLoss),
			cell(p.AmountUSD),
			cell(pnlUSD),
			cell(pnlPct),
			p.Confidence,
			truncate(p.Reasoning, maxReasoningLen),
		})
	}
	return s.appendRows("open_positions", sheetOpenPositions, headers, rows)
}

// LogClosedPositions appends one row per closed position.
func (s *Sink) LogClosedPositions(positions []*ledger.Position) (string, error) {
	headers := []string{
		"Timestamp", "Position ID", "Market", "Asset ID", "Action", "Entry Price",
		"Exit Price", "Target Price", "Stop Loss", "Amount USD",
		"PnL USD", "PnL %", "Close Reason", "Confidence", "Reasoning",
	}
	rows := make([][]any, 0, len(positions))
	for _, p := range positions {
		ts := p.ClosedAt
		if ts.IsZero() {
			ts = p.OpenedAt
		}
		rows = append(rows, []any{
			ts.Format(timestampLayout),
			p.ID,
			p.Market,
			assetID(p.TokenAddress),
			p.Action,
			cell(p.EntryPrice),
			cell(p.ClosePrice),
			cell(p.TargetPrice),
			cell(p.StopLoss),
			cell(p.AmountUSD),
			cell(p.PnLUSD),
			cell(p.PnLPct),
			closeReason(p.CloseReason),
			p.Confidence,
			truncate(p.Reasoning, maxReasoningLen),
		})
	}
	return s.appendRows("closed_positions", sheetClosedPositions, headers, rows)
}

// LogPnLReport appends one aggregate mark-to-market row.
func (s *Sink) LogPnLReport(rep ledger.PnLReport, dailyPnL decimal.Decimal) (string, error) {
	headers := []string{
		"Timestamp", "Total Open Positions", "Total Unrealized PnL USD",
		"Daily Realized PnL USD", "Total PnL USD",
	}
	row := []any{
		s.nowFn().Format(timestampLayout),
		len(rep.Positions),
		cell(rep.TotalPnL),
		cell(dailyPnL),
		cell(dailyPnL.Add(rep.TotalPnL)),
	}
	return s.appendRows("pnl_reports", sheetPnLReports, headers, [][]any{row})
}

// LogSignalHistory appends one row per recorded signal.
func (s *Sink) LogSignalHistory(signals []ledger.SignalEntry) (string, error) {
	headers := []string{
		"Timestamp", "Signal", "Outcome", "Market", "Asset ID", "Action", "Confidence",
	}
	rows := make([][]any, 0, len(signals))
	for _, sig := range signals {
		rows = append(rows, []any{
			sig.Timestamp.Format(timestampLayout),
			truncate(sig.CandidateJSON, maxReasoningLen),
			sig.Outcome,
			sig.Market,
			"N/A",
			sig.Action,
			sig.Confidence,
		})
	}
	return s.appendRows("signal_history", sheetSignalHistory, headers, rows)
}

// LogSummary appends the aggregate metric rows for one report cycle.
func (s *Sink) LogSummary(open, closed []*ledger.Position, dailyPnL decimal.Decimal, rep *ledger.PnLReport) (string, error) {
	headers := []string{"Metric", "Value", "Timestamp"}
	ts := s.nowFn().Format(timestampLayout)

	realized := decimal.Zero
	for _, p := range closed {
		realized = realized.Add(p.PnLUSD)
	}
	unrealized := decimal.Zero
	if rep != nil {
		unrealized = rep.TotalPnL
	}
	rows := [][]any{
		{"Total Open Positions", len(open), ts},
		{"Total Closed Positions", len(closed), ts},
		{"Daily Realized PnL USD", cell(dailyPnL), ts},
		{"Total Realized PnL USD", cell(realized), ts},
		{"Total Unrealized PnL USD", cell(unrealized), ts},
		{"Total PnL USD", cell(dailyPnL.Add(unrealized)), ts},
	}
	return s.appendRows("trading_summary", sheetSummary, headers, rows)
}

// appendRows opens (or creates) the dated workbook for prefix, makes sure the
// sheet exists with its header row, and appends rows after the current last
// row.
func (s *Sink) appendRows(prefix, sheet string, headers []string, rows [][]any) (string, error) {
	path := filepath.Join(s.dir, fmt.Sprintf("%s_%s.xlsx", prefix, s.nowFn().Format("20060102")))

	f, created, err := openWorkbook(path)
	if err != nil {
		return "", fmt.Errorf("report: open %s: %w", path, err)
	}
	defer f.Close()

	if err := ensureSheet(f, sheet, headers); err != nil {
		return "", fmt.Errorf("report: prepare %s: %w", sheet, err)
	}

	existing, err := f.GetRows(sheet)
	if err != nil {
		return "", fmt.Errorf("report: read %s: %w", sheet, err)
	}
	next := len(existing) + 1
	for _, row := range rows {
		cellRef, err := excelize.CoordinatesToCellName(1, next)
		if err != nil {
			return "", err
		}
		if err := f.SetSheetRow(sheet, cellRef, &row); err != nil {
			return "", fmt.Errorf("report: write row: %w", err)
		}
		next++
	}

	var saveErr error
	if created {
		saveErr = f.SaveAs(path)
	} else {
		saveErr = f.Save()
	}
	if saveErr != nil {
		return "", fmt.Errorf("report: save %s: %w", path, saveErr)
	}
	return path, nil
}

func openWorkbook(path string) (*excelize.File, bool, error) {
	if _, err := os.Stat(path); err == nil {
		f, err := excelize.OpenFile(path)
		return f, false, err
	}
	return excelize.NewFile(), true, nil
}

// ensureSheet creates the named sheet with a styled header row when it does
// not exist yet, and drops excelize's default Sheet1 once a real sheet is in
// place.
func ensureSheet(f *excelize.File, sheet string, headers []string) error {
	if idx, _ := f.GetSheetIndex(sheet); idx >= 0 {
		return nil
	}
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	style, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"366092"}, Pattern: 1},
	})
	if err != nil {
		return err
	}
	for i, h := range headers {
		cellRef, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cellRef, h); err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, cellRef, cellRef, style); err != nil {
			return err
		}
	}
	if sheet != "Sheet1" {
		if idx, _ := f.GetSheetIndex("Sheet1"); idx >= 0 {
			_ = f.DeleteSheet("Sheet1")
		}
	}
	return nil
}

// cell renders a decimal as a float so the spreadsheet cell stays numeric.
func cell(d decimal.Decimal) float64 {
	v, _ := d.Float64()
	return v
}

func assetID(addr string) string {
	if addr == "" {
		return "N/A"
	}
	return addr
}

func closeReason(reason string) string {
	if reason == "" {
		return "N/A"
	}
	return reason
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
