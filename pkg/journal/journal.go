// Package journal persists one JSON record per decision cycle for audit and
// offline analysis of the trading loop.
package journal

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"
)

// CycleRecord captures an end-to-end decision cycle.
type CycleRecord struct {
	Timestamp      time.Time       `json:"timestamp"`
	CycleNumber    int             `json:"cycle_number"`
	PromptDigest   string          `json:"prompt_digest,omitempty"`
	ActionsJSON    string          `json:"actions_json,omitempty"`
	Proposed       int             `json:"proposed"`
	Accepted       int             `json:"accepted"`
	Rejected       int             `json:"rejected"`
	OpenPositions  int             `json:"open_positions"`
	DailyPnL       decimal.Decimal `json:"daily_pnl"`
	TradingEnabled bool            `json:"trading_enabled"`
	Success        bool            `json:"success"`
	ErrorMessage   string          `json:"error_message,omitempty"`
}

// Writer persists cycle records to a directory as JSON files.
type Writer struct {
	dir   string
	seq   int
	nowFn func() time.Time
}

// NewWriter constructs a journal writer, creating the directory if needed.
func NewWriter(dir string) *Writer {
	if dir == "" {
		dir = "journal"
	}
	_ = os.MkdirAll(dir, 0o755)
	return &Writer{dir: dir, nowFn: time.Now}
}

// WriteCycle writes a cycle record to a timestamped JSON file and returns
// the path written.
func (w *Writer) WriteCycle(rec *CycleRecord) (string, error) {
	if rec == nil {
		return "", fmt.Errorf("journal: nil record")
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = w.nowFn()
	}
	w.seq++
	rec.CycleNumber = w.seq
	name := fmt.Sprintf("cycle_%s_%05d.json", rec.Timestamp.UTC().Format("20060102_150405"), w.seq)
	path := filepath.Join(w.dir, name)
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}
