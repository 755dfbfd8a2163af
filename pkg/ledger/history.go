package ledger

import (
	"strings"
	"time"
)

// Signal outcomes. A signal starts pending and is marked when its position
// closes.
const (
	OutcomePending = "pending"
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// SignalEntry records one validated action for accuracy tracking.
type SignalEntry struct {
	Timestamp     time.Time `json:"timestamp"`
	Action        string    `json:"action"`
	Market        string    `json:"market"`
	Confidence    int       `json:"confidence"`
	Reasoning     string    `json:"reasoning"`
	Outcome       string    `json:"outcome"`
	CandidateJSON string    `json:"candidate_json,omitempty"`
}

// AppendSignal records a validated action with a pending outcome.
func (l *Ledger) AppendSignal(action, market string, confidence int, reasoning, candidateJSON string) {
	l.history = append(l.history, SignalEntry{
		Timestamp:     l.nowFn(),
		Action:        action,
		Market:        market,
		Confidence:    confidence,
		Reasoning:     reasoning,
		Outcome:       OutcomePending,
		CandidateJSON: candidateJSON,
	})
}

// markSignalOutcome resolves the most recent pending entry/exit signal for
// the market. A close with positive PnL marks success, otherwise failure.
func (l *Ledger) markSignalOutcome(market string, profitable bool) {
	outcome := OutcomeFailure
	if profitable {
		outcome = OutcomeSuccess
	}
	for i := len(l.history) - 1; i >= 0; i-- {
		e := &l.history[i]
		if e.Outcome == OutcomePending && strings.EqualFold(e.Market, market) {
			e.Outcome = outcome
			return
		}
	}
}

// RecentAccuracy returns the success rate over the last n resolved signals,
// in [0,1]. It returns 0 when no signal has resolved yet.
func (l *Ledger) RecentAccuracy(n int) float64 {
	if n <= 0 {
		return 0
	}
	resolved, success := 0, 0
	for i := len(l.history) - 1; i >= 0 && resolved < n; i-- {
		switch l.history[i].Outcome {
		case OutcomeSuccess:
			resolved++
			success++
		case OutcomeFailure:
			resolved++
		}
	}
	if resolved == 0 {
		return 0
	}
	return float64(success) / float64(resolved)
}

// Signals returns a copy of the signal history, oldest first.
func (l *Ledger) Signals() []SignalEntry {
	out := make([]SignalEntry, len(l.history))
	copy(out, l.history)
	return out
}
