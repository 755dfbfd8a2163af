package trader

import (
	"fmt"
	"strings"

	"github.com/zeromicro/go-zero/core/logx"

	"github.com/Kshitij0O7/AI-crypto-trader-all-in-one/pkg/market"
)

// Validator applies business rules to candidate actions. Malformed input
// is never an error, it is a rejection.
type Validator struct {
	MinConfidence int
	Book          PositionBook
}

// Validate checks one candidate against the rule set, in order: base
// fields present, confidence at threshold, then kind-specific rules. On
// acceptance the returned candidate has a normalized action kind and, for
// trade entries, the resolved token contract address attached.
func (v *Validator) Validate(c Candidate, data *market.Data) (*Candidate, *Rejection) {
	reject := func(format string, args ...any) (*Candidate, *Rejection) {
		return nil, &Rejection{Candidate: c, Reason: fmt.Sprintf(format, args...)}
	}

	c.Action = strings.ToUpper(strings.TrimSpace(c.Action))
	if c.Action == "" || strings.TrimSpace(c.Market) == "" || c.Confidence == nil {
		return reject("missing base fields")
	}
	if *c.Confidence < v.MinConfidence {
		return reject("confidence %d%% below threshold %d%%", *c.Confidence, v.MinConfidence)
	}

	switch c.Action {
	case KindClose, KindHold, KindPartialClose:
		if c.Action != KindHold && !v.Book.HasOpen(c.Market) {
			return reject("no open position for %s", strings.ToUpper(c.Market))
		}
		return &c, nil

	case KindBuy, KindSell, KindMarketMake:
		if c.EntryPrice == nil || c.TargetPrice == nil || c.StopLoss == nil {
			return reject("missing price fields")
		}
		addr := ResolveTokenAddress(c.Market, data)
		if addr == "" {
			return reject("no contract address for %s", strings.ToUpper(c.Market))
		}
		c.ContractAddress = addr
		return &c, nil

	case KindAdjustStopLoss, KindAdjustTarget:
		if c.NewValue == nil {
			return reject("missing new_value")
		}
		if !v.Book.HasOpen(c.Market) {
			return reject("no open position for %s", strings.ToUpper(c.Market))
		}
		return &c, nil

	default:
		return reject("unknown action %q", c.Action)
	}
}

// ValidateAll filters a candidate list, logging each rejection.
func (v *Validator) ValidateAll(candidates []Candidate, data *market.Data) []Candidate {
	var accepted []Candidate
	for _, c := range candidates {
		ok, rej := v.Validate(c, data)
		if rej != nil {
			logx.Infof("trader: skipping %s %s: %s", c.Action, c.Market, rej.Reason)
			continue
		}
		accepted = append(accepted, *ok)
	}
	return accepted
}
