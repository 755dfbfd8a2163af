package cli

import (
	"fmt"
	"strings"

	"github.com/zeromicro/go-zero/core/logx"

	"github.com/Kshitij0O7/AI-crypto-trader-all-in-one/internal/config"
	"github.com/Kshitij0O7/AI-crypto-trader-all-in-one/pkg/confkit"
)

// ConfigSummaryLines returns human readable lines describing the loaded app config.
func ConfigSummaryLines(cfg *config.Config) []string {
	if cfg == nil {
		return []string{"Configuration: <nil>"}
	}

	lines := []string{
		fmt.Sprintf("Environment: %s", cfg.Env),
		fmt.Sprintf("Portfolio: %.2f USD (max position %.2f USD, max open %d)",
			cfg.Trading.PortfolioSizeUSD, cfg.Trading.MaxPositionSizeUSD, cfg.Trading.MaxOpenPositions),
		fmt.Sprintf("Daily loss limit: %.2f USD", cfg.Trading.DailyLossLimitUSD),
		fmt.Sprintf("Min confidence: %d%%", cfg.Trading.MinConfidence),
		fmt.Sprintf("Cycle / pacing / report: %s / %s / %s",
			cfg.Trading.CycleInterval, cfg.Trading.ActionPacing, cfg.Trading.ReportInterval),
		fmt.Sprintf("Bitquery: %s", presence(strings.TrimSpace(cfg.Market.APIKey) != "")),
		fmt.Sprintf("Postgres: %s", presence(cfg.Postgres.DSN != "")),
		fmt.Sprintf("Reports: %s", cfg.Report.Dir),
		fmt.Sprintf("Journal: %s", cfg.Journal.Dir),
		fmt.Sprintf("Snapshot: %s", cfg.Snapshot.Path),
		fmt.Sprintf("Prompt template: %s", cfg.PromptPath),
		sectionLine("LLM config", cfg.LLM),
	}

	return lines
}

// LogConfigSummary emits the configuration summary using logx.
func LogConfigSummary(cfg *config.Config) {
	lines := ConfigSummaryLines(cfg)
	if len(lines) == 0 {
		return
	}
	logx.Info("configuration summary")
	for _, line := range lines {
		logx.Infof("config • %s", line)
	}
}

func presence(ok bool) string {
	if ok {
		return "configured"
	}
	return "not configured"
}

func sectionLine[T any](name string, section confkit.Section[T]) string {
	switch {
	case strings.TrimSpace(section.File) != "":
		return fmt.Sprintf("%s: %s", name, section.File)
	case section.Value != nil:
		return fmt.Sprintf("%s: inline", name)
	default:
		return fmt.Sprintf("%s: not configured", name)
	}
}
