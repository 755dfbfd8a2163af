package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "trader.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write trader.yaml: %v", err)
	}
	return path
}

func TestLoad_DefaultsAndDurations(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `
Env: test
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Trading.PortfolioSizeUSD != 10 {
		t.Fatalf("portfolio default, got %v", cfg.Trading.PortfolioSizeUSD)
	}
	if cfg.Trading.MaxPositionSizeUSD != 1.5 {
		t.Fatalf("max position default, got %v", cfg.Trading.MaxPositionSizeUSD)
	}
	if cfg.Trading.MaxOpenPositions != 2 {
		t.Fatalf("max open default, got %v", cfg.Trading.MaxOpenPositions)
	}
	if cfg.Trading.DailyLossLimitUSD != 3 {
		t.Fatalf("loss limit default, got %v", cfg.Trading.DailyLossLimitUSD)
	}
	if cfg.Trading.MinConfidence != 30 {
		t.Fatalf("min confidence default, got %v", cfg.Trading.MinConfidence)
	}
	if cfg.Trading.CycleInterval != time.Minute {
		t.Fatalf("cycle interval, got %s", cfg.Trading.CycleInterval)
	}
	if cfg.Trading.ActionPacing != 2*time.Second {
		t.Fatalf("action pacing, got %s", cfg.Trading.ActionPacing)
	}
	if cfg.Trading.ReportInterval != 5*time.Minute {
		t.Fatalf("report interval, got %s", cfg.Trading.ReportInterval)
	}
	if cfg.Report.Dir != "logs" || cfg.Journal.Dir != "journal" {
		t.Fatalf("output dirs, got %q %q", cfg.Report.Dir, cfg.Journal.Dir)
	}
	if cfg.BaseDir() != dir {
		t.Fatalf("base dir, got %q", cfg.BaseDir())
	}
}

func TestLoad_EnvOverridesBeatFileValues(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `
Trading:
  PortfolioSizeUSD: 100
  MinConfidence: 50
`)

	t.Setenv("PORTFOLIO_SIZE_USD", "25")
	t.Setenv("MAX_POSITION_SIZE_USD", "5")
	t.Setenv("MAX_OPEN_POSITIONS", "4")
	t.Setenv("DAILY_LOSS_LIMIT_USD", "7.5")
	t.Setenv("MIN_CONFIDENCE_THRESHOLD", "40")
	t.Setenv("BITQUERY_API_KEY", "bq-test")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Trading.PortfolioSizeUSD != 25 {
		t.Fatalf("portfolio override, got %v", cfg.Trading.PortfolioSizeUSD)
	}
	if cfg.Trading.MaxPositionSizeUSD != 5 {
		t.Fatalf("max position override, got %v", cfg.Trading.MaxPositionSizeUSD)
	}
	if cfg.Trading.MaxOpenPositions != 4 {
		t.Fatalf("max open override, got %v", cfg.Trading.MaxOpenPositions)
	}
	if cfg.Trading.DailyLossLimitUSD != 7.5 {
		t.Fatalf("loss limit override, got %v", cfg.Trading.DailyLossLimitUSD)
	}
	if cfg.Trading.MinConfidence != 40 {
		t.Fatalf("min confidence override, got %v", cfg.Trading.MinConfidence)
	}
	if cfg.Market.APIKey != "bq-test" {
		t.Fatalf("bitquery key override, got %q", cfg.Market.APIKey)
	}
}

func TestLoad_HydratesLLMSection(t *testing.T) {
	dir := t.TempDir()
	llmYAML := []byte(`
api_key: ${OPENAI_API_KEY}
default_model: gpt-4o
timeout: 2s
`)
	if err := os.WriteFile(filepath.Join(dir, "llm.yaml"), llmYAML, 0o600); err != nil {
		t.Fatalf("write llm.yaml: %v", err)
	}
	path := writeConfig(t, dir, `
LLM:
  File: llm.yaml
`)

	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.LLM.Value == nil {
		t.Fatalf("LLM section not hydrated")
	}
	if got := cfg.LLM.Value.APIKey; got != "sk-test" {
		t.Fatalf("LLM.APIKey not expanded, got %q", got)
	}
	if got := cfg.LLM.Value.DefaultModel; got != "gpt-4o" {
		t.Fatalf("LLM.DefaultModel got %q", got)
	}
}

func TestValidate_Bounds(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Env: "test",
			Trading: TradingConf{
				PortfolioSizeUSD:   10,
				MaxPositionSizeUSD: 1.5,
				MaxOpenPositions:   2,
				DailyLossLimitUSD:  3,
				MinConfidence:      30,
			},
			PromptPath: "etc/prompts/decision.tpl",
		}
	}

	if err := valid().Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	cfg := valid()
	cfg.Env = "staging"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected env validation error")
	}

	cfg = valid()
	cfg.Trading.MaxPositionSizeUSD = 20
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected position size validation error")
	}

	cfg = valid()
	cfg.Trading.MinConfidence = 101
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected confidence validation error")
	}

	cfg = valid()
	cfg.Trading.DailyLossLimitUSD = 0
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected loss limit validation error")
	}
}

func TestMustLoad_PanicsOnMissingFile(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic for missing config file")
		}
	}()
	MustLoad(filepath.Join(t.TempDir(), "missing.yaml"))
}

func TestDefaultPath(t *testing.T) {
	got := DefaultPath()
	if !filepath.IsAbs(got) {
		t.Fatalf("default path not absolute: %q", got)
	}
	if filepath.Base(got) != "trader.yaml" {
		t.Fatalf("default path, got %q", got)
	}
}

func TestLoad_RejectsBadDuration(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `
Trading:
  CycleInterval: soon
`)
	if _, err := Load(path); err == nil {
		t.Fatalf("expected duration parse error")
	}
}

func TestLedgerConfig(t *testing.T) {
	cfg := &Config{Trading: TradingConf{
		MaxOpenPositions:   3,
		DailyLossLimitUSD:  4.5,
		MaxPositionSizeUSD: 2,
	}}
	lc := cfg.LedgerConfig()
	if lc.MaxOpenPositions != 3 {
		t.Fatalf("max open, got %d", lc.MaxOpenPositions)
	}
	if lc.DailyLossLimitUSD.String() != "4.5" {
		t.Fatalf("loss limit, got %s", lc.DailyLossLimitUSD)
	}
	if lc.DefaultPositionUSD.String() != "2" {
		t.Fatalf("default position, got %s", lc.DefaultPositionUSD)
	}
}
