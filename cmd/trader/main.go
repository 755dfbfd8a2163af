package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/shopspring/decimal"
	"github.com/zeromicro/go-zero/core/logx"

	"github.com/Kshitij0O7/AI-crypto-trader-all-in-one/internal/cli"
	"github.com/Kshitij0O7/AI-crypto-trader-all-in-one/internal/config"
	"github.com/Kshitij0O7/AI-crypto-trader-all-in-one/internal/repo"
	"github.com/Kshitij0O7/AI-crypto-trader-all-in-one/pkg/bot"
	"github.com/Kshitij0O7/AI-crypto-trader-all-in-one/pkg/confkit"
	"github.com/Kshitij0O7/AI-crypto-trader-all-in-one/pkg/journal"
	"github.com/Kshitij0O7/AI-crypto-trader-all-in-one/pkg/ledger"
	llmpkg "github.com/Kshitij0O7/AI-crypto-trader-all-in-one/pkg/llm"
	marketpkg "github.com/Kshitij0O7/AI-crypto-trader-all-in-one/pkg/market"
	"github.com/Kshitij0O7/AI-crypto-trader-all-in-one/pkg/report"
	"github.com/Kshitij0O7/AI-crypto-trader-all-in-one/pkg/trader"
)

func fatalf(format string, args ...interface{}) {
	logx.Errorf(format, args...)
	os.Exit(1)
}

func main() {
	var (
		configPath = flag.String("f", "", "path to trader configuration (defaults to etc/trader.yaml in the repo root)")
		promptPath = flag.String("prompt", "", "override path to the decision prompt template")
	)
	flag.Parse()
	logx.MustSetup(logx.LogConf{})
	logx.DisableStat()

	confkit.LoadDotenvOnce()

	path := *configPath
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		fatalf("load config: %v", err)
	}
	cli.LogConfigSummary(cfg)

	llmCfg := cfg.LLM.Value
	if llmCfg == nil {
		llmCfg, err = llmpkg.DefaultConfig()
		if err != nil {
			fatalf("llm config: %v", err)
		}
	}
	llmClient, err := llmpkg.NewClient(llmCfg)
	if err != nil {
		fatalf("build llm client: %v", err)
	}
	defer llmClient.Close()

	tmplPath := cfg.ResolvePromptPath()
	if *promptPath != "" {
		tmplPath = *promptPath
	}
	tmpl, err := llmpkg.NewPromptTemplate(tmplPath, nil)
	if err != nil {
		fatalf("load prompt template: %v", err)
	}

	proposer := trader.NewLLMProposer(llmClient, tmpl, trader.WithModel(llmCfg.DefaultModel))

	marketOpts := []marketpkg.Option{}
	if cfg.Market.APIKey != "" {
		marketOpts = append(marketOpts, marketpkg.WithAPIKey(cfg.Market.APIKey))
	}
	if cfg.Market.BaseURL != "" {
		marketOpts = append(marketOpts, marketpkg.WithBaseURL(cfg.Market.BaseURL))
	}
	gateway := marketpkg.NewBitqueryGateway(marketpkg.WithClient(marketpkg.NewClient(marketOpts...)))

	book := ledger.New(cfg.LedgerConfig())
	if err := book.LoadSnapshot(cfg.Snapshot.Path); err != nil {
		logx.Errorf("load snapshot %s: %v", cfg.Snapshot.Path, err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store := repo.Open(cfg.Postgres.DSN)
	if store != nil {
		if err := store.EnsureSchema(ctx); err != nil {
			logx.Errorf("postgres schema: %v, continuing without persistence", err)
			store = nil
		}
	}

	b, err := bot.New(bot.Config{
		CycleInterval:    cfg.Trading.CycleInterval,
		ActionPacing:     cfg.Trading.ActionPacing,
		ReportInterval:   cfg.Trading.ReportInterval,
		PortfolioUSD:     decimal.NewFromFloat(cfg.Trading.PortfolioSizeUSD),
		MaxPositionUSD:   decimal.NewFromFloat(cfg.Trading.MaxPositionSizeUSD),
		MaxOpenPositions: cfg.Trading.MaxOpenPositions,
		MinConfidence:    cfg.Trading.MinConfidence,
		SnapshotPath:     cfg.Snapshot.Path,
		PromptDigest:     proposer.PromptDigest(),
	}, bot.Deps{
		Gateway:  gateway,
		Strategy: proposer,
		Ledger:   book,
		Reports:  report.NewSink(cfg.Report.Dir),
		Journal:  journal.NewWriter(cfg.Journal.Dir),
		Store:    store,
	})
	if err != nil {
		fatalf("build bot: %v", err)
	}

	logx.Infof("starting trading loop with model=%s", llmCfg.DefaultModel)
	if err := b.Run(ctx); err != nil {
		fatalf("run loop: %v", err)
	}
	logx.Info("trading loop stopped")
}
