package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"mockinvest/internal/backtest"
	"mockinvest/internal/config"
	"mockinvest/internal/report"
	"mockinvest/internal/store"
	"mockinvest/internal/strategy/builtins"
	"mockinvest/internal/util"
)

func main() {
	cfgPath := flag.String("config", "config/mockinvest.yaml", "path to the config file")
	flag.Parse()

	if p := os.Getenv("MOCKINVEST_CONFIG"); p != "" {
		*cfgPath = p
	}

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := util.NewLogger(cfg.Logging.Level, cfg.Logging.Format)
	util.SetDefault(logger)

	db, err := store.NewSQLiteStore(cfg.Storage.SQLitePath)
	if err != nil {
		log.Fatalf("failed to open database %q: %v", cfg.Storage.SQLitePath, err)
	}
	defer db.Close()

	ledger := store.NewCSVLedger(cfg.Storage.LedgerPath)

	app := &app{
		cfg:      cfg,
		cfgPath:  *cfgPath,
		in:       os.Stdin,
		out:      os.Stdout,
		bars:     store.NewParquetStore(cfg.Storage.DataDir),
		results:  db,
		account:  db,
		ledger:   ledger,
		registry: builtins.FromConfig(cfg.Strategies),
		reporter: report.NewReporter(os.Stdout),
		runner:   backtest.NewRunner(ledger),
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := app.run(ctx); err != nil && ctx.Err() == nil {
		log.Fatalf("error: %v", err)
	}
}
