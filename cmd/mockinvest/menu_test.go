package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"mockinvest/internal/backtest"
	"mockinvest/internal/config"
	"mockinvest/internal/domain"
	"mockinvest/internal/report"
	"mockinvest/internal/store"
	"mockinvest/internal/strategy/builtins"
)

func newTestApp(t *testing.T, input string) (*app, *bytes.Buffer) {
	t.Helper()
	dir := t.TempDir()

	cfg := config.Default()
	cfg.Storage.DataDir = filepath.Join(dir, "data")
	cfg.Storage.SQLitePath = filepath.Join(dir, "test.db")
	cfg.Storage.LedgerPath = filepath.Join(dir, "trades.csv")

	db, err := store.NewSQLiteStore(cfg.Storage.SQLitePath)
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	ledger := store.NewCSVLedger(cfg.Storage.LedgerPath)
	out := &bytes.Buffer{}

	return &app{
		cfg:      cfg,
		cfgPath:  filepath.Join(dir, "config.yaml"),
		in:       strings.NewReader(input),
		out:      out,
		bars:     store.NewParquetStore(cfg.Storage.DataDir),
		results:  db,
		account:  db,
		ledger:   ledger,
		registry: builtins.FromConfig(cfg.Strategies),
		reporter: report.NewReporter(out),
		runner:   backtest.NewRunner(ledger),
	}, out
}

func seedBars(t *testing.T, a *app, n int) {
	t.Helper()
	bars := make([]domain.Bar, n)
	for i := range bars {
		p := 100.0 + float64(i)
		bars[i] = domain.Bar{
			Symbol:    "AAPL",
			Timestamp: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i),
			Open:      p, High: p, Low: p, Close: p,
			Volume: 1000,
		}
	}
	if err := a.bars.WriteBars(context.Background(), bars); err != nil {
		t.Fatalf("WriteBars: %v", err)
	}
}

func TestMenuExit(t *testing.T) {
	a, out := newTestApp(t, "0\n")
	if err := a.run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(out.String(), "Mock Investing") {
		t.Errorf("menu header missing:\n%s", out.String())
	}
}

func TestMenuBacktestFlow(t *testing.T) {
	// Run a full backtest from the menu: pick AAPL, pick sma-cross, accept
	// the default dates and cash, decline the balance update, and exit.
	input := strings.Join([]string{
		"2",         // main menu: run backtest
		"AAPL",      // symbol
		"sma-cross", // strategy
		"",          // start date (default)
		"",          // end date (default)
		"",          // initial cash (default)
		"",          // fee rate (default)
		"",          // cooldown bars (default)
		"",          // order ratio (default)
		"n",         // don't apply equity to account
		"0",         // exit
	}, "\n") + "\n"

	a, out := newTestApp(t, input)
	seedBars(t, a, 30)

	if err := a.run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}

	got := out.String()
	if !strings.Contains(got, "=== AAPL / sma-cross ===") {
		t.Errorf("result header missing:\n%s", got)
	}
	if !strings.Contains(got, "saved as result #1") {
		t.Errorf("save confirmation missing:\n%s", got)
	}

	// The result must have been persisted.
	res, err := a.results.GetResult(context.Background(), 1)
	if err != nil {
		t.Fatalf("GetResult: %v", err)
	}
	if res.Symbol != "AAPL" || res.Strategy != "sma-cross" {
		t.Errorf("stored result = %s/%s, want AAPL/sma-cross", res.Symbol, res.Strategy)
	}
	// A monotonically rising series makes the SMA cross buy and hold until
	// liquidation, so at least one trade hit the ledger.
	trades, err := a.ledger.ReadAll(context.Background())
	if err != nil {
		t.Fatalf("ledger ReadAll: %v", err)
	}
	if len(trades) == 0 {
		t.Error("expected ledger entries after the backtest")
	}
}

func TestMenuAccountDeposit(t *testing.T) {
	input := strings.Join([]string{
		"1",     // main menu: account
		"1",     // deposit
		"50000", // amount
		"0",     // exit
	}, "\n") + "\n"

	a, out := newTestApp(t, input)
	if err := a.run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(out.String(), "deposited 50,000.00") {
		t.Errorf("deposit confirmation missing:\n%s", out.String())
	}

	bal, err := a.account.Balance(context.Background())
	if err != nil {
		t.Fatalf("Balance: %v", err)
	}
	if bal != 50000 {
		t.Errorf("balance = %v, want 50000", bal)
	}
}

func TestMenuSettingsValidation(t *testing.T) {
	// An invalid order ratio must be rejected and not persisted.
	input := strings.Join([]string{
		"4", // settings
		"1", // simulation settings
		"",  // fee rate (default)
		"",  // cooldown (default)
		"5", // order ratio: invalid, above 1
		"0", // exit
	}, "\n") + "\n"

	a, out := newTestApp(t, input)
	if err := a.run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(out.String(), "order_ratio") {
		t.Errorf("validation error missing:\n%s", out.String())
	}
	if a.cfg.Simulation.OrderRatio != 0.3 {
		t.Errorf("OrderRatio = %v, want unchanged 0.3", a.cfg.Simulation.OrderRatio)
	}
}

func TestMenuStrategySettings(t *testing.T) {
	input := strings.Join([]string{
		"4",         // settings
		"2",         // strategy parameters
		"sma-cross", // strategy
		"8",         // fast period
		"21",        // slow period
		"0",         // exit
	}, "\n") + "\n"

	a, out := newTestApp(t, input)
	if err := a.run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}

	if got := a.cfg.Strategies.SMACross; got.Fast != 8 || got.Slow != 21 {
		t.Errorf("SMACross = %+v, want fast 8 slow 21", got)
	}

	// The registry must be rebuilt so the next backtest picks up the new
	// periods.
	s, ok := a.registry.Get("sma-cross")
	if !ok {
		t.Fatal("sma-cross missing from rebuilt registry")
	}
	if desc := s.Description(); !strings.Contains(desc, "8") || !strings.Contains(desc, "21") {
		t.Errorf("rebuilt strategy description = %q, want 8/21 periods", desc)
	}

	// The new parameters must survive a reload from the saved file.
	reloaded, err := config.Load(a.cfgPath)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := reloaded.Strategies.SMACross; got.Fast != 8 || got.Slow != 21 {
		t.Errorf("reloaded SMACross = %+v, want fast 8 slow 21", got)
	}
	if !strings.Contains(out.String(), "settings saved") {
		t.Errorf("save confirmation missing:\n%s", out.String())
	}
}

func TestMenuStrategySettingsValidation(t *testing.T) {
	// A fast period at or above the slow period must be rejected and must
	// not touch the config or the registry.
	input := strings.Join([]string{
		"4",         // settings
		"2",         // strategy parameters
		"sma-cross", // strategy
		"30",        // fast period: invalid, above slow
		"",          // slow period (default 20)
		"0",         // exit
	}, "\n") + "\n"

	a, out := newTestApp(t, input)
	if err := a.run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(out.String(), "sma_cross") {
		t.Errorf("validation error missing:\n%s", out.String())
	}
	if got := a.cfg.Strategies.SMACross; got.Fast != 5 || got.Slow != 20 {
		t.Errorf("SMACross = %+v, want unchanged defaults 5/20", got)
	}
}
