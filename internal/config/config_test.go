package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func clearEnvOverrides(t *testing.T) {
	t.Helper()
	for _, k := range []string{"DATA_DIR", "SQLITE_PATH", "LOG_LEVEL", "APCA_API_KEY_ID", "APCA_API_SECRET_KEY"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Simulation.InitialCash != 1000000 {
		t.Errorf("Simulation.InitialCash = %v, want 1000000", cfg.Simulation.InitialCash)
	}
	if cfg.Simulation.FeeRate != 0.0005 {
		t.Errorf("Simulation.FeeRate = %v, want 0.0005", cfg.Simulation.FeeRate)
	}
	if cfg.Simulation.CooldownBars != 0 {
		t.Errorf("Simulation.CooldownBars = %d, want 0", cfg.Simulation.CooldownBars)
	}
	if cfg.Simulation.OrderRatio != 0.3 {
		t.Errorf("Simulation.OrderRatio = %v, want 0.3", cfg.Simulation.OrderRatio)
	}
	if cfg.Strategies.SMACross.Fast != 5 || cfg.Strategies.SMACross.Slow != 20 {
		t.Errorf("Strategies.SMACross = %+v, want fast=5 slow=20", cfg.Strategies.SMACross)
	}
	if cfg.Strategies.RSI.Oversold != 30 || cfg.Strategies.RSI.Overbought != 70 {
		t.Errorf("Strategies.RSI = %+v, want oversold=30 overbought=70", cfg.Strategies.RSI)
	}

	// Defaults must pass their own validation.
	if err := cfg.Validate(); err != nil {
		t.Errorf("Default().Validate() returned error: %v", err)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	clearEnvOverrides(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	if err != nil {
		t.Fatalf("Load() on missing file returned error: %v", err)
	}
	if cfg.Simulation.InitialCash != 1000000 {
		t.Errorf("Simulation.InitialCash = %v, want default 1000000", cfg.Simulation.InitialCash)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want default %q", cfg.Logging.Level, "info")
	}
}

func TestLoadYAML(t *testing.T) {
	clearEnvOverrides(t)

	yamlContent := []byte(`
storage:
  data_dir: "/tmp/mockinvest/data"
  sqlite_path: "/tmp/mockinvest/mockinvest.db"
  ledger_path: "/tmp/mockinvest/trades.csv"
logging:
  level: "debug"
  format: "json"
alpaca:
  api_key: "test-key"
  api_secret: "test-secret"
market:
  symbols: ["AAPL", "TSLA"]
  start_date: "2023-06-01"
simulation:
  initial_cash: 500000
  fee_rate: 0.001
  cooldown_bars: 3
  order_ratio: 0.5
strategies:
  sma_cross:
    fast: 10
    slow: 30
`)

	tmpFile, err := os.CreateTemp("", "mockinvest-config-*.yaml")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	defer os.Remove(tmpFile.Name())

	if _, err := tmpFile.Write(yamlContent); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}
	if err := tmpFile.Close(); err != nil {
		t.Fatalf("failed to close temp file: %v", err)
	}

	cfg, err := Load(tmpFile.Name())
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	// -- Storage --
	if cfg.Storage.DataDir != "/tmp/mockinvest/data" {
		t.Errorf("Storage.DataDir = %q, want %q", cfg.Storage.DataDir, "/tmp/mockinvest/data")
	}
	if cfg.Storage.LedgerPath != "/tmp/mockinvest/trades.csv" {
		t.Errorf("Storage.LedgerPath = %q, want %q", cfg.Storage.LedgerPath, "/tmp/mockinvest/trades.csv")
	}

	// -- Logging --
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "debug")
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("Logging.Format = %q, want %q", cfg.Logging.Format, "json")
	}

	// -- Alpaca --
	if cfg.Alpaca.APIKey != "test-key" {
		t.Errorf("Alpaca.APIKey = %q, want %q", cfg.Alpaca.APIKey, "test-key")
	}

	// -- Market --
	if len(cfg.Market.Symbols) != 2 || cfg.Market.Symbols[0] != "AAPL" {
		t.Errorf("Market.Symbols = %v, want [AAPL TSLA]", cfg.Market.Symbols)
	}
	if cfg.Market.StartDate != "2023-06-01" {
		t.Errorf("Market.StartDate = %q, want %q", cfg.Market.StartDate, "2023-06-01")
	}

	// -- Simulation --
	if cfg.Simulation.InitialCash != 500000 {
		t.Errorf("Simulation.InitialCash = %v, want 500000", cfg.Simulation.InitialCash)
	}
	if cfg.Simulation.FeeRate != 0.001 {
		t.Errorf("Simulation.FeeRate = %v, want 0.001", cfg.Simulation.FeeRate)
	}
	if cfg.Simulation.CooldownBars != 3 {
		t.Errorf("Simulation.CooldownBars = %d, want 3", cfg.Simulation.CooldownBars)
	}

	// -- Strategies: overridden section plus untouched defaults --
	if cfg.Strategies.SMACross.Fast != 10 || cfg.Strategies.SMACross.Slow != 30 {
		t.Errorf("Strategies.SMACross = %+v, want fast=10 slow=30", cfg.Strategies.SMACross)
	}
	if cfg.Strategies.MACD.Fast != 12 || cfg.Strategies.MACD.Slow != 26 || cfg.Strategies.MACD.Signal != 9 {
		t.Errorf("Strategies.MACD = %+v, want defaults 12/26/9", cfg.Strategies.MACD)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	clearEnvOverrides(t)

	yamlContent := []byte(`
alpaca:
  api_key: "yaml-key"
  api_secret: "yaml-secret"
storage:
  data_dir: "/original/data"
`)

	tmpFile, err := os.CreateTemp("", "mockinvest-config-env-*.yaml")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	defer os.Remove(tmpFile.Name())

	if _, err := tmpFile.Write(yamlContent); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}
	tmpFile.Close()

	t.Setenv("APCA_API_KEY_ID", "env-key")
	t.Setenv("DATA_DIR", "/env/data")

	cfg, err := Load(tmpFile.Name())
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	if cfg.Alpaca.APIKey != "env-key" {
		t.Errorf("Alpaca.APIKey = %q, want %q (env override)", cfg.Alpaca.APIKey, "env-key")
	}
	// api_secret should remain from YAML since no env override was set.
	if cfg.Alpaca.APISecret != "yaml-secret" {
		t.Errorf("Alpaca.APISecret = %q, want %q (from YAML)", cfg.Alpaca.APISecret, "yaml-secret")
	}
	if cfg.Storage.DataDir != "/env/data" {
		t.Errorf("Storage.DataDir = %q, want %q (env override)", cfg.Storage.DataDir, "/env/data")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "negative fee rate",
			mutate:  func(c *Config) { c.Simulation.FeeRate = -0.01 },
			wantErr: "fee_rate",
		},
		{
			name:    "fee rate of one",
			mutate:  func(c *Config) { c.Simulation.FeeRate = 1.0 },
			wantErr: "fee_rate",
		},
		{
			name:    "negative cooldown",
			mutate:  func(c *Config) { c.Simulation.CooldownBars = -1 },
			wantErr: "cooldown_bars",
		},
		{
			name:    "zero order ratio",
			mutate:  func(c *Config) { c.Simulation.OrderRatio = 0 },
			wantErr: "order_ratio",
		},
		{
			name:    "order ratio above one",
			mutate:  func(c *Config) { c.Simulation.OrderRatio = 1.5 },
			wantErr: "order_ratio",
		},
		{
			name:    "sma fast not below slow",
			mutate:  func(c *Config) { c.Strategies.SMACross = SMACrossParams{Fast: 20, Slow: 20} },
			wantErr: "sma_cross",
		},
		{
			name:    "rsi oversold above overbought",
			mutate:  func(c *Config) { c.Strategies.RSI = RSIParams{Period: 14, Oversold: 80, Overbought: 70} },
			wantErr: "rsi",
		},
		{
			name:    "macd zero signal",
			mutate:  func(c *Config) { c.Strategies.MACD = MACDParams{Fast: 12, Slow: 26, Signal: 0} },
			wantErr: "macd",
		},
		{
			name:    "bollinger zero std dev",
			mutate:  func(c *Config) { c.Strategies.Bollinger = BollingerParams{Period: 20, StdDev: 0} },
			wantErr: "bollinger",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("Validate() = nil, want error")
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("Validate() error = %q, want mention of %q", err, tc.wantErr)
			}
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	clearEnvOverrides(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg := Default()
	cfg.Simulation.CooldownBars = 7
	cfg.Strategies.Momentum.Threshold = 0.05

	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load after Save: %v", err)
	}
	if got.Simulation.CooldownBars != 7 {
		t.Errorf("CooldownBars = %d, want 7", got.Simulation.CooldownBars)
	}
	if got.Strategies.Momentum.Threshold != 0.05 {
		t.Errorf("Momentum.Threshold = %v, want 0.05", got.Strategies.Momentum.Threshold)
	}
}
