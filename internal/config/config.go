package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ---------------------------------------------------------------------------
// Configuration structs
// ---------------------------------------------------------------------------

// Config is the top-level configuration for the simulator.
type Config struct {
	Storage    Storage    `yaml:"storage"`
	Logging    Logging    `yaml:"logging"`
	Alpaca     Alpaca     `yaml:"alpaca"`
	Market     Market     `yaml:"market"`
	Simulation Simulation `yaml:"simulation"`
	Strategies Strategies `yaml:"strategies"`
}

// Storage holds paths for data persistence.
type Storage struct {
	DataDir    string `yaml:"data_dir"`
	SQLitePath string `yaml:"sqlite_path"`
	LedgerPath string `yaml:"ledger_path"`
}

// Logging configures the application logger.
type Logging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Alpaca holds credentials and endpoints for the Alpaca market-data API.
type Alpaca struct {
	APIKey    string `yaml:"api_key"`
	APISecret string `yaml:"api_secret"`
	DataURL   string `yaml:"data_url"`
}

// Market selects the symbols and history range to download into the local
// bar cache.
type Market struct {
	Symbols   []string `yaml:"symbols"`
	StartDate string   `yaml:"start_date"`
}

// Simulation defines the default execution parameters for a backtest run.
// The CLI offers them as defaults and lets the user override per run.
type Simulation struct {
	InitialCash  float64 `yaml:"initial_cash"`
	FeeRate      float64 `yaml:"fee_rate"`
	CooldownBars int     `yaml:"cooldown_bars"`
	OrderRatio   float64 `yaml:"order_ratio"`
}

// Strategies holds the per-strategy parameters. Missing sections fall back
// to the documented defaults; values are validated once at load time, never
// inside a strategy's Decide.
type Strategies struct {
	SMACross  SMACrossParams  `yaml:"sma_cross"`
	EMACross  EMACrossParams  `yaml:"ema_cross"`
	RSI       RSIParams       `yaml:"rsi"`
	MACD      MACDParams      `yaml:"macd"`
	Bollinger BollingerParams `yaml:"bollinger"`
	Momentum  MomentumParams  `yaml:"momentum"`
}

// SMACrossParams configures the SMA crossover strategy.
type SMACrossParams struct {
	Fast int `yaml:"fast"`
	Slow int `yaml:"slow"`
}

// EMACrossParams configures the EMA crossover strategy.
type EMACrossParams struct {
	Fast int `yaml:"fast"`
	Slow int `yaml:"slow"`
}

// RSIParams configures the RSI strategy.
type RSIParams struct {
	Period     int     `yaml:"period"`
	Oversold   float64 `yaml:"oversold"`
	Overbought float64 `yaml:"overbought"`
}

// MACDParams configures the MACD strategy.
type MACDParams struct {
	Fast   int `yaml:"fast"`
	Slow   int `yaml:"slow"`
	Signal int `yaml:"signal"`
}

// BollingerParams configures the Bollinger bands strategy.
type BollingerParams struct {
	Period int     `yaml:"period"`
	StdDev float64 `yaml:"std_dev"`
}

// MomentumParams configures the momentum strategy.
type MomentumParams struct {
	Period    int     `yaml:"period"`
	Threshold float64 `yaml:"threshold"`
}

// ---------------------------------------------------------------------------
// Defaults and loading
// ---------------------------------------------------------------------------

// Default returns the configuration with all documented defaults applied.
func Default() *Config {
	return &Config{
		Storage: Storage{
			DataDir:    "data",
			SQLitePath: "data/mockinvest.db",
			LedgerPath: "data/trades.csv",
		},
		Logging: Logging{
			Level:  "info",
			Format: "text",
		},
		Market: Market{
			Symbols:   []string{"AAPL", "TSLA", "GOOGL", "MSFT", "NVDA"},
			StartDate: "2024-01-01",
		},
		Simulation: Simulation{
			InitialCash:  1000000,
			FeeRate:      0.0005,
			CooldownBars: 0,
			OrderRatio:   0.3,
		},
		Strategies: Strategies{
			SMACross:  SMACrossParams{Fast: 5, Slow: 20},
			EMACross:  EMACrossParams{Fast: 12, Slow: 26},
			RSI:       RSIParams{Period: 14, Oversold: 30, Overbought: 70},
			MACD:      MACDParams{Fast: 12, Slow: 26, Signal: 9},
			Bollinger: BollingerParams{Period: 20, StdDev: 2.0},
			Momentum:  MomentumParams{Period: 10, Threshold: 0.02},
		},
	}
}

// Load reads the YAML configuration file at the given path over the default
// configuration, applies environment variable overrides, and validates the
// result. A missing file is not an error; the defaults are used as-is.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading config %q: %w", path, err)
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %q: %w", path, err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %q: %w", path, err)
	}
	return cfg, nil
}

// Save writes the configuration to disk as YAML. Used by the interactive
// settings menu to persist parameter changes.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config %q: %w", path, err)
	}
	return nil
}

// applyEnvOverrides checks well-known environment variables and overrides the
// corresponding configuration fields when they are set.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("DATA_DIR"); v != "" {
		cfg.Storage.DataDir = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Storage.SQLitePath = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}

	// Standard Alpaca env vars (canonical names used by the SDK).
	if v := os.Getenv("APCA_API_KEY_ID"); v != "" {
		cfg.Alpaca.APIKey = v
	}
	if v := os.Getenv("APCA_API_SECRET_KEY"); v != "" {
		cfg.Alpaca.APISecret = v
	}
}

// ---------------------------------------------------------------------------
// Validation
// ---------------------------------------------------------------------------

// Validate checks the simulation and strategy parameters. It runs once at
// load time; strategies trust their parameters afterwards.
func (c *Config) Validate() error {
	if c.Simulation.FeeRate < 0 || c.Simulation.FeeRate >= 1 {
		return fmt.Errorf("simulation.fee_rate must be in [0, 1), got %v", c.Simulation.FeeRate)
	}
	if c.Simulation.CooldownBars < 0 {
		return fmt.Errorf("simulation.cooldown_bars must be >= 0, got %d", c.Simulation.CooldownBars)
	}
	if c.Simulation.OrderRatio <= 0 || c.Simulation.OrderRatio > 1 {
		return fmt.Errorf("simulation.order_ratio must be in (0, 1], got %v", c.Simulation.OrderRatio)
	}

	s := c.Strategies
	if s.SMACross.Fast <= 0 || s.SMACross.Slow <= s.SMACross.Fast {
		return fmt.Errorf("strategies.sma_cross: need 0 < fast < slow, got %d/%d", s.SMACross.Fast, s.SMACross.Slow)
	}
	if s.EMACross.Fast <= 0 || s.EMACross.Slow <= s.EMACross.Fast {
		return fmt.Errorf("strategies.ema_cross: need 0 < fast < slow, got %d/%d", s.EMACross.Fast, s.EMACross.Slow)
	}
	if s.RSI.Period <= 0 {
		return fmt.Errorf("strategies.rsi: period must be > 0, got %d", s.RSI.Period)
	}
	if s.RSI.Oversold >= s.RSI.Overbought {
		return fmt.Errorf("strategies.rsi: oversold %v must be below overbought %v", s.RSI.Oversold, s.RSI.Overbought)
	}
	if s.MACD.Fast <= 0 || s.MACD.Slow <= s.MACD.Fast || s.MACD.Signal <= 0 {
		return fmt.Errorf("strategies.macd: need 0 < fast < slow and signal > 0, got %d/%d/%d", s.MACD.Fast, s.MACD.Slow, s.MACD.Signal)
	}
	if s.Bollinger.Period <= 0 || s.Bollinger.StdDev <= 0 {
		return fmt.Errorf("strategies.bollinger: period and std_dev must be > 0, got %d/%v", s.Bollinger.Period, s.Bollinger.StdDev)
	}
	if s.Momentum.Period <= 0 || s.Momentum.Threshold < 0 {
		return fmt.Errorf("strategies.momentum: need period > 0 and threshold >= 0, got %d/%v", s.Momentum.Period, s.Momentum.Threshold)
	}
	return nil
}
