package builtins

import (
	"mockinvest/internal/config"
	"mockinvest/internal/strategy"
)

// FromConfig builds a registry containing all built-in strategies,
// parameterized from the given (already validated) configuration.
func FromConfig(cfg config.Strategies) *strategy.Registry {
	r := strategy.NewRegistry()
	r.Register(NewSMACross(cfg.SMACross.Fast, cfg.SMACross.Slow))
	r.Register(NewEMACross(cfg.EMACross.Fast, cfg.EMACross.Slow))
	r.Register(NewRSIStrategy(cfg.RSI.Period, cfg.RSI.Oversold, cfg.RSI.Overbought))
	r.Register(NewMACDStrategy(cfg.MACD.Fast, cfg.MACD.Slow, cfg.MACD.Signal))
	r.Register(NewBollinger(cfg.Bollinger.Period, cfg.Bollinger.StdDev))
	r.Register(NewMomentumStrategy(cfg.Momentum.Period, cfg.Momentum.Threshold))
	return r
}
