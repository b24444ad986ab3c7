package builtins

import (
	"fmt"

	"mockinvest/internal/domain"
	"mockinvest/internal/indicator"
	"mockinvest/internal/strategy"
)

// Compile-time interface check.
var _ strategy.Strategy = (*RSIStrategy)(nil)

// RSIStrategy is a mean-reversion strategy on the relative strength index:
// buy in the oversold zone, sell in the overbought zone.
type RSIStrategy struct {
	period     int
	oversold   float64
	overbought float64
}

// NewRSIStrategy creates a new RSIStrategy with the given period and
// oversold/overbought thresholds.
func NewRSIStrategy(period int, oversold, overbought float64) *RSIStrategy {
	return &RSIStrategy{period: period, oversold: oversold, overbought: overbought}
}

// Name returns "rsi".
func (s *RSIStrategy) Name() string {
	return "rsi"
}

// Description summarizes the rule and its parameters.
func (s *RSIStrategy) Description() string {
	return fmt.Sprintf("RSI(%d): buy below %.0f (oversold), sell above %.0f (overbought)",
		s.period, s.oversold, s.overbought)
}

// Decide checks the RSI against the oversold and overbought thresholds.
func (s *RSIStrategy) Decide(prices []float64) domain.Action {
	rsi, ok := indicator.RSI(prices, s.period)
	if !ok {
		return domain.ActionKeep
	}

	switch {
	case rsi < s.oversold:
		return domain.ActionBuy
	case rsi > s.overbought:
		return domain.ActionSell
	default:
		return domain.ActionKeep
	}
}
