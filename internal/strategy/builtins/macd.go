package builtins

import (
	"fmt"

	"mockinvest/internal/domain"
	"mockinvest/internal/indicator"
	"mockinvest/internal/strategy"
)

// Compile-time interface check.
var _ strategy.Strategy = (*MACDStrategy)(nil)

// MACDStrategy is a trend-following strategy: buy while the MACD line sits
// above its signal line, sell while it sits below.
type MACDStrategy struct {
	fast   int
	slow   int
	signal int
}

// NewMACDStrategy creates a new MACDStrategy with the given fast, slow, and
// signal periods.
func NewMACDStrategy(fast, slow, signal int) *MACDStrategy {
	return &MACDStrategy{fast: fast, slow: slow, signal: signal}
}

// Name returns "macd".
func (s *MACDStrategy) Name() string {
	return "macd"
}

// Description summarizes the rule and its parameters.
func (s *MACDStrategy) Description() string {
	return fmt.Sprintf("MACD(%d/%d/%d): buy when MACD line > signal line, sell when below",
		s.fast, s.slow, s.signal)
}

// Decide compares the MACD line to its signal line.
func (s *MACDStrategy) Decide(prices []float64) domain.Action {
	v, ok := indicator.MACD(prices, s.fast, s.slow, s.signal)
	if !ok {
		return domain.ActionKeep
	}

	switch {
	case v.MACD > v.Signal:
		return domain.ActionBuy
	case v.MACD < v.Signal:
		return domain.ActionSell
	default:
		return domain.ActionKeep
	}
}
