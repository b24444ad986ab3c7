// Package builtins provides the built-in strategy implementations that ship
// with the simulator.
package builtins

import (
	"fmt"

	"mockinvest/internal/domain"
	"mockinvest/internal/indicator"
	"mockinvest/internal/strategy"
)

// Compile-time interface check.
var _ strategy.Strategy = (*SMACross)(nil)

// SMACross is a simple moving average crossover strategy: buy while the
// fast-period SMA sits above the slow-period SMA, sell while it sits below.
type SMACross struct {
	fast int
	slow int
}

// NewSMACross creates a new SMACross strategy with the specified fast and
// slow moving average periods.
func NewSMACross(fast, slow int) *SMACross {
	return &SMACross{fast: fast, slow: slow}
}

// Name returns "sma-cross".
func (s *SMACross) Name() string {
	return "sma-cross"
}

// Description summarizes the rule and its parameters.
func (s *SMACross) Description() string {
	return fmt.Sprintf("SMA crossover (%d/%d): buy when SMA(%d) > SMA(%d), sell when below",
		s.fast, s.slow, s.fast, s.slow)
}

// Decide compares the fast and slow SMAs over the price history.
func (s *SMACross) Decide(prices []float64) domain.Action {
	fast, okF := indicator.SMA(prices, s.fast)
	slow, okS := indicator.SMA(prices, s.slow)
	if !okF || !okS {
		return domain.ActionKeep
	}

	switch {
	case fast > slow:
		return domain.ActionBuy
	case fast < slow:
		return domain.ActionSell
	default:
		return domain.ActionKeep
	}
}
