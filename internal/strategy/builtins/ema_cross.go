package builtins

import (
	"fmt"

	"mockinvest/internal/domain"
	"mockinvest/internal/indicator"
	"mockinvest/internal/strategy"
)

// Compile-time interface check.
var _ strategy.Strategy = (*EMACross)(nil)

// EMACross is an exponential moving average crossover strategy. It reacts
// faster than SMACross because recent prices carry more weight.
type EMACross struct {
	fast int
	slow int
}

// NewEMACross creates a new EMACross strategy with the specified fast and
// slow periods.
func NewEMACross(fast, slow int) *EMACross {
	return &EMACross{fast: fast, slow: slow}
}

// Name returns "ema-cross".
func (s *EMACross) Name() string {
	return "ema-cross"
}

// Description summarizes the rule and its parameters.
func (s *EMACross) Description() string {
	return fmt.Sprintf("EMA crossover (%d/%d): buy when EMA(%d) > EMA(%d), sell when below",
		s.fast, s.slow, s.fast, s.slow)
}

// Decide compares the fast and slow EMAs over the price history.
func (s *EMACross) Decide(prices []float64) domain.Action {
	fast, okF := indicator.EMA(prices, s.fast)
	slow, okS := indicator.EMA(prices, s.slow)
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
