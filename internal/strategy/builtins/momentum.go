package builtins

import (
	"fmt"

	"mockinvest/internal/domain"
	"mockinvest/internal/indicator"
	"mockinvest/internal/strategy"
)

// Compile-time interface check.
var _ strategy.Strategy = (*MomentumStrategy)(nil)

// MomentumStrategy is a trend-strength strategy: buy when the rate of change
// over the lookback period exceeds the threshold, sell when it falls below
// the negated threshold.
type MomentumStrategy struct {
	period    int
	threshold float64
}

// NewMomentumStrategy creates a new MomentumStrategy with the given lookback
// period and rate-of-change threshold (0.02 means 2%).
func NewMomentumStrategy(period int, threshold float64) *MomentumStrategy {
	return &MomentumStrategy{period: period, threshold: threshold}
}

// Name returns "momentum".
func (s *MomentumStrategy) Name() string {
	return "momentum"
}

// Description summarizes the rule and its parameters.
func (s *MomentumStrategy) Description() string {
	return fmt.Sprintf("Momentum (%d bars, %.1f%%): buy when %d-bar return exceeds the threshold",
		s.period, s.threshold*100, s.period)
}

// Decide checks the lookback return against the threshold.
func (s *MomentumStrategy) Decide(prices []float64) domain.Action {
	m, ok := indicator.Momentum(prices, s.period)
	if !ok {
		return domain.ActionKeep
	}

	switch {
	case m > s.threshold:
		return domain.ActionBuy
	case m < -s.threshold:
		return domain.ActionSell
	default:
		return domain.ActionKeep
	}
}
