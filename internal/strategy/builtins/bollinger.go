package builtins

import (
	"fmt"

	"mockinvest/internal/domain"
	"mockinvest/internal/indicator"
	"mockinvest/internal/strategy"
)

// Compile-time interface check.
var _ strategy.Strategy = (*Bollinger)(nil)

// Bollinger is a volatility mean-reversion strategy: buy when the price
// drops below the lower band, sell when it rises above the upper band.
type Bollinger struct {
	period int
	numStd float64
}

// NewBollinger creates a new Bollinger strategy with the given period and
// standard deviation multiplier.
func NewBollinger(period int, numStd float64) *Bollinger {
	return &Bollinger{period: period, numStd: numStd}
}

// Name returns "bollinger".
func (s *Bollinger) Name() string {
	return "bollinger"
}

// Description summarizes the rule and its parameters.
func (s *Bollinger) Description() string {
	return fmt.Sprintf("Bollinger bands (%d, %.1f std): buy below lower band, sell above upper band",
		s.period, s.numStd)
}

// Decide compares the latest price to the band levels.
func (s *Bollinger) Decide(prices []float64) domain.Action {
	b, ok := indicator.BollingerBands(prices, s.period, s.numStd)
	if !ok || len(prices) == 0 {
		return domain.ActionKeep
	}

	price := prices[len(prices)-1]
	switch {
	case price < b.Lower:
		return domain.ActionBuy
	case price > b.Upper:
		return domain.ActionSell
	default:
		return domain.ActionKeep
	}
}
