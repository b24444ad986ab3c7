// Package strategy defines the decision contract for trading strategies and
// provides a Registry for managing multiple strategy implementations.
package strategy

import (
	"sort"

	"mockinvest/internal/domain"
)

// Strategy is the interface that all trading strategies must implement.
// Decide is called once per bar with the closing-price history up to and
// including the current bar; looking ahead is not possible by construction.
// A strategy must return KEEP whenever its indicators are undefined because
// the history is still too short.
type Strategy interface {
	// Name returns the unique identifier for this strategy.
	Name() string

	// Description returns a short human-readable summary of the rule and its
	// parameters. Presentation only; not part of the decision contract.
	Description() string

	// Decide maps a closing-price history to a trading action.
	Decide(prices []float64) domain.Action
}

// Registry holds a named collection of strategies for lookup and enumeration.
type Registry struct {
	strategies map[string]Strategy
}

// NewRegistry creates an empty strategy Registry.
func NewRegistry() *Registry {
	return &Registry{
		strategies: make(map[string]Strategy),
	}
}

// Register adds a strategy to the registry, keyed by its Name().
func (r *Registry) Register(s Strategy) {
	r.strategies[s.Name()] = s
}

// Get retrieves a strategy by name. The second return value indicates whether
// the strategy was found.
func (r *Registry) Get(name string) (Strategy, bool) {
	s, ok := r.strategies[name]
	return s, ok
}

// List returns a sorted slice of all registered strategy names.
func (r *Registry) List() []string {
	names := make([]string, 0, len(r.strategies))
	for name := range r.strategies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
