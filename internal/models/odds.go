package models

import (
	"fmt"
	"sort"
)

// MinBookmakerOdds is the lowest decimal price accepted in an odds set
const MinBookmakerOdds = 1.01

// BookmakerOddsSet maps market keys to user supplied decimal odds
type BookmakerOddsSet map[MarketKey]float64

// Validate checks every price is a usable decimal price
func (o BookmakerOddsSet) Validate() error {
	for _, key := range o.Keys() {
		if err := ValidateOdds(o[key]); err != nil {
			return fmt.Errorf("market %s: %w", key, err)
		}
		if o[key] < MinBookmakerOdds {
			return fmt.Errorf("market %s: %w: %.4f below %.2f", key, ErrInvalidOdds, o[key], MinBookmakerOdds)
		}
	}
	return nil
}

// Keys returns market keys sorted for deterministic iteration
func (o BookmakerOddsSet) Keys() []MarketKey {
	keys := make([]MarketKey, 0, len(o))
	for k := range o {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// ImpliedProbability returns the naive 1/odds probability, without vig removal
func (o BookmakerOddsSet) ImpliedProbability(key MarketKey) (float64, bool) {
	odds, ok := o[key]
	if !ok || odds <= 1.0 {
		return 0, false
	}
	return 1.0 / odds, true
}

// ValidateOdds rejects prices at or below evens-minus-stake
func ValidateOdds(odds float64) error {
	if odds <= 1.0 {
		return fmt.Errorf("%w: %.4f must be greater than 1.0", ErrInvalidOdds, odds)
	}
	return nil
}

// MarketProbabilityTable holds tabulated outcome frequencies for one run
type MarketProbabilityTable struct {
	Probabilities map[MarketKey]float64 `json:"probabilities"`
	Iterations    int                   `json:"iterations"`
}

// NewMarketProbabilityTable creates an empty table
func NewMarketProbabilityTable(iterations int) MarketProbabilityTable {
	return MarketProbabilityTable{
		Probabilities: make(map[MarketKey]float64, MarketCount),
		Iterations:    iterations,
	}
}

// Get returns the probability for a market
func (t MarketProbabilityTable) Get(key MarketKey) (float64, bool) {
	p, ok := t.Probabilities[key]
	return p, ok
}

// Sum adds the probabilities of the given markets
func (t MarketProbabilityTable) Sum(keys ...MarketKey) float64 {
	total := 0.0
	for _, k := range keys {
		total += t.Probabilities[k]
	}
	return total
}

// Clone returns a deep copy
func (t MarketProbabilityTable) Clone() MarketProbabilityTable {
	out := NewMarketProbabilityTable(t.Iterations)
	for k, v := range t.Probabilities {
		out.Probabilities[k] = v
	}
	return out
}

// CalibratedOdds maps market keys to decimal odds derived from calibrated probabilities
type CalibratedOdds map[MarketKey]float64
