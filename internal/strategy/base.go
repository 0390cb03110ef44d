package strategy

import (
	"fmt"
	"math"

	"github.com/yourusername/true-odds/internal/models"
)

// BaseStrategy provides the shared price and confidence filters
type BaseStrategy struct {
	MinOdds       float64
	MaxOdds       float64
	MinConfidence float64
}

// ValidateOdds ensures odds are within the configured window
func (b *BaseStrategy) ValidateOdds(odds float64) error {
	if err := models.ValidateOdds(odds); err != nil {
		return err
	}
	if b.MinOdds > 0 && odds < b.MinOdds {
		return fmt.Errorf("odds %.2f below minimum %.2f", odds, b.MinOdds)
	}
	if b.MaxOdds > 0 && odds > b.MaxOdds {
		return fmt.Errorf("odds %.2f above maximum %.2f", odds, b.MaxOdds)
	}
	return nil
}

// ConfidentEnough reports whether the engines are sure enough to act
func (b *BaseStrategy) ConfidentEnough(confidence float64) bool {
	return confidence >= b.MinConfidence
}

// CalculateExpectedValue returns the expected profit of a back bet
func (b *BaseStrategy) CalculateExpectedValue(probability float64, odds float64, stake float64) float64 {
	if probability <= 0 || odds <= 1 || stake <= 0 {
		return 0
	}
	winProfit := (odds - 1.0) * stake
	return probability*winProfit - (1.0-probability)*stake
}

// NormalizeProbability clamps p into [0,1]
func (b *BaseStrategy) NormalizeProbability(p float64) float64 {
	if math.IsNaN(p) || math.IsInf(p, 0) {
		return 0
	}
	return math.Max(0, math.Min(1, p))
}
