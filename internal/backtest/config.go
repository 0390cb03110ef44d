// Package backtest replays finished fixtures through the simulator and the
// calibration layer and scores the forecasts against what actually happened.
package backtest

import (
	"fmt"
	"math"

	"github.com/yourusername/true-odds/internal/config"
	"github.com/yourusername/true-odds/internal/models"
	"github.com/yourusername/true-odds/internal/simulation"
)

// Config holds backtest parameters
type Config struct {
	Iterations int     `json:"iterations"`
	Seed       int64   `json:"seed"`
	MinEdge    float64 `json:"min_edge"`
	FlatStake  float64 `json:"flat_stake"`
}

// DefaultConfig returns a seeded 20k iteration replay staking one unit
// on every price with at least a 3% edge
func DefaultConfig() Config {
	return Config{
		Iterations: 20_000,
		Seed:       1,
		MinEdge:    0.03,
		FlatStake:  1,
	}
}

// FromConfig converts app config to backtest config
func FromConfig(cfg *config.BacktestConfig) (Config, error) {
	if cfg == nil {
		return Config{}, fmt.Errorf("%w: backtest config is required", models.ErrInvalidConfig)
	}
	c := Config{
		Iterations: cfg.Iterations,
		Seed:       cfg.Seed,
		MinEdge:    cfg.MinEdge,
		FlatStake:  cfg.FlatStake,
	}
	return c, c.Validate()
}

// Validate validates backtest config parameters
func (c Config) Validate() error {
	if c.Iterations < 1 || c.Iterations > simulation.MaxIterations {
		return fmt.Errorf("%w: backtest iterations must be between 1 and %d", models.ErrInvalidConfig, simulation.MaxIterations)
	}
	if c.MinEdge < 0 || math.IsNaN(c.MinEdge) {
		return fmt.Errorf("%w: min edge cannot be negative", models.ErrInvalidConfig)
	}
	if !(c.FlatStake > 0) || math.IsInf(c.FlatStake, 0) {
		return fmt.Errorf("%w: flat stake must be positive", models.ErrInvalidConfig)
	}
	return nil
}

// seedFor derives a per-fixture seed. A zero base seed stays unseeded.
func (c Config) seedFor(index int) int64 {
	if c.Seed == 0 {
		return 0
	}
	return c.Seed + int64(index)
}
