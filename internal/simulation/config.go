package simulation

import (
	"fmt"
	"math"

	"github.com/yourusername/true-odds/internal/config"
	"github.com/yourusername/true-odds/internal/models"
)

// Distribution selects the goal-count model
type Distribution string

const (
	DistributionPoisson          Distribution = "poisson"
	DistributionNegativeBinomial Distribution = "negative_binomial"
)

const (
	// MaxIterations bounds a single run
	MaxIterations = 1_000_000
	// MinRate floors a scoring rate once boosts have been applied
	MinRate = 0.1
	// DefaultDispersion is the Negative Binomial size r; variance = mu + mu^2/r
	DefaultDispersion = 10.0
	// DefaultFirstHalfShare is the share of a side's goals expected before half time
	DefaultFirstHalfShare = 0.45
	// DefaultBatchSize is the cancellation and seeding granularity
	DefaultBatchSize = 10_000
)

// Config holds the parameters of one simulation run
type Config struct {
	Distribution   Distribution `json:"distribution"`
	Iterations     int          `json:"iterations"`
	HomeLambda     float64      `json:"home_lambda"`
	AwayLambda     float64      `json:"away_lambda"`
	HomeBoost      float64      `json:"home_boost"`
	AwayBoost      float64      `json:"away_boost"`
	HomeAdvantage  float64      `json:"home_advantage"`
	Dispersion     float64      `json:"dispersion"`
	FirstHalfShare float64      `json:"first_half_share"`
	Seed           int64        `json:"seed"`
	Workers        int          `json:"workers"`
	BatchSize      int          `json:"batch_size"`
}

// DefaultConfig returns a Poisson run of 100k iterations with no adjustments
func DefaultConfig() Config {
	return Config{
		Distribution:   DistributionPoisson,
		Iterations:     100_000,
		Dispersion:     DefaultDispersion,
		FirstHalfShare: DefaultFirstHalfShare,
		BatchSize:      DefaultBatchSize,
	}
}

// FromConfig converts app config plus the externally derived lambdas
func FromConfig(cfg *config.SimulationConfig, homeLambda, awayLambda float64) (Config, error) {
	if cfg == nil {
		return Config{}, fmt.Errorf("%w: simulation config is required", models.ErrInvalidConfig)
	}
	sc := Config{
		Distribution:   Distribution(cfg.Distribution),
		Iterations:     cfg.Iterations,
		HomeLambda:     homeLambda,
		AwayLambda:     awayLambda,
		HomeAdvantage:  cfg.HomeAdvantage,
		Dispersion:     cfg.Dispersion,
		FirstHalfShare: cfg.FirstHalfShare,
		Seed:           cfg.Seed,
		Workers:        cfg.Workers,
		BatchSize:      cfg.BatchSize,
	}
	return sc, sc.Validate()
}

// Validate rejects configs the sampler cannot run
func (c Config) Validate() error {
	switch c.Distribution {
	case DistributionPoisson, DistributionNegativeBinomial:
	default:
		return fmt.Errorf("%w: unknown distribution %q", models.ErrInvalidConfig, c.Distribution)
	}
	if c.Iterations < 1 || c.Iterations > MaxIterations {
		return fmt.Errorf("%w: iterations must be between 1 and %d, got %d", models.ErrInvalidConfig, MaxIterations, c.Iterations)
	}
	if c.HomeLambda < 0 || c.AwayLambda < 0 || math.IsNaN(c.HomeLambda) || math.IsNaN(c.AwayLambda) {
		return fmt.Errorf("%w: lambdas cannot be negative (home %.3f, away %.3f)", models.ErrInvalidConfig, c.HomeLambda, c.AwayLambda)
	}
	if c.Distribution == DistributionNegativeBinomial && c.Dispersion < 0 {
		return fmt.Errorf("%w: dispersion cannot be negative", models.ErrInvalidConfig)
	}
	if c.FirstHalfShare < 0 || c.FirstHalfShare > 1 {
		return fmt.Errorf("%w: first half share must be between 0 and 1", models.ErrInvalidConfig)
	}
	if c.Workers < 0 {
		return fmt.Errorf("%w: workers cannot be negative", models.ErrInvalidConfig)
	}
	if c.BatchSize < 0 {
		return fmt.Errorf("%w: batch size cannot be negative", models.ErrInvalidConfig)
	}
	return nil
}

// EffectiveRates applies boosts and home advantage to the base lambdas.
// Unadjusted lambdas are returned untouched.
func (c Config) EffectiveRates() (home, away float64) {
	home, away = c.HomeLambda, c.AwayLambda
	if adj := c.HomeBoost + c.HomeAdvantage; adj != 0 {
		home = math.Max(MinRate, home+adj)
	}
	if c.AwayBoost != 0 {
		away = math.Max(MinRate, away+c.AwayBoost)
	}
	return home, away
}

func (c Config) dispersion() float64 {
	if c.Dispersion <= 0 {
		return DefaultDispersion
	}
	return c.Dispersion
}

func (c Config) batchSize() int {
	if c.BatchSize <= 0 {
		return DefaultBatchSize
	}
	return c.BatchSize
}

func (c Config) firstHalfShare() float64 {
	if c.FirstHalfShare <= 0 {
		return DefaultFirstHalfShare
	}
	return c.FirstHalfShare
}
