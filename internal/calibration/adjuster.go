// Package calibration shrinks simulated market probabilities towards an
// accuracy benchmark expressed as a target rank probability score.
package calibration

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/true-odds/internal/config"
	"github.com/yourusername/true-odds/internal/logger"
	"github.com/yourusername/true-odds/internal/models"
)

// Defaults mirror the published benchmark
const (
	DefaultTargetRPS     = 0.2012
	DefaultMinFactor     = 0.75
	DefaultMaxFactor     = 0.95
	DefaultMinIterations = 1000
	DefaultOddsFloor     = 0.001
)

// Config holds calibration parameters
type Config struct {
	TargetRPS     float64 `json:"target_rps"`
	MinFactor     float64 `json:"min_factor"`
	MaxFactor     float64 `json:"max_factor"`
	MinIterations int     `json:"min_iterations"`
	OddsFloor     float64 `json:"odds_floor"`
}

// DefaultConfig returns the benchmark calibration
func DefaultConfig() Config {
	return Config{
		TargetRPS:     DefaultTargetRPS,
		MinFactor:     DefaultMinFactor,
		MaxFactor:     DefaultMaxFactor,
		MinIterations: DefaultMinIterations,
		OddsFloor:     DefaultOddsFloor,
	}
}

// FromConfig converts app config to calibration config
func FromConfig(cfg *config.CalibrationConfig) (Config, error) {
	if cfg == nil {
		return Config{}, fmt.Errorf("%w: calibration config is required", models.ErrInvalidConfig)
	}
	c := Config{
		TargetRPS:     cfg.TargetRPS,
		MinFactor:     cfg.MinFactor,
		MaxFactor:     cfg.MaxFactor,
		MinIterations: cfg.MinIterations,
		OddsFloor:     cfg.OddsFloor,
	}
	return c, c.Validate()
}

// Validate rejects unusable calibration parameters
func (c Config) Validate() error {
	if c.TargetRPS <= 0 || c.TargetRPS >= 1 {
		return fmt.Errorf("%w: target rps must be in (0, 1), got %.4f", models.ErrInvalidConfig, c.TargetRPS)
	}
	if c.MinFactor <= 0 || c.MaxFactor > 1 || c.MinFactor > c.MaxFactor {
		return fmt.Errorf("%w: factor bounds must satisfy 0 < min <= max <= 1", models.ErrInvalidConfig)
	}
	if c.OddsFloor <= 0 || c.OddsFloor >= 1 {
		return fmt.Errorf("%w: odds floor must be in (0, 1)", models.ErrInvalidConfig)
	}
	if c.MinIterations < 0 {
		return fmt.Errorf("%w: min iterations cannot be negative", models.ErrInvalidConfig)
	}
	return nil
}

// Result is a calibrated table with the odds derived from it
type Result struct {
	Table       models.MarketProbabilityTable `json:"table"`
	Odds        models.CalibratedOdds         `json:"calibrated_odds"`
	Factor      float64                       `json:"calibration_factor"`
	ExpectedRPS float64                       `json:"expected_rps"`
	Confidence  float64                       `json:"confidence_score"`
	Quality     models.MatchQuality           `json:"confidence_label"`
	Skipped     bool                          `json:"calibration_skipped"`
	Warnings    []models.Warning              `json:"warnings,omitempty"`
}

// Adjuster applies calibration to simulated tables
type Adjuster struct {
	cfg Config
	log *logger.SimulationLogger
}

// NewAdjuster creates an adjuster. A nil logger discards output.
func NewAdjuster(cfg Config, base *logrus.Logger) (*Adjuster, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if base == nil {
		base = logger.Discard()
	}
	return &Adjuster{cfg: cfg, log: logger.NewSimulationLogger(base)}, nil
}

// Factor computes the shrinkage factor for a table: high for balanced,
// well-sampled fixtures in the usual goals band, reduced when the 1X2
// forecast is sharper than the benchmark allows.
func (a *Adjuster) Factor(table models.MarketProbabilityTable, fixture FixtureContext) (factor, expectedRPS float64) {
	totalRate := fixture.HomeRate + fixture.AwayRate
	base := (0.7*balance(fixture.HomeRate, fixture.AwayRate) + 0.3*iterationFactor(table.Iterations)) * goalsFactor(totalRate)

	expectedRPS = ExpectedRPS(MatchForecast(table))
	factor = base * math.Min(1, expectedRPS/a.cfg.TargetRPS)
	return clamp(factor, a.cfg.MinFactor, a.cfg.MaxFactor), expectedRPS
}

// Adjust calibrates a table. Every partition group is pulled towards its
// uniform distribution by the factor and renormalised; double chance is then
// recomputed from the calibrated 1X2. Tables with fewer than MinIterations
// samples are returned unchanged with a CalibrationSkipped warning.
func (a *Adjuster) Adjust(table models.MarketProbabilityTable, fixture FixtureContext) (*Result, error) {
	if table.Probabilities == nil {
		return nil, fmt.Errorf("%w: empty probability table", models.ErrInvalidConfig)
	}

	result := &Result{
		Confidence: ConfidenceScore(table.Iterations, fixture),
	}

	if table.Iterations < a.cfg.MinIterations {
		result.Table = table.Clone()
		result.Factor = 1.0
		result.ExpectedRPS = ExpectedRPS(MatchForecast(table))
		result.Skipped = true
		result.Confidence = math.Min(result.Confidence, skippedConfidence)
		result.Warnings = append(result.Warnings, models.WarningCalibrationSkipped)
	} else {
		result.Factor, result.ExpectedRPS = a.Factor(table, fixture)
		result.Table = Shrink(table, result.Factor)
	}

	result.Quality = models.QualityFor(result.Confidence)
	result.Odds = a.Odds(result.Table)
	a.log.LogCalibration(result.Factor, result.ExpectedRPS, result.Confidence, result.Skipped)
	return result, nil
}

// Odds converts probabilities to decimal odds, flooring p at OddsFloor
func (a *Adjuster) Odds(table models.MarketProbabilityTable) models.CalibratedOdds {
	odds := make(models.CalibratedOdds, len(table.Probabilities))
	for key, p := range table.Probabilities {
		odds[key] = 1 / math.Max(p, a.cfg.OddsFloor)
	}
	return odds
}

// Shrink returns a copy of table with every partition group pulled towards
// uniform: p' = 1/k + factor*(p - 1/k)
func Shrink(table models.MarketProbabilityTable, factor float64) models.MarketProbabilityTable {
	out := table.Clone()
	for _, group := range models.MarketGroups() {
		if !group.Partition || !present(out.Probabilities, group.Keys) {
			continue
		}
		uniform := 1 / float64(len(group.Keys))
		for _, k := range group.Keys {
			out.Probabilities[k] = uniform + factor*(out.Probabilities[k]-uniform)
		}
		models.NormalizeGroup(out.Probabilities, group.Keys)
	}
	if present(out.Probabilities, []models.MarketKey{models.MarketHomeWin, models.MarketDraw, models.MarketAwayWin}) {
		models.DeriveDoubleChance(out.Probabilities)
	}
	return out
}

func present(p map[models.MarketKey]float64, keys []models.MarketKey) bool {
	for _, k := range keys {
		if _, ok := p[k]; !ok {
			return false
		}
	}
	return true
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
