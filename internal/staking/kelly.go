package staking

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
	"github.com/yourusername/true-odds/internal/config"
	"github.com/yourusername/true-odds/internal/models"
)

const (
	// DefaultKellyMultiplier is the fractional Kelly applied when none is configured
	DefaultKellyMultiplier = 0.25
	// DefaultMaxStakeFraction caps any single stake as a share of bankroll
	DefaultMaxStakeFraction = 0.05
)

// currencyPlaces is the precision stakes are rounded down to
const currencyPlaces = 2

var (
	one     = decimal.NewFromInt(1)
	hundred = decimal.NewFromInt(100)
)

// Config controls stake sizing
type Config struct {
	KellyMultiplier  float64
	MaxStakeFraction float64
}

// DefaultConfig returns quarter Kelly capped at five percent of bankroll
func DefaultConfig() Config {
	return Config{
		KellyMultiplier:  DefaultKellyMultiplier,
		MaxStakeFraction: DefaultMaxStakeFraction,
	}
}

// FromConfig converts the loaded staking section
func FromConfig(cfg *config.StakingConfig) (Config, error) {
	if cfg == nil {
		return Config{}, fmt.Errorf("%w: staking config is nil", models.ErrInvalidConfig)
	}
	c := Config{
		KellyMultiplier:  cfg.KellyMultiplier,
		MaxStakeFraction: cfg.MaxStakeFraction,
	}
	return c, c.Validate()
}

// Validate checks the multiplier and cap are usable fractions
func (c Config) Validate() error {
	if invalidFraction(c.KellyMultiplier) {
		return fmt.Errorf("%w: kelly multiplier %.4f outside [0, 1]", models.ErrInvalidConfig, c.KellyMultiplier)
	}
	if invalidFraction(c.MaxStakeFraction) {
		return fmt.Errorf("%w: max stake fraction %.4f outside [0, 1]", models.ErrInvalidConfig, c.MaxStakeFraction)
	}
	return nil
}

// Result is the outcome of sizing one bet
type Result struct {
	TrueProbability float64         `json:"true_probability"`
	BookmakerOdds   float64         `json:"bookmaker_odds"`
	EdgePercentage  float64         `json:"edge_percentage"`
	KellyFraction   float64         `json:"kelly_fraction"`
	StakeFraction   float64         `json:"stake_fraction"`
	Capped          bool            `json:"capped"`
	Stake           decimal.Decimal `json:"stake"`
}

// HasEdge reports whether the price beats the true probability
func (r Result) HasEdge() bool {
	return r.KellyFraction > 0
}

// Stake sizes a bet with fractional Kelly. A price with no edge yields a zero
// stake rather than an error. The arithmetic runs in decimal so the stake
// floor is not disturbed by binary rounding.
func Stake(trueProbability, bookmakerOdds, bankroll, kellyMultiplier, capFraction float64) (Result, error) {
	if err := models.ValidateOdds(bookmakerOdds); err != nil {
		return Result{}, err
	}
	if math.IsInf(bookmakerOdds, 0) || math.IsNaN(bookmakerOdds) {
		return Result{}, fmt.Errorf("%w: odds must be finite", models.ErrInvalidOdds)
	}
	if invalidFraction(trueProbability) {
		return Result{}, fmt.Errorf("%w: probability %.4f outside [0, 1]", models.ErrInvalidConfig, trueProbability)
	}
	if math.IsNaN(bankroll) || math.IsInf(bankroll, 0) || bankroll < 0 {
		return Result{}, fmt.Errorf("%w: bankroll %.2f must be finite and non-negative", models.ErrInvalidConfig, bankroll)
	}
	cfg := Config{KellyMultiplier: kellyMultiplier, MaxStakeFraction: capFraction}
	if err := cfg.Validate(); err != nil {
		return Result{}, err
	}

	odds := decimal.NewFromFloat(bookmakerOdds)
	expected := odds.Mul(decimal.NewFromFloat(trueProbability)).Sub(one)
	kelly := decimal.Max(decimal.Zero, expected.Div(odds.Sub(one)))

	fraction := kelly.Mul(decimal.NewFromFloat(kellyMultiplier))
	capFrac := decimal.NewFromFloat(capFraction)
	capped := false
	if fraction.GreaterThan(capFrac) {
		fraction = capFrac
		capped = true
	}

	edgePct, _ := expected.Mul(hundred).Float64()
	kellyF, _ := kelly.Float64()
	fractionF, _ := fraction.Float64()

	return Result{
		TrueProbability: trueProbability,
		BookmakerOdds:   bookmakerOdds,
		EdgePercentage:  edgePct,
		KellyFraction:   kellyF,
		StakeFraction:   fractionF,
		Capped:          capped,
		Stake:           decimal.NewFromFloat(bankroll).Mul(fraction).RoundFloor(currencyPlaces),
	}, nil
}

func invalidFraction(v float64) bool {
	return math.IsNaN(v) || v < 0 || v > 1
}
