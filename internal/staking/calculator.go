package staking

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/yourusername/true-odds/internal/logger"
	"github.com/yourusername/true-odds/internal/models"
)

// Suggestion is a sized opportunity
type Suggestion struct {
	Market      models.MarketKey        `json:"market"`
	Opportunity models.ValueOpportunity `json:"opportunity"`
	Result      Result                  `json:"result"`
	Composite   float64                 `json:"composite"`
	Priority    Priority                `json:"priority"`
}

// Calculator sizes opportunities against a caller supplied bankroll
type Calculator struct {
	cfg    Config
	logger *logger.ValueLogger
}

// NewCalculator creates a calculator after validating cfg
func NewCalculator(cfg Config, log *logrus.Logger) (*Calculator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.Discard()
	}
	return &Calculator{cfg: cfg, logger: logger.NewValueLogger(log)}, nil
}

// Config returns the sizing parameters in use
func (c *Calculator) Config() Config {
	return c.cfg
}

// Suggest sizes one opportunity. calibrationFactor weights the priority and is
// taken as 1 when the caller has none.
func (c *Calculator) Suggest(opp models.ValueOpportunity, bankroll, calibrationFactor float64) (*Suggestion, error) {
	res, err := Stake(opp.TrueProbability, opp.BookmakerOdds, bankroll, c.cfg.KellyMultiplier, c.cfg.MaxStakeFraction)
	if err != nil {
		return nil, fmt.Errorf("market %s: %w", opp.Market, err)
	}
	if calibrationFactor <= 0 {
		calibrationFactor = 1
	}

	composite := Composite(res.EdgePercentage/100, opp.Confidence, calibrationFactor)
	priority := PriorityFor(composite)

	stake, _ := res.Stake.Float64()
	c.logger.LogStakeDecision(string(opp.Market), string(priority), res.BookmakerOdds, res.EdgePercentage, res.KellyFraction, stake)

	return &Suggestion{
		Market:      opp.Market,
		Opportunity: opp,
		Result:      res,
		Composite:   composite,
		Priority:    priority,
	}, nil
}

// SuggestAll sizes every opportunity in order and drops those that end up
// with a zero stake
func (c *Calculator) SuggestAll(opps []models.ValueOpportunity, bankroll, calibrationFactor float64) ([]Suggestion, error) {
	suggestions := make([]Suggestion, 0, len(opps))
	for _, opp := range opps {
		s, err := c.Suggest(opp, bankroll, calibrationFactor)
		if err != nil {
			return nil, err
		}
		if !s.Result.Stake.IsPositive() {
			continue
		}
		suggestions = append(suggestions, *s)
	}
	return suggestions, nil
}
