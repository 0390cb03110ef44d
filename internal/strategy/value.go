package strategy

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/true-odds/internal/config"
	"github.com/yourusername/true-odds/internal/models"
	"github.com/yourusername/true-odds/internal/staking"
)

// ValueStrategy backs every flagged opportunity that falls inside the odds
// window and clears the confidence floor, sized with fractional Kelly
type ValueStrategy struct {
	BaseStrategy
	NameValue  string
	calculator *staking.Calculator
	logger     *logrus.Logger
}

// NewValueStrategy creates a value strategy around a stake calculator
func NewValueStrategy(base BaseStrategy, calculator *staking.Calculator, logger *logrus.Logger) (*ValueStrategy, error) {
	if calculator == nil {
		return nil, fmt.Errorf("%w: stake calculator is required", models.ErrInvalidConfig)
	}
	if base.MinConfidence < 0 || base.MinConfidence > 1 {
		return nil, fmt.Errorf("%w: min confidence %.2f outside [0, 1]", models.ErrInvalidConfig, base.MinConfidence)
	}
	if base.MaxOdds > 0 && base.MinOdds > base.MaxOdds {
		return nil, fmt.Errorf("%w: min odds %.2f above max odds %.2f", models.ErrInvalidConfig, base.MinOdds, base.MaxOdds)
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &ValueStrategy{
		BaseStrategy: base,
		NameValue:    "value",
		calculator:   calculator,
		logger:       logger,
	}, nil
}

// FromConfig builds the strategy and its calculator from the staking section
func FromConfig(cfg *config.StakingConfig, logger *logrus.Logger) (*ValueStrategy, error) {
	sc, err := staking.FromConfig(cfg)
	if err != nil {
		return nil, err
	}
	calc, err := staking.NewCalculator(sc, logger)
	if err != nil {
		return nil, err
	}
	return NewValueStrategy(BaseStrategy{
		MinOdds:       cfg.MinOdds,
		MaxOdds:       cfg.MaxOdds,
		MinConfidence: cfg.MinConfidence,
	}, calc, logger)
}

// Name returns strategy name
func (s *ValueStrategy) Name() string {
	return s.NameValue
}

// Evaluate sizes the opportunities in the order they were ranked
func (s *ValueStrategy) Evaluate(ctx context.Context, strategyCtx Context) ([]Signal, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if strategyCtx.Bankroll < 0 {
		return nil, fmt.Errorf("%w: bankroll %.2f is negative", models.ErrInvalidConfig, strategyCtx.Bankroll)
	}

	var signals []Signal
	for _, opp := range strategyCtx.Opportunities {
		if err := s.ValidateOdds(opp.BookmakerOdds); err != nil {
			s.logger.WithFields(logrus.Fields{
				"market": opp.Market,
				"odds":   opp.BookmakerOdds,
			}).Debugf("Opportunity filtered: %v", err)
			continue
		}
		if !s.ConfidentEnough(opp.Confidence) {
			s.logger.WithFields(logrus.Fields{
				"market":         opp.Market,
				"confidence":     opp.Confidence,
				"min_confidence": s.MinConfidence,
			}).Debug("Opportunity filtered: confidence below floor")
			continue
		}

		suggestion, err := s.calculator.Suggest(opp, strategyCtx.Bankroll, strategyCtx.CalibrationFactor)
		if err != nil {
			return nil, err
		}
		signal := s.buildSignal(opp, suggestion, strategyCtx.Consensus)
		if s.ShouldBet(signal) {
			signals = append(signals, signal)
		}
	}
	return signals, nil
}

// ShouldBet determines if a signal carries a positive stake and expectation
func (s *ValueStrategy) ShouldBet(signal Signal) bool {
	return signal.ExpectedValue > 0 && signal.Stake.IsPositive()
}

// GetParameters returns strategy parameters for reporting
func (s *ValueStrategy) GetParameters() map[string]interface{} {
	cfg := s.calculator.Config()
	return map[string]interface{}{
		"min_odds":           s.MinOdds,
		"max_odds":           s.MaxOdds,
		"min_confidence":     s.MinConfidence,
		"kelly_multiplier":   cfg.KellyMultiplier,
		"max_stake_fraction": cfg.MaxStakeFraction,
	}
}

func (s *ValueStrategy) buildSignal(opp models.ValueOpportunity, suggestion *staking.Suggestion, consensus *models.ConsensusResult) Signal {
	probability := s.NormalizeProbability(opp.TrueProbability)
	stake, _ := suggestion.Result.Stake.Float64()

	features := map[string]any{
		"implied_probability": opp.ImpliedProbability,
		"composite":           suggestion.Composite,
		"sources":             opp.Sources,
	}
	if consensus != nil {
		features["agreement_level"] = consensus.AgreementLevel
	}

	return Signal{
		ID:             uuid.New(),
		OpportunityID:  opp.ID,
		Market:         opp.Market,
		Odds:           opp.BookmakerOdds,
		Probability:    probability,
		Stake:          suggestion.Result.Stake,
		Confidence:     opp.Confidence,
		EdgePercentage: suggestion.Result.EdgePercentage,
		KellyFraction:  suggestion.Result.KellyFraction,
		ExpectedValue:  s.CalculateExpectedValue(probability, opp.BookmakerOdds, stake),
		Tier:           opp.Tier,
		Priority:       suggestion.Priority,
		Reasoning:      reasoning(opp, suggestion),
		Features:       features,
	}
}

func reasoning(opp models.ValueOpportunity, suggestion *staking.Suggestion) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s edge %.1f%% at %.2f", opp.Tier, suggestion.Result.EdgePercentage, opp.BookmakerOdds)
	if len(opp.Sources) > 0 {
		names := make([]string, len(opp.Sources))
		for i, e := range opp.Sources {
			names[i] = string(e)
		}
		fmt.Fprintf(&b, " (%s)", strings.Join(names, "+"))
	}
	if suggestion.Result.Capped {
		b.WriteString(", stake capped")
	}
	return b.String()
}
