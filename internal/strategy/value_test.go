package strategy

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/true-odds/internal/config"
	"github.com/yourusername/true-odds/internal/models"
	"github.com/yourusername/true-odds/internal/staking"
)

func newStrategy(t *testing.T, base BaseStrategy) *ValueStrategy {
	t.Helper()
	calc, err := staking.NewCalculator(staking.DefaultConfig(), nil)
	require.NoError(t, err)
	s, err := NewValueStrategy(base, calc, nil)
	require.NoError(t, err)
	return s
}

func opp(market models.MarketKey, p, odds, confidence float64) models.ValueOpportunity {
	return models.ValueOpportunity{
		ID:                 uuid.New(),
		Market:             market,
		TrueProbability:    p,
		ImpliedProbability: 1 / odds,
		BookmakerOdds:      odds,
		Edge:               p*odds - 1,
		EdgePercentage:     (p*odds - 1) * 100,
		Confidence:         confidence,
		Tier:               models.TierMedium,
		Sources:            []models.Engine{models.EngineSimulation, models.EnginePattern},
	}
}

func TestValueStrategy_Evaluate(t *testing.T) {
	s := newStrategy(t, BaseStrategy{MinOdds: 1.5, MaxOdds: 5, MinConfidence: 0.5})

	opps := []models.ValueOpportunity{
		opp(models.MarketHomeWin, 0.56, 1.90, 0.8),
		opp(models.MarketOver15, 0.80, 1.34, 0.8),
		opp(models.MarketAwayWin, 0.25, 6.00, 0.8),
		opp(models.MarketDraw, 0.32, 3.40, 0.3),
		opp(models.MarketBTTSYes, 0.60, 1.80, 0.7),
	}
	signals, err := s.Evaluate(context.Background(), Context{
		Opportunities:     opps,
		Consensus:         &models.ConsensusResult{AgreementLevel: models.AgreementHigh},
		Bankroll:          1000,
		CalibrationFactor: 0.9,
	})
	require.NoError(t, err)
	require.Len(t, signals, 2)

	first := signals[0]
	assert.Equal(t, models.MarketHomeWin, first.Market)
	assert.Equal(t, opps[0].ID, first.OpportunityID)
	assert.True(t, first.Stake.Equal(decimal.RequireFromString("17.77")))
	assert.InDelta(t, 6.4, first.EdgePercentage, 1e-9)
	assert.Greater(t, first.ExpectedValue, 0.0)
	assert.Equal(t, staking.PriorityMedium, first.Priority)
	assert.Equal(t, models.AgreementHigh, first.Features["agreement_level"])
	assert.Equal(t, "medium edge 6.4% at 1.90 (simulation+pattern)", first.Reasoning)

	assert.Equal(t, models.MarketBTTSYes, signals[1].Market)
}

func TestValueStrategy_NoEdgeNoSignal(t *testing.T) {
	s := newStrategy(t, BaseStrategy{})
	signals, err := s.Evaluate(context.Background(), Context{
		Opportunities: []models.ValueOpportunity{opp(models.MarketHomeWin, 0.50, 1.90, 0.9)},
		Bankroll:      1000,
	})
	require.NoError(t, err)
	assert.Empty(t, signals)
}

func TestValueStrategy_CappedReasoning(t *testing.T) {
	s := newStrategy(t, BaseStrategy{})
	signals, err := s.Evaluate(context.Background(), Context{
		Opportunities: []models.ValueOpportunity{opp(models.MarketHomeWin, 0.70, 2.00, 0.9)},
		Bankroll:      1000,
	})
	require.NoError(t, err)
	require.Len(t, signals, 1)
	assert.True(t, signals[0].Stake.Equal(decimal.NewFromInt(50)))
	assert.Contains(t, signals[0].Reasoning, "stake capped")
}

func TestValueStrategy_Errors(t *testing.T) {
	s := newStrategy(t, BaseStrategy{})

	_, err := s.Evaluate(context.Background(), Context{Bankroll: -5})
	assert.ErrorIs(t, err, models.ErrInvalidConfig)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = s.Evaluate(ctx, Context{Bankroll: 100})
	assert.ErrorIs(t, err, context.Canceled)

	_, err = NewValueStrategy(BaseStrategy{}, nil, nil)
	assert.ErrorIs(t, err, models.ErrInvalidConfig)

	calc, err := staking.NewCalculator(staking.DefaultConfig(), nil)
	require.NoError(t, err)
	_, err = NewValueStrategy(BaseStrategy{MinOdds: 5, MaxOdds: 2}, calc, nil)
	assert.ErrorIs(t, err, models.ErrInvalidConfig)
	_, err = NewValueStrategy(BaseStrategy{MinConfidence: 1.5}, calc, nil)
	assert.ErrorIs(t, err, models.ErrInvalidConfig)
}

func TestFromConfig(t *testing.T) {
	s, err := FromConfig(&config.StakingConfig{
		Bankroll:         500,
		KellyMultiplier:  0.5,
		MaxStakeFraction: 0.1,
		MinOdds:          1.2,
		MaxOdds:          8,
		MinConfidence:    0.4,
	}, nil)
	require.NoError(t, err)

	var _ Strategy = s
	assert.Equal(t, "value", s.Name())
	params := s.GetParameters()
	assert.Equal(t, 1.2, params["min_odds"])
	assert.Equal(t, 8.0, params["max_odds"])
	assert.Equal(t, 0.4, params["min_confidence"])
	assert.Equal(t, 0.5, params["kelly_multiplier"])
	assert.Equal(t, 0.1, params["max_stake_fraction"])

	_, err = FromConfig(nil, nil)
	assert.ErrorIs(t, err, models.ErrInvalidConfig)
}

func TestBaseStrategy(t *testing.T) {
	b := &BaseStrategy{MinOdds: 1.5, MaxOdds: 4}

	assert.ErrorIs(t, b.ValidateOdds(1.0), models.ErrInvalidOdds)
	assert.Error(t, b.ValidateOdds(1.4))
	assert.Error(t, b.ValidateOdds(4.5))
	assert.NoError(t, b.ValidateOdds(2.0))

	assert.InDelta(t, 1.0, b.CalculateExpectedValue(0.55, 2.0, 10), 1e-9)
	assert.Equal(t, 0.0, b.CalculateExpectedValue(0.55, 1.0, 10))

	assert.Equal(t, 1.0, b.NormalizeProbability(1.3))
	assert.Equal(t, 0.0, b.NormalizeProbability(-0.2))
	assert.Equal(t, 0.42, b.NormalizeProbability(0.42))
}
