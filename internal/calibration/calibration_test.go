package calibration

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/true-odds/internal/config"
	"github.com/yourusername/true-odds/internal/models"
	"github.com/yourusername/true-odds/internal/simulation"
)

func matchTable(iterations int, home, draw, away float64) models.MarketProbabilityTable {
	table := models.NewMarketProbabilityTable(iterations)
	table.Probabilities[models.MarketHomeWin] = home
	table.Probabilities[models.MarketDraw] = draw
	table.Probabilities[models.MarketAwayWin] = away
	table.Probabilities[models.MarketOver25] = 0.9
	table.Probabilities[models.MarketUnder25] = 0.1
	models.DeriveDoubleChance(table.Probabilities)
	return table
}

func newAdjuster(t *testing.T) *Adjuster {
	t.Helper()
	a, err := NewAdjuster(DefaultConfig(), nil)
	require.NoError(t, err)
	return a
}

func TestRPS(t *testing.T) {
	assert.Zero(t, RPS([]float64{1, 0, 0}, 0))
	assert.InDelta(t, 1.0, RPS([]float64{1, 0, 0}, 2), 1e-12)
	assert.InDelta(t, 2.0/9, ExpectedRPS([]float64{1.0 / 3, 1.0 / 3, 1.0 / 3}), 1e-12)
	assert.InDelta(t, 0.0875, ExpectedRPS([]float64{0.85, 0.10, 0.05}), 1e-12)
	assert.Zero(t, RPS([]float64{1}, 0))
}

func TestBrier(t *testing.T) {
	assert.Zero(t, Brier([]float64{1, 0, 0}, 0))
	assert.InDelta(t, 2.0, Brier([]float64{1, 0, 0}, 2), 1e-12)
	// 0.4^2 + 0.25^2 + 0.15^2
	assert.InDelta(t, 0.245, Brier([]float64{0.6, 0.25, 0.15}, 0), 1e-12)
	assert.Zero(t, Brier([]float64{0.5, 0.5}, 3))
}

func TestMatchOutcome(t *testing.T) {
	assert.Equal(t, 0, MatchOutcome(models.MatchScoreline{HomeFT: 2, AwayFT: 1}))
	assert.Equal(t, 1, MatchOutcome(models.MatchScoreline{HomeFT: 1, AwayFT: 1}))
	assert.Equal(t, 2, MatchOutcome(models.MatchScoreline{HomeFT: 0, AwayFT: 3}))
}

func TestFactor(t *testing.T) {
	a := newAdjuster(t)
	even := FixtureContext{HomeRate: 1.3, AwayRate: 1.3}

	tests := []struct {
		name    string
		table   models.MarketProbabilityTable
		fixture FixtureContext
		want    float64
	}{
		{"balanced and diffuse hits the ceiling", matchTable(100000, 0.4, 0.3, 0.3), even, 0.95},
		{"sharp forecast scaled by rps ratio", matchTable(100000, 0.6, 0.25, 0.15), even, 0.18375 / DefaultTargetRPS},
		{"very sharp forecast hits the floor", matchTable(100000, 0.85, 0.10, 0.05), even, 0.75},
		{"lopsided rates hit the floor", matchTable(100000, 0.4, 0.3, 0.3), FixtureContext{HomeRate: 2.0, AwayRate: 0.5}, 0.75},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			factor, _ := a.Factor(tt.table, tt.fixture)
			assert.InDelta(t, tt.want, factor, 1e-9)
		})
	}
}

func TestShrink(t *testing.T) {
	table := matchTable(100000, 0.6, 0.25, 0.15)
	out := Shrink(table, 0.8)

	assert.InDelta(t, 1.0/3+0.8*(0.6-1.0/3), out.Probabilities[models.MarketHomeWin], 1e-12)
	assert.InDelta(t, 1.0, out.Sum(models.MarketHomeWin, models.MarketDraw, models.MarketAwayWin), 1e-9)
	assert.InDelta(t, 0.5+0.8*0.4, out.Probabilities[models.MarketOver25], 1e-12)
	assert.InDelta(t,
		out.Probabilities[models.MarketHomeWin]+out.Probabilities[models.MarketDraw],
		out.Probabilities[models.MarketDCHomeDraw], 1e-12)

	// the input is left untouched
	assert.Equal(t, 0.6, table.Probabilities[models.MarketHomeWin])
	// groups absent from the table stay absent
	_, ok := out.Get(models.MarketBTTSYes)
	assert.False(t, ok)
}

func TestAdjustSimulatedTable(t *testing.T) {
	sim := simulation.DefaultConfig()
	sim.HomeLambda, sim.AwayLambda, sim.Seed = 1.5, 1.1, 42
	run, err := simulation.NewEngine(nil).Run(context.Background(), sim)
	require.NoError(t, err)

	result, err := newAdjuster(t).Adjust(run.Table, FixtureContext{HomeRate: 1.5, AwayRate: 1.1, HeadToHeadMatches: 6, HasRecentForm: true})
	require.NoError(t, err)

	assert.False(t, result.Skipped)
	assert.Empty(t, result.Warnings)
	assert.GreaterOrEqual(t, result.Factor, DefaultMinFactor)
	assert.LessOrEqual(t, result.Factor, DefaultMaxFactor)
	for _, g := range models.MarketGroups() {
		if g.Partition {
			assert.InDelta(t, 1.0, result.Table.Sum(g.Keys...), 1e-9, g.Name)
		}
	}
	for key, p := range result.Table.Probabilities {
		assert.InDelta(t, 1/p, result.Odds[key], 1e-9, string(key))
	}
	assert.Equal(t, models.MatchQualityHigh, result.Quality)
}

func TestAdjustSkipsSparseTables(t *testing.T) {
	table := matchTable(500, 0.6, 0.25, 0.15)
	result, err := newAdjuster(t).Adjust(table, FixtureContext{HomeRate: 1.3, AwayRate: 1.2})
	require.NoError(t, err)

	assert.True(t, result.Skipped)
	assert.Equal(t, 1.0, result.Factor)
	assert.Equal(t, table.Probabilities, result.Table.Probabilities)
	assert.Contains(t, result.Warnings, models.WarningCalibrationSkipped)
	assert.LessOrEqual(t, result.Confidence, 0.35)
	assert.Equal(t, models.MatchQualityLow, result.Quality)
}

func TestOddsFloor(t *testing.T) {
	table := models.NewMarketProbabilityTable(5000)
	table.Probabilities[models.MarketOver55] = 0
	table.Probabilities[models.MarketUnder55] = 1

	odds := newAdjuster(t).Odds(table)
	assert.Equal(t, 1000.0, odds[models.MarketOver55])
	assert.Equal(t, 1.0, odds[models.MarketUnder55])
}

func TestConfidenceScore(t *testing.T) {
	full := ConfidenceScore(100000, FixtureContext{HomeRate: 1.3, AwayRate: 1.3, HeadToHeadMatches: 10, HasRecentForm: true, CongestionKnown: true})
	assert.Equal(t, 0.95, full)

	// 0.4*0.1 + 0.3*0.4 + 0.15 + 0.05
	sparse := ConfidenceScore(10000, FixtureContext{HomeRate: 4.0, AwayRate: 1.0})
	assert.InDelta(t, 0.04+0.12+0.15+0.05, sparse, 1e-12)
}

func TestFromConfig(t *testing.T) {
	_, err := FromConfig(nil)
	assert.True(t, errors.Is(err, models.ErrInvalidConfig))

	cfg, err := FromConfig(&config.CalibrationConfig{TargetRPS: 0.2012, MinFactor: 0.75, MaxFactor: 0.95, MinIterations: 1000, OddsFloor: 0.001})
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)

	_, err = FromConfig(&config.CalibrationConfig{TargetRPS: 0.2, MinFactor: 0.9, MaxFactor: 0.8, OddsFloor: 0.001})
	assert.True(t, errors.Is(err, models.ErrInvalidConfig))
}

func TestAdjustRejectsEmptyTable(t *testing.T) {
	_, err := newAdjuster(t).Adjust(models.MarketProbabilityTable{}, FixtureContext{})
	assert.True(t, errors.Is(err, models.ErrInvalidConfig))
}
