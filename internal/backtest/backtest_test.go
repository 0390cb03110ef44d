package backtest

import (
	"context"
	"errors"
	"strings"
	"testing"

	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/true-odds/internal/calibration"
	"github.com/yourusername/true-odds/internal/config"
	"github.com/yourusername/true-odds/internal/models"
	"github.com/yourusername/true-odds/internal/simulation"
)

// MockSimulator is a mock implementation of Simulator
type MockSimulator struct {
	mock.Mock
}

func (m *MockSimulator) Run(ctx context.Context, cfg simulation.Config) (*simulation.Result, error) {
	args := m.Called(ctx, cfg)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*simulation.Result), args.Error(1)
}

// fixedResult is too small to calibrate, so calibrated and raw forecasts match
func fixedResult() *simulation.Result {
	table := models.NewMarketProbabilityTable(100)
	table.Probabilities[models.MarketHomeWin] = 0.6
	table.Probabilities[models.MarketDraw] = 0.25
	table.Probabilities[models.MarketAwayWin] = 0.15
	table.Probabilities[models.MarketOver25] = 0.5
	table.Probabilities[models.MarketUnder25] = 0.5
	table.Probabilities[models.MarketAHHomeMinus1] = 0.4
	return &simulation.Result{Table: table, Iterations: 100, HomeRate: 1.5, AwayRate: 1.0}
}

func testFixtures() []Fixture {
	return []Fixture{
		{
			Label: "Leeds vs Hull", HomeRate: 1.5, AwayRate: 1.0,
			Result: models.MatchScoreline{HomeHT: 1, AwayHT: 0, HomeFT: 2, AwayFT: 1},
			Odds: models.BookmakerOddsSet{
				models.MarketHomeWin:      2.0,
				models.MarketDraw:         5.0,
				models.MarketOver25:       1.9,
				models.MarketAHHomeMinus1: 3.0,
			},
		},
		{
			Label: "Derby vs Stoke", HomeRate: 1.5, AwayRate: 1.0,
			Result: models.MatchScoreline{},
			Odds:   models.BookmakerOddsSet{models.MarketHomeWin: 2.0},
		},
	}
}

func newTestEngine(t *testing.T, sim Simulator, cfg Config) *Engine {
	t.Helper()
	engine, err := NewEngine(cfg, simulation.DefaultConfig(), sim, calibration.DefaultConfig(), nil)
	require.NoError(t, err)
	return engine
}

func TestRunScoresAndSettles(t *testing.T) {
	sim := new(MockSimulator)
	cfg := DefaultConfig()
	cfg.Seed = 7
	for _, seed := range []int64{7, 8} {
		seed := seed
		sim.On("Run", mock.Anything, mock.MatchedBy(func(c simulation.Config) bool {
			return c.Seed == seed && c.Iterations == cfg.Iterations && c.HomeLambda == 1.5
		})).Return(fixedResult(), nil).Once()
	}

	report, err := newTestEngine(t, sim, cfg).Run(context.Background(), testFixtures())
	require.NoError(t, err)
	sim.AssertExpectations(t)

	require.Len(t, report.Fixtures, 2)
	first := report.Fixtures[0]
	assert.Equal(t, "2-1 (1-0)", first.Result)
	assert.Equal(t, 1.0, first.Factor)
	// ((0.6-1)^2 + (0.85-1)^2) / 2
	assert.InDelta(t, 0.09125, first.RawRPS, 1e-12)
	assert.InDelta(t, first.RawRPS, first.CalibratedRPS, 1e-12)
	assert.InDelta(t, 0.245, first.RawBrier, 1e-12)

	require.Len(t, report.Bets, 4)
	assert.Equal(t, models.MarketAHHomeMinus1, report.Bets[0].Market)
	assert.Equal(t, BetPush, report.Bets[0].Outcome)
	assert.Zero(t, report.Bets[0].Profit)
	assert.Equal(t, models.MarketDraw, report.Bets[1].Market)
	assert.Equal(t, BetLost, report.Bets[1].Outcome)
	assert.Equal(t, models.MarketHomeWin, report.Bets[2].Market)
	assert.Equal(t, BetWon, report.Bets[2].Outcome)
	assert.InDelta(t, 1.0, report.Bets[2].Profit, 1e-12)
	assert.InDelta(t, 0.2, report.Bets[2].Edge, 1e-12)
	assert.Equal(t, BetLost, report.Bets[3].Outcome)

	m := report.Metrics
	assert.Equal(t, 2, m.Fixtures)
	assert.Equal(t, 4, m.TotalBets)
	assert.Equal(t, 1, m.Wins)
	assert.Equal(t, 2, m.Losses)
	assert.Equal(t, 1, m.Pushes)
	assert.InDelta(t, 1.0/3, m.HitRate, 1e-12)
	assert.InDelta(t, 4.0, m.TotalStaked, 1e-12)
	assert.InDelta(t, -1.0, m.NetProfit, 1e-12)
	assert.InDelta(t, -0.25, m.ROI, 1e-12)
	assert.InDelta(t, 1.0, m.MaxDrawdown, 1e-12)
	assert.InDelta(t, 0.5, m.ProfitFactor, 1e-12)
	assert.False(t, m.CalibrationHelped())
}

func TestRunWithoutOdds(t *testing.T) {
	sim := new(MockSimulator)
	sim.On("Run", mock.Anything, mock.Anything).Return(fixedResult(), nil)

	fixtures := testFixtures()
	for i := range fixtures {
		fixtures[i].Odds = nil
	}
	report, err := newTestEngine(t, sim, DefaultConfig()).Run(context.Background(), fixtures)
	require.NoError(t, err)
	assert.Empty(t, report.Bets)
	assert.Zero(t, report.Metrics.ROI)
	assert.InDelta(t, 1.0, report.Metrics.MeanFactor, 1e-12)
}

func TestRunUnseeded(t *testing.T) {
	sim := new(MockSimulator)
	sim.On("Run", mock.Anything, mock.MatchedBy(func(c simulation.Config) bool { return c.Seed == 0 })).
		Return(fixedResult(), nil).Twice()

	cfg := DefaultConfig()
	cfg.Seed = 0
	_, err := newTestEngine(t, sim, cfg).Run(context.Background(), testFixtures())
	require.NoError(t, err)
	sim.AssertExpectations(t)
}

func TestRunFailures(t *testing.T) {
	t.Run("simulator error aborts", func(t *testing.T) {
		sim := new(MockSimulator)
		sim.On("Run", mock.Anything, mock.Anything).Return(nil, errors.New("boom"))

		_, err := newTestEngine(t, sim, DefaultConfig()).Run(context.Background(), testFixtures())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Leeds vs Hull")
	})

	t.Run("cancelled context", func(t *testing.T) {
		sim := new(MockSimulator)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := newTestEngine(t, sim, DefaultConfig()).Run(ctx, testFixtures())
		assert.True(t, errors.Is(err, context.Canceled))
		sim.AssertNotCalled(t, "Run", mock.Anything, mock.Anything)
	})

	t.Run("invalid fixture", func(t *testing.T) {
		sim := new(MockSimulator)
		fixtures := testFixtures()
		fixtures[0].Odds[models.MarketDraw] = 1.0

		_, err := newTestEngine(t, sim, DefaultConfig()).Run(context.Background(), fixtures)
		assert.True(t, errors.Is(err, models.ErrInvalidOdds))
	})
}

func TestRunWithSimulationEngine(t *testing.T) {
	log, hook := logtest.NewNullLogger()
	cfg := DefaultConfig()
	cfg.Iterations = 5000

	engine, err := NewEngine(cfg, simulation.DefaultConfig(), simulation.NewEngine(nil), calibration.DefaultConfig(), log)
	require.NoError(t, err)

	fixtures := testFixtures()
	first, err := engine.Run(context.Background(), fixtures)
	require.NoError(t, err)
	second, err := engine.Run(context.Background(), fixtures)
	require.NoError(t, err)

	assert.Equal(t, first.Metrics, second.Metrics)
	assert.NotEqual(t, first.RunID, second.RunID)
	for _, s := range first.Fixtures {
		assert.Greater(t, s.CalibratedRPS, 0.0)
		assert.Less(t, s.CalibratedRPS, 1.0)
		assert.GreaterOrEqual(t, s.Factor, calibration.DefaultMinFactor)
		assert.LessOrEqual(t, s.Factor, calibration.DefaultMaxFactor)
	}
	assert.Equal(t, "Backtest completed", hook.LastEntry().Message)
	assert.Equal(t, "backtest", hook.LastEntry().Data["component"])
}

func TestNewEngineValidation(t *testing.T) {
	_, err := NewEngine(DefaultConfig(), simulation.DefaultConfig(), nil, calibration.DefaultConfig(), nil)
	assert.True(t, errors.Is(err, models.ErrInvalidConfig))

	bad := DefaultConfig()
	bad.FlatStake = 0
	_, err = NewEngine(bad, simulation.DefaultConfig(), new(MockSimulator), calibration.DefaultConfig(), nil)
	assert.True(t, errors.Is(err, models.ErrInvalidConfig))
}

func TestFromConfig(t *testing.T) {
	cfg, err := FromConfig(&config.BacktestConfig{Iterations: 20000, Seed: 1, MinEdge: 0.03, FlatStake: 1})
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)

	_, err = FromConfig(nil)
	assert.True(t, errors.Is(err, models.ErrInvalidConfig))
	_, err = FromConfig(&config.BacktestConfig{Iterations: 0, FlatStake: 1})
	assert.True(t, errors.Is(err, models.ErrInvalidConfig))
	_, err = FromConfig(&config.BacktestConfig{Iterations: 10, MinEdge: -0.1, FlatStake: 1})
	assert.True(t, errors.Is(err, models.ErrInvalidConfig))
}

func TestLoadFixturesCSV(t *testing.T) {
	fixtures, stats, err := LoadFixturesCSV("testdata/fixtures.csv")
	require.NoError(t, err)

	assert.Equal(t, 6, stats.Rows)
	assert.Equal(t, 3, stats.Skipped)
	assert.Len(t, stats.Errors, 3)
	require.Len(t, fixtures, 3)

	leeds := fixtures[0]
	assert.Equal(t, "Leeds vs Hull", leeds.Label)
	assert.Equal(t, 1.7, leeds.HomeRate)
	assert.Equal(t, models.MatchScoreline{HomeHT: 1, AwayHT: 0, HomeFT: 2, AwayFT: 1}, leeds.Result)
	assert.Equal(t, 1.95, leeds.Odds[models.MarketHomeWin])
	assert.Equal(t, 3.6, leeds.Odds[models.MarketDraw])
	assert.Equal(t, 1.8, leeds.Odds[models.MarketBTTSYes])
	assert.Len(t, leeds.Odds, 5)

	derby := fixtures[1]
	_, priced := derby.Odds[models.MarketOver25]
	assert.False(t, priced)

	assert.Nil(t, fixtures[2].Odds)
	assert.True(t, strings.HasPrefix(fixtures[2].Label, "fixture "))
}

func TestReadFixturesCSVMissingColumn(t *testing.T) {
	_, _, err := ReadFixturesCSV(strings.NewReader("fixture,home_rate,score\nA,1.2,1-0 (0-0)\n"))
	assert.True(t, errors.Is(err, models.ErrInvalidConfig))
	assert.Contains(t, err.Error(), "away_rate")
}
