package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/true-odds/internal/cache"
	"github.com/yourusername/true-odds/internal/calibration"
	"github.com/yourusername/true-odds/internal/config"
	"github.com/yourusername/true-odds/internal/consensus"
	"github.com/yourusername/true-odds/internal/input"
	"github.com/yourusername/true-odds/internal/models"
	"github.com/yourusername/true-odds/internal/simulation"
	"github.com/yourusername/true-odds/internal/strategy"
)

// MockSimulator mocks the simulation engine
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

// MockMatcher mocks the pattern matcher
type MockMatcher struct {
	mock.Mock
}

func (m *MockMatcher) Predict(corpus models.HistoricalCorpus) (*models.PatternPrediction, error) {
	args := m.Called(corpus)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PatternPrediction), args.Error(1)
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Name: "true-odds", Environment: "development", LogLevel: "info"},
		Simulation: config.SimulationConfig{
			Distribution:   "poisson",
			Iterations:     100000,
			Dispersion:     10,
			FirstHalfShare: 0.45,
			BatchSize:      10000,
		},
		Calibration: config.CalibrationConfig{TargetRPS: 0.2012, MinFactor: 0.75, MaxFactor: 0.95, MinIterations: 1000, OddsFloor: 0.001},
		Pattern:     config.PatternConfig{Enabled: true, Decay: 0.9, HeadToHeadWeight: 1.5, FormWeight: 1, SampleTarget: 20, MaxConfidence: 0.95},
		Consensus: config.ConsensusConfig{
			MinEdge: 0.03, MediumEdge: 0.03, HighEdge: 0.07, MassiveEdge: 0.15,
			BoostScale: 0.1, MaxConfidence: 0.95, ConflictThreshold: 0.4, TieBreakEdge: 0.07,
		},
		Staking: config.StakingConfig{Bankroll: 1000, KellyMultiplier: 0.25, MaxStakeFraction: 0.05, MinOdds: 1.01, MaxOdds: 1000},
		Cache:   config.CacheConfig{Enabled: true, TTLSeconds: 900, CleanupSeconds: 1800, MaxEntries: 16},
	}
}

func simulatedResult() *simulation.Result {
	table := models.NewMarketProbabilityTable(100000)
	table.Probabilities[models.MarketHomeWin] = 0.60
	table.Probabilities[models.MarketDraw] = 0.25
	table.Probabilities[models.MarketAwayWin] = 0.15
	table.Probabilities[models.MarketOver25] = 0.50
	table.Probabilities[models.MarketUnder25] = 0.50
	return &simulation.Result{
		Table:        table,
		Distribution: simulation.DistributionPoisson,
		Iterations:   100000,
		HomeRate:     1.4,
		AwayRate:     1.1,
		Duration:     20 * time.Millisecond,
	}
}

func patternPrediction() *models.PatternPrediction {
	return &models.PatternPrediction{
		Probabilities: map[models.MarketKey]float64{
			models.MarketHomeWin: 0.55,
			models.MarketDraw:    0.25,
			models.MarketAwayWin: 0.20,
		},
		Confidence:     0.6,
		SampleSize:     12,
		Quality:        models.MatchQualityMedium,
		SkippedRecords: 1,
		SkippedByRole:  map[models.Role]int{models.RoleHomeForm: 1},
	}
}

func testOdds() models.BookmakerOddsSet {
	return models.BookmakerOddsSet{
		models.MarketHomeWin: 2.20,
		models.MarketDraw:    3.20,
		models.MarketAwayWin: 4.00,
	}
}

func newTestAnalyzer(t *testing.T, cfg *config.Config, sim Simulator, matcher PatternMatcher, c *cache.SimulationCache) *Analyzer {
	t.Helper()

	calCfg, err := calibration.FromConfig(&cfg.Calibration)
	require.NoError(t, err)
	adjuster, err := calibration.NewAdjuster(calCfg, nil)
	require.NoError(t, err)

	conCfg, err := consensus.FromConfig(&cfg.Consensus)
	require.NoError(t, err)
	comparator, err := consensus.NewComparator(conCfg, nil)
	require.NoError(t, err)

	valueStrategy, err := strategy.FromConfig(&cfg.Staking, nil)
	require.NoError(t, err)

	deps := Dependencies{
		Simulator:  sim,
		Calibrator: adjuster,
		Comparator: comparator,
		Strategy:   valueStrategy,
		Cache:      c,
	}
	if matcher != nil {
		deps.Matcher = matcher
	}
	a, err := NewAnalyzer(cfg, deps, nil)
	require.NoError(t, err)
	return a
}

func TestAnalyze_ComposesEngines(t *testing.T) {
	sim := new(MockSimulator)
	matcher := new(MockMatcher)
	seed := int64(7)

	sim.On("Run", mock.Anything, mock.MatchedBy(func(cfg simulation.Config) bool {
		return cfg.HomeLambda == 1.4 && cfg.AwayLambda == 1.1 && cfg.Seed == 7 && cfg.Iterations == 100000
	})).Return(simulatedResult(), nil).Once()
	matcher.On("Predict", mock.Anything).Return(patternPrediction(), nil).Once()

	a := newTestAnalyzer(t, testConfig(), sim, matcher, nil)
	analysis, err := a.Analyze(context.Background(), Request{
		Fixture:  "Home vs Away",
		Odds:     testOdds(),
		HomeRate: 1.4,
		AwayRate: 1.1,
		Seed:     &seed,
	})
	require.NoError(t, err)

	sim.AssertExpectations(t)
	matcher.AssertExpectations(t)

	assert.NotEqual(t, "00000000-0000-0000-0000-000000000000", analysis.RunID.String())
	assert.Equal(t, "Home vs Away", analysis.Fixture)
	assert.Equal(t, 1000.0, analysis.Bankroll)
	assert.False(t, analysis.CacheHit)
	require.NotNil(t, analysis.Pattern)
	assert.False(t, analysis.Calibration.Skipped)
	assert.GreaterOrEqual(t, analysis.Calibration.Factor, 0.75)
	assert.LessOrEqual(t, analysis.Calibration.Factor, 0.95)

	require.Len(t, analysis.Opportunities, 1)
	opp := analysis.Opportunities[0]
	assert.Equal(t, models.MarketHomeWin, opp.Market)
	assert.Equal(t, models.TierMassive, opp.Tier)
	assert.ElementsMatch(t, []models.Engine{models.EngineSimulation, models.EnginePattern}, opp.Sources)

	assert.Equal(t, models.AgreementHigh, analysis.Consensus.AgreementLevel)
	assert.Equal(t, []models.Engine{models.EngineSimulation, models.EnginePattern}, analysis.Consensus.Engines)
	require.NotNil(t, analysis.Best())
	assert.Equal(t, models.MarketHomeWin, analysis.Best().Market)

	require.Len(t, analysis.Signals, 1)
	assert.Equal(t, models.MarketHomeWin, analysis.Signals[0].Market)
	assert.True(t, analysis.Signals[0].Stake.IsPositive())
	assert.LessOrEqual(t, analysis.Signals[0].Stake.InexactFloat64(), 50.0)

	assert.Equal(t, []models.Warning{models.WarningRecordsSkipped}, analysis.Warnings)
}

func TestAnalyze_InsufficientHistoryFallsBack(t *testing.T) {
	sim := new(MockSimulator)
	matcher := new(MockMatcher)
	sim.On("Run", mock.Anything, mock.Anything).Return(simulatedResult(), nil)
	matcher.On("Predict", mock.Anything).Return(nil, models.ErrInsufficientHistory)

	a := newTestAnalyzer(t, testConfig(), sim, matcher, nil)
	analysis, err := a.Analyze(context.Background(), Request{Odds: testOdds(), HomeRate: 1.4, AwayRate: 1.1})
	require.NoError(t, err)

	assert.Nil(t, analysis.Pattern)
	assert.Contains(t, analysis.Warnings, models.WarningPatternUnavailable)
	assert.Equal(t, []models.Engine{models.EngineSimulation}, analysis.Consensus.Engines)
	assert.Equal(t, models.AgreementSingleEngine, analysis.Consensus.AgreementLevel)
	assert.Zero(t, analysis.Consensus.ConfidenceBoost)
	require.Len(t, analysis.Opportunities, 1)
	assert.Equal(t, []models.Engine{models.EngineSimulation}, analysis.Opportunities[0].Sources)
}

func TestAnalyze_PatternDisabled(t *testing.T) {
	sim := new(MockSimulator)
	sim.On("Run", mock.Anything, mock.Anything).Return(simulatedResult(), nil)

	a := newTestAnalyzer(t, testConfig(), sim, nil, nil)
	analysis, err := a.Analyze(context.Background(), Request{Odds: testOdds(), Bankroll: 200, InputSkipped: 3})
	require.NoError(t, err)

	assert.Equal(t, 200.0, analysis.Bankroll)
	assert.Equal(t, []models.Warning{models.WarningPatternUnavailable, models.WarningRecordsSkipped}, analysis.Warnings)
}

func TestAnalyze_Failures(t *testing.T) {
	boom := errors.New("boom")

	t.Run("matcher error aborts", func(t *testing.T) {
		sim := new(MockSimulator)
		matcher := new(MockMatcher)
		sim.On("Run", mock.Anything, mock.Anything).Return(simulatedResult(), nil)
		matcher.On("Predict", mock.Anything).Return(nil, boom)

		a := newTestAnalyzer(t, testConfig(), sim, matcher, nil)
		_, err := a.Analyze(context.Background(), Request{Odds: testOdds()})
		assert.ErrorIs(t, err, boom)
	})

	t.Run("simulator error aborts", func(t *testing.T) {
		sim := new(MockSimulator)
		sim.On("Run", mock.Anything, mock.Anything).Return(nil, context.Canceled)

		a := newTestAnalyzer(t, testConfig(), sim, nil, nil)
		_, err := a.Analyze(context.Background(), Request{Odds: testOdds()})
		assert.ErrorIs(t, err, context.Canceled)
		assert.Contains(t, err.Error(), "simulation failed")
	})

	t.Run("invalid odds never simulate", func(t *testing.T) {
		sim := new(MockSimulator)
		a := newTestAnalyzer(t, testConfig(), sim, nil, nil)

		_, err := a.Analyze(context.Background(), Request{Odds: models.BookmakerOddsSet{models.MarketDraw: 1.0}})
		assert.ErrorIs(t, err, models.ErrInvalidOdds)

		_, err = a.Analyze(context.Background(), Request{})
		assert.ErrorIs(t, err, models.ErrInvalidConfig)

		sim.AssertNotCalled(t, "Run", mock.Anything, mock.Anything)
	})

	t.Run("iterations above limit rejected", func(t *testing.T) {
		sim := new(MockSimulator)
		a := newTestAnalyzer(t, testConfig(), sim, nil, nil)
		_, err := a.Analyze(context.Background(), Request{Odds: testOdds(), Iterations: simulation.MaxIterations + 1})
		assert.ErrorIs(t, err, models.ErrInvalidConfig)
		sim.AssertNotCalled(t, "Run", mock.Anything, mock.Anything)
	})
}

func TestAnalyze_CachesSeededRuns(t *testing.T) {
	sim := new(MockSimulator)
	sim.On("Run", mock.Anything, mock.Anything).Return(simulatedResult(), nil)

	c := cache.New(time.Minute, time.Minute, 8)
	a := newTestAnalyzer(t, testConfig(), sim, nil, c)
	seed := int64(99)
	req := Request{Odds: testOdds(), HomeRate: 1.4, AwayRate: 1.1, Seed: &seed}

	first, err := a.Analyze(context.Background(), req)
	require.NoError(t, err)
	second, err := a.Analyze(context.Background(), req)
	require.NoError(t, err)

	assert.False(t, first.CacheHit)
	assert.True(t, second.CacheHit)
	assert.NotEqual(t, first.RunID, second.RunID)
	sim.AssertNumberOfCalls(t, "Run", 1)

	unseeded := Request{Odds: testOdds(), HomeRate: 1.4, AwayRate: 1.1}
	_, err = a.Analyze(context.Background(), unseeded)
	require.NoError(t, err)
	_, err = a.Analyze(context.Background(), unseeded)
	require.NoError(t, err)
	sim.AssertNumberOfCalls(t, "Run", 3)
}

func TestSimulationConfig(t *testing.T) {
	base := testConfig().Simulation
	seed := int64(5)

	cfg, err := SimulationConfig(base, Request{HomeRate: 1.7, AwayRate: 0.9, Seed: &seed, Iterations: 2000})
	require.NoError(t, err)
	assert.Equal(t, 1.7, cfg.HomeLambda)
	assert.Equal(t, 0.9, cfg.AwayLambda)
	assert.Equal(t, int64(5), cfg.Seed)
	assert.Equal(t, 2000, cfg.Iterations)
	assert.Equal(t, simulation.DistributionPoisson, cfg.Distribution)

	cfg, err = SimulationConfig(base, Request{})
	require.NoError(t, err)
	assert.Equal(t, simulation.DefaultHomeRate, cfg.HomeLambda)
	assert.Equal(t, simulation.DefaultAwayRate, cfg.AwayLambda)

	var streak []models.MatchScoreline
	for i := 0; i < 6; i++ {
		streak = append(streak, models.MatchScoreline{HomeFT: 2, AwayFT: 0})
	}
	cfg, err = SimulationConfig(base, Request{Corpus: models.HistoricalCorpus{HomeForm: streak}, Streaks: true})
	require.NoError(t, err)
	assert.Greater(t, cfg.HomeBoost, 0.0)
	streakBoost := cfg.HomeBoost

	// custom boosts stack with streak boosts
	advantage := 0.25
	cfg, err = SimulationConfig(base, Request{
		HomeRate: 1.2, AwayRate: 1.0,
		HomeBoost: 0.2, AwayBoost: -0.1, HomeAdvantage: &advantage,
		Corpus: models.HistoricalCorpus{HomeForm: streak}, Streaks: true,
	})
	require.NoError(t, err)
	assert.InDelta(t, 0.2+streakBoost, cfg.HomeBoost, 1e-12)
	assert.InDelta(t, -0.1, cfg.AwayBoost, 1e-12)
	assert.Equal(t, 0.25, cfg.HomeAdvantage)
	home, away := cfg.EffectiveRates()
	assert.InDelta(t, 1.2+0.2+streakBoost+0.25, home, 1e-12)
	assert.InDelta(t, 0.9, away, 1e-12)

	cfg, err = SimulationConfig(base, Request{HomeBoost: 0.2, Corpus: models.HistoricalCorpus{HomeForm: streak}})
	require.NoError(t, err)
	assert.InDelta(t, 0.2, cfg.HomeBoost, 1e-12)
	assert.Equal(t, base.HomeAdvantage, cfg.HomeAdvantage)

	base.Distribution = DistributionAuto
	cfg, err = SimulationConfig(base, Request{})
	require.NoError(t, err)
	assert.Equal(t, simulation.DistributionPoisson, cfg.Distribution)

	_, err = SimulationConfig(base, Request{Distribution: "zipf"})
	assert.ErrorIs(t, err, models.ErrInvalidConfig)
}

func TestNewAnalyzer_RequiresCollaborators(t *testing.T) {
	_, err := NewAnalyzer(nil, Dependencies{}, nil)
	assert.ErrorIs(t, err, models.ErrInvalidConfig)

	_, err = NewAnalyzer(testConfig(), Dependencies{Simulator: new(MockSimulator)}, nil)
	assert.ErrorIs(t, err, models.ErrInvalidConfig)
}

func TestNewAnalyzerFromConfig_EndToEnd(t *testing.T) {
	cfg := testConfig()
	cfg.Simulation.Iterations = 20000
	cfg.Simulation.Seed = 11

	a, err := NewAnalyzerFromConfig(cfg, nil)
	require.NoError(t, err)
	require.NotNil(t, a.deps.Matcher)
	require.NotNil(t, a.deps.Cache)

	doc, err := input.ParseRequest([]byte(`
fixture: {home: Leeds United, away: Hull City}
bankroll: 250
odds: {"1": 2.40, "x": 3.30, "2": 3.10, over_2_5: 2.00, under_2_5: 1.85, btts_yes: 1.90}
history:
  h2h:
    - score: "2-1 (1-1)"
    - score: "0-0 (0-0)"
    - score: "3-1 (2-0)"
  home_form:
    - score: "2-0 (1-0)"
    - score: "1-1 (0-1)"
    - score: "2-2 (1-1)"
    - score: "3-0 (1-0)"
  away_form:
    - score: "0-1 (0-0)"
    - score: "2-1 (1-1)"
    - score: "1-1 (1-0)"
`), ".yaml")
	require.NoError(t, err)
	req, err := RequestFromInput(doc)
	require.NoError(t, err)
	assert.Equal(t, "Leeds United vs Hull City", req.Fixture)
	assert.Equal(t, "leeds-united-vs-hull-city", req.FixtureKey)

	analysis, err := a.Analyze(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, 20000, analysis.Simulation.Iterations)
	assert.Equal(t, int64(11), analysis.Simulation.Seed)
	p := analysis.Simulation.Table.Probabilities
	assert.InDelta(t, 1.0, p[models.MarketHomeWin]+p[models.MarketDraw]+p[models.MarketAwayWin], 1e-9)
	require.NotNil(t, analysis.Pattern)
	assert.Equal(t, 10, analysis.Pattern.SampleSize)
	assert.Len(t, analysis.Consensus.Engines, 2)
	assert.Equal(t, 250.0, analysis.Bankroll)
	assert.Equal(t, "leeds-united-vs-hull-city", analysis.FixtureKey)
	for _, s := range analysis.Signals {
		assert.LessOrEqual(t, s.Stake.InexactFloat64(), 250*0.05)
	}

	again, err := a.Analyze(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, again.CacheHit)
	assert.Equal(t, analysis.Simulation.Table, again.Simulation.Table)
}

func TestRequestFromInput(t *testing.T) {
	doc, err := input.ParseRequest([]byte(`
fixture: {home: A, away: B}
odds: {home_win: 2.0}
simulation: {home_rate: 1.3, away_rate: 0.8, iterations: 5000, seed: 3, distribution: negative_binomial, streaks: true, home_boost: 0.15, away_boost: -0.05, home_advantage: 0.2}
history:
  h2h:
    - score: "2-1 (1-0)"
    - score: abandoned
`), ".yaml")
	require.NoError(t, err)

	req, err := RequestFromInput(doc)
	require.NoError(t, err)
	assert.Equal(t, 1.3, req.HomeRate)
	assert.Equal(t, 0.8, req.AwayRate)
	assert.Equal(t, 5000, req.Iterations)
	require.NotNil(t, req.Seed)
	assert.Equal(t, int64(3), *req.Seed)
	assert.Equal(t, "negative_binomial", req.Distribution)
	assert.True(t, req.Streaks)
	assert.Equal(t, 0.15, req.HomeBoost)
	assert.Equal(t, -0.05, req.AwayBoost)
	require.NotNil(t, req.HomeAdvantage)
	assert.Equal(t, 0.2, *req.HomeAdvantage)
	assert.Equal(t, 2.0, req.Odds[models.MarketHomeWin])

	assert.Len(t, req.Corpus.HeadToHead, 1)
	assert.Equal(t, 1, req.InputSkipped)
	require.Len(t, req.InputErrors, 1)
	assert.Contains(t, req.InputErrors[0], "abandoned")
}
