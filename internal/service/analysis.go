// Package service composes the probability engines into one analysis run.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/true-odds/internal/cache"
	"github.com/yourusername/true-odds/internal/calibration"
	"github.com/yourusername/true-odds/internal/config"
	"github.com/yourusername/true-odds/internal/consensus"
	"github.com/yourusername/true-odds/internal/logger"
	"github.com/yourusername/true-odds/internal/metrics"
	"github.com/yourusername/true-odds/internal/models"
	"github.com/yourusername/true-odds/internal/pattern"
	"github.com/yourusername/true-odds/internal/simulation"
	"github.com/yourusername/true-odds/internal/strategy"
)

// Simulator produces a market probability table from a run config
type Simulator interface {
	Run(ctx context.Context, cfg simulation.Config) (*simulation.Result, error)
}

// Calibrator shrinks raw simulated probabilities
type Calibrator interface {
	Adjust(table models.MarketProbabilityTable, fixture calibration.FixtureContext) (*calibration.Result, error)
}

// PatternMatcher predicts markets from historical scorelines
type PatternMatcher interface {
	Predict(corpus models.HistoricalCorpus) (*models.PatternPrediction, error)
}

// Comparator reconciles engine outputs against bookmaker prices
type Comparator interface {
	Compare(in consensus.Input) (*consensus.Result, error)
}

// DistributionAuto picks the goal model from the dispersion of the history
const DistributionAuto = "auto"

// Request is one fixture to analyse
type Request struct {
	Fixture string
	// FixtureKey is a normalised fixture identifier for file names and logs
	FixtureKey string
	Odds       models.BookmakerOddsSet
	Corpus     models.HistoricalCorpus
	// Bankroll of zero falls back to the configured bankroll
	Bankroll float64
	// HomeRate and AwayRate of zero are estimated from Corpus
	HomeRate     float64
	AwayRate     float64
	Iterations   int
	Seed         *int64
	Distribution string
	// HomeBoost and AwayBoost adjust expected goals; streak boosts add on top
	HomeBoost float64
	AwayBoost float64
	// HomeAdvantage replaces the configured advantage when set
	HomeAdvantage *float64
	Streaks       bool
	// InputSkipped counts records dropped before they reached the corpus
	InputSkipped int
	// InputErrors describes the first few dropped records
	InputErrors []string
}

// Analysis is the full output of one run
type Analysis struct {
	RunID         uuid.UUID                 `json:"run_id"`
	Fixture       string                    `json:"fixture"`
	FixtureKey    string                    `json:"fixture_key,omitempty"`
	CreatedAt     time.Time                 `json:"created_at"`
	Simulation    *simulation.Result        `json:"simulation"`
	Calibration   *calibration.Result       `json:"calibration"`
	Pattern       *models.PatternPrediction `json:"pattern,omitempty"`
	Opportunities []models.ValueOpportunity `json:"opportunities"`
	Consensus     models.ConsensusResult    `json:"consensus"`
	Signals       []strategy.Signal         `json:"signals"`
	Bankroll      float64                   `json:"bankroll"`
	Warnings      []models.Warning          `json:"warnings,omitempty"`
	CacheHit      bool                      `json:"cache_hit"`
	Duration      time.Duration             `json:"duration"`
}

// Dependencies are the collaborators of an Analyzer. Matcher and Cache may
// be nil: without a matcher every comparison runs on the simulator alone.
type Dependencies struct {
	Simulator  Simulator
	Calibrator Calibrator
	Matcher    PatternMatcher
	Comparator Comparator
	Strategy   strategy.Strategy
	Cache      *cache.SimulationCache
}

// Analyzer runs simulate, calibrate, pattern match, compare and stake in order
type Analyzer struct {
	simulation config.SimulationConfig
	bankroll   float64
	deps       Dependencies
	audit      *logger.AuditLogger
	value      *logger.ValueLogger
	logger     *logrus.Logger
	now        func() time.Time
}

// NewAnalyzer wires an analyzer from explicit collaborators
func NewAnalyzer(cfg *config.Config, deps Dependencies, log *logrus.Logger) (*Analyzer, error) {
	if cfg == nil {
		return nil, fmt.Errorf("%w: config is required", models.ErrInvalidConfig)
	}
	if deps.Simulator == nil || deps.Calibrator == nil || deps.Comparator == nil || deps.Strategy == nil {
		return nil, fmt.Errorf("%w: simulator, calibrator, comparator and strategy are required", models.ErrInvalidConfig)
	}
	if log == nil {
		log = logger.Discard()
	}
	return &Analyzer{
		simulation: cfg.Simulation,
		bankroll:   cfg.Staking.Bankroll,
		deps:       deps,
		audit:      logger.NewAuditLogger(log),
		value:      logger.NewValueLogger(log),
		logger:     log,
		now:        time.Now,
	}, nil
}

// NewAnalyzerFromConfig builds every engine from the loaded configuration
func NewAnalyzerFromConfig(cfg *config.Config, log *logrus.Logger) (*Analyzer, error) {
	if cfg == nil {
		return nil, fmt.Errorf("%w: config is required", models.ErrInvalidConfig)
	}

	calCfg, err := calibration.FromConfig(&cfg.Calibration)
	if err != nil {
		return nil, err
	}
	adjuster, err := calibration.NewAdjuster(calCfg, log)
	if err != nil {
		return nil, err
	}

	conCfg, err := consensus.FromConfig(&cfg.Consensus)
	if err != nil {
		return nil, err
	}
	comparator, err := consensus.NewComparator(conCfg, log)
	if err != nil {
		return nil, err
	}

	valueStrategy, err := strategy.FromConfig(&cfg.Staking, log)
	if err != nil {
		return nil, err
	}

	deps := Dependencies{
		Simulator:  simulation.NewEngine(log),
		Calibrator: adjuster,
		Comparator: comparator,
		Strategy:   valueStrategy,
	}

	if cfg.Pattern.Enabled {
		patCfg, err := pattern.FromConfig(&cfg.Pattern)
		if err != nil {
			return nil, err
		}
		matcher, err := pattern.NewMatcher(patCfg, log)
		if err != nil {
			return nil, err
		}
		deps.Matcher = matcher
	}

	if cfg.Cache.Enabled {
		deps.Cache = cache.New(
			time.Duration(cfg.Cache.TTLSeconds)*time.Second,
			time.Duration(cfg.Cache.CleanupSeconds)*time.Second,
			cfg.Cache.MaxEntries,
		)
	}

	return NewAnalyzer(cfg, deps, log)
}

// Analyze runs every engine for one fixture
func (a *Analyzer) Analyze(ctx context.Context, req Request) (analysis *Analysis, err error) {
	start := a.now()
	defer func() {
		status := "success"
		if err != nil {
			status = "error"
		}
		metrics.RecordAnalysis(status, time.Since(start).Seconds())
	}()

	if err := req.Odds.Validate(); err != nil {
		return nil, err
	}
	if len(req.Odds) == 0 {
		return nil, fmt.Errorf("%w: no priced markets", models.ErrInvalidConfig)
	}
	bankroll := req.Bankroll
	if bankroll == 0 {
		bankroll = a.bankroll
	}

	simCfg, err := SimulationConfig(a.simulation, req)
	if err != nil {
		return nil, err
	}

	analysis = &Analysis{
		RunID:      uuid.New(),
		Fixture:    req.Fixture,
		FixtureKey: req.FixtureKey,
		CreatedAt:  start.UTC(),
		Bankroll:   bankroll,
	}
	runID := analysis.RunID.String()
	a.audit.LogAnalysisRequest(runID, req.Fixture, simCfg.Seed, simCfg.Iterations, string(simCfg.Distribution),
		req.Corpus.Len(), len(req.Odds), analysis.CreatedAt)

	analysis.Simulation, analysis.CacheHit, err = a.simulate(ctx, runID, simCfg)
	if err != nil {
		return nil, err
	}

	home, away := simCfg.EffectiveRates()
	analysis.Calibration, err = a.deps.Calibrator.Adjust(analysis.Simulation.Table, calibration.FixtureContext{
		HomeRate:          home,
		AwayRate:          away,
		HeadToHeadMatches: len(req.Corpus.HeadToHead),
		HasRecentForm:     len(req.Corpus.HomeForm)+len(req.Corpus.AwayForm) > 0,
	})
	if err != nil {
		return nil, fmt.Errorf("calibration failed: %w", err)
	}
	metrics.RecordCalibration(analysis.Calibration.Factor, analysis.Calibration.Skipped)
	analysis.addWarnings(analysis.Calibration.Warnings...)

	engines := []consensus.EngineOutput{consensus.FromCalibration(analysis.Calibration)}
	analysis.Pattern, err = a.matchPatterns(runID, req.Corpus)
	if err != nil {
		return nil, err
	}
	if analysis.Pattern != nil {
		engines = append(engines, consensus.FromPattern(analysis.Pattern))
		if analysis.Pattern.SkippedRecords > 0 {
			analysis.addWarnings(models.WarningRecordsSkipped)
		}
	} else {
		analysis.addWarnings(models.WarningPatternUnavailable)
	}
	if req.InputSkipped > 0 {
		analysis.addWarnings(models.WarningRecordsSkipped)
		for _, e := range req.InputErrors {
			a.logger.WithField("run_id", runID).Warn("Record skipped: " + e)
		}
	}

	comparison, err := a.deps.Comparator.Compare(consensus.Input{
		RunID:   runID,
		Odds:    req.Odds,
		Engines: engines,
	})
	if err != nil {
		return nil, fmt.Errorf("comparison failed: %w", err)
	}
	analysis.Opportunities = comparison.Opportunities
	analysis.Consensus = comparison.Consensus
	for _, opp := range comparison.Opportunities {
		metrics.RecordOpportunity(string(opp.Tier))
	}
	metrics.UpdateConsensusConfidence(comparison.Consensus.OverallConfidence)

	analysis.Signals, err = a.deps.Strategy.Evaluate(ctx, strategy.Context{
		Opportunities:     comparison.Opportunities,
		Consensus:         &analysis.Consensus,
		Bankroll:          bankroll,
		CalibrationFactor: analysis.Calibration.Factor,
	})
	if err != nil {
		return nil, fmt.Errorf("staking failed: %w", err)
	}
	for _, s := range analysis.Signals {
		metrics.RecordStakeSuggestion(string(s.Priority), s.KellyFraction)
	}

	analysis.Duration = time.Since(start)
	a.logger.WithFields(logrus.Fields{
		"run_id":        runID,
		"fixture":       req.Fixture,
		"fixture_key":   req.FixtureKey,
		"opportunities": len(analysis.Opportunities),
		"signals":       len(analysis.Signals),
		"agreement":     analysis.Consensus.AgreementLevel,
		"cache_hit":     analysis.CacheHit,
		"warnings":      len(analysis.Warnings),
		"duration_ms":   analysis.Duration.Milliseconds(),
	}).Info("Analysis completed")

	return analysis, nil
}

// SimulationConfig applies request overrides on top of the configured run:
// explicit rates win over rates estimated from the corpus, and the "auto"
// distribution is resolved from the dispersion of historical goals
func SimulationConfig(base config.SimulationConfig, req Request) (simulation.Config, error) {
	if req.Iterations > 0 {
		base.Iterations = req.Iterations
	}
	if req.Seed != nil {
		base.Seed = *req.Seed
	}
	if req.Distribution != "" {
		base.Distribution = req.Distribution
	}
	if req.HomeAdvantage != nil {
		base.HomeAdvantage = *req.HomeAdvantage
	}

	goals := simulation.TotalGoals(req.Corpus)
	if base.Distribution == DistributionAuto {
		base.Distribution = string(simulation.RecommendDistribution(goals))
		if r, ok := simulation.EstimateDispersion(goals); ok && base.Distribution == string(simulation.DistributionNegativeBinomial) {
			base.Dispersion = r
		}
	}

	home, away := req.HomeRate, req.AwayRate
	if home <= 0 || away <= 0 {
		estHome, estAway := simulation.EstimateRates(req.Corpus)
		if home <= 0 {
			home = estHome
		}
		if away <= 0 {
			away = estAway
		}
	}

	cfg, err := simulation.FromConfig(&base, home, away)
	if err != nil {
		return simulation.Config{}, err
	}
	cfg.HomeBoost, cfg.AwayBoost = req.HomeBoost, req.AwayBoost
	if req.Streaks {
		streakHome, streakAway := simulation.StreakBoosts(req.Corpus)
		cfg.HomeBoost += streakHome
		cfg.AwayBoost += streakAway
	}
	return cfg, nil
}

func (a *Analyzer) simulate(ctx context.Context, runID string, cfg simulation.Config) (*simulation.Result, bool, error) {
	key, cacheable := cache.KeyFor(cfg)
	cacheable = cacheable && a.deps.Cache != nil
	if cacheable {
		if res, ok := a.deps.Cache.Get(key); ok {
			a.audit.LogCacheEvent(runID, key.String(), true)
			return res, true, nil
		}
		a.audit.LogCacheEvent(runID, key.String(), false)
	}

	res, err := a.deps.Simulator.Run(ctx, cfg)
	if err != nil {
		status := "error"
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			status = "cancelled"
		}
		metrics.RecordSimulation(string(cfg.Distribution), status, 0, 0)
		return nil, false, fmt.Errorf("simulation failed: %w", err)
	}
	metrics.RecordSimulation(string(cfg.Distribution), "success", res.Iterations, res.Duration.Seconds())

	if cacheable && !a.deps.Cache.Set(key, res) {
		a.logger.WithField("run_id", runID).Warn("Simulation cache full, result not stored")
	}
	return res, false, nil
}

// matchPatterns returns nil without error when the matcher is disabled or
// the history is unusable; any other failure aborts the run
func (a *Analyzer) matchPatterns(runID string, corpus models.HistoricalCorpus) (*models.PatternPrediction, error) {
	if a.deps.Matcher == nil {
		a.value.LogEngineDegraded(runID, string(models.EnginePattern), "pattern matching disabled")
		return nil, nil
	}

	prediction, err := a.deps.Matcher.Predict(corpus)
	if errors.Is(err, models.ErrInsufficientHistory) {
		a.value.LogEngineDegraded(runID, string(models.EnginePattern), err.Error())
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("pattern matching failed: %w", err)
	}

	skipped := make(map[string]int, len(prediction.SkippedByRole))
	for role, n := range prediction.SkippedByRole {
		skipped[string(role)] = n
	}
	metrics.RecordPatternPrediction(string(prediction.Quality), skipped)
	return prediction, nil
}

func (an *Analysis) addWarnings(ws ...models.Warning) {
	for _, w := range ws {
		seen := false
		for _, have := range an.Warnings {
			if have == w {
				seen = true
				break
			}
		}
		if !seen {
			an.Warnings = append(an.Warnings, w)
		}
	}
}

// Best returns the opportunity the tie-break policy chose, if any
func (an *Analysis) Best() *models.ValueOpportunity {
	return an.Consensus.Best
}
