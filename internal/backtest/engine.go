package backtest

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/true-odds/internal/calibration"
	"github.com/yourusername/true-odds/internal/logger"
	"github.com/yourusername/true-odds/internal/models"
	"github.com/yourusername/true-odds/internal/simulation"
)

// Simulator produces a probability table for one fixture
type Simulator interface {
	Run(ctx context.Context, cfg simulation.Config) (*simulation.Result, error)
}

// Bet outcomes
const (
	BetWon  = "won"
	BetLost = "lost"
	BetPush = "push"
)

// Bet is one flat stake placed where the calibrated price beat the bookmaker
type Bet struct {
	Fixture     string           `json:"fixture"`
	Market      models.MarketKey `json:"market"`
	Odds        float64          `json:"odds"`
	Probability float64          `json:"probability"`
	Edge        float64          `json:"edge"`
	Stake       float64          `json:"stake"`
	Outcome     string           `json:"outcome"`
	Profit      float64          `json:"profit"`
}

// FixtureScore is the forecast quality of one replayed fixture
type FixtureScore struct {
	Fixture         string  `json:"fixture"`
	Result          string  `json:"result"`
	Factor          float64 `json:"calibration_factor"`
	RawRPS          float64 `json:"raw_rps"`
	CalibratedRPS   float64 `json:"calibrated_rps"`
	RawBrier        float64 `json:"raw_brier"`
	CalibratedBrier float64 `json:"calibrated_brier"`
}

// Report is the outcome of a backtest run
type Report struct {
	RunID     uuid.UUID      `json:"run_id"`
	Config    Config         `json:"config"`
	Fixtures  []FixtureScore `json:"fixtures"`
	Bets      []Bet          `json:"bets"`
	Metrics   Metrics        `json:"metrics"`
	TargetRPS float64        `json:"target_rps"`
	Duration  time.Duration  `json:"duration"`
}

// Engine replays fixtures through the simulator and calibration layer
type Engine struct {
	config    Config
	base      simulation.Config
	sim       Simulator
	adjuster  *calibration.Adjuster
	targetRPS float64
	logger    *logrus.Entry
}

// NewEngine creates a backtest engine. base supplies every simulation
// parameter except the rates, iteration count and seed. A nil logger
// discards output.
func NewEngine(cfg Config, base simulation.Config, sim Simulator, cal calibration.Config, log *logrus.Logger) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if sim == nil {
		return nil, fmt.Errorf("%w: simulator is required", models.ErrInvalidConfig)
	}
	if log == nil {
		log = logger.Discard()
	}
	adjuster, err := calibration.NewAdjuster(cal, log)
	if err != nil {
		return nil, err
	}
	return &Engine{
		config:    cfg,
		base:      base,
		sim:       sim,
		adjuster:  adjuster,
		targetRPS: cal.TargetRPS,
		logger:    log.WithField("component", "backtest"),
	}, nil
}

// Config returns the backtest configuration
func (e *Engine) Config() Config {
	return e.config
}

// Run replays every fixture in order. Fixture i is simulated with seed
// Seed+i, so a seeded run is reproducible. Any simulation failure aborts
// the run.
func (e *Engine) Run(ctx context.Context, fixtures []Fixture) (*Report, error) {
	start := time.Now()
	report := &Report{
		RunID:     uuid.New(),
		Config:    e.config,
		Fixtures:  make([]FixtureScore, 0, len(fixtures)),
		TargetRPS: e.targetRPS,
	}
	log := e.logger.WithField("run_id", report.RunID.String())
	log.WithField("fixtures", len(fixtures)).Info("Starting backtest run")

	for i, fixture := range fixtures {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("backtest stopped at fixture %d: %w", i, err)
		}
		if err := fixture.Validate(); err != nil {
			return nil, fmt.Errorf("fixture %q: %w", fixture.Label, err)
		}

		score, bets, err := e.replay(ctx, i, fixture)
		if err != nil {
			return nil, fmt.Errorf("fixture %q: %w", fixture.Label, err)
		}
		report.Fixtures = append(report.Fixtures, score)
		report.Bets = append(report.Bets, bets...)

		log.WithFields(logrus.Fields{
			"fixture":        fixture.Label,
			"raw_rps":        score.RawRPS,
			"calibrated_rps": score.CalibratedRPS,
			"bets":           len(bets),
		}).Debug("Fixture replayed")
	}

	report.Metrics = calculateMetrics(report.Fixtures, report.Bets)
	report.Duration = time.Since(start)

	log.WithFields(logrus.Fields{
		"fixtures":       report.Metrics.Fixtures,
		"calibrated_rps": report.Metrics.MeanCalibratedRPS,
		"bets":           report.Metrics.TotalBets,
		"roi":            report.Metrics.ROI,
		"duration_ms":    report.Duration.Milliseconds(),
	}).Info("Backtest completed")
	return report, nil
}

func (e *Engine) replay(ctx context.Context, index int, fixture Fixture) (FixtureScore, []Bet, error) {
	simCfg := e.base
	simCfg.HomeLambda = fixture.HomeRate
	simCfg.AwayLambda = fixture.AwayRate
	simCfg.HomeBoost, simCfg.AwayBoost = 0, 0
	simCfg.Iterations = e.config.Iterations
	simCfg.Seed = e.config.seedFor(index)

	result, err := e.sim.Run(ctx, simCfg)
	if err != nil {
		return FixtureScore{}, nil, err
	}
	calibrated, err := e.adjuster.Adjust(result.Table, calibration.FixtureContext{
		HomeRate: result.HomeRate,
		AwayRate: result.AwayRate,
	})
	if err != nil {
		return FixtureScore{}, nil, err
	}

	outcome := calibration.MatchOutcome(fixture.Result)
	raw := calibration.MatchForecast(result.Table)
	cal := calibration.MatchForecast(calibrated.Table)
	score := FixtureScore{
		Fixture:         fixture.Label,
		Result:          fixture.Result.String(),
		Factor:          calibrated.Factor,
		RawRPS:          calibration.RPS(raw, outcome),
		CalibratedRPS:   calibration.RPS(cal, outcome),
		RawBrier:        calibration.Brier(raw, outcome),
		CalibratedBrier: calibration.Brier(cal, outcome),
	}

	var bets []Bet
	settled := settlementTable(fixture.Result)
	for _, key := range fixture.Odds.Keys() {
		if _, isPush := pushSides[key]; isPush {
			continue
		}
		p, ok := calibrated.Table.Probabilities[key]
		if !ok {
			continue
		}
		odds := fixture.Odds[key]
		edge := p*odds - 1
		if edge < e.config.MinEdge {
			continue
		}
		bets = append(bets, settle(fixture.Label, key, odds, p, edge, e.config.FlatStake, settled))
	}
	return score, bets, nil
}

// pushSides maps each whole-line push outcome to the two selections it voids
var pushSides = map[models.MarketKey][2]models.MarketKey{
	models.MarketAHHomeMinus1Push: {models.MarketAHHomeMinus1, models.MarketAHAwayPlus1},
	models.MarketAHAwayMinus1Push: {models.MarketAHAwayMinus1, models.MarketAHHomePlus1},
}

// settlementTable tabulates the single real result, so every market the
// final score satisfies reads 1 and every other reads 0
func settlementTable(result models.MatchScoreline) models.MarketProbabilityTable {
	tally := simulation.NewTally()
	_ = tally.Add(result)
	return tally.Table()
}

func voided(key models.MarketKey, settled models.MarketProbabilityTable) bool {
	for push, sides := range pushSides {
		if (sides[0] == key || sides[1] == key) && settled.Probabilities[push] == 1 {
			return true
		}
	}
	return false
}

func settle(label string, key models.MarketKey, odds, p, edge, stake float64, settled models.MarketProbabilityTable) Bet {
	bet := Bet{
		Fixture:     label,
		Market:      key,
		Odds:        odds,
		Probability: p,
		Edge:        edge,
		Stake:       stake,
	}
	switch {
	case voided(key, settled):
		bet.Outcome = BetPush
	case settled.Probabilities[key] == 1:
		bet.Outcome = BetWon
		bet.Profit = stake * (odds - 1)
	default:
		bet.Outcome = BetLost
		bet.Profit = -stake
	}
	return bet
}
