// Package consensus reconciles engine probabilities with bookmaker prices
// into ranked value opportunities and a cross-engine agreement summary.
package consensus

import (
	"fmt"
	"math"
	"sort"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/true-odds/internal/calibration"
	"github.com/yourusername/true-odds/internal/config"
	"github.com/yourusername/true-odds/internal/logger"
	"github.com/yourusername/true-odds/internal/models"
)

// Config holds comparison thresholds
type Config struct {
	MinEdge           float64
	MediumEdge        float64
	HighEdge          float64
	MassiveEdge       float64
	BoostScale        float64
	MaxConfidence     float64
	ConflictThreshold float64
	TieBreak          TieBreakPolicy
}

// DefaultConfig flags edges above 3% and tiers them at 3/7/15%
func DefaultConfig() Config {
	return Config{
		MinEdge:           0.03,
		MediumEdge:        0.03,
		HighEdge:          0.07,
		MassiveEdge:       0.15,
		BoostScale:        0.10,
		MaxConfidence:     0.95,
		ConflictThreshold: 0.4,
		TieBreak:          DefaultTieBreak(),
	}
}

// FromConfig converts app config to comparator config
func FromConfig(cfg *config.ConsensusConfig) (Config, error) {
	if cfg == nil {
		return Config{}, fmt.Errorf("%w: consensus config is required", models.ErrInvalidConfig)
	}
	c := Config{
		MinEdge:           cfg.MinEdge,
		MediumEdge:        cfg.MediumEdge,
		HighEdge:          cfg.HighEdge,
		MassiveEdge:       cfg.MassiveEdge,
		BoostScale:        cfg.BoostScale,
		MaxConfidence:     cfg.MaxConfidence,
		ConflictThreshold: cfg.ConflictThreshold,
		TieBreak:          EdgeThresholdPolicy{Threshold: cfg.TieBreakEdge},
	}
	return c, c.Validate()
}

// Validate checks tier ordering and bounds
func (c Config) Validate() error {
	if c.MinEdge < 0 || c.MediumEdge < 0 || c.MediumEdge > c.HighEdge || c.HighEdge > c.MassiveEdge {
		return fmt.Errorf("%w: edge tiers must satisfy 0 <= medium <= high <= massive", models.ErrInvalidConfig)
	}
	if c.MaxConfidence <= 0 || c.MaxConfidence > 1 {
		return fmt.Errorf("%w: max confidence must be in (0, 1]", models.ErrInvalidConfig)
	}
	if c.BoostScale < 0 {
		return fmt.Errorf("%w: boost scale cannot be negative", models.ErrInvalidConfig)
	}
	if c.TieBreak == nil {
		return fmt.Errorf("%w: a tie break policy is required", models.ErrInvalidConfig)
	}
	return nil
}

func (c Config) tier(edge float64) (models.Tier, bool) {
	switch {
	case edge >= c.MassiveEdge:
		return models.TierMassive, true
	case edge >= c.HighEdge:
		return models.TierHigh, true
	case edge >= c.MediumEdge:
		return models.TierMedium, true
	default:
		return "", false
	}
}

func recommendation(t models.Tier) string {
	switch t {
	case models.TierMassive:
		return models.RecommendationStrongBuy
	case models.TierHigh:
		return models.RecommendationBuy
	default:
		return models.RecommendationHold
	}
}

// EngineOutput is one engine's view of the fixture
type EngineOutput struct {
	Engine        models.Engine
	Probabilities map[models.MarketKey]float64
	Confidence    float64
}

// FromCalibration wraps calibrated simulator output
func FromCalibration(r *calibration.Result) EngineOutput {
	return EngineOutput{Engine: models.EngineSimulation, Probabilities: r.Table.Probabilities, Confidence: r.Confidence}
}

// FromPattern wraps a pattern prediction
func FromPattern(p *models.PatternPrediction) EngineOutput {
	return EngineOutput{Engine: models.EnginePattern, Probabilities: p.Probabilities, Confidence: p.Confidence}
}

// Input is one comparison request
type Input struct {
	RunID   string
	Odds    models.BookmakerOddsSet
	Engines []EngineOutput
}

// Result holds ranked opportunities and the consensus summary
type Result struct {
	Opportunities []models.ValueOpportunity `json:"opportunities"`
	Consensus     models.ConsensusResult    `json:"consensus"`
}

// Comparator compares engine outputs against bookmaker prices
type Comparator struct {
	cfg Config
	log *logger.ValueLogger
}

// NewComparator creates a comparator. A nil logger discards output.
func NewComparator(cfg Config, base *logrus.Logger) (*Comparator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if base == nil {
		base = logger.Discard()
	}
	return &Comparator{cfg: cfg, log: logger.NewValueLogger(base)}, nil
}

// Compare flags every priced market where some engine's edge exceeds
// MinEdge and publishes those whose confidence-weighted edge reaches
// MediumEdge. The tier comes from that weighted edge. It works with a
// single engine; the agreement boost is then zero.
func (c *Comparator) Compare(in Input) (*Result, error) {
	if len(in.Engines) == 0 {
		return nil, fmt.Errorf("%w: at least one engine output is required", models.ErrInvalidConfig)
	}
	if err := in.Odds.Validate(); err != nil {
		return nil, err
	}

	result := &Result{Opportunities: []models.ValueOpportunity{}}
	summary := &result.Consensus
	summary.TieBreakPolicy = c.cfg.TieBreak.Name()
	for _, e := range in.Engines {
		summary.Engines = append(summary.Engines, e.Engine)
	}
	multiEngine := len(in.Engines) > 1

	compared, agreed := 0, 0
	for _, key := range in.Odds.Keys() {
		odds := in.Odds[key]
		implied := 1 / odds

		var (
			priced              []EngineOutput
			edges               []float64
			maxEdge             = math.Inf(-1)
			weighted, confTotal float64
			confSquared         float64
		)
		for _, e := range in.Engines {
			p, ok := e.Probabilities[key]
			if !ok {
				continue
			}
			edge := p/implied - 1
			priced = append(priced, e)
			edges = append(edges, edge)
			maxEdge = math.Max(maxEdge, edge)
			weighted += e.Confidence * p
			confTotal += e.Confidence
			confSquared += e.Confidence * e.Confidence
		}
		if len(priced) == 0 {
			summary.UnpricedMarkets = append(summary.UnpricedMarkets, key)
			continue
		}
		if maxEdge <= c.cfg.MinEdge {
			continue
		}

		var trueP, marketConfidence float64
		if confTotal > 0 {
			trueP = weighted / confTotal
			marketConfidence = confSquared / confTotal
		} else {
			for _, e := range priced {
				trueP += e.Probabilities[key]
			}
			trueP /= float64(len(priced))
		}

		allPositive := true
		for _, edge := range edges {
			if edge <= 0 {
				allPositive = false
			}
		}
		agreement := models.MarketAgreement{Market: key, Compared: multiEngine && len(priced) == len(in.Engines)}
		if agreement.Compared {
			compared++
			agreement.Agree = allPositive
			if allPositive {
				agreed++
			}
		}
		summary.Agreements = append(summary.Agreements, agreement)

		// one engine can flag a market, the blended edge decides whether it is published
		consensusEdge := trueP/implied - 1
		tier, ok := c.cfg.tier(consensusEdge)
		if !ok {
			c.log.LogWeakConsensus(in.RunID, string(key), maxEdge, consensusEdge)
			continue
		}

		opp := models.ValueOpportunity{
			ID:                 uuid.New(),
			Market:             key,
			TrueProbability:    trueP,
			ImpliedProbability: implied,
			BookmakerOdds:      odds,
			Edge:               consensusEdge,
			EdgePercentage:     (odds*trueP - 1) * 100,
			Confidence:         marketConfidence,
			Tier:               tier,
			Recommendation:     recommendation(tier),
		}
		for i, e := range priced {
			edge := edges[i]
			switch e.Engine {
			case models.EngineSimulation:
				opp.SimulationEdge = &edge
			case models.EnginePattern:
				opp.PatternEdge = &edge
			}
			if edge > c.cfg.MinEdge {
				opp.Sources = append(opp.Sources, e.Engine)
			}
		}
		result.Opportunities = append(result.Opportunities, opp)
	}

	if compared > 0 {
		summary.AgreementFraction = float64(agreed) / float64(compared)
		summary.DisagreementCount = compared - agreed
	}
	summary.AgreementLevel = c.agreementLevel(multiEngine, compared, summary.AgreementFraction)
	if multiEngine {
		summary.ConfidenceBoost = c.cfg.BoostScale * summary.AgreementFraction
	}
	summary.BaseConfidence = baseConfidence(in.Engines)
	summary.OverallConfidence = math.Min(c.cfg.MaxConfidence, summary.BaseConfidence+summary.ConfidenceBoost)
	summary.ConflictAreas = c.conflicts(in.Engines)

	for i := range result.Opportunities {
		opp := &result.Opportunities[i]
		opp.Confidence = math.Min(c.cfg.MaxConfidence, opp.Confidence+summary.ConfidenceBoost)
	}
	rank(result.Opportunities)
	c.pickBest(summary, result.Opportunities)

	for _, opp := range result.Opportunities {
		c.log.LogOpportunity(in.RunID, string(opp.Market), string(opp.Tier), opp.Recommendation, opp.Edge, opp.Confidence, opp.BookmakerOdds)
	}
	c.log.LogConsensus(in.RunID, summary.AgreementLevel, summary.AgreementFraction, summary.OverallConfidence,
		summary.ConfidenceBoost, len(result.Opportunities), len(summary.ConflictAreas))
	return result, nil
}

func (c *Comparator) agreementLevel(multiEngine bool, compared int, fraction float64) string {
	switch {
	case !multiEngine:
		return models.AgreementSingleEngine
	case compared == 0:
		return models.AgreementNoOverlap
	case fraction > 0.8:
		return models.AgreementHigh
	case fraction > 0.6:
		return models.AgreementMedium
	case fraction > 0.4:
		return models.AgreementLow
	default:
		return models.AgreementConflict
	}
}

// baseConfidence is the confidence-weighted mean of engine confidences
func baseConfidence(engines []EngineOutput) float64 {
	var sum, squares float64
	for _, e := range engines {
		sum += e.Confidence
		squares += e.Confidence * e.Confidence
	}
	if sum == 0 {
		return 0
	}
	return squares / sum
}

// conflicts lists catalogue markets where the simulator and the pattern
// matcher differ by more than ConflictThreshold
func (c *Comparator) conflicts(engines []EngineOutput) []models.MarketKey {
	var sim, pat *EngineOutput
	for i := range engines {
		switch engines[i].Engine {
		case models.EngineSimulation:
			sim = &engines[i]
		case models.EnginePattern:
			pat = &engines[i]
		}
	}
	if sim == nil || pat == nil {
		return nil
	}
	var out []models.MarketKey
	for _, key := range models.Catalogue() {
		a, okA := sim.Probabilities[key]
		b, okB := pat.Probabilities[key]
		if okA && okB && math.Abs(a-b) > c.cfg.ConflictThreshold {
			out = append(out, key)
		}
	}
	return out
}

// rank orders by tier, then consensus edge, then market key
func rank(opps []models.ValueOpportunity) {
	sort.SliceStable(opps, func(i, j int) bool {
		a, b := opps[i], opps[j]
		if a.Tier.Rank() != b.Tier.Rank() {
			return a.Tier.Rank() > b.Tier.Rank()
		}
		if a.Edge != b.Edge {
			return a.Edge > b.Edge
		}
		return a.Market < b.Market
	})
}

func (c *Comparator) pickBest(summary *models.ConsensusResult, opps []models.ValueOpportunity) {
	if len(opps) == 0 {
		summary.Best, summary.TieBreakReason = c.cfg.TieBreak.Choose(nil, nil)
		return
	}
	byEdge, byProb := &opps[0], &opps[0]
	for i := range opps {
		o := &opps[i]
		if o.Edge > byEdge.Edge {
			byEdge = o
		}
		if o.TrueProbability > byProb.TrueProbability ||
			(o.TrueProbability == byProb.TrueProbability && o.Edge > byProb.Edge) {
			byProb = o
		}
	}
	edgeCopy, probCopy := *byEdge, *byProb
	summary.BestByEdge = &edgeCopy
	summary.BestByProbability = &probCopy
	summary.Best, summary.TieBreakReason = c.cfg.TieBreak.Choose(summary.BestByEdge, summary.BestByProbability)
}
