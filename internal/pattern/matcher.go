// Package pattern predicts market probabilities from historical analogy
// alone: recency and stream weighted outcome frequencies over fingerprinted
// past matches.
package pattern

import (
	"fmt"
	"math"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/true-odds/internal/config"
	"github.com/yourusername/true-odds/internal/fingerprint"
	"github.com/yourusername/true-odds/internal/logger"
	"github.com/yourusername/true-odds/internal/models"
)

// Config holds matcher weights
type Config struct {
	Decay            float64 `json:"decay"`
	HeadToHeadWeight float64 `json:"h2h_weight"`
	FormWeight       float64 `json:"form_weight"`
	SampleTarget     int     `json:"sample_target"`
	MaxConfidence    float64 `json:"max_confidence"`
}

// DefaultConfig weights head-to-head 1.5x generic form with 0.9 recency decay
func DefaultConfig() Config {
	return Config{
		Decay:            0.9,
		HeadToHeadWeight: 1.5,
		FormWeight:       1.0,
		SampleTarget:     20,
		MaxConfidence:    0.95,
	}
}

// FromConfig converts app config to matcher config
func FromConfig(cfg *config.PatternConfig) (Config, error) {
	if cfg == nil {
		return Config{}, fmt.Errorf("%w: pattern config is required", models.ErrInvalidConfig)
	}
	c := Config{
		Decay:            cfg.Decay,
		HeadToHeadWeight: cfg.HeadToHeadWeight,
		FormWeight:       cfg.FormWeight,
		SampleTarget:     cfg.SampleTarget,
		MaxConfidence:    cfg.MaxConfidence,
	}
	return c, c.Validate()
}

// Validate rejects unusable weights
func (c Config) Validate() error {
	if c.Decay <= 0 || c.Decay > 1 {
		return fmt.Errorf("%w: decay must be in (0, 1], got %.3f", models.ErrInvalidConfig, c.Decay)
	}
	if c.HeadToHeadWeight < 0 || c.FormWeight < 0 || c.HeadToHeadWeight+c.FormWeight == 0 {
		return fmt.Errorf("%w: stream weights must be non-negative and not all zero", models.ErrInvalidConfig)
	}
	if c.SampleTarget < 1 {
		return fmt.Errorf("%w: sample target must be positive", models.ErrInvalidConfig)
	}
	if c.MaxConfidence <= 0 || c.MaxConfidence > 1 {
		return fmt.Errorf("%w: max confidence must be in (0, 1]", models.ErrInvalidConfig)
	}
	return nil
}

func (c Config) streamWeight(role models.Role) float64 {
	if role == models.RoleHeadToHead {
		return c.HeadToHeadWeight
	}
	return c.FormWeight
}

// Matcher turns a historical corpus into a pattern prediction
type Matcher struct {
	cfg Config
	log *logger.PatternLogger
}

// NewMatcher creates a matcher. A nil logger discards output.
func NewMatcher(cfg Config, base *logrus.Logger) (*Matcher, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if base == nil {
		base = logger.Discard()
	}
	return &Matcher{cfg: cfg, log: logger.NewPatternLogger(base)}, nil
}

// weightedCounts accumulates recency and stream weighted market hits
type weightedCounts struct {
	hits  [models.MarketCount]float64
	total float64
}

func (w *weightedCounts) add(f fingerprint.Fingerprint, weight float64) {
	mask := f.Mask()
	for i := range w.hits {
		if mask&(1<<uint(i)) != 0 {
			w.hits[i] += weight
		}
	}
	w.total += weight
}

// Predict matches the corpus. Records are expected most recent first; the
// i-th record of a stream weighs decay^i times its stream weight. Malformed
// records are skipped and counted. An empty corpus, or one with no valid
// record left, returns ErrInsufficientHistory.
func (m *Matcher) Predict(corpus models.HistoricalCorpus) (*models.PatternPrediction, error) {
	var counts weightedCounts
	streamCounts := make(map[models.Role]int, 3)
	skippedByRole := make(map[models.Role]int, 3)
	codes := make([]string, 0, 3)
	sampleSize, skipped, present := 0, 0, 0

	for _, role := range models.Roles() {
		records := corpus.Stream(role)
		prints := make([]fingerprint.Fingerprint, 0, len(records))
		weight := m.cfg.streamWeight(role)

		for i, record := range records {
			f, err := fingerprint.Encode(record)
			if err != nil {
				skipped++
				skippedByRole[role]++
				m.log.LogRecordSkipped(string(role), i, err)
				continue
			}
			prints = append(prints, f)
			if weight > 0 {
				counts.add(f, math.Pow(m.cfg.Decay, float64(i))*weight)
			}
		}

		streamCounts[role] = len(prints)
		sampleSize += len(prints)
		if len(prints) > 0 {
			present++
		}
		codes = append(codes, fingerprint.SequenceCode(role, prints))
	}

	if sampleSize == 0 || counts.total == 0 {
		m.log.LogInsufficientHistory(corpus.Len(), skipped)
		return nil, fmt.Errorf("%w: %d records supplied, %d skipped as malformed", models.ErrInsufficientHistory, corpus.Len(), skipped)
	}

	confidence := math.Min(1, float64(sampleSize)/float64(m.cfg.SampleTarget)) * (0.6 + 0.4*float64(present)/3)
	confidence = math.Min(m.cfg.MaxConfidence, confidence)

	prediction := &models.PatternPrediction{
		Probabilities:  counts.probabilities(),
		Confidence:     confidence,
		SampleSize:     sampleSize,
		Quality:        models.QualityFor(confidence),
		PatternID:      fingerprint.PatternID(codes...),
		SkippedRecords: skipped,
		StreamCounts:   streamCounts,
		SkippedByRole:  skippedByRole,
		Reasoning:      reasoning(streamCounts, skipped, counts.total, codes),
	}
	m.log.LogPatternMatched(prediction.PatternID, sampleSize, skipped, confidence, string(prediction.Quality))
	return prediction, nil
}

// probabilities applies Laplace smoothing to every market, renormalises
// groups with more than two outcomes and derives double chance from 1X2
func (w *weightedCounts) probabilities() map[models.MarketKey]float64 {
	probs := make(map[models.MarketKey]float64, models.MarketCount)
	for i, key := range models.Catalogue() {
		probs[key] = (w.hits[i] + 1) / (w.total + 2)
	}
	for _, group := range models.MarketGroups() {
		if group.Partition && len(group.Keys) > 2 {
			models.NormalizeGroup(probs, group.Keys)
		}
	}
	models.DeriveDoubleChance(probs)
	return probs
}

func reasoning(streamCounts map[models.Role]int, skipped int, weightedTotal float64, codes []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d h2h, %d home form, %d away form matches",
		streamCounts[models.RoleHeadToHead], streamCounts[models.RoleHomeForm], streamCounts[models.RoleAwayForm])
	if skipped > 0 {
		fmt.Fprintf(&b, " (%d malformed skipped)", skipped)
	}
	fmt.Fprintf(&b, "; weighted sample %.2f; sequences %s", weightedTotal, strings.Join(codes, " "))
	return b.String()
}
