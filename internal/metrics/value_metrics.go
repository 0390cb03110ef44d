package metrics

import "github.com/prometheus/client_golang/prometheus"

// Value detection counter vectors
var (
	PatternPredictionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "pattern_predictions_total",
		Help:      "Total number of pattern predictions by quality",
	}, []string{"quality"})

	SkippedRecordsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "skipped_records_total",
		Help:      "Total number of malformed historical records skipped by stream",
	}, []string{"role"})

	OpportunitiesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "opportunities_total",
		Help:      "Total number of value opportunities by tier",
	}, []string{"tier"})

	StakeSuggestionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "stake_suggestions_total",
		Help:      "Total number of stake suggestions by priority",
	}, []string{"priority"})
)

// Value detection gauges and histograms
var (
	ConsensusConfidence = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "consensus_confidence",
		Help:      "Overall confidence of the most recent consensus",
	})

	KellyFraction = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "kelly_fraction",
		Help:      "Full Kelly fractions of suggested stakes",
		Buckets:   []float64{0.01, 0.02, 0.05, 0.1, 0.2, 0.3, 0.5, 1.0},
	})
)

// RecordPatternPrediction records a pattern prediction and its skipped records.
func RecordPatternPrediction(quality string, skippedByRole map[string]int) {
	PatternPredictionsTotal.WithLabelValues(quality).Inc()
	for role, n := range skippedByRole {
		if n > 0 {
			SkippedRecordsTotal.WithLabelValues(role).Add(float64(n))
		}
	}
}

// RecordOpportunity records a detected opportunity.
func RecordOpportunity(tier string) {
	OpportunitiesTotal.WithLabelValues(tier).Inc()
}

// UpdateConsensusConfidence sets the last overall confidence.
func UpdateConsensusConfidence(confidence float64) {
	ConsensusConfidence.Set(confidence)
}

// RecordStakeSuggestion records a stake suggestion.
func RecordStakeSuggestion(priority string, kellyFraction float64) {
	StakeSuggestionsTotal.WithLabelValues(priority).Inc()
	KellyFraction.Observe(kellyFraction)
}
