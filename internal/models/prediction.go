package models

// MatchQuality is the qualitative label attached to a pattern prediction
type MatchQuality string

const (
	MatchQualityLow    MatchQuality = "Low"
	MatchQualityMedium MatchQuality = "Medium"
	MatchQualityHigh   MatchQuality = "High"
)

// QualityFor maps a confidence to its label: <0.4 Low, 0.4-0.7 Medium, >0.7 High
func QualityFor(confidence float64) MatchQuality {
	switch {
	case confidence > 0.7:
		return MatchQualityHigh
	case confidence >= 0.4:
		return MatchQualityMedium
	default:
		return MatchQualityLow
	}
}

// PatternPrediction is the output of historical similarity matching
type PatternPrediction struct {
	Probabilities  map[MarketKey]float64 `json:"probabilities"`
	Confidence     float64               `json:"confidence"`
	SampleSize     int                   `json:"sample_size"`
	Quality        MatchQuality          `json:"pattern_match_quality"`
	PatternID      string                `json:"pattern_id"`
	SkippedRecords int                   `json:"skipped_records"`
	StreamCounts   map[Role]int          `json:"stream_counts"`
	SkippedByRole  map[Role]int          `json:"skipped_by_role,omitempty"`
	Reasoning      string                `json:"reasoning"`
}

// Probability returns the predicted probability for a market
func (p *PatternPrediction) Probability(key MarketKey) (float64, bool) {
	if p == nil {
		return 0, false
	}
	v, ok := p.Probabilities[key]
	return v, ok
}
