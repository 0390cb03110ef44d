package models

import "github.com/google/uuid"

// Engine names a probability source
type Engine string

const (
	EngineSimulation Engine = "simulation"
	EnginePattern    Engine = "pattern"
)

// Tier classifies the magnitude of a flagged edge
type Tier string

const (
	TierMassive Tier = "massive"
	TierHigh    Tier = "high"
	TierMedium  Tier = "medium"
)

// Rank orders tiers, higher is stronger
func (t Tier) Rank() int {
	switch t {
	case TierMassive:
		return 3
	case TierHigh:
		return 2
	case TierMedium:
		return 1
	default:
		return 0
	}
}

// ValueOpportunity is one flagged mispricing
type ValueOpportunity struct {
	ID                 uuid.UUID `json:"id"`
	Market             MarketKey `json:"market"`
	TrueProbability    float64   `json:"true_probability"`
	ImpliedProbability float64   `json:"implied_probability"`
	BookmakerOdds      float64   `json:"bookmaker_odds"`
	Edge               float64   `json:"edge"`
	EdgePercentage     float64   `json:"edge_percentage"`
	SimulationEdge     *float64  `json:"simulation_edge,omitempty"`
	PatternEdge        *float64  `json:"pattern_edge,omitempty"`
	Confidence         float64   `json:"confidence"`
	Tier               Tier      `json:"tier"`
	Sources            []Engine  `json:"sources"`
	Recommendation     string    `json:"recommendation"`
}

// MarketAgreement records whether both engines point the same way on a market
type MarketAgreement struct {
	Market MarketKey `json:"market"`
	Agree  bool      `json:"agree"`
	// Compared is false when only one engine priced the market
	Compared bool `json:"compared"`
}

// ConsensusResult is the aggregate verdict across engines
type ConsensusResult struct {
	Agreements        []MarketAgreement `json:"agreements"`
	AgreementFraction float64           `json:"agreement_fraction"`
	AgreementLevel    string            `json:"agreement_level"`
	DisagreementCount int               `json:"disagreement_count"`
	ConflictAreas     []MarketKey       `json:"conflict_areas"`
	ConfidenceBoost   float64           `json:"confidence_boost"`
	BaseConfidence    float64           `json:"base_confidence"`
	OverallConfidence float64           `json:"overall_confidence"`
	BestByEdge        *ValueOpportunity `json:"best_by_edge,omitempty"`
	BestByProbability *ValueOpportunity `json:"best_by_probability,omitempty"`
	Best              *ValueOpportunity `json:"best,omitempty"`
	TieBreakPolicy    string            `json:"tie_break_policy"`
	TieBreakReason    string            `json:"tie_break_reason"`
	Engines           []Engine          `json:"engines"`
	UnpricedMarkets   []MarketKey       `json:"unpriced_markets"`
}

// Agreement labels for a consensus
const (
	AgreementHigh         = "HIGH"
	AgreementMedium       = "MEDIUM"
	AgreementLow          = "LOW"
	AgreementConflict     = "CONFLICT"
	AgreementSingleEngine = "SINGLE_ENGINE"
	AgreementNoOverlap    = "NO_OVERLAP"
)

// Recommendations attached to opportunities
const (
	RecommendationStrongBuy = "STRONG_BUY"
	RecommendationBuy       = "BUY"
	RecommendationHold      = "HOLD"
)
