package strategy

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/yourusername/true-odds/internal/models"
	"github.com/yourusername/true-odds/internal/staking"
)

// Strategy turns ranked opportunities into stake signals
type Strategy interface {
	Name() string
	Evaluate(ctx context.Context, strategyCtx Context) ([]Signal, error)
	ShouldBet(signal Signal) bool
	GetParameters() map[string]interface{}
}

// Signal is one sized bet recommendation
type Signal struct {
	ID             uuid.UUID        `json:"id"`
	OpportunityID  uuid.UUID        `json:"opportunity_id"`
	Market         models.MarketKey `json:"market"`
	Odds           float64          `json:"odds"`
	Probability    float64          `json:"probability"`
	Stake          decimal.Decimal  `json:"stake"`
	Confidence     float64          `json:"confidence"`
	EdgePercentage float64          `json:"edge_percentage"`
	KellyFraction  float64          `json:"kelly_fraction"`
	ExpectedValue  float64          `json:"expected_value"`
	Tier           models.Tier      `json:"tier"`
	Priority       staking.Priority `json:"priority"`
	Reasoning      string           `json:"reasoning"`
	Features       map[string]any   `json:"features,omitempty"`
}

// Context carries everything a strategy may look at for one fixture
type Context struct {
	Opportunities     []models.ValueOpportunity
	Consensus         *models.ConsensusResult
	Bankroll          float64
	CalibrationFactor float64
}
