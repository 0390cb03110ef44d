package consensus

import (
	"fmt"

	"github.com/yourusername/true-odds/internal/models"
)

// TieBreakPolicy picks between the best-edge and the most-probable
// opportunity when they differ
type TieBreakPolicy interface {
	Name() string
	Choose(byEdge, byProbability *models.ValueOpportunity) (*models.ValueOpportunity, string)
}

// EdgeThresholdPolicy prefers the best-edge opportunity only when its edge
// exceeds Threshold, otherwise the safer most-probable one
type EdgeThresholdPolicy struct {
	Threshold float64
}

// DefaultTieBreak favours edge above 7%
func DefaultTieBreak() EdgeThresholdPolicy {
	return EdgeThresholdPolicy{Threshold: 0.07}
}

// Name identifies the policy in results
func (p EdgeThresholdPolicy) Name() string {
	return fmt.Sprintf("edge_threshold(%.2f)", p.Threshold)
}

// Choose applies the threshold
func (p EdgeThresholdPolicy) Choose(byEdge, byProbability *models.ValueOpportunity) (*models.ValueOpportunity, string) {
	switch {
	case byEdge == nil && byProbability == nil:
		return nil, "no opportunities"
	case byProbability == nil:
		return byEdge, "only an edge candidate"
	case byEdge == nil:
		return byProbability, "only a probability candidate"
	case byEdge.Market == byProbability.Market:
		return byEdge, "best edge is also most probable"
	case byEdge.Edge > p.Threshold:
		return byEdge, fmt.Sprintf("edge %.1f%% exceeds %.1f%% threshold", byEdge.Edge*100, p.Threshold*100)
	default:
		return byProbability, fmt.Sprintf("edge %.1f%% within %.1f%% threshold, preferring higher probability", byEdge.Edge*100, p.Threshold*100)
	}
}

// ProbabilityFirstPolicy always prefers the most probable opportunity
type ProbabilityFirstPolicy struct{}

// Name identifies the policy in results
func (ProbabilityFirstPolicy) Name() string {
	return "probability_first"
}

// Choose returns the most probable opportunity when there is one
func (ProbabilityFirstPolicy) Choose(byEdge, byProbability *models.ValueOpportunity) (*models.ValueOpportunity, string) {
	if byProbability == nil {
		return byEdge, "only an edge candidate"
	}
	return byProbability, "probability first"
}
