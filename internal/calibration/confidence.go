package calibration

import "math"

// FixtureContext carries what is known about a fixture beyond its scoring
// rates. It only affects the confidence score.
type FixtureContext struct {
	HomeRate          float64
	AwayRate          float64
	HeadToHeadMatches int
	HasRecentForm     bool
	CongestionKnown   bool
}

const (
	maxConfidence     = 0.95
	skippedConfidence = 0.35
	fullIterations    = 100_000
)

// balance is 1 for evenly matched sides and falls towards 0 as one rate dominates
func balance(home, away float64) float64 {
	total := home + away
	if total <= 0 {
		return 1
	}
	return 1 - math.Abs(home-away)/total
}

func iterationFactor(iterations int) float64 {
	return math.Min(1, float64(iterations)/fullIterations)
}

// goalsFactor penalises fixtures outside the typical 2.0-3.5 total goals band
func goalsFactor(totalRate float64) float64 {
	switch {
	case totalRate < 2.0:
		return 0.85
	case totalRate > 3.5:
		return 0.9
	default:
		return 1.0
	}
}

func goalsBonus(totalRate float64) float64 {
	switch {
	case totalRate >= 2.0 && totalRate <= 3.5:
		return 0.25
	case totalRate >= 1.5 && totalRate <= 4.5:
		return 0.20
	default:
		return 0.15
	}
}

// ConfidenceScore rates how far a simulated table can be trusted, in [0, 0.95]
func ConfidenceScore(iterations int, fixture FixtureContext) float64 {
	score := 0.4*iterationFactor(iterations) +
		0.3*balance(fixture.HomeRate, fixture.AwayRate) +
		goalsBonus(fixture.HomeRate+fixture.AwayRate) +
		0.05
	if fixture.HeadToHeadMatches > 5 {
		score += 0.05
	}
	if fixture.HasRecentForm {
		score += 0.03
	}
	if fixture.CongestionKnown {
		score += 0.02
	}
	return math.Min(maxConfidence, score)
}
