package calibration

import "github.com/yourusername/true-odds/internal/models"

// RPS returns the rank probability score of an ordered forecast against the
// observed outcome index. Lower is better; 0 is a perfect forecast.
func RPS(forecast []float64, outcome int) float64 {
	r := len(forecast)
	if r < 2 || outcome < 0 || outcome >= r {
		return 0
	}
	var cumForecast, cumObserved, sum float64
	for i := 0; i < r-1; i++ {
		cumForecast += forecast[i]
		if i == outcome {
			cumObserved = 1
		}
		d := cumForecast - cumObserved
		sum += d * d
	}
	return sum / float64(r-1)
}

// ExpectedRPS is the score a forecast expects against itself: the RPS of
// each outcome weighted by the forecast's own probability of that outcome.
// Sharper forecasts expect lower scores.
func ExpectedRPS(forecast []float64) float64 {
	total := 0.0
	for o, p := range forecast {
		total += p * RPS(forecast, o)
	}
	return total
}

// MatchForecast returns the ordered full time home/draw/away forecast of a table
func MatchForecast(table models.MarketProbabilityTable) []float64 {
	return []float64{
		table.Probabilities[models.MarketHomeWin],
		table.Probabilities[models.MarketDraw],
		table.Probabilities[models.MarketAwayWin],
	}
}

// Brier returns the multi-class Brier score of a forecast against the observed
// outcome index, in [0, 2]. Out of range outcomes score 0.
func Brier(forecast []float64, outcome int) float64 {
	if outcome < 0 || outcome >= len(forecast) {
		return 0
	}
	sum := 0.0
	for i, p := range forecast {
		o := 0.0
		if i == outcome {
			o = 1
		}
		sum += (p - o) * (p - o)
	}
	return sum
}

// MatchOutcome returns the full time home/draw/away index of a scoreline
func MatchOutcome(s models.MatchScoreline) int {
	switch {
	case s.HomeFT > s.AwayFT:
		return 0
	case s.HomeFT == s.AwayFT:
		return 1
	default:
		return 2
	}
}
