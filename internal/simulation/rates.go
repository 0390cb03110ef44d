package simulation

import (
	"math"

	"github.com/yourusername/true-odds/internal/models"
)

// Fallback rates when no history is available
const (
	DefaultHomeRate = 1.5
	DefaultAwayRate = 1.2
)

const (
	formRateWeight   = 0.7
	headToHeadWeight = 0.3

	streakWindow     = 6
	streakMinRecords = 5
	streakMinLength  = 5
	unbeatenStep     = 0.02
	unbeatenCap      = 0.10
	losingStep       = 0.024
	losingCap        = 0.12
)

// EstimateRates derives home and away scoring rates from history: the home
// side's goals scored in its form and conceded by the away side in its form,
// blended with head-to-head averages. Malformed records are ignored.
func EstimateRates(corpus models.HistoricalCorpus) (home, away float64) {
	homeScored, homeConceded, okHome := sideAverages(corpus.HomeForm, false)
	awayScored, awayConceded, okAway := sideAverages(corpus.AwayForm, true)
	h2hHome, h2hAway, okH2H := sideAverages(corpus.HeadToHead, false)

	home, away = DefaultHomeRate, DefaultAwayRate
	switch {
	case okHome && okAway:
		home = (homeScored + awayConceded) / 2
		away = (awayScored + homeConceded) / 2
	case okHome:
		home, away = homeScored, homeConceded
	case okAway:
		home, away = awayConceded, awayScored
	}

	if okH2H {
		if okHome || okAway {
			home = formRateWeight*home + headToHeadWeight*h2hHome
			away = formRateWeight*away + headToHeadWeight*h2hAway
		} else {
			home, away = h2hHome, h2hAway
		}
	}
	return home, away
}

// sideAverages returns mean goals scored and conceded by the team a stream
// belongs to; away streams carry that team on the away side.
func sideAverages(records []models.MatchScoreline, awaySide bool) (scored, conceded float64, ok bool) {
	n := 0
	for _, r := range records {
		if r.Validate() != nil {
			continue
		}
		if awaySide {
			scored += float64(r.AwayFT)
			conceded += float64(r.HomeFT)
		} else {
			scored += float64(r.HomeFT)
			conceded += float64(r.AwayFT)
		}
		n++
	}
	if n == 0 {
		return 0, 0, false
	}
	return scored / float64(n), conceded / float64(n), true
}

// StreakBoosts returns scoring boosts for long unbeaten or losing runs in the
// most recent form records.
func StreakBoosts(corpus models.HistoricalCorpus) (home, away float64) {
	return streakBoost(corpus.HomeForm, false), streakBoost(corpus.AwayForm, true)
}

func streakBoost(records []models.MatchScoreline, awaySide bool) float64 {
	if len(records) > streakWindow {
		records = records[:streakWindow]
	}
	if len(records) < streakMinRecords {
		return 0
	}

	unbeaten, losing := 0, 0
	countingUnbeaten, countingLosing := true, true
	for _, r := range records {
		scored, conceded := r.HomeFT, r.AwayFT
		if awaySide {
			scored, conceded = r.AwayFT, r.HomeFT
		}
		if countingUnbeaten && scored >= conceded {
			unbeaten++
		} else {
			countingUnbeaten = false
		}
		if countingLosing && scored < conceded {
			losing++
		} else {
			countingLosing = false
		}
	}

	switch {
	case unbeaten >= streakMinLength:
		return math.Min(unbeatenCap, float64(unbeaten)*unbeatenStep)
	case losing >= streakMinLength:
		return math.Min(losingCap, float64(losing)*losingStep)
	}
	return 0
}

// EstimateDispersion fits the Negative Binomial size r by the method of
// moments. ok is false when the sample is not overdispersed.
func EstimateDispersion(goals []int) (r float64, ok bool) {
	mean, variance := moments(goals)
	if mean <= 0 || variance <= mean {
		return DefaultDispersion, false
	}
	return math.Max(0.1, mean*mean/(variance-mean)), true
}

// RecommendDistribution picks negative binomial when goals are clearly
// overdispersed (variance above 1.2x the mean over at least 3 samples)
func RecommendDistribution(goals []int) Distribution {
	if len(goals) < 3 {
		return DistributionPoisson
	}
	mean, variance := moments(goals)
	if variance > mean*1.2 {
		return DistributionNegativeBinomial
	}
	return DistributionPoisson
}

func moments(values []int) (mean, variance float64) {
	if len(values) == 0 {
		return 0, 0
	}
	for _, v := range values {
		mean += float64(v)
	}
	mean /= float64(len(values))
	for _, v := range values {
		d := float64(v) - mean
		variance += d * d
	}
	variance /= float64(len(values))
	return mean, variance
}

// TotalGoals flattens a corpus into per-match full time totals
func TotalGoals(corpus models.HistoricalCorpus) []int {
	var totals []int
	for _, role := range models.Roles() {
		for _, r := range corpus.Stream(role) {
			if r.Validate() == nil {
				totals = append(totals, r.TotalGoals())
			}
		}
	}
	return totals
}
