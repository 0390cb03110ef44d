package service

import (
	"github.com/yourusername/true-odds/internal/input"
)

// RequestFromInput converts a loaded request document
func RequestFromInput(doc *input.Request) (Request, error) {
	odds, err := doc.OddsSet()
	if err != nil {
		return Request{}, err
	}
	corpus, stats, err := doc.Corpus()
	if err != nil {
		return Request{}, err
	}

	req := Request{
		Fixture:      doc.Fixture.Label(),
		FixtureKey:   doc.Fixture.Slug(),
		Odds:         odds,
		Corpus:       corpus,
		Bankroll:     doc.Bankroll,
		InputSkipped: stats.Skipped,
		InputErrors:  stats.Errors,
	}
	if o := doc.Simulation; o != nil {
		if o.HomeRate != nil {
			req.HomeRate = *o.HomeRate
		}
		if o.AwayRate != nil {
			req.AwayRate = *o.AwayRate
		}
		req.Iterations = o.Iterations
		req.Seed = o.Seed
		req.Distribution = o.Distribution
		req.HomeBoost = o.HomeBoost
		req.AwayBoost = o.AwayBoost
		req.HomeAdvantage = o.HomeAdvantage
		req.Streaks = o.Streaks
	}
	return req, nil
}
