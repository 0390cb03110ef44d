package simulation

import (
	"math/bits"

	"github.com/yourusername/true-odds/internal/fingerprint"
	"github.com/yourusername/true-odds/internal/models"
)

// Source is anything that yields scorelines one at a time
type Source interface {
	Next() (models.MatchScoreline, bool)
}

// Tally accumulates market hit counts over a stream of scorelines. Tallies
// from disjoint shards merge by addition, in any order.
type Tally struct {
	Counts    [models.MarketCount]int64 `json:"counts"`
	Samples   int64                     `json:"samples"`
	Invalid   int64                     `json:"invalid"`
	HomeGoals int64                     `json:"home_goals"`
	AwayGoals int64                     `json:"away_goals"`

	// scorelines repeat heavily, so their market masks are memoised
	masks map[models.MatchScoreline]uint64
}

// NewTally creates an empty tally
func NewTally() *Tally {
	return &Tally{masks: make(map[models.MatchScoreline]uint64)}
}

// Add counts one scoreline. Malformed scorelines are counted as invalid and
// excluded from the sample total.
func (t *Tally) Add(s models.MatchScoreline) error {
	mask, ok := t.masks[s]
	if !ok {
		f, err := fingerprint.Encode(s)
		if err != nil {
			t.Invalid++
			return err
		}
		mask = f.Mask()
		if t.masks == nil {
			t.masks = make(map[models.MatchScoreline]uint64)
		}
		t.masks[s] = mask
	}

	for mask != 0 {
		i := bits.TrailingZeros64(mask)
		t.Counts[i]++
		mask &= mask - 1
	}
	t.Samples++
	t.HomeGoals += int64(s.HomeFT)
	t.AwayGoals += int64(s.AwayFT)
	return nil
}

// Merge folds another tally into this one
func (t *Tally) Merge(other *Tally) {
	if other == nil {
		return
	}
	for i := range t.Counts {
		t.Counts[i] += other.Counts[i]
	}
	t.Samples += other.Samples
	t.Invalid += other.Invalid
	t.HomeGoals += other.HomeGoals
	t.AwayGoals += other.AwayGoals
}

// Table divides every count by the sample total. All markets share one
// denominator, so partition groups sum to one up to float rounding.
func (t *Tally) Table() models.MarketProbabilityTable {
	table := models.NewMarketProbabilityTable(int(t.Samples))
	if t.Samples == 0 {
		return table
	}
	n := float64(t.Samples)
	for i, key := range models.Catalogue() {
		table.Probabilities[key] = float64(t.Counts[i]) / n
	}
	return table
}

// AverageGoals returns mean full time goals per side
func (t *Tally) AverageGoals() (home, away float64) {
	if t.Samples == 0 {
		return 0, 0
	}
	return float64(t.HomeGoals) / float64(t.Samples), float64(t.AwayGoals) / float64(t.Samples)
}

// Tabulate consumes a source once, without materialising it
func Tabulate(src Source) *Tally {
	tally := NewTally()
	for {
		s, ok := src.Next()
		if !ok {
			return tally
		}
		_ = tally.Add(s)
	}
}
