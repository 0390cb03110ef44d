package models

import "fmt"

// MatchScoreline is one completed (or simulated) match score
type MatchScoreline struct {
	HomeHT int `json:"home_ht" yaml:"home_ht"`
	AwayHT int `json:"away_ht" yaml:"away_ht"`
	HomeFT int `json:"home_ft" yaml:"home_ft"`
	AwayFT int `json:"away_ft" yaml:"away_ft"`
}

// Validate checks goal counts are non-negative and full time covers half time
func (s MatchScoreline) Validate() error {
	if s.HomeHT < 0 || s.AwayHT < 0 || s.HomeFT < 0 || s.AwayFT < 0 {
		return fmt.Errorf("%w: negative goal count %s", ErrInvalidScoreline, s)
	}
	if s.HomeFT < s.HomeHT || s.AwayFT < s.AwayHT {
		return fmt.Errorf("%w: full time below half time %s", ErrInvalidScoreline, s)
	}
	return nil
}

// Flip swaps the home and away sides
func (s MatchScoreline) Flip() MatchScoreline {
	return MatchScoreline{HomeHT: s.AwayHT, AwayHT: s.HomeHT, HomeFT: s.AwayFT, AwayFT: s.HomeFT}
}

// TotalGoals returns full time goals for both sides
func (s MatchScoreline) TotalGoals() int {
	return s.HomeFT + s.AwayFT
}

func (s MatchScoreline) String() string {
	return fmt.Sprintf("%d-%d (%d-%d)", s.HomeFT, s.AwayFT, s.HomeHT, s.AwayHT)
}

// Role tags a historical stream
type Role string

const (
	RoleHeadToHead Role = "h2h"
	RoleHomeForm   Role = "home_form"
	RoleAwayForm   Role = "away_form"
)

// Roles lists stream roles in a stable order
func Roles() []Role {
	return []Role{RoleHeadToHead, RoleHomeForm, RoleAwayForm}
}

// HistoricalCorpus holds the three input streams, most recent match first.
// Form records are oriented to the fixture: the target home team sits on the
// home side of HomeForm records, the target away team on the away side of
// AwayForm records.
type HistoricalCorpus struct {
	HeadToHead []MatchScoreline `json:"h2h" yaml:"h2h"`
	HomeForm   []MatchScoreline `json:"home_form" yaml:"home_form"`
	AwayForm   []MatchScoreline `json:"away_form" yaml:"away_form"`
}

// Stream returns the records for a role
func (c HistoricalCorpus) Stream(role Role) []MatchScoreline {
	switch role {
	case RoleHeadToHead:
		return c.HeadToHead
	case RoleHomeForm:
		return c.HomeForm
	case RoleAwayForm:
		return c.AwayForm
	default:
		return nil
	}
}

// Len returns the combined record count
func (c HistoricalCorpus) Len() int {
	return len(c.HeadToHead) + len(c.HomeForm) + len(c.AwayForm)
}

// IsEmpty reports whether all three streams are empty
func (c HistoricalCorpus) IsEmpty() bool {
	return c.Len() == 0
}
