package models

import "strings"

// MarketKey identifies a betting market outcome. The constants below form the
// closed catalogue every engine knows how to price; any other string is an
// open key that is carried through untouched.
type MarketKey string

// Full time result
const (
	MarketHomeWin MarketKey = "home_win"
	MarketDraw    MarketKey = "draw"
	MarketAwayWin MarketKey = "away_win"
)

// Half time result
const (
	MarketHTHomeWin MarketKey = "ht_home_win"
	MarketHTDraw    MarketKey = "ht_draw"
	MarketHTAwayWin MarketKey = "ht_away_win"
)

// Full time totals
const (
	MarketOver15  MarketKey = "over_1_5"
	MarketUnder15 MarketKey = "under_1_5"
	MarketOver25  MarketKey = "over_2_5"
	MarketUnder25 MarketKey = "under_2_5"
	MarketOver35  MarketKey = "over_3_5"
	MarketUnder35 MarketKey = "under_3_5"
	MarketOver45  MarketKey = "over_4_5"
	MarketUnder45 MarketKey = "under_4_5"
	MarketOver55  MarketKey = "over_5_5"
	MarketUnder55 MarketKey = "under_5_5"
)

// Half time totals
const (
	MarketHTOver05  MarketKey = "ht_over_0_5"
	MarketHTUnder05 MarketKey = "ht_under_0_5"
	MarketHTOver15  MarketKey = "ht_over_1_5"
	MarketHTUnder15 MarketKey = "ht_under_1_5"
	MarketHTOver25  MarketKey = "ht_over_2_5"
	MarketHTUnder25 MarketKey = "ht_under_2_5"
	MarketHTOver35  MarketKey = "ht_over_3_5"
	MarketHTUnder35 MarketKey = "ht_under_3_5"
	MarketHTOver45  MarketKey = "ht_over_4_5"
	MarketHTUnder45 MarketKey = "ht_under_4_5"
)

// Both teams to score
const (
	MarketBTTSYes   MarketKey = "btts_yes"
	MarketBTTSNo    MarketKey = "btts_no"
	MarketHTBTTSYes MarketKey = "ht_btts_yes"
	MarketHTBTTSNo  MarketKey = "ht_btts_no"
)

// Asian handicap on the whole goal line; a push is its own outcome
const (
	MarketAHHomeMinus1     MarketKey = "ah_home_minus_1"
	MarketAHHomeMinus1Push MarketKey = "ah_home_minus_1_push"
	MarketAHAwayPlus1      MarketKey = "ah_away_plus_1"
	MarketAHAwayMinus1     MarketKey = "ah_away_minus_1"
	MarketAHAwayMinus1Push MarketKey = "ah_away_minus_1_push"
	MarketAHHomePlus1      MarketKey = "ah_home_plus_1"
)

// Double chance
const (
	MarketDCHomeDraw MarketKey = "dc_home_draw"
	MarketDCHomeAway MarketKey = "dc_home_away"
	MarketDCDrawAway MarketKey = "dc_draw_away"
)

// MarketGroup is a set of related outcomes. A partition group's outcomes are
// mutually exclusive and exhaustive, so their probabilities sum to one.
type MarketGroup struct {
	Name      string      `json:"name"`
	Keys      []MarketKey `json:"keys"`
	Partition bool        `json:"partition"`
}

var marketGroups = []MarketGroup{
	{Name: "1x2", Keys: []MarketKey{MarketHomeWin, MarketDraw, MarketAwayWin}, Partition: true},
	{Name: "ht_1x2", Keys: []MarketKey{MarketHTHomeWin, MarketHTDraw, MarketHTAwayWin}, Partition: true},
	{Name: "total_1_5", Keys: []MarketKey{MarketOver15, MarketUnder15}, Partition: true},
	{Name: "total_2_5", Keys: []MarketKey{MarketOver25, MarketUnder25}, Partition: true},
	{Name: "total_3_5", Keys: []MarketKey{MarketOver35, MarketUnder35}, Partition: true},
	{Name: "total_4_5", Keys: []MarketKey{MarketOver45, MarketUnder45}, Partition: true},
	{Name: "total_5_5", Keys: []MarketKey{MarketOver55, MarketUnder55}, Partition: true},
	{Name: "ht_total_0_5", Keys: []MarketKey{MarketHTOver05, MarketHTUnder05}, Partition: true},
	{Name: "ht_total_1_5", Keys: []MarketKey{MarketHTOver15, MarketHTUnder15}, Partition: true},
	{Name: "ht_total_2_5", Keys: []MarketKey{MarketHTOver25, MarketHTUnder25}, Partition: true},
	{Name: "ht_total_3_5", Keys: []MarketKey{MarketHTOver35, MarketHTUnder35}, Partition: true},
	{Name: "ht_total_4_5", Keys: []MarketKey{MarketHTOver45, MarketHTUnder45}, Partition: true},
	{Name: "btts", Keys: []MarketKey{MarketBTTSYes, MarketBTTSNo}, Partition: true},
	{Name: "ht_btts", Keys: []MarketKey{MarketHTBTTSYes, MarketHTBTTSNo}, Partition: true},
	{Name: "ah_home_minus_1", Keys: []MarketKey{MarketAHHomeMinus1, MarketAHHomeMinus1Push, MarketAHAwayPlus1}, Partition: true},
	{Name: "ah_away_minus_1", Keys: []MarketKey{MarketAHAwayMinus1, MarketAHAwayMinus1Push, MarketAHHomePlus1}, Partition: true},
	{Name: "double_chance", Keys: []MarketKey{MarketDCHomeDraw, MarketDCHomeAway, MarketDCDrawAway}, Partition: false},
}

var (
	catalogue   []MarketKey
	marketIndex map[MarketKey]int
	marketGroup map[MarketKey]string
)

func init() {
	marketIndex = make(map[MarketKey]int)
	marketGroup = make(map[MarketKey]string)
	for _, group := range marketGroups {
		for _, key := range group.Keys {
			marketIndex[key] = len(catalogue)
			marketGroup[key] = group.Name
			catalogue = append(catalogue, key)
		}
	}
}

// MarketCount is the size of the closed catalogue
const MarketCount = 39

// Catalogue returns every known market key in a stable order
func Catalogue() []MarketKey {
	return append([]MarketKey(nil), catalogue...)
}

// MarketGroups returns the catalogue grouped by market
func MarketGroups() []MarketGroup {
	groups := make([]MarketGroup, len(marketGroups))
	for i, g := range marketGroups {
		groups[i] = MarketGroup{Name: g.Name, Keys: append([]MarketKey(nil), g.Keys...), Partition: g.Partition}
	}
	return groups
}

// IsKnown reports whether the key belongs to the closed catalogue
func (k MarketKey) IsKnown() bool {
	_, ok := marketIndex[k]
	return ok
}

// Index returns the catalogue position of the key, or -1 for open keys
func (k MarketKey) Index() int {
	if idx, ok := marketIndex[k]; ok {
		return idx
	}
	return -1
}

// Group returns the name of the group the key belongs to, empty for open keys
func (k MarketKey) Group() string {
	return marketGroup[k]
}

func (k MarketKey) String() string {
	return string(k)
}

var marketAliases = map[string]MarketKey{
	"1":               MarketHomeWin,
	"x":               MarketDraw,
	"2":               MarketAwayWin,
	"1x2_home":        MarketHomeWin,
	"1x2_draw":        MarketDraw,
	"1x2_away":        MarketAwayWin,
	"home":            MarketHomeWin,
	"away":            MarketAwayWin,
	"gg":              MarketBTTSYes,
	"ng":              MarketBTTSNo,
	"ht_gg":           MarketHTBTTSYes,
	"ht_ng":           MarketHTBTTSNo,
	"1x":              MarketDCHomeDraw,
	"12":              MarketDCHomeAway,
	"x2":              MarketDCDrawAway,
	"goals_over_1_5":  MarketOver15,
	"goals_under_1_5": MarketUnder15,
	"goals_over_2_5":  MarketOver25,
	"goals_under_2_5": MarketUnder25,
	"goals_over_3_5":  MarketOver35,
	"goals_under_3_5": MarketUnder35,
	"goals_over_4_5":  MarketOver45,
	"goals_under_4_5": MarketUnder45,
	"goals_over_5_5":  MarketOver55,
	"goals_under_5_5": MarketUnder55,
}

// ParseMarketKey normalises a user supplied market identifier. Known aliases
// resolve to catalogue keys; anything else becomes an open key.
func ParseMarketKey(raw string) MarketKey {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = strings.NewReplacer(" ", "_", "-", "_", ".", "_").Replace(s)
	if alias, ok := marketAliases[s]; ok {
		return alias
	}
	return MarketKey(s)
}

// DeriveDoubleChance fills the double chance markets from the full time 1X2
// probabilities already present in p
func DeriveDoubleChance(p map[MarketKey]float64) {
	home, draw, away := p[MarketHomeWin], p[MarketDraw], p[MarketAwayWin]
	p[MarketDCHomeDraw] = home + draw
	p[MarketDCHomeAway] = home + away
	p[MarketDCDrawAway] = draw + away
}

// NormalizeGroup rescales the given keys of p to sum to one. It is a no-op
// when they sum to zero.
func NormalizeGroup(p map[MarketKey]float64, keys []MarketKey) {
	total := 0.0
	for _, k := range keys {
		total += p[k]
	}
	if total <= 0 {
		return
	}
	for _, k := range keys {
		p[k] /= total
	}
}
