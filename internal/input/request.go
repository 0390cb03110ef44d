package input

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/yourusername/true-odds/internal/models"
)

// Request is one analysis request document
type Request struct {
	Fixture     Fixture            `yaml:"fixture" json:"fixture"`
	Bankroll    float64            `yaml:"bankroll" json:"bankroll"`
	Odds        map[string]float64 `yaml:"odds" json:"odds"`
	History     History            `yaml:"history" json:"history"`
	HistoryFile string             `yaml:"history_file" json:"history_file"`
	Simulation  *Overrides         `yaml:"simulation" json:"simulation"`

	// dir is the directory the document was read from
	dir string
}

// Fixture identifies the match being priced
type Fixture struct {
	Home        string `yaml:"home" json:"home"`
	Away        string `yaml:"away" json:"away"`
	Competition string `yaml:"competition" json:"competition"`
	KickOff     string `yaml:"kick_off" json:"kick_off"`
}

// Overrides adjusts the simulation for this request only
type Overrides struct {
	HomeRate     *float64 `yaml:"home_rate" json:"home_rate"`
	AwayRate     *float64 `yaml:"away_rate" json:"away_rate"`
	Iterations   int      `yaml:"iterations" json:"iterations"`
	Seed         *int64   `yaml:"seed" json:"seed"`
	Distribution string   `yaml:"distribution" json:"distribution"`
	// HomeBoost and AwayBoost are added to the expected goals of each side
	HomeBoost     float64  `yaml:"home_boost" json:"home_boost"`
	AwayBoost     float64  `yaml:"away_boost" json:"away_boost"`
	HomeAdvantage *float64 `yaml:"home_advantage" json:"home_advantage"`
	// Streaks adds unbeaten and losing streak boosts from recent form
	Streaks bool `yaml:"streaks" json:"streaks"`
}

// History holds the raw streams, most recent first
type History struct {
	HeadToHead []Record `yaml:"h2h" json:"h2h"`
	HomeForm   []Record `yaml:"home_form" json:"home_form"`
	AwayForm   []Record `yaml:"away_form" json:"away_form"`
}

// Record is one historical result. Score may replace the four goal fields
// in "FT (HT)" notation, e.g. "2-1 (1-0)". Venue says where the team the
// stream belongs to played; records it names as the wrong side are flipped.
type Record struct {
	HomeHT int    `yaml:"home_ht" json:"home_ht"`
	AwayHT int    `yaml:"away_ht" json:"away_ht"`
	HomeFT int    `yaml:"home_ft" json:"home_ft"`
	AwayFT int    `yaml:"away_ft" json:"away_ft"`
	Score  string `yaml:"score" json:"score"`
	Venue  string `yaml:"venue" json:"venue"`
	// Team optionally names the club the stream belongs to; records naming
	// a club outside the fixture are skipped
	Team string `yaml:"team" json:"team"`
}

const (
	VenueHome = "home"
	VenueAway = "away"
)

// MaxBoost bounds any per-request goal adjustment
const MaxBoost = 1.0

// LoadRequest reads a YAML or JSON request, chosen by file extension
func LoadRequest(path string) (*Request, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read request %s: %w", path, err)
	}

	req, err := ParseRequest(data, filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", path, err)
	}
	req.dir = filepath.Dir(path)
	return req, nil
}

// ParseRequest decodes a request document. ext selects the decoder and
// defaults to YAML, which also accepts JSON documents.
func ParseRequest(data []byte, ext string) (*Request, error) {
	var req Request
	switch strings.ToLower(ext) {
	case ".json":
		if err := json.Unmarshal(data, &req); err != nil {
			return nil, fmt.Errorf("%w: failed to decode json: %v", models.ErrInvalidConfig, err)
		}
	default:
		if err := yaml.Unmarshal(data, &req); err != nil {
			return nil, fmt.Errorf("%w: failed to decode yaml: %v", models.ErrInvalidConfig, err)
		}
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return &req, nil
}

// Validate checks the fields every analysis needs
func (r *Request) Validate() error {
	if strings.TrimSpace(r.Fixture.Home) == "" || strings.TrimSpace(r.Fixture.Away) == "" {
		return fmt.Errorf("%w: fixture home and away are required", models.ErrInvalidConfig)
	}
	if len(r.Odds) == 0 {
		return fmt.Errorf("%w: at least one priced market is required", models.ErrInvalidConfig)
	}
	if r.Bankroll < 0 {
		return fmt.Errorf("%w: bankroll %.2f is negative", models.ErrInvalidConfig, r.Bankroll)
	}
	if o := r.Simulation; o != nil {
		if o.HomeRate != nil && *o.HomeRate <= 0 {
			return fmt.Errorf("%w: home_rate must be positive", models.ErrInvalidConfig)
		}
		if o.AwayRate != nil && *o.AwayRate <= 0 {
			return fmt.Errorf("%w: away_rate must be positive", models.ErrInvalidConfig)
		}
		if o.Iterations < 0 {
			return fmt.Errorf("%w: iterations %d is negative", models.ErrInvalidConfig, o.Iterations)
		}
		if math.Abs(o.HomeBoost) > MaxBoost || math.Abs(o.AwayBoost) > MaxBoost {
			return fmt.Errorf("%w: boosts must be within +/-%.1f goals", models.ErrInvalidConfig, MaxBoost)
		}
		if o.HomeAdvantage != nil && math.Abs(*o.HomeAdvantage) > MaxBoost {
			return fmt.Errorf("%w: home_advantage must be within +/-%.1f goals", models.ErrInvalidConfig, MaxBoost)
		}
	}
	return nil
}

// OddsSet resolves market aliases and validates every price
func (r *Request) OddsSet() (models.BookmakerOddsSet, error) {
	set := make(models.BookmakerOddsSet, len(r.Odds))
	raw := make(map[models.MarketKey]string, len(r.Odds))
	for name, price := range r.Odds {
		key := models.ParseMarketKey(name)
		if prev, dup := raw[key]; dup {
			return nil, fmt.Errorf("%w: %q and %q both name market %s", models.ErrInvalidConfig, prev, name, key)
		}
		raw[key] = name
		set[key] = price
	}
	if err := set.Validate(); err != nil {
		return nil, err
	}
	return set, nil
}

// Corpus orients the inline history and appends the history file, if any.
// Records that cannot be read, inline or in the file, are skipped and
// reported in the returned stats.
func (r *Request) Corpus() (models.HistoricalCorpus, CSVStats, error) {
	var stats CSVStats
	corpus := models.HistoricalCorpus{
		HeadToHead: r.orient(models.RoleHeadToHead, r.History.HeadToHead, &stats),
		HomeForm:   r.orient(models.RoleHomeForm, r.History.HomeForm, &stats),
		AwayForm:   r.orient(models.RoleAwayForm, r.History.AwayForm, &stats),
	}

	if r.HistoryFile == "" {
		return corpus, stats, nil
	}
	path := r.HistoryFile
	if !filepath.IsAbs(path) && r.dir != "" {
		path = filepath.Join(r.dir, path)
	}
	fromFile, fileStats, err := loadCorpusCSV(path, r.Fixture)
	if err != nil {
		return corpus, stats, err
	}
	corpus.HeadToHead = append(corpus.HeadToHead, fromFile.HeadToHead...)
	corpus.HomeForm = append(corpus.HomeForm, fromFile.HomeForm...)
	corpus.AwayForm = append(corpus.AwayForm, fromFile.AwayForm...)
	stats.merge(filepath.Base(path), fileStats)
	return corpus, stats, nil
}

// Label returns a display name for the fixture
func (f Fixture) Label() string {
	return fmt.Sprintf("%s vs %s", strings.TrimSpace(f.Home), strings.TrimSpace(f.Away))
}

// Slug returns a normalised identifier safe for keys and file names
func (f Fixture) Slug() string {
	return strings.ReplaceAll(NormalizeTeam(f.Home)+"-vs-"+NormalizeTeam(f.Away), " ", "-")
}

// Scoreline resolves the record to a scoreline, parsing Score when set
func (rec Record) Scoreline() (models.MatchScoreline, error) {
	if rec.Score != "" {
		return ParseScore(rec.Score)
	}
	return models.MatchScoreline{HomeHT: rec.HomeHT, AwayHT: rec.AwayHT, HomeFT: rec.HomeFT, AwayFT: rec.AwayFT}, nil
}

// ParseScore reads "2-1 (1-0)": full time first, half time in brackets
func ParseScore(s string) (models.MatchScoreline, error) {
	var sc models.MatchScoreline
	n, err := fmt.Sscanf(strings.TrimSpace(s), "%d-%d (%d-%d)", &sc.HomeFT, &sc.AwayFT, &sc.HomeHT, &sc.AwayHT)
	if err != nil || n != 4 {
		return models.MatchScoreline{}, fmt.Errorf("%w: cannot parse score %q", models.ErrInvalidScoreline, s)
	}
	return sc, nil
}

// orient resolves one inline stream, skipping records it cannot read
func (r *Request) orient(role models.Role, records []Record, stats *CSVStats) []models.MatchScoreline {
	out := make([]models.MatchScoreline, 0, len(records))
	for i, rec := range records {
		stats.Rows++
		sc, err := orientRecord(rec, role, r.Fixture)
		if err != nil {
			stats.note(fmt.Sprintf("%s record %d: %v", role, i, err))
			continue
		}
		out = append(out, sc)
	}
	return out
}

// orientRecord resolves a record of the given stream. Form records played
// at the other side's ground are flipped; head to head records are stored
// from the home team's side. Goal values are passed through unchecked.
func orientRecord(rec Record, role models.Role, fixture Fixture) (models.MatchScoreline, error) {
	if err := fixture.owns(role, rec.Team); err != nil {
		return models.MatchScoreline{}, err
	}
	sc, err := rec.Scoreline()
	if err != nil {
		return models.MatchScoreline{}, err
	}
	flipOn := VenueAway
	if role == models.RoleAwayForm {
		flipOn = VenueHome
	}
	switch strings.ToLower(strings.TrimSpace(rec.Venue)) {
	case flipOn:
		sc = sc.Flip()
	case "", VenueHome, VenueAway:
	default:
		return models.MatchScoreline{}, fmt.Errorf("%w: unknown venue %q", models.ErrInvalidConfig, rec.Venue)
	}
	return sc, nil
}

// owns checks that a record naming team belongs in the role's stream.
// Unnamed records and fixtures without both teams accept anything.
func (f Fixture) owns(role models.Role, team string) error {
	if strings.TrimSpace(team) == "" || strings.TrimSpace(f.Home) == "" || strings.TrimSpace(f.Away) == "" {
		return nil
	}
	var ok bool
	switch role {
	case models.RoleHomeForm:
		ok = SameTeam(team, f.Home)
	case models.RoleAwayForm:
		ok = SameTeam(team, f.Away)
	default:
		ok = SameTeam(team, f.Home) || SameTeam(team, f.Away)
	}
	if !ok {
		return fmt.Errorf("%w: team %q does not belong to %s %s", models.ErrInvalidConfig, team, f.Label(), role)
	}
	return nil
}
