package backtest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/yourusername/true-odds/internal/input"
	"github.com/yourusername/true-odds/internal/models"
)

// Fixture is one finished match with the rates the model would have used
// and, optionally, the prices that were available before kick off
type Fixture struct {
	Label    string                  `json:"label"`
	HomeRate float64                 `json:"home_rate"`
	AwayRate float64                 `json:"away_rate"`
	Result   models.MatchScoreline   `json:"result"`
	Odds     models.BookmakerOddsSet `json:"odds,omitempty"`
}

// Validate rejects fixtures that cannot be replayed
func (f Fixture) Validate() error {
	if !(f.HomeRate >= 0) || !(f.AwayRate >= 0) {
		return fmt.Errorf("%w: rates cannot be negative", models.ErrInvalidConfig)
	}
	if err := f.Result.Validate(); err != nil {
		return err
	}
	if len(f.Odds) > 0 {
		return f.Odds.Validate()
	}
	return nil
}

// LoadStats summarises a fixtures file read
type LoadStats struct {
	Rows    int      `json:"rows"`
	Skipped int      `json:"skipped"`
	Errors  []string `json:"errors,omitempty"`
}

const maxReportedRowErrors = 5

var fixedColumns = map[string]bool{"fixture": true, "home_rate": true, "away_rate": true, "score": true}

// LoadFixturesCSV reads a fixtures file, see ReadFixturesCSV
func LoadFixturesCSV(path string) ([]Fixture, LoadStats, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, LoadStats{}, fmt.Errorf("failed to open fixtures file: %w", err)
	}
	defer file.Close()

	fixtures, stats, err := ReadFixturesCSV(file)
	if err != nil {
		return fixtures, stats, fmt.Errorf("fixtures file %s: %w", path, err)
	}
	return fixtures, stats, nil
}

// ReadFixturesCSV reads rows of fixture,home_rate,away_rate,score where score
// reads "2-1 (1-0)". Every further column is a market price named by any key
// or alias the market catalogue accepts; empty cells mean no price. Rows that
// cannot be parsed are skipped and counted.
func ReadFixturesCSV(r io.Reader) ([]Fixture, LoadStats, error) {
	var fixtures []Fixture
	var stats LoadStats

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	reader.Comment = '#'

	header, err := reader.Read()
	if err != nil {
		return nil, stats, fmt.Errorf("%w: failed to read header: %v", models.ErrInvalidConfig, err)
	}

	colIndex := make(map[string]int, len(header))
	markets := make(map[int]models.MarketKey)
	for i, col := range header {
		name := strings.ToLower(strings.TrimSpace(col))
		if fixedColumns[name] {
			colIndex[name] = i
			continue
		}
		if key := models.ParseMarketKey(name); key.IsKnown() {
			markets[i] = key
		}
	}
	for _, col := range []string{"home_rate", "away_rate", "score"} {
		if _, ok := colIndex[col]; !ok {
			return nil, stats, fmt.Errorf("%w: missing column %q", models.ErrInvalidConfig, col)
		}
	}

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		stats.Rows++
		if err != nil {
			var parseErr *csv.ParseError
			if !errors.As(err, &parseErr) {
				return fixtures, stats, fmt.Errorf("failed to read record: %w", err)
			}
			stats.skip(parseErr.StartLine, err)
			continue
		}
		line, _ := reader.FieldPos(0)

		fixture, err := parseFixture(record, colIndex, markets)
		if err == nil {
			err = fixture.Validate()
		}
		if err != nil {
			stats.skip(line, err)
			continue
		}
		if fixture.Label == "" {
			fixture.Label = fmt.Sprintf("fixture %d", line)
		}
		fixtures = append(fixtures, fixture)
	}
	return fixtures, stats, nil
}

func (s *LoadStats) skip(line int, err error) {
	s.Skipped++
	if len(s.Errors) < maxReportedRowErrors {
		s.Errors = append(s.Errors, fmt.Sprintf("line %d: %v", line, err))
	}
}

func parseFixture(record []string, colIndex map[string]int, markets map[int]models.MarketKey) (Fixture, error) {
	field := func(name string) string {
		i, ok := colIndex[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	var f Fixture
	var err error
	f.Label = field("fixture")
	if f.HomeRate, err = strconv.ParseFloat(field("home_rate"), 64); err != nil {
		return f, fmt.Errorf("%w: home_rate: %v", models.ErrInvalidConfig, err)
	}
	if f.AwayRate, err = strconv.ParseFloat(field("away_rate"), 64); err != nil {
		return f, fmt.Errorf("%w: away_rate: %v", models.ErrInvalidConfig, err)
	}
	if f.Result, err = input.ParseScore(field("score")); err != nil {
		return f, err
	}

	for i, key := range markets {
		if i >= len(record) || strings.TrimSpace(record[i]) == "" {
			continue
		}
		price, err := strconv.ParseFloat(strings.TrimSpace(record[i]), 64)
		if err != nil {
			return f, fmt.Errorf("%w: %s: %v", models.ErrInvalidOdds, key, err)
		}
		if f.Odds == nil {
			f.Odds = make(models.BookmakerOddsSet)
		}
		f.Odds[key] = price
	}
	return f, nil
}
