package input

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/yourusername/true-odds/internal/models"
)

// CSVStats summarises a scoreline read, from a file or inline records
type CSVStats struct {
	Rows    int
	Skipped int
	// Errors holds the first few row errors for reporting
	Errors []string
}

const maxReportedRowErrors = 5

var requiredColumns = []string{"role", "home_ht", "away_ht", "home_ft", "away_ft"}

// LoadCorpusCSV reads a scoreline file, see ReadCorpusCSV
func LoadCorpusCSV(path string) (models.HistoricalCorpus, CSVStats, error) {
	return loadCorpusCSV(path, Fixture{})
}

func loadCorpusCSV(path string, fixture Fixture) (models.HistoricalCorpus, CSVStats, error) {
	file, err := os.Open(path)
	if err != nil {
		return models.HistoricalCorpus{}, CSVStats{}, fmt.Errorf("failed to open history file: %w", err)
	}
	defer file.Close()

	corpus, stats, err := readCorpusCSV(file, fixture)
	if err != nil {
		return corpus, stats, fmt.Errorf("history file %s: %w", path, err)
	}
	return corpus, stats, nil
}

// ReadCorpusCSV reads rows of role,home_ht,away_ht,home_ft,away_ft with
// optional venue and team columns, most recent first. Rows that cannot be
// parsed are skipped and counted.
func ReadCorpusCSV(r io.Reader) (models.HistoricalCorpus, CSVStats, error) {
	return readCorpusCSV(r, Fixture{})
}

// readCorpusCSV also skips rows whose team column names a club outside fixture
func readCorpusCSV(r io.Reader, fixture Fixture) (models.HistoricalCorpus, CSVStats, error) {
	var corpus models.HistoricalCorpus
	var stats CSVStats

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	reader.Comment = '#'

	header, err := reader.Read()
	if err != nil {
		return corpus, stats, fmt.Errorf("%w: failed to read header: %v", models.ErrInvalidConfig, err)
	}

	colIndex := make(map[string]int, len(header))
	for i, col := range header {
		colIndex[strings.ToLower(strings.TrimSpace(col))] = i
	}
	for _, col := range requiredColumns {
		if _, ok := colIndex[col]; !ok {
			return corpus, stats, fmt.Errorf("%w: missing column %q", models.ErrInvalidConfig, col)
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
				return corpus, stats, fmt.Errorf("failed to read record: %w", err)
			}
			stats.skip(parseErr.StartLine, err)
			continue
		}
		line, _ := reader.FieldPos(0)

		role, rec, err := parseRow(record, colIndex)
		if err != nil {
			stats.skip(line, err)
			continue
		}

		sc, err := orientRecord(rec, role, fixture)
		if err != nil {
			stats.skip(line, err)
			continue
		}

		switch role {
		case models.RoleHeadToHead:
			corpus.HeadToHead = append(corpus.HeadToHead, sc)
		case models.RoleHomeForm:
			corpus.HomeForm = append(corpus.HomeForm, sc)
		case models.RoleAwayForm:
			corpus.AwayForm = append(corpus.AwayForm, sc)
		}
	}
	return corpus, stats, nil
}

func (s *CSVStats) skip(line int, err error) {
	s.note(fmt.Sprintf("line %d: %v", line, err))
}

func (s *CSVStats) note(msg string) {
	s.Skipped++
	if len(s.Errors) < maxReportedRowErrors {
		s.Errors = append(s.Errors, msg)
	}
}

// merge folds in the stats of a file read
func (s *CSVStats) merge(file string, other CSVStats) {
	s.Rows += other.Rows
	s.Skipped += other.Skipped
	for _, e := range other.Errors {
		if len(s.Errors) >= maxReportedRowErrors {
			break
		}
		s.Errors = append(s.Errors, file+" "+e)
	}
}

func parseRow(record []string, colIndex map[string]int) (models.Role, Record, error) {
	field := func(name string) string {
		idx, ok := colIndex[name]
		if !ok || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	role, err := parseRole(field("role"))
	if err != nil {
		return "", Record{}, err
	}

	var goals [4]int
	for i, col := range requiredColumns[1:] {
		v, err := strconv.Atoi(field(col))
		if err != nil {
			return "", Record{}, fmt.Errorf("%w: column %s: %q is not a goal count", models.ErrInvalidScoreline, col, field(col))
		}
		goals[i] = v
	}

	return role, Record{
		HomeHT: goals[0],
		AwayHT: goals[1],
		HomeFT: goals[2],
		AwayFT: goals[3],
		Venue:  field("venue"),
		Team:   field("team"),
	}, nil
}

func parseRole(s string) (models.Role, error) {
	switch strings.ToLower(s) {
	case "h2h", "head_to_head":
		return models.RoleHeadToHead, nil
	case "home_form", "home":
		return models.RoleHomeForm, nil
	case "away_form", "away":
		return models.RoleAwayForm, nil
	default:
		return "", fmt.Errorf("%w: unknown role %q", models.ErrInvalidConfig, s)
	}
}
