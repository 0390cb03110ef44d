// Package report renders analyses for terminals, browsers and spreadsheets.
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/yourusername/true-odds/internal/models"
	"github.com/yourusername/true-odds/internal/service"
)

// Format names an output rendering
type Format string

const (
	FormatConsole Format = "console"
	FormatJSON    Format = "json"
	FormatCSV     Format = "csv"
	FormatHTML    Format = "html"
)

// ParseFormat accepts a format name, case insensitive
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatConsole, FormatJSON, FormatCSV, FormatHTML:
		return f, nil
	case "":
		return FormatConsole, nil
	default:
		return "", fmt.Errorf("%w: unknown report format %q", models.ErrInvalidConfig, s)
	}
}

// Render writes an analysis to w in the given format
func Render(w io.Writer, format Format, a *service.Analysis) error {
	if a == nil {
		return fmt.Errorf("%w: nothing to render", models.ErrInvalidConfig)
	}
	switch format {
	case FormatConsole, "":
		_, err := io.WriteString(w, GenerateConsoleReport(a))
		return err
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(a)
	case FormatCSV:
		return writeCSV(w, a)
	case FormatHTML:
		return htmlReport.Execute(w, newHTMLView(a))
	default:
		return fmt.Errorf("%w: unknown report format %q", models.ErrInvalidConfig, format)
	}
}

// FileName names a report after the fixture key and the first block of the run ID
func FileName(a *service.Analysis, format Format) string {
	base := a.FixtureKey
	if base == "" {
		base = "analysis"
	}
	ext := string(format)
	if format == FormatConsole || format == "" {
		ext = "txt"
	}
	return fmt.Sprintf("%s-%s.%s", base, a.RunID.String()[:8], ext)
}

// WriteFile renders an analysis into outputPath, creating parent directories
func WriteFile(outputPath string, format Format, a *service.Analysis) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	f, err := os.Create(outputPath)
	if err != nil {
		return err
	}
	if err := Render(f, format, a); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// GenerateConsoleReport formats an analysis for terminal output
func GenerateConsoleReport(a *service.Analysis) string {
	var builder strings.Builder
	title := "Value Analysis"
	if a.Fixture != "" {
		title += ": " + a.Fixture
	}
	builder.WriteString(title + "\n")
	builder.WriteString(strings.Repeat("=", len(title)) + "\n")
	builder.WriteString(fmt.Sprintf("Run ID: %s\n", a.RunID))

	if sim := a.Simulation; sim != nil {
		builder.WriteString(fmt.Sprintf("Simulation: %d iterations (%s, seed %d, lambdas %.2f/%.2f)",
			sim.Iterations, sim.Distribution, sim.Seed, sim.HomeRate, sim.AwayRate))
		if a.CacheHit {
			builder.WriteString(" [cached]")
		}
		builder.WriteString("\n")
	}
	if cal := a.Calibration; cal != nil {
		builder.WriteString(fmt.Sprintf("Calibration: factor %.3f, expected RPS %.4f, confidence %.2f (%s)\n",
			cal.Factor, cal.ExpectedRPS, cal.Confidence, cal.Quality))
	}
	if p := a.Pattern; p != nil {
		builder.WriteString(fmt.Sprintf("Patterns: %d matches, confidence %.2f (%s), id %s\n",
			p.SampleSize, p.Confidence, p.Quality, p.PatternID))
	}

	c := a.Consensus
	builder.WriteString(fmt.Sprintf("Consensus: %s agreement %.0f%%, confidence %.2f (base %.2f + boost %.2f)\n",
		c.AgreementLevel, c.AgreementFraction*100, c.OverallConfidence, c.BaseConfidence, c.ConfidenceBoost))
	if len(c.ConflictAreas) > 0 {
		builder.WriteString(fmt.Sprintf("Conflicts: %s\n", joinKeys(c.ConflictAreas)))
	}

	builder.WriteString("\nOpportunities\n")
	if len(a.Opportunities) == 0 {
		builder.WriteString("  none\n")
	}
	for i, o := range a.Opportunities {
		builder.WriteString(fmt.Sprintf("  %d. %-16s %-8s odds %6.2f  true %5.1f%%  implied %5.1f%%  edge %+6.1f%%  conf %.2f  %s\n",
			i+1, o.Market, o.Tier, o.BookmakerOdds, o.TrueProbability*100, o.ImpliedProbability*100,
			o.EdgePercentage, o.Confidence, o.Recommendation))
	}
	if c.Best != nil {
		builder.WriteString(fmt.Sprintf("Best: %s (%s)\n", c.Best.Market, c.TieBreakReason))
	}

	builder.WriteString(fmt.Sprintf("\nStakes (bankroll %.2f)\n", a.Bankroll))
	if len(a.Signals) == 0 {
		builder.WriteString("  none\n")
	}
	for _, s := range a.Signals {
		builder.WriteString(fmt.Sprintf("  %-16s %-8s stake %8s  kelly %.4f  EV %+.2f  %s\n",
			s.Market, s.Priority, s.Stake.StringFixed(2), s.KellyFraction, s.ExpectedValue, s.Reasoning))
	}

	if len(a.Warnings) > 0 {
		names := make([]string, len(a.Warnings))
		for i, w := range a.Warnings {
			names[i] = string(w)
		}
		builder.WriteString(fmt.Sprintf("\nWarnings: %s\n", strings.Join(names, ", ")))
	}
	return builder.String()
}

// GenerateHTMLReport creates a simple HTML report
func GenerateHTMLReport(a *service.Analysis, outputPath string) error {
	return WriteFile(outputPath, FormatHTML, a)
}

// GenerateCSVExport exports opportunities and stakes for spreadsheets
func GenerateCSVExport(a *service.Analysis, outputPath string) error {
	return WriteFile(outputPath, FormatCSV, a)
}

// GenerateJSONExport writes the full analysis as indented JSON
func GenerateJSONExport(a *service.Analysis, outputPath string) error {
	return WriteFile(outputPath, FormatJSON, a)
}

var csvHeader = []string{
	"market", "tier", "recommendation", "bookmaker_odds", "true_probability", "implied_probability",
	"edge_percentage", "confidence", "simulation_edge", "pattern_edge", "stake", "kelly_fraction", "priority",
}

func writeCSV(w io.Writer, a *service.Analysis) error {
	stakes := make(map[models.MarketKey]int, len(a.Signals))
	for i, s := range a.Signals {
		stakes[s.Market] = i
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, o := range a.Opportunities {
		row := []string{
			string(o.Market),
			string(o.Tier),
			o.Recommendation,
			formatFloat(o.BookmakerOdds),
			formatFloat(o.TrueProbability),
			formatFloat(o.ImpliedProbability),
			formatFloat(o.EdgePercentage),
			formatFloat(o.Confidence),
			formatOptional(o.SimulationEdge),
			formatOptional(o.PatternEdge),
			"", "", "",
		}
		if i, ok := stakes[o.Market]; ok {
			s := a.Signals[i]
			row[10] = s.Stake.StringFixed(2)
			row[11] = formatFloat(s.KellyFraction)
			row[12] = string(s.Priority)
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}

func formatOptional(v *float64) string {
	if v == nil {
		return ""
	}
	return formatFloat(*v)
}

func joinKeys(keys []models.MarketKey) string {
	names := make([]string, len(keys))
	for i, k := range keys {
		names[i] = string(k)
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}
