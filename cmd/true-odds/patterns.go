package main

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/yourusername/true-odds/internal/input"
	"github.com/yourusername/true-odds/internal/metrics"
	"github.com/yourusername/true-odds/internal/models"
	"github.com/yourusername/true-odds/internal/pattern"
)

var patternsJSON bool

func init() {
	patternsCmd.Flags().BoolVar(&patternsJSON, "json", false, "Print JSON instead of a table")
}

var patternsCmd = &cobra.Command{
	Use:   "patterns <history.csv|request.yaml>",
	Short: "Predict markets from historical scorelines alone",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		corpus, err := loadCorpus(args[0])
		if err != nil {
			return err
		}

		patCfg, err := pattern.FromConfig(&cfg.Pattern)
		if err != nil {
			return err
		}
		matcher, err := pattern.NewMatcher(patCfg, log)
		if err != nil {
			return err
		}
		prediction, err := matcher.Predict(corpus)
		if err != nil {
			return err
		}

		skipped := make(map[string]int, len(prediction.SkippedByRole))
		for role, n := range prediction.SkippedByRole {
			skipped[string(role)] = n
		}
		metrics.RecordPatternPrediction(string(prediction.Quality), skipped)

		if patternsJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(prediction)
		}
		return printPrediction(cmd.OutOrStdout(), prediction)
	},
}

func loadCorpus(path string) (models.HistoricalCorpus, error) {
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		corpus, stats, err := input.LoadCorpusCSV(path)
		if err != nil {
			return corpus, err
		}
		for _, e := range stats.Errors {
			log.WithField("file", path).Warn("Row skipped: " + e)
		}
		return corpus, nil
	}

	doc, err := input.LoadRequest(path)
	if err != nil {
		return models.HistoricalCorpus{}, err
	}
	corpus, stats, err := doc.Corpus()
	if err != nil {
		return corpus, err
	}
	for _, e := range stats.Errors {
		log.WithField("file", path).Warn("Record skipped: " + e)
	}
	return corpus, nil
}

func printPrediction(out io.Writer, p *models.PatternPrediction) error {
	fmt.Fprintf(out, "pattern %s: %d matches, confidence %.2f (%s)\n", p.PatternID, p.SampleSize, p.Confidence, p.Quality)
	fmt.Fprintf(out, "%s\n\n", p.Reasoning)

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "market\tprobability\tfair odds\t")
	for _, key := range models.Catalogue() {
		v, ok := p.Probability(key)
		if !ok {
			continue
		}
		fmt.Fprintf(tw, "%s\t%.4f\t%s\t\n", key, v, fairOdds(v))
	}
	return tw.Flush()
}
