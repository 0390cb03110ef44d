package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/yourusername/true-odds/internal/input"
	"github.com/yourusername/true-odds/internal/report"
	"github.com/yourusername/true-odds/internal/service"
)

var analyzeOpts struct {
	format   string
	output   string
	bankroll float64
}

func init() {
	f := analyzeCmd.Flags()
	f.StringVarP(&analyzeOpts.format, "format", "f", "console", "Report format: console, json, csv or html")
	f.StringVarP(&analyzeOpts.output, "output", "o", "", "Write the report to this file instead of stdout; a directory gets a name from the fixture")
	f.Float64Var(&analyzeOpts.bankroll, "bankroll", 0, "Override the bankroll stakes are sized against")
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze <request.yaml|request.json>",
	Short: "Run every engine for a fixture and rank value bets",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := report.ParseFormat(analyzeOpts.format)
		if err != nil {
			return err
		}

		doc, err := input.LoadRequest(args[0])
		if err != nil {
			return err
		}
		req, err := service.RequestFromInput(doc)
		if err != nil {
			return err
		}
		if analyzeOpts.bankroll > 0 {
			req.Bankroll = analyzeOpts.bankroll
		}

		analyzer, err := service.NewAnalyzerFromConfig(cfg, log)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		analysis, err := analyzer.Analyze(ctx, req)
		if err != nil {
			return err
		}

		if analyzeOpts.output != "" {
			path := reportPath(analyzeOpts.output, format, analysis)
			if err := report.WriteFile(path, format, analysis); err != nil {
				return err
			}
			log.WithField("path", path).Info("Report written")
			return nil
		}
		return report.Render(cmd.OutOrStdout(), format, analysis)
	},
}

// reportPath resolves --output, naming the file when it points at a directory
func reportPath(output string, format report.Format, analysis *service.Analysis) string {
	if strings.HasSuffix(output, string(filepath.Separator)) || strings.HasSuffix(output, "/") {
		return filepath.Join(output, report.FileName(analysis, format))
	}
	if info, err := os.Stat(output); err == nil && info.IsDir() {
		return filepath.Join(output, report.FileName(analysis, format))
	}
	return output
}
