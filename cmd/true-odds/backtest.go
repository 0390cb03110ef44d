package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/yourusername/true-odds/internal/backtest"
	"github.com/yourusername/true-odds/internal/calibration"
	"github.com/yourusername/true-odds/internal/metrics"
	"github.com/yourusername/true-odds/internal/service"
	"github.com/yourusername/true-odds/internal/simulation"
)

var backtestOpts struct {
	iterations int
	seed       int64
	minEdge    float64
	stake      float64
	bets       bool
	json       bool
}

func init() {
	f := backtestCmd.Flags()
	f.IntVarP(&backtestOpts.iterations, "iterations", "n", 0, "Simulated matches per fixture (default from config)")
	f.Int64Var(&backtestOpts.seed, "seed", 0, "Base seed (default from config)")
	f.Float64Var(&backtestOpts.minEdge, "min-edge", -1, "Minimum edge to place a flat bet (default from config)")
	f.Float64Var(&backtestOpts.stake, "stake", 0, "Flat stake per bet (default from config)")
	f.BoolVar(&backtestOpts.bets, "bets", false, "List every settled bet")
	f.BoolVar(&backtestOpts.json, "json", false, "Print the full report as JSON")
}

var backtestCmd = &cobra.Command{
	Use:   "backtest <fixtures.csv>",
	Short: "Score forecasts against finished fixtures",
	Long: `Replays finished fixtures through the simulator and calibration layer and
reports rank probability and Brier scores, raw and calibrated. Fixtures that
carry prices are also bet to a flat stake wherever the calibrated edge clears
the threshold.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return runBacktest(ctx, cmd.OutOrStdout(), args[0])
	},
}

func runBacktest(ctx context.Context, out io.Writer, path string) error {
	btCfg := cfg.Backtest
	if backtestOpts.iterations > 0 {
		btCfg.Iterations = backtestOpts.iterations
	}
	if backtestOpts.seed != 0 {
		btCfg.Seed = backtestOpts.seed
	}
	if backtestOpts.minEdge >= 0 {
		btCfg.MinEdge = backtestOpts.minEdge
	}
	if backtestOpts.stake > 0 {
		btCfg.FlatStake = backtestOpts.stake
	}
	bc, err := backtest.FromConfig(&btCfg)
	if err != nil {
		return err
	}
	calCfg, err := calibration.FromConfig(&cfg.Calibration)
	if err != nil {
		return err
	}
	base, err := service.SimulationConfig(cfg.Simulation, service.Request{
		HomeRate: simulation.DefaultHomeRate,
		AwayRate: simulation.DefaultAwayRate,
	})
	if err != nil {
		return err
	}

	fixtures, stats, err := backtest.LoadFixturesCSV(path)
	if err != nil {
		return err
	}
	for _, e := range stats.Errors {
		log.WithField("file", path).Warnf("Skipped fixture row: %s", e)
	}
	if len(fixtures) == 0 {
		return fmt.Errorf("no usable fixtures in %s", path)
	}

	engine, err := backtest.NewEngine(bc, base, simulation.NewEngine(log), calCfg, log)
	if err != nil {
		return err
	}
	report, err := engine.Run(ctx, fixtures)
	if err != nil {
		metrics.RecordBacktestRun("error", 0, 0, 0)
		return err
	}
	m := report.Metrics
	metrics.RecordBacktestRun("success", m.MeanRawRPS, m.MeanCalibratedRPS, m.ROI)
	metrics.RecordBacktestBets(backtest.BetWon, m.Wins)
	metrics.RecordBacktestBets(backtest.BetLost, m.Losses)
	metrics.RecordBacktestBets(backtest.BetPush, m.Pushes)

	if backtestOpts.json {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}
	return printBacktest(out, report, stats)
}

func printBacktest(out io.Writer, r *backtest.Report, stats backtest.LoadStats) error {
	m := r.Metrics
	fmt.Fprintf(out, "%d fixtures (%d skipped), %d iterations each, %s\n\n",
		m.Fixtures, stats.Skipped, r.Config.Iterations, r.Duration.Round(time.Millisecond))

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "fixture\tresult\tfactor\traw rps\tcal rps\traw brier\tcal brier")
	for _, s := range r.Fixtures {
		fmt.Fprintf(tw, "%s\t%s\t%.3f\t%.4f\t%.4f\t%.4f\t%.4f\n",
			s.Fixture, s.Result, s.Factor, s.RawRPS, s.CalibratedRPS, s.RawBrier, s.CalibratedBrier)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(out, "\nmean rps:   %.4f raw, %.4f calibrated (target %.4f)\n", m.MeanRawRPS, m.MeanCalibratedRPS, r.TargetRPS)
	fmt.Fprintf(out, "mean brier: %.4f raw, %.4f calibrated\n", m.MeanRawBrier, m.MeanCalibratedBrier)

	if m.TotalBets == 0 {
		fmt.Fprintln(out, "no bets placed")
		return nil
	}
	fmt.Fprintf(out, "bets:       %d (%d won, %d lost, %d push), hit rate %.1f%%\n",
		m.TotalBets, m.Wins, m.Losses, m.Pushes, m.HitRate*100)
	fmt.Fprintf(out, "profit:     %+.2f on %.2f staked, roi %+.2f%%, max drawdown %.2f\n",
		m.NetProfit, m.TotalStaked, m.ROI*100, m.MaxDrawdown)

	if !backtestOpts.bets {
		return nil
	}
	fmt.Fprintln(out)
	tw = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "fixture\tmarket\todds\tprobability\tedge\toutcome\tprofit")
	for _, b := range r.Bets {
		fmt.Fprintf(tw, "%s\t%s\t%.2f\t%.4f\t%+.1f%%\t%s\t%+.2f\n",
			b.Fixture, b.Market, b.Odds, b.Probability, b.Edge*100, b.Outcome, b.Profit)
	}
	return tw.Flush()
}
