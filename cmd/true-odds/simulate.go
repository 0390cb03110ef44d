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

	"github.com/yourusername/true-odds/internal/calibration"
	"github.com/yourusername/true-odds/internal/metrics"
	"github.com/yourusername/true-odds/internal/models"
	"github.com/yourusername/true-odds/internal/service"
	"github.com/yourusername/true-odds/internal/simulation"
)

var simulateOpts struct {
	homeRate      float64
	awayRate      float64
	homeBoost     float64
	awayBoost     float64
	homeAdvantage float64
	iterations    int
	seed          int64
	distribution  string
	workers       int
	raw           bool
	json          bool
}

func init() {
	f := simulateCmd.Flags()
	f.Float64Var(&simulateOpts.homeRate, "home-rate", simulation.DefaultHomeRate, "Expected home goals")
	f.Float64Var(&simulateOpts.awayRate, "away-rate", simulation.DefaultAwayRate, "Expected away goals")
	f.Float64Var(&simulateOpts.homeBoost, "home-boost", 0, "Goals added to the home rate")
	f.Float64Var(&simulateOpts.awayBoost, "away-boost", 0, "Goals added to the away rate")
	f.Float64Var(&simulateOpts.homeAdvantage, "home-advantage", 0, "Home advantage in goals (default from config)")
	f.IntVarP(&simulateOpts.iterations, "iterations", "n", 0, "Simulated matches (default from config)")
	f.Int64Var(&simulateOpts.seed, "seed", 0, "Random seed; 0 draws a fresh one")
	f.StringVar(&simulateOpts.distribution, "distribution", "", "poisson or negative_binomial (default from config)")
	f.IntVar(&simulateOpts.workers, "workers", 0, "Parallel workers (default NumCPU)")
	f.BoolVar(&simulateOpts.raw, "raw", false, "Skip calibration")
	f.BoolVar(&simulateOpts.json, "json", false, "Print JSON instead of a table")
}

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Simulate a fixture and print market probabilities",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return runSimulate(ctx, cmd.OutOrStdout(), cmd.Flags().Changed("home-advantage"))
	},
}

type simulateOutput struct {
	Simulation  *simulation.Result  `json:"simulation"`
	Calibration *calibration.Result `json:"calibration,omitempty"`
}

func runSimulate(ctx context.Context, out io.Writer, advantageSet bool) error {
	req := service.Request{
		HomeRate:     simulateOpts.homeRate,
		AwayRate:     simulateOpts.awayRate,
		HomeBoost:    simulateOpts.homeBoost,
		AwayBoost:    simulateOpts.awayBoost,
		Iterations:   simulateOpts.iterations,
		Distribution: simulateOpts.distribution,
	}
	if simulateOpts.seed != 0 {
		req.Seed = &simulateOpts.seed
	}
	if advantageSet {
		req.HomeAdvantage = &simulateOpts.homeAdvantage
	}
	base := cfg.Simulation
	if simulateOpts.workers > 0 {
		base.Workers = simulateOpts.workers
	}
	simCfg, err := service.SimulationConfig(base, req)
	if err != nil {
		return err
	}

	res, err := simulation.NewEngine(log).Run(ctx, simCfg)
	if err != nil {
		metrics.RecordSimulation(string(simCfg.Distribution), "error", 0, 0)
		return err
	}
	metrics.RecordSimulation(string(simCfg.Distribution), "success", res.Iterations, res.Duration.Seconds())

	output := simulateOutput{Simulation: res}
	if !simulateOpts.raw {
		calCfg, err := calibration.FromConfig(&cfg.Calibration)
		if err != nil {
			return err
		}
		adjuster, err := calibration.NewAdjuster(calCfg, log)
		if err != nil {
			return err
		}
		home, away := simCfg.EffectiveRates()
		output.Calibration, err = adjuster.Adjust(res.Table, calibration.FixtureContext{HomeRate: home, AwayRate: away})
		if err != nil {
			return err
		}
		metrics.RecordCalibration(output.Calibration.Factor, output.Calibration.Skipped)
	}

	if simulateOpts.json {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(output)
	}
	return printSimulation(out, output)
}

func printSimulation(out io.Writer, o simulateOutput) error {
	res := o.Simulation
	fmt.Fprintf(out, "%d iterations, %s, seed %d, lambdas %.3f/%.3f, mean goals %.3f/%.3f, %s\n\n",
		res.Iterations, res.Distribution, res.Seed, res.HomeRate, res.AwayRate,
		res.AverageHomeGoals, res.AverageAwayGoals, res.Duration.Round(time.Millisecond))

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
	if o.Calibration != nil {
		fmt.Fprintln(tw, "market\traw\tcalibrated\tfair odds\t")
	} else {
		fmt.Fprintln(tw, "market\tprobability\tfair odds\t")
	}
	for _, key := range models.Catalogue() {
		raw := res.Table.Probabilities[key]
		if o.Calibration == nil {
			fmt.Fprintf(tw, "%s\t%.4f\t%s\t\n", key, raw, fairOdds(raw))
			continue
		}
		fmt.Fprintf(tw, "%s\t%.4f\t%.4f\t%.2f\t\n", key, raw, o.Calibration.Table.Probabilities[key], o.Calibration.Odds[key])
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if cal := o.Calibration; cal != nil {
		fmt.Fprintf(out, "\ncalibration factor %.3f, expected RPS %.4f, confidence %.2f (%s)\n",
			cal.Factor, cal.ExpectedRPS, cal.Confidence, cal.Quality)
		for _, w := range cal.Warnings {
			fmt.Fprintf(out, "warning: %s\n", w)
		}
	}
	return nil
}

func fairOdds(p float64) string {
	if p <= 0 {
		return "-"
	}
	return fmt.Sprintf("%.2f", 1/p)
}
