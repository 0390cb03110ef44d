// Package simulation implements the stochastic match simulator: a seeded
// Poisson / Negative Binomial goal sampler and a streaming market tabulator.
package simulation

import (
	"context"
	"fmt"
	"io"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/yourusername/true-odds/internal/logger"
	"github.com/yourusername/true-odds/internal/models"
)

// Result is the outcome of one simulation run
type Result struct {
	Table            models.MarketProbabilityTable `json:"table"`
	Distribution     Distribution                  `json:"distribution"`
	Iterations       int                           `json:"iterations"`
	Batches          int                           `json:"batches"`
	Workers          int                           `json:"workers"`
	Seed             int64                         `json:"seed"`
	HomeRate         float64                       `json:"home_rate"`
	AwayRate         float64                       `json:"away_rate"`
	AverageHomeGoals float64                       `json:"average_home_goals"`
	AverageAwayGoals float64                       `json:"average_away_goals"`
	Duration         time.Duration                 `json:"duration"`
}

// Engine runs simulations, sharding batches across workers
type Engine struct {
	log *logger.SimulationLogger
}

// NewEngine creates a simulation engine. A nil logger discards output.
func NewEngine(base *logrus.Logger) *Engine {
	if base == nil {
		base = logrus.New()
		base.SetOutput(io.Discard)
	}
	return &Engine{log: logger.NewSimulationLogger(base)}
}

// Run samples cfg.Iterations scorelines and tabulates every market. The
// context is checked before each batch; a cancelled run returns the context
// error wrapped with the batch it stopped at. Tallies are integer counts
// keyed by batch, so the result does not depend on the worker count.
func (e *Engine) Run(ctx context.Context, cfg Config) (*Result, error) {
	start := time.Now()

	sampler, err := NewSampler(cfg)
	if err != nil {
		return nil, err
	}

	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > sampler.Batches() {
		workers = sampler.Batches()
	}

	homeRate, awayRate := sampler.Rates()
	e.log.LogRunStarted(sampler.Seed(), string(cfg.Distribution), cfg.Iterations, sampler.Batches(), workers, homeRate, awayRate)

	tallies := make([]*Tally, workers)
	batches := make(chan int)
	var sampled atomic.Int64
	progress := &rate.Sometimes{First: 1, Interval: time.Second}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(batches)
		for b := 0; b < sampler.Batches(); b++ {
			select {
			case <-gctx.Done():
				return fmt.Errorf("simulation cancelled before batch %d: %w", b, gctx.Err())
			case batches <- b:
			}
		}
		return nil
	})

	for w := 0; w < workers; w++ {
		tally := NewTally()
		tallies[w] = tally
		g.Go(func() error {
			for b := range batches {
				if err := gctx.Err(); err != nil {
					return fmt.Errorf("simulation cancelled at batch %d: %w", b, err)
				}
				seq := sampler.Batch(b)
				for {
					s, ok := seq.Next()
					if !ok {
						break
					}
					if err := tally.Add(s); err != nil {
						return fmt.Errorf("batch %d: %w", b, err)
					}
				}
				done := sampled.Add(int64(sampler.BatchLen(b)))
				progress.Do(func() {
					e.log.LogBatchProgress(b, int(done), cfg.Iterations)
				})
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		e.log.LogRunAborted(int(sampled.Load()), cfg.Iterations, err)
		return nil, err
	}

	total := NewTally()
	for _, t := range tallies {
		total.Merge(t)
	}
	avgHome, avgAway := total.AverageGoals()

	result := &Result{
		Table:            total.Table(),
		Distribution:     cfg.Distribution,
		Iterations:       int(total.Samples),
		Batches:          sampler.Batches(),
		Workers:          workers,
		Seed:             sampler.Seed(),
		HomeRate:         homeRate,
		AwayRate:         awayRate,
		AverageHomeGoals: avgHome,
		AverageAwayGoals: avgAway,
		Duration:         time.Since(start),
	}
	e.log.LogRunCompleted(result.Iterations, float64(result.Duration.Milliseconds()), avgHome, avgAway)
	return result, nil
}
