package simulation

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/true-odds/internal/models"
)

func collect(seq *Sequence) []models.MatchScoreline {
	var out []models.MatchScoreline
	for {
		s, ok := seq.Next()
		if !ok {
			return out
		}
		out = append(out, s)
	}
}

func TestSequenceIsRestartable(t *testing.T) {
	cfg := poissonConfig(2_500, 11)
	cfg.BatchSize = 1_000
	sampler, err := NewSampler(cfg)
	require.NoError(t, err)

	seq := sampler.Sequence()
	first := collect(seq)
	require.Len(t, first, 2_500)

	seq.Reset()
	assert.Equal(t, first, collect(seq))

	again, err := NewSampler(cfg)
	require.NoError(t, err)
	assert.Equal(t, first, collect(again.Sequence()))
}

func TestBatchesConcatenateToSequence(t *testing.T) {
	cfg := poissonConfig(2_500, 12)
	cfg.BatchSize = 1_000
	sampler, err := NewSampler(cfg)
	require.NoError(t, err)

	var joined []models.MatchScoreline
	for b := 0; b < sampler.Batches(); b++ {
		batch := collect(sampler.Batch(b))
		assert.Len(t, batch, sampler.BatchLen(b))
		joined = append(joined, batch...)
	}
	assert.Equal(t, collect(sampler.Sequence()), joined)
	assert.Empty(t, collect(sampler.Batch(sampler.Batches())))
}

func TestSamplesAreValidScorelines(t *testing.T) {
	cfg := poissonConfig(5_000, 13)
	cfg.Distribution = DistributionNegativeBinomial
	sampler, err := NewSampler(cfg)
	require.NoError(t, err)

	for _, s := range collect(sampler.Sequence()) {
		require.NoError(t, s.Validate())
	}
}

func TestZeroSeedIsResolved(t *testing.T) {
	sampler, err := NewSampler(poissonConfig(10, 0))
	require.NoError(t, err)
	assert.NotZero(t, sampler.Seed())
}

func TestNegativeBinomialIsOverdispersed(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	const n = 60_000
	var sum, sumSq float64
	for i := 0; i < n; i++ {
		x := float64(drawNegativeBinomial(rng, 1.5, 2))
		sum += x
		sumSq += x * x
	}
	mean := sum / n
	variance := sumSq/n - mean*mean

	assert.InDelta(t, 1.5, mean, 0.05)
	// theoretical variance 1.5 + 1.5^2/2 = 2.625
	assert.InDelta(t, 2.625, variance, 0.2)
}

func TestPoissonMoments(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	for _, lambda := range []float64{0.3, 1.4, 45} {
		const n = 40_000
		var sum, sumSq float64
		for i := 0; i < n; i++ {
			x := float64(drawPoisson(rng, lambda))
			sum += x
			sumSq += x * x
		}
		mean := sum / n
		variance := sumSq/n - mean*mean
		assert.InDelta(t, lambda, mean, 0.05*math.Max(1, lambda/5))
		assert.InDelta(t, lambda, variance, 0.1*math.Max(1, lambda))
	}
}

func TestBinomialBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	assert.Equal(t, 0, drawBinomial(rng, 5, 0))
	assert.Equal(t, 5, drawBinomial(rng, 5, 1))
	for i := 0; i < 100; i++ {
		k := drawBinomial(rng, 4, 0.45)
		assert.GreaterOrEqual(t, k, 0)
		assert.LessOrEqual(t, k, 4)
	}
}
