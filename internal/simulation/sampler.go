package simulation

import (
	"math/rand"
	"time"

	"github.com/yourusername/true-odds/internal/models"
)

// Sampler draws independent (home, away) scorelines for a run. Iterations are
// cut into fixed-size batches, each with its own generator seeded from the
// run seed and the batch index, so a batch can be replayed on its own and the
// whole run is reproducible from config and seed.
type Sampler struct {
	cfg       Config
	seed      int64
	homeRate  float64
	awayRate  float64
	batchSize int
	batches   int
}

// NewSampler validates the config and resolves the seed. Seed 0 draws a
// time-based seed, readable through Seed.
func NewSampler(cfg Config) (*Sampler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	home, away := cfg.EffectiveRates()
	size := cfg.batchSize()
	return &Sampler{
		cfg:       cfg,
		seed:      seed,
		homeRate:  home,
		awayRate:  away,
		batchSize: size,
		batches:   (cfg.Iterations + size - 1) / size,
	}, nil
}

// Seed returns the resolved seed
func (s *Sampler) Seed() int64 {
	return s.seed
}

// Rates returns the effective home and away scoring rates
func (s *Sampler) Rates() (home, away float64) {
	return s.homeRate, s.awayRate
}

// Batches returns the number of batches in the run
func (s *Sampler) Batches() int {
	return s.batches
}

// BatchLen returns the number of samples in batch b
func (s *Sampler) BatchLen(b int) int {
	if b < 0 || b >= s.batches {
		return 0
	}
	start := b * s.batchSize
	end := start + s.batchSize
	if end > s.cfg.Iterations {
		end = s.cfg.Iterations
	}
	return end - start
}

// Sequence returns the whole run as one lazy sequence
func (s *Sampler) Sequence() *Sequence {
	return s.span(0, s.batches)
}

// Batch returns the lazy sequence of a single batch
func (s *Sampler) Batch(b int) *Sequence {
	if b < 0 || b >= s.batches {
		return s.span(0, 0)
	}
	return s.span(b, b+1)
}

func (s *Sampler) span(from, to int) *Sequence {
	q := &Sequence{sampler: s, from: from, to: to}
	q.Reset()
	return q
}

// batchSeed mixes the run seed with a batch index (splitmix64 finaliser)
func batchSeed(seed int64, batch int) int64 {
	z := uint64(seed) + uint64(batch+1)*0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return int64(z ^ (z >> 31))
}

func (s *Sampler) draw(rng *rand.Rand, rate float64) int {
	if s.cfg.Distribution == DistributionNegativeBinomial {
		return drawNegativeBinomial(rng, rate, s.cfg.dispersion())
	}
	return drawPoisson(rng, rate)
}

func (s *Sampler) sample(rng *rand.Rand) models.MatchScoreline {
	homeFT := s.draw(rng, s.homeRate)
	awayFT := s.draw(rng, s.awayRate)
	share := s.cfg.firstHalfShare()
	return models.MatchScoreline{
		HomeHT: drawBinomial(rng, homeFT, share),
		AwayHT: drawBinomial(rng, awayFT, share),
		HomeFT: homeFT,
		AwayFT: awayFT,
	}
}

// Sequence is a finite, restartable stream of sampled scorelines
type Sequence struct {
	sampler   *Sampler
	from, to  int
	batch     int
	remaining int
	rng       *rand.Rand
}

// Next returns the next scoreline, false once the sequence is exhausted
func (q *Sequence) Next() (models.MatchScoreline, bool) {
	for q.remaining == 0 {
		if q.batch+1 >= q.to {
			return models.MatchScoreline{}, false
		}
		q.openBatch(q.batch + 1)
	}
	q.remaining--
	return q.sampler.sample(q.rng), true
}

// Reset rewinds the sequence to its first sample
func (q *Sequence) Reset() {
	q.batch = q.from - 1
	q.remaining = 0
	q.rng = nil
}

func (q *Sequence) openBatch(b int) {
	q.batch = b
	q.remaining = q.sampler.BatchLen(b)
	q.rng = rand.New(rand.NewSource(batchSeed(q.sampler.seed, b)))
}
