package simulation

import (
	"math"
	"math/rand"
)

// knuthLimit keeps exp(-lambda) well away from underflow
const knuthLimit = 30.0

// drawPoisson samples a Poisson count. Large rates are split, since the sum
// of independent Poisson draws is Poisson with the summed rate.
func drawPoisson(rng *rand.Rand, lambda float64) int {
	if lambda <= 0 {
		return 0
	}
	if lambda > knuthLimit {
		half := lambda / 2
		return drawPoisson(rng, half) + drawPoisson(rng, lambda-half)
	}
	limit := math.Exp(-lambda)
	k := 0
	p := rng.Float64()
	for p > limit {
		k++
		p *= rng.Float64()
	}
	return k
}

// drawGamma samples Gamma(shape, scale) with Marsaglia and Tsang's method
func drawGamma(rng *rand.Rand, shape, scale float64) float64 {
	if shape <= 0 || scale <= 0 {
		return 0
	}
	if shape < 1 {
		u := rng.Float64()
		return drawGamma(rng, shape+1, scale) * math.Pow(u, 1/shape)
	}
	d := shape - 1.0/3.0
	c := 1 / math.Sqrt(9*d)
	for {
		x := rng.NormFloat64()
		v := 1 + c*x
		if v <= 0 {
			continue
		}
		v = v * v * v
		u := rng.Float64()
		if u < 1-0.0331*x*x*x*x {
			return d * v * scale
		}
		if math.Log(u) < 0.5*x*x+d*(1-v+math.Log(v)) {
			return d * v * scale
		}
	}
}

// drawNegativeBinomial samples a count with the given mean and size r as a
// Gamma-Poisson mixture, so variance = mean + mean^2/r.
func drawNegativeBinomial(rng *rand.Rand, mean, r float64) int {
	if mean <= 0 {
		return 0
	}
	return drawPoisson(rng, drawGamma(rng, r, mean/r))
}

// drawBinomial thins n events with success probability p
func drawBinomial(rng *rand.Rand, n int, p float64) int {
	if n <= 0 || p <= 0 {
		return 0
	}
	if p >= 1 {
		return n
	}
	k := 0
	for i := 0; i < n; i++ {
		if rng.Float64() < p {
			k++
		}
	}
	return k
}
