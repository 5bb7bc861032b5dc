package simulate

import (
	"math"
	"math/rand"
)

// poisson draws a Poisson-distributed count using Knuth's
// multiplication method. Fine for the small per-day rates used here.
func poisson(rng *rand.Rand, lambda float64) int {
	l := math.Exp(-lambda)
	k := 0
	p := 1.0
	for {
		p *= rng.Float64()
		if p <= l {
			return k
		}
		k++
	}
}

// logNormal draws from a log-normal distribution with the given
// location and scale on the underlying normal.
func logNormal(rng *rand.Rand, mu, sigma float64) float64 {
	return math.Exp(rng.NormFloat64()*sigma + mu)
}

// roundCents rounds an amount to 2 decimal places.
func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
