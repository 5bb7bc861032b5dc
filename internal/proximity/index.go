// Package proximity precomputes which terminals each customer can use:
// a near-set for everyday spending and, per compromised customer, a
// far-set for stolen-card bursts.
package proximity

import (
	"math/rand"

	"github.com/opensource-finance/kite/internal/domain"
	"github.com/opensource-finance/kite/internal/geo"
)

// NearSets returns, for each customer, the indices of terminals within
// radiusKM of the customer. A customer with no terminal in range gets a
// fallback sample of up to fallback terminals drawn uniformly without
// replacement, so every returned set is non-empty when terminals exist.
func NearSets(rng *rand.Rand, customers []domain.Customer, terminals []domain.Terminal, radiusKM float64, fallback int) [][]int {
	sets := make([][]int, len(customers))
	for i, c := range customers {
		var near []int
		from := geo.Point{Lat: c.Lat, Lon: c.Lon}
		for j, t := range terminals {
			if geo.HaversineKM(from, geo.Point{Lat: t.Lat, Lon: t.Lon}) <= radiusKM {
				near = append(near, j)
			}
		}
		if len(near) == 0 {
			near = sampleWithoutReplacement(rng, len(terminals), fallback)
		}
		sets[i] = near
	}
	return sets
}

// FarSets returns, for each compromised customer index, the indices of
// terminals at radiusKM or farther from the customer. Empty results get
// a fallback sample of up to fallback terminals. Built fresh each
// simulated day and discarded after that day's generation.
func FarSets(rng *rand.Rand, compromised []int, customers []domain.Customer, terminals []domain.Terminal, radiusKM float64, fallback int) map[int][]int {
	sets := make(map[int][]int, len(compromised))
	for _, ci := range compromised {
		c := customers[ci]
		var far []int
		from := geo.Point{Lat: c.Lat, Lon: c.Lon}
		for j, t := range terminals {
			if geo.HaversineKM(from, geo.Point{Lat: t.Lat, Lon: t.Lon}) >= radiusKM {
				far = append(far, j)
			}
		}
		if len(far) == 0 {
			far = sampleWithoutReplacement(rng, len(terminals), fallback)
		}
		sets[ci] = far
	}
	return sets
}

// sampleWithoutReplacement draws min(k, n) distinct indices from [0, n).
func sampleWithoutReplacement(rng *rand.Rand, n, k int) []int {
	if k > n {
		k = n
	}
	if k <= 0 {
		return nil
	}
	return rng.Perm(n)[:k]
}
