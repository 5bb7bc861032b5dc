package simulate

import (
	"math"
	"math/rand"
	"testing"
)

func TestPoisson(t *testing.T) {
	t.Run("MeanNearLambda", func(t *testing.T) {
		rng := rand.New(rand.NewSource(1))
		const n, lambda = 20000, 0.15
		sum := 0
		for i := 0; i < n; i++ {
			sum += poisson(rng, lambda)
		}
		mean := float64(sum) / n
		if math.Abs(mean-lambda) > 0.05 {
			t.Errorf("sample mean %.4f too far from lambda %.2f", mean, lambda)
		}
	})

	t.Run("NonNegative", func(t *testing.T) {
		rng := rand.New(rand.NewSource(2))
		for i := 0; i < 1000; i++ {
			if k := poisson(rng, 2.5); k < 0 {
				t.Fatalf("negative count %d", k)
			}
		}
	})
}

func TestLogNormal(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	t.Run("AlwaysPositive", func(t *testing.T) {
		for i := 0; i < 1000; i++ {
			if v := logNormal(rng, 3.4, 0.9); v <= 0 {
				t.Fatalf("non-positive draw %f", v)
			}
		}
	})

	t.Run("MedianNearExpMu", func(t *testing.T) {
		const n, mu = 20000, 3.4
		below := 0
		for i := 0; i < n; i++ {
			if logNormal(rng, mu, 0.9) < math.Exp(mu) {
				below++
			}
		}
		frac := float64(below) / n
		if frac < 0.45 || frac > 0.55 {
			t.Errorf("%.3f of draws below exp(mu); expected about half", frac)
		}
	})
}

func TestRoundCents(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{1.006, 1.01},
		{1.004, 1.00},
		{5000.0, 5000.0},
		{49.999, 50.0},
	}
	for _, tt := range tests {
		if got := roundCents(tt.in); got != tt.want {
			t.Errorf("roundCents(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
