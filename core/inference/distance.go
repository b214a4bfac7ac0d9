package inference

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// EMA applies an exponential moving average from the first sample to the
// last. Leading missing samples stay NaN; later gaps hold the last value.
func EMA(xs []float64, alpha float64) []float64 {
	out := make([]float64, len(xs))
	prev := math.NaN()
	for i, v := range xs {
		switch {
		case math.IsNaN(v):
		case math.IsNaN(prev):
			prev = v
		default:
			prev = alpha*v + (1-alpha)*prev
		}
		out[i] = prev
	}
	return out
}

// ReverseEMA applies EMA from the last sample to the first.
func ReverseEMA(xs []float64, alpha float64) []float64 {
	return reversed(EMA(reversed(xs), alpha))
}

// Distances returns for each sample the Mahalanobis distance of its
// (level, delta) vector to the distribution of the preceding window samples.
// The covariance diagonal never drops below noiseFloor squared so a flat
// series does not turn sensor jitter into events.
func Distances(level []float64, window int, noiseFloor float64) []float64 {
	n := len(level)
	out := make([]float64, n)
	if window < 2 {
		return out
	}
	delta := make([]float64, n)
	for i := 1; i < n; i++ {
		delta[i] = level[i] - level[i-1]
		if math.IsNaN(delta[i]) {
			delta[i] = 0
		}
	}
	floor := noiseFloor * noiseFloor
	rows := make([]float64, 0, 2*window)
	for i := 0; i < n; i++ {
		if math.IsNaN(level[i]) {
			continue
		}
		rows = rows[:0]
		for j := max(0, i-window); j < i; j++ {
			if !math.IsNaN(level[j]) {
				rows = append(rows, level[j], delta[j])
			}
		}
		if len(rows) < 4 {
			continue
		}
		obs := mat.NewDense(len(rows)/2, 2, rows)
		var cov mat.SymDense
		stat.CovarianceMatrix(&cov, obs, nil)
		for k := 0; k < 2; k++ {
			if cov.At(k, k) < floor {
				cov.SetSym(k, k, floor)
			}
		}
		var chol mat.Cholesky
		if ok := chol.Factorize(&cov); !ok {
			continue
		}
		mu := mat.NewVecDense(2, []float64{
			stat.Mean(mat.Col(nil, 0, obs), nil),
			stat.Mean(mat.Col(nil, 1, obs), nil),
		})
		x := mat.NewVecDense(2, []float64{level[i], delta[i]})
		out[i] = stat.Mahalanobis(x, mu, &chol)
	}
	return out
}

// BackwardDistances is Distances against the following window samples.
func BackwardDistances(level []float64, window int, noiseFloor float64) []float64 {
	return reversed(Distances(reversed(level), window, noiseFloor))
}

func reversed(xs []float64) []float64 {
	out := make([]float64, len(xs))
	for i, v := range xs {
		out[len(xs)-1-i] = v
	}
	return out
}
