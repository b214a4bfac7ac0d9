// Package calc derives cumulative volumes and summary statistics from
// location frames.
package calc

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/kilianp07/opsreport/core/timeseries"
)

// Column names shared by the loaders, models and charts.
const (
	InletFlowrate      = "inlet_flowrate"
	DischargeFlowrate  = "discharge_flowrate"
	FuelFlowrate       = "fuel_flowrate"
	ProductFlowrate    = "product_flowrate"
	ProductTankVolume  = "product_tank_volume"
	TankVolume         = "tank_volume"
	CumulativeInlet    = "cumulative_inlet"
	CumulativeFuel     = "cumulative_fuel"
	CumulativePumped   = "cum_pumped"
	CumulativeTank     = "cum_tank"
	CumulativeProduct  = "cum_product"
	ProductPerThousand = "product_per_M"
)

// MinutesPerDay converts a per-day rate sampled every minute into a volume.
const MinutesPerDay = 1440.0

// CumulativeFlows returns the running sum of rate*factor. Missing samples
// contribute nothing.
func CumulativeFlows(rate []float64, factor float64) []float64 {
	out := make([]float64, len(rate))
	total := 0.0
	for i, v := range rate {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			total += v * factor
		}
		out[i] = total
	}
	return out
}

// CumulativeTankVolumes accumulates the level increases of a tank. Drops are
// haul-offs or pump-outs and are not production.
func CumulativeTankVolumes(volume []float64, factor float64) []float64 {
	out := make([]float64, len(volume))
	total := 0.0
	prev := math.NaN()
	for i, v := range volume {
		if !math.IsNaN(v) {
			if !math.IsNaN(prev) && v > prev {
				total += (v - prev) * factor
			}
			prev = v
		}
		out[i] = total
	}
	return out
}

// ProductCalculations derives the recovery rate and cumulative production of
// a frame holding cum_pumped, cum_tank and optionally cumulative_inlet.
// The recovery rate is nil when the inlet is not metered.
func ProductCalculations(f *timeseries.Frame) (perThousand, cumProduct []float64) {
	pumped := f.MustCol(CumulativePumped)
	tank := f.MustCol(CumulativeTank)
	cumProduct = make([]float64, f.Len())
	for i := range cumProduct {
		cumProduct[i] = zeroNaN(pumped[i]) + zeroNaN(tank[i])
	}
	inlet, ok := f.Col(CumulativeInlet)
	if !ok {
		return nil, cumProduct
	}
	perThousand = make([]float64, f.Len())
	for i := range perThousand {
		if inlet[i] > 0 {
			perThousand[i] = cumProduct[i] / (inlet[i] / 1000)
		} else {
			perThousand[i] = math.NaN()
		}
	}
	return perThousand, cumProduct
}

// ProductTotals returns the produced and pumped volumes at the end of f.
func ProductTotals(f *timeseries.Frame) (produced, pumped float64) {
	produced = zeroNaN(f.Last(CumulativeProduct))
	pumped = zeroNaN(f.Last(CumulativePumped))
	return produced, pumped
}

// ProductSummaryStats returns the inlet average, the mean recovery rate and
// the produced volume.
func ProductSummaryStats(f *timeseries.Frame) (inletAvg, productAvg, productVol float64) {
	inletAvg = Mean(f.MustCol(InletFlowrate))
	productAvg = Mean(f.MustCol(ProductPerThousand))
	productVol = zeroNaN(f.Last(CumulativeProduct))
	return inletAvg, productAvg, productVol
}

// FlowSummaryStats returns the averages of the inlet, fuel gas and discharge
// columns; absent columns yield NaN.
func FlowSummaryStats(f *timeseries.Frame) (inletAvg, fuelAvg, dischargeAvg float64) {
	return Mean(f.MustCol(InletFlowrate)), Mean(f.MustCol(FuelFlowrate)), Mean(f.MustCol(DischargeFlowrate))
}

// PressureSummaryStats returns the mean of every column in column order.
func PressureSummaryStats(f *timeseries.Frame) []float64 {
	cols := f.Columns()
	out := make([]float64, len(cols))
	for i, c := range cols {
		out[i] = Mean(f.MustCol(c))
	}
	return out
}

// Mean averages the finite values of xs, NaN when there are none.
func Mean(xs []float64) float64 {
	vals := Finite(xs)
	if len(vals) == 0 {
		return math.NaN()
	}
	return stat.Mean(vals, nil)
}

// Max returns the largest finite value of xs, NaN when there are none.
func Max(xs []float64) float64 {
	vals := Finite(xs)
	if len(vals) == 0 {
		return math.NaN()
	}
	return floats.Max(vals)
}

// Finite returns the finite values of xs.
func Finite(xs []float64) []float64 {
	out := make([]float64, 0, len(xs))
	for _, v := range xs {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			out = append(out, v)
		}
	}
	return out
}

// ZeroInvalid replaces NaN and infinities with zero in place and returns xs.
func ZeroInvalid(xs []float64) []float64 {
	for i, v := range xs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			xs[i] = 0
		}
	}
	return xs
}

// Round rounds v to n decimals.
func Round(v float64, n int) float64 {
	p := math.Pow(10, float64(n))
	return math.Round(v*p) / p
}

func zeroNaN(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return v
}
