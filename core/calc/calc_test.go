package calc

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/opsreport/core/timeseries"
)

func TestCumulativeFlows(t *testing.T) {
	got := CumulativeFlows([]float64{1440, math.NaN(), 2880}, 1/MinutesPerDay)
	assert.InDeltaSlice(t, []float64{1, 1, 3}, got, 1e-9)
}

func TestCumulativeTankVolumes(t *testing.T) {
	got := CumulativeTankVolumes([]float64{10, 12, 11, math.NaN(), 15}, 1)
	assert.Equal(t, []float64{0, 2, 2, 2, 6}, got)
}

func frameWith(t *testing.T, cols map[string][]float64, n int) *timeseries.Frame {
	t.Helper()
	start := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	f := timeseries.New(timeseries.Grid(start, start.Add(time.Duration(n-1)*time.Minute), time.Minute))
	for _, name := range []string{InletFlowrate, FuelFlowrate, DischargeFlowrate, CumulativeInlet, CumulativePumped, CumulativeTank} {
		if v, ok := cols[name]; ok {
			require.NoError(t, f.Set(name, v))
		}
	}
	return f
}

func TestProductCalculations(t *testing.T) {
	f := frameWith(t, map[string][]float64{
		CumulativePumped: {0, 1, 2},
		CumulativeTank:   {0, 1, math.NaN()},
		CumulativeInlet:  {0, 1000, 2000},
	}, 3)
	per, cum := ProductCalculations(f)
	assert.Equal(t, []float64{0, 2, 2}, cum)
	require.Len(t, per, 3)
	assert.True(t, math.IsNaN(per[0]))
	assert.Equal(t, 2.0, per[1])
	assert.Equal(t, 1.0, per[2])

	require.NoError(t, f.Set(CumulativeProduct, cum))
	produced, pumped := ProductTotals(f)
	assert.Equal(t, 2.0, produced)
	assert.Equal(t, 2.0, pumped)
}

func TestProductCalculationsWithoutInlet(t *testing.T) {
	f := frameWith(t, map[string][]float64{CumulativePumped: {1, 2}}, 2)
	per, cum := ProductCalculations(f)
	assert.Nil(t, per)
	assert.Equal(t, []float64{1, 2}, cum)
}

func TestFlowSummaryStatsMissingColumn(t *testing.T) {
	f := frameWith(t, map[string][]float64{InletFlowrate: {1, 3}, FuelFlowrate: {2, math.NaN()}}, 2)
	inlet, fuel, discharge := FlowSummaryStats(f)
	assert.Equal(t, 2.0, inlet)
	assert.Equal(t, 2.0, fuel)
	assert.True(t, math.IsNaN(discharge))
}

func TestZeroInvalidAndRound(t *testing.T) {
	assert.Equal(t, []float64{0, 1, 0}, ZeroInvalid([]float64{math.NaN(), 1, math.Inf(1)}))
	assert.Equal(t, 1.23, Round(1.2349, 2))
	assert.True(t, math.IsNaN(Max(nil)))
	assert.Equal(t, 3.0, Max([]float64{1, math.NaN(), 3}))
}

func TestDayShifts(t *testing.T) {
	day := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	s1, s2 := DayShifts(day, 7, 12)
	assert.Equal(t, 7, s1.Start.Hour())
	assert.Equal(t, 19, s1.End.Hour())
	assert.True(t, s2.Start.Equal(s1.End))
	assert.Equal(t, 5, s2.End.Day())
}

func TestFlowPerInlet(t *testing.T) {
	f := frameWith(t, map[string][]float64{CumulativeInlet: {0, 500, 1000}}, 3)
	require.NoError(t, f.Set(CumulativeFuel, []float64{0, 10, 30}))
	idx := f.Index()
	got := FlowPerInlet(f, CumulativeFuel, Shift{Start: idx[1], End: idx[2]})
	assert.Equal(t, 40.0, got)
	assert.Equal(t, 0.0, FlowPerInlet(f, CumulativeFuel, Shift{Start: idx[0].Add(-time.Hour), End: idx[2]}))
}

func TestFlowPerInletMeasuresShiftOnly(t *testing.T) {
	day := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	start := day.Add(6 * time.Hour)
	f := timeseries.New(timeseries.Grid(start, day.Add(19*time.Hour), time.Minute))
	inlet := make([]float64, f.Len())
	fuel := make([]float64, f.Len())
	for i := range inlet {
		inlet[i] = 10 * float64(i)
		// 06:00 to 07:00 burns twice the shift rate
		if i <= 60 {
			fuel[i] = 2 * float64(i)
		} else {
			fuel[i] = 120 + float64(i-60)
		}
	}
	require.NoError(t, f.Set(CumulativeInlet, inlet))
	require.NoError(t, f.Set(CumulativeFuel, fuel))

	s1, _ := DayShifts(day, 7, 12)
	assert.Equal(t, 100.0, FlowPerInlet(f, CumulativeFuel, s1))
}

func TestLevelPerInlet(t *testing.T) {
	assert.Equal(t, 0.0, LevelPerInlet(5, 0))
	assert.Equal(t, 2.5, LevelPerInlet(5, 2000))
}

func TestShiftInlet(t *testing.T) {
	f := frameWith(t, map[string][]float64{InletFlowrate: {1440, 1440, 1440}}, 3)
	idx := f.Index()
	assert.InDelta(t, 2.0, ShiftInlet(f, Shift{Start: idx[0], End: idx[2]}), 1e-9)
}
