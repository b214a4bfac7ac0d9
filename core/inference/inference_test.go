package inference

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/opsreport/core/calc"
	"github.com/kilianp07/opsreport/core/timeseries"
)

var t0 = time.Date(2024, 3, 4, 7, 0, 0, 0, time.UTC)

// tankDay builds a day of one minute samples draining 0.01 gal/min, with an
// optional refill of 50 gal at sample fillAt.
func tankDay(t *testing.T, fillAt int) *timeseries.Frame {
	t.Helper()
	f := timeseries.New(timeseries.Grid(t0, t0.Add(24*time.Hour), time.Minute))
	level := make([]float64, f.Len())
	inlet := make([]float64, f.Len())
	for i := range level {
		level[i] = 100 - 0.01*float64(i)
		if fillAt > 0 && i >= fillAt {
			level[i] += 50
		}
		inlet[i] = 1440 * 1000
	}
	require.NoError(t, f.Set(calc.TankVolume, level))
	require.NoError(t, f.Set(calc.InletFlowrate, inlet))
	return f
}

// change moves the level by amount, linearly over samples [from, to]. A
// change with from == to is a step.
type change struct {
	from, to int
	amount   float64
}

// gauss is a small deterministic normal generator so noisy cases stay stable.
type gauss uint64

func (g *gauss) uniform() float64 {
	*g = *g*6364136223846793005 + 1442695040888963407
	return (float64(*g>>11) + 0.5) / (1 << 53)
}

func (g *gauss) next() float64 {
	return math.Sqrt(-2*math.Log(g.uniform())) * math.Cos(2*math.Pi*g.uniform())
}

// noisyDay is tankDay with Gaussian sensor noise of deviation sd and any
// number of fills or drains.
func noisyDay(t *testing.T, sd float64, seed uint64, changes ...change) *timeseries.Frame {
	t.Helper()
	f := timeseries.New(timeseries.Grid(t0, t0.Add(24*time.Hour), time.Minute))
	level := make([]float64, f.Len())
	inlet := make([]float64, f.Len())
	g := gauss(seed)
	for i := range level {
		v := 100 - 0.01*float64(i)
		for _, c := range changes {
			switch {
			case i >= c.to:
				v += c.amount
			case i >= c.from:
				v += c.amount * float64(i-c.from+1) / float64(c.to-c.from+1)
			}
		}
		if sd > 0 {
			v += sd * g.next()
		}
		level[i] = v
		inlet[i] = 1440 * 1000
	}
	require.NoError(t, f.Set(calc.TankVolume, level))
	require.NoError(t, f.Set(calc.InletFlowrate, inlet))
	return f
}

// Every case drains 0.01 gal/min over the 1320 minute window, 13.2 gal, give
// or take what is hidden while a fill or drain is under way.
func TestInferUsageTable(t *testing.T) {
	cases := []struct {
		name    string
		sd      float64
		seed    uint64
		changes []change
		kinds   []Kind
	}{
		{name: "noisy drawdown sd 0.3", sd: 0.3, seed: 2},
		{name: "noisy drawdown sd 0.5", sd: 0.5, seed: 2},
		{name: "noisy drawdown sd 1.0", sd: 1.0, seed: 2},
		{name: "step fill", changes: []change{{720, 720, 50}}, kinds: []Kind{Fill}},
		{name: "noisy step fill", sd: 0.5, seed: 3, changes: []change{{720, 720, 50}}, kinds: []Kind{Fill}},
		{name: "noisy ramp fill", sd: 0.5, seed: 4, changes: []change{{700, 719, 50}}, kinds: []Kind{Fill}},
		{name: "noisy ramp drain", sd: 0.5, seed: 5, changes: []change{{900, 909, -40}}, kinds: []Kind{Drain}},
		{name: "fill across window end", sd: 0.5, seed: 6, changes: []change{{1370, 1389, 50}}, kinds: []Kind{Fill}},
		{name: "fill across window start", sd: 0.5, seed: 8, changes: []change{{50, 69, 50}}, kinds: []Kind{Fill}},
		{name: "fill then drain", sd: 0.5, seed: 9, changes: []change{{300, 309, 50}, {1000, 1004, -30}}, kinds: []Kind{Fill, Drain}},
	}
	start, end := t0.Add(time.Hour), t0.Add(23*time.Hour)
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			res, err := Infer(noisyDay(t, c.sd, c.seed, c.changes...), start, end, Config{})
			require.NoError(t, err)
			var kinds []Kind
			for i, ev := range res.Events {
				kinds = append(kinds, ev.Kind)
				if i > 0 {
					assert.GreaterOrEqual(t, ev.Start.Index, res.Events[i-1].End.Index, "events overlap")
				}
			}
			assert.Equal(t, c.kinds, kinds)
			assert.InDelta(t, 13.2, ChemicalUsage(res), 0.6)
		})
	}
}

func TestInferFillAcrossWindowEnd(t *testing.T) {
	f := noisyDay(t, 0, 0, change{1370, 1389, 50})
	start, end := t0.Add(time.Hour), t0.Add(23*time.Hour)
	res, err := Infer(f, start, end, Config{})
	require.NoError(t, err)
	require.Len(t, res.Events, 1)
	ev := res.Events[0]
	assert.Equal(t, 1369, ev.Start.Index)
	assert.True(t, ev.End.Time.After(end))
	// the level just before the fill closes the window
	assert.InDelta(t, 86.31, res.EndLevel, 0.01)
	assert.InDelta(t, 13.09, ChemicalUsage(res), 0.02)
}

func TestInferFillAcrossWindowStart(t *testing.T) {
	f := noisyDay(t, 0, 0, change{50, 69, 50})
	start, end := t0.Add(time.Hour), t0.Add(23*time.Hour)
	res, err := Infer(f, start, end, Config{})
	require.NoError(t, err)
	require.Len(t, res.Events, 1)
	ev := res.Events[0]
	assert.True(t, ev.Start.Time.Before(start))
	assert.Equal(t, 69, ev.End.Index)
	// the level right after the fill opens the window
	assert.InDelta(t, 149.31, res.StartLevel, 0.01)
	assert.InDelta(t, 13.11, ChemicalUsage(res), 0.02)
}

func TestPairSkipsSmallJumpsAndOverlaps(t *testing.T) {
	m := func(i int, level float64) Marker {
		return Marker{Index: i, Time: t0.Add(time.Duration(i) * time.Minute), Level: level}
	}
	fwd := []Marker{m(100, 80), m(200, 60), m(210, 60), m(400, 50)}
	bkwd := []Marker{m(105, 79.5), m(220, 110), m(230, 60), m(405, 50.2)}
	cfg := Config{}
	cfg.SetDefaults()

	events := pair(fwd, bkwd, cfg, t0, t0.Add(24*time.Hour))
	require.Len(t, events, 1)
	assert.Equal(t, 210, events[0].Start.Index)
	assert.Equal(t, 220, events[0].End.Index)
	assert.Equal(t, Fill, events[0].Kind)
}

func TestInferSingleFill(t *testing.T) {
	f := tankDay(t, 720)
	start, end := t0.Add(time.Hour), t0.Add(23*time.Hour)
	res, err := Infer(f, start, end, Config{})
	require.NoError(t, err)

	require.Len(t, res.Events, 1)
	ev := res.Events[0]
	assert.Equal(t, Fill, ev.Kind)
	assert.Equal(t, 719, ev.Start.Index)
	assert.Equal(t, 720, ev.End.Index)
	assert.InDelta(t, 13.19, ChemicalUsage(res), 0.5)
	assert.InDelta(t, 1.32e6, res.Inlet, 1e-6)

	flags := PeakFlags(res)
	assert.Equal(t, 1.0, flags[719])
	assert.Equal(t, 1.0, flags[720])
	assert.True(t, res.Frame.Has(ForwardDistance))
	assert.False(t, f.Has(ForwardDistance), "input frame must not be modified")
}

func TestInferNoEvents(t *testing.T) {
	f := tankDay(t, 0)
	res, err := Infer(f, t0.Add(time.Hour), t0.Add(23*time.Hour), Config{})
	require.NoError(t, err)
	assert.Empty(t, res.Events)
	assert.InDelta(t, 13.2, ChemicalUsage(res), 0.5)
}

func TestInferFillOutsideWindowIgnored(t *testing.T) {
	f := tankDay(t, 720)
	res, err := Infer(f, t0.Add(13*time.Hour), t0.Add(23*time.Hour), Config{})
	require.NoError(t, err)
	assert.Empty(t, res.Events)
	assert.NotEmpty(t, res.Forward)
}

func TestInferNoLevel(t *testing.T) {
	f := timeseries.New(timeseries.Grid(t0, t0.Add(time.Hour), time.Minute))
	_, err := Infer(f, t0, t0.Add(time.Hour), Config{})
	assert.True(t, errors.Is(err, ErrNoLevel))

	require.NoError(t, f.Set(calc.TankVolume, timeseries.NaNs(f.Len())))
	_, err = Infer(f, t0, t0.Add(time.Hour), Config{})
	assert.ErrorIs(t, err, ErrNoLevel)
}

func TestChemicalUsage(t *testing.T) {
	cases := []struct {
		name string
		res  *Result
		want float64
	}{
		{"nil", nil, 0},
		{"level rose", &Result{StartLevel: 10, EndLevel: 12}, 0},
		{"no events", &Result{StartLevel: 10, EndLevel: 7.456}, 2.54},
		{"drain removed", &Result{
			StartLevel: 100,
			EndLevel:   35,
			Events:     []Event{{Start: Marker{Level: 90}, End: Marker{Level: 40}, Kind: Drain}},
		}, 15},
		{"missing level", &Result{StartLevel: math.NaN(), EndLevel: 1}, 0},
		{"edge events skipped", &Result{
			Start:      t0,
			End:        t0.Add(time.Hour),
			StartLevel: 60,
			EndLevel:   55,
			Events: []Event{
				{Start: Marker{Time: t0.Add(-5 * time.Minute), Level: 10}, End: Marker{Time: t0.Add(5 * time.Minute), Level: 60}, Kind: Fill},
				{Start: Marker{Time: t0.Add(55 * time.Minute), Level: 55}, End: Marker{Time: t0.Add(65 * time.Minute), Level: 90}, Kind: Fill},
			},
		}, 5},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, ChemicalUsage(c.res))
		})
	}
}

func TestFindPeaks(t *testing.T) {
	sig := []float64{0, 5, 1, 0, 4, 0, 0, 6, 0}
	assert.Equal(t, []int{1, 4, 7}, FindPeaks(sig, 3, 1))
	assert.Equal(t, []int{1, 7}, FindPeaks(sig, 3, 4))
	assert.Equal(t, []int{7}, FindPeaks(sig, 5.5, 1))
	assert.Equal(t, []int{1}, FindPeaks([]float64{0, 3, 3, 0}, 1, 1))
	assert.Nil(t, FindPeaks(nil, 1, 1))
}

func TestEMA(t *testing.T) {
	got := EMA([]float64{math.NaN(), 10, 20, math.NaN()}, 0.5)
	assert.True(t, math.IsNaN(got[0]))
	assert.Equal(t, []float64{10, 15, 15}, got[1:])

	back := ReverseEMA([]float64{20, 10}, 0.5)
	assert.Equal(t, []float64{15, 10}, back)
}

func TestDistancesFlatSeriesQuiet(t *testing.T) {
	level := make([]float64, 100)
	for i := range level {
		level[i] = 50 + 0.01*math.Sin(float64(i))
	}
	for _, d := range Distances(level, 30, 0.5) {
		assert.Less(t, d, 1.0)
	}
}

func TestConfigValidate(t *testing.T) {
	c := Config{}
	c.SetDefaults()
	assert.NoError(t, c.Validate())
	assert.Equal(t, 5.0, c.MinJump)
	assert.Equal(t, 120, c.FitWindow)
	c.Alpha = 2
	assert.Error(t, c.Validate())

	c = Config{MinJump: -1}
	c.SetDefaults()
	assert.ErrorContains(t, c.Validate(), "min_jump")
}
