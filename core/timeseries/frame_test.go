package timeseries

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleFrame(t *testing.T) *Frame {
	t.Helper()
	start := time.Date(2024, 3, 4, 6, 0, 0, 0, time.UTC)
	f := New(Grid(start, start.Add(4*time.Minute), time.Minute))
	require.NoError(t, f.Set("a", []float64{1, 2, 3, 4, 5}))
	require.NoError(t, f.Set("b", []float64{5, 4, math.NaN(), 2, math.NaN()}))
	return f
}

func TestGrid(t *testing.T) {
	start := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	g := Grid(start, start.Add(time.Hour), time.Minute)
	assert.Len(t, g, 61)
	assert.True(t, g[60].Equal(start.Add(time.Hour)))
	assert.Nil(t, Grid(start, start.Add(-time.Minute), time.Minute))
}

func TestFrameSetLengthMismatch(t *testing.T) {
	f := sampleFrame(t)
	assert.Error(t, f.Set("c", []float64{1}))
}

func TestFrameSliceInclusive(t *testing.T) {
	f := sampleFrame(t)
	idx := f.Index()
	s := f.Slice(idx[1], idx[3])
	assert.Equal(t, 3, s.Len())
	a, _ := s.Col("a")
	assert.Equal(t, []float64{2, 3, 4}, a)
	a[0] = 100
	orig, _ := f.Col("a")
	assert.Equal(t, 2.0, orig[1], "slice must not alias")
	assert.Equal(t, []string{"a", "b"}, s.Columns())
}

func TestFrameSliceOutside(t *testing.T) {
	f := sampleFrame(t)
	s := f.Slice(f.Index()[4].Add(time.Hour), f.Index()[4].Add(2*time.Hour))
	assert.True(t, s.Empty())
}

func TestFrameHelpers(t *testing.T) {
	f := sampleFrame(t)
	assert.Equal(t, 4, f.DropLast().Len())
	assert.Equal(t, 2.0, f.Last("b"))
	assert.True(t, math.IsNaN(f.Last("missing")))
	i, ok := f.Find(f.Index()[2])
	assert.True(t, ok)
	assert.Equal(t, 2, i)
	assert.Equal(t, []int{0}, f.AtClock(6, 0))
	assert.Len(t, f.MustCol("missing"), 5)
	f.Drop("a")
	assert.False(t, f.Has("a"))
	assert.Equal(t, []string{"b"}, f.Columns())
}
