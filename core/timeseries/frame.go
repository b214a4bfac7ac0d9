// Package timeseries holds the minute-grid table every report model works on.
package timeseries

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// Frame is a time indexed table of float64 columns. Missing values are NaN.
type Frame struct {
	index []time.Time
	cols  map[string][]float64
	order []string
}

// Grid returns the timestamps from start to end inclusive spaced by step.
func Grid(start, end time.Time, step time.Duration) []time.Time {
	if step <= 0 || end.Before(start) {
		return nil
	}
	n := int(end.Sub(start)/step) + 1
	out := make([]time.Time, 0, n)
	for t := start; !t.After(end); t = t.Add(step) {
		out = append(out, t)
	}
	return out
}

// New creates an empty frame over index.
func New(index []time.Time) *Frame {
	return &Frame{index: index, cols: map[string][]float64{}}
}

// NaNs returns a slice of n NaN values.
func NaNs(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}

// Len returns the number of rows.
func (f *Frame) Len() int { return len(f.index) }

// Empty reports whether the frame has no rows.
func (f *Frame) Empty() bool { return len(f.index) == 0 }

// Index returns the row timestamps.
func (f *Frame) Index() []time.Time { return f.index }

// Columns returns column names in insertion order.
func (f *Frame) Columns() []string { return append([]string(nil), f.order...) }

// Has reports whether column name exists.
func (f *Frame) Has(name string) bool {
	_, ok := f.cols[name]
	return ok
}

// Col returns the values of column name.
func (f *Frame) Col(name string) ([]float64, bool) {
	v, ok := f.cols[name]
	return v, ok
}

// MustCol returns the column or an all-NaN slice when absent.
func (f *Frame) MustCol(name string) []float64 {
	if v, ok := f.cols[name]; ok {
		return v
	}
	return NaNs(f.Len())
}

// Set adds or replaces a column. The length must match the index.
func (f *Frame) Set(name string, vals []float64) error {
	if len(vals) != len(f.index) {
		return fmt.Errorf("column %s: %d values for %d rows", name, len(vals), len(f.index))
	}
	if _, ok := f.cols[name]; !ok {
		f.order = append(f.order, name)
	}
	f.cols[name] = vals
	return nil
}

// Drop removes a column.
func (f *Frame) Drop(name string) {
	if _, ok := f.cols[name]; !ok {
		return
	}
	delete(f.cols, name)
	for i, n := range f.order {
		if n == name {
			f.order = append(f.order[:i], f.order[i+1:]...)
			break
		}
	}
}

// Rows returns the [lo, hi) row range of timestamps within [start, end].
func (f *Frame) Rows(start, end time.Time) (int, int) {
	lo := sort.Search(len(f.index), func(i int) bool { return !f.index[i].Before(start) })
	hi := sort.Search(len(f.index), func(i int) bool { return f.index[i].After(end) })
	if hi < lo {
		hi = lo
	}
	return lo, hi
}

// Slice returns the rows with timestamps within [start, end]. Columns share
// no memory with the receiver.
func (f *Frame) Slice(start, end time.Time) *Frame {
	lo, hi := f.Rows(start, end)
	return f.rows(lo, hi)
}

// Clone returns a deep copy of the frame.
func (f *Frame) Clone() *Frame { return f.rows(0, f.Len()) }

// DropLast returns the frame without its final row.
func (f *Frame) DropLast() *Frame {
	if f.Len() == 0 {
		return f.rows(0, 0)
	}
	return f.rows(0, f.Len()-1)
}

func (f *Frame) rows(lo, hi int) *Frame {
	out := New(append([]time.Time(nil), f.index[lo:hi]...))
	for _, name := range f.order {
		out.order = append(out.order, name)
		out.cols[name] = append([]float64(nil), f.cols[name][lo:hi]...)
	}
	return out
}

// Find returns the row whose timestamp equals t.
func (f *Frame) Find(t time.Time) (int, bool) {
	i := sort.Search(len(f.index), func(i int) bool { return !f.index[i].Before(t) })
	if i < len(f.index) && f.index[i].Equal(t) {
		return i, true
	}
	return -1, false
}

// AtClock returns the rows whose wall clock time is hour:min:00.
func (f *Frame) AtClock(hour, min int) []int {
	var out []int
	for i, t := range f.index {
		if t.Hour() == hour && t.Minute() == min && t.Second() == 0 {
			out = append(out, i)
		}
	}
	return out
}

// Last returns the final non-NaN value of column name.
func (f *Frame) Last(name string) float64 {
	vals := f.cols[name]
	for i := len(vals) - 1; i >= 0; i-- {
		if !math.IsNaN(vals[i]) {
			return vals[i]
		}
	}
	return math.NaN()
}
