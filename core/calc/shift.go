package calc

import (
	"math"
	"time"

	"github.com/kilianp07/opsreport/core/timeseries"
)

// Shift is one operator shift.
type Shift struct {
	Name  string
	Start time.Time
	End   time.Time
}

// DayShifts returns the day and night shifts that begin on day at startHour
// and last hours each.
func DayShifts(day time.Time, startHour, hours int) (Shift, Shift) {
	s1 := time.Date(day.Year(), day.Month(), day.Day(), startHour, 0, 0, 0, day.Location())
	e1 := s1.Add(time.Duration(hours) * time.Hour)
	e2 := e1.Add(time.Duration(hours) * time.Hour)
	return Shift{Name: "shift_1", Start: s1, End: e1}, Shift{Name: "shift_2", Start: e1, End: e2}
}

// LevelPerInlet normalises a consumed volume by the shift inlet volume in
// thousands of standard cubic feet. Zero inlet yields zero.
func LevelPerInlet(used, inlet float64) float64 {
	if inlet == 0 || math.IsNaN(inlet) || math.IsNaN(used) {
		return 0
	}
	return used / (inlet / 1000)
}

// FlowPerInlet normalises the change of a cumulative column over a shift by
// the change of cumulative_inlet. Shifts whose boundary rows are missing or
// whose inlet did not move yield zero. Both deltas are taken between the
// shift's own boundary rows, so flow logged before s.Start never counts.
func FlowPerInlet(f *timeseries.Frame, column string, s Shift) float64 {
	si, ok := f.Find(s.Start)
	if !ok {
		return 0
	}
	ei, ok := f.Find(s.End)
	if !ok {
		return 0
	}
	vals, ok := f.Col(column)
	if !ok {
		return 0
	}
	inlet, ok := f.Col(CumulativeInlet)
	if !ok {
		return 0
	}
	dInlet := inlet[ei] - inlet[si]
	if dInlet == 0 || math.IsNaN(dInlet) {
		return 0
	}
	return (vals[ei] - vals[si]) * 1000 / dInlet
}

// ShiftInlet returns the inlet volume over [s.Start, s.End) from a per-day
// rate sampled every minute.
func ShiftInlet(f *timeseries.Frame, s Shift) float64 {
	rate, ok := f.Col(InletFlowrate)
	if !ok {
		return 0
	}
	lo, hi := f.Rows(s.Start, s.End)
	if hi > lo && f.Index()[hi-1].Equal(s.End) {
		hi--
	}
	total := 0.0
	for _, v := range rate[lo:hi] {
		if !math.IsNaN(v) {
			total += v / MinutesPerDay
		}
	}
	return total
}
