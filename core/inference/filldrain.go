// Package inference detects tank fills and drains in level series and
// derives the chemical consumed over a shift.
package inference

import (
	"errors"
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/kilianp07/opsreport/core/calc"
	"github.com/kilianp07/opsreport/core/timeseries"
)

// Columns added to the frame returned in Result.
const (
	FilteredForward  = "filtered_vol_fwd"
	FilteredBackward = "filtered_vol_bkwd"
	ForwardDistance  = "fwd_mds"
	BackwardDistance = "bkwd_mds"
)

// ErrNoLevel is returned when the frame holds no tank level samples.
var ErrNoLevel = errors.New("no tank level data")

// Kind tells whether an event raised or lowered the tank.
type Kind string

const (
	Fill  Kind = "fill"
	Drain Kind = "drain"
)

// Config tunes the detector. Window, MinDistance, MaxEventMinutes and
// FitWindow count one minute samples.
type Config struct {
	Window          int     `json:"window" yaml:"window"`
	Threshold       float64 `json:"threshold" yaml:"threshold"`
	MinDistance     int     `json:"min_distance" yaml:"min_distance"`
	NoiseFloor      float64 `json:"noise_floor" yaml:"noise_floor"`
	Alpha           float64 `json:"alpha" yaml:"alpha"`
	MaxEventMinutes int     `json:"max_event_minutes" yaml:"max_event_minutes"`
	// MinJump is the smallest level change, in gallons, kept as an event.
	MinJump float64 `json:"min_jump" yaml:"min_jump"`
	// FitWindow bounds the quiet samples a level is fitted on next to an
	// event or a window edge.
	FitWindow int `json:"fit_window" yaml:"fit_window"`
}

// SetDefaults fills zero values.
func (c *Config) SetDefaults() {
	if c.Window == 0 {
		c.Window = 30
	}
	if c.Threshold == 0 {
		c.Threshold = 3
	}
	if c.MinDistance == 0 {
		c.MinDistance = 30
	}
	if c.NoiseFloor == 0 {
		c.NoiseFloor = 0.5
	}
	if c.Alpha == 0 {
		c.Alpha = 0.1
	}
	if c.MaxEventMinutes == 0 {
		c.MaxEventMinutes = 180
	}
	if c.MinJump == 0 {
		c.MinJump = 10 * c.NoiseFloor
	}
	if c.FitWindow == 0 {
		c.FitWindow = 4 * c.Window
	}
}

// Validate checks the detector settings.
func (c Config) Validate() error {
	if c.Window < 2 {
		return fmt.Errorf("inference window must be >= 2")
	}
	if c.Threshold <= 0 {
		return fmt.Errorf("inference threshold must be positive")
	}
	if c.Alpha <= 0 || c.Alpha > 1 {
		return fmt.Errorf("inference alpha must be in (0,1]")
	}
	if c.NoiseFloor < 0 {
		return fmt.Errorf("inference noise_floor must not be negative")
	}
	if c.MinJump < 0 {
		return fmt.Errorf("inference min_jump must not be negative")
	}
	if c.FitWindow < 1 {
		return fmt.Errorf("inference fit_window must be >= 1")
	}
	return nil
}

// Marker is a quiet sample bounding an event together with the distance
// peak it was derived from. Level is the filtered level, refitted on the
// neighbouring quiet samples once the marker is paired.
type Marker struct {
	Index    int
	Time     time.Time
	Level    float64
	Distance float64

	PeakIndex int
	PeakTime  time.Time
	Peak      float64
}

// Event is a fill or drain bounded by a forward marker (before the jump)
// and a backward marker (after it). An event may start before or end after
// the analysed window.
type Event struct {
	Start Marker
	End   Marker
	Kind  Kind
}

// Result holds everything the charts and exports need. StartLevel and
// EndLevel are the levels at the window edges with fills and drains
// crossing an edge already excluded.
type Result struct {
	Frame      *timeseries.Frame
	Forward    []Marker
	Backward   []Marker
	Events     []Event
	Start      time.Time
	End        time.Time
	StartLevel float64
	EndLevel   float64
	Inlet      float64
}

// Infer runs the detector on the tank_volume column of f and keeps the
// events overlapping [start, end]. Samples outside the window only give the
// filters and distances context.
func Infer(f *timeseries.Frame, start, end time.Time, cfg Config) (*Result, error) {
	level, ok := f.Col(calc.TankVolume)
	if !ok || len(calc.Finite(level)) == 0 {
		return nil, ErrNoLevel
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	out := f.Clone()
	fwd := EMA(level, cfg.Alpha)
	bkwd := ReverseEMA(level, cfg.Alpha)
	fwdD := Distances(level, cfg.Window, cfg.NoiseFloor)
	bkwdD := BackwardDistances(level, cfg.Window, cfg.NoiseFloor)
	cols := []struct {
		name string
		vals []float64
	}{{FilteredForward, fwd}, {FilteredBackward, bkwd}, {ForwardDistance, fwdD}, {BackwardDistance, bkwdD}}
	for _, c := range cols {
		if err := out.Set(c.name, c.vals); err != nil {
			return nil, err
		}
	}

	idx := out.Index()
	res := &Result{Frame: out, Start: start, End: end}
	for _, p := range FindPeaks(fwdD, cfg.Threshold, cfg.MinDistance) {
		j := p - 1
		for j > 0 && fwdD[j] >= cfg.Threshold {
			j--
		}
		j = max(j, 0)
		res.Forward = append(res.Forward, Marker{
			Index: j, Time: idx[j], Level: fwd[j], Distance: fwdD[j],
			PeakIndex: p, PeakTime: idx[p], Peak: fwdD[p],
		})
	}
	for _, p := range FindPeaks(bkwdD, cfg.Threshold, cfg.MinDistance) {
		j := p + 1
		for j < len(idx)-1 && bkwdD[j] >= cfg.Threshold {
			j++
		}
		j = min(j, len(idx)-1)
		res.Backward = append(res.Backward, Marker{
			Index: j, Time: idx[j], Level: bkwd[j], Distance: bkwdD[j],
			PeakIndex: p, PeakTime: idx[p], Peak: bkwdD[p],
		})
	}
	res.Events = pair(res.Forward, res.Backward, cfg, start, end)
	refit(level, res.Events, cfg.FitWindow)
	lo, hi := out.Rows(start, end)
	res.StartLevel, res.EndLevel = edgeLevels(level, lo, hi, res.Events, start, end, cfg.FitWindow)
	res.Inlet = calc.ShiftInlet(out, calc.Shift{Start: start, End: end})
	return res, nil
}

// pair matches every backward marker with the latest forward marker before
// it, no more than MaxEventMinutes earlier. Pairs whose level change is below
// MinJump are noise and are skipped. Events never overlap: a forward marker
// must not precede the end of the previous event. Only events overlapping
// [start, end] are returned.
func pair(fwd, bkwd []Marker, cfg Config, start, end time.Time) []Event {
	var events []Event
	lastEnd := -1
	for _, b := range bkwd {
		if b.Index <= lastEnd {
			continue
		}
		for i := len(fwd) - 1; i >= 0; i-- {
			f := fwd[i]
			if f.Index >= b.Index {
				continue
			}
			if f.Index < lastEnd || b.Index-f.Index > cfg.MaxEventMinutes {
				break
			}
			if math.Abs(b.Level-f.Level) < cfg.MinJump {
				continue
			}
			lastEnd = b.Index
			if b.Time.Before(start) || f.Time.After(end) {
				break
			}
			kind := Drain
			if b.Level > f.Level {
				kind = Fill
			}
			events = append(events, Event{Start: f, End: b, Kind: kind})
			break
		}
	}
	return events
}

// refit replaces the filtered level of every event marker with a linear fit
// of the quiet samples on its outer side, up to span samples and never past
// a neighbouring event.
func refit(level []float64, events []Event, span int) {
	for i := range events {
		from := 0
		if i > 0 {
			from = events[i-1].End.Index
		}
		to := len(level) - 1
		if i+1 < len(events) {
			to = events[i+1].Start.Index
		}
		s, e := events[i].Start.Index, events[i].End.Index
		if v := fitAt(level, max(from, s-span), s, s); !math.IsNaN(v) {
			events[i].Start.Level = v
		}
		if v := fitAt(level, e, min(to, e+span), e); !math.IsNaN(v) {
			events[i].End.Level = v
		}
	}
}

// edgeLevels returns the levels at rows lo and hi-1. An event crossing the
// window start gives its end level, one crossing the window end gives its
// start level. Otherwise the level is fitted on the quiet samples between
// the edge and the nearest event.
func edgeLevels(level []float64, lo, hi int, events []Event, start, end time.Time, span int) (float64, float64) {
	if hi <= lo {
		return math.NaN(), math.NaN()
	}
	startTo := min(hi-1, lo+span)
	endFrom := max(lo, hi-1-span)
	startLevel, endLevel := math.NaN(), math.NaN()
	if n := len(events); n > 0 {
		first, last := events[0], events[n-1]
		if first.Start.Time.Before(start) && first.End.Time.After(end) {
			// a single event covers the whole window
			return math.NaN(), math.NaN()
		}
		if first.Start.Time.Before(start) {
			startLevel = first.End.Level
		} else {
			startTo = min(startTo, first.Start.Index)
		}
		if last.End.Time.After(end) {
			endLevel = last.Start.Level
		} else {
			endFrom = max(endFrom, last.End.Index)
		}
	}
	if math.IsNaN(startLevel) {
		startLevel = fitAt(level, lo, startTo, lo)
	}
	if math.IsNaN(endLevel) {
		endLevel = fitAt(level, endFrom, hi-1, hi-1)
	}
	return startLevel, endLevel
}

// fitAt fits a line on the finite samples of level[from:to+1] and returns
// its value at row at. A single sample is returned as is.
func fitAt(level []float64, from, to, at int) float64 {
	var xs, ys []float64
	for i := max(from, 0); i <= to && i < len(level); i++ {
		if !math.IsNaN(level[i]) {
			xs = append(xs, float64(i-at))
			ys = append(ys, level[i])
		}
	}
	switch len(xs) {
	case 0:
		return math.NaN()
	case 1:
		return ys[0]
	}
	alpha, _ := stat.LinearRegression(xs, ys, nil, false)
	return alpha
}

// ChemicalUsage is the drop in level over the shift with every fill and
// drain removed, rounded to two decimals and never negative. Events crossing
// a window edge are already excluded from StartLevel and EndLevel.
func ChemicalUsage(r *Result) float64 {
	if r == nil || math.IsNaN(r.StartLevel) || math.IsNaN(r.EndLevel) {
		return 0
	}
	used := 0.0
	cur := r.StartLevel
	for _, ev := range r.Events {
		if ev.Start.Time.Before(r.Start) || ev.End.Time.After(r.End) {
			continue
		}
		used += cur - ev.Start.Level
		cur = ev.End.Level
	}
	used += cur - r.EndLevel
	if math.IsNaN(used) || used < 0 {
		return 0
	}
	return calc.Round(used, 2)
}

// PeakFlags marks with 1 the rows holding an event boundary, 0 elsewhere.
func PeakFlags(r *Result) []float64 {
	flags := make([]float64, r.Frame.Len())
	for _, ev := range r.Events {
		flags[ev.Start.Index] = 1
		flags[ev.End.Index] = 1
	}
	return flags
}
