package charts

import (
	"math"
	"time"

	"gonum.org/v1/plot"
)

// ClockTicks marks every Major interval with a wall clock label and every
// Minor interval with an unlabeled tick. Values are Unix seconds.
type ClockTicks struct {
	Location *time.Location
	Major    time.Duration
	Minor    time.Duration
	Format   string
}

// HourTicks returns the hourly/15 minute ticks used on every time axis.
func HourTicks(loc *time.Location) ClockTicks {
	return ClockTicks{Location: loc, Major: time.Hour, Minor: 15 * time.Minute, Format: "03:04 PM"}
}

// Ticks implements plot.Ticker.
func (c ClockTicks) Ticks(min, max float64) []plot.Tick {
	loc := c.Location
	if loc == nil {
		loc = time.UTC
	}
	minor := c.Minor
	if minor <= 0 {
		minor = c.Major
	}
	if minor <= 0 || max < min {
		return nil
	}
	start := time.Unix(int64(math.Ceil(min)), 0).In(loc)
	// align to the minor grid in local wall time
	day := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, loc)
	t := day.Add(start.Sub(day).Truncate(minor))
	if t.Before(start) {
		t = t.Add(minor)
	}
	var ticks []plot.Tick
	for ; float64(t.Unix()) <= max; t = t.Add(minor) {
		tk := plot.Tick{Value: float64(t.Unix())}
		if c.Major > 0 && t.Sub(time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc))%c.Major == 0 {
			tk.Label = t.Format(c.Format)
		}
		ticks = append(ticks, tk)
	}
	return ticks
}

// DayTicks labels every day position given in Unix seconds.
type DayTicks struct {
	Days   []time.Time
	Format string
}

// Ticks implements plot.Ticker.
func (d DayTicks) Ticks(min, max float64) []plot.Tick {
	format := d.Format
	if format == "" {
		format = "Jan 02,2006"
	}
	var ticks []plot.Tick
	for _, day := range d.Days {
		v := float64(day.Unix())
		if v >= min && v <= max {
			ticks = append(ticks, plot.Tick{Value: v, Label: day.Format(format)})
		}
	}
	return ticks
}

const maxTicks = 500

// StepTicks places labeled ticks every Step from zero up to Top and
// unlabeled ones every Minor.
type StepTicks struct {
	Step   float64
	Minor  float64
	Top    float64
	Format string
}

// Ticks implements plot.Ticker.
func (s StepTicks) Ticks(min, max float64) []plot.Tick {
	top := s.Top
	if top <= 0 || top > max {
		top = max
	}
	if s.Step <= 0 || top <= 0 {
		return plot.DefaultTicks{}.Ticks(min, max)
	}
	format := s.Format
	if format == "" {
		format = "%g"
	}
	var ticks []plot.Tick
	n := int(math.Floor(top/s.Step + 1e-9))
	if n > maxTicks {
		return plot.DefaultTicks{}.Ticks(min, max)
	}
	for i := 0; i <= n; i++ {
		v := float64(i) * s.Step
		ticks = append(ticks, plot.Tick{Value: v, Label: sprintf(format, v)})
	}
	if s.Minor > 0 && s.Minor < s.Step && top/s.Minor <= maxTicks {
		m := int(math.Floor(top/s.Minor + 1e-9))
		for i := 0; i <= m; i++ {
			v := float64(i) * s.Minor
			if math.Abs(math.Mod(v+1e-9, s.Step)) > 2e-9 {
				ticks = append(ticks, plot.Tick{Value: v})
			}
		}
	}
	return ticks
}

// Scale selects the flow or fuel axis layout.
type Scale string

const (
	ScaleFlow Scale = "flow"
	ScaleFuel Scale = "fuel"
)

type scaleStep struct {
	scale float64
	high  float64
	med   float64
	low   float64
}

var scales = map[Scale]scaleStep{
	ScaleFuel: {scale: 0.14, high: 1, med: 0.5, low: 0.1},
	ScaleFlow: {scale: 1.4, high: 10, med: 5, low: 1},
}

// ScaledTicks picks the tick step for an axis from the largest value of the
// reference series: above 40 is high, below 10 is low, medium otherwise. The
// returned top is the axis maximum.
func ScaledTicks(which Scale, max float64) (StepTicks, float64) {
	sc, ok := scales[which]
	if !ok || math.IsNaN(max) || max <= 0 {
		return StepTicks{}, 0
	}
	step := sc.med
	switch {
	case max > 40:
		step = sc.high
	case max < 10:
		step = sc.low
	}
	top := max * sc.scale
	return StepTicks{Step: step, Top: top}, top
}
