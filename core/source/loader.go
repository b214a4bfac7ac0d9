package source

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/kilianp07/opsreport/core/logger"
	"github.com/kilianp07/opsreport/core/timeseries"
)

// Column maps sensor tags to frame columns. Without Names the tags are summed
// into Name; with Names tag i becomes column Names[i].
type Column struct {
	Name  string
	Tags  []string
	Names []string
}

// Request describes a frame to load.
type Request struct {
	Start   time.Time
	End     time.Time
	Step    time.Duration
	Columns []Column
}

// Loader resamples source data onto a regular grid.
type Loader struct {
	src Source
	log logger.Logger
}

// NewLoader returns a Loader reading from src.
func NewLoader(src Source, log logger.Logger) *Loader {
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Loader{src: src, log: log}
}

// Load fetches every tag of the request and builds the frame over
// [Start, End]. Columns without data are filled with NaN.
func (l *Loader) Load(ctx context.Context, req Request) (*timeseries.Frame, error) {
	step := req.Step
	if step <= 0 {
		step = time.Minute
	}
	if req.End.Before(req.Start) {
		return nil, fmt.Errorf("invalid range %s - %s", req.Start, req.End)
	}
	var tags []string
	seen := map[string]bool{}
	for _, c := range req.Columns {
		if len(c.Names) > 0 && len(c.Names) != len(c.Tags) {
			return nil, fmt.Errorf("column %s: %d names for %d tags", c.Name, len(c.Names), len(c.Tags))
		}
		for _, t := range c.Tags {
			if !seen[t] {
				seen[t] = true
				tags = append(tags, t)
			}
		}
	}

	frame := timeseries.New(timeseries.Grid(req.Start, req.End, step))
	var data map[string][]Point
	if len(tags) > 0 {
		var err error
		data, err = l.src.Fetch(ctx, tags, req.Start, req.End)
		if err != nil {
			return nil, fmt.Errorf("fetch tags: %w", err)
		}
	}

	for _, c := range req.Columns {
		if len(c.Names) > 0 {
			for i, tag := range c.Tags {
				vals := Resample(data[tag], frame.Index())
				l.warnEmpty(c.Names[i], vals)
				if err := frame.Set(c.Names[i], vals); err != nil {
					return nil, err
				}
			}
			continue
		}
		series := make([][]float64, 0, len(c.Tags))
		for _, tag := range c.Tags {
			series = append(series, Resample(data[tag], frame.Index()))
		}
		vals := Sum(series, frame.Len())
		l.warnEmpty(c.Name, vals)
		if err := frame.Set(c.Name, vals); err != nil {
			return nil, err
		}
	}
	return frame, nil
}

func (l *Loader) warnEmpty(name string, vals []float64) {
	for _, v := range vals {
		if !math.IsNaN(v) {
			return
		}
	}
	l.log.Warnf("no data for column %s", name)
}

// Resample forward fills pts onto grid. Grid rows before the first point
// are NaN.
func Resample(pts []Point, grid []time.Time) []float64 {
	out := timeseries.NaNs(len(grid))
	j := 0
	last := math.NaN()
	for i, t := range grid {
		for j < len(pts) && !pts[j].Time.After(t) {
			if !math.IsNaN(pts[j].Value) {
				last = pts[j].Value
			}
			j++
		}
		out[i] = last
	}
	return out
}

// Sum adds the series row by row. A row is NaN only when every series is
// missing there.
func Sum(series [][]float64, n int) []float64 {
	out := timeseries.NaNs(n)
	for _, s := range series {
		for i, v := range s {
			if math.IsNaN(v) {
				continue
			}
			if math.IsNaN(out[i]) {
				out[i] = 0
			}
			out[i] += v
		}
	}
	return out
}
