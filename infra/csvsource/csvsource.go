// Package csvsource serves sensor samples from a timestamp,tag,value CSV
// export. It is used for offline runs and reprocessing.
package csvsource

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/kilianp07/opsreport/core/factory"
	"github.com/kilianp07/opsreport/core/source"
)

// Config points at the export file.
type Config struct {
	Path string `json:"path"`
	// Layout parses the timestamp column, RFC3339 by default.
	Layout string `json:"layout"`
	// Timezone applies to layouts without an offset.
	Timezone string `json:"timezone"`
}

// Source keeps every sample in memory.
type Source struct {
	data map[string][]source.Point
}

func init() {
	_ = source.Register("csv", func(conf map[string]any) (source.Source, error) {
		var c Config
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return Open(c)
	})
}

// Open reads the configured file.
func Open(cfg Config) (*Source, error) {
	if cfg.Path == "" {
		return nil, errors.New("csv source requires a path")
	}
	f, err := os.Open(cfg.Path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return Read(f, cfg)
}

// Read parses samples from r. A header row is skipped when its first field
// is not a timestamp.
func Read(r io.Reader, cfg Config) (*Source, error) {
	layout := cfg.Layout
	if layout == "" {
		layout = time.RFC3339
	}
	loc := time.UTC
	if cfg.Timezone != "" {
		var err error
		if loc, err = time.LoadLocation(cfg.Timezone); err != nil {
			return nil, err
		}
	}
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 3
	cr.TrimLeadingSpace = true
	s := &Source{data: map[string][]source.Point{}}
	for line := 1; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		ts, err := time.ParseInLocation(layout, strings.TrimSpace(rec[0]), loc)
		if err != nil {
			if line == 1 {
				continue
			}
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(rec[2]), 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		tag := strings.TrimSpace(rec[1])
		s.data[tag] = append(s.data[tag], source.Point{Time: ts, Value: v})
	}
	for tag, pts := range s.data {
		sort.SliceStable(pts, func(i, j int) bool { return pts[i].Time.Before(pts[j].Time) })
		s.data[tag] = pts
	}
	return s, nil
}

// Tags lists the tags present in the file.
func (s *Source) Tags() []string {
	out := make([]string, 0, len(s.data))
	for t := range s.data {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// Fetch implements source.Source.
func (s *Source) Fetch(ctx context.Context, tags []string, start, end time.Time) (map[string][]source.Point, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make(map[string][]source.Point, len(tags))
	for _, t := range tags {
		pts := s.data[t]
		lo := sort.Search(len(pts), func(i int) bool { return !pts[i].Time.Before(start) })
		hi := sort.Search(len(pts), func(i int) bool { return pts[i].Time.After(end) })
		if hi > lo {
			out[t] = append([]source.Point(nil), pts[lo:hi]...)
		}
	}
	return out, nil
}
