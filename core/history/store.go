// Package history keeps the daily production totals used by the weekly
// production chart.
package history

import (
	"context"
	"sort"
	"time"
)

// DateLayout formats the calendar day of a record.
const DateLayout = "2006-01-02"

// Record is the production of one location over one day.
type Record struct {
	Location    string    `json:"location"`
	Date        string    `json:"date"`
	Connection  string    `json:"connection"`
	Designation string    `json:"designation"`
	ProducedGal float64   `json:"produced_gal"`
	PumpedGal   float64   `json:"pumped_gal"`
	RecordedAt  time.Time `json:"recorded_at"`
}

// Query selects records by date range, both ends inclusive. Empty fields do
// not filter.
type Query struct {
	From     string
	To       string
	Location string
}

// Match reports whether r satisfies the query.
func (q Query) Match(r Record) bool {
	if q.From != "" && r.Date < q.From {
		return false
	}
	if q.To != "" && r.Date > q.To {
		return false
	}
	return q.Location == "" || q.Location == r.Location
}

// Store persists records. Adding a record for an existing location and date
// replaces it.
type Store interface {
	Add(ctx context.Context, r Record) error
	Query(ctx context.Context, q Query) ([]Record, error)
	Close() error
}

// DateOf returns the calendar day of t in its own location.
func DateOf(t time.Time) string { return t.Format(DateLayout) }

// Days returns the n calendar days ending with end, oldest first.
func Days(end time.Time, n int) []time.Time {
	out := make([]time.Time, n)
	for i := 0; i < n; i++ {
		out[i] = time.Date(end.Year(), end.Month(), end.Day()-(n-1-i), 0, 0, 0, 0, end.Location())
	}
	return out
}

// Sort orders records by date then location.
func Sort(recs []Record) {
	sort.SliceStable(recs, func(i, j int) bool {
		if recs[i].Date != recs[j].Date {
			return recs[i].Date < recs[j].Date
		}
		return recs[i].Location < recs[j].Location
	})
}

// Weekly holds per-day production grouped by connection type.
type Weekly struct {
	Days  []time.Time
	TypeA []float64
	TypeB []float64
	Total []float64
	// Missing lists the days without any record.
	Missing []string
}

// Aggregate sums the records of each day in days. typeB tells which
// connection types count as type B.
func Aggregate(recs []Record, days []time.Time, typeB func(connection string) bool) Weekly {
	w := Weekly{
		Days:  days,
		TypeA: make([]float64, len(days)),
		TypeB: make([]float64, len(days)),
		Total: make([]float64, len(days)),
	}
	pos := make(map[string]int, len(days))
	for i, d := range days {
		pos[DateOf(d)] = i
	}
	seen := make([]bool, len(days))
	for _, r := range recs {
		i, ok := pos[r.Date]
		if !ok {
			continue
		}
		seen[i] = true
		if typeB(r.Connection) {
			w.TypeB[i] += r.ProducedGal
		} else {
			w.TypeA[i] += r.ProducedGal
		}
		w.Total[i] += r.ProducedGal
	}
	for i, ok := range seen {
		if !ok {
			w.Missing = append(w.Missing, DateOf(days[i]))
		}
	}
	return w
}
