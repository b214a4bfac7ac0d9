package metrics

import "time"

// RunEvent summarises one report run.
type RunEvent struct {
	RunID    string
	Report   string
	Day      time.Time
	Figures  int
	Failures int
	Sent     bool
	Duration time.Duration
	Time     time.Time
}

// Sink records report runs for observability purposes.
type Sink interface {
	RecordRun(ev RunEvent) error
}

// LocationSummary carries the figures computed for one location and day,
// keyed by metric name (produced_gal, chemical_a_shift_1, ...).
type LocationSummary struct {
	RunID       string
	Location    string
	Connection  string
	Designation string
	Day         time.Time
	Values      map[string]float64
}

// LocationRecorder records per-location figures.
type LocationRecorder interface {
	RecordLocation(s LocationSummary) error
}

// FailureEvent describes a location skipped by a report stage.
type FailureEvent struct {
	RunID    string
	Report   string
	Stage    string
	Location string
	Err      string
	Time     time.Time
}

// FailureRecorder records skipped locations.
type FailureRecorder interface {
	RecordFailure(ev FailureEvent) error
}

// NopSink implements every recorder with no-op methods.
type NopSink struct{}

func (NopSink) RecordRun(RunEvent) error             { return nil }
func (NopSink) RecordLocation(LocationSummary) error { return nil }
func (NopSink) RecordFailure(FailureEvent) error     { return nil }
