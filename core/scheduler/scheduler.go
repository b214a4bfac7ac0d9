package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/kilianp07/opsreport/core/logger"
	"github.com/kilianp07/opsreport/core/monitoring"
)

// Job is run once per day with the scheduled time.
type Job func(ctx context.Context, at time.Time) error

// ParseClock parses an "HH:MM" wall clock time.
func ParseClock(s string) (hour, min int, err error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid run time %q: %w", s, err)
	}
	return t.Hour(), t.Minute(), nil
}

// NextRun returns the first time strictly after now at runAt in loc.
func NextRun(now time.Time, runAt string, loc *time.Location) (time.Time, error) {
	h, m, err := ParseClock(runAt)
	if err != nil {
		return time.Time{}, err
	}
	if loc == nil {
		loc = time.Local
	}
	local := now.In(loc)
	next := time.Date(local.Year(), local.Month(), local.Day(), h, m, 0, 0, loc)
	if !next.After(local) {
		next = time.Date(local.Year(), local.Month(), local.Day()+1, h, m, 0, 0, loc)
	}
	return next, nil
}

// Daily is a loop running jobs every day at RunAt.
type Daily struct {
	RunAt    string
	Location *time.Location
	Jobs     map[string]Job
	Log      logger.Logger

	now   func() time.Time
	after func(time.Duration) <-chan time.Time
}

// Run blocks until ctx is canceled. A failing or panicking job is logged and
// the loop waits for the next day.
func (d *Daily) Run(ctx context.Context) error {
	if d.Log == nil {
		d.Log = logger.NopLogger{}
	}
	now, after := d.now, d.after
	if now == nil {
		now = time.Now
	}
	if after == nil {
		after = time.After
	}
	for {
		next, err := NextRun(now(), d.RunAt, d.Location)
		if err != nil {
			return err
		}
		d.Log.Infof("next report run at %s", next.Format(time.RFC3339))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-after(next.Sub(now())):
		}
		for name, job := range d.Jobs {
			d.runJob(ctx, name, job, next)
		}
	}
}

func (d *Daily) runJob(ctx context.Context, name string, job Job, at time.Time) {
	defer func() {
		if r := recover(); r != nil {
			monitoring.CapturePanic(r)
			d.Log.Errorf("job %s panicked: %v", name, r)
		}
	}()
	start := time.Now()
	if err := job(ctx, at); err != nil {
		monitoring.CaptureException(err, map[string]string{"job": name})
		d.Log.Errorf("job %s failed: %v", name, err)
		return
	}
	d.Log.Infof("job %s done in %s", name, time.Since(start).Round(time.Millisecond))
}
