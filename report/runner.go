// Package report computes the daily production and consumption figures of
// every location and assembles them into the emailed digest.
package report

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/opsreport/config"
	"github.com/kilianp07/opsreport/core/history"
	"github.com/kilianp07/opsreport/core/inference"
	"github.com/kilianp07/opsreport/core/logger"
	"github.com/kilianp07/opsreport/core/metrics"
	"github.com/kilianp07/opsreport/core/model"
	"github.com/kilianp07/opsreport/core/monitoring"
	"github.com/kilianp07/opsreport/core/notify"
	"github.com/kilianp07/opsreport/core/source"
	"github.com/kilianp07/opsreport/core/timeseries"
	"github.com/kilianp07/opsreport/infra/mail"
)

// Report names used in logs, metrics and notifications.
const (
	ReportMaster      = "master"
	ReportSummary     = "summary_production"
	ReportProduction  = "location_production"
	ReportConsumption = "location_consumption"
	ReportTank        = "tank_volume"
	ReportBackfill    = "backfill"
)

// ErrNoFigures is returned when every figure of the master report failed.
var ErrNoFigures = errors.New("all figures failed")

// Deps groups what a Runner needs. Only Source and Locations are mandatory.
type Deps struct {
	Source    source.Source
	Locations model.Locations
	Report    config.ReportConfig
	Inference inference.Config
	Mail      config.MailConfig
	Debug     bool

	Sender   mail.Sender
	History  history.Store
	Metrics  metrics.Sink
	Notifier notify.Notifier
	Log      logger.Logger
}

// Runner produces the reports.
type Runner struct {
	deps   Deps
	loader *source.Loader
	loc    *time.Location
	log    logger.Logger
	now    func() time.Time
}

// New validates deps and returns a Runner.
func New(deps Deps) (*Runner, error) {
	if deps.Source == nil {
		return nil, errors.New("report runner requires a source")
	}
	if len(deps.Locations) == 0 {
		return nil, errors.New("report runner requires locations")
	}
	deps.Report.SetDefaults()
	deps.Inference.SetDefaults()
	if deps.Metrics == nil {
		deps.Metrics = metrics.NopSink{}
	}
	if deps.Notifier == nil {
		deps.Notifier = notify.Nop{}
	}
	if deps.Log == nil {
		deps.Log = logger.NopLogger{}
	}
	return &Runner{
		deps:   deps,
		loader: source.NewLoader(deps.Source, deps.Log),
		loc:    deps.Report.Location(),
		log:    deps.Log,
		now:    time.Now,
	}, nil
}

// Yesterday returns the calendar day before t in the report time zone.
func (r *Runner) Yesterday(t time.Time) time.Time {
	t = t.In(r.loc)
	return time.Date(t.Year(), t.Month(), t.Day()-1, 0, 0, 0, 0, r.loc)
}

// day normalises d to midnight in the report time zone.
func (r *Runner) day(d time.Time) time.Time {
	d = d.In(r.loc)
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, r.loc)
}

func (r *Runner) at(day time.Time, hour int) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), hour, 0, 0, 0, r.loc)
}

// run tracks the failures of one report invocation.
type run struct {
	id     string
	report string
	day    time.Time
	start  time.Time

	mu       sync.Mutex
	failures []string
}

func (r *Runner) newRun(report string, day time.Time) *run {
	return &run{id: uuid.NewString(), report: report, day: day, start: r.now()}
}

func (ru *run) Failures() []string {
	ru.mu.Lock()
	defer ru.mu.Unlock()
	return append([]string(nil), ru.failures...)
}

// fail logs the error of a location, forwards it to the error tracker and
// the metrics sink, and lets the report carry on.
func (r *Runner) fail(ru *run, stage, location string, err error) {
	r.log.Errorf("%s %s %s: %v", ru.report, stage, location, err)
	monitoring.CaptureLocation(err, ru.report, stage, location)
	ru.mu.Lock()
	ru.failures = append(ru.failures, fmt.Sprintf("%s/%s", stage, location))
	ru.mu.Unlock()
	if fr, ok := r.deps.Metrics.(metrics.FailureRecorder); ok {
		ev := metrics.FailureEvent{RunID: ru.id, Report: ru.report, Stage: stage, Location: location, Err: err.Error(), Time: r.now()}
		if err := fr.RecordFailure(ev); err != nil {
			r.log.Warnf("record failure: %v", err)
		}
	}
}

func (r *Runner) recordLocation(ru *run, l model.Location, values map[string]float64) {
	lr, ok := r.deps.Metrics.(metrics.LocationRecorder)
	if !ok || len(values) == 0 {
		return
	}
	sum := metrics.LocationSummary{
		RunID:       ru.id,
		Location:    l.Key,
		Connection:  string(l.ConnectionType),
		Designation: string(l.Designation),
		Day:         ru.day,
		Values:      values,
	}
	if err := lr.RecordLocation(sum); err != nil {
		r.log.Warnf("record location %s: %v", l.Key, err)
	}
}

func (r *Runner) finish(ctx context.Context, ru *run, figures int, sent bool, attachment string) {
	failures := ru.Failures()
	ev := metrics.RunEvent{
		RunID:    ru.id,
		Report:   ru.report,
		Day:      ru.day,
		Figures:  figures,
		Failures: len(failures),
		Sent:     sent,
		Duration: r.now().Sub(ru.start),
		Time:     r.now(),
	}
	if err := r.deps.Metrics.RecordRun(ev); err != nil {
		r.log.Warnf("record run: %v", err)
	}
	sum := notify.RunSummary{
		MessageID:  uuid.NewString(),
		RunID:      ru.id,
		Report:     ru.report,
		Day:        history.DateOf(ru.day),
		Figures:    figures,
		Failures:   failures,
		Sent:       sent,
		Attachment: attachment,
		FinishedAt: r.now(),
	}
	if err := r.deps.Notifier.Notify(ctx, sum); err != nil {
		r.log.Warnf("notify %s: %v", ru.report, err)
	}
}

// guard runs fn for one location and turns a panic into a failure. It
// reports whether fn succeeded.
func (r *Runner) guard(ru *run, stage string, l model.Location, fn func() error) (ok bool) {
	defer func() {
		if v := recover(); v != nil {
			monitoring.CapturePanic(v)
			r.fail(ru, stage, l.Key, fmt.Errorf("panic: %v", v))
			ok = false
		}
	}()
	if err := fn(); err != nil {
		r.fail(ru, stage, l.Key, err)
		return false
	}
	return true
}

// column is a derived frame column.
type column struct {
	name string
	vals []float64
}

func setAll(f *timeseries.Frame, cols ...column) error {
	for _, c := range cols {
		if err := f.Set(c.name, c.vals); err != nil {
			return err
		}
	}
	return nil
}
