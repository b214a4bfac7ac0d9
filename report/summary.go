package report

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/kilianp07/opsreport/core/calc"
	"github.com/kilianp07/opsreport/core/history"
	"github.com/kilianp07/opsreport/core/logger"
	"github.com/kilianp07/opsreport/core/model"
	"github.com/kilianp07/opsreport/core/source"
	"github.com/kilianp07/opsreport/infra/charts"
)

// ProductionTotals returns the produced and pumped volumes of l over day.
// Trucked locations pump nothing to sales; type B meters report hourly so
// their trailing sample is dropped.
func (r *Runner) ProductionTotals(ctx context.Context, l model.Location, day time.Time) (produced, pumped float64, err error) {
	day = r.day(day)
	cols := []source.Column{
		{Name: calc.InletFlowrate, Tags: l.FlowTags()},
		{Name: calc.ProductTankVolume, Tags: l.ProductTankVolume},
	}
	if !l.Trucked {
		cols = append(cols, source.Column{Name: calc.ProductFlowrate, Tags: l.ProductFlowrate})
	}
	f, err := r.loader.Load(ctx, source.Request{Start: day, End: day.AddDate(0, 0, 1), Columns: cols})
	if err != nil {
		return 0, 0, err
	}
	err = setAll(f,
		column{calc.CumulativePumped, calc.CumulativeFlows(f.MustCol(calc.ProductFlowrate), l.ConnectionType.ProductFlowFactor())},
		column{calc.CumulativeTank, calc.CumulativeTankVolumes(f.MustCol(calc.ProductTankVolume), 1)},
	)
	if err != nil {
		return 0, 0, err
	}
	_, cum := calc.ProductCalculations(f)
	if err := f.Set(calc.CumulativeProduct, cum); err != nil {
		return 0, 0, err
	}
	if l.ConnectionType == model.Connection1 {
		f = f.DropLast()
	}
	produced, pumped = calc.ProductTotals(f)
	return max(produced, 0), pumped, nil
}

// SummaryProduction builds the product summary figure for day and stores the
// daily totals in the history.
func (r *Runner) SummaryProduction(ctx context.Context, day time.Time) (*charts.Figure, error) {
	day = r.day(day)
	return r.summaryProduction(ctx, r.newRun(ReportSummary, day), day)
}

func (r *Runner) summaryProduction(ctx context.Context, ru *run, day time.Time) (*charts.Figure, error) {
	var (
		upper, lower []charts.Bar
		recs         []history.Record
	)
	for _, l := range r.deps.Locations {
		r.guard(ru, "production_totals", l, func() error {
			var produced, pumped float64
			err := logger.Call(r.log, "production totals", map[string]any{"location": l.Key, "day": history.DateOf(day)}, func() error {
				var err error
				produced, pumped, err = r.ProductionTotals(ctx, l, day)
				return err
			})
			if err != nil {
				return err
			}
			bar := charts.Bar{Name: l.DisplayName(), Produced: produced, Pumped: pumped}
			if l.Designation == model.Lower {
				lower = append(lower, bar)
			} else {
				upper = append(upper, bar)
			}
			rec := r.record(l, day, produced, pumped)
			recs = append(recs, rec)
			if r.deps.History != nil {
				if err := r.deps.History.Add(ctx, rec); err != nil {
					r.log.Warnf("store production of %s: %v", l.Key, err)
				}
			}
			r.recordLocation(ru, l, map[string]float64{"produced_gal": produced, "pumped_gal": pumped})
			return nil
		})
	}
	if len(upper)+len(lower) == 0 {
		return nil, fmt.Errorf("no location production for %s", history.DateOf(day))
	}
	return charts.ProductSummaryFigure(charts.Summary{
		Upper:   upper,
		Lower:   lower,
		Weekly:  r.weekly(ctx, day, recs),
		Trucked: r.deps.Locations.Trucked(),
	})
}

// weekly aggregates the stored production of the days ending with day. The
// totals computed by this run stand in when no history is configured.
func (r *Runner) weekly(ctx context.Context, day time.Time, current []history.Record) history.Weekly {
	days := history.Days(day, r.deps.Report.WeeklyDays)
	recs := current
	if r.deps.History != nil {
		stored, err := r.deps.History.Query(ctx, history.Query{From: history.DateOf(days[0]), To: history.DateOf(day)})
		if err != nil {
			r.log.Warnf("query production history: %v", err)
		} else {
			recs = stored
		}
	}
	w := history.Aggregate(recs, days, func(c string) bool { return model.ConnectionType(c) == model.Connection1 })
	if len(w.Missing) > 0 {
		r.log.Warnf("no production history for %s", strings.Join(w.Missing, ", "))
	}
	return w
}

func (r *Runner) record(l model.Location, day time.Time, produced, pumped float64) history.Record {
	return history.Record{
		Location:    l.Key,
		Date:        history.DateOf(day),
		Connection:  string(l.ConnectionType),
		Designation: string(l.Designation),
		ProducedGal: produced,
		PumpedGal:   pumped,
		RecordedAt:  r.now(),
	}
}
