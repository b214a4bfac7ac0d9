package report

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kilianp07/opsreport/core/history"
)

// Backfill stores the production totals of the days calendar days before
// end. It returns the number of records written.
func (r *Runner) Backfill(ctx context.Context, end time.Time, days int) (int, error) {
	if r.deps.History == nil {
		return 0, errors.New("backfill requires a history store")
	}
	if days <= 0 {
		return 0, fmt.Errorf("backfill days must be positive, got %d", days)
	}
	last := r.day(end)
	ru := r.newRun(ReportBackfill, last)
	written := 0
	for i := days; i >= 1; i-- {
		day := last.AddDate(0, 0, -i)
		for _, l := range r.deps.Locations {
			if err := ctx.Err(); err != nil {
				return written, err
			}
			r.guard(ru, "backfill", l, func() error {
				produced, pumped, err := r.ProductionTotals(ctx, l, day)
				if err != nil {
					return fmt.Errorf("%s: %w", history.DateOf(day), err)
				}
				if err := r.deps.History.Add(ctx, r.record(l, day, produced, pumped)); err != nil {
					return err
				}
				written++
				return nil
			})
		}
		r.log.Infof("backfilled %s", history.DateOf(day))
	}
	r.finish(ctx, ru, written, false, "")
	return written, nil
}
