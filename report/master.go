package report

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kilianp07/opsreport/core/history"
	"github.com/kilianp07/opsreport/core/logger"
	"github.com/kilianp07/opsreport/infra/charts"
	"github.com/kilianp07/opsreport/infra/mail"
)

// Outcome describes a finished master report.
type Outcome struct {
	RunID      string
	Day        time.Time
	Figures    int
	Failures   []string
	Subject    string
	Attachment string
	Recipients []string
	Sent       bool
}

// Subject is the email subject of the master report of day.
func Subject(day time.Time) string {
	return "Location & Unit Operation Report - " + day.Format("January 02")
}

// AttachmentName is the PDF file name of the master report of day.
func AttachmentName(day time.Time) string {
	return "Location & Unit Summary " + day.Format("01-02-2006") + ".pdf"
}

// MasterReport builds every figure for day, renders them into one PDF and
// mails it to the master list. Locations failing a stage are skipped; the
// report fails only when no figure could be built.
func (r *Runner) MasterReport(ctx context.Context, day time.Time) (*Outcome, error) {
	day = r.day(day)
	ru := r.newRun(ReportMaster, day)
	args := map[string]any{"run_id": ru.id, "day": history.DateOf(day)}

	var summary []*charts.Figure
	r.stage("summary production", args, func() error {
		fig, err := r.summaryProduction(ctx, ru, day)
		if err != nil {
			r.fail(ru, "summary", "all", err)
			return err
		}
		summary = append(summary, fig)
		return nil
	})

	var consumption ConsumptionFigures
	r.stage("location consumption", args, func() error {
		var err error
		consumption, _, err = r.locationConsumption(ctx, ru, day)
		if err != nil {
			r.fail(ru, "consumption", "all", err)
		}
		return err
	})

	var production ProductionFigures
	r.stage("location production", args, func() error {
		production = r.locationProduction(ctx, ru, day)
		return nil
	})

	figs := make([]*charts.Figure, 0, len(summary)+len(production.Product)+len(production.Inlet)+len(consumption.Consumable)+len(consumption.Measured))
	figs = append(figs, summary...)
	figs = append(figs, production.Product...)
	figs = append(figs, production.Inlet...)
	figs = append(figs, consumption.Consumable...)
	figs = append(figs, consumption.Measured...)

	out := &Outcome{RunID: ru.id, Day: day, Figures: len(figs), Subject: Subject(day), Attachment: AttachmentName(day)}
	if len(figs) == 0 {
		out.Failures = ru.Failures()
		r.finish(ctx, ru, 0, false, "")
		return out, ErrNoFigures
	}
	r.log.Infof("master report %s: %d figures, %d failures", history.DateOf(day), len(figs), len(ru.Failures()))

	err := r.send(ctx, out, figs)
	out.Failures = ru.Failures()
	r.finish(ctx, ru, len(figs), out.Sent, out.Attachment)
	return out, err
}

// stage runs one step of the master report. A failed step has already
// recorded its failure on the run and the report goes on without it.
func (r *Runner) stage(name string, args map[string]any, fn func() error) {
	if err := logger.Call(r.log, name, args, fn); err != nil {
		r.log.Warnf("master report continues without %s", name)
	}
}

func (r *Runner) send(ctx context.Context, out *Outcome, figs []*charts.Figure) error {
	if r.deps.Sender == nil {
		return errors.New("no mail sender configured")
	}
	recips, err := mail.Recipients(r.deps.Mail, r.deps.Mail.MasterList, r.deps.Debug)
	if err != nil {
		return err
	}
	out.Recipients = recips
	msg := mail.NewMessage(r.deps.Mail.Sender, out.Subject, r.deps.Mail.Signature, recips)
	if err := msg.AttachPlots(out.Attachment, figs); err != nil {
		return err
	}
	if err := r.deps.Sender.Send(ctx, msg); err != nil {
		return fmt.Errorf("send master report: %w", err)
	}
	out.Sent = true
	return nil
}
