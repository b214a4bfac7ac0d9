package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/opsreport/app"
	"github.com/kilianp07/opsreport/infra/logger"
	"github.com/kilianp07/opsreport/infra/mail"
)

var (
	masterDate   string
	masterDryRun string

	tankDate   string
	tankOut    string
	tankFormat string

	backfillDays int
)

var masterCmd = &cobra.Command{
	Use:   "master-report",
	Short: "Build the master report for the day before --date and email it",
	RunE:  runMaster,
}

var tankCmd = &cobra.Command{
	Use:   "tank-volume",
	Short: "Export chemical tank volumes for the day before --date",
	RunE:  runTank,
}

var backfillCmd = &cobra.Command{
	Use:   "backfill",
	Short: "Store daily production totals for the previous days",
	RunE:  runBackfill,
}

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run the reports every day at report.run_at",
	RunE:  runSchedule,
}

func init() {
	masterCmd.Flags().StringVar(&masterDate, "date", "", "reference date (YYYY-MM-DD), defaults to today")
	masterCmd.Flags().StringVar(&masterDryRun, "dry-run", "", "write the PDF to this file instead of sending it")

	tankCmd.Flags().StringVar(&tankDate, "date", "", "reference date (YYYY-MM-DD), defaults to today")
	tankCmd.Flags().StringVar(&tankOut, "out", "", "output directory, defaults to tank_export.dir")
	tankCmd.Flags().StringVar(&tankFormat, "format", "csv", "csv or json")

	backfillCmd.Flags().IntVar(&backfillDays, "days", 7, "number of days before today")

	rootCmd.AddCommand(masterCmd, tankCmd, backfillCmd, scheduleCmd)
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func runMaster(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext()
	defer stop()

	var opts []app.Option
	if masterDryRun != "" {
		f, err := os.Create(masterDryRun)
		if err != nil {
			return err
		}
		defer f.Close()
		opts = append(opts, app.WithSender(mail.AttachmentWriter{W: f}))
	}
	svc, err := newService(opts...)
	if err != nil {
		return err
	}
	defer closeService(svc)

	day, err := reportDay(svc, masterDate)
	if err != nil {
		return err
	}
	out, err := svc.Runner.MasterReport(ctx, day)
	if err != nil {
		return err
	}
	log := logger.New("master-report")
	log.Infof("run %s: %d figures, %d failures, sent=%t", out.RunID, out.Figures, len(out.Failures), out.Sent)
	if masterDryRun != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "%s written to %s\n", out.Attachment, masterDryRun)
	}
	return nil
}

func runTank(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext()
	defer stop()

	svc, err := newService()
	if err != nil {
		return err
	}
	defer closeService(svc)

	day, err := reportDay(svc, tankDate)
	if err != nil {
		return err
	}
	dir := tankOut
	if dir == "" {
		dir = cfg.TankExport.Dir
	}
	files, err := svc.Runner.TankVolume(ctx, day, dir, tankFormat)
	if err != nil {
		return err
	}
	for _, f := range files {
		fmt.Fprintln(cmd.OutOrStdout(), f)
	}
	return nil
}

func runBackfill(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext()
	defer stop()

	svc, err := newService()
	if err != nil {
		return err
	}
	defer closeService(svc)

	n, err := svc.Runner.Backfill(ctx, time.Now(), backfillDays)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%d records stored\n", n)
	return nil
}

func runSchedule(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext()
	defer stop()

	svc, err := newService()
	if err != nil {
		return err
	}
	defer closeService(svc)
	return svc.Schedule(ctx)
}
