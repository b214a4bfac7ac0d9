package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/opsreport/app"
	"github.com/kilianp07/opsreport/config"
	"github.com/kilianp07/opsreport/infra/logger"
)

const dateLayout = "2006-01-02"

var (
	cfgPath string
	logFile string

	cfg       *config.Config
	logCloser io.Closer
)

var rootCmd = &cobra.Command{
	Use:               "opsreport",
	Short:             "Daily operations reports for field locations",
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(*cobra.Command, []string) {
		if logCloser != nil {
			logCloser.Close()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "config.yaml", "configuration file")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "also write JSON logs to this rotating file")
}

// Execute runs the CLI.
func Execute() error { return rootCmd.Execute() }

func setup(cmd *cobra.Command, args []string) error {
	if err := config.LoadDotEnv(); err != nil {
		return err
	}
	var err error
	cfg, err = config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	opts := cfg.Logging
	if logFile != "" {
		opts.File = logFile
	}
	logCloser, err = logger.Setup(opts)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	return nil
}

func newService(opts ...app.Option) (*app.Service, error) {
	return app.New(cfg, opts...)
}

func closeService(svc *app.Service) {
	if err := svc.Close(); err != nil {
		logger.New("main").Errorf("service close: %v", err)
	}
}

// reportDay parses --date in the report time zone, defaulting to now, and
// returns the day before it.
func reportDay(svc *app.Service, date string) (time.Time, error) {
	t := time.Now()
	if date != "" {
		var err error
		t, err = time.ParseInLocation(dateLayout, date, cfg.Report.Location())
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid --date %q: %w", date, err)
		}
	}
	return svc.Runner.Yesterday(t), nil
}
