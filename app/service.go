// Package app wires the configuration into a report runner and its
// supporting services.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kilianp07/opsreport/app/plugins"
	"github.com/kilianp07/opsreport/config"
	corehistory "github.com/kilianp07/opsreport/core/history"
	coremetrics "github.com/kilianp07/opsreport/core/metrics"
	coremon "github.com/kilianp07/opsreport/core/monitoring"
	"github.com/kilianp07/opsreport/core/notify"
	"github.com/kilianp07/opsreport/core/scheduler"
	"github.com/kilianp07/opsreport/core/source"
	"github.com/kilianp07/opsreport/infra/history"
	"github.com/kilianp07/opsreport/infra/logger"
	"github.com/kilianp07/opsreport/infra/mail"
	"github.com/kilianp07/opsreport/infra/metrics"
	"github.com/kilianp07/opsreport/infra/monitoring"
	"github.com/kilianp07/opsreport/infra/mqtt"
	"github.com/kilianp07/opsreport/report"
)

// Option customises the service.
type Option func(*options)

type options struct {
	sender  mail.Sender
	source  source.Source
	history corehistory.Store
}

// WithSender replaces the SMTP sender, e.g. to write the PDF on dry runs.
func WithSender(s mail.Sender) Option { return func(o *options) { o.sender = s } }

// WithSource replaces the configured source.
func WithSource(s source.Source) Option { return func(o *options) { o.source = s } }

// WithHistory replaces the configured history store.
func WithHistory(h corehistory.Store) Option { return func(o *options) { o.history = h } }

// Service owns the runner and the resources it depends on.
type Service struct {
	Runner *report.Runner

	cfg     *config.Config
	log     logger.Logger
	closers []func() error
}

// New builds a Service from cfg.
func New(cfg *config.Config, opts ...Option) (*Service, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	s := &Service{cfg: cfg, log: logger.New("service")}
	s.log.Debugf("sources %v, sinks %v", plugins.Sources(), plugins.Sinks())

	mon, err := monitoring.NewSentryMonitor(cfg.Sentry)
	if err != nil {
		return nil, err
	}
	coremon.Init(mon)
	s.closers = append(s.closers, func() error { coremon.Flush(2 * time.Second); return nil })

	src := o.source
	if src == nil {
		src, err = source.New(cfg.Source)
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("source %s: %w", cfg.Source.Type, err)
		}
		if c, ok := src.(source.Closer); ok {
			s.closers = append(s.closers, func() error { c.Close(); return nil })
		}
	}

	sink, err := coremetrics.NewSink(cfg.Metrics.Sinks)
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("metrics sink: %w", err)
	}

	store := o.history
	if store == nil {
		store, err = history.Open(cfg.History)
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("history: %w", err)
		}
		s.closers = append(s.closers, store.Close)
	}

	var notifier notify.Notifier = notify.Nop{}
	if cfg.MQTT.Enabled {
		n, err := mqtt.NewNotifier(cfg.MQTT)
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("mqtt notifier: %w", err)
		}
		notifier = n
		s.closers = append(s.closers, func() error { n.Close(); return nil })
	}

	sender := o.sender
	if sender == nil {
		sender = mail.NewSMTPSender(cfg.Mail)
	}

	s.Runner, err = report.New(report.Deps{
		Source:    src,
		Locations: cfg.Locations,
		Report:    cfg.Report,
		Inference: cfg.Inference,
		Mail:      cfg.Mail,
		Debug:     cfg.Debug,
		Sender:    sender,
		History:   store,
		Metrics:   sink,
		Notifier:  notifier,
		Log:       logger.New("report"),
	})
	if err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// Schedule runs the master report, and the tank export when enabled, every
// day at report.run_at until ctx is canceled.
func (s *Service) Schedule(ctx context.Context) error {
	if port := s.cfg.Metrics.PrometheusPort; port != "" {
		go func() {
			if err := metrics.StartPromServer(ctx, port); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}
	jobs := map[string]scheduler.Job{
		report.ReportMaster: func(ctx context.Context, at time.Time) error {
			_, err := s.Runner.MasterReport(ctx, s.Runner.Yesterday(at))
			return err
		},
	}
	if s.cfg.Report.ScheduleTankExport {
		jobs[report.ReportTank] = func(ctx context.Context, at time.Time) error {
			_, err := s.Runner.TankVolume(ctx, s.Runner.Yesterday(at), s.cfg.TankExport.Dir, "csv")
			return err
		}
	}
	d := &scheduler.Daily{RunAt: s.cfg.Report.RunAt, Location: s.cfg.Report.Location(), Jobs: jobs, Log: logger.New("scheduler")}
	err := d.Run(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// Close releases the resources in reverse order of acquisition.
func (s *Service) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	s.closers = nil
	return errors.Join(errs...)
}
