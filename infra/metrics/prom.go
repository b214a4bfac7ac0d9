package metrics

import (
	"fmt"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"

	coremetrics "github.com/kilianp07/opsreport/core/metrics"
)

// PromSink records report runs in Prometheus metrics. When a push gateway is
// configured the registry is pushed after every run.
type PromSink struct {
	runs     *prometheus.CounterVec
	duration *prometheus.HistogramVec
	figures  *prometheus.GaugeVec
	lastRun  *prometheus.GaugeVec
	location *prometheus.GaugeVec
	failures *prometheus.CounterVec

	pusher *push.Pusher
}

// NewPromSink registers report metrics on the default Prometheus registerer.
// The Prometheus server should be started separately using cfg.PrometheusPort.
func NewPromSink(cfg coremetrics.Config) (*PromSink, error) {
	return NewPromSinkWithRegistry(cfg, prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(_ coremetrics.Config, reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PromSink{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "opsreport_runs_total",
			Help: "Total number of report runs",
		}, []string{"report", "sent"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "opsreport_run_duration_seconds",
			Help:    "Time taken to build and send a report",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600},
		}, []string{"report"}),
		figures: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "opsreport_figures",
			Help: "Number of figures rendered by the last run",
		}, []string{"report"}),
		lastRun: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "opsreport_last_run_timestamp_seconds",
			Help: "Unix time of the last finished run",
		}, []string{"report"}),
		location: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "opsreport_location_value",
			Help: "Daily figure computed for a location",
		}, []string{"location", "designation", "metric"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "opsreport_failures_total",
			Help: "Locations skipped by a report stage",
		}, []string{"report", "stage", "location"}),
	}
	var err error
	if s.runs, err = register(reg, s.runs); err != nil {
		return nil, err
	}
	if s.duration, err = register(reg, s.duration); err != nil {
		return nil, err
	}
	if s.figures, err = register(reg, s.figures); err != nil {
		return nil, err
	}
	if s.lastRun, err = register(reg, s.lastRun); err != nil {
		return nil, err
	}
	if s.location, err = register(reg, s.location); err != nil {
		return nil, err
	}
	if s.failures, err = register(reg, s.failures); err != nil {
		return nil, err
	}
	return s, nil
}

// register reuses an already registered collector of the same type.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// WithPushGateway pushes the given gatherer to url under job after each run.
func (s *PromSink) WithPushGateway(url, job string, g prometheus.Gatherer) *PromSink {
	if url != "" {
		s.pusher = push.New(url, job).Gatherer(g)
	}
	return s
}

// RecordRun updates the run metrics.
func (s *PromSink) RecordRun(ev coremetrics.RunEvent) error {
	s.runs.WithLabelValues(ev.Report, strconv.FormatBool(ev.Sent)).Inc()
	s.duration.WithLabelValues(ev.Report).Observe(ev.Duration.Seconds())
	s.figures.WithLabelValues(ev.Report).Set(float64(ev.Figures))
	s.lastRun.WithLabelValues(ev.Report).Set(float64(ev.Time.Unix()))
	if s.pusher != nil {
		if err := s.pusher.Push(); err != nil {
			return fmt.Errorf("push metrics: %w", err)
		}
	}
	return nil
}

// RecordLocation sets one gauge per location figure.
func (s *PromSink) RecordLocation(sum coremetrics.LocationSummary) error {
	for k, v := range sum.Values {
		s.location.WithLabelValues(sum.Location, sum.Designation, k).Set(v)
	}
	return nil
}

// RecordFailure counts skipped locations.
func (s *PromSink) RecordFailure(ev coremetrics.FailureEvent) error {
	s.failures.WithLabelValues(ev.Report, ev.Stage, ev.Location).Inc()
	return nil
}
