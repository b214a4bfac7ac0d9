package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/kilianp07/opsreport/core/factory"
	coremetrics "github.com/kilianp07/opsreport/core/metrics"
)

// init registers built-in metrics sinks.
func init() {
	_ = coremetrics.RegisterSink("nop", func(map[string]any) (coremetrics.Sink, error) {
		return coremetrics.NopSink{}, nil
	})

	_ = coremetrics.RegisterSink("prometheus", func(conf map[string]any) (coremetrics.Sink, error) {
		var c struct {
			PushURL string `json:"push_url"`
			Job     string `json:"job"`
		}
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		if c.Job == "" {
			c.Job = "opsreport"
		}
		s, err := NewPromSinkWithRegistry(coremetrics.Config{}, prometheus.DefaultRegisterer)
		if err != nil {
			return nil, err
		}
		return s.WithPushGateway(c.PushURL, c.Job, prometheus.DefaultGatherer), nil
	})

	_ = coremetrics.RegisterSink("influx", func(conf map[string]any) (coremetrics.Sink, error) {
		var c struct {
			URL    string `json:"url"`
			Token  string `json:"token"`
			Org    string `json:"org"`
			Bucket string `json:"bucket"`
		}
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return NewInfluxSinkWithFallback(c.URL, c.Token, c.Org, c.Bucket), nil
	})
}
