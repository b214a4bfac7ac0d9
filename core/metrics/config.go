package metrics

import "github.com/kilianp07/opsreport/core/factory"

// Config defines settings for metrics sinks.
type Config struct {
	Sinks []factory.ModuleConfig `json:"sinks" yaml:"sinks"`
	// PrometheusPort exposes /metrics while the scheduler runs; empty disables it.
	PrometheusPort string `json:"prometheus_port" yaml:"prometheus_port"`
}
