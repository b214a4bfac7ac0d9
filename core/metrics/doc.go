// Package metrics defines the sinks report runs publish their outcome to.
// Sinks like the Prometheus and InfluxDB ones in infra/metrics record run
// and per-location figures and can be combined with NewMultiSink. The
// factory helpers return a MultiSink automatically when multiple sinks are
// configured.
package metrics
