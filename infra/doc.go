// Package infra holds the adapters behind the core interfaces: sensor
// sources, metrics sinks, history stores, chart rendering, PDF assembly,
// mail delivery and MQTT notifications.
package infra
