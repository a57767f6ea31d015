// Package metrics defines the sinks that record solve outcomes. Sinks like
// PromSink and InfluxSink (package infra/metrics) are created from
// configuration through a registry; NewMetricsSink returns a MultiSink
// automatically when multiple sinks are configured.
package metrics
