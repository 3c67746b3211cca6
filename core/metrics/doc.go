// Package metrics defines the events emitted by solver runs and the sink
// interfaces that record them. Sinks like PromSink and InfluxSink live in
// infra/metrics and register themselves with the factory here; several
// configured sinks are combined into a MultiSink automatically.
package metrics
