// Package metrics defines the sinks recording sampler activity. Sinks such as
// the Prometheus and InfluxDB implementations in infra/metrics receive attempt
// outcomes, accepted samples and batch summaries, and can be combined with
// NewMultiSink. NewSink builds the configured set through the factory registry
// and returns a MultiSink automatically when several sinks are configured.
package metrics
