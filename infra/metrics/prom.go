package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/energyalloc/core/metrics"
)

// PromSink records sampler activity in Prometheus metrics.
type PromSink struct {
	attempts   *prometheus.CounterVec
	cost       prometheus.Histogram
	accepted   prometheus.Counter
	duplicates prometheus.Counter
	batches    *prometheus.CounterVec
	batchSize  prometheus.Gauge
	duration   prometheus.Histogram
}

// NewPromSink registers sampler metrics on the default Prometheus registerer.
// The HTTP endpoint is started separately with StartPromServer.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	attempts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sampler_attempts_total",
		Help: "Candidates drawn by the sampler",
	}, []string{"outcome", "reason"})
	cost := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "sampler_allocation_cost",
		Help:    "Cost of accepted allocations",
		Buckets: prometheus.ExponentialBuckets(0.01, 2, 16),
	})
	accepted := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sampler_samples_total",
		Help: "Accepted, deduplicated allocations",
	})
	duplicates := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sampler_duplicates_total",
		Help: "Accepted allocations dropped as duplicates",
	})
	batches := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sampler_batches_total",
		Help: "Completed batch runs",
	}, []string{"failed"})
	batchSize := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "sampler_last_batch_size",
		Help: "Allocations kept by the last batch",
	})
	duration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "sampler_batch_duration_seconds",
		Help:    "Wall-clock time of a batch run",
		Buckets: prometheus.DefBuckets,
	})

	var err error
	if attempts, err = register(reg, attempts); err != nil {
		return nil, err
	}
	if cost, err = register(reg, cost); err != nil {
		return nil, err
	}
	if accepted, err = register(reg, accepted); err != nil {
		return nil, err
	}
	if duplicates, err = register(reg, duplicates); err != nil {
		return nil, err
	}
	if batches, err = register(reg, batches); err != nil {
		return nil, err
	}
	if batchSize, err = register(reg, batchSize); err != nil {
		return nil, err
	}
	if duration, err = register(reg, duration); err != nil {
		return nil, err
	}

	return &PromSink{
		attempts:   attempts,
		cost:       cost,
		accepted:   accepted,
		duplicates: duplicates,
		batches:    batches,
		batchSize:  batchSize,
		duration:   duration,
	}, nil
}

// register reuses an already registered collector of the same type so that
// several sinks can share the default registerer.
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

// RecordAttempt increments the attempt counter.
func (s *PromSink) RecordAttempt(ev coremetrics.AttemptEvent) error {
	s.attempts.WithLabelValues(ev.Outcome, ev.Reason).Inc()
	return nil
}

// RecordSample observes the cost of an accepted allocation.
func (s *PromSink) RecordSample(ev coremetrics.SampleEvent) error {
	s.accepted.Inc()
	s.cost.Observe(ev.Cost)
	return nil
}

// RecordBatch updates the batch metrics.
func (s *PromSink) RecordBatch(ev coremetrics.BatchEvent) error {
	failed := "false"
	if ev.Failed {
		failed = "true"
	}
	s.batches.WithLabelValues(failed).Inc()
	s.duplicates.Add(float64(ev.Duplicates))
	s.batchSize.Set(float64(ev.Accepted))
	s.duration.Observe(ev.Duration.Seconds())
	return nil
}
