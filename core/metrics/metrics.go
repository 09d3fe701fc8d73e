package metrics

import "time"

// Attempt outcomes.
const (
	OutcomeAccepted = "accepted"
	OutcomeRejected = "rejected"
)

// AttemptEvent describes one candidate drawn by the sampler.
type AttemptEvent struct {
	Outcome string
	Reason  string // rejection reason, empty when accepted
	Time    time.Time
}

// Sink records sampler attempts.
type Sink interface {
	RecordAttempt(ev AttemptEvent) error
}

// SampleEvent is an accepted, deduplicated allocation of a batch.
type SampleEvent struct {
	RunID      string
	Index      int
	Flows      []float64 // row-major
	Cost       float64
	Sources    []string
	Consumers  []string
	SampleTime time.Time
}

// SampleRecorder records accepted samples.
type SampleRecorder interface {
	RecordSample(ev SampleEvent) error
}

// BatchEvent summarises a GenerateMany call.
type BatchEvent struct {
	RunID      string
	Requested  int
	Accepted   int
	Duplicates int
	Attempts   int
	Failed     bool
	Duration   time.Duration
	Time       time.Time
}

// BatchRecorder records batch summaries.
type BatchRecorder interface {
	RecordBatch(ev BatchEvent) error
}

// NopSink implements every recorder with no-op methods.
type NopSink struct{}

func (NopSink) RecordAttempt(AttemptEvent) error { return nil }
func (NopSink) RecordSample(SampleEvent) error   { return nil }
func (NopSink) RecordBatch(BatchEvent) error     { return nil }
