package metrics

// MultiSink fans events out to multiple sinks.
type MultiSink struct {
	Sinks []Sink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...Sink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordAttempt forwards the event to all sinks, returning the first error encountered.
func (m *MultiSink) RecordAttempt(ev AttemptEvent) error {
	for _, s := range m.Sinks {
		if err := s.RecordAttempt(ev); err != nil {
			return err
		}
	}
	return nil
}

// RecordSample forwards accepted samples to sinks implementing SampleRecorder.
func (m *MultiSink) RecordSample(ev SampleEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(SampleRecorder); ok {
			if err := rec.RecordSample(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordBatch forwards batch summaries to sinks implementing BatchRecorder.
func (m *MultiSink) RecordBatch(ev BatchEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(BatchRecorder); ok {
			if err := rec.RecordBatch(ev); err != nil {
				return err
			}
		}
	}
	return nil
}
