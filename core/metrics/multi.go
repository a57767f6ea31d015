package metrics

// MultiSink fans out solve events to multiple sinks.
type MultiSink struct {
	Sinks []MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordSolve forwards the event to all sinks, returning the first error encountered.
func (m *MultiSink) RecordSolve(ev SolveEvent) error {
	for _, s := range m.Sinks {
		if err := s.RecordSolve(ev); err != nil {
			return err
		}
	}
	return nil
}

// RecordAmbiguity forwards ambiguity summaries when supported by the sink.
func (m *MultiSink) RecordAmbiguity(ev AmbiguityEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(AmbiguityRecorder); ok {
			if err := rec.RecordAmbiguity(ev); err != nil {
				return err
			}
		}
	}
	return nil
}
