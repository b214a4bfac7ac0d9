package metrics

// MultiSink fans events out to several sinks.
type MultiSink struct {
	Sinks []Sink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...Sink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordRun forwards the run to all sinks, returning the first error encountered.
func (m *MultiSink) RecordRun(ev RunEvent) error {
	for _, s := range m.Sinks {
		if err := s.RecordRun(ev); err != nil {
			return err
		}
	}
	return nil
}

// RecordLocation forwards location figures to sinks supporting them.
func (m *MultiSink) RecordLocation(sum LocationSummary) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(LocationRecorder); ok {
			if err := rec.RecordLocation(sum); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordFailure forwards failures to sinks supporting them.
func (m *MultiSink) RecordFailure(ev FailureEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(FailureRecorder); ok {
			if err := rec.RecordFailure(ev); err != nil {
				return err
			}
		}
	}
	return nil
}
