package metrics

// MultiSink fans records out to multiple sinks.
type MultiSink struct {
	Sinks []MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordPlan forwards the record to all sinks, returning the first error encountered.
func (m *MultiSink) RecordPlan(res PlanResult) error {
	for _, s := range m.Sinks {
		if err := s.RecordPlan(res); err != nil {
			return err
		}
	}
	return nil
}

// RecordRoutes forwards routes to sinks implementing RouteRecorder.
func (m *MultiSink) RecordRoutes(routes []RouteResult) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(RouteRecorder); ok {
			if err := rec.RecordRoutes(routes); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordMatrixBuild forwards matrix builds to sinks implementing MatrixRecorder.
func (m *MultiSink) RecordMatrixBuild(ev MatrixBuild) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(MatrixRecorder); ok {
			if err := rec.RecordMatrixBuild(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordEdgeFailure forwards edge failures to sinks implementing EdgeFailureRecorder.
func (m *MultiSink) RecordEdgeFailure(ev EdgeFailure) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(EdgeFailureRecorder); ok {
			if err := rec.RecordEdgeFailure(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

// Close closes every sink that holds resources.
func (m *MultiSink) Close() {
	for _, s := range m.Sinks {
		if c, ok := s.(interface{ Close() }); ok {
			c.Close()
		}
	}
}
