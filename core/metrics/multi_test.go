package metrics

import "testing"

type recordSink struct {
	count int
}

func (r *recordSink) RecordSolve(SolveEvent) error {
	r.count++
	return nil
}

func (r *recordSink) RecordAmbiguity(AmbiguityEvent) error {
	r.count++
	return nil
}

type solveOnly struct{ count int }

func (s *solveOnly) RecordSolve(SolveEvent) error {
	s.count++
	return nil
}

// TestMultiSink ensures events are forwarded to all sinks.
func TestMultiSink(t *testing.T) {
	s1 := &recordSink{}
	s2 := &recordSink{}
	s3 := &solveOnly{}
	m := NewMultiSink(s1, s2, s3)
	if err := m.RecordSolve(SolveEvent{}); err != nil {
		t.Fatalf("record solve: %v", err)
	}
	if err := m.RecordAmbiguity(AmbiguityEvent{}); err != nil {
		t.Fatalf("record ambiguity: %v", err)
	}
	if s1.count != 2 || s2.count != 2 {
		t.Fatalf("events not forwarded")
	}
	if s3.count != 1 {
		t.Fatalf("expected solve-only sink to receive 1 event, got %d", s3.count)
	}
}
