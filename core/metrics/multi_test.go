package metrics

import "testing"

type recordSink struct {
	count int
}

func (r *recordSink) RecordRun(RunEvent) error {
	r.count++
	return nil
}

func (r *recordSink) RecordLocation(LocationSummary) error {
	r.count++
	return nil
}

type runOnly struct{ runs int }

func (r *runOnly) RecordRun(RunEvent) error {
	r.runs++
	return nil
}

// TestMultiSink ensures events are forwarded to all sinks that support them.
func TestMultiSink(t *testing.T) {
	s1 := &recordSink{}
	s2 := &recordSink{}
	s3 := &runOnly{}
	m := NewMultiSink(s1, s2, s3)
	if err := m.RecordRun(RunEvent{Report: "master"}); err != nil {
		t.Fatalf("record run: %v", err)
	}
	if err := m.RecordLocation(LocationSummary{Location: "a"}); err != nil {
		t.Fatalf("record location: %v", err)
	}
	if err := m.RecordFailure(FailureEvent{}); err != nil {
		t.Fatalf("record failure: %v", err)
	}
	if s1.count != 2 || s2.count != 2 {
		t.Fatalf("events not forwarded")
	}
	if s3.runs != 1 {
		t.Fatalf("run not forwarded to run-only sink")
	}
}
