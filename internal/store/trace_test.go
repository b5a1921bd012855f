package store

import (
	"io"
	"testing"
	"time"
)

func TestTraceRoundTrip(t *testing.T) {
	baseDir := t.TempDir()
	runID := "trace-run"

	tw, err := NewTraceWriter(baseDir, runID, false)
	if err != nil {
		t.Fatalf("NewTraceWriter failed: %v", err)
	}

	entries := []TraceEntry{
		{Iteration: 0, Stage: 0, Beta: 8, Objective: -1.2, Timestamp: time.Now()},
		{Iteration: 1, Stage: 0, Beta: 8, Objective: -0.9, Timestamp: time.Now()},
		{Iteration: 2, Stage: 1, Beta: 16, Objective: -0.4, Timestamp: time.Now()},
	}
	for _, e := range entries {
		if err := tw.Write(e); err != nil {
			t.Fatalf("Write failed: %v", err)
		}
	}
	if err := tw.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	tr, err := NewTraceReader(baseDir, runID)
	if err != nil {
		t.Fatalf("NewTraceReader failed: %v", err)
	}
	defer tr.Close()

	got, err := tr.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if len(got) != len(entries) {
		t.Fatalf("expected %d entries, got %d", len(entries), len(got))
	}
	for i, e := range entries {
		if got[i].Iteration != e.Iteration || got[i].Stage != e.Stage ||
			got[i].Beta != e.Beta || got[i].Objective != e.Objective {
			t.Errorf("entry %d mismatch: got %+v, want %+v", i, got[i], e)
		}
	}
}

func TestTraceAppendMode(t *testing.T) {
	baseDir := t.TempDir()
	runID := "append-run"

	for session := 0; session < 2; session++ {
		tw, err := NewTraceWriter(baseDir, runID, true)
		if err != nil {
			t.Fatalf("NewTraceWriter failed: %v", err)
		}
		if err := tw.Write(TraceEntry{Iteration: session, Timestamp: time.Now()}); err != nil {
			t.Fatalf("Write failed: %v", err)
		}
		if err := tw.Close(); err != nil {
			t.Fatalf("Close failed: %v", err)
		}
	}

	tr, err := NewTraceReader(baseDir, runID)
	if err != nil {
		t.Fatalf("NewTraceReader failed: %v", err)
	}
	defer tr.Close()

	got, err := tr.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 entries across sessions, got %d", len(got))
	}
}

func TestTraceReader_NotFound(t *testing.T) {
	if _, err := NewTraceReader(t.TempDir(), "missing"); err == nil {
		t.Fatal("expected error for missing trace")
	}
}

func TestTraceReaderEOF(t *testing.T) {
	baseDir := t.TempDir()
	runID := "empty-run"

	tw, err := NewTraceWriter(baseDir, runID, false)
	if err != nil {
		t.Fatalf("NewTraceWriter failed: %v", err)
	}
	if err := tw.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	tr, err := NewTraceReader(baseDir, runID)
	if err != nil {
		t.Fatalf("NewTraceReader failed: %v", err)
	}
	defer tr.Close()

	if _, err := tr.Read(); err != io.EOF {
		t.Errorf("expected io.EOF on empty trace, got %v", err)
	}
}
