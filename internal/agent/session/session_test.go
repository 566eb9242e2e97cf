package session

import (
	"strings"
	"testing"
)

func TestNewAssignsID(t *testing.T) {
	s := New("")
	if s.ID == "" {
		t.Error("expected generated ID")
	}
	if !strings.HasPrefix(s.ID, "session-") {
		t.Errorf("ID = %q", s.ID)
	}

	s = New("fixed")
	if s.ID != "fixed" {
		t.Errorf("ID = %q, want fixed", s.ID)
	}
}

func TestStatsCounting(t *testing.T) {
	s := New("s1")

	s.RecordInteraction("binary search")
	s.RecordInteraction("binary search")
	s.RecordInteraction("sorting")
	s.RecordToolUse("explain")
	s.RecordToolUse("explain")
	s.RecordToolUse("generate-quiz")

	stats := s.Snapshot()
	if stats.Interactions != 3 {
		t.Errorf("Interactions = %d, want 3", stats.Interactions)
	}
	if stats.ToolUsage["explain"] != 2 {
		t.Errorf("explain usage = %d, want 2", stats.ToolUsage["explain"])
	}
	if len(stats.Topics) != 2 {
		t.Errorf("topics = %d, want 2", len(stats.Topics))
	}
}

func TestSnapshotIsolation(t *testing.T) {
	s := New("s1")
	s.RecordToolUse("explain")

	stats := s.Snapshot()
	stats.ToolUsage["explain"] = 99

	if s.Snapshot().ToolUsage["explain"] != 1 {
		t.Error("Snapshot leaked internal map")
	}
}

func TestSetDocument(t *testing.T) {
	s := New("s1")
	if s.DocActive {
		t.Error("new session should have no document")
	}
	s.SetDocument("chapter3.pdf")
	if !s.DocActive || s.DocName != "chapter3.pdf" {
		t.Errorf("DocActive = %v, DocName = %q", s.DocActive, s.DocName)
	}
}

func TestSummary(t *testing.T) {
	s := New("s1")
	s.RecordInteraction("recursion")
	s.RecordToolUse("explain")

	summary := s.Summary()
	for _, want := range []string{"Session s1", "Interactions: 1", "explain: 1", "recursion"} {
		if !strings.Contains(summary, want) {
			t.Errorf("summary missing %q:\n%s", want, summary)
		}
	}
}
