package splitter

import (
	"strings"
	"testing"
)

func TestRecursiveSplitterShortText(t *testing.T) {
	s := NewRecursiveSplitter()

	// 低于最小长度的内容被丢弃
	chunks, err := s.Split("too short", nil)
	if err != nil {
		t.Fatalf("Split failed: %v", err)
	}
	if len(chunks) != 0 {
		t.Errorf("expected 0 chunks for short text, got %d", len(chunks))
	}

	text := strings.Repeat("binary search halves the interval on each step. ", 3)
	chunks, err = s.Split(text, nil)
	if err != nil {
		t.Fatalf("Split failed: %v", err)
	}
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
}

func TestRecursiveSplitterChunkSize(t *testing.T) {
	s := NewRecursiveSplitter()

	paragraph := strings.Repeat("sorting algorithms order elements by comparison. ", 12)
	text := strings.Join([]string{paragraph, paragraph, paragraph, paragraph}, "\n\n")

	chunks, err := s.Split(text, nil)
	if err != nil {
		t.Fatalf("Split failed: %v", err)
	}
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i, c := range chunks {
		if len(c.Content) > DefaultChunkSize {
			t.Errorf("chunk %d exceeds size limit: %d", i, len(c.Content))
		}
		if c.Index != i {
			t.Errorf("chunk %d has index %d", i, c.Index)
		}
		if c.ID == "" {
			t.Errorf("chunk %d missing id", i)
		}
	}
}

func TestRecursiveSplitterParagraphBoundary(t *testing.T) {
	s := NewRecursiveSplitter()

	first := strings.Repeat("alpha content sentence. ", 8)
	second := strings.Repeat("beta content sentence. ", 8)
	chunks, err := s.Split(first+"\n\n"+second, map[string]interface{}{"chunk_size": 250, "chunk_overlap": 20})
	if err != nil {
		t.Fatalf("Split failed: %v", err)
	}
	if len(chunks) < 2 {
		t.Fatalf("expected paragraph split, got %d chunks", len(chunks))
	}
	if !strings.Contains(chunks[0].Content, "alpha") {
		t.Errorf("first chunk = %q", chunks[0].Content)
	}
}

func TestRecursiveSplitterHardCut(t *testing.T) {
	s := NewRecursiveSplitter()

	// 无任何分隔符的长串也必须被切开
	text := strings.Repeat("x", 4000)
	chunks, err := s.Split(text, nil)
	if err != nil {
		t.Fatalf("Split failed: %v", err)
	}
	if len(chunks) < 2 {
		t.Fatalf("expected hard cut into multiple chunks, got %d", len(chunks))
	}
	for i, c := range chunks {
		if len(c.Content) > DefaultChunkSize {
			t.Errorf("chunk %d exceeds size limit: %d", i, len(c.Content))
		}
	}
}

func TestEngineSplitDocument(t *testing.T) {
	e := NewEngine()

	if _, err := e.GetSplitter("missing"); err == nil {
		t.Error("expected error for unknown splitter")
	}

	names := []string{"recursive", "token"}
	for _, name := range names {
		if _, err := e.GetSplitter(name); err != nil {
			t.Errorf("GetSplitter(%q) failed: %v", name, err)
		}
	}
}

func TestTokenSplitter(t *testing.T) {
	s := NewTokenSplitter()

	words := strings.Fields(strings.Repeat("study notes word ", 100))
	chunks, err := s.Split(strings.Join(words, " "), map[string]interface{}{"max_tokens": 100, "chunk_overlap": 10})
	if err != nil {
		t.Fatalf("Split failed: %v", err)
	}
	if len(chunks) < 3 {
		t.Fatalf("expected at least 3 chunks, got %d", len(chunks))
	}
}
