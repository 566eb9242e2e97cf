package memory

import (
	"context"
	"fmt"
	"testing"
	"time"
)

func TestShortTermCapacity(t *testing.T) {
	m := NewShortTerm(0)

	for i := 0; i < 15; i++ {
		m.Record("s1", Turn{
			Role:      "user",
			Text:      fmt.Sprintf("question %d", i),
			Timestamp: time.Now(),
		})
	}

	if got := m.Len("s1"); got != 10 {
		t.Errorf("Len = %d, want 10", got)
	}

	turns := m.Recent("s1", 20)
	if len(turns) != 10 {
		t.Fatalf("Recent(20) returned %d turns, want 10", len(turns))
	}
	// 最旧的 5 条已被挤出
	if turns[0].Text != "question 5" {
		t.Errorf("oldest retained = %q, want question 5", turns[0].Text)
	}
	if turns[9].Text != "question 14" {
		t.Errorf("newest = %q, want question 14", turns[9].Text)
	}
}

func TestShortTermRecentOrder(t *testing.T) {
	m := NewShortTerm(10)

	for i := 0; i < 4; i++ {
		m.Record("s1", Turn{Role: "user", Text: fmt.Sprintf("turn %d", i)})
	}

	turns := m.Recent("s1", 2)
	if len(turns) != 2 {
		t.Fatalf("Recent(2) returned %d turns", len(turns))
	}
	if turns[0].Text != "turn 2" || turns[1].Text != "turn 3" {
		t.Errorf("wrong order: %q, %q", turns[0].Text, turns[1].Text)
	}
}

func TestShortTermIsolationAndClear(t *testing.T) {
	m := NewShortTerm(10)
	m.Record("s1", Turn{Role: "user", Text: "a"})
	m.Record("s2", Turn{Role: "user", Text: "b"})

	if m.Len("s1") != 1 || m.Len("s2") != 1 {
		t.Error("sessions not isolated")
	}

	m.Clear("s1")
	if m.Len("s1") != 0 {
		t.Error("Clear did not empty session")
	}
	if m.Len("s2") != 1 {
		t.Error("Clear affected other session")
	}

	if got := m.Recent("missing", 5); got != nil {
		t.Errorf("Recent on empty session = %v", got)
	}
}

func TestShortTermRecallSimilar(t *testing.T) {
	m := NewShortTerm(10)
	m.Record("s1", Turn{Role: "user", Text: "Explain binary search trees"})
	m.Record("s1", Turn{Role: "assistant", Text: "binary search trees are ..."})
	m.Record("s1", Turn{Role: "user", Text: "What is photosynthesis"})

	turn, ok := m.RecallSimilar("s1", "quiz me on binary trees")
	if !ok {
		t.Fatal("expected a recalled turn")
	}
	if turn.Text != "Explain binary search trees" {
		t.Errorf("recalled %q", turn.Text)
	}

	// 助手轮不参与召回，无重叠词返回未命中
	if _, ok := m.RecallSimilar("s1", "matrix multiplication"); ok {
		t.Error("expected no match")
	}
	if _, ok := m.RecallSimilar("s1", ""); ok {
		t.Error("empty query should not match")
	}
}

func TestInMemoryTurnStore(t *testing.T) {
	store := NewInMemoryTurnStore()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		err := store.Append(ctx, "s1", Turn{Role: "user", Text: fmt.Sprintf("t%d", i)})
		if err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}

	history, err := store.History(ctx, "s1", 3)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(history) != 3 {
		t.Fatalf("History returned %d turns, want 3", len(history))
	}
	if history[0].Text != "t2" || history[2].Text != "t4" {
		t.Errorf("wrong window: %q .. %q", history[0].Text, history[2].Text)
	}

	history, err = store.History(ctx, "empty", 10)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if history != nil {
		t.Errorf("expected nil for unknown session, got %v", history)
	}
}
