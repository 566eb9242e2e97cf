package embedding

import (
	"context"
	"math"
	"testing"
)

func TestHashEmbedderDeterministic(t *testing.T) {
	e := NewHashEmbedder(64)
	ctx := context.Background()

	a, err := e.Embed(ctx, []string{"binary search tree"})
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}
	b, err := e.Embed(ctx, []string{"binary search tree"})
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}
	for i := range a[0] {
		if a[0][i] != b[0][i] {
			t.Fatal("embeddings not deterministic")
		}
	}
}

func TestHashEmbedderNormalized(t *testing.T) {
	e := NewHashEmbedder(0)
	if e.Dimension() != 384 {
		t.Errorf("default dimension = %d, want 384", e.Dimension())
	}

	vecs, err := e.Embed(context.Background(), []string{"recursion explained simply"})
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}
	var norm float64
	for _, v := range vecs[0] {
		norm += v * v
	}
	if math.Abs(math.Sqrt(norm)-1.0) > 1e-9 {
		t.Errorf("vector not unit length: %f", math.Sqrt(norm))
	}
}

func TestHashEmbedderSimilarity(t *testing.T) {
	e := NewHashEmbedder(128)
	ctx := context.Background()

	vecs, err := e.Embed(ctx, []string{
		"binary search algorithm",
		"binary search algorithm steps",
		"french revolution history",
	})
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}

	related := dot(vecs[0], vecs[1])
	unrelated := dot(vecs[0], vecs[2])
	if related <= unrelated {
		t.Errorf("related similarity %f should exceed unrelated %f", related, unrelated)
	}
}

func TestHashEmbedderEmpty(t *testing.T) {
	e := NewHashEmbedder(16)
	vecs, err := e.Embed(context.Background(), nil)
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}
	if vecs != nil {
		t.Error("expected nil for empty input")
	}
}

func dot(a, b []float64) float64 {
	var sum float64
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}
