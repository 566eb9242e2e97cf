package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemoryCache(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()

	if _, err := c.Get(ctx, "missing"); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("expected ErrCacheMiss, got %v", err)
	}

	if err := c.Set(ctx, "answer", "binary search is O(log n)", 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	value, err := c.Get(ctx, "answer")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if value != "binary search is O(log n)" {
		t.Errorf("value = %q", value)
	}

	if err := c.Delete(ctx, "answer"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := c.Get(ctx, "answer"); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("expected ErrCacheMiss after Delete, got %v", err)
	}
}

func TestMemoryCacheTTL(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()

	if err := c.Set(ctx, "short", "value", 10*time.Millisecond); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	time.Sleep(20 * time.Millisecond)
	if _, err := c.Get(ctx, "short"); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("expected expiry, got %v", err)
	}
}

func TestNewDefaultsToMemory(t *testing.T) {
	c, err := New(Config{Type: "memory"})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if _, ok := c.(*MemoryCache); !ok {
		t.Errorf("expected *MemoryCache, got %T", c)
	}
}
