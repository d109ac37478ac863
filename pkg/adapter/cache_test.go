package adapter

import (
	"context"
	"testing"
	"time"

	"github.com/docsonar/docsonar/pkg/types"
)

// countingAdapter records how often each method is hit.
type countingAdapter struct {
	searches int
	lookups  int
	record   *types.DocumentRecord
}

func (c *countingAdapter) Search(context.Context, string, int, types.SearchMode) ([]types.DocumentRecord, error) {
	c.searches++
	return nil, nil
}

func (c *countingAdapter) GetByID(context.Context, string) (*types.DocumentRecord, error) {
	c.lookups++
	return c.record, nil
}

func newTestCache(t *testing.T, inner Adapter) *CachedAdapter {
	t.Helper()
	c, err := NewCachedAdapter(inner, CacheConfig{Dir: t.TempDir(), TTL: time.Minute}, nil)
	if err != nil {
		t.Fatalf("failed to open cache: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestCachedAdapterGetByIDCachesHits(t *testing.T) {
	inner := &countingAdapter{record: &types.DocumentRecord{ID: "page-1", Title: "Page"}}
	c := newTestCache(t, inner)

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		rec, err := c.GetByID(ctx, "page-1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if rec == nil || rec.ID != "page-1" {
			t.Fatalf("unexpected record: %v", rec)
		}
	}

	if inner.lookups != 1 {
		t.Errorf("expected 1 upstream lookup, got %d", inner.lookups)
	}
}

func TestCachedAdapterDoesNotCacheMisses(t *testing.T) {
	inner := &countingAdapter{record: nil}
	c := newTestCache(t, inner)

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		rec, err := c.GetByID(ctx, "ghost")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if rec != nil {
			t.Fatalf("expected nil record, got %v", rec)
		}
	}

	// Unknown documents are re-checked upstream every time.
	if inner.lookups != 2 {
		t.Errorf("expected 2 upstream lookups, got %d", inner.lookups)
	}
}

func TestCachedAdapterSearchPassesThrough(t *testing.T) {
	inner := &countingAdapter{}
	c := newTestCache(t, inner)

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		if _, err := c.Search(ctx, "q", 10, types.VectorMode); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if inner.searches != 2 {
		t.Errorf("search must never be cached, got %d upstream calls", inner.searches)
	}
}
