package store

import (
	"context"
	"testing"

	"lpgroute/internal/model"
)

func TestMemorySaveGet(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	id, err := m.SavePlan(ctx, PlanBatch{
		Response: model.OptimizeResponse{Success: true, OptimizationScore: 88},
	})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if id == "" {
		t.Fatal("empty id")
	}
	b, err := m.GetPlan(ctx, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if b.Response.OptimizationScore != 88 {
		t.Fatalf("round trip lost data: %+v", b)
	}
	if b.CreatedAt.IsZero() {
		t.Fatal("createdAt not set")
	}
}

func TestMemoryGetMissing(t *testing.T) {
	m := NewMemory()
	if _, err := m.GetPlan(context.Background(), "nope"); err != ErrNotFound {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestMemoryListPagination(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		if _, err := m.SavePlan(ctx, PlanBatch{}); err != nil {
			t.Fatal(err)
		}
	}
	page1, next, err := m.ListPlans(ctx, "", 3)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(page1) != 3 || next == "" {
		t.Fatalf("page1: %d items, next %q", len(page1), next)
	}
	page2, _, err := m.ListPlans(ctx, next, 3)
	if err != nil {
		t.Fatalf("list page2: %v", err)
	}
	if len(page2) != 2 {
		t.Fatalf("page2: %d items", len(page2))
	}
	seen := map[string]bool{}
	for _, b := range append(page1, page2...) {
		if seen[b.ID] {
			t.Fatalf("duplicate id %s across pages", b.ID)
		}
		seen[b.ID] = true
	}
}
