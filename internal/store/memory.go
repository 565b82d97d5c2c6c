package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Memory is an in-process Store used for dev and tests.
type Memory struct {
	mu    sync.Mutex
	plans map[string]PlanBatch
}

func NewMemory() *Memory {
	return &Memory{plans: map[string]PlanBatch{}}
}

func (m *Memory) SavePlan(_ context.Context, batch PlanBatch) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if batch.ID == "" {
		batch.ID = uuid.NewString()
	}
	if batch.CreatedAt.IsZero() {
		batch.CreatedAt = time.Now().UTC()
	}
	m.plans[batch.ID] = batch
	return batch.ID, nil
}

func (m *Memory) Ping(_ context.Context) error { return nil }

func (m *Memory) GetPlan(_ context.Context, id string) (PlanBatch, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.plans[id]
	if !ok {
		return PlanBatch{}, ErrNotFound
	}
	return b, nil
}

func (m *Memory) ListPlans(_ context.Context, cursor string, limit int) ([]PlanBatch, string, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, len(m.plans))
	for id := range m.plans {
		if cursor == "" || id > cursor {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	if len(ids) > limit {
		ids = ids[:limit]
	}
	out := make([]PlanBatch, 0, len(ids))
	for _, id := range ids {
		out = append(out, m.plans[id])
	}
	var next string
	if len(out) == limit && len(out) > 0 {
		next = out[len(out)-1].ID
	}
	return out, next, nil
}
