package store

import (
	"context"
	"errors"
	"time"

	"lpgroute/internal/model"
)

// PlanBatch is one persisted optimization result, request included so a
// dispatcher can replay or audit a plan later.
type PlanBatch struct {
	ID        string                 `json:"id"`
	CreatedAt time.Time              `json:"createdAt"`
	Request   model.OptimizeRequest  `json:"request"`
	Response  model.OptimizeResponse `json:"response"`
}

// Store is the persistence interface used by the API server.
type Store interface {
	SavePlan(ctx context.Context, batch PlanBatch) (string, error)
	GetPlan(ctx context.Context, id string) (PlanBatch, error)
	ListPlans(ctx context.Context, cursor string, limit int) (items []PlanBatch, nextCursor string, err error)
	Ping(ctx context.Context) error
}

var ErrNotFound = errors.New("not found")
