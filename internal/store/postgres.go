package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// Postgres persists plan batches via the pgx stdlib driver.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(dsn string) (*Postgres, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	return &Postgres{db: db}, nil
}

func (p *Postgres) Ping(ctx context.Context) error { return p.db.PingContext(ctx) }

// EnsureSchema creates the plan_batches table if needed (dev helper).
func (p *Postgres) EnsureSchema(ctx context.Context) error {
	_, err := p.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS plan_batches (
    id          UUID PRIMARY KEY,
    created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
    score       DOUBLE PRECISION NOT NULL,
    route_count INT NOT NULL,
    request     JSONB NOT NULL,
    response    JSONB NOT NULL
)`)
	return err
}

func (p *Postgres) SavePlan(ctx context.Context, batch PlanBatch) (string, error) {
	if batch.ID == "" {
		batch.ID = uuid.NewString()
	}
	if batch.CreatedAt.IsZero() {
		batch.CreatedAt = time.Now().UTC()
	}
	reqJSON, err := json.Marshal(batch.Request)
	if err != nil {
		return "", err
	}
	respJSON, err := json.Marshal(batch.Response)
	if err != nil {
		return "", err
	}
	_, err = p.db.ExecContext(ctx,
		`INSERT INTO plan_batches (id, created_at, score, route_count, request, response) VALUES ($1,$2,$3,$4,$5,$6)`,
		batch.ID, batch.CreatedAt, batch.Response.OptimizationScore, len(batch.Response.Routes), reqJSON, respJSON)
	if err != nil {
		return "", err
	}
	return batch.ID, nil
}

func (p *Postgres) GetPlan(ctx context.Context, id string) (PlanBatch, error) {
	var b PlanBatch
	var reqJSON, respJSON []byte
	err := p.db.QueryRowContext(ctx,
		`SELECT id::text, created_at, request, response FROM plan_batches WHERE id::text=$1`, id).
		Scan(&b.ID, &b.CreatedAt, &reqJSON, &respJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return PlanBatch{}, ErrNotFound
	}
	if err != nil {
		return PlanBatch{}, err
	}
	if err := json.Unmarshal(reqJSON, &b.Request); err != nil {
		return PlanBatch{}, err
	}
	if err := json.Unmarshal(respJSON, &b.Response); err != nil {
		return PlanBatch{}, err
	}
	return b, nil
}

func (p *Postgres) ListPlans(ctx context.Context, cursor string, limit int) ([]PlanBatch, string, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	var rows *sql.Rows
	var err error
	if cursor != "" {
		rows, err = p.db.QueryContext(ctx,
			`SELECT id::text, created_at, request, response FROM plan_batches WHERE id::text > $1 ORDER BY id LIMIT $2`, cursor, limit)
	} else {
		rows, err = p.db.QueryContext(ctx,
			`SELECT id::text, created_at, request, response FROM plan_batches ORDER BY id LIMIT $1`, limit)
	}
	if err != nil {
		return nil, "", err
	}
	defer rows.Close()

	out := []PlanBatch{}
	var last string
	for rows.Next() {
		var b PlanBatch
		var reqJSON, respJSON []byte
		if err := rows.Scan(&b.ID, &b.CreatedAt, &reqJSON, &respJSON); err != nil {
			return nil, "", err
		}
		if err := json.Unmarshal(reqJSON, &b.Request); err != nil {
			return nil, "", err
		}
		if err := json.Unmarshal(respJSON, &b.Response); err != nil {
			return nil, "", err
		}
		out = append(out, b)
		last = b.ID
	}
	var next string
	if len(out) == limit {
		next = last
	}
	return out, next, rows.Err()
}
