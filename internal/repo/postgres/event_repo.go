package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type EventRepo struct {
	pool *pgxpool.Pool
}

func NewEventRepo(pool *pgxpool.Pool) *EventRepo {
	return &EventRepo{pool: pool}
}

func (r *EventRepo) Append(ctx context.Context, userID *int64, name string, props map[string]any) error {
	if name == "" {
		return fmt.Errorf("event name is required")
	}
	if r.pool == nil {
		return nil
	}

	payload, err := json.Marshal(props)
	if err != nil {
		return fmt.Errorf("marshal event props: %w", err)
	}

	if _, err := r.pool.Exec(ctx, `
INSERT INTO events (
	user_id,
	name,
	props,
	created_at
) VALUES ($1, $2, $3::jsonb, NOW())
`, userID, name, payload); err != nil {
		return fmt.Errorf("append event: %w", err)
	}

	return nil
}

func (r *EventRepo) PruneBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	if r.pool == nil {
		return 0, nil
	}

	result, err := r.pool.Exec(ctx, `
DELETE FROM events
WHERE created_at < $1
`, cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("prune events: %w", err)
	}

	return result.RowsAffected(), nil
}
