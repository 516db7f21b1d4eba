package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Imamariya/mccuppidv1.01/internal/domain/enums"
)

type InteractionRepo struct {
	pool *pgxpool.Pool
}

func NewInteractionRepo(pool *pgxpool.Pool) *InteractionRepo {
	return &InteractionRepo{pool: pool}
}

// Upsert records the actor's current decision on the target. A repeated
// action for the same pair overwrites the previous kind, so only the latest
// decision is ever active.
func (r *InteractionRepo) Upsert(ctx context.Context, tx pgx.Tx, actorID, targetID int64, kind enums.InteractionKind) error {
	if actorID <= 0 || targetID <= 0 {
		return fmt.Errorf("invalid interaction payload")
	}
	if tx == nil {
		return fmt.Errorf("transaction is required")
	}

	if _, err := tx.Exec(ctx, `
INSERT INTO interactions (
	actor_user_id,
	target_user_id,
	kind,
	created_at
) VALUES ($1, $2, $3, NOW())
ON CONFLICT (actor_user_id, target_user_id) DO UPDATE SET
	kind = EXCLUDED.kind,
	created_at = NOW()
`, actorID, targetID, string(kind)); err != nil {
		return fmt.Errorf("upsert interaction: %w", err)
	}

	return nil
}

// HasLike reports whether actor currently holds a like (of either flavor)
// on target.
func (r *InteractionRepo) HasLike(ctx context.Context, tx pgx.Tx, actorID, targetID int64) (bool, error) {
	if actorID <= 0 || targetID <= 0 {
		return false, fmt.Errorf("invalid interaction lookup payload")
	}
	if tx == nil {
		return false, fmt.Errorf("transaction is required")
	}

	var one int
	err := tx.QueryRow(ctx, `
SELECT 1
FROM interactions
WHERE actor_user_id = $1
	AND target_user_id = $2
	AND kind IN ('like', 'super_like')
LIMIT 1
`, actorID, targetID).Scan(&one)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("lookup interaction: %w", err)
	}

	return true, nil
}

func (r *InteractionRepo) Get(ctx context.Context, tx pgx.Tx, actorID, targetID int64) (enums.InteractionKind, bool, error) {
	if actorID <= 0 || targetID <= 0 {
		return "", false, fmt.Errorf("invalid interaction lookup payload")
	}
	if tx == nil {
		return "", false, fmt.Errorf("transaction is required")
	}

	var kind string
	err := tx.QueryRow(ctx, `
SELECT kind
FROM interactions
WHERE actor_user_id = $1 AND target_user_id = $2
LIMIT 1
`, actorID, targetID).Scan(&kind)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("get interaction: %w", err)
	}

	return enums.InteractionKind(kind), true, nil
}
