package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Imamariya/mccuppidv1.01/internal/domain/enums"
	"github.com/Imamariya/mccuppidv1.01/internal/domain/model"
)

type SubscriptionRepo struct {
	pool *pgxpool.Pool
}

func NewSubscriptionRepo(pool *pgxpool.Pool) *SubscriptionRepo {
	return &SubscriptionRepo{pool: pool}
}

// Get never fails on a missing row: a user without a subscription row is a
// free user.
func (r *SubscriptionRepo) Get(ctx context.Context, userID int64) (model.Subscription, error) {
	if userID <= 0 {
		return model.Subscription{}, fmt.Errorf("invalid user id")
	}
	if r.pool == nil {
		return model.Subscription{UserID: userID, Plan: enums.PlanFree}, nil
	}

	sub := model.Subscription{UserID: userID}
	var plan string
	err := r.pool.QueryRow(ctx, `
SELECT plan, pro_expires_at, updated_at
FROM subscriptions
WHERE user_id = $1
LIMIT 1
`, userID).Scan(&plan, &sub.ProExpiresAt, &sub.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Subscription{UserID: userID, Plan: enums.PlanFree}, nil
		}
		return model.Subscription{}, fmt.Errorf("get subscription: %w", err)
	}

	sub.Plan = enums.Plan(plan)
	return sub, nil
}

// ApplyProPurchase extends from the current expiry when it is still in the
// future, so back-to-back purchases stack instead of overwriting.
func (r *SubscriptionRepo) ApplyProPurchase(ctx context.Context, tx pgx.Tx, userID int64, duration time.Duration) (time.Time, error) {
	if userID <= 0 || duration <= 0 {
		return time.Time{}, fmt.Errorf("invalid pro purchase payload")
	}
	if tx == nil {
		return time.Time{}, fmt.Errorf("transaction is required")
	}

	var expiresAt time.Time
	err := tx.QueryRow(ctx, `
INSERT INTO subscriptions (
	user_id,
	plan,
	pro_expires_at,
	updated_at
) VALUES ($1, 'pro', NOW() + make_interval(secs => $2), NOW())
ON CONFLICT (user_id) DO UPDATE SET
	plan = 'pro',
	pro_expires_at = GREATEST(COALESCE(subscriptions.pro_expires_at, NOW()), NOW()) + make_interval(secs => $2),
	updated_at = NOW()
RETURNING pro_expires_at
`, userID, duration.Seconds()).Scan(&expiresAt)
	if err != nil {
		return time.Time{}, fmt.Errorf("apply pro purchase: %w", err)
	}

	return expiresAt, nil
}
