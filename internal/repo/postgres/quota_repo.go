package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Imamariya/mccuppidv1.01/internal/domain/model"
)

var (
	ErrLikesLimitReached   = errors.New("likes daily limit reached")
	ErrMatchesLimitReached = errors.New("matches daily limit reached")
)

type QuotaRepo struct {
	pool *pgxpool.Pool
}

func NewQuotaRepo(pool *pgxpool.Pool) *QuotaRepo {
	return &QuotaRepo{pool: pool}
}

// GetUsage never fails on a missing row: a day without a row is a day with
// zero usage.
func (r *QuotaRepo) GetUsage(ctx context.Context, userID int64, dayKey string) (model.DailyQuota, error) {
	if userID <= 0 || strings.TrimSpace(dayKey) == "" {
		return model.DailyQuota{}, fmt.Errorf("invalid quota lookup payload")
	}

	usage := model.DailyQuota{UserID: userID, DayKey: dayKey}
	if r.pool == nil {
		return usage, nil
	}

	err := r.pool.QueryRow(ctx, `
SELECT likes_used, matches_used
FROM quotas_daily
WHERE user_id = $1 AND day_key = $2::date
LIMIT 1
`, userID, dayKey).Scan(&usage.LikesUsed, &usage.MatchesUsed)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return usage, nil
		}
		return model.DailyQuota{}, fmt.Errorf("get daily quota usage: %w", err)
	}

	return usage, nil
}

// ConsumeLikeWithLimit reserves one like slot for the day. The compare is
// done inside the UPDATE so two concurrent callers can never both take the
// last slot; a refused reservation surfaces as ErrLikesLimitReached.
func (r *QuotaRepo) ConsumeLikeWithLimit(ctx context.Context, tx pgx.Tx, userID int64, dayKey string, limit int) (int, error) {
	if userID <= 0 || strings.TrimSpace(dayKey) == "" || limit <= 0 {
		return 0, fmt.Errorf("invalid like quota consume payload")
	}
	if tx == nil {
		return 0, fmt.Errorf("transaction is required")
	}

	var likesUsed int
	err := tx.QueryRow(ctx, `
INSERT INTO quotas_daily (
	user_id,
	day_key,
	likes_used,
	matches_used,
	updated_at
) VALUES ($1, $2::date, 1, 0, NOW())
ON CONFLICT (user_id, day_key) DO UPDATE SET
	likes_used = quotas_daily.likes_used + 1,
	updated_at = NOW()
WHERE quotas_daily.likes_used < $3
RETURNING likes_used
`, userID, dayKey, limit).Scan(&likesUsed)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrLikesLimitReached
		}
		return 0, fmt.Errorf("consume likes quota with limit: %w", err)
	}

	return likesUsed, nil
}

func (r *QuotaRepo) ConsumeMatchWithLimit(ctx context.Context, tx pgx.Tx, userID int64, dayKey string, limit int) (int, error) {
	if userID <= 0 || strings.TrimSpace(dayKey) == "" || limit <= 0 {
		return 0, fmt.Errorf("invalid match quota consume payload")
	}
	if tx == nil {
		return 0, fmt.Errorf("transaction is required")
	}

	var matchesUsed int
	err := tx.QueryRow(ctx, `
INSERT INTO quotas_daily (
	user_id,
	day_key,
	likes_used,
	matches_used,
	updated_at
) VALUES ($1, $2::date, 0, 1, NOW())
ON CONFLICT (user_id, day_key) DO UPDATE SET
	matches_used = quotas_daily.matches_used + 1,
	updated_at = NOW()
WHERE quotas_daily.matches_used < $3
RETURNING matches_used
`, userID, dayKey, limit).Scan(&matchesUsed)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrMatchesLimitReached
		}
		return 0, fmt.Errorf("consume matches quota with limit: %w", err)
	}

	return matchesUsed, nil
}

func (r *QuotaRepo) PruneBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	if r.pool == nil {
		return 0, nil
	}

	result, err := r.pool.Exec(ctx, `
DELETE FROM quotas_daily
WHERE day_key < $1::date
`, cutoff.UTC().Format("2006-01-02"))
	if err != nil {
		return 0, fmt.Errorf("prune daily quotas: %w", err)
	}

	return result.RowsAffected(), nil
}
