package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrFeedViewerNotFound = errors.New("feed viewer profile not found")

type FeedRepo struct {
	pool *pgxpool.Pool
}

func NewFeedRepo(pool *pgxpool.Pool) *FeedRepo {
	return &FeedRepo{pool: pool}
}

type FeedViewerContext struct {
	UserID       int64
	AgeMin       int
	AgeMax       int
	RadiusKM     int
	VerifiedOnly bool
	Lat          *float64
	Lon          *float64
}

type FeedQuery struct {
	ViewerUserID    int64
	AgeMin          int
	AgeMax          int
	RadiusKM        int
	VerifiedOnly    bool
	ViewerLat       *float64
	ViewerLon       *float64
	HasCursor       bool
	CursorCreatedAt time.Time
	CursorUserID    int64
	Limit           int
}

type FeedCandidate struct {
	UserID      int64
	DisplayName string
	Age         int
	City        string
	IsVerified  bool
	Lat         *float64
	Lon         *float64
	CreatedAt   time.Time
}

func (r *FeedRepo) GetViewerContext(ctx context.Context, userID int64) (FeedViewerContext, error) {
	if userID <= 0 {
		return FeedViewerContext{}, fmt.Errorf("invalid user id")
	}
	if r.pool == nil {
		return FeedViewerContext{}, ErrFeedViewerNotFound
	}

	var viewer FeedViewerContext
	err := r.pool.QueryRow(ctx, `
SELECT
	user_id,
	age_min,
	age_max,
	radius_km,
	COALESCE(verified_only, FALSE),
	lat,
	lon
FROM profiles
WHERE user_id = $1
LIMIT 1
`, userID).Scan(
		&viewer.UserID,
		&viewer.AgeMin,
		&viewer.AgeMax,
		&viewer.RadiusKM,
		&viewer.VerifiedOnly,
		&viewer.Lat,
		&viewer.Lon,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return FeedViewerContext{}, ErrFeedViewerNotFound
		}
		return FeedViewerContext{}, fmt.Errorf("get feed viewer context: %w", err)
	}

	return viewer, nil
}

// ListCandidates pre-filters in SQL: completed profiles only, viewer's age
// band, no prior interaction either way, no existing match, and a coarse
// haversine radius cut. Candidate coordinates come back so the caller can
// compute the exact distance it exposes.
func (r *FeedRepo) ListCandidates(ctx context.Context, q FeedQuery) ([]FeedCandidate, error) {
	if q.ViewerUserID <= 0 {
		return nil, fmt.Errorf("invalid viewer id")
	}
	if q.Limit <= 0 {
		q.Limit = 20
	}
	if r.pool == nil {
		return []FeedCandidate{}, nil
	}

	applyRadius := q.ViewerLat != nil && q.ViewerLon != nil && q.RadiusKM > 0
	cursorCreatedAt := q.CursorCreatedAt.UTC()
	if cursorCreatedAt.IsZero() {
		cursorCreatedAt = time.Unix(0, 0).UTC()
	}

	rows, err := r.pool.Query(ctx, `
SELECT
	p.user_id,
	p.display_name,
	COALESCE(p.age, 0),
	COALESCE(p.city, ''),
	COALESCE(p.is_verified, FALSE),
	p.lat,
	p.lon,
	p.created_at
FROM profiles p
WHERE
	p.profile_completed = TRUE
	AND p.user_id <> $1
	AND ($2::boolean = FALSE OR p.is_verified = TRUE)
	AND COALESCE(p.age, 0) BETWEEN $3 AND $4
	AND NOT EXISTS (
		SELECT 1
		FROM interactions i
		WHERE (i.actor_user_id = $1 AND i.target_user_id = p.user_id)
			OR (i.actor_user_id = p.user_id AND i.target_user_id = $1 AND i.kind = 'reject')
	)
	AND NOT EXISTS (
		SELECT 1
		FROM matches m
		WHERE (m.user_a_id = LEAST($1, p.user_id) AND m.user_b_id = GREATEST($1, p.user_id))
	)
	AND (
		$5::boolean = FALSE
		OR (
			p.lat IS NOT NULL
			AND p.lon IS NOT NULL
			AND (
				6371.0 * ACOS(LEAST(1.0, GREATEST(-1.0,
					COS(RADIANS($6::float8)) * COS(RADIANS(p.lat)) * COS(RADIANS(p.lon) - RADIANS($7::float8))
					+ SIN(RADIANS($6::float8)) * SIN(RADIANS(p.lat))
				)))
			) <= $8::float8
		)
	)
	AND (
		$9::boolean = FALSE
		OR p.created_at < $10::timestamptz
		OR (p.created_at = $10::timestamptz AND p.user_id < $11::bigint)
	)
ORDER BY p.created_at DESC, p.user_id DESC
LIMIT $12
`,
		q.ViewerUserID,           // $1
		q.VerifiedOnly,           // $2
		q.AgeMin,                 // $3
		q.AgeMax,                 // $4
		applyRadius,              // $5
		floatOrZero(q.ViewerLat), // $6
		floatOrZero(q.ViewerLon), // $7
		float64(q.RadiusKM),      // $8
		q.HasCursor,              // $9
		cursorCreatedAt,          // $10
		q.CursorUserID,           // $11
		q.Limit,                  // $12
	)
	if err != nil {
		return nil, fmt.Errorf("list feed candidates: %w", err)
	}
	defer rows.Close()

	items := make([]FeedCandidate, 0, q.Limit)
	for rows.Next() {
		var item FeedCandidate
		if err := rows.Scan(
			&item.UserID,
			&item.DisplayName,
			&item.Age,
			&item.City,
			&item.IsVerified,
			&item.Lat,
			&item.Lon,
			&item.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan feed candidate: %w", err)
		}
		items = append(items, item)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate feed candidates: %w", rows.Err())
	}

	return items, nil
}

func floatOrZero(value *float64) float64 {
	if value == nil {
		return 0
	}
	return *value
}
