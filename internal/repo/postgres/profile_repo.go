package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrProfileNotFound = errors.New("profile not found")

type ProfileRepo struct {
	pool *pgxpool.Pool
}

func NewProfileRepo(pool *pgxpool.Pool) *ProfileRepo {
	return &ProfileRepo{pool: pool}
}

type ProfileRecord struct {
	UserID      int64
	DisplayName string
	Age         int
	City        string
	IsVerified  bool
	Completed   bool
	Lat         *float64
	Lon         *float64
}

func (r *ProfileRepo) Get(ctx context.Context, userID int64) (ProfileRecord, error) {
	if userID <= 0 {
		return ProfileRecord{}, fmt.Errorf("invalid user id")
	}
	if r.pool == nil {
		return ProfileRecord{}, ErrProfileNotFound
	}

	var rec ProfileRecord
	err := r.pool.QueryRow(ctx, `
SELECT
	user_id,
	COALESCE(display_name, ''),
	COALESCE(age, 0),
	COALESCE(city, ''),
	COALESCE(is_verified, FALSE),
	COALESCE(profile_completed, FALSE),
	lat,
	lon
FROM profiles
WHERE user_id = $1
LIMIT 1
`, userID).Scan(
		&rec.UserID,
		&rec.DisplayName,
		&rec.Age,
		&rec.City,
		&rec.IsVerified,
		&rec.Completed,
		&rec.Lat,
		&rec.Lon,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ProfileRecord{}, ErrProfileNotFound
		}
		return ProfileRecord{}, fmt.Errorf("get profile: %w", err)
	}

	return rec, nil
}

func (r *ProfileRepo) SaveLocation(ctx context.Context, userID int64, lat, lon float64, country, state, city string) error {
	if userID <= 0 {
		return fmt.Errorf("invalid user id")
	}
	if r.pool == nil {
		return nil
	}

	result, err := r.pool.Exec(ctx, `
UPDATE profiles
SET
	lat = $2,
	lon = $3,
	country = $4,
	state = $5,
	city = $6,
	updated_at = NOW()
WHERE user_id = $1
`, userID, lat, lon, country, state, city)
	if err != nil {
		return fmt.Errorf("save profile location: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrProfileNotFound
	}

	return nil
}

// SetVerified is the only writer of the verification flag; it runs inside
// the moderation approval transaction.
func (r *ProfileRepo) SetVerified(ctx context.Context, tx pgx.Tx, userID int64, verified bool) error {
	if userID <= 0 {
		return fmt.Errorf("invalid user id")
	}
	if tx == nil {
		return fmt.Errorf("transaction is required")
	}

	result, err := tx.Exec(ctx, `
UPDATE profiles
SET
	is_verified = $2,
	updated_at = NOW()
WHERE user_id = $1
`, userID, verified)
	if err != nil {
		return fmt.Errorf("set profile verified: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrProfileNotFound
	}

	return nil
}
