package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Imamariya/mccuppidv1.01/internal/domain/enums"
)

var ErrSubmissionNotFound = errors.New("verification submission not found")

type VerificationRepo struct {
	pool *pgxpool.Pool
}

func NewVerificationRepo(pool *pgxpool.Pool) *VerificationRepo {
	return &VerificationRepo{pool: pool}
}

type SubmissionRecord struct {
	ID         int64
	UserID     int64
	ObjectKey  string
	Status     enums.VerificationStatus
	CreatedAt  time.Time
	ReviewedAt *time.Time
}

// CreateSubmission replaces any previous pending submission for the user so
// the moderation queue holds at most one open item per person.
func (r *VerificationRepo) CreateSubmission(ctx context.Context, userID int64, objectKey string) (int64, error) {
	if userID <= 0 || objectKey == "" {
		return 0, fmt.Errorf("invalid submission payload")
	}
	if r.pool == nil {
		return 0, nil
	}

	var id int64
	err := r.pool.QueryRow(ctx, `
INSERT INTO verification_submissions (
	user_id,
	object_key,
	status,
	created_at
) VALUES ($1, $2, 'pending', NOW())
ON CONFLICT (user_id) WHERE status = 'pending' DO UPDATE SET
	object_key = EXCLUDED.object_key,
	created_at = NOW()
RETURNING id
`, userID, objectKey).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("create verification submission: %w", err)
	}

	return id, nil
}

func (r *VerificationRepo) GetByID(ctx context.Context, submissionID int64) (SubmissionRecord, error) {
	if submissionID <= 0 {
		return SubmissionRecord{}, fmt.Errorf("invalid submission id")
	}
	if r.pool == nil {
		return SubmissionRecord{}, ErrSubmissionNotFound
	}

	var rec SubmissionRecord
	var status string
	err := r.pool.QueryRow(ctx, `
SELECT id, user_id, object_key, status, created_at, reviewed_at
FROM verification_submissions
WHERE id = $1
LIMIT 1
`, submissionID).Scan(&rec.ID, &rec.UserID, &rec.ObjectKey, &status, &rec.CreatedAt, &rec.ReviewedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return SubmissionRecord{}, ErrSubmissionNotFound
		}
		return SubmissionRecord{}, fmt.Errorf("get verification submission: %w", err)
	}
	rec.Status = enums.VerificationStatus(status)

	return rec, nil
}

func (r *VerificationRepo) GetLatestForUser(ctx context.Context, userID int64) (SubmissionRecord, error) {
	if userID <= 0 {
		return SubmissionRecord{}, fmt.Errorf("invalid user id")
	}
	if r.pool == nil {
		return SubmissionRecord{}, ErrSubmissionNotFound
	}

	var rec SubmissionRecord
	var status string
	err := r.pool.QueryRow(ctx, `
SELECT id, user_id, object_key, status, created_at, reviewed_at
FROM verification_submissions
WHERE user_id = $1
ORDER BY created_at DESC, id DESC
LIMIT 1
`, userID).Scan(&rec.ID, &rec.UserID, &rec.ObjectKey, &status, &rec.CreatedAt, &rec.ReviewedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return SubmissionRecord{}, ErrSubmissionNotFound
		}
		return SubmissionRecord{}, fmt.Errorf("get latest verification submission: %w", err)
	}
	rec.Status = enums.VerificationStatus(status)

	return rec, nil
}

func (r *VerificationRepo) ListPending(ctx context.Context, limit int) ([]SubmissionRecord, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if r.pool == nil {
		return nil, nil
	}

	rows, err := r.pool.Query(ctx, `
SELECT id, user_id, object_key, status, created_at, reviewed_at
FROM verification_submissions
WHERE status = 'pending'
ORDER BY created_at ASC, id ASC
LIMIT $1
`, limit)
	if err != nil {
		return nil, fmt.Errorf("list pending verification submissions: %w", err)
	}
	defer rows.Close()

	var records []SubmissionRecord
	for rows.Next() {
		var rec SubmissionRecord
		var status string
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.ObjectKey, &status, &rec.CreatedAt, &rec.ReviewedAt); err != nil {
			return nil, fmt.Errorf("scan pending verification submission: %w", err)
		}
		rec.Status = enums.VerificationStatus(status)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pending verification submissions: %w", err)
	}

	return records, nil
}

// SetStatus only moves pending submissions, so a double review is a no-op
// for the loser.
func (r *VerificationRepo) SetStatus(ctx context.Context, tx pgx.Tx, submissionID int64, status enums.VerificationStatus) (bool, error) {
	if submissionID <= 0 {
		return false, fmt.Errorf("invalid submission id")
	}
	if tx == nil {
		return false, fmt.Errorf("transaction is required")
	}

	result, err := tx.Exec(ctx, `
UPDATE verification_submissions
SET
	status = $2,
	reviewed_at = NOW()
WHERE id = $1 AND status = 'pending'
`, submissionID, string(status))
	if err != nil {
		return false, fmt.Errorf("set verification status: %w", err)
	}

	return result.RowsAffected() > 0, nil
}
