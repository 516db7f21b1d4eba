package moderation

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Imamariya/mccuppidv1.01/internal/domain/enums"
	pgrepo "github.com/Imamariya/mccuppidv1.01/internal/repo/postgres"
)

const maxSelfieSizeBytes = 10 << 20

var (
	ErrValidation       = errors.New("validation error")
	ErrNotFound         = errors.New("submission not found")
	ErrAlreadyReviewed  = errors.New("submission already reviewed")
	ErrUnsupportedMedia = errors.New("unsupported media type")
)

type SelfieStore interface {
	PutSelfie(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
}

type SubmissionStore interface {
	CreateSubmission(ctx context.Context, userID int64, objectKey string) (int64, error)
	GetByID(ctx context.Context, submissionID int64) (pgrepo.SubmissionRecord, error)
	GetLatestForUser(ctx context.Context, userID int64) (pgrepo.SubmissionRecord, error)
	ListPending(ctx context.Context, limit int) ([]pgrepo.SubmissionRecord, error)
	SetStatus(ctx context.Context, tx pgx.Tx, submissionID int64, status enums.VerificationStatus) (bool, error)
}

type ProfileStore interface {
	SetVerified(ctx context.Context, tx pgx.Tx, userID int64, verified bool) error
}

type EventEmitter interface {
	Emit(ctx context.Context, userID *int64, name string, props map[string]any)
}

type Status struct {
	Status      enums.VerificationStatus
	SubmittedAt *time.Time
	ReviewedAt  *time.Time
}

type ReviewItem struct {
	SubmissionID int64
	UserID       int64
	SelfieURL    string
	SubmittedAt  time.Time
}

type Dependencies struct {
	Pool        *pgxpool.Pool
	Selfies     SelfieStore
	Submissions SubmissionStore
	Profiles    ProfileStore
	Events      EventEmitter
}

type Service struct {
	selfies     SelfieStore
	submissions SubmissionStore
	profiles    ProfileStore
	events      EventEmitter
	runTx       func(ctx context.Context, fn func(context.Context, pgx.Tx) error) error
}

func NewService(deps Dependencies) *Service {
	return &Service{
		selfies:     deps.Selfies,
		submissions: deps.Submissions,
		profiles:    deps.Profiles,
		events:      deps.Events,
		runTx: func(ctx context.Context, fn func(context.Context, pgx.Tx) error) error {
			return pgrepo.WithTx(ctx, deps.Pool, fn)
		},
	}
}

func (s *Service) SubmitSelfie(ctx context.Context, userID int64, body io.Reader, size int64, contentType string) (int64, error) {
	if userID <= 0 || body == nil || size <= 0 {
		return 0, ErrValidation
	}
	if size > maxSelfieSizeBytes {
		return 0, ErrValidation
	}
	if !isSupportedMedia(contentType) {
		return 0, ErrUnsupportedMedia
	}
	if s.selfies == nil || s.submissions == nil {
		return 0, fmt.Errorf("moderation dependencies are not configured")
	}

	key := fmt.Sprintf("verification/%d/%s", userID, uuid.NewString())
	if err := s.selfies.PutSelfie(ctx, key, body, size, contentType); err != nil {
		return 0, err
	}

	submissionID, err := s.submissions.CreateSubmission(ctx, userID, key)
	if err != nil {
		return 0, err
	}

	if s.events != nil {
		s.events.Emit(ctx, &userID, "verification_submitted", map[string]any{
			"submission_id": submissionID,
		})
	}

	return submissionID, nil
}

func (s *Service) GetStatus(ctx context.Context, userID int64) (Status, error) {
	if userID <= 0 {
		return Status{}, ErrValidation
	}
	if s.submissions == nil {
		return Status{}, fmt.Errorf("moderation dependencies are not configured")
	}

	rec, err := s.submissions.GetLatestForUser(ctx, userID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrSubmissionNotFound) {
			return Status{Status: enums.VerificationStatusNone}, nil
		}
		return Status{}, err
	}

	submittedAt := rec.CreatedAt
	return Status{
		Status:      rec.Status,
		SubmittedAt: &submittedAt,
		ReviewedAt:  rec.ReviewedAt,
	}, nil
}

// PendingQueue lists open submissions oldest first, each with a short-lived
// selfie URL for the reviewer.
func (s *Service) PendingQueue(ctx context.Context, limit int) ([]ReviewItem, error) {
	if s.submissions == nil || s.selfies == nil {
		return nil, fmt.Errorf("moderation dependencies are not configured")
	}

	records, err := s.submissions.ListPending(ctx, limit)
	if err != nil {
		return nil, err
	}

	items := make([]ReviewItem, 0, len(records))
	for _, rec := range records {
		selfieURL, err := s.selfies.PresignGet(ctx, rec.ObjectKey, signedURLTTL)
		if err != nil {
			return nil, fmt.Errorf("presign selfie for submission %d: %w", rec.ID, err)
		}
		items = append(items, ReviewItem{
			SubmissionID: rec.ID,
			UserID:       rec.UserID,
			SelfieURL:    selfieURL,
			SubmittedAt:  rec.CreatedAt,
		})
	}

	return items, nil
}

// Review settles a pending submission. Approval flips the profile's verified
// flag inside the same transaction; this path is the only writer of that
// flag.
func (s *Service) Review(ctx context.Context, submissionID int64, approve bool) error {
	if submissionID <= 0 {
		return ErrValidation
	}
	if s.submissions == nil || s.profiles == nil {
		return fmt.Errorf("moderation dependencies are not configured")
	}

	rec, err := s.submissions.GetByID(ctx, submissionID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrSubmissionNotFound) {
			return ErrNotFound
		}
		return err
	}
	if rec.Status != enums.VerificationStatusPending {
		return ErrAlreadyReviewed
	}

	status := enums.VerificationStatusRejected
	if approve {
		status = enums.VerificationStatusApproved
	}

	if err := s.runTx(ctx, func(txCtx context.Context, tx pgx.Tx) error {
		moved, err := s.submissions.SetStatus(txCtx, tx, submissionID, status)
		if err != nil {
			return err
		}
		if !moved {
			return ErrAlreadyReviewed
		}
		if approve {
			if err := s.profiles.SetVerified(txCtx, tx, rec.UserID, true); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		return err
	}

	if s.events != nil {
		name := "verification_rejected"
		if approve {
			name = "verification_approved"
		}
		s.events.Emit(ctx, &rec.UserID, name, map[string]any{
			"submission_id": submissionID,
		})
	}

	return nil
}

func isSupportedMedia(contentType string) bool {
	switch strings.ToLower(strings.TrimSpace(contentType)) {
	case "image/jpeg", "image/png", "image/webp":
		return true
	default:
		return false
	}
}
