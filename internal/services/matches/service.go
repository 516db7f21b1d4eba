package matches

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Imamariya/mccuppidv1.01/internal/domain/enums"
	"github.com/Imamariya/mccuppidv1.01/internal/domain/rules"
	pgrepo "github.com/Imamariya/mccuppidv1.01/internal/repo/postgres"
)

var (
	ErrValidation      = errors.New("validation error")
	ErrDailyLikeLimit  = errors.New("daily likes limit reached")
	ErrDailyMatchLimit = errors.New("daily matches limit reached")
)

type TooFastError struct {
	RetryAfterSec int64
}

func (e TooFastError) Error() string {
	return "too fast"
}

func (e TooFastError) RetryAfter() int64 {
	if e.RetryAfterSec <= 0 {
		return 1
	}
	return e.RetryAfterSec
}

func IsTooFast(err error) (*TooFastError, bool) {
	var tf TooFastError
	if errors.As(err, &tf) {
		return &tf, true
	}
	return nil, false
}

type InteractionStore interface {
	Upsert(ctx context.Context, tx pgx.Tx, actorID, targetID int64, kind enums.InteractionKind) error
	HasLike(ctx context.Context, tx pgx.Tx, actorID, targetID int64) (bool, error)
	Get(ctx context.Context, tx pgx.Tx, actorID, targetID int64) (enums.InteractionKind, bool, error)
}

type MatchStore interface {
	CreateIfMutualLike(ctx context.Context, tx pgx.Tx, userID, targetID int64) (int64, bool, error)
	ListActiveForUser(ctx context.Context, userID int64, limit int) ([]pgrepo.ActiveMatchRecord, error)
	DeleteByUsers(ctx context.Context, tx pgx.Tx, userID, targetID int64) (bool, error)
}

type QuotaStore interface {
	ConsumeLikeWithLimit(ctx context.Context, tx pgx.Tx, userID int64, dayKey string, limit int) (int, error)
	ConsumeMatchWithLimit(ctx context.Context, tx pgx.Tx, userID int64, dayKey string, limit int) (int, error)
}

type EntitlementProvider interface {
	IsProActive(ctx context.Context, userID int64) (bool, error)
}

type RateLimiter interface {
	AllowLike(ctx context.Context, userID int64) (int64, bool, error)
}

type EventEmitter interface {
	Emit(ctx context.Context, userID *int64, name string, props map[string]any)
}

type Config struct {
	FreeLikesPerDay   int
	FreeMatchesPerDay int
}

type LikeResult struct {
	MatchCreated bool
	MatchID      int64
}

type MatchView struct {
	ID           int64
	TargetUserID int64
	DisplayName  string
	Age          int
	City         string
	IsVerified   bool
	CreatedAt    time.Time
}

type Dependencies struct {
	Pool         *pgxpool.Pool
	Interactions InteractionStore
	Matches      MatchStore
	Quotas       QuotaStore
	Entitlements EntitlementProvider
	RateLimiter  RateLimiter
	Events       EventEmitter
}

type Service struct {
	interactions InteractionStore
	matches      MatchStore
	quotas       QuotaStore
	entitlements EntitlementProvider
	rateLimiter  RateLimiter
	events       EventEmitter
	cfg          Config
	runTx        func(ctx context.Context, fn func(context.Context, pgx.Tx) error) error
	now          func() time.Time
}

func NewService(deps Dependencies, cfg Config) *Service {
	if cfg.FreeLikesPerDay <= 0 {
		cfg.FreeLikesPerDay = 50
	}
	if cfg.FreeMatchesPerDay <= 0 {
		cfg.FreeMatchesPerDay = 10
	}

	return &Service{
		interactions: deps.Interactions,
		matches:      deps.Matches,
		quotas:       deps.Quotas,
		entitlements: deps.Entitlements,
		rateLimiter:  deps.RateLimiter,
		events:       deps.Events,
		cfg:          cfg,
		runTx: func(ctx context.Context, fn func(context.Context, pgx.Tx) error) error {
			return pgrepo.WithTx(ctx, deps.Pool, fn)
		},
		now: time.Now,
	}
}

// Like records a like and resolves a match when the target already likes
// back. The like slot and the like itself commit in the first transaction;
// match-slot consumption and match creation run in a second one. A match
// denial therefore never rolls the like back: the target keeps the incoming
// like and may trigger the match on a later day from their own side.
func (s *Service) Like(ctx context.Context, userID, targetID int64, super bool) (LikeResult, error) {
	if userID <= 0 || targetID <= 0 || userID == targetID {
		return LikeResult{}, ErrValidation
	}
	if s.interactions == nil || s.matches == nil || s.quotas == nil || s.entitlements == nil {
		return LikeResult{}, fmt.Errorf("matches dependencies are not configured")
	}

	now := s.now().UTC()
	dayKey := rules.DayKey(now)

	proActive, err := s.entitlements.IsProActive(ctx, userID)
	if err != nil {
		return LikeResult{}, err
	}

	if proActive && s.rateLimiter != nil {
		retryAfter, allowed, err := s.rateLimiter.AllowLike(ctx, userID)
		if err != nil {
			return LikeResult{}, fmt.Errorf("apply pro rate limiter: %w", err)
		}
		if !allowed {
			return LikeResult{}, TooFastError{RetryAfterSec: retryAfter}
		}
	}

	kind := enums.InteractionLike
	if super {
		kind = enums.InteractionSuperLike
	}

	mutual := false
	alreadyLiked := false
	if err := s.runTx(ctx, func(txCtx context.Context, tx pgx.Tx) error {
		existing, found, err := s.interactions.Get(txCtx, tx, userID, targetID)
		if err != nil {
			return err
		}
		alreadyLiked = found && existing != enums.InteractionReject

		// A repeat swipe on the same target is free.
		if !proActive && !alreadyLiked {
			if _, err := s.quotas.ConsumeLikeWithLimit(txCtx, tx, userID, dayKey, s.cfg.FreeLikesPerDay); err != nil {
				if errors.Is(err, pgrepo.ErrLikesLimitReached) {
					return ErrDailyLikeLimit
				}
				return err
			}
		}

		if err := s.interactions.Upsert(txCtx, tx, userID, targetID, kind); err != nil {
			return err
		}

		reciprocal, err := s.interactions.HasLike(txCtx, tx, targetID, userID)
		if err != nil {
			return err
		}
		mutual = reciprocal
		return nil
	}); err != nil {
		if errors.Is(err, ErrDailyLikeLimit) && s.events != nil {
			s.events.Emit(ctx, &userID, "like_limit_reached", map[string]any{
				"day_key": dayKey,
			})
		}
		return LikeResult{}, err
	}

	if !mutual {
		return LikeResult{}, nil
	}

	var result LikeResult
	if err := s.runTx(ctx, func(txCtx context.Context, tx pgx.Tx) error {
		if !proActive && !alreadyLiked {
			if _, err := s.quotas.ConsumeMatchWithLimit(txCtx, tx, userID, dayKey, s.cfg.FreeMatchesPerDay); err != nil {
				if errors.Is(err, pgrepo.ErrMatchesLimitReached) {
					return ErrDailyMatchLimit
				}
				return err
			}
		}

		matchID, created, err := s.matches.CreateIfMutualLike(txCtx, tx, userID, targetID)
		if err != nil {
			return err
		}
		result = LikeResult{MatchCreated: created, MatchID: matchID}
		return nil
	}); err != nil {
		if errors.Is(err, ErrDailyMatchLimit) && s.events != nil {
			s.events.Emit(ctx, &userID, "match_limit_reached", map[string]any{
				"day_key":        dayKey,
				"target_user_id": targetID,
			})
		}
		return LikeResult{}, err
	}

	if result.MatchCreated && s.events != nil {
		s.events.Emit(ctx, &userID, "match_created", map[string]any{
			"match_id":       result.MatchID,
			"target_user_id": targetID,
		})
		s.events.Emit(ctx, &targetID, "match_created", map[string]any{
			"match_id":       result.MatchID,
			"target_user_id": userID,
		})
	}

	return result, nil
}

// Reject never consumes quota and never fails on limits. An existing match
// with the target is dissolved in the same transaction.
func (s *Service) Reject(ctx context.Context, userID, targetID int64) error {
	if userID <= 0 || targetID <= 0 || userID == targetID {
		return ErrValidation
	}
	if s.interactions == nil || s.matches == nil {
		return fmt.Errorf("matches dependencies are not configured")
	}

	return s.runTx(ctx, func(txCtx context.Context, tx pgx.Tx) error {
		if err := s.interactions.Upsert(txCtx, tx, userID, targetID, enums.InteractionReject); err != nil {
			return err
		}
		if _, err := s.matches.DeleteByUsers(txCtx, tx, userID, targetID); err != nil {
			return err
		}
		return nil
	})
}

func (s *Service) List(ctx context.Context, userID int64, limit int) ([]MatchView, error) {
	if userID <= 0 {
		return nil, ErrValidation
	}
	if s.matches == nil {
		return nil, fmt.Errorf("matches dependencies are not configured")
	}

	records, err := s.matches.ListActiveForUser(ctx, userID, limit)
	if err != nil {
		return nil, err
	}

	views := make([]MatchView, 0, len(records))
	for _, rec := range records {
		views = append(views, MatchView{
			ID:           rec.ID,
			TargetUserID: rec.TargetUserID,
			DisplayName:  rec.DisplayName,
			Age:          rec.Age,
			City:         rec.City,
			IsVerified:   rec.IsVerified,
			CreatedAt:    rec.CreatedAt,
		})
	}

	return views, nil
}

func (s *Service) Unmatch(ctx context.Context, userID, targetID int64) (bool, error) {
	if userID <= 0 || targetID <= 0 || userID == targetID {
		return false, ErrValidation
	}
	if s.matches == nil {
		return false, fmt.Errorf("matches dependencies are not configured")
	}

	deleted := false
	err := s.runTx(ctx, func(txCtx context.Context, tx pgx.Tx) error {
		ok, err := s.matches.DeleteByUsers(txCtx, tx, userID, targetID)
		if err != nil {
			return err
		}
		deleted = ok
		return nil
	})
	return deleted, err
}
