package quota

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Imamariya/mccuppidv1.01/internal/domain/enums"
	"github.com/Imamariya/mccuppidv1.01/internal/domain/model"
	"github.com/Imamariya/mccuppidv1.01/internal/domain/rules"
)

var ErrValidation = errors.New("validation error")

type UsageStore interface {
	GetUsage(ctx context.Context, userID int64, dayKey string) (model.DailyQuota, error)
}

type EntitlementProvider interface {
	IsProActive(ctx context.Context, userID int64) (bool, error)
}

type Config struct {
	FreeLikesPerDay   int
	FreeMatchesPerDay int
}

// Snapshot is the read-only quota view. Unlimited means the daily ceilings
// do not apply; the Left fields are zero in that case and the client renders
// them from the flag.
type Snapshot struct {
	Plan        enums.Plan
	Unlimited   bool
	LikesUsed   int
	LikesLeft   int
	MatchesUsed int
	MatchesLeft int
	ResetAt     time.Time
}

type Service struct {
	usage        UsageStore
	entitlements EntitlementProvider
	cfg          Config
	now          func() time.Time
}

func NewService(usage UsageStore, entitlements EntitlementProvider, cfg Config) *Service {
	if cfg.FreeLikesPerDay <= 0 {
		cfg.FreeLikesPerDay = 50
	}
	if cfg.FreeMatchesPerDay <= 0 {
		cfg.FreeMatchesPerDay = 10
	}

	return &Service{
		usage:        usage,
		entitlements: entitlements,
		cfg:          cfg,
		now:          time.Now,
	}
}

func (s *Service) GetSnapshot(ctx context.Context, userID int64) (Snapshot, error) {
	if userID <= 0 {
		return Snapshot{}, fmt.Errorf("invalid user id: %w", ErrValidation)
	}
	if s.usage == nil || s.entitlements == nil {
		return Snapshot{}, fmt.Errorf("quota dependencies are not configured")
	}

	now := s.now().UTC()
	dayKey := rules.DayKey(now)

	usage, err := s.usage.GetUsage(ctx, userID, dayKey)
	if err != nil {
		return Snapshot{}, fmt.Errorf("read quota usage: %w", err)
	}

	proActive, err := s.entitlements.IsProActive(ctx, userID)
	if err != nil {
		return Snapshot{}, err
	}

	snapshot := Snapshot{
		Plan:        enums.PlanFree,
		LikesUsed:   usage.LikesUsed,
		MatchesUsed: usage.MatchesUsed,
		ResetAt:     rules.NextResetAt(now),
	}
	if proActive {
		snapshot.Plan = enums.PlanPro
		snapshot.Unlimited = true
		return snapshot, nil
	}

	snapshot.LikesLeft = rules.Remaining(usage.LikesUsed, s.cfg.FreeLikesPerDay)
	snapshot.MatchesLeft = rules.Remaining(usage.MatchesUsed, s.cfg.FreeMatchesPerDay)

	return snapshot, nil
}
