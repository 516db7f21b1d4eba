package entitlements

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

type Store interface {
	Get(ctx context.Context, userID int64) (model.Subscription, error)
}

type Service struct {
	store Store
	now   func() time.Time
}

// Entitlement is the effective plan at a point in time. ProActive already
// folds in expiry, so callers never look at the raw plan column.
type Entitlement struct {
	Plan         enums.Plan
	ProActive    bool
	ProExpiresAt *time.Time
}

func NewService(store Store) *Service {
	return &Service{
		store: store,
		now:   time.Now,
	}
}

func (s *Service) Resolve(ctx context.Context, userID int64) (Entitlement, error) {
	if userID <= 0 {
		return Entitlement{}, fmt.Errorf("invalid user id: %w", ErrValidation)
	}
	if s.store == nil {
		return Entitlement{}, fmt.Errorf("entitlement store is nil")
	}

	rec, err := s.store.Get(ctx, userID)
	if err != nil {
		return Entitlement{}, fmt.Errorf("read subscription: %w", err)
	}

	now := s.now().UTC()
	active := rules.IsProActive(rec.Plan, rec.ProExpiresAt, now)

	plan := enums.PlanFree
	if active {
		plan = enums.PlanPro
	}

	return Entitlement{
		Plan:         plan,
		ProActive:    active,
		ProExpiresAt: rec.ProExpiresAt,
	}, nil
}

// IsProActive is the convenience form used by limit-sensitive flows.
func (s *Service) IsProActive(ctx context.Context, userID int64) (bool, error) {
	ent, err := s.Resolve(ctx, userID)
	if err != nil {
		return false, err
	}
	return ent.ProActive, nil
}
