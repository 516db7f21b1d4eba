package matches

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/Imamariya/mccuppidv1.01/internal/domain/enums"
	pgrepo "github.com/Imamariya/mccuppidv1.01/internal/repo/postgres"
)

type pairKey struct {
	actor  int64
	target int64
}

type interactionStub struct {
	kinds map[pairKey]enums.InteractionKind
}

func newInteractionStub() *interactionStub {
	return &interactionStub{kinds: make(map[pairKey]enums.InteractionKind)}
}

func (s *interactionStub) Upsert(_ context.Context, _ pgx.Tx, actorID, targetID int64, kind enums.InteractionKind) error {
	s.kinds[pairKey{actorID, targetID}] = kind
	return nil
}

func (s *interactionStub) Get(_ context.Context, _ pgx.Tx, actorID, targetID int64) (enums.InteractionKind, bool, error) {
	kind, ok := s.kinds[pairKey{actorID, targetID}]
	return kind, ok, nil
}

func (s *interactionStub) HasLike(_ context.Context, _ pgx.Tx, actorID, targetID int64) (bool, error) {
	kind, ok := s.kinds[pairKey{actorID, targetID}]
	if !ok {
		return false, nil
	}
	return kind == enums.InteractionLike || kind == enums.InteractionSuperLike, nil
}

type matchStub struct {
	pairs  map[pairKey]int64
	nextID int64
}

func newMatchStub() *matchStub {
	return &matchStub{pairs: make(map[pairKey]int64), nextID: 1}
}

func canonical(a, b int64) pairKey {
	if a > b {
		a, b = b, a
	}
	return pairKey{a, b}
}

func (s *matchStub) CreateIfMutualLike(_ context.Context, _ pgx.Tx, userID, targetID int64) (int64, bool, error) {
	key := canonical(userID, targetID)
	if _, ok := s.pairs[key]; ok {
		return 0, false, nil
	}
	id := s.nextID
	s.nextID++
	s.pairs[key] = id
	return id, true, nil
}

func (s *matchStub) ListActiveForUser(context.Context, int64, int) ([]pgrepo.ActiveMatchRecord, error) {
	return nil, nil
}

func (s *matchStub) DeleteByUsers(_ context.Context, _ pgx.Tx, userID, targetID int64) (bool, error) {
	key := canonical(userID, targetID)
	if _, ok := s.pairs[key]; !ok {
		return false, nil
	}
	delete(s.pairs, key)
	return true, nil
}

type quotaKey struct {
	userID int64
	dayKey string
}

type quotaStub struct {
	likes   map[quotaKey]int
	matches map[quotaKey]int
}

func newQuotaStub() *quotaStub {
	return &quotaStub{
		likes:   make(map[quotaKey]int),
		matches: make(map[quotaKey]int),
	}
}

func (s *quotaStub) ConsumeLikeWithLimit(_ context.Context, _ pgx.Tx, userID int64, dayKey string, limit int) (int, error) {
	key := quotaKey{userID, dayKey}
	if s.likes[key] >= limit {
		return 0, pgrepo.ErrLikesLimitReached
	}
	s.likes[key]++
	return s.likes[key], nil
}

func (s *quotaStub) ConsumeMatchWithLimit(_ context.Context, _ pgx.Tx, userID int64, dayKey string, limit int) (int, error) {
	key := quotaKey{userID, dayKey}
	if s.matches[key] >= limit {
		return 0, pgrepo.ErrMatchesLimitReached
	}
	s.matches[key]++
	return s.matches[key], nil
}

type proStub struct {
	pro bool
}

func (s proStub) IsProActive(context.Context, int64) (bool, error) {
	return s.pro, nil
}

type limiterStub struct {
	allowed    bool
	retryAfter int64
	calls      int
}

func (s *limiterStub) AllowLike(context.Context, int64) (int64, bool, error) {
	s.calls++
	return s.retryAfter, s.allowed, nil
}

type eventStub struct {
	names []string
}

func (s *eventStub) Emit(_ context.Context, _ *int64, name string, _ map[string]any) {
	s.names = append(s.names, name)
}

func newTestService(inter *interactionStub, match *matchStub, quota *quotaStub, pro bool) *Service {
	svc := &Service{
		interactions: inter,
		matches:      match,
		quotas:       quota,
		entitlements: proStub{pro: pro},
		cfg:          Config{FreeLikesPerDay: 50, FreeMatchesPerDay: 10},
		runTx: func(ctx context.Context, fn func(context.Context, pgx.Tx) error) error {
			return fn(ctx, nil)
		},
		now: func() time.Time { return time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC) },
	}
	return svc
}

func TestLikeWithoutReciprocityCreatesNoMatch(t *testing.T) {
	inter := newInteractionStub()
	svc := newTestService(inter, newMatchStub(), newQuotaStub(), false)

	result, err := svc.Like(context.Background(), 1, 2, false)
	if err != nil {
		t.Fatalf("like: %v", err)
	}
	if result.MatchCreated {
		t.Fatal("one-sided like must not create a match")
	}
	if kind := inter.kinds[pairKey{1, 2}]; kind != enums.InteractionLike {
		t.Fatalf("like was not recorded, got kind %q", kind)
	}
}

func TestMutualLikeCreatesMatchOnce(t *testing.T) {
	inter := newInteractionStub()
	match := newMatchStub()
	events := &eventStub{}
	svc := newTestService(inter, match, newQuotaStub(), false)
	svc.events = events

	if _, err := svc.Like(context.Background(), 2, 1, false); err != nil {
		t.Fatalf("first like: %v", err)
	}

	result, err := svc.Like(context.Background(), 1, 2, false)
	if err != nil {
		t.Fatalf("second like: %v", err)
	}
	if !result.MatchCreated || result.MatchID == 0 {
		t.Fatalf("mutual like should create a match, got %+v", result)
	}
	if len(events.names) != 2 || events.names[0] != "match_created" {
		t.Fatalf("expected match_created events for both sides, got %v", events.names)
	}

	// Liking again must not resolve a second match for the same pair.
	again, err := svc.Like(context.Background(), 1, 2, false)
	if err != nil {
		t.Fatalf("repeat like: %v", err)
	}
	if again.MatchCreated {
		t.Fatal("repeat like created a duplicate match")
	}
}

func TestLikeDeniedAtDailyCeiling(t *testing.T) {
	quota := newQuotaStub()
	events := &eventStub{}
	svc := newTestService(newInteractionStub(), newMatchStub(), quota, false)
	svc.cfg.FreeLikesPerDay = 2
	svc.events = events

	for target := int64(2); target <= 3; target++ {
		if _, err := svc.Like(context.Background(), 1, target, false); err != nil {
			t.Fatalf("like #%d: %v", target-1, err)
		}
	}

	_, err := svc.Like(context.Background(), 1, 4, false)
	if !errors.Is(err, ErrDailyLikeLimit) {
		t.Fatalf("expected ErrDailyLikeLimit, got %v", err)
	}
	if len(events.names) != 1 || events.names[0] != "like_limit_reached" {
		t.Fatalf("expected like_limit_reached event on denial, got %v", events.names)
	}
}

func TestMatchLimitDenialLeavesLikeCommitted(t *testing.T) {
	inter := newInteractionStub()
	match := newMatchStub()
	events := &eventStub{}
	svc := newTestService(inter, match, newQuotaStub(), false)
	svc.cfg.FreeMatchesPerDay = 1
	svc.events = events

	// Targets 2 and 3 already like user 1.
	inter.kinds[pairKey{2, 1}] = enums.InteractionLike
	inter.kinds[pairKey{3, 1}] = enums.InteractionLike

	if _, err := svc.Like(context.Background(), 1, 2, false); err != nil {
		t.Fatalf("first mutual like: %v", err)
	}

	_, err := svc.Like(context.Background(), 1, 3, false)
	if !errors.Is(err, ErrDailyMatchLimit) {
		t.Fatalf("expected ErrDailyMatchLimit, got %v", err)
	}

	// The like survived the match denial.
	if kind := inter.kinds[pairKey{1, 3}]; kind != enums.InteractionLike {
		t.Fatal("like should stay committed when the match slot is denied")
	}
	if _, ok := match.pairs[canonical(1, 3)]; ok {
		t.Fatal("denied match must not be created")
	}
	if len(events.names) == 0 || events.names[len(events.names)-1] != "match_limit_reached" {
		t.Fatalf("expected match_limit_reached event on denial, got %v", events.names)
	}
}

func TestRepeatLikeDoesNotConsumeQuota(t *testing.T) {
	quota := newQuotaStub()
	svc := newTestService(newInteractionStub(), newMatchStub(), quota, false)
	svc.cfg.FreeLikesPerDay = 1

	if _, err := svc.Like(context.Background(), 1, 2, false); err != nil {
		t.Fatalf("first like: %v", err)
	}

	// Ceiling is spent, but swiping the same target again stays free.
	if _, err := svc.Like(context.Background(), 1, 2, true); err != nil {
		t.Fatalf("repeat like: %v", err)
	}

	if used := quota.likes[quotaKey{1, "2026-03-10"}]; used != 1 {
		t.Fatalf("repeat like must not consume quota, used %d", used)
	}
}

func TestProUserBypassesDailyCeilings(t *testing.T) {
	quota := newQuotaStub()
	svc := newTestService(newInteractionStub(), newMatchStub(), quota, true)
	svc.cfg.FreeLikesPerDay = 1

	for target := int64(2); target <= 10; target++ {
		if _, err := svc.Like(context.Background(), 1, target, false); err != nil {
			t.Fatalf("pro like on target %d: %v", target, err)
		}
	}

	if len(quota.likes) != 0 {
		t.Fatal("pro likes must not consume daily quota")
	}
}

func TestProUserIsRateLimited(t *testing.T) {
	limiter := &limiterStub{allowed: false, retryAfter: 7}
	svc := newTestService(newInteractionStub(), newMatchStub(), newQuotaStub(), true)
	svc.rateLimiter = limiter

	_, err := svc.Like(context.Background(), 1, 2, false)
	tf, ok := IsTooFast(err)
	if !ok {
		t.Fatalf("expected TooFastError, got %v", err)
	}
	if tf.RetryAfter() != 7 {
		t.Fatalf("unexpected retry after: %d", tf.RetryAfter())
	}
}

func TestRejectDissolvesMatchAndAlwaysSucceeds(t *testing.T) {
	inter := newInteractionStub()
	match := newMatchStub()
	svc := newTestService(inter, match, newQuotaStub(), false)

	inter.kinds[pairKey{2, 1}] = enums.InteractionLike
	if _, err := svc.Like(context.Background(), 1, 2, false); err != nil {
		t.Fatalf("mutual like: %v", err)
	}
	if _, ok := match.pairs[canonical(1, 2)]; !ok {
		t.Fatal("match should exist before reject")
	}

	if err := svc.Reject(context.Background(), 1, 2); err != nil {
		t.Fatalf("reject: %v", err)
	}

	if _, ok := match.pairs[canonical(1, 2)]; ok {
		t.Fatal("reject should dissolve the existing match")
	}
	if kind := inter.kinds[pairKey{1, 2}]; kind != enums.InteractionReject {
		t.Fatalf("reject should supersede the like, got kind %q", kind)
	}
}

func TestRejectIgnoresDailyCeilings(t *testing.T) {
	quota := newQuotaStub()
	svc := newTestService(newInteractionStub(), newMatchStub(), quota, false)
	svc.cfg.FreeLikesPerDay = 1

	if _, err := svc.Like(context.Background(), 1, 2, false); err != nil {
		t.Fatalf("like: %v", err)
	}

	// Ceiling exhausted; rejects still go through.
	for target := int64(3); target <= 6; target++ {
		if err := svc.Reject(context.Background(), 1, target); err != nil {
			t.Fatalf("reject target %d: %v", target, err)
		}
	}
}
