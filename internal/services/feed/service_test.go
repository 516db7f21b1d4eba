package feed

import (
	"context"
	"testing"
	"time"

	pgrepo "github.com/Imamariya/mccuppidv1.01/internal/repo/postgres"
)

type feedRepoStub struct {
	viewer     pgrepo.FeedViewerContext
	candidates []pgrepo.FeedCandidate
	lastQuery  pgrepo.FeedQuery
}

func (s *feedRepoStub) GetViewerContext(context.Context, int64) (pgrepo.FeedViewerContext, error) {
	return s.viewer, nil
}

func (s *feedRepoStub) ListCandidates(_ context.Context, q pgrepo.FeedQuery) ([]pgrepo.FeedCandidate, error) {
	s.lastQuery = q
	return s.candidates, nil
}

func ptrFloat(v float64) *float64 { return &v }

func TestGetFiltersUnverifiedWhenViewerRequiresVerified(t *testing.T) {
	repo := &feedRepoStub{
		viewer: pgrepo.FeedViewerContext{
			UserID:       1,
			AgeMin:       18,
			AgeMax:       40,
			RadiusKM:     50,
			VerifiedOnly: true,
		},
		candidates: []pgrepo.FeedCandidate{
			{UserID: 2, DisplayName: "Asha", Age: 25, IsVerified: true, CreatedAt: time.Now()},
			{UserID: 3, DisplayName: "Rahul", Age: 27, IsVerified: false, CreatedAt: time.Now()},
		},
	}

	svc := NewService(repo, Config{})

	result, err := svc.Get(context.Background(), 1, Request{Limit: 20})
	if err != nil {
		t.Fatalf("get feed: %v", err)
	}

	if len(result.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(result.Items))
	}
	if result.Items[0].UserID != 2 {
		t.Fatalf("unexpected candidate in feed: %d", result.Items[0].UserID)
	}
	if !repo.lastQuery.VerifiedOnly {
		t.Fatal("verified-only filter should be pushed down to the repository")
	}
}

func TestGetComputesRoundedDistanceAndAppliesRadius(t *testing.T) {
	repo := &feedRepoStub{
		viewer: pgrepo.FeedViewerContext{
			UserID:   1,
			AgeMin:   18,
			AgeMax:   40,
			RadiusKM: 10,
			Lat:      ptrFloat(9.9312),
			Lon:      ptrFloat(76.2673),
		},
		candidates: []pgrepo.FeedCandidate{
			// ~6 km away, inside the radius.
			{UserID: 2, DisplayName: "Near", Age: 25, Lat: ptrFloat(9.9400), Lon: ptrFloat(76.3200), CreatedAt: time.Now()},
			// Bengaluru, far outside the radius.
			{UserID: 3, DisplayName: "Far", Age: 25, Lat: ptrFloat(12.9716), Lon: ptrFloat(77.5946), CreatedAt: time.Now()},
		},
	}

	svc := NewService(repo, Config{})

	result, err := svc.Get(context.Background(), 1, Request{Limit: 20})
	if err != nil {
		t.Fatalf("get feed: %v", err)
	}

	if len(result.Items) != 1 {
		t.Fatalf("expected only the nearby candidate, got %d items", len(result.Items))
	}
	item := result.Items[0]
	if item.UserID != 2 {
		t.Fatalf("unexpected candidate: %d", item.UserID)
	}
	if item.DistanceKM == nil {
		t.Fatal("expected distance for candidate with coordinates")
	}
	if *item.DistanceKM != 6 {
		t.Fatalf("expected rounded distance 6, got %d", *item.DistanceKM)
	}
}

func TestGetSkipsDistanceWhenViewerHasNoLocation(t *testing.T) {
	repo := &feedRepoStub{
		viewer: pgrepo.FeedViewerContext{
			UserID: 1,
			AgeMin: 18,
			AgeMax: 40,
		},
		candidates: []pgrepo.FeedCandidate{
			{UserID: 2, DisplayName: "Asha", Age: 25, Lat: ptrFloat(9.94), Lon: ptrFloat(76.32), CreatedAt: time.Now()},
		},
	}

	svc := NewService(repo, Config{})

	result, err := svc.Get(context.Background(), 1, Request{Limit: 20})
	if err != nil {
		t.Fatalf("get feed: %v", err)
	}

	if len(result.Items) != 1 {
		t.Fatalf("expected candidate without distance filtering, got %d items", len(result.Items))
	}
	if result.Items[0].DistanceKM != nil {
		t.Fatal("distance should be absent when viewer has no location")
	}
}

func TestGetEnforcesAgeBand(t *testing.T) {
	repo := &feedRepoStub{
		viewer: pgrepo.FeedViewerContext{
			UserID: 1,
			AgeMin: 25,
			AgeMax: 30,
		},
		candidates: []pgrepo.FeedCandidate{
			{UserID: 2, Age: 24, CreatedAt: time.Now()},
			{UserID: 3, Age: 25, CreatedAt: time.Now()},
			{UserID: 4, Age: 31, CreatedAt: time.Now()},
		},
	}

	svc := NewService(repo, Config{})

	result, err := svc.Get(context.Background(), 1, Request{Limit: 20})
	if err != nil {
		t.Fatalf("get feed: %v", err)
	}

	if len(result.Items) != 1 || result.Items[0].UserID != 3 {
		t.Fatalf("expected only the 25-year-old candidate, got %+v", result.Items)
	}
}

func TestGetRequestOverridesBeatStoredPreferences(t *testing.T) {
	repo := &feedRepoStub{
		viewer: pgrepo.FeedViewerContext{
			UserID:   1,
			AgeMin:   18,
			AgeMax:   60,
			RadiusKM: 100,
		},
		candidates: []pgrepo.FeedCandidate{
			{UserID: 2, Age: 22, IsVerified: false, CreatedAt: time.Now()},
			{UserID: 3, Age: 28, IsVerified: true, CreatedAt: time.Now()},
			{UserID: 4, Age: 45, IsVerified: true, CreatedAt: time.Now()},
		},
	}

	svc := NewService(repo, Config{})

	ageMin, ageMax, radius, verified := 25, 35, 10, true
	result, err := svc.Get(context.Background(), 1, Request{
		Limit:        20,
		AgeMin:       &ageMin,
		AgeMax:       &ageMax,
		RadiusKM:     &radius,
		VerifiedOnly: &verified,
	})
	if err != nil {
		t.Fatalf("get feed: %v", err)
	}

	if len(result.Items) != 1 || result.Items[0].UserID != 3 {
		t.Fatalf("expected only the verified 28-year-old, got %+v", result.Items)
	}
	if repo.lastQuery.AgeMin != 25 || repo.lastQuery.AgeMax != 35 {
		t.Fatalf("overridden age band not pushed down: %d-%d", repo.lastQuery.AgeMin, repo.lastQuery.AgeMax)
	}
	if repo.lastQuery.RadiusKM != 10 {
		t.Fatalf("overridden radius not pushed down: %d", repo.lastQuery.RadiusKM)
	}
	if !repo.lastQuery.VerifiedOnly {
		t.Fatal("overridden verified-only flag not pushed down")
	}
}

func TestGetCursorRoundTrip(t *testing.T) {
	createdAt := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)
	candidates := make([]pgrepo.FeedCandidate, 0, 2)
	for i := int64(2); i <= 3; i++ {
		candidates = append(candidates, pgrepo.FeedCandidate{UserID: i, Age: 25, CreatedAt: createdAt})
	}

	repo := &feedRepoStub{
		viewer:     pgrepo.FeedViewerContext{UserID: 1, AgeMin: 18, AgeMax: 40},
		candidates: candidates,
	}

	svc := NewService(repo, Config{})

	result, err := svc.Get(context.Background(), 1, Request{Limit: 2})
	if err != nil {
		t.Fatalf("get feed: %v", err)
	}
	if result.NextCursor == "" {
		t.Fatal("expected next cursor for full page")
	}

	if _, err := svc.Get(context.Background(), 1, Request{Cursor: result.NextCursor, Limit: 2}); err != nil {
		t.Fatalf("get feed with cursor: %v", err)
	}
	if !repo.lastQuery.HasCursor {
		t.Fatal("cursor should be forwarded to the repository")
	}
	if repo.lastQuery.CursorUserID != 3 {
		t.Fatalf("unexpected cursor user id: %d", repo.lastQuery.CursorUserID)
	}

	if _, err := svc.Get(context.Background(), 1, Request{Cursor: "not-a-cursor", Limit: 2}); err != ErrInvalidCursor {
		t.Fatalf("expected ErrInvalidCursor, got %v", err)
	}
}
