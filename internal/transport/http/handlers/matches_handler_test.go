package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"

	pgrepo "github.com/Imamariya/mccuppidv1.01/internal/repo/postgres"
	authsvc "github.com/Imamariya/mccuppidv1.01/internal/services/auth"
	matchessvc "github.com/Imamariya/mccuppidv1.01/internal/services/matches"
)

type stubMatchStore struct {
	active []pgrepo.ActiveMatchRecord
}

func (s *stubMatchStore) CreateIfMutualLike(ctx context.Context, tx pgx.Tx, userID, targetID int64) (int64, bool, error) {
	return 0, false, nil
}

func (s *stubMatchStore) ListActiveForUser(ctx context.Context, userID int64, limit int) ([]pgrepo.ActiveMatchRecord, error) {
	return s.active, nil
}

func (s *stubMatchStore) DeleteByUsers(ctx context.Context, tx pgx.Tx, userID, targetID int64) (bool, error) {
	return false, nil
}

func TestMatchesHandlerListsActiveMatches(t *testing.T) {
	createdAt := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	svc := matchessvc.NewService(matchessvc.Dependencies{
		Matches: &stubMatchStore{active: []pgrepo.ActiveMatchRecord{
			{ID: 7, TargetUserID: 202, DisplayName: "Anu", Age: 26, City: "Kochi", IsVerified: true, CreatedAt: createdAt},
		}},
	}, matchessvc.Config{})

	h := NewMatchesHandler(svc)

	req := httptest.NewRequest(http.MethodGet, "/v1/matches", nil)
	req = req.WithContext(authsvc.WithIdentity(context.Background(), authsvc.Identity{UserID: 101, Role: "USER"}))
	rec := httptest.NewRecorder()
	h.Handle(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: got %d want %d", rec.Code, http.StatusOK)
	}

	var payload struct {
		Items []struct {
			ID           int64  `json:"id"`
			TargetUserID int64  `json:"target_user_id"`
			DisplayName  string `json:"display_name"`
			IsVerified   bool   `json:"is_verified"`
		} `json:"items"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	if len(payload.Items) != 1 {
		t.Fatalf("unexpected item count: got %d want 1", len(payload.Items))
	}
	if payload.Items[0].ID != 7 || payload.Items[0].TargetUserID != 202 || !payload.Items[0].IsVerified {
		t.Fatalf("unexpected item payload: %+v", payload.Items[0])
	}
}
