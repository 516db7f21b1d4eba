package moderation

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/Imamariya/mccuppidv1.01/internal/domain/enums"
	pgrepo "github.com/Imamariya/mccuppidv1.01/internal/repo/postgres"
)

type selfieStoreStub struct {
	keys []string
}

func (s *selfieStoreStub) PutSelfie(_ context.Context, key string, _ io.Reader, _ int64, _ string) error {
	s.keys = append(s.keys, key)
	return nil
}

func (s *selfieStoreStub) PresignGet(context.Context, string, time.Duration) (string, error) {
	return "https://example.test/signed", nil
}

type submissionStoreStub struct {
	records map[int64]pgrepo.SubmissionRecord
	nextID  int64
}

func newSubmissionStoreStub() *submissionStoreStub {
	return &submissionStoreStub{records: make(map[int64]pgrepo.SubmissionRecord)}
}

func (s *submissionStoreStub) CreateSubmission(_ context.Context, userID int64, objectKey string) (int64, error) {
	s.nextID++
	s.records[s.nextID] = pgrepo.SubmissionRecord{
		ID:        s.nextID,
		UserID:    userID,
		ObjectKey: objectKey,
		Status:    enums.VerificationStatusPending,
		CreatedAt: time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC),
	}
	return s.nextID, nil
}

func (s *submissionStoreStub) GetByID(_ context.Context, id int64) (pgrepo.SubmissionRecord, error) {
	rec, ok := s.records[id]
	if !ok {
		return pgrepo.SubmissionRecord{}, pgrepo.ErrSubmissionNotFound
	}
	return rec, nil
}

func (s *submissionStoreStub) GetLatestForUser(_ context.Context, userID int64) (pgrepo.SubmissionRecord, error) {
	var latest pgrepo.SubmissionRecord
	found := false
	for _, rec := range s.records {
		if rec.UserID == userID && (!found || rec.ID > latest.ID) {
			latest = rec
			found = true
		}
	}
	if !found {
		return pgrepo.SubmissionRecord{}, pgrepo.ErrSubmissionNotFound
	}
	return latest, nil
}

func (s *submissionStoreStub) ListPending(_ context.Context, limit int) ([]pgrepo.SubmissionRecord, error) {
	var pending []pgrepo.SubmissionRecord
	for id := int64(1); id <= s.nextID; id++ {
		rec, ok := s.records[id]
		if !ok || rec.Status != enums.VerificationStatusPending {
			continue
		}
		pending = append(pending, rec)
		if limit > 0 && len(pending) >= limit {
			break
		}
	}
	return pending, nil
}

func (s *submissionStoreStub) SetStatus(_ context.Context, _ pgx.Tx, id int64, status enums.VerificationStatus) (bool, error) {
	rec, ok := s.records[id]
	if !ok || rec.Status != enums.VerificationStatusPending {
		return false, nil
	}
	rec.Status = status
	reviewed := time.Date(2026, 3, 10, 13, 0, 0, 0, time.UTC)
	rec.ReviewedAt = &reviewed
	s.records[id] = rec
	return true, nil
}

type profileStoreStub struct {
	verified map[int64]bool
}

func newProfileStoreStub() *profileStoreStub {
	return &profileStoreStub{verified: make(map[int64]bool)}
}

func (s *profileStoreStub) SetVerified(_ context.Context, _ pgx.Tx, userID int64, verified bool) error {
	s.verified[userID] = verified
	return nil
}

func newTestService(selfies *selfieStoreStub, subs *submissionStoreStub, profiles *profileStoreStub) *Service {
	return &Service{
		selfies:     selfies,
		submissions: subs,
		profiles:    profiles,
		runTx: func(ctx context.Context, fn func(context.Context, pgx.Tx) error) error {
			return fn(ctx, nil)
		},
	}
}

func TestSubmitSelfieStoresObjectAndQueuesSubmission(t *testing.T) {
	selfies := &selfieStoreStub{}
	subs := newSubmissionStoreStub()
	svc := newTestService(selfies, subs, newProfileStoreStub())

	id, err := svc.SubmitSelfie(context.Background(), 7, bytes.NewReader([]byte("img")), 3, "image/jpeg")
	if err != nil {
		t.Fatalf("submit selfie: %v", err)
	}
	if id == 0 {
		t.Fatal("expected submission id")
	}
	if len(selfies.keys) != 1 {
		t.Fatalf("expected one stored object, got %d", len(selfies.keys))
	}

	status, err := svc.GetStatus(context.Background(), 7)
	if err != nil {
		t.Fatalf("get status: %v", err)
	}
	if status.Status != enums.VerificationStatusPending {
		t.Fatalf("expected pending status, got %s", status.Status)
	}
}

func TestSubmitSelfieRejectsUnsupportedMedia(t *testing.T) {
	svc := newTestService(&selfieStoreStub{}, newSubmissionStoreStub(), newProfileStoreStub())

	if _, err := svc.SubmitSelfie(context.Background(), 7, bytes.NewReader([]byte("x")), 1, "text/plain"); !errors.Is(err, ErrUnsupportedMedia) {
		t.Fatalf("expected ErrUnsupportedMedia, got %v", err)
	}
}

func TestReviewApprovalSetsVerified(t *testing.T) {
	selfies := &selfieStoreStub{}
	subs := newSubmissionStoreStub()
	profiles := newProfileStoreStub()
	svc := newTestService(selfies, subs, profiles)

	id, err := svc.SubmitSelfie(context.Background(), 7, bytes.NewReader([]byte("img")), 3, "image/png")
	if err != nil {
		t.Fatalf("submit selfie: %v", err)
	}

	if err := svc.Review(context.Background(), id, true); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if !profiles.verified[7] {
		t.Fatal("approval should set the profile verified flag")
	}

	if err := svc.Review(context.Background(), id, false); !errors.Is(err, ErrAlreadyReviewed) {
		t.Fatalf("expected ErrAlreadyReviewed on second review, got %v", err)
	}
}

func TestPendingQueueListsOnlyOpenSubmissions(t *testing.T) {
	selfies := &selfieStoreStub{}
	subs := newSubmissionStoreStub()
	svc := newTestService(selfies, subs, newProfileStoreStub())

	firstID, err := svc.SubmitSelfie(context.Background(), 7, bytes.NewReader([]byte("img")), 3, "image/jpeg")
	if err != nil {
		t.Fatalf("submit selfie: %v", err)
	}
	secondID, err := svc.SubmitSelfie(context.Background(), 8, bytes.NewReader([]byte("img")), 3, "image/jpeg")
	if err != nil {
		t.Fatalf("submit selfie: %v", err)
	}

	if err := svc.Review(context.Background(), firstID, true); err != nil {
		t.Fatalf("approve: %v", err)
	}

	items, err := svc.PendingQueue(context.Background(), 10)
	if err != nil {
		t.Fatalf("pending queue: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected one pending item, got %d", len(items))
	}
	if items[0].SubmissionID != secondID || items[0].UserID != 8 {
		t.Fatalf("unexpected queue item: %+v", items[0])
	}
	if items[0].SelfieURL == "" {
		t.Fatal("expected signed selfie url")
	}
}

func TestReviewRejectionLeavesProfileUnverified(t *testing.T) {
	selfies := &selfieStoreStub{}
	subs := newSubmissionStoreStub()
	profiles := newProfileStoreStub()
	svc := newTestService(selfies, subs, profiles)

	id, err := svc.SubmitSelfie(context.Background(), 7, bytes.NewReader([]byte("img")), 3, "image/webp")
	if err != nil {
		t.Fatalf("submit selfie: %v", err)
	}

	if err := svc.Review(context.Background(), id, false); err != nil {
		t.Fatalf("reject: %v", err)
	}
	if profiles.verified[7] {
		t.Fatal("rejection must not verify the profile")
	}

	status, err := svc.GetStatus(context.Background(), 7)
	if err != nil {
		t.Fatalf("get status: %v", err)
	}
	if status.Status != enums.VerificationStatusRejected {
		t.Fatalf("expected rejected status, got %s", status.Status)
	}
}
