package payments

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
)

type orderStoreStub struct {
	created map[string]int64
	paid    map[string]string
}

func newOrderStoreStub() *orderStoreStub {
	return &orderStoreStub{
		created: make(map[string]int64),
		paid:    make(map[string]string),
	}
}

func (s *orderStoreStub) CreateOrder(_ context.Context, orderID string, userID int64, _ int) error {
	s.created[orderID] = userID
	return nil
}

func (s *orderStoreStub) MarkPaid(_ context.Context, _ pgx.Tx, orderID, paymentID string) (int64, bool, error) {
	userID, ok := s.created[orderID]
	if !ok {
		return 0, false, nil
	}
	if _, already := s.paid[orderID]; already {
		return 0, false, nil
	}
	s.paid[orderID] = paymentID
	return userID, true, nil
}

type subscriptionStoreStub struct {
	applied int
	expires time.Time
}

func (s *subscriptionStoreStub) ApplyProPurchase(_ context.Context, _ pgx.Tx, _ int64, duration time.Duration) (time.Time, error) {
	s.applied++
	s.expires = time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC).Add(duration)
	return s.expires, nil
}

func newTestService(orders *orderStoreStub, subs *subscriptionStoreStub) *Service {
	return &Service{
		orders:        orders,
		subscriptions: subs,
		cfg: Config{
			KeyID:       "key_test",
			KeySecret:   "secret_test",
			ProPriceINR: 299,
			ProDuration: 720 * time.Hour,
		},
		runTx: func(ctx context.Context, fn func(context.Context, pgx.Tx) error) error {
			return fn(ctx, nil)
		},
	}
}

func signFor(secret, orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestCreateOrderAssignsUniqueIDs(t *testing.T) {
	orders := newOrderStoreStub()
	svc := newTestService(orders, &subscriptionStoreStub{})

	first, err := svc.CreateOrder(context.Background(), 1)
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	second, err := svc.CreateOrder(context.Background(), 1)
	if err != nil {
		t.Fatalf("create second order: %v", err)
	}

	if first.OrderID == second.OrderID {
		t.Fatal("order ids must be unique")
	}
	if !strings.HasPrefix(first.OrderID, "order_") {
		t.Fatalf("unexpected order id format: %s", first.OrderID)
	}
	if first.AmountINR != 299 || first.KeyID != "key_test" {
		t.Fatalf("unexpected order payload: %+v", first)
	}
}

func TestHandleWebhookAppliesProOnce(t *testing.T) {
	orders := newOrderStoreStub()
	subs := &subscriptionStoreStub{}
	svc := newTestService(orders, subs)

	order, err := svc.CreateOrder(context.Background(), 42)
	if err != nil {
		t.Fatalf("create order: %v", err)
	}

	sig := signFor("secret_test", order.OrderID, "pay_123")
	result, err := svc.HandleWebhook(context.Background(), order.OrderID, "pay_123", sig)
	if err != nil {
		t.Fatalf("handle webhook: %v", err)
	}
	if !result.Processed || result.UserID != 42 {
		t.Fatalf("unexpected webhook result: %+v", result)
	}
	if subs.applied != 1 {
		t.Fatalf("expected one pro application, got %d", subs.applied)
	}

	// Replay: valid signature, but the order is already paid.
	replay, err := svc.HandleWebhook(context.Background(), order.OrderID, "pay_123", sig)
	if err != nil {
		t.Fatalf("replayed webhook: %v", err)
	}
	if replay.Processed {
		t.Fatal("replayed webhook must not be processed again")
	}
	if subs.applied != 1 {
		t.Fatalf("replay extended the subscription: applied=%d", subs.applied)
	}
}

func TestHandleWebhookRejectsBadSignature(t *testing.T) {
	orders := newOrderStoreStub()
	subs := &subscriptionStoreStub{}
	svc := newTestService(orders, subs)

	order, err := svc.CreateOrder(context.Background(), 42)
	if err != nil {
		t.Fatalf("create order: %v", err)
	}

	wrong := signFor("other_secret", order.OrderID, "pay_123")
	if _, err := svc.HandleWebhook(context.Background(), order.OrderID, "pay_123", wrong); !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("expected ErrInvalidSignature, got %v", err)
	}
	if subs.applied != 0 {
		t.Fatal("bad signature must not touch the subscription")
	}
}
