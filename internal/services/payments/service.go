package payments

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	pgrepo "github.com/Imamariya/mccuppidv1.01/internal/repo/postgres"
)

var (
	ErrValidation       = errors.New("validation error")
	ErrInvalidSignature = errors.New("invalid payment signature")
	ErrOrderNotFound    = errors.New("order not found")
)

type OrderStore interface {
	CreateOrder(ctx context.Context, orderID string, userID int64, amountINR int) error
	MarkPaid(ctx context.Context, tx pgx.Tx, orderID, paymentID string) (int64, bool, error)
}

type SubscriptionStore interface {
	ApplyProPurchase(ctx context.Context, tx pgx.Tx, userID int64, duration time.Duration) (time.Time, error)
}

type EventEmitter interface {
	Emit(ctx context.Context, userID *int64, name string, props map[string]any)
}

type Config struct {
	KeyID         string
	KeySecret     string
	WebhookSecret string
	ProPriceINR   int
	ProDuration   time.Duration
}

type Order struct {
	OrderID   string
	AmountINR int
	KeyID     string
}

type WebhookResult struct {
	Processed    bool
	UserID       int64
	ProExpiresAt time.Time
}

type Dependencies struct {
	Pool          *pgxpool.Pool
	Orders        OrderStore
	Subscriptions SubscriptionStore
	Events        EventEmitter
}

type Service struct {
	orders        OrderStore
	subscriptions SubscriptionStore
	events        EventEmitter
	cfg           Config
	runTx         func(ctx context.Context, fn func(context.Context, pgx.Tx) error) error
}

func NewService(deps Dependencies, cfg Config) *Service {
	if cfg.ProPriceINR <= 0 {
		cfg.ProPriceINR = 299
	}
	if cfg.ProDuration <= 0 {
		cfg.ProDuration = 720 * time.Hour
	}

	return &Service{
		orders:        deps.Orders,
		subscriptions: deps.Subscriptions,
		events:        deps.Events,
		cfg:           cfg,
		runTx: func(ctx context.Context, fn func(context.Context, pgx.Tx) error) error {
			return pgrepo.WithTx(ctx, deps.Pool, fn)
		},
	}
}

func (s *Service) CreateOrder(ctx context.Context, userID int64) (Order, error) {
	if userID <= 0 {
		return Order{}, ErrValidation
	}
	if s.orders == nil {
		return Order{}, fmt.Errorf("payments dependencies are not configured")
	}

	orderID := "order_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	if err := s.orders.CreateOrder(ctx, orderID, userID, s.cfg.ProPriceINR); err != nil {
		return Order{}, err
	}

	return Order{
		OrderID:   orderID,
		AmountINR: s.cfg.ProPriceINR,
		KeyID:     s.cfg.KeyID,
	}, nil
}

// HandleWebhook verifies the gateway signature and applies the purchase. A
// replayed webhook verifies fine but finds the order already paid and
// returns Processed=false without touching the subscription again.
func (s *Service) HandleWebhook(ctx context.Context, orderID, paymentID, signature string) (WebhookResult, error) {
	if orderID == "" || paymentID == "" || signature == "" {
		return WebhookResult{}, ErrValidation
	}
	if s.orders == nil || s.subscriptions == nil {
		return WebhookResult{}, fmt.Errorf("payments dependencies are not configured")
	}

	if !s.VerifySignature(orderID, paymentID, signature) {
		return WebhookResult{}, ErrInvalidSignature
	}

	var result WebhookResult
	if err := s.runTx(ctx, func(txCtx context.Context, tx pgx.Tx) error {
		userID, processed, err := s.orders.MarkPaid(txCtx, tx, orderID, paymentID)
		if err != nil {
			return err
		}
		if !processed {
			return nil
		}

		expiresAt, err := s.subscriptions.ApplyProPurchase(txCtx, tx, userID, s.cfg.ProDuration)
		if err != nil {
			return err
		}

		result = WebhookResult{
			Processed:    true,
			UserID:       userID,
			ProExpiresAt: expiresAt,
		}
		return nil
	}); err != nil {
		return WebhookResult{}, err
	}

	if result.Processed && s.events != nil {
		s.events.Emit(ctx, &result.UserID, "pro_activated", map[string]any{
			"order_id":       orderID,
			"pro_expires_at": result.ProExpiresAt.UTC().Format(time.RFC3339),
		})
	}

	return result, nil
}

// VerifySignature checks the gateway HMAC over "<order_id>|<payment_id>"
// with a constant-time compare. The dedicated webhook secret wins when both
// secrets are configured.
func (s *Service) VerifySignature(orderID, paymentID, signature string) bool {
	secret := s.cfg.WebhookSecret
	if secret == "" {
		secret = s.cfg.KeySecret
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(strings.TrimSpace(signature)))
}
