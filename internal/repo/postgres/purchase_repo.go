package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrOrderNotFound = errors.New("purchase order not found")

type PurchaseRepo struct {
	pool *pgxpool.Pool
}

func NewPurchaseRepo(pool *pgxpool.Pool) *PurchaseRepo {
	return &PurchaseRepo{pool: pool}
}

type OrderRecord struct {
	OrderID   string
	UserID    int64
	AmountINR int
	Status    string
	PaymentID string
	CreatedAt time.Time
}

func (r *PurchaseRepo) CreateOrder(ctx context.Context, orderID string, userID int64, amountINR int) error {
	if orderID == "" || userID <= 0 || amountINR <= 0 {
		return fmt.Errorf("invalid order payload")
	}
	if r.pool == nil {
		return nil
	}

	if _, err := r.pool.Exec(ctx, `
INSERT INTO purchase_orders (
	order_id,
	user_id,
	amount_inr,
	status,
	created_at
) VALUES ($1, $2, $3, 'created', NOW())
`, orderID, userID, amountINR); err != nil {
		return fmt.Errorf("create purchase order: %w", err)
	}

	return nil
}

func (r *PurchaseRepo) GetOrder(ctx context.Context, orderID string) (OrderRecord, error) {
	if orderID == "" {
		return OrderRecord{}, fmt.Errorf("invalid order id")
	}
	if r.pool == nil {
		return OrderRecord{}, ErrOrderNotFound
	}

	var rec OrderRecord
	err := r.pool.QueryRow(ctx, `
SELECT order_id, user_id, amount_inr, status, COALESCE(payment_id, ''), created_at
FROM purchase_orders
WHERE order_id = $1
LIMIT 1
`, orderID).Scan(&rec.OrderID, &rec.UserID, &rec.AmountINR, &rec.Status, &rec.PaymentID, &rec.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return OrderRecord{}, ErrOrderNotFound
		}
		return OrderRecord{}, fmt.Errorf("get purchase order: %w", err)
	}

	return rec, nil
}

// MarkPaid flips a created order to paid exactly once. A replayed webhook
// finds no created row and reports false, which the caller treats as an
// already-processed event.
func (r *PurchaseRepo) MarkPaid(ctx context.Context, tx pgx.Tx, orderID, paymentID string) (int64, bool, error) {
	if orderID == "" || paymentID == "" {
		return 0, false, fmt.Errorf("invalid payment payload")
	}
	if tx == nil {
		return 0, false, fmt.Errorf("transaction is required")
	}

	var userID int64
	err := tx.QueryRow(ctx, `
UPDATE purchase_orders
SET
	status = 'paid',
	payment_id = $2,
	paid_at = NOW()
WHERE order_id = $1 AND status = 'created'
RETURNING user_id
`, orderID, paymentID).Scan(&userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("mark purchase order paid: %w", err)
	}

	return userID, true, nil
}
