package dto

import "time"

type PurchaseCreateResponse struct {
	OrderID   string `json:"order_id"`
	AmountINR int    `json:"amount_inr"`
	KeyID     string `json:"key_id"`
}

type PurchaseWebhookRequest struct {
	OrderID   string `json:"order_id"`
	PaymentID string `json:"payment_id"`
	Signature string `json:"signature"`
}

type PurchaseWebhookResponse struct {
	OK        bool `json:"ok"`
	Processed bool `json:"processed"`
}

type EntitlementsResponse struct {
	Plan         string     `json:"plan"`
	ProActive    bool       `json:"pro_active"`
	ProExpiresAt *time.Time `json:"pro_expires_at,omitempty"`
}
