package handlers

import (
	"errors"
	"net/http"

	authsvc "github.com/Imamariya/mccuppidv1.01/internal/services/auth"
	entsvc "github.com/Imamariya/mccuppidv1.01/internal/services/entitlements"
	paymentsvc "github.com/Imamariya/mccuppidv1.01/internal/services/payments"
	"github.com/Imamariya/mccuppidv1.01/internal/transport/http/dto"
	httperrors "github.com/Imamariya/mccuppidv1.01/internal/transport/http/errors"
)

type PurchaseHandler struct {
	payments     *paymentsvc.Service
	entitlements *entsvc.Service
}

func NewPurchaseHandler(payments *paymentsvc.Service, entitlements *entsvc.Service) *PurchaseHandler {
	return &PurchaseHandler{
		payments:     payments,
		entitlements: entitlements,
	}
}

func (h *PurchaseHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.payments == nil {
		writeInternal(w, "PAYMENTS_SERVICE_UNAVAILABLE", "payments service is unavailable")
		return
	}

	order, err := h.payments.CreateOrder(r.Context(), identity.UserID)
	if err != nil {
		switch {
		case errors.Is(err, paymentsvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "invalid purchase request")
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to create order")
		}
		return
	}

	httperrors.Write(w, http.StatusOK, dto.PurchaseCreateResponse{
		OrderID:   order.OrderID,
		AmountINR: order.AmountINR,
		KeyID:     order.KeyID,
	})
}

// Webhook is called by the payment gateway, not the client, so it carries no
// bearer token. The HMAC signature is the authentication.
func (h *PurchaseHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	if h.payments == nil {
		writeInternal(w, "PAYMENTS_SERVICE_UNAVAILABLE", "payments service is unavailable")
		return
	}

	var req dto.PurchaseWebhookRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}

	result, err := h.payments.HandleWebhook(r.Context(), req.OrderID, req.PaymentID, req.Signature)
	if err != nil {
		switch {
		case errors.Is(err, paymentsvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "invalid webhook payload")
		case errors.Is(err, paymentsvc.ErrInvalidSignature):
			writeUnauthorized(w, "INVALID_SIGNATURE", "payment signature verification failed")
		case errors.Is(err, paymentsvc.ErrOrderNotFound):
			writeNotFound(w, "ORDER_NOT_FOUND", "order not found")
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to process webhook")
		}
		return
	}

	httperrors.Write(w, http.StatusOK, dto.PurchaseWebhookResponse{
		OK:        true,
		Processed: result.Processed,
	})
}

func (h *PurchaseHandler) Entitlements(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.entitlements == nil {
		writeInternal(w, "ENTITLEMENTS_SERVICE_UNAVAILABLE", "entitlements service is unavailable")
		return
	}

	entitlement, err := h.entitlements.Resolve(r.Context(), identity.UserID)
	if err != nil {
		switch {
		case errors.Is(err, entsvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "invalid entitlements request")
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to load entitlements")
		}
		return
	}

	httperrors.Write(w, http.StatusOK, dto.EntitlementsResponse{
		Plan:         string(entitlement.Plan),
		ProActive:    entitlement.ProActive,
		ProExpiresAt: entitlement.ProExpiresAt,
	})
}
