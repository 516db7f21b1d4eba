package handlers

import (
	"errors"
	"net/http"
	"time"

	authsvc "github.com/Imamariya/mccuppidv1.01/internal/services/auth"
	quotasvc "github.com/Imamariya/mccuppidv1.01/internal/services/quota"
	httperrors "github.com/Imamariya/mccuppidv1.01/internal/transport/http/errors"
)

type QuotaHandler struct {
	service *quotasvc.Service
}

type quotaResponsePayload struct {
	Plan        string    `json:"plan"`
	Unlimited   bool      `json:"unlimited"`
	LikesUsed   int       `json:"likes_used"`
	LikesLeft   int       `json:"likes_left"`
	MatchesUsed int       `json:"matches_used"`
	MatchesLeft int       `json:"matches_left"`
	ResetAt     time.Time `json:"reset_at"`
}

func NewQuotaHandler(service *quotasvc.Service) *QuotaHandler {
	return &QuotaHandler{service: service}
}

func (h *QuotaHandler) Handle(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "QUOTA_SERVICE_UNAVAILABLE", "quota service is unavailable")
		return
	}

	snapshot, err := h.service.GetSnapshot(r.Context(), identity.UserID)
	if err != nil {
		switch {
		case errors.Is(err, quotasvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "invalid quota request")
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to load quota")
		}
		return
	}

	httperrors.Write(w, http.StatusOK, mapQuotaSnapshot(snapshot))
}

func mapQuotaSnapshot(snapshot quotasvc.Snapshot) quotaResponsePayload {
	return quotaResponsePayload{
		Plan:        string(snapshot.Plan),
		Unlimited:   snapshot.Unlimited,
		LikesUsed:   snapshot.LikesUsed,
		LikesLeft:   snapshot.LikesLeft,
		MatchesUsed: snapshot.MatchesUsed,
		MatchesLeft: snapshot.MatchesLeft,
		ResetAt:     snapshot.ResetAt.UTC(),
	}
}
