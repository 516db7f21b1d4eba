package handlers

import (
	"errors"
	"net/http"
	"strings"

	authsvc "github.com/Imamariya/mccuppidv1.01/internal/services/auth"
	matchessvc "github.com/Imamariya/mccuppidv1.01/internal/services/matches"
	"github.com/Imamariya/mccuppidv1.01/internal/transport/http/dto"
	httperrors "github.com/Imamariya/mccuppidv1.01/internal/transport/http/errors"
)

type SwipeHandler struct {
	service *matchessvc.Service
}

func NewSwipeHandler(service *matchessvc.Service) *SwipeHandler {
	return &SwipeHandler{service: service}
}

func (h *SwipeHandler) Handle(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "SWIPE_SERVICE_UNAVAILABLE", "swipe service is unavailable")
		return
	}

	var req dto.SwipeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}
	if req.TargetID <= 0 || strings.TrimSpace(req.Action) == "" {
		writeBadRequest(w, "VALIDATION_ERROR", "target_id and action are required")
		return
	}

	action := strings.ToLower(strings.TrimSpace(req.Action))
	switch action {
	case "like", "super_like":
		h.like(w, r, identity.UserID, req.TargetID, action == "super_like")
	case "reject":
		h.reject(w, r, identity.UserID, req.TargetID)
	default:
		writeBadRequest(w, "VALIDATION_ERROR", "unsupported action")
	}
}

func (h *SwipeHandler) like(w http.ResponseWriter, r *http.Request, userID, targetID int64, super bool) {
	result, err := h.service.Like(r.Context(), userID, targetID, super)
	if err != nil {
		switch {
		case errors.Is(err, matchessvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "invalid swipe request")
		case errors.Is(err, matchessvc.ErrDailyLikeLimit):
			writeLimitReached(w, "LIKE_LIMIT_REACHED", "daily likes limit reached")
		case errors.Is(err, matchessvc.ErrDailyMatchLimit):
			writeLimitReached(w, "MATCH_LIMIT_REACHED", "daily matches limit reached")
		default:
			if tf, ok := matchessvc.IsTooFast(err); ok {
				httperrors.Write(w, http.StatusTooManyRequests, httperrors.RateLimitError{
					Code:          "TOO_FAST",
					Message:       "too many like actions, slow down",
					RetryAfterSec: tf.RetryAfter(),
				})
				return
			}
			writeInternal(w, "INTERNAL_ERROR", "failed to process swipe")
		}
		return
	}

	httperrors.Write(w, http.StatusOK, dto.SwipeResponse{
		OK:           true,
		MatchCreated: result.MatchCreated,
		MatchID:      result.MatchID,
	})
}

func (h *SwipeHandler) reject(w http.ResponseWriter, r *http.Request, userID, targetID int64) {
	if err := h.service.Reject(r.Context(), userID, targetID); err != nil {
		switch {
		case errors.Is(err, matchessvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "invalid swipe request")
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to process swipe")
		}
		return
	}

	httperrors.Write(w, http.StatusOK, dto.SwipeResponse{OK: true})
}
