package handlers

import (
	"errors"
	"net/http"

	moderationsvc "github.com/Imamariya/mccuppidv1.01/internal/services/moderation"
	"github.com/Imamariya/mccuppidv1.01/internal/transport/http/dto"
	httperrors "github.com/Imamariya/mccuppidv1.01/internal/transport/http/errors"
)

// AdminHandler serves the moderator review surface. Role checks live in the
// router middleware, not here.
type AdminHandler struct {
	moderation *moderationsvc.Service
}

func NewAdminHandler(moderation *moderationsvc.Service) *AdminHandler {
	return &AdminHandler{moderation: moderation}
}

func (h *AdminHandler) VerificationQueue(w http.ResponseWriter, r *http.Request) {
	if h.moderation == nil {
		writeInternal(w, "MODERATION_SERVICE_UNAVAILABLE", "moderation service is unavailable")
		return
	}

	items, err := h.moderation.PendingQueue(r.Context(), parseIntOrDefault(r.URL.Query().Get("limit"), 50))
	if err != nil {
		writeInternal(w, "INTERNAL_ERROR", "failed to load verification queue")
		return
	}

	responseItems := make([]dto.ModerationQueueItemResponse, 0, len(items))
	for _, item := range items {
		responseItems = append(responseItems, dto.ModerationQueueItemResponse{
			SubmissionID: item.SubmissionID,
			UserID:       item.UserID,
			SelfieURL:    item.SelfieURL,
			SubmittedAt:  item.SubmittedAt,
		})
	}

	httperrors.Write(w, http.StatusOK, dto.ModerationQueueResponse{Items: responseItems})
}

func (h *AdminHandler) ReviewVerification(w http.ResponseWriter, r *http.Request) {
	if h.moderation == nil {
		writeInternal(w, "MODERATION_SERVICE_UNAVAILABLE", "moderation service is unavailable")
		return
	}

	var req dto.ModerationReviewRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}

	if err := h.moderation.Review(r.Context(), req.SubmissionID, req.Approve); err != nil {
		switch {
		case errors.Is(err, moderationsvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "invalid review request")
		case errors.Is(err, moderationsvc.ErrNotFound):
			writeNotFound(w, "SUBMISSION_NOT_FOUND", "submission not found")
		case errors.Is(err, moderationsvc.ErrAlreadyReviewed):
			httperrors.Write(w, http.StatusConflict, httperrors.APIError{
				Code:    "ALREADY_REVIEWED",
				Message: "submission has already been reviewed",
			})
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to review submission")
		}
		return
	}

	httperrors.Write(w, http.StatusOK, dto.ModerationReviewResponse{OK: true})
}
