package handlers

import (
	"errors"
	"net/http"

	authsvc "github.com/Imamariya/mccuppidv1.01/internal/services/auth"
	moderationsvc "github.com/Imamariya/mccuppidv1.01/internal/services/moderation"
	"github.com/Imamariya/mccuppidv1.01/internal/transport/http/dto"
	httperrors "github.com/Imamariya/mccuppidv1.01/internal/transport/http/errors"
)

const maxSelfieUploadSize = 10 << 20 // 10 MiB

type VerificationHandler struct {
	service *moderationsvc.Service
}

func NewVerificationHandler(service *moderationsvc.Service) *VerificationHandler {
	return &VerificationHandler{service: service}
}

func (h *VerificationHandler) Submit(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "VERIFICATION_SERVICE_UNAVAILABLE", "verification service is unavailable")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxSelfieUploadSize)
	if err := r.ParseMultipartForm(maxSelfieUploadSize); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "file is required")
		return
	}
	defer file.Close()

	if header == nil || header.Size <= 0 {
		writeBadRequest(w, "VALIDATION_ERROR", "file is empty")
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	submissionID, err := h.service.SubmitSelfie(r.Context(), identity.UserID, file, header.Size, contentType)
	if err != nil {
		switch {
		case errors.Is(err, moderationsvc.ErrUnsupportedMedia):
			writeBadRequest(w, "UNSUPPORTED_MEDIA_TYPE", "selfie must be a jpeg, png or webp image")
		case errors.Is(err, moderationsvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "invalid verification request")
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to submit selfie")
		}
		return
	}

	httperrors.Write(w, http.StatusOK, dto.VerificationSubmitResponse{
		SubmissionID: submissionID,
		Status:       "pending",
	})
}

func (h *VerificationHandler) Status(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "VERIFICATION_SERVICE_UNAVAILABLE", "verification service is unavailable")
		return
	}

	status, err := h.service.GetStatus(r.Context(), identity.UserID)
	if err != nil {
		switch {
		case errors.Is(err, moderationsvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "invalid verification request")
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to load verification status")
		}
		return
	}

	httperrors.Write(w, http.StatusOK, dto.VerificationStatusResponse{
		Status:      string(status.Status),
		SubmittedAt: status.SubmittedAt,
		ReviewedAt:  status.ReviewedAt,
	})
}
