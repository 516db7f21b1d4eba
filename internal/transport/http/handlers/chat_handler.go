package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	authsvc "github.com/Imamariya/mccuppidv1.01/internal/services/auth"
	chatsvc "github.com/Imamariya/mccuppidv1.01/internal/services/chat"
	"github.com/Imamariya/mccuppidv1.01/internal/transport/http/dto"
	httperrors "github.com/Imamariya/mccuppidv1.01/internal/transport/http/errors"
)

type ChatHandler struct {
	service *chatsvc.Service
}

func NewChatHandler(service *chatsvc.Service) *ChatHandler {
	return &ChatHandler{service: service}
}

func (h *ChatHandler) Send(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "CHAT_SERVICE_UNAVAILABLE", "chat service is unavailable")
		return
	}

	matchID := matchIDFromRequest(r)
	if matchID <= 0 {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid match id")
		return
	}

	var req dto.ChatSendRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}

	message, err := h.service.Send(r.Context(), matchID, identity.UserID, req.Content)
	if err != nil {
		h.writeChatError(w, err, "failed to send message")
		return
	}

	httperrors.Write(w, http.StatusOK, dto.ChatMessageResponse{
		ID:           message.ID,
		MatchID:      message.MatchID,
		SenderUserID: message.SenderUserID,
		Content:      message.Content,
		CreatedAt:    message.CreatedAt,
	})
}

func (h *ChatHandler) List(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "CHAT_SERVICE_UNAVAILABLE", "chat service is unavailable")
		return
	}

	matchID := matchIDFromRequest(r)
	if matchID <= 0 {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid match id")
		return
	}

	messages, err := h.service.List(r.Context(), matchID, identity.UserID, parseIntOrDefault(r.URL.Query().Get("limit"), 100))
	if err != nil {
		h.writeChatError(w, err, "failed to load messages")
		return
	}

	items := make([]dto.ChatMessageResponse, 0, len(messages))
	for _, message := range messages {
		items = append(items, dto.ChatMessageResponse{
			ID:           message.ID,
			MatchID:      message.MatchID,
			SenderUserID: message.SenderUserID,
			Content:      message.Content,
			CreatedAt:    message.CreatedAt,
		})
	}

	httperrors.Write(w, http.StatusOK, dto.ChatMessagesResponse{Items: items})
}

// Membership failures answer with the same payload as a missing match, so a
// caller cannot probe which match ids exist.
func (h *ChatHandler) writeChatError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, chatsvc.ErrValidation):
		writeBadRequest(w, "VALIDATION_ERROR", "invalid chat request")
	case errors.Is(err, chatsvc.ErrNotFound), errors.Is(err, chatsvc.ErrNotMember):
		writeNotFound(w, "MATCH_NOT_FOUND", "match not found")
	case errors.Is(err, chatsvc.ErrNotVerified):
		httperrors.Write(w, http.StatusForbidden, httperrors.APIError{
			Code:    "VERIFICATION_REQUIRED",
			Message: "both members must be verified to chat",
		})
	case errors.Is(err, chatsvc.ErrMessageLimit):
		writeLimitReached(w, "MESSAGE_LIMIT_REACHED", "free message limit reached for this match")
	default:
		writeInternal(w, "INTERNAL_ERROR", fallback)
	}
}

func matchIDFromRequest(r *http.Request) int64 {
	raw := chi.URLParam(r, "matchID")
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0
	}
	return value
}
