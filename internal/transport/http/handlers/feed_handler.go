package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	authsvc "github.com/Imamariya/mccuppidv1.01/internal/services/auth"
	feedsvc "github.com/Imamariya/mccuppidv1.01/internal/services/feed"
	"github.com/Imamariya/mccuppidv1.01/internal/transport/http/dto"
	httperrors "github.com/Imamariya/mccuppidv1.01/internal/transport/http/errors"
)

type FeedHandler struct {
	service *feedsvc.Service
}

func NewFeedHandler(service *feedsvc.Service) *FeedHandler {
	return &FeedHandler{service: service}
}

func (h *FeedHandler) Handle(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "FEED_SERVICE_UNAVAILABLE", "feed service is unavailable")
		return
	}

	query := r.URL.Query()
	req := feedsvc.Request{
		Cursor:       strings.TrimSpace(query.Get("cursor")),
		Limit:        parseIntOrDefault(query.Get("limit"), 0),
		AgeMin:       parseOptionalInt(query.Get("min_age")),
		AgeMax:       parseOptionalInt(query.Get("max_age")),
		RadiusKM:     parseOptionalInt(query.Get("radius_km")),
		VerifiedOnly: parseOptionalBool(query.Get("verified_only")),
	}

	result, err := h.service.Get(r.Context(), identity.UserID, req)
	if err != nil {
		switch {
		case errors.Is(err, feedsvc.ErrInvalidCursor):
			writeBadRequest(w, "VALIDATION_ERROR", "invalid cursor")
		case errors.Is(err, feedsvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "invalid feed request")
		case errors.Is(err, feedsvc.ErrNotFound):
			writeNotFound(w, "PROFILE_NOT_FOUND", "viewer profile not found")
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to load feed")
		}
		return
	}

	items := make([]dto.FeedItemResponse, 0, len(result.Items))
	for _, item := range result.Items {
		items = append(items, dto.FeedItemResponse{
			UserID:      item.UserID,
			DisplayName: item.DisplayName,
			Age:         item.Age,
			City:        item.City,
			IsVerified:  item.IsVerified,
			DistanceKM:  item.DistanceKM,
		})
	}

	httperrors.Write(w, http.StatusOK, dto.FeedResponse{
		Items:      items,
		NextCursor: result.NextCursor,
	})
}

func parseIntOrDefault(raw string, fallback int) int {
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return fallback
	}
	return value
}

func parseOptionalInt(raw string) *int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return nil
	}
	return &value
}

func parseOptionalBool(raw string) *bool {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return nil
	}
	return &value
}
