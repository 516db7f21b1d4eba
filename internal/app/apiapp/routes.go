package apiapp

import (
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Imamariya/mccuppidv1.01/internal/config"
	authsvc "github.com/Imamariya/mccuppidv1.01/internal/services/auth"
	chatsvc "github.com/Imamariya/mccuppidv1.01/internal/services/chat"
	entsvc "github.com/Imamariya/mccuppidv1.01/internal/services/entitlements"
	feedsvc "github.com/Imamariya/mccuppidv1.01/internal/services/feed"
	geosvc "github.com/Imamariya/mccuppidv1.01/internal/services/geo"
	matchessvc "github.com/Imamariya/mccuppidv1.01/internal/services/matches"
	modsvc "github.com/Imamariya/mccuppidv1.01/internal/services/moderation"
	paymentsvc "github.com/Imamariya/mccuppidv1.01/internal/services/payments"
	quotasvc "github.com/Imamariya/mccuppidv1.01/internal/services/quota"
	"github.com/Imamariya/mccuppidv1.01/internal/transport/http/handlers"
)

type Dependencies struct {
	JWTManager         *authsvc.JWTManager
	ChatService        *chatsvc.Service
	EntitlementService *entsvc.Service
	FeedService        *feedsvc.Service
	GeoService         *geosvc.Service
	MatchService       *matchessvc.Service
	ModerationService  *modsvc.Service
	PaymentService     *paymentsvc.Service
	QuotaService       *quotasvc.Service
	Logger             *zap.Logger
	Config             config.Config
}

func RegisterRoutes(r chi.Router, deps Dependencies) {
	healthHandler := handlers.NewHealthHandler()
	locationHandler := handlers.NewLocationHandler(deps.GeoService)
	quotaHandler := handlers.NewQuotaHandler(deps.QuotaService)
	feedHandler := handlers.NewFeedHandler(deps.FeedService)
	swipeHandler := handlers.NewSwipeHandler(deps.MatchService)
	matchesHandler := handlers.NewMatchesHandler(deps.MatchService)
	chatHandler := handlers.NewChatHandler(deps.ChatService)
	verificationHandler := handlers.NewVerificationHandler(deps.ModerationService)
	purchaseHandler := handlers.NewPurchaseHandler(deps.PaymentService, deps.EntitlementService)
	adminHandler := handlers.NewAdminHandler(deps.ModerationService)

	authMW := AuthMiddleware(deps.JWTManager, deps.Logger)
	moderatorRoleMW := RequireRole("MODERATOR", "ADMIN")

	r.Get("/healthz", healthHandler.Get)

	r.Route("/v1", func(r chi.Router) {
		r.With(authMW).Post("/profile/location", locationHandler.Handle)
		r.With(authMW).Get("/quota", quotaHandler.Handle)
		r.With(authMW).Get("/feed", feedHandler.Handle)
		r.With(authMW).Post("/swipe", swipeHandler.Handle)
		r.With(authMW).Get("/matches", matchesHandler.Handle)
		r.With(authMW).Post("/unmatch", matchesHandler.Unmatch)
		r.With(authMW).Post("/matches/{matchID}/messages", chatHandler.Send)
		r.With(authMW).Get("/matches/{matchID}/messages", chatHandler.List)
		r.With(authMW).Post("/verification/selfie", verificationHandler.Submit)
		r.With(authMW).Get("/verification/status", verificationHandler.Status)
		r.With(authMW).Post("/purchase/create", purchaseHandler.Create)
		r.Post("/purchase/webhook", purchaseHandler.Webhook)
		r.With(authMW).Get("/entitlements", purchaseHandler.Entitlements)
	})

	r.Route("/admin", func(r chi.Router) {
		r.With(authMW, moderatorRoleMW).Get("/verification/queue", adminHandler.VerificationQueue)
		r.With(authMW, moderatorRoleMW).Post("/verification/review", adminHandler.ReviewVerification)
	})
}
