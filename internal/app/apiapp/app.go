package apiapp

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/minio/minio-go/v7"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Imamariya/mccuppidv1.01/internal/config"
	s3infra "github.com/Imamariya/mccuppidv1.01/internal/infra/s3"
	"github.com/Imamariya/mccuppidv1.01/internal/jobs/cleanup"
	pgrepo "github.com/Imamariya/mccuppidv1.01/internal/repo/postgres"
	redrepo "github.com/Imamariya/mccuppidv1.01/internal/repo/redis"
	authsvc "github.com/Imamariya/mccuppidv1.01/internal/services/auth"
	chatsvc "github.com/Imamariya/mccuppidv1.01/internal/services/chat"
	entsvc "github.com/Imamariya/mccuppidv1.01/internal/services/entitlements"
	feedsvc "github.com/Imamariya/mccuppidv1.01/internal/services/feed"
	geosvc "github.com/Imamariya/mccuppidv1.01/internal/services/geo"
	matchessvc "github.com/Imamariya/mccuppidv1.01/internal/services/matches"
	modsvc "github.com/Imamariya/mccuppidv1.01/internal/services/moderation"
	notifsvc "github.com/Imamariya/mccuppidv1.01/internal/services/notifications"
	paymentsvc "github.com/Imamariya/mccuppidv1.01/internal/services/payments"
	quotasvc "github.com/Imamariya/mccuppidv1.01/internal/services/quota"
	ratesvc "github.com/Imamariya/mccuppidv1.01/internal/services/rate"
)

type App struct {
	cfg        config.Config
	logger     *zap.Logger
	server     *http.Server
	postgres   *pgxpool.Pool
	redis      *goredis.Client
	s3         *minio.Client
	cleaner    *cleanup.Job
	httpRouter http.Handler
}

func New(ctx context.Context, cfg config.Config, log *zap.Logger) (*App, error) {
	if log == nil {
		return nil, fmt.Errorf("logger is nil")
	}

	r := chi.NewRouter()
	ApplyMiddlewares(r, log)

	var pool *pgxpool.Pool
	if p, err := pgrepo.NewPool(ctx, cfg.Postgres.DSN); err != nil {
		log.Warn("postgres init failed, continuing in degraded mode", zap.Error(err))
	} else {
		pool = p
	}

	var redisClient *goredis.Client
	if c, err := redrepo.NewClient(ctx, redrepo.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}); err != nil {
		log.Warn("redis init failed, continuing in degraded mode", zap.Error(err))
	} else {
		redisClient = c
	}

	var s3Client *minio.Client
	if c, err := s3infra.NewClient(s3infra.Config{
		Endpoint:  cfg.S3.Endpoint,
		AccessKey: cfg.S3.AccessKey,
		SecretKey: cfg.S3.SecretKey,
		UseSSL:    cfg.S3.UseSSL,
	}); err != nil {
		log.Warn("s3 init failed, continuing in degraded mode", zap.Error(err))
	} else {
		s3Client = c
	}

	rateRepo := redrepo.NewRateRepo(redisClient)
	feedRepo := pgrepo.NewFeedRepo(pool)
	interactionRepo := pgrepo.NewInteractionRepo(pool)
	matchRepo := pgrepo.NewMatchRepo(pool)
	messageRepo := pgrepo.NewMessageRepo(pool)
	profileRepo := pgrepo.NewProfileRepo(pool)
	quotaRepo := pgrepo.NewQuotaRepo(pool)
	subscriptionRepo := pgrepo.NewSubscriptionRepo(pool)
	verificationRepo := pgrepo.NewVerificationRepo(pool)
	purchaseRepo := pgrepo.NewPurchaseRepo(pool)
	eventRepo := pgrepo.NewEventRepo(pool)

	jwtManager := authsvc.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTAccessTTL)
	notificationService := notifsvc.NewService(eventRepo, log)
	entitlementService := entsvc.NewService(subscriptionRepo)
	geoService := geosvc.NewService(cfg.Remote.Cities, profileRepo)
	feedService := feedsvc.NewService(feedRepo, feedsvc.Config{
		DefaultAgeMin:   cfg.Remote.Filters.AgeMin,
		DefaultAgeMax:   cfg.Remote.Filters.AgeMax,
		DefaultRadiusKM: cfg.Remote.Filters.RadiusDefaultKM,
		MaxRadiusKM:     cfg.Remote.Filters.RadiusMaxKM,
		PageSize:        cfg.Remote.Filters.FeedPageSize,
	})
	quotaService := quotasvc.NewService(quotaRepo, entitlementService, quotasvc.Config{
		FreeLikesPerDay:   cfg.Remote.Limits.FreeLikesPerDay,
		FreeMatchesPerDay: cfg.Remote.Limits.FreeMatchesPerDay,
	})
	rateLimiter := ratesvc.NewLimiter(
		rateRepo,
		cfg.Remote.Limits.ProRatePerMinute,
		cfg.Remote.Limits.ProRatePer10Seconds,
	)
	matchService := matchessvc.NewService(matchessvc.Dependencies{
		Pool:         pool,
		Interactions: interactionRepo,
		Matches:      matchRepo,
		Quotas:       quotaRepo,
		Entitlements: entitlementService,
		RateLimiter:  rateLimiter,
		Events:       notificationService,
	}, matchessvc.Config{
		FreeLikesPerDay:   cfg.Remote.Limits.FreeLikesPerDay,
		FreeMatchesPerDay: cfg.Remote.Limits.FreeMatchesPerDay,
	})
	chatService := chatsvc.NewService(chatsvc.Dependencies{
		Pool:         pool,
		Matches:      matchRepo,
		Messages:     messageRepo,
		Profiles:     profileRepo,
		Entitlements: entitlementService,
		Events:       notificationService,
	}, chatsvc.Config{
		FreeMessagesPerMatch: cfg.Remote.Limits.FreeMessagesPerMatch,
	})
	paymentService := paymentsvc.NewService(paymentsvc.Dependencies{
		Pool:          pool,
		Orders:        purchaseRepo,
		Subscriptions: subscriptionRepo,
		Events:        notificationService,
	}, paymentsvc.Config{
		KeyID:         cfg.Payments.KeyID,
		KeySecret:     cfg.Payments.KeySecret,
		WebhookSecret: cfg.Payments.WebhookSecret,
		ProPriceINR:   cfg.Payments.ProPriceINR,
		ProDuration:   cfg.Payments.ProDuration,
	})
	selfieStorage := modsvc.NewS3Storage(s3Client, cfg.S3.Bucket)
	if s3Client != nil {
		if err := selfieStorage.EnsureBucket(ctx); err != nil {
			log.Warn("selfie bucket check failed", zap.Error(err))
		}
	}
	moderationService := modsvc.NewService(modsvc.Dependencies{
		Pool:        pool,
		Selfies:     selfieStorage,
		Submissions: verificationRepo,
		Profiles:    profileRepo,
		Events:      notificationService,
	})

	cleaner := cleanup.NewJob(quotaRepo, eventRepo, log, cleanup.Config{
		Interval:       cfg.Cleanup.Interval,
		QuotaRetention: cfg.Cleanup.QuotaRetention,
		EventRetention: cfg.Cleanup.EventRetention,
	})

	server := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      r,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	RegisterRoutes(r, Dependencies{
		JWTManager:         jwtManager,
		ChatService:        chatService,
		EntitlementService: entitlementService,
		FeedService:        feedService,
		GeoService:         geoService,
		MatchService:       matchService,
		ModerationService:  moderationService,
		PaymentService:     paymentService,
		QuotaService:       quotaService,
		Logger:             log,
		Config:             cfg,
	})

	return &App{
		cfg:        cfg,
		logger:     log,
		server:     server,
		postgres:   pool,
		redis:      redisClient,
		s3:         s3Client,
		cleaner:    cleaner,
		httpRouter: r,
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	if a.cleaner != nil {
		a.cleaner.Start(ctx)
	}

	a.logger.Info("api server started", zap.String("addr", a.cfg.HTTP.Addr))
	err := a.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (a *App) Shutdown(ctx context.Context) error {
	var shutdownErr error

	if err := a.server.Shutdown(ctx); err != nil {
		shutdownErr = err
	}
	if a.cleaner != nil {
		a.cleaner.Stop()
	}
	if a.postgres != nil {
		a.postgres.Close()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil && shutdownErr == nil {
			shutdownErr = err
		}
	}

	return shutdownErr
}

func (a *App) Handler() http.Handler {
	return a.httpRouter
}
