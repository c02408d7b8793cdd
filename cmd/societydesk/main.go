package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/societydesk/societydesk/internal/alerts"
	"github.com/societydesk/societydesk/internal/apartments"
	"github.com/societydesk/societydesk/internal/app"
	"github.com/societydesk/societydesk/internal/auth"
	"github.com/societydesk/societydesk/internal/authz"
	"github.com/societydesk/societydesk/internal/cms"
	"github.com/societydesk/societydesk/internal/documents"
	"github.com/societydesk/societydesk/internal/gate"
	"github.com/societydesk/societydesk/internal/guests"
	"github.com/societydesk/societydesk/internal/notify"
	"github.com/societydesk/societydesk/internal/observability"
	"github.com/societydesk/societydesk/internal/platform/cache"
	"github.com/societydesk/societydesk/internal/platform/db"
	"github.com/societydesk/societydesk/internal/principal"
	"github.com/societydesk/societydesk/internal/residents"
	"github.com/societydesk/societydesk/internal/subscriptions"
	"github.com/societydesk/societydesk/internal/token"
	"github.com/societydesk/societydesk/internal/vehicles"
	"github.com/societydesk/societydesk/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN, cfg.PGMaxConns)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	storage, err := documents.NewObjectStorage(ctx, documents.StorageConfig{
		Endpoint:  cfg.MinioEndpoint,
		AccessKey: cfg.MinioAccessKey,
		SecretKey: cfg.MinioSecretKey,
		Bucket:    cfg.MinioBucket,
		UseSSL:    cfg.MinioUseSSL,
	})
	if err != nil {
		logger.Error("connect object storage", slog.Any("error", err))
		os.Exit(1)
	}

	jobClient := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()

	codec := token.NewCodec(cfg.TokenSecrets())
	principalStore := principal.NewRepository(pool)
	principalResolver := principal.NewResolver(principalStore, logger)
	grantStore := authz.NewRepository(pool)
	authzResolver := authz.NewResolver(authz.DefaultTables())
	metrics := observability.NewMetrics()

	g := gate.New(codec, principalResolver, authzResolver, grantStore, app.PanelPrefixes(), logger)
	g.SetMetrics(metrics)

	otpStore := auth.NewOTPStore(redisClient, cfg.OTPTTL)
	authRepo := auth.NewRepository(pool)
	authService := auth.NewService(authRepo, codec, otpStore, auth.LogCodeSender{Logger: logger}, jobClient, cfg.ClientTokenCap, logger)
	authHandler := auth.NewHandler(logger, authService)

	notifyStore := notify.NewRepository(pool)
	notifyHandler := notify.NewHandler(logger, notifyStore)

	apartmentsHandler := apartments.NewHandler(logger, apartments.NewRepository(pool))
	residentsHandler := residents.NewHandler(logger, residents.NewRepository(pool))

	guestsService := guests.NewService(guests.NewRepository(pool), jobClient, logger)
	guestsHandler := guests.NewHandler(logger, guestsService)

	vehiclesHandler := vehicles.NewHandler(logger, vehicles.NewRepository(pool))

	alertsService := alerts.NewService(alerts.NewRepository(pool), notifyStore, jobClient, logger)
	alertsHandler := alerts.NewHandler(logger, alertsService)

	subscriptionsHandler := subscriptions.NewHandler(logger, subscriptions.NewRepository(pool))
	cmsHandler := cms.NewHandler(logger, cms.NewRepository(pool))
	documentsHandler := documents.NewHandler(logger, documents.NewRepository(pool), storage)

	router := app.NewRouter(app.RouterParams{
		Logger:               logger,
		Config:               cfg,
		Gate:                 g,
		AuthHandler:          authHandler,
		ApartmentsHandler:    apartmentsHandler,
		ResidentsHandler:     residentsHandler,
		GuestsHandler:        guestsHandler,
		VehiclesHandler:      vehiclesHandler,
		AlertsHandler:        alertsHandler,
		SubscriptionsHandler: subscriptionsHandler,
		CMSHandler:           cmsHandler,
		DocumentsHandler:     documentsHandler,
		NotifyHandler:        notifyHandler,
		Metrics:              metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
