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

	"github.com/odyssey-erp/ledgerdesk/internal/apiclient"
	"github.com/odyssey-erp/ledgerdesk/internal/app"
	"github.com/odyssey-erp/ledgerdesk/internal/auth"
	"github.com/odyssey-erp/ledgerdesk/internal/dashboard"
	"github.com/odyssey-erp/ledgerdesk/internal/observability"
	"github.com/odyssey-erp/ledgerdesk/internal/platform/cache"
	"github.com/odyssey-erp/ledgerdesk/internal/rbac"
	rbachttp "github.com/odyssey-erp/ledgerdesk/internal/rbac/http"
	"github.com/odyssey-erp/ledgerdesk/internal/session"
	"github.com/odyssey-erp/ledgerdesk/internal/shared"
	"github.com/odyssey-erp/ledgerdesk/internal/tenant"
	"github.com/odyssey-erp/ledgerdesk/internal/view"
	"github.com/odyssey-erp/ledgerdesk/jobs"
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

	redisClient, err := cache.New(ctx, cfg.RedisOptions())
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	api, err := apiclient.New(cfg.APIBaseURL, cfg.APITimeout, apiclient.WithLogger(logger))
	if err != nil {
		logger.Error("init api client", slog.Any("error", err))
		os.Exit(1)
	}

	metrics := observability.NewMetrics()

	stores, err := session.NewRegistry(cfg.SessionRegistrySize, api.SourceFactory(),
		session.WithLogger(logger),
		session.WithObserver(metrics.ObserveSessionFetch),
	)
	if err != nil {
		logger.Error("init session registry", slog.Any("error", err))
		os.Exit(1)
	}
	tenants := tenant.NewResolver(redisClient, api, cfg.TenantCacheTTL,
		tenant.WithLogger(logger),
		tenant.WithObserver(metrics.ObserveTenantLookup),
	)

	sessionManager := shared.NewSessionManager(redisClient, "ledgerdesk_session", cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)

	templates, err := view.NewEngine()
	if err != nil {
		logger.Error("parse templates", slog.Any("error", err))
		os.Exit(1)
	}

	authHandler := auth.NewHandler(logger, auth.NewService(api), templates, sessionManager, csrfManager, stores)
	dashboardHandler := dashboard.NewHandler(logger, templates, csrfManager,
		func(token string) dashboard.ContextAPI { return api.ForToken(token) },
		dashboard.WithResolutionObserver(metrics.ObserveResolution),
	)
	rbacMiddleware := rbac.Middleware{Logger: logger, Denied: dashboardHandler.Denied, Pending: dashboardHandler.Pending}
	permissionsHandler := rbachttp.NewPermissionsHandler(logger, templates, csrfManager, rbacMiddleware)

	redisOpts := cfg.QueueRedis()
	inspector := asynq.NewInspector(redisOpts)
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	if len(cfg.TenantWarmSubdomains) > 0 {
		enqueueWarm(ctx, redisOpts, cfg.TenantWarmSubdomains, logger)
	}

	router := app.NewRouter(app.RouterParams{
		Logger:             logger,
		Config:             cfg,
		SessionManager:     sessionManager,
		CSRFManager:        csrfManager,
		Stores:             stores,
		Tenants:            tenants,
		AuthHandler:        authHandler,
		DashboardHandler:   dashboardHandler,
		PermissionsHandler: permissionsHandler,
		JobHandler:         jobHandler,
		Metrics:            metrics,
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

// enqueueWarm asks the worker to prime the tenant cache. Failure only costs
// a slower first request per tenant.
func enqueueWarm(ctx context.Context, opts asynq.RedisClientOpt, subdomains []string, logger *slog.Logger) {
	client, err := jobs.NewClient(opts)
	if err != nil {
		logger.Warn("init job client", slog.Any("error", err))
		return
	}
	defer func() {
		if err := client.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()
	info, err := client.EnqueueTenantWarm(ctx, subdomains)
	if err != nil {
		logger.Warn("enqueue tenant warm", slog.Any("error", err))
		return
	}
	logger.Info("tenant warm enqueued", slog.String("task_id", info.ID), slog.Int("tenants", len(subdomains)))
}
