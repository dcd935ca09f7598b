package app

import (
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/odyssey-erp/ledgerdesk/internal/auth"
	"github.com/odyssey-erp/ledgerdesk/internal/dashboard"
	"github.com/odyssey-erp/ledgerdesk/internal/observability"
	rbachttp "github.com/odyssey-erp/ledgerdesk/internal/rbac/http"
	"github.com/odyssey-erp/ledgerdesk/internal/session"
	"github.com/odyssey-erp/ledgerdesk/internal/shared"
	"github.com/odyssey-erp/ledgerdesk/internal/tenant"
	"github.com/odyssey-erp/ledgerdesk/jobs"
	"github.com/odyssey-erp/ledgerdesk/web"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger             *slog.Logger
	Config             *Config
	SessionManager     *shared.SessionManager
	CSRFManager        *shared.CSRFManager
	Stores             *session.Registry
	Tenants            *tenant.Resolver
	AuthHandler        *auth.Handler
	DashboardHandler   *dashboard.Handler
	PermissionsHandler *rbachttp.PermissionsHandler
	JobHandler         *jobs.Handler
	Metrics            *observability.Metrics
}

// NewRouter constructs the chi.Router with portal defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	mwConfig := MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		CSRFManager:    params.CSRFManager,
		Metrics:        params.Metrics,
		Tenants:        params.Tenants,
		Stores:         params.Stores,
	}
	if params.DashboardHandler != nil {
		mwConfig.TenantNotFound = params.DashboardHandler.TenantNotFound
	}
	for _, mw := range MiddlewareStack(mwConfig) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/auth", params.AuthHandler.MountRoutes)
	if params.PermissionsHandler != nil {
		r.Route("/permissions", params.PermissionsHandler.MountRoutes)
	}
	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	staticFS, err := fs.Sub(web.Static, "static")
	if err != nil {
		params.Logger.Error("create static sub filesystem", slog.Any("error", err))
	} else {
		fileServer := http.StripPrefix("/static/", http.FileServer(http.FS(staticFS)))
		r.Handle("/static/*", staticCacheHandler(fileServer))
	}

	// Section routes are parameterised, so the dashboard goes last.
	if params.DashboardHandler != nil {
		params.DashboardHandler.MountRoutes(r)
		r.NotFound(params.DashboardHandler.NotFound)
	}

	return r
}

// staticCacheHandler wraps a file server with Cache-Control headers.
// Static assets are cached for 1 hour in browser.
func staticCacheHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=3600")
		next.ServeHTTP(w, r)
	})
}
