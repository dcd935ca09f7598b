// Package dashboard renders the portal home for the effective role of the
// session and the permission-gated section shells.
package dashboard

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/odyssey-erp/ledgerdesk/internal/role"
	"github.com/odyssey-erp/ledgerdesk/internal/session"
	"github.com/odyssey-erp/ledgerdesk/internal/shared"
	"github.com/odyssey-erp/ledgerdesk/internal/tenant"
	"github.com/odyssey-erp/ledgerdesk/internal/view"
)

// ContextAPI is the slice of the remote API used to browse and switch the
// group and entity context.
type ContextAPI interface {
	ListGroups(ctx context.Context) ([]session.Group, error)
	ListEntities(ctx context.Context, groupID string) ([]session.Entity, error)
	SelectGroup(ctx context.Context, groupID string) error
	SelectEntity(ctx context.Context, entityID string) error
	ClearSelection(ctx context.Context, level string) error
}

// APIFactory binds the API to the access token of the browser session.
type APIFactory func(token string) ContextAPI

// Handler serves the dashboard routes.
type Handler struct {
	logger      *slog.Logger
	templates   *view.Engine
	csrf        *shared.CSRFManager
	api         APIFactory
	validator   *validator.Validate
	observe     func(role.Resolution)
	waitTimeout time.Duration
}

// Option customises a Handler.
type Option func(*Handler)

// WithResolutionObserver receives every resolution the dashboard renders.
func WithResolutionObserver(fn func(role.Resolution)) Option {
	return func(h *Handler) {
		h.observe = fn
	}
}

// WithWaitTimeout bounds how long /api/session?wait=1 blocks.
func WithWaitTimeout(d time.Duration) Option {
	return func(h *Handler) {
		if d > 0 {
			h.waitTimeout = d
		}
	}
}

// NewHandler constructs the dashboard handler.
func NewHandler(logger *slog.Logger, templates *view.Engine, csrf *shared.CSRFManager, api APIFactory, opts ...Option) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Handler{
		logger:      logger,
		templates:   templates,
		csrf:        csrf,
		api:         api,
		validator:   validator.New(),
		waitTimeout: 5 * time.Second,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// MountRoutes registers dashboard routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.index)
	r.Get("/api/session", h.sessionJSON)
	r.Route("/context", func(r chi.Router) {
		r.Use(shared.SensitiveLimiter())
		r.Post("/group", h.enterGroup)
		r.Post("/entity", h.enterEntity)
		r.Post("/exit", h.exitContext)
	})
	r.Get("/{section}", h.section)
	r.Get("/{section}/*", h.section)
}

// resolve reads the request's store and runs the role resolver over it.
func (h *Handler) resolve(r *http.Request) (*session.Store, session.Snapshot, role.Resolution) {
	store := session.StoreFromContext(r.Context())
	var snap session.Snapshot
	if store != nil {
		snap = store.Snapshot()
	}
	res := role.ResolveSnapshot(snap)
	if h.observe != nil {
		h.observe(res)
	}
	if res.Anomalous {
		h.logger.Warn("user role holds a group or entity selection",
			slog.String("user", userID(snap)),
			slog.String("reason", res.Reason))
	}
	return store, snap, res
}

func userID(snap session.Snapshot) string {
	if snap.User == nil {
		return ""
	}
	return snap.User.ID
}

// baseData builds the shared page fields. snap is the snapshot the
// resolution was computed from so the page never mixes two snapshots.
func (h *Handler) baseData(r *http.Request, title string, snap session.Snapshot) view.TemplateData {
	data := view.NewTemplateData(r, title, h.csrf)
	data.Session = snap
	return data
}

func (h *Handler) render(w http.ResponseWriter, status int, name string, data view.TemplateData) {
	if err := h.templates.RenderStatus(w, status, name, data); err != nil {
		h.logger.Error("render dashboard", slog.String("template", name), slog.Any("error", err))
	}
}

func (h *Handler) renderUnauthorized(w http.ResponseWriter, r *http.Request, snap session.Snapshot, reason string) {
	data := h.baseData(r, "Not authorized", snap)
	data.Data = unauthorizedPage{Reason: reason, SignedIn: snap.User != nil}
	h.render(w, http.StatusForbidden, "pages/unauthorized.html", data)
}

func (h *Handler) renderLoading(w http.ResponseWriter, r *http.Request, snap session.Snapshot) {
	data := h.baseData(r, "Loading", snap)
	data.Data = loadingPage{Next: r.URL.RequestURI()}
	h.render(w, http.StatusOK, "pages/loading.html", data)
}

// Denied renders the unauthorized page for the request's session. It is
// the rbac middleware's denial handler.
func (h *Handler) Denied(w http.ResponseWriter, r *http.Request) {
	h.renderUnauthorized(w, r, currentSnapshot(r), "missing permission")
}

// Pending renders the loading page for a session that has not settled. It
// is the rbac middleware's handler for loading stores.
func (h *Handler) Pending(w http.ResponseWriter, r *http.Request) {
	h.renderLoading(w, r, currentSnapshot(r))
}

func currentSnapshot(r *http.Request) session.Snapshot {
	if store := session.StoreFromContext(r.Context()); store != nil {
		return store.Snapshot()
	}
	return session.Snapshot{}
}

// NotFound renders the not-found page.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	data := h.baseData(r, "Not found", currentSnapshot(r))
	h.render(w, http.StatusNotFound, "pages/not_found.html", data)
}

// TenantNotFound renders the page for unknown subdomains.
func (h *Handler) TenantNotFound(w http.ResponseWriter, r *http.Request) {
	data := view.TemplateData{
		Title:       "Unknown workspace",
		CurrentPath: r.URL.Path,
		Tenant:      tenant.Default(),
		Data:        tenantNotFoundPage{Host: r.Host},
	}
	h.render(w, http.StatusNotFound, "pages/tenant_not_found.html", data)
}

func (h *Handler) contextAPI(r *http.Request) ContextAPI {
	if h.api == nil {
		return nil
	}
	return h.api(shared.SessionFromContext(r.Context()).APIToken())
}
