package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/ledgerdesk/internal/authz"
	"github.com/odyssey-erp/ledgerdesk/internal/rbac"
	"github.com/odyssey-erp/ledgerdesk/internal/shared"
	"github.com/odyssey-erp/ledgerdesk/internal/view"
)

// PermissionsHandler lists the permission catalogue with the grants of the
// current session.
type PermissionsHandler struct {
	logger    *slog.Logger
	templates *view.Engine
	csrf      *shared.CSRFManager
	rbac      rbac.Middleware
}

// NewPermissionsHandler builds PermissionsHandler instance.
func NewPermissionsHandler(logger *slog.Logger, templates *view.Engine, csrf *shared.CSRFManager, mw rbac.Middleware) *PermissionsHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &PermissionsHandler{logger: logger, templates: templates, csrf: csrf, rbac: mw}
}

// MountRoutes registers permission routes.
func (h *PermissionsHandler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(authz.ByKey(authz.AdminPermissionsView)))
		r.Get("/", h.listPermissions)
	})
}

// Row is one catalogue line.
type Row struct {
	Section    string
	Key        authz.Key
	Permission authz.Permission
	Granted    bool
}

type listPage struct {
	Rows    []Row
	Granted int
}

// Catalogue pairs every registered permission with the checker's answer.
func Catalogue(c rbac.Checker) ([]Row, int) {
	perms := authz.All()
	rows := make([]Row, 0, len(perms))
	granted := 0
	for _, p := range perms {
		key, _ := authz.KeyOf(p)
		ok := rbac.Can(c, authz.ByKey(key))
		if ok {
			granted++
		}
		rows = append(rows, Row{Section: p.Section(), Key: key, Permission: p, Granted: ok})
	}
	return rows, granted
}

func (h *PermissionsHandler) listPermissions(w http.ResponseWriter, r *http.Request) {
	data := view.NewTemplateData(r, "Permissions", h.csrf)
	rows, granted := Catalogue(data.Checker)
	data.Data = listPage{Rows: rows, Granted: granted}
	if err := h.templates.Render(w, "pages/permissions.html", data); err != nil {
		h.logger.Error("render template", slog.Any("error", err))
	}
}
