package dashboard

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/ledgerdesk/internal/nav"
	"github.com/odyssey-erp/ledgerdesk/internal/role"
	"github.com/odyssey-erp/ledgerdesk/internal/session"
)

type unauthorizedPage struct {
	Reason   string
	SignedIn bool
}

type loadingPage struct {
	Next string
}

type tenantNotFoundPage struct {
	Host string
}

type superadminPage struct {
	Groups []session.Group
	Error  string
}

type adminPage struct {
	Group    *session.Group
	Entities []session.Entity
	CanExit  bool
	Error    string
}

type userPage struct {
	Group    *session.Group
	Entity   *session.Entity
	Sections []nav.Item
	CanExit  bool
}

type sectionPage struct {
	Section nav.Section
	Tabs    []nav.Item
	Active  *nav.Item
}

func (h *Handler) index(w http.ResponseWriter, r *http.Request) {
	store, snap, res := h.resolve(r)
	switch res.State {
	case role.StateLoading:
		h.renderLoading(w, r, snap)
		return
	case role.StateError:
		h.renderUnauthorized(w, r, snap, res.Reason)
		return
	}

	switch res.Role {
	case session.RoleSuperAdmin:
		h.superadminHome(w, r, store, snap)
	case session.RoleAdmin:
		h.adminHome(w, r, store, snap)
	default:
		h.userHome(w, r, store, snap)
	}
}

func (h *Handler) superadminHome(w http.ResponseWriter, r *http.Request, store *session.Store, snap session.Snapshot) {
	page := superadminPage{}
	if api := h.contextAPI(r); api != nil {
		groups, err := api.ListGroups(r.Context())
		if err != nil {
			h.logger.Error("list groups", slog.Any("error", err))
			page.Error = "Groups could not be loaded. Try again shortly."
		}
		page.Groups = groups
	}
	data := h.baseData(r, "Groups", snap)
	data.Data = page
	h.render(w, http.StatusOK, "pages/dashboard_superadmin.html", data)
}

func (h *Handler) adminHome(w http.ResponseWriter, r *http.Request, store *session.Store, snap session.Snapshot) {
	page := adminPage{
		Group:   snap.Group,
		CanExit: snap.User.SystemRole == session.RoleSuperAdmin,
	}
	if snap.Group == nil {
		page.Error = "No group is attached to this account."
	} else if api := h.contextAPI(r); api != nil {
		entities, err := api.ListEntities(r.Context(), snap.Group.ID)
		if err != nil {
			h.logger.Error("list entities", slog.String("group", snap.Group.ID), slog.Any("error", err))
			page.Error = "Entities could not be loaded. Try again shortly."
		}
		page.Entities = entities
	}
	title := "Entities"
	if snap.Group != nil {
		title = snap.Group.Name
	}
	data := h.baseData(r, title, snap)
	data.Data = page
	h.render(w, http.StatusOK, "pages/dashboard_admin.html", data)
}

func (h *Handler) userHome(w http.ResponseWriter, r *http.Request, store *session.Store, snap session.Snapshot) {
	page := userPage{
		Group:    snap.Group,
		Entity:   snap.Entity,
		Sections: nav.Menu(store, r.URL.Path),
		CanExit:  snap.Entity != nil && snap.User.SystemRole != session.RoleUser,
	}
	title := "Home"
	if snap.Entity != nil {
		title = snap.Entity.Name
	}
	data := h.baseData(r, title, snap)
	data.Data = page
	h.render(w, http.StatusOK, "pages/dashboard_user.html", data)
}

// section renders a module shell with its visible tabs. The bare section
// path redirects to the first visible tab.
func (h *Handler) section(w http.ResponseWriter, r *http.Request) {
	sec, ok := nav.Lookup(chi.URLParam(r, "section"))
	if !ok {
		h.NotFound(w, r)
		return
	}
	store, snap, res := h.resolve(r)
	switch res.State {
	case role.StateLoading:
		h.renderLoading(w, r, snap)
		return
	case role.StateError:
		h.renderUnauthorized(w, r, snap, res.Reason)
		return
	}

	tabs := nav.Build(store, r.URL.Path, sec.Tabs)
	if len(tabs) == 0 {
		h.renderUnauthorized(w, r, snap, "missing permission")
		return
	}
	if strings.TrimRight(r.URL.Path, "/") == sec.Href() {
		http.Redirect(w, r, tabs[0].Href, http.StatusSeeOther)
		return
	}

	var active *nav.Item
	for i := range tabs {
		if tabs[i].Active {
			active = &tabs[i]
			break
		}
	}
	if active == nil {
		for _, t := range sec.Tabs {
			if nav.IsActive(r.URL.Path, t.Href) {
				h.renderUnauthorized(w, r, snap, "missing permission")
				return
			}
		}
		h.NotFound(w, r)
		return
	}

	data := h.baseData(r, active.Label, snap)
	data.Data = sectionPage{Section: sec, Tabs: tabs, Active: active}
	h.render(w, http.StatusOK, "pages/section.html", data)
}
