package dashboard

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/odyssey-erp/ledgerdesk/internal/apiclient"
	"github.com/odyssey-erp/ledgerdesk/internal/role"
	"github.com/odyssey-erp/ledgerdesk/internal/session"
	"github.com/odyssey-erp/ledgerdesk/internal/shared"
)

type groupForm struct {
	GroupID string `validate:"required,max=64"`
}

type entityForm struct {
	EntityID string `validate:"required,max=64"`
}

// enterGroup lets a superadmin act as the admin of a group.
func (h *Handler) enterGroup(w http.ResponseWriter, r *http.Request) {
	store, snap, res := h.resolve(r)
	if !res.Is(session.RoleSuperAdmin) {
		h.renderUnauthorized(w, r, snap, "only superadmins can enter a group")
		return
	}
	form := groupForm{GroupID: r.PostFormValue("group_id")}
	if err := h.validator.Struct(form); err != nil {
		h.flashAndReturn(w, r, "danger", "Pick a group to continue.")
		return
	}
	api := h.contextAPI(r)
	if api == nil {
		h.flashAndReturn(w, r, "danger", "The accounting service is not reachable.")
		return
	}
	if err := api.SelectGroup(r.Context(), form.GroupID); err != nil {
		h.switchFailed(w, r, snap, "select group", err)
		return
	}
	h.refresh(w, r, store, "Group selected.")
}

// enterEntity narrows a superadmin or admin to one entity.
func (h *Handler) enterEntity(w http.ResponseWriter, r *http.Request) {
	store, snap, res := h.resolve(r)
	if !res.Is(session.RoleSuperAdmin) && !res.Is(session.RoleAdmin) {
		h.renderUnauthorized(w, r, snap, "only admins can enter an entity")
		return
	}
	form := entityForm{EntityID: r.PostFormValue("entity_id")}
	if err := h.validator.Struct(form); err != nil {
		h.flashAndReturn(w, r, "danger", "Pick an entity to continue.")
		return
	}
	api := h.contextAPI(r)
	if api == nil {
		h.flashAndReturn(w, r, "danger", "The accounting service is not reachable.")
		return
	}
	if err := api.SelectEntity(r.Context(), form.EntityID); err != nil {
		h.switchFailed(w, r, snap, "select entity", err)
		return
	}
	h.refresh(w, r, store, "Entity selected.")
}

// exitContext clears the innermost selection. Groups can only be left by
// accounts whose own role is SUPERADMIN.
func (h *Handler) exitContext(w http.ResponseWriter, r *http.Request) {
	store, snap, res := h.resolve(r)
	if res.State != role.StateReady {
		h.renderUnauthorized(w, r, snap, res.Reason)
		return
	}
	var level string
	switch {
	case snap.Entity != nil && snap.User.SystemRole != session.RoleUser:
		level = apiclient.LevelEntity
	case snap.Group != nil && snap.User.SystemRole == session.RoleSuperAdmin:
		level = apiclient.LevelGroup
	default:
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	api := h.contextAPI(r)
	if api == nil {
		h.flashAndReturn(w, r, "danger", "The accounting service is not reachable.")
		return
	}
	if err := api.ClearSelection(r.Context(), level); err != nil {
		h.switchFailed(w, r, snap, "clear selection", err)
		return
	}
	h.refresh(w, r, store, "")
}

// refresh refetches the session so the next render sees the new context.
func (h *Handler) refresh(w http.ResponseWriter, r *http.Request, store *session.Store, msg string) {
	if store != nil {
		store.Fetch(r.Context())
	}
	if msg != "" {
		shared.Flash(r.Context(), "success", msg)
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) switchFailed(w http.ResponseWriter, r *http.Request, snap session.Snapshot, op string, err error) {
	if errors.Is(err, apiclient.ErrUnauthorized) {
		h.renderUnauthorized(w, r, snap, "the accounting service refused the change")
		return
	}
	h.logger.Error("context switch failed", slog.String("op", op), slog.Any("error", err))
	h.flashAndReturn(w, r, "danger", "The context could not be changed. Try again shortly.")
}

func (h *Handler) flashAndReturn(w http.ResponseWriter, r *http.Request, kind, msg string) {
	shared.Flash(r.Context(), kind, msg)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
