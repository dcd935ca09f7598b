package dashboard

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/odyssey-erp/ledgerdesk/internal/platform/httpx"
	"github.com/odyssey-erp/ledgerdesk/internal/role"
	"github.com/odyssey-erp/ledgerdesk/internal/session"
)

type sessionResponse struct {
	Loading     bool            `json:"loading"`
	User        *session.User   `json:"user"`
	Group       *session.Group  `json:"group"`
	Entity      *session.Entity `json:"entity"`
	State       role.State      `json:"state"`
	Role        session.Role    `json:"role,omitempty"`
	Anomalous   bool            `json:"anomalous,omitempty"`
	Reason      string          `json:"reason,omitempty"`
	FetchedAt   *time.Time      `json:"fetchedAt,omitempty"`
	Permissions []string        `json:"permissions"`
}

// sessionJSON serves the snapshot and its resolution for client scripts.
// With ?wait=1 a loading store is awaited for a bounded time.
func (h *Handler) sessionJSON(w http.ResponseWriter, r *http.Request) {
	store := session.StoreFromContext(r.Context())
	if store == nil {
		httpx.RespondError(w, fmt.Errorf("no session: %w", httpx.ErrUnauthorized))
		return
	}
	if r.URL.Query().Get("wait") == "1" && store.Loading() {
		ctx, cancel := context.WithTimeout(r.Context(), h.waitTimeout)
		_, _ = store.Wait(ctx)
		cancel()
	}
	snap := store.Snapshot()
	res := role.ResolveSnapshot(snap)

	body := sessionResponse{
		Loading:     snap.Loading,
		User:        snap.User,
		Group:       snap.Group,
		Entity:      snap.Entity,
		State:       res.State,
		Role:        res.Role,
		Anomalous:   res.Anomalous,
		Reason:      res.Reason,
		Permissions: []string{},
	}
	if !snap.FetchedAt.IsZero() {
		at := snap.FetchedAt
		body.FetchedAt = &at
	}
	if snap.Loading {
		// The previous user lingers during a refetch; it is not authoritative.
		body.User, body.Group, body.Entity = nil, nil, nil
	} else if snap.User != nil {
		body.Permissions = append(body.Permissions, snap.User.Permissions...)
	}
	w.Header().Set("Cache-Control", "no-store")
	httpx.JSON(w, http.StatusOK, body)
}
