package rbac

import (
	"log/slog"
	"net/http"

	"github.com/odyssey-erp/ledgerdesk/internal/authz"
	"github.com/odyssey-erp/ledgerdesk/internal/session"
)

// Middleware wires RBAC authorization helpers for HTTP handlers. Grants are
// read from the session store attached to the request.
type Middleware struct {
	Logger *slog.Logger
	// Denied renders the response for refused requests. Defaults to a bare 403.
	Denied http.HandlerFunc
	// Pending renders the response while the session is still loading.
	// Defaults to a bare 503 with Retry-After.
	Pending http.HandlerFunc
}

// RequireAny ensures the current session has at least one of the required permissions.
func (m Middleware) RequireAny(refs ...authz.Ref) func(http.Handler) http.Handler {
	normalized := normalizeRefs(refs)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(normalized) == 0 {
				next.ServeHTTP(w, r)
				return
			}
			store, state := m.currentStore(r)
			switch state {
			case storeLoading:
				m.pending(w, r)
				return
			case storeAnonymous:
				m.deny(w, r, "no session")
				return
			}
			if CanAny(store, normalized...) {
				next.ServeHTTP(w, r)
				return
			}
			m.deny(w, r, "missing any")
		})
	}
}

// RequireAll ensures the current session has all required permissions.
func (m Middleware) RequireAll(refs ...authz.Ref) func(http.Handler) http.Handler {
	normalized := normalizeRefs(refs)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(normalized) == 0 {
				next.ServeHTTP(w, r)
				return
			}
			store, state := m.currentStore(r)
			switch state {
			case storeLoading:
				m.pending(w, r)
				return
			case storeAnonymous:
				m.deny(w, r, "no session")
				return
			}
			if CanAll(store, normalized...) {
				next.ServeHTTP(w, r)
				return
			}
			m.deny(w, r, "missing all")
		})
	}
}

type storeState int

const (
	storeReady storeState = iota
	storeLoading
	storeAnonymous
)

// currentStore classifies the request's store. Loading is checked first so a
// background refresh never reads as signed out.
func (m Middleware) currentStore(r *http.Request) (*session.Store, storeState) {
	store := session.StoreFromContext(r.Context())
	if store == nil {
		return nil, storeAnonymous
	}
	snap := store.Snapshot()
	if snap.Loading {
		return store, storeLoading
	}
	if !snap.Authenticated() {
		return nil, storeAnonymous
	}
	return store, storeReady
}

func (m Middleware) pending(w http.ResponseWriter, r *http.Request) {
	if m.Pending != nil {
		m.Pending(w, r)
		return
	}
	w.Header().Set("Retry-After", "1")
	http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
}

func (m Middleware) deny(w http.ResponseWriter, r *http.Request, reason string) {
	if m.Logger != nil {
		m.Logger.Debug("rbac denied", slog.String("path", r.URL.Path), slog.String("reason", reason))
	}
	if m.Denied != nil {
		m.Denied(w, r)
		return
	}
	http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
}

func normalizeRefs(refs []authz.Ref) []authz.Ref {
	seen := make(map[authz.Permission]struct{}, len(refs))
	normalized := make([]authz.Ref, 0, len(refs))
	for _, ref := range refs {
		perm := ref.Permission()
		if perm == "" {
			continue
		}
		if _, ok := seen[perm]; ok {
			continue
		}
		seen[perm] = struct{}{}
		normalized = append(normalized, authz.ByString(string(perm)))
	}
	return normalized
}
