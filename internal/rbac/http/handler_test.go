package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/ledgerdesk/internal/authz"
	"github.com/odyssey-erp/ledgerdesk/internal/rbac"
	"github.com/odyssey-erp/ledgerdesk/internal/session"
	_ "github.com/odyssey-erp/ledgerdesk/internal/testing/guard"
	"github.com/odyssey-erp/ledgerdesk/internal/view"
)

func storeWith(perms ...string) *session.Store {
	store := session.NewStore(session.SourceFunc(func(ctx context.Context) (session.Payload, error) {
		return session.Payload{User: &session.User{ID: "1", Name: "Ada", SystemRole: session.RoleAdmin, Permissions: perms}}, nil
	}))
	store.Fetch(context.Background())
	return store
}

func TestCatalogueMarksGrants(t *testing.T) {
	rows, granted := Catalogue(storeWith("sales:customers:view", "reports:trial-balance:view"))
	assert.Len(t, rows, len(authz.All()))
	assert.Equal(t, 2, granted)
	for _, row := range rows {
		want := row.Permission == "sales:customers:view" || row.Permission == "reports:trial-balance:view"
		assert.Equal(t, want, row.Granted, row.Permission)
		assert.Equal(t, row.Permission.Section(), row.Section)
	}

	_, granted = Catalogue(nil)
	assert.Zero(t, granted)
}

func TestPermissionsRouteIsGated(t *testing.T) {
	engine, err := view.NewEngine()
	require.NoError(t, err)
	h := NewPermissionsHandler(nil, engine, nil, rbac.Middleware{})
	r := chi.NewRouter()
	r.Route("/permissions", h.MountRoutes)

	serve := func(store *session.Store) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/permissions", nil)
		req = req.WithContext(session.ContextWithStore(req.Context(), store))
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)
		return rr
	}

	rr := serve(storeWith("sales:customers:view"))
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = serve(storeWith("admin:permissions:view", "sales:customers:view"))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "SALES_CUSTOMERS_VIEW")
	assert.Contains(t, rr.Body.String(), "2 of")
}
