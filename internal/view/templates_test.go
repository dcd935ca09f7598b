package view

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/ledgerdesk/internal/authz"
	"github.com/odyssey-erp/ledgerdesk/internal/nav"
	"github.com/odyssey-erp/ledgerdesk/internal/session"
	"github.com/odyssey-erp/ledgerdesk/internal/tenant"
)

type grants map[authz.Permission]bool

func (g grants) HasPermission(p authz.Permission) bool { return g[p] }

func TestNewEngine(t *testing.T) {
	engine, err := NewEngine()
	assert.NoError(t, err, "Templates should parse without error")
	assert.NotNil(t, engine)
}

func TestRenderGatesByPermission(t *testing.T) {
	engine, err := NewEngine()
	require.NoError(t, err)

	sec, ok := nav.Lookup("sales")
	require.True(t, ok)

	render := func(checker grants) string {
		tabs := nav.Build(checker, "/sales/customers", sec.Tabs)
		require.NotEmpty(t, tabs)
		rr := httptest.NewRecorder()
		err := engine.Render(rr, "pages/section.html", TemplateData{
			Title:       "Customers",
			CurrentPath: "/sales/customers",
			Session:     session.Snapshot{User: &session.User{ID: "u-1", Name: "Ada"}},
			Checker:     checker,
			Data: struct {
				Section nav.Section
				Tabs    []nav.Item
				Active  *nav.Item
			}{Section: sec, Tabs: tabs, Active: &tabs[0]},
		})
		require.NoError(t, err)
		assert.Equal(t, "text/html; charset=utf-8", rr.Header().Get("Content-Type"))
		return rr.Body.String()
	}

	body := render(grants{"sales:customers:view": true})
	assert.Contains(t, body, `href="/sales/customers"`)
	assert.NotContains(t, body, `href="/sales/invoices"`)
	assert.NotContains(t, body, `href="/permissions"`)

	body = render(grants{"sales:customers:view": true, "sales:invoices:view": true, "admin:permissions:view": true})
	assert.Contains(t, body, `href="/sales/invoices"`)
	assert.Contains(t, body, `href="/permissions"`)
}

func TestRenderWithoutCheckerDenies(t *testing.T) {
	engine, err := NewEngine()
	require.NoError(t, err)

	rr := httptest.NewRecorder()
	err = engine.RenderStatus(rr, http.StatusForbidden, "pages/unauthorized.html", TemplateData{
		Title:   "Not authorized",
		Session: session.Snapshot{User: &session.User{ID: "u-1", Name: "Ada"}},
		Data:    struct{ SignedIn bool }{SignedIn: true},
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.NotContains(t, rr.Body.String(), `href="/permissions"`)
	assert.Contains(t, rr.Body.String(), "Ledgerdesk")
}

func TestRenderAppliesTenantTheme(t *testing.T) {
	engine, err := NewEngine()
	require.NoError(t, err)

	rr := httptest.NewRecorder()
	err = engine.Render(rr, "pages/tenant_not_found.html", TemplateData{
		Title:  "Unknown workspace",
		Tenant: tenant.Config{Subdomain: "acme", Name: "Acme Books", PrimaryColor: "#aa0000"},
		Data:   struct{ Host string }{Host: "ghost.ledgerdesk.io"},
	})
	require.NoError(t, err)
	assert.Contains(t, rr.Body.String(), "Acme Books")
	assert.Contains(t, rr.Body.String(), "#aa0000")
	assert.Contains(t, rr.Body.String(), "ghost.ledgerdesk.io")
}
