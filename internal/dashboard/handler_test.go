package dashboard

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/ledgerdesk/internal/role"
	"github.com/odyssey-erp/ledgerdesk/internal/session"
	_ "github.com/odyssey-erp/ledgerdesk/internal/testing/guard"
	"github.com/odyssey-erp/ledgerdesk/internal/view"
)

type fakeAPI struct {
	mu       sync.Mutex
	groups   []session.Group
	entities map[string][]session.Entity
	calls    []string
	// onSelect mutates the payload the store will fetch next.
	onSelect func(call string)
}

func (f *fakeAPI) record(call string) {
	f.mu.Lock()
	f.calls = append(f.calls, call)
	f.mu.Unlock()
	if f.onSelect != nil {
		f.onSelect(call)
	}
}

func (f *fakeAPI) ListGroups(ctx context.Context) ([]session.Group, error) {
	return f.groups, nil
}

func (f *fakeAPI) ListEntities(ctx context.Context, groupID string) ([]session.Entity, error) {
	f.record("entities:" + groupID)
	return f.entities[groupID], nil
}

func (f *fakeAPI) SelectGroup(ctx context.Context, groupID string) error {
	f.record("group:" + groupID)
	return nil
}

func (f *fakeAPI) SelectEntity(ctx context.Context, entityID string) error {
	f.record("entity:" + entityID)
	return nil
}

func (f *fakeAPI) ClearSelection(ctx context.Context, level string) error {
	f.record("clear:" + level)
	return nil
}

type harness struct {
	router      http.Handler
	api         *fakeAPI
	store       *session.Store
	payload     session.Payload
	payloadMu   sync.Mutex
	resolutions []role.Resolution
}

func newHarness(t *testing.T, payload session.Payload) *harness {
	t.Helper()
	engine, err := view.NewEngine()
	require.NoError(t, err)

	hs := &harness{
		api: &fakeAPI{
			groups:   []session.Group{{ID: "g-1", Name: "Northwind Group"}},
			entities: map[string][]session.Entity{"g-1": {{ID: "e-1", Name: "Northwind Trading"}}},
		},
		payload: payload,
	}
	hs.store = session.NewStore(session.SourceFunc(func(ctx context.Context) (session.Payload, error) {
		hs.payloadMu.Lock()
		defer hs.payloadMu.Unlock()
		return hs.payload, nil
	}))

	h := NewHandler(nil, engine, nil, func(string) ContextAPI { return hs.api },
		WithResolutionObserver(func(res role.Resolution) { hs.resolutions = append(hs.resolutions, res) }))
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(session.ContextWithStore(req.Context(), hs.store)))
		})
	})
	h.MountRoutes(r)
	hs.router = r
	return hs
}

func (hs *harness) setPayload(p session.Payload) {
	hs.payloadMu.Lock()
	hs.payload = p
	hs.payloadMu.Unlock()
}

func (hs *harness) boot() *harness {
	hs.store.Fetch(context.Background())
	return hs
}

func (hs *harness) get(path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rr := httptest.NewRecorder()
	hs.router.ServeHTTP(rr, req)
	return rr
}

func (hs *harness) post(path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	hs.router.ServeHTTP(rr, req)
	return rr
}

func user(r session.Role, perms ...string) *session.User {
	return &session.User{ID: "u-1", Name: "Ada", SystemRole: r, Permissions: perms}
}

var (
	northwind = &session.Group{ID: "g-1", Name: "Northwind Group"}
	trading   = &session.Entity{ID: "e-1", Name: "Northwind Trading"}
)

func TestIndexLoadingBeforeBoot(t *testing.T) {
	hs := newHarness(t, session.Payload{User: user(session.RoleUser)})
	rr := hs.get("/")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Loading your workspace")
	require.Len(t, hs.resolutions, 1)
	assert.Equal(t, role.StateLoading, hs.resolutions[0].State)
}

func TestIndexUnauthenticated(t *testing.T) {
	hs := newHarness(t, session.Payload{}).boot()
	rr := hs.get("/")
	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Contains(t, rr.Body.String(), "Not authorized")
	assert.Contains(t, rr.Body.String(), `href="/auth/login"`)
}

func TestIndexUnknownRole(t *testing.T) {
	hs := newHarness(t, session.Payload{User: user("AUDITOR")}).boot()
	rr := hs.get("/")
	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestIndexSuperadminListsGroups(t *testing.T) {
	hs := newHarness(t, session.Payload{User: user(session.RoleSuperAdmin, "admin:groups:enter")}).boot()
	rr := hs.get("/")
	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, "Northwind Group")
	assert.Contains(t, body, `action="/context/group"`)
}

func TestIndexSuperadminInGroupActsAsAdmin(t *testing.T) {
	hs := newHarness(t, session.Payload{User: user(session.RoleSuperAdmin, "admin:entities:enter"), Group: northwind}).boot()
	rr := hs.get("/")
	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, "Northwind Trading")
	assert.Contains(t, body, `action="/context/entity"`)
	assert.Contains(t, body, `action="/context/exit"`)
	assert.Equal(t, []string{"entities:g-1"}, hs.api.calls)
	assert.True(t, hs.resolutions[0].Is(session.RoleAdmin))
}

func TestIndexAdminInEntityActsAsUser(t *testing.T) {
	hs := newHarness(t, session.Payload{
		User:   user(session.RoleAdmin, "sales:customers:view"),
		Group:  northwind,
		Entity: trading,
	}).boot()
	rr := hs.get("/")
	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, `class="tile" href="/sales/customers"`)
	assert.NotContains(t, body, `href="/hr/`)
	assert.True(t, hs.resolutions[0].Is(session.RoleUser))
}

func TestIndexUserWithSelectionIsFlagged(t *testing.T) {
	hs := newHarness(t, session.Payload{User: user(session.RoleUser), Group: northwind}).boot()
	rr := hs.get("/")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.NotContains(t, rr.Body.String(), `action="/context/exit"`)
	require.Len(t, hs.resolutions, 1)
	assert.True(t, hs.resolutions[0].Is(session.RoleUser))
	assert.True(t, hs.resolutions[0].Anomalous)
}

func TestSectionRedirectsToFirstVisibleTab(t *testing.T) {
	hs := newHarness(t, session.Payload{User: user(session.RoleUser, "sales:invoices:view", "sales:receipts:view")}).boot()
	rr := hs.get("/sales")
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/sales/invoices", rr.Header().Get("Location"))
}

func TestSectionRendersActiveTab(t *testing.T) {
	hs := newHarness(t, session.Payload{User: user(session.RoleUser, "sales:customers:view", "sales:invoices:view")}).boot()
	rr := hs.get("/sales/invoices/INV-42")
	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, `class="tab active"`)
	assert.Contains(t, body, `href="/sales/customers"`)
	assert.NotContains(t, body, `href="/sales/quotations"`)
	assert.Contains(t, body, "INV-42")
}

func TestSectionDeniedAndUnknown(t *testing.T) {
	hs := newHarness(t, session.Payload{User: user(session.RoleUser, "sales:customers:view")}).boot()

	assert.Equal(t, http.StatusForbidden, hs.get("/sales/invoices").Code)
	assert.Equal(t, http.StatusNotFound, hs.get("/sales/nothing-here").Code)
	assert.Equal(t, http.StatusNotFound, hs.get("/warehouse").Code)
	assert.Equal(t, http.StatusForbidden, hs.get("/hr").Code)
}

func TestEnterGroupRequiresSuperadmin(t *testing.T) {
	hs := newHarness(t, session.Payload{User: user(session.RoleAdmin), Group: northwind}).boot()
	rr := hs.post("/context/group", url.Values{"group_id": {"g-2"}})
	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Empty(t, hs.api.calls)
}

func TestEnterGroupRefetchesSession(t *testing.T) {
	hs := newHarness(t, session.Payload{User: user(session.RoleSuperAdmin)}).boot()
	hs.api.onSelect = func(call string) {
		if call == "group:g-1" {
			hs.setPayload(session.Payload{User: user(session.RoleSuperAdmin), Group: northwind})
		}
	}

	rr := hs.post("/context/group", url.Values{"group_id": {"g-1"}})
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/", rr.Header().Get("Location"))
	require.NotNil(t, hs.store.Group())
	assert.Equal(t, "g-1", hs.store.Group().ID)
}

func TestEnterGroupValidatesForm(t *testing.T) {
	hs := newHarness(t, session.Payload{User: user(session.RoleSuperAdmin)}).boot()
	rr := hs.post("/context/group", url.Values{})
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Empty(t, hs.api.calls)
}

func TestExitClearsInnermostSelection(t *testing.T) {
	hs := newHarness(t, session.Payload{User: user(session.RoleSuperAdmin), Group: northwind, Entity: trading}).boot()
	hs.post("/context/exit", nil)
	assert.Equal(t, []string{"clear:entity"}, hs.api.calls)

	hs.setPayload(session.Payload{User: user(session.RoleSuperAdmin), Group: northwind})
	hs.store.Fetch(context.Background())
	hs.post("/context/exit", nil)
	assert.Equal(t, []string{"clear:entity", "clear:group"}, hs.api.calls)
}

func TestExitNeverClearsAdminGroup(t *testing.T) {
	hs := newHarness(t, session.Payload{User: user(session.RoleAdmin), Group: northwind}).boot()
	rr := hs.post("/context/exit", nil)
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Empty(t, hs.api.calls)
}

func TestSessionJSON(t *testing.T) {
	hs := newHarness(t, session.Payload{User: user(session.RoleSuperAdmin, "admin:users:view"), Group: northwind}).boot()
	rr := hs.get("/api/session")
	require.Equal(t, http.StatusOK, rr.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "READY", body["state"])
	assert.Equal(t, "ADMIN", body["role"])
	assert.Equal(t, false, body["loading"])
	assert.Equal(t, []any{"admin:users:view"}, body["permissions"])
	assert.Equal(t, "no-store", rr.Header().Get("Cache-Control"))
}

func TestSessionJSONWhileLoading(t *testing.T) {
	hs := newHarness(t, session.Payload{User: user(session.RoleUser)})
	rr := hs.get("/api/session")
	require.Equal(t, http.StatusOK, rr.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "LOADING", body["state"])
	assert.Equal(t, true, body["loading"])
}

func TestSessionJSONHidesUserDuringRefetch(t *testing.T) {
	hs := newHarness(t, session.Payload{User: user(session.RoleUser, "finance:ledger:view")}).boot()

	// Holding the payload lock parks the next fetch inside the source.
	hs.payloadMu.Lock()
	done := make(chan struct{})
	go func() {
		defer close(done)
		hs.store.Fetch(context.Background())
	}()
	require.Eventually(t, hs.store.Loading, time.Second, 5*time.Millisecond)

	rr := hs.get("/api/session")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `null`, jsonField(t, rr, "user"))
	assert.JSONEq(t, `[]`, jsonField(t, rr, "permissions"))
	assert.JSONEq(t, `true`, jsonField(t, rr, "loading"))

	hs.payloadMu.Unlock()
	<-done
	rr = hs.get("/api/session")
	assert.JSONEq(t, `["finance:ledger:view"]`, jsonField(t, rr, "permissions"))
}

func TestPendingRendersLoadingPage(t *testing.T) {
	engine, err := view.NewEngine()
	require.NoError(t, err)
	h := NewHandler(nil, engine, nil, nil)

	store := session.NewStore(nil)
	req := httptest.NewRequest(http.MethodGet, "/finance/ledger", nil)
	req = req.WithContext(session.ContextWithStore(req.Context(), store))
	rr := httptest.NewRecorder()
	h.Pending(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Loading your workspace")
	assert.Contains(t, rr.Body.String(), "/finance/ledger")
}

func jsonField(t *testing.T, rr *httptest.ResponseRecorder, key string) string {
	t.Helper()
	var body map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	raw, ok := body[key]
	require.True(t, ok, "missing %q", key)
	return string(raw)
}
