package view

import (
	"net/http"

	"github.com/odyssey-erp/ledgerdesk/internal/nav"
	"github.com/odyssey-erp/ledgerdesk/internal/session"
	"github.com/odyssey-erp/ledgerdesk/internal/shared"
	"github.com/odyssey-erp/ledgerdesk/internal/tenant"
)

// NewTemplateData fills the fields every page shares from the request
// context: CSRF token, flash, tenant, session snapshot and the gated menu.
// Without a session store the checker stays nil and every gate denies.
func NewTemplateData(r *http.Request, title string, csrf *shared.CSRFManager) TemplateData {
	sess := shared.SessionFromContext(r.Context())
	var csrfToken string
	var flash *shared.FlashMessage
	if sess != nil {
		if csrf != nil {
			csrfToken, _ = csrf.EnsureToken(r.Context(), sess)
		}
		flash = sess.PopFlash()
	}
	data := TemplateData{
		Title:       title,
		CSRFToken:   csrfToken,
		Flash:       flash,
		CurrentPath: r.URL.Path,
		Tenant:      tenant.FromContext(r.Context()),
		Breadcrumbs: nav.Breadcrumbs(r.URL.Path),
	}
	if store := session.StoreFromContext(r.Context()); store != nil {
		data.Session = store.Snapshot()
		data.Checker = store
		data.Menu = nav.Menu(store, r.URL.Path)
	}
	return data
}
