// Package nav builds the permission-gated navigation shown in the portal.
package nav

import (
	"strings"

	"github.com/odyssey-erp/ledgerdesk/internal/authz"
	"github.com/odyssey-erp/ledgerdesk/internal/rbac"
)

// Tab is a single navigation link guarded by a permission.
type Tab struct {
	Label      string
	Href       string
	Permission authz.Ref
}

// Item is a tab prepared for rendering.
type Item struct {
	Tab
	Active bool
}

// Visible keeps the tabs the checker grants, preserving their order.
func Visible(c rbac.Checker, tabs []Tab) []Tab {
	visible := make([]Tab, 0, len(tabs))
	for _, tab := range tabs {
		if rbac.Can(c, tab.Permission) {
			visible = append(visible, tab)
		}
	}
	return visible
}

// Build filters tabs through the gate and marks the active ones for path.
func Build(c rbac.Checker, path string, tabs []Tab) []Item {
	visible := Visible(c, tabs)
	items := make([]Item, 0, len(visible))
	for _, tab := range visible {
		items = append(items, Item{Tab: tab, Active: IsActive(path, tab.Href)})
	}
	return items
}

// IsActive reports whether path equals href or contains it, which keeps a
// parent tab lit on nested routes. The root href only matches the root.
func IsActive(path, href string) bool {
	path = trimPath(path)
	href = trimPath(href)
	if href == "" {
		return false
	}
	if path == href {
		return true
	}
	if href == "/" {
		return false
	}
	return strings.Contains(path, href)
}

func trimPath(p string) string {
	p = strings.TrimSpace(p)
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	if len(p) > 1 {
		p = strings.TrimRight(p, "/")
		if p == "" {
			p = "/"
		}
	}
	return p
}
