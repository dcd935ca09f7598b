package rbac

import (
	"html/template"

	"github.com/odyssey-erp/ledgerdesk/internal/authz"
)

// Checker answers permission questions for the current session.
// *session.Store and session.Snapshot both satisfy it.
type Checker interface {
	HasPermission(p authz.Permission) bool
}

// Can reports whether the checker grants the referenced permission. A nil
// checker or an empty reference denies.
func Can(c Checker, ref authz.Ref) bool {
	if c == nil {
		return false
	}
	perm := ref.Permission()
	if perm == "" {
		return false
	}
	return c.HasPermission(perm)
}

// CanAny reports whether at least one reference is granted.
func CanAny(c Checker, refs ...authz.Ref) bool {
	for _, ref := range refs {
		if Can(c, ref) {
			return true
		}
	}
	return false
}

// CanAll reports whether every reference is granted. An empty list denies.
func CanAll(c Checker, refs ...authz.Ref) bool {
	if len(refs) == 0 {
		return false
	}
	for _, ref := range refs {
		if !Can(c, ref) {
			return false
		}
	}
	return true
}

// Gate returns children when the reference is granted and fallback
// otherwise.
func Gate[T any](c Checker, ref authz.Ref, children, fallback T) T {
	if Can(c, ref) {
		return children
	}
	return fallback
}

// RefOf converts the values templates pass around into a Ref. Strings go
// through the registry first and fall back to the literal spelling.
func RefOf(v any) authz.Ref {
	switch ref := v.(type) {
	case authz.Ref:
		return ref
	case authz.Key:
		return authz.ByKey(ref)
	case authz.Permission:
		return authz.ByString(string(ref))
	case string:
		return authz.ParseRef(ref)
	default:
		return authz.Ref{}
	}
}

// FuncMap exposes the gate to html/template. The checker is always the
// first argument: {{if can $.Checker "SALES_CUSTOMERS_VIEW"}}.
func FuncMap() template.FuncMap {
	return template.FuncMap{
		"can": func(c Checker, ref any) bool {
			return Can(c, RefOf(ref))
		},
		"cannot": func(c Checker, ref any) bool {
			return !Can(c, RefOf(ref))
		},
		"gate": func(c Checker, ref any, children template.HTML, fallback ...template.HTML) template.HTML {
			var fb template.HTML
			if len(fallback) > 0 {
				fb = fallback[0]
			}
			return Gate(c, RefOf(ref), children, fb)
		},
	}
}
