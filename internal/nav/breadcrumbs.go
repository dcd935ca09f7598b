package nav

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Crumb is one step of the breadcrumb trail.
type Crumb struct {
	Label string
	Href  string
}

// Breadcrumbs turns a request path into a trail. Segments that match a
// registered tab or section use its label; numeric or opaque identifiers are
// shown as-is.
func Breadcrumbs(path string) []Crumb {
	path = trimPath(path)
	crumbs := []Crumb{{Label: "Home", Href: "/"}}
	if path == "/" || path == "" {
		return crumbs
	}
	segments := strings.Split(strings.TrimPrefix(path, "/"), "/")
	href := ""
	for _, seg := range segments {
		if seg == "" {
			continue
		}
		href += "/" + seg
		crumbs = append(crumbs, Crumb{Label: labelFor(href, seg), Href: href})
	}
	return crumbs
}

func labelFor(href, seg string) string {
	for _, s := range sections {
		if s.Href() == href {
			return s.Title
		}
		for _, t := range s.Tabs {
			if t.Href == href {
				return t.Label
			}
		}
	}
	if looksLikeID(seg) {
		return seg
	}
	// Casers carry state, so each call gets its own.
	return cases.Title(language.English).String(strings.ReplaceAll(seg, "-", " "))
}

func looksLikeID(seg string) bool {
	for _, r := range seg {
		if r >= '0' && r <= '9' {
			return true
		}
	}
	return false
}
