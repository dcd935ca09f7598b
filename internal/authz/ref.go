package authz

import "strings"

type refKind uint8

const (
	refNone refKind = iota
	refKey
	refString
)

// Ref is a permission reference made either from a registry Key or from a
// raw permission string. Both forms resolve to the same Permission.
type Ref struct {
	kind  refKind
	key   Key
	value Permission
}

// ByKey references a permission by its registry key.
func ByKey(key Key) Ref {
	return Ref{kind: refKey, key: key}
}

// ByString references a permission by its canonical string.
func ByString(raw string) Ref {
	return Ref{kind: refString, value: Normalize(raw)}
}

// ParseRef accepts either spelling. Registered keys resolve through the
// registry; anything else is used literally.
func ParseRef(raw string) Ref {
	trimmed := strings.TrimSpace(raw)
	if _, ok := byKey[Key(trimmed)]; ok {
		return ByKey(Key(trimmed))
	}
	return ByString(trimmed)
}

// Permission resolves the reference. A key missing from the registry is
// passed through as a literal string.
func (r Ref) Permission() Permission {
	switch r.kind {
	case refKey:
		if p, ok := byKey[r.key]; ok {
			return p
		}
		return Normalize(string(r.key))
	case refString:
		return r.value
	default:
		return ""
	}
}

// IsZero reports whether the reference was never set.
func (r Ref) IsZero() bool {
	return r.kind == refNone
}

func (r Ref) String() string {
	if r.kind == refKey {
		return string(r.key)
	}
	return string(r.value)
}
