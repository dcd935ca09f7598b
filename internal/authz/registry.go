// Package authz declares the closed set of permissions the portal gates on.
//
// Every permission has two spellings: an upper-case Key used by Go and
// template call sites (SALES_CUSTOMERS_VIEW) and the colon-delimited
// Permission string the API grants (sales:customers:view). The mapping is
// 1:1 and is validated when the package loads.
package authz

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrDuplicate reports a key or permission string registered twice.
var ErrDuplicate = errors.New("authz: duplicate registration")

// Key is the symbolic name of a permission.
type Key string

// Permission is the canonical permission string granted by the API.
type Permission string

// Wildcard grants every permission when present in a user's grant set.
const Wildcard Permission = "*"

var (
	byKey  map[Key]Permission
	byPerm map[Permission]Key
)

func init() {
	keys, perms, err := build(tables()...)
	if err != nil {
		panic(err)
	}
	byKey, byPerm = keys, perms
}

func tables() []map[Key]Permission {
	return []map[Key]Permission{
		coreTable(),
		accountsTable(),
		salesTable(),
		purchasesTable(),
		payrollTable(),
		bankingTable(),
		consolidationTable(),
		budgetingTable(),
		reportingTable(),
	}
}

func build(tables ...map[Key]Permission) (map[Key]Permission, map[Permission]Key, error) {
	keys := make(map[Key]Permission)
	perms := make(map[Permission]Key)
	for _, table := range tables {
		for k, p := range table {
			p = Normalize(string(p))
			if p == "" || p == Wildcard {
				return nil, nil, fmt.Errorf("authz: key %s maps to reserved permission %q", k, p)
			}
			if _, ok := keys[k]; ok {
				return nil, nil, fmt.Errorf("%w: key %s", ErrDuplicate, k)
			}
			if other, ok := perms[p]; ok {
				return nil, nil, fmt.Errorf("%w: %s used by %s and %s", ErrDuplicate, p, other, k)
			}
			keys[k] = p
			perms[p] = k
		}
	}
	return keys, perms, nil
}

// Validate re-checks the registry tables for duplicates.
func Validate() error {
	_, _, err := build(tables()...)
	return err
}

// Normalize trims and lower-cases a raw permission string.
func Normalize(raw string) Permission {
	return Permission(strings.ToLower(strings.TrimSpace(raw)))
}

// Lookup returns the permission registered for key.
func Lookup(key Key) (Permission, bool) {
	p, ok := byKey[key]
	return p, ok
}

// MustLookup is Lookup for keys known at compile time.
func MustLookup(key Key) Permission {
	p, ok := byKey[key]
	if !ok {
		panic(fmt.Sprintf("authz: unknown key %s", key))
	}
	return p
}

// KeyOf returns the key registered for a permission string.
func KeyOf(p Permission) (Key, bool) {
	k, ok := byPerm[Normalize(string(p))]
	return k, ok
}

// Keys lists every registered key in lexical order.
func Keys() []Key {
	keys := make([]Key, 0, len(byKey))
	for k := range byKey {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// All lists every registered permission string in lexical order.
func All() []Permission {
	perms := make([]Permission, 0, len(byPerm))
	for p := range byPerm {
		perms = append(perms, p)
	}
	sort.Slice(perms, func(i, j int) bool { return perms[i] < perms[j] })
	return perms
}

// Section returns the leading segment of a permission ("sales" for
// "sales:customers:view").
func (p Permission) Section() string {
	section, _, _ := strings.Cut(string(p), ":")
	return section
}

func (p Permission) String() string { return string(p) }

func (k Key) String() string { return string(k) }
