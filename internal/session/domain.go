package session

import (
	"time"

	"github.com/odyssey-erp/ledgerdesk/internal/authz"
)

// Role is the system role the API assigns to a user account.
type Role string

const (
	RoleSuperAdmin Role = "SUPERADMIN"
	RoleAdmin      Role = "ADMIN"
	RoleUser       Role = "USER"
)

// Known reports whether r is one of the three supported roles.
func (r Role) Known() bool {
	switch r {
	case RoleSuperAdmin, RoleAdmin, RoleUser:
		return true
	}
	return false
}

// User is the authenticated account as reported by the session endpoint.
type User struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Email       string   `json:"email"`
	SystemRole  Role     `json:"systemRole"`
	Permissions []string `json:"permissions"`
}

// Group is the tenant organisation a superadmin or admin has entered.
type Group struct {
	ID   string `json:"groupId"`
	Name string `json:"groupName"`
}

// Entity is the sub-company a user has drilled into.
type Entity struct {
	ID   string `json:"entityId"`
	Name string `json:"entityName"`
}

// Payload mirrors the JSON body of the session endpoint.
type Payload struct {
	User   *User   `json:"user"`
	Group  *Group  `json:"group"`
	Entity *Entity `json:"entity"`
}

// Snapshot is an immutable view of the session. User, Group and Entity are
// always published together.
type Snapshot struct {
	User      *User
	Group     *Group
	Entity    *Entity
	Loading   bool
	FetchedAt time.Time
	Seq       uint64

	grants map[authz.Permission]struct{}
}

// Authenticated reports whether the snapshot is settled and carries a user.
func (s Snapshot) Authenticated() bool {
	return !s.Loading && s.User != nil
}

// HasPermission checks the user's grant set. It is false while loading and
// for anonymous sessions.
func (s Snapshot) HasPermission(p authz.Permission) bool {
	if s.Loading || s.User == nil || p == "" {
		return false
	}
	if _, ok := s.grants[authz.Wildcard]; ok {
		return true
	}
	_, ok := s.grants[authz.Normalize(string(p))]
	return ok
}

func snapshotFromPayload(p Payload) Snapshot {
	if p.User == nil {
		return Snapshot{}
	}
	user := *p.User
	user.Permissions = append([]string(nil), p.User.Permissions...)
	grants := make(map[authz.Permission]struct{}, len(user.Permissions))
	for _, raw := range user.Permissions {
		if perm := authz.Normalize(raw); perm != "" {
			grants[perm] = struct{}{}
		}
	}
	snap := Snapshot{User: &user, grants: grants}
	if p.Group != nil {
		group := *p.Group
		snap.Group = &group
	}
	if p.Entity != nil {
		entity := *p.Entity
		snap.Entity = &entity
	}
	return snap
}
