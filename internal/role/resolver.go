// Package role derives the effective view role that decides which dashboard
// a session sees.
//
// A superadmin who enters a group acts as that group's admin, and anyone
// above USER who enters an entity acts as an entity user. The narrowing is a
// view switch only; it never grants anything the session does not already
// hold.
package role

import (
	"github.com/odyssey-erp/ledgerdesk/internal/session"
)

// State is the resolver's position in the session lifecycle.
type State string

const (
	StateLoading State = "LOADING"
	StateReady   State = "READY"
	StateError   State = "ERROR"
)

// Reasons attached to non-ready resolutions.
const (
	ReasonUnauthenticated = "unauthenticated"
	ReasonUnknownRole     = "unknown role"
	ReasonUserSelection   = "user holds a group or entity selection"
)

// Input is the subset of the session the resolver depends on.
type Input struct {
	Loading   bool
	User      *session.User
	HasGroup  bool
	HasEntity bool
}

// Resolution is the resolver output. Role is set only when State is READY.
type Resolution struct {
	State     State
	Role      session.Role
	Anomalous bool
	Reason    string
}

// Ready reports whether a role was resolved.
func (r Resolution) Ready() bool { return r.State == StateReady }

// Is reports whether the resolution is READY with the given role.
func (r Resolution) Is(role session.Role) bool {
	return r.State == StateReady && r.Role == role
}

// FromSnapshot extracts resolver input from a session snapshot.
func FromSnapshot(snap session.Snapshot) Input {
	return Input{
		Loading:   snap.Loading,
		User:      snap.User,
		HasGroup:  snap.Group != nil,
		HasEntity: snap.Entity != nil,
	}
}

// ResolveSnapshot is Resolve(FromSnapshot(snap)).
func ResolveSnapshot(snap session.Snapshot) Resolution {
	return Resolve(FromSnapshot(snap))
}

// Resolve maps the input to exactly one resolution. It never panics.
func Resolve(in Input) Resolution {
	if in.Loading {
		return Resolution{State: StateLoading}
	}
	if in.User == nil {
		return Resolution{State: StateError, Reason: ReasonUnauthenticated}
	}

	system := in.User.SystemRole
	effective := system
	if system == session.RoleSuperAdmin && in.HasGroup {
		effective = session.RoleAdmin
	}
	if (system == session.RoleSuperAdmin || system == session.RoleAdmin) && in.HasEntity {
		effective = session.RoleUser
	}
	if !effective.Known() {
		return Resolution{State: StateError, Reason: ReasonUnknownRole}
	}

	res := Resolution{State: StateReady, Role: effective}
	// Plain users never choose a context themselves; a selection here means
	// the API handed one out and the role must not move.
	if system == session.RoleUser && (in.HasGroup || in.HasEntity) {
		res.Anomalous = true
		res.Reason = ReasonUserSelection
	}
	return res
}
