package role

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/odyssey-erp/ledgerdesk/internal/session"
)

func input(r session.Role, group, entity bool) Input {
	return Input{User: &session.User{ID: "1", SystemRole: r}, HasGroup: group, HasEntity: entity}
}

func TestResolveTable(t *testing.T) {
	cases := []struct {
		role   session.Role
		group  bool
		entity bool
		want   session.Role
	}{
		{session.RoleSuperAdmin, false, false, session.RoleSuperAdmin},
		{session.RoleSuperAdmin, true, false, session.RoleAdmin},
		{session.RoleSuperAdmin, false, true, session.RoleUser},
		{session.RoleSuperAdmin, true, true, session.RoleUser},
		{session.RoleAdmin, false, false, session.RoleAdmin},
		{session.RoleAdmin, true, false, session.RoleAdmin},
		{session.RoleAdmin, false, true, session.RoleUser},
		{session.RoleAdmin, true, true, session.RoleUser},
		{session.RoleUser, false, false, session.RoleUser},
		{session.RoleUser, true, false, session.RoleUser},
		{session.RoleUser, false, true, session.RoleUser},
		{session.RoleUser, true, true, session.RoleUser},
	}
	for _, tc := range cases {
		res := Resolve(input(tc.role, tc.group, tc.entity))
		assert.Equal(t, StateReady, res.State, "%s group=%v entity=%v", tc.role, tc.group, tc.entity)
		assert.Equal(t, tc.want, res.Role, "%s group=%v entity=%v", tc.role, tc.group, tc.entity)
		assert.True(t, res.Role.Known())
	}
}

func TestEntitySelectionOverridesGroupNarrowing(t *testing.T) {
	assert.True(t, Resolve(input(session.RoleSuperAdmin, true, true)).Is(session.RoleUser))
}

func TestGroupNarrowsSuperAdminToAdmin(t *testing.T) {
	assert.True(t, Resolve(input(session.RoleSuperAdmin, true, false)).Is(session.RoleAdmin))
}

func TestUserSelectionIsFlagged(t *testing.T) {
	plain := Resolve(input(session.RoleUser, false, false))
	assert.False(t, plain.Anomalous)

	odd := Resolve(input(session.RoleUser, true, true))
	assert.True(t, odd.Is(session.RoleUser))
	assert.True(t, odd.Anomalous)
	assert.Equal(t, ReasonUserSelection, odd.Reason)
}

func TestLoadingTakesPrecedence(t *testing.T) {
	for _, in := range []Input{
		{Loading: true},
		{Loading: true, User: &session.User{SystemRole: session.RoleSuperAdmin}, HasGroup: true},
		{Loading: true, User: &session.User{SystemRole: "AUDITOR"}},
	} {
		res := Resolve(in)
		assert.Equal(t, StateLoading, res.State)
		assert.Empty(t, res.Role)
	}
}

func TestUnauthenticatedIsError(t *testing.T) {
	res := Resolve(Input{})
	assert.Equal(t, StateError, res.State)
	assert.Equal(t, ReasonUnauthenticated, res.Reason)
	assert.False(t, res.Ready())
}

func TestUnknownRoleIsError(t *testing.T) {
	res := Resolve(input("AUDITOR", false, false))
	assert.Equal(t, StateError, res.State)
	assert.Equal(t, ReasonUnknownRole, res.Reason)

	res = Resolve(input("", true, true))
	assert.Equal(t, StateError, res.State)
}

func TestResolveSnapshot(t *testing.T) {
	snap := session.Snapshot{
		User:  &session.User{ID: "1", SystemRole: session.RoleSuperAdmin},
		Group: &session.Group{ID: "g"},
	}
	assert.True(t, ResolveSnapshot(snap).Is(session.RoleAdmin))
	assert.Equal(t, StateLoading, ResolveSnapshot(session.Snapshot{Loading: true}).State)
}
