package authz

// Platform administration permissions.
const (
	// Platform administration
	AdminUsersView       Key = "ADMIN_USERS_VIEW"
	AdminUsersEdit       Key = "ADMIN_USERS_EDIT"
	AdminRolesView       Key = "ADMIN_ROLES_VIEW"
	AdminRolesEdit       Key = "ADMIN_ROLES_EDIT"
	AdminPermissionsView Key = "ADMIN_PERMISSIONS_VIEW"
	AdminGroupsView      Key = "ADMIN_GROUPS_VIEW"
	AdminGroupsEdit      Key = "ADMIN_GROUPS_EDIT"
	AdminGroupsEnter     Key = "ADMIN_GROUPS_ENTER"
	AdminEntitiesView    Key = "ADMIN_ENTITIES_VIEW"
	AdminEntitiesEdit    Key = "ADMIN_ENTITIES_EDIT"
	AdminEntitiesEnter   Key = "ADMIN_ENTITIES_ENTER"
)

func coreTable() map[Key]Permission {
	return map[Key]Permission{
		AdminUsersView:       "admin:users:view",
		AdminUsersEdit:       "admin:users:edit",
		AdminRolesView:       "admin:roles:view",
		AdminRolesEdit:       "admin:roles:edit",
		AdminPermissionsView: "admin:permissions:view",
		AdminGroupsView:      "admin:groups:view",
		AdminGroupsEdit:      "admin:groups:edit",
		AdminGroupsEnter:     "admin:groups:enter",
		AdminEntitiesView:    "admin:entities:view",
		AdminEntitiesEdit:    "admin:entities:edit",
		AdminEntitiesEnter:   "admin:entities:enter",
	}
}
