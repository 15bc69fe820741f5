package rbac

// Permission names known to the portal. The permissions table is seeded with
// these; roles reference them by id and admin tokens carry the resolved names.
const (
	PermManageUsers    = "manage_users"
	PermManageRoles    = "manage_roles"
	PermReviewRequests = "review_requests"
	PermViewAuditLog   = "view_audit_log"
)

// KnownPermissions lists every seeded permission name.
var KnownPermissions = []string{
	PermManageUsers,
	PermManageRoles,
	PermReviewRequests,
	PermViewAuditLog,
}

// HasPermission checks whether a granted permission set includes permission.
func HasPermission(granted []string, permission string) bool {
	for _, p := range granted {
		if p == permission {
			return true
		}
	}
	return false
}

// IsKnownPermission reports whether name is part of the seeded catalog.
func IsKnownPermission(name string) bool {
	return HasPermission(KnownPermissions, name)
}
