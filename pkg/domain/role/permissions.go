package role

// Well-known permission tokens. Permissions are free-form normalized strings;
// these are the ones the backend itself grants and checks.
const (
	PermUsersRead        = "users:read"
	PermUsersCreate      = "users:create"
	PermUsersUpdate      = "users:update"
	PermUsersDelete      = "users:delete"
	PermUsersManage      = "users:manage"
	PermRolesRead        = "roles:read"
	PermRolesWrite       = "roles:write"
	PermRolesManage      = "roles:manage"
	PermAssignmentsRead  = "assignments:read"
	PermAssignmentsWrite = "assignments:write"
	PermAuditRead        = "audit:read"
	PermSystemAdmin      = "system:admin"
	PermAdminAll         = "admin:all"
)

// Permission classes backing the convenience checks on Role. Membership in a
// class is decided by HasAnyPermission against the listed tokens.
var (
	// ReadPermissions classifies a role as having read access.
	ReadPermissions = []string{PermUsersRead, PermRolesRead, PermAssignmentsRead, PermAuditRead}

	// WritePermissions classifies a role as having write access.
	WritePermissions = []string{PermUsersCreate, PermUsersUpdate, PermRolesWrite, PermAssignmentsWrite}

	// AdminPermissions classifies a role as administrative.
	AdminPermissions = []string{PermAdminAll, PermSystemAdmin, PermRolesManage}

	// UserManagementPermissions classifies a role as able to manage accounts.
	UserManagementPermissions = []string{PermUsersCreate, PermUsersUpdate, PermUsersDelete, PermUsersManage}
)
