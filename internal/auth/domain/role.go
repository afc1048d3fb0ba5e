package domain

// Permission is an atomic capability a role may own.
type Permission string

const (
	// PermissionAll is the wildcard: a role owning it satisfies every check.
	PermissionAll Permission = "all"

	PermissionViewUsers  Permission = "users:view"
	PermissionEditUsers  Permission = "users:edit"
	PermissionCreateUser Permission = "users:create"
	PermissionViewRoles  Permission = "roles:view"
)

// RoleID is the stable integer identifier persisted on the user record.
type RoleID int

const (
	RoleUser RoleID = iota
	RoleAdmin
)

// Role is a named permission set. The set of roles is fixed at deploy time
// and is not user-mutable.
type Role struct {
	ID          RoleID
	Name        string
	Permissions []Permission
}

var roles = map[RoleID]Role{
	RoleUser: {
		ID:          RoleUser,
		Name:        "User",
		Permissions: nil,
	},
	RoleAdmin: {
		ID:          RoleAdmin,
		Name:        "Admin",
		Permissions: []Permission{PermissionAll},
	},
}

// RoleByID resolves a role definition. ok is false for unknown ids.
func RoleByID(id RoleID) (Role, bool) {
	r, ok := roles[id]
	return r, ok
}

// Valid reports whether the id refers to a defined role.
func (id RoleID) Valid() bool {
	_, ok := roles[id]
	return ok
}

// HasPermission reports whether the user's role owns every required
// permission. An empty requirement always passes; a nil user never does.
// Owning PermissionAll satisfies any requirement.
func HasPermission(u *User, required ...Permission) bool {
	if len(required) == 0 {
		return true
	}
	if u == nil {
		return false
	}

	role, ok := RoleByID(u.Role)
	if !ok {
		return false
	}

	owned := make(map[Permission]struct{}, len(role.Permissions))
	for _, p := range role.Permissions {
		if p == PermissionAll {
			return true
		}
		owned[p] = struct{}{}
	}

	for _, p := range required {
		if _, ok := owned[p]; !ok {
			return false
		}
	}
	return true
}
