package domain

// Permission defines a named capability checked by route guards.
type Permission string

const (
	PermissionCreateParcel Permission = "create:parcel"
	PermissionReadParcel   Permission = "read:parcel"
	PermissionUpdateParcel Permission = "update:parcel"
	PermissionDeleteParcel Permission = "delete:parcel"
	PermissionAssignParcel Permission = "assign:parcel"
	PermissionListParcel   Permission = "list:parcel"

	PermissionCreateAddress Permission = "create:address"
	PermissionReadAddress   Permission = "read:address"
	PermissionUpdateAddress Permission = "update:address"
	PermissionDeleteAddress Permission = "delete:address"
)

// AllPermissions lists every capability the platform knows about.
var AllPermissions = []Permission{
	PermissionCreateParcel,
	PermissionReadParcel,
	PermissionUpdateParcel,
	PermissionDeleteParcel,
	PermissionAssignParcel,
	PermissionListParcel,
	PermissionCreateAddress,
	PermissionReadAddress,
	PermissionUpdateAddress,
	PermissionDeleteAddress,
}

// rolePermissions maps each role to its capability set. Sets are derived by
// excluding specific permissions from the full list rather than enumerating
// grants, so new permissions default to granted.
var rolePermissions = map[Role]map[Permission]bool{
	RoleAdmin:     excludePermissions(nil),
	RoleUser:      excludePermissions(nil),
	RoleReshipper: excludePermissions([]Permission{PermissionAssignParcel}),
}

func excludePermissions(excluded []Permission) map[Permission]bool {
	skip := make(map[Permission]bool, len(excluded))
	for _, p := range excluded {
		skip[p] = true
	}

	set := make(map[Permission]bool, len(AllPermissions))
	for _, p := range AllPermissions {
		if !skip[p] {
			set[p] = true
		}
	}
	return set
}

// HasPermission reports whether the role grants the permission.
// Unknown roles hold no permissions.
func HasPermission(role Role, permission Permission) bool {
	set, ok := rolePermissions[role]
	if !ok {
		return false
	}
	return set[permission]
}
