package domain

import "testing"

func TestHasPermission(t *testing.T) {
	t.Run("admin and user hold every permission", func(t *testing.T) {
		for _, role := range []Role{RoleAdmin, RoleUser} {
			for _, permission := range AllPermissions {
				if !HasPermission(role, permission) {
					t.Errorf("role %q should hold %q", role, permission)
				}
			}
		}
	})

	t.Run("reshipper cannot assign parcels", func(t *testing.T) {
		if HasPermission(RoleReshipper, PermissionAssignParcel) {
			t.Error("reshipper must not hold assign:parcel")
		}
		for _, permission := range AllPermissions {
			if permission == PermissionAssignParcel {
				continue
			}
			if !HasPermission(RoleReshipper, permission) {
				t.Errorf("reshipper should hold %q", permission)
			}
		}
	})

	t.Run("unknown role holds nothing", func(t *testing.T) {
		for _, permission := range AllPermissions {
			if HasPermission(Role("superuser"), permission) {
				t.Errorf("unknown role must not hold %q", permission)
			}
		}
	})

	t.Run("unknown permission is denied everywhere", func(t *testing.T) {
		for _, role := range []Role{RoleAdmin, RoleUser, RoleReshipper} {
			if HasPermission(role, Permission("drop:database")) {
				t.Errorf("role %q granted an unknown permission", role)
			}
		}
	})
}
