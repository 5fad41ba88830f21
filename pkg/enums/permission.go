package enums

import "fmt"

// Permission names one of the independent per-user capability flags.
type Permission string

const (
	PermissionManageProducts  Permission = "manage_products"
	PermissionManageInventory Permission = "manage_inventory"
	PermissionManageUsers     Permission = "manage_users"
)

var validPermissions = []Permission{
	PermissionManageProducts,
	PermissionManageInventory,
	PermissionManageUsers,
}

// String implements fmt.Stringer.
func (p Permission) String() string {
	return string(p)
}

// IsValid reports whether the value is a known Permission.
func (p Permission) IsValid() bool {
	for _, candidate := range validPermissions {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePermission converts raw input into a Permission.
func ParsePermission(value string) (Permission, error) {
	for _, candidate := range validPermissions {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid permission %q", value)
}
