package enums

import (
	"fmt"
	"strings"
)

// Permission gates the destructive and configuration operations.
type Permission string

const (
	PermissionOrdersDelete   Permission = "orders.delete"
	PermissionOrdersDiscount Permission = "orders.discount"
	PermissionCatalogWrite   Permission = "catalog.write"
	PermissionCustomersWrite Permission = "customers.write"
	PermissionSettingsWrite  Permission = "settings.write"
)

// StaffRole is the coarse role assigned to a seller's staff member.
type StaffRole string

const (
	StaffRoleOwner   StaffRole = "owner"
	StaffRoleManager StaffRole = "manager"
	StaffRoleCashier StaffRole = "cashier"
	StaffRoleKitchen StaffRole = "kitchen"
)

var validStaffRoles = []StaffRole{
	StaffRoleOwner,
	StaffRoleManager,
	StaffRoleCashier,
	StaffRoleKitchen,
}

var permissionsByRole = map[StaffRole][]Permission{
	StaffRoleOwner: {
		PermissionOrdersDelete,
		PermissionOrdersDiscount,
		PermissionCatalogWrite,
		PermissionCustomersWrite,
		PermissionSettingsWrite,
	},
	StaffRoleManager: {
		PermissionOrdersDelete,
		PermissionOrdersDiscount,
		PermissionCatalogWrite,
		PermissionCustomersWrite,
	},
	StaffRoleCashier: {
		PermissionOrdersDiscount,
		PermissionCustomersWrite,
	},
	StaffRoleKitchen: {},
}

// String implements fmt.Stringer.
func (r StaffRole) String() string {
	return string(r)
}

// IsValid reports whether the value is a known StaffRole.
func (r StaffRole) IsValid() bool {
	for _, candidate := range validStaffRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// Grants reports whether the role carries the given permission.
func (r StaffRole) Grants(p Permission) bool {
	for _, candidate := range permissionsByRole[r] {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParseStaffRole converts raw input into a StaffRole.
func ParseStaffRole(value string) (StaffRole, error) {
	value = strings.ToLower(strings.TrimSpace(value))
	for _, candidate := range validStaffRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid staff role %q", value)
}
