package enums

import "slices"

// UserRole distinguishes marketplace participants.
type UserRole string

const (
	UserRoleVendor UserRole = "VENDOR"
	UserRoleCenter UserRole = "CENTER"
	UserRoleAdmin  UserRole = "ADMIN"
)

var validUserRoles = []UserRole{UserRoleVendor, UserRoleCenter, UserRoleAdmin}

func (u UserRole) String() string { return string(u) }

func (u UserRole) IsValid() bool { return slices.Contains(validUserRoles, u) }

func ParseUserRole(value string) (UserRole, error) {
	return parse("user role", value, validUserRoles)
}
