package enums

import "fmt"

// UserRole represents a tier in the platform permission hierarchy.
type UserRole string

const (
	UserRolePlatformAdmin UserRole = "platform_admin"
	UserRoleCompanyAdmin  UserRole = "company_admin"
	UserRoleStoreAdmin    UserRole = "store_admin"
	UserRoleCompanyUser   UserRole = "company_user"
)

// DefaultUserRole is assigned when an identity carries no explicit role.
const DefaultUserRole = UserRoleCompanyUser

var userRoleRanks = map[UserRole]int{
	UserRolePlatformAdmin: 4,
	UserRoleCompanyAdmin:  3,
	UserRoleStoreAdmin:    2,
	UserRoleCompanyUser:   1,
}

var validUserRoles = []UserRole{
	UserRolePlatformAdmin,
	UserRoleCompanyAdmin,
	UserRoleStoreAdmin,
	UserRoleCompanyUser,
}

// String implements fmt.Stringer.
func (r UserRole) String() string {
	return string(r)
}

// IsValid reports whether the value is a known UserRole.
func (r UserRole) IsValid() bool {
	_, ok := userRoleRanks[r]
	return ok
}

// Rank returns the numeric tier of the role. Unknown roles rank below
// every valid tier.
func (r UserRole) Rank() int {
	return userRoleRanks[r]
}

// ParseUserRole converts raw input into a UserRole.
func ParseUserRole(value string) (UserRole, error) {
	for _, candidate := range validUserRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid user role %q", value)
}

// UserRoles returns every valid role ordered from highest to lowest tier.
func UserRoles() []UserRole {
	out := make([]UserRole, len(validUserRoles))
	copy(out, validUserRoles)
	return out
}
