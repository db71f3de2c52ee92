package enums

import "fmt"

// UserRole is the platform-wide role carried in access tokens.
type UserRole string

const (
	UserRoleAdmin      UserRole = "ADMIN"
	UserRoleAssociate  UserRole = "ASSOCIATE"
	UserRoleAdvertiser UserRole = "ADVERTISER"
)

var validUserRoles = []UserRole{
	UserRoleAdmin,
	UserRoleAssociate,
	UserRoleAdvertiser,
}

// String implements fmt.Stringer.
func (r UserRole) String() string {
	return string(r)
}

// IsValid reports whether the value is a known UserRole.
func (r UserRole) IsValid() bool {
	for _, candidate := range validUserRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// IsStaff reports whether the role operates the pipeline.
func (r UserRole) IsStaff() bool {
	return r == UserRoleAdmin || r == UserRoleAssociate
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
