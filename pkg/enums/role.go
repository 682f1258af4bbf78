package enums

import "fmt"

// Role is the storefront account role an identity resolves to.
type Role string

const (
	RoleOwner   Role = "owner"
	RoleShopper Role = "shopper"
)

var validRoles = []Role{RoleOwner, RoleShopper}

func (r Role) String() string {
	return string(r)
}

func (r Role) IsValid() bool {
	for _, candidate := range validRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

func ParseRole(value string) (Role, error) {
	for _, candidate := range validRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid role %q", value)
}
