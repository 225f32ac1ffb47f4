package enums

import "fmt"

// Role identifies the actor type behind an authenticated request.
type Role string

const (
	// RoleMarket is a tenant placing orders.
	RoleMarket Role = "market"
	// RoleDeliver is delivery-side staff fulfilling orders and managing the catalog.
	RoleDeliver Role = "deliver"
)

var validRoles = []Role{RoleMarket, RoleDeliver}

// String implements fmt.Stringer.
func (r Role) String() string {
	return string(r)
}

// IsValid reports whether the value is a known Role.
func (r Role) IsValid() bool {
	for _, candidate := range validRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseRole converts raw input into a Role.
func ParseRole(value string) (Role, error) {
	for _, candidate := range validRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid role %q", value)
}
