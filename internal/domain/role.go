package domain

import "strings"

// Role enumerates the two account types the storefront recognizes.
type Role string

const (
	RoleCustomer Role = "Customer"
	RoleRetailer Role = "Retailer"
)

// DefaultRole applies when provider metadata carries no usable claim.
const DefaultRole = RoleCustomer

// ParseRole maps free-form input onto the closed enum.
func ParseRole(raw string) (Role, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "customer":
		return RoleCustomer, true
	case "retailer":
		return RoleRetailer, true
	default:
		return "", false
	}
}

// Other returns the opposite role. Gating rules rely on the two role
// scopes being mutually exclusive.
func (r Role) Other() Role {
	if r == RoleRetailer {
		return RoleCustomer
	}
	return RoleRetailer
}

// Valid reports whether the role is one of the two allowed values.
func (r Role) Valid() bool {
	return r == RoleCustomer || r == RoleRetailer
}
