package domain

import "strings"

// ID is used across domain entities.
type ID = int64

// Role of an authenticated caller.
type Role string

const (
	RoleDriver    Role = "DRIVER"
	RolePassenger Role = "PASSENGER"
	RoleAdmin     Role = "ADMIN"
)

// ParseRole normalizes a role claim; unknown values come back empty.
func ParseRole(s string) Role {
	switch r := Role(strings.ToUpper(strings.TrimSpace(s))); r {
	case RoleDriver, RolePassenger, RoleAdmin:
		return r
	default:
		return ""
	}
}

// Principal is the authenticated caller of a request. It is resolved once by
// the auth middleware and passed explicitly into every service call.
type Principal struct {
	UserID ID     `json:"userId"`
	Email  string `json:"email,omitempty"`
	Role   Role   `json:"role"`
}

func (p Principal) Is(role Role) bool {
	return p.UserID > 0 && p.Role == role
}
