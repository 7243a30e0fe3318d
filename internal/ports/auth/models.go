package auth

import "strings"

// Role of an authenticated user. Registration always yields RoleOwner.
type Role string

const (
	RoleOwner Role = "owner"
	RoleAdmin Role = "admin"
)

// ParseRole falls back to RoleOwner for anything unknown, so a corrupted value never grants admin.
func ParseRole(s string) Role {
	if Role(strings.ToLower(strings.TrimSpace(s))) == RoleAdmin {
		return RoleAdmin
	}
	return RoleOwner
}

// Identity is the authenticated principal for a request.
type Identity struct {
	ID       int64
	Username string
	Role     Role
}

func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}

func (i Identity) Valid() bool {
	return i.ID > 0
}
