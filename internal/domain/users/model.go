package users

import (
	"time"

	"pethouse/internal/ports/auth"
)

// User is an account. Registration always creates owners; admins are provisioned out of band.
type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	Role         auth.Role
	CreatedAt    time.Time
}

func (u User) Identity() auth.Identity {
	return auth.Identity{ID: u.ID, Username: u.Username, Role: u.Role}
}
