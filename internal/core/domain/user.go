package domain

import "time"

// User mirrors the persisted representation in the users table. The role is
// assigned at registration and mutated only by administrative action.
type User struct {
	ID           string
	Username     string
	PasswordHash string
	Role         Role
	RegisteredAt time.Time
}

// Principal returns the identity this user authenticates as.
func (u User) Principal() Principal {
	return Principal{
		Identifier: u.Username,
		Roles:      []Role{u.Role},
	}
}
