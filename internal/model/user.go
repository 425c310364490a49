package model

import "time"

// Roles stored in users.role.  ADMIN accounts manage the catalog and can
// see every order; USER accounts book tickets and see their own.
const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

// User mirrors the `users` table.  Only the bcrypt hash of the password
// is ever stored.
type User struct {
	ID            uint64    // users.user_id
	Username      string    // users.username
	PasswordHash  string    // users.password_hash
	PreferredName string    // users.preferred_name
	Role          string    // users.role
	CreatedAt     time.Time // users.created_at
}
