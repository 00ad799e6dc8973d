package models

import "time"

// User is a vault principal. PasswordHash is a bcrypt hash computed when
// the user is registered; the clear password is never stored.
type User struct {
	ID           string
	FullName     string
	Email        string
	PasswordHash []byte
	CreatedAt    time.Time
}
