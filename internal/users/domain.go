package users

import "time"

// User represents a registered account. PasswordHash is an opaque bcrypt
// digest and is never serialised.
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Name         string    `json:"name"`
	CreatedAt    time.Time `json:"-"`
}
