package auth

import "time"

// User is a registered member. Username doubles as the login handle and is
// email-shaped; it is unique across the member table.
type User struct {
	ID           int
	Username     string
	Name         string
	PasswordHash *string // nil for members created through Google sign-in
	Gender       *string
	Birthday     *string
	Phone        *string
	Address      *string
	Avatar       string
	Point        int
	CreatedAt    time.Time
}
