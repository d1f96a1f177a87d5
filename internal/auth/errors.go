package auth

import "errors"

// Token verification failures. Verify returns exactly one of these; the gate
// maps missing to 401 and the other two to 403.
var (
	ErrTokenMissing   = errors.New("auth: token missing")
	ErrTokenExpired   = errors.New("auth: token expired")
	ErrTokenMalformed = errors.New("auth: token malformed")
)

// Member account failures.
var (
	ErrUsernameTaken = errors.New("auth: username already registered")
	ErrUnknownEmail  = errors.New("auth: email not registered")
)

// Password-recovery state machine failures.
var (
	ErrDuplicateRequest = errors.New("auth: live reset code already exists")
	ErrCodeNotFound     = errors.New("auth: no reset code for email")
	ErrCodeExpired      = errors.New("auth: reset code expired")
	ErrCodeMismatch     = errors.New("auth: reset code mismatch")
	ErrNotVerified      = errors.New("auth: reset code not verified")
	ErrSamePassword     = errors.New("auth: new password equals current password")
)

// Favorite set failures.
var (
	ErrAlreadyFavorite = errors.New("auth: product already in favorites")
	ErrNotFavorite     = errors.New("auth: product not in favorites")
)
