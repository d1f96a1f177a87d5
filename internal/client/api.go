// Package client is the Go-side session context for the member API: it keeps
// the signed-in state, the decoded member identity and the favorite set in
// sync with the backend over the cookie-based session.
package client

import (
	"context"
	"errors"
	"fmt"
)

// ErrUnauthenticated is a 401: no session cookie reached the server. The
// member simply is not signed in.
var ErrUnauthenticated = errors.New("client: not authenticated")

// ErrForbidden is a 403: a cookie was presented but its token is expired or
// malformed. Local auth state must be cleared.
var ErrForbidden = errors.New("client: session rejected")

// APIError carries a non-auth failure answer from the backend.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("client: server answered %d: %s", e.StatusCode, e.Message)
}

// User is the member identity as the backend reports it.
type User struct {
	ID        int    `json:"id"`
	Username  string `json:"username"`
	Name      string `json:"name"`
	Gender    string `json:"gender"`
	Birthday  string `json:"birthday"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
	Avatar    string `json:"avatar"`
	Organizer *int   `json:"organizer"`
}

// API is the slice of the backend the session context needs. HTTPClient is
// the real implementation; tests substitute fakes.
type API interface {
	VerifyToken(ctx context.Context) (*User, error)
	SignIn(ctx context.Context, username, password string) (*User, error)
	SignOut(ctx context.Context) error
	Favorites(ctx context.Context) ([]int, error)
	AddFavorite(ctx context.Context, productID int) error
	RemoveFavorite(ctx context.Context, productID int) error
}
