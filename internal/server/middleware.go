package server

import (
	"context"
	"net/http"

	"govent/internal/auth"
)

type ctxKey string

const claimsContextKey ctxKey = "claims"

// requireAuth is the session gate. The two failure tiers are deliberate and
// load-bearing for the client: a missing cookie answers 401 before Verify is
// even consulted ("not logged in, go sign in"), while a presented but
// expired or malformed token answers 403 ("clear local auth state"). The
// 24h cookie outliving the 120m token makes the 403 path a routine
// occurrence, not an edge case.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(auth.TokenCookieName)
		if err != nil || cookie.Value == "" {
			writeError(w, http.StatusUnauthorized, "Access token is missing")
			return
		}

		claims, err := s.Tokens.Verify(cookie.Value)
		if err != nil {
			writeError(w, http.StatusForbidden, "Invalid access token")
			return
		}

		ctx := context.WithValue(r.Context(), claimsContextKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func claimsFromContext(ctx context.Context) *auth.Claims {
	if val, ok := ctx.Value(claimsContextKey).(*auth.Claims); ok {
		return val
	}
	return nil
}
