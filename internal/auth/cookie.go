package auth

import (
	"net/http"
	"time"
)

const TokenCookieName = "auth_token"

// The cookie outlives the token on purpose: max-age 24h against a 120 minute
// claim TTL. The gate answers 403 for the stale-but-present window, which the
// client treats as "clear local auth state and sign in again".
const cookieMaxAge = 24 * time.Hour

// SetTokenCookie stores the signed token. The production frontend is served
// from a different origin, so prod needs SameSite=None, which in turn
// requires Secure; dev stays on Lax over plain HTTP.
func SetTokenCookie(w http.ResponseWriter, token string, production bool) {
	http.SetCookie(w, tokenCookie(token, int(cookieMaxAge.Seconds()), production))
}

func ClearTokenCookie(w http.ResponseWriter, production bool) {
	http.SetCookie(w, tokenCookie("", -1, production))
}

func tokenCookie(value string, maxAge int, production bool) *http.Cookie {
	c := &http.Cookie{
		Name:     TokenCookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	if production {
		c.Secure = true
		c.SameSite = http.SameSiteNoneMode
	}
	return c
}
