package server

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"govent/internal/auth"
)

func TestSignup_Success(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/user/signup",
		`{"username":"new@example.com","password":"Sup3r$ecret","name":"New Member","county":"Taipei","township":"Daan","address":"1 Main St"}`)

	require.Equal(t, http.StatusCreated, rec.Code)
	require.Contains(t, rec.Body.String(), "Registration successful")

	user := env.users.users["new@example.com"]
	require.NotNil(t, user)
	require.NotNil(t, user.Address)
	require.Equal(t, "TaipeiDaan1 Main St", *user.Address)
	require.NotNil(t, user.PasswordHash)
	require.True(t, env.hasher.Compare(*user.PasswordHash, "Sup3r$ecret"))
}

func TestSignup_DuplicateEmail(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "taken@example.com", "Sup3r$ecret")

	rec := env.do(t, http.MethodPost, "/api/user/signup",
		`{"username":"taken@example.com","password":"Sup3r$ecret","name":"Another"}`)

	require.Equal(t, http.StatusConflict, rec.Code)
	require.Contains(t, rec.Body.String(), "already registered")
}

func TestSignup_WeakPassword(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/user/signup",
		`{"username":"new@example.com","password":"short","name":"New Member"}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Empty(t, env.users.users)
}

func TestSignin_Success(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "member@example.com", "Sup3r$ecret")

	rec := env.do(t, http.MethodPost, "/api/user/signin",
		`{"username":"member@example.com","password":"Sup3r$ecret"}`)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Message string `json:"message"`
		User    struct {
			ID       int    `json:"id"`
			Username string `json:"username"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "Login successful", body.Message)
	require.Equal(t, "member@example.com", body.User.Username)

	cookie := responseCookie(rec, auth.TokenCookieName)
	require.NotNil(t, cookie)
	require.NotEmpty(t, cookie.Value)
	require.True(t, cookie.HttpOnly)
	require.Equal(t, 86400, cookie.MaxAge)

	// The minted token must satisfy the gate.
	verify := env.do(t, http.MethodGet, "/api/user/verify", "", cookie)
	require.Equal(t, http.StatusOK, verify.Code)

	require.Equal(t, []string{"198.51.100.7"}, env.limiter.loginResets)
	require.Len(t, env.mailer.sent, 1)
	require.Equal(t, "member@example.com", env.mailer.sent[0].To)
}

func TestSignin_WrongPassword(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "member@example.com", "Sup3r$ecret")

	rec := env.do(t, http.MethodPost, "/api/user/signin",
		`{"username":"member@example.com","password":"WrongPass1!"}`)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Contains(t, rec.Body.String(), "Authentication failed")
	require.Nil(t, responseCookie(rec, auth.TokenCookieName))
	require.Equal(t, []string{"198.51.100.7"}, env.limiter.loginFailures)
}

// An unknown email and a wrong password must be indistinguishable.
func TestSignin_UnknownEmailSameAnswer(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/user/signin",
		`{"username":"nobody@example.com","password":"WrongPass1!"}`)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Contains(t, rec.Body.String(), "Authentication failed")
}

func TestSignin_BannedIP(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "member@example.com", "Sup3r$ecret")
	env.limiter.banned["198.51.100.7"] = true

	rec := env.do(t, http.MethodPost, "/api/user/signin",
		`{"username":"member@example.com","password":"Sup3r$ecret"}`)

	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Contains(t, rec.Body.String(), "IP_BANNED")
}

func TestGoogleSignin_CreatesMissingMember(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/user/google-signin",
		`{"googleUser":{"email":"g@example.com","name":"Google Member"}}`)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, responseCookie(rec, auth.TokenCookieName))

	user := env.users.users["g@example.com"]
	require.NotNil(t, user)
	require.Equal(t, "Google Member", user.Name)
	require.Nil(t, user.PasswordHash)
}

func TestGoogleSignin_ExistingMember(t *testing.T) {
	env := newTestEnv(t)
	seeded := env.seedUser(t, "g@example.com", "Sup3r$ecret")

	rec := env.do(t, http.MethodPost, "/api/user/google-signin",
		`{"googleUser":{"email":"g@example.com","name":"Renamed"}}`)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, seeded.ID, env.users.users["g@example.com"].ID)
	require.Equal(t, "Test Member", env.users.users["g@example.com"].Name)
}

func TestSignout_ClearsCookie(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/user/signout", "")

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "User has signed out")

	cookie := responseCookie(rec, auth.TokenCookieName)
	require.NotNil(t, cookie)
	require.Empty(t, cookie.Value)
	require.Less(t, cookie.MaxAge, 0)
}
