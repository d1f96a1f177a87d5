package server

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func decodeFavorites(t *testing.T, body []byte) []int {
	t.Helper()
	var resp struct {
		Status string `json:"status"`
		Data   struct {
			Favorites []int `json:"favorites"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(body, &resp))
	require.Equal(t, "success", resp.Status)
	return resp.Data.Favorites
}

func TestFavorites_RequireAuth(t *testing.T) {
	env := newTestEnv(t)

	require.Equal(t, http.StatusUnauthorized, env.do(t, http.MethodGet, "/api/favorites", "").Code)
	require.Equal(t, http.StatusUnauthorized, env.do(t, http.MethodPut, "/api/favorites/7", "").Code)
	require.Equal(t, http.StatusUnauthorized, env.do(t, http.MethodDelete, "/api/favorites/7", "").Code)
}

// An empty favorite set must serialize as [], not null.
func TestFavorites_ListEmpty(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.mintCookie(t, env.seedUser(t, "member@example.com", "Sup3r$ecret"))

	rec := env.do(t, http.MethodGet, "/api/favorites", "", cookie)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"favorites":[]`)
}

func TestFavorites_AddListRemove(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.mintCookie(t, env.seedUser(t, "member@example.com", "Sup3r$ecret"))

	require.Equal(t, http.StatusOK, env.do(t, http.MethodPut, "/api/favorites/12", "", cookie).Code)
	require.Equal(t, http.StatusOK, env.do(t, http.MethodPut, "/api/favorites/7", "", cookie).Code)

	rec := env.do(t, http.MethodGet, "/api/favorites", "", cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, []int{7, 12}, decodeFavorites(t, rec.Body.Bytes()))

	require.Equal(t, http.StatusOK, env.do(t, http.MethodDelete, "/api/favorites/12", "", cookie).Code)

	rec = env.do(t, http.MethodGet, "/api/favorites", "", cookie)
	require.Equal(t, []int{7}, decodeFavorites(t, rec.Body.Bytes()))
}

func TestFavorites_AddDuplicate(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.mintCookie(t, env.seedUser(t, "member@example.com", "Sup3r$ecret"))

	require.Equal(t, http.StatusOK, env.do(t, http.MethodPut, "/api/favorites/7", "", cookie).Code)

	rec := env.do(t, http.MethodPut, "/api/favorites/7", "", cookie)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "already in favorites")
}

func TestFavorites_RemoveMissing(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.mintCookie(t, env.seedUser(t, "member@example.com", "Sup3r$ecret"))

	rec := env.do(t, http.MethodDelete, "/api/favorites/99", "", cookie)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "not in favorites")
}

func TestFavorites_InvalidProductID(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.mintCookie(t, env.seedUser(t, "member@example.com", "Sup3r$ecret"))

	rec := env.do(t, http.MethodPut, "/api/favorites/abc", "", cookie)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "Invalid product id")
}

// Favorite sets are scoped per member.
func TestFavorites_Isolation(t *testing.T) {
	env := newTestEnv(t)
	first := env.mintCookie(t, env.seedUser(t, "first@example.com", "Sup3r$ecret"))
	second := env.mintCookie(t, env.seedUser(t, "second@example.com", "Sup3r$ecret"))

	require.Equal(t, http.StatusOK, env.do(t, http.MethodPut, "/api/favorites/7", "", first).Code)

	rec := env.do(t, http.MethodGet, "/api/favorites", "", second)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Empty(t, decodeFavorites(t, rec.Body.Bytes()))
}
