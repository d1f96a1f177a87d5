package client

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSession_InitRestoresSession(t *testing.T) {
	api := newFakeAPI()
	api.serverSet = map[int]bool{7: true}
	s := NewSession(api)

	s.Init(context.Background())

	state := s.State()
	require.True(t, state.Authenticated)
	require.Equal(t, "member@example.com", state.User.Username)
	require.Equal(t, []int{7}, s.Favorites().List())
}

// Init runs the verify call exactly once per process, however often it is
// invoked.
func TestSession_InitRunsOnce(t *testing.T) {
	api := newFakeAPI()
	s := NewSession(api)
	ctx := context.Background()

	s.Init(ctx)
	s.Init(ctx)
	s.Init(ctx)

	require.Equal(t, 1, api.verifyCalls)
}

// A rejected or missing cookie on startup is a normal signed-out start, not
// an error surface.
func TestSession_InitFailureStaysSignedOut(t *testing.T) {
	api := newFakeAPI()
	api.verifyErr = ErrForbidden
	s := NewSession(api)

	s.Init(context.Background())

	require.False(t, s.State().Authenticated)
	require.Nil(t, s.State().User)
}

func TestSession_SignInLoadsFavoritesBeforeListeners(t *testing.T) {
	api := newFakeAPI()
	api.serverSet = map[int]bool{7: true, 12: true}
	s := NewSession(api)

	var sawFavorites []int
	s.Subscribe(func(state State) {
		if state.Authenticated {
			sawFavorites = s.Favorites().List()
		}
	})

	require.NoError(t, s.SignIn(context.Background(), "member@example.com", "Sup3r$ecret"))
	require.Equal(t, []int{7, 12}, sawFavorites)
}

func TestSession_SignInFailure(t *testing.T) {
	api := newFakeAPI()
	api.signInErr = ErrUnauthenticated
	s := NewSession(api)

	err := s.SignIn(context.Background(), "member@example.com", "WrongPass1!")
	require.ErrorIs(t, err, ErrUnauthenticated)
	require.False(t, s.State().Authenticated)
}

func TestSession_SignOutResetsFavorites(t *testing.T) {
	api := newFakeAPI()
	api.serverSet = map[int]bool{7: true}
	s := NewSession(api)
	ctx := context.Background()

	require.NoError(t, s.SignIn(ctx, "member@example.com", "Sup3r$ecret"))
	require.Equal(t, []int{7}, s.Favorites().List())

	s.SignOut(ctx)

	require.False(t, s.State().Authenticated)
	require.Empty(t, s.Favorites().List())
}

// Sign-out ends the local session even when the server call fails.
func TestSession_SignOutIsBestEffort(t *testing.T) {
	api := newFakeAPI()
	api.signOutErr = &APIError{StatusCode: 500, Message: "boom"}
	s := NewSession(api)
	ctx := context.Background()

	require.NoError(t, s.SignIn(ctx, "member@example.com", "Sup3r$ecret"))
	s.SignOut(ctx)

	require.False(t, s.State().Authenticated)
}

func TestSession_ListenersSeeTransitions(t *testing.T) {
	api := newFakeAPI()
	s := NewSession(api)
	ctx := context.Background()

	var states []bool
	s.Subscribe(func(state State) {
		states = append(states, state.Authenticated)
	})

	require.NoError(t, s.SignIn(ctx, "member@example.com", "Sup3r$ecret"))
	s.SignOut(ctx)

	require.Equal(t, []bool{true, false}, states)
}

// A toggle without a session fails locally; no request reaches the server.
func TestSession_ToggleRequiresAuth(t *testing.T) {
	api := newFakeAPI()
	s := NewSession(api)

	_, err := s.Favorites().Toggle(context.Background(), 7)
	require.ErrorIs(t, err, ErrUnauthenticated)
	require.Empty(t, api.serverSet)
}

func TestSession_ExpireClearsState(t *testing.T) {
	api := newFakeAPI()
	api.serverSet = map[int]bool{7: true}
	s := NewSession(api)
	ctx := context.Background()

	require.NoError(t, s.SignIn(ctx, "member@example.com", "Sup3r$ecret"))
	s.Expire(ctx)

	require.False(t, s.State().Authenticated)
	require.Empty(t, s.Favorites().List())
}
