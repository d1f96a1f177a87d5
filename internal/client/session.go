package client

import (
	"context"
	"sync"
)

// State is the snapshot handed to session listeners.
type State struct {
	Authenticated bool
	User          *User
}

// Session is the client-side session context. It owns the authenticated flag,
// the member identity and the favorite cache, and keeps them consistent
// across sign-in, sign-out and the one-time restore on startup.
type Session struct {
	api       API
	favorites *Favorites

	mu            sync.Mutex
	authenticated bool
	user          *User
	listeners     []func(State)

	initOnce sync.Once
}

func NewSession(api API) *Session {
	s := &Session{api: api}
	s.favorites = NewFavorites(api, s.isAuthenticated)
	return s
}

func (s *Session) isAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.authenticated
}

func (s *Session) Favorites() *Favorites {
	return s.favorites
}

// Subscribe registers a listener for auth transitions. The listener fires on
// every state change, after the favorite cache has been updated.
func (s *Session) Subscribe(fn func(State)) {
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return State{Authenticated: s.authenticated, User: s.user}
}

// Init restores the session from the cookie, exactly once per process. Any
// failure, whether a missing cookie, a rejected token or a network error,
// leaves the session signed out without surfacing an error: an unauthenticated
// start is a normal start.
func (s *Session) Init(ctx context.Context) {
	s.initOnce.Do(func() {
		user, err := s.api.VerifyToken(ctx)
		if err != nil || user == nil {
			return
		}
		s.transition(ctx, true, user)
	})
}

// SignIn exchanges credentials for a session. On success the server has set
// the cookie and the favorite cache is loaded before listeners fire.
func (s *Session) SignIn(ctx context.Context, username, password string) error {
	user, err := s.api.SignIn(ctx, username, password)
	if err != nil {
		return err
	}
	s.transition(ctx, true, user)
	return nil
}

// SignOut ends the session locally regardless of whether the server call
// lands. The cookie clear is best effort; the token stays valid until its
// natural expiry either way.
func (s *Session) SignOut(ctx context.Context) {
	_ = s.api.SignOut(ctx)
	s.transition(ctx, false, nil)
}

// Expire handles a 403 from any API call: the cookie is present but its token
// no longer verifies, so local auth state is dropped.
func (s *Session) Expire(ctx context.Context) {
	s.transition(ctx, false, nil)
}

func (s *Session) transition(ctx context.Context, authenticated bool, user *User) {
	s.mu.Lock()
	was := s.authenticated
	s.authenticated = authenticated
	s.user = user
	listeners := make([]func(State), len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.Unlock()

	if !was && authenticated {
		// Best effort: a failed refresh leaves an empty cache, which the next
		// successful call repopulates.
		_ = s.favorites.Refresh(ctx)
	}
	if was && !authenticated {
		s.favorites.Reset()
	}

	state := State{Authenticated: authenticated, User: user}
	for _, fn := range listeners {
		fn(state)
	}
}
