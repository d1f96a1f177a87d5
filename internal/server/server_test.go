package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"govent/internal/auth"
	"govent/internal/config"
)

const testSecret = "test-secret"

type fakeUserStore struct {
	users      map[string]*auth.User
	organizers map[int]int
	nextID     int
	err        error
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{
		users:      map[string]*auth.User{},
		organizers: map[int]int{},
		nextID:     1,
	}
}

func (f *fakeUserStore) Create(_ context.Context, nu auth.NewUser) (*auth.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	if _, ok := f.users[nu.Username]; ok {
		return nil, auth.ErrUsernameTaken
	}
	user := &auth.User{
		ID:           f.nextID,
		Username:     nu.Username,
		Name:         nu.Name,
		PasswordHash: nu.PasswordHash,
		Gender:       nu.Gender,
		Birthday:     nu.Birthday,
		Phone:        nu.Phone,
		Address:      nu.Address,
		Avatar:       "default_user.png",
		CreatedAt:    time.Now(),
	}
	f.nextID++
	f.users[nu.Username] = user
	return user, nil
}

func (f *fakeUserStore) FindByUsername(_ context.Context, username string) (*auth.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.users[username], nil
}

func (f *fakeUserStore) FindByID(_ context.Context, id int) (*auth.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, u := range f.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, nil
}

func (f *fakeUserStore) OrganizerID(_ context.Context, userID int) (*int, error) {
	if id, ok := f.organizers[userID]; ok {
		return &id, nil
	}
	return nil, nil
}

func (f *fakeUserStore) UpdatePassword(_ context.Context, userID int, passwordHash string) error {
	for _, u := range f.users {
		if u.ID == userID {
			u.PasswordHash = &passwordHash
			return nil
		}
	}
	return nil
}

func (f *fakeUserStore) UpdateProfile(_ context.Context, userID int, upd auth.ProfileUpdate) (*auth.User, error) {
	for _, u := range f.users {
		if u.ID != userID {
			continue
		}
		if upd.Name != nil {
			u.Name = *upd.Name
		}
		if upd.Gender != nil {
			u.Gender = upd.Gender
		}
		if upd.Birthday != nil {
			u.Birthday = upd.Birthday
		}
		if upd.Phone != nil {
			u.Phone = upd.Phone
		}
		if upd.Address != nil {
			u.Address = upd.Address
		}
		return u, nil
	}
	return nil, nil
}

type fakeFavoriteStore struct {
	sets map[int]map[int]bool
	err  error
}

func newFakeFavoriteStore() *fakeFavoriteStore {
	return &fakeFavoriteStore{sets: map[int]map[int]bool{}}
}

func (f *fakeFavoriteStore) List(_ context.Context, memberID int) ([]int, error) {
	if f.err != nil {
		return nil, f.err
	}
	var ids []int
	for id := range f.sets[memberID] {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids, nil
}

func (f *fakeFavoriteStore) Add(_ context.Context, memberID, productID int) error {
	if f.err != nil {
		return f.err
	}
	if f.sets[memberID] == nil {
		f.sets[memberID] = map[int]bool{}
	}
	if f.sets[memberID][productID] {
		return auth.ErrAlreadyFavorite
	}
	f.sets[memberID][productID] = true
	return nil
}

func (f *fakeFavoriteStore) Remove(_ context.Context, memberID, productID int) error {
	if f.err != nil {
		return f.err
	}
	if !f.sets[memberID][productID] {
		return auth.ErrNotFavorite
	}
	delete(f.sets[memberID], productID)
	return nil
}

// fakeResetIssuer scripts the recovery state machine's outcomes so the
// handler's status mapping can be tested without Postgres.
type fakeResetIssuer struct {
	issueErr    error
	validateErr error
	consumeErr  error

	issuedEmails    []string
	deliveredCodes  []string
	validatedCodes  []string
	consumedCodes   []string
	failDelivery    bool
	deliveryFailure error
}

func (f *fakeResetIssuer) Issue(_ context.Context, email string, deliver func(code string) error) error {
	if f.issueErr != nil {
		return f.issueErr
	}
	f.issuedEmails = append(f.issuedEmails, email)
	if f.failDelivery {
		return f.deliveryFailure
	}
	if err := deliver("123456"); err != nil {
		return err
	}
	f.deliveredCodes = append(f.deliveredCodes, "123456")
	return nil
}

func (f *fakeResetIssuer) Validate(_ context.Context, email, code string) error {
	if f.validateErr != nil {
		return f.validateErr
	}
	f.validatedCodes = append(f.validatedCodes, email+":"+code)
	return nil
}

func (f *fakeResetIssuer) ConsumeAndChangePassword(_ context.Context, email, code, _ string) error {
	if f.consumeErr != nil {
		return f.consumeErr
	}
	f.consumedCodes = append(f.consumedCodes, email+":"+code)
	return nil
}

type fakeLimiter struct {
	banned        map[string]bool
	loginFailures []string
	loginResets   []string
	mismatches    []string
	cooldowns     map[string]time.Duration
}

func newFakeLimiter() *fakeLimiter {
	return &fakeLimiter{
		banned:    map[string]bool{},
		cooldowns: map[string]time.Duration{},
	}
}

func (f *fakeLimiter) IsIPBanned(_ context.Context, ip string) bool { return f.banned[ip] }

func (f *fakeLimiter) RegisterLoginFailure(_ context.Context, ip string) error {
	f.loginFailures = append(f.loginFailures, ip)
	return nil
}

func (f *fakeLimiter) ResetLogin(_ context.Context, ip string) {
	f.loginResets = append(f.loginResets, ip)
}

func (f *fakeLimiter) RegisterCodeMismatch(_ context.Context, email string) (int64, error) {
	f.mismatches = append(f.mismatches, email)
	return int64(len(f.mismatches)), nil
}

func (f *fakeLimiter) CooldownTTL(_ context.Context, key string) time.Duration {
	return f.cooldowns[key]
}

func (f *fakeLimiter) SetCooldown(_ context.Context, key string, ttl time.Duration) {
	f.cooldowns[key] = ttl
}

type sentMail struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

type fakeMailer struct {
	sent []sentMail
	err  error
}

func (f *fakeMailer) Send(_ context.Context, to, subject, text, html string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentMail{To: to, Subject: subject, Text: text, HTML: html})
	return nil
}

type testEnv struct {
	server    *Server
	router    http.Handler
	users     *fakeUserStore
	favorites *fakeFavoriteStore
	reset     *fakeResetIssuer
	limiter   *fakeLimiter
	mailer    *fakeMailer
	hasher    *auth.BcryptHasher
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	tokens, err := auth.NewTokenService(testSecret, auth.TokenTTL)
	require.NoError(t, err)

	env := &testEnv{
		users:     newFakeUserStore(),
		favorites: newFakeFavoriteStore(),
		reset:     &fakeResetIssuer{},
		limiter:   newFakeLimiter(),
		mailer:    &fakeMailer{},
		hasher:    &auth.BcryptHasher{Cost: 4},
	}
	env.server = NewServer(config.Config{Env: "development"}, env.users, env.favorites, env.reset, tokens, env.limiter, env.mailer, env.hasher)
	env.router = env.server.Router()
	return env
}

// seedUser registers a member directly in the fake store and returns it.
func (e *testEnv) seedUser(t *testing.T, username, password string) *auth.User {
	t.Helper()
	hash, err := e.hasher.Hash(password)
	require.NoError(t, err)
	user, err := e.users.Create(context.Background(), auth.NewUser{
		Username:     username,
		PasswordHash: &hash,
		Name:         "Test Member",
	})
	require.NoError(t, err)
	return user
}

func (e *testEnv) mintCookie(t *testing.T, user *auth.User) *http.Cookie {
	t.Helper()
	token, err := e.server.Tokens.Mint(user, nil)
	require.NoError(t, err)
	return &http.Cookie{Name: auth.TokenCookieName, Value: token}
}

func (e *testEnv) do(t *testing.T, method, target, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.RemoteAddr = "198.51.100.7:51234"
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func responseCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}
