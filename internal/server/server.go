package server

import (
	"context"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"govent/internal/auth"
	"govent/internal/config"
)

// UserStore is the slice of the member repository the handlers need.
type UserStore interface {
	Create(ctx context.Context, nu auth.NewUser) (*auth.User, error)
	FindByUsername(ctx context.Context, username string) (*auth.User, error)
	FindByID(ctx context.Context, id int) (*auth.User, error)
	OrganizerID(ctx context.Context, userID int) (*int, error)
	UpdatePassword(ctx context.Context, userID int, passwordHash string) error
	UpdateProfile(ctx context.Context, userID int, upd auth.ProfileUpdate) (*auth.User, error)
}

// FavoriteStore is the authoritative favorite set, keyed by member.
type FavoriteStore interface {
	List(ctx context.Context, memberID int) ([]int, error)
	Add(ctx context.Context, memberID, productID int) error
	Remove(ctx context.Context, memberID, productID int) error
}

// ResetIssuer runs the password-recovery state machine.
type ResetIssuer interface {
	Issue(ctx context.Context, email string, deliver func(code string) error) error
	Validate(ctx context.Context, email, code string) error
	ConsumeAndChangePassword(ctx context.Context, email, code, newPassword string) error
}

type Limiter interface {
	IsIPBanned(ctx context.Context, ip string) bool
	RegisterLoginFailure(ctx context.Context, ip string) error
	ResetLogin(ctx context.Context, ip string)
	RegisterCodeMismatch(ctx context.Context, email string) (int64, error)
	CooldownTTL(ctx context.Context, key string) time.Duration
	SetCooldown(ctx context.Context, key string, ttl time.Duration)
}

type Mailer interface {
	Send(ctx context.Context, to, subject, text, html string) error
}

type Server struct {
	Users          UserStore
	Favorites      FavoriteStore
	Reset          ResetIssuer
	Tokens         *auth.TokenService
	RateLimiter    Limiter
	Mailer         Mailer
	Config         config.Config
	Hasher         auth.PasswordHasher
	trustedProxies []net.IPNet
}

func NewServer(cfg config.Config, users UserStore, favorites FavoriteStore, reset ResetIssuer, tokens *auth.TokenService, rl Limiter, mailer Mailer, hasher auth.PasswordHasher) *Server {
	return &Server{
		Users:          users,
		Favorites:      favorites,
		Reset:          reset,
		Tokens:         tokens,
		RateLimiter:    rl,
		Mailer:         mailer,
		Config:         cfg,
		Hasher:         hasher,
		trustedProxies: parseProxyCIDRs(cfg.TrustedProxies),
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	formatter := &middleware.DefaultLogFormatter{
		Logger:  log.New(log.Writer(), "", log.Flags()),
		NoColor: true,
	}
	r.Use(middleware.RequestLogger(formatter))
	r.Use(middleware.Recoverer)
	r.Use(secureHeaders)

	r.Post("/api/user/signup", s.handleSignup)
	r.Post("/api/user/signin", s.handleSignin)
	r.Post("/api/user/google-signin", s.handleGoogleSignin)
	r.Get("/api/user/signout", s.handleSignout)

	r.Post("/api/user/otp", s.handleOTPRequest)
	r.Post("/api/user/otp/validate", s.handleOTPValidate)
	r.Post("/api/user/reset-password", s.handleResetPassword)

	r.Group(func(pr chi.Router) {
		pr.Use(s.requireAuth)

		pr.Get("/api/user/verify", s.handleVerify)

		pr.Get("/api/favorites", s.handleListFavorites)
		pr.Put("/api/favorites/{pid}", s.handleAddFavorite)
		pr.Delete("/api/favorites/{pid}", s.handleRemoveFavorite)

		pr.Get("/api/user/{id}", s.handleGetUser)
		pr.Put("/api/user/{id}/profile", s.handleUpdateProfile)
		pr.Put("/api/user/{id}/password", s.handleChangePassword)
	})

	return r
}
