package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenTTL bounds a session token's cryptographic validity. The cookie that
// carries the token lives longer (see cookie.go); a present-but-stale cookie
// is rejected by the gate with 403 rather than silently looking logged out.
const TokenTTL = 120 * time.Minute

// Claims is the identity bundle embedded in a session token: the member
// record minus the password hash, plus the organizer id when the member also
// operates an organizer account. Validity is purely cryptographic: nothing
// is persisted server-side and there is no revocation list.
type Claims struct {
	jwt.RegisteredClaims
	UserID      int    `json:"id"`
	Username    string `json:"username"`
	Name        string `json:"name"`
	Gender      string `json:"gender,omitempty"`
	Birthday    string `json:"birthday,omitempty"`
	Phone       string `json:"phone,omitempty"`
	Address     string `json:"address,omitempty"`
	Avatar      string `json:"avatar,omitempty"`
	OrganizerID *int   `json:"organizer,omitempty"`
}

type TokenService struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenService fails when no signing secret is configured. That is the
// only failure mode of minting, so it is surfaced once at startup instead of
// per request.
func NewTokenService(secret string, ttl time.Duration) (*TokenService, error) {
	if secret == "" {
		return nil, errors.New("auth: JWT signing secret is required")
	}
	if ttl <= 0 {
		ttl = TokenTTL
	}
	return &TokenService{secret: []byte(secret), ttl: ttl}, nil
}

func (s *TokenService) Mint(user *User, organizerID *int) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
		UserID:      user.ID,
		Username:    user.Username,
		Name:        user.Name,
		Gender:      stringValue(user.Gender),
		Birthday:    stringValue(user.Birthday),
		Phone:       stringValue(user.Phone),
		Address:     stringValue(user.Address),
		Avatar:      user.Avatar,
		OrganizerID: organizerID,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify returns the embedded claims, or exactly one of ErrTokenMissing,
// ErrTokenExpired, ErrTokenMalformed. Expiry wins over every other defect so
// callers can distinguish a stale session from a forged one.
func (s *TokenService) Verify(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, ErrTokenMissing
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		// A token can be both stale and badly signed. Staleness is reported
		// first so clients clear local auth state instead of treating the
		// session as forged.
		if isExpiredUnverified(tokenString) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenMalformed
	}
	if !token.Valid {
		return nil, ErrTokenMalformed
	}

	return claims, nil
}

func isExpiredUnverified(tokenString string) bool {
	token, _, err := jwt.NewParser().ParseUnverified(tokenString, &Claims{})
	if err != nil {
		return false
	}
	exp, err := token.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return !exp.Time.After(time.Now())
}

func stringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
