package auth

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
)

// CodeTTL is the validity window of a password-reset code.
const CodeTTL = 30 * time.Minute

// ResetCode is the single live recovery record for an email address.
// Lifecycle: issued -> verified -> consumed (row deleted). Expiry is detected
// lazily at validation time and also lets a later Issue supersede the row.
type ResetCode struct {
	ID        string
	Email     string
	CodeHash  string
	ExpiresAt time.Time
	Verified  bool
	CreatedAt time.Time
}

// CodeStore persists reset codes, at most one row per email. Supersede must
// be atomic per email so that concurrent issue/validate requests observe a
// single consistent record (the Postgres implementation relies on a unique
// key and a guarded upsert).
type CodeStore interface {
	Supersede(ctx context.Context, rec ResetCode) (bool, error)
	Find(ctx context.Context, email string) (*ResetCode, error)
	MarkVerified(ctx context.Context, email string) error
	Delete(ctx context.Context, email string) error
}

// UserDirectory is the slice of the member store the issuer needs.
type UserDirectory interface {
	FindByUsername(ctx context.Context, username string) (*User, error)
	UpdatePassword(ctx context.Context, userID int, passwordHash string) error
}

// Issuer runs the password-recovery state machine. Now is injectable for
// expiry tests and defaults to time.Now.
type Issuer struct {
	Store  CodeStore
	Users  UserDirectory
	Hasher PasswordHasher
	Now    func() time.Time
}

func NewIssuer(store CodeStore, users UserDirectory, hasher PasswordHasher) *Issuer {
	return &Issuer{Store: store, Users: users, Hasher: hasher, Now: time.Now}
}

// Issue generates a fresh six-digit code for the email and hands it to
// deliver for transport. The code is stored hashed and is never part of any
// HTTP response. A delivery failure removes the record again so the member
// is not locked behind an unusable code until it expires.
func (i *Issuer) Issue(ctx context.Context, email string, deliver func(code string) error) error {
	user, err := i.Users.FindByUsername(ctx, email)
	if err != nil {
		return fmt.Errorf("look up member: %w", err)
	}
	if user == nil {
		return ErrUnknownEmail
	}

	code, err := RandomCode()
	if err != nil {
		return fmt.Errorf("generate code: %w", err)
	}

	now := i.Now()
	rec := ResetCode{
		ID:        uuid.NewString(),
		Email:     email,
		CodeHash:  HashString(code),
		ExpiresAt: now.Add(CodeTTL),
		CreatedAt: now,
	}

	inserted, err := i.Store.Supersede(ctx, rec)
	if err != nil {
		return fmt.Errorf("store reset code: %w", err)
	}
	if !inserted {
		return ErrDuplicateRequest
	}

	if err := deliver(code); err != nil {
		_ = i.Store.Delete(ctx, email)
		return fmt.Errorf("deliver reset code: %w", err)
	}
	return nil
}

// Validate transitions a matching record to verified. An expired record is
// discarded and reported as expired even when the submitted code is wrong.
// Re-validating the correct code keeps succeeding until the record is
// consumed or expires, so the client can re-confirm before asking for the
// new password.
func (i *Issuer) Validate(ctx context.Context, email, code string) error {
	rec, err := i.Store.Find(ctx, email)
	if err != nil {
		return fmt.Errorf("load reset code: %w", err)
	}
	if rec == nil {
		return ErrCodeNotFound
	}
	if !rec.ExpiresAt.After(i.Now()) {
		_ = i.Store.Delete(ctx, email)
		return ErrCodeExpired
	}
	if HashString(code) != rec.CodeHash {
		return ErrCodeMismatch
	}
	if rec.Verified {
		return nil
	}
	if err := i.Store.MarkVerified(ctx, email); err != nil {
		return fmt.Errorf("mark reset code verified: %w", err)
	}
	return nil
}

// ConsumeAndChangePassword requires a prior successful Validate. A reset must
// actually change the credential, so a new password equal to the stored one
// is rejected before anything is written. On success the member's hash is
// replaced and the record is consumed.
func (i *Issuer) ConsumeAndChangePassword(ctx context.Context, email, code, newPassword string) error {
	rec, err := i.Store.Find(ctx, email)
	if err != nil {
		return fmt.Errorf("load reset code: %w", err)
	}
	if rec == nil || !rec.Verified {
		return ErrNotVerified
	}
	if !rec.ExpiresAt.After(i.Now()) {
		_ = i.Store.Delete(ctx, email)
		return ErrCodeExpired
	}
	if HashString(code) != rec.CodeHash {
		return ErrCodeMismatch
	}

	user, err := i.Users.FindByUsername(ctx, email)
	if err != nil {
		return fmt.Errorf("look up member: %w", err)
	}
	if user == nil {
		return ErrUnknownEmail
	}
	if user.PasswordHash != nil && i.Hasher.Compare(*user.PasswordHash, newPassword) {
		return ErrSamePassword
	}

	hashed, err := i.Hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := i.Users.UpdatePassword(ctx, user.ID, hashed); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if err := i.Store.Delete(ctx, email); err != nil {
		return fmt.Errorf("consume reset code: %w", err)
	}
	return nil
}

// RandomCode returns a uniformly random six-digit code, zero padded.
func RandomCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
