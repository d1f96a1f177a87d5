package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const memberColumns = `"id","username","password","name","gender","birthday","phone","address","avatar","point","created_at"`

type UserRepository struct {
	DB *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{DB: db}
}

// NewUser carries the signup fields. Password hash is nil for members created
// through Google sign-in.
type NewUser struct {
	Username     string
	PasswordHash *string
	Name         string
	Gender       *string
	Birthday     *string
	Phone        *string
	Address      *string
}

func (r *UserRepository) Create(ctx context.Context, nu NewUser) (*User, error) {
	row := r.DB.QueryRow(ctx, `
		INSERT INTO "member"
		("username","password","name","gender","birthday","phone","address","avatar","point")
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		RETURNING `+memberColumns+`
	`, nu.Username, nu.PasswordHash, nu.Name, nu.Gender, nu.Birthday, nu.Phone, nu.Address, "default_user.png", 0)

	user, err := scanUser(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrUsernameTaken
		}
		return nil, err
	}
	return user, nil
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*User, error) {
	row := r.DB.QueryRow(ctx, `
		SELECT `+memberColumns+`
		FROM "member"
		WHERE "username"=$1
	`, username)
	user, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return user, err
}

func (r *UserRepository) FindByID(ctx context.Context, id int) (*User, error) {
	row := r.DB.QueryRow(ctx, `
		SELECT `+memberColumns+`
		FROM "member"
		WHERE "id"=$1
	`, id)
	user, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return user, err
}

// OrganizerID returns the member's organizer account id, or nil when the
// member does not run one. Sign-in embeds it in the token claims.
func (r *UserRepository) OrganizerID(ctx context.Context, userID int) (*int, error) {
	row := r.DB.QueryRow(ctx, `
		SELECT "id" FROM "organizer" WHERE "user_id"=$1
	`, userID)

	var id int
	if err := row.Scan(&id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &id, nil
}

func (r *UserRepository) UpdatePassword(ctx context.Context, userID int, passwordHash string) error {
	tag, err := r.DB.Exec(ctx, `
		UPDATE "member" SET "password"=$1 WHERE "id"=$2
	`, passwordHash, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("member %d not found", userID)
	}
	return nil
}

// ProfileUpdate carries the mutable profile fields; nil means unchanged.
type ProfileUpdate struct {
	Name     *string
	Gender   *string
	Birthday *string
	Phone    *string
	Address  *string
}

func (r *UserRepository) UpdateProfile(ctx context.Context, userID int, upd ProfileUpdate) (*User, error) {
	sets := []string{}
	args := []interface{}{}
	idx := 1

	appendSet := func(column string, val *string) {
		if val == nil {
			return
		}
		sets = append(sets, fmt.Sprintf(`"%s"=$%d`, column, idx))
		args = append(args, *val)
		idx++
	}
	appendSet("name", upd.Name)
	appendSet("gender", upd.Gender)
	appendSet("birthday", upd.Birthday)
	appendSet("phone", upd.Phone)
	appendSet("address", upd.Address)

	if len(sets) == 0 {
		return r.FindByID(ctx, userID)
	}

	args = append(args, userID)
	query := fmt.Sprintf(`
		UPDATE "member"
		SET %s
		WHERE "id"=$%d
		RETURNING `+memberColumns+`
	`, strings.Join(sets, ","), idx)

	row := r.DB.QueryRow(ctx, query, args...)
	user, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return user, err
}

func scanUser(row pgx.Row) (*User, error) {
	var (
		id        int
		username  string
		password  sql.NullString
		name      string
		gender    sql.NullString
		birthday  sql.NullString
		phone     sql.NullString
		address   sql.NullString
		avatar    sql.NullString
		point     int
		createdAt time.Time
	)

	if err := row.Scan(
		&id,
		&username,
		&password,
		&name,
		&gender,
		&birthday,
		&phone,
		&address,
		&avatar,
		&point,
		&createdAt,
	); err != nil {
		return nil, err
	}

	return &User{
		ID:           id,
		Username:     username,
		Name:         name,
		PasswordHash: nullStringPtr(password),
		Gender:       nullStringPtr(gender),
		Birthday:     nullStringPtr(birthday),
		Phone:        nullStringPtr(phone),
		Address:      nullStringPtr(address),
		Avatar:       stringOrDefault(avatar, "default_user.png"),
		Point:        point,
		CreatedAt:    createdAt,
	}, nil
}

func nullStringPtr(ns sql.NullString) *string {
	if ns.Valid {
		return &ns.String
	}
	return nil
}

func stringOrDefault(ns sql.NullString, def string) string {
	if ns.Valid {
		return ns.String
	}
	return def
}
