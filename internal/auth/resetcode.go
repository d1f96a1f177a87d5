package auth

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ResetCodeRepository is the Postgres CodeStore. The unique key on email plus
// the guarded upsert in Supersede serialize concurrent issuers: recovery
// state lives in a table, never process memory, so it survives restarts and
// more than one instance.
type ResetCodeRepository struct {
	DB *pgxpool.Pool
}

func NewResetCodeRepository(db *pgxpool.Pool) *ResetCodeRepository {
	return &ResetCodeRepository{DB: db}
}

// Supersede inserts the record, replacing a prior row only when that row has
// expired. Returns false when a live unexpired row blocks the insert.
func (r *ResetCodeRepository) Supersede(ctx context.Context, rec ResetCode) (bool, error) {
	tag, err := r.DB.Exec(ctx, `
		INSERT INTO "password_reset_code"
		("id","email","code_hash","expires_at","verified","created_at")
		VALUES ($1,$2,$3,$4,FALSE,$5)
		ON CONFLICT ("email") DO UPDATE
		SET "id"=EXCLUDED."id",
		    "code_hash"=EXCLUDED."code_hash",
		    "expires_at"=EXCLUDED."expires_at",
		    "verified"=FALSE,
		    "created_at"=EXCLUDED."created_at"
		WHERE "password_reset_code"."expires_at" <= NOW()
	`, rec.ID, rec.Email, rec.CodeHash, rec.ExpiresAt, rec.CreatedAt)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *ResetCodeRepository) Find(ctx context.Context, email string) (*ResetCode, error) {
	row := r.DB.QueryRow(ctx, `
		SELECT "id","email","code_hash","expires_at","verified","created_at"
		FROM "password_reset_code"
		WHERE "email"=$1
	`, email)

	var rec ResetCode
	if err := row.Scan(&rec.ID, &rec.Email, &rec.CodeHash, &rec.ExpiresAt, &rec.Verified, &rec.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}

func (r *ResetCodeRepository) MarkVerified(ctx context.Context, email string) error {
	_, err := r.DB.Exec(ctx, `
		UPDATE "password_reset_code" SET "verified"=TRUE WHERE "email"=$1
	`, email)
	return err
}

func (r *ResetCodeRepository) Delete(ctx context.Context, email string) error {
	_, err := r.DB.Exec(ctx, `
		DELETE FROM "password_reset_code" WHERE "email"=$1
	`, email)
	return err
}
