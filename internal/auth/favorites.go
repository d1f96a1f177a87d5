package auth

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// FavoriteRepository owns the authoritative per-member favorite set. Clients
// hold a cached copy that converges to this table within one round trip of
// any mutation.
type FavoriteRepository struct {
	DB *pgxpool.Pool
}

func NewFavoriteRepository(db *pgxpool.Pool) *FavoriteRepository {
	return &FavoriteRepository{DB: db}
}

func (r *FavoriteRepository) List(ctx context.Context, memberID int) ([]int, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT "product_id"
		FROM "favorite"
		WHERE "member_id"=$1
		ORDER BY "product_id"
	`, memberID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *FavoriteRepository) Add(ctx context.Context, memberID, productID int) error {
	tag, err := r.DB.Exec(ctx, `
		INSERT INTO "favorite" ("member_id","product_id")
		VALUES ($1,$2)
		ON CONFLICT ("member_id","product_id") DO NOTHING
	`, memberID, productID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrAlreadyFavorite
	}
	return nil
}

func (r *FavoriteRepository) Remove(ctx context.Context, memberID, productID int) error {
	tag, err := r.DB.Exec(ctx, `
		DELETE FROM "favorite"
		WHERE "member_id"=$1 AND "product_id"=$2
	`, memberID, productID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFavorite
	}
	return nil
}
