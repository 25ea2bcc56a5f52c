package repos

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"stockroom/internal/domain"
)

type ShopRepo struct{ db *sqlx.DB }

func NewShopRepo(db *sqlx.DB) *ShopRepo { return &ShopRepo{db: db} }

func (r *ShopRepo) Get(ctx context.Context, id int64) (domain.Shop, error) {
	var s domain.Shop
	err := r.db.GetContext(ctx, &s, `SELECT id, name FROM shops WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Shop{}, fmt.Errorf("shop %d: %w", id, domain.ErrNotFound)
	}
	return s, err
}
