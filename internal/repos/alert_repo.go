package repos

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"stockroom/internal/domain"
)

type AlertRepo struct{ db *sqlx.DB }

func NewAlertRepo(db *sqlx.DB) *AlertRepo { return &AlertRepo{db: db} }

const alertCols = `
    a.product_id, p.name AS product_name, p.quantity, a.threshold, a.is_alerted`

// List returns the alert state of every product in the shop, lowest stock first.
func (r *AlertRepo) List(ctx context.Context, shopID int64) ([]domain.StockAlert, error) {
	out := []domain.StockAlert{}
	err := r.db.SelectContext(ctx, &out, `
		SELECT`+alertCols+`
		FROM stock_alerts a
		JOIN products p ON p.id = a.product_id
		WHERE p.shop_id = ?
		ORDER BY p.quantity, LOWER(p.name)
	`, shopID)
	return out, err
}

func (r *AlertRepo) Get(ctx context.Context, shopID, productID int64) (domain.StockAlert, error) {
	var a domain.StockAlert
	err := r.db.GetContext(ctx, &a, `
		SELECT`+alertCols+`
		FROM stock_alerts a
		JOIN products p ON p.id = a.product_id
		WHERE p.shop_id = ? AND a.product_id = ?
	`, shopID, productID)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.StockAlert{}, fmt.Errorf("stock alert for product %d: %w", productID, domain.ErrNotFound)
	}
	return a, err
}

// Upsert sets threshold and the latch for a product that belongs to the shop.
func (r *AlertRepo) Upsert(ctx context.Context, shopID, productID int64, threshold int, isAlerted bool) error {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO stock_alerts(product_id, threshold, is_alerted)
		SELECT id, ?, ? FROM products WHERE id = ? AND shop_id = ?
		ON CONFLICT(product_id) DO UPDATE SET threshold = excluded.threshold, is_alerted = excluded.is_alerted
	`, threshold, isAlerted, productID, shopID)
	if err != nil {
		return err
	}
	return oneRow(res, "product", productID)
}
