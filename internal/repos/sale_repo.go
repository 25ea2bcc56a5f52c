package repos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"stockroom/internal/domain"
)

type SaleRepo struct{ db *sqlx.DB }

func NewSaleRepo(db *sqlx.DB) *SaleRepo { return &SaleRepo{db: db} }

// Insert writes an immutable sale row through ex and sets s.ID.
func (r *SaleRepo) Insert(ctx context.Context, ex sqlx.ExtContext, s *domain.Sale) error {
	if ex == nil {
		ex = r.db
	}
	res, err := ex.ExecContext(ctx, `
	  INSERT INTO sales(shop_id, product_id, product_name, quantity_sold, total_price, created_at)
	  VALUES (?, ?, ?, ?, ?, ?)
	`, s.ShopID, s.ProductID, s.ProductName, s.QuantitySold, s.TotalPrice, s.CreatedAt)
	if err != nil {
		return err
	}
	s.ID, err = res.LastInsertId()
	return err
}

func (r *SaleRepo) List(ctx context.Context, shopID int64, limit int) ([]domain.Sale, error) {
	if limit <= 0 {
		limit = 100
	}
	out := []domain.Sale{}
	err := r.db.SelectContext(ctx, &out, `
		SELECT id, shop_id, product_id, product_name, quantity_sold, total_price, created_at
		FROM sales
		WHERE shop_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, shopID, limit)
	return out, err
}

// CountForProduct is the number of sale rows referencing a product.
func (r *SaleRepo) CountForProduct(ctx context.Context, shopID, productID int64) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM sales WHERE shop_id = ? AND product_id = ?`, shopID, productID)
	return n, err
}

// Total sums total_price for sales created in [from, to). Sums are done in
// decimal rather than with SQL SUM, which would go through floating point.
func (r *SaleRepo) Total(ctx context.Context, shopID int64, from, to string) (decimal.Decimal, error) {
	var prices []decimal.Decimal
	if err := r.db.SelectContext(ctx, &prices, `
		SELECT total_price FROM sales
		WHERE shop_id = ? AND created_at >= ? AND created_at < ?
	`, shopID, from, to); err != nil {
		return decimal.Zero, err
	}
	return decimal.Sum(decimal.Zero, prices...), nil
}
