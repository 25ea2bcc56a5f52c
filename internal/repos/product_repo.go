package repos

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"stockroom/internal/domain"
)

type ProductRepo struct{ db *sqlx.DB }

func NewProductRepo(db *sqlx.DB) *ProductRepo { return &ProductRepo{db: db} }

const productCols = `
    p.id, p.shop_id, p.name, p.category_id, c.name AS category_name,
    p.quantity, p.price, p.created_at, p.updated_at`

func (r *ProductRepo) List(ctx context.Context, shopID int64) ([]domain.Product, error) {
	out := []domain.Product{}
	err := r.db.SelectContext(ctx, &out, `
  SELECT`+productCols+`
  FROM products p
  LEFT JOIN categories c ON c.id = p.category_id
  WHERE p.shop_id = ?
  ORDER BY LOWER(p.name), p.id
`, shopID)
	return out, err
}

func (r *ProductRepo) Get(ctx context.Context, shopID, id int64) (domain.Product, error) {
	return r.GetIn(ctx, r.db, shopID, id)
}

// GetIn reads a product through q, which may be an open transaction.
// A product of another shop is reported as not found.
func (r *ProductRepo) GetIn(ctx context.Context, q sqlx.QueryerContext, shopID, id int64) (domain.Product, error) {
	var p domain.Product
	err := sqlx.GetContext(ctx, q, &p, `
  SELECT`+productCols+`
  FROM products p
  LEFT JOIN categories c ON c.id = p.category_id
  WHERE p.id = ? AND p.shop_id = ?
`, id, shopID)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Product{}, fmt.Errorf("product %d: %w", id, domain.ErrNotFound)
	}
	return p, err
}

// FindByName matches case-insensitively within a shop.
func (r *ProductRepo) FindByName(ctx context.Context, shopID int64, name string) (domain.Product, error) {
	var p domain.Product
	err := r.db.GetContext(ctx, &p, `
  SELECT`+productCols+`
  FROM products p
  LEFT JOIN categories c ON c.id = p.category_id
  WHERE p.shop_id = ? AND LOWER(p.name) = LOWER(?)
  ORDER BY p.id
  LIMIT 1
`, shopID, name)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Product{}, fmt.Errorf("product %q: %w", name, domain.ErrNotFound)
	}
	return p, err
}

// Create inserts the product together with its stock alert row.
func (r *ProductRepo) Create(ctx context.Context, p *domain.Product, threshold int) error {
	return InTx(ctx, r.db, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, `
		  INSERT INTO products(shop_id, name, category_id, quantity, price, created_at, updated_at)
		  VALUES (?, ?, ?, ?, ?, ?, ?)
		`, p.ShopID, p.Name, p.CategoryID, p.Quantity, p.Price, p.CreatedAt, p.UpdatedAt)
		if err != nil {
			return err
		}
		if p.ID, err = res.LastInsertId(); err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `INSERT INTO stock_alerts(product_id, threshold, is_alerted) VALUES (?, ?, 0)`, p.ID, threshold)
		return err
	})
}

// Update replaces name, category and price. Quantity is written only when
// setQuantity is true, so an edit racing a sale cannot restore stock the sale
// already deducted. Setting it is the restock path.
func (r *ProductRepo) Update(ctx context.Context, p *domain.Product, setQuantity bool) error {
	qty := sql.NullInt64{Int64: int64(p.Quantity), Valid: setQuantity}
	res, err := r.db.ExecContext(ctx, `
	  UPDATE products
	  SET name = ?, category_id = ?, quantity = COALESCE(?, quantity), price = ?, updated_at = ?
	  WHERE id = ? AND shop_id = ?
	`, p.Name, p.CategoryID, qty, p.Price, p.UpdatedAt, p.ID, p.ShopID)
	if err != nil {
		return err
	}
	return oneRow(res, "product", p.ID)
}

func (r *ProductRepo) Delete(ctx context.Context, shopID, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = ? AND shop_id = ?`, id, shopID)
	if err != nil {
		return err
	}
	return oneRow(res, "product", id)
}

func oneRow(res sql.Result, what string, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s %d: %w", what, id, domain.ErrNotFound)
	}
	return nil
}
