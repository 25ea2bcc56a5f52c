package repos

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"stockroom/internal/domain"
)

// LedgerRepo is the authoritative on-hand quantity per product.
// Methods take the executor so a deduction can join the caller's transaction.
type LedgerRepo struct{ db *sqlx.DB }

func NewLedgerRepo(db *sqlx.DB) *LedgerRepo { return &LedgerRepo{db: db} }

// Quantity returns current stock for a product in a shop.
func (r *LedgerRepo) Quantity(ctx context.Context, shopID, productID int64) (int, error) {
	var qty int
	err := r.db.GetContext(ctx, &qty, `
		SELECT quantity FROM products
		WHERE id = ? AND shop_id = ?
	`, productID, shopID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("product %d: %w", productID, domain.ErrNotFound)
	}
	return qty, err
}

// Deduct atomically subtracts amount if enough stock exists. The check and the
// decrement are one statement, so concurrent deductions can never overdraw.
// The product is left untouched on ErrInsufficientStock.
func (r *LedgerRepo) Deduct(ctx context.Context, ex sqlx.ExtContext, shopID, productID int64, amount int, at time.Time) error {
	if amount <= 0 {
		return fmt.Errorf("%w: deduction must be positive", domain.ErrValidation)
	}
	if ex == nil {
		ex = r.db
	}
	res, err := ex.ExecContext(ctx, `
		UPDATE products
		SET quantity = quantity - ?, updated_at = ?
		WHERE id = ? AND shop_id = ? AND quantity >= ?
	`, amount, Timestamp(at), productID, shopID, amount)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 1 {
		return nil
	}

	// Tell "gone" apart from "short".
	var have int
	err = sqlx.GetContext(ctx, ex, &have, `SELECT quantity FROM products WHERE id = ? AND shop_id = ?`, productID, shopID)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("product %d: %w", productID, domain.ErrNotFound)
	}
	if err != nil {
		return err
	}
	return fmt.Errorf("%w (need %d, have %d)", domain.ErrInsufficientStock, amount, have)
}
