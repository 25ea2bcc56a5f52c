package domain

import (
	"database/sql"

	"github.com/shopspring/decimal"
)

type Shop struct {
	ID   int64  `db:"id"`
	Name string `db:"name"`
}

type Category struct {
	ID   int64  `db:"id"`
	Name string `db:"name"`
}

type Product struct {
	ID           int64           `db:"id"`
	ShopID       int64           `db:"shop_id"`
	Name         string          `db:"name"`
	CategoryID   sql.NullInt64   `db:"category_id"`
	CategoryName sql.NullString  `db:"category_name"` // joined, read-only
	Quantity     int             `db:"quantity"`
	Price        decimal.Decimal `db:"price"`
	CreatedAt    string          `db:"created_at"`
	UpdatedAt    string          `db:"updated_at"`
}

// Sale is immutable once written. ProductID is NULL after the product is deleted;
// ProductName keeps what was sold.
type Sale struct {
	ID           int64           `db:"id"`
	ShopID       int64           `db:"shop_id"`
	ProductID    sql.NullInt64   `db:"product_id"`
	ProductName  string          `db:"product_name"`
	QuantitySold int             `db:"quantity_sold"`
	TotalPrice   decimal.Decimal `db:"total_price"`
	CreatedAt    string          `db:"created_at"`
}

type StockAlert struct {
	ProductID   int64  `db:"product_id"`
	ProductName string `db:"product_name"`
	Quantity    int    `db:"quantity"`
	Threshold   int    `db:"threshold"`
	IsAlerted   bool   `db:"is_alerted"`
}

// LowStock reports whether on-hand quantity is at or below the threshold.
// It is computed on read and never latches IsAlerted.
func (a StockAlert) LowStock() bool { return a.Quantity <= a.Threshold }

// Availability is IN_STOCK | LOW_STOCK | OUT_OF_STOCK.
func (a StockAlert) Availability() string {
	switch {
	case a.Quantity <= 0:
		return "OUT_OF_STOCK"
	case a.LowStock():
		return "LOW_STOCK"
	}
	return "IN_STOCK"
}

// SalesCounts holds revenue sums for the current day, ISO week and month.
type SalesCounts struct {
	Daily   decimal.Decimal
	Weekly  decimal.Decimal
	Monthly decimal.Decimal
}
