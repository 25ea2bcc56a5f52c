package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"stockroom/internal/domain"
	"stockroom/internal/repos"
	"stockroom/internal/validate"
)

// BatchMode decides what happens to earlier lines when a later line fails.
type BatchMode string

const (
	// BestEffort commits each line on its own; lines before a failure stay committed.
	BestEffort BatchMode = "best_effort"
	// Atomic commits the whole batch or nothing.
	Atomic BatchMode = "atomic"
)

// ParseBatchMode returns def for an empty string.
func ParseBatchMode(s string, def BatchMode) (BatchMode, error) {
	if s == "" {
		return def, nil
	}
	m, ok := validate.BatchMode(s)
	if !ok {
		return "", fmt.Errorf("%w: mode must be best_effort or atomic", domain.ErrValidation)
	}
	return BatchMode(m), nil
}

type LineItem struct {
	ProductID int64
	Quantity  int
}

// LineError carries the index of the line that stopped a batch.
type LineError struct {
	Line int
	Err  error
}

func (e *LineError) Error() string { return fmt.Sprintf("line %d: %v", e.Line, e.Err) }
func (e *LineError) Unwrap() error { return e.Err }

var (
	ErrNoSales      = fmt.Errorf("%w: No sales data provided", domain.ErrValidation)
	ErrLineRequired = fmt.Errorf("%w: Product ID and quantity are required", domain.ErrValidation)
)

type SaleService struct {
	DB       *sqlx.DB
	Products *repos.ProductRepo
	Ledger   *repos.LedgerRepo
	Sales    *repos.SaleRepo
	Audit    Notifier
	Clock    Clock
}

func NewSaleService(db *sqlx.DB, products *repos.ProductRepo, ledger *repos.LedgerRepo, sales *repos.SaleRepo, audit Notifier, clock Clock) *SaleService {
	return &SaleService{DB: db, Products: products, Ledger: ledger, Sales: sales, Audit: notifierOrNop(audit), Clock: clock}
}

// Record applies lines in order for the actor's shop and returns the created
// sales. It stops at the first failing line and returns a *LineError.
//
// In BestEffort mode each line (deduction plus sale row) is its own
// transaction, so the returned slice holds the lines committed before the
// failure. In Atomic mode a failure rolls back every line and the slice is nil.
func (s *SaleService) Record(ctx context.Context, actor domain.Actor, lines []LineItem, mode BatchMode) ([]domain.Sale, error) {
	if len(lines) == 0 {
		return nil, ErrNoSales
	}
	if mode == Atomic {
		return s.recordAtomic(ctx, actor, lines)
	}

	out := make([]domain.Sale, 0, len(lines))
	for i, line := range lines {
		var sale domain.Sale
		err := repos.InTx(ctx, s.DB, func(tx *sqlx.Tx) error {
			var err error
			sale, err = s.recordLine(ctx, tx, actor, line)
			return err
		})
		if err != nil {
			return out, &LineError{Line: i, Err: err}
		}
		s.emit(ctx, actor, sale)
		out = append(out, sale)
	}
	return out, nil
}

func (s *SaleService) recordAtomic(ctx context.Context, actor domain.Actor, lines []LineItem) ([]domain.Sale, error) {
	out := make([]domain.Sale, 0, len(lines))
	err := repos.InTx(ctx, s.DB, func(tx *sqlx.Tx) error {
		for i, line := range lines {
			sale, err := s.recordLine(ctx, tx, actor, line)
			if err != nil {
				return &LineError{Line: i, Err: err}
			}
			out = append(out, sale)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	for _, sale := range out {
		s.emit(ctx, actor, sale)
	}
	return out, nil
}

// recordLine validates, resolves, deducts and writes one sale inside tx.
func (s *SaleService) recordLine(ctx context.Context, tx *sqlx.Tx, actor domain.Actor, line LineItem) (domain.Sale, error) {
	if line.ProductID <= 0 || !validate.SaleQty(line.Quantity) {
		return domain.Sale{}, ErrLineRequired
	}
	p, err := s.Products.GetIn(ctx, tx, actor.ShopID, line.ProductID)
	if err != nil {
		return domain.Sale{}, err
	}
	total := p.Price.Mul(decimal.NewFromInt(int64(line.Quantity)))

	now := nowOf(s.Clock)
	if err := s.Ledger.Deduct(ctx, tx, actor.ShopID, p.ID, line.Quantity, now); err != nil {
		if errors.Is(err, domain.ErrInsufficientStock) {
			return domain.Sale{}, fmt.Errorf("%s: %w", p.Name, err)
		}
		return domain.Sale{}, err
	}

	sale := domain.Sale{
		ShopID:       actor.ShopID,
		ProductName:  p.Name,
		QuantitySold: line.Quantity,
		TotalPrice:   total,
		CreatedAt:    repos.Timestamp(now),
	}
	sale.ProductID.Int64, sale.ProductID.Valid = p.ID, true
	if err := s.Sales.Insert(ctx, tx, &sale); err != nil {
		return domain.Sale{}, err
	}
	return sale, nil
}

func (s *SaleService) emit(ctx context.Context, actor domain.Actor, sale domain.Sale) {
	s.Audit.Notify(ctx, newEvent(s.Clock, actor, domain.ActionSale, "Sale", sale.ID, map[string]any{
		"description": fmt.Sprintf("Sold %d x %s", sale.QuantitySold, sale.ProductName),
		"product":     sale.ProductName,
		"quantity":    sale.QuantitySold,
		"total_price": sale.TotalPrice.StringFixed(2),
		"shop":        actor.ShopName,
	}))
}

func (s *SaleService) List(ctx context.Context, shopID int64, limit int) ([]domain.Sale, error) {
	return s.Sales.List(ctx, shopID, limit)
}

// Counts sums revenue for today, the ISO week so far (Monday start) and the
// month so far, in the clock's location.
func (s *SaleService) Counts(ctx context.Context, shopID int64) (domain.SalesCounts, error) {
	now := nowOf(s.Clock)
	y, m, d := now.Date()
	loc := now.Location()

	dayStart := time.Date(y, m, d, 0, 0, 0, 0, loc)
	end := dayStart.AddDate(0, 0, 1)
	weekStart := dayStart.AddDate(0, 0, -((int(now.Weekday()) + 6) % 7))
	monthStart := time.Date(y, m, 1, 0, 0, 0, 0, loc)

	var out domain.SalesCounts
	var err error
	to := repos.Timestamp(end)
	if out.Daily, err = s.Sales.Total(ctx, shopID, repos.Timestamp(dayStart), to); err != nil {
		return domain.SalesCounts{}, err
	}
	if out.Weekly, err = s.Sales.Total(ctx, shopID, repos.Timestamp(weekStart), to); err != nil {
		return domain.SalesCounts{}, err
	}
	if out.Monthly, err = s.Sales.Total(ctx, shopID, repos.Timestamp(monthStart), to); err != nil {
		return domain.SalesCounts{}, err
	}
	return out, nil
}
