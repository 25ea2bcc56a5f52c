package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"stockroom/internal/domain"
	"stockroom/internal/repos"
	"stockroom/internal/validate"
)

// DefaultThreshold is the low-stock threshold given to new products.
const DefaultThreshold = 2

// ProductInput is the editable part of a product. Nil fields are "not sent".
type ProductInput struct {
	Name       string
	CategoryID *int64
	Quantity   *int
	Price      *decimal.Decimal
}

type CatalogService struct {
	Cats  *repos.CategoryRepo
	Prods *repos.ProductRepo
	Audit Notifier
	Clock Clock
}

func NewCatalogService(cats *repos.CategoryRepo, prods *repos.ProductRepo, audit Notifier, clock Clock) *CatalogService {
	return &CatalogService{Cats: cats, Prods: prods, Audit: notifierOrNop(audit), Clock: clock}
}

func (s *CatalogService) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return s.Cats.List(ctx)
}

func (s *CatalogService) CreateCategory(ctx context.Context, actor domain.Actor, name string) (domain.Category, error) {
	name, ok := validate.Name(name)
	if !ok {
		return domain.Category{}, fmt.Errorf("%w: name is required (max 255 characters)", domain.ErrValidation)
	}
	c, err := s.Cats.Create(ctx, name)
	if err != nil {
		return domain.Category{}, err
	}
	s.Audit.Notify(ctx, newEvent(s.Clock, actor, domain.ActionCreate, "Category", c.ID, map[string]any{"name": c.Name}))
	return c, nil
}

func (s *CatalogService) ListProducts(ctx context.Context, shopID int64) ([]domain.Product, error) {
	return s.Prods.List(ctx, shopID)
}

func (s *CatalogService) GetProduct(ctx context.Context, shopID, id int64) (domain.Product, error) {
	return s.Prods.Get(ctx, shopID, id)
}

// CreateProduct requires name and price; quantity defaults to zero.
func (s *CatalogService) CreateProduct(ctx context.Context, actor domain.Actor, in ProductInput) (domain.Product, error) {
	p := domain.Product{ShopID: actor.ShopID}
	if err := s.apply(ctx, &p, in); err != nil {
		return domain.Product{}, err
	}
	ts := repos.Timestamp(nowOf(s.Clock))
	p.CreatedAt, p.UpdatedAt = ts, ts
	if err := s.Prods.Create(ctx, &p, DefaultThreshold); err != nil {
		return domain.Product{}, err
	}
	out, err := s.Prods.Get(ctx, actor.ShopID, p.ID)
	if err != nil {
		return domain.Product{}, err
	}
	s.Audit.Notify(ctx, newEvent(s.Clock, actor, domain.ActionCreate, "Product", out.ID, productDetails(out)))
	return out, nil
}

// UpdateProduct replaces name, category and price. Quantity is replaced when
// sent and left to the ledger otherwise. This is the only way to restock.
func (s *CatalogService) UpdateProduct(ctx context.Context, actor domain.Actor, id int64, in ProductInput) (domain.Product, error) {
	p, err := s.Prods.Get(ctx, actor.ShopID, id)
	if err != nil {
		return domain.Product{}, err
	}
	if err := s.apply(ctx, &p, in); err != nil {
		return domain.Product{}, err
	}
	p.UpdatedAt = repos.Timestamp(nowOf(s.Clock))
	if err := s.Prods.Update(ctx, &p, in.Quantity != nil); err != nil {
		return domain.Product{}, err
	}
	out, err := s.Prods.Get(ctx, actor.ShopID, id)
	if err != nil {
		return domain.Product{}, err
	}
	s.Audit.Notify(ctx, newEvent(s.Clock, actor, domain.ActionUpdate, "Product", out.ID, productDetails(out)))
	return out, nil
}

func (s *CatalogService) DeleteProduct(ctx context.Context, actor domain.Actor, id int64) error {
	p, err := s.Prods.Get(ctx, actor.ShopID, id)
	if err != nil {
		return err
	}
	if err := s.Prods.Delete(ctx, actor.ShopID, id); err != nil {
		return err
	}
	s.Audit.Notify(ctx, newEvent(s.Clock, actor, domain.ActionDelete, "Product", id, map[string]any{"name": p.Name}))
	return nil
}

// apply validates in and copies it onto p. Name and price are required.
func (s *CatalogService) apply(ctx context.Context, p *domain.Product, in ProductInput) error {
	name, ok := validate.Name(in.Name)
	if !ok {
		return fmt.Errorf("%w: name is required (max 255 characters)", domain.ErrValidation)
	}
	p.Name = name

	if in.Price == nil {
		return fmt.Errorf("%w: price is required", domain.ErrValidation)
	}
	price, ok := validate.Price(*in.Price)
	if !ok {
		return fmt.Errorf("%w: price must be between 0 and 99999999.99 with at most 2 decimal places", domain.ErrValidation)
	}
	p.Price = price

	if in.Quantity != nil {
		if !validate.Quantity(*in.Quantity) {
			return fmt.Errorf("%w: quantity must be zero or more", domain.ErrValidation)
		}
		p.Quantity = *in.Quantity
	}

	p.CategoryID.Valid = false
	if in.CategoryID != nil {
		if _, err := s.Cats.Get(ctx, *in.CategoryID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return fmt.Errorf("%w: unknown category %d", domain.ErrValidation, *in.CategoryID)
			}
			return err
		}
		p.CategoryID.Int64, p.CategoryID.Valid = *in.CategoryID, true
	}
	return nil
}

func productDetails(p domain.Product) map[string]any {
	return map[string]any{
		"name":     p.Name,
		"quantity": p.Quantity,
		"price":    p.Price.StringFixed(2),
	}
}

// ImportRow is one spreadsheet line: quantity, name, price.
type ImportRow struct {
	Quantity int
	Name     string
	Price    decimal.Decimal
}

// ImportProducts creates products whose name does not exist yet in the shop
// and returns how many were created. Existing products are left untouched.
func (s *CatalogService) ImportProducts(ctx context.Context, actor domain.Actor, categoryID *int64, rows []ImportRow) (int, error) {
	created := 0
	for i, row := range rows {
		name, ok := validate.Name(row.Name)
		if !ok {
			continue
		}
		_, err := s.Prods.FindByName(ctx, actor.ShopID, name)
		if err == nil {
			continue
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return created, err
		}
		qty, price := row.Quantity, row.Price
		if _, err := s.CreateProduct(ctx, actor, ProductInput{Name: name, CategoryID: categoryID, Quantity: &qty, Price: &price}); err != nil {
			return created, fmt.Errorf("row %d: %w", i+2, err)
		}
		created++
	}
	return created, nil
}
