package services_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockroom/internal/domain"
	"stockroom/internal/repos"
	"stockroom/internal/services"
)

func newCatalog(t *testing.T) (*services.CatalogService, *recorder) {
	t.Helper()
	db := memdb(t)
	rec := &recorder{}
	clock := fixedClock{t: time.Date(2026, 1, 5, 10, 0, 0, 0, time.UTC)}
	return services.NewCatalogService(repos.NewCategoryRepo(db), repos.NewProductRepo(db), rec, clock), rec
}

func price(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestCatalog_CreateUpdateDelete(t *testing.T) {
	svc, rec := newCatalog(t)
	ctx := context.Background()
	clerk := domain.Actor{UserID: 2, ShopID: 1, ShopName: "Corner Store"}

	cat := int64(1)
	p, err := svc.CreateProduct(ctx, clerk, services.ProductInput{Name: "Cold Brew", CategoryID: &cat, Price: price("4.5")})
	require.NoError(t, err)
	assert.Equal(t, 0, p.Quantity)
	assert.Equal(t, "4.50", p.Price.StringFixed(2))
	assert.Equal(t, "Beverages", p.CategoryName.String)
	assert.Equal(t, "2026-01-05T10:00:00.000000Z", p.CreatedAt)

	qty := 30
	p, err = svc.UpdateProduct(ctx, clerk, p.ID, services.ProductInput{Name: "Cold Brew", Quantity: &qty, Price: price("4.75")})
	require.NoError(t, err)
	assert.Equal(t, 30, p.Quantity)
	assert.False(t, p.CategoryID.Valid)

	p, err = svc.UpdateProduct(ctx, clerk, p.ID, services.ProductInput{Name: "Cold Brew Can", Price: price("4.75")})
	require.NoError(t, err)
	assert.Equal(t, 30, p.Quantity, "quantity kept when not sent")

	harbor := domain.Actor{UserID: 4, ShopID: 2}
	_, err = svc.UpdateProduct(ctx, harbor, p.ID, services.ProductInput{Name: "Mine now", Price: price("1")})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, svc.DeleteProduct(ctx, harbor, p.ID), domain.ErrNotFound)

	require.NoError(t, svc.DeleteProduct(ctx, clerk, p.ID))
	_, err = svc.GetProduct(ctx, 1, p.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assert.Equal(t, []domain.AuditAction{domain.ActionCreate, domain.ActionUpdate, domain.ActionUpdate, domain.ActionDelete}, rec.actions())
}

func TestCatalog_Validation(t *testing.T) {
	svc, rec := newCatalog(t)
	ctx := context.Background()
	actor := domain.Actor{UserID: 2, ShopID: 1}
	neg := -3
	missing := int64(42)

	for _, in := range []services.ProductInput{
		{Price: price("1")},
		{Name: "No price"},
		{Name: "Too precise", Price: price("0.001")},
		{Name: "Negative stock", Price: price("1"), Quantity: &neg},
		{Name: "Unknown category", Price: price("1"), CategoryID: &missing},
	} {
		_, err := svc.CreateProduct(ctx, actor, in)
		assert.ErrorIs(t, err, domain.ErrValidation, "%+v", in)
	}
	assert.Empty(t, rec.actions())

	_, err := svc.CreateCategory(ctx, actor, "beverages")
	assert.ErrorIs(t, err, domain.ErrConflict)
	c, err := svc.CreateCategory(ctx, actor, " Dairy ")
	require.NoError(t, err)
	assert.Equal(t, "Dairy", c.Name)
}

func TestCatalog_ImportProducts(t *testing.T) {
	svc, rec := newCatalog(t)
	ctx := context.Background()
	actor := domain.Actor{ShopID: 1, ShopName: "Corner Store", IP: "cli"}
	cat := int64(2)

	rows := []services.ImportRow{
		{Quantity: 12, Name: "Trail Mix", Price: decimal.RequireFromString("5.25")},
		{Quantity: 99, Name: "salted crisps", Price: decimal.RequireFromString("9.99")}, // exists
		{Quantity: 1, Name: "   ", Price: decimal.RequireFromString("1")},
		{Quantity: 3, Name: "Rice Cakes", Price: decimal.RequireFromString("2")},
	}
	n, err := svc.ImportProducts(ctx, actor, &cat, rows)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	products, err := svc.ListProducts(ctx, 1)
	require.NoError(t, err)
	byName := map[string]domain.Product{}
	for _, p := range products {
		byName[p.Name] = p
	}
	require.Contains(t, byName, "Trail Mix")
	assert.Equal(t, 12, byName["Trail Mix"].Quantity)
	assert.Equal(t, "Snacks", byName["Trail Mix"].CategoryName.String)
	assert.Equal(t, 10, byName["Salted Crisps"].Quantity, "existing product untouched")
	assert.Equal(t, "2.10", byName["Salted Crisps"].Price.StringFixed(2))
	assert.Contains(t, byName, "Rice Cakes")
	assert.Len(t, rec.actions(), 2)

	// Importing again creates nothing.
	n, err = svc.ImportProducts(ctx, actor, nil, rows)
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = svc.ImportProducts(ctx, actor, nil, []services.ImportRow{{Quantity: -1, Name: "Broken", Price: decimal.NewFromInt(1)}})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestCatalog_EditsDoNotUndoSales(t *testing.T) {
	db := memdb(t)
	catalog := services.NewCatalogService(repos.NewCategoryRepo(db), repos.NewProductRepo(db), nil, services.SystemClock{})
	sales := newSaleService(db, nil, services.SystemClock{})
	ctx := context.Background()
	clerk := domain.Actor{UserID: 2, ShopID: 1}

	var wg sync.WaitGroup
	sold := 0
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 24; i++ {
			if _, err := sales.Record(ctx, cornerStore, []services.LineItem{{ProductID: 1, Quantity: 1}}, services.BestEffort); err == nil {
				sold++
			}
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 300; i++ {
			_, err := catalog.UpdateProduct(ctx, clerk, 1, services.ProductInput{Name: "Sparkling Water 500ml", Price: price("1.25")})
			assert.NoError(t, err)
		}
	}()
	wg.Wait()

	assert.Equal(t, 24, sold)
	assert.Equal(t, 0, quantity(t, db, 1))
}
