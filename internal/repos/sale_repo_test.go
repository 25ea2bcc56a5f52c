package repos_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockroom/internal/domain"
	"stockroom/internal/repos"
)

func TestSaleRepo_InsertListTotal(t *testing.T) {
	db := memdb(t)
	sales := repos.NewSaleRepo(db)
	ctx := context.Background()
	base := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	for i, total := range []string{"0.10", "0.20", "0.30", "19.99"} {
		s := domain.Sale{
			ShopID:       1,
			ProductName:  "Sparkling Water 500ml",
			QuantitySold: 1,
			TotalPrice:   decimal.RequireFromString(total),
			CreatedAt:    repos.Timestamp(base.Add(time.Duration(i) * time.Hour)),
		}
		s.ProductID.Int64, s.ProductID.Valid = 1, true
		require.NoError(t, sales.Insert(ctx, nil, &s))
		assert.NotZero(t, s.ID)
	}

	// Decimal sums stay exact: 0.1 + 0.2 + 0.3.
	total, err := sales.Total(ctx, 1, repos.Timestamp(base), repos.Timestamp(base.Add(3*time.Hour)))
	require.NoError(t, err)
	assert.Equal(t, "0.60", total.StringFixed(2))
	assert.True(t, total.Equal(decimal.RequireFromString("0.6")))

	total, err = sales.Total(ctx, 2, repos.Timestamp(base), repos.Timestamp(base.AddDate(0, 0, 1)))
	require.NoError(t, err)
	assert.True(t, total.IsZero())

	list, err := sales.List(ctx, 1, 2)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "19.99", list[0].TotalPrice.StringFixed(2), "newest first")

	n, err := sales.CountForProduct(ctx, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
}

func TestTimestampOrdersAsText(t *testing.T) {
	loc := time.FixedZone("UTC+9", 9*3600)
	early := time.Date(2026, 1, 1, 8, 0, 0, 0, loc) // 2025-12-31T23:00Z
	late := time.Date(2025, 12, 31, 23, 30, 0, 0, time.UTC)
	assert.Equal(t, "2025-12-31T23:00:00.000000Z", repos.Timestamp(early))
	assert.Less(t, repos.Timestamp(early), repos.Timestamp(late))
}
