package repos_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockroom/internal/repos"
)

func TestProductRepo_UpdateKeepsLedgerQuantity(t *testing.T) {
	db := memdb(t)
	products := repos.NewProductRepo(db)
	ledger := repos.NewLedgerRepo(db)
	ctx := context.Background()

	p, err := products.Get(ctx, 1, 2)
	require.NoError(t, err)

	// A sale lands after the edit read the row.
	require.NoError(t, ledger.Deduct(ctx, nil, 1, 2, 4, time.Now()))

	p.Name = "Salted Crisps XL"
	require.NoError(t, products.Update(ctx, &p, false))
	got, err := products.Get(ctx, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, "Salted Crisps XL", got.Name)
	assert.Equal(t, 6, got.Quantity)

	p.Quantity = 40
	require.NoError(t, products.Update(ctx, &p, true))
	got, err = products.Get(ctx, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, 40, got.Quantity)
}
