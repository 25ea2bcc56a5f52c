package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockroom/internal/domain"
	"stockroom/internal/repos"
	"stockroom/internal/services"
)

func TestAlertService_SetThreshold(t *testing.T) {
	db := memdb(t)
	rec := &recorder{}
	svc := services.NewAlertService(repos.NewAlertRepo(db), rec, services.SystemClock{})
	ctx := context.Background()
	clerk := domain.Actor{UserID: 2, ShopID: 1}

	a, err := svc.SetThreshold(ctx, clerk, 3, 5, nil)
	require.NoError(t, err)
	assert.Equal(t, 5, a.Threshold)
	assert.False(t, a.IsAlerted)
	assert.True(t, a.LowStock())
	assert.Equal(t, "LOW_STOCK", a.Availability())

	on := true
	a, err = svc.SetThreshold(ctx, clerk, 3, 1, &on)
	require.NoError(t, err)
	assert.True(t, a.IsAlerted)
	assert.False(t, a.LowStock())
	assert.Equal(t, "IN_STOCK", a.Availability())

	// Latch survives a threshold-only change.
	a, err = svc.SetThreshold(ctx, clerk, 3, 2, nil)
	require.NoError(t, err)
	assert.True(t, a.IsAlerted)

	_, err = svc.SetThreshold(ctx, clerk, 3, -1, nil)
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = svc.SetThreshold(ctx, clerk, 4, 1, nil)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assert.Len(t, rec.actions(), 3)
	assert.Equal(t, "StockAlert", rec.events[0].Model)
	assert.Equal(t, "3", rec.events[0].ObjectID)
}

func TestAlertService_SalesDoNotLatch(t *testing.T) {
	db := memdb(t)
	alerts := services.NewAlertService(repos.NewAlertRepo(db), nil, services.SystemClock{})
	sales := newSaleService(db, nil, services.SystemClock{})
	ctx := context.Background()

	_, err := sales.Record(ctx, cornerStore, []services.LineItem{{ProductID: 3, Quantity: 5}}, services.BestEffort)
	require.NoError(t, err)

	list, err := alerts.List(ctx, 1)
	require.NoError(t, err)
	require.NotEmpty(t, list)
	assert.Equal(t, int64(3), list[0].ProductID)
	assert.Equal(t, 0, list[0].Quantity)
	assert.Equal(t, "OUT_OF_STOCK", list[0].Availability())
	assert.False(t, list[0].IsAlerted)
}
