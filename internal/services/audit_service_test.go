package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockroom/internal/domain"
	"stockroom/internal/repos"
	"stockroom/internal/services"
)

func TestAuditService_PersistsAndFansOut(t *testing.T) {
	db := memdb(t)
	clock := fixedClock{t: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)}
	audit := services.NewAuditService(repos.NewAuditRepo(db), clock)
	mirror := &recorder{}
	n := services.MultiNotifier{audit, nil, mirror}
	ctx := context.Background()

	services.Record(ctx, n, clock, cornerStore, domain.ActionView, "Product", 0, map[string]any{"path": "/api/products/"})
	services.Record(ctx, n, clock, domain.Actor{ShopID: 2}, domain.ActionHomepage, "Shop", 2, nil)

	assert.Equal(t, []domain.AuditAction{domain.ActionView, domain.ActionHomepage}, mirror.actions())

	events, err := audit.List(ctx, 1, 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	ev := events[0]
	assert.Equal(t, domain.ActionView, ev.Action)
	assert.Equal(t, int64(3), ev.UserID)
	assert.Empty(t, ev.ObjectID)
	assert.Equal(t, "127.0.0.1", ev.IP)
	assert.Equal(t, "/api/products/", ev.Details["path"])
	assert.Equal(t, "2026-02-01T00:00:00.000000Z", ev.CreatedAt)

	events, err = audit.List(ctx, 2, 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Zero(t, events[0].UserID)
	assert.Equal(t, "2", events[0].ObjectID)
	assert.Empty(t, events[0].Details)
}
