package services_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"stockroom/internal/domain"
	"stockroom/internal/repos"
	"stockroom/internal/services"
)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

// recorder keeps every event it is notified of.
type recorder struct {
	mu     sync.Mutex
	events []domain.AuditEvent
}

func (r *recorder) Notify(_ context.Context, ev domain.AuditEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recorder) actions() []domain.AuditAction {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.AuditAction, 0, len(r.events))
	for _, ev := range r.events {
		out = append(out, ev.Action)
	}
	return out
}

func memdb(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := repos.OpenDB(":memory:", true)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

var cornerStore = domain.Actor{UserID: 3, ShopID: 1, ShopName: "Corner Store", IP: "127.0.0.1"}

func newSaleService(db *sqlx.DB, n services.Notifier, clock services.Clock) *services.SaleService {
	return services.NewSaleService(db, repos.NewProductRepo(db), repos.NewLedgerRepo(db), repos.NewSaleRepo(db), n, clock)
}

func quantity(t *testing.T, db *sqlx.DB, productID int64) int {
	t.Helper()
	var qty int
	require.NoError(t, db.Get(&qty, `SELECT quantity FROM products WHERE id = ?`, productID))
	return qty
}
