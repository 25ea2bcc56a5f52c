package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"stockroom/internal/domain"
	"stockroom/internal/repos"
	"stockroom/internal/services"
)

func TestAuthService_LoginLogout(t *testing.T) {
	db := memdb(t)
	rec := &recorder{}
	users := repos.NewUserRepo(db)
	svc := services.NewAuthService(users, rec, services.SystemClock{})
	ctx := context.Background()

	_, err := svc.Login(ctx, "clerk", "wrong", "10.0.0.1")
	assert.ErrorIs(t, err, services.ErrBadCreds)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	sess, err := svc.Login(ctx, "CLERK", repos.DemoPassword, "10.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleStockClerk, sess.Role)
	assert.Equal(t, int64(1), sess.ShopID)

	got, err := svc.CurrentSession(ctx, sess.Token)
	require.NoError(t, err)
	assert.Equal(t, *sess, *got)

	require.NoError(t, svc.Logout(ctx, sess, "10.0.0.1"))
	_, err = svc.CurrentSession(ctx, sess.Token)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	assert.Equal(t, []domain.AuditAction{domain.ActionLogin, domain.ActionLogout}, rec.actions())
	assert.Equal(t, "10.0.0.1", rec.events[0].IP)
}

func TestAuthService_UserWithoutShop(t *testing.T) {
	db := memdb(t)
	users := repos.NewUserRepo(db)
	svc := services.NewAuthService(users, nil, services.SystemClock{})
	ctx := context.Background()

	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret!"), bcrypt.MinCost)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO users(username,name,password_hash,role,created_at) VALUES('drifter','Drifter',?,'SalesPerson','')`, string(hash))
	require.NoError(t, err)

	_, err = svc.Login(ctx, "drifter", "s3cret!", "")
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestAuthService_SessionWithUnknownRole(t *testing.T) {
	db := memdb(t)
	svc := services.NewAuthService(repos.NewUserRepo(db), nil, services.SystemClock{})
	ctx := context.Background()

	sess, err := svc.Login(ctx, "seller", repos.DemoPassword, "")
	require.NoError(t, err)

	// The sessions table has no role constraint of its own.
	_, err = db.Exec(`UPDATE sessions SET role = 'Owner' WHERE token = ?`, sess.Token)
	require.NoError(t, err)

	_, err = svc.CurrentSession(ctx, sess.Token)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}
