package repos

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"stockroom/internal/domain"
)

type UserRepo struct{ DB *sqlx.DB }

func NewUserRepo(db *sqlx.DB) *UserRepo { return &UserRepo{DB: db} }

func (r *UserRepo) ByUsername(ctx context.Context, username string) (*domain.User, error) {
	var u domain.User
	err := r.DB.GetContext(ctx, &u, `SELECT id,username,name,password_hash,role FROM users WHERE LOWER(username)=LOWER(?)`, username)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// PrimaryShop is the lowest-id shop the user owns or staffs.
func (r *UserRepo) PrimaryShop(ctx context.Context, userID int64) (domain.Shop, error) {
	var s domain.Shop
	err := r.DB.GetContext(ctx, &s, `
      SELECT s.id, s.name
      FROM shop_members m
      JOIN shops s ON s.id = m.shop_id
      WHERE m.user_id = ?
      ORDER BY s.id
      LIMIT 1`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Shop{}, fmt.Errorf("user %d has no shop: %w", userID, domain.ErrForbidden)
	}
	return s, err
}

func (r *UserRepo) BindSession(ctx context.Context, token string, userID int64, role domain.Role, shopID int64) error {
	now := Timestamp(time.Now())
	_, err := r.DB.ExecContext(ctx, `INSERT INTO sessions(token,user_id,role,shop_id,created_at,last_seen)
                          VALUES(?,?,?,?,?,?)
                          ON CONFLICT(token) DO UPDATE SET user_id=excluded.user_id, role=excluded.role,
                            shop_id=excluded.shop_id, last_seen=excluded.last_seen`,
		token, userID, string(role), shopID, now, now)
	return err
}

func (r *UserRepo) Session(ctx context.Context, token string) (*domain.Session, error) {
	var s domain.Session
	err := r.DB.GetContext(ctx, &s, `
      SELECT se.token, se.user_id, u.username, se.role, se.shop_id, sh.name AS shop_name
      FROM sessions se
      JOIN users u ON u.id = se.user_id
      JOIN shops sh ON sh.id = se.shop_id
      WHERE se.token = ?`, token)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *UserRepo) UnbindSession(ctx context.Context, token string) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM sessions WHERE token=?`, token)
	return err
}
