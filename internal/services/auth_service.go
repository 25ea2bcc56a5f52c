package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"stockroom/internal/domain"
	"stockroom/internal/repos"
)

var ErrBadCreds = fmt.Errorf("%w: invalid username or password", domain.ErrUnauthorized)

type AuthService struct {
	Users *repos.UserRepo
	Audit Notifier
	Clock Clock
}

func NewAuthService(users *repos.UserRepo, audit Notifier, clock Clock) *AuthService {
	return &AuthService{Users: users, Audit: notifierOrNop(audit), Clock: clock}
}

// Login checks the password and opens a session that carries the user's role
// and shop for the rest of its life.
func (s *AuthService) Login(ctx context.Context, username, password, ip string) (*domain.Session, error) {
	u, err := s.Users.ByUsername(ctx, username)
	if err != nil {
		return nil, ErrBadCreds
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Hash), []byte(password)) != nil {
		return nil, ErrBadCreds
	}
	if !u.Role.Valid() {
		return nil, fmt.Errorf("user %d has role %q: %w", u.ID, u.Role, domain.ErrForbidden)
	}
	shop, err := s.Users.PrimaryShop(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	token := uuid.NewString()
	if err := s.Users.BindSession(ctx, token, u.ID, u.Role, shop.ID); err != nil {
		return nil, err
	}
	sess := &domain.Session{Token: token, UserID: u.ID, Username: u.Username, Role: u.Role, ShopID: shop.ID, ShopName: shop.Name}
	s.Audit.Notify(ctx, newEvent(s.Clock, sess.Actor(ip), domain.ActionLogin, "User", u.ID, map[string]any{
		"username": u.Username,
		"role":     string(u.Role),
	}))
	return sess, nil
}

func (s *AuthService) Logout(ctx context.Context, sess *domain.Session, ip string) error {
	if err := s.Users.UnbindSession(ctx, sess.Token); err != nil {
		return err
	}
	s.Audit.Notify(ctx, newEvent(s.Clock, sess.Actor(ip), domain.ActionLogout, "User", sess.UserID, map[string]any{
		"username": sess.Username,
	}))
	return nil
}

func (s *AuthService) CurrentSession(ctx context.Context, token string) (*domain.Session, error) {
	sess, err := s.Users.Session(ctx, token)
	if err != nil || !sess.Role.Valid() {
		return nil, domain.ErrUnauthorized
	}
	return sess, nil
}
