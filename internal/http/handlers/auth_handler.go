package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"stockroom/internal/domain"
	"stockroom/internal/log"
	"stockroom/internal/services"
	"stockroom/internal/validate"
)

type AuthHandler struct {
	Auth  *services.AuthService
	Audit services.Notifier
	Clock services.Clock
}

type loginReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// POST /login/
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginReq
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	username, ok := validate.Username(req.Username)
	if !ok || !validate.Password(req.Password) {
		log.Security(c, "auth.login.fail", map[string]any{"username": req.Username, "reason": "bad_format"})
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid username or password"})
	}

	sess, err := h.Auth.Login(c.UserContext(), username, req.Password, c.IP())
	if err != nil {
		log.Security(c, "auth.login.fail", map[string]any{"username": username})
		return respondError(c, "auth.login", err)
	}

	c.Cookie(&fiber.Cookie{
		Name:     "sid",
		Value:    sess.Token,
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Secure:   false, // enable true behind TLS
	})
	log.Audit(c, "auth.login.success", map[string]any{"username": username, "role": string(sess.Role)})
	return c.JSON(fiber.Map{
		"token": sess.Token,
		"user":  sess.Username,
		"role":  string(sess.Role),
		"shop":  fiber.Map{"id": sess.ShopID, "name": sess.ShopName},
	})
}

// POST /logout/
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	sess := sessionOf(c)
	if err := h.Auth.Logout(c.UserContext(), sess, c.IP()); err != nil {
		return respondError(c, "auth.logout", err)
	}
	// Expire cookie
	c.Cookie(&fiber.Cookie{
		Name:     "sid",
		Value:    "",
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Expires:  time.Now().Add(-1 * time.Hour),
	})
	log.Audit(c, "auth.logout", map[string]any{"username": sess.Username})
	return c.JSON(fiber.Map{"message": "Logged out"})
}

// GET /shop/info/
func (h *AuthHandler) ShopInfo(c *fiber.Ctx) error {
	sess := sessionOf(c)
	services.Record(c.UserContext(), h.Audit, h.Clock, actorOf(c), domain.ActionHomepage, "Shop", sess.ShopID, map[string]any{
		"method": c.Method(),
		"path":   c.Path(),
	})
	return c.JSON(fiber.Map{"id": sess.ShopID, "name": sess.ShopName, "role": string(sess.Role), "user": sess.Username})
}
