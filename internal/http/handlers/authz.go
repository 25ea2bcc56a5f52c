package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"stockroom/internal/domain"
	applog "stockroom/internal/log"
	"stockroom/internal/services"
)

const sessionKey = "session"

// tokenFrom reads "Authorization: Token <t>" / "Bearer <t>", then the sid cookie.
func tokenFrom(c *fiber.Ctx) string {
	if h := strings.TrimSpace(c.Get(fiber.HeaderAuthorization)); h != "" {
		scheme, tok, ok := strings.Cut(h, " ")
		if ok && (strings.EqualFold(scheme, "Token") || strings.EqualFold(scheme, "Bearer")) {
			return strings.TrimSpace(tok)
		}
	}
	return c.Cookies("sid")
}

// Authenticate attaches the session to the request or answers 401.
func Authenticate(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tok := tokenFrom(c)
		if tok == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": domain.ErrUnauthorized.Error()})
		}
		sess, err := auth.CurrentSession(c.UserContext(), tok)
		if err != nil {
			applog.Security(c, "auth.session.invalid", nil)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": domain.ErrUnauthorized.Error()})
		}
		c.Locals(sessionKey, sess)
		c.Locals("user_id", sess.UserID)
		return c.Next()
	}
}

// RequireRoles lets the request through only for the listed roles. It must
// run after Authenticate.
func RequireRoles(roles ...domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess := sessionOf(c)
		if sess == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": domain.ErrUnauthorized.Error()})
		}
		for _, r := range roles {
			if sess.Role == r {
				return c.Next()
			}
		}
		applog.Security(c, "access.denied", map[string]any{"role": string(sess.Role), "path": c.Path()})
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": domain.ErrForbidden.Error()})
	}
}

func sessionOf(c *fiber.Ctx) *domain.Session {
	s, _ := c.Locals(sessionKey).(*domain.Session)
	return s
}

// actorOf derives the acting user and shop from the session, never from input.
func actorOf(c *fiber.Ctx) domain.Actor {
	if s := sessionOf(c); s != nil {
		return s.Actor(c.IP())
	}
	return domain.Actor{IP: c.IP()}
}
