package handlers

import (
	"github.com/gofiber/fiber/v2"

	"stockroom/internal/services"
)

type AuditHandler struct {
	Audit *services.AuditService
}

// GET /audit-logs/ (Manager only)
func (h *AuditHandler) List(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 200)
	if limit < 1 || limit > 1000 {
		limit = 200
	}
	events, err := h.Audit.List(c.UserContext(), actorOf(c).ShopID, limit)
	if err != nil {
		return respondError(c, "audit.list", err)
	}
	return c.JSON(events)
}
