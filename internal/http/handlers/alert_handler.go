package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "stockroom/internal/log"
	"stockroom/internal/services"
)

type AlertHandler struct {
	Alerts *services.AlertService
}

// GET /alerts/
func (h *AlertHandler) List(c *fiber.Ctx) error {
	alerts, err := h.Alerts.List(c.UserContext(), actorOf(c).ShopID)
	if err != nil {
		return respondError(c, "alerts.list", err)
	}
	out := make([]alertView, 0, len(alerts))
	for _, a := range alerts {
		out = append(out, toAlertView(a))
	}
	return c.JSON(out)
}

// PUT /products/:id/alert/
func (h *AlertHandler) Update(c *fiber.Ctx) error {
	id, ok := productID(c)
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "product not found"})
	}
	var req struct {
		Threshold *int  `json:"threshold"`
		IsAlerted *bool `json:"is_alerted"`
	}
	if err := c.BodyParser(&req); err != nil || req.Threshold == nil {
		return badRequest(c, "threshold is required")
	}
	a, err := h.Alerts.SetThreshold(c.UserContext(), actorOf(c), id, *req.Threshold, req.IsAlerted)
	if err != nil {
		return respondError(c, "alerts.update", err)
	}
	applog.Audit(c, "alerts.update", map[string]any{"product": id, "threshold": a.Threshold, "is_alerted": a.IsAlerted})
	return c.JSON(toAlertView(a))
}
