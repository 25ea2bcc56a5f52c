package handlers

import (
	"github.com/gofiber/fiber/v2"

	"stockroom/internal/log"
	"stockroom/internal/services"
)

type CategoryHandler struct {
	Catalog *services.CatalogService
}

// GET /categories/
func (h *CategoryHandler) List(c *fiber.Ctx) error {
	cats, err := h.Catalog.ListCategories(c.UserContext())
	if err != nil {
		return respondError(c, "categories.list", err)
	}
	out := make([]categoryView, 0, len(cats))
	for _, cat := range cats {
		out = append(out, categoryView{ID: cat.ID, Name: cat.Name})
	}
	return c.JSON(out)
}

// POST /categories/add/
func (h *CategoryHandler) Create(c *fiber.Ctx) error {
	var req struct {
		Name string `json:"name"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	cat, err := h.Catalog.CreateCategory(c.UserContext(), actorOf(c), req.Name)
	if err != nil {
		return respondError(c, "categories.create", err)
	}
	log.Audit(c, "categories.create", map[string]any{"category": cat.ID})
	return c.Status(fiber.StatusCreated).JSON(categoryView{ID: cat.ID, Name: cat.Name})
}
