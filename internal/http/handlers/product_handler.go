package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"stockroom/internal/domain"
	"stockroom/internal/log"
	"stockroom/internal/services"
)

type ProductHandler struct {
	Catalog *services.CatalogService
	Audit   services.Notifier
	Clock   services.Clock
}

type productReq struct {
	Name     string           `json:"name"`
	Category *int64           `json:"category"`
	Quantity *int             `json:"quantity"`
	Price    *decimal.Decimal `json:"price"`
}

func (r productReq) input() services.ProductInput {
	return services.ProductInput{Name: r.Name, CategoryID: r.Category, Quantity: r.Quantity, Price: r.Price}
}

func productID(c *fiber.Ctx) (int64, bool) {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		log.Security(c, "validation.fail", map[string]any{"field": "product"})
		return 0, false
	}
	return int64(id), true
}

// GET /products/
func (h *ProductHandler) List(c *fiber.Ctx) error {
	actor := actorOf(c)
	products, err := h.Catalog.ListProducts(c.UserContext(), actor.ShopID)
	if err != nil {
		return respondError(c, "products.list", err)
	}
	services.Record(c.UserContext(), h.Audit, h.Clock, actor, domain.ActionView, "Product", 0, map[string]any{
		"method": c.Method(),
		"path":   c.Path(),
		"count":  len(products),
	})
	out := make([]productView, 0, len(products))
	for _, p := range products {
		out = append(out, toProductView(p))
	}
	return c.JSON(out)
}

// GET /products/:id/
func (h *ProductHandler) Detail(c *fiber.Ctx) error {
	id, ok := productID(c)
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "product not found"})
	}
	p, err := h.Catalog.GetProduct(c.UserContext(), actorOf(c).ShopID, id)
	if err != nil {
		return respondError(c, "products.detail", err)
	}
	return c.JSON(toProductView(p))
}

// POST /products/add/
func (h *ProductHandler) Create(c *fiber.Ctx) error {
	var req productReq
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	p, err := h.Catalog.CreateProduct(c.UserContext(), actorOf(c), req.input())
	if err != nil {
		return respondError(c, "products.create", err)
	}
	log.Audit(c, "products.create", map[string]any{"product": p.ID, "qty": p.Quantity})
	return c.Status(fiber.StatusCreated).JSON(toProductView(p))
}

// PUT /products/edit/:id/
func (h *ProductHandler) Edit(c *fiber.Ctx) error {
	id, ok := productID(c)
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "product not found"})
	}
	var req productReq
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	p, err := h.Catalog.UpdateProduct(c.UserContext(), actorOf(c), id, req.input())
	if err != nil {
		return respondError(c, "products.edit", err)
	}
	log.Audit(c, "products.edit", map[string]any{"product": p.ID, "qty": p.Quantity})
	return c.JSON(toProductView(p))
}

// DELETE /products/delete/:id/
func (h *ProductHandler) Delete(c *fiber.Ctx) error {
	id, ok := productID(c)
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "product not found"})
	}
	if err := h.Catalog.DeleteProduct(c.UserContext(), actorOf(c), id); err != nil {
		return respondError(c, "products.delete", err)
	}
	log.Audit(c, "products.delete", map[string]any{"product": id})
	return c.SendStatus(fiber.StatusNoContent)
}
