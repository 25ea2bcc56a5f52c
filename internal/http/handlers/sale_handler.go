package handlers

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2"

	applog "stockroom/internal/log"
	"stockroom/internal/services"
)

type SaleHandler struct {
	Sales       *services.SaleService
	DefaultMode services.BatchMode
}

type recordReq struct {
	Sales []json.RawMessage `json:"sales"`
	Mode  string            `json:"mode"`
}

type lineReq struct {
	ProductID *int64 `json:"product_id"`
	Quantity  *int   `json:"quantity"`
}

// toLines keeps malformed entries as zero lines so the recorder rejects them
// at their position in the batch, after any earlier lines.
func toLines(raw []json.RawMessage) []services.LineItem {
	lines := make([]services.LineItem, len(raw))
	for i, r := range raw {
		var lr lineReq
		if err := json.Unmarshal(r, &lr); err != nil {
			continue
		}
		if lr.ProductID != nil {
			lines[i].ProductID = *lr.ProductID
		}
		if lr.Quantity != nil {
			lines[i].Quantity = *lr.Quantity
		}
	}
	return lines
}

// POST /sales/record/
func (h *SaleHandler) Record(c *fiber.Ctx) error {
	var req recordReq
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	mode, err := services.ParseBatchMode(req.Mode, h.DefaultMode)
	if err != nil {
		return respondError(c, "sales.record", err)
	}

	actor := actorOf(c)
	sales, err := h.Sales.Record(c.UserContext(), actor, toLines(req.Sales), mode)
	if err != nil {
		// Best-effort batches keep the lines before the failure.
		applog.Security(c, "sales.record.fail", map[string]any{
			"mode":      string(mode),
			"committed": len(sales),
			"requested": len(req.Sales),
			"error":     err.Error(),
		})
		return respondError(c, "sales.record", err)
	}
	applog.Audit(c, "sales.record", map[string]any{"mode": string(mode), "count": len(sales)})
	return c.Status(fiber.StatusCreated).JSON(toSaleViews(sales))
}

// GET /sales/
func (h *SaleHandler) List(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 100)
	if limit < 1 || limit > 500 {
		limit = 100
	}
	sales, err := h.Sales.List(c.UserContext(), actorOf(c).ShopID, limit)
	if err != nil {
		return respondError(c, "sales.list", err)
	}
	return c.JSON(toSaleViews(sales))
}

// GET /sales/counts/
func (h *SaleHandler) Counts(c *fiber.Ctx) error {
	counts, err := h.Sales.Counts(c.UserContext(), actorOf(c).ShopID)
	if err != nil {
		return respondError(c, "sales.counts", err)
	}
	return c.JSON(countsView{
		Daily:   counts.Daily.StringFixed(2),
		Weekly:  counts.Weekly.StringFixed(2),
		Monthly: counts.Monthly.StringFixed(2),
	})
}
