package handler

import (
	"go-inventory-ledger/internal/model"
	"go-inventory-ledger/internal/service"

	"github.com/gofiber/fiber/v2"
)

type LedgerHandler struct {
	service service.LedgerService
}

func NewLedgerHandler(s service.LedgerService) *LedgerHandler {
	return &LedgerHandler{service: s}
}

// GetHistory pages the ledger.
// Query params: product_id, from, to, search, limit (default 5), offset
func (h *LedgerHandler) GetHistory(c *fiber.Ctx) error {
	productID, err := queryID(c, "product_id")
	if err != nil {
		return err
	}
	limit, err := queryInt(c, "limit", model.DefaultPageLimit)
	if err != nil {
		return err
	}
	offset, err := queryInt(c, "offset", 0)
	if err != nil {
		return err
	}

	page, err := h.service.ListHistory(c.UserContext(), model.HistoryFilter{
		ProductID: productID,
		From:      c.Query("from"),
		To:        c.Query("to"),
		Search:    c.Query("search"),
		Limit:     limit,
		Offset:    offset,
	})
	if err != nil {
		return err
	}
	return c.JSON(page)
}

func (h *LedgerHandler) GetFirstDate(c *fiber.Ctx) error {
	first, err := h.service.GetFirstTransactionDate(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"date": first})
}

func (h *LedgerHandler) GetEntry(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	entry, err := h.service.GetEntry(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(entry)
}

func (h *LedgerHandler) UpdateEntry(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var upd model.LedgerEntryUpdate
	if err := parseBody(c, &upd); err != nil {
		return err
	}
	entry, err := h.service.UpdateEntry(c.UserContext(), id, upd)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Entry updated", "data": entry})
}

func (h *LedgerHandler) DeleteEntry(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := h.service.DeleteEntry(c.UserContext(), id); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Entry deleted"})
}
