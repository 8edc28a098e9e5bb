package handler

import (
	"go-inventory-ledger/internal/model"
	"go-inventory-ledger/internal/service"

	"github.com/gofiber/fiber/v2"
)

type BalanceHandler struct {
	balances service.BalanceService
	ledger   service.LedgerService
}

func NewBalanceHandler(b service.BalanceService, l service.LedgerService) *BalanceHandler {
	return &BalanceHandler{balances: b, ledger: l}
}

// GetBalances lists products with their balance of ?date= (default today),
// optionally of one store (?store_id=).
func (h *BalanceHandler) GetBalances(c *fiber.Ctx) error {
	storeID, err := queryID(c, "store_id")
	if err != nil {
		return err
	}
	items, err := h.balances.ListProductsWithBalance(c.UserContext(), c.Query("date"), storeID)
	if err != nil {
		return err
	}
	return c.JSON(items)
}

func (h *BalanceHandler) GetProductBalance(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	b, err := h.balances.ComputeBalance(c.UserContext(), id, c.Query("date"))
	if err != nil {
		return err
	}
	return c.JSON(b)
}

func (h *BalanceHandler) GetProductTotals(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	totals, err := h.ledger.GetTransactionsForProduct(c.UserContext(), id, c.Query("date"))
	if err != nil {
		return err
	}
	return c.JSON(totals)
}

func (h *BalanceHandler) AddAdjustment(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var adj model.Adjustment
	if err := parseBody(c, &adj); err != nil {
		return err
	}
	entry, err := h.ledger.AddAdjustment(c.UserContext(), id, adj)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Adjustment recorded", "data": entry})
}
