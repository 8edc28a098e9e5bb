package handler

import (
	"go-inventory-ledger/internal/service"

	"github.com/gofiber/fiber/v2"
)

type SnapshotHandler struct {
	service service.SnapshotService
}

func NewSnapshotHandler(s service.SnapshotService) *SnapshotHandler {
	return &SnapshotHandler{service: s}
}

// EnsureToday runs the daily snapshot on demand. Safe to call repeatedly.
func (h *SnapshotHandler) EnsureToday(c *fiber.Ctx) error {
	result, err := h.service.EnsureTodaySnapshot(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(result)
}
