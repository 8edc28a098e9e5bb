package handler

import (
	"go-inventory-ledger/internal/ws"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Catalog   *CatalogHandler
	Balance   *BalanceHandler
	Ledger    *LedgerHandler
	Snapshot  *SnapshotHandler
	Dashboard *DashboardHandler
}

// Register mounts the JSON API under /api/v1.
func (h Handlers) Register(app *fiber.App) {
	api := app.Group("/api/v1")

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// Catalog
	api.Get("/stores", h.Catalog.GetStores)
	api.Post("/stores", h.Catalog.CreateStore)
	api.Get("/stores/:id", h.Catalog.GetStore)
	api.Put("/stores/:id", h.Catalog.UpdateStore)
	api.Delete("/stores/:id", h.Catalog.DeleteStore)

	api.Get("/units", h.Catalog.GetUnits)
	api.Post("/units", h.Catalog.CreateUnit)
	api.Get("/units/:id", h.Catalog.GetUnit)
	api.Put("/units/:id", h.Catalog.UpdateUnit)
	api.Delete("/units/:id", h.Catalog.DeleteUnit)

	api.Get("/products", h.Catalog.GetProducts)
	api.Post("/products", h.Catalog.CreateProduct)
	api.Get("/products/:id", h.Catalog.GetProduct)
	api.Put("/products/:id", h.Catalog.UpdateProduct)
	api.Delete("/products/:id", h.Catalog.DeleteProduct)

	// Balances
	api.Get("/balances", h.Balance.GetBalances)
	api.Get("/products/:id/balance", h.Balance.GetProductBalance)
	api.Get("/products/:id/totals", h.Balance.GetProductTotals)
	api.Post("/products/:id/adjustments", h.Balance.AddAdjustment)

	// Ledger
	api.Get("/ledger", h.Ledger.GetHistory)
	api.Get("/ledger/first-date", h.Ledger.GetFirstDate)
	api.Get("/ledger/:id", h.Ledger.GetEntry)
	api.Put("/ledger/:id", h.Ledger.UpdateEntry)
	api.Delete("/ledger/:id", h.Ledger.DeleteEntry)

	api.Post("/snapshots/today", h.Snapshot.EnsureToday)

	api.Get("/dashboard/stats", h.Dashboard.GetDashboardStats)
	api.Get("/dashboard/stock-movement", h.Dashboard.GetStockMovement)
}

// RegisterWebSocket mounts the event feed at /ws.
func RegisterWebSocket(app *fiber.App, hub *ws.Hub) {
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return c.SendStatus(fiber.StatusUpgradeRequired)
	})
	app.Get("/ws", websocket.New(func(c *websocket.Conn) {
		if !hub.Join(c) {
			c.Close()
			return
		}
		defer hub.Leave(c)

		for {
			// clients only listen; reading detects disconnects
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}
	}))
}
