package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go-inventory-ledger/internal/config"
	"go-inventory-ledger/internal/handler"
	"go-inventory-ledger/internal/middleware"
	"go-inventory-ledger/internal/service"
	"go-inventory-ledger/internal/storage"
	"go-inventory-ledger/internal/ws"
	"go-inventory-ledger/pkg/calendar"
	"go-inventory-ledger/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/shopspring/decimal"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "api: %v\n", err)
		os.Exit(1)
	}
}

// run owns every resource it opens, so deferred cleanup happens before the
// process exits.
func run() error {
	// 1. Config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	log := logger.New(cfg.LogLevel)
	decimal.MarshalJSONWithoutQuotes = true

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 2. Storage and lock
	repos, err := storage.Open(cfg, log)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer repos.Close()

	locker, closeLocker := storage.OpenLocker(ctx, cfg.RedisURL, log)
	defer closeLocker()

	// 3. WebSocket Hub
	wsHub := ws.NewHub(log)
	go wsHub.Run(ctx)

	// 4. Services
	clock := service.Clock{Location: calendar.LoadLocation(cfg.Timezone)}

	balanceService := service.NewBalanceService(repos.Products, repos.Stores, repos.Units, repos.Ledger, clock, cfg.BalanceWorkers, log)
	ledgerService := service.NewLedgerService(repos.Products, repos.Ledger, wsHub, clock, log)
	catalogService := service.NewCatalogService(repos.Products, repos.Stores, repos.Units, wsHub, log)
	dashService := service.NewDashboardService(repos.Products, repos.Stores, repos.Units, repos.Ledger, balanceService, clock, cfg.LowStockThreshold)
	snapshotService := service.NewSnapshotService(repos.Products, repos.Ledger, locker, wsHub, clock,
		service.SnapshotOptions{Interval: cfg.SnapshotInterval, LockTTL: cfg.SnapshotLockTTL}, log)

	// 5. Today's snapshot before serving, then on every day change
	if _, err := snapshotService.EnsureTodaySnapshot(ctx); err != nil {
		return fmt.Errorf("initial snapshot: %w", err)
	}
	go snapshotService.Run(ctx)

	// 6. Setup Fiber
	app := fiber.New(fiber.Config{
		AppName:      "Inventory Ledger v1.0",
		ErrorHandler: middleware.ErrorHandler(log),
	})

	app.Use(fiberlogger.New())
	app.Use(recover.New())
	app.Use(cors.New())

	handler.Handlers{
		Catalog:   handler.NewCatalogHandler(catalogService),
		Balance:   handler.NewBalanceHandler(balanceService, ledgerService),
		Ledger:    handler.NewLedgerHandler(ledgerService),
		Snapshot:  handler.NewSnapshotHandler(snapshotService),
		Dashboard: handler.NewDashboardHandler(dashService),
	}.Register(app)
	handler.RegisterWebSocket(app, wsHub)

	// 7. Graceful Shutdown
	listenErr := make(chan error, 1)
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Port)
		if err := app.Listen(addr); err != nil {
			listenErr <- err
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.WithError(err).Error("server forced to shutdown")
	}
	log.Info("Server exited")

	select {
	case err := <-listenErr:
		return fmt.Errorf("listen: %w", err)
	default:
		return nil
	}
}
