package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/retail-stock-api/internal/application/inventory"
	"github.com/jhoicas/retail-stock-api/internal/application/sales"
	"github.com/jhoicas/retail-stock-api/internal/application/transfer"
	"github.com/jhoicas/retail-stock-api/internal/domain"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Sales         *sales.SaleUseCase
	Returns       *sales.ReturnUseCase
	Transfers     *transfer.TransferUseCase
	StockQuery    *inventory.StockQueryUseCase
	Replenishment *inventory.ReplenishmentUseCase
	JWTSecret     string
}

// Router registra las rutas de la API. Todas requieren Bearer Token.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))

	anyRole := RequireRole(domain.RoleAdmin, domain.RoleManager, domain.RoleCashier, domain.RoleWarehouse)
	counter := RequireRole(domain.RoleAdmin, domain.RoleManager, domain.RoleCashier)
	logistics := RequireRole(domain.RoleAdmin, domain.RoleManager, domain.RoleWarehouse)
	supervisors := RequireRole(domain.RoleAdmin, domain.RoleManager)

	// Ventas y devoluciones ocurren en la sede del token.
	atLocation := RequireLocation(deps.StockQuery)

	saleHandler := NewSaleHandler(deps.Sales, deps.Returns)
	salesGroup := api.Group("/sales")
	salesGroup.Post("/", counter, atLocation, saleHandler.CreateSale)
	salesGroup.Get("/:id", anyRole, saleHandler.GetSale)
	salesGroup.Get("/:id/receipt", anyRole, saleHandler.GetReceipt)

	returnsGroup := api.Group("/returns")
	returnsGroup.Post("/", counter, atLocation, saleHandler.CreateReturn)
	returnsGroup.Get("/:id", anyRole, saleHandler.GetReturn)

	transferHandler := NewTransferHandler(deps.Transfers)
	transfers := api.Group("/transfers")
	transfers.Post("/", logistics, transferHandler.Create)
	transfers.Get("/:id", anyRole, transferHandler.Get)
	transfers.Post("/:id/receive", logistics, transferHandler.Receive)
	transfers.Post("/:id/reverse", supervisors, transferHandler.Reverse)

	inventoryHandler := NewInventoryHandler(deps.StockQuery, deps.Replenishment)
	inv := api.Group("/inventory", anyRole)
	inv.Get("/stock", inventoryHandler.GetStockLine)
	inv.Get("/movements", inventoryHandler.ListMovements)
	inv.Get("/boxes/:id/movements", inventoryHandler.ListBoxMovements)
	inv.Get("/replenishment-list", inventoryHandler.GetReplenishmentList)
}
