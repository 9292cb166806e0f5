package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/retail-stock-api/internal/application/dto"
	"github.com/jhoicas/retail-stock-api/internal/application/inventory"
	"github.com/jhoicas/retail-stock-api/internal/domain/entity"
)

// InventoryHandler consultas del ledger: línea de stock, kardex y reposición.
type InventoryHandler struct {
	query         *inventory.StockQueryUseCase
	replenishment *inventory.ReplenishmentUseCase
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(query *inventory.StockQueryUseCase, replenishment *inventory.ReplenishmentUseCase) *InventoryHandler {
	return &InventoryHandler{query: query, replenishment: replenishment}
}

// stockKeyFrom lee la clave de la query; sin location_id se usa la sede de la sesión.
func stockKeyFrom(c *fiber.Ctx) entity.StockKey {
	loc := c.Query("location_id")
	if loc == "" {
		loc = GetLocationID(c)
	}
	return entity.StockKey{LocationID: loc, ItemID: c.Query("item_id"), VariantID: c.Query("variant_id")}
}

// GetStockLine godoc
// @Summary      Stock actual de una variante en una sede
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        location_id  query  string  false  "Sede (por defecto la de la sesión)"
// @Param        item_id      query  string  true   "Ítem"
// @Param        variant_id   query  string  false  "Variante"
// @Success      200  {object}  dto.Envelope
// @Failure      400  {object}  dto.Envelope
// @Router       /api/inventory/stock [get]
func (h *InventoryHandler) GetStockLine(c *fiber.Ctx) error {
	resp, err := h.query.GetStockLine(c.UserContext(), stockKeyFrom(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.OK(resp, ""))
}

// ListMovements godoc
// @Summary      Kardex de una línea de stock
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        location_id  query  string  false  "Sede (por defecto la de la sesión)"
// @Param        item_id      query  string  true   "Ítem"
// @Param        variant_id   query  string  false  "Variante"
// @Param        limit        query  int     false  "Tamaño de página (máx. 100)"
// @Param        offset       query  int     false  "Desplazamiento"
// @Success      200  {object}  dto.Envelope
// @Router       /api/inventory/movements [get]
func (h *InventoryHandler) ListMovements(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Fail("INVALID_QUERY", "paginación inválida"))
	}
	resp, err := h.query.ListMovements(c.UserContext(), stockKeyFrom(c), page)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.OK(resp, ""))
}

// ListBoxMovements godoc
// @Summary      Movimientos de una caja de bodega
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id      path   string  true   "ID de la caja"
// @Param        limit   query  int     false  "Tamaño de página (máx. 100)"
// @Param        offset  query  int     false  "Desplazamiento"
// @Success      200  {object}  dto.Envelope
// @Router       /api/inventory/boxes/{id}/movements [get]
func (h *InventoryHandler) ListBoxMovements(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Fail("INVALID_QUERY", "paginación inválida"))
	}
	resp, err := h.query.ListBoxMovements(c.UserContext(), c.Params("id"), page)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.OK(resp, ""))
}

// GetReplenishmentList godoc
// @Summary      Líneas bajo su mínimo
// @Description  Devuelve las variantes de la sede con stock por debajo del mínimo, mayor faltante primero.
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        location_id  query  string  false  "Sede (por defecto la de la sesión)"
// @Success      200  {object}  dto.Envelope
// @Router       /api/inventory/replenishment-list [get]
func (h *InventoryHandler) GetReplenishmentList(c *fiber.Ctx) error {
	loc := c.Query("location_id")
	if loc == "" {
		loc = GetLocationID(c)
	}
	list, err := h.replenishment.GenerateReplenishmentList(c.UserContext(), loc)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.OK(fiber.Map{"total": len(list), "replenishments": list}, ""))
}
