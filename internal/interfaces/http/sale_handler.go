package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/retail-stock-api/internal/application/dto"
	"github.com/jhoicas/retail-stock-api/internal/application/sales"
)

// SaleHandler ventas POS y devoluciones.
type SaleHandler struct {
	sales   *sales.SaleUseCase
	returns *sales.ReturnUseCase
}

// NewSaleHandler construye el handler.
func NewSaleHandler(salesUC *sales.SaleUseCase, returnsUC *sales.ReturnUseCase) *SaleHandler {
	return &SaleHandler{sales: salesUC, returns: returnsUC}
}

// CreateSale godoc
// @Summary      Registrar venta
// @Tags         sales
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateSaleRequest  true  "líneas, impuesto, descuento y pago"
// @Success      201   {object}  dto.Envelope
// @Failure      400   {object}  dto.Envelope
// @Failure      404   {object}  dto.Envelope
// @Router       /api/sales [post]
func (h *SaleHandler) CreateSale(c *fiber.Ctx) error {
	var in dto.CreateSaleRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	resp, err := h.sales.CreateSale(c.UserContext(), actorFrom(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.OK(resp, "venta registrada"))
}

// GetSale godoc
// @Summary      Consultar venta
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la venta"
// @Success      200  {object}  dto.Envelope
// @Failure      404  {object}  dto.Envelope
// @Router       /api/sales/{id} [get]
func (h *SaleHandler) GetSale(c *fiber.Ctx) error {
	resp, err := h.sales.GetSale(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.OK(resp, ""))
}

// GetReceipt godoc
// @Summary      Comprobante PDF de la venta
// @Tags         sales
// @Security     Bearer
// @Produce      application/pdf
// @Param        id   path  string  true  "ID de la venta"
// @Success      200
// @Failure      404  {object}  dto.Envelope
// @Router       /api/sales/{id}/receipt [get]
func (h *SaleHandler) GetReceipt(c *fiber.Ctx) error {
	pdf, err := h.sales.SaleReceiptPDF(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `inline; filename="venta-`+c.Params("id")+`.pdf"`)
	return c.Send(pdf)
}

// CreateReturn godoc
// @Summary      Registrar devolución
// @Tags         returns
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateReturnRequest  true  "venta, motivo, tipo y líneas"
// @Success      201   {object}  dto.Envelope
// @Failure      400   {object}  dto.Envelope
// @Failure      409   {object}  dto.Envelope
// @Router       /api/returns [post]
func (h *SaleHandler) CreateReturn(c *fiber.Ctx) error {
	var in dto.CreateReturnRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	resp, err := h.returns.CreateReturn(c.UserContext(), actorFrom(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.OK(resp, "devolución registrada"))
}

// GetReturn godoc
// @Summary      Consultar devolución
// @Tags         returns
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la devolución"
// @Success      200  {object}  dto.Envelope
// @Failure      404  {object}  dto.Envelope
// @Router       /api/returns/{id} [get]
func (h *SaleHandler) GetReturn(c *fiber.Ctx) error {
	resp, err := h.returns.GetReturn(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.OK(resp, ""))
}
