package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/retail-stock-api/internal/application/dto"
	"github.com/jhoicas/retail-stock-api/internal/application/transfer"
)

// TransferHandler traslados entre sedes.
type TransferHandler struct {
	uc *transfer.TransferUseCase
}

// NewTransferHandler construye el handler.
func NewTransferHandler(uc *transfer.TransferUseCase) *TransferHandler {
	return &TransferHandler{uc: uc}
}

// Create godoc
// @Summary      Crear traslado
// @Description  Descuenta el origen (caja o línea de stock) y, salvo dispatch_only, ingresa en el destino.
// @Tags         transfers
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateTransferRequest  true  "origen, destino y líneas"
// @Success      201   {object}  dto.Envelope
// @Failure      400   {object}  dto.Envelope
// @Failure      409   {object}  dto.Envelope
// @Router       /api/transfers [post]
func (h *TransferHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateTransferRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	resp, err := h.uc.CreateTransfer(c.UserContext(), actorFrom(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.OK(resp, "traslado registrado"))
}

// Receive godoc
// @Summary      Recibir traslado pendiente
// @Tags         transfers
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del traslado"
// @Success      200  {object}  dto.Envelope
// @Failure      409  {object}  dto.Envelope
// @Router       /api/transfers/{id}/receive [post]
func (h *TransferHandler) Receive(c *fiber.Ctx) error {
	resp, err := h.uc.ReceiveTransfer(c.UserContext(), actorFrom(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.OK(resp, "traslado recibido"))
}

// Reverse godoc
// @Summary      Anular traslado
// @Tags         transfers
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                      true   "ID del traslado"
// @Param        body  body  dto.ReverseTransferRequest  false  "motivo"
// @Success      200   {object}  dto.Envelope
// @Failure      409   {object}  dto.Envelope
// @Router       /api/transfers/{id}/reverse [post]
func (h *TransferHandler) Reverse(c *fiber.Ctx) error {
	var in dto.ReverseTransferRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return badBody(c)
		}
	}
	resp, err := h.uc.ReverseTransfer(c.UserContext(), actorFrom(c), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.OK(resp, "traslado anulado"))
}

// Get godoc
// @Summary      Consultar traslado
// @Tags         transfers
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del traslado"
// @Success      200  {object}  dto.Envelope
// @Failure      404  {object}  dto.Envelope
// @Router       /api/transfers/{id} [get]
func (h *TransferHandler) Get(c *fiber.Ctx) error {
	resp, err := h.uc.GetTransfer(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.OK(resp, ""))
}
