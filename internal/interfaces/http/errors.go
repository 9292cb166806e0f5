package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/retail-stock-api/internal/application/dto"
	"github.com/jhoicas/retail-stock-api/internal/domain"
)

type errorMapping struct {
	target  error
	status  int
	code    string
	message string
}

// El orden importa: el primer error que coincide define la respuesta.
var errorMappings = []errorMapping{
	{domain.ErrUnauthorized, fiber.StatusUnauthorized, "UNAUTHORIZED", "sesión inválida"},
	{domain.ErrForbidden, fiber.StatusForbidden, "FORBIDDEN", "acceso denegado al recurso"},
	{domain.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND", "recurso no encontrado"},
	{domain.ErrEmptyCart, fiber.StatusBadRequest, "EMPTY_CART", "el carrito está vacío"},
	{domain.ErrInvalidQuantity, fiber.StatusBadRequest, "INVALID_QUANTITY", "la cantidad debe ser mayor que cero"},
	{domain.ErrNegativeTotal, fiber.StatusBadRequest, "NEGATIVE_TOTAL", "el total no puede ser negativo"},
	{domain.ErrInsufficientPay, fiber.StatusBadRequest, "INSUFFICIENT_PAYMENT", "el pago no cubre el total"},
	{domain.ErrSameLocation, fiber.StatusBadRequest, "SAME_LOCATION", "origen y destino deben ser distintos"},
	{domain.ErrInvalidInput, fiber.StatusBadRequest, "VALIDATION", "datos inválidos"},
	{domain.ErrReturnExceedsSold, fiber.StatusConflict, "RETURN_EXCEEDS_SOLD", "la devolución supera lo vendido"},
	{domain.ErrInsufficientStock, fiber.StatusConflict, "INSUFFICIENT_STOCK", "stock insuficiente"},
	{domain.ErrShipmentCancelled, fiber.StatusConflict, "SHIPMENT_CANCELLED", "el traslado ya fue anulado"},
	{domain.ErrDuplicate, fiber.StatusConflict, "DUPLICATE", "el registro ya existe"},
	{domain.ErrConflict, fiber.StatusConflict, "CONFLICT", "la operación no aplica al estado actual"},
	{domain.ErrConsistency, fiber.StatusInternalServerError, "CONSISTENCY", "datos relacionados inconsistentes"},
}

// writeError traduce un error del motor al envelope HTTP.
// El detalle del error viaja en el mensaje salvo para fallas internas.
func writeError(c *fiber.Ctx, err error) error {
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			msg := m.message
			if m.status < fiber.StatusInternalServerError {
				msg = err.Error()
			}
			return c.Status(m.status).JSON(dto.Fail(m.code, msg))
		}
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.Fail("INTERNAL", "error interno"))
}

func badBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.Fail("INVALID_BODY", "cuerpo inválido"))
}
