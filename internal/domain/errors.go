package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound     = errors.New("recurso no encontrado")
	ErrInvalidInput = errors.New("entrada inválida")
	ErrDuplicate    = errors.New("recurso duplicado")
	ErrUnauthorized = errors.New("no autorizado")
	ErrForbidden    = errors.New("acceso denegado")
	ErrConflict     = errors.New("conflicto con el estado actual")

	// Inventario.
	ErrInsufficientStock = errors.New("stock insuficiente")
	ErrInvalidQuantity   = errors.New("la cantidad debe ser mayor que cero")

	// Ventas y devoluciones.
	ErrEmptyCart         = errors.New("el carrito está vacío")
	ErrNegativeTotal     = errors.New("el total calculado es negativo")
	ErrInsufficientPay   = errors.New("el pago no cubre el total")
	ErrReturnExceedsSold = errors.New("la cantidad devuelta supera la vendida")

	// Traslados.
	ErrShipmentCancelled = errors.New("el traslado ya fue anulado")
	ErrSameLocation      = errors.New("origen y destino deben ser distintos")

	// ErrConsistency falla de consistencia dentro de la transacción (fila enlazada ausente).
	ErrConsistency = errors.New("inconsistencia de datos")
)
