package entity

import "time"

// Dirección del movimiento de inventario.
const (
	DirectionIn  = "in"  // entrada
	DirectionOut = "out" // salida
)

// Tipos de documento que originan movimientos.
const (
	RefSale             = "sale"
	RefReturn           = "return"
	RefTransfer         = "transfer"
	RefTransferReversal = "transfer_reversal"
)

// Reference documento que origina el movimiento.
type Reference struct {
	Type string
	ID   string
}

// Movement registro inmutable de un cambio de cantidad sobre una línea de stock
// (o sobre una caja de bodega cuando BoxID no es nil). Una corrección es un movimiento opuesto.
type Movement struct {
	ID string
	StockKey
	BoxID       *string
	Direction   string
	Quantity    int64 // siempre positiva; el signo lo da Direction
	StockBefore int64
	StockAfter  int64
	Clamped     bool // la salida se recortó en cero
	Reference   Reference
	CreatedBy   string
	CreatedAt   time.Time
}

// SignedQuantity devuelve la cantidad con signo según la dirección.
func (m *Movement) SignedQuantity() int64 {
	if m.Direction == DirectionOut {
		return -m.Quantity
	}
	return m.Quantity
}
