package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de devolución.
const (
	ReturnPartial = "partial"
	ReturnFull    = "full"
)

// Return cabecera de una devolución; referencia exactamente una venta.
type Return struct {
	ID          string
	Number      string
	SaleID      string
	LocationID  string
	UserID      string
	Reason      string
	Type        string
	TotalRefund decimal.Decimal
	CreatedAt   time.Time
}

// ReturnLine línea devuelta, atada a la línea de venta original.
type ReturnLine struct {
	ID         string
	ReturnID   string
	SaleLineID string
	Position   int
	ItemID     string
	VariantID  string
	AdHoc      bool
	Quantity   int64
	UnitPrice  decimal.Decimal
	Amount     decimal.Decimal
}
