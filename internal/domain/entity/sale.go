package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de liquidación de una venta.
const (
	SettlementPaid          = "paid"
	SettlementPending       = "pending"
	SettlementPartialRefund = "partial_refund"
	SettlementRefunded      = "refunded"
)

// Medios de pago.
const (
	PaymentCash   = "cash"
	PaymentMobile = "mobile"
	PaymentCredit = "credit"
	PaymentMixed  = "mixed"
)

// Sale cabecera de una venta POS.
type Sale struct {
	ID             string
	Number         string
	LocationID     string
	UserID         string
	CustomerName   string
	CustomerPhone  string
	Subtotal       decimal.Decimal
	Tax            decimal.Decimal
	Discount       decimal.Decimal
	Total          decimal.Decimal
	CashTendered   decimal.Decimal
	MobileTendered decimal.Decimal
	CreditAmount   decimal.Decimal
	Change         decimal.Decimal
	PaymentMethod  string
	Status         string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// SaleLine línea de venta. Las líneas ad hoc (fuera de catálogo) no tienen stock ni movimiento.
type SaleLine struct {
	ID          string
	SaleID      string
	Position    int
	ItemID      string
	VariantID   string
	Description string
	Quantity    int64
	UnitPrice   decimal.Decimal
	Discount    decimal.Decimal
	LineTotal   decimal.Decimal
	AdHoc       bool
}
