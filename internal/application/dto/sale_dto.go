package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// SaleLineRequest línea del carrito. Una línea ad hoc no tiene ítem de catálogo.
type SaleLineRequest struct {
	ItemID      string          `json:"item_id,omitempty"`
	VariantID   string          `json:"variant_id,omitempty"`
	Description string          `json:"description,omitempty"`
	Quantity    int64           `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Discount    decimal.Decimal `json:"discount"`
	AdHoc       bool            `json:"ad_hoc,omitempty"`
}

// TenderRequest desglose del pago.
type TenderRequest struct {
	Cash   decimal.Decimal `json:"cash"`
	Mobile decimal.Decimal `json:"mobile"`
	Credit decimal.Decimal `json:"credit"`
}

// CreateSaleRequest body para POST /api/sales.
type CreateSaleRequest struct {
	CustomerName  string            `json:"customer_name,omitempty"`
	CustomerPhone string            `json:"customer_phone,omitempty"`
	Lines         []SaleLineRequest `json:"lines"`
	Tax           decimal.Decimal   `json:"tax"`
	Discount      decimal.Decimal   `json:"discount"`
	Payment       TenderRequest     `json:"payment"`
}

// SaleLineResponse línea de venta en respuestas.
type SaleLineResponse struct {
	ID          string          `json:"id"`
	Position    int             `json:"position"`
	ItemID      string          `json:"item_id,omitempty"`
	VariantID   string          `json:"variant_id,omitempty"`
	Description string          `json:"description,omitempty"`
	Quantity    int64           `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Discount    decimal.Decimal `json:"discount"`
	LineTotal   decimal.Decimal `json:"line_total"`
	AdHoc       bool            `json:"ad_hoc"`
}

// SaleResponse venta con sus líneas.
type SaleResponse struct {
	ID             string             `json:"id"`
	Number         string             `json:"number"`
	LocationID     string             `json:"location_id"`
	UserID         string             `json:"user_id"`
	CustomerName   string             `json:"customer_name,omitempty"`
	CustomerPhone  string             `json:"customer_phone,omitempty"`
	Subtotal       decimal.Decimal    `json:"subtotal"`
	Tax            decimal.Decimal    `json:"tax"`
	Discount       decimal.Decimal    `json:"discount"`
	Total          decimal.Decimal    `json:"total"`
	CashTendered   decimal.Decimal    `json:"cash_tendered"`
	MobileTendered decimal.Decimal    `json:"mobile_tendered"`
	CreditAmount   decimal.Decimal    `json:"credit_amount"`
	Change         decimal.Decimal    `json:"change"`
	PaymentMethod  string             `json:"payment_method"`
	Status         string             `json:"status"`
	CreatedAt      time.Time          `json:"created_at"`
	Lines          []SaleLineResponse `json:"lines"`
	Movements      []MovementResponse `json:"movements,omitempty"`
}
