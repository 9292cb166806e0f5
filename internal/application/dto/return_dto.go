package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReturnLineRequest cantidad devuelta de una línea de la venta original.
type ReturnLineRequest struct {
	SaleLineID string `json:"sale_line_id"`
	Quantity   int64  `json:"quantity"`
}

// CreateReturnRequest body para POST /api/returns.
// Con type=full y sin líneas se devuelve todo lo pendiente de la venta.
type CreateReturnRequest struct {
	SaleID string              `json:"sale_id"`
	Reason string              `json:"reason"`
	Type   string              `json:"type"`
	Lines  []ReturnLineRequest `json:"lines,omitempty"`
}

// ReturnLineResponse línea devuelta.
type ReturnLineResponse struct {
	ID         string          `json:"id"`
	SaleLineID string          `json:"sale_line_id"`
	Position   int             `json:"position"`
	ItemID     string          `json:"item_id,omitempty"`
	VariantID  string          `json:"variant_id,omitempty"`
	AdHoc      bool            `json:"ad_hoc"`
	Quantity   int64           `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	Amount     decimal.Decimal `json:"amount"`
}

// ReturnResponse devolución con sus líneas y el estado resultante de la venta.
type ReturnResponse struct {
	ID          string               `json:"id"`
	Number      string               `json:"number"`
	SaleID      string               `json:"sale_id"`
	LocationID  string               `json:"location_id"`
	UserID      string               `json:"user_id"`
	Reason      string               `json:"reason"`
	Type        string               `json:"type"`
	TotalRefund decimal.Decimal      `json:"total_refund"`
	SaleStatus  string               `json:"sale_status,omitempty"`
	CreatedAt   time.Time            `json:"created_at"`
	Lines       []ReturnLineResponse `json:"lines"`
}
