package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockLineResponse stock de una variante en una sede.
type StockLineResponse struct {
	LocationID   string           `json:"location_id"`
	ItemID       string           `json:"item_id"`
	VariantID    string           `json:"variant_id,omitempty"`
	CurrentStock int64            `json:"current_stock"`
	MinimumStock *int64           `json:"minimum_stock,omitempty"`
	CostPrice    *decimal.Decimal `json:"cost_price,omitempty"`
	SellingPrice *decimal.Decimal `json:"selling_price,omitempty"`
	BelowMinimum bool             `json:"below_minimum"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

// MovementResponse movimiento del kardex.
type MovementResponse struct {
	ID            string    `json:"id"`
	LocationID    string    `json:"location_id"`
	ItemID        string    `json:"item_id"`
	VariantID     string    `json:"variant_id,omitempty"`
	BoxID         string    `json:"box_id,omitempty"`
	Direction     string    `json:"direction"`
	Quantity      int64     `json:"quantity"`
	StockBefore   int64     `json:"stock_before"`
	StockAfter    int64     `json:"stock_after"`
	Clamped       bool      `json:"clamped"`
	ReferenceType string    `json:"reference_type"`
	ReferenceID   string    `json:"reference_id"`
	CreatedBy     string    `json:"created_by"`
	CreatedAt     time.Time `json:"created_at"`
}

// MovementPage listado paginado de movimientos.
type MovementPage struct {
	Items []MovementResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}

// LowStockResponse línea por debajo de su mínimo configurado.
type LowStockResponse struct {
	LocationID   string `json:"location_id"`
	ItemID       string `json:"item_id"`
	VariantID    string `json:"variant_id,omitempty"`
	CurrentStock int64  `json:"current_stock"`
	MinimumStock int64  `json:"minimum_stock"`
	Shortfall    int64  `json:"shortfall"`
}
