package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockKey identifica una línea de stock: sede + ítem + variante (código de barras).
type StockKey struct {
	LocationID string
	ItemID     string
	VariantID  string
}

// StockLine representa el stock actual de una variante en una sede.
// Se crea en cero con el primer movimiento; nunca se elimina, solo queda en cero.
type StockLine struct {
	StockKey
	CurrentStock int64
	MinimumStock *int64           // umbral opcional de reposición
	CostPrice    *decimal.Decimal // costo propio de la sede (override)
	SellingPrice *decimal.Decimal // precio propio de la sede (override)
	UpdatedAt    time.Time
}

// BelowMinimum indica si la línea quedó por debajo de su mínimo configurado.
func (s *StockLine) BelowMinimum() bool {
	return s.MinimumStock != nil && s.CurrentStock < *s.MinimumStock
}
