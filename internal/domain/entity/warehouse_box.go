package entity

import "time"

// WarehouseBox caja física de la bodega central; su cantidad es un pool propio,
// independiente de la línea de stock de la sede.
type WarehouseBox struct {
	ID         string
	LocationID string
	ItemID     string
	VariantID  string
	Label      string
	Quantity   int64
	UpdatedAt  time.Time
}
