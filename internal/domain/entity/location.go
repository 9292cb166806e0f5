package entity

import "time"

// Tipos de sede.
const (
	LocationKindStore     = "store"
	LocationKindWarehouse = "warehouse"
)

// Location sede que mantiene stock: una tienda o la bodega central.
type Location struct {
	ID        string
	Code      string // código corto usado en la numeración de documentos
	Name      string
	Kind      string
	CreatedAt time.Time
}

// IsWarehouse indica si la sede es una bodega.
func (l *Location) IsWarehouse() bool {
	return l.Kind == LocationKindWarehouse
}
