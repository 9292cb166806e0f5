package repository

import (
	"context"

	"github.com/jhoicas/retail-stock-api/internal/domain/entity"
)

// WarehouseBoxRepository puerto para las cajas de la bodega central.
type WarehouseBoxRepository interface {
	// GetForUpdate bloquea la caja; devuelve nil, nil si no existe.
	GetForUpdate(ctx context.Context, id string) (*entity.WarehouseBox, error)
	SetQuantity(ctx context.Context, id string, quantity int64) error
}
