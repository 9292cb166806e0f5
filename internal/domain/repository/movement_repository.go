package repository

import (
	"context"

	"github.com/jhoicas/retail-stock-api/internal/domain/entity"
)

// MovementRepository define el puerto de persistencia para movimientos (solo inserción y lectura).
type MovementRepository interface {
	Create(ctx context.Context, movement *entity.Movement) error
	// ListByStockKey kardex de la línea de stock; excluye los movimientos de cajas.
	ListByStockKey(ctx context.Context, key entity.StockKey, limit, offset int) ([]*entity.Movement, error)
	ListByBox(ctx context.Context, boxID string, limit, offset int) ([]*entity.Movement, error)
	ListByReference(ctx context.Context, ref entity.Reference) ([]*entity.Movement, error)
}
