package repository

import (
	"context"

	"github.com/jhoicas/retail-stock-api/internal/domain/entity"
)

// StockRepository define el puerto para leer/escribir líneas de stock por sede+ítem+variante.
// Siempre se usa atado a la transacción del caso de uso.
type StockRepository interface {
	// GetForUpdate bloquea la fila (SELECT FOR UPDATE). Si no existe la crea en cero.
	GetForUpdate(ctx context.Context, key entity.StockKey) (*entity.StockLine, error)
	// Get lee sin bloquear; devuelve nil si la línea no existe.
	Get(ctx context.Context, key entity.StockKey) (*entity.StockLine, error)
	// SetQuantity fija la cantidad actual de una línea ya existente.
	SetQuantity(ctx context.Context, key entity.StockKey, quantity int64) error
	// ListBelowMinimum líneas de la sede con minimum_stock definido y stock actual por debajo.
	ListBelowMinimum(ctx context.Context, locationID string) ([]*entity.StockLine, error)
}
