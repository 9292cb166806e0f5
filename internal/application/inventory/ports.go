package inventory

import (
	"context"

	"github.com/jhoicas/retail-stock-api/internal/domain/repository"
)

// TxRepos repositorios atados a una misma transacción de BD.
// Todo lo que escriben Ledger y Applier dentro de una operación de negocio pasa por aquí.
type TxRepos struct {
	Stock     repository.StockRepository
	Movements repository.MovementRepository
	Boxes     repository.WarehouseBoxRepository
	Locations repository.LocationRepository
	Sales     repository.SaleRepository
	Returns   repository.ReturnRepository
	Transfers repository.TransferRepository
}

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Si fn devuelve error se hace Rollback de todo; si no, Commit. Garantiza atomicidad del motor.
type TxRunner interface {
	Run(ctx context.Context, fn func(tx TxRepos) error) error
}

// ClampRecorder recibe una señal cada vez que una salida se recorta en cero.
type ClampRecorder interface {
	RecordClamp(locationID string, requested, available int64)
}

type noopClamps struct{}

func (noopClamps) RecordClamp(string, int64, int64) {}
