package repository

import (
	"context"

	"github.com/jhoicas/retail-stock-api/internal/domain/entity"
)

// ReturnRepository define el puerto de persistencia para devoluciones.
type ReturnRepository interface {
	Create(ctx context.Context, ret *entity.Return) error
	CreateLine(ctx context.Context, line *entity.ReturnLine) error
	GetByID(ctx context.Context, id string) (*entity.Return, error)
	GetLines(ctx context.Context, returnID string) ([]*entity.ReturnLine, error)
	// ReturnedQuantities suma lo ya devuelto por línea de venta (sale_line_id -> cantidad).
	ReturnedQuantities(ctx context.Context, saleID string) (map[string]int64, error)
}
