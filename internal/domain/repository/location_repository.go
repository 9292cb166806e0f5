package repository

import (
	"context"

	"github.com/jhoicas/retail-stock-api/internal/domain/entity"
)

// LocationRepository puerto de lectura de sedes. Devuelve nil, nil si no existe.
type LocationRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Location, error)
}
