package repository

import (
	"context"

	"github.com/jhoicas/retail-stock-api/internal/domain/entity"
)

// SaleRepository define el puerto de persistencia para ventas y sus líneas.
type SaleRepository interface {
	Create(ctx context.Context, sale *entity.Sale) error
	CreateLine(ctx context.Context, line *entity.SaleLine) error
	// GetByID devuelve nil, nil si no existe.
	GetByID(ctx context.Context, id string) (*entity.Sale, error)
	// GetForUpdate bloquea la cabecera de la venta; nil, nil si no existe.
	GetForUpdate(ctx context.Context, id string) (*entity.Sale, error)
	GetLines(ctx context.Context, saleID string) ([]*entity.SaleLine, error)
	UpdateStatus(ctx context.Context, id, status string) error
}
