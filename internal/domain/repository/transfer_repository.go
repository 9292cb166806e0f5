package repository

import (
	"context"
	"time"

	"github.com/jhoicas/retail-stock-api/internal/domain/entity"
)

// TransferRepository define el puerto de persistencia para traslados.
type TransferRepository interface {
	Create(ctx context.Context, shipment *entity.TransferShipment) error
	CreateLine(ctx context.Context, line *entity.TransferLine) error
	GetByID(ctx context.Context, id string) (*entity.TransferShipment, error)
	// GetForUpdate bloquea la cabecera para serializar recepciones y anulaciones.
	GetForUpdate(ctx context.Context, id string) (*entity.TransferShipment, error)
	GetLines(ctx context.Context, shipmentID string) ([]*entity.TransferLine, error)
	MarkCompleted(ctx context.Context, id string, at time.Time) error
	MarkCancelled(ctx context.Context, id, userID, reason string, at time.Time) error
}
