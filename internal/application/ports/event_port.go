package ports

import (
	"context"
	"time"
)

// Tipos de evento publicados tras el commit.
const (
	EventSaleCreated       = "sale.created"
	EventReturnCreated     = "return.created"
	EventTransferCompleted = "transfer.completed"
	EventTransferReversed  = "transfer.reversed"
)

// Event notificación de un documento ya confirmado en BD.
type Event struct {
	Type       string    `json:"type"`
	Key        string    `json:"key"`
	LocationID string    `json:"location_id"`
	OccurredAt time.Time `json:"occurred_at"`
	Payload    any       `json:"payload"`
}

// EventPublisher puerto de salida para eventos de dominio.
// Se llama después del commit: un fallo de publicación no deshace la operación.
type EventPublisher interface {
	Publish(ctx context.Context, evt Event) error
}
