package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/retail-stock-api/internal/domain/entity"
	"github.com/jhoicas/retail-stock-api/internal/domain/repository"
)

var _ repository.TransferRepository = (*TransferRepo)(nil)

// TransferRepo traslados y sus líneas.
type TransferRepo struct {
	q Querier
}

// NewTransferRepository construye el adaptador de traslados.
func NewTransferRepository(q Querier) *TransferRepo {
	return &TransferRepo{q: q}
}

const shipmentColumns = `id, number, source_location_id, destination_location_id, status, notes,
	created_by, created_at, completed_at, cancelled_at, cancelled_by, cancel_reason`

// Create inserta la cabecera.
func (r *TransferRepo) Create(ctx context.Context, s *entity.TransferShipment) error {
	query := `INSERT INTO transfer_shipments (` + shipmentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.q.Exec(ctx, query,
		s.ID, s.Number, s.SourceLocationID, s.DestinationLocationID, s.Status, s.Notes,
		s.CreatedBy, s.CreatedAt, s.CompletedAt, s.CancelledAt, s.CancelledBy, s.CancelReason,
	)
	if err != nil {
		return wrapWriteErr("insert transfer", err)
	}
	return nil
}

// CreateLine inserta una línea.
func (r *TransferRepo) CreateLine(ctx context.Context, l *entity.TransferLine) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO transfer_lines (id, shipment_id, position, item_id, variant_id, quantity, box_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		l.ID, l.ShipmentID, l.Position, l.ItemID, l.VariantID, l.Quantity, l.BoxID,
	)
	if err != nil {
		return wrapWriteErr("insert transfer line", err)
	}
	return nil
}

func (r *TransferRepo) get(ctx context.Context, id string, forUpdate bool) (*entity.TransferShipment, error) {
	query := `SELECT ` + shipmentColumns + ` FROM transfer_shipments WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	var s entity.TransferShipment
	err := r.q.QueryRow(ctx, query, id).Scan(
		&s.ID, &s.Number, &s.SourceLocationID, &s.DestinationLocationID, &s.Status, &s.Notes,
		&s.CreatedBy, &s.CreatedAt, &s.CompletedAt, &s.CancelledAt, &s.CancelledBy, &s.CancelReason,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get transfer: %w", err)
	}
	return &s, nil
}

// GetByID devuelve el traslado o nil.
func (r *TransferRepo) GetByID(ctx context.Context, id string) (*entity.TransferShipment, error) {
	return r.get(ctx, id, false)
}

// GetForUpdate bloquea la cabecera: dos anulaciones concurrentes se serializan aquí.
func (r *TransferRepo) GetForUpdate(ctx context.Context, id string) (*entity.TransferShipment, error) {
	return r.get(ctx, id, true)
}

// GetLines devuelve las líneas del traslado.
func (r *TransferRepo) GetLines(ctx context.Context, shipmentID string) ([]*entity.TransferLine, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, shipment_id, position, item_id, variant_id, quantity, box_id
		FROM transfer_lines WHERE shipment_id = $1 ORDER BY position, id`, shipmentID)
	if err != nil {
		return nil, fmt.Errorf("list transfer lines: %w", err)
	}
	defer rows.Close()
	var list []*entity.TransferLine
	for rows.Next() {
		var l entity.TransferLine
		if err := rows.Scan(&l.ID, &l.ShipmentID, &l.Position, &l.ItemID, &l.VariantID, &l.Quantity, &l.BoxID); err != nil {
			return nil, fmt.Errorf("scan transfer line: %w", err)
		}
		list = append(list, &l)
	}
	return list, rows.Err()
}

// MarkCompleted pasa el traslado a completed.
func (r *TransferRepo) MarkCompleted(ctx context.Context, id string, at time.Time) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE transfer_shipments SET status = $2, completed_at = $3
		WHERE id = $1 AND status = $4`,
		id, entity.TransferCompleted, at, entity.TransferPending)
	if err != nil {
		return wrapWriteErr("complete transfer", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("complete transfer: traslado %s no está pendiente", id)
	}
	return nil
}

// MarkCancelled pasa el traslado a cancelled (terminal) registrando quién, cuándo y por qué.
func (r *TransferRepo) MarkCancelled(ctx context.Context, id, userID, reason string, at time.Time) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE transfer_shipments
		SET status = $2, cancelled_at = $3, cancelled_by = $4, cancel_reason = $5
		WHERE id = $1 AND status <> $2`,
		id, entity.TransferCancelled, at, userID, reason)
	if err != nil {
		return wrapWriteErr("cancel transfer", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("cancel transfer: traslado %s ya anulado o inexistente", id)
	}
	return nil
}
