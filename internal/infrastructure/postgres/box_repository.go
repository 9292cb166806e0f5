package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/retail-stock-api/internal/domain/entity"
	"github.com/jhoicas/retail-stock-api/internal/domain/repository"
)

var _ repository.WarehouseBoxRepository = (*WarehouseBoxRepo)(nil)

// WarehouseBoxRepo cajas de la bodega central.
type WarehouseBoxRepo struct {
	q Querier
}

// NewWarehouseBoxRepository construye el adaptador de cajas.
func NewWarehouseBoxRepository(q Querier) *WarehouseBoxRepo {
	return &WarehouseBoxRepo{q: q}
}

// GetForUpdate bloquea la caja; nil si no existe.
func (r *WarehouseBoxRepo) GetForUpdate(ctx context.Context, id string) (*entity.WarehouseBox, error) {
	var b entity.WarehouseBox
	err := r.q.QueryRow(ctx, `
		SELECT id, location_id, item_id, variant_id, label, quantity, updated_at
		FROM warehouse_boxes WHERE id = $1
		FOR UPDATE`, id,
	).Scan(&b.ID, &b.LocationID, &b.ItemID, &b.VariantID, &b.Label, &b.Quantity, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get box for update: %w", err)
	}
	return &b, nil
}

// SetQuantity fija la cantidad de la caja.
func (r *WarehouseBoxRepo) SetQuantity(ctx context.Context, id string, quantity int64) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE warehouse_boxes SET quantity = $2, updated_at = now() WHERE id = $1`, id, quantity)
	if err != nil {
		return wrapWriteErr("set box quantity", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("set box quantity: caja %s inexistente", id)
	}
	return nil
}
