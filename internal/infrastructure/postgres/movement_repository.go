package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/retail-stock-api/internal/domain/entity"
	"github.com/jhoicas/retail-stock-api/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

// MovementRepo implementación del kardex sobre PostgreSQL: solo inserción y lectura.
type MovementRepo struct {
	q Querier
}

// NewMovementRepository construye el adaptador de movimientos.
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

const movementColumns = `id, location_id, item_id, variant_id, box_id, direction, quantity,
	stock_before, stock_after, clamped, reference_type, reference_id, created_by, created_at`

// Create inserta el movimiento.
func (r *MovementRepo) Create(ctx context.Context, m *entity.Movement) error {
	query := `INSERT INTO stock_movements (` + movementColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	_, err := r.q.Exec(ctx, query,
		m.ID, m.LocationID, m.ItemID, m.VariantID, m.BoxID, m.Direction, m.Quantity,
		m.StockBefore, m.StockAfter, m.Clamped, m.Reference.Type, m.Reference.ID, m.CreatedBy, m.CreatedAt,
	)
	if err != nil {
		return wrapWriteErr("insert movement", err)
	}
	return nil
}

// ListByStockKey kardex de una línea, más reciente primero. Los movimientos de cajas
// tienen su propio saldo y no cuentan para la línea.
func (r *MovementRepo) ListByStockKey(ctx context.Context, key entity.StockKey, limit, offset int) ([]*entity.Movement, error) {
	query := `SELECT ` + movementColumns + `
		FROM stock_movements
		WHERE location_id = $1 AND item_id = $2 AND variant_id = $3 AND box_id IS NULL
		ORDER BY created_at DESC, id DESC
		LIMIT $4 OFFSET $5`
	rows, err := r.q.Query(ctx, query, key.LocationID, key.ItemID, key.VariantID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	return collectMovements(rows)
}

// ListByBox movimientos del pool de una caja, más reciente primero.
func (r *MovementRepo) ListByBox(ctx context.Context, boxID string, limit, offset int) ([]*entity.Movement, error) {
	query := `SELECT ` + movementColumns + `
		FROM stock_movements
		WHERE box_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(ctx, query, boxID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list box movements: %w", err)
	}
	return collectMovements(rows)
}

// ListByReference movimientos generados por un documento.
func (r *MovementRepo) ListByReference(ctx context.Context, ref entity.Reference) ([]*entity.Movement, error) {
	query := `SELECT ` + movementColumns + `
		FROM stock_movements
		WHERE reference_type = $1 AND reference_id = $2
		ORDER BY created_at, id`
	rows, err := r.q.Query(ctx, query, ref.Type, ref.ID)
	if err != nil {
		return nil, fmt.Errorf("list movements by reference: %w", err)
	}
	return collectMovements(rows)
}

func collectMovements(rows pgx.Rows) ([]*entity.Movement, error) {
	defer rows.Close()
	var list []*entity.Movement
	for rows.Next() {
		var m entity.Movement
		if err := rows.Scan(
			&m.ID, &m.LocationID, &m.ItemID, &m.VariantID, &m.BoxID, &m.Direction, &m.Quantity,
			&m.StockBefore, &m.StockAfter, &m.Clamped, &m.Reference.Type, &m.Reference.ID, &m.CreatedBy, &m.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		list = append(list, &m)
	}
	return list, rows.Err()
}
