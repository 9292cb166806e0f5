package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/retail-stock-api/internal/domain/entity"
	"github.com/jhoicas/retail-stock-api/internal/domain/repository"
)

var _ repository.StockRepository = (*StockRepo)(nil)

// StockRepo implementación de StockRepository sobre PostgreSQL (usable con pool o tx).
type StockRepo struct {
	q Querier
}

// NewStockRepository construye el adaptador de stock. Pasar pool o tx (Querier).
func NewStockRepository(q Querier) *StockRepo {
	return &StockRepo{q: q}
}

const stockColumns = `location_id, item_id, variant_id, current_stock, minimum_stock, cost_price, selling_price, updated_at`

func scanStockLine(row pgx.Row) (*entity.StockLine, error) {
	var s entity.StockLine
	err := row.Scan(
		&s.LocationID, &s.ItemID, &s.VariantID, &s.CurrentStock,
		&s.MinimumStock, &s.CostPrice, &s.SellingPrice, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// GetForUpdate crea la línea en cero si no existe y la bloquea (SELECT FOR UPDATE).
func (r *StockRepo) GetForUpdate(ctx context.Context, key entity.StockKey) (*entity.StockLine, error) {
	_, err := r.q.Exec(ctx, `
		INSERT INTO stock_lines (location_id, item_id, variant_id, current_stock, updated_at)
		VALUES ($1, $2, $3, 0, now())
		ON CONFLICT (location_id, item_id, variant_id) DO NOTHING`,
		key.LocationID, key.ItemID, key.VariantID)
	if err != nil {
		return nil, wrapWriteErr("ensure stock line", err)
	}
	query := `SELECT ` + stockColumns + `
		FROM stock_lines
		WHERE location_id = $1 AND item_id = $2 AND variant_id = $3
		FOR UPDATE`
	line, err := scanStockLine(r.q.QueryRow(ctx, query, key.LocationID, key.ItemID, key.VariantID))
	if err != nil {
		return nil, fmt.Errorf("get stock for update: %w", err)
	}
	return line, nil
}

// Get lee la línea sin bloquear; nil si no existe.
func (r *StockRepo) Get(ctx context.Context, key entity.StockKey) (*entity.StockLine, error) {
	query := `SELECT ` + stockColumns + `
		FROM stock_lines
		WHERE location_id = $1 AND item_id = $2 AND variant_id = $3`
	line, err := scanStockLine(r.q.QueryRow(ctx, query, key.LocationID, key.ItemID, key.VariantID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock: %w", err)
	}
	return line, nil
}

// SetQuantity fija la cantidad actual. El CHECK de la tabla impide valores negativos.
func (r *StockRepo) SetQuantity(ctx context.Context, key entity.StockKey, quantity int64) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE stock_lines SET current_stock = $4, updated_at = now()
		WHERE location_id = $1 AND item_id = $2 AND variant_id = $3`,
		key.LocationID, key.ItemID, key.VariantID, quantity)
	if err != nil {
		return wrapWriteErr("set stock", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("set stock: línea %s/%s/%s inexistente", key.LocationID, key.ItemID, key.VariantID)
	}
	return nil
}

// ListBelowMinimum líneas de la sede bajo su mínimo.
func (r *StockRepo) ListBelowMinimum(ctx context.Context, locationID string) ([]*entity.StockLine, error) {
	query := `SELECT ` + stockColumns + `
		FROM stock_lines
		WHERE location_id = $1 AND minimum_stock IS NOT NULL AND current_stock < minimum_stock
		ORDER BY item_id, variant_id`
	rows, err := r.q.Query(ctx, query, locationID)
	if err != nil {
		return nil, fmt.Errorf("list below minimum: %w", err)
	}
	defer rows.Close()
	var list []*entity.StockLine
	for rows.Next() {
		line, err := scanStockLine(rows)
		if err != nil {
			return nil, fmt.Errorf("scan stock line: %w", err)
		}
		list = append(list, line)
	}
	return list, rows.Err()
}
