package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/retail-stock-api/internal/domain/entity"
	"github.com/jhoicas/retail-stock-api/internal/domain/repository"
)

var _ repository.ReturnRepository = (*ReturnRepo)(nil)

// ReturnRepo devoluciones y sus líneas.
type ReturnRepo struct {
	q Querier
}

// NewReturnRepository construye el adaptador de devoluciones.
func NewReturnRepository(q Querier) *ReturnRepo {
	return &ReturnRepo{q: q}
}

// Create inserta la cabecera.
func (r *ReturnRepo) Create(ctx context.Context, ret *entity.Return) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO returns (id, number, sale_id, location_id, user_id, reason, type, total_refund, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		ret.ID, ret.Number, ret.SaleID, ret.LocationID, ret.UserID, ret.Reason, ret.Type, ret.TotalRefund, ret.CreatedAt,
	)
	if err != nil {
		return wrapWriteErr("insert return", err)
	}
	return nil
}

// CreateLine inserta una línea devuelta.
func (r *ReturnRepo) CreateLine(ctx context.Context, l *entity.ReturnLine) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO return_lines (id, return_id, sale_line_id, position, item_id, variant_id, ad_hoc, quantity, unit_price, amount)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		l.ID, l.ReturnID, l.SaleLineID, l.Position, l.ItemID, l.VariantID, l.AdHoc, l.Quantity, l.UnitPrice, l.Amount,
	)
	if err != nil {
		return wrapWriteErr("insert return line", err)
	}
	return nil
}

// GetByID devuelve la devolución o nil.
func (r *ReturnRepo) GetByID(ctx context.Context, id string) (*entity.Return, error) {
	var ret entity.Return
	err := r.q.QueryRow(ctx, `
		SELECT id, number, sale_id, location_id, user_id, reason, type, total_refund, created_at
		FROM returns WHERE id = $1`, id,
	).Scan(&ret.ID, &ret.Number, &ret.SaleID, &ret.LocationID, &ret.UserID, &ret.Reason, &ret.Type, &ret.TotalRefund, &ret.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get return: %w", err)
	}
	return &ret, nil
}

// GetLines devuelve las líneas de la devolución.
func (r *ReturnRepo) GetLines(ctx context.Context, returnID string) ([]*entity.ReturnLine, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, return_id, sale_line_id, position, item_id, variant_id, ad_hoc, quantity, unit_price, amount
		FROM return_lines WHERE return_id = $1 ORDER BY position, id`, returnID)
	if err != nil {
		return nil, fmt.Errorf("list return lines: %w", err)
	}
	defer rows.Close()
	var list []*entity.ReturnLine
	for rows.Next() {
		var l entity.ReturnLine
		if err := rows.Scan(&l.ID, &l.ReturnID, &l.SaleLineID, &l.Position, &l.ItemID, &l.VariantID, &l.AdHoc, &l.Quantity, &l.UnitPrice, &l.Amount); err != nil {
			return nil, fmt.Errorf("scan return line: %w", err)
		}
		list = append(list, &l)
	}
	return list, rows.Err()
}

// ReturnedQuantities suma lo devuelto por línea de venta.
func (r *ReturnRepo) ReturnedQuantities(ctx context.Context, saleID string) (map[string]int64, error) {
	rows, err := r.q.Query(ctx, `
		SELECT rl.sale_line_id, COALESCE(SUM(rl.quantity), 0)
		FROM return_lines rl
		JOIN returns r ON r.id = rl.return_id
		WHERE r.sale_id = $1
		GROUP BY rl.sale_line_id`, saleID)
	if err != nil {
		return nil, fmt.Errorf("returned quantities: %w", err)
	}
	defer rows.Close()
	out := make(map[string]int64)
	for rows.Next() {
		var id string
		var qty int64
		if err := rows.Scan(&id, &qty); err != nil {
			return nil, fmt.Errorf("scan returned quantity: %w", err)
		}
		out[id] = qty
	}
	return out, rows.Err()
}
