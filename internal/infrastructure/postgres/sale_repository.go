package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/retail-stock-api/internal/domain/entity"
	"github.com/jhoicas/retail-stock-api/internal/domain/repository"
)

var _ repository.SaleRepository = (*SaleRepo)(nil)

// SaleRepo ventas y líneas de venta.
type SaleRepo struct {
	q Querier
}

// NewSaleRepository construye el adaptador de ventas.
func NewSaleRepository(q Querier) *SaleRepo {
	return &SaleRepo{q: q}
}

const saleColumns = `id, number, location_id, user_id, customer_name, customer_phone,
	subtotal, tax, discount, total, cash_tendered, mobile_tendered, credit_amount, change_due,
	payment_method, status, created_at, updated_at`

// Create inserta la cabecera.
func (r *SaleRepo) Create(ctx context.Context, s *entity.Sale) error {
	query := `INSERT INTO sales (` + saleColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`
	_, err := r.q.Exec(ctx, query,
		s.ID, s.Number, s.LocationID, s.UserID, s.CustomerName, s.CustomerPhone,
		s.Subtotal, s.Tax, s.Discount, s.Total, s.CashTendered, s.MobileTendered, s.CreditAmount, s.Change,
		s.PaymentMethod, s.Status, s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		return wrapWriteErr("insert sale", err)
	}
	return nil
}

// CreateLine inserta una línea.
func (r *SaleRepo) CreateLine(ctx context.Context, l *entity.SaleLine) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO sale_lines (id, sale_id, position, item_id, variant_id, description,
			quantity, unit_price, discount, line_total, ad_hoc)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		l.ID, l.SaleID, l.Position, l.ItemID, l.VariantID, l.Description,
		l.Quantity, l.UnitPrice, l.Discount, l.LineTotal, l.AdHoc,
	)
	if err != nil {
		return wrapWriteErr("insert sale line", err)
	}
	return nil
}

func (r *SaleRepo) get(ctx context.Context, id string, forUpdate bool) (*entity.Sale, error) {
	query := `SELECT ` + saleColumns + ` FROM sales WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	var s entity.Sale
	err := r.q.QueryRow(ctx, query, id).Scan(
		&s.ID, &s.Number, &s.LocationID, &s.UserID, &s.CustomerName, &s.CustomerPhone,
		&s.Subtotal, &s.Tax, &s.Discount, &s.Total, &s.CashTendered, &s.MobileTendered, &s.CreditAmount, &s.Change,
		&s.PaymentMethod, &s.Status, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get sale: %w", err)
	}
	return &s, nil
}

// GetByID devuelve la venta o nil.
func (r *SaleRepo) GetByID(ctx context.Context, id string) (*entity.Sale, error) {
	return r.get(ctx, id, false)
}

// GetForUpdate bloquea la cabecera de la venta.
func (r *SaleRepo) GetForUpdate(ctx context.Context, id string) (*entity.Sale, error) {
	return r.get(ctx, id, true)
}

// GetLines devuelve las líneas en orden.
func (r *SaleRepo) GetLines(ctx context.Context, saleID string) ([]*entity.SaleLine, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, sale_id, position, item_id, variant_id, description,
			quantity, unit_price, discount, line_total, ad_hoc
		FROM sale_lines WHERE sale_id = $1 ORDER BY position`, saleID)
	if err != nil {
		return nil, fmt.Errorf("list sale lines: %w", err)
	}
	defer rows.Close()
	var list []*entity.SaleLine
	for rows.Next() {
		var l entity.SaleLine
		if err := rows.Scan(
			&l.ID, &l.SaleID, &l.Position, &l.ItemID, &l.VariantID, &l.Description,
			&l.Quantity, &l.UnitPrice, &l.Discount, &l.LineTotal, &l.AdHoc,
		); err != nil {
			return nil, fmt.Errorf("scan sale line: %w", err)
		}
		list = append(list, &l)
	}
	return list, rows.Err()
}

// UpdateStatus cambia el estado de liquidación.
func (r *SaleRepo) UpdateStatus(ctx context.Context, id, status string) error {
	tag, err := r.q.Exec(ctx, `UPDATE sales SET status = $2, updated_at = now() WHERE id = $1`, id, status)
	if err != nil {
		return wrapWriteErr("update sale status", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update sale status: venta %s inexistente", id)
	}
	return nil
}
