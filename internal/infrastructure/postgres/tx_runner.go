package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/retail-stock-api/internal/application/inventory"
)

var _ inventory.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run inicia una transacción READ COMMITTED, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
// Las filas de stock se serializan con SELECT ... FOR UPDATE dentro de los repositorios.
func (r *TxRunner) Run(ctx context.Context, fn func(tx inventory.TxRepos) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(Repos(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Repos construye todos los repositorios sobre el mismo Querier (pool o tx).
func Repos(q Querier) inventory.TxRepos {
	return inventory.TxRepos{
		Stock:     NewStockRepository(q),
		Movements: NewMovementRepository(q),
		Boxes:     NewWarehouseBoxRepository(q),
		Locations: NewLocationRepository(q),
		Sales:     NewSaleRepository(q),
		Returns:   NewReturnRepository(q),
		Transfers: NewTransferRepository(q),
	}
}
