package sales_test

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/retail-stock-api/internal/application/inventory"
	"github.com/jhoicas/retail-stock-api/internal/application/ports"
	"github.com/jhoicas/retail-stock-api/internal/domain"
	"github.com/jhoicas/retail-stock-api/internal/domain/entity"
	"github.com/jhoicas/retail-stock-api/internal/domain/repository"
	"github.com/jhoicas/retail-stock-api/internal/infrastructure/memory"
)

var (
	cajero = domain.Actor{UserID: "u-cajero", LocationID: "L1", Role: domain.RoleCashier}
	keyA   = entity.StockKey{LocationID: "L1", ItemID: "camisa", VariantID: "M"}
	keyB   = entity.StockKey{LocationID: "L1", ItemID: "jean", VariantID: "32"}
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newStore() *memory.Store {
	s := memory.NewStore()
	s.AddLocation(entity.Location{ID: "L1", Code: "cen", Name: "Tienda Centro", Kind: entity.LocationKindStore})
	return s
}

func newApplier() *inventory.MovementApplier {
	return inventory.NewMovementApplier(inventory.NewStockLedger(nil, nil))
}

// eventSink guarda los eventos publicados; si err no es nil lo devuelve en cada Publish.
type eventSink struct {
	events []ports.Event
	err    error
}

func (s *eventSink) Publish(_ context.Context, evt ports.Event) error {
	s.events = append(s.events, evt)
	return s.err
}

var errMovement = errors.New("fallo al registrar movimiento")

// failingRunner envuelve el store y hace fallar el n-ésimo movimiento de cada transacción.
type failingRunner struct {
	inner  *memory.Store
	failAt int
}

func (r *failingRunner) Run(ctx context.Context, fn func(tx inventory.TxRepos) error) error {
	count := 0
	return r.inner.Run(ctx, func(tx inventory.TxRepos) error {
		tx.Movements = &failingMovements{MovementRepository: tx.Movements, failAt: r.failAt, count: &count}
		return fn(tx)
	})
}

type failingMovements struct {
	repository.MovementRepository
	failAt int
	count  *int
}

func (m *failingMovements) Create(ctx context.Context, mov *entity.Movement) error {
	*m.count++
	if *m.count == m.failAt {
		return errMovement
	}
	return m.MovementRepository.Create(ctx, mov)
}

// txTracker marca cuándo hay una transacción abierta sobre el store.
type txTracker struct {
	inner *memory.Store
	open  bool
}

func (r *txTracker) Run(ctx context.Context, fn func(tx inventory.TxRepos) error) error {
	return r.inner.Run(ctx, func(tx inventory.TxRepos) error {
		r.open = true
		defer func() { r.open = false }()
		return fn(tx)
	})
}

// trackedNumberer registra si algún consecutivo se pidió con la transacción abierta.
type trackedNumberer struct {
	ports.DocumentNumberer
	tracker  *txTracker
	calls    int
	insideTx int
}

func (n *trackedNumberer) Next(ctx context.Context, kind, locationCode string) (string, error) {
	n.calls++
	if n.tracker.open {
		n.insideTx++
	}
	return n.DocumentNumberer.Next(ctx, kind, locationCode)
}
