package transfer_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/retail-stock-api/internal/application/dto"
	"github.com/jhoicas/retail-stock-api/internal/application/inventory"
	"github.com/jhoicas/retail-stock-api/internal/application/ports"
	"github.com/jhoicas/retail-stock-api/internal/application/transfer"
	"github.com/jhoicas/retail-stock-api/internal/domain"
	"github.com/jhoicas/retail-stock-api/internal/domain/entity"
	"github.com/jhoicas/retail-stock-api/internal/domain/repository"
	"github.com/jhoicas/retail-stock-api/internal/infrastructure/memory"
	"github.com/jhoicas/retail-stock-api/internal/infrastructure/numbering"
)

var (
	bodeguero = domain.Actor{UserID: "u-bodega", LocationID: "BOD", Role: domain.RoleWarehouse}
	bodKey    = entity.StockKey{LocationID: "BOD", ItemID: "camisa", VariantID: "M"}
	l1Key     = entity.StockKey{LocationID: "L1", ItemID: "camisa", VariantID: "M"}
	l2Key     = entity.StockKey{LocationID: "L2", ItemID: "camisa", VariantID: "M"}
)

type eventSink struct{ events []ports.Event }

func (s *eventSink) Publish(_ context.Context, evt ports.Event) error {
	s.events = append(s.events, evt)
	return nil
}

func newStore() *memory.Store {
	s := memory.NewStore()
	s.AddLocation(entity.Location{ID: "BOD", Code: "bod", Name: "Bodega Central", Kind: entity.LocationKindWarehouse})
	s.AddLocation(entity.Location{ID: "L1", Code: "cen", Name: "Tienda Centro", Kind: entity.LocationKindStore})
	s.AddLocation(entity.Location{ID: "L2", Code: "nor", Name: "Tienda Norte", Kind: entity.LocationKindStore})
	s.AddBox(entity.WarehouseBox{ID: "box-1", LocationID: "BOD", ItemID: "camisa", VariantID: "M", Label: "C-01", Quantity: 10})
	return s
}

func newUseCase(store *memory.Store, sink *eventSink) *transfer.TransferUseCase {
	applier := inventory.NewMovementApplier(inventory.NewStockLedger(nil, nil))
	var events ports.EventPublisher
	if sink != nil {
		events = sink
	}
	return transfer.NewTransferUseCase(store, applier, numbering.NewSequence(), events, nil, "BOD")
}

func boxTransfer(qty int64) dto.CreateTransferRequest {
	return dto.CreateTransferRequest{
		SourceLocationID:      "BOD",
		DestinationLocationID: "L2",
		Lines:                 []dto.TransferLineRequest{{ItemID: "camisa", VariantID: "M", Quantity: qty, BoxID: "box-1"}},
	}
}

func TestCreateTransfer_DesdeCajaYReversa(t *testing.T) {
	store := newStore()
	sink := &eventSink{}
	uc := newUseCase(store, sink)

	created, err := uc.CreateTransfer(context.Background(), bodeguero, boxTransfer(4))
	require.NoError(t, err)
	assert.Equal(t, "T-BOD-000001", created.Number)
	assert.Equal(t, entity.TransferCompleted, created.Status)
	assert.Equal(t, int64(6), store.BoxQuantity("box-1"))
	assert.Equal(t, int64(0), store.StockOf(bodKey), "la caja no toca la línea de la bodega")
	assert.Equal(t, int64(4), store.StockOf(l2Key))

	reversed, err := uc.ReverseTransfer(context.Background(), bodeguero, created.ID, dto.ReverseTransferRequest{Reason: "error de destino"})
	require.NoError(t, err)
	assert.Equal(t, entity.TransferCancelled, reversed.Status)
	assert.Equal(t, "error de destino", reversed.CancelReason)
	assert.Equal(t, int64(10), store.BoxQuantity("box-1"))
	assert.Equal(t, int64(0), store.StockOf(l2Key))

	var reversas int
	for _, m := range store.Movements() {
		if m.Reference.Type == entity.RefTransferReversal {
			assert.Equal(t, created.ID, m.Reference.ID)
			reversas++
		}
	}
	assert.Equal(t, 2, reversas)

	require.Len(t, sink.events, 2)
	assert.Equal(t, ports.EventTransferCompleted, sink.events[0].Type)
	assert.Equal(t, ports.EventTransferReversed, sink.events[1].Type)
}

func TestReverseTransfer_SegundaReversaRechazada(t *testing.T) {
	store := newStore()
	uc := newUseCase(store, nil)

	created, err := uc.CreateTransfer(context.Background(), bodeguero, boxTransfer(4))
	require.NoError(t, err)
	_, err = uc.ReverseTransfer(context.Background(), bodeguero, created.ID, dto.ReverseTransferRequest{Reason: "x"})
	require.NoError(t, err)
	movs := len(store.Movements())

	_, err = uc.ReverseTransfer(context.Background(), bodeguero, created.ID, dto.ReverseTransferRequest{Reason: "x"})
	assert.ErrorIs(t, err, domain.ErrShipmentCancelled)
	assert.Equal(t, int64(10), store.BoxQuantity("box-1"))
	assert.Len(t, store.Movements(), movs)
}

func TestReverseTransfer_DestinoYaVendioRecortaEnCero(t *testing.T) {
	store := newStore()
	uc := newUseCase(store, nil)

	created, err := uc.CreateTransfer(context.Background(), bodeguero, boxTransfer(4))
	require.NoError(t, err)
	// El destino vendió 3 de las 4 unidades antes de la anulación.
	store.PutStock(l2Key, 1)

	_, err = uc.ReverseTransfer(context.Background(), bodeguero, created.ID, dto.ReverseTransferRequest{Reason: "x"})
	require.NoError(t, err)
	assert.Equal(t, int64(0), store.StockOf(l2Key))
	assert.Equal(t, int64(10), store.BoxQuantity("box-1"))

	var clamped bool
	for _, m := range store.Movements() {
		if m.Reference.Type == entity.RefTransferReversal && m.LocationID == "L2" {
			clamped = m.Clamped
		}
	}
	assert.True(t, clamped)
}

func TestReverseTransfer_SedeBorradaEsInconsistencia(t *testing.T) {
	store := newStore()
	uc := newUseCase(store, nil)

	created, err := uc.CreateTransfer(context.Background(), bodeguero, boxTransfer(4))
	require.NoError(t, err)
	store.RemoveLocation("L2")

	_, err = uc.ReverseTransfer(context.Background(), bodeguero, created.ID, dto.ReverseTransferRequest{Reason: "x"})
	assert.ErrorIs(t, err, domain.ErrConsistency)
	assert.Equal(t, int64(6), store.BoxQuantity("box-1"))

	got, err := uc.GetTransfer(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.TransferCompleted, got.Status)
}

func TestCreateTransfer_EntreTiendasEsEstricto(t *testing.T) {
	store := newStore()
	store.PutStock(l1Key, 2)
	uc := newUseCase(store, nil)
	tienda := domain.Actor{UserID: "u1", LocationID: "L1", Role: domain.RoleManager}

	_, err := uc.CreateTransfer(context.Background(), tienda, dto.CreateTransferRequest{
		SourceLocationID: "L1", DestinationLocationID: "L2",
		Lines: []dto.TransferLineRequest{{ItemID: "camisa", VariantID: "M", Quantity: 3}},
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, int64(2), store.StockOf(l1Key))
	_, _, transfers := store.Counts()
	assert.Zero(t, transfers)

	created, err := uc.CreateTransfer(context.Background(), tienda, dto.CreateTransferRequest{
		SourceLocationID: "L1", DestinationLocationID: "L2",
		Lines: []dto.TransferLineRequest{{ItemID: "camisa", VariantID: "M", Quantity: 2}},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(0), store.StockOf(l1Key))
	assert.Equal(t, int64(2), store.StockOf(l2Key))

	_, err = uc.ReverseTransfer(context.Background(), tienda, created.ID, dto.ReverseTransferRequest{Reason: "x"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), store.StockOf(l1Key))
	assert.Equal(t, int64(0), store.StockOf(l2Key))
}

func TestCreateTransfer_Rechazos(t *testing.T) {
	store := newStore()
	store.PutStock(l1Key, 5)
	uc := newUseCase(store, nil)

	cases := []struct {
		name string
		in   dto.CreateTransferRequest
		want error
	}{
		{"misma sede", dto.CreateTransferRequest{SourceLocationID: "L1", DestinationLocationID: "L1",
			Lines: []dto.TransferLineRequest{{ItemID: "camisa", Quantity: 1}}}, domain.ErrSameLocation},
		{"sin líneas", dto.CreateTransferRequest{SourceLocationID: "L1", DestinationLocationID: "L2"}, domain.ErrInvalidInput},
		{"cantidad cero", dto.CreateTransferRequest{SourceLocationID: "L1", DestinationLocationID: "L2",
			Lines: []dto.TransferLineRequest{{ItemID: "camisa"}}}, domain.ErrInvalidQuantity},
		{"destino inexistente", dto.CreateTransferRequest{SourceLocationID: "L1", DestinationLocationID: "L9",
			Lines: []dto.TransferLineRequest{{ItemID: "camisa", VariantID: "M", Quantity: 1}}}, domain.ErrNotFound},
		{"caja desde una tienda", dto.CreateTransferRequest{SourceLocationID: "L1", DestinationLocationID: "L2",
			Lines: []dto.TransferLineRequest{{ItemID: "camisa", VariantID: "M", Quantity: 1, BoxID: "box-1"}}}, domain.ErrInvalidInput},
		{"caja sin cantidad suficiente", boxTransfer(11), domain.ErrInsufficientStock},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := uc.CreateTransfer(context.Background(), bodeguero, tc.in)
			assert.ErrorIs(t, err, tc.want)
		})
	}
	_, _, transfers := store.Counts()
	assert.Zero(t, transfers)
	assert.Equal(t, int64(10), store.BoxQuantity("box-1"))
	assert.Equal(t, int64(5), store.StockOf(l1Key))
}

func TestDespachoYRecepcion(t *testing.T) {
	store := newStore()
	uc := newUseCase(store, nil)
	in := boxTransfer(3)
	in.DispatchOnly = true

	created, err := uc.CreateTransfer(context.Background(), bodeguero, in)
	require.NoError(t, err)
	assert.Equal(t, entity.TransferPending, created.Status)
	assert.Equal(t, int64(7), store.BoxQuantity("box-1"))
	assert.Equal(t, int64(0), store.StockOf(l2Key))

	tienda := domain.Actor{UserID: "u2", LocationID: "L2", Role: domain.RoleManager}
	received, err := uc.ReceiveTransfer(context.Background(), tienda, created.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.TransferCompleted, received.Status)
	assert.Equal(t, int64(3), store.StockOf(l2Key))

	_, err = uc.ReceiveTransfer(context.Background(), tienda, created.ID)
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestReversaDeTrasladoPendienteNoTocaElDestino(t *testing.T) {
	store := newStore()
	store.PutStock(l2Key, 5)
	uc := newUseCase(store, nil)
	in := boxTransfer(3)
	in.DispatchOnly = true

	created, err := uc.CreateTransfer(context.Background(), bodeguero, in)
	require.NoError(t, err)
	_, err = uc.ReverseTransfer(context.Background(), bodeguero, created.ID, dto.ReverseTransferRequest{Reason: "no salió"})
	require.NoError(t, err)
	assert.Equal(t, int64(10), store.BoxQuantity("box-1"))
	assert.Equal(t, int64(5), store.StockOf(l2Key))

	_, err = uc.ReceiveTransfer(context.Background(), bodeguero, created.ID)
	assert.ErrorIs(t, err, domain.ErrShipmentCancelled)
}

var errMovement = errors.New("fallo al registrar movimiento")

// failingRunner hace fallar el n-ésimo movimiento de cada transacción.
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

// mixedTransfer despacha 4 desde box-1 y 2 desde la línea de la bodega hacia L2.
func mixedTransfer() dto.CreateTransferRequest {
	return dto.CreateTransferRequest{
		SourceLocationID:      "BOD",
		DestinationLocationID: "L2",
		Lines: []dto.TransferLineRequest{
			{ItemID: "camisa", VariantID: "M", Quantity: 4, BoxID: "box-1"},
			{ItemID: "camisa", VariantID: "M", Quantity: 2},
		},
	}
}

func signedSum(items []dto.MovementResponse) int64 {
	var sum int64
	for _, m := range items {
		if m.Direction == entity.DirectionOut {
			sum -= m.StockBefore - m.StockAfter
		} else {
			sum += m.StockAfter - m.StockBefore
		}
	}
	return sum
}

func TestCreateTransfer_CajaNoEntraAlKardexDeLaLinea(t *testing.T) {
	store := newStore()
	uc := newUseCase(store, nil)
	query := inventory.NewStockQueryUseCase(store)
	ctx := context.Background()

	created, err := uc.CreateTransfer(ctx, bodeguero, boxTransfer(4))
	require.NoError(t, err)

	line, err := query.ListMovements(ctx, bodKey, dto.PageRequest{})
	require.NoError(t, err)
	assert.Empty(t, line.Items)
	assert.Equal(t, store.StockOf(bodKey), signedSum(line.Items))

	box, err := query.ListBoxMovements(ctx, "box-1", dto.PageRequest{})
	require.NoError(t, err)
	require.Len(t, box.Items, 1)
	assert.Equal(t, "box-1", box.Items[0].BoxID)
	assert.Equal(t, int64(10), box.Items[0].StockBefore)
	assert.Equal(t, int64(6), box.Items[0].StockAfter)

	dest, err := query.ListMovements(ctx, l2Key, dto.PageRequest{})
	require.NoError(t, err)
	assert.Equal(t, store.StockOf(l2Key), signedSum(dest.Items))

	_, err = uc.ReverseTransfer(ctx, bodeguero, created.ID, dto.ReverseTransferRequest{Reason: "x"})
	require.NoError(t, err)

	box, err = query.ListBoxMovements(ctx, "box-1", dto.PageRequest{})
	require.NoError(t, err)
	require.Len(t, box.Items, 2)
	assert.Equal(t, entity.DirectionIn, box.Items[0].Direction)
	assert.Equal(t, int64(10), box.Items[0].StockAfter)

	line, err = query.ListMovements(ctx, bodKey, dto.PageRequest{})
	require.NoError(t, err)
	assert.Empty(t, line.Items)
	dest, err = query.ListMovements(ctx, l2Key, dto.PageRequest{})
	require.NoError(t, err)
	assert.Equal(t, store.StockOf(l2Key), signedSum(dest.Items))

	_, err = query.ListBoxMovements(ctx, "", dto.PageRequest{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestGetTransfer_LineasEnOrdenYMovimientos(t *testing.T) {
	store := newStore()
	store.PutStock(bodKey, 5)
	uc := newUseCase(store, nil)
	ctx := context.Background()

	created, err := uc.CreateTransfer(ctx, bodeguero, mixedTransfer())
	require.NoError(t, err)

	got, err := uc.GetTransfer(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, got.Lines, 2)
	assert.Equal(t, 1, got.Lines[0].Position)
	assert.Equal(t, "box-1", got.Lines[0].BoxID)
	assert.Equal(t, 2, got.Lines[1].Position)
	assert.Empty(t, got.Lines[1].BoxID)
	require.Len(t, got.Movements, 4)
	for _, m := range got.Movements {
		assert.Equal(t, entity.RefTransfer, m.ReferenceType)
	}

	_, err = uc.ReverseTransfer(ctx, bodeguero, created.ID, dto.ReverseTransferRequest{Reason: "x"})
	require.NoError(t, err)
	got, err = uc.GetTransfer(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, got.Movements, 8)
	assert.Equal(t, entity.RefTransferReversal, got.Movements[7].ReferenceType)
}

func TestReverseTransfer_FalloEnUnaLineaRevierteTodo(t *testing.T) {
	store := newStore()
	store.PutStock(bodKey, 5)
	sink := &eventSink{}
	ctx := context.Background()

	created, err := newUseCase(store, nil).CreateTransfer(ctx, bodeguero, mixedTransfer())
	require.NoError(t, err)
	require.Equal(t, int64(6), store.BoxQuantity("box-1"))
	require.Equal(t, int64(3), store.StockOf(bodKey))
	require.Equal(t, int64(6), store.StockOf(l2Key))
	movs := len(store.Movements())

	// Falla la reposición de la segunda línea, después de reponer la caja y descontar el destino.
	applier := inventory.NewMovementApplier(inventory.NewStockLedger(nil, nil))
	failing := transfer.NewTransferUseCase(&failingRunner{inner: store, failAt: 3}, applier, numbering.NewSequence(), sink, nil, "BOD")
	_, err = failing.ReverseTransfer(ctx, bodeguero, created.ID, dto.ReverseTransferRequest{Reason: "x"})
	require.ErrorIs(t, err, errMovement)

	assert.Equal(t, int64(6), store.BoxQuantity("box-1"))
	assert.Equal(t, int64(3), store.StockOf(bodKey))
	assert.Equal(t, int64(6), store.StockOf(l2Key))
	assert.Len(t, store.Movements(), movs)
	assert.Empty(t, sink.events)

	got, err := newUseCase(store, nil).GetTransfer(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.TransferCompleted, got.Status)
	assert.Nil(t, got.CancelledAt)
}
