package sales_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/retail-stock-api/internal/application/dto"
	"github.com/jhoicas/retail-stock-api/internal/application/ports"
	"github.com/jhoicas/retail-stock-api/internal/application/sales"
	"github.com/jhoicas/retail-stock-api/internal/domain"
	"github.com/jhoicas/retail-stock-api/internal/domain/entity"
	"github.com/jhoicas/retail-stock-api/internal/infrastructure/memory"
	"github.com/jhoicas/retail-stock-api/internal/infrastructure/numbering"
)

type returnFixture struct {
	store   *memory.Store
	returns *sales.ReturnUseCase
	sink    *eventSink
	sale    *dto.SaleResponse
}

// newReturnFixture vende 3 camisas, 2 jeans y una línea libre con stock inicial 5/5.
func newReturnFixture(t *testing.T) *returnFixture {
	t.Helper()
	store := newStore()
	store.PutStock(keyA, 5)
	store.PutStock(keyB, 5)
	seq := numbering.NewSequence()
	applier := newApplier()
	saleUC := sales.NewSaleUseCase(store, applier, seq, nil, nil, nil)
	sale, err := saleUC.CreateSale(context.Background(), cajero, saleRequest(
		dto.SaleLineRequest{ItemID: "camisa", VariantID: "M", Quantity: 3, UnitPrice: d("45000")},
		dto.SaleLineRequest{ItemID: "jean", VariantID: "32", Quantity: 2, UnitPrice: d("90000")},
		dto.SaleLineRequest{AdHoc: true, Description: "ajuste de ruedo", Quantity: 1, UnitPrice: d("7000")},
	))
	require.NoError(t, err)
	sink := &eventSink{}
	return &returnFixture{
		store:   store,
		returns: sales.NewReturnUseCase(store, applier, seq, sink, nil),
		sink:    sink,
		sale:    sale,
	}
}

func TestCreateReturn_TotalDevuelveTodoYReembolsa(t *testing.T) {
	f := newReturnFixture(t)

	resp, err := f.returns.CreateReturn(context.Background(), cajero, dto.CreateReturnRequest{
		SaleID: f.sale.ID, Reason: "talla equivocada", Type: entity.ReturnFull,
	})
	require.NoError(t, err)
	assert.Equal(t, "D-CEN-000001", resp.Number)
	assert.Equal(t, entity.SettlementRefunded, resp.SaleStatus)
	require.Len(t, resp.Lines, 3)
	assert.True(t, d("322000").Equal(resp.TotalRefund))

	assert.Equal(t, int64(5), f.store.StockOf(keyA))
	assert.Equal(t, int64(5), f.store.StockOf(keyB))

	var entradas int
	for _, m := range f.store.Movements() {
		if m.Reference.Type == entity.RefReturn {
			assert.Equal(t, resp.ID, m.Reference.ID)
			assert.Equal(t, entity.DirectionIn, m.Direction)
			entradas++
		}
	}
	assert.Equal(t, 2, entradas, "la línea libre no genera movimiento")

	require.Len(t, f.sink.events, 1)
	assert.Equal(t, ports.EventReturnCreated, f.sink.events[0].Type)

	got, err := f.returns.GetReturn(context.Background(), resp.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.SettlementRefunded, got.SaleStatus)
}

func TestCreateReturn_ParcialMarcaReembolsoParcial(t *testing.T) {
	f := newReturnFixture(t)

	resp, err := f.returns.CreateReturn(context.Background(), cajero, dto.CreateReturnRequest{
		SaleID: f.sale.ID, Reason: "defecto", Type: entity.ReturnPartial,
		Lines: []dto.ReturnLineRequest{{SaleLineID: f.sale.Lines[0].ID, Quantity: 1}},
	})
	require.NoError(t, err)
	assert.Equal(t, entity.SettlementPartialRefund, resp.SaleStatus)
	assert.True(t, d("45000").Equal(resp.TotalRefund))
	assert.Equal(t, int64(3), f.store.StockOf(keyA))
	assert.Equal(t, int64(3), f.store.StockOf(keyB))
}

func TestCreateReturn_NoSuperaLoVendidoAcumulado(t *testing.T) {
	f := newReturnFixture(t)
	camisa := f.sale.Lines[0].ID

	_, err := f.returns.CreateReturn(context.Background(), cajero, dto.CreateReturnRequest{
		SaleID: f.sale.ID, Reason: "defecto", Type: entity.ReturnPartial,
		Lines: []dto.ReturnLineRequest{{SaleLineID: camisa, Quantity: 2}},
	})
	require.NoError(t, err)

	_, err = f.returns.CreateReturn(context.Background(), cajero, dto.CreateReturnRequest{
		SaleID: f.sale.ID, Reason: "otra vez", Type: entity.ReturnPartial,
		Lines: []dto.ReturnLineRequest{{SaleLineID: camisa, Quantity: 2}},
	})
	assert.ErrorIs(t, err, domain.ErrReturnExceedsSold)
	assert.Equal(t, int64(4), f.store.StockOf(keyA))

	_, returnsCount, _ := f.store.Counts()
	assert.Equal(t, 1, returnsCount)
}

func TestCreateReturn_TotalTrasParcialTomaSoloLoPendiente(t *testing.T) {
	f := newReturnFixture(t)

	_, err := f.returns.CreateReturn(context.Background(), cajero, dto.CreateReturnRequest{
		SaleID: f.sale.ID, Reason: "defecto", Type: entity.ReturnPartial,
		Lines: []dto.ReturnLineRequest{{SaleLineID: f.sale.Lines[0].ID, Quantity: 2}},
	})
	require.NoError(t, err)

	resp, err := f.returns.CreateReturn(context.Background(), cajero, dto.CreateReturnRequest{
		SaleID: f.sale.ID, Reason: "cliente desiste", Type: entity.ReturnFull,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), resp.Lines[0].Quantity)
	assert.Equal(t, int64(5), f.store.StockOf(keyA))

	_, err = f.returns.CreateReturn(context.Background(), cajero, dto.CreateReturnRequest{
		SaleID: f.sale.ID, Reason: "de nuevo", Type: entity.ReturnFull,
	})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestCreateReturn_Rechazos(t *testing.T) {
	f := newReturnFixture(t)

	cases := []struct {
		name string
		in   dto.CreateReturnRequest
		want error
	}{
		{"sin motivo", dto.CreateReturnRequest{SaleID: f.sale.ID, Type: entity.ReturnFull}, domain.ErrInvalidInput},
		{"tipo desconocido", dto.CreateReturnRequest{SaleID: f.sale.ID, Reason: "x", Type: "exchange"}, domain.ErrInvalidInput},
		{"parcial sin líneas", dto.CreateReturnRequest{SaleID: f.sale.ID, Reason: "x", Type: entity.ReturnPartial}, domain.ErrInvalidInput},
		{"cantidad cero", dto.CreateReturnRequest{SaleID: f.sale.ID, Reason: "x", Type: entity.ReturnPartial,
			Lines: []dto.ReturnLineRequest{{SaleLineID: f.sale.Lines[0].ID}}}, domain.ErrInvalidQuantity},
		{"línea ajena", dto.CreateReturnRequest{SaleID: f.sale.ID, Reason: "x", Type: entity.ReturnPartial,
			Lines: []dto.ReturnLineRequest{{SaleLineID: "otra", Quantity: 1}}}, domain.ErrInvalidInput},
		{"venta inexistente", dto.CreateReturnRequest{SaleID: "nada", Reason: "x", Type: entity.ReturnFull}, domain.ErrNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.returns.CreateReturn(context.Background(), cajero, tc.in)
			assert.ErrorIs(t, err, tc.want)
		})
	}
	_, returnsCount, _ := f.store.Counts()
	assert.Zero(t, returnsCount)
}

func TestCreateReturn_FalloEnSegundaLineaRevierteTodo(t *testing.T) {
	f := newReturnFixture(t)
	movs := len(f.store.Movements())
	runner := &failingRunner{inner: f.store, failAt: 2}
	uc := sales.NewReturnUseCase(runner, newApplier(), numbering.NewSequence(), f.sink, nil)

	_, err := uc.CreateReturn(context.Background(), cajero, dto.CreateReturnRequest{
		SaleID: f.sale.ID, Reason: "cliente desiste", Type: entity.ReturnFull,
	})
	require.ErrorIs(t, err, errMovement)

	assert.Equal(t, int64(2), f.store.StockOf(keyA), "la primera entrada se revierte")
	assert.Equal(t, int64(3), f.store.StockOf(keyB))
	assert.Len(t, f.store.Movements(), movs)
	_, returns, _ := f.store.Counts()
	assert.Zero(t, returns)
	assert.Empty(t, f.sink.events)

	got, err := sales.NewSaleUseCase(f.store, newApplier(), numbering.NewSequence(), nil, nil, nil).GetSale(context.Background(), f.sale.ID)
	require.NoError(t, err)
	assert.Equal(t, f.sale.Status, got.Status)
}

func TestCreateReturn_LineasConservanOrden(t *testing.T) {
	f := newReturnFixture(t)

	resp, err := f.returns.CreateReturn(context.Background(), cajero, dto.CreateReturnRequest{
		SaleID: f.sale.ID, Reason: "cambio", Type: entity.ReturnPartial,
		Lines: []dto.ReturnLineRequest{
			{SaleLineID: f.sale.Lines[1].ID, Quantity: 1},
			{SaleLineID: f.sale.Lines[0].ID, Quantity: 1},
		},
	})
	require.NoError(t, err)

	got, err := f.returns.GetReturn(context.Background(), resp.ID)
	require.NoError(t, err)
	require.Len(t, got.Lines, 2)
	assert.Equal(t, 1, got.Lines[0].Position)
	assert.Equal(t, f.sale.Lines[1].ID, got.Lines[0].SaleLineID)
	assert.Equal(t, 2, got.Lines[1].Position)
	assert.Equal(t, f.sale.Lines[0].ID, got.Lines[1].SaleLineID)
}
