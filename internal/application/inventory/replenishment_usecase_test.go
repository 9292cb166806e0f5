package inventory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/retail-stock-api/internal/application/inventory"
	"github.com/jhoicas/retail-stock-api/internal/domain"
	"github.com/jhoicas/retail-stock-api/internal/domain/entity"
	"github.com/jhoicas/retail-stock-api/internal/infrastructure/memory"
)

func TestGenerateReplenishmentList_OrdenaPorFaltante(t *testing.T) {
	store := memory.NewStore()
	poco := entity.StockKey{LocationID: "L1", ItemID: "media", VariantID: "u"}
	mucho := entity.StockKey{LocationID: "L1", ItemID: "pantalon", VariantID: "32"}
	ok := entity.StockKey{LocationID: "L1", ItemID: "gorra", VariantID: "u"}
	otraSede := entity.StockKey{LocationID: "L2", ItemID: "media", VariantID: "u"}

	store.PutStock(poco, 4)
	store.SetMinimum(poco, 5)
	store.PutStock(mucho, 1)
	store.SetMinimum(mucho, 10)
	store.PutStock(ok, 8)
	store.SetMinimum(ok, 3)
	store.PutStock(otraSede, 0)
	store.SetMinimum(otraSede, 50)

	uc := inventory.NewReplenishmentUseCase(store)
	list, err := uc.GenerateReplenishmentList(context.Background(), "L1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "pantalon", list[0].ItemID)
	assert.Equal(t, int64(9), list[0].Shortfall)
	assert.Equal(t, "media", list[1].ItemID)
	assert.Equal(t, int64(1), list[1].Shortfall)
}

func TestGenerateReplenishmentList_SedeVacia(t *testing.T) {
	uc := inventory.NewReplenishmentUseCase(memory.NewStore())

	list, err := uc.GenerateReplenishmentList(context.Background(), "L9")
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = uc.GenerateReplenishmentList(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
