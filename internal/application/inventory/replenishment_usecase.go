package inventory

import (
	"context"
	"sort"

	"github.com/jhoicas/retail-stock-api/internal/application/dto"
	"github.com/jhoicas/retail-stock-api/internal/domain"
)

// ReplenishmentUseCase lista las líneas de una sede que quedaron bajo su mínimo.
type ReplenishmentUseCase struct {
	txRunner TxRunner
}

// NewReplenishmentUseCase construye el caso de uso de reposición.
func NewReplenishmentUseCase(txRunner TxRunner) *ReplenishmentUseCase {
	return &ReplenishmentUseCase{txRunner: txRunner}
}

// GenerateReplenishmentList devuelve las líneas bajo mínimo ordenadas por mayor faltante.
func (uc *ReplenishmentUseCase) GenerateReplenishmentList(ctx context.Context, locationID string) ([]dto.LowStockResponse, error) {
	if locationID == "" {
		return nil, domain.ErrInvalidInput
	}
	out := []dto.LowStockResponse{}
	err := uc.txRunner.Run(ctx, func(tx TxRepos) error {
		lines, err := tx.Stock.ListBelowMinimum(ctx, locationID)
		if err != nil {
			return err
		}
		for _, l := range lines {
			out = append(out, dto.LowStockResponse{
				LocationID:   l.LocationID,
				ItemID:       l.ItemID,
				VariantID:    l.VariantID,
				CurrentStock: l.CurrentStock,
				MinimumStock: *l.MinimumStock,
				Shortfall:    *l.MinimumStock - l.CurrentStock,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Shortfall > out[j].Shortfall })
	return out, nil
}
