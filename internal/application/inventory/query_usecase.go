package inventory

import (
	"context"

	"github.com/jhoicas/retail-stock-api/internal/application/dto"
	"github.com/jhoicas/retail-stock-api/internal/domain"
	"github.com/jhoicas/retail-stock-api/internal/domain/entity"
)

// StockQueryUseCase lecturas del ledger y del kardex.
type StockQueryUseCase struct {
	txRunner TxRunner
}

// NewStockQueryUseCase construye el caso de uso de consulta.
func NewStockQueryUseCase(txRunner TxRunner) *StockQueryUseCase {
	return &StockQueryUseCase{txRunner: txRunner}
}

// GetStockLine devuelve la línea; si nunca tuvo movimientos responde en cero sin crearla.
func (uc *StockQueryUseCase) GetStockLine(ctx context.Context, key entity.StockKey) (*dto.StockLineResponse, error) {
	if key.LocationID == "" || key.ItemID == "" {
		return nil, domain.ErrInvalidInput
	}
	var line *entity.StockLine
	err := uc.txRunner.Run(ctx, func(tx TxRepos) error {
		var err error
		line, err = tx.Stock.Get(ctx, key)
		return err
	})
	if err != nil {
		return nil, err
	}
	if line == nil {
		line = &entity.StockLine{StockKey: key}
	}
	return ToStockLineResponse(line), nil
}

// ListMovements devuelve el kardex de una línea, más reciente primero.
func (uc *StockQueryUseCase) ListMovements(ctx context.Context, key entity.StockKey, page dto.PageRequest) (*dto.MovementPage, error) {
	if key.LocationID == "" || key.ItemID == "" {
		return nil, domain.ErrInvalidInput
	}
	page.DefaultPage()
	var list []*entity.Movement
	err := uc.txRunner.Run(ctx, func(tx TxRepos) error {
		var err error
		list, err = tx.Movements.ListByStockKey(ctx, key, page.Limit, page.Offset)
		return err
	})
	if err != nil {
		return nil, err
	}
	items := make([]dto.MovementResponse, 0, len(list))
	for _, m := range list {
		items = append(items, ToMovementResponse(m))
	}
	return &dto.MovementPage{Items: items, Page: dto.PageResponse{Limit: page.Limit, Offset: page.Offset}}, nil
}

// ListBoxMovements devuelve los movimientos del pool de una caja, más reciente primero.
func (uc *StockQueryUseCase) ListBoxMovements(ctx context.Context, boxID string, page dto.PageRequest) (*dto.MovementPage, error) {
	if boxID == "" {
		return nil, domain.ErrInvalidInput
	}
	page.DefaultPage()
	var list []*entity.Movement
	err := uc.txRunner.Run(ctx, func(tx TxRepos) error {
		var err error
		list, err = tx.Movements.ListByBox(ctx, boxID, page.Limit, page.Offset)
		return err
	})
	if err != nil {
		return nil, err
	}
	items := make([]dto.MovementResponse, 0, len(list))
	for _, m := range list {
		items = append(items, ToMovementResponse(m))
	}
	return &dto.MovementPage{Items: items, Page: dto.PageResponse{Limit: page.Limit, Offset: page.Offset}}, nil
}

// ToStockLineResponse mapea la entidad al DTO.
func ToStockLineResponse(l *entity.StockLine) *dto.StockLineResponse {
	return &dto.StockLineResponse{
		LocationID:   l.LocationID,
		ItemID:       l.ItemID,
		VariantID:    l.VariantID,
		CurrentStock: l.CurrentStock,
		MinimumStock: l.MinimumStock,
		CostPrice:    l.CostPrice,
		SellingPrice: l.SellingPrice,
		BelowMinimum: l.BelowMinimum(),
		UpdatedAt:    l.UpdatedAt,
	}
}

// ToMovementResponse mapea un movimiento al DTO.
func ToMovementResponse(m *entity.Movement) dto.MovementResponse {
	r := dto.MovementResponse{
		ID:            m.ID,
		LocationID:    m.LocationID,
		ItemID:        m.ItemID,
		VariantID:     m.VariantID,
		Direction:     m.Direction,
		Quantity:      m.Quantity,
		StockBefore:   m.StockBefore,
		StockAfter:    m.StockAfter,
		Clamped:       m.Clamped,
		ReferenceType: m.Reference.Type,
		ReferenceID:   m.Reference.ID,
		CreatedBy:     m.CreatedBy,
		CreatedAt:     m.CreatedAt,
	}
	if m.BoxID != nil {
		r.BoxID = *m.BoxID
	}
	return r
}

// LocationExists indica si la sede está registrada.
func (uc *StockQueryUseCase) LocationExists(ctx context.Context, locationID string) (bool, error) {
	if locationID == "" {
		return false, nil
	}
	var found bool
	err := uc.txRunner.Run(ctx, func(tx TxRepos) error {
		loc, err := tx.Locations.GetByID(ctx, locationID)
		found = loc != nil
		return err
	})
	return found, err
}
