package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/retail-stock-api/internal/domain"
	"github.com/jhoicas/retail-stock-api/internal/domain/entity"
	domaininv "github.com/jhoicas/retail-stock-api/internal/domain/inventory"
)

// ApplyInput entrada del MovementApplier para una línea.
type ApplyInput struct {
	Direction string
	Key       entity.StockKey
	Quantity  int64
	Reference entity.Reference
	UserID    string
	// Strict rechaza una salida mayor que el stock disponible en lugar de recortarla.
	Strict bool
}

// MovementApplier traduce un evento de negocio en operaciones sobre el ledger:
// cada llamada muta exactamente una línea (o una caja) e inserta exactamente un movimiento.
type MovementApplier struct {
	ledger *StockLedger
	now    func() time.Time
}

// NewMovementApplier construye el applier sobre el ledger.
func NewMovementApplier(ledger *StockLedger) *MovementApplier {
	return &MovementApplier{ledger: ledger, now: time.Now}
}

func validateApply(in ApplyInput) error {
	if in.Quantity <= 0 {
		return domain.ErrInvalidQuantity
	}
	if in.Direction != entity.DirectionIn && in.Direction != entity.DirectionOut {
		return domain.ErrInvalidInput
	}
	if in.Reference.Type == "" || in.Reference.ID == "" {
		return domain.ErrInvalidInput
	}
	return nil
}

func signed(direction string, qty int64) int64 {
	if direction == entity.DirectionOut {
		return -qty
	}
	return qty
}

// Apply ajusta la línea de stock y registra el movimiento, ambos en la tx del caller.
func (a *MovementApplier) Apply(ctx context.Context, tx TxRepos, in ApplyInput) (*entity.Movement, error) {
	if err := validateApply(in); err != nil {
		return nil, err
	}
	if in.Strict && in.Direction == entity.DirectionOut {
		line, err := a.ledger.Get(ctx, tx.Stock, in.Key)
		if err != nil {
			return nil, err
		}
		if line.CurrentStock < in.Quantity {
			return nil, fmt.Errorf("%s/%s en %s: %w", in.Key.ItemID, in.Key.VariantID, in.Key.LocationID, domain.ErrInsufficientStock)
		}
	}
	res, err := a.ledger.Adjust(ctx, tx.Stock, in.Key, signed(in.Direction, in.Quantity))
	if err != nil {
		return nil, err
	}
	mov := &entity.Movement{
		ID:          uuid.New().String(),
		StockKey:    in.Key,
		Direction:   in.Direction,
		Quantity:    in.Quantity,
		StockBefore: res.Before,
		StockAfter:  res.After,
		Clamped:     res.Clamped,
		Reference:   in.Reference,
		CreatedBy:   in.UserID,
		CreatedAt:   a.now(),
	}
	if err := tx.Movements.Create(ctx, mov); err != nil {
		return nil, fmt.Errorf("registrar movimiento: %w", err)
	}
	return mov, nil
}

// ApplyBox igual que Apply pero sobre el pool de una caja de bodega.
// Las salidas de caja son estrictas: sin cantidad suficiente devuelve ErrInsufficientStock.
func (a *MovementApplier) ApplyBox(ctx context.Context, tx TxRepos, boxID string, in ApplyInput) (*entity.Movement, error) {
	if err := validateApply(in); err != nil {
		return nil, err
	}
	box, err := tx.Boxes.GetForUpdate(ctx, boxID)
	if err != nil {
		return nil, fmt.Errorf("leer caja: %w", err)
	}
	if box == nil {
		return nil, fmt.Errorf("caja %s: %w", boxID, domain.ErrNotFound)
	}
	if in.Key.LocationID != "" && box.LocationID != in.Key.LocationID {
		return nil, fmt.Errorf("caja %s no pertenece a la sede %s: %w", boxID, in.Key.LocationID, domain.ErrInvalidInput)
	}
	if box.ItemID != in.Key.ItemID || box.VariantID != in.Key.VariantID {
		return nil, fmt.Errorf("caja %s no contiene la variante: %w", boxID, domain.ErrInvalidInput)
	}
	if in.Direction == entity.DirectionOut && box.Quantity < in.Quantity {
		return nil, fmt.Errorf("caja %s: %w", boxID, domain.ErrInsufficientStock)
	}
	next, _ := domaininv.ApplyDelta(box.Quantity, signed(in.Direction, in.Quantity))
	if err := tx.Boxes.SetQuantity(ctx, boxID, next); err != nil {
		return nil, fmt.Errorf("actualizar caja: %w", err)
	}
	id := box.ID
	mov := &entity.Movement{
		ID:          uuid.New().String(),
		StockKey:    entity.StockKey{LocationID: box.LocationID, ItemID: box.ItemID, VariantID: box.VariantID},
		BoxID:       &id,
		Direction:   in.Direction,
		Quantity:    in.Quantity,
		StockBefore: box.Quantity,
		StockAfter:  next,
		Reference:   in.Reference,
		CreatedBy:   in.UserID,
		CreatedAt:   a.now(),
	}
	if err := tx.Movements.Create(ctx, mov); err != nil {
		return nil, fmt.Errorf("registrar movimiento de caja: %w", err)
	}
	return mov, nil
}
