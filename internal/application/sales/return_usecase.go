package sales

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"

	"github.com/jhoicas/retail-stock-api/internal/application/dto"
	"github.com/jhoicas/retail-stock-api/internal/application/inventory"
	"github.com/jhoicas/retail-stock-api/internal/application/ports"
	"github.com/jhoicas/retail-stock-api/internal/domain"
	"github.com/jhoicas/retail-stock-api/internal/domain/entity"
	"github.com/jhoicas/retail-stock-api/pkg/logger"
)

// ReturnUseCase registra devoluciones sobre una venta: documento, entradas de stock
// y el nuevo estado de liquidación de la venta, todo en una transacción.
type ReturnUseCase struct {
	txRunner inventory.TxRunner
	applier  *inventory.MovementApplier
	numberer ports.DocumentNumberer
	events   ports.EventPublisher
	log      *logger.Logger
	now      func() time.Time
}

// NewReturnUseCase construye el caso de uso.
func NewReturnUseCase(
	txRunner inventory.TxRunner,
	applier *inventory.MovementApplier,
	numberer ports.DocumentNumberer,
	events ports.EventPublisher,
	log *logger.Logger,
) *ReturnUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &ReturnUseCase{
		txRunner: txRunner,
		applier:  applier,
		numberer: numberer,
		events:   events,
		log:      log,
		now:      time.Now,
	}
}

func validateReturn(in dto.CreateReturnRequest) error {
	if in.SaleID == "" || strings.TrimSpace(in.Reason) == "" {
		return domain.ErrInvalidInput
	}
	if in.Type != entity.ReturnPartial && in.Type != entity.ReturnFull {
		return fmt.Errorf("tipo de devolución %q: %w", in.Type, domain.ErrInvalidInput)
	}
	if in.Type == entity.ReturnPartial && len(in.Lines) == 0 {
		return fmt.Errorf("la devolución parcial requiere líneas: %w", domain.ErrInvalidInput)
	}
	seen := make(map[string]bool, len(in.Lines))
	for i, l := range in.Lines {
		if l.SaleLineID == "" {
			return fmt.Errorf("línea %d: sale_line_id requerido: %w", i+1, domain.ErrInvalidInput)
		}
		if l.Quantity <= 0 {
			return fmt.Errorf("línea %d: %w", i+1, domain.ErrInvalidQuantity)
		}
		if seen[l.SaleLineID] {
			return fmt.Errorf("línea de venta %s repetida: %w", l.SaleLineID, domain.ErrInvalidInput)
		}
		seen[l.SaleLineID] = true
	}
	return nil
}

// CreateReturn devuelve mercancía de una venta en la sede del actor.
// Lo ya devuelto por línea se suma dentro de la transacción con la venta bloqueada:
// una devolución nunca supera lo vendido.
func (uc *ReturnUseCase) CreateReturn(ctx context.Context, actor domain.Actor, in dto.CreateReturnRequest) (_ *dto.ReturnResponse, err error) {
	ctx, span := tracer.Start(ctx, "ReturnUseCase.CreateReturn")
	defer func() { endSpan(span, err) }()

	if !actor.Valid() {
		return nil, domain.ErrUnauthorized
	}
	if err := validateReturn(in); err != nil {
		return nil, err
	}

	now := uc.now()
	returnID := uuid.New().String()
	span.SetAttributes(attribute.String("return.id", returnID), attribute.String("sale.id", in.SaleID))

	number, err := nextNumber(ctx, uc.txRunner, uc.numberer, ports.DocReturn, actor.LocationID)
	if err != nil {
		return nil, err
	}

	var ret *entity.Return
	var retLines []*entity.ReturnLine

	err = uc.txRunner.Run(ctx, func(tx inventory.TxRepos) error {
		sale, err := tx.Sales.GetForUpdate(ctx, in.SaleID)
		if err != nil {
			return err
		}
		if sale == nil {
			return fmt.Errorf("venta %s: %w", in.SaleID, domain.ErrNotFound)
		}
		if sale.Status == entity.SettlementRefunded {
			return fmt.Errorf("la venta %s ya fue reembolsada: %w", sale.Number, domain.ErrConflict)
		}
		saleLines, err := tx.Sales.GetLines(ctx, sale.ID)
		if err != nil {
			return err
		}
		returned, err := tx.Returns.ReturnedQuantities(ctx, sale.ID)
		if err != nil {
			return err
		}

		retLines, err = planReturnLines(returnID, in, saleLines, returned)
		if err != nil {
			return err
		}

		total := decimal.Zero
		for _, l := range retLines {
			total = total.Add(l.Amount)
		}
		ret = &entity.Return{
			ID:          returnID,
			Number:      number,
			SaleID:      sale.ID,
			LocationID:  actor.LocationID,
			UserID:      actor.UserID,
			Reason:      strings.TrimSpace(in.Reason),
			Type:        in.Type,
			TotalRefund: total,
			CreatedAt:   now,
		}
		if err := tx.Returns.Create(ctx, ret); err != nil {
			return err
		}
		for _, l := range retLines {
			if err := tx.Returns.CreateLine(ctx, l); err != nil {
				return err
			}
			if l.AdHoc {
				continue
			}
			if _, err := uc.applier.Apply(ctx, tx, inventory.ApplyInput{
				Direction: entity.DirectionIn,
				Key:       entity.StockKey{LocationID: actor.LocationID, ItemID: l.ItemID, VariantID: l.VariantID},
				Quantity:  l.Quantity,
				Reference: entity.Reference{Type: entity.RefReturn, ID: returnID},
				UserID:    actor.UserID,
			}); err != nil {
				return err
			}
		}

		status := entity.SettlementPartialRefund
		if in.Type == entity.ReturnFull {
			status = entity.SettlementRefunded
		}
		return tx.Sales.UpdateStatus(ctx, sale.ID, status)
	})
	if err != nil {
		return nil, err
	}

	resp := ToReturnResponse(ret, retLines)
	resp.SaleStatus = entity.SettlementPartialRefund
	if ret.Type == entity.ReturnFull {
		resp.SaleStatus = entity.SettlementRefunded
	}
	if uc.events != nil {
		evt := ports.Event{Type: ports.EventReturnCreated, Key: ret.ID, LocationID: ret.LocationID, OccurredAt: now, Payload: resp}
		if err := uc.events.Publish(ctx, evt); err != nil {
			uc.log.Ctx(ctx).Session(actor.UserID, actor.LocationID).Warn().Err(err).Str("event", evt.Type).Str("key", evt.Key).Msg("no se pudo publicar el evento")
		}
	}
	return resp, nil
}

// planReturnLines arma las líneas de la devolución contra lo pendiente por devolver.
// Una devolución total sin líneas toma todo lo pendiente de la venta.
func planReturnLines(returnID string, in dto.CreateReturnRequest, saleLines []*entity.SaleLine, returned map[string]int64) ([]*entity.ReturnLine, error) {
	byID := make(map[string]*entity.SaleLine, len(saleLines))
	for _, sl := range saleLines {
		byID[sl.ID] = sl
	}

	requests := in.Lines
	if in.Type == entity.ReturnFull && len(requests) == 0 {
		for _, sl := range saleLines {
			if pending := sl.Quantity - returned[sl.ID]; pending > 0 {
				requests = append(requests, dto.ReturnLineRequest{SaleLineID: sl.ID, Quantity: pending})
			}
		}
		if len(requests) == 0 {
			return nil, fmt.Errorf("no quedan unidades por devolver: %w", domain.ErrConflict)
		}
	}

	out := make([]*entity.ReturnLine, 0, len(requests))
	for i, r := range requests {
		sl, ok := byID[r.SaleLineID]
		if !ok {
			return nil, fmt.Errorf("la línea %s no pertenece a la venta: %w", r.SaleLineID, domain.ErrInvalidInput)
		}
		if r.Quantity > sl.Quantity-returned[sl.ID] {
			return nil, fmt.Errorf("línea %d: vendidas %d, devueltas %d, solicitadas %d: %w",
				sl.Position, sl.Quantity, returned[sl.ID], r.Quantity, domain.ErrReturnExceedsSold)
		}
		out = append(out, &entity.ReturnLine{
			ID:         uuid.New().String(),
			ReturnID:   returnID,
			SaleLineID: sl.ID,
			Position:   i + 1,
			ItemID:     sl.ItemID,
			VariantID:  sl.VariantID,
			AdHoc:      sl.AdHoc,
			Quantity:   r.Quantity,
			UnitPrice:  sl.UnitPrice,
			Amount:     sl.UnitPrice.Mul(decimal.NewFromInt(r.Quantity)),
		})
	}
	return out, nil
}

// GetReturn devuelve la devolución con sus líneas.
func (uc *ReturnUseCase) GetReturn(ctx context.Context, id string) (*dto.ReturnResponse, error) {
	if id == "" {
		return nil, domain.ErrInvalidInput
	}
	var ret *entity.Return
	var lines []*entity.ReturnLine
	var saleStatus string
	err := uc.txRunner.Run(ctx, func(tx inventory.TxRepos) error {
		var err error
		if ret, err = tx.Returns.GetByID(ctx, id); err != nil {
			return err
		}
		if ret == nil {
			return domain.ErrNotFound
		}
		if lines, err = tx.Returns.GetLines(ctx, id); err != nil {
			return err
		}
		sale, err := tx.Sales.GetByID(ctx, ret.SaleID)
		if err != nil {
			return err
		}
		if sale != nil {
			saleStatus = sale.Status
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	resp := ToReturnResponse(ret, lines)
	resp.SaleStatus = saleStatus
	return resp, nil
}

// ToReturnResponse mapea la devolución al DTO.
func ToReturnResponse(r *entity.Return, lines []*entity.ReturnLine) *dto.ReturnResponse {
	resp := &dto.ReturnResponse{
		ID:          r.ID,
		Number:      r.Number,
		SaleID:      r.SaleID,
		LocationID:  r.LocationID,
		UserID:      r.UserID,
		Reason:      r.Reason,
		Type:        r.Type,
		TotalRefund: r.TotalRefund,
		CreatedAt:   r.CreatedAt,
		Lines:       make([]dto.ReturnLineResponse, 0, len(lines)),
	}
	for _, l := range lines {
		resp.Lines = append(resp.Lines, dto.ReturnLineResponse{
			ID:         l.ID,
			SaleLineID: l.SaleLineID,
			Position:   l.Position,
			ItemID:     l.ItemID,
			VariantID:  l.VariantID,
			AdHoc:      l.AdHoc,
			Quantity:   l.Quantity,
			UnitPrice:  l.UnitPrice,
			Amount:     l.Amount,
		})
	}
	return resp
}
