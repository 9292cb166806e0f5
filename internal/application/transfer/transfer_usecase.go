// Package transfer traslados entre sedes: creación, recepción y anulación (reversa).
package transfer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jhoicas/retail-stock-api/internal/application/dto"
	"github.com/jhoicas/retail-stock-api/internal/application/inventory"
	"github.com/jhoicas/retail-stock-api/internal/application/ports"
	"github.com/jhoicas/retail-stock-api/internal/domain"
	"github.com/jhoicas/retail-stock-api/internal/domain/entity"
	domaininv "github.com/jhoicas/retail-stock-api/internal/domain/inventory"
	"github.com/jhoicas/retail-stock-api/pkg/logger"
)

var tracer = otel.Tracer("github.com/jhoicas/retail-stock-api/internal/application/transfer")

// TransferUseCase mueve mercancía entre sedes y permite anular un traslado una sola vez.
type TransferUseCase struct {
	txRunner         inventory.TxRunner
	applier          *inventory.MovementApplier
	numberer         ports.DocumentNumberer
	events           ports.EventPublisher
	log              *logger.Logger
	centralWarehouse string
	now              func() time.Time
}

// NewTransferUseCase construye el caso de uso. centralWarehouseID vacío: se toma como bodega
// central cualquier sede de tipo warehouse.
func NewTransferUseCase(
	txRunner inventory.TxRunner,
	applier *inventory.MovementApplier,
	numberer ports.DocumentNumberer,
	events ports.EventPublisher,
	log *logger.Logger,
	centralWarehouseID string,
) *TransferUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &TransferUseCase{
		txRunner:         txRunner,
		applier:          applier,
		numberer:         numberer,
		events:           events,
		log:              log,
		centralWarehouse: centralWarehouseID,
		now:              time.Now,
	}
}

func (uc *TransferUseCase) isCentral(loc *entity.Location) bool {
	if uc.centralWarehouse != "" {
		return loc.ID == uc.centralWarehouse
	}
	return loc.IsWarehouse()
}

func validateCreate(in dto.CreateTransferRequest) error {
	if in.SourceLocationID == "" || in.DestinationLocationID == "" {
		return domain.ErrInvalidInput
	}
	if in.SourceLocationID == in.DestinationLocationID {
		return domain.ErrSameLocation
	}
	if len(in.Lines) == 0 {
		return fmt.Errorf("el traslado no tiene líneas: %w", domain.ErrInvalidInput)
	}
	for i, l := range in.Lines {
		if l.ItemID == "" {
			return fmt.Errorf("línea %d: item_id requerido: %w", i+1, domain.ErrInvalidInput)
		}
		if l.Quantity <= 0 {
			return fmt.Errorf("línea %d: %w", i+1, domain.ErrInvalidQuantity)
		}
	}
	return nil
}

// CreateTransfer descuenta el origen (caja de bodega o línea de stock, sin recorte) e
// incrementa el destino. Con DispatchOnly el traslado queda pendiente hasta su recepción.
func (uc *TransferUseCase) CreateTransfer(ctx context.Context, actor domain.Actor, in dto.CreateTransferRequest) (_ *dto.TransferResponse, err error) {
	ctx, span := tracer.Start(ctx, "TransferUseCase.CreateTransfer")
	defer func() { endSpan(span, err) }()

	if !actor.Valid() {
		return nil, domain.ErrUnauthorized
	}
	if err := validateCreate(in); err != nil {
		return nil, err
	}

	now := uc.now()
	shipmentID := uuid.New().String()
	span.SetAttributes(attribute.String("transfer.id", shipmentID))

	// El consecutivo se toma fuera de la transacción: un rollback deja un hueco.
	number, err := uc.nextNumber(ctx, in.SourceLocationID)
	if err != nil {
		return nil, err
	}

	var shipment *entity.TransferShipment
	var lines []*entity.TransferLine

	err = uc.txRunner.Run(ctx, func(tx inventory.TxRepos) error {
		src, err := tx.Locations.GetByID(ctx, in.SourceLocationID)
		if err != nil {
			return err
		}
		if src == nil {
			return fmt.Errorf("sede origen %s: %w", in.SourceLocationID, domain.ErrNotFound)
		}
		dst, err := tx.Locations.GetByID(ctx, in.DestinationLocationID)
		if err != nil {
			return err
		}
		if dst == nil {
			return fmt.Errorf("sede destino %s: %w", in.DestinationLocationID, domain.ErrNotFound)
		}
		central := uc.isCentral(src)
		shipment = &entity.TransferShipment{
			ID:                    shipmentID,
			Number:                number,
			SourceLocationID:      src.ID,
			DestinationLocationID: dst.ID,
			Status:                entity.TransferPending,
			Notes:                 in.Notes,
			CreatedBy:             actor.UserID,
			CreatedAt:             now,
		}
		if !in.DispatchOnly {
			shipment.Status = entity.TransferCompleted
			shipment.CompletedAt = &now
		}
		if err := tx.Transfers.Create(ctx, shipment); err != nil {
			return err
		}

		ref := entity.Reference{Type: entity.RefTransfer, ID: shipmentID}
		for i, l := range in.Lines {
			line := &entity.TransferLine{
				ID:         uuid.New().String(),
				ShipmentID: shipmentID,
				Position:   i + 1,
				ItemID:     l.ItemID,
				VariantID:  l.VariantID,
				Quantity:   l.Quantity,
			}
			if l.BoxID != "" {
				if !central {
					return fmt.Errorf("línea %d: solo la bodega central despacha por caja: %w", i+1, domain.ErrInvalidInput)
				}
				box := l.BoxID
				line.BoxID = &box
			}
			if err := tx.Transfers.CreateLine(ctx, line); err != nil {
				return err
			}
			lines = append(lines, line)

			out := inventory.ApplyInput{
				Direction: entity.DirectionOut,
				Key:       entity.StockKey{LocationID: src.ID, ItemID: l.ItemID, VariantID: l.VariantID},
				Quantity:  l.Quantity,
				Reference: ref,
				UserID:    actor.UserID,
				Strict:    true,
			}
			if line.FromBox() {
				_, err = uc.applier.ApplyBox(ctx, tx, *line.BoxID, out)
			} else {
				_, err = uc.applier.Apply(ctx, tx, out)
			}
			if err != nil {
				return fmt.Errorf("línea %d: %w", i+1, err)
			}

			if in.DispatchOnly {
				continue
			}
			if _, err := uc.applier.Apply(ctx, tx, inventory.ApplyInput{
				Direction: entity.DirectionIn,
				Key:       entity.StockKey{LocationID: dst.ID, ItemID: l.ItemID, VariantID: l.VariantID},
				Quantity:  l.Quantity,
				Reference: ref,
				UserID:    actor.UserID,
			}); err != nil {
				return fmt.Errorf("línea %d: %w", i+1, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	resp := ToTransferResponse(shipment, lines)
	if shipment.Status == entity.TransferCompleted {
		uc.publish(ctx, ports.EventTransferCompleted, resp, now)
	}
	return resp, nil
}

func (uc *TransferUseCase) nextNumber(ctx context.Context, sourceID string) (string, error) {
	var src *entity.Location
	err := uc.txRunner.Run(ctx, func(tx inventory.TxRepos) error {
		var err error
		src, err = tx.Locations.GetByID(ctx, sourceID)
		return err
	})
	if err != nil {
		return "", err
	}
	if src == nil {
		return "", fmt.Errorf("sede origen %s: %w", sourceID, domain.ErrNotFound)
	}
	number, err := uc.numberer.Next(ctx, ports.DocTransfer, src.Code)
	if err != nil {
		return "", fmt.Errorf("numeración de traslado: %w", err)
	}
	return number, nil
}

// ReceiveTransfer completa un traslado pendiente: ingresa la mercancía en el destino.
func (uc *TransferUseCase) ReceiveTransfer(ctx context.Context, actor domain.Actor, id string) (_ *dto.TransferResponse, err error) {
	ctx, span := tracer.Start(ctx, "TransferUseCase.ReceiveTransfer")
	defer func() { endSpan(span, err) }()

	if !actor.Valid() {
		return nil, domain.ErrUnauthorized
	}
	if id == "" {
		return nil, domain.ErrInvalidInput
	}
	span.SetAttributes(attribute.String("transfer.id", id))

	now := uc.now()
	var shipment *entity.TransferShipment
	var lines []*entity.TransferLine

	err = uc.txRunner.Run(ctx, func(tx inventory.TxRepos) error {
		var err error
		shipment, err = tx.Transfers.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if shipment == nil {
			return fmt.Errorf("traslado %s: %w", id, domain.ErrNotFound)
		}
		switch shipment.Status {
		case entity.TransferCancelled:
			return domain.ErrShipmentCancelled
		case entity.TransferCompleted:
			return fmt.Errorf("el traslado %s ya fue recibido: %w", shipment.Number, domain.ErrConflict)
		}
		dst, err := tx.Locations.GetByID(ctx, shipment.DestinationLocationID)
		if err != nil {
			return err
		}
		if dst == nil {
			return fmt.Errorf("sede destino %s: %w", shipment.DestinationLocationID, domain.ErrConsistency)
		}
		if lines, err = tx.Transfers.GetLines(ctx, id); err != nil {
			return err
		}
		ref := entity.Reference{Type: entity.RefTransfer, ID: id}
		for _, l := range lines {
			if _, err := uc.applier.Apply(ctx, tx, inventory.ApplyInput{
				Direction: entity.DirectionIn,
				Key:       entity.StockKey{LocationID: dst.ID, ItemID: l.ItemID, VariantID: l.VariantID},
				Quantity:  l.Quantity,
				Reference: ref,
				UserID:    actor.UserID,
			}); err != nil {
				return err
			}
		}
		if err := tx.Transfers.MarkCompleted(ctx, id, now); err != nil {
			return err
		}
		shipment.Status = entity.TransferCompleted
		shipment.CompletedAt = &now
		return nil
	})
	if err != nil {
		return nil, err
	}

	resp := ToTransferResponse(shipment, lines)
	uc.publish(ctx, ports.EventTransferCompleted, resp, now)
	return resp, nil
}

// ReverseTransfer anula un traslado: repone el origen (la caja o la línea de stock) y, si el
// destino ya lo había recibido, descuenta el destino recortando en cero. Un traslado
// anulado no se puede volver a anular.
func (uc *TransferUseCase) ReverseTransfer(ctx context.Context, actor domain.Actor, id string, in dto.ReverseTransferRequest) (_ *dto.TransferResponse, err error) {
	ctx, span := tracer.Start(ctx, "TransferUseCase.ReverseTransfer")
	defer func() { endSpan(span, err) }()

	if !actor.Valid() {
		return nil, domain.ErrUnauthorized
	}
	if id == "" {
		return nil, domain.ErrInvalidInput
	}
	span.SetAttributes(attribute.String("transfer.id", id))

	now := uc.now()
	reason := strings.TrimSpace(in.Reason)
	var shipment *entity.TransferShipment
	var lines []*entity.TransferLine

	err = uc.txRunner.Run(ctx, func(tx inventory.TxRepos) error {
		var err error
		shipment, err = tx.Transfers.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if shipment == nil {
			return fmt.Errorf("traslado %s: %w", id, domain.ErrNotFound)
		}
		if shipment.Status == entity.TransferCancelled {
			return domain.ErrShipmentCancelled
		}
		src, err := tx.Locations.GetByID(ctx, shipment.SourceLocationID)
		if err != nil {
			return err
		}
		if src == nil {
			return fmt.Errorf("sede origen %s: %w", shipment.SourceLocationID, domain.ErrConsistency)
		}
		dst, err := tx.Locations.GetByID(ctx, shipment.DestinationLocationID)
		if err != nil {
			return err
		}
		if dst == nil {
			return fmt.Errorf("sede destino %s: %w", shipment.DestinationLocationID, domain.ErrConsistency)
		}
		if lines, err = tx.Transfers.GetLines(ctx, id); err != nil {
			return err
		}

		received := shipment.Status == entity.TransferCompleted
		ref := entity.Reference{Type: entity.RefTransferReversal, ID: id}
		for i, l := range lines {
			back := inventory.ApplyInput{
				Direction: entity.DirectionIn,
				Key:       entity.StockKey{LocationID: src.ID, ItemID: l.ItemID, VariantID: l.VariantID},
				Quantity:  l.Quantity,
				Reference: ref,
				UserID:    actor.UserID,
			}
			if l.FromBox() {
				_, err = uc.applier.ApplyBox(ctx, tx, *l.BoxID, back)
				if errors.Is(err, domain.ErrNotFound) {
					err = fmt.Errorf("línea %d: caja %s: %w", i+1, *l.BoxID, domain.ErrConsistency)
				}
			} else {
				_, err = uc.applier.Apply(ctx, tx, back)
			}
			if err != nil {
				return err
			}

			if !received {
				continue
			}
			mov, err := uc.applier.Apply(ctx, tx, inventory.ApplyInput{
				Direction: entity.DirectionOut,
				Key:       entity.StockKey{LocationID: dst.ID, ItemID: l.ItemID, VariantID: l.VariantID},
				Quantity:  l.Quantity,
				Reference: ref,
				UserID:    actor.UserID,
			})
			if err != nil {
				return err
			}
			if removed := domaininv.ReversalOut(l.Quantity, mov.StockBefore); removed < l.Quantity {
				uc.log.Ctx(ctx).Session(actor.UserID, actor.LocationID).Warn().
					Str("transfer_id", id).
					Str("destination_id", dst.ID).
					Str("item_id", l.ItemID).
					Str("variant_id", l.VariantID).
					Int64("transferred", l.Quantity).
					Int64("removed", removed).
					Msg("reversa inexacta: el destino ya había consumido parte del traslado")
			}
		}

		if err := tx.Transfers.MarkCancelled(ctx, id, actor.UserID, reason, now); err != nil {
			return err
		}
		shipment.Status = entity.TransferCancelled
		shipment.CancelledAt = &now
		shipment.CancelledBy = actor.UserID
		shipment.CancelReason = reason
		return nil
	})
	if err != nil {
		return nil, err
	}

	resp := ToTransferResponse(shipment, lines)
	uc.publish(ctx, ports.EventTransferReversed, resp, now)
	return resp, nil
}

// GetTransfer devuelve el traslado con sus líneas.
func (uc *TransferUseCase) GetTransfer(ctx context.Context, id string) (*dto.TransferResponse, error) {
	if id == "" {
		return nil, domain.ErrInvalidInput
	}
	var shipment *entity.TransferShipment
	var lines []*entity.TransferLine
	var movements []*entity.Movement
	err := uc.txRunner.Run(ctx, func(tx inventory.TxRepos) error {
		var err error
		if shipment, err = tx.Transfers.GetByID(ctx, id); err != nil {
			return err
		}
		if shipment == nil {
			return domain.ErrNotFound
		}
		if lines, err = tx.Transfers.GetLines(ctx, id); err != nil {
			return err
		}
		for _, refType := range []string{entity.RefTransfer, entity.RefTransferReversal} {
			list, err := tx.Movements.ListByReference(ctx, entity.Reference{Type: refType, ID: id})
			if err != nil {
				return err
			}
			movements = append(movements, list...)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	resp := ToTransferResponse(shipment, lines)
	for _, m := range movements {
		resp.Movements = append(resp.Movements, inventory.ToMovementResponse(m))
	}
	return resp, nil
}

func (uc *TransferUseCase) publish(ctx context.Context, eventType string, resp *dto.TransferResponse, at time.Time) {
	if uc.events == nil {
		return
	}
	evt := ports.Event{Type: eventType, Key: resp.ID, LocationID: resp.SourceLocationID, OccurredAt: at, Payload: resp}
	if err := uc.events.Publish(ctx, evt); err != nil {
		uc.log.Ctx(ctx).Warn().Err(err).Str("event", evt.Type).Str("key", evt.Key).Msg("no se pudo publicar el evento")
	}
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// ToTransferResponse mapea el traslado al DTO.
func ToTransferResponse(s *entity.TransferShipment, lines []*entity.TransferLine) *dto.TransferResponse {
	resp := &dto.TransferResponse{
		ID:                    s.ID,
		Number:                s.Number,
		SourceLocationID:      s.SourceLocationID,
		DestinationLocationID: s.DestinationLocationID,
		Status:                s.Status,
		Notes:                 s.Notes,
		CreatedBy:             s.CreatedBy,
		CreatedAt:             s.CreatedAt,
		CompletedAt:           s.CompletedAt,
		CancelledAt:           s.CancelledAt,
		CancelledBy:           s.CancelledBy,
		CancelReason:          s.CancelReason,
		Lines:                 make([]dto.TransferLineResponse, 0, len(lines)),
	}
	for _, l := range lines {
		lr := dto.TransferLineResponse{ID: l.ID, Position: l.Position, ItemID: l.ItemID, VariantID: l.VariantID, Quantity: l.Quantity}
		if l.BoxID != nil {
			lr.BoxID = *l.BoxID
		}
		resp.Lines = append(resp.Lines, lr)
	}
	return resp
}
