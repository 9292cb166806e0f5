package sales

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/jhoicas/retail-stock-api/internal/application/dto"
	"github.com/jhoicas/retail-stock-api/internal/application/inventory"
	"github.com/jhoicas/retail-stock-api/internal/application/ports"
	"github.com/jhoicas/retail-stock-api/internal/domain"
	"github.com/jhoicas/retail-stock-api/internal/domain/entity"
	"github.com/jhoicas/retail-stock-api/pkg/logger"
)

// SaleUseCase registra ventas POS: cabecera, líneas y salidas de stock en una sola transacción.
type SaleUseCase struct {
	txRunner inventory.TxRunner
	applier  *inventory.MovementApplier
	numberer ports.DocumentNumberer
	events   ports.EventPublisher
	receipts ports.ReceiptRenderer
	log      *logger.Logger
	now      func() time.Time
}

// NewSaleUseCase construye el caso de uso. receipts puede ser nil si no se expone el PDF.
func NewSaleUseCase(
	txRunner inventory.TxRunner,
	applier *inventory.MovementApplier,
	numberer ports.DocumentNumberer,
	events ports.EventPublisher,
	receipts ports.ReceiptRenderer,
	log *logger.Logger,
) *SaleUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &SaleUseCase{
		txRunner: txRunner,
		applier:  applier,
		numberer: numberer,
		events:   events,
		receipts: receipts,
		log:      log,
		now:      time.Now,
	}
}

// CreateSale valida el carrito, calcula totales y persiste la venta con sus movimientos.
// Cualquier fallo dentro de la transacción deshace todo: no quedan ventas ni salidas parciales.
func (uc *SaleUseCase) CreateSale(ctx context.Context, actor domain.Actor, in dto.CreateSaleRequest) (_ *dto.SaleResponse, err error) {
	ctx, span := tracer.Start(ctx, "SaleUseCase.CreateSale")
	defer func() { endSpan(span, err) }()

	if !actor.Valid() {
		return nil, domain.ErrUnauthorized
	}
	totals, err := computeSaleTotals(in)
	if err != nil {
		return nil, err
	}

	now := uc.now()
	saleID := uuid.New().String()
	span.SetAttributes(attribute.String("sale.id", saleID), attribute.String("location.id", actor.LocationID))

	// El consecutivo se toma fuera de la transacción: un rollback deja un hueco.
	number, err := nextNumber(ctx, uc.txRunner, uc.numberer, ports.DocSale, actor.LocationID)
	if err != nil {
		return nil, err
	}

	var sale *entity.Sale
	var lines []*entity.SaleLine

	err = uc.txRunner.Run(ctx, func(tx inventory.TxRepos) error {
		sale = &entity.Sale{
			ID:             saleID,
			Number:         number,
			LocationID:     actor.LocationID,
			UserID:         actor.UserID,
			CustomerName:   in.CustomerName,
			CustomerPhone:  in.CustomerPhone,
			Subtotal:       totals.Subtotal,
			Tax:            in.Tax,
			Discount:       in.Discount,
			Total:          totals.Total,
			CashTendered:   in.Payment.Cash,
			MobileTendered: in.Payment.Mobile,
			CreditAmount:   in.Payment.Credit,
			Change:         totals.Change,
			PaymentMethod:  totals.PaymentMethod,
			Status:         totals.Status,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if err := tx.Sales.Create(ctx, sale); err != nil {
			return err
		}

		// Una salida por línea de catálogo; las líneas libres no mueven stock.
		for i, l := range in.Lines {
			line := &entity.SaleLine{
				ID:          uuid.New().String(),
				SaleID:      saleID,
				Position:    i + 1,
				ItemID:      l.ItemID,
				VariantID:   l.VariantID,
				Description: l.Description,
				Quantity:    l.Quantity,
				UnitPrice:   l.UnitPrice,
				Discount:    l.Discount,
				LineTotal:   totals.LineTotals[i],
				AdHoc:       l.AdHoc,
			}
			if err := tx.Sales.CreateLine(ctx, line); err != nil {
				return err
			}
			lines = append(lines, line)
			if l.AdHoc {
				continue
			}
			if _, err := uc.applier.Apply(ctx, tx, inventory.ApplyInput{
				Direction: entity.DirectionOut,
				Key:       entity.StockKey{LocationID: actor.LocationID, ItemID: l.ItemID, VariantID: l.VariantID},
				Quantity:  l.Quantity,
				Reference: entity.Reference{Type: entity.RefSale, ID: saleID},
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

	resp := ToSaleResponse(sale, lines)
	uc.publish(ctx, ports.Event{
		Type:       ports.EventSaleCreated,
		Key:        sale.ID,
		LocationID: sale.LocationID,
		OccurredAt: now,
		Payload:    resp,
	})
	return resp, nil
}

// GetSale devuelve la venta con sus líneas.
func (uc *SaleUseCase) GetSale(ctx context.Context, id string) (*dto.SaleResponse, error) {
	sale, lines, _, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToSaleResponse(sale, lines)
	err = uc.txRunner.Run(ctx, func(tx inventory.TxRepos) error {
		list, err := tx.Movements.ListByReference(ctx, entity.Reference{Type: entity.RefSale, ID: sale.ID})
		for _, m := range list {
			resp.Movements = append(resp.Movements, inventory.ToMovementResponse(m))
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// SaleReceiptPDF genera el comprobante de la venta.
func (uc *SaleUseCase) SaleReceiptPDF(ctx context.Context, id string) ([]byte, error) {
	if uc.receipts == nil {
		return nil, fmt.Errorf("comprobante no configurado: %w", domain.ErrInvalidInput)
	}
	sale, lines, loc, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	locationName := sale.LocationID
	if loc != nil {
		locationName = loc.Name
	}
	return uc.receipts.RenderSaleReceipt(ToSaleResponse(sale, lines), locationName)
}

func (uc *SaleUseCase) load(ctx context.Context, id string) (*entity.Sale, []*entity.SaleLine, *entity.Location, error) {
	if id == "" {
		return nil, nil, nil, domain.ErrInvalidInput
	}
	var sale *entity.Sale
	var lines []*entity.SaleLine
	var loc *entity.Location
	err := uc.txRunner.Run(ctx, func(tx inventory.TxRepos) error {
		var err error
		if sale, err = tx.Sales.GetByID(ctx, id); err != nil {
			return err
		}
		if sale == nil {
			return domain.ErrNotFound
		}
		if lines, err = tx.Sales.GetLines(ctx, id); err != nil {
			return err
		}
		loc, err = tx.Locations.GetByID(ctx, sale.LocationID)
		return err
	})
	if err != nil {
		return nil, nil, nil, err
	}
	return sale, lines, loc, nil
}

// nextNumber reserva el consecutivo del documento con el código de la sede.
func nextNumber(ctx context.Context, runner inventory.TxRunner, numberer ports.DocumentNumberer, kind, locationID string) (string, error) {
	var loc *entity.Location
	err := runner.Run(ctx, func(tx inventory.TxRepos) error {
		var err error
		loc, err = tx.Locations.GetByID(ctx, locationID)
		return err
	})
	if err != nil {
		return "", err
	}
	if loc == nil {
		return "", fmt.Errorf("sede %s: %w", locationID, domain.ErrNotFound)
	}
	number, err := numberer.Next(ctx, kind, loc.Code)
	if err != nil {
		return "", fmt.Errorf("numeración %s: %w", kind, err)
	}
	return number, nil
}

func (uc *SaleUseCase) publish(ctx context.Context, evt ports.Event) {
	if uc.events == nil {
		return
	}
	if err := uc.events.Publish(ctx, evt); err != nil {
		uc.log.Ctx(ctx).Warn().Err(err).Str("event", evt.Type).Str("key", evt.Key).Msg("no se pudo publicar el evento")
	}
}

// ToSaleResponse mapea la venta y sus líneas al DTO.
func ToSaleResponse(s *entity.Sale, lines []*entity.SaleLine) *dto.SaleResponse {
	resp := &dto.SaleResponse{
		ID:             s.ID,
		Number:         s.Number,
		LocationID:     s.LocationID,
		UserID:         s.UserID,
		CustomerName:   s.CustomerName,
		CustomerPhone:  s.CustomerPhone,
		Subtotal:       s.Subtotal,
		Tax:            s.Tax,
		Discount:       s.Discount,
		Total:          s.Total,
		CashTendered:   s.CashTendered,
		MobileTendered: s.MobileTendered,
		CreditAmount:   s.CreditAmount,
		Change:         s.Change,
		PaymentMethod:  s.PaymentMethod,
		Status:         s.Status,
		CreatedAt:      s.CreatedAt,
		Lines:          make([]dto.SaleLineResponse, 0, len(lines)),
	}
	for _, l := range lines {
		resp.Lines = append(resp.Lines, dto.SaleLineResponse{
			ID:          l.ID,
			Position:    l.Position,
			ItemID:      l.ItemID,
			VariantID:   l.VariantID,
			Description: l.Description,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
			Discount:    l.Discount,
			LineTotal:   l.LineTotal,
			AdHoc:       l.AdHoc,
		})
	}
	return resp
}
