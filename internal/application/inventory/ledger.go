package inventory

import (
	"context"
	"fmt"

	"github.com/jhoicas/retail-stock-api/internal/domain"
	"github.com/jhoicas/retail-stock-api/internal/domain/entity"
	domaininv "github.com/jhoicas/retail-stock-api/internal/domain/inventory"
	"github.com/jhoicas/retail-stock-api/internal/domain/repository"
	"github.com/jhoicas/retail-stock-api/pkg/logger"
)

// StockLedger es la fuente de verdad del stock por sede, ítem y variante.
// No abre transacciones: opera sobre el StockRepository atado a la tx del caller.
type StockLedger struct {
	log    *logger.Logger
	clamps ClampRecorder
}

// NewStockLedger construye el ledger. clamps puede ser nil.
func NewStockLedger(log *logger.Logger, clamps ClampRecorder) *StockLedger {
	if log == nil {
		log = logger.Nop()
	}
	if clamps == nil {
		clamps = noopClamps{}
	}
	return &StockLedger{log: log, clamps: clamps}
}

// Get devuelve la línea bloqueada para update; la crea en cero en el primer acceso.
func (l *StockLedger) Get(ctx context.Context, stock repository.StockRepository, key entity.StockKey) (*entity.StockLine, error) {
	if key.LocationID == "" || key.ItemID == "" {
		return nil, domain.ErrInvalidInput
	}
	line, err := stock.GetForUpdate(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("ledger get: %w", err)
	}
	return line, nil
}

// AdjustResult resultado de un ajuste sobre el ledger.
type AdjustResult struct {
	Before  int64
	After   int64
	Clamped bool
}

// Adjust aplica un delta con signo. Una salida mayor que lo disponible deja la línea en cero
// (no falla) y emite un warning + métrica: indica un conteo previo incorrecto.
func (l *StockLedger) Adjust(ctx context.Context, stock repository.StockRepository, key entity.StockKey, delta int64) (AdjustResult, error) {
	line, err := l.Get(ctx, stock, key)
	if err != nil {
		return AdjustResult{}, err
	}
	next, clamped := domaininv.ApplyDelta(line.CurrentStock, delta)
	if clamped {
		l.log.Ctx(ctx).Warn().
			Str("location_id", key.LocationID).
			Str("item_id", key.ItemID).
			Str("variant_id", key.VariantID).
			Int64("requested", -delta).
			Int64("available", line.CurrentStock).
			Msg("stock recortado en cero")
		l.clamps.RecordClamp(key.LocationID, -delta, line.CurrentStock)
	}
	if err := stock.SetQuantity(ctx, key, next); err != nil {
		return AdjustResult{}, fmt.Errorf("ledger adjust: %w", err)
	}
	return AdjustResult{Before: line.CurrentStock, After: next, Clamped: clamped}, nil
}
