package sales

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/retail-stock-api/internal/application/dto"
	"github.com/jhoicas/retail-stock-api/internal/domain"
	"github.com/jhoicas/retail-stock-api/internal/domain/entity"
)

// saleTotals montos calculados de una venta antes de abrir la transacción.
type saleTotals struct {
	LineTotals    []decimal.Decimal
	Subtotal      decimal.Decimal
	Total         decimal.Decimal
	Change        decimal.Decimal
	PaymentMethod string
	Status        string
}

// computeSaleTotals valida el carrito y calcula subtotal, total, vuelto y estado de liquidación.
// Todo error es de entrada: se detecta antes de tocar la BD.
func computeSaleTotals(in dto.CreateSaleRequest) (*saleTotals, error) {
	if len(in.Lines) == 0 {
		return nil, domain.ErrEmptyCart
	}
	t := &saleTotals{LineTotals: make([]decimal.Decimal, len(in.Lines))}
	for i, l := range in.Lines {
		if l.Quantity <= 0 {
			return nil, fmt.Errorf("línea %d: %w", i+1, domain.ErrInvalidQuantity)
		}
		if l.UnitPrice.IsNegative() || l.Discount.IsNegative() {
			return nil, fmt.Errorf("línea %d: precio o descuento negativo: %w", i+1, domain.ErrInvalidInput)
		}
		if l.AdHoc && strings.TrimSpace(l.Description) == "" {
			return nil, fmt.Errorf("línea %d: la línea libre requiere descripción: %w", i+1, domain.ErrInvalidInput)
		}
		if !l.AdHoc && l.ItemID == "" {
			return nil, fmt.Errorf("línea %d: item_id requerido: %w", i+1, domain.ErrInvalidInput)
		}
		lineTotal := decimal.NewFromInt(l.Quantity).Mul(l.UnitPrice).Sub(l.Discount)
		if lineTotal.IsNegative() {
			return nil, fmt.Errorf("línea %d: el descuento supera el importe: %w", i+1, domain.ErrInvalidInput)
		}
		t.LineTotals[i] = lineTotal
		t.Subtotal = t.Subtotal.Add(lineTotal)
	}
	if in.Tax.IsNegative() || in.Discount.IsNegative() {
		return nil, fmt.Errorf("impuesto o descuento negativo: %w", domain.ErrInvalidInput)
	}
	t.Total = t.Subtotal.Sub(in.Discount).Add(in.Tax)
	if t.Total.IsNegative() {
		return nil, domain.ErrNegativeTotal
	}

	p := in.Payment
	if p.Cash.IsNegative() || p.Mobile.IsNegative() || p.Credit.IsNegative() {
		return nil, fmt.Errorf("monto de pago negativo: %w", domain.ErrInvalidInput)
	}
	immediate := p.Cash.Add(p.Mobile)
	due := t.Total.Sub(p.Credit)
	if immediate.LessThan(due) {
		return nil, domain.ErrInsufficientPay
	}
	t.Change = decimal.Max(decimal.Zero, immediate.Sub(decimal.Max(decimal.Zero, due)))
	t.PaymentMethod = paymentMethod(p)
	t.Status = entity.SettlementPaid
	if p.Credit.IsPositive() {
		t.Status = entity.SettlementPending
	}
	return t, nil
}

func paymentMethod(p dto.TenderRequest) string {
	var used []string
	if p.Cash.IsPositive() {
		used = append(used, entity.PaymentCash)
	}
	if p.Mobile.IsPositive() {
		used = append(used, entity.PaymentMobile)
	}
	if p.Credit.IsPositive() {
		used = append(used, entity.PaymentCredit)
	}
	switch len(used) {
	case 0:
		return entity.PaymentCash
	case 1:
		return used[0]
	default:
		return entity.PaymentMixed
	}
}
