package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jhoicas/retail-stock-api/internal/domain"
	"github.com/jhoicas/retail-stock-api/internal/domain/entity"
	"github.com/jhoicas/retail-stock-api/internal/domain/repository"
)

var (
	_ repository.StockRepository        = (*stockRepo)(nil)
	_ repository.MovementRepository     = (*movementRepo)(nil)
	_ repository.WarehouseBoxRepository = (*boxRepo)(nil)
	_ repository.LocationRepository     = (*locationRepo)(nil)
	_ repository.SaleRepository         = (*saleRepo)(nil)
	_ repository.ReturnRepository       = (*returnRepo)(nil)
	_ repository.TransferRepository     = (*transferRepo)(nil)
)

type stockRepo struct{ st *state }

func (r *stockRepo) GetForUpdate(_ context.Context, key entity.StockKey) (*entity.StockLine, error) {
	line, ok := r.st.stock[key]
	if !ok {
		line = &entity.StockLine{StockKey: key, UpdatedAt: time.Now()}
		r.st.stock[key] = line
	}
	cp := *line
	return &cp, nil
}

func (r *stockRepo) Get(_ context.Context, key entity.StockKey) (*entity.StockLine, error) {
	line, ok := r.st.stock[key]
	if !ok {
		return nil, nil
	}
	cp := *line
	return &cp, nil
}

func (r *stockRepo) SetQuantity(_ context.Context, key entity.StockKey, quantity int64) error {
	line, ok := r.st.stock[key]
	if !ok {
		return fmt.Errorf("set stock %v: %w", key, domain.ErrNotFound)
	}
	line.CurrentStock = quantity
	line.UpdatedAt = time.Now()
	return nil
}

func (r *stockRepo) ListBelowMinimum(_ context.Context, locationID string) ([]*entity.StockLine, error) {
	var out []*entity.StockLine
	for _, line := range r.st.stock {
		if line.LocationID == locationID && line.BelowMinimum() {
			cp := *line
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ItemID != out[j].ItemID {
			return out[i].ItemID < out[j].ItemID
		}
		return out[i].VariantID < out[j].VariantID
	})
	return out, nil
}

type movementRepo struct{ st *state }

func (r *movementRepo) Create(_ context.Context, m *entity.Movement) error {
	cp := *m
	r.st.movements = append(r.st.movements, &cp)
	return nil
}

func (r *movementRepo) ListByStockKey(_ context.Context, key entity.StockKey, limit, offset int) ([]*entity.Movement, error) {
	var list []*entity.Movement
	for i := len(r.st.movements) - 1; i >= 0; i-- {
		if m := r.st.movements[i]; m.BoxID == nil && m.StockKey == key {
			cp := *m
			list = append(list, &cp)
		}
	}
	return page(list, limit, offset), nil
}

func (r *movementRepo) ListByBox(_ context.Context, boxID string, limit, offset int) ([]*entity.Movement, error) {
	var list []*entity.Movement
	for i := len(r.st.movements) - 1; i >= 0; i-- {
		if m := r.st.movements[i]; m.BoxID != nil && *m.BoxID == boxID {
			cp := *m
			list = append(list, &cp)
		}
	}
	return page(list, limit, offset), nil
}

func (r *movementRepo) ListByReference(_ context.Context, ref entity.Reference) ([]*entity.Movement, error) {
	var list []*entity.Movement
	for _, m := range r.st.movements {
		if m.Reference == ref {
			cp := *m
			list = append(list, &cp)
		}
	}
	return list, nil
}

func page[T any](list []T, limit, offset int) []T {
	if offset >= len(list) {
		return nil
	}
	list = list[offset:]
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return list
}

type boxRepo struct{ st *state }

func (r *boxRepo) GetForUpdate(_ context.Context, id string) (*entity.WarehouseBox, error) {
	box, ok := r.st.boxes[id]
	if !ok {
		return nil, nil
	}
	cp := *box
	return &cp, nil
}

func (r *boxRepo) SetQuantity(_ context.Context, id string, quantity int64) error {
	box, ok := r.st.boxes[id]
	if !ok {
		return fmt.Errorf("set box %s: %w", id, domain.ErrNotFound)
	}
	box.Quantity = quantity
	box.UpdatedAt = time.Now()
	return nil
}

type locationRepo struct{ st *state }

func (r *locationRepo) GetByID(_ context.Context, id string) (*entity.Location, error) {
	loc, ok := r.st.locations[id]
	if !ok {
		return nil, nil
	}
	cp := *loc
	return &cp, nil
}

type saleRepo struct{ st *state }

func (r *saleRepo) Create(_ context.Context, sale *entity.Sale) error {
	if _, ok := r.st.sales[sale.ID]; ok {
		return fmt.Errorf("insert sale: %w", domain.ErrDuplicate)
	}
	cp := *sale
	r.st.sales[sale.ID] = &cp
	return nil
}

func (r *saleRepo) CreateLine(_ context.Context, line *entity.SaleLine) error {
	if _, ok := r.st.sales[line.SaleID]; !ok {
		return fmt.Errorf("insert sale line: venta %s: %w", line.SaleID, domain.ErrConsistency)
	}
	cp := *line
	r.st.saleLines[line.SaleID] = append(r.st.saleLines[line.SaleID], &cp)
	return nil
}

func (r *saleRepo) GetByID(_ context.Context, id string) (*entity.Sale, error) {
	sale, ok := r.st.sales[id]
	if !ok {
		return nil, nil
	}
	cp := *sale
	return &cp, nil
}

func (r *saleRepo) GetForUpdate(ctx context.Context, id string) (*entity.Sale, error) {
	return r.GetByID(ctx, id)
}

func (r *saleRepo) GetLines(_ context.Context, saleID string) ([]*entity.SaleLine, error) {
	lines := r.st.saleLines[saleID]
	out := make([]*entity.SaleLine, 0, len(lines))
	for _, l := range lines {
		cp := *l
		out = append(out, &cp)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

func (r *saleRepo) UpdateStatus(_ context.Context, id, status string) error {
	sale, ok := r.st.sales[id]
	if !ok {
		return fmt.Errorf("update sale status: %w", domain.ErrNotFound)
	}
	sale.Status = status
	sale.UpdatedAt = time.Now()
	return nil
}

type returnRepo struct{ st *state }

func (r *returnRepo) Create(_ context.Context, ret *entity.Return) error {
	if _, ok := r.st.sales[ret.SaleID]; !ok {
		return fmt.Errorf("insert return: venta %s: %w", ret.SaleID, domain.ErrConsistency)
	}
	cp := *ret
	r.st.returns[ret.ID] = &cp
	return nil
}

func (r *returnRepo) CreateLine(_ context.Context, line *entity.ReturnLine) error {
	if _, ok := r.st.returns[line.ReturnID]; !ok {
		return fmt.Errorf("insert return line: %w", domain.ErrConsistency)
	}
	cp := *line
	r.st.returnLines[line.ReturnID] = append(r.st.returnLines[line.ReturnID], &cp)
	return nil
}

func (r *returnRepo) GetByID(_ context.Context, id string) (*entity.Return, error) {
	ret, ok := r.st.returns[id]
	if !ok {
		return nil, nil
	}
	cp := *ret
	return &cp, nil
}

func (r *returnRepo) GetLines(_ context.Context, returnID string) ([]*entity.ReturnLine, error) {
	lines := r.st.returnLines[returnID]
	out := make([]*entity.ReturnLine, 0, len(lines))
	for _, l := range lines {
		cp := *l
		out = append(out, &cp)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

func (r *returnRepo) ReturnedQuantities(_ context.Context, saleID string) (map[string]int64, error) {
	out := make(map[string]int64)
	for id, ret := range r.st.returns {
		if ret.SaleID != saleID {
			continue
		}
		for _, l := range r.st.returnLines[id] {
			out[l.SaleLineID] += l.Quantity
		}
	}
	return out, nil
}

type transferRepo struct{ st *state }

func (r *transferRepo) Create(_ context.Context, shipment *entity.TransferShipment) error {
	if _, ok := r.st.transfers[shipment.ID]; ok {
		return fmt.Errorf("insert transfer: %w", domain.ErrDuplicate)
	}
	cp := *shipment
	r.st.transfers[shipment.ID] = &cp
	return nil
}

func (r *transferRepo) CreateLine(_ context.Context, line *entity.TransferLine) error {
	if _, ok := r.st.transfers[line.ShipmentID]; !ok {
		return fmt.Errorf("insert transfer line: %w", domain.ErrConsistency)
	}
	cp := *line
	r.st.transferLines[line.ShipmentID] = append(r.st.transferLines[line.ShipmentID], &cp)
	return nil
}

func (r *transferRepo) GetByID(_ context.Context, id string) (*entity.TransferShipment, error) {
	sh, ok := r.st.transfers[id]
	if !ok {
		return nil, nil
	}
	cp := *sh
	return &cp, nil
}

func (r *transferRepo) GetForUpdate(ctx context.Context, id string) (*entity.TransferShipment, error) {
	return r.GetByID(ctx, id)
}

func (r *transferRepo) GetLines(_ context.Context, shipmentID string) ([]*entity.TransferLine, error) {
	lines := r.st.transferLines[shipmentID]
	out := make([]*entity.TransferLine, 0, len(lines))
	for _, l := range lines {
		cp := *l
		out = append(out, &cp)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

func (r *transferRepo) MarkCompleted(_ context.Context, id string, at time.Time) error {
	sh, ok := r.st.transfers[id]
	if !ok {
		return fmt.Errorf("complete transfer: %w", domain.ErrNotFound)
	}
	sh.Status = entity.TransferCompleted
	sh.CompletedAt = &at
	return nil
}

func (r *transferRepo) MarkCancelled(_ context.Context, id, userID, reason string, at time.Time) error {
	sh, ok := r.st.transfers[id]
	if !ok {
		return fmt.Errorf("cancel transfer: %w", domain.ErrNotFound)
	}
	sh.Status = entity.TransferCancelled
	sh.CancelledAt = &at
	sh.CancelledBy = userID
	sh.CancelReason = reason
	return nil
}
