// Package memory implementa los repositorios del motor en memoria.
// Cada transacción trabaja sobre una copia del estado; el commit la publica y cualquier error la descarta.
// Se usa con DB_DRIVER=memory y como doble de la base de datos en los tests.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/jhoicas/retail-stock-api/internal/application/inventory"
	"github.com/jhoicas/retail-stock-api/internal/domain/entity"
)

var _ inventory.TxRunner = (*Store)(nil)

// Store estado en memoria protegido por un mutex: las transacciones se serializan.
type Store struct {
	mu   sync.Mutex
	data *state
}

// NewStore crea un store vacío.
func NewStore() *Store {
	return &Store{data: newState()}
}

type state struct {
	locations     map[string]*entity.Location
	stock         map[entity.StockKey]*entity.StockLine
	boxes         map[string]*entity.WarehouseBox
	movements     []*entity.Movement
	sales         map[string]*entity.Sale
	saleLines     map[string][]*entity.SaleLine
	returns       map[string]*entity.Return
	returnLines   map[string][]*entity.ReturnLine
	transfers     map[string]*entity.TransferShipment
	transferLines map[string][]*entity.TransferLine
}

func newState() *state {
	return &state{
		locations:     make(map[string]*entity.Location),
		stock:         make(map[entity.StockKey]*entity.StockLine),
		boxes:         make(map[string]*entity.WarehouseBox),
		sales:         make(map[string]*entity.Sale),
		saleLines:     make(map[string][]*entity.SaleLine),
		returns:       make(map[string]*entity.Return),
		returnLines:   make(map[string][]*entity.ReturnLine),
		transfers:     make(map[string]*entity.TransferShipment),
		transferLines: make(map[string][]*entity.TransferLine),
	}
}

// clone copia el estado. Los valores se copian por struct; movimientos y líneas son inmutables.
func (s *state) clone() *state {
	c := newState()
	for k, v := range s.locations {
		cp := *v
		c.locations[k] = &cp
	}
	for k, v := range s.stock {
		cp := *v
		c.stock[k] = &cp
	}
	for k, v := range s.boxes {
		cp := *v
		c.boxes[k] = &cp
	}
	c.movements = append(c.movements, s.movements...)
	for k, v := range s.sales {
		cp := *v
		c.sales[k] = &cp
	}
	for k, v := range s.saleLines {
		c.saleLines[k] = append([]*entity.SaleLine(nil), v...)
	}
	for k, v := range s.returns {
		cp := *v
		c.returns[k] = &cp
	}
	for k, v := range s.returnLines {
		c.returnLines[k] = append([]*entity.ReturnLine(nil), v...)
	}
	for k, v := range s.transfers {
		cp := *v
		c.transfers[k] = &cp
	}
	for k, v := range s.transferLines {
		c.transferLines[k] = append([]*entity.TransferLine(nil), v...)
	}
	return c
}

// Run ejecuta fn sobre una copia del estado y la publica solo si fn no devuelve error.
func (s *Store) Run(ctx context.Context, fn func(tx inventory.TxRepos) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.data.clone()
	if err := fn(reposFor(work)); err != nil {
		return err
	}
	s.data = work
	return nil
}

func reposFor(st *state) inventory.TxRepos {
	return inventory.TxRepos{
		Stock:     &stockRepo{st: st},
		Movements: &movementRepo{st: st},
		Boxes:     &boxRepo{st: st},
		Locations: &locationRepo{st: st},
		Sales:     &saleRepo{st: st},
		Returns:   &returnRepo{st: st},
		Transfers: &transferRepo{st: st},
	}
}

// ── Carga inicial y lectura directa (seed de desarrollo y tests) ─────────────

// AddLocation registra una sede.
func (s *Store) AddLocation(loc entity.Location) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if loc.CreatedAt.IsZero() {
		loc.CreatedAt = time.Now()
	}
	s.data.locations[loc.ID] = &loc
}

// RemoveLocation elimina una sede (simula una sede borrada por fuera del motor).
func (s *Store) RemoveLocation(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data.locations, id)
}

// AddBox registra una caja de bodega.
func (s *Store) AddBox(box entity.WarehouseBox) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.boxes[box.ID] = &box
}

// PutStock fija la cantidad de una línea de stock, creándola si no existe.
func (s *Store) PutStock(key entity.StockKey, qty int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	line, ok := s.data.stock[key]
	if !ok {
		line = &entity.StockLine{StockKey: key}
		s.data.stock[key] = line
	}
	line.CurrentStock = qty
	line.UpdatedAt = time.Now()
}

// SetMinimum fija el umbral de reposición de una línea existente.
func (s *Store) SetMinimum(key entity.StockKey, minimum int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if line, ok := s.data.stock[key]; ok {
		line.MinimumStock = &minimum
	}
}

// StockOf devuelve la cantidad actual de una línea (0 si no existe).
func (s *Store) StockOf(key entity.StockKey) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if line, ok := s.data.stock[key]; ok {
		return line.CurrentStock
	}
	return 0
}

// BoxQuantity devuelve la cantidad de una caja (0 si no existe).
func (s *Store) BoxQuantity(id string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if box, ok := s.data.boxes[id]; ok {
		return box.Quantity
	}
	return 0
}

// Movements devuelve una copia de todos los movimientos confirmados.
func (s *Store) Movements() []entity.Movement {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]entity.Movement, 0, len(s.data.movements))
	for _, m := range s.data.movements {
		out = append(out, *m)
	}
	return out
}

// Counts devuelve el número de ventas, devoluciones y traslados confirmados.
func (s *Store) Counts() (sales, returns, transfers int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.data.sales), len(s.data.returns), len(s.data.transfers)
}
