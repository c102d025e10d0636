// Package memstore holds lock-based in-memory implementations of the
// storage ports. One mutex covers orders and ledger together, which makes
// the combined approve/cancel operations atomic the same way the MySQL
// transaction does.
package memstore

import (
	"context"
	"sync"
	"time"

	domain "github.com/janarabaya/Nursery-Management-System-sub000/internal/entity"
	"github.com/janarabaya/Nursery-Management-System-sub000/internal/usecase"
	"github.com/shopspring/decimal"
)

type Store struct {
	mu      sync.Mutex
	orders  map[int64]*domain.Order
	ledger  map[int64]*domain.StockEntry
	catalog map[int64]*domain.Plant
}

func New() *Store {
	return &Store{
		orders:  make(map[int64]*domain.Order),
		ledger:  make(map[int64]*domain.StockEntry),
		catalog: make(map[int64]*domain.Plant),
	}
}

// PutOrder seeds or replaces an order.
func (s *Store) PutOrder(o *domain.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := cloneOrder(o)
	s.orders[o.ID] = cp
}

// PutEntry seeds or replaces a ledger entry.
func (s *Store) PutEntry(e *domain.StockEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *e
	s.ledger[e.ID] = &cp
}

// PutPlant seeds or replaces a catalog plant.
func (s *Store) PutPlant(p *domain.Plant) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *p
	s.catalog[p.ID] = &cp
}

// --- usecase.OrderStore ---

func (s *Store) Get(ctx context.Context, id int64) (*domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return nil, &usecase.NotFoundError{Kind: "order", ID: id}
	}
	return cloneOrder(o), nil
}

func (s *Store) List(ctx context.Context) ([]*domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*domain.Order, 0, len(s.orders))
	for _, o := range s.orders {
		out = append(out, cloneOrder(o))
	}
	return out, nil
}

func (s *Store) SetStatus(ctx context.Context, id int64, to domain.Status, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return &usecase.NotFoundError{Kind: "order", ID: id}
	}
	o.Status = to
	o.UpdatedAt = at
	return nil
}

func (s *Store) SetDeliveryDate(ctx context.Context, id int64, date time.Time, note string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return &usecase.NotFoundError{Kind: "order", ID: id}
	}
	d := date
	o.DeliveryDate = &d
	o.DelayReason = note
	o.UpdatedAt = at
	return nil
}

func (s *Store) SetTotal(ctx context.Context, id int64, total decimal.Decimal, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return &usecase.NotFoundError{Kind: "order", ID: id}
	}
	o.TotalAmount = total
	o.UpdatedAt = at
	return nil
}

func (s *Store) SetCompensationNote(ctx context.Context, id int64, note string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return &usecase.NotFoundError{Kind: "order", ID: id}
	}
	o.CompensationNote = note
	o.UpdatedAt = at
	return nil
}

func (s *Store) SetAnnotations(ctx context.Context, id int64, complaint, delayReason string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return &usecase.NotFoundError{Kind: "order", ID: id}
	}
	if complaint != "" {
		o.Complaint = complaint
	}
	if delayReason != "" {
		o.DelayReason = delayReason
	}
	o.UpdatedAt = at
	return nil
}

// --- usecase.InventoryLedger ---

func (s *Store) GetEntry(ctx context.Context, itemID int64) (*domain.StockEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.entryLocked(itemID)
}

func (s *Store) ListEntries(ctx context.Context) ([]*domain.StockEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*domain.StockEntry, 0, len(s.ledger))
	for _, e := range s.ledger {
		cp := *e
		out = append(out, &cp)
	}
	return out, nil
}

func (s *Store) Decrement(ctx context.Context, itemID int64, amount int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.decrementLocked(itemID, amount)
}

func (s *Store) Increment(ctx context.Context, itemID int64, amount int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.ledger[itemID]
	if !ok {
		return &usecase.NotFoundError{Kind: "inventory item", ID: itemID}
	}
	e.QuantityOnHand += amount
	return nil
}

// --- usecase.LifecycleStore ---

func (s *Store) ApproveAndDecrement(ctx context.Context, orderID int64, moves []domain.StockMove, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[orderID]
	if !ok {
		return &usecase.NotFoundError{Kind: "order", ID: orderID}
	}
	// Only a pending order consumes stock; a racing approval that got here
	// first already decremented, so the loser is a no-op.
	if o.Status == domain.StatusApproved {
		return nil
	}
	if o.Status != domain.StatusPending {
		return &usecase.ValidationError{
			Field: "status",
			Msg:   "cannot transition " + string(o.Status) + " order to " + string(domain.StatusApproved),
		}
	}

	// Validate every move before touching anything, so a shortfall leaves
	// the ledger exactly as it was.
	var issues []usecase.StockIssue
	for _, m := range moves {
		e, ok := s.ledger[m.ItemID]
		if !ok {
			issues = append(issues, usecase.StockIssue{Name: m.Name, Required: m.Qty, Missing: true})
			continue
		}
		if e.QuantityOnHand < m.Qty {
			issues = append(issues, usecase.StockIssue{Name: m.Name, Available: e.QuantityOnHand, Required: m.Qty})
		}
	}
	if len(issues) > 0 {
		return &usecase.InsufficientStockError{Issues: issues}
	}

	for _, m := range moves {
		s.ledger[m.ItemID].QuantityOnHand -= m.Qty
	}
	o.Status = domain.StatusApproved
	o.UpdatedAt = at
	return nil
}

func (s *Store) CancelAndRestock(ctx context.Context, orderID int64, moves []domain.StockMove, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[orderID]
	if !ok {
		return &usecase.NotFoundError{Kind: "order", ID: orderID}
	}
	if o.Status == domain.StatusCancelled {
		return nil
	}
	if o.Status != domain.StatusApproved && o.Status != domain.StatusPreparing {
		return &usecase.ValidationError{
			Field: "status",
			Msg:   "cannot transition " + string(o.Status) + " order to " + string(domain.StatusCancelled),
		}
	}
	for _, m := range moves {
		if e, ok := s.ledger[m.ItemID]; ok {
			e.QuantityOnHand += m.Qty
		}
	}
	o.Status = domain.StatusCancelled
	o.UpdatedAt = at
	return nil
}

// --- usecase.Catalog ---

func (s *Store) GetPlant(ctx context.Context, plantID int64) (*domain.Plant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.catalog[plantID]
	if !ok {
		return nil, &usecase.NotFoundError{Kind: "plant", ID: plantID}
	}
	cp := *p
	return &cp, nil
}

func (s *Store) ListPlants(ctx context.Context) ([]*domain.Plant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*domain.Plant, 0, len(s.catalog))
	for _, p := range s.catalog {
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}

func (s *Store) entryLocked(itemID int64) (*domain.StockEntry, error) {
	e, ok := s.ledger[itemID]
	if !ok {
		return nil, &usecase.NotFoundError{Kind: "inventory item", ID: itemID}
	}
	cp := *e
	return &cp, nil
}

func (s *Store) decrementLocked(itemID int64, amount int) error {
	e, ok := s.ledger[itemID]
	if !ok {
		return &usecase.NotFoundError{Kind: "inventory item", ID: itemID}
	}
	if e.QuantityOnHand < amount {
		return &usecase.InsufficientStockError{Issues: []usecase.StockIssue{
			{Name: e.Name, Available: e.QuantityOnHand, Required: amount},
		}}
	}
	e.QuantityOnHand -= amount
	return nil
}

// Ledger exposes the store through the InventoryLedger port.
func (s *Store) Ledger() usecase.InventoryLedger { return ledgerView{s} }

// Plants exposes the store through the Catalog port.
func (s *Store) Plants() usecase.Catalog { return catalogView{s} }

type ledgerView struct{ s *Store }

func (v ledgerView) Get(ctx context.Context, itemID int64) (*domain.StockEntry, error) {
	return v.s.GetEntry(ctx, itemID)
}

func (v ledgerView) List(ctx context.Context) ([]*domain.StockEntry, error) {
	return v.s.ListEntries(ctx)
}

func (v ledgerView) Decrement(ctx context.Context, itemID int64, amount int) error {
	return v.s.Decrement(ctx, itemID, amount)
}

func (v ledgerView) Increment(ctx context.Context, itemID int64, amount int) error {
	return v.s.Increment(ctx, itemID, amount)
}

type catalogView struct{ s *Store }

func (v catalogView) Get(ctx context.Context, plantID int64) (*domain.Plant, error) {
	return v.s.GetPlant(ctx, plantID)
}

func (v catalogView) List(ctx context.Context) ([]*domain.Plant, error) {
	return v.s.ListPlants(ctx)
}

var (
	_ usecase.OrderStore     = (*Store)(nil)
	_ usecase.LifecycleStore = (*Store)(nil)
)

func cloneOrder(o *domain.Order) *domain.Order {
	cp := *o
	cp.Items = append([]domain.Line(nil), o.Items...)
	if o.DeliveryDate != nil {
		d := *o.DeliveryDate
		cp.DeliveryDate = &d
	}
	return &cp
}
