package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	domain "github.com/janarabaya/Nursery-Management-System-sub000/internal/entity"
	"github.com/janarabaya/Nursery-Management-System-sub000/internal/logging"
)

// Transition drives the order status machine.
//
// approve carries the only inventory side effect: every line's quantity is
// decremented atomically with the status write. Re-approving an approved
// order is a no-op success (the decrement happened once). Cancelling an
// approved or preparing order restocks what was decremented; cancelling a
// delivered order does not (the goods already left the building).
type Transition struct {
	orders  OrderStore
	checker *AvailabilityChecker
	atomic  LifecycleStore
	now     func() time.Time
	log     *slog.Logger
}

func NewTransition(orders OrderStore, checker *AvailabilityChecker, atomic LifecycleStore) *Transition {
	return &Transition{
		orders:  orders,
		checker: checker,
		atomic:  atomic,
		now:     time.Now,
		log:     logging.New("transition"),
	}
}

// WithClock overrides the time source (tests).
func (uc *Transition) WithClock(now func() time.Time) *Transition {
	uc.now = now
	return uc
}

func (uc *Transition) Execute(ctx context.Context, orderID int64, target domain.Status) (*domain.Order, error) {
	if !target.Valid() {
		return nil, &ValidationError{Field: "status", Msg: "unknown status " + string(target)}
	}

	order, err := uc.orders.Get(ctx, orderID)
	if err != nil {
		return nil, transient("order get", err)
	}

	// Idempotent no-ops: repeating a terminal-ish write the machine has
	// already applied.
	if order.Status == target && (target == domain.StatusCancelled || target == domain.StatusApproved) {
		return order, nil
	}

	if !domain.CanTransition(order.Status, target) {
		transitionsTotal.WithLabelValues(string(target), "rejected").Inc()
		return nil, &ValidationError{
			Field: "status",
			Msg:   "cannot transition " + string(order.Status) + " order to " + string(target),
		}
	}

	at := uc.now()
	switch target {
	case domain.StatusApproved:
		if err := uc.approve(ctx, order, at); err != nil {
			return nil, err
		}
	case domain.StatusCancelled:
		if err := uc.cancel(ctx, order, at); err != nil {
			return nil, err
		}
	default:
		if err := uc.orders.SetStatus(ctx, order.ID, target, at); err != nil {
			transitionsTotal.WithLabelValues(string(target), "error").Inc()
			return nil, transient("status write", err)
		}
	}

	transitionsTotal.WithLabelValues(string(target), "ok").Inc()
	uc.log.InfoContext(ctx, "order transitioned",
		"order_id", order.ID, "from", order.Status, "to", target)

	order.Status = target
	order.UpdatedAt = at
	return order, nil
}

func (uc *Transition) approve(ctx context.Context, order *domain.Order, at time.Time) error {
	// An order consumes stock exactly once. Approved-to-approved is already
	// a no-op above; a preparing or delivered order going "back" to
	// approved must not decrement again.
	if order.StockConsumed() {
		return &ValidationError{
			Field: "status",
			Msg:   "order already consumed stock; cannot re-approve a " + string(order.Status) + " order",
		}
	}

	avail, err := uc.checker.Check(ctx, order)
	if err != nil {
		return err
	}
	if !avail.Available {
		stockRejections.Inc()
		transitionsTotal.WithLabelValues(string(domain.StatusApproved), "insufficient").Inc()
		return &InsufficientStockError{Issues: avail.Issues}
	}

	// The decrement below re-checks sufficiency at write time; concurrent
	// approvals that drained stock since the check above are rejected here
	// and nothing is applied.
	err = uc.atomic.ApproveAndDecrement(ctx, order.ID, domain.MovesFor(order), at)
	if err != nil {
		var short *InsufficientStockError
		if errors.As(err, &short) {
			stockRejections.Inc()
			transitionsTotal.WithLabelValues(string(domain.StatusApproved), "insufficient").Inc()
			return short
		}
		transitionsTotal.WithLabelValues(string(domain.StatusApproved), "error").Inc()
		return transient("approve", err)
	}
	return nil
}

func (uc *Transition) cancel(ctx context.Context, order *domain.Order, at time.Time) error {
	restock := order.Status == domain.StatusApproved || order.Status == domain.StatusPreparing
	if restock {
		if err := uc.atomic.CancelAndRestock(ctx, order.ID, domain.MovesFor(order), at); err != nil {
			transitionsTotal.WithLabelValues(string(domain.StatusCancelled), "error").Inc()
			return transient("cancel", err)
		}
		return nil
	}
	if err := uc.orders.SetStatus(ctx, order.ID, domain.StatusCancelled, at); err != nil {
		transitionsTotal.WithLabelValues(string(domain.StatusCancelled), "error").Inc()
		return transient("cancel", err)
	}
	return nil
}
