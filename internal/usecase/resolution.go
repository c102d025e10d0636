package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	domain "github.com/janarabaya/Nursery-Management-System-sub000/internal/entity"
	"github.com/janarabaya/Nursery-Management-System-sub000/internal/logging"
	"github.com/shopspring/decimal"
)

type RemedyKind string

const (
	RemedyModify     RemedyKind = "modify"
	RemedyCancel     RemedyKind = "cancel"
	RemedyPostpone   RemedyKind = "postpone"
	RemedyCompensate RemedyKind = "compensate"
)

type CompensationMode string

const (
	CompensationDiscount CompensationMode = "discount"
	CompensationGift     CompensationMode = "gift"
)

// RemedyRequest is an explicit remedy selection, decoupled from any
// presentation state. Exactly one remedy applies per invocation.
type RemedyRequest struct {
	OrderID         int64
	Kind            RemedyKind
	NewDeliveryDate *time.Time
	DelayNote       string
	Compensation    *CompensationParams
}

type CompensationParams struct {
	Mode               CompensationMode
	DiscountPercentage decimal.Decimal
	PlantID            int64
	Quantity           int
}

// RemedyOutcome reports what was applied. Delegated is set for modify,
// which hands off to the external order-editing surface without mutating
// anything here.
type RemedyOutcome struct {
	Order     *domain.Order
	Delegated bool
}

// ProblemOrder is the derived problem classification for one order. It is
// recomputed on every fetch; nothing here is stored.
type ProblemOrder struct {
	Order       *domain.Order
	Reasons     []string
	StockIssues []StockIssue
	LargeOrder  bool
}

// Resolution classifies problem orders and applies remedies.
type Resolution struct {
	orders     OrderStore
	checker    *AvailabilityChecker
	transition *Transition
	catalog    Catalog
	courier    GiftCourier
	threshold  decimal.Decimal
	now        func() time.Time
	log        *slog.Logger
}

// NewResolution wires the engine. threshold is the large-order approval
// threshold in currency units (configured, default 3000).
func NewResolution(orders OrderStore, checker *AvailabilityChecker, tr *Transition,
	catalog Catalog, courier GiftCourier, threshold decimal.Decimal) *Resolution {
	return &Resolution{
		orders:     orders,
		checker:    checker,
		transition: tr,
		catalog:    catalog,
		courier:    courier,
		threshold:  threshold,
		now:        time.Now,
		log:        logging.New("resolution"),
	}
}

// WithClock overrides the time source (tests).
func (r *Resolution) WithClock(now func() time.Time) *Resolution {
	r.now = now
	return r
}

// Classify derives the problem flags for one order.
func (r *Resolution) Classify(ctx context.Context, order *domain.Order) (*ProblemOrder, error) {
	p := &ProblemOrder{Order: order, LargeOrder: order.LargeOrder(r.threshold)}
	if order.Complaint != "" {
		p.Reasons = append(p.Reasons, "complaint")
	}
	if order.DelayReason != "" {
		p.Reasons = append(p.Reasons, "delay")
	}
	if order.Status == domain.StatusCancelled {
		p.Reasons = append(p.Reasons, "cancelled")
	}
	avail, err := r.checker.Check(ctx, order)
	if err != nil {
		return nil, err
	}
	if !avail.Available {
		p.Reasons = append(p.Reasons, "stock")
		p.StockIssues = avail.Issues
	}
	return p, nil
}

// ProblemOrders returns every order currently needing manager attention.
func (r *Resolution) ProblemOrders(ctx context.Context) ([]*ProblemOrder, error) {
	orders, err := r.orders.List(ctx)
	if err != nil {
		return nil, transient("order list", err)
	}
	var out []*ProblemOrder
	for _, o := range orders {
		p, err := r.Classify(ctx, o)
		if err != nil {
			return nil, err
		}
		if len(p.Reasons) > 0 {
			out = append(out, p)
		}
	}
	return out, nil
}

// Resolve applies exactly one remedy.
func (r *Resolution) Resolve(ctx context.Context, req RemedyRequest) (*RemedyOutcome, error) {
	out, err := r.resolve(ctx, req)
	result := "ok"
	if err != nil {
		result = "error"
	}
	remediesTotal.WithLabelValues(string(req.Kind), result).Inc()
	return out, err
}

func (r *Resolution) resolve(ctx context.Context, req RemedyRequest) (*RemedyOutcome, error) {
	switch req.Kind {
	case RemedyModify:
		// Order editing lives in its own surface; nothing changes here.
		order, err := r.orders.Get(ctx, req.OrderID)
		if err != nil {
			return nil, transient("order get", err)
		}
		return &RemedyOutcome{Order: order, Delegated: true}, nil

	case RemedyCancel:
		order, err := r.transition.Execute(ctx, req.OrderID, domain.StatusCancelled)
		if err != nil {
			return nil, err
		}
		return &RemedyOutcome{Order: order}, nil

	case RemedyPostpone:
		return r.postpone(ctx, req)

	case RemedyCompensate:
		return r.compensate(ctx, req)
	}
	return nil, &ValidationError{Field: "kind", Msg: "unknown remedy " + string(req.Kind)}
}

func (r *Resolution) postpone(ctx context.Context, req RemedyRequest) (*RemedyOutcome, error) {
	if req.NewDeliveryDate == nil {
		return nil, &ValidationError{Field: "newDeliveryDate", Msg: "delivery date required"}
	}
	today := dateOnly(r.now())
	if dateOnly(*req.NewDeliveryDate).Before(today) {
		return nil, &ValidationError{Field: "newDeliveryDate", Msg: "delivery date must not be in the past"}
	}

	order, err := r.orders.Get(ctx, req.OrderID)
	if err != nil {
		return nil, transient("order get", err)
	}
	if order.Status.Terminal() {
		return nil, &ValidationError{Field: "status", Msg: "cannot postpone a " + string(order.Status) + " order"}
	}

	at := r.now()
	note := req.DelayNote
	if note == "" {
		note = "delivery postponed to " + req.NewDeliveryDate.Format("2006-01-02")
	}
	if err := r.orders.SetDeliveryDate(ctx, order.ID, *req.NewDeliveryDate, note, at); err != nil {
		return nil, transient("delivery date write", err)
	}

	d := *req.NewDeliveryDate
	order.DeliveryDate = &d
	order.DelayReason = note
	order.UpdatedAt = at
	r.log.InfoContext(ctx, "order postponed", "order_id", order.ID, "delivery_date", d.Format("2006-01-02"))
	return &RemedyOutcome{Order: order}, nil
}

func (r *Resolution) compensate(ctx context.Context, req RemedyRequest) (*RemedyOutcome, error) {
	if req.Compensation == nil {
		return nil, &ValidationError{Field: "compensation", Msg: "compensation parameters required"}
	}
	switch req.Compensation.Mode {
	case CompensationDiscount:
		return r.discount(ctx, req.OrderID, req.Compensation.DiscountPercentage)
	case CompensationGift:
		return r.gift(ctx, req.OrderID, req.Compensation.PlantID, req.Compensation.Quantity)
	}
	return nil, &ValidationError{Field: "compensation.mode", Msg: "mode must be discount or gift"}
}

var oneHundred = decimal.NewFromInt(100)

func (r *Resolution) discount(ctx context.Context, orderID int64, pct decimal.Decimal) (*RemedyOutcome, error) {
	if pct.LessThanOrEqual(decimal.Zero) || pct.GreaterThan(oneHundred) {
		return nil, &ValidationError{Field: "discountPercentage", Msg: "must be greater than 0 and at most 100"}
	}

	order, err := r.orders.Get(ctx, orderID)
	if err != nil {
		return nil, transient("order get", err)
	}

	factor := decimal.NewFromInt(1).Sub(pct.Div(oneHundred))
	newTotal := order.TotalAmount.Mul(factor).Round(2)

	at := r.now()
	if err := r.orders.SetTotal(ctx, order.ID, newTotal, at); err != nil {
		return nil, transient("total write", err)
	}
	note := fmt.Sprintf("%s%% discount applied", pct.String())
	if err := r.orders.SetCompensationNote(ctx, order.ID, note, at); err != nil {
		return nil, transient("compensation note", err)
	}

	order.TotalAmount = newTotal
	order.CompensationNote = note
	order.UpdatedAt = at
	r.log.InfoContext(ctx, "discount applied", "order_id", order.ID, "pct", pct.String(), "total", newTotal.String())
	return &RemedyOutcome{Order: order}, nil
}

func (r *Resolution) gift(ctx context.Context, orderID, plantID int64, qty int) (*RemedyOutcome, error) {
	if qty <= 0 {
		return nil, &ValidationError{Field: "quantity", Msg: "gift quantity must be positive"}
	}
	plant, err := r.catalog.Get(ctx, plantID)
	if err != nil {
		return nil, transient("catalog get", err)
	}

	order, err := r.orders.Get(ctx, orderID)
	if err != nil {
		return nil, transient("order get", err)
	}

	// Fulfilled by hand: the instruction goes to an employee. No order
	// line, no ledger movement, no billing change.
	msg := GiftInstructionMsg{
		InstructionID: uuid.NewString(),
		OrderID:       order.ID,
		PlantID:       plant.ID,
		PlantName:     plant.Name,
		Quantity:      qty,
	}
	if err := r.courier.SendGiftInstruction(ctx, msg); err != nil {
		return nil, transient("gift instruction", err)
	}

	at := r.now()
	note := fmt.Sprintf("gift: %d x %s", qty, plant.Name)
	if err := r.orders.SetCompensationNote(ctx, order.ID, note, at); err != nil {
		return nil, transient("compensation note", err)
	}

	order.CompensationNote = note
	order.UpdatedAt = at
	r.log.InfoContext(ctx, "gift instruction sent",
		"order_id", order.ID, "plant", plant.Name, "qty", qty, "instruction_id", msg.InstructionID)
	return &RemedyOutcome{Order: order}, nil
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
