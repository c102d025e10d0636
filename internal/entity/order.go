package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusApproved   Status = "approved"
	StatusPreparing  Status = "preparing"
	StatusDelivered  Status = "delivered"
	StatusControlled Status = "controlled"
	StatusCancelled  Status = "cancelled"
)

// AllStatuses lists every status the state machine knows about.
var AllStatuses = []Status{
	StatusPending, StatusApproved, StatusPreparing,
	StatusDelivered, StatusControlled, StatusCancelled,
}

var (
	ErrEmptyOrder     = errors.New("order has no lines")
	ErrInvalidLine    = errors.New("line quantity must be positive")
	ErrNegativeAmount = errors.New("total amount must be non-negative")
)

// Valid reports whether s is a known status value.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusPreparing,
		StatusDelivered, StatusControlled, StatusCancelled:
		return true
	}
	return false
}

// Terminal statuses accept no further transitions.
func (s Status) Terminal() bool {
	return s == StatusControlled || s == StatusCancelled
}

// CanTransition reports whether the status machine permits from -> to.
// cancelled is reachable from every non-terminal state; other targets are
// written unconditionally as long as the order is not already terminal.
func CanTransition(from, to Status) bool {
	if !from.Valid() || !to.Valid() {
		return false
	}
	if from.Terminal() {
		return false
	}
	return true
}

// Line is one item/quantity/price triple within an order. It references a
// ledger entry by id; it never carries a copy of on-hand stock.
type Line struct {
	InventoryItemID int64
	Name            string
	Quantity        int
	UnitPrice       decimal.Decimal
}

type Order struct {
	ID               int64
	Status           Status
	TotalAmount      decimal.Decimal
	Items            []Line
	PlacedAt         time.Time
	UpdatedAt        time.Time
	DeliveryDate     *time.Time
	Complaint        string
	DelayReason      string
	CompensationNote string
}

func (o *Order) Validate() error {
	if len(o.Items) == 0 {
		return ErrEmptyOrder
	}
	for _, l := range o.Items {
		if l.Quantity <= 0 {
			return ErrInvalidLine
		}
	}
	if o.TotalAmount.IsNegative() {
		return ErrNegativeAmount
	}
	return nil
}

// LargeOrder reports whether the total meets or exceeds the approval
// threshold (currency units).
func (o *Order) LargeOrder(threshold decimal.Decimal) bool {
	return o.TotalAmount.GreaterThanOrEqual(threshold)
}

// StockConsumed reports whether this order's lines have been decremented
// from the ledger (i.e. it passed through approved).
func (o *Order) StockConsumed() bool {
	switch o.Status {
	case StatusApproved, StatusPreparing, StatusDelivered, StatusControlled:
		return true
	}
	return false
}
