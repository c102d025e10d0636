package usecase

import (
	"context"
	"time"

	domain "github.com/janarabaya/Nursery-Management-System-sub000/internal/entity"
	"github.com/shopspring/decimal"
)

// OrderStore is the persistence port for orders. Implementations return
// *NotFoundError for unknown ids. Every write refreshes updated_at.
type OrderStore interface {
	Get(ctx context.Context, id int64) (*domain.Order, error)
	List(ctx context.Context) ([]*domain.Order, error)
	SetStatus(ctx context.Context, id int64, to domain.Status, at time.Time) error
	SetDeliveryDate(ctx context.Context, id int64, date time.Time, note string, at time.Time) error
	SetTotal(ctx context.Context, id int64, total decimal.Decimal, at time.Time) error
	SetCompensationNote(ctx context.Context, id int64, note string, at time.Time) error
	SetAnnotations(ctx context.Context, id int64, complaint, delayReason string, at time.Time) error
}

// InventoryLedger owns quantity_on_hand. Decrement re-checks sufficiency
// immediately before writing and returns *InsufficientStockError rather than
// clamping; it is the final authority after any earlier availability read.
type InventoryLedger interface {
	Get(ctx context.Context, itemID int64) (*domain.StockEntry, error)
	List(ctx context.Context) ([]*domain.StockEntry, error)
	Decrement(ctx context.Context, itemID int64, amount int) error
	Increment(ctx context.Context, itemID int64, amount int) error
}

// LifecycleStore binds a status write and its stock movements into one
// atomic unit: both apply or neither does.
type LifecycleStore interface {
	// ApproveAndDecrement writes status=approved and applies every
	// decrement; any shortfall rolls the whole operation back and is
	// reported as *InsufficientStockError covering all short lines.
	ApproveAndDecrement(ctx context.Context, orderID int64, moves []domain.StockMove, at time.Time) error
	// CancelAndRestock writes status=cancelled and returns the given
	// quantities to the ledger.
	CancelAndRestock(ctx context.Context, orderID int64, moves []domain.StockMove, at time.Time) error
}

// Catalog lists plants available for gift compensation.
type Catalog interface {
	Get(ctx context.Context, plantID int64) (*domain.Plant, error)
	List(ctx context.Context) ([]*domain.Plant, error)
}

// GiftCourier delivers a gift-fulfilment instruction to an employee.
// The gift is a goodwill add-on fulfilled out-of-band: it never creates an
// order line and never touches the ledger.
type GiftCourier interface {
	SendGiftInstruction(ctx context.Context, msg GiftInstructionMsg) error
}

// GiftInstructionMsg is published to the fulfilment queue.
type GiftInstructionMsg struct {
	InstructionID string `json:"instructionId"`
	OrderID       int64  `json:"orderId"`
	PlantID       int64  `json:"plantId"`
	PlantName     string `json:"plantName"`
	Quantity      int    `json:"quantity"`
}

// RestockMsg is consumed from the supplier-events topic.
type RestockMsg struct {
	ItemID   int64 `json:"itemId"`
	Quantity int   `json:"quantity"`
}

// AnnotationMsg carries a storefront complaint or delay notice onto an order.
type AnnotationMsg struct {
	OrderID     int64  `json:"orderId"`
	Complaint   string `json:"complaint,omitempty"`
	DelayReason string `json:"delayReason,omitempty"`
}

// IdempotencyStore deduplicates remedy requests at the API boundary.
type IdempotencyStore interface {
	TryLock(ctx context.Context, scope, key string) (bool, error)
	Remember(ctx context.Context, scope, key, value string) error
	Recall(ctx context.Context, scope, key string) (string, bool, error)
}
