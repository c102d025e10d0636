package kafka

import (
	"context"
	"errors"

	"github.com/janarabaya/Nursery-Management-System-sub000/internal/logging"
	"github.com/janarabaya/Nursery-Management-System-sub000/internal/usecase"
)

// RestockHandler applies supplier restock events to the ledger.
type RestockHandler struct {
	Ledger usecase.InventoryLedger
}

func NewRestockHandler(ledger usecase.InventoryLedger) *RestockHandler {
	return &RestockHandler{Ledger: ledger}
}

func (h *RestockHandler) Handle(ctx context.Context, ev usecase.RestockMsg) error {
	if ev.Quantity <= 0 {
		logging.FromCtx(ctx).Warn("restock event with non-positive quantity dropped",
			"item_id", ev.ItemID, "qty", ev.Quantity)
		return nil // poison; acking avoids an endless redelivery loop
	}
	err := h.Ledger.Increment(ctx, ev.ItemID, ev.Quantity)
	var nf *usecase.NotFoundError
	if errors.As(err, &nf) {
		// Supplier shipped an item we no longer stock; log and ack.
		logging.FromCtx(ctx).Warn("restock for unknown ledger entry dropped", "item_id", ev.ItemID)
		return nil
	}
	return err
}
