package queue

import (
	"context"
	"time"

	"github.com/janarabaya/Nursery-Management-System-sub000/internal/usecase"
)

// AnnotationHandler records storefront complaints and delay notices on
// orders. Presence of either annotation flags the order as a problem order
// on the next fetch; nothing else is stored.
type AnnotationHandler struct {
	Orders usecase.OrderStore
}

func NewAnnotationHandler(orders usecase.OrderStore) *AnnotationHandler {
	return &AnnotationHandler{Orders: orders}
}

// HandleAnnotation is intended to be used with queue.JSONHandler[usecase.AnnotationMsg].
func (h *AnnotationHandler) HandleAnnotation(ctx context.Context, msg usecase.AnnotationMsg) error {
	if msg.Complaint == "" && msg.DelayReason == "" {
		return nil // nothing to record; ack and move on
	}
	return h.Orders.SetAnnotations(ctx, msg.OrderID, msg.Complaint, msg.DelayReason, time.Now())
}
