package http

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/janarabaya/Nursery-Management-System-sub000/internal/logging"
	"github.com/janarabaya/Nursery-Management-System-sub000/internal/usecase"
	"github.com/shopspring/decimal"
)

type ResolutionHandler struct {
	resolution *usecase.Resolution
	orders     usecase.OrderStore
	idem       usecase.IdempotencyStore
	render     func(c *gin.Context, out *usecase.RemedyOutcome)
}

func NewResolutionHandler(res *usecase.Resolution, orders usecase.OrderStore,
	idem usecase.IdempotencyStore, oh *OrderHandler) *ResolutionHandler {
	return &ResolutionHandler{
		resolution: res,
		orders:     orders,
		idem:       idem,
		render: func(c *gin.Context, out *usecase.RemedyOutcome) {
			c.JSON(http.StatusOK, gin.H{
				"order":     oh.toResp(out.Order),
				"delegated": out.Delegated,
			})
		},
	}
}

type remedyReq struct {
	Kind string `json:"kind" binding:"required"`

	// postpone
	NewDeliveryDate string `json:"newDeliveryDate,omitempty"` // YYYY-MM-DD
	DelayNote       string `json:"delayNote,omitempty"`

	// compensate
	Compensation *struct {
		Mode               string  `json:"mode"`
		DiscountPercentage float64 `json:"discountPercentage,omitempty"`
		PlantID            int64   `json:"plantId,omitempty"`
		Quantity           int     `json:"quantity,omitempty"`
	} `json:"compensation,omitempty"`
}

// Remedy applies one remedy to a problem order. Requests carrying an
// X-Idempotency-Key are deduplicated: a replay returns the current order
// without reapplying the remedy.
func (h *ResolutionHandler) Remedy(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request", "message": "order id must be an integer"})
		return
	}

	var req remedyReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request"})
		return
	}

	ureq, verr := h.toRequest(id, req)
	if verr != nil {
		writeError(c, verr)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	idemKey := c.GetHeader("X-Idempotency-Key")
	scope := strconv.FormatInt(id, 10)
	if idemKey != "" {
		if _, seen, err := h.idem.Recall(ctx, scope, idemKey); err != nil {
			logging.From(c).Warn("idempotency store unavailable, continuing", "err", err)
		} else if seen {
			order, err := h.orders.Get(ctx, id)
			if err != nil {
				writeError(c, err)
				return
			}
			h.render(c, &usecase.RemedyOutcome{Order: order})
			return
		}
		ok, err := h.idem.TryLock(ctx, scope, idemKey)
		if err != nil {
			logging.From(c).Warn("idempotency store unavailable, continuing", "err", err)
		} else if !ok {
			c.JSON(http.StatusConflict, gin.H{"error": "duplicate_request"})
			return
		}
	}

	out, err := h.resolution.Resolve(ctx, ureq)
	if err != nil {
		writeError(c, err)
		return
	}
	if idemKey != "" {
		_ = h.idem.Remember(ctx, scope, idemKey, string(ureq.Kind))
	}
	h.render(c, out)
}

func (h *ResolutionHandler) toRequest(id int64, req remedyReq) (usecase.RemedyRequest, error) {
	out := usecase.RemedyRequest{
		OrderID:   id,
		Kind:      usecase.RemedyKind(req.Kind),
		DelayNote: req.DelayNote,
	}

	if req.NewDeliveryDate != "" {
		d, err := time.Parse("2006-01-02", req.NewDeliveryDate)
		if err != nil {
			return out, &usecase.ValidationError{Field: "newDeliveryDate", Msg: "expected YYYY-MM-DD"}
		}
		out.NewDeliveryDate = &d
	}

	if req.Compensation != nil {
		out.Compensation = &usecase.CompensationParams{
			Mode:               usecase.CompensationMode(req.Compensation.Mode),
			DiscountPercentage: decimal.NewFromFloat(req.Compensation.DiscountPercentage),
			PlantID:            req.Compensation.PlantID,
			Quantity:           req.Compensation.Quantity,
		}
	}
	return out, nil
}
