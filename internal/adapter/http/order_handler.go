package http

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	domain "github.com/janarabaya/Nursery-Management-System-sub000/internal/entity"
	"github.com/janarabaya/Nursery-Management-System-sub000/internal/usecase"
	"github.com/shopspring/decimal"
)

type OrderHandler struct {
	orders     usecase.OrderStore
	transition *usecase.Transition
	resolution *usecase.Resolution
	threshold  decimal.Decimal
}

func NewOrderHandler(orders usecase.OrderStore, tr *usecase.Transition,
	res *usecase.Resolution, threshold decimal.Decimal) *OrderHandler {
	return &OrderHandler{orders: orders, transition: tr, resolution: res, threshold: threshold}
}

type lineResp struct {
	InventoryItemID int64  `json:"inventoryItemId"`
	Name            string `json:"name"`
	Quantity        int    `json:"quantity"`
	UnitPrice       string `json:"unitPrice"`
}

type orderResp struct {
	ID               int64      `json:"id"`
	Status           string     `json:"status"`
	TotalAmount      string     `json:"totalAmount"`
	Items            []lineResp `json:"items"`
	PlacedAt         time.Time  `json:"placedAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
	DeliveryDate     *time.Time `json:"deliveryDate,omitempty"`
	Complaint        string     `json:"complaint,omitempty"`
	DelayReason      string     `json:"delayReason,omitempty"`
	CompensationNote string     `json:"compensationNote,omitempty"`
	IsLargeOrder     bool       `json:"isLargeOrder"`
}

func (h *OrderHandler) toResp(o *domain.Order) orderResp {
	items := make([]lineResp, len(o.Items))
	for i, l := range o.Items {
		items[i] = lineResp{
			InventoryItemID: l.InventoryItemID,
			Name:            l.Name,
			Quantity:        l.Quantity,
			UnitPrice:       l.UnitPrice.String(),
		}
	}
	return orderResp{
		ID:               o.ID,
		Status:           string(o.Status),
		TotalAmount:      o.TotalAmount.String(),
		Items:            items,
		PlacedAt:         o.PlacedAt,
		UpdatedAt:        o.UpdatedAt,
		DeliveryDate:     o.DeliveryDate,
		Complaint:        o.Complaint,
		DelayReason:      o.DelayReason,
		CompensationNote: o.CompensationNote,
		IsLargeOrder:     o.LargeOrder(h.threshold),
	}
}

func (h *OrderHandler) ListOrders(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	orders, err := h.orders.List(ctx)
	if err != nil {
		writeError(c, err)
		return
	}
	out := make([]orderResp, len(orders))
	for i, o := range orders {
		out[i] = h.toResp(o)
	}
	c.JSON(http.StatusOK, gin.H{"orders": out})
}

func (h *OrderHandler) GetOrderByID(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request", "message": "order id must be an integer"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	order, err := h.orders.Get(ctx, id)
	if err != nil {
		writeError(c, err)
		return
	}

	// Problem membership is derived on every fetch, never stored.
	problem, err := h.resolution.Classify(ctx, order)
	if err != nil {
		writeError(c, err)
		return
	}

	resp := gin.H{"order": h.toResp(order)}
	if len(problem.Reasons) > 0 {
		resp["problemReasons"] = problem.Reasons
		if len(problem.StockIssues) > 0 {
			issues := make([]string, len(problem.StockIssues))
			for i, issue := range problem.StockIssues {
				issues[i] = issue.String()
			}
			resp["stockIssues"] = issues
		}
	}
	c.JSON(http.StatusOK, resp)
}

type transitionReq struct {
	Status string `json:"status" binding:"required"`
}

// TransitionOrder moves an order through the status machine; approving
// decrements the ledger atomically with the status write.
func (h *OrderHandler) TransitionOrder(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request", "message": "order id must be an integer"})
		return
	}

	var req transitionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	order, err := h.transition.Execute(ctx, id, domain.Status(req.Status))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": h.toResp(order)})
}

func (h *OrderHandler) ProblemOrders(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	problems, err := h.resolution.ProblemOrders(ctx)
	if err != nil {
		writeError(c, err)
		return
	}

	out := make([]gin.H, len(problems))
	for i, p := range problems {
		entry := gin.H{
			"order":   h.toResp(p.Order),
			"reasons": p.Reasons,
		}
		if len(p.StockIssues) > 0 {
			issues := make([]string, len(p.StockIssues))
			for j, issue := range p.StockIssues {
				issues[j] = issue.String()
			}
			entry["stockIssues"] = issues
		}
		out[i] = entry
	}
	c.JSON(http.StatusOK, gin.H{"problemOrders": out})
}
