package http

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	domain "github.com/janarabaya/Nursery-Management-System-sub000/internal/entity"
	"github.com/janarabaya/Nursery-Management-System-sub000/internal/usecase"
)

type InventoryHandler struct {
	ledger  usecase.InventoryLedger
	catalog usecase.Catalog
}

func NewInventoryHandler(ledger usecase.InventoryLedger, catalog usecase.Catalog) *InventoryHandler {
	return &InventoryHandler{ledger: ledger, catalog: catalog}
}

func entryResp(e *domain.StockEntry) gin.H {
	return gin.H{
		"id":             e.ID,
		"name":           e.Name,
		"quantityOnHand": e.QuantityOnHand,
		"reorderLevel":   e.ReorderLevel,
		"belowReorder":   e.BelowReorder(),
	}
}

func (h *InventoryHandler) ListEntries(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	entries, err := h.ledger.List(ctx)
	if err != nil {
		writeError(c, err)
		return
	}
	out := make([]gin.H, len(entries))
	for i, e := range entries {
		out[i] = entryResp(e)
	}
	c.JSON(http.StatusOK, gin.H{"inventory": out})
}

func (h *InventoryHandler) GetEntry(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request", "message": "item id must be an integer"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	entry, err := h.ledger.Get(ctx, id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, entryResp(entry))
}

// ListPlants serves the catalog for the gift picker.
func (h *InventoryHandler) ListPlants(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	plants, err := h.catalog.List(ctx)
	if err != nil {
		writeError(c, err)
		return
	}
	out := make([]gin.H, len(plants))
	for i, p := range plants {
		out[i] = gin.H{"id": p.ID, "name": p.Name}
	}
	c.JSON(http.StatusOK, gin.H{"plants": out})
}
