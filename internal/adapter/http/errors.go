package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/janarabaya/Nursery-Management-System-sub000/internal/usecase"
)

// writeError maps the core error taxonomy onto HTTP statuses. Stock issues
// are surfaced verbatim so the back-office can display them as-is.
func writeError(c *gin.Context, err error) {
	var ve *usecase.ValidationError
	if errors.As(err, &ve) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation_error", "message": ve.Error()})
		return
	}

	var nf *usecase.NotFoundError
	if errors.As(err, &nf) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found", "message": nf.Error()})
		return
	}

	var short *usecase.InsufficientStockError
	if errors.As(err, &short) {
		issues := make([]string, len(short.Issues))
		for i, issue := range short.Issues {
			issues[i] = issue.String()
		}
		c.JSON(http.StatusConflict, gin.H{"error": "insufficient_stock", "issues": issues})
		return
	}

	var tr *usecase.TransientError
	if errors.As(err, &tr) {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "transient_failure", "message": tr.Error()})
		return
	}

	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
}
