package usecase

import (
	"context"
	"errors"

	domain "github.com/janarabaya/Nursery-Management-System-sub000/internal/entity"
)

// Availability is the result of checking every order line against the
// ledger. Available is true iff Issues is empty.
type Availability struct {
	Available bool
	Issues    []StockIssue
}

// IssueStrings renders the issues in display form.
func (a Availability) IssueStrings() []string {
	out := make([]string, len(a.Issues))
	for i, issue := range a.Issues {
		out[i] = issue.String()
	}
	return out
}

// AvailabilityChecker compares required quantities against ledger
// quantities. It never mutates anything and is safe to call concurrently;
// it gates the approve transition and flags problem orders.
type AvailabilityChecker struct {
	ledger InventoryLedger
}

func NewAvailabilityChecker(ledger InventoryLedger) *AvailabilityChecker {
	return &AvailabilityChecker{ledger: ledger}
}

func (c *AvailabilityChecker) Check(ctx context.Context, order *domain.Order) (Availability, error) {
	var issues []StockIssue
	for _, line := range order.Items {
		entry, err := c.ledger.Get(ctx, line.InventoryItemID)
		if err != nil {
			var nf *NotFoundError
			if errors.As(err, &nf) {
				issues = append(issues, StockIssue{Name: line.Name, Required: line.Quantity, Missing: true})
				continue
			}
			return Availability{}, transient("ledger get", err)
		}
		if entry.QuantityOnHand < line.Quantity {
			issues = append(issues, StockIssue{
				Name:      line.Name,
				Available: entry.QuantityOnHand,
				Required:  line.Quantity,
			})
		}
	}
	return Availability{Available: len(issues) == 0, Issues: issues}, nil
}
