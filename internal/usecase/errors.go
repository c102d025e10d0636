package usecase

import (
	"errors"
	"fmt"
	"strings"
)

// ValidationError rejects missing or out-of-range input. The operation is
// not applied and the order is left unchanged.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Msg
	}
	return e.Field + ": " + e.Msg
}

// StockIssue describes one unsatisfiable order line.
type StockIssue struct {
	Name      string `json:"name"`
	Available int    `json:"available"`
	Required  int    `json:"required"`
	Missing   bool   `json:"missing"` // no ledger entry at all
}

// String renders the issue in the form surfaced verbatim to callers.
func (i StockIssue) String() string {
	if i.Missing {
		return i.Name + ": Not found in inventory"
	}
	return fmt.Sprintf("%s: Insufficient stock (Available: %d, Required: %d)", i.Name, i.Available, i.Required)
}

// InsufficientStockError names every line the ledger cannot satisfy.
type InsufficientStockError struct {
	Issues []StockIssue
}

func (e *InsufficientStockError) Error() string {
	msgs := make([]string, len(e.Issues))
	for idx, i := range e.Issues {
		msgs[idx] = i.String()
	}
	return "insufficient stock: " + strings.Join(msgs, "; ")
}

// NotFoundError identifies an unknown order, ledger entry, or plant.
type NotFoundError struct {
	Kind string
	ID   int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Kind, e.ID)
}

// TransientError wraps a store or broker failure the caller may retry.
// The core itself never retries.
type TransientError struct {
	Op  string
	Err error
}

func (e *TransientError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *TransientError) Unwrap() error { return e.Err }

func transient(op string, err error) error {
	if err == nil {
		return nil
	}
	// Typed failures pass through untouched.
	var nf *NotFoundError
	var is *InsufficientStockError
	var ve *ValidationError
	if errors.As(err, &nf) || errors.As(err, &is) || errors.As(err, &ve) {
		return err
	}
	return &TransientError{Op: op, Err: err}
}
