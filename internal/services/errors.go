// internal/services/errors.go
package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/keebworks/keebpos-backend/internal/models"
)

var (
	// ErrValidation wraps missing or malformed input caught before persistence.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound means the id has no corresponding row in the partition.
	ErrNotFound = errors.New("item not found")

	// ErrInsufficientStock means a stock decrement would take quantity below zero.
	ErrInsufficientStock = errors.New("not enough stock")

	// ErrDuplicateInvoice means the ledger already holds that invoice number.
	ErrDuplicateInvoice = errors.New("invoice number already exists")
)

// LineOutcome records what happened to one coalesced line during checkout
// reconciliation: whether its stock/sold mutation was applied, and why not.
type LineOutcome struct {
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	Category  models.Category `json:"category"`
	Quantity  int             `json:"quantity"`
	Applied   bool            `json:"applied"`
	Reason    string          `json:"reason,omitempty"`
}

// PartialReconciliationError is returned when the ledger write succeeded but
// one or more stock/sold mutations failed. The transaction row is kept; the
// outcomes tell the operator exactly which lines need manual reconciliation.
type PartialReconciliationError struct {
	InvoiceNo string        `json:"invoice_no"`
	Outcomes  []LineOutcome `json:"outcomes"`
}

func (e *PartialReconciliationError) Error() string {
	failed := 0
	for _, o := range e.Outcomes {
		if !o.Applied {
			failed++
		}
	}
	return fmt.Sprintf("transaction %s recorded but %d of %d line(s) could not be reconciled against stock",
		e.InvoiceNo, failed, len(e.Outcomes))
}
