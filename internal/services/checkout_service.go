// internal/services/checkout_service.go
package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/keebworks/keebpos-backend/internal/config"
	"github.com/keebworks/keebpos-backend/internal/models"
	"github.com/keebworks/keebpos-backend/internal/utils"
)

// CheckoutService turns a cart into a recorded sale: it coalesces duplicate
// cart lines, computes totals, appends one ledger entry, and then reconciles
// stock and sold counters against it.
type CheckoutService struct {
	catalog *CatalogService
	ledger  *TransactionService
	store   config.StoreConfig

	// beforeLedgerWrite runs between stock validation and the ledger write.
	// Tests use it to race stock changes into that window.
	beforeLedgerWrite func()
}

func NewCheckoutService(catalog *CatalogService, ledger *TransactionService, store config.StoreConfig) *CheckoutService {
	return &CheckoutService{
		catalog: catalog,
		ledger:  ledger,
		store:   store,
	}
}

// CartLine is one "add" tapped at the till. The same product may appear any
// number of times; name and price are the snapshot taken at cart-build time.
type CartLine struct {
	ProductID uuid.UUID       `json:"product_id" validate:"required"`
	Category  string          `json:"category" validate:"required"`
	Name      string          `json:"name" validate:"required"`
	Price     decimal.Decimal `json:"price"`
}

type CheckoutRequest struct {
	Items []CartLine `json:"items" validate:"required,min=1,dive"`

	// TaxRate overrides the configured rate when set.
	TaxRate *decimal.Decimal `json:"tax_rate,omitempty"`

	// TotalAmount is the client's figure. The server recomputes the total
	// from the lines and rejects a mismatch rather than trusting it.
	TotalAmount *decimal.Decimal `json:"total_amount,omitempty"`
}

// CheckoutResult carries the persisted transaction plus the per-line
// reconciliation outcomes.
type CheckoutResult struct {
	Transaction *models.Transaction `json:"transaction"`
	Outcomes    []LineOutcome       `json:"outcomes"`
}

type coalescedLine struct {
	productID uuid.UUID
	category  models.Category
	name      string
	price     decimal.Decimal
	quantity  int
}

// Checkout runs the reconciliation workflow: coalesce, validate against live
// stock, write the ledger entry, then mutate counters. A failure before the
// ledger write leaves the system untouched. If a per-line mutation fails
// after it (stock changed under a concurrent checkout), the ledger entry is
// kept and a *PartialReconciliationError is returned alongside the result.
func (s *CheckoutService) Checkout(req *CheckoutRequest) (*CheckoutResult, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrValidation, utils.ValidationMessage(err))
	}

	lines, err := s.coalesce(req.Items)
	if err != nil {
		return nil, err
	}

	if err := s.validateStock(lines); err != nil {
		return nil, err
	}

	if req.TaxRate != nil && req.TaxRate.IsNegative() {
		return nil, fmt.Errorf("%w: tax rate must not be negative", ErrValidation)
	}

	subtotal, tax, total := s.totals(lines, req.TaxRate)

	if req.TotalAmount != nil && !req.TotalAmount.Round(2).Equal(total) {
		return nil, fmt.Errorf("%w: submitted total %s does not match computed total %s",
			ErrValidation, req.TotalAmount.Round(2), total)
	}

	transaction := &models.Transaction{
		InvoiceNo:   NewInvoiceNo(),
		Status:      models.TransactionStatusPaid,
		Subtotal:    subtotal,
		TaxAmount:   tax,
		TotalAmount: total,
	}
	for _, line := range lines {
		transaction.Items = append(transaction.Items, models.TransactionLineItem{
			ProductID: line.productID,
			Name:      line.name,
			Category:  line.category,
			Price:     line.price.Round(2),
			Quantity:  line.quantity,
		})
	}

	if s.beforeLedgerWrite != nil {
		s.beforeLedgerWrite()
	}

	if err := s.ledger.Append(transaction); err != nil {
		// No stock has been touched yet; the system is left consistent.
		return nil, err
	}

	outcomes := s.applyMutations(lines)

	result := &CheckoutResult{
		Transaction: transaction,
		Outcomes:    outcomes,
	}

	for _, o := range outcomes {
		if !o.Applied {
			perr := &PartialReconciliationError{
				InvoiceNo: transaction.InvoiceNo,
				Outcomes:  outcomes,
			}
			logrus.WithFields(logrus.Fields{
				"invoice_no": transaction.InvoiceNo,
				"outcomes":   outcomes,
			}).Warn("checkout needs reconciliation")
			return result, perr
		}
	}

	return result, nil
}

// coalesce groups cart lines by product id, first-seen order, and resolves
// every category tag up front so no mutation is ever issued against a
// resolved-wrong partition.
func (s *CheckoutService) coalesce(items []CartLine) ([]*coalescedLine, error) {
	var lines []*coalescedLine
	byProduct := make(map[uuid.UUID]*coalescedLine)

	for _, item := range items {
		category, err := models.ParseCategory(item.Category)
		if err != nil {
			return nil, err
		}

		if item.Price.IsNegative() {
			return nil, fmt.Errorf("%w: price must not be negative", ErrValidation)
		}

		if line, ok := byProduct[item.ProductID]; ok {
			line.quantity++
			continue
		}

		line := &coalescedLine{
			productID: item.ProductID,
			category:  category,
			name:      item.Name,
			price:     item.Price,
			quantity:  1,
		}
		byProduct[item.ProductID] = line
		lines = append(lines, line)
	}

	return lines, nil
}

// validateStock checks every line against the live stored quantity before
// anything is persisted. It cannot rule out a concurrent checkout winning the
// same units afterwards; the conditional update in ApplySale is the real
// oversell gate, and this check keeps cleanly-doomed carts out of the ledger.
func (s *CheckoutService) validateStock(lines []*coalescedLine) error {
	for _, line := range lines {
		item, err := s.catalog.PartitionFor(line.category).GetByID(line.productID)
		if err != nil {
			return err
		}
		if item.Quantity < line.quantity {
			return fmt.Errorf("%w: %s has %d left, cart needs %d",
				ErrInsufficientStock, item.Name, item.Quantity, line.quantity)
		}
	}
	return nil
}

// totals computes subtotal, tax and tax-inclusive total in exact decimal
// arithmetic, rounding to two places only at the storage boundary.
func (s *CheckoutService) totals(lines []*coalescedLine, override *decimal.Decimal) (subtotal, tax, total decimal.Decimal) {
	taxRate := s.store.TaxRate
	if override != nil {
		taxRate = *override
	}

	subtotal = decimal.Zero
	for _, line := range lines {
		subtotal = subtotal.Add(line.price.Mul(decimal.NewFromInt(int64(line.quantity))))
	}

	tax = subtotal.Mul(taxRate)
	total = subtotal.Add(tax).Round(2)
	subtotal = subtotal.Round(2)
	tax = tax.Round(2)
	return subtotal, tax, total
}

// applyMutations issues one combined stock/sold update per distinct product.
// Failures do not stop the remaining lines; every outcome is recorded.
func (s *CheckoutService) applyMutations(lines []*coalescedLine) []LineOutcome {
	outcomes := make([]LineOutcome, 0, len(lines))

	for _, line := range lines {
		outcome := LineOutcome{
			ProductID: line.productID,
			Name:      line.name,
			Category:  line.category,
			Quantity:  line.quantity,
			Applied:   true,
		}

		partition := s.catalog.PartitionFor(line.category)
		if err := partition.ApplySale(line.productID, line.quantity); err != nil {
			outcome.Applied = false
			outcome.Reason = err.Error()
		}

		outcomes = append(outcomes, outcome)
	}

	return outcomes
}

// NewInvoiceNo builds an invoice number from the millisecond timestamp plus a
// random uuid fragment. Two checkouts in the same millisecond cannot collide
// on the timestamp alone, and the ledger's unique constraint backstops the
// generator anyway.
func NewInvoiceNo() string {
	fragment := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("%d%s", time.Now().UnixMilli(), strings.ToUpper(fragment))
}
