// internal/services/checkout_service_test.go
package services

import (
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/keebworks/keebpos-backend/internal/models"
)

type CheckoutServiceTestSuite struct {
	suite.Suite
	db       *gorm.DB
	catalog  *CatalogService
	ledger   *TransactionService
	checkout *CheckoutService
}

func (s *CheckoutServiceTestSuite) SetupTest() {
	s.db = newTestDB(s.T())
	s.catalog = NewCatalogService(s.db, testStoreConfig())
	s.ledger = NewTransactionService(s.db)
	s.checkout = NewCheckoutService(s.catalog, s.ledger, testStoreConfig())
}

func cartLine(item *models.CatalogItem) CartLine {
	return CartLine{
		ProductID: item.ID,
		Category:  string(item.Category),
		Name:      item.Name,
		Price:     item.Price,
	}
}

func (s *CheckoutServiceTestSuite) TestCheckoutTotalsAndLineItems() {
	itemX := seedItem(s.T(), s.catalog, models.CategoryKeyboard, "Item X", "100.00", 10)
	itemY := seedItem(s.T(), s.catalog, models.CategoryKeycaps, "Item Y", "50.00", 10)

	result, err := s.checkout.Checkout(&CheckoutRequest{
		Items: []CartLine{cartLine(itemX), cartLine(itemX), cartLine(itemY)},
	})
	s.Require().NoError(err)

	tx := result.Transaction
	s.True(tx.Subtotal.Equal(decimal.RequireFromString("250.00")), "subtotal %s", tx.Subtotal)
	s.True(tx.TaxAmount.Equal(decimal.RequireFromString("30.00")), "tax %s", tx.TaxAmount)
	s.True(tx.TotalAmount.Equal(decimal.RequireFromString("280.00")), "total %s", tx.TotalAmount)
	s.Equal(models.TransactionStatusPaid, tx.Status)
	s.NotEmpty(tx.InvoiceNo)

	s.Require().Len(tx.Items, 2)
	s.Equal(itemX.ID, tx.Items[0].ProductID)
	s.Equal(2, tx.Items[0].Quantity)
	s.Equal(itemY.ID, tx.Items[1].ProductID)
	s.Equal(1, tx.Items[1].Quantity)

	// One ledger entry, nothing more.
	entries, err := s.ledger.ListAll()
	s.Require().NoError(err)
	s.Len(entries, 1)
}

func (s *CheckoutServiceTestSuite) TestCoalescingIsOrderInsensitive() {
	itemX := seedItem(s.T(), s.catalog, models.CategoryKeyboard, "Item X", "100.00", 100)
	itemY := seedItem(s.T(), s.catalog, models.CategoryKeycaps, "Item Y", "50.00", 100)
	itemZ := seedItem(s.T(), s.catalog, models.CategorySwitches, "Item Z", "0.50", 100)

	permutations := [][]CartLine{
		{cartLine(itemX), cartLine(itemX), cartLine(itemY), cartLine(itemZ), cartLine(itemZ), cartLine(itemZ)},
		{cartLine(itemZ), cartLine(itemY), cartLine(itemX), cartLine(itemZ), cartLine(itemX), cartLine(itemZ)},
		{cartLine(itemY), cartLine(itemZ), cartLine(itemZ), cartLine(itemX), cartLine(itemZ), cartLine(itemX)},
	}

	want := map[uuid.UUID]int{itemX.ID: 2, itemY.ID: 1, itemZ.ID: 3}

	for i, items := range permutations {
		lines, err := s.checkout.coalesce(items)
		s.Require().NoError(err, "permutation %d", i)

		got := make(map[uuid.UUID]int, len(lines))
		for _, line := range lines {
			got[line.productID] = line.quantity
		}
		s.Equal(want, got, "permutation %d", i)
	}
}

func (s *CheckoutServiceTestSuite) TestCheckoutConservesCounters() {
	item := seedItem(s.T(), s.catalog, models.CategorySwitches, "Oil King", "0.65", 90)

	_, err := s.checkout.Checkout(&CheckoutRequest{
		Items: []CartLine{cartLine(item), cartLine(item), cartLine(item)},
	})
	s.Require().NoError(err)

	current, err := s.catalog.PartitionFor(models.CategorySwitches).GetByID(item.ID)
	s.Require().NoError(err)
	s.Equal(87, current.Quantity)
	s.Equal(int64(3), current.Sold)
}

func (s *CheckoutServiceTestSuite) TestCheckoutRejectsUnknownCategoryBeforeAnyMutation() {
	item := seedItem(s.T(), s.catalog, models.CategoryKeyboard, "Q1 Pro", "199.99", 5)

	line := cartLine(item)
	line.Category = "deskmat"

	_, err := s.checkout.Checkout(&CheckoutRequest{Items: []CartLine{line}})
	s.ErrorIs(err, models.ErrUnknownCategory)

	current, getErr := s.catalog.PartitionFor(models.CategoryKeyboard).GetByID(item.ID)
	s.Require().NoError(getErr)
	s.Equal(5, current.Quantity)

	entries, listErr := s.ledger.ListAll()
	s.Require().NoError(listErr)
	s.Empty(entries)
}

func (s *CheckoutServiceTestSuite) TestCheckoutRejectsMismatchedClientTotal() {
	item := seedItem(s.T(), s.catalog, models.CategoryKeyboard, "Q1 Pro", "100.00", 5)

	_, err := s.checkout.Checkout(&CheckoutRequest{
		Items:       []CartLine{cartLine(item)},
		TotalAmount: decPtr("999.00"),
	})
	s.ErrorIs(err, ErrValidation)

	entries, listErr := s.ledger.ListAll()
	s.Require().NoError(listErr)
	s.Empty(entries)
}

func (s *CheckoutServiceTestSuite) TestCheckoutAcceptsMatchingClientTotal() {
	item := seedItem(s.T(), s.catalog, models.CategoryKeyboard, "Q1 Pro", "100.00", 5)

	_, err := s.checkout.Checkout(&CheckoutRequest{
		Items:       []CartLine{cartLine(item)},
		TotalAmount: decPtr("112.00"),
	})
	s.NoError(err)
}

func (s *CheckoutServiceTestSuite) TestCheckoutRejectsNegativeTaxRate() {
	item := seedItem(s.T(), s.catalog, models.CategoryKeyboard, "Q1 Pro", "100.00", 5)

	_, err := s.checkout.Checkout(&CheckoutRequest{
		Items:   []CartLine{cartLine(item)},
		TaxRate: decPtr("-0.05"),
	})
	s.ErrorIs(err, ErrValidation)
}

func (s *CheckoutServiceTestSuite) TestOversoldCheckoutAbortsBeforeLedgerWrite() {
	plenty := seedItem(s.T(), s.catalog, models.CategoryKeycaps, "Olivia", "120.00", 50)
	scarce := seedItem(s.T(), s.catalog, models.CategoryKeyboard, "Q1 Pro", "199.99", 1)

	// Drain the scarce item behind the cart's back.
	s.Require().NoError(s.catalog.PartitionFor(models.CategoryKeyboard).ApplySale(scarce.ID, 1))

	result, err := s.checkout.Checkout(&CheckoutRequest{
		Items: []CartLine{cartLine(plenty), cartLine(scarce)},
	})
	s.ErrorIs(err, ErrInsufficientStock)
	s.Nil(result)

	// Nothing hit the ledger and the healthy line was not touched either.
	entries, listErr := s.ledger.ListAll()
	s.Require().NoError(listErr)
	s.Empty(entries)

	current, getErr := s.catalog.PartitionFor(models.CategoryKeycaps).GetByID(plenty.ID)
	s.Require().NoError(getErr)
	s.Equal(50, current.Quantity)
	s.Equal(int64(0), current.Sold)
}

func (s *CheckoutServiceTestSuite) TestSellOutThenRetryLeavesLedgerUntouched() {
	item := seedItem(s.T(), s.catalog, models.CategorySwitches, "Banana Split", "0.55", 3)

	_, err := s.checkout.Checkout(&CheckoutRequest{
		Items: []CartLine{cartLine(item), cartLine(item), cartLine(item)},
	})
	s.Require().NoError(err)

	_, err = s.checkout.Checkout(&CheckoutRequest{Items: []CartLine{cartLine(item)}})
	s.ErrorIs(err, ErrInsufficientStock)

	// Only the successful sale made it into the ledger.
	entries, listErr := s.ledger.ListAll()
	s.Require().NoError(listErr)
	s.Len(entries, 1)

	current, getErr := s.catalog.PartitionFor(models.CategorySwitches).GetByID(item.ID)
	s.Require().NoError(getErr)
	s.Equal(0, current.Quantity)
	s.Equal(int64(3), current.Sold)
}

func (s *CheckoutServiceTestSuite) TestStockRacedAwayAfterLedgerWriteReportsPartial() {
	plenty := seedItem(s.T(), s.catalog, models.CategoryKeycaps, "Olivia", "120.00", 50)
	scarce := seedItem(s.T(), s.catalog, models.CategoryKeyboard, "Q1 Pro", "199.99", 1)

	// Steal the last unit between the pre-check and the ledger write.
	s.checkout.beforeLedgerWrite = func() {
		s.Require().NoError(s.catalog.PartitionFor(models.CategoryKeyboard).ApplySale(scarce.ID, 1))
	}

	result, err := s.checkout.Checkout(&CheckoutRequest{
		Items: []CartLine{cartLine(plenty), cartLine(scarce)},
	})

	var partial *PartialReconciliationError
	s.Require().ErrorAs(err, &partial)
	s.Require().NotNil(result)
	s.Equal(result.Transaction.InvoiceNo, partial.InvoiceNo)

	// The healthy line applied; the raced one is flagged, not silently dropped.
	s.Require().Len(partial.Outcomes, 2)
	s.True(partial.Outcomes[0].Applied)
	s.False(partial.Outcomes[1].Applied)
	s.Contains(partial.Outcomes[1].Reason, "stock")

	// The ledger entry must survive the partial failure.
	entries, listErr := s.ledger.ListAll()
	s.Require().NoError(listErr)
	s.Require().Len(entries, 1)
	s.Equal(partial.InvoiceNo, entries[0].InvoiceNo)

	// Stock never went negative.
	current, getErr := s.catalog.PartitionFor(models.CategoryKeyboard).GetByID(scarce.ID)
	s.Require().NoError(getErr)
	s.Equal(0, current.Quantity)
}

func (s *CheckoutServiceTestSuite) TestConcurrentCheckoutsOnLastUnitSellExactlyOne() {
	item := seedItem(s.T(), s.catalog, models.CategoryKeyboard, "Last One", "99.00", 1)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = s.checkout.Checkout(&CheckoutRequest{
				Items: []CartLine{cartLine(item)},
			})
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			// The loser fails either at the pre-check or, if the winner slipped
			// in between pre-check and mutation, as a partial reconciliation.
			var partial *PartialReconciliationError
			if errors.As(err, &partial) {
				s.Contains(partial.Outcomes[0].Reason, "stock")
			} else {
				s.ErrorIs(err, ErrInsufficientStock)
			}
		}
	}
	s.Equal(1, succeeded, "exactly one checkout may win the last unit")

	current, err := s.catalog.PartitionFor(models.CategoryKeyboard).GetByID(item.ID)
	s.Require().NoError(err)
	s.Equal(0, current.Quantity)
	s.Equal(int64(1), current.Sold)
}

func (s *CheckoutServiceTestSuite) TestInvoiceNumbersDoNotCollide() {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		invoiceNo := NewInvoiceNo()
		s.False(seen[invoiceNo], "collision on %s", invoiceNo)
		seen[invoiceNo] = true
	}
}

func TestCheckoutServiceTestSuite(t *testing.T) {
	suite.Run(t, new(CheckoutServiceTestSuite))
}
