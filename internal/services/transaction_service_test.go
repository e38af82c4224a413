// internal/services/transaction_service_test.go
package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/keebworks/keebpos-backend/internal/models"
)

type TransactionServiceTestSuite struct {
	suite.Suite
	db     *gorm.DB
	ledger *TransactionService
}

func (s *TransactionServiceTestSuite) SetupTest() {
	s.db = newTestDB(s.T())
	s.ledger = NewTransactionService(s.db)
}

func (s *TransactionServiceTestSuite) newTransaction(invoiceNo string) *models.Transaction {
	return &models.Transaction{
		InvoiceNo:   invoiceNo,
		Status:      models.TransactionStatusPaid,
		Subtotal:    decimal.RequireFromString("250.00"),
		TaxAmount:   decimal.RequireFromString("30.00"),
		TotalAmount: decimal.RequireFromString("280.00"),
		Items: []models.TransactionLineItem{
			{
				ProductID: uuid.New(),
				Name:      "Item X",
				Category:  models.CategoryKeyboard,
				Price:     decimal.RequireFromString("100.00"),
				Quantity:  2,
			},
			{
				ProductID: uuid.New(),
				Name:      "Item Y",
				Category:  models.CategoryKeycaps,
				Price:     decimal.RequireFromString("50.00"),
				Quantity:  1,
			},
		},
	}
}

func (s *TransactionServiceTestSuite) TestAppendAndRoundTrip() {
	original := s.newTransaction("17000000000001ABCD")
	s.Require().NoError(s.ledger.Append(original))

	stored, err := s.ledger.GetByInvoice("17000000000001ABCD")
	s.Require().NoError(err)

	s.Equal(original.InvoiceNo, stored.InvoiceNo)
	s.Equal(original.Status, stored.Status)
	s.True(stored.TotalAmount.Equal(original.TotalAmount))
	s.Require().Len(stored.Items, 2)
	for i := range original.Items {
		s.Equal(original.Items[i].ProductID, stored.Items[i].ProductID)
		s.Equal(original.Items[i].Name, stored.Items[i].Name)
		s.Equal(original.Items[i].Category, stored.Items[i].Category)
		s.Equal(original.Items[i].Quantity, stored.Items[i].Quantity)
		s.True(stored.Items[i].Price.Equal(original.Items[i].Price))
	}
}

func (s *TransactionServiceTestSuite) TestDuplicateInvoiceRejectedByStorage() {
	s.Require().NoError(s.ledger.Append(s.newTransaction("INV-1")))

	err := s.ledger.Append(s.newTransaction("INV-1"))
	s.ErrorIs(err, ErrDuplicateInvoice)

	entries, listErr := s.ledger.ListAll()
	s.Require().NoError(listErr)
	s.Len(entries, 1)
}

func (s *TransactionServiceTestSuite) TestListAllNewestFirst() {
	for i, invoiceNo := range []string{"INV-old", "INV-mid", "INV-new"} {
		tx := s.newTransaction(invoiceNo)
		tx.CreatedAt = time.Date(2026, time.March, 1+i, 9, 0, 0, 0, time.UTC)
		s.Require().NoError(s.ledger.Append(tx))
	}

	entries, err := s.ledger.ListAll()
	s.Require().NoError(err)
	s.Require().Len(entries, 3)
	s.Equal("INV-new", entries[0].InvoiceNo)
	s.Equal("INV-mid", entries[1].InvoiceNo)
	s.Equal("INV-old", entries[2].InvoiceNo)
}

func (s *TransactionServiceTestSuite) TestGetByInvoiceNotFound() {
	_, err := s.ledger.GetByInvoice("INV-missing")
	s.ErrorIs(err, ErrNotFound)
}

func TestTransactionServiceTestSuite(t *testing.T) {
	suite.Run(t, new(TransactionServiceTestSuite))
}
