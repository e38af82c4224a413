// internal/services/transaction_service.go
package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/keebworks/keebpos-backend/internal/models"
)

// TransactionService owns the ledger. It exposes append and listing only; the
// absence of update and delete is what keeps the ledger trustworthy.
type TransactionService struct {
	db *gorm.DB
}

func NewTransactionService(db *gorm.DB) *TransactionService {
	return &TransactionService{db: db}
}

// Append writes one transaction together with its line items. Invoice
// uniqueness is enforced by the storage layer, not just by generation-time
// avoidance.
func (s *TransactionService) Append(transaction *models.Transaction) error {
	for i := range transaction.Items {
		transaction.Items[i].Position = i
	}

	if err := s.db.Create(transaction).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateInvoice
		}
		return fmt.Errorf("failed to record transaction: %w", err)
	}
	return nil
}

// ListAll returns every transaction, newest first, line items in sale order.
func (s *TransactionService) ListAll() ([]models.Transaction, error) {
	var transactions []models.Transaction
	err := s.db.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	}).Order("created_at DESC").Find(&transactions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch transactions: %w", err)
	}
	return transactions, nil
}

// GetByInvoice fetches a single transaction by its invoice number.
func (s *TransactionService) GetByInvoice(invoiceNo string) (*models.Transaction, error) {
	var transaction models.Transaction
	err := s.db.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	}).First(&transaction, "invoice_no = ?", invoiceNo).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &transaction, nil
}
