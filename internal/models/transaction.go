// internal/models/transaction.go
package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Transaction is one completed sale. Rows are append-only: nothing in the
// normal flow updates or deletes them, which is what makes the ledger a
// trustworthy audit trail while the catalog stays freely mutable.
type Transaction struct {
	BaseModel
	InvoiceNo   string                `json:"invoice_no" gorm:"size:64;not null;uniqueIndex"`
	Status      TransactionStatus     `json:"status" gorm:"type:varchar(10);not null;default:'Paid'"`
	Subtotal    decimal.Decimal       `json:"subtotal" gorm:"type:decimal(12,2);not null"`
	TaxAmount   decimal.Decimal       `json:"tax_amount" gorm:"type:decimal(12,2);not null"`
	TotalAmount decimal.Decimal       `json:"total_amount" gorm:"type:decimal(12,2);not null"`
	Items       []TransactionLineItem `json:"items" gorm:"foreignKey:TransactionID;constraint:OnDelete:CASCADE"`
}

// TransactionLineItem is one coalesced cart line, immutable once written.
// ProductID is a reference, not ownership: the catalog item may be edited or
// deleted later, so name, price and category are snapshotted at sale time.
type TransactionLineItem struct {
	ID            uuid.UUID       `json:"id" gorm:"type:uuid;primary_key"`
	TransactionID uuid.UUID       `json:"-" gorm:"type:uuid;not null;index"`
	Position      int             `json:"-" gorm:"not null"`
	ProductID     uuid.UUID       `json:"product_id" gorm:"type:uuid;not null"`
	Name          string          `json:"name" gorm:"size:255;not null"`
	Category      Category        `json:"category" gorm:"type:varchar(20);not null"`
	Price         decimal.Decimal `json:"price" gorm:"type:decimal(10,2);not null"`
	Quantity      int             `json:"quantity" gorm:"not null"`
}

func (i *TransactionLineItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
