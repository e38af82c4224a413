// internal/models/catalog_item.go
package models

import (
	"github.com/shopspring/decimal"
)

// CatalogItem is one product row. All four partitions share the table; the
// category column is fixed at creation and never changes. Category-specific
// attributes (profile, material, switch specs and the like) live in the
// Attributes bag and carry no invariants.
type CatalogItem struct {
	BaseModel
	Brand       string          `json:"brand" gorm:"size:100;not null"`
	Name        string          `json:"name" gorm:"size:255;not null"`
	Description string          `json:"description" gorm:"type:text;not null"`
	Price       decimal.Decimal `json:"price" gorm:"type:decimal(10,2);not null"`
	Quantity    int             `json:"quantity" gorm:"not null;default:0"`
	Image       string          `json:"image" gorm:"type:text;not null"`
	Category    Category        `json:"category" gorm:"type:varchar(20);not null;index"`
	Attributes  JSONB           `json:"attributes,omitempty" gorm:"type:jsonb"`
	Sold        int64           `json:"sold" gorm:"not null;default:0"`
}
