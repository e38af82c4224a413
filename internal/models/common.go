// internal/models/common.go
package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrUnknownCategory is returned when a category tag does not resolve to any of
// the four catalog partitions.
var ErrUnknownCategory = errors.New("unknown category")

// Base model with common fields
type BaseModel struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (m *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// JSONB type for PostgreSQL
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}

	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, j)
	case string:
		return json.Unmarshal([]byte(v), j)
	default:
		return nil
	}
}

// Enums
type Category string

const (
	CategoryKeyboard Category = "keyboard"
	CategoryKeycaps  Category = "keycaps"
	CategorySwitches Category = "switches"
	CategoryOthers   Category = "others"
)

// Categories lists every catalog partition in its fixed display order.
func Categories() []Category {
	return []Category{CategoryKeyboard, CategoryKeycaps, CategorySwitches, CategoryOthers}
}

// ParseCategory resolves a category tag to its partition. Tags are matched
// case-insensitively and both singular and plural spellings are accepted.
func ParseCategory(tag string) (Category, error) {
	switch strings.ToLower(strings.TrimSpace(tag)) {
	case "keyboard", "keyboards":
		return CategoryKeyboard, nil
	case "keycap", "keycaps":
		return CategoryKeycaps, nil
	case "switch", "switches":
		return CategorySwitches, nil
	case "other", "others":
		return CategoryOthers, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownCategory, tag)
	}
}

// SubResource is the REST path segment the partition is exposed under.
func (c Category) SubResource() string {
	return string(c)
}

type TransactionStatus string

const (
	TransactionStatusPaid    TransactionStatus = "Paid"
	TransactionStatusExpired TransactionStatus = "Expired"
)
