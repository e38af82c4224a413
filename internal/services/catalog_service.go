// internal/services/catalog_service.go
package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/keebworks/keebpos-backend/internal/config"
	"github.com/keebworks/keebpos-backend/internal/models"
	"github.com/keebworks/keebpos-backend/internal/utils"
)

type CatalogService struct {
	db    *gorm.DB
	store config.StoreConfig
}

func NewCatalogService(db *gorm.DB, store config.StoreConfig) *CatalogService {
	return &CatalogService{
		db:    db,
		store: store,
	}
}

// Partition resolves a category tag into a handle scoped to that partition.
// Every caller goes through here before issuing mutations so an unresolvable
// tag can never touch the wrong partition.
func (s *CatalogService) Partition(tag string) (*Partition, error) {
	category, err := models.ParseCategory(tag)
	if err != nil {
		return nil, err
	}
	return s.PartitionFor(category), nil
}

func (s *CatalogService) PartitionFor(category models.Category) *Partition {
	return &Partition{svc: s, category: category}
}

// ListAll returns every item across all partitions, for the legacy unified
// products surface.
func (s *CatalogService) ListAll() ([]models.CatalogItem, error) {
	var items []models.CatalogItem
	if err := s.db.Order("created_at ASC").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch items: %w", err)
	}
	return items, nil
}

// GetAnyByID looks an item up regardless of partition.
func (s *CatalogService) GetAnyByID(id uuid.UUID) (*models.CatalogItem, error) {
	var item models.CatalogItem
	if err := s.db.First(&item, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &item, nil
}

// Partition is a handle on one category's slice of the catalog. All store
// operations are scoped to it.
type Partition struct {
	svc      *CatalogService
	category models.Category
}

func (p *Partition) Category() models.Category {
	return p.category
}

type CreateItemRequest struct {
	Brand       string                 `json:"brand" validate:"required"`
	Name        string                 `json:"name" validate:"required"`
	Description string                 `json:"description" validate:"required"`
	Price       *decimal.Decimal       `json:"price" validate:"required"`
	Quantity    *int                   `json:"quantity" validate:"required,min=0"`
	Image       string                 `json:"image" validate:"required"`
	Attributes  map[string]interface{} `json:"attributes,omitempty"`
}

type UpdateItemRequest struct {
	Brand       string                 `json:"brand,omitempty"`
	Name        string                 `json:"name,omitempty"`
	Description string                 `json:"description,omitempty"`
	Price       *decimal.Decimal       `json:"price,omitempty"`
	Quantity    *int                   `json:"quantity,omitempty"`
	Image       string                 `json:"image,omitempty"`
	Attributes  map[string]interface{} `json:"attributes,omitempty"`
	Sold        *int64                 `json:"sold,omitempty"`
}

func (p *Partition) Create(req *CreateItemRequest) (*models.CatalogItem, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrValidation, utils.ValidationMessage(err))
	}

	if req.Price.IsNegative() {
		return nil, fmt.Errorf("%w: price must not be negative", ErrValidation)
	}

	if err := p.svc.checkImageSize(req.Image); err != nil {
		return nil, err
	}

	item := &models.CatalogItem{
		Brand:       req.Brand,
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price.Round(2),
		Quantity:    *req.Quantity,
		Image:       req.Image,
		Category:    p.category,
		Attributes:  models.JSONB(req.Attributes),
		Sold:        0,
	}

	if err := p.svc.db.Create(item).Error; err != nil {
		return nil, fmt.Errorf("failed to create item: %w", err)
	}

	return item, nil
}

// List returns every item in the partition. An empty partition is a valid,
// non-error outcome.
func (p *Partition) List() ([]models.CatalogItem, error) {
	var items []models.CatalogItem
	if err := p.svc.db.Where("category = ?", p.category).
		Order("created_at ASC").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch items: %w", err)
	}
	return items, nil
}

func (p *Partition) GetByID(id uuid.UUID) (*models.CatalogItem, error) {
	var item models.CatalogItem
	if err := p.svc.db.Where("category = ?", p.category).
		First(&item, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &item, nil
}

// Update merges the patch into the stored item. Id and category are fixed for
// life; everything else is fair game, including an administrative reset of
// the sold counter.
func (p *Partition) Update(id uuid.UUID, req *UpdateItemRequest) (*models.CatalogItem, error) {
	item, err := p.GetByID(id)
	if err != nil {
		return nil, err
	}

	if req.Image != "" {
		if err := p.svc.checkImageSize(req.Image); err != nil {
			return nil, err
		}
	}

	updates := make(map[string]interface{})
	if req.Brand != "" {
		updates["brand"] = req.Brand
	}
	if req.Name != "" {
		updates["name"] = req.Name
	}
	if req.Description != "" {
		updates["description"] = req.Description
	}
	if req.Price != nil {
		if req.Price.IsNegative() {
			return nil, fmt.Errorf("%w: price must not be negative", ErrValidation)
		}
		updates["price"] = req.Price.Round(2)
	}
	if req.Quantity != nil {
		if *req.Quantity < 0 {
			return nil, fmt.Errorf("%w: quantity must not be negative", ErrValidation)
		}
		updates["quantity"] = *req.Quantity
	}
	if req.Image != "" {
		updates["image"] = req.Image
	}
	if req.Attributes != nil {
		updates["attributes"] = models.JSONB(req.Attributes)
	}
	if req.Sold != nil {
		if *req.Sold < 0 {
			return nil, fmt.Errorf("%w: sold must not be negative", ErrValidation)
		}
		updates["sold"] = *req.Sold
	}

	if len(updates) > 0 {
		if err := p.svc.db.Model(item).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update item: %w", err)
		}
	}

	return p.GetByID(id)
}

// Delete removes the item permanently. Historical transactions keep their own
// snapshot of name and price, so no referential cleanup is needed.
func (p *Partition) Delete(id uuid.UUID) error {
	result := p.svc.db.Where("category = ?", p.category).
		Delete(&models.CatalogItem{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete item: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// IncrementSold adds delta to the sold counter. No upper bound is enforced.
func (p *Partition) IncrementSold(id uuid.UUID, delta int64) (*models.CatalogItem, error) {
	result := p.svc.db.Model(&models.CatalogItem{}).
		Where("id = ? AND category = ?", id, p.category).
		UpdateColumn("sold", gorm.Expr("sold + ?", delta))
	if result.Error != nil {
		return nil, fmt.Errorf("failed to update sales: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return p.GetByID(id)
}

// DecrementStock subtracts delta from quantity. The quantity >= delta guard
// runs inside the UPDATE itself against the current stored value, so two
// concurrent checkouts on the same low-stock item can never both pass it.
func (p *Partition) DecrementStock(id uuid.UUID, delta int) (*models.CatalogItem, error) {
	if delta < 0 {
		return nil, fmt.Errorf("%w: decrement must not be negative", ErrValidation)
	}

	result := p.svc.db.Model(&models.CatalogItem{}).
		Where("id = ? AND category = ? AND quantity >= ?", id, p.category, delta).
		UpdateColumn("quantity", gorm.Expr("quantity - ?", delta))
	if result.Error != nil {
		return nil, fmt.Errorf("failed to update stock: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		if _, err := p.GetByID(id); err != nil {
			return nil, err
		}
		return nil, ErrInsufficientStock
	}
	return p.GetByID(id)
}

// ApplySale performs the stock decrement and sold increment for one product
// as a single conditional row update, so the pair can never partially apply.
func (p *Partition) ApplySale(id uuid.UUID, qty int) error {
	if qty <= 0 {
		return fmt.Errorf("%w: sale quantity must be positive", ErrValidation)
	}

	result := p.svc.db.Model(&models.CatalogItem{}).
		Where("id = ? AND category = ? AND quantity >= ?", id, p.category, qty).
		Updates(map[string]interface{}{
			"quantity": gorm.Expr("quantity - ?", qty),
			"sold":     gorm.Expr("sold + ?", qty),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to apply sale: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		if _, err := p.GetByID(id); err != nil {
			return err
		}
		return ErrInsufficientStock
	}
	return nil
}

func (s *CatalogService) checkImageSize(image string) error {
	if utils.Base64Size(image) > s.store.MaxImageBytes {
		return fmt.Errorf("%w: image size exceeds %d bytes", ErrValidation, s.store.MaxImageBytes)
	}
	return nil
}
