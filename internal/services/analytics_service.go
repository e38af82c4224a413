// internal/services/analytics_service.go
package services

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/keebworks/keebpos-backend/internal/config"
	"github.com/keebworks/keebpos-backend/internal/models"
)

// AnalyticsService derives the dashboard views. Every query is a pure read
// recomputed on demand; nothing here caches or invalidates.
type AnalyticsService struct {
	db    *gorm.DB
	store config.StoreConfig
}

func NewAnalyticsService(db *gorm.DB, store config.StoreConfig) *AnalyticsService {
	return &AnalyticsService{
		db:    db,
		store: store,
	}
}

// BestSelling returns the top n items by sold descending, excluding items
// that have never sold. Ties break by id ascending so the view is
// reproducible. An empty tag spans all partitions.
func (s *AnalyticsService) BestSelling(tag string, n int) ([]models.CatalogItem, error) {
	if n <= 0 {
		n = s.store.BestSellerLimit
	}

	query := s.db.Where("sold > 0")
	if tag != "" {
		category, err := models.ParseCategory(tag)
		if err != nil {
			return nil, err
		}
		query = query.Where("category = ?", category)
	}

	var items []models.CatalogItem
	if err := query.Order("sold DESC, id ASC").Limit(n).Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch best-selling items: %w", err)
	}
	return items, nil
}

// LowStock returns items below the threshold, quantity ascending. A
// threshold of zero or less falls back to the configured default.
func (s *AnalyticsService) LowStock(tag string, threshold int) ([]models.CatalogItem, error) {
	if threshold <= 0 {
		threshold = s.store.LowStockThreshold
	}

	query := s.db.Where("quantity < ?", threshold)
	if tag != "" {
		category, err := models.ParseCategory(tag)
		if err != nil {
			return nil, err
		}
		query = query.Where("category = ?", category)
	}

	var items []models.CatalogItem
	if err := query.Order("quantity ASC, id ASC").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch low-stock items: %w", err)
	}
	return items, nil
}

// MonthlyRevenue is one calendar month's bucket of ledger totals.
type MonthlyRevenue struct {
	Month   string          `json:"month"`
	Revenue decimal.Decimal `json:"revenue"`
	Sales   int             `json:"sales"`
}

// MonthlyRevenueReport groups ledger entries by calendar month of creation,
// chronologically. The bucketing runs over a full ledger scan, which is the
// cost model this store operates at.
func (s *AnalyticsService) MonthlyRevenueReport() ([]MonthlyRevenue, error) {
	var transactions []models.Transaction
	if err := s.db.Order("created_at ASC").Find(&transactions).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch transactions: %w", err)
	}

	buckets := make(map[string]*MonthlyRevenue)
	var months []string
	for _, t := range transactions {
		month := t.CreatedAt.Format("2006-01")
		bucket, ok := buckets[month]
		if !ok {
			bucket = &MonthlyRevenue{Month: month, Revenue: decimal.Zero}
			buckets[month] = bucket
			months = append(months, month)
		}
		bucket.Revenue = bucket.Revenue.Add(t.TotalAmount)
		bucket.Sales++
	}

	sort.Strings(months)
	report := make([]MonthlyRevenue, 0, len(months))
	for _, month := range months {
		report = append(report, *buckets[month])
	}
	return report, nil
}

// ActivityEvent is one entry in the recent-activity feed: either a catalog
// edit or a recorded sale.
type ActivityEvent struct {
	Type      string           `json:"type"` // "catalog" or "sale"
	Timestamp time.Time        `json:"timestamp"`
	RefID     uuid.UUID        `json:"ref_id"`
	Label     string           `json:"label"`
	Category  models.Category  `json:"category,omitempty"`
	Amount    *decimal.Decimal `json:"amount,omitempty"`
}

// RecentActivity merges catalog edits and ledger sales into one
// reverse-chronological feed truncated to limit.
func (s *AnalyticsService) RecentActivity(limit int) ([]ActivityEvent, error) {
	if limit <= 0 {
		limit = 20
	}

	var items []models.CatalogItem
	if err := s.db.Order("updated_at DESC").Limit(limit).Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch catalog activity: %w", err)
	}

	var transactions []models.Transaction
	if err := s.db.Order("created_at DESC").Limit(limit).Find(&transactions).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch sale activity: %w", err)
	}

	events := make([]ActivityEvent, 0, len(items)+len(transactions))
	for _, item := range items {
		events = append(events, ActivityEvent{
			Type:      "catalog",
			Timestamp: item.UpdatedAt,
			RefID:     item.ID,
			Label:     item.Name,
			Category:  item.Category,
		})
	}
	for _, t := range transactions {
		amount := t.TotalAmount
		events = append(events, ActivityEvent{
			Type:      "sale",
			Timestamp: t.CreatedAt,
			RefID:     t.ID,
			Label:     t.InvoiceNo,
			Amount:    &amount,
		})
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Timestamp.After(events[j].Timestamp)
	})

	if len(events) > limit {
		events = events[:limit]
	}
	return events, nil
}
