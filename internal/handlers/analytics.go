// internal/handlers/analytics.go
package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/keebworks/keebpos-backend/internal/services"
	"github.com/keebworks/keebpos-backend/internal/utils"
)

type AnalyticsHandler struct {
	analyticsService *services.AnalyticsService
}

func NewAnalyticsHandler(analyticsService *services.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analyticsService: analyticsService}
}

func (h *AnalyticsHandler) Register(rg *gin.RouterGroup) {
	g := rg.Group("/analytics")
	g.GET("/best-selling", h.GetBestSellingItems)
	g.GET("/low-stock", h.GetLowStockItems)
	g.GET("/monthly-revenue", h.GetMonthlyRevenue)
	g.GET("/recent-activity", h.GetRecentActivity)
}

// GET /analytics/best-selling
func (h *AnalyticsHandler) GetBestSellingItems(c *gin.Context) {
	items, err := h.analyticsService.BestSelling(c.Query("category"), queryInt(c, "limit"))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, items)
}

// GET /analytics/low-stock
func (h *AnalyticsHandler) GetLowStockItems(c *gin.Context) {
	items, err := h.analyticsService.LowStock(c.Query("category"), queryInt(c, "threshold"))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, items)
}

// GET /analytics/monthly-revenue
func (h *AnalyticsHandler) GetMonthlyRevenue(c *gin.Context) {
	report, err := h.analyticsService.MonthlyRevenueReport()
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, report)
}

// GET /analytics/recent-activity
func (h *AnalyticsHandler) GetRecentActivity(c *gin.Context) {
	events, err := h.analyticsService.RecentActivity(queryInt(c, "limit"))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, events)
}

func queryInt(c *gin.Context, key string) int {
	value, _ := strconv.Atoi(c.Query(key))
	return value
}
