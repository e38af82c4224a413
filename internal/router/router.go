// internal/router/router.go
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/keebworks/keebpos-backend/internal/config"
	"github.com/keebworks/keebpos-backend/internal/handlers"
	"github.com/keebworks/keebpos-backend/internal/middleware"
	"github.com/keebworks/keebpos-backend/internal/services"
)

func Initialize(db *gorm.DB, cfg *config.Config) *gin.Engine {
	// Initialize services
	catalogService := services.NewCatalogService(db, cfg.Store)
	transactionService := services.NewTransactionService(db)
	checkoutService := services.NewCheckoutService(catalogService, transactionService, cfg.Store)
	analyticsService := services.NewAnalyticsService(db, cfg.Store)

	// Initialize handlers
	catalogHandler := handlers.NewCatalogHandler(catalogService)
	transactionHandler := handlers.NewTransactionHandler(checkoutService, transactionService)
	analyticsHandler := handlers.NewAnalyticsHandler(analyticsService)

	// Initialize Gin router
	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS(cfg.CORS))
	r.Use(middleware.GeneralRateLimit())

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": "1.0.0",
		})
	})

	api := r.Group("/api")
	{
		upload := middleware.UploadRateLimit()
		catalogHandler.RegisterPartitionRoutes(api, upload)
		catalogHandler.RegisterLegacyRoutes(api, upload)
		transactionHandler.Register(api)
		analyticsHandler.Register(api)
	}

	return r
}
