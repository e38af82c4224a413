// internal/handlers/catalog.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/keebworks/keebpos-backend/internal/models"
	"github.com/keebworks/keebpos-backend/internal/services"
	"github.com/keebworks/keebpos-backend/internal/utils"
)

type CatalogHandler struct {
	catalogService *services.CatalogService
}

func NewCatalogHandler(catalogService *services.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService}
}

// RegisterPartitionRoutes mounts the full store surface once per partition:
// /keyboard, /keycaps, /switches, /others all expose the same operations
// against their own slice of the catalog. The upload middleware throttles the
// image-bearing writes.
func (h *CatalogHandler) RegisterPartitionRoutes(rg *gin.RouterGroup, upload gin.HandlerFunc) {
	for _, category := range models.Categories() {
		partition := h.catalogService.PartitionFor(category)
		g := rg.Group("/" + category.SubResource())
		g.POST("", upload, h.create(partition))
		g.GET("", h.list(partition))
		g.GET("/:id", h.getByID(partition))
		g.PUT("/:id", upload, h.update(partition))
		g.DELETE("/:id", h.delete(partition))
		g.PATCH("/:id/sales", h.updateSales(partition))
		g.PATCH("/:id/decrement", h.decrementStock(partition))
	}
}

// RegisterLegacyRoutes mounts the unified /products surface. Creation takes
// the category from the payload; reads span all partitions.
func (h *CatalogHandler) RegisterLegacyRoutes(rg *gin.RouterGroup, upload gin.HandlerFunc) {
	g := rg.Group("/products")
	g.POST("", upload, h.createLegacy)
	g.GET("", h.listAll)
	g.GET("/:id", h.getAnyByID)
	g.PUT("/:id", upload, h.updateLegacy)
	g.DELETE("/:id", h.deleteLegacy)
}

func (h *CatalogHandler) create(p *services.Partition) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req services.CreateItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.BadRequestResponse(c, "All fields required")
			return
		}

		item, err := p.Create(&req)
		if err != nil {
			respondError(c, err)
			return
		}

		utils.CreatedResponse(c, item)
	}
}

func (h *CatalogHandler) list(p *services.Partition) gin.HandlerFunc {
	return func(c *gin.Context) {
		items, err := p.List()
		if err != nil {
			respondError(c, err)
			return
		}
		utils.SuccessResponse(c, items)
	}
}

func (h *CatalogHandler) getByID(p *services.Partition) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c)
		if !ok {
			return
		}

		item, err := p.GetByID(id)
		if err != nil {
			respondError(c, err)
			return
		}
		utils.SuccessResponse(c, item)
	}
}

func (h *CatalogHandler) update(p *services.Partition) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c)
		if !ok {
			return
		}

		var req services.UpdateItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.BadRequestResponse(c, "Invalid request body")
			return
		}

		item, err := p.Update(id, &req)
		if err != nil {
			respondError(c, err)
			return
		}
		utils.SuccessResponse(c, item)
	}
}

func (h *CatalogHandler) delete(p *services.Partition) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c)
		if !ok {
			return
		}

		if err := p.Delete(id); err != nil {
			respondError(c, err)
			return
		}
		utils.SuccessResponse(c, gin.H{"deleted": id})
	}
}

type updateSalesRequest struct {
	Sold int64 `json:"sold"`
}

func (h *CatalogHandler) updateSales(p *services.Partition) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c)
		if !ok {
			return
		}

		var req updateSalesRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.BadRequestResponse(c, "Invalid request body")
			return
		}

		item, err := p.IncrementSold(id, req.Sold)
		if err != nil {
			respondError(c, err)
			return
		}
		utils.SuccessResponse(c, item)
	}
}

type decrementStockRequest struct {
	Quantity int `json:"quantity"`
}

func (h *CatalogHandler) decrementStock(p *services.Partition) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c)
		if !ok {
			return
		}

		var req decrementStockRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.BadRequestResponse(c, "Invalid request body")
			return
		}

		item, err := p.DecrementStock(id, req.Quantity)
		if err != nil {
			respondError(c, err)
			return
		}
		utils.SuccessResponse(c, item)
	}
}

type legacyCreateRequest struct {
	services.CreateItemRequest
	Category string `json:"category" validate:"required"`
}

func (h *CatalogHandler) createLegacy(c *gin.Context) {
	var req legacyCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "All fields required")
		return
	}

	partition, err := h.catalogService.Partition(req.Category)
	if err != nil {
		respondError(c, err)
		return
	}

	item, err := partition.Create(&req.CreateItemRequest)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.CreatedResponse(c, item)
}

func (h *CatalogHandler) listAll(c *gin.Context) {
	items, err := h.catalogService.ListAll()
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, items)
}

func (h *CatalogHandler) getAnyByID(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	item, err := h.catalogService.GetAnyByID(id)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, item)
}

func (h *CatalogHandler) updateLegacy(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	item, err := h.catalogService.GetAnyByID(id)
	if err != nil {
		respondError(c, err)
		return
	}

	var req services.UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}

	updated, err := h.catalogService.PartitionFor(item.Category).Update(id, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, updated)
}

func (h *CatalogHandler) deleteLegacy(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	item, err := h.catalogService.GetAnyByID(id)
	if err != nil {
		respondError(c, err)
		return
	}

	if err := h.catalogService.PartitionFor(item.Category).Delete(id); err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{"deleted": id})
}

func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid item ID")
		return uuid.Nil, false
	}
	return id, true
}
