// internal/handlers/errors.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/keebworks/keebpos-backend/internal/models"
	"github.com/keebworks/keebpos-backend/internal/services"
	"github.com/keebworks/keebpos-backend/internal/utils"
)

// statusFromError maps service-layer errors onto conventional HTTP statuses:
// 400 for validation, insufficient stock and unknown categories, 404 for
// missing rows, 409 for invoice collisions, 500 otherwise.
func statusFromError(err error) int {
	switch {
	case errors.Is(err, services.ErrValidation),
		errors.Is(err, services.ErrInsufficientStock),
		errors.Is(err, models.ErrUnknownCategory):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrDuplicateInvoice):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, err error) {
	switch statusFromError(err) {
	case http.StatusBadRequest:
		utils.BadRequestResponse(c, err.Error())
	case http.StatusNotFound:
		utils.NotFoundResponse(c, err.Error())
	case http.StatusConflict:
		utils.ConflictResponse(c, err.Error())
	default:
		utils.InternalErrorResponse(c, "Server error")
	}
}
