// internal/handlers/transaction.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/keebworks/keebpos-backend/internal/services"
	"github.com/keebworks/keebpos-backend/internal/utils"
)

type TransactionHandler struct {
	checkoutService    *services.CheckoutService
	transactionService *services.TransactionService
}

func NewTransactionHandler(checkoutService *services.CheckoutService, transactionService *services.TransactionService) *TransactionHandler {
	return &TransactionHandler{
		checkoutService:    checkoutService,
		transactionService: transactionService,
	}
}

func (h *TransactionHandler) Register(rg *gin.RouterGroup) {
	g := rg.Group("/transactions")
	g.POST("", h.Checkout)
	g.GET("", h.GetTransactions)
	g.GET("/:invoiceNo", h.GetTransaction)
}

// POST /transactions
func (h *TransactionHandler) Checkout(c *gin.Context) {
	var req services.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid data")
		return
	}

	result, err := h.checkoutService.Checkout(&req)
	if err != nil {
		var partial *services.PartialReconciliationError
		if errors.As(err, &partial) {
			// The sale is recorded; the operator must see which lines did
			// not reconcile instead of an unqualified success.
			utils.ErrorResponseWithData(c, http.StatusConflict, partial.Error(), result)
			return
		}
		respondError(c, err)
		return
	}

	utils.CreatedResponse(c, result)
}

// GET /transactions
func (h *TransactionHandler) GetTransactions(c *gin.Context) {
	transactions, err := h.transactionService.ListAll()
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, transactions)
}

// GET /transactions/:invoiceNo
func (h *TransactionHandler) GetTransaction(c *gin.Context) {
	transaction, err := h.transactionService.GetByInvoice(c.Param("invoiceNo"))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, transaction)
}
