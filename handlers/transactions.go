package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/buddybudget/wealth_backend/models"
	"github.com/buddybudget/wealth_backend/utils"
	"github.com/buddybudget/wealth_backend/workflow"
	"github.com/gin-gonic/gin"
)

const maxTransactionListLimit = 500

func (h *Handler) listTransactions(c *gin.Context) {
	filter := models.TransactionFilter{AccountId: strings.TrimSpace(c.Query("accountId"))}
	if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			h.respondError(c, utils.NewValidationError("limit", "must be a positive integer"))
			return
		}
		filter.Limit = min(limit, maxTransactionListLimit)
	}
	owner := ownerFromRequest(c)
	transactions, err := h.Ledger.ListTransactions(c.Request.Context(), owner.UserId, filter)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, transactions)
}

func (h *Handler) createTransaction(c *gin.Context) {
	var input workflow.NewTransaction
	if !h.bindJSON(c, &input) {
		return
	}
	result, err := h.Ledger.CreateTransaction(c.Request.Context(), ownerFromRequest(c), &input, c.GetHeader(IdempotencyHeader))
	if err != nil {
		h.respondError(c, err)
		return
	}
	status := http.StatusCreated
	if result.Replayed {
		status = http.StatusOK
	}
	c.JSON(status, gin.H{
		"success":     true,
		"transaction": result.Transaction,
		"accounts":    result.Accounts,
		"snapshot":    result.Snapshot,
	})
}

func (h *Handler) deleteTransaction(c *gin.Context) {
	result, err := h.Ledger.DeleteTransaction(c.Request.Context(), ownerFromRequest(c), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"transaction": result.Transaction,
		"accounts":    result.Accounts,
		"snapshot":    result.Snapshot,
	})
}
