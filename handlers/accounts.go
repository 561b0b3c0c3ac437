package handlers

import (
	"net/http"

	"github.com/buddybudget/wealth_backend/workflow"
	"github.com/gin-gonic/gin"
)

func (h *Handler) listAccounts(c *gin.Context) {
	owner := ownerFromRequest(c)
	accounts, err := h.Ledger.ListAccounts(c.Request.Context(), owner.UserId)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, accounts)
}

func (h *Handler) getAccount(c *gin.Context) {
	owner := ownerFromRequest(c)
	account, err := h.Ledger.GetAccount(c.Request.Context(), owner.UserId, c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, account)
}

func (h *Handler) createAccount(c *gin.Context) {
	var input workflow.NewLiquidityAccount
	if !h.bindJSON(c, &input) {
		return
	}
	result, err := h.Ledger.CreateAccount(c.Request.Context(), ownerFromRequest(c), &input)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result.Account)
}

func (h *Handler) updateAccount(c *gin.Context) {
	var input workflow.UpdateLiquidityAccount
	if !h.bindJSON(c, &input) {
		return
	}
	result, err := h.Ledger.UpdateAccount(c.Request.Context(), ownerFromRequest(c), c.Param("id"), &input)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result.Account)
}

func (h *Handler) deleteAccount(c *gin.Context) {
	result, err := h.Ledger.DeleteAccount(c.Request.Context(), ownerFromRequest(c), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result.Account)
}

func (h *Handler) listValuations(c *gin.Context) {
	owner := ownerFromRequest(c)
	valuations, err := h.Ledger.ListAccountValuations(c.Request.Context(), owner.UserId, c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, valuations)
}

func (h *Handler) onboard(c *gin.Context) {
	var input workflow.OnboardingInput
	if !h.bindJSON(c, &input) {
		return
	}
	result, err := h.Ledger.OnboardAccounts(c.Request.Context(), ownerFromRequest(c), &input)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message":  "onboarding completed",
		"accounts": result.Accounts,
		"snapshot": result.Snapshot,
	})
}
