package handlers

import (
	"net/http"
	"strconv"

	"github.com/buddybudget/wealth_backend/utils"
	"github.com/gin-gonic/gin"
)

// verifyBalances replays every live account and reports drift.
func (h *Handler) verifyBalances(c *gin.Context) {
	owner := ownerFromRequest(c)
	checks, err := h.Ledger.VerifyBalances(c.Request.Context(), owner.UserId)
	if err != nil {
		h.respondError(c, err)
		return
	}
	consistent := true
	for _, check := range checks {
		if !check.Consistent() {
			consistent = false
			break
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"consistent": consistent,
		"accounts":   checks,
	})
}

func (h *Handler) replayEvent(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		h.respondError(c, utils.NewValidationError("id", "must be a positive integer"))
		return
	}
	owner := ownerFromRequest(c)
	event, err := h.Ledger.RequeueEvent(c.Request.Context(), owner.UserId, id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id":            event.ID,
		"publishStatus": event.PublishStatus,
		"nextAttemptAt": event.NextAttemptAt,
		"correlationId": event.CorrelationId,
	})
}
