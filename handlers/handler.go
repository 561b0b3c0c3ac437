package handlers

import (
	"errors"
	"net/http"

	"github.com/buddybudget/wealth_backend/config"
	"github.com/buddybudget/wealth_backend/utils"
	"github.com/buddybudget/wealth_backend/workflow"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const IdempotencyHeader = "Idempotency-Key"

// Handler exposes the ledger over REST. Every route expects the owner in the
// request context (see middlewares.AuthMiddleware / SessionMiddleware).
type Handler struct {
	Ledger *workflow.Ledger
	Logger *logrus.Logger
}

func New(ledger *workflow.Ledger, logger *logrus.Logger) *Handler {
	return &Handler{Ledger: ledger, Logger: logger}
}

func (h *Handler) Register(r gin.IRouter) {
	accounts := r.Group("/liquidity-accounts")
	accounts.GET("", h.listAccounts)
	accounts.POST("", h.createAccount)
	accounts.GET("/:id", h.getAccount)
	accounts.PATCH("/:id", h.updateAccount)
	accounts.DELETE("/:id", h.deleteAccount)
	accounts.GET("/:id/valuations", h.listValuations)

	r.POST("/user/onboarding", h.onboard)

	transactions := r.Group("/transactions")
	transactions.GET("", h.listTransactions)
	transactions.POST("", h.createTransaction)
	transactions.DELETE("/:id", h.deleteTransaction)

	snapshots := r.Group("/wealth-snapshots")
	snapshots.GET("", h.listSnapshots)
	snapshots.GET("/export", h.exportSnapshots)
	snapshots.POST("/recompute", h.recomputeSnapshot)

	r.GET("/balance-checks", h.verifyBalances)
	r.POST("/ledger-events/:id/replay", h.replayEvent)
}

func ownerFromRequest(c *gin.Context) workflow.Owner {
	ctx := c.Request.Context()
	userId, _ := utils.GetUserIdFromContext(ctx)
	currency, _ := utils.GetPrimaryCurrencyFromContext(ctx)
	return workflow.Owner{UserId: userId, Currency: currency}
}

// respondError maps ledger error kinds to status codes.
func (h *Handler) respondError(c *gin.Context, err error) {
	var ve *utils.ValidationError
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "fields": ve.Fields})
	case errors.Is(err, utils.ErrAccountNotFound),
		errors.Is(err, utils.ErrTransactionNotFound),
		errors.Is(err, utils.ErrCategoryNotFound),
		errors.Is(err, utils.ErrLedgerEventNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, utils.ErrInvalidTransfer):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, utils.ErrIdempotencyConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		userId, _ := utils.GetUserIdFromContext(c.Request.Context())
		config.LogError(h.Logger, "handlers", c.FullPath(), c.Request.Method, userId, err)
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

// bindJSON decodes the body; malformed JSON is a validation failure.
func (h *Handler) bindJSON(c *gin.Context, dest any) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		h.respondError(c, utils.NewValidationError("body", "invalid request: "+err.Error()))
		return false
	}
	return true
}
