package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/buddybudget/wealth_backend/models"
	"github.com/buddybudget/wealth_backend/models/reports"
	"github.com/buddybudget/wealth_backend/utils"
	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func (h *Handler) snapshotsInRange(c *gin.Context) ([]*models.WealthSnapshot, bool) {
	var from, to time.Time
	for _, p := range []struct {
		name string
		dest *time.Time
	}{{"from", &from}, {"to", &to}} {
		raw := c.Query(p.name)
		if raw == "" {
			continue
		}
		d, err := utils.ParseDate(raw)
		if err != nil {
			h.respondError(c, utils.NewValidationError(p.name, "must be a date in YYYY-MM-DD format"))
			return nil, false
		}
		*p.dest = d
	}
	owner := ownerFromRequest(c)
	snapshots, err := h.Ledger.ListSnapshots(c.Request.Context(), owner.UserId, from, to)
	if err != nil {
		h.respondError(c, err)
		return nil, false
	}
	return snapshots, true
}

func (h *Handler) listSnapshots(c *gin.Context) {
	snapshots, ok := h.snapshotsInRange(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, snapshots)
}

func (h *Handler) exportSnapshots(c *gin.Context) {
	snapshots, ok := h.snapshotsInRange(c)
	if !ok {
		return
	}
	filename := fmt.Sprintf("wealth-snapshots-%s.xlsx", h.Ledger.Today().Format(utils.DateLayout))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Header("Content-Type", xlsxContentType)
	c.Status(http.StatusOK)
	if err := reports.WriteSnapshotWorkbook(c.Writer, snapshots); err != nil {
		_ = c.Error(err)
	}
}

func (h *Handler) recomputeSnapshot(c *gin.Context) {
	snapshot, err := h.Ledger.RecomputeSnapshot(c.Request.Context(), ownerFromRequest(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, snapshot)
}
