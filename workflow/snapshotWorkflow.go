package workflow

import (
	"context"
	"time"

	"github.com/buddybudget/wealth_backend/models"
	"github.com/buddybudget/wealth_backend/utils"
)

// ListSnapshots returns the owner's daily snapshots within [from, to] (date-only, inclusive).
func (l *Ledger) ListSnapshots(ctx context.Context, userId string, from, to time.Time) ([]*models.WealthSnapshot, error) {
	if !from.IsZero() && !to.IsZero() && to.Before(from) {
		return nil, utils.NewValidationError("to", "must not be before from")
	}
	if !from.IsZero() {
		from = utils.StartOfDay(from, time.UTC)
	}
	if !to.IsZero() {
		to = utils.StartOfDay(to, time.UTC)
	}
	return models.ListSnapshots(l.DB.WithContext(ctx), userId, from, to)
}

// Today is the snapshot day for now in the ledger's reference time zone.
func (l *Ledger) Today() time.Time {
	return utils.StartOfDay(l.now(), l.Location)
}
