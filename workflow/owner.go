package workflow

import (
	"strings"

	"github.com/buddybudget/wealth_backend/utils"
)

// Owner identifies the authenticated user on whose behalf a write runs.
// Currency is the owner's primary currency; it stamps snapshots and is the
// default for new accounts and transactions.
type Owner struct {
	UserId   string
	Currency string
}

func (o Owner) normalize(fallbackCurrency string) (Owner, error) {
	o.UserId = strings.TrimSpace(o.UserId)
	if o.UserId == "" {
		return o, utils.NewValidationError("userId", "required")
	}
	currency, err := utils.NormalizeCurrency(o.Currency, fallbackCurrency)
	if err != nil {
		return o, err
	}
	o.Currency = currency
	return o, nil
}
