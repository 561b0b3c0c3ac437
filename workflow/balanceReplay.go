package workflow

import (
	"context"
	"errors"

	"github.com/buddybudget/wealth_backend/models"
	"github.com/buddybudget/wealth_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// BalanceCheck compares an account's stored balance with a replay of its ledger.
type BalanceCheck struct {
	AccountId string          `json:"accountId"`
	Name      string          `json:"name"`
	Stored    decimal.Decimal `json:"stored"`
	Expected  decimal.Decimal `json:"expected"`
	Drift     decimal.Decimal `json:"drift"`
}

func (c BalanceCheck) Consistent() bool {
	return c.Drift.IsZero()
}

// VerifyAccountBalance replays the account from its latest opening or adjustment
// valuation: transactions created after the anchor and still live add their
// effect; transactions created before it but deleted after it subtract theirs.
func VerifyAccountBalance(tx *gorm.DB, userId string, accountId string) (*BalanceCheck, error) {
	account, err := models.GetLiveAccount(tx, userId, accountId)
	if err != nil {
		return nil, err
	}
	anchor, err := models.LatestAnchorValuation(tx, userId, accountId)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.NewValidationError("accountId", "account has no opening valuation")
	}
	if err != nil {
		return nil, err
	}

	expected := anchor.Value
	since, err := models.ListAccountTransactionsSince(tx, userId, accountId, anchor.CreatedAt)
	if err != nil {
		return nil, err
	}
	for _, t := range since {
		if t.IsDeleted {
			continue
		}
		expected = expected.Add(effectOn(*t, accountId))
	}
	deletedAfter, err := models.ListAccountTransactionsDeletedSince(tx, userId, accountId, anchor.CreatedAt)
	if err != nil {
		return nil, err
	}
	for _, t := range deletedAfter {
		expected = expected.Sub(effectOn(*t, accountId))
	}

	return &BalanceCheck{
		AccountId: account.ID,
		Name:      account.Name,
		Stored:    account.Balance,
		Expected:  expected,
		Drift:     account.Balance.Sub(expected),
	}, nil
}

func effectOn(t models.Transaction, accountId string) decimal.Decimal {
	effects, err := TransactionEffects(t)
	if err != nil {
		return decimal.Zero
	}
	total := decimal.Zero
	for _, e := range effects {
		if e.AccountId == accountId {
			total = total.Add(e.Delta)
		}
	}
	return total
}

// VerifyBalances checks every live account of the owner.
func (l *Ledger) VerifyBalances(ctx context.Context, userId string) ([]*BalanceCheck, error) {
	db := l.DB.WithContext(ctx)
	accounts, err := models.ListLiveAccounts(db, userId)
	if err != nil {
		return nil, err
	}
	checks := make([]*BalanceCheck, 0, len(accounts))
	for _, account := range accounts {
		check, err := VerifyAccountBalance(db, userId, account.ID)
		if err != nil {
			return nil, err
		}
		checks = append(checks, check)
	}
	return checks, nil
}
