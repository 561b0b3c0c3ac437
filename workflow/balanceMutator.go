package workflow

import (
	"errors"
	"time"

	"github.com/buddybudget/wealth_backend/models"
	"github.com/buddybudget/wealth_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// BalanceEffect is the signed change a transaction makes to one account.
type BalanceEffect struct {
	AccountId string
	Delta     decimal.Decimal
}

// TransactionEffects returns the signed per-account effects of t.
// income: +amount on source. expense: -amount on source.
// transfer: -amount on source, +amount on destination unless external.
func TransactionEffects(t models.Transaction) ([]BalanceEffect, error) {
	if !t.Amount.IsPositive() {
		return nil, utils.NewValidationError("amount", "must be greater than 0")
	}
	switch t.Type {
	case models.TransactionTypeIncome:
		return []BalanceEffect{{AccountId: t.AccountId, Delta: t.Amount}}, nil
	case models.TransactionTypeExpense:
		return []BalanceEffect{{AccountId: t.AccountId, Delta: t.Amount.Neg()}}, nil
	case models.TransactionTypeTransfer:
		if t.IsExternalAccount {
			return []BalanceEffect{{AccountId: t.AccountId, Delta: t.Amount.Neg()}}, nil
		}
		if !t.HasLedgerDestination() {
			return nil, utils.ErrInvalidTransfer
		}
		if *t.DestinationAccountId == t.AccountId {
			return nil, utils.ErrInvalidTransfer
		}
		return []BalanceEffect{
			{AccountId: t.AccountId, Delta: t.Amount.Neg()},
			{AccountId: *t.DestinationAccountId, Delta: t.Amount},
		}, nil
	default:
		return nil, utils.NewValidationError("type", "must be one of income, expense, transfer")
	}
}

// ApplyTransactionEffect applies t to the affected balances and returns the
// updated accounts in effect order.
func ApplyTransactionEffect(tx *gorm.DB, userId string, t models.Transaction, now time.Time) ([]*models.LiquidityAccount, error) {
	effects, err := TransactionEffects(t)
	if err != nil {
		return nil, err
	}
	return applyEffects(tx, userId, effects, now)
}

// ReverseTransactionEffect undoes exactly what ApplyTransactionEffect did for t.
// Accounts soft-deleted since keep their frozen balance and are skipped.
func ReverseTransactionEffect(tx *gorm.DB, userId string, t models.Transaction, now time.Time) ([]*models.LiquidityAccount, error) {
	effects, err := TransactionEffects(t)
	if err != nil {
		return nil, err
	}
	reversed := make([]BalanceEffect, 0, len(effects))
	for _, effect := range effects {
		_, err := models.GetLiveAccount(tx, userId, effect.AccountId)
		if errors.Is(err, utils.ErrAccountNotFound) {
			continue
		}
		if err != nil {
			return nil, utils.Persist("resolve account", err)
		}
		reversed = append(reversed, BalanceEffect{AccountId: effect.AccountId, Delta: effect.Delta.Neg()})
	}
	return applyEffects(tx, userId, reversed, now)
}

func applyEffects(tx *gorm.DB, userId string, effects []BalanceEffect, now time.Time) ([]*models.LiquidityAccount, error) {
	// Resolve every account first so a missing destination leaves the source untouched.
	for _, effect := range effects {
		if _, err := models.GetLiveAccount(tx, userId, effect.AccountId); err != nil {
			return nil, utils.Persist("resolve account", err)
		}
	}

	accounts := make([]*models.LiquidityAccount, 0, len(effects))
	for _, effect := range effects {
		if err := models.AdjustBalance(tx, userId, effect.AccountId, effect.Delta, now); err != nil {
			return nil, utils.Persist("adjust balance", err)
		}
		account, err := models.GetLiveAccount(tx, userId, effect.AccountId)
		if err != nil {
			return nil, utils.Persist("reload account", err)
		}
		accounts = append(accounts, account)
	}
	return accounts, nil
}
