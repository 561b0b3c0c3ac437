package workflow

import (
	"context"
	"time"

	"github.com/buddybudget/wealth_backend/models"
	"github.com/buddybudget/wealth_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// AccountMutation is what an account write produced.
// Valuation and Snapshot are nil when the write did not touch the balance.
type AccountMutation struct {
	Account   *models.LiquidityAccount
	Valuation *models.AssetValuation
	Snapshot  *models.WealthSnapshot
}

type OnboardingResult struct {
	Accounts   []*models.LiquidityAccount
	Valuations []*models.AssetValuation
	Snapshot   *models.WealthSnapshot
}

type accountFields struct {
	Name     string
	Type     models.AccountType
	Balance  decimal.Decimal
	Currency string
	IsActive *bool
}

func (l *Ledger) createAccount(tx *gorm.DB, owner Owner, fields accountFields, now time.Time) (*models.LiquidityAccount, *models.AssetValuation, error) {
	isActive := fields.IsActive
	if isActive == nil {
		isActive = utils.NewTrue()
	}
	account := models.LiquidityAccount{
		UserId:    owner.UserId,
		Name:      fields.Name,
		Type:      fields.Type,
		Balance:   fields.Balance,
		Currency:  fields.Currency,
		IsActive:  isActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := tx.Create(&account).Error; err != nil {
		return nil, nil, utils.Persist("create account", err)
	}
	valuation, err := RecordValuation(tx, owner.UserId, ValuationInput{
		AssetId:  account.ID,
		Value:    account.Balance,
		Currency: account.Currency,
		Reason:   models.ValuationReasonOpening,
		At:       now,
	})
	if err != nil {
		return nil, nil, err
	}
	return &account, valuation, nil
}

// CreateAccount: Account(new) -> Valuation(opening) -> Snapshot(upsert).
func (l *Ledger) CreateAccount(ctx context.Context, owner Owner, input *NewLiquidityAccount) (*AccountMutation, error) {
	owner, err := l.owner(owner)
	if err != nil {
		return nil, err
	}
	if err := input.validate(); err != nil {
		return nil, err
	}
	currency, err := utils.NormalizeCurrency(input.Currency, owner.Currency)
	if err != nil {
		return nil, err
	}

	result := &AccountMutation{}
	err = l.runUnit(ctx, owner, "CreateAccount", func(tx *gorm.DB, now time.Time) error {
		account, valuation, err := l.createAccount(tx, owner, accountFields{
			Name:     input.Name,
			Type:     input.Type,
			Balance:  input.Balance,
			Currency: currency,
			IsActive: input.IsActive,
		}, now)
		if err != nil {
			return err
		}
		result.Account, result.Valuation = account, valuation

		if result.Snapshot, err = l.snapshot(tx, owner, now); err != nil {
			return err
		}
		return l.enqueue(ctx, tx, owner, models.LedgerEventAccountCreated, account.ID, now, LedgerEventPayload{
			Account:  account,
			Snapshot: result.Snapshot,
		})
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// OnboardAccounts creates the first set of accounts in one unit with a single snapshot upsert.
func (l *Ledger) OnboardAccounts(ctx context.Context, owner Owner, input *OnboardingInput) (*OnboardingResult, error) {
	if input.PrimaryCurrency != "" {
		owner.Currency = input.PrimaryCurrency
	}
	owner, err := l.owner(owner)
	if err != nil {
		return nil, err
	}
	if err := input.validate(); err != nil {
		return nil, err
	}

	result := &OnboardingResult{}
	err = l.runUnit(ctx, owner, "OnboardAccounts", func(tx *gorm.DB, now time.Time) error {
		for _, a := range input.LiquidityAccounts {
			account, valuation, err := l.createAccount(tx, owner, accountFields{
				Name:     a.Name,
				Type:     a.Type,
				Balance:  a.Balance,
				Currency: owner.Currency,
			}, now)
			if err != nil {
				return err
			}
			result.Accounts = append(result.Accounts, account)
			result.Valuations = append(result.Valuations, valuation)
		}

		var err error
		if result.Snapshot, err = l.snapshot(tx, owner, now); err != nil {
			return err
		}
		for _, account := range result.Accounts {
			if err := l.enqueue(ctx, tx, owner, models.LedgerEventAccountCreated, account.ID, now, LedgerEventPayload{
				Account:  account,
				Snapshot: result.Snapshot,
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// UpdateAccount: Account(mutate) -> [balance changed] Valuation(adjustment) -> Snapshot(upsert).
// When the balance is absent or unchanged the valuation and snapshot steps are skipped.
func (l *Ledger) UpdateAccount(ctx context.Context, owner Owner, id string, input *UpdateLiquidityAccount) (*AccountMutation, error) {
	owner, err := l.owner(owner)
	if err != nil {
		return nil, err
	}
	if err := input.validate(); err != nil {
		return nil, err
	}

	result := &AccountMutation{}
	err = l.runUnit(ctx, owner, "UpdateAccount", func(tx *gorm.DB, now time.Time) error {
		account, err := models.GetLiveAccount(tx, owner.UserId, id)
		if err != nil {
			return utils.Persist("load account", err)
		}

		updates := map[string]interface{}{}
		if input.Name != nil && *input.Name != account.Name {
			updates["name"] = *input.Name
		}
		if input.Type != nil && *input.Type != account.Type {
			updates["type"] = *input.Type
		}
		if input.IsActive != nil && (account.IsActive == nil || *input.IsActive != *account.IsActive) {
			updates["is_active"] = *input.IsActive
		}
		balanceChanged := input.Balance != nil && !input.Balance.Equal(account.Balance)
		if balanceChanged {
			updates["balance"] = *input.Balance
		}

		if len(updates) == 0 {
			result.Account = account
			return nil
		}
		updates["updated_at"] = now
		if err := tx.Model(&models.LiquidityAccount{}).
			Where("user_id = ? AND id = ?", owner.UserId, account.ID).
			Updates(updates).Error; err != nil {
			return utils.Persist("update account", err)
		}
		if result.Account, err = models.GetLiveAccount(tx, owner.UserId, account.ID); err != nil {
			return utils.Persist("reload account", err)
		}

		if balanceChanged {
			if result.Valuation, err = RecordValuation(tx, owner.UserId, ValuationInput{
				AssetId:  account.ID,
				Value:    result.Account.Balance,
				Currency: result.Account.Currency,
				Reason:   models.ValuationReasonAdjustment,
				At:       now,
			}); err != nil {
				return err
			}
			if result.Snapshot, err = l.snapshot(tx, owner, now); err != nil {
				return err
			}
		}
		return l.enqueue(ctx, tx, owner, models.LedgerEventAccountUpdated, account.ID, now, LedgerEventPayload{
			Account:  result.Account,
			Snapshot: result.Snapshot,
		})
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// DeleteAccount: Account(is_deleted) -> cascade Valuations(is_deleted) -> Snapshot(upsert).
func (l *Ledger) DeleteAccount(ctx context.Context, owner Owner, id string) (*AccountMutation, error) {
	owner, err := l.owner(owner)
	if err != nil {
		return nil, err
	}

	result := &AccountMutation{}
	err = l.runUnit(ctx, owner, "DeleteAccount", func(tx *gorm.DB, now time.Time) error {
		account, err := models.GetLiveAccount(tx, owner.UserId, id)
		if err != nil {
			return utils.Persist("load account", err)
		}
		if err := models.SoftDeleteAccount(tx, owner.UserId, account.ID, now); err != nil {
			return utils.Persist("soft delete account", err)
		}
		if _, err := models.SoftDeleteValuations(tx, owner.UserId, account.ID, now); err != nil {
			return utils.Persist("soft delete valuations", err)
		}
		account.IsDeleted = true
		account.DeletedAt = &now
		account.UpdatedAt = now
		result.Account = account

		if result.Snapshot, err = l.snapshot(tx, owner, now); err != nil {
			return err
		}
		return l.enqueue(ctx, tx, owner, models.LedgerEventAccountDeleted, account.ID, now, LedgerEventPayload{
			Account:  account,
			Snapshot: result.Snapshot,
		})
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (l *Ledger) GetAccount(ctx context.Context, userId string, id string) (*models.LiquidityAccount, error) {
	return models.GetLiveAccount(l.DB.WithContext(ctx), userId, id)
}

func (l *Ledger) ListAccounts(ctx context.Context, userId string) ([]*models.LiquidityAccount, error) {
	return models.ListLiveAccounts(l.DB.WithContext(ctx), userId)
}

// ListAccountValuations returns the valuation history of a live account.
func (l *Ledger) ListAccountValuations(ctx context.Context, userId string, id string) ([]*models.AssetValuation, error) {
	db := l.DB.WithContext(ctx)
	if _, err := models.GetLiveAccount(db, userId, id); err != nil {
		return nil, err
	}
	return models.ListValuations(db, userId, id, false)
}
