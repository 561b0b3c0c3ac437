package workflow

import (
	"context"
	"strings"
	"time"

	"github.com/buddybudget/wealth_backend/models"
	"github.com/buddybudget/wealth_backend/utils"
	"gorm.io/gorm"
)

const idempotencyScopeCreateTransaction = "transaction.create"

// TransactionMutation is what a transaction write produced.
type TransactionMutation struct {
	Transaction *models.Transaction
	Accounts    []*models.LiquidityAccount
	Valuations  []*models.AssetValuation
	Snapshot    *models.WealthSnapshot
	// Replayed is true when an idempotency key matched an earlier request.
	Replayed bool
}

// CreateTransaction: Transaction(new) -> balance effect -> Valuation per touched account -> Snapshot(upsert).
//
// idempotencyKey is optional. A key already used by a committed request returns
// that request's transaction without applying the effect again.
func (l *Ledger) CreateTransaction(ctx context.Context, owner Owner, input *NewTransaction, idempotencyKey string) (*TransactionMutation, error) {
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
	idempotencyKey = strings.TrimSpace(idempotencyKey)

	result := &TransactionMutation{}
	err = l.runUnit(ctx, owner, "CreateTransaction", func(tx *gorm.DB, now time.Time) error {
		if idempotencyKey != "" {
			existingId, err := BeginIdempotency(tx, owner.UserId, idempotencyScopeCreateTransaction, idempotencyKey)
			if err != nil {
				return utils.Persist("begin idempotency", err)
			}
			if existingId != "" {
				var existing models.Transaction
				if err := tx.Where("user_id = ? AND id = ?", owner.UserId, existingId).Take(&existing).Error; err != nil {
					return utils.Persist("load replayed transaction", err)
				}
				result.Transaction = &existing
				result.Replayed = true
				return nil
			}
		}

		if input.CategoryId != nil {
			if err := models.EnsureCategory(tx, owner.UserId, *input.CategoryId); err != nil {
				return utils.Persist("check category", err)
			}
		}

		date := now
		if input.Date != nil && !input.Date.IsZero() {
			date = input.Date.UTC()
		}
		transaction := models.Transaction{
			UserId:                 owner.UserId,
			AccountId:              input.AccountId,
			DestinationAccountId:   input.DestinationAccountId,
			IsExternalAccount:      input.IsExternalAccount,
			Date:                   date,
			Amount:                 input.Amount,
			Currency:               currency,
			Type:                   input.Type,
			CategoryId:             input.CategoryId,
			Description:            strings.TrimSpace(input.Description),
			RecurringTransactionId: input.RecurringTransactionId,
			Tags:                   models.StringList(input.Tags),
			CreatedAt:              now,
			UpdatedAt:              now,
		}
		if err := tx.Create(&transaction).Error; err != nil {
			return utils.Persist("create transaction", err)
		}
		result.Transaction = &transaction

		accounts, err := ApplyTransactionEffect(tx, owner.UserId, transaction, now)
		if err != nil {
			return err
		}
		if err := l.afterBalanceChange(tx, owner, result, accounts, models.ValuationReasonTransaction, now); err != nil {
			return err
		}
		if err := l.enqueue(ctx, tx, owner, models.LedgerEventTransactionCreated, transaction.ID, now, LedgerEventPayload{
			Transaction: result.Transaction,
			Accounts:    result.Accounts,
			Snapshot:    result.Snapshot,
		}); err != nil {
			return err
		}

		if idempotencyKey != "" {
			if err := MarkIdempotencySucceeded(tx, owner.UserId, idempotencyScopeCreateTransaction, idempotencyKey, transaction.ID); err != nil {
				return utils.Persist("mark idempotency", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// DeleteTransaction soft-deletes the transaction and reverses its balance effect exactly,
// then records valuations and re-runs the snapshot upsert.
func (l *Ledger) DeleteTransaction(ctx context.Context, owner Owner, id string) (*TransactionMutation, error) {
	owner, err := l.owner(owner)
	if err != nil {
		return nil, err
	}

	result := &TransactionMutation{}
	err = l.runUnit(ctx, owner, "DeleteTransaction", func(tx *gorm.DB, now time.Time) error {
		transaction, err := models.GetLiveTransaction(tx, owner.UserId, id)
		if err != nil {
			return utils.Persist("load transaction", err)
		}
		if err := models.SoftDeleteTransaction(tx, owner.UserId, transaction.ID, now); err != nil {
			return utils.Persist("soft delete transaction", err)
		}
		transaction.IsDeleted = true
		transaction.DeletedAt = &now
		transaction.UpdatedAt = now
		result.Transaction = transaction

		accounts, err := ReverseTransactionEffect(tx, owner.UserId, *transaction, now)
		if err != nil {
			return err
		}
		if err := l.afterBalanceChange(tx, owner, result, accounts, models.ValuationReasonReversal, now); err != nil {
			return err
		}
		return l.enqueue(ctx, tx, owner, models.LedgerEventTransactionDeleted, transaction.ID, now, LedgerEventPayload{
			Transaction: result.Transaction,
			Accounts:    result.Accounts,
			Snapshot:    result.Snapshot,
		})
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// afterBalanceChange appends one valuation per touched account and upserts the snapshot.
func (l *Ledger) afterBalanceChange(tx *gorm.DB, owner Owner, result *TransactionMutation, accounts []*models.LiquidityAccount, reason models.ValuationReason, now time.Time) error {
	result.Accounts = accounts
	for _, account := range accounts {
		valuation, err := RecordValuation(tx, owner.UserId, ValuationInput{
			AssetId:  account.ID,
			Value:    account.Balance,
			Currency: account.Currency,
			Reason:   reason,
			At:       now,
		})
		if err != nil {
			return err
		}
		result.Valuations = append(result.Valuations, valuation)
	}
	snapshot, err := l.snapshot(tx, owner, now)
	if err != nil {
		return err
	}
	result.Snapshot = snapshot
	return nil
}

func (l *Ledger) ListTransactions(ctx context.Context, userId string, filter models.TransactionFilter) ([]*models.Transaction, error) {
	return models.ListLiveTransactions(l.DB.WithContext(ctx), userId, filter)
}
